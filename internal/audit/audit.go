// Package audit records control actions to the append-only activity log and
// mirrors them to the structured log for operators.
package audit

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/p-blackswan/outreach-agent/internal/store"
)

// Result values for audit entries.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Recorder appends audit entries to the store. Entries are write-once; there
// is no API here to change or remove them.
type Recorder struct {
	store  *store.Store
	logger zerolog.Logger
}

// NewRecorder creates an audit recorder backed by the store.
func NewRecorder(st *store.Store, logger zerolog.Logger) *Recorder {
	return &Recorder{
		store:  st,
		logger: logger.With().Str("component", "audit").Logger(),
	}
}

// Record appends one entry. Metadata is marshalled to JSON; a nil map becomes
// an empty object. A store failure is logged and returned but must not stop
// the control action that triggered it.
func (r *Recorder) Record(ctx context.Context, userID, action, target, result string, metadata map[string]any) error {
	if metadata == nil {
		metadata = map[string]any{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		raw = []byte("{}")
	}

	entry := &store.ActivityEntry{
		UserID:   userID,
		Action:   action,
		Target:   target,
		Result:   result,
		Metadata: string(raw),
	}

	r.logger.Info().
		Str("user_id", userID).
		Str("action", action).
		Str("target", target).
		Str("result", result).
		RawJSON("metadata", raw).
		Msg("audit event")

	if err := r.store.AppendActivity(ctx, entry); err != nil {
		r.logger.Error().Err(err).Str("action", action).Msg("failed to persist audit entry")
		return err
	}
	return nil
}
