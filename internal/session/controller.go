// Package session owns the automation session lifecycle: one session per
// user, moved through active, paused and stopped by explicit control actions,
// with an audit trail on every transition.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/p-blackswan/outreach-agent/internal/audit"
	apperrors "github.com/p-blackswan/outreach-agent/internal/errors"
	"github.com/p-blackswan/outreach-agent/internal/plan"
	"github.com/p-blackswan/outreach-agent/internal/policy"
	"github.com/p-blackswan/outreach-agent/internal/store"
)

// Audit action tags for control operations.
const (
	ActionStart         = "automation_start"
	ActionPause         = "automation_pause"
	ActionResume        = "automation_resume"
	ActionEmergencyStop = "emergency_stop"
)

// emergencyStopReason is the fixed reason tag attached to every emergency
// stop audit entry, whether or not anything was stopped.
const emergencyStopReason = "user_emergency_stop"

// Session is a decoded automation session.
type Session struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Story     string          `json:"story"`
	Plan      plan.Plan       `json:"plan"`
	Settings  policy.Settings `json:"settings"`
	Status    string          `json:"status"`
	IsActive  bool            `json:"isActive"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// StatusReport is the read-only view returned by Status.
type StatusReport struct {
	IsActive     bool
	Status       string
	Progress     string
	TodayActions int
	HealthScore  int
	Plan         *plan.Plan
	SessionID    string
}

// Controller is the stateful session lifecycle component. All mutating
// operations delegate atomicity to the store: start is one transaction,
// pause/resume are single conditional updates, emergency stop is one bulk
// update.
type Controller struct {
	store  *store.Store
	audit  *audit.Recorder
	logger zerolog.Logger
	now    func() time.Time
}

// NewController creates a session controller.
func NewController(st *store.Store, rec *audit.Recorder, logger zerolog.Logger) *Controller {
	return &Controller{
		store:  st,
		audit:  rec,
		logger: logger.With().Str("component", "session_controller").Logger(),
		now:    time.Now,
	}
}

// Start creates a new active session from a story, plan and validated
// settings. Fails with ErrInvalidInput when the story or plan is empty and
// with ErrConflict when the user already has an active session; the prior
// session is never silently replaced.
func (c *Controller) Start(ctx context.Context, userID, story string, p plan.Plan, settings policy.Settings) (*Session, error) {
	if strings.TrimSpace(story) == "" {
		return nil, fmt.Errorf("story is required: %w", apperrors.ErrInvalidInput)
	}
	if len(p.TargetCommunities) == 0 && p.ContentStrategy == "" {
		return nil, fmt.Errorf("plan is required: %w", apperrors.ErrInvalidInput)
	}

	planJSON, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode plan: %w", err)
	}
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}

	rec := &store.Session{
		ID:       uuid.New().String(),
		UserID:   userID,
		Story:    story,
		Plan:     string(planJSON),
		Settings: string(settingsJSON),
	}

	if err := c.store.CreateSessionIfNoneActive(ctx, rec); err != nil {
		return nil, err
	}

	c.recordAudit(ctx, userID, ActionStart, rec.ID, map[string]any{
		"communities": len(p.TargetCommunities),
		"confidence":  p.Confidence,
	})

	c.logger.Info().
		Str("user_id", userID).
		Str("session_id", rec.ID).
		Msg("automation session started")

	return c.decode(rec)
}

// Status reports the user's current automation state, today's activity count
// and a derived health score. Read-only.
func (c *Controller) Status(ctx context.Context, userID string) (*StatusReport, error) {
	rec, err := c.store.GetActiveSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	startOfDay := startOfDayMillis(c.now())
	today, err := c.store.CountActivitySince(ctx, userID, startOfDay)
	if err != nil {
		return nil, err
	}

	report := &StatusReport{
		Status:       store.StatusStopped,
		TodayActions: today,
	}
	if rec == nil {
		return report, nil
	}

	sess, err := c.decode(rec)
	if err != nil {
		return nil, err
	}

	report.IsActive = sess.IsActive
	report.Status = sess.Status
	report.SessionID = sess.ID
	report.Plan = &sess.Plan
	report.HealthScore = healthScore(sess.Status)
	report.Progress = progress(sess, c.now())
	return report, nil
}

// Pause moves the active session to paused. The session stays the user's
// active session; only its status changes. ErrNotFound when there is no
// session in the active status.
func (c *Controller) Pause(ctx context.Context, userID string) error {
	if err := c.store.TransitionStatus(ctx, userID, store.StatusActive, store.StatusPaused); err != nil {
		return err
	}
	c.recordAudit(ctx, userID, ActionPause, "active_session", nil)
	return nil
}

// Resume moves a paused session back to active. ErrNotFound when there is no
// paused session.
func (c *Controller) Resume(ctx context.Context, userID string) error {
	if err := c.store.TransitionStatus(ctx, userID, store.StatusPaused, store.StatusActive); err != nil {
		return err
	}
	c.recordAudit(ctx, userID, ActionResume, "active_session", nil)
	return nil
}

// EmergencyStop deactivates every active session the user has, in one bulk
// update, and returns the count. Idempotent: zero stopped sessions is a
// successful no-op. Exactly one audit entry is written either way — the
// safety control must always leave a trace.
func (c *Controller) EmergencyStop(ctx context.Context, userID string) (int, error) {
	stopped, err := c.store.StopActiveSessions(ctx, userID)
	if err != nil {
		return 0, err
	}

	c.recordAudit(ctx, userID, ActionEmergencyStop, "all_sessions", map[string]any{
		"stopped_count": stopped,
		"reason":        emergencyStopReason,
	})

	c.logger.Info().
		Str("user_id", userID).
		Int64("stopped", stopped).
		Msg("emergency stop executed")

	return int(stopped), nil
}

// RecentActivity returns the user's most recent audit entries, newest first.
func (c *Controller) RecentActivity(ctx context.Context, userID string, limit int) ([]store.ActivityEntry, error) {
	return c.store.ListActivity(ctx, userID, limit)
}

func (c *Controller) recordAudit(ctx context.Context, userID, action, target string, metadata map[string]any) {
	// Audit persistence failures are logged by the recorder; the control
	// action itself has already taken effect and must not be rolled back.
	_ = c.audit.Record(ctx, userID, action, target, audit.ResultSuccess, metadata)
}

func (c *Controller) decode(rec *store.Session) (*Session, error) {
	sess := &Session{
		ID:        rec.ID,
		UserID:    rec.UserID,
		Story:     rec.Story,
		Status:    rec.Status,
		IsActive:  rec.IsActive,
		CreatedAt: time.UnixMilli(rec.CreatedAt),
		UpdatedAt: time.UnixMilli(rec.UpdatedAt),
	}
	if err := json.Unmarshal([]byte(rec.Plan), &sess.Plan); err != nil {
		return nil, fmt.Errorf("decode plan snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(rec.Settings), &sess.Settings); err != nil {
		return nil, fmt.Errorf("decode settings snapshot: %w", err)
	}
	return sess, nil
}

func startOfDayMillis(now time.Time) int64 {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location()).UnixMilli()
}

func healthScore(status string) int {
	switch status {
	case store.StatusActive:
		return 100
	case store.StatusPaused:
		return 80
	default:
		return 0
	}
}

// progress is descriptive only: this subsystem emits policy, it does not post.
func progress(sess *Session, now time.Time) string {
	if sess.Status == store.StatusPaused {
		return "paused by user"
	}
	if now.Sub(sess.CreatedAt) < 24*time.Hour {
		return "warming up: observing target communities"
	}
	return "running: engaging on schedule"
}
