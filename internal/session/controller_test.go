package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-blackswan/outreach-agent/internal/audit"
	apperrors "github.com/p-blackswan/outreach-agent/internal/errors"
	"github.com/p-blackswan/outreach-agent/internal/classify"
	"github.com/p-blackswan/outreach-agent/internal/plan"
	"github.com/p-blackswan/outreach-agent/internal/policy"
	"github.com/p-blackswan/outreach-agent/internal/store"
)

func newTestController(t *testing.T) (*Controller, *store.Store) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	rec := audit.NewRecorder(st, zerolog.Nop())
	return NewController(st, rec, zerolog.Nop()), st
}

func testPlan() plan.Plan {
	rb := policy.DefaultRulebook()
	return plan.Synthesize(rb, classify.Signals{
		ProjectType: classify.TypeSaaS,
		Stage:       classify.StageBuilding,
		Confidence:  75,
	}, "story")
}

func testSettings() policy.Settings {
	return policy.DefaultRulebook().ValidateSettings(policy.SettingsRequest{})
}

const testStory = "I'm building a SaaS dashboard, 40% complete, want more user feedback"

func TestStart(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()

	sess, err := c.Start(ctx, "user-1", testStory, testPlan(), testSettings())
	require.NoError(t, err)

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "user-1", sess.UserID)
	assert.Equal(t, store.StatusActive, sess.Status)
	assert.True(t, sess.IsActive)
	assert.Equal(t, testStory, sess.Story)
	assert.Equal(t, testPlan(), sess.Plan)
	assert.True(t, sess.Settings.SafetyChecksEnabled)
}

func TestStart_RequiresStoryAndPlan(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()

	_, err := c.Start(ctx, "user-1", "   ", testPlan(), testSettings())
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = c.Start(ctx, "user-1", testStory, plan.Plan{}, testSettings())
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestStart_ConflictWhenActiveSessionExists(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()

	_, err := c.Start(ctx, "user-1", testStory, testPlan(), testSettings())
	require.NoError(t, err)

	_, err = c.Start(ctx, "user-1", testStory, testPlan(), testSettings())
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestStart_AllowedAfterEmergencyStop(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()

	_, err := c.Start(ctx, "user-1", testStory, testPlan(), testSettings())
	require.NoError(t, err)

	stopped, err := c.EmergencyStop(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stopped)

	_, err = c.Start(ctx, "user-1", testStory, testPlan(), testSettings())
	require.NoError(t, err)
}

func TestStatus_NoSession(t *testing.T) {
	c, _ := newTestController(t)

	report, err := c.Status(context.Background(), "user-1")
	require.NoError(t, err)

	assert.False(t, report.IsActive)
	assert.Equal(t, store.StatusStopped, report.Status)
	assert.Equal(t, 0, report.HealthScore)
	assert.Nil(t, report.Plan)
	assert.Empty(t, report.SessionID)
}

func TestStatus_ActiveSession(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()

	sess, err := c.Start(ctx, "user-1", testStory, testPlan(), testSettings())
	require.NoError(t, err)

	report, err := c.Status(ctx, "user-1")
	require.NoError(t, err)

	assert.True(t, report.IsActive)
	assert.Equal(t, store.StatusActive, report.Status)
	assert.Equal(t, sess.ID, report.SessionID)
	assert.Equal(t, 100, report.HealthScore)
	assert.Contains(t, report.Progress, "warming up")
	require.NotNil(t, report.Plan)
	assert.Equal(t, testPlan(), *report.Plan)
	// The start action itself was audited today.
	assert.Equal(t, 1, report.TodayActions)
}

func TestPauseResume(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()

	_, err := c.Start(ctx, "user-1", testStory, testPlan(), testSettings())
	require.NoError(t, err)

	require.NoError(t, c.Pause(ctx, "user-1"))

	report, err := c.Status(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, report.IsActive, "paused session remains the active session")
	assert.Equal(t, store.StatusPaused, report.Status)
	assert.Equal(t, 80, report.HealthScore)
	assert.Equal(t, "paused by user", report.Progress)

	require.NoError(t, c.Resume(ctx, "user-1"))

	report, err = c.Status(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, store.StatusActive, report.Status)
}

func TestPause_TwiceFails(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()

	_, err := c.Start(ctx, "user-1", testStory, testPlan(), testSettings())
	require.NoError(t, err)

	require.NoError(t, c.Pause(ctx, "user-1"))

	err = c.Pause(ctx, "user-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestResume_WithoutPausedSessionFails(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()

	err := c.Resume(ctx, "user-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = c.Start(ctx, "user-1", testStory, testPlan(), testSettings())
	require.NoError(t, err)

	// Session is active, not paused.
	err = c.Resume(ctx, "user-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEmergencyStop_NothingToStopStillAudits(t *testing.T) {
	c, st := newTestController(t)
	ctx := context.Background()

	stopped, err := c.EmergencyStop(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, stopped)

	entries, err := st.ListActivity(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ActionEmergencyStop, entries[0].Action)
	assert.Equal(t, audit.ResultSuccess, entries[0].Result)
	assert.Contains(t, entries[0].Metadata, `"stopped_count":0`)
	assert.Contains(t, entries[0].Metadata, "user_emergency_stop")
}

func TestEmergencyStop_Idempotent(t *testing.T) {
	c, st := newTestController(t)
	ctx := context.Background()

	_, err := c.Start(ctx, "user-1", testStory, testPlan(), testSettings())
	require.NoError(t, err)

	first, err := c.EmergencyStop(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := c.EmergencyStop(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, second)

	// One audit entry per invocation, plus the start entry.
	entries, err := st.ListActivity(ctx, "user-1", 10)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestControlActions_AreAudited(t *testing.T) {
	c, st := newTestController(t)
	ctx := context.Background()

	_, err := c.Start(ctx, "user-1", testStory, testPlan(), testSettings())
	require.NoError(t, err)
	require.NoError(t, c.Pause(ctx, "user-1"))
	require.NoError(t, c.Resume(ctx, "user-1"))

	entries, err := st.ListActivity(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	actions := []string{entries[2].Action, entries[1].Action, entries[0].Action}
	assert.Equal(t, []string{ActionStart, ActionPause, ActionResume}, actions)
}
