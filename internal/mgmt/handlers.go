package mgmt

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/p-blackswan/outreach-agent/internal/classify"
	apperrors "github.com/p-blackswan/outreach-agent/internal/errors"
	"github.com/p-blackswan/outreach-agent/internal/health"
	"github.com/p-blackswan/outreach-agent/internal/metrics"
	"github.com/p-blackswan/outreach-agent/internal/plan"
	"github.com/p-blackswan/outreach-agent/internal/policy"
	"github.com/p-blackswan/outreach-agent/internal/session"
)

// minStoryLength is the minimum number of trimmed characters a story must
// have before it is worth classifying.
const minStoryLength = 20

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	controller *session.Controller
	rulebook   policy.Rulebook
	checker    *health.Checker
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewHandlers creates a Handlers instance.
func NewHandlers(ctrl *session.Controller, rb policy.Rulebook, checker *health.Checker, m *metrics.Metrics, logger zerolog.Logger) *Handlers {
	return &Handlers{
		controller: ctrl,
		rulebook:   rb,
		checker:    checker,
		metrics:    m,
		logger:     logger.With().Str("component", "handlers").Logger(),
	}
}

// AnalyzeStory handles POST /api/v1/automation/analyze. Pure request/response:
// classifies the story, synthesizes a plan, persists nothing.
func (h *Handlers) AnalyzeStory(c *fiber.Ctx) error {
	var req AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body: "+err.Error())
	}

	if len(strings.TrimSpace(req.Story)) < minStoryLength {
		return errorResponse(c, fiber.StatusBadRequest,
			"Please tell us a bit more about your project (at least 20 characters)")
	}

	signals := classify.Classify(req.Story)
	p := plan.Synthesize(h.rulebook, signals, req.Story)

	h.metrics.RecordPlan(string(signals.ProjectType))

	return dataResponse(c, fiber.StatusOK, AnalyzeData{
		Plan: p,
		Analysis: Analysis{
			StoryLength:     len(req.Story),
			DetectedTopics:  signals.DetectedTopics,
			ConfidenceScore: signals.Confidence,
		},
	})
}

// StartAutomation handles POST /api/v1/automation/start.
func (h *Handlers) StartAutomation(c *fiber.Ctx) error {
	var req StartRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body: "+err.Error())
	}

	if strings.TrimSpace(req.Story) == "" || req.Plan == nil {
		return errorResponse(c, fiber.StatusBadRequest, "Story and plan are required")
	}

	settings := h.rulebook.ValidateSettings(req.Settings)

	sess, err := h.controller.Start(c.Context(), callerID(c), req.Story, *req.Plan, settings)
	if err != nil {
		h.metrics.RecordControlAction(session.ActionStart, "failure")
		return h.controlError(c, "start", err)
	}

	h.metrics.RecordControlAction(session.ActionStart, "success")

	return dataResponse(c, fiber.StatusCreated, StartData{
		SessionID: sess.ID,
		Status:    sess.Status,
		Plan:      sess.Plan,
		Settings:  sess.Settings,
	})
}

// GetStatus handles GET /api/v1/automation/status.
func (h *Handlers) GetStatus(c *fiber.Ctx) error {
	report, err := h.controller.Status(c.Context(), callerID(c))
	if err != nil {
		return h.controlError(c, "status", err)
	}

	return dataResponse(c, fiber.StatusOK, StatusData{
		IsActive:     report.IsActive,
		Status:       report.Status,
		Progress:     report.Progress,
		TodayActions: report.TodayActions,
		HealthScore:  report.HealthScore,
		Plan:         report.Plan,
		SessionID:    report.SessionID,
	})
}

// Pause handles POST /api/v1/automation/pause.
func (h *Handlers) Pause(c *fiber.Ctx) error {
	if err := h.controller.Pause(c.Context(), callerID(c)); err != nil {
		h.metrics.RecordControlAction(session.ActionPause, "failure")
		return h.controlError(c, "pause", err)
	}
	h.metrics.RecordControlAction(session.ActionPause, "success")
	return dataResponse(c, fiber.StatusOK, fiber.Map{"status": "paused"})
}

// Resume handles POST /api/v1/automation/resume.
func (h *Handlers) Resume(c *fiber.Ctx) error {
	if err := h.controller.Resume(c.Context(), callerID(c)); err != nil {
		h.metrics.RecordControlAction(session.ActionResume, "failure")
		return h.controlError(c, "resume", err)
	}
	h.metrics.RecordControlAction(session.ActionResume, "success")
	return dataResponse(c, fiber.StatusOK, fiber.Map{"status": "active"})
}

// EmergencyStop handles POST /api/v1/automation/emergency-stop. Never fails
// for "nothing to stop": availability of the safety control comes first.
func (h *Handlers) EmergencyStop(c *fiber.Ctx) error {
	stopped, err := h.controller.EmergencyStop(c.Context(), callerID(c))
	if err != nil {
		h.metrics.RecordControlAction(session.ActionEmergencyStop, "failure")
		return h.controlError(c, "emergency_stop", err)
	}
	h.metrics.RecordControlAction(session.ActionEmergencyStop, "success")
	return dataResponse(c, fiber.StatusOK, StopData{StoppedCount: stopped})
}

// ListActivity handles GET /api/v1/automation/activity.
func (h *Handlers) ListActivity(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	entries, err := h.controller.RecentActivity(c.Context(), callerID(c), limit)
	if err != nil {
		return h.controlError(c, "activity", err)
	}

	items := make([]ActivityItem, 0, len(entries))
	for _, e := range entries {
		meta := json.RawMessage(e.Metadata)
		if !json.Valid(meta) {
			meta = json.RawMessage("{}")
		}
		items = append(items, ActivityItem{
			Action:    e.Action,
			Target:    e.Target,
			Result:    e.Result,
			Metadata:  meta,
			CreatedAt: e.CreatedAt,
		})
	}

	return dataResponse(c, fiber.StatusOK, ActivityData{Entries: items})
}

// Liveness handles GET /healthz.
func (h *Handlers) Liveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Readiness handles GET /readyz.
func (h *Handlers) Readiness(c *fiber.Ctx) error {
	if !h.checker.IsReady(c.Context()) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not_ready"})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

// controlError maps the failure taxonomy to HTTP statuses. Client errors are
// shown verbatim; anything else is logged for operators and reported
// generically.
func (h *Handlers) controlError(c *fiber.Ctx, op string, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		return errorResponse(c, fiber.StatusNotFound, "No matching automation session")
	case errors.Is(err, apperrors.ErrConflict):
		return errorResponse(c, fiber.StatusConflict, "An automation session is already active; stop it before starting a new one")
	default:
		h.logger.Error().Err(err).Str("op", op).Str("user_id", callerID(c)).Msg("operation failed")
		h.metrics.RecordError("mgmt", op)
		return errorResponse(c, fiber.StatusInternalServerError, "An internal error occurred")
	}
}
