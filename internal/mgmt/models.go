// Package mgmt provides the HTTP API for the outreach agent.
package mgmt

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/p-blackswan/outreach-agent/internal/plan"
	"github.com/p-blackswan/outreach-agent/internal/policy"
)

// Response is the uniform API envelope: a success flag plus either a data
// payload or an error message, never both.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func dataResponse(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(Response{Success: true, Data: data})
}

func errorResponse(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(Response{Success: false, Error: msg})
}

// --- Request DTOs ---

// AnalyzeRequest is the payload for POST /api/v1/automation/analyze.
type AnalyzeRequest struct {
	Story       string         `json:"story"`
	UserProfile map[string]any `json:"userProfile,omitempty"`
}

// StartRequest is the payload for POST /api/v1/automation/start.
type StartRequest struct {
	Story    string                 `json:"story"`
	Plan     *plan.Plan             `json:"plan"`
	Settings policy.SettingsRequest `json:"settings"`
}

// --- Response DTOs ---

// Analysis describes what the classifier saw in the story.
type Analysis struct {
	StoryLength     int      `json:"storyLength"`
	DetectedTopics  []string `json:"detectedTopics"`
	ConfidenceScore int      `json:"confidenceScore"`
}

// AnalyzeData is the data payload for /analyze.
type AnalyzeData struct {
	Plan     plan.Plan `json:"plan"`
	Analysis Analysis  `json:"analysis"`
}

// StartData is the data payload for /start.
type StartData struct {
	SessionID string          `json:"sessionId"`
	Status    string          `json:"status"`
	Plan      plan.Plan       `json:"plan"`
	Settings  policy.Settings `json:"settings"`
}

// StatusData is the data payload for /status.
type StatusData struct {
	IsActive     bool       `json:"isActive"`
	Status       string     `json:"status"`
	Progress     string     `json:"progress"`
	TodayActions int        `json:"todayActions"`
	HealthScore  int        `json:"healthScore"`
	Plan         *plan.Plan `json:"plan,omitempty"`
	SessionID    string     `json:"sessionId,omitempty"`
}

// StopData is the data payload for /emergency-stop.
type StopData struct {
	StoppedCount int `json:"stoppedCount"`
}

// ActivityItem is one audit entry in the /activity payload.
type ActivityItem struct {
	Action    string          `json:"action"`
	Target    string          `json:"target"`
	Result    string          `json:"result"`
	Metadata  json.RawMessage `json:"metadata"`
	CreatedAt int64           `json:"createdAt"`
}

// ActivityData is the data payload for /activity.
type ActivityData struct {
	Entries []ActivityItem `json:"entries"`
}
