// Package policy holds the fixed safety rulebook and the settings validator.
// The same Rulebook feeds both the numeric clamps applied to user settings and
// the descriptive safety text the plan synthesizer emits, so the described
// policy can never drift from the enforced one.
package policy

import "time"

// Rulebook is the fixed, process-wide set of safety ceilings and floors.
// It is not configurable through any API.
type Rulebook struct {
	MaxPostsPerWeek      int
	MaxCommentsPerDay    int
	MinDelayBetweenPosts time.Duration
	MaxPromotionalRatio  float64
}

// DefaultRulebook returns the safety rulebook every automation runs under.
func DefaultRulebook() Rulebook {
	return Rulebook{
		MaxPostsPerWeek:      3,
		MaxCommentsPerDay:    20,
		MinDelayBetweenPosts: 5 * time.Minute,
		MaxPromotionalRatio:  0.10,
	}
}

// MinEngagementRatio is the floor on the non-promotional share of activity.
func (r Rulebook) MinEngagementRatio() float64 {
	return 1 - r.MaxPromotionalRatio
}

// SettingsRequest is the user-submitted, possibly partial settings payload.
// Nil fields take the rulebook defaults.
type SettingsRequest struct {
	MaxPostsPerWeek   *int     `json:"maxPostsPerWeek,omitempty"`
	MaxCommentsPerDay *int     `json:"maxCommentsPerDay,omitempty"`
	EngagementRatio   *float64 `json:"engagementRatio,omitempty"`
}

// Settings is a fully-populated, policy-compliant configuration. Immutable
// once produced; the three safety booleans are always true.
type Settings struct {
	MaxPostsPerWeek              int     `json:"maxPostsPerWeek"`
	MaxCommentsPerDay            int     `json:"maxCommentsPerDay"`
	EngagementRatio              float64 `json:"engagementRatio"`
	SafetyChecksEnabled          bool    `json:"safetyChecksEnabled"`
	HumanLikeDelaysEnabled       bool    `json:"humanLikeDelaysEnabled"`
	RespectSubredditRulesEnabled bool    `json:"respectSubredditRulesEnabled"`
}

// Default comment budget when the caller leaves the field unset. Deliberately
// below the hard ceiling.
const defaultCommentsPerDay = 8

// ValidateSettings clamps a settings request against the rulebook. Total:
// never fails, always returns a compliant value. Posts and comments are
// clamped into their 1..ceiling ranges, the engagement ratio is floored (a
// ratio above the floor, even above 1.0, passes through unmodified), and the
// safety booleans are forced on regardless of input.
func (r Rulebook) ValidateSettings(req SettingsRequest) Settings {
	posts := r.MaxPostsPerWeek
	if req.MaxPostsPerWeek != nil {
		posts = clampInt(*req.MaxPostsPerWeek, 1, r.MaxPostsPerWeek)
	}

	comments := defaultCommentsPerDay
	if req.MaxCommentsPerDay != nil {
		comments = clampInt(*req.MaxCommentsPerDay, 1, r.MaxCommentsPerDay)
	}

	ratio := r.MinEngagementRatio()
	if req.EngagementRatio != nil {
		ratio = max(*req.EngagementRatio, r.MinEngagementRatio())
	}

	return Settings{
		MaxPostsPerWeek:              posts,
		MaxCommentsPerDay:            comments,
		EngagementRatio:              ratio,
		SafetyChecksEnabled:          true,
		HumanLikeDelaysEnabled:       true,
		RespectSubredditRulesEnabled: true,
	}
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
