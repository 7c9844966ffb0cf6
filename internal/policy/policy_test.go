package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestValidateSettings_Defaults(t *testing.T) {
	rb := DefaultRulebook()

	got := rb.ValidateSettings(SettingsRequest{})

	assert.Equal(t, 3, got.MaxPostsPerWeek)
	assert.Equal(t, 8, got.MaxCommentsPerDay)
	assert.Equal(t, 0.9, got.EngagementRatio)
	assert.True(t, got.SafetyChecksEnabled)
	assert.True(t, got.HumanLikeDelaysEnabled)
	assert.True(t, got.RespectSubredditRulesEnabled)
}

func TestValidateSettings_ClampsExcessiveRequests(t *testing.T) {
	rb := DefaultRulebook()

	got := rb.ValidateSettings(SettingsRequest{
		MaxPostsPerWeek: intPtr(10),
		EngagementRatio: floatPtr(0.5),
	})

	assert.Equal(t, 3, got.MaxPostsPerWeek)
	assert.Equal(t, 0.9, got.EngagementRatio)
	assert.Equal(t, 8, got.MaxCommentsPerDay)
}

func TestValidateSettings_AllowsValuesWithinLimits(t *testing.T) {
	rb := DefaultRulebook()

	got := rb.ValidateSettings(SettingsRequest{
		MaxPostsPerWeek:   intPtr(1),
		MaxCommentsPerDay: intPtr(15),
		EngagementRatio:   floatPtr(0.95),
	})

	assert.Equal(t, 1, got.MaxPostsPerWeek)
	assert.Equal(t, 15, got.MaxCommentsPerDay)
	assert.Equal(t, 0.95, got.EngagementRatio)
}

func TestValidateSettings_RatioAboveOnePassesThrough(t *testing.T) {
	// The floor is a floor, not a range check. A ratio above 1.0 is accepted
	// as-is; an executor treats anything >= 1.0 as fully non-promotional.
	rb := DefaultRulebook()

	got := rb.ValidateSettings(SettingsRequest{EngagementRatio: floatPtr(1.2)})

	assert.Equal(t, 1.2, got.EngagementRatio)
}

func TestValidateSettings_AlwaysCompliant(t *testing.T) {
	rb := DefaultRulebook()

	inputs := []SettingsRequest{
		{},
		{MaxPostsPerWeek: intPtr(-5)},
		{MaxPostsPerWeek: intPtr(100), MaxCommentsPerDay: intPtr(999)},
		{EngagementRatio: floatPtr(-1)},
		{MaxPostsPerWeek: intPtr(0), MaxCommentsPerDay: intPtr(0), EngagementRatio: floatPtr(0)},
	}

	for _, req := range inputs {
		got := rb.ValidateSettings(req)
		assert.GreaterOrEqual(t, got.MaxPostsPerWeek, 1)
		assert.LessOrEqual(t, got.MaxPostsPerWeek, rb.MaxPostsPerWeek)
		assert.GreaterOrEqual(t, got.MaxCommentsPerDay, 1)
		assert.LessOrEqual(t, got.MaxCommentsPerDay, rb.MaxCommentsPerDay)
		assert.GreaterOrEqual(t, got.EngagementRatio, rb.MinEngagementRatio())
		assert.True(t, got.SafetyChecksEnabled)
		assert.True(t, got.HumanLikeDelaysEnabled)
		assert.True(t, got.RespectSubredditRulesEnabled)
	}
}

func TestMinEngagementRatio(t *testing.T) {
	assert.InDelta(t, 0.9, DefaultRulebook().MinEngagementRatio(), 1e-9)
}
