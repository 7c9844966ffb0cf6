// Package plan synthesizes a bounded outreach plan from classifier signals.
// Pure and deterministic: the same signals and rulebook always produce the
// same plan. The schedule, engagement and safety text is rendered from the
// shared policy rulebook so the numbers users read are the numbers the
// validator enforces.
package plan

import (
	"fmt"

	"github.com/p-blackswan/outreach-agent/internal/classify"
	"github.com/p-blackswan/outreach-agent/internal/policy"
)

// MaxTargetCommunities is a hard cap, not a preference. Plans never target
// more communities than this regardless of how many the lookup table holds.
const MaxTargetCommunities = 3

// Plan is the policy-compliant outreach configuration handed to an external
// executor. Immutable once produced.
type Plan struct {
	TargetCommunities []string `json:"targetCommunities"`
	ContentStrategy   string   `json:"contentStrategy"`
	PostingSchedule   string   `json:"postingSchedule"`
	EngagementPlan    string   `json:"engagementPlan"`
	SafetyMeasures    []string `json:"safetyMeasures"`
	Confidence        int      `json:"confidence"`
}

var communitiesByType = map[classify.ProjectType][]string{
	classify.TypeSaaS:      {"r/SaaS", "r/startups", "r/Entrepreneur", "r/indiehackers", "r/smallbusiness"},
	classify.TypeEcommerce: {"r/ecommerce", "r/shopify", "r/EntrepreneurRideAlong", "r/smallbusiness"},
	classify.TypeMobile:    {"r/apps", "r/androidapps", "r/iosapps", "r/SideProject", "r/startups"},
	classify.TypeContent:   {"r/blogging", "r/podcasting", "r/NewTubers", "r/content_marketing"},
}

// defaultCommunities is the fallback for general or unknown project types.
var defaultCommunities = []string{"r/SideProject", "r/startups"}

// Synthesize builds an automation plan from signals. The story text is part
// of the contract for future strategy refinement but does not influence the
// output yet.
func Synthesize(rb policy.Rulebook, sig classify.Signals, story string) Plan {
	_ = story

	return Plan{
		TargetCommunities: targetCommunities(sig.ProjectType),
		ContentStrategy:   contentStrategy(sig.ProjectType, sig.Stage),
		PostingSchedule:   postingSchedule(rb),
		EngagementPlan:    engagementPlan(rb),
		SafetyMeasures:    safetyMeasures(rb),
		Confidence:        sig.Confidence,
	}
}

func targetCommunities(pt classify.ProjectType) []string {
	list, ok := communitiesByType[pt]
	if !ok {
		list = defaultCommunities
	}
	if len(list) > MaxTargetCommunities {
		list = list[:MaxTargetCommunities]
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// contentStrategy selects the strategy text for a (type, stage) pair.
// Stage-specific strategies exist for three combinations only; everything
// else degrades through the fallback chain: exact pair, then the type's
// building-stage strategy, then the generic line.
func contentStrategy(pt classify.ProjectType, st classify.Stage) string {
	if s, ok := strategyFor(pt, st); ok {
		return s
	}
	if s, ok := strategyFor(pt, classify.StageBuilding); ok {
		return s
	}
	return genericStrategy
}

const genericStrategy = "Participate genuinely in community discussions, share what you are learning, " +
	"and mention the project only where the community's rules explicitly allow it."

func strategyFor(pt classify.ProjectType, st classify.Stage) (string, bool) {
	switch {
	case pt == classify.TypeSaaS && st == classify.StageBuilding:
		return "Share build-in-public progress updates and technical lessons; ask for feedback " +
			"on specific features instead of promoting the product.", true
	case pt == classify.TypeSaaS && st == classify.StageLaunched:
		return "Write a launch retrospective with real numbers and answer every question in the " +
			"comments before linking anywhere.", true
	case pt == classify.TypeEcommerce && st == classify.StageGrowing:
		return "Discuss operational lessons (fulfilment, ad spend, margins) and contribute to the " +
			"weekly community threads where store links are welcome.", true
	default:
		return "", false
	}
}

func postingSchedule(rb policy.Rulebook) string {
	return fmt.Sprintf("Up to %d posts per week, spread across different days, with at least %d minutes between posts.",
		rb.MaxPostsPerWeek, int(rb.MinDelayBetweenPosts.Minutes()))
}

func engagementPlan(rb policy.Rulebook) string {
	return fmt.Sprintf("Comment, answer questions and join discussions so that at least %.0f%% of all activity is non-promotional.",
		rb.MinEngagementRatio()*100)
}

func safetyMeasures(rb policy.Rulebook) []string {
	return []string{
		fmt.Sprintf("Hard caps: %d posts per week and %d comments per day.", rb.MaxPostsPerWeek, rb.MaxCommentsPerDay),
		fmt.Sprintf("Human-like delays between actions, never less than %d minutes between posts.", int(rb.MinDelayBetweenPosts.Minutes())),
		"Every community's rules are checked before posting; communities that ban self-promotion are skipped.",
		fmt.Sprintf("At most %.0f%% of activity may be promotional; the rest is genuine engagement.", rb.MaxPromotionalRatio*100),
	}
}
