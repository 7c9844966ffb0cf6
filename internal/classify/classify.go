// Package classify turns a free-text project story into structured signals:
// project type, stage, goal tags, and a confidence score. Matching is plain
// keyword containment, deterministic and side-effect-free; the HTTP boundary
// guarantees the story is at least 20 trimmed characters before it gets here.
package classify

import "strings"

// ProjectType is the kind of project described in a story.
type ProjectType string

const (
	TypeSaaS      ProjectType = "saas"
	TypeEcommerce ProjectType = "ecommerce"
	TypeMobile    ProjectType = "mobile"
	TypeContent   ProjectType = "content"
	TypeGeneral   ProjectType = "general"
)

// Stage is how far along the project is.
type Stage string

const (
	StageIdea     Stage = "idea"
	StageBuilding Stage = "building"
	StageLaunched Stage = "launched"
	StageGrowing  Stage = "growing"
)

// Goal is an outreach objective detected in the story.
type Goal string

const (
	GoalFeedback  Goal = "feedback"
	GoalGrowth    Goal = "growth"
	GoalSales     Goal = "sales"
	GoalCommunity Goal = "community"
)

// Signals is the classifier output consumed by the plan synthesizer.
type Signals struct {
	ProjectType ProjectType `json:"projectType"`
	Stage       Stage       `json:"stage"`
	Goals       []Goal      `json:"goals"`

	// DetectedTopics is reserved for a future topic extractor and is always
	// empty in this version. Kept so the analysis payload shape is stable.
	DetectedTopics []string `json:"detectedTopics"`

	Confidence int `json:"confidence"`
}

// Keyword groups are tested in declaration order; the first group with any
// matching keyword wins for type and stage. Goal groups accumulate instead.
var typeGroups = []struct {
	value    ProjectType
	keywords []string
}{
	{TypeSaaS, []string{"saas", "software as a service", "b2b", "dashboard", "subscription"}},
	{TypeEcommerce, []string{"ecommerce", "e-commerce", "shopify", "online store", "dropship"}},
	{TypeMobile, []string{"mobile app", "ios", "android", "app store", "flutter"}},
	{TypeContent, []string{"newsletter", "blog", "podcast", "youtube", "course"}},
}

var stageGroups = []struct {
	value    Stage
	keywords []string
}{
	{StageIdea, []string{"idea", "concept", "validating", "prototype"}},
	{StageBuilding, []string{"building", "developing", "working on", "mvp"}},
	{StageLaunched, []string{"launched", "just released", "went live", "shipped"}},
	{StageGrowing, []string{"growing", "scaling", "paying customers", "mrr"}},
}

var goalGroups = []struct {
	value    Goal
	keywords []string
}{
	{GoalFeedback, []string{"feedback", "beta", "early users", "validation"}},
	{GoalGrowth, []string{"growth", "grow", "traffic", "awareness", "more users"}},
	{GoalSales, []string{"sales", "revenue", "customers", "paying"}},
	{GoalCommunity, []string{"community", "audience", "engagement"}},
}

// Classify extracts signals from a project story. Same text in, same signals
// out, every time.
func Classify(story string) Signals {
	text := strings.ToLower(story)

	sig := Signals{
		ProjectType:    TypeGeneral,
		Stage:          StageBuilding,
		Goals:          []Goal{},
		DetectedTopics: []string{},
	}

	for _, g := range typeGroups {
		if containsAny(text, g.keywords) {
			sig.ProjectType = g.value
			break
		}
	}

	for _, g := range stageGroups {
		if containsAny(text, g.keywords) {
			sig.Stage = g.value
			break
		}
	}

	for _, g := range goalGroups {
		if containsAny(text, g.keywords) {
			sig.Goals = append(sig.Goals, g.value)
		}
	}

	sig.Confidence = scoreConfidence(story, text)
	return sig
}

// maxConfidence caps the score below 100 so the classifier never implies
// certainty about a keyword match.
const maxConfidence = 95

func scoreConfidence(story, lower string) int {
	score := 50

	if len(story) > 200 {
		score += 20
	}
	if len(story) > 500 {
		score += 10
	}
	if strings.ContainsAny(story, "0123456789%") {
		score += 15
	}
	if strings.Contains(lower, "month") || strings.Contains(lower, "week") {
		score += 10
	}
	if containsAny(lower, []string{"want", "need", "goal"}) {
		score += 10
	}

	return min(score, maxConfidence)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
