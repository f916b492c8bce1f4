package internal

import (
	"sort"
	"strings"
)

// Activity categories form a closed set; classification always lands on
// exactly one of them.
const (
	CategoryDevelopment = "development"
	CategoryMaintenance = "maintenance"
	CategoryResearch    = "research"
	CategoryWriting     = "writing"
	CategoryMeeting     = "meeting"
	CategoryGeneral     = "general"
)

// Classifier maps free text to one category from the closed set. It is a
// pure function of its input, independently testable and swappable.
type Classifier interface {
	Classify(text string) string
}

// KeywordClassifier is the default Classifier, scoring keyword hits per
// category and picking the highest-scoring one
type KeywordClassifier struct {
	keywords map[string][]string
}

// NewKeywordClassifier creates a KeywordClassifier with the default
// keyword table
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		keywords: map[string][]string{
			CategoryDevelopment: {"feat", "feature", "implement", "add", "build", "refactor", "api", "endpoint"},
			CategoryMaintenance: {"fix", "bug", "patch", "upgrade", "bump", "dependency", "cleanup", "ci", "lint"},
			CategoryResearch:    {"experiment", "prototype", "spike", "benchmark", "evaluate", "investigate"},
			CategoryWriting:     {"doc", "docs", "readme", "documentation", "changelog", "comment"},
			CategoryMeeting:     {"meeting", "review", "sync", "standup", "planning", "retro"},
		},
	}
}

// Classify returns the best-matching category for the text, or
// CategoryGeneral when nothing matches. Ties break alphabetically so the
// result is deterministic.
func (c *KeywordClassifier) Classify(text string) string {
	lowered := strings.ToLower(text)

	best := CategoryGeneral
	bestScore := 0

	categories := make([]string, 0, len(c.keywords))
	for category := range c.keywords {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		score := 0
		for _, kw := range c.keywords[category] {
			score += strings.Count(lowered, kw)
		}
		if score > bestScore {
			best = category
			bestScore = score
		}
	}
	return best
}

// CategorizeSessions assigns each session a category from its attached
// commit messages. Sessions without commits stay CategoryGeneral.
func CategorizeSessions(sessions []*WorkSession, classifier Classifier) {
	for _, s := range sessions {
		if len(s.Commits) == 0 {
			s.Category = CategoryGeneral
			continue
		}
		var sb strings.Builder
		for _, commit := range s.Commits {
			sb.WriteString(commit.Message)
			sb.WriteString("\n")
		}
		s.Category = classifier.Classify(sb.String())
	}
}
