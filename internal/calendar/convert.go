package calendar

import (
	"fmt"
	"strings"

	"github.com/iksnae/worklog-sync/internal"
)

// justifications are the fixed per-category description templates. The %s
// is the session date.
var justifications = map[string]string{
	internal.CategoryDevelopment: "Software development work on %s: feature implementation and coding, evidenced by commit history.",
	internal.CategoryMaintenance: "Maintenance work on %s: bug fixes, dependency updates, and housekeeping, evidenced by commit history.",
	internal.CategoryResearch:    "Research and experimentation on %s: prototyping and technical evaluation.",
	internal.CategoryWriting:     "Documentation work on %s: writing and revising project documentation.",
	internal.CategoryMeeting:     "Collaboration on %s: reviews, planning, and coordination.",
	internal.CategoryGeneral:     "Work session on %s reconstructed from system activity records.",
}

// colorIDs maps categories onto Google Calendar color ids
var colorIDs = map[string]string{
	internal.CategoryDevelopment: "9",  // blueberry
	internal.CategoryMaintenance: "6",  // tangerine
	internal.CategoryResearch:    "3",  // grape
	internal.CategoryWriting:     "2",  // sage
	internal.CategoryMeeting:     "5",  // banana
	internal.CategoryGeneral:     "8",  // graphite
}

// ToEventPayload converts a surviving work session into the calendar event
// the synchronizer will create. The session id, category, declared hours,
// and source type travel in private extended properties so later runs can
// recognize the event as pipeline-owned.
func ToEventPayload(s *internal.WorkSession) *EventPayload {
	category := s.Category
	if category == "" {
		category = internal.CategoryGeneral
	}

	template, ok := justifications[category]
	if !ok {
		template = justifications[internal.CategoryGeneral]
	}

	var desc strings.Builder
	fmt.Fprintf(&desc, template, s.Date())
	fmt.Fprintf(&desc, "\n\nDeclared hours: %.2f", s.WorkHours)
	for _, br := range s.Breaks {
		fmt.Fprintf(&desc, "\n%s break %s–%s", br.Kind, br.Start.Format("15:04"), br.End().Format("15:04"))
	}
	if len(s.Commits) > 0 {
		fmt.Fprintf(&desc, "\n\nCommits (%d):", len(s.Commits))
		for _, c := range s.Commits {
			line := strings.SplitN(c.Message, "\n", 2)[0]
			fmt.Fprintf(&desc, "\n  %s %s [%s]", shortHash(c.Hash), line, c.Repository)
		}
	}

	title := fmt.Sprintf("Work: %s (%.1fh)", category, s.WorkHours)

	return &EventPayload{
		Title:       title,
		Description: desc.String(),
		ColorID:     colorIDs[category],
		Start:       s.StartTime,
		End:         s.EndTime,
		Private: map[string]string{
			PropSessionID: s.SessionID,
			PropCategory:  category,
			PropWorkHours: fmt.Sprintf("%.2f", s.WorkHours),
			PropSource:    string(s.Source),
		},
	}
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
