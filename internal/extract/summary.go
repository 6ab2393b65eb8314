package extract

import (
	"fmt"
	"sort"
	"strings"
)

// BuildSummaryEmail renders an analysis result into the subject and body of
// the notification email. The rendering is deterministic for a given result.
func BuildSummaryEmail(r *Result) (subject, body string) {
	subject = fmt.Sprintf("Goal Tracker: %d new goal(s) from your inbox", len(r.Goals))

	var b strings.Builder
	fmt.Fprintf(&b, "Analyzed %d email(s): %d need action, %d filtered out.\n\n",
		r.Summary.TotalEmails, r.Summary.ActionRequired, r.Summary.FilteredOut)

	if r.Summary.TopPriority != "" {
		fmt.Fprintf(&b, "Top priority: %s\n\n", r.Summary.TopPriority)
	}

	if len(r.Goals) > 0 {
		b.WriteString("New goals:\n")
		for _, prio := range []string{PriorityHigh, PriorityMedium, PriorityLow} {
			for _, g := range r.Goals {
				if g.Priority != prio {
					continue
				}
				fmt.Fprintf(&b, "  [%s] %s (%s)", g.Priority, g.Title, g.Category)
				if g.Deadline != "" {
					fmt.Fprintf(&b, " due %s", g.Deadline)
				}
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	if len(r.Summary.Categories) > 0 {
		b.WriteString("By category:\n")
		names := make([]string, 0, len(r.Summary.Categories))
		for name := range r.Summary.Categories {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "  %s: %d\n", name, r.Summary.Categories[name])
		}
		b.WriteString("\n")
	}

	if len(r.Summary.SkippedSubjects) > 0 {
		b.WriteString("Noted but skipped:\n")
		for _, subj := range r.Summary.SkippedSubjects {
			fmt.Fprintf(&b, "  - %s\n", subj)
		}
	}

	return subject, b.String()
}
