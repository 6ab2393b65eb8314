package workflow

import (
	"strings"

	"github.com/calculate1024/goal-tracker/internal/gmail"
)

// Fuzzy matching gates. Containment only counts when both sides are at
// least minMatchLen long and the shorter side is at least minLengthRatio of
// the longer; short, generic subjects would otherwise match nearly anything.
const (
	minMatchLen    = 4
	minLengthRatio = 0.5
)

// subjectIndex maps normalized subjects back to their emails, preserving
// listing order so fuzzy ties resolve deterministically (first entry wins).
type subjectIndex struct {
	entries []subjectEntry
}

type subjectEntry struct {
	normalized string
	email      *gmail.Email
}

func newSubjectIndex(emails []gmail.Email) *subjectIndex {
	ix := &subjectIndex{entries: make([]subjectEntry, 0, len(emails))}
	for i := range emails {
		ix.entries = append(ix.entries, subjectEntry{
			normalized: normalizeSubject(emails[i].Subject),
			email:      &emails[i],
		})
	}
	return ix
}

// Match resolves a model-reported subject to a fetched email. Exact
// normalized matches always win; otherwise substring containment in either
// direction applies, gated by length and ratio.
func (ix *subjectIndex) Match(subject string) *gmail.Email {
	needle := normalizeSubject(subject)
	if needle == "" {
		return nil
	}

	for _, e := range ix.entries {
		if e.normalized == needle {
			return e.email
		}
	}

	for _, e := range ix.entries {
		if fuzzyMatch(needle, e.normalized) {
			return e.email
		}
	}
	return nil
}

func normalizeSubject(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func fuzzyMatch(a, b string) bool {
	if len(a) < minMatchLen || len(b) < minMatchLen {
		return false
	}
	shorter, longer := len(a), len(b)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	if float64(shorter)/float64(longer) < minLengthRatio {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
