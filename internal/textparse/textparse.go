// Package textparse holds the splitting rules for the free-text blobs the
// backend stores on leaderboard entries (skills, experience, projects).
//
// The backend does not return structured lists for these fields, so every
// view that needs items goes through this package instead of splitting ad hoc.
package textparse

import (
	"fmt"
	"strings"
)

// Skills splits a comma separated skills blob. Both ", " and "," are
// accepted; items are trimmed and empty items dropped.
func Skills(blob string) []string {
	return splitAny(blob, ",")
}

// SkillTokens splits on any of ',', ';' or '|'. Used where skills come from
// mixed sources and the separator is not guaranteed.
func SkillTokens(blob string) []string {
	return splitAny(blob, ",;|")
}

// Sentences splits a prose blob on '.'. A trailing period does not produce
// an empty item. Decimal numbers ("3.5 years") are split too, which matches
// what the backend-generated text has always looked like.
func Sentences(blob string) []string {
	return splitAny(blob, ".")
}

// Preview returns the first n items and how many were left out.
func Preview(items []string, n int) (shown []string, more int) {
	if n < 0 {
		n = 0
	}
	if len(items) <= n {
		return items, 0
	}
	return items[:n], len(items) - n
}

// PreviewLabel renders Preview as a single row label, e.g. "Go, SQL, Docker +2 more".
func PreviewLabel(items []string, n int) string {
	shown, more := Preview(items, n)
	label := strings.Join(shown, ", ")
	if more > 0 {
		if label != "" {
			label += " "
		}
		label += fmt.Sprintf("+%d more", more)
	}
	return label
}

func splitAny(blob, seps string) []string {
	parts := strings.FieldsFunc(blob, func(r rune) bool {
		return strings.ContainsRune(seps, r)
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
