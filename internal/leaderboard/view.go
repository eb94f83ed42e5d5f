package leaderboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/atssight/recruiter-desk/internal/models"
)

// View filters and orders leaderboard entries for display.
//
// An entry is kept when its candidate name or its skills blob contains the
// search term (case-insensitive) and, when favoritesOnly is set, it is a
// favorite. Scored entries come first, ordered by score descending; ties and
// unscored entries keep their input order. The input slice is not modified.
func View(entries []models.CandidateEntry, searchTerm string, favoritesOnly bool) []models.CandidateEntry {
	term := strings.ToLower(searchTerm)

	out := make([]models.CandidateEntry, 0, len(entries))
	for _, e := range entries {
		if favoritesOnly && !e.IsFavorite {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(e.CandidateName), term) &&
			!strings.Contains(strings.ToLower(e.Skills), term) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].MatchScore, out[j].MatchScore
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})

	return out
}

// RankBadge returns the display badge for a rank position
func RankBadge(rank *int) string {
	if rank == nil {
		return "—"
	}
	switch *rank {
	case 1:
		return "gold"
	case 2:
		return "silver"
	case 3:
		return "bronze"
	default:
		return fmt.Sprintf("#%d", *rank)
	}
}

// Score bands used to colour rows
const (
	BandStrong   = "Strong"
	BandModerate = "Moderate"
	BandWeak     = "Weak"
	BandNoJD     = "No JD"
)

// ScoreBand classifies a match score
func ScoreBand(score *float64) string {
	if score == nil {
		return BandNoJD
	}
	switch {
	case *score >= 0.8:
		return BandStrong
	case *score >= 0.6:
		return BandModerate
	default:
		return BandWeak
	}
}
