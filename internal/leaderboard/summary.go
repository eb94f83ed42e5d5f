package leaderboard

import (
	"sort"

	"github.com/atssight/recruiter-desk/internal/models"
	"github.com/atssight/recruiter-desk/internal/textparse"
)

// SkillCount is one row of the skill frequency table
type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// Summary aggregates all leaderboards of the recruiter
type Summary struct {
	TotalCandidates int                     `json:"totalCandidates"`
	TotalPositions  int                     `json:"totalPositions"`
	TotalFavorites  int                     `json:"totalFavorites"`
	AverageScore    float64                 `json:"averageScore"` // percent, unscored entries count as 0
	TopCandidates   []models.CandidateEntry `json:"topCandidates"`
	TopSkills       []SkillCount            `json:"topSkills"`
}

const (
	summaryTopCandidates = 5
	summaryTopSkills     = 8
)

// Summarize computes the cross-leaderboard overview
func Summarize(leaderboards []models.Leaderboard) Summary {
	s := Summary{
		TotalPositions: len(leaderboards),
		TopCandidates:  []models.CandidateEntry{},
		TopSkills:      []SkillCount{},
	}

	var all []models.CandidateEntry
	for _, lb := range leaderboards {
		all = append(all, lb.Entries...)
		s.TotalFavorites += lb.FavoriteCount()
	}
	s.TotalCandidates = len(all)
	if len(all) == 0 {
		return s
	}

	var sum float64
	freq := make(map[string]int)
	var order []string
	for _, e := range all {
		if e.MatchScore != nil {
			sum += *e.MatchScore
		}
		for _, skill := range textparse.SkillTokens(e.Skills) {
			if _, seen := freq[skill]; !seen {
				order = append(order, skill)
			}
			freq[skill]++
		}
	}
	s.AverageScore = sum / float64(len(all)) * 100

	scored := make([]models.CandidateEntry, 0, len(all))
	for _, e := range all {
		if e.HasScore() {
			scored = append(scored, e)
		}
	}
	scored = View(scored, "", false)
	if len(scored) > summaryTopCandidates {
		scored = scored[:summaryTopCandidates]
	}
	s.TopCandidates = scored

	for _, skill := range order {
		s.TopSkills = append(s.TopSkills, SkillCount{Skill: skill, Count: freq[skill]})
	}
	sort.SliceStable(s.TopSkills, func(i, j int) bool {
		return s.TopSkills[i].Count > s.TopSkills[j].Count
	})
	if len(s.TopSkills) > summaryTopSkills {
		s.TopSkills = s.TopSkills[:summaryTopSkills]
	}

	return s
}
