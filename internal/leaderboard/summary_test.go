package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atssight/recruiter-desk/internal/models"
)

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)

	assert.Zero(t, s.TotalCandidates)
	assert.Zero(t, s.TotalPositions)
	assert.Zero(t, s.AverageScore)
	assert.Empty(t, s.TopCandidates)
	assert.Empty(t, s.TopSkills)
}

func TestSummarize(t *testing.T) {
	lbs := []models.Leaderboard{
		{ID: 1, Entries: []models.CandidateEntry{
			{ID: 1, CandidateName: "Alice", MatchScore: score(0.4), Skills: "Go, SQL"},
			{ID: 2, CandidateName: "Bob", IsFavorite: true, Skills: "Go; Docker"},
		}},
		{ID: 2, Entries: []models.CandidateEntry{
			{ID: 3, CandidateName: "Cara", MatchScore: score(0.8), Skills: "SQL|Go"},
		}},
	}

	s := Summarize(lbs)

	assert.Equal(t, 3, s.TotalCandidates)
	assert.Equal(t, 2, s.TotalPositions)
	assert.Equal(t, 1, s.TotalFavorites)
	// (0.4 + 0 + 0.8) / 3
	assert.InDelta(t, 40.0, s.AverageScore, 0.0001)
	assert.Equal(t, []int64{3, 1}, ids(s.TopCandidates))
	assert.Equal(t, []SkillCount{{"Go", 3}, {"SQL", 2}, {"Docker", 1}}, s.TopSkills)
}

func TestSummarizeLimits(t *testing.T) {
	var entries []models.CandidateEntry
	skills := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	for i, sk := range skills {
		entries = append(entries, models.CandidateEntry{
			ID:         int64(i + 1),
			MatchScore: score(float64(i) / 10),
			Skills:     sk,
		})
	}

	s := Summarize([]models.Leaderboard{{ID: 1, Entries: entries}})

	assert.Len(t, s.TopCandidates, 5)
	assert.Equal(t, int64(10), s.TopCandidates[0].ID)
	assert.Len(t, s.TopSkills, 8)
}
