package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atssight/recruiter-desk/internal/models"
)

func score(v float64) *float64 { return &v }
func rank(v int) *int { return &v }

func ids(entries []models.CandidateEntry) []int64 {
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func exampleEntries() []models.CandidateEntry {
	return []models.CandidateEntry{
		{ID: 1, CandidateName: "Alice", MatchScore: score(0.4)},
		{ID: 2, CandidateName: "Bob", IsFavorite: true},
		{ID: 3, CandidateName: "Cara", MatchScore: score(0.9)},
	}
}

func TestViewExampleScenario(t *testing.T) {
	entries := exampleEntries()

	assert.Equal(t, []int64{3, 1, 2}, ids(View(entries, "", false)))
	assert.Equal(t, []int64{2}, ids(View(entries, "", true)))
}

func TestViewSearch(t *testing.T) {
	entries := []models.CandidateEntry{
		{ID: 1, CandidateName: "Alice Go", Skills: "Python, SQL"},
		{ID: 2, CandidateName: "Bob", Skills: "golang, Docker"},
		{ID: 3, CandidateName: "Cara", Skills: "Java"},
	}

	tests := []struct {
		name string
		term string
		want []int64
	}{
		{"empty matches all", "", []int64{1, 2, 3}},
		{"name or skills", "go", []int64{1, 2}},
		{"case insensitive", "DOCKER", []int64{2}},
		{"name only", "cara", []int64{3}},
		{"no match", "rust", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(View(entries, tt.term, false)))
		})
	}
}

func TestViewSortStability(t *testing.T) {
	entries := []models.CandidateEntry{
		{ID: 1},
		{ID: 2, MatchScore: score(0.7)},
		{ID: 3},
		{ID: 4, MatchScore: score(0.7)},
		{ID: 5, MatchScore: score(0.95)},
		{ID: 6, MatchScore: score(0)},
	}

	got := View(entries, "", false)

	assert.Equal(t, []int64{5, 2, 4, 6, 1, 3}, ids(got))
}

func TestViewFavoritesSubset(t *testing.T) {
	entries := []models.CandidateEntry{
		{ID: 1, CandidateName: "Ann", IsFavorite: true, MatchScore: score(0.2)},
		{ID: 2, CandidateName: "Ben", MatchScore: score(0.9)},
		{ID: 3, CandidateName: "Anya", IsFavorite: true},
	}

	all := View(entries, "an", false)
	favs := View(entries, "an", true)

	for _, f := range favs {
		assert.True(t, f.IsFavorite)
		assert.Contains(t, ids(all), f.ID)
	}
	assert.Equal(t, []int64{1, 3}, ids(favs))
}

func TestViewDoesNotMutateInput(t *testing.T) {
	entries := exampleEntries()
	before := make([]models.CandidateEntry, len(entries))
	copy(before, entries)

	first := View(entries, "a", false)
	second := View(entries, "a", false)

	require.Equal(t, first, second)
	assert.Equal(t, before, entries)
}

func TestRankBadge(t *testing.T) {
	tests := []struct {
		rank *int
		want string
	}{
		{nil, "—"},
		{rank(1), "gold"},
		{rank(2), "silver"},
		{rank(3), "bronze"},
		{rank(4), "#4"},
		{rank(12), "#12"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, RankBadge(tt.rank))
		})
	}
}

func TestScoreBand(t *testing.T) {
	tests := []struct {
		name  string
		score *float64
		want  string
	}{
		{"absent", nil, BandNoJD},
		{"strong boundary", score(0.8), BandStrong},
		{"moderate", score(0.65), BandModerate},
		{"moderate boundary", score(0.6), BandModerate},
		{"weak", score(0.59), BandWeak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreBand(tt.score))
		})
	}
}
