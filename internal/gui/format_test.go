package gui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atssight/recruiter-desk/internal/dashboard"
	"github.com/atssight/recruiter-desk/internal/leaderboard"
	"github.com/atssight/recruiter-desk/internal/models"
)

func score(v float64) *float64 { return &v }
func rank(v int) *int          { return &v }

func TestEntryCell(t *testing.T) {
	scored := models.CandidateEntry{CandidateName: "Cara", RankPosition: rank(1), MatchScore: score(0.856), Skills: "Go, Kafka, SQL, Docker", IsFavorite: true}
	unscored := models.CandidateEntry{CandidateName: "Bob", Skills: ""}

	tests := []struct {
		name  string
		entry models.CandidateEntry
		col   int
		want  string
	}{
		{"rank badge", scored, 0, "gold"},
		{"name", scored, 1, "Cara"},
		{"match percent", scored, 2, "86%"},
		{"band", scored, 3, "Strong"},
		{"favorite", scored, 4, "★"},
		{"skills preview", scored, 5, "Go, Kafka, SQL +1 more"},
		{"unscored rank", unscored, 0, "—"},
		{"unscored match", unscored, 2, "—"},
		{"unscored band", unscored, 3, "No JD"},
		{"not favorite", unscored, 4, "☆"},
		{"out of range", scored, 9, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, entryCell(tt.entry, tt.col))
		})
	}
	assert.Len(t, entryHeaders, 6)
}

func TestDetailMarkdown(t *testing.T) {
	entry := models.CandidateEntry{CandidateName: "Alice", Skills: "Go, SQL", Experience: "Built APIs. Led team."}

	t.Run("idle", func(t *testing.T) {
		assert.Contains(t, detailMarkdown(dashboard.CandidateDetail{State: dashboard.StateIdle}), "Select a candidate")
	})

	t.Run("loading", func(t *testing.T) {
		md := detailMarkdown(dashboard.CandidateDetail{State: dashboard.StateLoading, Entry: &entry})
		assert.Contains(t, md, "Alice")
		assert.Contains(t, md, "Loading report")
	})

	t.Run("failed shows fallback", func(t *testing.T) {
		md := detailMarkdown(dashboard.CandidateDetail{
			State:    dashboard.StateFailed,
			Entry:    &entry,
			Error:    "report generation failed",
			Fallback: &dashboard.Fallback{Skills: []string{"Go", "SQL"}, Experience: entry.Experience},
		})
		assert.Contains(t, md, "report generation failed")
		assert.Contains(t, md, "- Go\n")
		assert.Contains(t, md, "- Led team\n")
		assert.NotContains(t, md, "Hackathons")
	})

	t.Run("loaded report", func(t *testing.T) {
		years := 6
		jd := 72.0
		md := detailMarkdown(dashboard.CandidateDetail{
			State: dashboard.StateLoaded,
			Entry: &entry,
			Report: &models.CandidateReport{
				CandidateName:        "Alice",
				RankPosition:         rank(2),
				OverallScore:         0.81,
				JDMatchPercentage:    &jd,
				MissingSkills:        []string{"Rust"},
				ExperienceLevel:      "Senior",
				TotalYearsExperience: &years,
				HiringRecommendation: "Interview",
			},
		})
		assert.Contains(t, md, "## Alice")
		assert.Contains(t, md, "**Overall:** 81%")
		assert.Contains(t, md, "**JD match:** 72%")
		assert.Contains(t, md, "- Rust")
		assert.Contains(t, md, "Senior (6 years)")
		assert.Contains(t, md, "**Recommendation:** Interview")
		assert.NotContains(t, md, "Matched skills")
	})
}

func TestInterviewMarkdown(t *testing.T) {
	md := interviewMarkdown(dashboard.InterviewGuide{
		Questions:       []string{"First?", "Second?"},
		ValidationAreas: []string{"Depth"},
	})
	assert.Contains(t, md, "1. First?\n2. Second?\n")
	assert.Contains(t, md, "- Depth\n")

	md = interviewMarkdown(dashboard.InterviewGuide{Questions: []string{"First?"}})
	assert.Contains(t, md, "- Overall technical competency and cultural fit\n")
}

func TestSummaryMarkdown(t *testing.T) {
	md := summaryMarkdown(leaderboard.Summary{
		TotalCandidates: 4,
		TotalPositions:  2,
		TotalFavorites:  1,
		AverageScore:    52.5,
		TopCandidates:   []models.CandidateEntry{{CandidateName: "Cara", RankPosition: rank(1), MatchScore: score(0.9)}},
		TopSkills:       []leaderboard.SkillCount{{Skill: "Go", Count: 3}},
	})
	assert.Contains(t, md, "**4** candidates across **2** positions")
	assert.Contains(t, md, "52.5%")
	assert.Contains(t, md, "Cara (90%)")
	assert.Contains(t, md, "Go (3)")
}

func TestBoardLabel(t *testing.T) {
	lb := models.Leaderboard{ID: 3, CreatedAt: "2024-05-01", Entries: []models.CandidateEntry{{IsFavorite: true}, {}}}
	assert.Equal(t, "Leaderboard #3  ·  2 candidates  ·  1 ★  ·  2024-05-01", boardLabel(lb))
}
