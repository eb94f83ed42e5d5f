package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atssight/recruiter-desk/internal/models"
)

func TestBuildInterviewGuide(t *testing.T) {
	tests := []struct {
		name          string
		report        models.CandidateReport
		entry         models.CandidateEntry
		wantQuestions []string
		wantAreas     []string
	}{
		{
			name: "senior with gaps",
			report: models.CandidateReport{
				MatchedSkills:   []string{"Go", "Kafka", "SQL"},
				MissingSkills:   []string{"Rust"},
				ExperienceLevel: "Senior Engineer",
			},
			entry: models.CandidateEntry{MatchScore: score(0.85)},
			wantQuestions: []string{
				"Describe a complex project where you used Go and Kafka",
				"How do you stay current with Go best practices and new developments?",
				"Experience with Rust: any exposure or learning plans?",
				"Describe your leadership style and team mentoring experience",
				"How do you approach architectural decisions and technical debt?",
			},
			wantAreas: []string{
				"Willingness to learn Rust and adaptability to new technologies",
				"Strategic thinking and senior-level decision making",
			},
		},
		{
			name:   "empty report",
			report: models.CandidateReport{},
			entry:  models.CandidateEntry{},
			wantQuestions: []string{
				"Describe your learning approach for new technologies",
				"How do you handle feedback and mentorship?",
				"What excites you most about this role and our tech stack?",
				"Describe a time you had to learn something completely new under pressure",
			},
			wantAreas: []string{
				"Learning agility and foundational knowledge",
				"Genuine interest and motivation to bridge skill gaps",
			},
		},
		{
			name: "mid level from score, top skills",
			report: models.CandidateReport{
				AllSkills:       []string{"Java", "Spring", "AWS", "Docker"},
				ExperienceScore: 0.6,
				Projects:        []string{"Payments API", "Search", "CLI"},
			},
			entry: models.CandidateEntry{MatchScore: score(0.7)},
			wantQuestions: []string{
				"Describe your experience with Java and Spring",
				"Walk through your most challenging technical problem and solution",
				"How do you handle code reviews and collaborate with seniors?",
				"Tell me about your role in: Payments API or Search",
			},
			wantAreas: []string{
				"Growth potential and problem-solving depth",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guide := BuildInterviewGuide(tt.report, tt.entry)
			assert.Equal(t, tt.wantQuestions, guide.Questions)
			assert.Equal(t, tt.wantAreas, guide.ValidationAreas)
		})
	}
}

func TestBuildInterviewGuideLimits(t *testing.T) {
	report := models.CandidateReport{
		MatchedSkills:     []string{"Go"},
		MissingSkills:     []string{"Rust", "Zig"},
		ExperienceLevel:   "junior",
		Projects:          []string{"A"},
		Hackathons:        []string{"HackMIT"},
		CandidateWeakness: "Limited production experience",
	}

	guide := BuildInterviewGuide(report, models.CandidateEntry{MatchScore: score(0.3)})

	assert.Len(t, guide.Questions, 5)
	assert.Len(t, guide.ValidationAreas, 2)
	assert.Equal(t, "Experience with Rust or Zig: any exposure or learning plans?", guide.Questions[2])
}

func TestBuildInterviewGuideAreasComeFromReport(t *testing.T) {
	guide := BuildInterviewGuide(models.CandidateReport{ExperienceLevel: "mid"}, models.CandidateEntry{MatchScore: score(0.7)})
	assert.Equal(t, []string{"Growth potential and problem-solving depth"}, guide.ValidationAreas)
	assert.NotContains(t, guide.ValidationAreas, "Overall technical competency and cultural fit")
}

func TestDashboardInterviewGuideNeedsLoadedReport(t *testing.T) {
	fb := newFakeBackend()
	fb.reports[13] = &models.CandidateReport{MatchedSkills: []string{"Go"}}
	d := newLoadedDashboard(t, fb)

	_, ok := d.InterviewGuide(13)
	assert.False(t, ok)

	_, err := d.SelectCandidate(context.Background(), 13)
	require.NoError(t, err)

	guide, ok := d.InterviewGuide(13)
	require.True(t, ok)
	assert.Contains(t, guide.Questions[0], "Go")

	_, ok = d.InterviewGuide(11)
	assert.False(t, ok)
}
