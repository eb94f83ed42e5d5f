package dashboard

import (
	"fmt"
	"strings"

	"github.com/atssight/recruiter-desk/internal/models"
)

const (
	maxQuestions       = 5
	maxValidationAreas = 2
	minCoreQuestions   = 4
)

// InterviewGuide is a short list of questions and areas to probe
type InterviewGuide struct {
	Questions       []string `json:"questions"`
	ValidationAreas []string `json:"validationAreas"`
}

// BuildInterviewGuide derives interview prompts from a report. Rules are
// applied in order and the lists are cut to 5 questions and 2 areas.
func BuildInterviewGuide(report models.CandidateReport, entry models.CandidateEntry) InterviewGuide {
	var questions, areas []string

	topSkills := firstN(report.AllSkills, 3)
	switch {
	case len(report.MatchedSkills) > 0:
		questions = append(questions,
			fmt.Sprintf("Describe a complex project where you used %s", strings.Join(firstN(report.MatchedSkills, 2), " and ")),
			fmt.Sprintf("How do you stay current with %s best practices and new developments?", report.MatchedSkills[0]),
		)
	case len(topSkills) > 0:
		questions = append(questions,
			fmt.Sprintf("Describe your experience with %s", strings.Join(firstN(topSkills, 2), " and ")))
	}

	if len(report.MissingSkills) > 0 {
		questions = append(questions,
			fmt.Sprintf("Experience with %s: any exposure or learning plans?", strings.Join(firstN(report.MissingSkills, 2), " or ")))
		areas = append(areas,
			fmt.Sprintf("Willingness to learn %s and adaptability to new technologies", report.MissingSkills[0]))
	}

	level := strings.ToLower(report.ExperienceLevel)
	switch {
	case strings.Contains(level, "senior") || report.ExperienceScore > 0.8:
		questions = append(questions,
			"Describe your leadership style and team mentoring experience",
			"How do you approach architectural decisions and technical debt?")
		areas = append(areas, "Strategic thinking and senior-level decision making")
	case strings.Contains(level, "mid") || report.ExperienceScore > 0.5:
		questions = append(questions,
			"Walk through your most challenging technical problem and solution",
			"How do you handle code reviews and collaborate with seniors?")
		areas = append(areas, "Growth potential and problem-solving depth")
	default:
		questions = append(questions,
			"Describe your learning approach for new technologies",
			"How do you handle feedback and mentorship?")
		areas = append(areas, "Learning agility and foundational knowledge")
	}

	if len(report.Projects) > 0 {
		questions = append(questions,
			fmt.Sprintf("Tell me about your role in: %s", strings.Join(firstN(report.Projects, 2), " or ")))
	}

	if len(report.Hackathons) > 0 {
		questions = append(questions, "Describe your experience in hackathons and competitive programming")
		areas = append(areas, "Innovation mindset and rapid prototyping skills")
	}

	var match float64
	if entry.MatchScore != nil {
		match = *entry.MatchScore
	}
	switch {
	case match > 0.8:
		questions = append(questions, "Where do you see this role fitting into your career goals?")
		areas = append(areas, "Cultural fit and long-term commitment")
	case match < 0.6:
		questions = append(questions, "What excites you most about this role and our tech stack?")
		areas = append(areas, "Genuine interest and motivation to bridge skill gaps")
	}

	if report.CandidateWeakness != "" {
		questions = append(questions, "Describe a time you overcame a significant technical challenge")
		areas = append(areas, report.CandidateWeakness)
	}

	if len(questions) < minCoreQuestions {
		questions = append(questions, "Describe a time you had to learn something completely new under pressure")
	}

	return InterviewGuide{
		Questions:       firstN(questions, maxQuestions),
		ValidationAreas: firstN(areas, maxValidationAreas),
	}
}

// InterviewGuide builds the guide for the candidate currently loaded in the
// detail pane. ok is false unless a report has been loaded.
func (d *Dashboard) InterviewGuide(entryID int64) (guide InterviewGuide, ok bool) {
	detail := d.Detail()
	if detail.State != StateLoaded || detail.Entry == nil || detail.Entry.ID != entryID || detail.Report == nil {
		return InterviewGuide{}, false
	}
	return BuildInterviewGuide(*detail.Report, *detail.Entry), true
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
