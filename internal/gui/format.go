package gui

import (
	"fmt"
	"strings"

	"github.com/atssight/recruiter-desk/internal/dashboard"
	"github.com/atssight/recruiter-desk/internal/leaderboard"
	"github.com/atssight/recruiter-desk/internal/models"
	"github.com/atssight/recruiter-desk/internal/textparse"
)

var entryHeaders = []string{"Rank", "Candidate", "Match", "Band", "★", "Skills"}

// entryCell renders one cell of the leaderboard table
func entryCell(e models.CandidateEntry, col int) string {
	switch col {
	case 0:
		return leaderboard.RankBadge(e.RankPosition)
	case 1:
		return e.CandidateName
	case 2:
		if !e.HasScore() {
			return "—"
		}
		return fmt.Sprintf("%d%%", e.ScorePercent())
	case 3:
		return leaderboard.ScoreBand(e.MatchScore)
	case 4:
		if e.IsFavorite {
			return "★"
		}
		return "☆"
	case 5:
		return textparse.PreviewLabel(textparse.Skills(e.Skills), 3)
	}
	return ""
}

// boardLabel is the list row text for one leaderboard
func boardLabel(lb models.Leaderboard) string {
	return fmt.Sprintf("%s  ·  %d candidates  ·  %d ★  ·  %s", lb.Title(), len(lb.Entries), lb.FavoriteCount(), lb.CreatedAt)
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

func bulletList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

// detailMarkdown renders the candidate pane: the full report when loaded,
// the list entry fallback when the report failed
func detailMarkdown(cd dashboard.CandidateDetail) string {
	var b strings.Builder

	switch cd.State {
	case dashboard.StateIdle:
		return "Select a candidate from a leaderboard."
	case dashboard.StateLoading:
		if cd.Entry != nil {
			return fmt.Sprintf("## %s\n\nLoading report...", cd.Entry.CandidateName)
		}
		return "Loading report..."
	case dashboard.StateFailed:
		name := ""
		if cd.Entry != nil {
			name = cd.Entry.CandidateName
		}
		fmt.Fprintf(&b, "## %s\n\n", name)
		fmt.Fprintf(&b, "*Report unavailable: %s*\n\n", cd.Error)
		if f := cd.Fallback; f != nil {
			bulletList(&b, "Skills", f.Skills)
			bulletList(&b, "Experience", textparse.Sentences(f.Experience))
			bulletList(&b, "Projects", textparse.Sentences(f.Projects))
			bulletList(&b, "Hackathons", textparse.Sentences(f.Hackathons))
		}
		return b.String()
	}

	r := cd.Report
	if r == nil {
		return ""
	}
	fmt.Fprintf(&b, "## %s\n\n", r.CandidateName)
	fmt.Fprintf(&b, "**Rank:** %s  **Overall:** %s", leaderboard.RankBadge(r.RankPosition), percent(r.OverallScore))
	if r.JDMatchPercentage != nil {
		fmt.Fprintf(&b, "  **JD match:** %.0f%%", *r.JDMatchPercentage)
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Skills %s · Experience %s · Education %s · Projects %s\n\n",
		percent(r.SkillsScore), percent(r.ExperienceScore), percent(r.EducationScore), percent(r.ProjectsScore))

	if r.FitAssessment != "" {
		fmt.Fprintf(&b, "**Fit:** %s\n\n", r.FitAssessment)
	}
	bulletList(&b, "Matched skills", r.MatchedSkills)
	bulletList(&b, "Missing skills", r.MissingSkills)

	level := r.ExperienceLevel
	if r.TotalYearsExperience != nil {
		level = fmt.Sprintf("%s (%d years)", level, *r.TotalYearsExperience)
	}
	if strings.TrimSpace(level) != "" {
		fmt.Fprintf(&b, "**Experience level:** %s\n\n", level)
	}
	bulletList(&b, "Experience highlights", r.ExperienceHighlights)
	bulletList(&b, "Projects", r.Projects)
	bulletList(&b, "Education", r.Education)
	bulletList(&b, "Certifications", r.Certifications)
	bulletList(&b, "Hackathons", r.Hackathons)

	if r.CandidateStrength != "" {
		fmt.Fprintf(&b, "**Strength:** %s\n\n", r.CandidateStrength)
	}
	if r.CandidateWeakness != "" {
		fmt.Fprintf(&b, "**Weakness:** %s\n\n", r.CandidateWeakness)
	}
	if r.HiringRecommendation != "" {
		fmt.Fprintf(&b, "**Recommendation:** %s\n\n", r.HiringRecommendation)
	}
	return b.String()
}

// interviewMarkdown renders an interview guide
func interviewMarkdown(g dashboard.InterviewGuide) string {
	var b strings.Builder
	b.WriteString("### Suggested questions\n\n")
	for i, q := range g.Questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	b.WriteString("\n")
	areas := g.ValidationAreas
	if len(areas) == 0 {
		areas = []string{"Overall technical competency and cultural fit"}
	}
	bulletList(&b, "Validate in interview", areas)
	return b.String()
}

// summaryMarkdown renders the cross-leaderboard overview
func summaryMarkdown(s leaderboard.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%d** candidates across **%d** positions · **%d** favorites · average match **%.1f%%**\n\n",
		s.TotalCandidates, s.TotalPositions, s.TotalFavorites, s.AverageScore)

	if len(s.TopCandidates) > 0 {
		b.WriteString("### Top candidates\n\n")
		for _, e := range s.TopCandidates {
			fmt.Fprintf(&b, "- %s %s (%s)\n", leaderboard.RankBadge(e.RankPosition), e.CandidateName, entryCell(e, 2))
		}
		b.WriteString("\n")
	}
	if len(s.TopSkills) > 0 {
		skills := make([]string, 0, len(s.TopSkills))
		for _, sc := range s.TopSkills {
			skills = append(skills, fmt.Sprintf("%s (%d)", sc.Skill, sc.Count))
		}
		fmt.Fprintf(&b, "**Top skills:** %s\n", strings.Join(skills, ", "))
	}
	return b.String()
}
