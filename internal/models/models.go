package models

import "fmt"

// ResumeRef identifies the stored resume behind a leaderboard entry
type ResumeRef struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
}

// CandidateEntry is one scored resume within a leaderboard
type CandidateEntry struct {
	ID            int64      `json:"id"`
	CandidateName string     `json:"candidateName"`
	RankPosition  *int       `json:"rankPosition"`  // 1 = best match, absent for unscored entries
	MatchScore    *float64   `json:"matchScore"`    // 0-1, absent when no JD was supplied
	Skills        string     `json:"skills"`
	Experience    string     `json:"experience"`
	Projects      string     `json:"projects"`
	Hackathons    string     `json:"hackathons"`
	Notes         string     `json:"notes"`
	IsFavorite    bool       `json:"isFavorite"`
	CreatedAt     string     `json:"createdAt"`
	Resume        *ResumeRef `json:"resume,omitempty"`
}

// HasScore reports whether the backend scored this entry against a JD
func (e CandidateEntry) HasScore() bool {
	return e.MatchScore != nil
}

// ScorePercent returns the match score as a rounded percentage, 0 when unscored
func (e CandidateEntry) ScorePercent() int {
	if e.MatchScore == nil {
		return 0
	}
	return int(*e.MatchScore*100 + 0.5)
}

// JobDescription is the JD a leaderboard was scored against
type JobDescription struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Leaderboard is the result of one bulk upload
type Leaderboard struct {
	ID             int64            `json:"id"`
	CreatedAt      string           `json:"createdAt"`
	JobDescription *JobDescription  `json:"jobDescription"`
	Entries        []CandidateEntry `json:"entries"`
}

// Title returns the JD title, or a generic label when none was attached
func (l Leaderboard) Title() string {
	if l.JobDescription != nil && l.JobDescription.Title != "" {
		return l.JobDescription.Title
	}
	return fmt.Sprintf("Leaderboard #%d", l.ID)
}

// FavoriteCount counts entries the recruiter marked as favorite
func (l Leaderboard) FavoriteCount() int {
	n := 0
	for _, e := range l.Entries {
		if e.IsFavorite {
			n++
		}
	}
	return n
}

// EntryByID returns the index of the entry with the given id, or -1
func (l Leaderboard) EntryByID(id int64) int {
	for i := range l.Entries {
		if l.Entries[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can't alias the store's slices
func (l Leaderboard) Clone() Leaderboard {
	c := l
	if l.JobDescription != nil {
		jd := *l.JobDescription
		c.JobDescription = &jd
	}
	c.Entries = make([]CandidateEntry, len(l.Entries))
	copy(c.Entries, l.Entries)
	return c
}

// CandidateReport is the on-demand scoring breakdown for one entry
type CandidateReport struct {
	CandidateName  string  `json:"candidateName"`
	RankPosition   *int    `json:"rankPosition"`
	OverallScore   float64 `json:"overallScore"`
	ResumeFileName string  `json:"resumeFileName"`

	// Scores breakdown, 0-1
	SkillsScore     float64 `json:"skillsScore"`
	ExperienceScore float64 `json:"experienceScore"`
	EducationScore  float64 `json:"educationScore"`
	ProjectsScore   float64 `json:"projectsScore"`

	// JD match (only when a JD was provided)
	JDMatchPercentage *float64 `json:"jdMatchPercentage,omitempty"`
	MatchedSkills     []string `json:"matchedSkills,omitempty"`
	MissingSkills     []string `json:"missingSkills,omitempty"`
	FitAssessment     string   `json:"fitAssessment,omitempty"`

	AllSkills        []string `json:"allSkills"`
	TopSkillCategory string   `json:"topSkillCategory"`

	ExperienceLevel      string   `json:"experienceLevel"`
	TotalYearsExperience *int     `json:"totalYearsExperience,omitempty"`
	ExperienceHighlights []string `json:"experienceHighlights"`

	Projects       []string `json:"projects"`
	ProjectCount   int      `json:"projectCount"`
	Education      []string `json:"education"`
	Certifications []string `json:"certifications"`
	Hackathons     []string `json:"hackathons"`

	CandidateStrength    string `json:"candidateStrength"`
	CandidateWeakness    string `json:"candidateWeakness"`
	HiringRecommendation string `json:"hiringRecommendation"`

	Notes      string `json:"notes"`
	IsFavorite bool   `json:"isFavorite"`
}

// UploadFile is one file part of a bulk upload
type UploadFile struct {
	Name        string
	Path        string
	ContentType string
}

// BulkUpload is the request payload for creating a leaderboard
type BulkUpload struct {
	Resumes []UploadFile
	JDFile  *UploadFile
	JDText  string
	JDTitle string
}

// HasJobDescription reports whether a JD file or non-blank JD text is present
func (b BulkUpload) HasJobDescription() bool {
	if b.JDFile != nil {
		return true
	}
	for _, r := range b.JDText {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return true
		}
	}
	return false
}

// Download is a binary payload returned by the backend
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}
