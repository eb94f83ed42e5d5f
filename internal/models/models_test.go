package models

import (
	"encoding/json"
	"testing"
)

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestCandidateEntryDecodesOptionalFields(t *testing.T) {
	raw := `{"id":7,"candidateName":"Alice","rankPosition":null,"matchScore":null,"skills":"Go, SQL","isFavorite":true}`

	var e CandidateEntry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("Failed to unmarshal CandidateEntry: %v", err)
	}

	if e.RankPosition != nil {
		t.Errorf("Expected nil rank, got %d", *e.RankPosition)
	}
	if e.HasScore() {
		t.Error("Expected entry without score")
	}
	if e.ScorePercent() != 0 {
		t.Errorf("Expected 0 percent for unscored entry, got %d", e.ScorePercent())
	}
	if !e.IsFavorite {
		t.Error("Expected favorite flag to decode")
	}
}

func TestScorePercent(t *testing.T) {
	tests := []struct {
		name  string
		score *float64
		want  int
	}{
		{"absent", nil, 0},
		{"zero", floatPtr(0), 0},
		{"rounds up", floatPtr(0.855), 86},
		{"rounds down", floatPtr(0.614), 61},
		{"full", floatPtr(1), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := CandidateEntry{MatchScore: tt.score}
			if got := e.ScorePercent(); got != tt.want {
				t.Errorf("ScorePercent() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLeaderboardHelpers(t *testing.T) {
	lb := Leaderboard{
		ID:             3,
		JobDescription: &JobDescription{Title: "Backend Engineer"},
		Entries: []CandidateEntry{
			{ID: 1, CandidateName: "Alice", IsFavorite: true},
			{ID: 2, CandidateName: "Bob"},
			{ID: 5, CandidateName: "Cara", IsFavorite: true, RankPosition: intPtr(1)},
		},
	}

	if lb.Title() != "Backend Engineer" {
		t.Errorf("Expected JD title, got %q", lb.Title())
	}
	if lb.FavoriteCount() != 2 {
		t.Errorf("Expected 2 favorites, got %d", lb.FavoriteCount())
	}
	if idx := lb.EntryByID(5); idx != 2 {
		t.Errorf("Expected index 2, got %d", idx)
	}
	if idx := lb.EntryByID(99); idx != -1 {
		t.Errorf("Expected -1 for unknown id, got %d", idx)
	}

	lb.JobDescription = nil
	if lb.Title() != "Leaderboard #3" {
		t.Errorf("Expected fallback title, got %q", lb.Title())
	}
}

func TestLeaderboardClone(t *testing.T) {
	lb := Leaderboard{
		ID:             1,
		JobDescription: &JobDescription{Title: "QA"},
		Entries:        []CandidateEntry{{ID: 1, Notes: "orig"}},
	}

	c := lb.Clone()
	c.Entries[0].Notes = "changed"
	c.JobDescription.Title = "changed"

	if lb.Entries[0].Notes != "orig" {
		t.Error("Clone shares entry storage with the original")
	}
	if lb.JobDescription.Title != "QA" {
		t.Error("Clone shares job description with the original")
	}
}

func TestBulkUploadHasJobDescription(t *testing.T) {
	tests := []struct {
		name string
		req  BulkUpload
		want bool
	}{
		{"nothing", BulkUpload{}, false},
		{"blank text", BulkUpload{JDText: "  \n\t"}, false},
		{"text", BulkUpload{JDText: "Go engineer"}, true},
		{"file", BulkUpload{JDFile: &UploadFile{Name: "jd.pdf"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.HasJobDescription(); got != tt.want {
				t.Errorf("HasJobDescription() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCandidateReportDecodesJDMatch(t *testing.T) {
	raw := `{"candidateName":"Bob","overallScore":0.72,"jdMatchPercentage":64.5,"matchedSkills":["Go"],"missingSkills":["Kafka"],"totalYearsExperience":4}`

	var r CandidateReport
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("Failed to unmarshal CandidateReport: %v", err)
	}

	if r.JDMatchPercentage == nil || *r.JDMatchPercentage != 64.5 {
		t.Errorf("Expected JD match 64.5, got %v", r.JDMatchPercentage)
	}
	if r.TotalYearsExperience == nil || *r.TotalYearsExperience != 4 {
		t.Errorf("Expected 4 years, got %v", r.TotalYearsExperience)
	}
	if len(r.MissingSkills) != 1 || r.MissingSkills[0] != "Kafka" {
		t.Errorf("Unexpected missing skills: %v", r.MissingSkills)
	}
}
