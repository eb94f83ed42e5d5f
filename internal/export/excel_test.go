package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/atssight/recruiter-desk/internal/models"
)

func score(v float64) *float64 { return &v }
func rank(v int) *int          { return &v }

func testLeaderboard() (models.Leaderboard, []models.CandidateEntry) {
	entries := []models.CandidateEntry{
		{ID: 3, CandidateName: "Cara", RankPosition: rank(1), MatchScore: score(0.9), Skills: "Go, Kafka", Notes: "Call Monday", IsFavorite: true},
		{ID: 1, CandidateName: "Alice", RankPosition: rank(2), MatchScore: score(0.4), Skills: "SQL", Experience: "5 years backend."},
		{ID: 2, CandidateName: "Bob", Skills: "Python"},
	}
	lb := models.Leaderboard{
		ID:             7,
		CreatedAt:      "2024-05-01T10:00:00",
		JobDescription: &models.JobDescription{Title: "Software Engineer"},
		Entries:        entries,
	}
	return lb, entries
}

// TestExportToExcel_EnsuresXlsxExtension tests that .xlsx extension is added if missing
func TestExportToExcel_EnsuresXlsxExtension(t *testing.T) {
	tmpDir := t.TempDir()
	lb, entries := testLeaderboard()

	outputPath := filepath.Join(tmpDir, "test_report")
	written, err := ExportToExcel(lb, entries, outputPath)
	if err != nil {
		t.Fatalf("ExportToExcel() failed: %v", err)
	}

	expectedPath := outputPath + ".xlsx"
	if written != expectedPath {
		t.Errorf("Expected written path %s, got %s", expectedPath, written)
	}
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Errorf("Expected file at %s but it doesn't exist", expectedPath)
	}
}

// TestExportToExcel_HandlesExistingXlsxExtension tests that existing extensions are preserved
func TestExportToExcel_HandlesExistingXlsxExtension(t *testing.T) {
	tmpDir := t.TempDir()
	lb, entries := testLeaderboard()

	for _, name := range []string{"report.xlsx", "REPORT.XLSX"} {
		outputPath := filepath.Join(tmpDir, name)
		if _, err := ExportToExcel(lb, entries, outputPath); err != nil {
			t.Fatalf("ExportToExcel() failed: %v", err)
		}
		if _, err := os.Stat(outputPath); os.IsNotExist(err) {
			t.Errorf("Expected file at %s but it doesn't exist", outputPath)
		}
		if _, err := os.Stat(outputPath + ".xlsx"); err == nil {
			t.Errorf("Extension was added twice for %s", name)
		}
	}
}

// TestExportToExcel_CleansPaths tests that paths with redundant separators are cleaned
func TestExportToExcel_CleansPaths(t *testing.T) {
	tmpDir := t.TempDir()
	lb, entries := testLeaderboard()

	messy := tmpDir + string(filepath.Separator) + "sub" + string(filepath.Separator) + string(filepath.Separator) + "out"
	written, err := ExportToExcel(lb, entries, messy)
	if err != nil {
		t.Fatalf("ExportToExcel() failed: %v", err)
	}

	expected := filepath.Join(tmpDir, "sub", "out.xlsx")
	if written != expected {
		t.Errorf("Expected cleaned path %s, got %s", expected, written)
	}
}

func TestExportToExcel_Contents(t *testing.T) {
	tmpDir := t.TempDir()
	lb, entries := testLeaderboard()

	path, err := ExportToExcel(lb, entries, filepath.Join(tmpDir, "contents.xlsx"))
	if err != nil {
		t.Fatalf("ExportToExcel() failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("Failed to open exported workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{"Summary", "Ranked Candidates", "Notes"}
	if strings.Join(sheets, ",") != strings.Join(want, ",") {
		t.Errorf("Expected sheets %v, got %v", want, sheets)
	}

	rows, err := f.GetRows("Ranked Candidates")
	if err != nil {
		t.Fatalf("Failed to read rows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("Expected header + 3 rows, got %d", len(rows))
	}

	first := rows[1]
	if first[0] != "1" || first[1] != "Cara" || first[2] != "90%" || first[3] != "Strong" || first[4] != "★" {
		t.Errorf("Unexpected first row: %v", first)
	}
	if rows[3][0] != "—" || rows[3][3] != "No JD" {
		t.Errorf("Unexpected unscored row: %v", rows[3])
	}

	title, _ := f.GetCellValue("Summary", "B3")
	if title != "Software Engineer" {
		t.Errorf("Expected job title in summary, got %q", title)
	}

	notes, _ := f.GetRows("Notes")
	if len(notes) != 3 {
		t.Errorf("Expected header + 2 note rows, got %d", len(notes))
	}
}

// TestExportToExcel_EmptyResults tests exporting a leaderboard with no entries
func TestExportToExcel_EmptyResults(t *testing.T) {
	tmpDir := t.TempDir()

	outputPath := filepath.Join(tmpDir, "empty")
	if _, err := ExportToExcel(models.Leaderboard{ID: 1}, nil, outputPath); err != nil {
		t.Fatalf("ExportToExcel() with empty entries failed: %v", err)
	}

	if _, err := os.Stat(outputPath + ".xlsx"); os.IsNotExist(err) {
		t.Error("Expected file to be created even with empty entries")
	}
}

func TestSaveDownload(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "downloads")

	path, err := SaveDownload(tmpDir, &models.Download{Filename: "../Alice_resume.pdf", Data: []byte("%PDF")})
	if err != nil {
		t.Fatalf("SaveDownload failed: %v", err)
	}
	if path != filepath.Join(tmpDir, "Alice_resume.pdf") {
		t.Errorf("Unexpected path %s", path)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "%PDF" {
		t.Errorf("Unexpected content %q", data)
	}

	if _, err := SaveDownload(tmpDir, nil); err == nil {
		t.Error("Expected error for nil download")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\x\cv.docx`, "cv.docx"},
		{`a:b?.csv`, "a_b_.csv"},
		{"", "download"},
		{"  ", "download"},
	}

	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
