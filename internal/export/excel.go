package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/atssight/recruiter-desk/internal/leaderboard"
	"github.com/atssight/recruiter-desk/internal/models"
	"github.com/atssight/recruiter-desk/internal/textparse"
)

const (
	summarySheet    = "Summary"
	candidatesSheet = "Ranked Candidates"
	notesSheet      = "Notes"
)

var bandFills = map[string]string{
	leaderboard.BandStrong:   "C6EFCE",
	leaderboard.BandModerate: "FFEB9C",
	leaderboard.BandWeak:     "FFC7CE",
	leaderboard.BandNoJD:     "EDEDED",
}

// ExportToExcel writes the given leaderboard view to an XLSX workbook.
// entries should already be filtered and ordered the way the recruiter sees them.
func ExportToExcel(lb models.Leaderboard, entries []models.CandidateEntry, outputPath string) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Ensure output path has .xlsx extension
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(candidatesSheet)
	f.NewSheet(notesSheet)

	if err := createSummarySheet(f, lb, entries); err != nil {
		return "", fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := createRankedCandidatesSheet(f, entries); err != nil {
		return "", fmt.Errorf("failed to create ranked candidates sheet: %w", err)
	}
	if err := createNotesSheet(f, entries); err != nil {
		return "", fmt.Errorf("failed to create notes sheet: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		// If direct save fails, try buffer write fallback
		var buf bytes.Buffer
		if writeErr := f.Write(&buf); writeErr != nil {
			return "", fmt.Errorf("failed to save Excel file: direct save failed (%v), buffer write also failed: %w", err, writeErr)
		}
		if fileErr := os.WriteFile(outputPath, buf.Bytes(), 0644); fileErr != nil {
			return "", fmt.Errorf("failed to save Excel file: direct save failed (%v), file write failed: %w", err, fileErr)
		}
	}

	return outputPath, nil
}

func headerStyle(f *excelize.File, size float64) (int, error) {
	font := &excelize.Font{Bold: true, Color: "FFFFFF"}
	if size > 0 {
		font.Size = size
	}
	return f.NewStyle(&excelize.Style{
		Font:      font,
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
}

// createSummarySheet writes job details and score statistics
func createSummarySheet(f *excelize.File, lb models.Leaderboard, entries []models.CandidateEntry) error {
	sheet := summarySheet
	f.SetColWidth(sheet, "A", "A", 25)
	f.SetColWidth(sheet, "B", "B", 50)

	titleStyle, err := headerStyle(f, 14)
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	row := 1
	section := func(title string) {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), title)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), titleStyle)
		f.MergeCell(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row))
		row++
	}
	label := func(name string, value interface{}) {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), name)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), value)
		row++
	}

	section("Leaderboard Report")
	row++
	label("Job Title:", lb.Title())
	label("Leaderboard ID:", lb.ID)
	label("Created:", lb.CreatedAt)
	label("Generated:", time.Now().Format("2006-01-02 15:04:05"))
	label("Candidates Exported:", len(entries))
	label("Total Candidates:", len(lb.Entries))
	label("Favorites:", countFavorites(entries))
	row++

	section("Match Bands")
	bands := map[string]int{}
	var scored []float64
	for _, e := range entries {
		bands[leaderboard.ScoreBand(e.MatchScore)]++
		if e.MatchScore != nil {
			scored = append(scored, *e.MatchScore)
		}
	}
	label("Strong (80-100%):", bands[leaderboard.BandStrong])
	label("Moderate (60-79%):", bands[leaderboard.BandModerate])
	label("Weak (<60%):", bands[leaderboard.BandWeak])
	label("No JD score:", bands[leaderboard.BandNoJD])
	row++

	if len(scored) > 0 {
		section("Score Statistics")
		low, high, sum := scored[0], scored[0], 0.0
		for _, s := range scored {
			sum += s
			if s < low {
				low = s
			}
			if s > high {
				high = s
			}
		}
		label("Average Match:", fmt.Sprintf("%.1f%%", sum/float64(len(scored))*100))
		label("Highest Match:", fmt.Sprintf("%.1f%%", high*100))
		label("Lowest Match:", fmt.Sprintf("%.1f%%", low*100))
	}

	return nil
}

// createRankedCandidatesSheet writes one row per entry, coloured by match band
func createRankedCandidatesSheet(f *excelize.File, entries []models.CandidateEntry) error {
	sheet := candidatesSheet
	widths := map[string]float64{"A": 8, "B": 28, "C": 12, "D": 12, "E": 10, "F": 50, "G": 40}
	for col, w := range widths {
		f.SetColWidth(sheet, col, col, w)
	}

	hStyle, err := headerStyle(f, 0)
	if err != nil {
		return err
	}
	headers := []string{"Rank", "Candidate", "Match %", "Band", "Favorite", "Skills", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetCellStyle(sheet, "A1", "G1", hStyle)

	bandStyles := make(map[string]int, len(bandFills))
	for band, color := range bandFills {
		style, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		})
		if err != nil {
			return err
		}
		bandStyles[band] = style
	}

	for i, e := range entries {
		row := i + 2
		rank := "—"
		if e.RankPosition != nil {
			rank = fmt.Sprintf("%d", *e.RankPosition)
		}
		match := ""
		if e.MatchScore != nil {
			match = fmt.Sprintf("%d%%", e.ScorePercent())
		}
		favorite := ""
		if e.IsFavorite {
			favorite = "★"
		}
		band := leaderboard.ScoreBand(e.MatchScore)

		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), rank)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), e.CandidateName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), match)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), band)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), favorite)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), strings.Join(textparse.Skills(e.Skills), ", "))
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), e.Notes)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("G%d", row), bandStyles[band])
	}

	if len(entries) > 0 {
		f.AutoFilter(sheet, fmt.Sprintf("A1:G%d", len(entries)+1), []excelize.AutoFilterOptions{})
	}

	// Freeze top row
	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return nil
}

// createNotesSheet lists the free-text fields of every entry
func createNotesSheet(f *excelize.File, entries []models.CandidateEntry) error {
	sheet := notesSheet
	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "B", 18)
	f.SetColWidth(sheet, "C", "C", 80)

	hStyle, err := headerStyle(f, 0)
	if err != nil {
		return err
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return err
	}

	f.SetCellValue(sheet, "A1", "Candidate")
	f.SetCellValue(sheet, "B1", "Field")
	f.SetCellValue(sheet, "C1", "Content")
	f.SetCellStyle(sheet, "A1", "C1", hStyle)

	row := 2
	for _, e := range entries {
		fields := []struct{ name, value string }{
			{"Experience", e.Experience},
			{"Projects", e.Projects},
			{"Hackathons", e.Hackathons},
			{"Recruiter Notes", e.Notes},
		}
		for _, fld := range fields {
			if strings.TrimSpace(fld.value) == "" {
				continue
			}
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), e.CandidateName)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), fld.name)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), fld.value)
			f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), wrapStyle)
			row++
		}
	}

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return nil
}

func countFavorites(entries []models.CandidateEntry) int {
	n := 0
	for _, e := range entries {
		if e.IsFavorite {
			n++
		}
	}
	return n
}
