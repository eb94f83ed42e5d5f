package backend

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/atssight/recruiter-desk/internal/models"
)

func entryPath(entryID int64, suffix string) string {
	return fmt.Sprintf("%s/leaderboard/entry/%d%s", apiPrefix, entryID, suffix)
}

// ToggleFavorite flips the favorite flag on the backend. The returned entry is
// nil when the backend answers without a body.
func (c *Client) ToggleFavorite(ctx context.Context, entryID int64) (*models.CandidateEntry, error) {
	resp, err := c.do(ctx, http.MethodPatch, entryPath(entryID, "/favorite"), nil, "")
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(resp.Body))) == 0 {
		return nil, nil
	}

	var entry models.CandidateEntry
	if err := decode(resp, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateNotes replaces the entry's notes with the given text. The body is the
// raw note text, not JSON. It returns the notes as stored by the backend.
func (c *Client) UpdateNotes(ctx context.Context, entryID int64, notes string) (string, error) {
	resp, err := c.do(ctx, http.MethodPatch, entryPath(entryID, "/notes"), strings.NewReader(notes), "text/plain")
	if err != nil {
		return "", err
	}

	var saved struct {
		Notes *string `json:"notes"`
	}
	if err := decode(resp, &saved); err != nil || saved.Notes == nil {
		return notes, nil
	}
	return *saved.Notes, nil
}

// GetCandidateReport fetches the scoring breakdown for an entry
func (c *Client) GetCandidateReport(ctx context.Context, entryID int64) (*models.CandidateReport, error) {
	var report models.CandidateReport
	if err := c.getJSON(ctx, entryPath(entryID, "/report"), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// DownloadReportPDF fetches the generated PDF report, named after the candidate
func (c *Client) DownloadReportPDF(ctx context.Context, entryID int64, candidateName string) (*models.Download, error) {
	resp, err := c.do(ctx, http.MethodGet, entryPath(entryID, "/report/pdf"), nil, "")
	if err != nil {
		return nil, err
	}

	d := toDownload(resp, fmt.Sprintf("candidate_report_%d.pdf", entryID))
	if candidateName != "" {
		d.Filename = candidateName + "_report.pdf"
	}
	return d, nil
}

// DownloadResume fetches the original resume file. The filename comes from
// Content-Disposition, falling back to "<name>_resume.pdf".
func (c *Client) DownloadResume(ctx context.Context, entryID int64, candidateName string) (*models.Download, error) {
	resp, err := c.do(ctx, http.MethodGet, entryPath(entryID, "/download-resume"), nil, "")
	if err != nil {
		return nil, err
	}

	if candidateName == "" {
		candidateName = fmt.Sprintf("candidate_%d", entryID)
	}
	return toDownload(resp, candidateName+"_resume.pdf"), nil
}

func toDownload(resp *response, fallback string) *models.Download {
	return &models.Download{
		Filename:    FilenameFromDisposition(resp.Header.Get("Content-Disposition"), fallback),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        resp.Body,
	}
}

// FilenameFromDisposition extracts the filename parameter of a
// Content-Disposition header, or returns fallback.
func FilenameFromDisposition(header, fallback string) string {
	if header == "" {
		return fallback
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return fallback
	}
	if name := strings.TrimSpace(params["filename"]); name != "" {
		return name
	}
	return fallback
}
