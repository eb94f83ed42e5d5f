package dashboard

import (
	"context"
	"fmt"

	"github.com/atssight/recruiter-desk/internal/models"
)

// DownloadReportPDF fetches the PDF report of an entry
func (d *Dashboard) DownloadReportPDF(ctx context.Context, entryID int64) (*models.Download, error) {
	entry, err := d.Entry(entryID)
	if err != nil {
		return nil, err
	}
	dl, err := d.backend.DownloadReportPDF(ctx, entryID, entry.CandidateName)
	if err != nil {
		return nil, fmt.Errorf("failed to download report: %w", err)
	}
	return dl, nil
}

// DownloadResume fetches the original resume of an entry
func (d *Dashboard) DownloadResume(ctx context.Context, entryID int64) (*models.Download, error) {
	entry, err := d.Entry(entryID)
	if err != nil {
		return nil, err
	}
	dl, err := d.backend.DownloadResume(ctx, entryID, entry.CandidateName)
	if err != nil {
		return nil, fmt.Errorf("failed to download resume: %w", err)
	}
	return dl, nil
}

// ExportCSV fetches the backend's CSV export of the top N entries
func (d *Dashboard) ExportCSV(ctx context.Context, leaderboardID int64, topN int) (*models.Download, error) {
	if _, err := d.Leaderboard(leaderboardID); err != nil {
		return nil, err
	}
	dl, err := d.backend.ExportLeaderboardCSV(ctx, leaderboardID, topN)
	if err != nil {
		return nil, fmt.Errorf("failed to export leaderboard: %w", err)
	}
	return dl, nil
}
