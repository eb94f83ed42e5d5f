package dashboard

import (
	"context"
	"fmt"
	"log"

	"github.com/atssight/recruiter-desk/internal/backend"
	"github.com/atssight/recruiter-desk/internal/models"
)

// AttachmentFetcher saves resume attachments from a mailbox into dir
type AttachmentFetcher interface {
	FetchAttachments(ctx context.Context, subject, dir string) ([]string, error)
}

// BulkUpload validates and sends one bulk upload. On success the new
// leaderboard is prepended to the list and selected.
func (d *Dashboard) BulkUpload(ctx context.Context, req models.BulkUpload) (*models.Leaderboard, error) {
	if err := backend.ValidateBulkUpload(req); err != nil {
		return nil, err
	}

	d.reportProgress(10, 100, fmt.Sprintf("Uploading %d resume(s)...", len(req.Resumes)))

	lb, err := d.backend.BulkUpload(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to upload resumes: %w", err)
	}

	d.mu.Lock()
	d.leaderboards = append([]models.Leaderboard{*lb}, d.leaderboards...)
	d.selectedBoard = lb.ID
	d.clearCandidateLocked()
	d.mu.Unlock()

	log.Printf("Created leaderboard %d with %d entries", lb.ID, len(lb.Entries))
	d.reportProgress(100, 100, "Upload complete!")
	d.emit(Event{Type: LeaderboardsChanged, LeaderboardID: lb.ID})
	d.emit(Event{Type: SelectionChanged, LeaderboardID: lb.ID})

	created := lb.Clone()
	return &created, nil
}

// IngestFromGmail fetches resume attachments for the subject into a private
// staging batch and bulk uploads them with the given job description
func (d *Dashboard) IngestFromGmail(ctx context.Context, fetcher AttachmentFetcher, subject string, jd models.BulkUpload) (*models.Leaderboard, error) {
	if d.FileHandler == nil {
		return nil, fmt.Errorf("no staging directory configured")
	}
	if !jd.HasJobDescription() {
		return nil, backend.ErrNoJobDescription
	}

	batch, err := d.FileHandler.NewBatch()
	if err != nil {
		return nil, err
	}
	defer batch.Discard()

	d.reportProgress(5, 100, "Fetching emails from Gmail...")
	if _, err := fetcher.FetchAttachments(ctx, subject, batch.UploadsDir()); err != nil {
		return nil, fmt.Errorf("failed to fetch Gmail attachments: %w", err)
	}

	resumes, err := batch.StagedResumes()
	if err != nil {
		return nil, fmt.Errorf("failed to load staged resumes: %w", err)
	}
	if len(resumes) == 0 {
		return nil, fmt.Errorf("no resumes found after Gmail fetch")
	}

	log.Printf("Found %d resume(s) from Gmail", len(resumes))
	jd.Resumes = resumes
	return d.BulkUpload(ctx, jd)
}
