package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/atssight/recruiter-desk/internal/ingestion"
	"github.com/atssight/recruiter-desk/internal/leaderboard"
	"github.com/atssight/recruiter-desk/internal/models"
)

var (
	// ErrLeaderboardNotFound is returned for ids not in the loaded set
	ErrLeaderboardNotFound = errors.New("leaderboard not found")
	// ErrEntryNotFound is returned for entry ids not in any loaded leaderboard
	ErrEntryNotFound = errors.New("candidate entry not found")
)

// Backend is the subset of the REST client the dashboard needs
type Backend interface {
	ListLeaderboards(ctx context.Context) ([]models.Leaderboard, error)
	GetLeaderboard(ctx context.Context, id int64) (*models.Leaderboard, error)
	BulkUpload(ctx context.Context, req models.BulkUpload) (*models.Leaderboard, error)
	ToggleFavorite(ctx context.Context, entryID int64) (*models.CandidateEntry, error)
	UpdateNotes(ctx context.Context, entryID int64, notes string) (string, error)
	GetCandidateReport(ctx context.Context, entryID int64) (*models.CandidateReport, error)
	DownloadReportPDF(ctx context.Context, entryID int64, candidateName string) (*models.Download, error)
	DownloadResume(ctx context.Context, entryID int64, candidateName string) (*models.Download, error)
	ExportLeaderboardCSV(ctx context.Context, id int64, topN int) (*models.Download, error)
	DeleteLeaderboard(ctx context.Context, id int64) error
}

// ProgressCallback is called to report progress during long operations
type ProgressCallback = ingestion.ProgressCallback

// Settings tunes the dashboard
type Settings struct {
	// ReportTimeout bounds a candidate report fetch; zero means no timeout
	ReportTimeout time.Duration
}

// Dashboard holds the recruiter's leaderboards and the current selection.
// All views read and mutate it through its methods.
type Dashboard struct {
	backend     Backend
	FileHandler *ingestion.FileHandler
	settings    Settings

	mu                sync.RWMutex
	leaderboards      []models.Leaderboard
	selectedBoard     int64
	selectedCandidate int64
	detailGen         uint64
	detail            CandidateDetail
	progressCb        ProgressCallback

	reports singleflight.Group

	subMu       sync.Mutex
	subscribers map[int]func(Event)
	nextSubID   int
}

// New creates a dashboard backed by the given client
func New(backend Backend, fileHandler *ingestion.FileHandler, settings Settings) *Dashboard {
	return &Dashboard{
		backend:     backend,
		FileHandler: fileHandler,
		settings:    settings,
		detail:      CandidateDetail{State: StateIdle},
		subscribers: make(map[int]func(Event)),
	}
}

// SetProgressCallback sets the progress callback function
func (d *Dashboard) SetProgressCallback(cb ProgressCallback) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.progressCb = cb
}

// reportProgress calls the progress callback if set
func (d *Dashboard) reportProgress(current, total int, message string) {
	d.mu.RLock()
	cb := d.progressCb
	d.mu.RUnlock()

	if cb != nil {
		cb(current, total, message)
	}
}

// Refresh reloads all leaderboards from the backend. The selection is kept
// when the selected leaderboard still exists, and the detail pane is synced
// with the reloaded entry.
func (d *Dashboard) Refresh(ctx context.Context) error {
	lbs, err := d.backend.ListLeaderboards(ctx)
	if err != nil {
		return fmt.Errorf("failed to load leaderboards: %w", err)
	}

	d.mu.Lock()
	d.leaderboards = lbs
	selectionLost := d.selectedBoard != 0 && d.boardIndexLocked(d.selectedBoard) < 0
	if selectionLost {
		d.selectedBoard = 0
		d.clearCandidateLocked()
	}
	detailChanged, candidateLost := d.resyncCandidateLocked()
	d.mu.Unlock()

	log.Printf("Loaded %d leaderboard(s)", len(lbs))
	d.emit(Event{Type: LeaderboardsChanged})
	if selectionLost || candidateLost {
		d.emit(Event{Type: SelectionChanged})
	}
	if detailChanged || selectionLost {
		d.emit(Event{Type: DetailChanged})
	}
	return nil
}

// RefreshLeaderboard reloads one leaderboard from the backend, adding it to
// the list when it isn't loaded yet
func (d *Dashboard) RefreshLeaderboard(ctx context.Context, id int64) (models.Leaderboard, error) {
	lb, err := d.backend.GetLeaderboard(ctx, id)
	if err != nil {
		return models.Leaderboard{}, fmt.Errorf("failed to load leaderboard %d: %w", id, err)
	}

	d.mu.Lock()
	if idx := d.boardIndexLocked(lb.ID); idx >= 0 {
		d.leaderboards[idx] = *lb
	} else {
		d.leaderboards = append([]models.Leaderboard{*lb}, d.leaderboards...)
	}
	detailChanged, candidateLost := d.resyncCandidateLocked()
	d.mu.Unlock()

	d.emit(Event{Type: LeaderboardsChanged, LeaderboardID: lb.ID})
	if candidateLost {
		d.emit(Event{Type: SelectionChanged, LeaderboardID: lb.ID})
	}
	if detailChanged {
		d.emit(Event{Type: DetailChanged})
	}
	return lb.Clone(), nil
}

// Leaderboards returns copies of all loaded leaderboards
func (d *Dashboard) Leaderboards() []models.Leaderboard {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]models.Leaderboard, len(d.leaderboards))
	for i, lb := range d.leaderboards {
		out[i] = lb.Clone()
	}
	return out
}

// Leaderboard returns a copy of one loaded leaderboard
func (d *Dashboard) Leaderboard(id int64) (models.Leaderboard, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	idx := d.boardIndexLocked(id)
	if idx < 0 {
		return models.Leaderboard{}, ErrLeaderboardNotFound
	}
	return d.leaderboards[idx].Clone(), nil
}

// SelectLeaderboard makes id the current leaderboard. Changing leaderboards
// drops the candidate selection.
func (d *Dashboard) SelectLeaderboard(id int64) error {
	d.mu.Lock()
	if d.boardIndexLocked(id) < 0 {
		d.mu.Unlock()
		return ErrLeaderboardNotFound
	}
	changed := d.selectedBoard != id
	if changed {
		d.selectedBoard = id
		d.clearCandidateLocked()
	}
	d.mu.Unlock()

	if changed {
		d.emit(Event{Type: SelectionChanged, LeaderboardID: id})
	}
	return nil
}

// SelectedLeaderboard returns the current leaderboard, if any
func (d *Dashboard) SelectedLeaderboard() (models.Leaderboard, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	idx := d.boardIndexLocked(d.selectedBoard)
	if idx < 0 {
		return models.Leaderboard{}, false
	}
	return d.leaderboards[idx].Clone(), true
}

// Entries returns the filtered, ordered entries of the selected leaderboard
func (d *Dashboard) Entries(searchTerm string, favoritesOnly bool) []models.CandidateEntry {
	lb, ok := d.SelectedLeaderboard()
	if !ok {
		return []models.CandidateEntry{}
	}
	return leaderboard.View(lb.Entries, searchTerm, favoritesOnly)
}

// Entry looks up an entry in any loaded leaderboard
func (d *Dashboard) Entry(entryID int64) (models.CandidateEntry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, ok := d.entryLocked(entryID)
	if !ok {
		return models.CandidateEntry{}, ErrEntryNotFound
	}
	return e, nil
}

// Summary aggregates all loaded leaderboards
func (d *Dashboard) Summary() leaderboard.Summary {
	return leaderboard.Summarize(d.Leaderboards())
}

// HandleSessionExpired drops all recruiter data after the backend rejected
// the session
func (d *Dashboard) HandleSessionExpired() {
	d.mu.Lock()
	d.leaderboards = nil
	d.selectedBoard = 0
	d.clearCandidateLocked()
	d.mu.Unlock()

	log.Printf("Session expired, dashboard state cleared")
	d.emit(Event{Type: SessionExpired})
}

func (d *Dashboard) boardIndexLocked(id int64) int {
	if id == 0 {
		return -1
	}
	for i := range d.leaderboards {
		if d.leaderboards[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Dashboard) entryLocked(entryID int64) (models.CandidateEntry, bool) {
	// Prefer the selected leaderboard, then any other
	if idx := d.boardIndexLocked(d.selectedBoard); idx >= 0 {
		if i := d.leaderboards[idx].EntryByID(entryID); i >= 0 {
			return d.leaderboards[idx].Entries[i], true
		}
	}
	for _, lb := range d.leaderboards {
		if i := lb.EntryByID(entryID); i >= 0 {
			return lb.Entries[i], true
		}
	}
	return models.CandidateEntry{}, false
}

// updateEntryLocked applies fn to every copy of the entry and reports whether any matched
func (d *Dashboard) updateEntryLocked(entryID int64, fn func(*models.CandidateEntry)) bool {
	found := false
	for b := range d.leaderboards {
		if i := d.leaderboards[b].EntryByID(entryID); i >= 0 {
			fn(&d.leaderboards[b].Entries[i])
			found = true
		}
	}
	return found
}

// resyncCandidateLocked points the detail pane at the reloaded copy of the
// selected entry, or clears it when the entry is gone
func (d *Dashboard) resyncCandidateLocked() (detailChanged, candidateLost bool) {
	if d.selectedCandidate == 0 {
		return false, false
	}
	if e, ok := d.entryLocked(d.selectedCandidate); ok {
		d.syncDetailLocked(e)
		return true, false
	}
	d.clearCandidateLocked()
	return true, true
}

// syncDetailLocked copies the entry's current state into the detail header,
// report and fallback
func (d *Dashboard) syncDetailLocked(e models.CandidateEntry) {
	if d.detail.Entry == nil || d.detail.Entry.ID != e.ID {
		return
	}
	d.detail.Entry = &e
	if d.detail.Report != nil {
		d.detail.Report.IsFavorite = e.IsFavorite
		d.detail.Report.Notes = e.Notes
	}
	if d.detail.Fallback != nil {
		d.detail.Fallback = fallbackFor(e)
	}
}

func (d *Dashboard) clearCandidateLocked() {
	d.selectedCandidate = 0
	d.detail = CandidateDetail{State: StateIdle}
}
