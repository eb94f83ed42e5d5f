package dashboard

import (
	"context"
	"fmt"
	"log"

	"github.com/atssight/recruiter-desk/internal/models"
)

// ToggleFavorite flips an entry's favorite flag on the backend. Local state
// changes only after the backend confirms, and then the list row, the detail
// header and the report all change together. Two quick toggles race: the
// last response to arrive wins.
func (d *Dashboard) ToggleFavorite(ctx context.Context, entryID int64) (models.CandidateEntry, error) {
	if _, err := d.Entry(entryID); err != nil {
		return models.CandidateEntry{}, err
	}

	updated, err := d.backend.ToggleFavorite(ctx, entryID)
	if err != nil {
		return models.CandidateEntry{}, fmt.Errorf("failed to update favorite status: %w", err)
	}

	d.mu.Lock()
	current, ok := d.entryLocked(entryID)
	if !ok {
		// Leaderboard was deleted or reloaded while the request was in flight
		d.mu.Unlock()
		return models.CandidateEntry{}, ErrEntryNotFound
	}
	favorite := !current.IsFavorite
	if updated != nil {
		favorite = updated.IsFavorite
	}
	d.updateEntryLocked(entryID, func(e *models.CandidateEntry) {
		e.IsFavorite = favorite
	})
	detailChanged := d.applyToDetailLocked(entryID, func(e *models.CandidateEntry, r *models.CandidateReport) {
		e.IsFavorite = favorite
		if r != nil {
			r.IsFavorite = favorite
		}
	})
	result, _ := d.entryLocked(entryID)
	d.mu.Unlock()

	log.Printf("Entry %d favorite=%v", entryID, favorite)
	d.emit(Event{Type: EntryChanged, EntryID: entryID})
	if detailChanged {
		d.emit(Event{Type: DetailChanged, EntryID: entryID})
	}
	return result, nil
}

// UpdateNotes replaces an entry's notes. As with favorites, nothing changes
// locally unless the backend accepts the update.
func (d *Dashboard) UpdateNotes(ctx context.Context, entryID int64, notes string) (models.CandidateEntry, error) {
	if _, err := d.Entry(entryID); err != nil {
		return models.CandidateEntry{}, err
	}

	saved, err := d.backend.UpdateNotes(ctx, entryID, notes)
	if err != nil {
		return models.CandidateEntry{}, fmt.Errorf("failed to save notes: %w", err)
	}

	d.mu.Lock()
	if !d.updateEntryLocked(entryID, func(e *models.CandidateEntry) { e.Notes = saved }) {
		d.mu.Unlock()
		return models.CandidateEntry{}, ErrEntryNotFound
	}
	detailChanged := d.applyToDetailLocked(entryID, func(e *models.CandidateEntry, r *models.CandidateReport) {
		e.Notes = saved
		if r != nil {
			r.Notes = saved
		}
	})
	result, _ := d.entryLocked(entryID)
	d.mu.Unlock()

	log.Printf("Entry %d notes saved (%d chars)", entryID, len(saved))
	d.emit(Event{Type: EntryChanged, EntryID: entryID})
	if detailChanged {
		d.emit(Event{Type: DetailChanged, EntryID: entryID})
	}
	return result, nil
}

// DeleteLeaderboard removes a leaderboard on the backend, then locally.
// It reports whether the deleted leaderboard was the selected one, in which
// case the selection was cleared and views should go back to the list.
func (d *Dashboard) DeleteLeaderboard(ctx context.Context, id int64) (navigateToList bool, err error) {
	if err := d.backend.DeleteLeaderboard(ctx, id); err != nil {
		return false, fmt.Errorf("failed to delete leaderboard: %w", err)
	}

	d.mu.Lock()
	if idx := d.boardIndexLocked(id); idx >= 0 {
		d.leaderboards = append(d.leaderboards[:idx:idx], d.leaderboards[idx+1:]...)
	}
	if d.selectedBoard == id {
		d.selectedBoard = 0
		d.clearCandidateLocked()
		navigateToList = true
	}
	d.mu.Unlock()

	log.Printf("Deleted leaderboard %d", id)
	d.emit(Event{Type: LeaderboardsChanged, LeaderboardID: id})
	if navigateToList {
		d.emit(Event{Type: SelectionChanged})
	}
	return navigateToList, nil
}

// applyToDetailLocked updates the detail pane when it shows entryID
func (d *Dashboard) applyToDetailLocked(entryID int64, fn func(*models.CandidateEntry, *models.CandidateReport)) bool {
	if d.detail.Entry == nil || d.detail.Entry.ID != entryID {
		return false
	}
	fn(d.detail.Entry, d.detail.Report)
	return true
}
