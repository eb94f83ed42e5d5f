package dashboard

import (
	"context"
	"errors"
	"log"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/atssight/recruiter-desk/internal/backend"
	"github.com/atssight/recruiter-desk/internal/models"
	"github.com/atssight/recruiter-desk/internal/textparse"
)

var errEmptyReport = errors.New("backend returned an empty report")

// DetailState is the lifecycle of the candidate detail pane
type DetailState string

const (
	StateIdle    DetailState = "idle"
	StateLoading DetailState = "loading"
	StateLoaded  DetailState = "loaded"
	StateFailed  DetailState = "failed"
)

// Fallback is the reduced view built from the list entry when the report
// can't be fetched
type Fallback struct {
	Skills     []string `json:"skills"`
	Experience string   `json:"experience"`
	Projects   string   `json:"projects"`
	Hackathons string   `json:"hackathons"`
}

// CandidateDetail is what the detail pane shows for the selected candidate
type CandidateDetail struct {
	State    DetailState             `json:"state"`
	Entry    *models.CandidateEntry  `json:"entry,omitempty"`
	Report   *models.CandidateReport `json:"report,omitempty"`
	Fallback *Fallback               `json:"fallback,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

func (cd CandidateDetail) clone() CandidateDetail {
	c := cd
	if cd.Entry != nil {
		e := *cd.Entry
		c.Entry = &e
	}
	if cd.Report != nil {
		r := *cd.Report
		c.Report = &r
	}
	if cd.Fallback != nil {
		f := *cd.Fallback
		c.Fallback = &f
	}
	return c
}

func fallbackFor(e models.CandidateEntry) *Fallback {
	return &Fallback{
		Skills:     textparse.Skills(e.Skills),
		Experience: e.Experience,
		Projects:   e.Projects,
		Hackathons: e.Hackathons,
	}
}

// Detail returns the current candidate detail
func (d *Dashboard) Detail() CandidateDetail {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.detail.clone()
}

// SelectedCandidate returns the selected entry id, 0 when none
func (d *Dashboard) SelectedCandidate() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.selectedCandidate
}

// ClearCandidate closes the detail pane
func (d *Dashboard) ClearCandidate() {
	d.mu.Lock()
	d.clearCandidateLocked()
	d.mu.Unlock()
	d.emit(Event{Type: DetailChanged})
}

// SelectCandidate shows an entry in the detail pane and fetches its report.
// The pane is in the loading state until the fetch resolves; a report that
// arrives after another candidate was selected is discarded. A failed fetch
// leaves the pane in the failed state with a fallback built from the entry.
// It returns the detail as it stands once this fetch has resolved.
func (d *Dashboard) SelectCandidate(ctx context.Context, entryID int64) (CandidateDetail, error) {
	d.mu.Lock()
	entry, ok := d.entryLocked(entryID)
	if !ok {
		d.mu.Unlock()
		return CandidateDetail{}, ErrEntryNotFound
	}
	d.selectedCandidate = entryID
	d.detailGen++
	gen := d.detailGen
	d.detail = CandidateDetail{State: StateLoading, Entry: &entry}
	d.mu.Unlock()

	d.emit(Event{Type: SelectionChanged, EntryID: entryID})
	d.emit(Event{Type: DetailChanged, EntryID: entryID})

	report, err := d.fetchReport(ctx, entryID)

	d.mu.Lock()
	// A later selection owns the pane, even when it picked the same entry again
	if d.selectedCandidate != entryID || d.detailGen != gen {
		current := d.selectedCandidate
		d.mu.Unlock()
		log.Printf("Discarding report for entry %d, selection moved to %d", entryID, current)
		return d.Detail(), nil
	}

	// Pick up favorite/notes changes made while loading
	if current, ok := d.entryLocked(entryID); ok {
		entry = current
	}
	if err != nil {
		log.Printf("Failed to load report for entry %d: %v", entryID, err)
		d.detail = CandidateDetail{
			State:    StateFailed,
			Entry:    &entry,
			Fallback: fallbackFor(entry),
			Error:    backend.UserMessage(err),
		}
	} else {
		r := *report
		r.IsFavorite = entry.IsFavorite
		r.Notes = entry.Notes
		d.detail = CandidateDetail{State: StateLoaded, Entry: &entry, Report: &r}
	}
	detail := d.detail.clone()
	d.mu.Unlock()

	d.emit(Event{Type: DetailChanged, EntryID: entryID})
	return detail, nil
}

// fetchReport collapses concurrent fetches for the same entry into one
// request. The shared request runs detached from any single caller, so one
// caller giving up doesn't fail the others that joined it.
func (d *Dashboard) fetchReport(ctx context.Context, entryID int64) (*models.CandidateReport, error) {
	ch := d.reports.DoChan(strconv.FormatInt(entryID, 10), func() (interface{}, error) {
		fetchCtx := context.WithoutCancel(ctx)
		if d.settings.ReportTimeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(fetchCtx, d.settings.ReportTimeout)
			defer cancel()
		}
		return d.backend.GetCandidateReport(fetchCtx, entryID)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	report, _ := res.Val.(*models.CandidateReport)
	if report == nil {
		return nil, errEmptyReport
	}
	return report, nil
}
