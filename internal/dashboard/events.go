package dashboard

// EventType names a dashboard state change
type EventType string

const (
	LeaderboardsChanged EventType = "leaderboards_changed"
	EntryChanged        EventType = "entry_changed"
	DetailChanged       EventType = "detail_changed"
	SelectionChanged    EventType = "selection_changed"
	SessionExpired      EventType = "session_expired"
)

// Event tells views which part of the dashboard to re-render
type Event struct {
	Type          EventType `json:"type"`
	LeaderboardID int64     `json:"leaderboardId,omitempty"`
	EntryID       int64     `json:"entryId,omitempty"`
}

// Subscribe registers fn for change events and returns a function that
// removes it. fn is called without the dashboard lock held.
func (d *Dashboard) Subscribe(fn func(Event)) func() {
	d.subMu.Lock()
	id := d.nextSubID
	d.nextSubID++
	d.subscribers[id] = fn
	d.subMu.Unlock()

	return func() {
		d.subMu.Lock()
		delete(d.subscribers, id)
		d.subMu.Unlock()
	}
}

func (d *Dashboard) emit(ev Event) {
	d.subMu.Lock()
	fns := make([]func(Event), 0, len(d.subscribers))
	for _, fn := range d.subscribers {
		fns = append(fns, fn)
	}
	d.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
