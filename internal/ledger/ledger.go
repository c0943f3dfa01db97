// Package ledger holds the per-zone record of when each tag was last seen.
//
// A Ledger is not safe for concurrent use. The aggregator pipeline owns every
// ledger and is the only goroutine that touches it.
package ledger

import (
	"sort"
	"time"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
)

type entry struct {
	lastSeen time.Time
	missing  bool
}

// Entry is a read-only view of one tag in the ledger.
type Entry struct {
	TagID    string
	LastSeen time.Time
	State    domain.TagState
}

// Ledger is the authoritative last-seen store for one zone.
type Ledger struct {
	zoneID  string
	timeout time.Duration
	entries map[string]*entry
}

// New returns an empty ledger for zoneID using timeout as the missing threshold.
func New(zoneID string, timeout time.Duration) *Ledger {
	if timeout <= 0 {
		timeout = domain.DefaultMissingTimeout
	}
	return &Ledger{
		zoneID:  zoneID,
		timeout: timeout,
		entries: make(map[string]*entry),
	}
}

func (l *Ledger) ZoneID() string { return l.zoneID }

func (l *Ledger) Timeout() time.Duration { return l.timeout }

// SetTimeout changes the missing threshold; states are re-derived on read.
func (l *Ledger) SetTimeout(d time.Duration) {
	if d > 0 {
		l.timeout = d
	}
}

// Record upserts the sighting and reports whether it is an appearance: the
// first sighting of the tag, or the first one after the tag was absent.
func (l *Ledger) Record(s domain.Sighting) bool {
	e, ok := l.entries[s.TagID]
	if !ok {
		l.entries[s.TagID] = &entry{lastSeen: s.ObservedAt}
		return true
	}
	absent := e.missing || domain.StateAt(s.ObservedAt, e.lastSeen, l.timeout) == domain.TagMissing
	if s.ObservedAt.After(e.lastSeen) {
		e.lastSeen = s.ObservedAt
	}
	e.missing = false
	return absent
}

// Sweep flags every tag whose last sighting is at least timeout old and
// returns the ids that were newly flagged, sorted.
func (l *Ledger) Sweep(now time.Time) []string {
	var gone []string
	for id, e := range l.entries {
		if e.missing {
			continue
		}
		if domain.StateAt(now, e.lastSeen, l.timeout) == domain.TagMissing {
			e.missing = true
			gone = append(gone, id)
		}
	}
	sort.Strings(gone)
	return gone
}

// Evict forgets a tag in this zone. It reports whether the tag was present.
func (l *Ledger) Evict(tagID string) bool {
	if _, ok := l.entries[tagID]; !ok {
		return false
	}
	delete(l.entries, tagID)
	return true
}

// LastSeen returns the last sighting time of tagID.
func (l *Ledger) LastSeen(tagID string) (time.Time, bool) {
	e, ok := l.entries[tagID]
	if !ok {
		return time.Time{}, false
	}
	return e.lastSeen, true
}

// Entries returns every tag with its state derived at now.
func (l *Ledger) Entries(now time.Time) []Entry {
	out := make([]Entry, 0, len(l.entries))
	for id, e := range l.entries {
		out = append(out, Entry{
			TagID:    id,
			LastSeen: e.lastSeen,
			State:    domain.StateAt(now, e.lastSeen, l.timeout),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TagID < out[j].TagID })
	return out
}

func (l *Ledger) Len() int { return len(l.entries) }

// Clear drops every entry.
func (l *Ledger) Clear() {
	l.entries = make(map[string]*entry)
}
