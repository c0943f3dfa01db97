// Package correlator turns per-zone appearance and disappearance events into
// tag-level outcomes, recognizing zone-to-zone transfers.
//
// Each tag runs through a small state machine:
//
//	Idle -> Present(Z)
//	Present(A) -> Leaving(A)      A flagged the tag missing
//	Present(A) -> Moving(A->B)    B saw the tag while A still holds it
//	Leaving(A) -> Present(B)      transfer, if B sees it within the window
//	Moving(A->B) -> Present(B)    transfer, once A lets go or the window elapses
//
// The correlator is not safe for concurrent use; time is supplied by the caller.
package correlator

import (
	"sort"
	"time"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
)

type Kind int

const (
	Appeared Kind = iota + 1
	WentMissing
	Transferred
	Anomaly
)

func (k Kind) String() string {
	switch k {
	case Appeared:
		return "appeared"
	case WentMissing:
		return "went_missing"
	case Transferred:
		return "transferred"
	case Anomaly:
		return "anomaly"
	default:
		return "unknown"
	}
}

// Reason explains an Anomaly.
type Reason string

const (
	ReasonDuplicateRead Reason = "duplicate_read"
	ReasonNotAdjacent   Reason = "not_adjacent"
)

// Outcome is one decision of the correlator. ZoneID is set for Appeared and
// WentMissing; FromZoneID/ToZoneID for Transferred and Anomaly.
type Outcome struct {
	Kind       Kind
	TagID      string
	ZoneID     string
	FromZoneID string
	ToZoneID   string
	At         time.Time
	Reason     Reason
}

type phase int

const (
	idle phase = iota
	present
	leaving
	moving
)

type track struct {
	phase phase
	zone  string // Present, Leaving, and the origin of Moving
	to    string // Moving target
	since time.Time
}

type Correlator struct {
	policy   Policy
	adjacent AdjacentFunc
	tags     map[string]*track
}

func New(policy Policy, adjacent AdjacentFunc) *Correlator {
	if adjacent == nil {
		adjacent = func(string, string) bool { return false }
	}
	return &Correlator{
		policy:   policy.normalized(),
		adjacent: adjacent,
		tags:     make(map[string]*track),
	}
}

func (c *Correlator) Policy() Policy { return c.policy }

func (c *Correlator) track(tagID string) *track {
	t, ok := c.tags[tagID]
	if !ok {
		t = &track{}
		c.tags[tagID] = t
	}
	return t
}

func (c *Correlator) commitWindow(from, to string) time.Duration {
	if c.policy.Adjacency == AdjacencyAdvisory && c.adjacent(from, to) {
		return c.policy.AdjacentWindow
	}
	return c.policy.Window
}

// transfer moves the tag to Present(to) and reports the transfer, or under the
// strict policy an anomaly plus the plain presence events.
func (c *Correlator) transfer(t *track, tagID, from, to string, at time.Time, fromGone bool) []Outcome {
	t.phase, t.zone, t.to, t.since = present, to, "", time.Time{}
	if c.policy.Adjacency == AdjacencyStrict && !c.adjacent(from, to) {
		out := []Outcome{{
			Kind:       Anomaly,
			TagID:      tagID,
			FromZoneID: from,
			ToZoneID:   to,
			At:         at,
			Reason:     ReasonNotAdjacent,
		}}
		if fromGone {
			out = append(out, Outcome{Kind: WentMissing, TagID: tagID, ZoneID: from, At: at})
		}
		return append(out, Outcome{Kind: Appeared, TagID: tagID, ZoneID: to, At: at})
	}
	return []Outcome{{Kind: Transferred, TagID: tagID, FromZoneID: from, ToZoneID: to, At: at}}
}

// Sighting feeds one sighting. fresh reports whether the zone's ledger treated
// it as an appearance.
func (c *Correlator) Sighting(s domain.Sighting, fresh bool) []Outcome {
	t := c.track(s.TagID)
	at := s.ObservedAt

	switch t.phase {
	case idle:
		t.phase, t.zone = present, s.ZoneID
		if fresh {
			return []Outcome{{Kind: Appeared, TagID: s.TagID, ZoneID: s.ZoneID, At: at}}
		}
		return nil

	case present:
		if s.ZoneID == t.zone || !fresh {
			return nil
		}
		t.phase, t.to, t.since = moving, s.ZoneID, at
		return nil

	case leaving:
		if s.ZoneID == t.zone {
			t.phase, t.since = present, time.Time{}
			return []Outcome{{Kind: Appeared, TagID: s.TagID, ZoneID: s.ZoneID, At: at}}
		}
		from := t.zone
		if at.Sub(t.since) <= c.policy.Window {
			return c.transfer(t, s.TagID, from, s.ZoneID, at, true)
		}
		t.phase, t.zone, t.since = present, s.ZoneID, time.Time{}
		return []Outcome{
			{Kind: WentMissing, TagID: s.TagID, ZoneID: from, At: at},
			{Kind: Appeared, TagID: s.TagID, ZoneID: s.ZoneID, At: at},
		}

	case moving:
		switch {
		case s.ZoneID == t.to:
			return nil
		case s.ZoneID == t.zone:
			if !at.After(t.since) {
				return nil
			}
			to := t.to
			t.phase, t.to, t.since = present, "", time.Time{}
			return []Outcome{
				{
					Kind:       Anomaly,
					TagID:      s.TagID,
					FromZoneID: t.zone,
					ToZoneID:   to,
					At:         at,
					Reason:     ReasonDuplicateRead,
				},
				{Kind: Appeared, TagID: s.TagID, ZoneID: to, At: at},
			}
		default:
			if fresh {
				t.to, t.since = s.ZoneID, at
			}
			return nil
		}
	}
	return nil
}

// Disappeared feeds a ledger sweep result: zoneID flagged tagID missing at at.
func (c *Correlator) Disappeared(tagID, zoneID string, at time.Time) []Outcome {
	t := c.track(tagID)
	missing := []Outcome{{Kind: WentMissing, TagID: tagID, ZoneID: zoneID, At: at}}

	switch t.phase {
	case present:
		if zoneID == t.zone {
			t.phase, t.since = leaving, at
			return nil
		}
		return missing
	case moving:
		switch zoneID {
		case t.zone:
			return c.transfer(t, tagID, t.zone, t.to, at, true)
		case t.to:
			t.phase, t.to, t.since = present, "", time.Time{}
			return nil
		}
		return missing
	case leaving:
		if zoneID == t.zone {
			return nil
		}
		return missing
	default:
		return missing
	}
}

// Expire resolves every pending decision whose window has elapsed at now.
// Tags are visited in id order so results are deterministic.
func (c *Correlator) Expire(now time.Time) []Outcome {
	ids := make([]string, 0, len(c.tags))
	for id, t := range c.tags {
		if t.phase == leaving || t.phase == moving {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	var out []Outcome
	for _, id := range ids {
		t := c.tags[id]
		switch t.phase {
		case leaving:
			if now.Sub(t.since) > c.policy.Window {
				zone := t.zone
				delete(c.tags, id)
				out = append(out, Outcome{Kind: WentMissing, TagID: id, ZoneID: zone, At: now})
			}
		case moving:
			if now.Sub(t.since) >= c.commitWindow(t.zone, t.to) {
				out = append(out, c.transfer(t, id, t.zone, t.to, now, false)...)
			}
		}
	}
	return out
}

// ForgetZone returns every tag tracked in zoneID to Idle.
func (c *Correlator) ForgetZone(zoneID string) {
	for id, t := range c.tags {
		switch {
		case t.phase == moving && t.to == zoneID:
			t.phase, t.to, t.since = present, "", time.Time{}
		case t.zone == zoneID:
			delete(c.tags, id)
		}
	}
}

// Forget drops all state for one tag.
func (c *Correlator) Forget(tagID string) {
	delete(c.tags, tagID)
}

// Zone returns the zone the tag is currently attributed to.
func (c *Correlator) Zone(tagID string) (string, bool) {
	t, ok := c.tags[tagID]
	if !ok || t.phase == idle {
		return "", false
	}
	return t.zone, true
}
