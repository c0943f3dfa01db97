package aggregator

import (
	"context"
	"time"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
)

type message interface{ isMessage() }

type sightedMsg struct {
	zoneID string
	tags   []string
	at     time.Time
}

type stateMsg struct {
	zoneID string
	state  domain.ConnectionState
	cause  error
}

type malformedMsg struct {
	zoneID string
	err    error
}

type zoneConfiguredMsg struct{ zone domain.Zone }

type zoneRunningMsg struct {
	zoneID  string
	running bool
}

type zoneRemovedMsg struct{ zoneID string }

type renameMsg struct{ tagID, name string }

type namesMsg struct{ names map[string]string }

type logMsg struct {
	typ domain.LogType
	msg string
}

type sweepMsg struct{}

type syncMsg struct{ done chan struct{} }

type knownMsg struct {
	tagID string
	reply chan bool
}

func (sightedMsg) isMessage()        {}
func (stateMsg) isMessage()          {}
func (malformedMsg) isMessage()      {}
func (zoneConfiguredMsg) isMessage() {}
func (zoneRunningMsg) isMessage()    {}
func (zoneRemovedMsg) isMessage()    {}
func (renameMsg) isMessage()         {}
func (namesMsg) isMessage()          {}
func (logMsg) isMessage()            {}
func (sweepMsg) isMessage()          {}
func (syncMsg) isMessage()           {}
func (knownMsg) isMessage()          {}

// Sighted implements reader.Sink.
func (a *Aggregator) Sighted(ctx context.Context, zoneID string, tags []string, at time.Time) {
	_ = a.post(ctx, sightedMsg{zoneID: zoneID, tags: tags, at: at})
}

// StateChanged implements reader.Sink.
func (a *Aggregator) StateChanged(ctx context.Context, zoneID string, state domain.ConnectionState, cause error) {
	_ = a.post(ctx, stateMsg{zoneID: zoneID, state: state, cause: cause})
}

// Malformed implements reader.Sink.
func (a *Aggregator) Malformed(ctx context.Context, zoneID string, err error) {
	_ = a.post(ctx, malformedMsg{zoneID: zoneID, err: err})
}

// ZoneConfigured registers a zone or applies new settings to it. The zone's
// ledger survives reconfiguration.
func (a *Aggregator) ZoneConfigured(ctx context.Context, zone domain.Zone) error {
	return a.post(ctx, zoneConfiguredMsg{zone: zone})
}

// ZoneStarted marks a zone as monitored. Post it before connecting its link.
func (a *Aggregator) ZoneStarted(ctx context.Context, zoneID string) error {
	return a.post(ctx, zoneRunningMsg{zoneID: zoneID, running: true})
}

// ZoneStopped marks a zone as idle and drops its tags. Post it after the
// zone's link has disconnected.
func (a *Aggregator) ZoneStopped(ctx context.Context, zoneID string) error {
	return a.post(ctx, zoneRunningMsg{zoneID: zoneID, running: false})
}

// ZoneRemoved forgets a zone entirely.
func (a *Aggregator) ZoneRemoved(ctx context.Context, zoneID string) error {
	return a.post(ctx, zoneRemovedMsg{zoneID: zoneID})
}

func (a *Aggregator) Rename(ctx context.Context, tagID, name string) error {
	return a.post(ctx, renameMsg{tagID: tagID, name: name})
}

// SetNames merges stored display names, typically once at boot.
func (a *Aggregator) SetNames(ctx context.Context, names map[string]string) error {
	cp := make(map[string]string, len(names))
	for k, v := range names {
		cp[k] = v
	}
	return a.post(ctx, namesMsg{names: cp})
}

// Log appends a line to the activity feed.
func (a *Aggregator) Log(ctx context.Context, typ domain.LogType, msg string) error {
	return a.post(ctx, logMsg{typ: typ, msg: msg})
}

// Sweep requests an immediate ledger sweep.
func (a *Aggregator) Sweep(ctx context.Context) error {
	return a.post(ctx, sweepMsg{})
}

// Sync waits until every message posted before it has been applied, and
// publishes pending changes.
func (a *Aggregator) Sync(ctx context.Context) error {
	done := make(chan struct{})
	if err := a.post(ctx, syncMsg{done: done}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-a.stopped:
		return ErrStopped
	}
}

// Known reports whether the tag has been sighted by any zone or carries a
// stored name.
func (a *Aggregator) Known(ctx context.Context, tagID string) (bool, error) {
	reply := make(chan bool, 1)
	if err := a.post(ctx, knownMsg{tagID: tagID, reply: reply}); err != nil {
		return false, err
	}
	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	case <-a.stopped:
		return false, ErrStopped
	}
}
