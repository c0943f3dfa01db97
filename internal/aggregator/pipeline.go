package aggregator

import (
	"fmt"
	"sort"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/correlator"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/ledger"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/logging"
)

func (a *Aggregator) handle(msg message) {
	switch m := msg.(type) {
	case sightedMsg:
		a.sighted(m)
	case stateMsg:
		a.stateChanged(m)
	case malformedMsg:
		a.logger.Printf("reader zone=%s malformed: %v", m.zoneID, m.err)
	case zoneConfiguredMsg:
		a.configure(m.zone)
	case zoneRunningMsg:
		a.setRunning(m.zoneID, m.running)
	case zoneRemovedMsg:
		a.remove(m.zoneID)
	case renameMsg:
		a.names[m.tagID] = m.name
		a.known[m.tagID] = struct{}{}
		a.feed(domain.LogInfo, fmt.Sprintf("Tag %s renamed to %s", m.tagID, m.name))
	case namesMsg:
		for id, name := range m.names {
			a.names[id] = name
		}
		a.dirty = true
	case logMsg:
		a.feed(m.typ, m.msg)
	case sweepMsg:
		a.sweep()
	case syncMsg:
		if a.dirty {
			a.publish(false)
		}
		close(m.done)
	case knownMsg:
		_, seen := a.known[m.tagID]
		_, named := a.names[m.tagID]
		m.reply <- seen || named
	}
}

func (a *Aggregator) sighted(m sightedMsg) {
	zs, ok := a.zones[m.zoneID]
	if !ok {
		return
	}
	for _, tag := range m.tags {
		s := domain.Sighting{TagID: tag, ZoneID: m.zoneID, ObservedAt: m.at}
		a.known[tag] = struct{}{}
		fresh := zs.ledger.Record(s)
		if fresh {
			a.dirty = true
		}
		a.apply(a.corr.Sighting(s, fresh))
	}
}

func (a *Aggregator) stateChanged(m stateMsg) {
	zs, ok := a.zones[m.zoneID]
	if !ok || zs.state == m.state {
		return
	}
	zs.state = m.state
	a.dirty = true

	name := zs.zone.Name
	switch m.state {
	case domain.ConnectionConnecting:
		if !zs.zone.SimulationMode {
			a.feed(domain.LogInfo, fmt.Sprintf("%s: Connecting to %s:%d...", name, zs.zone.ReaderAddress, zs.zone.ReaderPort))
		}
	case domain.ConnectionConnected:
		if zs.zone.SimulationMode {
			a.feed(domain.LogSuccess, fmt.Sprintf("%s: Simulation started - generating tags", name))
		} else {
			a.feed(domain.LogSuccess, fmt.Sprintf("%s: Connected successfully to %s", name, zs.zone.ReaderAddress))
		}
	case domain.ConnectionFailed:
		a.feed(domain.LogError, fmt.Sprintf("%s: Connection failed: %v", name, m.cause))
	}
}

func (a *Aggregator) configure(z domain.Zone) {
	a.dirty = true
	if zs, ok := a.zones[z.ID]; ok {
		zs.zone = z
		zs.ledger.SetTimeout(z.MissingTimeout)
		return
	}
	a.zones[z.ID] = &zoneState{
		zone:   z,
		state:  domain.ConnectionDisconnected,
		ledger: ledger.New(z.ID, z.MissingTimeout),
	}
}

func (a *Aggregator) setRunning(zoneID string, running bool) {
	zs, ok := a.zones[zoneID]
	if !ok {
		return
	}
	a.dirty = true
	if running {
		if !zs.running {
			zs.running = true
			a.feed(domain.LogInfo, fmt.Sprintf("%s: Starting monitor on %s...", zs.zone.Name, zs.zone.ReaderAddress))
		}
		return
	}

	wasRunning := zs.running
	zs.running = false
	zs.state = domain.ConnectionDisconnected
	zs.ledger.Clear()
	a.corr.ForgetZone(zoneID)
	if wasRunning {
		a.feed(domain.LogWarn, fmt.Sprintf("%s: Monitor stopped", zs.zone.Name))
	}
}

func (a *Aggregator) remove(zoneID string) {
	zs, ok := a.zones[zoneID]
	if !ok {
		return
	}
	delete(a.zones, zoneID)
	a.corr.ForgetZone(zoneID)
	a.dirty = true
	a.feed(domain.LogWarn, fmt.Sprintf("Zone %s removed", zs.zone.Name))
}

// sweep resolves expired correlation windows first, then flags tags whose
// timeout elapsed, so a transfer committed this tick suppresses the
// disappearance it explains.
func (a *Aggregator) sweep() {
	now := a.clock.Now()
	a.apply(a.corr.Expire(now))

	ids := make([]string, 0, len(a.zones))
	for id := range a.zones {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		zs, ok := a.zones[id]
		if !ok {
			continue
		}
		gone := zs.ledger.Sweep(now)
		if len(gone) > 0 {
			a.dirty = true
		}
		for _, tag := range gone {
			a.apply(a.corr.Disappeared(tag, id, now))
		}
	}
}

func (a *Aggregator) apply(outcomes []correlator.Outcome) {
	for _, o := range outcomes {
		name := a.tagName(o.TagID)
		switch o.Kind {
		case correlator.Appeared:
			a.feed(domain.LogSuccess, fmt.Sprintf("%s detected in %s", name, a.zoneName(o.ZoneID)))
		case correlator.WentMissing:
			a.feed(domain.LogWarn, fmt.Sprintf("%s went missing from %s", name, a.zoneName(o.ZoneID)))
		case correlator.Transferred:
			a.transfer(o, name)
		case correlator.Anomaly:
			a.anomaly(o, name)
		}
	}
}

func (a *Aggregator) transfer(o correlator.Outcome, name string) {
	if zs, ok := a.zones[o.FromZoneID]; ok {
		zs.ledger.Evict(o.TagID)
	}
	ev := domain.TransferEvent{
		TagID:      o.TagID,
		TagName:    name,
		FromZoneID: o.FromZoneID,
		FromZone:   a.zoneName(o.FromZoneID),
		ToZoneID:   o.ToZoneID,
		ToZone:     a.zoneName(o.ToZoneID),
		DetectedAt: o.At,
	}
	a.transfers = append([]domain.TransferEvent{ev}, a.transfers...)
	if len(a.transfers) > historySize {
		a.transfers = a.transfers[:historySize]
	}
	a.feed(domain.LogInfo, fmt.Sprintf("%s moved from %s to %s", name, ev.FromZone, ev.ToZone))
}

func (a *Aggregator) anomaly(o correlator.Outcome, name string) {
	from, to := a.zoneName(o.FromZoneID), a.zoneName(o.ToZoneID)
	switch o.Reason {
	case correlator.ReasonDuplicateRead:
		a.feed(domain.LogWarn, fmt.Sprintf("%s read by %s and %s at once", name, from, to))
	case correlator.ReasonNotAdjacent:
		a.feed(domain.LogWarn, fmt.Sprintf("%s moved between non-adjacent zones %s and %s", name, from, to))
	default:
		a.feed(domain.LogWarn, fmt.Sprintf("%s: unexpected movement between %s and %s", name, from, to))
	}
}

// feed appends to the bounded activity log, oldest first, and mirrors the
// line to the process logger.
func (a *Aggregator) feed(typ domain.LogType, msg string) {
	a.logs = append(a.logs, domain.LogEntry{
		Time: a.clock.Now().Local().Format(domain.LogTimeLayout),
		Type: typ,
		Msg:  msg,
	})
	if over := len(a.logs) - historySize; over > 0 {
		a.logs = append(a.logs[:0:0], a.logs[over:]...)
	}
	a.dirty = true
	logging.Feed(a.logger, typ, msg)
}
