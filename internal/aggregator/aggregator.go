// Package aggregator is the single pipeline that owns every zone's ledger,
// the transfer correlator and the published snapshot.
//
// Producers (reader links, services) only post messages into a bounded inbox;
// one goroutine running Run applies them in order, so none of the state below
// needs locking. Readers get published snapshots through Snapshot, which never
// blocks the pipeline.
package aggregator

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/clock"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/correlator"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/ledger"
)

const (
	DefaultSweepInterval     = time.Second
	DefaultPublishInterval   = 250 * time.Millisecond
	DefaultHeartbeatInterval = 2 * time.Second

	inboxSize   = 4096
	historySize = 50
)

var ErrStopped = errors.New("aggregator stopped")

// Publisher receives every published snapshot. Publish must not block.
type Publisher interface {
	Publish(*domain.Snapshot)
}

type Option func(*Aggregator)

func WithClock(clk clock.Clock) Option {
	return func(a *Aggregator) {
		if clk != nil {
			a.clock = clk
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func WithPolicy(p correlator.Policy) Option {
	return func(a *Aggregator) {
		a.policy = p
	}
}

// WithSweepInterval sets how often ledgers are swept. Zero disables the
// ticker; Sweep can still be called.
func WithSweepInterval(d time.Duration) Option {
	return func(a *Aggregator) {
		a.sweepInterval = d
	}
}

// WithPublishInterval sets how often pending changes are published. Zero
// disables the ticker; Sync publishes pending changes.
func WithPublishInterval(d time.Duration) Option {
	return func(a *Aggregator) {
		a.publishInterval = d
	}
}

// WithHeartbeatInterval sets the unconditional publish period. Zero disables it.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(a *Aggregator) {
		a.heartbeatInterval = d
	}
}

func WithPublisher(p Publisher) Option {
	return func(a *Aggregator) {
		a.publisher = p
	}
}

// WithDefaultZone names the zone mirrored into the single-zone snapshot fields.
func WithDefaultZone(zoneID string) Option {
	return func(a *Aggregator) {
		a.defaultZoneID = zoneID
	}
}

type zoneState struct {
	zone    domain.Zone
	state   domain.ConnectionState
	running bool
	ledger  *ledger.Ledger
}

type Aggregator struct {
	clock             clock.Clock
	logger            *log.Logger
	policy            correlator.Policy
	sweepInterval     time.Duration
	publishInterval   time.Duration
	heartbeatInterval time.Duration
	publisher         Publisher
	defaultZoneID     string

	inbox   chan message
	stopped chan struct{}
	started atomic.Bool
	latest  atomic.Pointer[domain.Snapshot]

	// Owned by the Run goroutine.
	zones     map[string]*zoneState
	names     map[string]string
	known     map[string]struct{}
	corr      *correlator.Correlator
	transfers []domain.TransferEvent
	logs      []domain.LogEntry
	dirty     bool
	seq       uint64
}

func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		clock:             clock.NewSystem(),
		logger:            log.Default(),
		policy:            correlator.DefaultPolicy(),
		sweepInterval:     DefaultSweepInterval,
		publishInterval:   DefaultPublishInterval,
		heartbeatInterval: DefaultHeartbeatInterval,
		inbox:             make(chan message, inboxSize),
		stopped:           make(chan struct{}),
		zones:             make(map[string]*zoneState),
		names:             make(map[string]string),
		known:             make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.corr = correlator.New(a.policy, a.adjacent)
	a.latest.Store(a.build(a.clock.Now(), false))
	return a
}

// Snapshot returns the most recently published snapshot. Callers must not
// modify it.
func (a *Aggregator) Snapshot() *domain.Snapshot {
	return a.latest.Load()
}

// Run consumes the inbox until ctx is done. It must be called once.
func (a *Aggregator) Run(ctx context.Context) error {
	if !a.started.CompareAndSwap(false, true) {
		return errors.New("aggregator already running")
	}
	defer close(a.stopped)

	sweepC, stopSweep := ticker(a.sweepInterval)
	defer stopSweep()
	publishC, stopPublish := ticker(a.publishInterval)
	defer stopPublish()
	heartbeatC, stopHeartbeat := ticker(a.heartbeatInterval)
	defer stopHeartbeat()

	a.publish(false)
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-a.inbox:
			a.handle(msg)
		case <-sweepC:
			a.sweep()
		case <-publishC:
			if a.dirty {
				a.publish(false)
			}
		case <-heartbeatC:
			a.publish(!a.dirty)
		}
	}
}

func ticker(d time.Duration) (<-chan time.Time, func()) {
	if d <= 0 {
		return nil, func() {}
	}
	t := time.NewTicker(d)
	return t.C, t.Stop
}

func (a *Aggregator) post(ctx context.Context, msg message) error {
	select {
	case a.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-a.stopped:
		return ErrStopped
	}
}

func (a *Aggregator) publish(heartbeat bool) {
	a.seq++
	snap := a.build(a.clock.Now(), heartbeat)
	a.latest.Store(snap)
	a.dirty = false
	if a.publisher != nil {
		a.publisher.Publish(snap)
	}
}

func (a *Aggregator) adjacent(x, y string) bool {
	zx, ok := a.zones[x]
	if !ok {
		return false
	}
	zy, ok := a.zones[y]
	if !ok {
		return false
	}
	return domain.Adjacent(zx.zone, zy.zone)
}

func (a *Aggregator) tagName(tagID string) string {
	if name, ok := a.names[tagID]; ok && name != "" {
		return name
	}
	return domain.DefaultTagName(tagID)
}

func (a *Aggregator) zoneName(zoneID string) string {
	if zs, ok := a.zones[zoneID]; ok {
		return zs.zone.Name
	}
	return zoneID
}
