// Package reader maintains the connection to one zone's RFID reader and
// forwards what it sees.
package reader

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/clock"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
)

const DefaultPollInterval = 400 * time.Millisecond

// Sink receives everything a link observes. Implementations must return
// promptly once ctx is done.
type Sink interface {
	Sighted(ctx context.Context, zoneID string, tags []string, at time.Time)
	StateChanged(ctx context.Context, zoneID string, state domain.ConnectionState, cause error)
	Malformed(ctx context.Context, zoneID string, err error)
}

type LinkOption func(*Link)

func WithClock(clk clock.Clock) LinkOption {
	return func(l *Link) {
		if clk != nil {
			l.clock = clk
		}
	}
}

func WithPollInterval(d time.Duration) LinkOption {
	return func(l *Link) {
		if d > 0 {
			l.pollInterval = d
		}
	}
}

func WithBackoff(base, limit time.Duration) LinkOption {
	return func(l *Link) {
		l.backoff = NewBackoff(base, limit)
	}
}

func WithLogger(logger *log.Logger) LinkOption {
	return func(l *Link) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Link owns the connection to one reader. Connect and Disconnect may be called
// from any goroutine; the polling itself happens on a goroutine owned by the link.
type Link struct {
	zoneID       string
	source       Source
	sink         Sink
	clock        clock.Clock
	pollInterval time.Duration
	backoff      *Backoff
	logger       *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewLink(zoneID string, source Source, sink Sink, opts ...LinkOption) *Link {
	l := &Link{
		zoneID:       zoneID,
		source:       source,
		sink:         sink,
		clock:        clock.NewSystem(),
		pollInterval: DefaultPollInterval,
		backoff:      NewBackoff(DefaultBackoffBase, DefaultBackoffCap),
		logger:       log.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Link) ZoneID() string { return l.zoneID }

// Connect starts the link. It is a no-op when the link is already running.
// The link outlives ctx's cancellation; only Disconnect stops it.
func (l *Link) Connect(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done != nil {
		return nil
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	l.cancel = cancel
	l.done = make(chan struct{})
	go l.run(runCtx, l.done)
	return nil
}

// Disconnect stops the link and waits until its socket is released.
// Calling it on a stopped link does nothing.
func (l *Link) Disconnect() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (l *Link) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done != nil
}

func (l *Link) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer l.sink.StateChanged(context.WithoutCancel(ctx), l.zoneID, domain.ConnectionDisconnected, nil)

	for {
		l.sink.StateChanged(ctx, l.zoneID, domain.ConnectionConnecting, nil)
		session, err := l.source.Open(ctx)
		if err == nil {
			l.backoff.Reset()
			l.sink.StateChanged(ctx, l.zoneID, domain.ConnectionConnected, nil)
			err = l.poll(ctx, session)
			if cerr := session.Close(); cerr != nil && ctx.Err() == nil {
				l.logger.Printf("reader zone=%s close: %v", l.zoneID, cerr)
			}
		}
		if ctx.Err() != nil {
			return
		}

		wait := l.backoff.Next()
		l.sink.StateChanged(ctx, l.zoneID, domain.ConnectionFailed, err)
		l.logger.Printf("reader zone=%s source=%s failed: %v (retry in %s)", l.zoneID, l.source.Describe(), err, wait)
		if !sleep(ctx, wait) {
			return
		}
	}
}

func (l *Link) poll(ctx context.Context, session Session) error {
	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		read, err := session.Poll(ctx)
		if err != nil {
			return err
		}
		for _, bad := range read.Malformed {
			l.sink.Malformed(ctx, l.zoneID, bad)
		}
		if len(read.Tags) > 0 {
			l.sink.Sighted(ctx, l.zoneID, read.Tags, l.clock.Now())
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
