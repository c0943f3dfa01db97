// Package hub fans published snapshots out to subscribers. Each subscriber has
// a bounded queue; a slow subscriber loses its oldest frames instead of
// holding up the others or the pipeline.
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"sync/atomic"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
)

const DefaultQueueSize = 8

var ErrClosed = errors.New("subscription closed")

type Hub struct {
	queueSize int
	logger    *log.Logger
	in        chan *domain.Snapshot

	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64
	last   []byte
}

func New(queueSize int, logger *log.Logger) *Hub {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		queueSize: queueSize,
		logger:    logger,
		in:        make(chan *domain.Snapshot, 1),
		subs:      make(map[uint64]*Subscription),
	}
}

// Publish hands a snapshot to the fan-out goroutine. It never blocks: if the
// previous snapshot has not been picked up yet it is replaced.
func (h *Hub) Publish(snap *domain.Snapshot) {
	for {
		select {
		case h.in <- snap:
			return
		default:
		}
		select {
		case <-h.in:
		default:
		}
	}
}

// Run encodes each published snapshot once and offers it to every subscriber.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case snap := <-h.in:
			frame, err := json.Marshal(snap)
			if err != nil {
				h.logger.Printf("hub encode snapshot seq=%d: %v", snap.Sequence, err)
				continue
			}
			h.broadcast(frame)
		}
	}
}

func (h *Hub) broadcast(frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = frame
	for _, sub := range h.subs {
		sub.offer(frame)
	}
}

// Subscribe registers a subscriber. The most recent frame, if any, is queued
// right away so a new subscriber starts from the current state.
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		id:     h.nextID,
		hub:    h,
		limit:  h.queueSize,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	h.subs[sub.id] = sub
	if h.last != nil {
		sub.offer(h.last)
	}
	return sub
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	subs := make([]*Subscription, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()
	for _, s := range subs {
		s.Close()
	}
}

type Subscription struct {
	id     uint64
	hub    *Hub
	limit  int
	notify chan struct{}
	done   chan struct{}

	mu      sync.Mutex
	queue   [][]byte
	closed  bool
	dropped atomic.Uint64
}

func (s *Subscription) offer(frame []byte) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if len(s.queue) >= s.limit {
		s.queue = s.queue[1:]
		s.dropped.Add(1)
	}
	s.queue = append(s.queue, frame)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Next blocks until a frame is available, ctx is done or the subscription is
// closed. Frames come out oldest first.
func (s *Subscription) Next(ctx context.Context) ([]byte, error) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			frame := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return frame, nil
		}
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return nil, ErrClosed
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.done:
		case <-s.notify:
		}
	}
}

// Dropped counts frames discarded because the queue was full.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.queue = nil
	s.mu.Unlock()

	close(s.done)
	s.hub.remove(s.id)
}
