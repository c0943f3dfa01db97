package reader

import (
	"math/rand/v2"
	"time"
)

const (
	DefaultBackoffBase = time.Second
	DefaultBackoffCap  = 30 * time.Second
	backoffFactor      = 2
	backoffJitter      = 0.2
)

// Backoff computes reconnect delays: exponential from Base, never above Cap.
// Jitter is subtracted so the cap stays a hard bound.
type Backoff struct {
	Base time.Duration
	Cap  time.Duration

	attempt int
	rand    func() float64
}

func NewBackoff(base, limit time.Duration) *Backoff {
	if base <= 0 {
		base = DefaultBackoffBase
	}
	if limit < base {
		limit = base
	}
	return &Backoff{Base: base, Cap: limit, rand: rand.Float64}
}

// Next returns the delay before the next attempt and advances the sequence.
func (b *Backoff) Next() time.Duration {
	d := b.Base
	for i := 0; i < b.attempt && d < b.Cap; i++ {
		d *= backoffFactor
	}
	if d > b.Cap {
		d = b.Cap
	}
	b.attempt++

	r := 0.0
	if b.rand != nil {
		r = b.rand()
	}
	return d - time.Duration(float64(d)*backoffJitter*r)
}

// Reset restarts the sequence at Base.
func (b *Backoff) Reset() {
	b.attempt = 0
}

func (b *Backoff) Attempt() int {
	return b.attempt
}
