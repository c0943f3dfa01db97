package reader

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"time"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/clock"
)

const (
	SimPollInterval = 500 * time.Millisecond
	simPoolSize     = 14
	simRoamers      = 3
	simVisibility   = 0.9
	simRoamSlot     = 20 * time.Second
)

type SimOption func(*SimSource)

func WithRand(f func() float64) SimOption {
	return func(s *SimSource) {
		if f != nil {
			s.rand = f
		}
	}
}

func WithSimClock(clk clock.Clock) SimOption {
	return func(s *SimSource) {
		if clk != nil {
			s.clock = clk
		}
	}
}

// SimSource fabricates reads for a zone without hardware. Each zone has its
// own pool of tags, and a few shared roaming tags hop between zones every slot.
type SimSource struct {
	zoneID string
	pool   []string
	rand   func() float64
	clock  clock.Clock
}

func NewSimSource(zoneID string, opts ...SimOption) *SimSource {
	s := &SimSource{
		zoneID: zoneID,
		rand:   rand.Float64,
		clock:  clock.NewSystem(),
	}
	prefix := hash32(zoneID) & 0xFFFF
	for i := 1; i <= simPoolSize; i++ {
		s.pool = append(s.pool, fmt.Sprintf("E2%04X00%04X", prefix, i))
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SimSource) Describe() string { return "simulation" }

// Pool returns the zone-local tag ids.
func (s *SimSource) Pool() []string {
	return append([]string(nil), s.pool...)
}

func (s *SimSource) Open(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return simSession{src: s}, nil
}

func (s *SimSource) read() Read {
	var read Read
	for _, tag := range s.pool {
		if s.rand() < simVisibility {
			read.Tags = append(read.Tags, tag)
		}
	}
	slot := s.clock.Now().Unix() / int64(simRoamSlot/time.Second)
	for k := 1; k <= simRoamers; k++ {
		if hash32(fmt.Sprintf("%s/%d/%d", s.zoneID, k, slot))%3 == 0 {
			read.Tags = append(read.Tags, RoamerID(k))
		}
	}
	return read
}

// RoamerID is the id of the k-th roaming simulated tag.
func RoamerID(k int) string {
	return fmt.Sprintf("E200FFFF%05X", k)
}

type simSession struct {
	src *SimSource
}

func (s simSession) Poll(ctx context.Context) (Read, error) {
	if err := ctx.Err(); err != nil {
		return Read{}, err
	}
	return s.src.read(), nil
}

func (simSession) Close() error { return nil }

func hash32(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
