package correlator

import (
	"fmt"
	"strings"
	"time"
)

// Adjacency selects how declared zone adjacency influences correlation.
type Adjacency string

const (
	// AdjacencyAdvisory shortens the commit delay between adjacent zones.
	AdjacencyAdvisory Adjacency = "advisory"
	// AdjacencyStrict only accepts transfers between adjacent zones.
	AdjacencyStrict Adjacency = "strict"
	// AdjacencyIgnore treats every pair of zones the same.
	AdjacencyIgnore Adjacency = "ignore"
)

const (
	DefaultWindow         = 5 * time.Second
	DefaultAdjacentWindow = 2 * time.Second
)

// ParseAdjacency accepts the mode names case-insensitively; "" means advisory.
func ParseAdjacency(s string) (Adjacency, error) {
	switch Adjacency(strings.ToLower(strings.TrimSpace(s))) {
	case "", AdjacencyAdvisory:
		return AdjacencyAdvisory, nil
	case AdjacencyStrict:
		return AdjacencyStrict, nil
	case AdjacencyIgnore:
		return AdjacencyIgnore, nil
	default:
		return "", fmt.Errorf("unknown adjacency mode %q", s)
	}
}

type Policy struct {
	Window         time.Duration
	AdjacentWindow time.Duration
	Adjacency      Adjacency
}

func DefaultPolicy() Policy {
	return Policy{
		Window:         DefaultWindow,
		AdjacentWindow: DefaultAdjacentWindow,
		Adjacency:      AdjacencyAdvisory,
	}
}

func (p Policy) normalized() Policy {
	if p.Window <= 0 {
		p.Window = DefaultWindow
	}
	if p.AdjacentWindow <= 0 {
		p.AdjacentWindow = DefaultAdjacentWindow
	}
	if p.Adjacency == "" {
		p.Adjacency = AdjacencyAdvisory
	}
	return p
}

// AdjacentFunc reports whether two zones are declared adjacent.
type AdjacentFunc func(a, b string) bool
