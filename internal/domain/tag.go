package domain

import (
	"strings"
	"time"
)

// TagState is the derived presence state of a tag within one zone.
type TagState string

const (
	TagActive  TagState = "active"
	TagMissing TagState = "missing"
)

// StateAt derives presence from recency: active iff now-lastSeen < timeout.
func StateAt(now, lastSeen time.Time, timeout time.Duration) TagState {
	if now.Sub(lastSeen) < timeout {
		return TagActive
	}
	return TagMissing
}

// DefaultTagName derives the label shown until a user names the tag.
func DefaultTagName(tagID string) string {
	id := strings.ToUpper(strings.TrimSpace(tagID))
	if len(id) > 4 {
		id = id[len(id)-4:]
	}
	return "Asset-" + id
}
