package domain

import "time"

// ConnectionState is the runtime state of a zone's reader link.
type ConnectionState string

const (
	ConnectionDisconnected ConnectionState = "disconnected"
	ConnectionConnecting   ConnectionState = "connecting"
	ConnectionConnected    ConnectionState = "connected"
	ConnectionFailed       ConnectionState = "failed"
)

const (
	DefaultReaderPort     = 2189
	DefaultMissingTimeout = 8 * time.Second
	MaxMissingTimeout     = time.Hour
	MaxNameLength         = 100
)

// Zone is a monitored area served by one reader connection.
type Zone struct {
	ID             string
	Name           string
	ReaderAddress  string
	ReaderPort     int
	MissingTimeout time.Duration
	SimulationMode bool
	// MappedZoneID declares an adjacent zone; it biases transfer correlation only.
	MappedZoneID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MappedTo returns the mapped zone id or "".
func (z Zone) MappedTo() string {
	if z.MappedZoneID == nil {
		return ""
	}
	return *z.MappedZoneID
}

// Adjacent reports whether a and b declare each other through mapped_zone_id.
func Adjacent(a, b Zone) bool {
	return (a.MappedTo() != "" && a.MappedTo() == b.ID) ||
		(b.MappedTo() != "" && b.MappedTo() == a.ID)
}
