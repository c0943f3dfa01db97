package domain

import "time"

// Sighting is one observation of a tag by a zone's reader.
type Sighting struct {
	TagID      string
	ZoneID     string
	ObservedAt time.Time
}

// TransferEvent records a detected movement of a tag between zones.
type TransferEvent struct {
	TagID      string
	TagName    string
	FromZoneID string
	FromZone   string
	ToZoneID   string
	ToZone     string
	DetectedAt time.Time
}

type LogType string

const (
	LogInfo    LogType = "info"
	LogSuccess LogType = "success"
	LogWarn    LogType = "warn"
	LogError   LogType = "error"
)

// LogEntry is one line of the dashboard activity feed.
type LogEntry struct {
	Time string  `json:"time"`
	Type LogType `json:"type"`
	Msg  string  `json:"msg"`
}

// LogTimeLayout is the wall-clock layout used by the activity feed.
const LogTimeLayout = "15:04:05"
