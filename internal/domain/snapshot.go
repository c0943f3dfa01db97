package domain

import "time"

// Snapshot is the published global presence view. A published Snapshot is
// never mutated; each publish builds a new value.
type Snapshot struct {
	Sequence    uint64          `json:"sequence"`
	GeneratedAt time.Time       `json:"generated_at"`
	Heartbeat   bool            `json:"heartbeat"`
	TotalZones  int             `json:"total_zones"`
	ActiveZones int             `json:"active_zones"`
	Zones       []ZoneSnapshot  `json:"zones"`
	Transfers   []TransferEntry `json:"transfers"`
	Logs        []LogEntry      `json:"logs"`

	// Single-zone fields mirror the implicit default zone for the legacy dashboard.
	ConnectionState ConnectionState `json:"connection_state"`
	Monitoring      bool            `json:"monitoring"`
	IP              string          `json:"ip"`
	ActiveCount     int             `json:"active_count"`
	MissingCount    int             `json:"missing_count"`
	ActiveTags      []TagEntry      `json:"active_tags"`
	MissingTags     []TagEntry      `json:"missing_tags"`
}

type ZoneSnapshot struct {
	ZoneID          string          `json:"zone_id"`
	ZoneName        string          `json:"zone_name"`
	IP              string          `json:"ip"`
	Port            int             `json:"port"`
	ConnectionState ConnectionState `json:"connection_state"`
	Monitoring      bool            `json:"monitoring"`
	ActiveCount     int             `json:"active_count"`
	MissingCount    int             `json:"missing_count"`
	ActiveTags      []TagEntry      `json:"active_tags"`
	MissingTags     []TagEntry      `json:"missing_tags"`
}

type TagEntry struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	LastSeen   float64 `json:"last_seen"`
	AgeSeconds float64 `json:"age_seconds"`
}

type TransferEntry struct {
	TagID      string `json:"tag_id"`
	TagName    string `json:"tag_name"`
	FromZone   string `json:"from_zone"`
	ToZone     string `json:"to_zone"`
	FromZoneID string `json:"from_zone_id"`
	ToZoneID   string `json:"to_zone_id"`
	Time       string `json:"time"`
}

// Zone returns the zone entry with the given id.
func (s *Snapshot) Zone(id string) (ZoneSnapshot, bool) {
	if s == nil {
		return ZoneSnapshot{}, false
	}
	for _, z := range s.Zones {
		if z.ZoneID == id {
			return z, true
		}
	}
	return ZoneSnapshot{}, false
}
