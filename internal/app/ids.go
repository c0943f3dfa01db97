package app

import "github.com/google/uuid"

// DefaultZoneID identifies the implicit zone behind the single-reader
// endpoints. It is stable across restarts and databases.
var DefaultZoneID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("zone:default")).String()

const DefaultZoneName = "Default Zone"

func newZoneID() string {
	return uuid.NewString()
}
