package tracker

import (
	"strings"
	"time"
)

// GearStatus is the lifecycle state of gear on the Tracker side.
type GearStatus string

const (
	GearDeployed GearStatus = "deployed"
	GearHauled   GearStatus = "hauled"
)

// ManufacturerHub marks gear that this service itself mirrored from the Hub.
// Such gear must never be treated as a Tracker-side original.
const ManufacturerHub = "rmwhub"

// HubSetIDKey is the additional-data key carrying the originating Hub set id
// on mirrored gear.
const HubSetIDKey = "rmwhub_set_id"

// DeviceLocation is a device position in decimal degrees.
type DeviceLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Device is a single tracked unit attached to a gear record.
type Device struct {
	DeviceID     string         `json:"device_id"`
	MfrDeviceID  string         `json:"mfr_device_id"`
	Label        string         `json:"label"`
	Location     DeviceLocation `json:"location"`
	LastUpdated  time.Time      `json:"last_updated"`
	LastDeployed *time.Time     `json:"last_deployed"`
}

// MatchID returns the identifier used for cross-system matching: the
// manufacturer-assigned id when present, otherwise the Tracker's own id.
func (d Device) MatchID() string {
	if d.MfrDeviceID != "" {
		return d.MfrDeviceID
	}
	return d.DeviceID
}

// Gear is one gear record on the Tracker.
type Gear struct {
	ID           string          `json:"id"`
	DisplayID    string          `json:"display_id"`
	Name         string          `json:"name"`
	Status       GearStatus      `json:"status"`
	LastUpdated  time.Time       `json:"last_updated"`
	Devices      []Device        `json:"devices"`
	Type         string          `json:"type"`
	Manufacturer string          `json:"manufacturer"`
	Location     *DeviceLocation `json:"location,omitempty"`
	Additional   map[string]any  `json:"additional,omitempty"`
}

// IsHubMirror reports whether this gear is one of the service's own
// round-tripped Hub writes.
func (g Gear) IsHubMirror() bool {
	return strings.EqualFold(g.Manufacturer, ManufacturerHub)
}

// HubSetID returns the originating Hub set id carried in the gear's
// additional data, or "" when the gear has no Hub cross-reference.
func (g Gear) HubSetID() string {
	if g.Additional == nil {
		return ""
	}
	id, _ := g.Additional[HubSetIDKey].(string)
	return id
}
