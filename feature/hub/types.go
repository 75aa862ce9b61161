package hub

import (
	"errors"
	"time"

	"gearsync/core/ident"
	"gearsync/core/timeutil"
)

// Status is the lifecycle state of a trap on the Hub side.
type Status string

const (
	StatusDeployed  Status = "deployed"
	StatusRetrieved Status = "retrieved"
)

// Deployment types reported by the Hub.
const (
	DeploymentTrawl  = "trawl"
	DeploymentSingle = "single"
)

// ErrMissingTimestamp indicates a trap carries none of the timestamps its
// status requires, so its recency cannot be determined.
var ErrMissingTimestamp = errors.New("trap has no usable timestamp")

// Trap is a single physical gear unit within a Hub gear set.
type Trap struct {
	ID                   string  `json:"id"`
	Sequence             int     `json:"sequence"`
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`
	DeployDatetimeUTC    string  `json:"deploy_datetime_utc,omitempty"`
	SurfaceDatetimeUTC   string  `json:"surface_datetime_utc,omitempty"`
	RetrievedDatetimeUTC string  `json:"retrieved_datetime_utc,omitempty"`
	Status               Status  `json:"status"`
	Accuracy             string  `json:"accuracy"`
	ReleaseType          string  `json:"release_type"`
	IsOnEnd              bool    `json:"is_on_end"`
	Manufacturer         string  `json:"manufacturer,omitempty"`
	SerialNumber         string  `json:"serial_number,omitempty"`
}

// LatestUpdateTime returns the single most recent timestamp governing the
// trap. Deployed traps use the deploy time; retrieved traps fall back through
// retrieved, surface and deploy times in that order.
func (t Trap) LatestUpdateTime() (time.Time, error) {
	var candidates []string

	switch t.Status {
	case StatusDeployed:
		candidates = []string{t.DeployDatetimeUTC}
	case StatusRetrieved:
		candidates = []string{t.RetrievedDatetimeUTC, t.SurfaceDatetimeUTC, t.DeployDatetimeUTC}
	default:
		return time.Time{}, ErrMissingTimestamp
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		return timeutil.Parse(c)
	}

	return time.Time{}, ErrMissingTimestamp
}

// GearSet is a group of traps deployed or retrieved together.
type GearSet struct {
	ID             string   `json:"id"`
	VesselID       string   `json:"vessel_id"`
	DeploymentType string   `json:"deployment_type"`
	TrapsInSet     int      `json:"traps_in_set"`
	TrawlPath      string   `json:"trawl_path"`
	ShareWith      []string `json:"share_with"`
	WhenUpdatedUTC string   `json:"when_updated_utc"`
	Traps          []Trap   `json:"traps"`
}

// WhenUpdated parses the set-level authoritative update timestamp.
func (s GearSet) WhenUpdated() (time.Time, error) {
	return timeutil.Parse(s.WhenUpdatedUTC)
}

// TrapIDs returns the normalized identifiers of every trap in the set.
// Traps whose id cannot be normalized are left out.
func (s GearSet) TrapIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(s.Traps))
	for _, trap := range s.Traps {
		norm, err := ident.Normalize(trap.ID)
		if err != nil {
			continue
		}
		ids[norm] = struct{}{}
	}
	return ids
}

// ContainsTrap reports whether rawID belongs to the set after normalization.
func (s GearSet) ContainsTrap(rawID string) bool {
	norm, err := ident.Normalize(rawID)
	if err != nil {
		return false
	}
	_, ok := s.TrapIDs()[norm]
	return ok
}
