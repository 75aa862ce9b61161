package reconcile

import (
	"fmt"
	"time"

	"gearsync/core/ident"
	"gearsync/core/timeutil"
	"gearsync/feature/hub"
	"gearsync/feature/tracker"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TrackerDevicePayload is one device entry in an outbound gear payload.
type TrackerDevicePayload struct {
	DeviceID     string                 `json:"device_id"`
	LastDeployed string                 `json:"last_deployed,omitempty"`
	LastUpdated  string                 `json:"last_updated"`
	DeviceStatus tracker.GearStatus     `json:"device_status"`
	Location     tracker.DeviceLocation `json:"location"`
	// DeviceAdditionalData carries the full source trap for audit.
	DeviceAdditionalData hub.Trap `json:"device_additional_data"`
}

// TrackerGearPayload is the outbound create/update shape for one
// (gear set, status) group.
type TrackerGearPayload struct {
	// GearID routes the payload: empty means create, otherwise patch.
	GearID                string                 `json:"-"`
	SetID                 string                 `json:"set_id"`
	Status                tracker.GearStatus     `json:"status"`
	DeploymentType        string                 `json:"deployment_type"`
	DevicesInSet          int                    `json:"devices_in_set"`
	InitialDeploymentDate string                 `json:"initial_deployment_date,omitempty"`
	Devices               []TrackerDevicePayload `json:"devices"`
}

// Builder turns classified decisions into outbound wire payloads.
type Builder struct {
	shareWith []string
	logger    *zap.Logger
}

// NewBuilder creates a payload builder. shareWith is attached to every
// Hub set the builder produces.
func NewBuilder(shareWith []string, logger *zap.Logger) *Builder {
	if shareWith == nil {
		shareWith = []string{}
	}
	return &Builder{shareWith: shareWith, logger: logger}
}

type payloadKey struct {
	setID  string
	status hub.Status
}

// BuildTrackerPayloads groups the insert/update decisions by gear set and
// status and produces one payload per group. A set straddling deployed and
// retrieved traps yields two payloads. Traps whose timestamps cannot be
// resolved are dropped individually with a warning.
func (b *Builder) BuildTrackerPayloads(decisions []Decision) []TrackerGearPayload {
	groups := make(map[payloadKey]*TrackerGearPayload)
	order := make([]payloadKey, 0)

	for _, d := range decisions {
		if d.Class != InsertToTracker && d.Class != UpdateTracker {
			continue
		}

		lastUpdated, err := d.Trap.LatestUpdateTime()
		if err != nil {
			b.logger.Warn("Dropping trap from payload",
				zap.String("set_id", d.Set.ID),
				zap.String("trap_id", d.Trap.ID),
				zap.Error(err))
			continue
		}

		key := payloadKey{setID: d.Set.ID, status: d.Trap.Status}
		group, ok := groups[key]
		if !ok {
			group = &TrackerGearPayload{
				SetID:  d.Set.ID,
				Status: trackerStatus(d.Trap.Status),
			}
			groups[key] = group
			order = append(order, key)
		}

		if d.Gear != nil && group.GearID == "" {
			group.GearID = d.Gear.ID
		}

		group.Devices = append(group.Devices, TrackerDevicePayload{
			DeviceID:             d.Trap.ID,
			LastDeployed:         d.Trap.DeployDatetimeUTC,
			LastUpdated:          timeutil.Format(lastUpdated),
			DeviceStatus:         trackerStatus(d.Trap.Status),
			Location:             tracker.DeviceLocation{Latitude: d.Trap.Latitude, Longitude: d.Trap.Longitude},
			DeviceAdditionalData: d.Trap,
		})
	}

	payloads := make([]TrackerGearPayload, 0, len(order))
	for _, key := range order {
		group := groups[key]
		group.DevicesInSet = len(group.Devices)
		group.DeploymentType = hub.DeploymentSingle
		if len(group.Devices) > 1 {
			group.DeploymentType = hub.DeploymentTrawl
		}

		if key.status == hub.StatusDeployed {
			group.InitialDeploymentDate = earliestDeploy(group.Devices)
		}

		payloads = append(payloads, *group)
	}

	return payloads
}

// BuildHubUpdate derives a candidate Hub gear set from a Tracker gear.
// The existing set's id is reused when known; a gear never mirrored before
// gets a freshly generated id marked as Tracker-origin. Devices without a
// deployment time are skipped, they cannot legally be represented on the
// Hub.
func (b *Builder) BuildHubUpdate(gear tracker.Gear, existing *hub.GearSet) (hub.GearSet, error) {
	status := hub.StatusDeployed
	if gear.Status == tracker.GearHauled {
		status = hub.StatusRetrieved
	}

	traps := make([]hub.Trap, 0, len(gear.Devices))
	for i, device := range gear.Devices {
		if device.LastDeployed == nil {
			b.logger.Warn("Skipping device without deployment time",
				zap.String("gear_id", gear.ID),
				zap.String("device_id", device.DeviceID))
			continue
		}

		norm, err := ident.Normalize(device.MatchID())
		if err != nil {
			b.logger.Warn("Skipping device with unusable identifier",
				zap.String("gear_id", gear.ID),
				zap.String("device_id", device.DeviceID),
				zap.Error(err))
			continue
		}

		trap := hub.Trap{
			ID:                ident.PadToMinimum(norm, ident.MinHubIDLength, ident.PadChar),
			Sequence:          i + 1,
			Latitude:          device.Location.Latitude,
			Longitude:         device.Location.Longitude,
			DeployDatetimeUTC: timeutil.FormatHub(*device.LastDeployed),
			Status:            status,
			Accuracy:          "high",
			ReleaseType:       "",
			IsOnEnd:           device.Label == "a",
		}
		if status == hub.StatusRetrieved {
			trap.RetrievedDatetimeUTC = timeutil.FormatHub(gear.LastUpdated)
		}
		traps = append(traps, trap)
	}

	if len(traps) == 0 {
		return hub.GearSet{}, fmt.Errorf("gear %s has no usable devices", gear.ID)
	}

	deploymentType := hub.DeploymentSingle
	if len(traps) > 1 {
		deploymentType = hub.DeploymentTrawl
	}

	vesselID := "unknown"
	if gear.Additional != nil {
		if v, ok := gear.Additional["vessel_id"].(string); ok && v != "" {
			vesselID = v
		}
	}

	setID := gear.HubSetID()
	if existing != nil {
		setID = existing.ID
	}
	if setID == "" {
		setID = "e_" + uuid.NewString()
	}

	return hub.GearSet{
		ID:             setID,
		VesselID:       vesselID,
		DeploymentType: deploymentType,
		TrapsInSet:     len(traps),
		TrawlPath:      "",
		ShareWith:      b.shareWith,
		WhenUpdatedUTC: timeutil.FormatHub(gear.LastUpdated),
		Traps:          traps,
	}, nil
}

func trackerStatus(s hub.Status) tracker.GearStatus {
	if s == hub.StatusRetrieved {
		return tracker.GearHauled
	}
	return tracker.GearDeployed
}

// earliestDeploy finds the earliest deployment timestamp among a payload's
// devices, formatted for the Tracker. Devices without one are ignored.
func earliestDeploy(devices []TrackerDevicePayload) string {
	var earliest time.Time
	for _, d := range devices {
		if d.LastDeployed == "" {
			continue
		}
		at, err := timeutil.Parse(d.LastDeployed)
		if err != nil {
			continue
		}
		if earliest.IsZero() || at.Before(earliest) {
			earliest = at
		}
	}

	if earliest.IsZero() {
		return ""
	}
	return timeutil.Format(earliest)
}
