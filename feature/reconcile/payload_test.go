package reconcile

import (
	"strings"
	"testing"
	"time"

	"gearsync/feature/hub"
	"gearsync/feature/tracker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildTrackerPayloads_GroupsBySetAndStatus(t *testing.T) {
	b := NewBuilder(nil, zap.NewNop())

	set := hub.GearSet{ID: "S1"}
	decisions := []Decision{
		{
			Set:   set,
			Trap:  hub.Trap{ID: "A1", Status: hub.StatusDeployed, DeployDatetimeUTC: "2024-01-02T00:00:00Z", Latitude: 44, Longitude: -66},
			Class: InsertToTracker,
		},
		{
			Set:   set,
			Trap:  hub.Trap{ID: "A2", Status: hub.StatusDeployed, DeployDatetimeUTC: "2024-01-01T00:00:00Z"},
			Class: InsertToTracker,
		},
		{
			Set:   set,
			Trap:  hub.Trap{ID: "A3", Status: hub.StatusRetrieved, RetrievedDatetimeUTC: "2024-01-03T00:00:00Z"},
			Class: UpdateTracker,
			Gear:  &tracker.Gear{ID: "g3"},
		},
	}

	payloads := b.BuildTrackerPayloads(decisions)
	require.Len(t, payloads, 2)

	deployed := payloads[0]
	assert.Equal(t, "S1", deployed.SetID)
	assert.Equal(t, tracker.GearDeployed, deployed.Status)
	assert.Equal(t, hub.DeploymentTrawl, deployed.DeploymentType)
	assert.Equal(t, 2, deployed.DevicesInSet)
	assert.Equal(t, "", deployed.GearID)
	// Earliest deploy among the group's traps.
	assert.Equal(t, "2024-01-01T00:00:00Z", deployed.InitialDeploymentDate)
	// Device ids keep the source casing.
	assert.Equal(t, "A1", deployed.Devices[0].DeviceID)
	assert.Equal(t, 44.0, deployed.Devices[0].Location.Latitude)

	hauled := payloads[1]
	assert.Equal(t, tracker.GearHauled, hauled.Status)
	assert.Equal(t, hub.DeploymentSingle, hauled.DeploymentType)
	assert.Equal(t, "g3", hauled.GearID)
	assert.Empty(t, hauled.InitialDeploymentDate)
	assert.Equal(t, "2024-01-03T00:00:00Z", hauled.Devices[0].LastUpdated)
}

func TestBuildTrackerPayloads_RetrievedMissingProducesNothing(t *testing.T) {
	b := NewBuilder(nil, zap.NewNop())

	decisions := []Decision{
		{
			Set:   hub.GearSet{ID: "S1"},
			Trap:  hub.Trap{ID: "A2", Status: hub.StatusRetrieved, RetrievedDatetimeUTC: "2024-01-02T00:00:00Z"},
			Class: SkipRetrievedMissing,
		},
	}

	assert.Empty(t, b.BuildTrackerPayloads(decisions))
}

func TestBuildTrackerPayloads_DropsTrapWithoutTimestamp(t *testing.T) {
	// One bad trap is dropped, the rest of the group survives.
	b := NewBuilder(nil, zap.NewNop())

	set := hub.GearSet{ID: "S1"}
	decisions := []Decision{
		{Set: set, Trap: hub.Trap{ID: "A1", Status: hub.StatusDeployed}, Class: InsertToTracker},
		{Set: set, Trap: hub.Trap{ID: "A2", Status: hub.StatusDeployed, DeployDatetimeUTC: "2024-01-01T00:00:00Z"}, Class: InsertToTracker},
	}

	payloads := b.BuildTrackerPayloads(decisions)
	require.Len(t, payloads, 1)
	require.Len(t, payloads[0].Devices, 1)
	assert.Equal(t, "A2", payloads[0].Devices[0].DeviceID)
}

func TestBuildHubUpdate(t *testing.T) {
	b := NewBuilder([]string{"partner_a"}, zap.NewNop())

	deployed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	gear := tracker.Gear{
		ID:          "g1",
		Status:      tracker.GearDeployed,
		LastUpdated: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Additional:  map[string]any{"vessel_id": "V1"},
		Devices: []tracker.Device{
			{DeviceID: "dev1", MfrDeviceID: "TRAP1", Label: "a", Location: tracker.DeviceLocation{Latitude: 44, Longitude: -66}, LastDeployed: &deployed},
			{DeviceID: "dev2", MfrDeviceID: "TRAP2", Label: "b", LastDeployed: &deployed},
		},
	}

	set, err := b.BuildHubUpdate(gear, nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(set.ID, "e_"))
	assert.Equal(t, "V1", set.VesselID)
	assert.Equal(t, hub.DeploymentTrawl, set.DeploymentType)
	assert.Equal(t, 2, set.TrapsInSet)
	assert.Equal(t, []string{"partner_a"}, set.ShareWith)
	assert.Equal(t, "2024-01-02T00:00:00", set.WhenUpdatedUTC)

	require.Len(t, set.Traps, 2)
	first := set.Traps[0]
	assert.Len(t, first.ID, 32)
	assert.True(t, strings.HasPrefix(first.ID, "trap1"))
	assert.Equal(t, 1, first.Sequence)
	assert.Equal(t, hub.StatusDeployed, first.Status)
	assert.Equal(t, "2024-01-01T00:00:00", first.DeployDatetimeUTC)
	assert.True(t, first.IsOnEnd)
	assert.False(t, set.Traps[1].IsOnEnd)
	assert.Equal(t, 2, set.Traps[1].Sequence)
}

func TestBuildHubUpdate_ReusesExistingSetID(t *testing.T) {
	b := NewBuilder(nil, zap.NewNop())

	deployed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	gear := tracker.Gear{
		ID:          "g1",
		Status:      tracker.GearHauled,
		LastUpdated: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Devices: []tracker.Device{
			{DeviceID: "dev1", MfrDeviceID: "TRAP1", Label: "a", LastDeployed: &deployed},
		},
	}

	set, err := b.BuildHubUpdate(gear, &hub.GearSet{ID: "S1"})
	require.NoError(t, err)

	assert.Equal(t, "S1", set.ID)
	assert.Equal(t, hub.StatusRetrieved, set.Traps[0].Status)
	assert.Equal(t, "2024-01-05T00:00:00", set.Traps[0].RetrievedDatetimeUTC)
}

func TestBuildHubUpdate_UsesCrossReferencedSetID(t *testing.T) {
	b := NewBuilder(nil, zap.NewNop())

	deployed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	gear := tracker.Gear{
		ID:          "g1",
		Status:      tracker.GearDeployed,
		LastUpdated: deployed,
		Additional:  map[string]any{tracker.HubSetIDKey: "S7"},
		Devices: []tracker.Device{
			{DeviceID: "dev1", Label: "a", LastDeployed: &deployed},
		},
	}

	set, err := b.BuildHubUpdate(gear, nil)
	require.NoError(t, err)
	assert.Equal(t, "S7", set.ID)
}

func TestBuildHubUpdate_SkipsUndeployedDevices(t *testing.T) {
	b := NewBuilder(nil, zap.NewNop())

	deployed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	gear := tracker.Gear{
		ID:          "g1",
		Status:      tracker.GearDeployed,
		LastUpdated: deployed,
		Devices: []tracker.Device{
			{DeviceID: "dev1", Label: "a"},
			{DeviceID: "dev2", Label: "b", LastDeployed: &deployed},
		},
	}

	set, err := b.BuildHubUpdate(gear, nil)
	require.NoError(t, err)
	require.Len(t, set.Traps, 1)
	assert.Equal(t, hub.DeploymentSingle, set.DeploymentType)
}

func TestBuildHubUpdate_NoUsableDevices(t *testing.T) {
	b := NewBuilder(nil, zap.NewNop())

	gear := tracker.Gear{ID: "g1", Status: tracker.GearDeployed}
	_, err := b.BuildHubUpdate(gear, nil)
	assert.Error(t, err)
}
