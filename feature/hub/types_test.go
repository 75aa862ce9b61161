package hub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrapLatestUpdateTime_Deployed(t *testing.T) {
	trap := Trap{
		Status:            StatusDeployed,
		DeployDatetimeUTC: "2024-01-01T00:00:00Z",
	}

	got, err := trap.LatestUpdateTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestTrapLatestUpdateTime_RetrievedFallback(t *testing.T) {
	cases := []struct {
		name string
		trap Trap
		want time.Time
	}{
		{
			name: "retrieved time wins",
			trap: Trap{
				Status:               StatusRetrieved,
				DeployDatetimeUTC:    "2024-01-01T00:00:00Z",
				SurfaceDatetimeUTC:   "2024-01-02T00:00:00Z",
				RetrievedDatetimeUTC: "2024-01-03T00:00:00Z",
			},
			want: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "surface when retrieved missing",
			trap: Trap{
				Status:             StatusRetrieved,
				DeployDatetimeUTC:  "2024-01-01T00:00:00Z",
				SurfaceDatetimeUTC: "2024-01-02T00:00:00Z",
			},
			want: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "deploy as last resort",
			trap: Trap{
				Status:            StatusRetrieved,
				DeployDatetimeUTC: "2024-01-01T00:00:00Z",
			},
			want: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.trap.LatestUpdateTime()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTrapLatestUpdateTime_Missing(t *testing.T) {
	_, err := Trap{Status: StatusDeployed}.LatestUpdateTime()
	assert.ErrorIs(t, err, ErrMissingTimestamp)

	_, err = Trap{Status: StatusRetrieved}.LatestUpdateTime()
	assert.ErrorIs(t, err, ErrMissingTimestamp)

	_, err = Trap{Status: "unknown", DeployDatetimeUTC: "2024-01-01T00:00:00Z"}.LatestUpdateTime()
	assert.ErrorIs(t, err, ErrMissingTimestamp)
}

func TestGearSetTrapIDs(t *testing.T) {
	set := GearSet{
		Traps: []Trap{
			{ID: "rmwhub_TRAP1"},
			{ID: "e_trap2##"},
			{ID: "####"},
		},
	}

	ids := set.TrapIDs()
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, "trap1")
	assert.Contains(t, ids, "trap2")

	assert.True(t, set.ContainsTrap("TRAP1"))
	assert.False(t, set.ContainsTrap("trap9"))
}

func TestShareList(t *testing.T) {
	cfg := &Config{ShareWith: "partner_a, partner_b ,"}
	assert.Equal(t, []string{"partner_a", "partner_b"}, cfg.ShareList())

	assert.Empty(t, (&Config{}).ShareList())
}
