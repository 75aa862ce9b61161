package reconcile

import (
	"testing"
	"time"

	"gearsync/feature/hub"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestShouldPush_NoExistingSet(t *testing.T) {
	a := NewArbiter(DefaultGrace, zap.NewNop())
	assert.True(t, a.ShouldPush(nil, time.Now()))
}

func TestShouldPush_HubFresherBeyondGrace(t *testing.T) {
	a := NewArbiter(15*time.Minute, zap.NewNop())

	trackerUpdated := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	existing := &hub.GearSet{ID: "S1", WhenUpdatedUTC: "2024-01-01T12:16:00"}

	assert.False(t, a.ShouldPush(existing, trackerUpdated))
}

func TestShouldPush_HubFresherWithinGrace(t *testing.T) {
	a := NewArbiter(15*time.Minute, zap.NewNop())

	trackerUpdated := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	existing := &hub.GearSet{ID: "S1", WhenUpdatedUTC: "2024-01-01T12:14:00"}

	assert.True(t, a.ShouldPush(existing, trackerUpdated))
}

func TestShouldPush_TrackerFresher(t *testing.T) {
	a := NewArbiter(15*time.Minute, zap.NewNop())

	trackerUpdated := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	existing := &hub.GearSet{ID: "S1", WhenUpdatedUTC: "2024-01-01T11:00:00"}

	assert.True(t, a.ShouldPush(existing, trackerUpdated))
}

func TestShouldPush_UnparsableHubTime(t *testing.T) {
	a := NewArbiter(15*time.Minute, zap.NewNop())

	existing := &hub.GearSet{ID: "S1", WhenUpdatedUTC: "garbage"}
	assert.True(t, a.ShouldPush(existing, time.Now()))
}

func TestNewArbiter_DefaultGrace(t *testing.T) {
	a := NewArbiter(0, zap.NewNop())
	assert.Equal(t, DefaultGrace, a.grace)
}
