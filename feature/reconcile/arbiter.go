package reconcile

import (
	"time"

	"gearsync/feature/hub"

	"go.uber.org/zap"
)

// DefaultGrace is the grace window applied when comparing Hub and Tracker
// update times in the reverse direction.
const DefaultGrace = 15 * time.Minute

// Arbiter decides whether a candidate Tracker→Hub update is actually sent.
type Arbiter struct {
	grace  time.Duration
	logger *zap.Logger
}

// NewArbiter creates an arbiter with the given grace window. A zero or
// negative grace falls back to the default.
func NewArbiter(grace time.Duration, logger *zap.Logger) *Arbiter {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Arbiter{grace: grace, logger: logger}
}

// ShouldPush reports whether the candidate update for a Tracker gear last
// touched at trackerLastUpdated should be pushed to the Hub. A gear never
// mirrored before is always pushed. Otherwise the push is suppressed when
// the Hub side was updated after the Tracker time plus the grace window,
// since the Hub already holds fresher information.
func (a *Arbiter) ShouldPush(existing *hub.GearSet, trackerLastUpdated time.Time) bool {
	if existing == nil {
		return true
	}

	hubUpdated, err := existing.WhenUpdated()
	if err != nil {
		a.logger.Warn("Hub set has unparsable update time, pushing anyway",
			zap.String("set_id", existing.ID),
			zap.Error(err))
		return true
	}

	if hubUpdated.After(trackerLastUpdated.Add(a.grace)) {
		a.logger.Debug("Suppressing push, hub side is fresher",
			zap.String("set_id", existing.ID),
			zap.Time("hub_updated", hubUpdated),
			zap.Time("tracker_updated", trackerLastUpdated))
		return false
	}

	return true
}
