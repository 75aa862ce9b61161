package reconcile

import (
	"gearsync/core/ident"
	"gearsync/feature/hub"
	"gearsync/feature/tracker"

	"go.uber.org/zap"
)

// Resolver classifies every Hub trap against a Tracker gear snapshot.
type Resolver struct {
	logger *zap.Logger
}

// NewResolver creates a resolver.
func NewResolver(logger *zap.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// BuildTrackerIndex maps every normalized device identifier to its gear
// record. Gear mirrored from the Hub is excluded so the service's own
// round-tripped writes never masquerade as Tracker originals.
func (r *Resolver) BuildTrackerIndex(gear []tracker.Gear) map[string]*tracker.Gear {
	index := make(map[string]*tracker.Gear)

	for i := range gear {
		g := &gear[i]
		if g.IsHubMirror() {
			continue
		}

		for _, device := range g.Devices {
			norm, err := ident.Normalize(device.MatchID())
			if err != nil {
				r.logger.Warn("Skipping device with unusable identifier",
					zap.String("gear_id", g.ID),
					zap.String("device_id", device.DeviceID),
					zap.Error(err))
				continue
			}
			index[norm] = g
		}
	}

	return index
}

// Resolve classifies every trap in every Hub set against the Tracker
// snapshot and returns the decisions plus the cycle counters.
func (r *Resolver) Resolve(hubSets []hub.GearSet, trackerGear []tracker.Gear) ([]Decision, Counters) {
	index := r.BuildTrackerIndex(trackerGear)

	var decisions []Decision
	var counters Counters

	for _, set := range hubSets {
		for _, trap := range set.Traps {
			norm, err := ident.Normalize(trap.ID)
			if err != nil {
				r.logger.Warn("Skipping trap with unusable identifier",
					zap.String("set_id", set.ID),
					zap.Error(err))
				continue
			}

			decision := Decision{Set: set, Trap: trap}

			matched, found := index[norm]
			switch {
			case !found && trap.Status == hub.StatusRetrieved:
				decision.Class = SkipRetrievedMissing
				counters.SkippedRetrievedMissing++

			case !found:
				decision.Class = InsertToTracker

			// The set-level check outranks any status comparison: a trap
			// must never be attributed to two sets at once.
			case matched.DisplayID != "" && !ident.Same(matched.DisplayID, set.ID):
				decision.Class = SkipCrossSetConflict
				decision.Gear = matched
				counters.SkippedCrossSetConflict++
				r.logger.Warn("Trap attributed to a different set on tracker",
					zap.String("trap_id", trap.ID),
					zap.String("hub_set_id", set.ID),
					zap.String("tracker_display_id", matched.DisplayID))

			case statusConsistent(trap.Status, matched.Status):
				decision.Class = AlreadyConsistent
				decision.Gear = matched
				counters.MatchedConsistent++

			default:
				decision.Class = UpdateTracker
				decision.Gear = matched
			}

			decisions = append(decisions, decision)
		}
	}

	return decisions, counters
}

// HubCandidates returns the Tracker gear eligible for the reverse
// direction: originals only, never the service's own Hub mirrors.
func (r *Resolver) HubCandidates(trackerGear []tracker.Gear) []tracker.Gear {
	candidates := make([]tracker.Gear, 0, len(trackerGear))
	for _, g := range trackerGear {
		if g.IsHubMirror() {
			continue
		}
		candidates = append(candidates, g)
	}
	return candidates
}

// statusConsistent reports whether the two sides already agree:
// deployed↔deployed, retrieved↔hauled.
func statusConsistent(hubStatus hub.Status, trackerStatus tracker.GearStatus) bool {
	switch hubStatus {
	case hub.StatusDeployed:
		return trackerStatus == tracker.GearDeployed
	case hub.StatusRetrieved:
		return trackerStatus == tracker.GearHauled
	default:
		return false
	}
}
