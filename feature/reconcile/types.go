package reconcile

import (
	"gearsync/feature/hub"
	"gearsync/feature/tracker"
)

// Classification is the outcome of matching one Hub trap against the
// Tracker index.
type Classification string

const (
	// InsertToTracker marks a deployed Hub trap the Tracker has never seen.
	InsertToTracker Classification = "insert_to_tracker"
	// UpdateTracker marks a matched trap whose Tracker status disagrees
	// with the Hub.
	UpdateTracker Classification = "update_tracker"
	// AlreadyConsistent marks a matched trap whose two sides agree.
	AlreadyConsistent Classification = "already_consistent"
	// SkipRetrievedMissing marks a retrieved Hub trap with no Tracker
	// counterpart; creating gear just to mark it hauled is pointless.
	SkipRetrievedMissing Classification = "skip_retrieved_missing"
	// SkipCrossSetConflict marks a trap the Tracker attributes to a
	// different gear set than the Hub does.
	SkipCrossSetConflict Classification = "skip_cross_set_conflict"
)

// Decision is the classified relationship of one Hub trap for one cycle.
type Decision struct {
	Set   hub.GearSet
	Trap  hub.Trap
	Class Classification
	// Gear is the matched Tracker gear, nil when the trap was not found.
	Gear *tracker.Gear
}

// Counters are the per-cycle observability counts surfaced with every
// resolve pass.
type Counters struct {
	SkippedRetrievedMissing int
	SkippedCrossSetConflict int
	MatchedConsistent       int
}
