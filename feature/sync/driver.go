package sync

import (
	"context"
	stdsync "sync"
	"time"

	"gearsync/feature/audit"
	"gearsync/feature/hub"
	"gearsync/feature/reconcile"
	"gearsync/feature/tracker"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is the driver's position in the cycle state machine.
type State string

const (
	StateIdle             State = "idle"
	StateDownloading      State = "downloading"
	StateReconciling      State = "reconciling"
	StateUploadingTracker State = "uploading_tracker"
	StateUploadingHub     State = "uploading_hub"
)

// HubAPI is the slice of the Hub client the driver needs.
type HubAPI interface {
	Search(ctx context.Context, since time.Time) ([]hub.GearSet, error)
	NewestOwnSet(ctx context.Context, trapIDs []string) (*hub.GearSet, error)
	Upload(ctx context.Context, sets []hub.GearSet) (*hub.UploadResult, error)
}

// TrackerAPI is the slice of one Tracker destination the driver needs.
type TrackerAPI interface {
	Name() string
	Gear(ctx context.Context, state tracker.GearStatus) ([]tracker.Gear, error)
	CreateGear(ctx context.Context, payload any) error
	UpdateGear(ctx context.Context, gearID string, payload any) error
}

// Recorder persists one cycle record. audit.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, record *audit.CycleRecord) error
}

// Archiver stores a cycle's outbound payloads. audit.Archive satisfies it.
type Archiver interface {
	Save(ctx context.Context, cycleID, name string, payload any) error
}

// CycleResult is the per-destination outcome of one cycle.
type CycleResult struct {
	CycleID     string             `json:"cycle_id"`
	Destination string             `json:"destination"`
	StartedAt   time.Time          `json:"started_at"`
	FinishedAt  time.Time          `json:"finished_at"`
	HubSets     int                `json:"hub_sets"`
	TrackerGear int                `json:"tracker_gear"`
	Payloads    int                `json:"payloads"`
	Succeeded   int                `json:"succeeded"`
	Failed      int                `json:"failed"`
	SetsUpdated int                `json:"sets_updated_in_hub"`
	Counters    reconcile.Counters `json:"counters"`
	Error       string             `json:"error,omitempty"`
}

// Driver runs the full cycle: pull both sides, reconcile, push both ways.
// No state survives between cycles.
type Driver struct {
	cfg          *Config
	hub          HubAPI
	destinations []TrackerAPI
	resolver     *reconcile.Resolver
	arbiter      *reconcile.Arbiter
	builder      *reconcile.Builder
	recorder     Recorder
	archiver     Archiver
	logger       *zap.Logger

	mu    stdsync.Mutex
	state State
}

// NewDriver wires a driver from its collaborators.
func NewDriver(cfg *Config, hubAPI HubAPI, destinations []TrackerAPI, resolver *reconcile.Resolver, arbiter *reconcile.Arbiter, builder *reconcile.Builder, logger *zap.Logger) *Driver {
	return &Driver{
		cfg:          cfg,
		hub:          hubAPI,
		destinations: destinations,
		resolver:     resolver,
		arbiter:      arbiter,
		builder:      builder,
		logger:       logger,
		state:        StateIdle,
	}
}

// WithAudit attaches the optional cycle recorder and payload archiver.
func (d *Driver) WithAudit(recorder Recorder, archiver Archiver) *Driver {
	d.recorder = recorder
	d.archiver = archiver
	return d
}

// State returns the driver's current cycle state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Driver) setState(s State) {
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
}

// Run executes one cycle pulling Hub changes since the given time and
// returns one result per destination. A failed destination never blocks
// the others.
func (d *Driver) Run(ctx context.Context, since time.Time) []CycleResult {
	cycleID := uuid.NewString()
	startedAt := time.Now().UTC()

	log := d.logger.With(zap.String("cycle_id", cycleID))
	log.Info("Cycle started",
		zap.Time("since", since),
		zap.Int("destinations", len(d.destinations)),
		zap.Bool("dry_run", d.cfg.DryRun))

	d.setState(StateDownloading)
	defer d.setState(StateIdle)

	// Pull the hub and every destination concurrently; reconciliation only
	// starts once complete snapshots exist.
	var wg stdsync.WaitGroup

	var hubSets []hub.GearSet
	var hubErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		hubSets, hubErr = d.hub.Search(ctx, since)
	}()

	gearByDest := make([][]tracker.Gear, len(d.destinations))
	errByDest := make([]error, len(d.destinations))
	for i, dest := range d.destinations {
		wg.Add(1)
		go func(i int, dest TrackerAPI) {
			defer wg.Done()
			gearByDest[i], errByDest[i] = dest.Gear(ctx, "")
		}(i, dest)
	}
	wg.Wait()

	if hubErr != nil {
		log.Error("Hub download failed", zap.Error(hubErr))
	}

	results := make([]CycleResult, 0, len(d.destinations))
	for i, dest := range d.destinations {
		result := CycleResult{
			CycleID:     cycleID,
			Destination: dest.Name(),
			StartedAt:   startedAt,
		}

		switch {
		case hubErr != nil:
			result.Error = "hub download failed: " + hubErr.Error()
		case errByDest[i] != nil:
			log.Error("Tracker download failed",
				zap.String("destination", dest.Name()),
				zap.Error(errByDest[i]))
			result.Error = "tracker download failed: " + errByDest[i].Error()
		default:
			d.reconcileDestination(ctx, log, dest, hubSets, gearByDest[i], &result)
		}

		result.FinishedAt = time.Now().UTC()
		d.record(ctx, log, &result)
		results = append(results, result)
	}

	log.Info("Cycle finished", zap.Int("destinations", len(results)))
	return results
}

func (d *Driver) reconcileDestination(ctx context.Context, log *zap.Logger, dest TrackerAPI, hubSets []hub.GearSet, gear []tracker.Gear, result *CycleResult) {
	log = log.With(zap.String("destination", dest.Name()))

	result.HubSets = len(hubSets)
	result.TrackerGear = len(gear)

	d.setState(StateReconciling)
	decisions, counters := d.resolver.Resolve(hubSets, gear)
	result.Counters = counters

	payloads := d.builder.BuildTrackerPayloads(decisions)
	result.Payloads = len(payloads)

	log.Info("Reconcile complete",
		zap.Int("hub_sets", len(hubSets)),
		zap.Int("tracker_gear", len(gear)),
		zap.Int("payloads", len(payloads)),
		zap.Int("skipped_retrieved_missing", counters.SkippedRetrievedMissing),
		zap.Int("skipped_cross_set_conflict", counters.SkippedCrossSetConflict),
		zap.Int("matched_consistent", counters.MatchedConsistent))

	d.archive(ctx, log, result.CycleID, dest.Name()+"_tracker_payloads", payloads)

	d.setState(StateUploadingTracker)
	for _, payload := range payloads {
		if d.cfg.DryRun {
			log.Info("Dry run, skipping tracker push",
				zap.String("set_id", payload.SetID),
				zap.String("status", string(payload.Status)))
			continue
		}

		var err error
		if payload.GearID != "" {
			err = dest.UpdateGear(ctx, payload.GearID, payload)
		} else {
			err = dest.CreateGear(ctx, payload)
		}

		if err != nil {
			result.Failed++
			log.Error("Tracker push failed",
				zap.String("set_id", payload.SetID),
				zap.Error(err))
			continue
		}
		result.Succeeded++
	}

	d.setState(StateUploadingHub)
	d.uploadHub(ctx, log, dest, hubSets, gear, result)
}

// uploadHub runs the reverse direction: candidate Hub updates derived from
// Tracker originals, filtered through the recency arbiter.
func (d *Driver) uploadHub(ctx context.Context, log *zap.Logger, dest TrackerAPI, hubSets []hub.GearSet, gear []tracker.Gear, result *CycleResult) {
	setsByID := make(map[string]*hub.GearSet, len(hubSets))
	for i := range hubSets {
		setsByID[hubSets[i].ID] = &hubSets[i]
	}

	var updates []hub.GearSet
	for _, candidate := range d.resolver.HubCandidates(gear) {
		existing := setsByID[candidate.HubSetID()]
		if existing == nil {
			existing = d.lookupOwnSet(ctx, log, candidate)
		}

		if !d.arbiter.ShouldPush(existing, candidate.LastUpdated) {
			continue
		}

		update, err := d.builder.BuildHubUpdate(candidate, existing)
		if err != nil {
			log.Warn("Skipping hub update", zap.String("gear_id", candidate.ID), zap.Error(err))
			continue
		}
		updates = append(updates, update)
	}

	if len(updates) == 0 {
		return
	}

	d.archive(ctx, log, result.CycleID, dest.Name()+"_hub_updates", updates)

	if d.cfg.DryRun {
		log.Info("Dry run, skipping hub upload", zap.Int("updates", len(updates)))
		return
	}

	uploadResult, err := d.hub.Upload(ctx, updates)
	if err != nil {
		log.Error("Hub upload failed", zap.Error(err))
		result.Error = "hub upload failed: " + err.Error()
		return
	}

	result.SetsUpdated = len(updates) - len(uploadResult.FailedSets)
	log.Info("Hub upload complete",
		zap.Int("sets_pushed", len(updates)),
		zap.Int("trap_count", uploadResult.TrapCount),
		zap.Int("failed_sets", len(uploadResult.FailedSets)))
}

// lookupOwnSet resolves the newest previously uploaded set containing the
// gear's devices, for gear without a local Hub cross-reference.
func (d *Driver) lookupOwnSet(ctx context.Context, log *zap.Logger, gear tracker.Gear) *hub.GearSet {
	ids := make([]string, 0, len(gear.Devices))
	for _, device := range gear.Devices {
		ids = append(ids, device.MatchID())
	}
	if len(ids) == 0 {
		return nil
	}

	existing, err := d.hub.NewestOwnSet(ctx, ids)
	if err != nil {
		log.Warn("Own set lookup failed", zap.String("gear_id", gear.ID), zap.Error(err))
		return nil
	}
	return existing
}

func (d *Driver) record(ctx context.Context, log *zap.Logger, result *CycleResult) {
	if d.recorder == nil {
		return
	}

	record := &audit.CycleRecord{
		CycleID:           result.CycleID,
		Destination:       result.Destination,
		StartedAt:         result.StartedAt,
		FinishedAt:        result.FinishedAt,
		HubSets:           result.HubSets,
		TrackerGear:       result.TrackerGear,
		PayloadsTotal:     result.Payloads,
		PayloadsSucceeded: result.Succeeded,
		PayloadsFailed:    result.Failed,
		SetsUpdatedInHub:  result.SetsUpdated,
		SkippedRetrieved:  result.Counters.SkippedRetrievedMissing,
		SkippedCrossSet:   result.Counters.SkippedCrossSetConflict,
		MatchedConsistent: result.Counters.MatchedConsistent,
		Error:             result.Error,
	}

	if err := d.recorder.Record(ctx, record); err != nil {
		log.Error("Failed to record cycle", zap.Error(err))
	}
}

func (d *Driver) archive(ctx context.Context, log *zap.Logger, cycleID, name string, payload any) {
	if d.archiver == nil {
		return
	}

	if err := d.archiver.Save(ctx, cycleID, name, payload); err != nil {
		log.Error("Failed to archive payloads", zap.String("name", name), zap.Error(err))
	}
}
