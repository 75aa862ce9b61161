package audit

import "time"

// CycleRecord is one persisted row per destination per sync cycle.
type CycleRecord struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CycleID     string    `gorm:"column:cycle_id;index" json:"cycle_id"`
	Destination string    `gorm:"column:destination" json:"destination"`
	StartedAt   time.Time `gorm:"column:started_at" json:"started_at"`
	FinishedAt  time.Time `gorm:"column:finished_at" json:"finished_at"`

	HubSets     int `gorm:"column:hub_sets" json:"hub_sets"`
	TrackerGear int `gorm:"column:tracker_gear" json:"tracker_gear"`

	PayloadsTotal     int `gorm:"column:payloads_total" json:"payloads_total"`
	PayloadsSucceeded int `gorm:"column:payloads_succeeded" json:"payloads_succeeded"`
	PayloadsFailed    int `gorm:"column:payloads_failed" json:"payloads_failed"`
	SetsUpdatedInHub  int `gorm:"column:sets_updated_in_hub" json:"sets_updated_in_hub"`
	SkippedRetrieved  int `gorm:"column:skipped_retrieved" json:"skipped_retrieved"`
	SkippedCrossSet   int `gorm:"column:skipped_cross_set" json:"skipped_cross_set"`
	MatchedConsistent int `gorm:"column:matched_consistent" json:"matched_consistent"`

	Error string `gorm:"column:error" json:"error,omitempty"`
}

// TableName overrides the default gorm pluralization.
func (CycleRecord) TableName() string {
	return "cycle_records"
}
