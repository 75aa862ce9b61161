package audit

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Store persists per-cycle results in the audit database.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store on an open database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the cycle_records table.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&CycleRecord{}); err != nil {
		return fmt.Errorf("migrate cycle records: %w", err)
	}
	return nil
}

// Record persists one cycle record.
func (s *Store) Record(ctx context.Context, record *CycleRecord) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("record cycle: %w", err)
	}
	return nil
}

// Recent returns the most recent cycle records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]CycleRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var records []CycleRecord
	err := s.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("load recent cycles: %w", err)
	}

	return records, nil
}
