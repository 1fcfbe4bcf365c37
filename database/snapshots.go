package database

import (
	"fmt"
	"time"

	"catalyst-alerts/models"

	"gorm.io/gorm/clause"
)

// snapshotKeyColumns is the natural key of option_snapshots. A second write
// with the same key replaces the prior row (last value for a 5-minute slot
// wins).
var snapshotKeyColumns = []clause.Column{
	{Name: "timestamp"},
	{Name: "symbol"},
	{Name: "expiration_date"},
	{Name: "strike"},
	{Name: "option_type"},
}

// PutSnapshot upserts a single snapshot by its natural key.
func (s *HistoryStorage) PutSnapshot(snapshot *models.OptionSnapshot) error {
	result := s.db.Clauses(clause.OnConflict{
		Columns:   snapshotKeyColumns,
		UpdateAll: true,
	}).Create(snapshot)
	if result.Error != nil {
		return fmt.Errorf("failed to store snapshot: %w", result.Error)
	}
	return nil
}

// PutSnapshotBatch stores snapshots best-effort: a failure on one row is
// logged and the rest of the batch continues. Returns the stored count.
func (s *HistoryStorage) PutSnapshotBatch(snapshots []*models.OptionSnapshot) int {
	if len(snapshots) == 0 {
		return 0
	}

	count := 0
	for _, snapshot := range snapshots {
		if err := s.PutSnapshot(snapshot); err != nil {
			s.logger.WithError(err).WithField("strike", snapshot.Strike).Warn("Failed to store snapshot")
			continue
		}
		count++
	}

	s.logger.WithField("stored", count).Debug("Stored snapshot batch")
	return count
}

// GetSnapshot retrieves one snapshot by its natural key.
func (s *HistoryStorage) GetSnapshot(timestamp time.Time, symbol string, expiration time.Time, strike float64, optionType string) (*models.OptionSnapshot, error) {
	var snapshot models.OptionSnapshot
	result := s.db.Where(
		"timestamp = ? AND symbol = ? AND expiration_date = ? AND strike = ? AND option_type = ?",
		timestamp, symbol, expiration, strike, optionType,
	).First(&snapshot)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", result.Error)
	}
	return &snapshot, nil
}

// SnapshotCount returns the total count of snapshots stored for a symbol.
func (s *HistoryStorage) SnapshotCount(symbol string) (int64, error) {
	var count int64
	result := s.db.Model(&models.OptionSnapshot{}).Where("symbol = ?", symbol).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", result.Error)
	}
	return count, nil
}

// PurgeSnapshotsBefore permanently deletes snapshots captured before the
// cutoff and returns the number of rows removed.
func (s *HistoryStorage) PurgeSnapshotsBefore(cutoff time.Time) (int64, error) {
	result := s.db.Unscoped().Where("timestamp < ?", cutoff).Delete(&models.OptionSnapshot{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge snapshots: %w", result.Error)
	}
	return result.RowsAffected, nil
}
