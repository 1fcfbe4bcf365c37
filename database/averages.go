package database

import (
	"errors"
	"fmt"
	"time"

	"catalyst-alerts/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// averageKeyColumns is the natural key of weekly_averages.
var averageKeyColumns = []clause.Column{
	{Name: "calculated_at"},
	{Name: "symbol"},
	{Name: "option_type"},
	{Name: "ordinal_position"},
	{Name: "day_of_week"},
	{Name: "time_slot"},
	{Name: "dte"},
}

// SaveWeeklyAverages upserts one calculation run's average records in a
// single transaction.
func (s *HistoryStorage) SaveWeeklyAverages(averages []*models.WeeklyAverage) error {
	if len(averages) == 0 {
		return nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, avg := range averages {
			result := tx.Clauses(clause.OnConflict{
				Columns:   averageKeyColumns,
				UpdateAll: true,
			}).Create(avg)
			if result.Error != nil {
				return result.Error
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save weekly averages: %w", err)
	}

	s.logger.WithField("count", len(averages)).Info("Stored weekly averages")
	return nil
}

// LatestAverage returns the most recent precomputed average for the exact
// bucket, or nil if no run has produced one.
func (s *HistoryStorage) LatestAverage(symbol, optionType string, ordinalPosition, dte, dayOfWeek int, timeSlot string) (*models.WeeklyAverage, error) {
	var avg models.WeeklyAverage
	result := s.db.Where(
		"symbol = ? AND option_type = ? AND ordinal_position = ? AND dte = ? AND day_of_week = ? AND time_slot = ?",
		symbol, optionType, ordinalPosition, dte, dayOfWeek, timeSlot,
	).Order("calculated_at DESC").First(&avg)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest average: %w", result.Error)
	}
	return &avg, nil
}

// AdHocAverageAsk computes the mean ask over raw snapshots for a bucket
// within the lookback window, with earnings weeks excluded inline. Used as
// a fallback when no precomputed average exists. Returns nil when no
// qualifying rows exist.
func (s *HistoryStorage) AdHocAverageAsk(symbol, optionType string, ordinalPosition, dte, dayOfWeek int, timeSlot string, since time.Time, excluded []WeekRange) (*float64, error) {
	query := s.db.Model(&models.OptionSnapshot{}).Where(
		"symbol = ? AND option_type = ? AND ordinal_position = ? AND dte = ? AND day_of_week = ? AND time_slot = ?",
		symbol, optionType, ordinalPosition, dte, dayOfWeek, timeSlot,
	).Where("timestamp >= ?", since).Where("ask > 0")

	for _, week := range excluded {
		query = query.Where("NOT (timestamp >= ? AND timestamp < ?)", week.Start, week.End.AddDate(0, 0, 1))
	}

	var row struct {
		AvgAsk      *float64
		SampleCount int64
	}
	result := query.Select("AVG(ask) AS avg_ask, COUNT(*) AS sample_count").Scan(&row)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to compute ad-hoc average: %w", result.Error)
	}
	if row.SampleCount == 0 || row.AvgAsk == nil {
		return nil, nil
	}
	return row.AvgAsk, nil
}

// SnapshotsForAveraging returns the snapshots that qualify for a
// calculation run: within the lookback window, ask present and positive,
// all bucket fields populated, and outside every excluded earnings week.
func (s *HistoryStorage) SnapshotsForAveraging(symbol string, since time.Time, excluded []WeekRange) ([]*models.OptionSnapshot, error) {
	query := s.db.Where("symbol = ? AND timestamp >= ?", symbol, since).
		Where("ask > 0").
		Where("day_of_week IS NOT NULL AND time_slot IS NOT NULL AND ordinal_position IS NOT NULL")

	for _, week := range excluded {
		query = query.Where("NOT (timestamp >= ? AND timestamp < ?)", week.Start, week.End.AddDate(0, 0, 1))
	}

	var snapshots []*models.OptionSnapshot
	result := query.Order("timestamp ASC").Find(&snapshots)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load snapshots for averaging: %w", result.Error)
	}
	return snapshots, nil
}

// PruneAverageRuns deletes every weekly_averages row that does not belong
// to the keep most recent distinct calculation runs.
func (s *HistoryStorage) PruneAverageRuns(keep int) (int64, error) {
	var keepTimes []time.Time
	result := s.db.Model(&models.WeeklyAverage{}).
		Distinct("calculated_at").
		Order("calculated_at DESC").
		Limit(keep).
		Pluck("calculated_at", &keepTimes)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to list calculation runs: %w", result.Error)
	}
	if len(keepTimes) == 0 {
		return 0, nil
	}

	del := s.db.Unscoped().Where("calculated_at NOT IN ?", keepTimes).Delete(&models.WeeklyAverage{})
	if del.Error != nil {
		return 0, fmt.Errorf("failed to prune average runs: %w", del.Error)
	}
	return del.RowsAffected, nil
}

// AverageRunTimes lists the distinct calculation run instants, most recent
// first.
func (s *HistoryStorage) AverageRunTimes() ([]time.Time, error) {
	var times []time.Time
	result := s.db.Model(&models.WeeklyAverage{}).
		Distinct("calculated_at").
		Order("calculated_at DESC").
		Pluck("calculated_at", &times)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list calculation runs: %w", result.Error)
	}
	return times, nil
}

// AveragesForRun returns every average record belonging to one
// calculation run.
func (s *HistoryStorage) AveragesForRun(calculatedAt time.Time) ([]*models.WeeklyAverage, error) {
	var averages []*models.WeeklyAverage
	result := s.db.Where("calculated_at = ?", calculatedAt).
		Order("option_type, ordinal_position, dte, day_of_week, time_slot").
		Find(&averages)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load averages: %w", result.Error)
	}
	return averages, nil
}
