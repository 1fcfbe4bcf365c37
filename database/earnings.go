package database

import (
	"fmt"
	"time"

	"catalyst-alerts/models"

	"gorm.io/gorm/clause"
)

// UpsertEarningsWeek stores an earnings week, replacing any prior row for
// the same (symbol, earnings_date). Re-fetching the calendar is therefore
// safe to repeat.
func (s *HistoryStorage) UpsertEarningsWeek(week *models.EarningsWeek) error {
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "earnings_date"}},
		UpdateAll: true,
	}).Create(week)
	if result.Error != nil {
		return fmt.Errorf("failed to store earnings week: %w", result.Error)
	}
	return nil
}

// EarningsWeeks returns all stored earnings weeks for a symbol, ascending
// by week start.
func (s *HistoryStorage) EarningsWeeks(symbol string) ([]*models.EarningsWeek, error) {
	var weeks []*models.EarningsWeek
	result := s.db.Where("symbol = ?", symbol).Order("week_start ASC").Find(&weeks)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load earnings weeks: %w", result.Error)
	}
	return weeks, nil
}

// EarningsWeeksEndingSince returns the earnings weeks whose week_end falls
// on or after the horizon, ascending by week start.
func (s *HistoryStorage) EarningsWeeksEndingSince(symbol string, horizon time.Time) ([]*models.EarningsWeek, error) {
	var weeks []*models.EarningsWeek
	result := s.db.Where("symbol = ? AND week_end >= ?", symbol, horizon).
		Order("week_start ASC").
		Find(&weeks)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load earnings weeks: %w", result.Error)
	}
	return weeks, nil
}

// IsDateInEarningsWeek reports whether a date falls inside any stored
// earnings week for the symbol.
func (s *HistoryStorage) IsDateInEarningsWeek(date time.Time, symbol string) (bool, error) {
	var count int64
	result := s.db.Model(&models.EarningsWeek{}).
		Where("symbol = ? AND week_start <= ? AND week_end >= ?", symbol, date, date).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to check earnings week: %w", result.Error)
	}
	return count > 0, nil
}
