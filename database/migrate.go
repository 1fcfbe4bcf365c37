package database

import (
	"fmt"
	"time"

	"catalyst-alerts/bucketing"
	"catalyst-alerts/models"
)

// BackfillBucketFields recomputes day_of_week and time_slot from the
// capture timestamp for any row missing them. Idempotent: a second run on
// a fully-migrated store updates zero rows.
func (s *HistoryStorage) BackfillBucketFields() (int64, error) {
	var rows []*models.OptionSnapshot
	result := s.db.Where("day_of_week IS NULL OR time_slot IS NULL").Find(&rows)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to load rows for backfill: %w", result.Error)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	var updated int64
	for _, row := range rows {
		dayOfWeek := bucketing.DayOfWeek(row.Timestamp)
		timeSlot := bucketing.TimeSlot(row.Timestamp)
		res := s.db.Model(&models.OptionSnapshot{}).Where("id = ?", row.ID).Updates(map[string]interface{}{
			"day_of_week": dayOfWeek,
			"time_slot":   timeSlot,
		})
		if res.Error != nil {
			s.logger.WithError(res.Error).WithField("id", row.ID).Warn("Failed to backfill bucket fields")
			continue
		}
		updated += res.RowsAffected
	}

	s.logger.WithField("updated", updated).Info("Backfilled bucket fields")
	return updated, nil
}

// snapshotGroup identifies one capture batch of one option type.
type snapshotGroup struct {
	Timestamp  time.Time
	Symbol     string
	OptionType string
}

// BackfillOrdinals assigns ordinal_position to legacy rows by grouping
// snapshots with identical (timestamp, symbol, option_type) and ranking by
// strike order: ascending for calls, descending for puts, first 10 per
// group. Legacy rows beyond 10 keep a null ordinal and stay unreachable by
// bucket lookups. Idempotent; rows that already carry an ordinal are left
// untouched.
func (s *HistoryStorage) BackfillOrdinals() (int64, error) {
	var groups []snapshotGroup
	result := s.db.Model(&models.OptionSnapshot{}).
		Select("timestamp, symbol, option_type").
		Where("ordinal_position IS NULL").
		Group("timestamp, symbol, option_type").
		Scan(&groups)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to find groups for ordinal backfill: %w", result.Error)
	}
	if len(groups) == 0 {
		return 0, nil
	}

	var updated int64
	for _, group := range groups {
		order := "strike ASC"
		if group.OptionType == "PUT" {
			order = "strike DESC"
		}

		var rows []*models.OptionSnapshot
		res := s.db.Where(
			"timestamp = ? AND symbol = ? AND option_type = ?",
			group.Timestamp, group.Symbol, group.OptionType,
		).Order(order).Find(&rows)
		if res.Error != nil {
			s.logger.WithError(res.Error).Warn("Failed to load group for ordinal backfill")
			continue
		}

		for i, row := range rows {
			if i >= bucketing.MaxOrdinalPositions {
				break
			}
			if row.OrdinalPosition != nil {
				continue
			}
			position := i + 1
			upd := s.db.Model(&models.OptionSnapshot{}).
				Where("id = ?", row.ID).
				Update("ordinal_position", position)
			if upd.Error != nil {
				s.logger.WithError(upd.Error).WithField("id", row.ID).Warn("Failed to backfill ordinal")
				continue
			}
			updated += upd.RowsAffected
		}
	}

	s.logger.WithField("updated", updated).Info("Backfilled ordinal positions")
	return updated, nil
}
