package database

import (
	"errors"
	"fmt"
	"time"

	"catalyst-alerts/models"

	"gorm.io/gorm"
)

// RecordCollectionRun updates the day's collection log after one snapshot
// poll, creating the row on the first poll of the day. One row exists per
// collection date.
func (s *HistoryStorage) RecordCollectionRun(now time.Time, collected int) error {
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var log models.CollectionLog
	result := s.db.Where("collection_date = ?", date).First(&log)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load collection log: %w", result.Error)
		}
		log = models.CollectionLog{
			CollectionDate: date,
			DayOfWeek:      now.Weekday().String(),
			StartTime:      now,
			Status:         "in_progress",
		}
	}

	log.SnapshotsCollected += collected
	endTime := now
	log.EndTime = &endTime

	if err := s.db.Save(&log).Error; err != nil {
		return fmt.Errorf("failed to save collection log: %w", err)
	}
	return nil
}

// CloseCollectionDay marks the day's collection log finished.
func (s *HistoryStorage) CloseCollectionDay(now time.Time, status, errorMessage string) error {
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	result := s.db.Model(&models.CollectionLog{}).
		Where("collection_date = ?", date).
		Updates(map[string]interface{}{
			"status":        status,
			"error_message": errorMessage,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to close collection log: %w", result.Error)
	}
	return nil
}

// SaveAlert stores an audit record for a pushed (or attempted) alert.
func (s *HistoryStorage) SaveAlert(alert *models.AlertRecord) error {
	if err := s.db.Create(alert).Error; err != nil {
		return fmt.Errorf("failed to save alert record: %w", err)
	}
	return nil
}

// RecentAlerts returns the most recent alert records, newest first.
func (s *HistoryStorage) RecentAlerts(limit int) ([]*models.AlertRecord, error) {
	var alerts []*models.AlertRecord
	result := s.db.Order("created_at DESC").Limit(limit).Find(&alerts)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load alerts: %w", result.Error)
	}
	return alerts, nil
}
