package services

import (
	"fmt"
	"time"

	"catalyst-alerts/database"
	"catalyst-alerts/models"

	"github.com/sirupsen/logrus"
)

// RollingAverageCalculator produces the precomputed per-bucket averages
// consumed by the price comparison engine. Intended to run once per
// trading day after market close.
type RollingAverageCalculator struct {
	storage       *database.HistoryStorage
	earnings      *EarningsCalendarManager
	lookbackWeeks int
	logger        *logrus.Logger
}

// NewRollingAverageCalculator creates a new rolling average calculator
func NewRollingAverageCalculator(storage *database.HistoryStorage, earnings *EarningsCalendarManager, lookbackWeeks int) *RollingAverageCalculator {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &RollingAverageCalculator{
		storage:       storage,
		earnings:      earnings,
		lookbackWeeks: lookbackWeeks,
		logger:        logger,
	}
}

// bucketGroup keys one aggregation group.
type bucketGroup struct {
	DayOfWeek       int
	TimeSlot        string
	OptionType      string
	OrdinalPosition int
	DTE             int
}

type bucketStats struct {
	sumAsk float64
	sumMid float64
	count  int
	minAsk float64
	maxAsk float64
}

// Recompute aggregates the lookback window's snapshots into one
// WeeklyAverage record per bucket, excluding earnings weeks. A group with
// zero qualifying rows produces no record.
func (c *RollingAverageCalculator) Recompute(symbol string) error {
	runAt := time.Now()
	since := runAt.AddDate(0, 0, -7*c.lookbackWeeks)
	excluded := c.earnings.EarningsWeeksInLookback(symbol, c.lookbackWeeks)

	snapshots, err := c.storage.SnapshotsForAveraging(symbol, since, excluded)
	if err != nil {
		return fmt.Errorf("failed to load snapshots: %w", err)
	}
	if len(snapshots) == 0 {
		c.logger.WithField("symbol", symbol).Info("No qualifying snapshots for averaging")
		return nil
	}

	stats := make(map[bucketGroup]*bucketStats)
	for _, snap := range snapshots {
		group := bucketGroup{
			DayOfWeek:       *snap.DayOfWeek,
			TimeSlot:        *snap.TimeSlot,
			OptionType:      snap.OptionType,
			OrdinalPosition: *snap.OrdinalPosition,
			DTE:             snap.DTE,
		}

		bucket, ok := stats[group]
		if !ok {
			bucket = &bucketStats{minAsk: snap.Ask, maxAsk: snap.Ask}
			stats[group] = bucket
		}

		bucket.sumAsk += snap.Ask
		bucket.sumMid += snap.MidPrice
		bucket.count++
		if snap.Ask < bucket.minAsk {
			bucket.minAsk = snap.Ask
		}
		if snap.Ask > bucket.maxAsk {
			bucket.maxAsk = snap.Ask
		}
	}

	averages := make([]*models.WeeklyAverage, 0, len(stats))
	for group, bucket := range stats {
		avgAsk := bucket.sumAsk / float64(bucket.count)
		averages = append(averages, &models.WeeklyAverage{
			CalculatedAt:    runAt,
			Symbol:          symbol,
			OptionType:      group.OptionType,
			OrdinalPosition: group.OrdinalPosition,
			DayOfWeek:       group.DayOfWeek,
			TimeSlot:        group.TimeSlot,
			DTE:             group.DTE,
			AvgAskPrice:     &avgAsk,
			AvgMidPrice:     bucket.sumMid / float64(bucket.count),
			SampleCount:     bucket.count,
			MinPrice:        bucket.minAsk,
			MaxPrice:        bucket.maxAsk,
		})
	}

	if err := c.storage.SaveWeeklyAverages(averages); err != nil {
		return fmt.Errorf("failed to store averages: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"symbol":    symbol,
		"buckets":   len(averages),
		"snapshots": len(snapshots),
		"excluded":  len(excluded),
	}).Info("Recomputed rolling averages")
	return nil
}
