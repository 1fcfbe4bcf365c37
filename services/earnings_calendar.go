package services

import (
	"context"
	"fmt"
	"time"

	"catalyst-alerts/database"
	"catalyst-alerts/interfaces"
	"catalyst-alerts/models"

	"github.com/sirupsen/logrus"
)

// EarningsCalendarManager maintains the set of earnings weeks per symbol.
// Averaging consumers exclude every returned Monday-Friday range entirely;
// earnings weeks are never down-weighted.
type EarningsCalendarManager struct {
	storage  *database.HistoryStorage
	calendar interfaces.EarningsCalendarService
	logger   *logrus.Logger
}

// NewEarningsCalendarManager creates a new earnings calendar manager
func NewEarningsCalendarManager(storage *database.HistoryStorage, calendar interfaces.EarningsCalendarService) *EarningsCalendarManager {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &EarningsCalendarManager{
		storage:  storage,
		calendar: calendar,
		logger:   logger,
	}
}

// WeekOf returns the Monday and Friday of the week containing date,
// truncated to midnight.
func WeekOf(date time.Time) (time.Time, time.Time) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	monday := day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
	friday := monday.AddDate(0, 0, 4)
	return monday, friday
}

// Refresh fetches earnings dates from the calendar collaborator and
// upserts one EarningsWeek per date. An empty calendar stores nothing and
// returns 0 without error.
func (m *EarningsCalendarManager) Refresh(ctx context.Context, symbol string) (int, error) {
	dates, err := m.calendar.FetchEarningsDates(ctx, symbol)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch earnings dates: %w", err)
	}
	if len(dates) == 0 {
		m.logger.WithField("symbol", symbol).Debug("Earnings calendar returned no dates")
		return 0, nil
	}

	stored := 0
	for _, date := range dates {
		weekStart, weekEnd := WeekOf(date)
		week := &models.EarningsWeek{
			Symbol:       symbol,
			EarningsDate: time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()),
			WeekStart:    weekStart,
			WeekEnd:      weekEnd,
			Source:       "finnhub",
		}
		if err := m.storage.UpsertEarningsWeek(week); err != nil {
			m.logger.WithError(err).WithField("date", date.Format("2006-01-02")).Warn("Failed to store earnings week")
			continue
		}
		stored++
	}

	m.logger.WithFields(logrus.Fields{
		"symbol": symbol,
		"stored": stored,
	}).Info("Refreshed earnings calendar")
	return stored, nil
}

// IsEarningsWeek reports whether date falls within any stored earnings
// week for the symbol.
func (m *EarningsCalendarManager) IsEarningsWeek(date time.Time, symbol string) bool {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	inWeek, err := m.storage.IsDateInEarningsWeek(day, symbol)
	if err != nil {
		m.logger.WithError(err).Warn("Earnings week lookup failed")
		return false
	}
	return inWeek
}

// EarningsWeeksInLookback returns every stored week whose Friday falls
// within weeksBack of now, ascending by week start.
func (m *EarningsCalendarManager) EarningsWeeksInLookback(symbol string, weeksBack int) []database.WeekRange {
	horizon := time.Now().AddDate(0, 0, -7*weeksBack)
	weeks, err := m.storage.EarningsWeeksEndingSince(symbol, horizon)
	if err != nil {
		m.logger.WithError(err).Warn("Failed to load earnings weeks for lookback")
		return nil
	}

	ranges := make([]database.WeekRange, 0, len(weeks))
	for _, week := range weeks {
		ranges = append(ranges, database.WeekRange{Start: week.WeekStart, End: week.WeekEnd})
	}
	return ranges
}
