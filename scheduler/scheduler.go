package scheduler

import (
	"context"
	"time"

	"catalyst-alerts/alerts"
	"catalyst-alerts/config"
	"catalyst-alerts/database"
	"catalyst-alerts/interfaces"
	"catalyst-alerts/models"
	"catalyst-alerts/services"
	"catalyst-alerts/signals"

	"github.com/sirupsen/logrus"
)

const tickInterval = 30 * time.Second

// End-of-day task times, minutes after midnight. Recompute runs right
// after the close, purge a few minutes later once the new averages are in,
// then the summary.
const (
	eodRecomputeMinute = 16*60 + 1
	eodPurgeMinute     = 16*60 + 5
	eodSummaryMinute   = 16*60 + 10
)

type sentSignal struct {
	name      string
	direction signals.Direction
	at        time.Time
}

// AlertSystem is the orchestration loop: it polls signal detectors and the
// snapshot collector during market hours on trading days, and runs the
// end-of-day maintenance chain after the close.
type AlertSystem struct {
	cfg          *config.Config
	detectors    []signals.Detector
	liveDetector *signals.LiveNewsDetector
	collector    *services.OptionsDataCollector
	averages     *services.RollingAverageCalculator
	earnings     *services.EarningsCalendarManager
	storage      *database.HistoryStorage
	notifier     *alerts.DiscordNotifier
	marketData   interfaces.MarketDataService
	logger       *logrus.Logger

	// Daily state, reset at midnight.
	currentDay        string
	earningsRefreshed bool
	recomputeDone     bool
	purgeDone         bool
	summaryDone       bool
	lastStandardCheck time.Time
	lastLiveCheck     time.Time
	signalsToday      []*signals.Signal
	recentSignals     []sentSignal
}

// NewAlertSystem wires the orchestration loop
func NewAlertSystem(cfg *config.Config, detectors []signals.Detector, liveDetector *signals.LiveNewsDetector, collector *services.OptionsDataCollector, averages *services.RollingAverageCalculator, earnings *services.EarningsCalendarManager, storage *database.HistoryStorage, notifier *alerts.DiscordNotifier, marketData interfaces.MarketDataService) *AlertSystem {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &AlertSystem{
		cfg:          cfg,
		detectors:    detectors,
		liveDetector: liveDetector,
		collector:    collector,
		averages:     averages,
		earnings:     earnings,
		storage:      storage,
		notifier:     notifier,
		marketData:   marketData,
		logger:       logger,
	}
}

// Run blocks until the context is cancelled.
func (s *AlertSystem) Run(ctx context.Context) {
	s.logger.WithFields(logrus.Fields{
		"ticker":       s.cfg.App.Ticker,
		"trading_days": s.cfg.App.TradingDays,
		"detectors":    len(s.detectors),
	}).Info("Alert system started")

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	s.tick(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Alert system stopped")
			return
		case now := <-ticker.C:
			s.tick(ctx, now)
		}
	}
}

func (s *AlertSystem) tick(ctx context.Context, now time.Time) {
	day := now.Format("2006-01-02")
	if day != s.currentDay {
		s.resetDay(day)
	}

	if !signals.IsTradingDay(now, s.cfg.App.TradingDays) {
		return
	}

	minute := now.Hour()*60 + now.Minute()

	if !s.earningsRefreshed && minute >= clockMinutes(s.cfg.App.PremarketStart) {
		s.refreshEarnings(ctx)
		s.earningsRefreshed = true
	}

	if minute >= clockMinutes(s.cfg.App.MarketOpen) && minute < clockMinutes(s.cfg.App.MarketClose) {
		if now.Sub(s.lastStandardCheck) >= s.cfg.App.CheckInterval {
			s.lastStandardCheck = now
			s.runStandardChecks(ctx)
			s.collect(ctx)
		}
		if now.Sub(s.lastLiveCheck) >= s.cfg.App.LiveNewsInterval {
			s.lastLiveCheck = now
			if signal := s.liveDetector.Check(ctx); signal != nil {
				s.handleSignal(ctx, signal)
			}
		}
		return
	}

	// End-of-day chain, strictly ordered: averages first so the purge
	// never races a recompute that still needs the raw rows.
	if minute >= eodRecomputeMinute && !s.recomputeDone {
		s.recomputeDone = true
		s.recomputeAverages()
	}
	if minute >= eodPurgeMinute && s.recomputeDone && !s.purgeDone {
		s.purgeDone = true
		s.purgeHistory()
	}
	if minute >= eodSummaryMinute && !s.summaryDone {
		s.summaryDone = true
		s.sendDailySummary(ctx)
	}
}

func (s *AlertSystem) resetDay(day string) {
	s.currentDay = day
	s.earningsRefreshed = false
	s.recomputeDone = false
	s.purgeDone = false
	s.summaryDone = false
	s.signalsToday = nil
	s.liveDetector.ClearAlertHistory()
	s.logger.WithField("date", day).Info("New day, daily state reset")
}

func (s *AlertSystem) refreshEarnings(ctx context.Context) {
	count, err := s.earnings.Refresh(ctx, s.cfg.App.Ticker)
	if err != nil {
		s.logger.WithError(err).Warn("Earnings calendar refresh failed")
		return
	}
	s.logger.WithField("weeks", count).Info("Earnings calendar refreshed")
}

func (s *AlertSystem) runStandardChecks(ctx context.Context) {
	for _, detector := range s.detectors {
		if signal := detector.Check(ctx); signal != nil {
			s.handleSignal(ctx, signal)
		}
	}
}

func (s *AlertSystem) collect(ctx context.Context) {
	if !s.collector.IsCollectionTime(time.Now()) {
		return
	}

	collectCtx, cancel := context.WithTimeout(ctx, s.cfg.History.CollectTimeout)
	defer cancel()

	count, err := s.collector.CollectSnapshot(collectCtx, s.cfg.App.Ticker)
	if err != nil {
		s.logger.WithError(err).Warn("Snapshot collection failed")
		return
	}
	s.logger.WithField("snapshots", count).Debug("Snapshot collection completed")
}

// handleSignal delivers one actionable signal, suppressing repeats of the
// same detector and direction within an hour.
func (s *AlertSystem) handleSignal(ctx context.Context, signal *signals.Signal) {
	if !signal.IsActionable() {
		s.logger.WithFields(logrus.Fields{
			"signal":     signal.Name,
			"confidence": signal.Confidence,
		}).Debug("Signal below actionable threshold")
		return
	}

	if s.isDuplicate(signal) {
		s.logger.WithField("signal", signal.Name).Debug("Duplicate signal suppressed")
		return
	}
	s.rememberSignal(signal)
	s.signalsToday = append(s.signalsToday, signal)

	record := &models.AlertRecord{
		Symbol:     s.cfg.App.Ticker,
		SignalName: signal.Name,
		Direction:  string(signal.Direction),
		Strength:   signal.Strength.String(),
		Confidence: signal.Confidence,
	}
	if headline, ok := signal.Details["headline"].(string); ok {
		record.Headline = headline
	}

	if err := s.notifier.SendSignal(ctx, signal); err != nil {
		s.logger.WithError(err).Error("Alert delivery failed")
	} else {
		record.Sent = true
		sentAt := time.Now()
		record.SentAt = &sentAt
	}

	if err := s.storage.SaveAlert(record); err != nil {
		s.logger.WithError(err).Warn("Alert audit write failed")
	}
}

func (s *AlertSystem) isDuplicate(signal *signals.Signal) bool {
	cutoff := time.Now().Add(-time.Hour)
	for _, sent := range s.recentSignals {
		if sent.name == signal.Name && sent.direction == signal.Direction && sent.at.After(cutoff) {
			return true
		}
	}
	return false
}

func (s *AlertSystem) rememberSignal(signal *signals.Signal) {
	s.recentSignals = append(s.recentSignals, sentSignal{
		name:      signal.Name,
		direction: signal.Direction,
		at:        signal.Timestamp,
	})
	if len(s.recentSignals) > 10 {
		s.recentSignals = s.recentSignals[len(s.recentSignals)-10:]
	}
}

func (s *AlertSystem) recomputeAverages() {
	if err := s.averages.Recompute(s.cfg.App.Ticker); err != nil {
		s.logger.WithError(err).Error("Rolling average recompute failed")
		return
	}
	s.logger.Info("Rolling averages recomputed")
}

func (s *AlertSystem) purgeHistory() {
	cutoff := time.Now().AddDate(0, 0, -7*s.cfg.History.RetentionWeeks)
	purged, err := s.storage.PurgeSnapshotsBefore(cutoff)
	if err != nil {
		s.logger.WithError(err).Warn("Snapshot purge failed")
	}

	pruned, err := s.storage.PruneAverageRuns(2)
	if err != nil {
		s.logger.WithError(err).Warn("Average run prune failed")
	}

	if err := s.storage.CloseCollectionDay(time.Now(), "completed", ""); err != nil {
		s.logger.WithError(err).Warn("Collection log close failed")
	}

	s.logger.WithFields(logrus.Fields{
		"snapshots_purged": purged,
		"averages_pruned":  pruned,
	}).Info("History retention applied")
}

func (s *AlertSystem) sendDailySummary(ctx context.Context) {
	changePct := 0.0
	if quote, err := s.marketData.GetQuote(ctx, s.cfg.App.Ticker); err == nil {
		changePct = quote.ChangePct
	} else {
		s.logger.WithError(err).Warn("Could not get closing quote for summary")
	}

	if err := s.notifier.SendDailySummary(ctx, s.signalsToday, changePct); err != nil {
		s.logger.WithError(err).Warn("Daily summary delivery failed")
		return
	}
	s.logger.WithField("signals", len(s.signalsToday)).Info("Daily summary sent")
}

// SignalsToday returns the actionable signals emitted so far today.
func (s *AlertSystem) SignalsToday() []*signals.Signal {
	return s.signalsToday
}

// clockMinutes parses "HH:MM" into minutes after midnight. Malformed
// values yield 0, which fails open toward the start of the day.
func clockMinutes(clock string) int {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0
	}
	return t.Hour()*60 + t.Minute()
}
