package services

import (
	"time"

	"catalyst-alerts/bucketing"
	"catalyst-alerts/database"
	"catalyst-alerts/interfaces"

	"github.com/sirupsen/logrus"
)

// Default thresholds for price elevation detection.
const (
	DefaultElevationThreshold = 0.34 // 34% above the bucket average
	DefaultElevationBoost     = 0.3
)

// PriceComparisonEngine classifies live option prices against their
// historical same-bucket averages. Every failure path degrades to a
// non-elevated, zero-boost result; errors are logged, never surfaced to
// signal detectors.
type PriceComparisonEngine struct {
	storage       *database.HistoryStorage
	earnings      *EarningsCalendarManager
	lookbackWeeks int
	threshold     float64
	boost         float64
	logger        *logrus.Logger
}

// NewPriceComparisonEngine creates a new price comparison engine
func NewPriceComparisonEngine(storage *database.HistoryStorage, earnings *EarningsCalendarManager, lookbackWeeks int, threshold, boost float64) *PriceComparisonEngine {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if threshold <= 0 {
		threshold = DefaultElevationThreshold
	}
	if boost <= 0 {
		boost = DefaultElevationBoost
	}

	return &PriceComparisonEngine{
		storage:       storage,
		earnings:      earnings,
		lookbackWeeks: lookbackWeeks,
		threshold:     threshold,
		boost:         boost,
		logger:        logger,
	}
}

// averageForBucket resolves the historical average for a bucket: the most
// recent precomputed record first (ask preferred, mid for legacy rows),
// then an ad-hoc aggregation over raw snapshots with the earnings-week
// exclusion applied inline.
func (e *PriceComparisonEngine) averageForBucket(symbol, optionType string, ordinalPosition, dte, dayOfWeek int, timeSlot string) *float64 {
	avg, err := e.storage.LatestAverage(symbol, optionType, ordinalPosition, dte, dayOfWeek, timeSlot)
	if err != nil {
		e.logger.WithError(err).Warn("Average lookup failed")
		return nil
	}
	if avg != nil {
		if avg.AvgAskPrice != nil && *avg.AvgAskPrice > 0 {
			return avg.AvgAskPrice
		}
		if avg.AvgMidPrice > 0 {
			mid := avg.AvgMidPrice
			return &mid
		}
	}

	since := time.Now().AddDate(0, 0, -7*e.lookbackWeeks)
	excluded := e.earnings.EarningsWeeksInLookback(symbol, e.lookbackWeeks)
	adHoc, err := e.storage.AdHocAverageAsk(symbol, optionType, ordinalPosition, dte, dayOfWeek, timeSlot, since, excluded)
	if err != nil {
		e.logger.WithError(err).Warn("Ad-hoc average failed")
		return nil
	}
	return adHoc
}

// CheckElevation compares a live price against the bucket's historical
// average. Missing data is a normal "no signal" outcome, never an error.
func (e *PriceComparisonEngine) CheckElevation(currentPrice float64, optionType string, ordinalPosition, dte, dayOfWeek int, timeSlot, symbol string) *interfaces.PriceComparisonResult {
	result := &interfaces.PriceComparisonResult{
		CurrentPrice:    currentPrice,
		OptionType:      optionType,
		OrdinalPosition: ordinalPosition,
		DTE:             dte,
		DayOfWeek:       dayOfWeek,
		TimeSlot:        timeSlot,
	}

	avgPrice := e.averageForBucket(symbol, optionType, ordinalPosition, dte, dayOfWeek, timeSlot)
	if avgPrice == nil || *avgPrice <= 0 {
		return result
	}

	result.AvgPrice = avgPrice
	result.HasHistoricalData = true

	if currentPrice <= 0 {
		// Historical data exists but elevation is undefined without a
		// valid live price.
		return result
	}

	elevationPct := (currentPrice - *avgPrice) / *avgPrice
	result.ElevationPct = &elevationPct
	result.IsElevated = elevationPct >= e.threshold
	if result.IsElevated {
		result.ConfidenceBoost = e.boost
	}
	return result
}

// EvaluateStrikes attaches a price comparison to each recommended strike
// and returns the maximum confidence boost seen. Strikes are assumed
// pre-ordered nearest-to-farthest OTM; index+1 is used directly as the
// ordinal position. Boosts from different strikes are never summed.
func (e *PriceComparisonEngine) EvaluateStrikes(strikes []interfaces.StrikeRecommendation, underlying float64, optionType string, dte int, symbol string) ([]interfaces.StrikeRecommendation, float64) {
	if len(strikes) == 0 {
		return strikes, 0.0
	}

	now := time.Now()
	dayOfWeek := bucketing.DayOfWeek(now)
	timeSlot := bucketing.TimeSlot(now)

	maxBoost := 0.0
	enhanced := make([]interfaces.StrikeRecommendation, len(strikes))
	for i, strike := range strikes {
		optionPrice := strike.LastPrice
		if optionPrice == 0 {
			optionPrice = strike.Ask
		}

		comparison := e.CheckElevation(optionPrice, optionType, i+1, dte, dayOfWeek, timeSlot, symbol)
		strike.PriceComparison = comparison
		enhanced[i] = strike

		if comparison.ConfidenceBoost > maxBoost {
			maxBoost = comparison.ConfidenceBoost
		}
	}

	return enhanced, maxBoost
}
