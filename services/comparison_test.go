package services

import (
	"testing"
	"time"

	"catalyst-alerts/bucketing"
	"catalyst-alerts/interfaces"
	"catalyst-alerts/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*PriceComparisonEngine, *EarningsCalendarManager) {
	t.Helper()
	storage := newTestStorage(t)
	manager := NewEarningsCalendarManager(storage, &stubCalendar{})
	engine := NewPriceComparisonEngine(storage, manager, 6, 0.34, 0.3)
	return engine, manager
}

func saveAverage(t *testing.T, engine *PriceComparisonEngine, ordinal, dte, dayOfWeek int, timeSlot string, avgAsk float64) {
	t.Helper()
	require.NoError(t, engine.storage.SaveWeeklyAverages([]*models.WeeklyAverage{{
		CalculatedAt:    time.Now().Add(-time.Hour),
		Symbol:          "APP",
		OptionType:      "CALL",
		OrdinalPosition: ordinal,
		DayOfWeek:       dayOfWeek,
		TimeSlot:        timeSlot,
		DTE:             dte,
		AvgAskPrice:     &avgAsk,
		AvgMidPrice:     avgAsk,
		SampleCount:     6,
	}}))
}

func TestCheckElevationAtThreshold(t *testing.T) {
	engine, _ := newTestEngine(t)
	saveAverage(t, engine, 1, 1, 3, "10:30", 1.0)

	// 34% above average is elevated (inclusive threshold)
	result := engine.CheckElevation(1.34, "CALL", 1, 1, 3, "10:30", "APP")
	assert.True(t, result.IsElevated)
	assert.Equal(t, 0.3, result.ConfidenceBoost)
	assert.True(t, result.HasHistoricalData)
	require.NotNil(t, result.ElevationPct)
	assert.InDelta(t, 0.34, *result.ElevationPct, 1e-9)
}

func TestCheckElevationBelowThreshold(t *testing.T) {
	engine, _ := newTestEngine(t)
	saveAverage(t, engine, 1, 1, 3, "10:30", 1.0)

	result := engine.CheckElevation(1.33, "CALL", 1, 1, 3, "10:30", "APP")
	assert.False(t, result.IsElevated)
	assert.Equal(t, 0.0, result.ConfidenceBoost)
	assert.True(t, result.HasHistoricalData)
}

func TestCheckElevationNoHistory(t *testing.T) {
	engine, _ := newTestEngine(t)

	result := engine.CheckElevation(1.50, "CALL", 1, 1, 3, "10:30", "APP")
	assert.False(t, result.IsElevated)
	assert.False(t, result.HasHistoricalData)
	assert.Equal(t, 0.0, result.ConfidenceBoost)
	assert.Nil(t, result.AvgPrice)
	assert.Nil(t, result.ElevationPct)
}

func TestCheckElevationLegacyMidFallback(t *testing.T) {
	engine, _ := newTestEngine(t)

	// Legacy run rows carry only a mid average
	require.NoError(t, engine.storage.SaveWeeklyAverages([]*models.WeeklyAverage{{
		CalculatedAt:    time.Now().Add(-time.Hour),
		Symbol:          "APP",
		OptionType:      "CALL",
		OrdinalPosition: 1,
		DayOfWeek:       3,
		TimeSlot:        "10:30",
		DTE:             1,
		AvgMidPrice:     1.0,
		SampleCount:     6,
	}}))

	result := engine.CheckElevation(1.40, "CALL", 1, 1, 3, "10:30", "APP")
	assert.True(t, result.IsElevated)
	require.NotNil(t, result.AvgPrice)
	assert.Equal(t, 1.0, *result.AvgPrice)
}

func TestCheckElevationAdHocFallback(t *testing.T) {
	engine, _ := newTestEngine(t)

	// No precomputed averages; raw snapshots answer the lookup instead.
	now := time.Now()
	require.NoError(t, engine.storage.PutSnapshot(bucketSnapshot(now.AddDate(0, 0, -7), 1, 1.0)))
	require.NoError(t, engine.storage.PutSnapshot(bucketSnapshot(now.AddDate(0, 0, -14), 1, 1.0)))

	result := engine.CheckElevation(1.50, "CALL", 1, 1, 3, "10:30", "APP")
	assert.True(t, result.HasHistoricalData)
	assert.True(t, result.IsElevated)
	require.NotNil(t, result.AvgPrice)
	assert.InDelta(t, 1.0, *result.AvgPrice, 1e-9)
}

func TestCheckElevationInvalidCurrentPrice(t *testing.T) {
	engine, _ := newTestEngine(t)
	saveAverage(t, engine, 1, 1, 3, "10:30", 1.0)

	result := engine.CheckElevation(0, "CALL", 1, 1, 3, "10:30", "APP")
	assert.True(t, result.HasHistoricalData)
	assert.False(t, result.IsElevated)
	assert.Nil(t, result.ElevationPct)
}

func TestEvaluateStrikesMaxBoostNotSummed(t *testing.T) {
	engine, _ := newTestEngine(t)

	// Both ordinals elevated in the bucket matching the current clock.
	now := time.Now()
	dayOfWeek := bucketing.DayOfWeek(now)
	timeSlot := bucketing.TimeSlot(now)
	saveAverage(t, engine, 1, 1, dayOfWeek, timeSlot, 1.0)
	saveAverage(t, engine, 2, 1, dayOfWeek, timeSlot, 1.0)

	strikes := []interfaces.StrikeRecommendation{
		{Strike: 105, Type: "CALL", LastPrice: 1.50},
		{Strike: 110, Type: "CALL", LastPrice: 1.50},
	}

	enhanced, boost := engine.EvaluateStrikes(strikes, 100.0, "CALL", 1, "APP")
	assert.Equal(t, 0.3, boost)
	require.Len(t, enhanced, 2)
	require.NotNil(t, enhanced[0].PriceComparison)
	assert.True(t, enhanced[0].PriceComparison.IsElevated)
	assert.Equal(t, 1, enhanced[0].PriceComparison.OrdinalPosition)
	assert.Equal(t, 2, enhanced[1].PriceComparison.OrdinalPosition)
}

func TestEvaluateStrikesUsesAskWhenNoLast(t *testing.T) {
	engine, _ := newTestEngine(t)

	now := time.Now()
	saveAverage(t, engine, 1, 1, bucketing.DayOfWeek(now), bucketing.TimeSlot(now), 1.0)

	strikes := []interfaces.StrikeRecommendation{
		{Strike: 105, Type: "CALL", Ask: 1.40},
	}

	enhanced, boost := engine.EvaluateStrikes(strikes, 100.0, "CALL", 1, "APP")
	assert.Equal(t, 0.3, boost)
	assert.Equal(t, 1.40, enhanced[0].PriceComparison.CurrentPrice)
}

func TestEvaluateStrikesEmpty(t *testing.T) {
	engine, _ := newTestEngine(t)

	enhanced, boost := engine.EvaluateStrikes(nil, 100.0, "CALL", 1, "APP")
	assert.Empty(t, enhanced)
	assert.Equal(t, 0.0, boost)
}
