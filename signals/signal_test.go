package signals

import (
	"testing"
	"time"

	"catalyst-alerts/interfaces"

	"github.com/stretchr/testify/assert"
)

func TestIsActionable(t *testing.T) {
	actionable := &Signal{Direction: DirectionCall, Confidence: 0.5}
	assert.True(t, actionable.IsActionable())

	lowConfidence := &Signal{Direction: DirectionCall, Confidence: 0.49}
	assert.False(t, lowConfidence.IsActionable())

	neutral := &Signal{Direction: DirectionNeutral, Confidence: 0.9}
	assert.False(t, neutral.IsActionable())
}

func TestStrengthForConfidence(t *testing.T) {
	assert.Equal(t, StrengthStrong, StrengthForConfidence(0.7))
	assert.Equal(t, StrengthModerate, StrengthForConfidence(0.5))
	assert.Equal(t, StrengthWeak, StrengthForConfidence(0.49))
}

func TestStrikeRecommendationsCalls(t *testing.T) {
	strikes := StrikeRecommendations(100.0, DirectionCall)

	assert.Len(t, strikes, 2)
	assert.Equal(t, 105.0, strikes[0].Strike)
	assert.Equal(t, "CALL", strikes[0].Type)
	assert.Equal(t, "moderate", strikes[0].Risk)
	assert.Equal(t, 110.0, strikes[1].Strike)
	assert.Equal(t, "high", strikes[1].Risk)
}

func TestStrikeRecommendationsPuts(t *testing.T) {
	strikes := StrikeRecommendations(100.0, DirectionPut)

	assert.Len(t, strikes, 2)
	assert.Equal(t, 95.0, strikes[0].Strike)
	assert.Equal(t, 90.0, strikes[1].Strike)
	assert.Equal(t, "PUT", strikes[0].Type)
}

func TestStrikeRecommendationsNeutralOrInvalid(t *testing.T) {
	assert.Nil(t, StrikeRecommendations(100.0, DirectionNeutral))
	assert.Nil(t, StrikeRecommendations(0, DirectionCall))
}

func TestFilterStrikesByPrice(t *testing.T) {
	strikes := []interfaces.StrikeRecommendation{
		{Strike: 105, LastPrice: 0.50},
		{Strike: 110, LastPrice: 1.50},
		{Strike: 115, Ask: 0.90},
		{Strike: 120}, // no price data, kept
	}

	filtered := FilterStrikesByPrice(strikes, 1.00)
	assert.Len(t, filtered, 3)
	assert.Equal(t, 105.0, filtered[0].Strike)
	assert.Equal(t, 115.0, filtered[1].Strike)
	assert.Equal(t, 120.0, filtered[2].Strike)
}

func TestIsTradingDay(t *testing.T) {
	tradingDays := []int{3, 4} // Thursday, Friday

	assert.True(t, IsTradingDay(time.Date(2025, 6, 5, 10, 0, 0, 0, time.UTC), tradingDays))
	assert.True(t, IsTradingDay(time.Date(2025, 6, 6, 10, 0, 0, 0, time.UTC), tradingDays))
	assert.False(t, IsTradingDay(time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC), tradingDays))
	assert.False(t, IsTradingDay(time.Date(2025, 6, 7, 10, 0, 0, 0, time.UTC), tradingDays))
}

func TestNearestDTE(t *testing.T) {
	assert.Equal(t, 0, NearestDTE(time.Date(2025, 6, 6, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, NearestDTE(time.Date(2025, 6, 5, 10, 0, 0, 0, time.UTC)))
}
