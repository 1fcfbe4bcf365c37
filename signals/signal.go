package signals

import (
	"context"
	"fmt"
	"math"
	"time"

	"catalyst-alerts/interfaces"
)

// Direction of a trading signal
type Direction string

const (
	DirectionCall    Direction = "CALL"
	DirectionPut     Direction = "PUT"
	DirectionNeutral Direction = "NEUTRAL"
)

// Strength buckets a signal's confidence for display
type Strength int

const (
	StrengthWeak Strength = iota + 1
	StrengthModerate
	StrengthStrong
)

func (s Strength) String() string {
	switch s {
	case StrengthStrong:
		return "STRONG"
	case StrengthModerate:
		return "MODERATE"
	default:
		return "WEAK"
	}
}

// Signal is one detected trade setup
type Signal struct {
	Name               string                           `json:"name"`
	Direction          Direction                        `json:"direction"`
	Strength           Strength                         `json:"strength"`
	Confidence         float64                          `json:"confidence"`
	Timestamp          time.Time                        `json:"timestamp"`
	Details            map[string]interface{}           `json:"details"`
	RecommendedStrikes []interfaces.StrikeRecommendation `json:"recommended_strikes"`
}

// IsActionable reports whether the signal clears the minimum bar for an
// alert: at least 0.5 confidence with a definite direction.
func (s *Signal) IsActionable() bool {
	return s.Confidence >= 0.5 && s.Direction != DirectionNeutral
}

func (s *Signal) String() string {
	return fmt.Sprintf("Signal(%s, %s, confidence=%.2f)", s.Name, s.Direction, s.Confidence)
}

// Detector is one signal source. Check returns nil when no signal fired;
// detectors swallow their own collaborator errors and log them.
type Detector interface {
	Name() string
	Description() string
	Check(ctx context.Context) *Signal
}

// StrengthForConfidence maps a confidence to strength using the standard
// 0.7 / 0.5 cutoffs.
func StrengthForConfidence(confidence float64) Strength {
	switch {
	case confidence >= 0.7:
		return StrengthStrong
	case confidence >= 0.5:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}

// StrikeRecommendations derives the default 5% and 10% OTM strike pair
// from the current underlying price, rounded to whole dollars.
func StrikeRecommendations(currentPrice float64, direction Direction) []interfaces.StrikeRecommendation {
	if currentPrice <= 0 {
		return nil
	}

	var otm5, otm10 float64
	switch direction {
	case DirectionCall:
		otm5, otm10 = 1.05, 1.10
	case DirectionPut:
		otm5, otm10 = 0.95, 0.90
	default:
		return nil
	}

	return []interfaces.StrikeRecommendation{
		{
			Strike: math.Round(currentPrice * otm5),
			Type:   string(direction),
			OTMPct: 5,
			Risk:   "moderate",
		},
		{
			Strike: math.Round(currentPrice * otm10),
			Type:   string(direction),
			OTMPct: 10,
			Risk:   "high",
		},
	}
}

// FilterStrikesByPrice drops strikes whose option price exceeds maxPrice.
// Strikes without any price data are kept; the filter only rejects
// contracts known to be too expensive.
func FilterStrikesByPrice(strikes []interfaces.StrikeRecommendation, maxPrice float64) []interfaces.StrikeRecommendation {
	if maxPrice <= 0 {
		return strikes
	}

	filtered := make([]interfaces.StrikeRecommendation, 0, len(strikes))
	for _, strike := range strikes {
		price := strike.LastPrice
		if price == 0 {
			price = strike.Ask
		}
		if price == 0 || price <= maxPrice {
			filtered = append(filtered, strike)
		}
	}
	return filtered
}

// IsTradingDay reports whether t falls on one of the configured weekdays
// (0=Monday .. 6=Sunday).
func IsTradingDay(t time.Time, tradingDays []int) bool {
	day := (int(t.Weekday()) + 6) % 7
	for _, d := range tradingDays {
		if d == day {
			return true
		}
	}
	return false
}

// IsFriday reports whether t is a Friday, the 0DTE expiration day.
func IsFriday(t time.Time) bool {
	return t.Weekday() == time.Friday
}

// NearestDTE is 0 on Fridays (same-day expiration) and 1 otherwise, for
// Thursday checks against the next day's expiration.
func NearestDTE(t time.Time) int {
	if IsFriday(t) {
		return 0
	}
	return 1
}
