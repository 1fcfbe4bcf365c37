// Package bucketing maps raw option observations onto the stable bucket
// keys used by the historical price store: ordinal OTM position, day of
// week and 5-minute time slot. Everything here is a pure function.
package bucketing

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// MaxOrdinalPositions is the farthest OTM rank that gets bucketed and
// stored. Contracts beyond this rank are dropped at capture.
const MaxOrdinalPositions = 10

// Key is the bucket identity of one observation. OrdinalPosition is the
// primary key in the current scheme; StrikeDistance is legacy/secondary.
type Key struct {
	OrdinalPosition int
	DayOfWeek       int    // 0=Monday .. 6=Sunday
	TimeSlot        string // "HH:MM" floored to a 5-minute boundary
	StrikeDistance  float64
}

// StrikeDistance returns the signed dollar distance from the underlying,
// rounded to the nearest $0.50. Calls are clamped to at least +0.5, puts
// to at most -0.5. Undefined for underlying <= 0; callers must hold a
// valid quote before bucketing.
func StrikeDistance(strike, underlying float64, optionType string) float64 {
	roundToHalf := func(v float64) float64 {
		return math.Round(v*2) / 2
	}

	if optionType == "CALL" {
		return math.Max(0.5, roundToHalf(strike-underlying))
	}
	return -math.Max(0.5, roundToHalf(underlying-strike))
}

// TimeSlot floors the capture time's minute to the nearest multiple of 5
// and formats it "HH:MM".
func TimeSlot(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute()-t.Minute()%5)
}

// DayOfWeek returns 0=Monday .. 6=Sunday.
func DayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Bucket computes the full bucket key for one observation, minus the
// ordinal position (which depends on the whole capture batch and is
// assigned by AssignOrdinals).
func Bucket(strike, underlying float64, optionType string, captureTime time.Time) Key {
	return Key{
		DayOfWeek:      DayOfWeek(captureTime),
		TimeSlot:       TimeSlot(captureTime),
		StrikeDistance: StrikeDistance(strike, underlying, optionType),
	}
}

// AssignOrdinals ranks out-of-the-money strikes of one type within a
// capture batch by closeness to the underlying: ascending strike for
// calls, descending for puts, nearest first. The returned map holds
// positions 1..MaxOrdinalPositions keyed by strike; strikes beyond the
// cutoff and in-the-money strikes are absent.
func AssignOrdinals(strikes []float64, underlying float64, optionType string) map[float64]int {
	otm := make([]float64, 0, len(strikes))
	for _, strike := range strikes {
		if optionType == "CALL" && strike > underlying {
			otm = append(otm, strike)
		} else if optionType == "PUT" && strike < underlying {
			otm = append(otm, strike)
		}
	}

	if optionType == "CALL" {
		sort.Float64s(otm)
	} else {
		sort.Sort(sort.Reverse(sort.Float64Slice(otm)))
	}

	ordinals := make(map[float64]int)
	for i, strike := range otm {
		if i >= MaxOrdinalPositions {
			break
		}
		ordinals[strike] = i + 1
	}
	return ordinals
}
