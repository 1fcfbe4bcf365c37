package bucketing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStrikeDistanceRounding(t *testing.T) {
	// Rounds to the nearest $0.50
	assert.Equal(t, 2.5, StrikeDistance(102.6, 100.0, "CALL"))
	assert.Equal(t, 3.0, StrikeDistance(102.9, 100.0, "CALL"))
	assert.Equal(t, -2.5, StrikeDistance(97.4, 100.0, "PUT"))
}

func TestStrikeDistanceClamps(t *testing.T) {
	// ATM and ITM strikes clamp to the minimum OTM distance
	assert.Equal(t, 0.5, StrikeDistance(100.0, 100.0, "CALL"))
	assert.Equal(t, 0.5, StrikeDistance(99.0, 100.0, "CALL"))
	assert.Equal(t, -0.5, StrikeDistance(100.0, 100.0, "PUT"))
	assert.Equal(t, -0.5, StrikeDistance(101.0, 100.0, "PUT"))
}

func TestTimeSlotFloorsToFiveMinutes(t *testing.T) {
	cases := map[time.Time]string{
		time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC):   "09:30",
		time.Date(2025, 6, 2, 9, 34, 59, 0, time.UTC):  "09:30",
		time.Date(2025, 6, 2, 9, 35, 0, 0, time.UTC):   "09:35",
		time.Date(2025, 6, 2, 15, 59, 30, 0, time.UTC): "15:55",
		time.Date(2025, 6, 2, 0, 4, 0, 0, time.UTC):    "00:00",
	}
	for input, want := range cases {
		assert.Equal(t, want, TimeSlot(input), "slot for %v", input)
	}
}

func TestDayOfWeekMondayBased(t *testing.T) {
	// 2025-06-02 is a Monday
	monday := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	for offset := 0; offset < 7; offset++ {
		assert.Equal(t, offset, DayOfWeek(monday.AddDate(0, 0, offset)))
	}
}

func TestAssignOrdinalsCalls(t *testing.T) {
	strikes := []float64{95, 100, 105, 110, 115}
	ordinals := AssignOrdinals(strikes, 102.0, "CALL")

	// Only OTM strikes are ranked, nearest first
	assert.Equal(t, map[float64]int{105: 1, 110: 2, 115: 3}, ordinals)
}

func TestAssignOrdinalsPuts(t *testing.T) {
	strikes := []float64{95, 100, 105, 110}
	ordinals := AssignOrdinals(strikes, 102.0, "PUT")

	assert.Equal(t, map[float64]int{100: 1, 95: 2}, ordinals)
}

func TestAssignOrdinalsUnsortedInput(t *testing.T) {
	strikes := []float64{115, 105, 110}
	ordinals := AssignOrdinals(strikes, 100.0, "CALL")

	assert.Equal(t, 1, ordinals[105])
	assert.Equal(t, 2, ordinals[110])
	assert.Equal(t, 3, ordinals[115])
}

func TestAssignOrdinalsCapsAtTen(t *testing.T) {
	var strikes []float64
	for i := 1; i <= 15; i++ {
		strikes = append(strikes, 100.0+float64(i))
	}
	ordinals := AssignOrdinals(strikes, 100.0, "CALL")

	assert.Len(t, ordinals, MaxOrdinalPositions)
	for _, position := range ordinals {
		assert.LessOrEqual(t, position, MaxOrdinalPositions)
	}
	_, beyondCutoff := ordinals[111.0]
	assert.False(t, beyondCutoff)
}

func TestAssignOrdinalsNoOTMStrikes(t *testing.T) {
	ordinals := AssignOrdinals([]float64{90, 95}, 100.0, "CALL")
	assert.Empty(t, ordinals)
}
