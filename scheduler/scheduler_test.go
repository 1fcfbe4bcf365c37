package scheduler

import (
	"testing"
	"time"

	"catalyst-alerts/signals"

	"github.com/stretchr/testify/assert"
)

func TestClockMinutes(t *testing.T) {
	assert.Equal(t, 9*60+30, clockMinutes("09:30"))
	assert.Equal(t, 16*60, clockMinutes("16:00"))
	assert.Equal(t, 0, clockMinutes("not-a-time"))
}

func TestDuplicateSuppressionWithinHour(t *testing.T) {
	s := &AlertSystem{}

	signal := &signals.Signal{
		Name:      "Live Intraday News",
		Direction: signals.DirectionCall,
		Timestamp: time.Now(),
	}

	assert.False(t, s.isDuplicate(signal))
	s.rememberSignal(signal)
	assert.True(t, s.isDuplicate(signal))

	// Same detector, other direction is not a duplicate
	put := &signals.Signal{
		Name:      "Live Intraday News",
		Direction: signals.DirectionPut,
		Timestamp: time.Now(),
	}
	assert.False(t, s.isDuplicate(put))

	// Other detector, same direction is not a duplicate
	other := &signals.Signal{
		Name:      "Company News",
		Direction: signals.DirectionCall,
		Timestamp: time.Now(),
	}
	assert.False(t, s.isDuplicate(other))
}

func TestDuplicateSuppressionExpires(t *testing.T) {
	s := &AlertSystem{}

	stale := &signals.Signal{
		Name:      "Ad Sector News",
		Direction: signals.DirectionCall,
		Timestamp: time.Now().Add(-2 * time.Hour),
	}
	s.rememberSignal(stale)

	fresh := &signals.Signal{
		Name:      "Ad Sector News",
		Direction: signals.DirectionCall,
		Timestamp: time.Now(),
	}
	assert.False(t, s.isDuplicate(fresh))
}

func TestRememberSignalBounded(t *testing.T) {
	s := &AlertSystem{}
	for i := 0; i < 15; i++ {
		s.rememberSignal(&signals.Signal{
			Name:      "Ad Sector News",
			Direction: signals.DirectionCall,
			Timestamp: time.Now(),
		})
	}
	assert.Len(t, s.recentSignals, 10)
}
