package services

import (
	"context"
	"testing"
	"time"

	"catalyst-alerts/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMarketData struct {
	quote *interfaces.Quote
	chain *interfaces.OptionsChain
}

func (f *fakeMarketData) GetQuote(ctx context.Context, symbol string) (*interfaces.Quote, error) {
	return f.quote, nil
}

func (f *fakeMarketData) GetOptionsChain(ctx context.Context, symbol string, expiration string) (*interfaces.OptionsChain, error) {
	return f.chain, nil
}

func testChain(underlying float64) *interfaces.OptionsChain {
	chain := &interfaces.OptionsChain{
		UnderlyingSymbol: "APP",
		Expiration:       "2025-06-06",
		Expirations:      []string{"2025-06-06"},
		Timestamp:        time.Now(),
	}
	// Twelve strikes each side; only ten per side should survive bucketing
	for i := 1; i <= 12; i++ {
		chain.Calls = append(chain.Calls, interfaces.OptionQuote{
			Strike: underlying + float64(i),
			Bid:    0.40, Ask: 0.50, LastPrice: 0.45, Volume: 100, OpenInterest: 200,
		})
		chain.Puts = append(chain.Puts, interfaces.OptionQuote{
			Strike: underlying - float64(i),
			Bid:    0.30, Ask: 0.40, LastPrice: 0.35, Volume: 80, OpenInterest: 150,
		})
	}
	return chain
}

func TestIsCollectionTime(t *testing.T) {
	collector := NewOptionsDataCollector(nil, nil, []int{3, 4}, "09:30", "16:00")

	// 2025-06-05 is a Thursday
	assert.True(t, collector.IsCollectionTime(time.Date(2025, 6, 5, 10, 30, 0, 0, time.UTC)))
	assert.True(t, collector.IsCollectionTime(time.Date(2025, 6, 6, 9, 30, 0, 0, time.UTC)))

	// Before open, after close, wrong weekday
	assert.False(t, collector.IsCollectionTime(time.Date(2025, 6, 5, 9, 29, 0, 0, time.UTC)))
	assert.False(t, collector.IsCollectionTime(time.Date(2025, 6, 5, 16, 1, 0, 0, time.UTC)))
	assert.False(t, collector.IsCollectionTime(time.Date(2025, 6, 4, 10, 30, 0, 0, time.UTC)))
}

func TestCollectSnapshotCapsAtTenPerSide(t *testing.T) {
	storage := newTestStorage(t)
	market := &fakeMarketData{
		quote: &interfaces.Quote{Symbol: "APP", Price: 100.0},
		chain: testChain(100.0),
	}
	collector := NewOptionsDataCollector(storage, market, []int{3, 4}, "09:30", "16:00")

	stored, err := collector.CollectSnapshot(context.Background(), "APP")
	require.NoError(t, err)
	assert.Equal(t, 20, stored)

	count, err := storage.SnapshotCount("APP")
	require.NoError(t, err)
	assert.Equal(t, int64(20), count)
}

func TestCollectSnapshotSkipsWithoutPrice(t *testing.T) {
	storage := newTestStorage(t)
	market := &fakeMarketData{
		quote: &interfaces.Quote{Symbol: "APP", Price: 0},
		chain: testChain(100.0),
	}
	collector := NewOptionsDataCollector(storage, market, []int{3, 4}, "09:30", "16:00")

	stored, err := collector.CollectSnapshot(context.Background(), "APP")
	require.NoError(t, err)
	assert.Equal(t, 0, stored)
}

func TestCollectSnapshotAssignsBucketFields(t *testing.T) {
	storage := newTestStorage(t)
	market := &fakeMarketData{
		quote: &interfaces.Quote{Symbol: "APP", Price: 100.0},
		chain: testChain(100.0),
	}
	collector := NewOptionsDataCollector(storage, market, []int{3, 4}, "09:30", "16:00")

	_, err := collector.CollectSnapshot(context.Background(), "APP")
	require.NoError(t, err)

	snapshots, err := storage.SnapshotsForAveraging("APP", time.Now().Add(-time.Hour), nil)
	require.NoError(t, err)
	require.NotEmpty(t, snapshots)

	for _, snap := range snapshots {
		require.NotNil(t, snap.OrdinalPosition)
		assert.GreaterOrEqual(t, *snap.OrdinalPosition, 1)
		assert.LessOrEqual(t, *snap.OrdinalPosition, 10)
		require.NotNil(t, snap.DayOfWeek)
		require.NotNil(t, snap.TimeSlot)
	}

	// Nearest OTM call carries ordinal 1 and the bid/ask midpoint
	for _, snap := range snapshots {
		if snap.OptionType == "CALL" && snap.Strike == 101.0 {
			assert.Equal(t, 1, *snap.OrdinalPosition)
			assert.InDelta(t, 0.45, snap.MidPrice, 1e-9)
		}
	}
}
