package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekOf(t *testing.T) {
	// 2025-06-04 is a Wednesday
	monday, friday := WeekOf(time.Date(2025, 6, 4, 15, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), monday)
	assert.Equal(t, time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC), friday)

	// A Monday maps to itself
	monday, friday = WeekOf(time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), monday)
	assert.Equal(t, time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC), friday)

	// A Sunday belongs to the week that started the previous Monday
	monday, _ = WeekOf(time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), monday)
}

func TestRefreshStoresWholeWeeks(t *testing.T) {
	storage := newTestStorage(t)
	earningsDate := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	manager := NewEarningsCalendarManager(storage, &stubCalendar{dates: []time.Time{earningsDate}})

	stored, err := manager.Refresh(context.Background(), "APP")
	require.NoError(t, err)
	assert.Equal(t, 1, stored)

	weeks, err := storage.EarningsWeeks("APP")
	require.NoError(t, err)
	require.Len(t, weeks, 1)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), weeks[0].WeekStart)
	assert.Equal(t, time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC), weeks[0].WeekEnd)
}

func TestRefreshEmptyCalendar(t *testing.T) {
	storage := newTestStorage(t)
	manager := NewEarningsCalendarManager(storage, &stubCalendar{})

	stored, err := manager.Refresh(context.Background(), "APP")
	require.NoError(t, err)
	assert.Equal(t, 0, stored)
}

func TestRefreshRepeatDoesNotDuplicate(t *testing.T) {
	storage := newTestStorage(t)
	earningsDate := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	manager := NewEarningsCalendarManager(storage, &stubCalendar{dates: []time.Time{earningsDate}})

	_, err := manager.Refresh(context.Background(), "APP")
	require.NoError(t, err)
	_, err = manager.Refresh(context.Background(), "APP")
	require.NoError(t, err)

	weeks, err := storage.EarningsWeeks("APP")
	require.NoError(t, err)
	assert.Len(t, weeks, 1)
}

func TestIsEarningsWeekWholeWeek(t *testing.T) {
	storage := newTestStorage(t)
	earningsDate := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	manager := NewEarningsCalendarManager(storage, &stubCalendar{dates: []time.Time{earningsDate}})

	_, err := manager.Refresh(context.Background(), "APP")
	require.NoError(t, err)

	// Every weekday of the week counts, including intra-day timestamps
	assert.True(t, manager.IsEarningsWeek(time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC), "APP"))
	assert.True(t, manager.IsEarningsWeek(time.Date(2025, 6, 6, 15, 55, 0, 0, time.UTC), "APP"))
	assert.False(t, manager.IsEarningsWeek(time.Date(2025, 6, 9, 9, 30, 0, 0, time.UTC), "APP"))
	assert.False(t, manager.IsEarningsWeek(time.Date(2025, 5, 30, 9, 30, 0, 0, time.UTC), "APP"))
}

func TestEarningsWeeksInLookback(t *testing.T) {
	storage := newTestStorage(t)
	recent := time.Now().AddDate(0, 0, -14)
	ancient := time.Now().AddDate(0, 0, -120)
	manager := NewEarningsCalendarManager(storage, &stubCalendar{dates: []time.Time{recent, ancient}})

	_, err := manager.Refresh(context.Background(), "APP")
	require.NoError(t, err)

	ranges := manager.EarningsWeeksInLookback("APP", 6)
	require.Len(t, ranges, 1)
	wantStart, _ := WeekOf(recent)
	assert.True(t, ranges[0].Start.Equal(wantStart))
}
