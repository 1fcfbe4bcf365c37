package models

import (
	"time"

	"gorm.io/gorm"
)

// OptionSnapshot represents one observation of one option contract at one
// 5-minute poll. The natural key is (timestamp, symbol, expiration_date,
// strike, option_type); re-inserting the same key replaces the prior row.
type OptionSnapshot struct {
	gorm.Model
	Timestamp      time.Time `gorm:"uniqueIndex:idx_snapshot_key;index:idx_snapshots_timestamp"`
	Symbol         string    `gorm:"uniqueIndex:idx_snapshot_key;index:idx_snapshots_lookup"`
	StockPrice     float64
	ExpirationDate time.Time `gorm:"uniqueIndex:idx_snapshot_key"`
	DTE            int
	OptionType     string  `gorm:"uniqueIndex:idx_snapshot_key;index:idx_snapshots_lookup"`
	Strike         float64 `gorm:"uniqueIndex:idx_snapshot_key"`
	StrikeDistance float64
	MidPrice       float64
	LastPrice      float64
	Bid            float64
	Ask            float64
	Volume         int64
	OpenInterest   int64

	// Bucket fields. Nullable because rows written before the bucketing
	// scheme existed are backfilled by migration; legacy rows past the
	// ordinal cutoff keep a null OrdinalPosition.
	DayOfWeek       *int    `gorm:"index:idx_snapshots_lookup"`
	TimeSlot        *string `gorm:"index:idx_snapshots_lookup"`
	OrdinalPosition *int    `gorm:"index:idx_snapshots_lookup"`
}

// WeeklyAverage is one precomputed rolling-average record for a bucket, as
// of a calculation run. Multiple runs accumulate; retention keeps the two
// most recent CalculatedAt groups.
type WeeklyAverage struct {
	gorm.Model
	CalculatedAt    time.Time `gorm:"uniqueIndex:idx_average_key;index"`
	Symbol          string    `gorm:"uniqueIndex:idx_average_key;index:idx_averages_lookup"`
	OptionType      string    `gorm:"uniqueIndex:idx_average_key;index:idx_averages_lookup"`
	OrdinalPosition int       `gorm:"uniqueIndex:idx_average_key;index:idx_averages_lookup"`
	DayOfWeek       int       `gorm:"uniqueIndex:idx_average_key;index:idx_averages_lookup"`
	TimeSlot        string    `gorm:"uniqueIndex:idx_average_key;index:idx_averages_lookup"`
	DTE             int       `gorm:"uniqueIndex:idx_average_key;index:idx_averages_lookup"`
	AvgAskPrice     *float64  // nil on legacy rows computed before ask-based averaging
	AvgMidPrice     float64
	SampleCount     int
	MinPrice        float64
	MaxPrice        float64
}

// EarningsWeek is a Monday-Friday date range excluded from averaging.
// WeekStart/WeekEnd always bracket EarningsDate.
type EarningsWeek struct {
	gorm.Model
	Symbol       string    `gorm:"uniqueIndex:idx_earnings_key;index"`
	EarningsDate time.Time `gorm:"uniqueIndex:idx_earnings_key"`
	WeekStart    time.Time `gorm:"index"`
	WeekEnd      time.Time `gorm:"index"`
	Source       string
}

// CollectionLog records one day's snapshot collection session for
// operational visibility.
type CollectionLog struct {
	gorm.Model
	CollectionDate     time.Time `gorm:"uniqueIndex"`
	DayOfWeek          string
	StartTime          time.Time
	EndTime            *time.Time
	SnapshotsCollected int
	Status             string // "in_progress", "completed", "failed"
	ErrorMessage       string
}

// AlertRecord is an audit row for every alert pushed to the chat channel.
type AlertRecord struct {
	gorm.Model
	Symbol     string `gorm:"index"`
	SignalName string `gorm:"index"`
	Direction  string // "CALL", "PUT", "NEUTRAL"
	Strength   string
	Confidence float64
	Headline   string
	Sent       bool
	SentAt     *time.Time
}

// TableName overrides for cleaner table names
func (OptionSnapshot) TableName() string {
	return "option_snapshots"
}

func (WeeklyAverage) TableName() string {
	return "weekly_averages"
}

func (EarningsWeek) TableName() string {
	return "earnings_weeks"
}

func (CollectionLog) TableName() string {
	return "data_collection_log"
}

func (AlertRecord) TableName() string {
	return "alert_log"
}
