package services

import (
	"context"
	"fmt"
	"time"

	"catalyst-alerts/bucketing"
	"catalyst-alerts/database"
	"catalyst-alerts/interfaces"
	"catalyst-alerts/models"

	"github.com/sirupsen/logrus"
)

// OptionsDataCollector captures option price snapshots at 5-minute
// intervals during the collection window and writes them to the history
// store with bucket keys assigned at capture.
type OptionsDataCollector struct {
	storage    *database.HistoryStorage
	marketData interfaces.MarketDataService
	logger     *logrus.Logger

	tradingDays []int
	marketOpen  string
	marketClose string
}

// NewOptionsDataCollector creates a new options data collector
func NewOptionsDataCollector(storage *database.HistoryStorage, marketData interfaces.MarketDataService, tradingDays []int, marketOpen, marketClose string) *OptionsDataCollector {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &OptionsDataCollector{
		storage:     storage,
		marketData:  marketData,
		logger:      logger,
		tradingDays: tradingDays,
		marketOpen:  marketOpen,
		marketClose: marketClose,
	}
}

// IsCollectionTime reports whether now falls inside the collection window:
// a configured trading day between market open and close.
func (c *OptionsDataCollector) IsCollectionTime(now time.Time) bool {
	dayOfWeek := bucketing.DayOfWeek(now)
	onTradingDay := false
	for _, day := range c.tradingDays {
		if day == dayOfWeek {
			onTradingDay = true
			break
		}
	}
	if !onTradingDay {
		return false
	}

	clock := now.Format("15:04")
	return clock >= c.marketOpen && clock <= c.marketClose
}

// CollectSnapshot captures current option prices for the 0DTE and 1DTE
// expirations: the 10 nearest OTM calls and 10 nearest OTM puts each.
// Returns the number of snapshots stored. Collaborator failures are
// logged and reported as a zero count.
func (c *OptionsDataCollector) CollectSnapshot(ctx context.Context, symbol string) (int, error) {
	quote, err := c.marketData.GetQuote(ctx, symbol)
	if err != nil {
		return 0, fmt.Errorf("failed to get quote: %w", err)
	}
	if quote.Price <= 0 {
		c.logger.WithField("symbol", symbol).Warn("No valid stock price; skipping collection")
		return 0, nil
	}

	chain, err := c.marketData.GetOptionsChain(ctx, symbol, "")
	if err != nil {
		return 0, fmt.Errorf("failed to get options chain: %w", err)
	}

	expirations := chain.Expirations
	if len(expirations) > 2 {
		expirations = expirations[:2] // 0DTE and 1DTE only
	}

	timestamp := time.Now()
	var snapshots []*models.OptionSnapshot

	for dte, expiration := range expirations {
		expChain := chain
		if expiration != chain.Expiration {
			expChain, err = c.marketData.GetOptionsChain(ctx, symbol, expiration)
			if err != nil {
				c.logger.WithError(err).WithField("expiration", expiration).Warn("Failed to fetch expiration chain; using default")
				expChain = chain
			}
		}

		expDate, err := time.ParseInLocation("2006-01-02", expiration, timestamp.Location())
		if err != nil {
			c.logger.WithError(err).WithField("expiration", expiration).Warn("Unparseable expiration date; skipping")
			continue
		}

		snapshots = append(snapshots, c.buildSnapshots(expChain.Calls, "CALL", symbol, quote.Price, expDate, dte, timestamp)...)
		snapshots = append(snapshots, c.buildSnapshots(expChain.Puts, "PUT", symbol, quote.Price, expDate, dte, timestamp)...)
	}

	stored := c.storage.PutSnapshotBatch(snapshots)
	if err := c.storage.RecordCollectionRun(timestamp, stored); err != nil {
		c.logger.WithError(err).Warn("Failed to update collection log")
	}

	c.logger.WithFields(logrus.Fields{
		"symbol": symbol,
		"stored": stored,
	}).Debug("Collected option snapshots")
	return stored, nil
}

// buildSnapshots converts one side of a chain into bucketed snapshot rows.
// Only OTM contracts within the ordinal cutoff are kept.
func (c *OptionsDataCollector) buildSnapshots(quotes []interfaces.OptionQuote, optionType, symbol string, stockPrice float64, expiration time.Time, dte int, timestamp time.Time) []*models.OptionSnapshot {
	strikes := make([]float64, len(quotes))
	for i, q := range quotes {
		strikes[i] = q.Strike
	}
	ordinals := bucketing.AssignOrdinals(strikes, stockPrice, optionType)

	dayOfWeek := bucketing.DayOfWeek(timestamp)
	timeSlot := bucketing.TimeSlot(timestamp)

	snapshots := make([]*models.OptionSnapshot, 0, len(ordinals))
	for _, q := range quotes {
		position, ok := ordinals[q.Strike]
		if !ok {
			continue
		}

		midPrice := q.LastPrice
		if q.Bid > 0 && q.Ask > 0 {
			midPrice = (q.Bid + q.Ask) / 2
		}

		pos := position
		dow := dayOfWeek
		slot := timeSlot
		snapshots = append(snapshots, &models.OptionSnapshot{
			Timestamp:       timestamp,
			Symbol:          symbol,
			StockPrice:      stockPrice,
			ExpirationDate:  expiration,
			DTE:             dte,
			OptionType:      optionType,
			Strike:          q.Strike,
			StrikeDistance:  bucketing.StrikeDistance(q.Strike, stockPrice, optionType),
			MidPrice:        midPrice,
			LastPrice:       q.LastPrice,
			Bid:             q.Bid,
			Ask:             q.Ask,
			Volume:          q.Volume,
			OpenInterest:    q.OpenInterest,
			DayOfWeek:       &dow,
			TimeSlot:        &slot,
			OrdinalPosition: &pos,
		})
	}
	return snapshots
}
