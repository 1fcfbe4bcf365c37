package signals

import (
	"context"
	"time"

	"catalyst-alerts/interfaces"
	"catalyst-alerts/services"

	"github.com/sirupsen/logrus"
)

// AdSectorDetector fires when high-relevance ad sector news with a clear
// sentiment shows up, on the theory that META/GOOGL and ad-industry
// catalysts drag the watched stock with them.
type AdSectorDetector struct {
	aggregator  *services.NewsAggregator
	marketData  interfaces.MarketDataService
	comparison  *services.PriceComparisonEngine
	symbol      string
	tradingDays []int
	logger      *logrus.Logger
}

// NewAdSectorDetector creates a new ad sector news detector
func NewAdSectorDetector(aggregator *services.NewsAggregator, marketData interfaces.MarketDataService, comparison *services.PriceComparisonEngine, symbol string, tradingDays []int) *AdSectorDetector {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &AdSectorDetector{
		aggregator:  aggregator,
		marketData:  marketData,
		comparison:  comparison,
		symbol:      symbol,
		tradingDays: tradingDays,
		logger:      logger,
	}
}

func (d *AdSectorDetector) Name() string { return "Ad Sector News" }

func (d *AdSectorDetector) Description() string {
	return "Monitors news from META, GOOGL, and the digital advertising industry. " +
		"Triggers when high-relevance news with strong sentiment is detected."
}

func (d *AdSectorDetector) Check(ctx context.Context) *Signal {
	now := time.Now()
	if !IsTradingDay(now, d.tradingDays) {
		d.logger.Debug("Not a trading day, skipping ad sector check")
		return nil
	}

	catalyst := d.aggregator.CheckForCatalyst(ctx)
	if catalyst == nil {
		d.logger.Debug("No ad sector catalyst detected")
		return nil
	}

	quote, err := d.marketData.GetQuote(ctx, d.symbol)
	if err != nil || quote.Price <= 0 {
		d.logger.WithError(err).Warn("Could not get underlying price for strike recommendations")
		return nil
	}

	direction := DirectionPut
	if catalyst.Direction == "CALL" {
		direction = DirectionCall
	}

	confidence := catalyst.Relevance * 1.2
	if confidence > 1.0 {
		confidence = 1.0
	}

	strikes := StrikeRecommendations(quote.Price, direction)
	dte := NearestDTE(now)
	enhanced, priceBoost := d.comparison.EvaluateStrikes(strikes, quote.Price, string(direction), dte, d.symbol)

	confidence += priceBoost
	if confidence > 1.0 {
		confidence = 1.0
	}

	signal := &Signal{
		Name:       d.Name(),
		Direction:  direction,
		Strength:   StrengthForConfidence(confidence),
		Confidence: confidence,
		Timestamp:  now,
		Details: map[string]interface{}{
			"catalyst_type":          "ad_sector_news",
			"headline":               catalyst.Title,
			"source":                 catalyst.Source,
			"sentiment":              catalyst.Sentiment,
			"relevance_score":        catalyst.Relevance,
			"news_url":               catalyst.URL,
			"current_price":          quote.Price,
			"price_comparison_boost": priceBoost,
		},
		RecommendedStrikes: enhanced,
	}

	d.logger.WithFields(logrus.Fields{
		"direction":  signal.Direction,
		"confidence": signal.Confidence,
		"headline":   catalyst.Title,
	}).Info("Ad sector signal detected")
	return signal
}

// SectorSentiment summarizes recent ad sector news sentiment for the
// monitoring API.
func (d *AdSectorDetector) SectorSentiment(ctx context.Context) map[string]interface{} {
	news := d.aggregator.GetAdSectorNews(ctx)
	if len(news) == 0 {
		return map[string]interface{}{
			"bullish": 0, "bearish": 0, "neutral": 0,
			"overall": "neutral", "article_count": 0,
		}
	}

	counts := map[string]int{}
	for _, article := range news {
		counts[article.Sentiment]++
	}

	total := float64(len(news))
	bullishPct := float64(counts["bullish"]) / total
	bearishPct := float64(counts["bearish"]) / total

	overall := "neutral"
	if bullishPct > bearishPct+0.2 {
		overall = "bullish"
	} else if bearishPct > bullishPct+0.2 {
		overall = "bearish"
	}

	return map[string]interface{}{
		"bullish":       counts["bullish"],
		"bearish":       counts["bearish"],
		"neutral":       counts["neutral"],
		"overall":       overall,
		"article_count": len(news),
	}
}
