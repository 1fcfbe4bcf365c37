package signals

import (
	"context"
	"strings"
	"sync"
	"time"

	"catalyst-alerts/interfaces"
	"catalyst-alerts/services"

	"github.com/sirupsen/logrus"
)

// Headline keywords for intraday breaking news.
var (
	LiveBullishKeywords = []string{
		"beats", "surge", "upgrade", "partnership", "acquisition",
		"record", "growth", "raises guidance", "buy rating", "outperform",
		"s&p inclusion", "s&p 500", "index addition", "strong results",
		"exceeds expectations", "bullish", "rally", "soar",
	}
	LiveBearishKeywords = []string{
		"misses", "plunge", "downgrade", "lawsuit", "investigation",
		"lowers guidance", "sell rating", "underperform", "layoffs",
		"ceo departure", "cfo leaves", "index removal", "disappoints",
		"weak results", "bearish", "tumble", "crash",
	}
)

// Outlets whose headlines get a confidence bump.
var majorSources = []string{
	"reuters", "bloomberg", "cnbc", "wall street journal", "wsj",
	"financial times", "ft", "marketwatch", "barron's", "seeking alpha",
}

// LiveNewsDetector reacts to breaking company news during market hours.
// It is polled frequently and only looks at a short trailing window, so a
// seen-headline set guards against re-alerting on the same story.
type LiveNewsDetector struct {
	finnhub     *services.FinnhubClient
	marketData  interfaces.MarketDataService
	comparison  *services.PriceComparisonEngine
	symbol      string
	tradingDays []int

	lookbackMinutes int
	maxOptionPrice  float64

	mu      sync.Mutex
	alerted map[string]bool
	logger  *logrus.Logger
}

// NewLiveNewsDetector creates a new live intraday news detector
func NewLiveNewsDetector(finnhub *services.FinnhubClient, marketData interfaces.MarketDataService, comparison *services.PriceComparisonEngine, symbol string, tradingDays []int, maxOptionPrice float64) *LiveNewsDetector {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &LiveNewsDetector{
		finnhub:         finnhub,
		marketData:      marketData,
		comparison:      comparison,
		symbol:          symbol,
		tradingDays:     tradingDays,
		lookbackMinutes: 15,
		maxOptionPrice:  maxOptionPrice,
		alerted:         make(map[string]bool),
		logger:          logger,
	}
}

func (d *LiveNewsDetector) Name() string { return "Live Intraday News" }

func (d *LiveNewsDetector) Description() string {
	return "Monitors breaking news in real-time and triggers alerts when " +
		"high-impact news is detected within the last 15 minutes."
}

func (d *LiveNewsDetector) Check(ctx context.Context) *Signal {
	now := time.Now()
	if !IsTradingDay(now, d.tradingDays) {
		return nil
	}

	news, err := d.finnhub.GetCompanyNews(ctx, d.symbol, 1)
	if err != nil {
		d.logger.WithError(err).Warn("Live news fetch failed")
		return nil
	}

	cutoff := now.Add(-time.Duration(d.lookbackMinutes) * time.Minute)
	for _, article := range news {
		if article.Published.Before(cutoff) {
			continue
		}
		if d.alreadyAlerted(article.Title) {
			continue
		}

		direction, confidence, matched := analyzeBreaking(article)
		if direction == DirectionNeutral || confidence < 0.5 {
			continue
		}

		d.markAlerted(article.Title)

		quote, err := d.marketData.GetQuote(ctx, d.symbol)
		if err != nil || quote.Price <= 0 {
			d.logger.WithError(err).Warn("Could not get underlying price")
			return nil
		}

		strikes := StrikeRecommendations(quote.Price, direction)
		strikes = FilterStrikesByPrice(strikes, d.maxOptionPrice)

		dte := NearestDTE(now)
		enhanced, priceBoost := d.comparison.EvaluateStrikes(strikes, quote.Price, string(direction), dte, d.symbol)

		confidence += priceBoost
		if confidence > 1.0 {
			confidence = 1.0
		}

		strength := StrengthWeak
		if confidence >= 0.8 {
			strength = StrengthStrong
		} else if confidence >= 0.6 {
			strength = StrengthModerate
		}

		signal := &Signal{
			Name:       d.Name(),
			Direction:  direction,
			Strength:   strength,
			Confidence: confidence,
			Timestamp:  now,
			Details: map[string]interface{}{
				"catalyst_type":          "live_news",
				"headline":               article.Title,
				"source":                 article.Source,
				"published":              article.Published.Format(time.RFC3339),
				"news_url":               article.URL,
				"matched_keywords":       matched,
				"current_price":          quote.Price,
				"minutes_ago":            int(now.Sub(article.Published).Minutes()),
				"price_comparison_boost": priceBoost,
			},
			RecommendedStrikes: enhanced,
		}

		d.logger.WithFields(logrus.Fields{
			"direction":  signal.Direction,
			"confidence": signal.Confidence,
			"headline":   article.Title,
		}).Info("Live news signal detected")
		return signal
	}

	return nil
}

// ClearAlertHistory allows re-alerting on previously seen headlines.
// Called once per day by the scheduler.
func (d *LiveNewsDetector) ClearAlertHistory() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alerted = make(map[string]bool)
}

func (d *LiveNewsDetector) alreadyAlerted(title string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.alerted[title]
}

func (d *LiveNewsDetector) markAlerted(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alerted[title] = true
}

// analyzeBreaking scores a headline: 0.4 base, +0.15 per keyword match,
// +0.1 when the source is a major outlet. Ties between keyword lists are
// neutral.
func analyzeBreaking(article services.NewsArticle) (Direction, float64, []string) {
	text := strings.ToLower(article.Title + " " + article.Summary)
	source := strings.ToLower(article.Source)

	var bullish, bearish []string
	for _, kw := range LiveBullishKeywords {
		if strings.Contains(text, kw) {
			bullish = append(bullish, kw)
		}
	}
	for _, kw := range LiveBearishKeywords {
		if strings.Contains(text, kw) {
			bearish = append(bearish, kw)
		}
	}

	var direction Direction
	var matched []string
	switch {
	case len(bullish) > len(bearish):
		direction = DirectionCall
		matched = bullish
	case len(bearish) > len(bullish):
		direction = DirectionPut
		matched = bearish
	default:
		return DirectionNeutral, 0, nil
	}

	confidence := 0.4 + float64(len(matched))*0.15
	for _, src := range majorSources {
		if strings.Contains(source, src) {
			confidence += 0.1
			break
		}
	}
	if confidence > 1.0 {
		confidence = 1.0
	}

	return direction, confidence, matched
}
