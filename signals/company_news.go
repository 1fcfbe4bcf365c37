package signals

import (
	"context"
	"strings"
	"time"

	"catalyst-alerts/interfaces"
	"catalyst-alerts/services"

	"github.com/sirupsen/logrus"
)

// High-impact headline keywords for company-specific news.
var (
	MajorPositiveKeywords = []string{
		"s&p 500", "s&p500", "index inclusion", "acquisition", "acquires",
		"partnership", "contract", "beats estimates", "raises guidance",
		"record revenue", "upgrade", "buy rating", "outperform",
	}
	MajorNegativeKeywords = []string{
		"index removal", "lawsuit", "sec investigation", "downgrade",
		"misses estimates", "lowers guidance", "sell rating", "underperform",
		"executive departure", "cfo resignation", "ceo leaves",
	}
)

// CompanyNewsDetector fires on major company-specific announcements:
// index changes, M&A, guidance moves, analyst rating changes.
type CompanyNewsDetector struct {
	finnhub     *services.FinnhubClient
	marketData  interfaces.MarketDataService
	symbol      string
	tradingDays []int
	logger      *logrus.Logger
}

// NewCompanyNewsDetector creates a new company news detector
func NewCompanyNewsDetector(finnhub *services.FinnhubClient, marketData interfaces.MarketDataService, symbol string, tradingDays []int) *CompanyNewsDetector {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &CompanyNewsDetector{
		finnhub:     finnhub,
		marketData:  marketData,
		symbol:      symbol,
		tradingDays: tradingDays,
		logger:      logger,
	}
}

func (d *CompanyNewsDetector) Name() string { return "Company News" }

func (d *CompanyNewsDetector) Description() string {
	return "Monitors company-specific news for major announcements including " +
		"S&P index changes, partnerships, earnings, and analyst ratings."
}

func (d *CompanyNewsDetector) Check(ctx context.Context) *Signal {
	now := time.Now()
	if !IsTradingDay(now, d.tradingDays) {
		d.logger.Debug("Not a trading day, skipping company news check")
		return nil
	}

	news, err := d.finnhub.GetCompanyNews(ctx, d.symbol, 1)
	if err != nil {
		d.logger.WithError(err).Warn("Company news fetch failed")
		return nil
	}
	if len(news) == 0 {
		return nil
	}

	article, direction, impact := findMajorNews(news)
	if article == nil {
		d.logger.Debug("No major company news catalyst detected")
		return nil
	}

	quote, err := d.marketData.GetQuote(ctx, d.symbol)
	if err != nil || quote.Price <= 0 {
		d.logger.WithError(err).Warn("Could not get underlying price")
		return nil
	}

	strength := StrengthWeak
	if impact >= 0.8 {
		strength = StrengthStrong
	} else if impact >= 0.6 {
		strength = StrengthModerate
	}

	signal := &Signal{
		Name:       d.Name(),
		Direction:  direction,
		Strength:   strength,
		Confidence: impact,
		Timestamp:  now,
		Details: map[string]interface{}{
			"catalyst_type": "company_news",
			"headline":      article.Title,
			"source":        article.Source,
			"published":     article.Published.Format(time.RFC3339),
			"impact_score":  impact,
			"news_url":      article.URL,
			"current_price": quote.Price,
		},
		RecommendedStrikes: StrikeRecommendations(quote.Price, direction),
	}

	d.logger.WithFields(logrus.Fields{
		"direction":  signal.Direction,
		"confidence": signal.Confidence,
		"headline":   article.Title,
	}).Info("Company news signal detected")
	return signal
}

// findMajorNews scans articles in order for the first one matching a
// high-impact keyword list. Impact grows 0.15 per match from a 0.5 base.
func findMajorNews(articles []services.NewsArticle) (*services.NewsArticle, Direction, float64) {
	for i := range articles {
		text := strings.ToLower(articles[i].Title + " " + articles[i].Summary)

		positive := countMatches(text, MajorPositiveKeywords)
		if positive > 0 {
			return &articles[i], DirectionCall, impactScore(positive)
		}

		negative := countMatches(text, MajorNegativeKeywords)
		if negative > 0 {
			return &articles[i], DirectionPut, impactScore(negative)
		}
	}
	return nil, DirectionNeutral, 0
}

func countMatches(text string, keywords []string) int {
	matches := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			matches++
		}
	}
	return matches
}

func impactScore(matches int) float64 {
	score := 0.5 + float64(matches)*0.15
	if score > 1.0 {
		score = 1.0
	}
	return score
}
