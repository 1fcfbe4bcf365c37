package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Ad sector keywords monitored for catalysts affecting the watched stock.
var AdSectorKeywords = []string{
	"digital advertising",
	"ad spend",
	"ad revenue",
	"programmatic",
	"mobile advertising",
	"app monetization",
	"connected tv",
	"ctv advertising",
	"roas",
	"advertising budget",
	"ad market",
}

// Sentiment keywords for headline classification.
var (
	BullishKeywords = []string{
		"beats", "surge", "soar", "jump", "rally", "upgrade",
		"growth", "record", "strong", "exceeds", "outperform",
	}
	BearishKeywords = []string{
		"miss", "plunge", "drop", "fall", "downgrade", "weak",
		"decline", "cut", "lower", "disappoints", "underperform",
	}
)

// NewsArticle is a news article with keyword sentiment and a relevance
// score for the watched symbol.
type NewsArticle struct {
	Title          string
	Source         string
	URL            string
	Published      time.Time
	Summary        string
	Tickers        []string
	Sentiment      string // "bullish", "bearish", "neutral"
	RelevanceScore float64
}

// NewArticle builds an article and scores it.
func NewArticle(title, source, articleURL string, published time.Time, summary string, tickers []string) NewsArticle {
	article := NewsArticle{
		Title:     title,
		Source:    source,
		URL:       articleURL,
		Published: published,
		Summary:   summary,
		Tickers:   tickers,
	}
	article.Sentiment = analyzeSentiment(title, summary)
	article.RelevanceScore = calculateRelevance(&article)
	return article
}

// IsRelevant reports whether the article meets the relevance threshold.
func (a *NewsArticle) IsRelevant(threshold float64) bool {
	return a.RelevanceScore >= threshold
}

// analyzeSentiment is simple keyword-count sentiment: whichever list
// matches more wins, ties are neutral.
func analyzeSentiment(title, summary string) string {
	text := strings.ToLower(title + " " + summary)

	bullish := 0
	for _, kw := range BullishKeywords {
		if strings.Contains(text, kw) {
			bullish++
		}
	}
	bearish := 0
	for _, kw := range BearishKeywords {
		if strings.Contains(text, kw) {
			bearish++
		}
	}

	if bullish > bearish {
		return "bullish"
	}
	if bearish > bullish {
		return "bearish"
	}
	return "neutral"
}

// calculateRelevance scores how likely an article is to move the watched
// stock: direct mention dominates, sector keywords and correlated tickers
// add smaller increments, capped at 1.0.
func calculateRelevance(article *NewsArticle) float64 {
	score := 0.0
	text := strings.ToLower(article.Title + " " + article.Summary)

	if strings.Contains(text, "applovin") || containsTicker(article.Tickers, "APP") {
		score += 1.0
	}

	for _, keyword := range AdSectorKeywords {
		if strings.Contains(text, keyword) {
			score += 0.2
		}
	}

	for _, ticker := range article.Tickers {
		if ticker != "APP" && containsTicker(adSectorTickers, ticker) {
			score += 0.3
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

var adSectorTickers = []string{"META", "GOOGL", "TTD", "MGNI", "PUBM", "DV", "APP"}

func containsTicker(tickers []string, ticker string) bool {
	for _, t := range tickers {
		if t == ticker {
			return true
		}
	}
	return false
}

// Catalyst describes a potential market-moving news event.
type Catalyst struct {
	Title     string
	Source    string
	URL       string
	Sentiment string
	Relevance float64
	Published time.Time
	Direction string // "CALL" or "PUT"
}

// NewsAggregator pulls from Finnhub and NewsAPI, deduplicates, and filters
// for relevance to the watched symbol and its ad-sector correlates.
type NewsAggregator struct {
	finnhub      *FinnhubClient
	newsapi      *NewsAPIClient
	symbol       string
	watchTickers []string
	logger       *logrus.Logger
}

// NewNewsAggregator creates a new news aggregator. watchTickers are the
// correlated sector names polled for company news alongside the primary
// symbol.
func NewNewsAggregator(finnhub *FinnhubClient, newsapi *NewsAPIClient, symbol string, watchTickers []string) *NewsAggregator {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &NewsAggregator{
		finnhub:      finnhub,
		newsapi:      newsapi,
		symbol:       symbol,
		watchTickers: watchTickers,
		logger:       logger,
	}
}

// GetAdSectorNews returns relevant, deduplicated ad-sector news sorted by
// relevance then recency.
func (a *NewsAggregator) GetAdSectorNews(ctx context.Context) []NewsArticle {
	var all []NewsArticle

	// Two correlates per poll keeps the request count inside Finnhub's
	// free-tier rate limit.
	symbols := append([]string{a.symbol}, a.watchTickers...)
	if len(symbols) > 3 {
		symbols = symbols[:3]
	}
	for _, symbol := range symbols {
		articles, err := a.finnhub.GetCompanyNews(ctx, symbol, 1)
		if err != nil {
			a.logger.WithError(err).WithField("symbol", symbol).Warn("Company news fetch failed")
			continue
		}
		all = append(all, articles...)
	}

	searched, err := a.newsapi.SearchNews(ctx, "digital advertising", 1)
	if err != nil {
		a.logger.WithError(err).Warn("Ad industry news search failed")
	}
	all = append(all, searched...)

	seen := make(map[string]bool)
	unique := make([]NewsArticle, 0, len(all))
	for _, article := range all {
		if seen[article.Title] || !article.IsRelevant(0.3) {
			continue
		}
		seen[article.Title] = true
		unique = append(unique, article)
	}

	sort.Slice(unique, func(i, j int) bool {
		if unique[i].RelevanceScore != unique[j].RelevanceScore {
			return unique[i].RelevanceScore > unique[j].RelevanceScore
		}
		return unique[i].Published.After(unique[j].Published)
	})
	return unique
}

// GetBreakingNews returns ad-sector news published within the last N
// minutes.
func (a *NewsAggregator) GetBreakingNews(ctx context.Context, sinceMinutes int) []NewsArticle {
	cutoff := time.Now().Add(-time.Duration(sinceMinutes) * time.Minute)

	var breaking []NewsArticle
	for _, article := range a.GetAdSectorNews(ctx) {
		if !article.Published.Before(cutoff) {
			breaking = append(breaking, article)
		}
	}
	return breaking
}

// CheckForCatalyst scans the last hour's breaking news for a
// high-relevance, non-neutral article.
func (a *NewsAggregator) CheckForCatalyst(ctx context.Context) *Catalyst {
	for _, article := range a.GetBreakingNews(ctx, 60) {
		if article.RelevanceScore < 0.5 || article.Sentiment == "neutral" {
			continue
		}

		direction := "PUT"
		if article.Sentiment == "bullish" {
			direction = "CALL"
		}
		return &Catalyst{
			Title:     article.Title,
			Source:    article.Source,
			URL:       article.URL,
			Sentiment: article.Sentiment,
			Relevance: article.RelevanceScore,
			Published: article.Published,
			Direction: direction,
		}
	}
	return nil
}
