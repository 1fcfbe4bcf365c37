package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

// FinnhubClient wraps the Finnhub API for company news, market news and
// the earnings calendar. It implements interfaces.EarningsCalendarService.
type FinnhubClient struct {
	apiKey string
	logger *logrus.Logger
	client *http.Client
}

// NewFinnhubClient creates a new Finnhub client
func NewFinnhubClient(apiKey string) *FinnhubClient {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if apiKey == "" {
		logger.Warn("Finnhub API key not configured; news and earnings lookups disabled")
	}

	return &FinnhubClient{
		apiKey: apiKey,
		logger: logger,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// finnhubNewsItem is one article in a Finnhub news response
type finnhubNewsItem struct {
	Headline string `json:"headline"`
	Source   string `json:"source"`
	URL      string `json:"url"`
	Datetime int64  `json:"datetime"`
	Summary  string `json:"summary"`
}

// finnhubEarningsResponse is the /calendar/earnings response
type finnhubEarningsResponse struct {
	EarningsCalendar []struct {
		Date   string `json:"date"`
		Symbol string `json:"symbol"`
	} `json:"earningsCalendar"`
}

func (f *FinnhubClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("token", f.apiKey)
	requestURL := fmt.Sprintf("%s%s?%s", finnhubBaseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// GetCompanyNews fetches company-specific news for the last N days.
func (f *FinnhubClient) GetCompanyNews(ctx context.Context, symbol string, days int) ([]NewsArticle, error) {
	if f.apiKey == "" {
		return nil, nil
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("from", start.Format("2006-01-02"))
	params.Set("to", end.Format("2006-01-02"))

	var items []finnhubNewsItem
	if err := f.get(ctx, "/company-news", params, &items); err != nil {
		return nil, err
	}

	articles := make([]NewsArticle, 0, len(items))
	for _, item := range items {
		articles = append(articles, NewArticle(
			item.Headline,
			item.Source,
			item.URL,
			time.Unix(item.Datetime, 0),
			item.Summary,
			[]string{symbol},
		))
	}
	return articles, nil
}

// GetMarketNews fetches general market news for a category.
func (f *FinnhubClient) GetMarketNews(ctx context.Context, category string) ([]NewsArticle, error) {
	if f.apiKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("category", category)

	var items []finnhubNewsItem
	if err := f.get(ctx, "/news", params, &items); err != nil {
		return nil, err
	}

	if len(items) > 20 {
		items = items[:20]
	}

	articles := make([]NewsArticle, 0, len(items))
	for _, item := range items {
		articles = append(articles, NewArticle(
			item.Headline,
			item.Source,
			item.URL,
			time.Unix(item.Datetime, 0),
			item.Summary,
			nil,
		))
	}
	return articles, nil
}

// FetchEarningsDates returns the symbol's earnings announcement dates
// within a window spanning the past lookback quarter and the upcoming
// quarter. An empty calendar is not an error.
func (f *FinnhubClient) FetchEarningsDates(ctx context.Context, symbol string) ([]time.Time, error) {
	if f.apiKey == "" {
		return nil, nil
	}

	now := time.Now()
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("from", now.AddDate(0, -3, 0).Format("2006-01-02"))
	params.Set("to", now.AddDate(0, 3, 0).Format("2006-01-02"))

	var resp finnhubEarningsResponse
	if err := f.get(ctx, "/calendar/earnings", params, &resp); err != nil {
		return nil, err
	}

	dates := make([]time.Time, 0, len(resp.EarningsCalendar))
	for _, entry := range resp.EarningsCalendar {
		date, err := time.ParseInLocation("2006-01-02", entry.Date, now.Location())
		if err != nil {
			f.logger.WithField("date", entry.Date).Warn("Unparseable earnings date; skipping")
			continue
		}
		dates = append(dates, date)
	}
	return dates, nil
}
