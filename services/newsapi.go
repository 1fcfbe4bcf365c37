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

const newsAPIBaseURL = "https://newsapi.org/v2"

// NewsAPIClient wraps NewsAPI.org keyword search, used as the backup news
// source for sector-wide queries.
type NewsAPIClient struct {
	apiKey string
	logger *logrus.Logger
	client *http.Client
}

// NewNewsAPIClient creates a new NewsAPI client
func NewNewsAPIClient(apiKey string) *NewsAPIClient {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if apiKey == "" {
		logger.Warn("NewsAPI key not configured; backup news monitoring disabled")
	}

	return &NewsAPIClient{
		apiKey: apiKey,
		logger: logger,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// newsAPIResponse is the /everything search response
type newsAPIResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// SearchNews searches for articles matching a query within the last N
// days, newest first.
func (n *NewsAPIClient) SearchNews(ctx context.Context, query string, days int) ([]NewsArticle, error) {
	if n.apiKey == "" {
		return nil, nil
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	params := url.Values{}
	params.Set("q", query)
	params.Set("from", start.Format("2006-01-02"))
	params.Set("to", end.Format("2006-01-02"))
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("apiKey", n.apiKey)

	requestURL := fmt.Sprintf("%s/everything?%s", newsAPIBaseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search news: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var searchResp newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	items := searchResp.Articles
	if len(items) > 20 {
		items = items[:20]
	}

	articles := make([]NewsArticle, 0, len(items))
	for _, item := range items {
		published := time.Now()
		if item.PublishedAt != "" {
			if parsed, err := time.Parse(time.RFC3339, item.PublishedAt); err == nil {
				published = parsed
			}
		}
		articles = append(articles, NewArticle(
			item.Title,
			item.Source.Name,
			item.URL,
			published,
			item.Description,
			nil,
		))
	}
	return articles, nil
}
