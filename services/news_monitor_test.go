package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeSentiment(t *testing.T) {
	assert.Equal(t, "bullish", analyzeSentiment("AppLovin beats estimates, shares surge", ""))
	assert.Equal(t, "bearish", analyzeSentiment("Stock plunges after downgrade", ""))
	assert.Equal(t, "neutral", analyzeSentiment("Company reports quarterly results", ""))

	// A tie stays neutral
	assert.Equal(t, "neutral", analyzeSentiment("Shares surge then plunge in wild session", ""))
}

func TestRelevanceDirectMention(t *testing.T) {
	article := NewArticle("AppLovin announces new product", "Reuters", "http://example.com", time.Now(), "", nil)
	assert.Equal(t, 1.0, article.RelevanceScore)

	tagged := NewArticle("Quarterly results released", "Reuters", "http://example.com", time.Now(), "", []string{"APP"})
	assert.Equal(t, 1.0, tagged.RelevanceScore)
}

func TestRelevanceSectorSignals(t *testing.T) {
	// One sector keyword plus one correlated ticker
	article := NewArticle("Digital advertising spend rebounds", "CNBC", "http://example.com", time.Now(), "", []string{"META"})
	assert.InDelta(t, 0.5, article.RelevanceScore, 1e-9)

	unrelated := NewArticle("Oil prices climb", "CNBC", "http://example.com", time.Now(), "", []string{"XOM"})
	assert.Equal(t, 0.0, unrelated.RelevanceScore)
}

func TestRelevanceCappedAtOne(t *testing.T) {
	article := NewArticle(
		"AppLovin digital advertising ad revenue programmatic growth",
		"Reuters", "http://example.com", time.Now(), "ad spend and ad market strength", []string{"META", "GOOGL"},
	)
	assert.Equal(t, 1.0, article.RelevanceScore)
}

func TestIsRelevantThreshold(t *testing.T) {
	article := NewArticle("Digital advertising trends", "CNBC", "http://example.com", time.Now(), "", nil)
	assert.InDelta(t, 0.2, article.RelevanceScore, 1e-9)
	assert.False(t, article.IsRelevant(0.3))
	assert.True(t, article.IsRelevant(0.2))
}
