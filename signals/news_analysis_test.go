package signals

import (
	"testing"
	"time"

	"catalyst-alerts/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func article(title, source string) services.NewsArticle {
	return services.NewsArticle{
		Title:     title,
		Source:    source,
		URL:       "http://example.com",
		Published: time.Now(),
	}
}

func TestFindMajorNewsPositive(t *testing.T) {
	articles := []services.NewsArticle{
		article("Company reports quarterly results", "Reuters"),
		article("AppLovin joins S&P 500 in index inclusion move", "Bloomberg"),
	}

	found, direction, impact := findMajorNews(articles)
	require.NotNil(t, found)
	assert.Equal(t, DirectionCall, direction)
	// Two keyword matches: "s&p 500" and "index inclusion"
	assert.InDelta(t, 0.8, impact, 1e-9)
}

func TestFindMajorNewsNegative(t *testing.T) {
	articles := []services.NewsArticle{
		article("SEC investigation opened into accounting practices", "WSJ"),
	}

	found, direction, impact := findMajorNews(articles)
	require.NotNil(t, found)
	assert.Equal(t, DirectionPut, direction)
	assert.InDelta(t, 0.65, impact, 1e-9)
}

func TestFindMajorNewsNone(t *testing.T) {
	articles := []services.NewsArticle{
		article("Company hosts annual meeting", "PR Newswire"),
	}

	found, direction, _ := findMajorNews(articles)
	assert.Nil(t, found)
	assert.Equal(t, DirectionNeutral, direction)
}

func TestAnalyzeBreakingBullishWithMajorSource(t *testing.T) {
	a := article("AppLovin beats estimates, shares surge", "Reuters")

	direction, confidence, matched := analyzeBreaking(a)
	assert.Equal(t, DirectionCall, direction)
	// 0.4 base + 2 keywords * 0.15 + 0.1 major source
	assert.InDelta(t, 0.8, confidence, 1e-9)
	assert.Len(t, matched, 2)
}

func TestAnalyzeBreakingMinorSource(t *testing.T) {
	a := article("Shares surge on strong results", "Some Blog")

	direction, confidence, _ := analyzeBreaking(a)
	assert.Equal(t, DirectionCall, direction)
	assert.InDelta(t, 0.7, confidence, 1e-9)
}

func TestAnalyzeBreakingTieIsNeutral(t *testing.T) {
	a := article("Shares surge then tumble in volatile session", "CNBC")

	direction, confidence, matched := analyzeBreaking(a)
	assert.Equal(t, DirectionNeutral, direction)
	assert.Equal(t, 0.0, confidence)
	assert.Nil(t, matched)
}

func TestAnalyzeBreakingConfidenceCapped(t *testing.T) {
	a := article("Beats estimates, surge on upgrade, record growth, bullish rally soar", "Bloomberg")

	_, confidence, _ := analyzeBreaking(a)
	assert.Equal(t, 1.0, confidence)
}
