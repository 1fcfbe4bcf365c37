package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"catalyst-alerts/interfaces"
	"catalyst-alerts/signals"

	"github.com/sirupsen/logrus"
)

// Embed colors by signal direction.
const (
	colorGreen = 0x03fc07
	colorRed   = 0xfc0303
	colorGray  = 0x808080
	colorBlue  = 0x1e90ff
)

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []embedField `json:"fields,omitempty"`
	Footer      *embedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type webhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []embed `json:"embeds,omitempty"`
}

// DiscordNotifier delivers signal alerts to a Discord channel webhook.
// With no webhook URL configured every send becomes a logged no-op so the
// rest of the system runs normally.
type DiscordNotifier struct {
	webhookURL string
	symbol     string
	client     *http.Client
	logger     *logrus.Logger
}

// NewDiscordNotifier creates a new Discord webhook notifier
func NewDiscordNotifier(webhookURL, symbol string) *DiscordNotifier {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if webhookURL == "" {
		logger.Warn("Discord webhook URL not configured, notifications disabled")
	}

	return &DiscordNotifier{
		webhookURL: webhookURL,
		symbol:     symbol,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

func (n *DiscordNotifier) execute(ctx context.Context, payload webhookPayload) error {
	if n.webhookURL == "" {
		return fmt.Errorf("webhook URL not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// SendSignal posts a signal alert embed.
func (n *DiscordNotifier) SendSignal(ctx context.Context, signal *signals.Signal) error {
	color, emoji, directionText := directionStyle(signal.Direction)

	e := embed{
		Title:       fmt.Sprintf("%s %s OPTIONS ALERT %s", emoji, n.symbol, emoji),
		Description: fmt.Sprintf("**Signal:** %s\n**Direction:** %s", signal.Name, directionText),
		Color:       color,
		Timestamp:   signal.Timestamp.UTC().Format(time.RFC3339),
		Footer:      &embedFooter{Text: fmt.Sprintf("%s Options Alerts | Not Financial Advice", n.symbol)},
	}

	if price, ok := signal.Details["current_price"].(float64); ok {
		e.Fields = append(e.Fields, embedField{
			Name:   "📊 Stock Data",
			Value:  fmt.Sprintf("**Price:** $%.2f", price),
			Inline: true,
		})
	}

	e.Fields = append(e.Fields, embedField{
		Name:   "💪 Strength",
		Value:  fmt.Sprintf("%s %s", strengthEmoji(signal.Strength), signal.Strength),
		Inline: true,
	})

	e.Fields = append(e.Fields, embedField{
		Name:  "📊 Confidence",
		Value: formatConfidence(signal),
	})

	e.Fields = append(e.Fields, embedField{
		Name:  "⚡ Catalyst",
		Value: formatCatalyst(signal.Details),
	})

	if len(signal.RecommendedStrikes) > 0 {
		e.Fields = append(e.Fields, embedField{
			Name:  "🎯 Recommended Strikes",
			Value: formatStrikes(signal.RecommendedStrikes),
		})
	}

	e.Fields = append(e.Fields, embedField{
		Name:  "⚠️ Risk Warning",
		Value: "0-2 DTE options are extremely risky. Only trade with money you can afford to lose.",
	})

	if err := n.execute(ctx, webhookPayload{Embeds: []embed{e}}); err != nil {
		return err
	}
	n.logger.WithField("signal", signal.Name).Info("Discord notification sent")
	return nil
}

// SendDailySummary posts the end-of-day recap.
func (n *DiscordNotifier) SendDailySummary(ctx context.Context, signalsToday []*signals.Signal, priceChangePct float64) error {
	e := embed{
		Title:       fmt.Sprintf("📋 Daily Summary - %s Options", n.symbol),
		Description: fmt.Sprintf("**Date:** %s", time.Now().Format("2006-01-02")),
		Color:       colorBlue,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Footer:      &embedFooter{Text: fmt.Sprintf("%s Options Alerts", n.symbol)},
	}

	arrow := "➡️"
	if priceChangePct > 0 {
		arrow = "📈"
	} else if priceChangePct < 0 {
		arrow = "📉"
	}
	e.Fields = append(e.Fields, embedField{
		Name:   fmt.Sprintf("📊 %s Performance", n.symbol),
		Value:  fmt.Sprintf("%s %+.2f%%", arrow, priceChangePct),
		Inline: true,
	})

	e.Fields = append(e.Fields, embedField{
		Name:   "🔔 Signals Today",
		Value:  fmt.Sprintf("%d", len(signalsToday)),
		Inline: true,
	})

	if len(signalsToday) > 0 {
		var lines []string
		for i, s := range signalsToday {
			if i == 5 {
				break
			}
			lines = append(lines, fmt.Sprintf("• %s (%s) @ %s", s.Name, s.Direction, s.Timestamp.Format("15:04")))
		}
		e.Fields = append(e.Fields, embedField{
			Name:  "📝 Signal Details",
			Value: strings.Join(lines, "\n"),
		})
	}

	return n.execute(ctx, webhookPayload{Embeds: []embed{e}})
}

// SendTestMessage verifies the webhook configuration.
func (n *DiscordNotifier) SendTestMessage(ctx context.Context) error {
	return n.execute(ctx, webhookPayload{
		Content: fmt.Sprintf("🧪 **%s Options Alert System Test**\n\nWebhook is configured correctly!", n.symbol),
	})
}

func directionStyle(direction signals.Direction) (int, string, string) {
	switch direction {
	case signals.DirectionCall:
		return colorGreen, "📈", "LONG CALL"
	case signals.DirectionPut:
		return colorRed, "📉", "LONG PUT"
	default:
		return colorGray, "⚪", "NEUTRAL"
	}
}

func strengthEmoji(strength signals.Strength) string {
	switch strength {
	case signals.StrengthStrong:
		return "🔥"
	case signals.StrengthModerate:
		return "⚡"
	default:
		return "💡"
	}
}

func formatConfidence(signal *signals.Signal) string {
	if boost, ok := signal.Details["price_comparison_boost"].(float64); ok && boost > 0 {
		base := signal.Confidence - boost
		return fmt.Sprintf("+ **%.0f%%** Signal\n+ **%.0f%%** Elevated option pricing\n= **%.0f%%** Total",
			base*100, boost*100, signal.Confidence*100)
	}
	return fmt.Sprintf("**Total:** %.0f%%", signal.Confidence*100)
}

func formatCatalyst(details map[string]interface{}) string {
	catalystType, _ := details["catalyst_type"].(string)

	switch catalystType {
	case "ad_sector_news":
		return fmt.Sprintf("**Type:** Ad Sector News\n**Headline:** %s\n**Source:** %v\n**Sentiment:** %s",
			truncate(stringDetail(details, "headline"), 100),
			details["source"],
			strings.ToUpper(stringDetail(details, "sentiment")))
	case "company_news":
		return fmt.Sprintf("**Type:** Company News\n**Headline:** %s\n**Source:** %v",
			truncate(stringDetail(details, "headline"), 100), details["source"])
	case "live_news":
		return fmt.Sprintf("**Type:** Breaking News\n**Headline:** %s\n**Source:** %v",
			truncate(stringDetail(details, "headline"), 100), details["source"])
	case "friday_0dte":
		var factorLines []string
		if factors, ok := details["setup_factors"].([]string); ok {
			for i, f := range factors {
				if i == 3 {
					break
				}
				factorLines = append(factorLines, "• "+f)
			}
		}
		premarket, _ := details["premarket_move"].(float64)
		return fmt.Sprintf("**Type:** Friday 0DTE Setup\n**Pre-market:** %+.1f%%\n**Factors:**\n%s",
			premarket, strings.Join(factorLines, "\n"))
	default:
		return fmt.Sprintf("**Type:** %s", catalystType)
	}
}

func formatStrikes(strikes []interfaces.StrikeRecommendation) string {
	var lines []string
	for i, strike := range strikes {
		if i == 3 {
			break
		}

		line := fmt.Sprintf("• **$%.0f%s** (%.1f%% OTM)", strike.Strike, strike.Type[:1], strike.OTMPct)
		if strike.LastPrice > 0 {
			line += fmt.Sprintf(" @ $%.2f", strike.LastPrice)
		} else if strike.Bid > 0 || strike.Ask > 0 {
			line += fmt.Sprintf(" Bid/Ask: $%.2f/$%.2f", strike.Bid, strike.Ask)
		}

		if cmp := strike.PriceComparison; cmp != nil {
			if cmp.IsElevated && cmp.ElevationPct != nil {
				line += fmt.Sprintf(" **[+%.0f%% vs avg]**", *cmp.ElevationPct*100)
			} else if !cmp.HasHistoricalData {
				line += " *(no history)*"
			}
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return "No specific strikes recommended"
	}
	return strings.Join(lines, "\n")
}

func stringDetail(details map[string]interface{}, key string) string {
	if v, ok := details[key].(string); ok {
		return v
	}
	return "N/A"
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
