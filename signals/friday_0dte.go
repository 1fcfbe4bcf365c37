package signals

import (
	"context"
	"fmt"
	"time"

	"catalyst-alerts/interfaces"

	"github.com/sirupsen/logrus"
)

// Friday0DTEDetector looks for favorable same-day-expiration setups on
// Friday mornings: pre-market momentum, open interest clustered on OTM
// strikes, and unusual volume.
type Friday0DTEDetector struct {
	marketData interfaces.MarketDataService
	symbol     string

	momentumThreshold float64 // pre-market move, as a fraction
	volumeRatio       float64
	minOpenInterest   int64

	logger *logrus.Logger
}

// NewFriday0DTEDetector creates a new Friday 0DTE setup detector
func NewFriday0DTEDetector(marketData interfaces.MarketDataService, symbol string) *Friday0DTEDetector {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &Friday0DTEDetector{
		marketData:        marketData,
		symbol:            symbol,
		momentumThreshold: 0.02,
		volumeRatio:       2.0,
		minOpenInterest:   100,
		logger:            logger,
	}
}

func (d *Friday0DTEDetector) Name() string { return "Friday 0DTE Setup" }

func (d *Friday0DTEDetector) Description() string {
	return "Detects favorable 0DTE option setups on Fridays based on " +
		"pre-market momentum, unusual volume, and open interest patterns."
}

func (d *Friday0DTEDetector) Check(ctx context.Context) *Signal {
	now := time.Now()
	if !IsFriday(now) {
		return nil
	}

	quote, err := d.marketData.GetQuote(ctx, d.symbol)
	if err != nil || quote.Price <= 0 {
		d.logger.WithError(err).Warn("Could not get underlying quote")
		return nil
	}

	chain, err := d.marketData.GetOptionsChain(ctx, d.symbol, "")
	if err != nil {
		d.logger.WithError(err).Warn("Could not get options chain")
		return nil
	}

	direction, confidence, factors := d.analyzeSetup(quote, chain, now)
	if direction == DirectionNeutral || confidence < 0.5 {
		d.logger.Debug("No favorable 0DTE setup detected")
		return nil
	}

	signal := &Signal{
		Name:       d.Name(),
		Direction:  direction,
		Strength:   StrengthForConfidence(confidence),
		Confidence: confidence,
		Timestamp:  now,
		Details: map[string]interface{}{
			"catalyst_type":      "friday_0dte",
			"current_price":      quote.Price,
			"premarket_move":     quote.ChangePct,
			"momentum_direction": momentumDirection(quote.ChangePct),
			"expiration":         chain.Expiration,
			"setup_factors":      factors,
		},
		RecommendedStrikes: d.bestStrikes(quote.Price, direction, chain),
	}

	d.logger.WithFields(logrus.Fields{
		"direction":  signal.Direction,
		"confidence": signal.Confidence,
	}).Info("Friday 0DTE signal detected")
	return signal
}

func momentumDirection(changePct float64) string {
	if changePct > 0 {
		return "up"
	}
	return "down"
}

// analyzeSetup scores the conditions. Momentum sets the direction; open
// interest, volume, and the morning entry window add smaller increments.
func (d *Friday0DTEDetector) analyzeSetup(quote *interfaces.Quote, chain *interfaces.OptionsChain, now time.Time) (Direction, float64, []string) {
	var factors []string
	confidence := 0.0

	momentumPct := d.momentumThreshold * 100
	if quote.ChangePct >= momentumPct || quote.ChangePct <= -momentumPct {
		factors = append(factors, fmt.Sprintf("Strong pre-market momentum: %+.1f%%", quote.ChangePct))
		confidence += 0.3
	}

	direction := DirectionNeutral
	var otm []interfaces.OptionQuote
	if quote.ChangePct >= momentumPct {
		direction = DirectionCall
		for _, c := range chain.Calls {
			if c.Strike > quote.Price {
				otm = append(otm, c)
			}
		}
	} else if quote.ChangePct <= -momentumPct {
		direction = DirectionPut
		for _, p := range chain.Puts {
			if p.Strike < quote.Price {
				otm = append(otm, p)
			}
		}
	}

	if len(otm) > 0 {
		highOI := 0
		var totalVolume int64
		for _, row := range otm {
			if row.OpenInterest >= d.minOpenInterest {
				highOI++
			}
			totalVolume += row.Volume
		}
		if highOI > 0 {
			factors = append(factors, fmt.Sprintf("High OI on %d OTM strikes", highOI))
			confidence += 0.2
		}

		avgVolume := float64(totalVolume) / float64(len(otm))
		if avgVolume > 0 {
			highVol := 0
			for _, row := range otm {
				if float64(row.Volume) > avgVolume*d.volumeRatio {
					highVol++
				}
			}
			if highVol > 0 {
				factors = append(factors, fmt.Sprintf("Unusual volume on %d strikes", highVol))
				confidence += 0.2
			}
		}
	}

	// Early morning is the best 0DTE entry window.
	minutes := now.Hour()*60 + now.Minute()
	if minutes >= 9*60+30 && minutes <= 11*60 {
		factors = append(factors, "Optimal entry window (morning)")
		confidence += 0.1
	}

	factors = append(factors, "Friday 0DTE expiration available")
	confidence += 0.2

	if confidence > 1.0 {
		confidence = 1.0
	}
	return direction, confidence, factors
}

// bestStrikes picks up to three nearest OTM contracts from the live chain,
// carrying real quote data so the price comparison engine can bucket them.
func (d *Friday0DTEDetector) bestStrikes(currentPrice float64, direction Direction, chain *interfaces.OptionsChain) []interfaces.StrikeRecommendation {
	var rows []interfaces.OptionQuote
	if direction == DirectionCall {
		for _, c := range chain.Calls {
			if c.Strike > currentPrice {
				rows = append(rows, c)
			}
		}
	} else {
		for _, p := range chain.Puts {
			if p.Strike < currentPrice {
				rows = append(rows, p)
			}
		}
	}

	if len(rows) > 3 {
		rows = rows[:3]
	}

	recommendations := make([]interfaces.StrikeRecommendation, 0, len(rows))
	for _, row := range rows {
		otmPct := (row.Strike - currentPrice) / currentPrice * 100
		if direction == DirectionPut {
			otmPct = (currentPrice - row.Strike) / currentPrice * 100
		}
		recommendations = append(recommendations, interfaces.StrikeRecommendation{
			Strike:       row.Strike,
			Type:         string(direction),
			OTMPct:       otmPct,
			LastPrice:    row.LastPrice,
			Bid:          row.Bid,
			Ask:          row.Ask,
			Volume:       row.Volume,
			OpenInterest: row.OpenInterest,
		})
	}
	return recommendations
}
