package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"catalyst-alerts/interfaces"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/sirupsen/logrus"
)

// AlpacaMarketDataService implements the market data collaborator on top
// of Alpaca: the marketdata SDK for stock quotes and the v1beta1 options
// endpoints for chains.
type AlpacaMarketDataService struct {
	apiKey    string
	secretKey string
	baseURL   string
	md        *marketdata.Client
	logger    *logrus.Logger
	client    *http.Client
}

// NewAlpacaMarketDataService creates a new Alpaca market data service
func NewAlpacaMarketDataService(apiKey, secretKey, baseURL string) *AlpacaMarketDataService {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if baseURL == "" {
		baseURL = "https://data.alpaca.markets"
	}

	return &AlpacaMarketDataService{
		apiKey:    apiKey,
		secretKey: secretKey,
		baseURL:   baseURL,
		md: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: secretKey,
		}),
		logger: logger,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// GetQuote returns the latest quote for a symbol, with the daily change
// computed against the previous close.
func (s *AlpacaMarketDataService) GetQuote(ctx context.Context, symbol string) (*interfaces.Quote, error) {
	snapshot, err := s.md.GetSnapshot(symbol, marketdata.GetSnapshotRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	if snapshot == nil || snapshot.LatestTrade == nil {
		return nil, fmt.Errorf("no snapshot data for %s", symbol)
	}

	quote := &interfaces.Quote{
		Symbol:    symbol,
		Price:     snapshot.LatestTrade.Price,
		Timestamp: snapshot.LatestTrade.Timestamp,
	}
	if snapshot.LatestQuote != nil {
		quote.Bid = snapshot.LatestQuote.BidPrice
		quote.Ask = snapshot.LatestQuote.AskPrice
	}
	if snapshot.DailyBar != nil {
		quote.Volume = int64(snapshot.DailyBar.Volume)
	}
	if snapshot.PrevDailyBar != nil && snapshot.PrevDailyBar.Close > 0 {
		quote.Change = quote.Price - snapshot.PrevDailyBar.Close
		quote.ChangePct = quote.Change / snapshot.PrevDailyBar.Close * 100
	}

	return quote, nil
}

// alpacaOptionContract is contract metadata from the options contracts
// endpoint
type alpacaOptionContract struct {
	Symbol           string  `json:"symbol"`
	UnderlyingSymbol string  `json:"underlying_symbol"`
	ExpirationDate   string  `json:"expiration_date"`
	StrikePrice      float64 `json:"strike_price"`
	Type             string  `json:"type"` // "call" or "put"
	OpenInterest     int64   `json:"open_interest"`
}

// alpacaOptionContractsResponse is the contracts listing response
type alpacaOptionContractsResponse struct {
	OptionContracts []alpacaOptionContract `json:"option_contracts"`
	NextPageToken   string                 `json:"next_page_token"`
}

// alpacaOptionSnapshots is the options snapshots response, keyed by OCC
// symbol
type alpacaOptionSnapshots struct {
	Snapshots map[string]struct {
		LatestQuote struct {
			BidPrice float64 `json:"bp"`
			AskPrice float64 `json:"ap"`
		} `json:"latestQuote"`
		LatestTrade struct {
			Price float64 `json:"p"`
		} `json:"latestTrade"`
		DailyBar struct {
			Volume int64 `json:"v"`
		} `json:"dailyBar"`
	} `json:"snapshots"`
}

func (s *AlpacaMarketDataService) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}

	req.Header.Set("APCA-API-KEY-ID", s.apiKey)
	req.Header.Set("APCA-API-SECRET-KEY", s.secretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// GetOptionsChain fetches the options chain for one expiration. With an
// empty expiration the nearest available expiration is used and the full
// expiration list is populated.
func (s *AlpacaMarketDataService) GetOptionsChain(ctx context.Context, symbol string, expiration string) (*interfaces.OptionsChain, error) {
	contractsURL := fmt.Sprintf("%s/v1beta1/options/contracts?underlying_symbols=%s&limit=500", s.baseURL, symbol)
	if expiration != "" {
		contractsURL += "&expiration_date=" + expiration
	} else {
		contractsURL += "&expiration_date_gte=" + time.Now().Format("2006-01-02")
	}

	var contractsResp alpacaOptionContractsResponse
	if err := s.getJSON(ctx, contractsURL, &contractsResp); err != nil {
		return nil, fmt.Errorf("failed to fetch option contracts: %w", err)
	}
	if len(contractsResp.OptionContracts) == 0 {
		return nil, fmt.Errorf("no option contracts for %s", symbol)
	}

	// Distinct expirations, ascending
	seen := make(map[string]bool)
	var expirations []string
	for _, contract := range contractsResp.OptionContracts {
		if !seen[contract.ExpirationDate] {
			seen[contract.ExpirationDate] = true
			expirations = append(expirations, contract.ExpirationDate)
		}
	}
	sort.Strings(expirations)

	chainExpiration := expiration
	if chainExpiration == "" {
		chainExpiration = expirations[0]
	}

	snapshotsURL := fmt.Sprintf("%s/v1beta1/options/snapshots/%s?feed=indicative&limit=500", s.baseURL, symbol)
	var snapshots alpacaOptionSnapshots
	if err := s.getJSON(ctx, snapshotsURL, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to fetch option snapshots: %w", err)
	}

	chain := &interfaces.OptionsChain{
		UnderlyingSymbol: symbol,
		Expiration:       chainExpiration,
		Expirations:      expirations,
		Timestamp:        time.Now(),
	}

	for _, contract := range contractsResp.OptionContracts {
		if contract.ExpirationDate != chainExpiration {
			continue
		}

		row := interfaces.OptionQuote{
			Symbol:       contract.Symbol,
			Strike:       contract.StrikePrice,
			OpenInterest: contract.OpenInterest,
		}
		if snap, ok := snapshots.Snapshots[contract.Symbol]; ok {
			row.Bid = snap.LatestQuote.BidPrice
			row.Ask = snap.LatestQuote.AskPrice
			row.LastPrice = snap.LatestTrade.Price
			row.Volume = snap.DailyBar.Volume
		}

		if contract.Type == "call" {
			chain.Calls = append(chain.Calls, row)
		} else {
			chain.Puts = append(chain.Puts, row)
		}
	}

	// Calls ascending, puts descending: nearest OTM first once ITM rows
	// are filtered by the caller.
	sort.Slice(chain.Calls, func(i, j int) bool { return chain.Calls[i].Strike < chain.Calls[j].Strike })
	sort.Slice(chain.Puts, func(i, j int) bool { return chain.Puts[i].Strike > chain.Puts[j].Strike })

	s.logger.WithFields(logrus.Fields{
		"symbol":     symbol,
		"expiration": chainExpiration,
		"calls":      len(chain.Calls),
		"puts":       len(chain.Puts),
	}).Debug("Fetched options chain")
	return chain, nil
}
