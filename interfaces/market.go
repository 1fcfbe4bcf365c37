package interfaces

import (
	"context"
	"time"
)

// Quote represents a real-time stock quote
type Quote struct {
	Symbol    string
	Price     float64
	Bid       float64
	Ask       float64
	Volume    int64
	Change    float64
	ChangePct float64
	Timestamp time.Time
}

// OptionQuote represents one row of an options chain
type OptionQuote struct {
	Symbol       string // OCC option symbol (e.g., "APP241213C00340000")
	Strike       float64
	Bid          float64
	Ask          float64
	LastPrice    float64
	Volume       int64
	OpenInterest int64
}

// OptionsChain represents the options chain for one underlying at one
// expiration. Calls are sorted by ascending strike, puts by descending
// strike, so the nearest-to-the-money OTM contract of either type comes
// first once in-the-money rows are filtered out.
type OptionsChain struct {
	UnderlyingSymbol string
	UnderlyingPrice  float64
	Expiration       string   // YYYY-MM-DD
	Expirations      []string // all available expirations, ascending
	Calls            []OptionQuote
	Puts             []OptionQuote
	Timestamp        time.Time
}

// MarketDataService defines the market data collaborator boundary
type MarketDataService interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
	GetOptionsChain(ctx context.Context, symbol string, expiration string) (*OptionsChain, error)
}

// EarningsCalendarService defines the earnings calendar collaborator
// boundary. FetchEarningsDates may return an empty slice; that is not an
// error.
type EarningsCalendarService interface {
	FetchEarningsDates(ctx context.Context, symbol string) ([]time.Time, error)
}
