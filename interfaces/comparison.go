package interfaces

// PriceComparisonResult is the transient outcome of comparing a live option
// price against its historical same-bucket average. It is never persisted.
type PriceComparisonResult struct {
	IsElevated        bool     `json:"is_elevated"`
	CurrentPrice      float64  `json:"current_price"`
	AvgPrice          *float64 `json:"avg_price"`
	ElevationPct      *float64 `json:"elevation_pct"`
	ConfidenceBoost   float64  `json:"confidence_boost"`
	HasHistoricalData bool     `json:"has_historical_data"`

	// Bucket key the comparison was answered from
	OptionType      string `json:"option_type"`
	OrdinalPosition int    `json:"ordinal_position"`
	DTE             int    `json:"dte"`
	DayOfWeek       int    `json:"day_of_week"`
	TimeSlot        string `json:"time_slot"`
}

// StrikeRecommendation is a candidate strike attached to a signal. Lists of
// recommendations are ordered nearest-to-farthest out of the money; the
// price comparison engine keys buckets off that ordering.
type StrikeRecommendation struct {
	Strike          float64                `json:"strike"`
	Type            string                 `json:"type"` // "CALL" or "PUT"
	OTMPct          float64                `json:"otm_pct"`
	LastPrice       float64                `json:"last_price"`
	Bid             float64                `json:"bid"`
	Ask             float64                `json:"ask"`
	Volume          int64                  `json:"volume"`
	OpenInterest    int64                  `json:"open_interest"`
	Risk            string                 `json:"risk,omitempty"`
	PriceComparison *PriceComparisonResult `json:"price_comparison,omitempty"`
}
