package models

// MQuoteSnapshot is the set of quote fields returned by the upstream source
// for one symbol at one point in time. Pointer fields distinguish "absent"
// from zero, mirroring the upstream payload.
type MQuoteSnapshot struct {
	Symbol          string   `json:"symbol"`
	Price           *float64 `json:"price"`
	PreviousClose   *float64 `json:"-"`
	MarketCap       *int64   `json:"market_cap"`
	Currency        *string  `json:"currency"`
	LongName        *string  `json:"longName"`
	Open            *float64 `json:"open"`
	DayHigh         *float64 `json:"dayHigh"`
	DayLow          *float64 `json:"dayLow"`
	PercentChange   float64  `json:"percent_change"`
	MarketState     *string  `json:"marketState"`
	PreMarketPrice  *float64 `json:"preMarketPrice"`
	PostMarketPrice *float64 `json:"postMarketPrice"`
}

// -----------------------------------------------------------------------------

// MissingFields returns the JSON names of every required field absent from
// the snapshot. A tracked row can only be written when this is empty.
func (s *MQuoteSnapshot) MissingFields() []string {
	var missing []string

	if s.Price == nil {
		missing = append(missing, "price")
	}
	if s.MarketCap == nil {
		missing = append(missing, "market_cap")
	}
	if s.Currency == nil {
		missing = append(missing, "currency")
	}
	if s.LongName == nil {
		missing = append(missing, "longName")
	}
	if s.Open == nil {
		missing = append(missing, "open")
	}
	if s.DayHigh == nil {
		missing = append(missing, "dayHigh")
	}
	if s.DayLow == nil {
		missing = append(missing, "dayLow")
	}

	return missing
}

// -----------------------------------------------------------------------------

// ToTrackedStock builds a whole-row replacement for the given symbol.
func (s *MQuoteSnapshot) ToTrackedStock(symbol string) MTrackedStock {
	pct := s.PercentChange
	return MTrackedStock{
		Symbol:         symbol,
		LongName:       s.LongName,
		Currency:       s.Currency,
		CurrentPrice:   s.Price,
		PriceChangePct: &pct,
		MarketCap:      s.MarketCap,
		OpenPrice:      s.Open,
		DayHigh:        s.DayHigh,
		DayLow:         s.DayLow,
	}
}
