package models

// MTrackedStock represents one persisted row per tracked symbol.
// All quote fields are nullable; the symbol is the identity key for upserts.
type MTrackedStock struct {
	ID             int64    `json:"id"`
	Symbol         string   `json:"symbol"`
	LongName       *string  `json:"longName"`
	Currency       *string  `json:"currency"`
	CurrentPrice   *float64 `json:"price"`
	PriceChangePct *float64 `json:"percent_change"`
	MarketCap      *int64   `json:"market_cap"`
	OpenPrice      *float64 `json:"open"`
	DayHigh        *float64 `json:"dayHigh"`
	DayLow         *float64 `json:"dayLow"`
}
