package models

// MTrackedView is the formatted response shape for one tracked row:
// market cap rendered as a scaled string, absolute change derived from the
// stored percent.
type MTrackedView struct {
	ID        int64    `json:"id"`
	Symbol    string   `json:"symbol"`
	Price     *float64 `json:"price"`
	MarketCap *string  `json:"market_cap"`
	Currency  *string  `json:"currency"`
	LongName  *string  `json:"longName"`
	Open      *float64 `json:"open"`
	DayHigh   *float64 `json:"dayHigh"`
	DayLow    *float64 `json:"dayLow"`
	Percent   *float64 `json:"percent"`
	Change    float64  `json:"change"`
}
