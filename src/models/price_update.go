package models

// -----------------------------------------------------------------------------
// WebSocket Message Structures
// -----------------------------------------------------------------------------

// MWSEvent is the envelope pushed to every connected subscriber.
type MWSEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// MPriceUpdate is the per-symbol payload broadcast on every poll cycle.
type MPriceUpdate struct {
	Symbol          string   `json:"symbol"`
	Price           float64  `json:"price"`
	Change          float64  `json:"change"`
	Percent         float64  `json:"percent"`
	Open            *float64 `json:"open"`
	DayHigh         *float64 `json:"dayHigh"`
	DayLow          *float64 `json:"dayLow"`
	LongName        *string  `json:"longName"`
	MarketState     *string  `json:"marketState"`
	PreMarketPrice  *float64 `json:"preMarketPrice"`
	PostMarketPrice *float64 `json:"postMarketPrice"`
}
