package models

// -----------------------------------------------------------------------------
// Chart Series Structures
// -----------------------------------------------------------------------------

// MCandle is one OHLC bar from the upstream chart endpoint.
type MCandle struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
}

// MCandlePoint is the /history response shape: x is the formatted date,
// y holds [open, high, low, close].
type MCandlePoint struct {
	X string     `json:"x"`
	Y [4]float64 `json:"y"`
}

// MIndicatorPoint is the /rsi response shape.
type MIndicatorPoint struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}
