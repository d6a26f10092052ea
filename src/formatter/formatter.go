package formatter

import (
	"strconv"

	"github.com/shopspring/decimal"

	"stock-tracker/src/analysis"
	"stock-tracker/src/models"
)

// -----------------------------------------------------------------------------
// Snapshot Formatter
// -----------------------------------------------------------------------------

var (
	trillion = decimal.New(1, 12)
	billion  = decimal.New(1, 9)
	million  = decimal.New(1, 6)
)

// FormatMarketCap renders a raw market cap as a scaled string:
// >= 1e12 "x.xxT", >= 1e9 "x.xxB", >= 1e6 "x.xxM", otherwise the raw
// integer. A nil input stays nil.
func FormatMarketCap(value *int64) *string {
	if value == nil {
		return nil
	}

	v := decimal.NewFromInt(*value)
	var s string

	switch {
	case v.GreaterThanOrEqual(trillion):
		s = v.Div(trillion).StringFixed(2) + "T"
	case v.GreaterThanOrEqual(billion):
		s = v.Div(billion).StringFixed(2) + "B"
	case v.GreaterThanOrEqual(million):
		s = v.Div(million).StringFixed(2) + "M"
	default:
		s = strconv.FormatInt(*value, 10)
	}

	return &s
}

// -----------------------------------------------------------------------------

// AbsoluteChange derives the absolute price change from the stored percent
// by inverting it: prevClose = price / (1 + percent/100). Defaults to 0 when
// price or percent is absent.
func AbsoluteChange(price, percent *float64) float64 {
	if price == nil || percent == nil {
		return 0
	}

	denom := 1 + *percent/100
	if denom == 0 {
		return 0
	}

	prevClose := *price / denom
	return analysis.Round2(*price - prevClose)
}

// -----------------------------------------------------------------------------

// TrackedView reshapes one stored row into the list-tracked response shape.
func TrackedView(s models.MTrackedStock) models.MTrackedView {
	return models.MTrackedView{
		ID:        s.ID,
		Symbol:    s.Symbol,
		Price:     s.CurrentPrice,
		MarketCap: FormatMarketCap(s.MarketCap),
		Currency:  s.Currency,
		LongName:  s.LongName,
		Open:      s.OpenPrice,
		DayHigh:   s.DayHigh,
		DayLow:    s.DayLow,
		Percent:   s.PriceChangePct,
		Change:    AbsoluteChange(s.CurrentPrice, s.PriceChangePct),
	}
}
