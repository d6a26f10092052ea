package yahoo

import (
	"encoding/json"
	"fmt"
	"strings"

	"stock-tracker/src/analysis"
	"stock-tracker/src/interfaces"
	"stock-tracker/src/logger"
	"stock-tracker/src/models"
)

// -----------------------------------------------------------------------------

const (
	DefaultQuoteURL = "https://query1.finance.yahoo.com/v7/finance/quote"
	DefaultChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"
)

// Intervals Yahoo treats as intraday; they change the chart request
// (pre/post sessions included) and the date rendering downstream.
var intradayIntervals = map[string]bool{
	"1m": true, "2m": true, "5m": true, "15m": true,
	"30m": true, "60m": true, "90m": true, "1h": true,
}

// IsIntraday reports whether the chart interval is finer than one day.
func IsIntraday(interval string) bool {
	return intradayIntervals[interval]
}

// -----------------------------------------------------------------------------
// YahooQuoteSource
// -----------------------------------------------------------------------------

type YahooQuoteSource struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger

	// Endpoint URLs, overridable for tests.
	QuoteURL string
	ChartURL string
}

// -----------------------------------------------------------------------------

func NewYahooQuoteSource(cfg *models.MConfig, netMgr interfaces.INetworkManager) *YahooQuoteSource {
	return &YahooQuoteSource{
		Config:   cfg,
		Network:  netMgr,
		Logger:   logger.NewLogger("YahooQuoteSource", cfg.LogLevel),
		QuoteURL: DefaultQuoteURL,
		ChartURL: DefaultChartURL,
	}
}

// -----------------------------------------------------------------------------

func (s *YahooQuoteSource) Name() string {
	return "yahoo"
}

// -----------------------------------------------------------------------------
// Quote Endpoint (v7)
// -----------------------------------------------------------------------------

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string   `json:"symbol"`
			Currency                   *string  `json:"currency"`
			LongName                   *string  `json:"longName"`
			MarketState                *string  `json:"marketState"`
			MarketCap                  *int64   `json:"marketCap"`
			RegularMarketPrice         *float64 `json:"regularMarketPrice"`
			RegularMarketPreviousClose *float64 `json:"regularMarketPreviousClose"`
			RegularMarketOpen          *float64 `json:"regularMarketOpen"`
			RegularMarketDayHigh       *float64 `json:"regularMarketDayHigh"`
			RegularMarketDayLow        *float64 `json:"regularMarketDayLow"`
			PreMarketPrice             *float64 `json:"preMarketPrice"`
			PostMarketPrice            *float64 `json:"postMarketPrice"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

// -----------------------------------------------------------------------------

// Quote fetches the current snapshot for one symbol. Absent upstream fields
// stay nil; the percent change is computed here so every caller sees the
// same rounded value.
func (s *YahooQuoteSource) Quote(symbol string) (*models.MQuoteSnapshot, error) {
	params := map[string]string{
		"symbols": strings.ToUpper(symbol),
	}

	respBytes, err := s.Network.Get(s.QuoteURL, params)
	if err != nil {
		return nil, fmt.Errorf("network error for %s: %w", symbol, err)
	}

	var resp yahooQuoteResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	if resp.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s - %s",
			resp.QuoteResponse.Error.Code, resp.QuoteResponse.Error.Description)
	}

	if len(resp.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("no result in response for %s", symbol)
	}

	r := resp.QuoteResponse.Result[0]

	snapshot := &models.MQuoteSnapshot{
		Symbol:          strings.ToUpper(symbol),
		Price:           r.RegularMarketPrice,
		PreviousClose:   r.RegularMarketPreviousClose,
		MarketCap:       r.MarketCap,
		Currency:        r.Currency,
		LongName:        r.LongName,
		Open:            r.RegularMarketOpen,
		DayHigh:         r.RegularMarketDayHigh,
		DayLow:          r.RegularMarketDayLow,
		MarketState:     r.MarketState,
		PreMarketPrice:  r.PreMarketPrice,
		PostMarketPrice: r.PostMarketPrice,
	}

	if snapshot.Price != nil && snapshot.PreviousClose != nil {
		snapshot.PercentChange = analysis.Round2(
			analysis.ChangePercent(*snapshot.Price, *snapshot.PreviousClose))
	}

	return snapshot, nil
}

// -----------------------------------------------------------------------------
// Chart Endpoint (v8)
// -----------------------------------------------------------------------------

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					High  []*float64 `json:"high"`
					Low   []*float64 `json:"low"`
					Open  []*float64 `json:"open"`
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// -----------------------------------------------------------------------------

// Chart fetches the OHLC series for one symbol. Bars with any null component
// are skipped, matching how the upstream pads thin sessions.
func (s *YahooQuoteSource) Chart(symbol, period, interval string) ([]models.MCandle, error) {
	params := map[string]string{
		"range":          period,
		"interval":       interval,
		"includePrePost": fmt.Sprintf("%t", IsIntraday(interval)),
	}

	url := fmt.Sprintf("%s/%s", s.ChartURL, strings.ToUpper(symbol))

	respBytes, err := s.Network.Get(url, params)
	if err != nil {
		return nil, fmt.Errorf("network error for %s: %w", symbol, err)
	}

	return s.parseChartResponse(symbol, respBytes)
}

// -----------------------------------------------------------------------------

func (s *YahooQuoteSource) parseChartResponse(symbol string, data []byte) ([]models.MCandle, error) {
	var resp yahooChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s - %s",
			resp.Chart.Error.Code, resp.Chart.Error.Description)
	}

	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no result in response for %s", symbol)
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data in response for %s", symbol)
	}

	quote := result.Indicators.Quote[0]

	// Alignment check before indexing the parallel arrays.
	if len(result.Timestamp) != len(quote.Close) ||
		len(result.Timestamp) != len(quote.Open) ||
		len(result.Timestamp) != len(quote.High) ||
		len(result.Timestamp) != len(quote.Low) {
		return nil, fmt.Errorf("data alignment error for %s", symbol)
	}

	var candles []models.MCandle
	for i := range result.Timestamp {
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil || quote.Close[i] == nil {
			s.Logger.Debug("Skipping bar with null component for %s at index %d", symbol, i)
			continue
		}

		candles = append(candles, models.MCandle{
			Timestamp: result.Timestamp[i],
			Open:      *quote.Open[i],
			High:      *quote.High[i],
			Low:       *quote.Low[i],
			Close:     *quote.Close[i],
		})
	}

	if len(candles) == 0 {
		return nil, fmt.Errorf("no valid data points for %s", symbol)
	}

	return candles, nil
}
