package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stock-tracker/src/analysis"
	"stock-tracker/src/formatter"
	"stock-tracker/src/helpers"
	"stock-tracker/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

const defaultSymbol = "AAPL"

// rsiPeriod is the lookback of the served indicator.
const rsiPeriod = 14

// Intervals rendered with a date-only x axis; finer intervals include the
// time of day.
var dailyIntervals = map[string]bool{
	"1d": true, "5d": true, "1wk": true, "1mo": true, "3mo": true,
}

// -----------------------------------------------------------------------------
// Error Rendering
// -----------------------------------------------------------------------------

// respondError renders one typed error as the endpoint's JSON body. The
// error taxonomy decides the status: validation 400, not found 404,
// upstream 502, anything else (store failures included) 500. Extra fields
// are merged into the body.
func respondError(c *gin.Context, err error, fields gin.H) {
	body := gin.H{}
	for k, v := range fields {
		body[k] = v
	}

	var validation *helpers.ValidationError
	var notFound *helpers.NotFoundError
	var upstream *helpers.UpstreamError
	var store *helpers.StoreError

	switch {
	case errors.As(err, &validation):
		body["error"] = validation.Message
		if len(validation.Missing) > 0 {
			body["missing"] = validation.Missing
		}
		c.JSON(http.StatusBadRequest, body)

	case errors.As(err, &notFound):
		body["error"] = notFound.Message
		c.JSON(http.StatusNotFound, body)

	case errors.As(err, &upstream):
		body["error"] = upstream.Message
		c.JSON(http.StatusBadGateway, body)

	case errors.As(err, &store):
		body["error"] = store.Message
		c.JSON(http.StatusInternalServerError, body)

	default:
		body["error"] = err.Error()
		c.JSON(http.StatusInternalServerError, body)
	}
}

// -----------------------------------------------------------------------------

func (s *APIServer) getPing(c *gin.Context) {
	health := gin.H{
		"server":   "online",
		"database": "connected",
	}
	status := http.StatusOK

	if err := s.Store.Ping(); err != nil {
		health["database"] = "error: " + err.Error()
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, health)
}

// -----------------------------------------------------------------------------

// getStock serves an ad-hoc quote lookup. Nothing is persisted; partial
// upstream data is passed through with nulls, but a failed fetch surfaces
// as an upstream error instead of an empty payload.
func (s *APIServer) getStock(c *gin.Context) {
	symbol := strings.ToUpper(c.DefaultQuery("symbol", defaultSymbol))

	snapshot, err := s.Source.Quote(symbol)
	if err != nil {
		s.Logger.Warning("Quote lookup failed for %s: %v", symbol, err)
		respondError(c, helpers.NewUpstreamError("Failed to fetch quote data", err),
			gin.H{"symbol": symbol})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// -----------------------------------------------------------------------------

type trackRequest struct {
	Symbol string `json:"symbol"`
}

type trackResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
	*models.MQuoteSnapshot
}

// -----------------------------------------------------------------------------

func (s *APIServer) postTrack(c *gin.Context) {
	var req trackRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Symbol) == "" {
		respondError(c, helpers.NewValidationError("No symbol provided", nil), nil)
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))

	snapshot, err := s.Source.Quote(symbol)
	if err != nil {
		// Upstream failure on the write path is a validation problem: the
		// symbol cannot be tracked right now, and no partial row is written.
		s.Logger.Warning("Track fetch failed for %s: %v", symbol, err)
		respondError(c, helpers.NewValidationError("Failed to fetch data from upstream provider", nil),
			gin.H{"symbol": symbol})
		return
	}

	if missing := snapshot.MissingFields(); len(missing) > 0 {
		respondError(c, helpers.NewValidationError("Incomplete data from upstream provider", missing),
			gin.H{"symbol": symbol})
		return
	}

	stored, err := s.Store.UpsertBySymbol(snapshot.ToTrackedStock(symbol))
	if err != nil {
		s.Logger.Error("Upsert failed for %s: %v", symbol, err)
		respondError(c, helpers.NewStoreError("Failed to save tracked stock", err), nil)
		return
	}

	c.JSON(http.StatusCreated, trackResponse{
		Message:        symbol + " tracked",
		ID:             stored.ID,
		MQuoteSnapshot: snapshot,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getTracked(c *gin.Context) {
	stocks, err := s.Store.GetAll()
	if err != nil {
		s.Logger.Error("List tracked failed: %v", err)
		respondError(c, helpers.NewStoreError("Failed to load tracked stocks", err), nil)
		return
	}

	views := make([]models.MTrackedView, 0, len(stocks))
	for _, stock := range stocks {
		views = append(views, formatter.TrackedView(stock))
	}

	c.JSON(http.StatusOK, views)
}

// -----------------------------------------------------------------------------

func (s *APIServer) deleteTracked(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, helpers.NewNotFoundError("Stock not found"), nil)
		return
	}

	if err := s.Store.DeleteByID(id); err != nil {
		var notFound *helpers.NotFoundError
		if errors.As(err, &notFound) {
			// The stored message names the id; the API body stays generic.
			respondError(c, helpers.NewNotFoundError("Stock not found"), nil)
			return
		}
		s.Logger.Error("Delete failed for id %d: %v", id, err)
		respondError(c, helpers.NewStoreError("There was an error deleting that stock", err), nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Stock was deleted successfully"})
}

// -----------------------------------------------------------------------------

// postRefresh re-fetches every tracked symbol and overwrites stored fields,
// falling back to the stored value for any field the new snapshot lacks.
// Per-symbol fetch failures are skipped; the whole pass commits in a single
// transaction.
func (s *APIServer) postRefresh(c *gin.Context) {
	stocks, err := s.Store.GetAll()
	if err != nil {
		s.Logger.Error("Refresh load failed: %v", err)
		respondError(c, helpers.NewStoreError("Failed to load tracked stocks", err), nil)
		return
	}

	updated := make([]models.MTrackedStock, 0, len(stocks))
	for _, stock := range stocks {
		snapshot, err := s.Source.Quote(stock.Symbol)
		if err != nil {
			s.Logger.Warning("Failed to update %s: %v", stock.Symbol, err)
			continue
		}
		updated = append(updated, mergeSnapshot(stock, snapshot))
	}

	if err := s.Store.UpdateAll(updated); err != nil {
		s.Logger.Error("Refresh commit failed: %v", err)
		respondError(c, helpers.NewStoreError("Failed to save refreshed stocks", err), nil)
		return
	}

	// The count reports the tracked rows at the start of the pass, not the
	// number of successful fetches; skipped symbols still count.
	c.JSON(http.StatusOK, gin.H{
		"message": "Updated " + strconv.Itoa(len(stocks)) + " stocks successfully",
	})
}

// -----------------------------------------------------------------------------

// mergeSnapshot applies the field-level merge of the bulk-refresh path:
// each field is overwritten with the fetched value, keeping the stored one
// only where the snapshot has none.
func mergeSnapshot(stock models.MTrackedStock, snapshot *models.MQuoteSnapshot) models.MTrackedStock {
	if snapshot.Price != nil {
		stock.CurrentPrice = snapshot.Price
	}
	if snapshot.MarketCap != nil {
		stock.MarketCap = snapshot.MarketCap
	}
	if snapshot.Currency != nil {
		stock.Currency = snapshot.Currency
	}
	if snapshot.LongName != nil {
		stock.LongName = snapshot.LongName
	}
	if snapshot.Open != nil {
		stock.OpenPrice = snapshot.Open
	}
	if snapshot.DayHigh != nil {
		stock.DayHigh = snapshot.DayHigh
	}
	if snapshot.DayLow != nil {
		stock.DayLow = snapshot.DayLow
	}

	pct := snapshot.PercentChange
	stock.PriceChangePct = &pct
	return stock
}

// -----------------------------------------------------------------------------

func (s *APIServer) getHistory(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	period := c.DefaultQuery("period", "1y")
	interval := c.DefaultQuery("interval", "1d")

	candles, err := s.Source.Chart(symbol, period, interval)
	if err != nil {
		s.Logger.Warning("Error fetching history for %s: %v", symbol, err)
		c.JSON(http.StatusOK, []models.MCandlePoint{})
		return
	}

	points := make([]models.MCandlePoint, 0, len(candles))
	for _, candle := range candles {
		points = append(points, models.MCandlePoint{
			X: formatSeriesDate(candle.Timestamp, interval),
			Y: [4]float64{
				analysis.Round2(candle.Open),
				analysis.Round2(candle.High),
				analysis.Round2(candle.Low),
				analysis.Round2(candle.Close),
			},
		})
	}

	c.JSON(http.StatusOK, points)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getRSI(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	period := c.DefaultQuery("period", "1y")
	interval := c.DefaultQuery("interval", "1d")

	candles, err := s.Source.Chart(symbol, period, interval)
	if err != nil {
		s.Logger.Warning("Error calculating RSI for %s: %v", symbol, err)
		c.JSON(http.StatusOK, []models.MIndicatorPoint{})
		return
	}

	closes := make([]float64, len(candles))
	for i, candle := range candles {
		closes[i] = candle.Close
	}

	// Warm-up values have no defined RSI and are dropped, so the series
	// aligns with candles[rsiPeriod:].
	values := analysis.RSI(closes, rsiPeriod)

	points := make([]models.MIndicatorPoint, 0, len(values))
	for i, v := range values {
		points = append(points, models.MIndicatorPoint{
			X: formatSeriesDate(candles[rsiPeriod+i].Timestamp, interval),
			Y: analysis.Round2(v),
		})
	}

	c.JSON(http.StatusOK, points)
}

// -----------------------------------------------------------------------------

func formatSeriesDate(ts int64, interval string) string {
	t := time.Unix(ts, 0).UTC()
	if dailyIntervals[interval] {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04")
}
