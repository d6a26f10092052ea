package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-tracker/src/helpers"
	"stock-tracker/src/logger"
	"stock-tracker/src/models"
	"stock-tracker/src/storage"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakeSource struct {
	quotes     map[string]*models.MQuoteSnapshot
	quoteErr   error
	candles    []models.MCandle
	chartErr   error
	lastSymbol string
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Quote(symbol string) (*models.MQuoteSnapshot, error) {
	f.lastSymbol = symbol
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	q, ok := f.quotes[symbol]
	if !ok {
		return nil, fmt.Errorf("no result in response for %s", symbol)
	}
	cp := *q
	return &cp, nil
}

func (f *fakeSource) Chart(symbol, period, interval string) ([]models.MCandle, error) {
	if f.chartErr != nil {
		return nil, f.chartErr
	}
	return f.candles, nil
}

// -----------------------------------------------------------------------------

func fullSnapshot(symbol string, price, prevClose float64) *models.MQuoteSnapshot {
	name := symbol + " Inc."
	currency := "USD"
	cap := int64(2_300_000_000)
	open, high, low := price-1, price+2, price-2
	state := "REGULAR"

	s := &models.MQuoteSnapshot{
		Symbol:        symbol,
		Price:         &price,
		PreviousClose: &prevClose,
		MarketCap:     &cap,
		Currency:      &currency,
		LongName:      &name,
		Open:          &open,
		DayHigh:       &high,
		DayLow:        &low,
		MarketState:   &state,
	}
	if prevClose != 0 {
		s.PercentChange = (price - prevClose) / prevClose * 100
	}
	return s
}

// -----------------------------------------------------------------------------

func newTestServer(t *testing.T, source *fakeSource) (*APIServer, *storage.SQLiteStore) {
	t.Helper()

	cfg := &models.MConfig{
		Name:     "stock-tracker-test",
		Host:     "127.0.0.1",
		Port:     8000,
		LogLevel: "ERROR",
		Storage: models.MStorageConfig{
			DBType: "sqlite",
			DBPath: filepath.Join(t.TempDir(), "test.db"),
		},
	}

	log := logger.NewLogger("test", "ERROR")
	store, err := storage.NewSQLiteStore(cfg, log)
	require.NoError(t, err)
	require.NoError(t, store.Initialize())
	t.Cleanup(func() { store.Close() })

	return NewAPIServer(cfg, log, store, source), store
}

func doRequest(s *APIServer, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// -----------------------------------------------------------------------------
// Error Rendering
// -----------------------------------------------------------------------------

func TestRespondError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		fields     gin.H
		wantStatus int
		wantBody   map[string]interface{}
	}{
		{
			name:       "validation without missing fields",
			err:        helpers.NewValidationError("No symbol provided", nil),
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]interface{}{"error": "No symbol provided"},
		},
		{
			name:       "validation with missing fields",
			err:        helpers.NewValidationError("Incomplete data from upstream provider", []string{"price", "market_cap"}),
			fields:     gin.H{"symbol": "AAPL"},
			wantStatus: http.StatusBadRequest,
			wantBody: map[string]interface{}{
				"error":   "Incomplete data from upstream provider",
				"symbol":  "AAPL",
				"missing": []interface{}{"price", "market_cap"},
			},
		},
		{
			name:       "not found",
			err:        helpers.NewNotFoundError("Stock not found"),
			wantStatus: http.StatusNotFound,
			wantBody:   map[string]interface{}{"error": "Stock not found"},
		},
		{
			name:       "upstream",
			err:        helpers.NewUpstreamError("Failed to fetch quote data", fmt.Errorf("connection refused")),
			fields:     gin.H{"symbol": "AAPL"},
			wantStatus: http.StatusBadGateway,
			wantBody:   map[string]interface{}{"error": "Failed to fetch quote data", "symbol": "AAPL"},
		},
		{
			name:       "store",
			err:        helpers.NewStoreError("Failed to save tracked stock", fmt.Errorf("disk full")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]interface{}{"error": "Failed to save tracked stock"},
		},
		{
			name:       "untyped",
			err:        fmt.Errorf("something broke"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]interface{}{"error": "something broke"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tt.err, tt.fields)

			assert.Equal(t, tt.wantStatus, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

// -----------------------------------------------------------------------------
// /ping
// -----------------------------------------------------------------------------

func TestPing(t *testing.T) {
	s, _ := newTestServer(t, &fakeSource{})

	w := doRequest(s, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "online", body["server"])
	assert.Equal(t, "connected", body["database"])
}

// -----------------------------------------------------------------------------
// /stock
// -----------------------------------------------------------------------------

func TestStock_DefaultsToAAPL(t *testing.T) {
	source := &fakeSource{quotes: map[string]*models.MQuoteSnapshot{
		"AAPL": fullSnapshot("AAPL", 110, 100),
	}}
	s, _ := newTestServer(t, source)

	w := doRequest(s, http.MethodGet, "/stock", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "AAPL", source.lastSymbol)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "AAPL", body["symbol"])
	assert.Equal(t, 110.0, body["price"])
	assert.Equal(t, 10.0, body["percent_change"])
}

func TestStock_UppercasesSymbol(t *testing.T) {
	source := &fakeSource{quotes: map[string]*models.MQuoteSnapshot{
		"MSFT": fullSnapshot("MSFT", 300, 300),
	}}
	s, _ := newTestServer(t, source)

	w := doRequest(s, http.MethodGet, "/stock?symbol=msft", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MSFT", source.lastSymbol)
}

func TestStock_UpstreamFailure(t *testing.T) {
	source := &fakeSource{quoteErr: fmt.Errorf("connection refused")}
	s, _ := newTestServer(t, source)

	w := doRequest(s, http.MethodGet, "/stock?symbol=AAPL", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Failed to fetch quote data", body["error"])
	assert.Equal(t, "AAPL", body["symbol"])
}

// -----------------------------------------------------------------------------
// /track
// -----------------------------------------------------------------------------

func TestTrack_CreatesRow(t *testing.T) {
	source := &fakeSource{quotes: map[string]*models.MQuoteSnapshot{
		"AAPL": fullSnapshot("AAPL", 110, 100),
	}}
	s, store := newTestServer(t, source)

	w := doRequest(s, http.MethodPost, "/track", `{"symbol":"aapl"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "AAPL tracked", body["message"])
	assert.NotZero(t, body["id"])
	assert.Equal(t, 110.0, body["price"])

	all, err := store.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "AAPL", all[0].Symbol)
}

func TestTrack_IsIdempotentPerSymbol(t *testing.T) {
	source := &fakeSource{quotes: map[string]*models.MQuoteSnapshot{
		"AAPL": fullSnapshot("AAPL", 110, 100),
	}}
	s, store := newTestServer(t, source)

	w1 := doRequest(s, http.MethodPost, "/track", `{"symbol":"AAPL"}`)
	require.Equal(t, http.StatusCreated, w1.Code)
	w2 := doRequest(s, http.MethodPost, "/track", `{"symbol":"AAPL"}`)
	require.Equal(t, http.StatusCreated, w2.Code)

	var b1, b2 map[string]interface{}
	require.NoError(t, json.Unmarshal(w1.Body.Bytes(), &b1))
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &b2))
	assert.Equal(t, b1["id"], b2["id"])

	all, err := store.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTrack_NoSymbol(t *testing.T) {
	s, _ := newTestServer(t, &fakeSource{})

	for _, body := range []string{`{}`, `{"symbol":"  "}`, ``} {
		w := doRequest(s, http.MethodPost, "/track", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %q", body)
	}
}

func TestTrack_RejectsIncompleteData_ListsEveryMissingField(t *testing.T) {
	snapshot := fullSnapshot("AAPL", 110, 100)
	snapshot.MarketCap = nil
	snapshot.LongName = nil
	snapshot.DayLow = nil

	source := &fakeSource{quotes: map[string]*models.MQuoteSnapshot{"AAPL": snapshot}}
	s, store := newTestServer(t, source)

	w := doRequest(s, http.MethodPost, "/track", `{"symbol":"AAPL"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error   string   `json:"error"`
		Symbol  string   `json:"symbol"`
		Missing []string `json:"missing"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "AAPL", body.Symbol)
	assert.ElementsMatch(t, []string{"market_cap", "longName", "dayLow"}, body.Missing)

	// No partial row was written.
	all, err := store.GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTrack_UpstreamFailure(t *testing.T) {
	source := &fakeSource{quoteErr: fmt.Errorf("connection refused")}
	s, _ := newTestServer(t, source)

	w := doRequest(s, http.MethodPost, "/track", `{"symbol":"AAPL"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// -----------------------------------------------------------------------------
// /tracked
// -----------------------------------------------------------------------------

func TestTracked_ListsFormattedRows(t *testing.T) {
	source := &fakeSource{quotes: map[string]*models.MQuoteSnapshot{
		"AAPL": fullSnapshot("AAPL", 110, 100),
	}}
	s, _ := newTestServer(t, source)

	doRequest(s, http.MethodPost, "/track", `{"symbol":"AAPL"}`)

	w := doRequest(s, http.MethodGet, "/tracked", "")
	require.Equal(t, http.StatusOK, w.Code)

	var views []models.MTrackedView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 1)

	assert.Equal(t, "AAPL", views[0].Symbol)
	require.NotNil(t, views[0].MarketCap)
	assert.Equal(t, "2.30B", *views[0].MarketCap)
	assert.Equal(t, 10.0, views[0].Change)
}

func TestTracked_EmptyIsArray(t *testing.T) {
	s, _ := newTestServer(t, &fakeSource{})

	w := doRequest(s, http.MethodGet, "/tracked", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

// -----------------------------------------------------------------------------
// DELETE /tracked/:id
// -----------------------------------------------------------------------------

func TestDeleteTracked(t *testing.T) {
	source := &fakeSource{quotes: map[string]*models.MQuoteSnapshot{
		"AAPL": fullSnapshot("AAPL", 110, 100),
	}}
	s, store := newTestServer(t, source)

	doRequest(s, http.MethodPost, "/track", `{"symbol":"AAPL"}`)
	all, err := store.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 1)

	t.Run("unknown id", func(t *testing.T) {
		w := doRequest(s, http.MethodDelete, fmt.Sprintf("/tracked/%d", all[0].ID+99), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		w := doRequest(s, http.MethodDelete, "/tracked/abc", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("existing id", func(t *testing.T) {
		w := doRequest(s, http.MethodDelete, fmt.Sprintf("/tracked/%d", all[0].ID), "")
		assert.Equal(t, http.StatusOK, w.Code)

		remaining, err := store.GetAll()
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})
}

// -----------------------------------------------------------------------------
// /refresh
// -----------------------------------------------------------------------------

func TestRefresh_SurvivesTotalUpstreamFailure(t *testing.T) {
	source := &fakeSource{quotes: map[string]*models.MQuoteSnapshot{
		"AAPL": fullSnapshot("AAPL", 110, 100),
		"MSFT": fullSnapshot("MSFT", 300, 290),
	}}
	s, store := newTestServer(t, source)

	doRequest(s, http.MethodPost, "/track", `{"symbol":"AAPL"}`)
	doRequest(s, http.MethodPost, "/track", `{"symbol":"MSFT"}`)

	// Every subsequent fetch fails.
	source.quoteErr = fmt.Errorf("connection refused")

	w := doRequest(s, http.MethodPost, "/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Updated 2 stocks successfully", body["message"])

	// No rows were removed, values untouched.
	all, err := store.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 110.0, *all[0].CurrentPrice)
	assert.Equal(t, 300.0, *all[1].CurrentPrice)
}

func TestRefresh_FieldLevelFallback(t *testing.T) {
	source := &fakeSource{quotes: map[string]*models.MQuoteSnapshot{
		"AAPL": fullSnapshot("AAPL", 110, 100),
	}}
	s, store := newTestServer(t, source)

	doRequest(s, http.MethodPost, "/track", `{"symbol":"AAPL"}`)

	// New snapshot has a price but no market cap or long name: those fields
	// keep their stored values on refresh.
	newPrice, newPrev := 120.0, 110.0
	source.quotes["AAPL"] = &models.MQuoteSnapshot{
		Symbol:        "AAPL",
		Price:         &newPrice,
		PreviousClose: &newPrev,
		PercentChange: 9.09,
	}

	w := doRequest(s, http.MethodPost, "/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)

	all, err := store.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 120.0, *all[0].CurrentPrice)
	require.NotNil(t, all[0].MarketCap)
	assert.Equal(t, int64(2_300_000_000), *all[0].MarketCap)
	require.NotNil(t, all[0].LongName)
	assert.Equal(t, "AAPL Inc.", *all[0].LongName)
	assert.Equal(t, 9.09, *all[0].PriceChangePct)
}

// -----------------------------------------------------------------------------
// /history and /rsi
// -----------------------------------------------------------------------------

func TestHistory_ReturnsCandles(t *testing.T) {
	source := &fakeSource{candles: []models.MCandle{
		{Timestamp: 1700000000, Open: 100.123, High: 101.987, Low: 99.001, Close: 100.555},
	}}
	s, _ := newTestServer(t, source)

	w := doRequest(s, http.MethodGet, "/history/AAPL?period=1mo&interval=1d", "")
	require.Equal(t, http.StatusOK, w.Code)

	var points []models.MCandlePoint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &points))
	require.Len(t, points, 1)

	assert.Equal(t, "2023-11-14", points[0].X)
	assert.Equal(t, [4]float64{100.12, 101.99, 99.0, 100.56}, points[0].Y)
}

func TestHistory_IntradayDateIncludesTime(t *testing.T) {
	source := &fakeSource{candles: []models.MCandle{
		{Timestamp: 1700000000, Open: 1, High: 1, Low: 1, Close: 1},
	}}
	s, _ := newTestServer(t, source)

	w := doRequest(s, http.MethodGet, "/history/AAPL?period=1d&interval=5m", "")
	require.Equal(t, http.StatusOK, w.Code)

	var points []models.MCandlePoint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &points))
	require.Len(t, points, 1)
	assert.Equal(t, "2023-11-14 22:13", points[0].X)
}

func TestHistory_ErrorYieldsEmptyArray(t *testing.T) {
	source := &fakeSource{chartErr: fmt.Errorf("no result")}
	s, _ := newTestServer(t, source)

	w := doRequest(s, http.MethodGet, "/history/NOPE", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestRSI_DropsWarmupAndAligns(t *testing.T) {
	// 20 strictly increasing closes: RSI is 100 everywhere it is defined.
	var candles []models.MCandle
	for i := 0; i < 20; i++ {
		candles = append(candles, models.MCandle{
			Timestamp: 1700000000 + int64(i)*86400,
			Close:     100 + float64(i),
		})
	}
	source := &fakeSource{candles: candles}
	s, _ := newTestServer(t, source)

	w := doRequest(s, http.MethodGet, "/rsi/AAPL?period=1mo&interval=1d", "")
	require.Equal(t, http.StatusOK, w.Code)

	var points []models.MIndicatorPoint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &points))
	require.Len(t, points, 20-14)

	for _, p := range points {
		assert.Equal(t, 100.0, p.Y)
	}
}

func TestRSI_ErrorYieldsEmptyArray(t *testing.T) {
	source := &fakeSource{chartErr: fmt.Errorf("no result")}
	s, _ := newTestServer(t, source)

	w := doRequest(s, http.MethodGet, "/rsi/NOPE", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}
