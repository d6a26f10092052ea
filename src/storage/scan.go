package storage

import (
	"database/sql"

	"stock-tracker/src/models"
)

// -----------------------------------------------------------------------------
// Row Scanning Helpers (shared by the SQLite and Postgres stores)
// -----------------------------------------------------------------------------

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanTrackedStock maps one row into the model, converting SQL NULLs into
// nil pointers.
func scanTrackedStock(row rowScanner) (models.MTrackedStock, error) {
	var (
		stock     models.MTrackedStock
		longName  sql.NullString
		currency  sql.NullString
		price     sql.NullFloat64
		pct       sql.NullFloat64
		marketCap sql.NullInt64
		open      sql.NullFloat64
		high      sql.NullFloat64
		low       sql.NullFloat64
	)

	err := row.Scan(&stock.ID, &stock.Symbol, &longName, &currency,
		&price, &pct, &marketCap, &open, &high, &low)
	if err != nil {
		return stock, err
	}

	stock.LongName = nullStr(longName)
	stock.Currency = nullStr(currency)
	stock.CurrentPrice = nullFloat(price)
	stock.PriceChangePct = nullFloat(pct)
	stock.MarketCap = nullInt(marketCap)
	stock.OpenPrice = nullFloat(open)
	stock.DayHigh = nullFloat(high)
	stock.DayLow = nullFloat(low)
	return stock, nil
}

// -----------------------------------------------------------------------------

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	i := v.Int64
	return &i
}
