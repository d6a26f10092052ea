package storage

import (
	"database/sql"
	"fmt"

	"stock-tracker/src/helpers"
	"stock-tracker/src/logger"
	"stock-tracker/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteStore(cfg *models.MConfig, log *logger.Logger) (*SQLiteStore, error) {
	return &SQLiteStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) createTables() error {
	// Last-value cache: exactly one row per symbol, no history.
	query := `
		CREATE TABLE IF NOT EXISTS tracked_stocks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT NOT NULL UNIQUE,
			long_name TEXT,
			currency TEXT,
			current_price REAL,
			price_change_pct REAL,
			market_cap INTEGER,
			open_price REAL,
			day_high REAL,
			day_low REAL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create tracked_stocks: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Ping() error {
	var one int
	if err := d.DB.QueryRow("SELECT 1").Scan(&one); err != nil {
		return helpers.NewStoreError("database unreachable", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

const trackedColumns = `id, symbol, long_name, currency, current_price,
	price_change_pct, market_cap, open_price, day_high, day_low`

// -----------------------------------------------------------------------------

func (d *SQLiteStore) UpsertBySymbol(stock models.MTrackedStock) (models.MTrackedStock, error) {
	query := `
		INSERT INTO tracked_stocks
			(symbol, long_name, currency, current_price, price_change_pct, market_cap, open_price, day_high, day_low)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol) DO UPDATE SET
			long_name = excluded.long_name,
			currency = excluded.currency,
			current_price = excluded.current_price,
			price_change_pct = excluded.price_change_pct,
			market_cap = excluded.market_cap,
			open_price = excluded.open_price,
			day_high = excluded.day_high,
			day_low = excluded.day_low
	`
	_, err := d.DB.Exec(query, stock.Symbol, stock.LongName, stock.Currency,
		stock.CurrentPrice, stock.PriceChangePct, stock.MarketCap,
		stock.OpenPrice, stock.DayHigh, stock.DayLow)
	if err != nil {
		return models.MTrackedStock{}, helpers.NewStoreError("upsert failed", err)
	}

	row := d.DB.QueryRow(
		fmt.Sprintf("SELECT %s FROM tracked_stocks WHERE symbol = ?", trackedColumns),
		stock.Symbol)

	stored, err := scanTrackedStock(row)
	if err != nil {
		return models.MTrackedStock{}, helpers.NewStoreError("read-back failed", err)
	}
	return stored, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) GetAll() ([]models.MTrackedStock, error) {
	rows, err := d.DB.Query(
		fmt.Sprintf("SELECT %s FROM tracked_stocks ORDER BY id", trackedColumns))
	if err != nil {
		return nil, helpers.NewStoreError("query failed", err)
	}
	defer rows.Close()

	var stocks []models.MTrackedStock
	for rows.Next() {
		stock, err := scanTrackedStock(rows)
		if err != nil {
			return nil, helpers.NewStoreError("scan failed", err)
		}
		stocks = append(stocks, stock)
	}

	if err := rows.Err(); err != nil {
		return nil, helpers.NewStoreError("iteration failed", err)
	}
	return stocks, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) GetByID(id int64) (*models.MTrackedStock, error) {
	row := d.DB.QueryRow(
		fmt.Sprintf("SELECT %s FROM tracked_stocks WHERE id = ?", trackedColumns), id)

	stock, err := scanTrackedStock(row)
	if err == sql.ErrNoRows {
		return nil, helpers.NewNotFoundError("stock %d not found", id)
	}
	if err != nil {
		return nil, helpers.NewStoreError("query failed", err)
	}
	return &stock, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) DeleteByID(id int64) error {
	res, err := d.DB.Exec("DELETE FROM tracked_stocks WHERE id = ?", id)
	if err != nil {
		return helpers.NewStoreError("delete failed", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return helpers.NewStoreError("delete failed", err)
	}
	if affected == 0 {
		return helpers.NewNotFoundError("stock %d not found", id)
	}
	return nil
}

// -----------------------------------------------------------------------------

// UpdateAll overwrites the given rows by id inside one transaction, so a
// bulk refresh commits all-or-nothing.
func (d *SQLiteStore) UpdateAll(stocks []models.MTrackedStock) error {
	if len(stocks) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return helpers.NewStoreError("begin failed", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		UPDATE tracked_stocks SET
			long_name = ?, currency = ?, current_price = ?, price_change_pct = ?,
			market_cap = ?, open_price = ?, day_high = ?, day_low = ?
		WHERE id = ?
	`)
	if err != nil {
		return helpers.NewStoreError("prepare failed", err)
	}
	defer stmt.Close()

	for _, s := range stocks {
		_, err := stmt.Exec(s.LongName, s.Currency, s.CurrentPrice, s.PriceChangePct,
			s.MarketCap, s.OpenPrice, s.DayHigh, s.DayLow, s.ID)
		if err != nil {
			return helpers.NewStoreError("update failed", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return helpers.NewStoreError("commit failed", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
