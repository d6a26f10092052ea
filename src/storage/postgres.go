package storage

import (
	"database/sql"
	"fmt"

	"stock-tracker/src/helpers"
	"stock-tracker/src/logger"
	"stock-tracker/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresStore(cfg *models.MConfig, log *logger.Logger) (*PostgresStore, error) {
	return &PostgresStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	query := `
		CREATE TABLE IF NOT EXISTS tracked_stocks (
			id BIGSERIAL PRIMARY KEY,
			symbol TEXT NOT NULL UNIQUE,
			long_name TEXT,
			currency TEXT,
			current_price DOUBLE PRECISION,
			price_change_pct DOUBLE PRECISION,
			market_cap BIGINT,
			open_price DOUBLE PRECISION,
			day_high DOUBLE PRECISION,
			day_low DOUBLE PRECISION
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create tracked_stocks: %w", err)
	}

	d.Logger.Info("PostgresStore initialized successfully")
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Ping() error {
	var one int
	if err := d.DB.QueryRow("SELECT 1").Scan(&one); err != nil {
		return helpers.NewStoreError("database unreachable", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) UpsertBySymbol(stock models.MTrackedStock) (models.MTrackedStock, error) {
	query := fmt.Sprintf(`
		INSERT INTO tracked_stocks
			(symbol, long_name, currency, current_price, price_change_pct, market_cap, open_price, day_high, day_low)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (symbol) DO UPDATE SET
			long_name = EXCLUDED.long_name,
			currency = EXCLUDED.currency,
			current_price = EXCLUDED.current_price,
			price_change_pct = EXCLUDED.price_change_pct,
			market_cap = EXCLUDED.market_cap,
			open_price = EXCLUDED.open_price,
			day_high = EXCLUDED.day_high,
			day_low = EXCLUDED.day_low
		RETURNING %s
	`, trackedColumns)

	row := d.DB.QueryRow(query, stock.Symbol, stock.LongName, stock.Currency,
		stock.CurrentPrice, stock.PriceChangePct, stock.MarketCap,
		stock.OpenPrice, stock.DayHigh, stock.DayLow)

	stored, err := scanTrackedStock(row)
	if err != nil {
		return models.MTrackedStock{}, helpers.NewStoreError("upsert failed", err)
	}
	return stored, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) GetAll() ([]models.MTrackedStock, error) {
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

func (d *PostgresStore) GetByID(id int64) (*models.MTrackedStock, error) {
	row := d.DB.QueryRow(
		fmt.Sprintf("SELECT %s FROM tracked_stocks WHERE id = $1", trackedColumns), id)

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

func (d *PostgresStore) DeleteByID(id int64) error {
	res, err := d.DB.Exec("DELETE FROM tracked_stocks WHERE id = $1", id)
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

func (d *PostgresStore) UpdateAll(stocks []models.MTrackedStock) error {
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
			long_name = $1, currency = $2, current_price = $3, price_change_pct = $4,
			market_cap = $5, open_price = $6, day_high = $7, day_low = $8
		WHERE id = $9
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

func (d *PostgresStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
