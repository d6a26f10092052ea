package interfaces

import "stock-tracker/src/models"

// -----------------------------------------------------------------------------
// IStockStore defines the contract for the tracked-stock persistence layer.
// -----------------------------------------------------------------------------

type IStockStore interface {

	// -----------------------------------------------------------------------------

	// Initialize opens the connection and creates the schema.
	Initialize() error

	// -----------------------------------------------------------------------------

	// Ping verifies the store is reachable (health checks).
	Ping() error

	// -----------------------------------------------------------------------------

	// UpsertBySymbol creates or wholly overwrites the row for stock.Symbol
	// and returns the stored row including its identifier.
	UpsertBySymbol(stock models.MTrackedStock) (models.MTrackedStock, error)

	// -----------------------------------------------------------------------------

	// GetAll returns every tracked row ordered by id.
	GetAll() ([]models.MTrackedStock, error)

	// -----------------------------------------------------------------------------

	// GetByID returns one row, or a helpers.NotFoundError.
	GetByID(id int64) (*models.MTrackedStock, error)

	// -----------------------------------------------------------------------------

	// DeleteByID removes one row, or returns a helpers.NotFoundError.
	DeleteByID(id int64) error

	// -----------------------------------------------------------------------------

	// UpdateAll overwrites the given rows in a single transaction. Rows are
	// matched by id; used by the bulk-refresh path.
	UpdateAll(stocks []models.MTrackedStock) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
