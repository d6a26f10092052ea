package interfaces

import "stock-tracker/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger defines the interface for pushing data to connected clients.
// -----------------------------------------------------------------------------

type IDataExchanger interface {

	// -----------------------------------------------------------------------------

	// Broadcast pushes one price update to every connected subscriber.
	// Delivery is best-effort: slow consumers are dropped, never waited on.
	Broadcast(update *models.MPriceUpdate)

	// -----------------------------------------------------------------------------

	// Start the server
	Start() error

	// -----------------------------------------------------------------------------

	// Stop the server gracefully
	Stop() error
}
