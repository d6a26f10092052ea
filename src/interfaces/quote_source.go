package interfaces

import "stock-tracker/src/models"

// -----------------------------------------------------------------------------
// IQuoteSource defines the contract for the upstream market-data provider.
// -----------------------------------------------------------------------------

type IQuoteSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// Quote fetches the current snapshot for one symbol. Fields absent from
	// the upstream payload stay nil; a failed or empty response is an error.
	Quote(symbol string) (*models.MQuoteSnapshot, error)

	// -----------------------------------------------------------------------------

	// Chart fetches the OHLC series for one symbol over the given period and
	// interval (upstream notation, e.g. "1y" / "1d").
	Chart(symbol, period, interval string) ([]models.MCandle, error)
}
