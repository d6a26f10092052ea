package interfaces

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for HTTP requests to the upstream API.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get performs a GET request to the specified URL with parameters.
	// Returns the response body as bytes or an error. No retries: a failed
	// call is surfaced to the caller as-is.
	Get(url string, params map[string]string) ([]byte, error)
}
