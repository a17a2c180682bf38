package ports

import "net/http"

// HTTPClient is the subset of *http.Client the gateway adapters need.
// Tests substitute an httptest server's client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
