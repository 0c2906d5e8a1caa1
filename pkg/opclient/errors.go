package opclient

import "fmt"

// ExchangeError is a token endpoint response with status >= 400. Body is the
// raw response body, surfaced verbatim so the caller can see exactly what the
// authorization server said. No retry is attempted on these; the assertion's
// exp is fixed at build time, so the caller decides whether to rebuild and
// try again.
type ExchangeError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *ExchangeError) Error() string {
	return fmt.Sprintf("opclient: token exchange failed with status %d: %s", e.Status, e.Body)
}
