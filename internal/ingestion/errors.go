package ingestion

import "fmt"

// UpstreamError is returned when a page request fails, either at the
// transport level (Err set) or with a non-2xx status (StatusCode set).
type UpstreamError struct {
	Offset     int
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("polymarket events at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("polymarket events at offset %d: status %d, body: %s", e.Offset, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
