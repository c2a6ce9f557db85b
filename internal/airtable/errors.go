package airtable

import "fmt"

// Error is any failure to read or write the store. The coordinator treats it
// as fatal for the current pass: the retry queue itself lives in the store,
// so there is nowhere durable to record the failure.
type Error struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("airtable: %s", e.Message)
	}
	if e.Type == "" {
		return fmt.Sprintf("airtable: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("airtable: status %d (%s): %s", e.StatusCode, e.Type, e.Message)
}

// RateLimited reports whether the store rejected the request for quota
// reasons after retries were exhausted.
func (e *Error) RateLimited() bool {
	return e.StatusCode == 429
}
