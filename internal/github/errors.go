package github

import (
	"errors"
	"fmt"
)

// NetworkError means the HTTP call did not complete with a success status
type NetworkError struct {
	StatusCode int // 0 when no response was received
	Body       string
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("github API error %d: %v", e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("github API error %d: %s", e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("request failed: %v", e.Err)
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DataError means the transport succeeded but the payload is unusable:
// the provider reported errors, or the expected data path is missing.
type DataError struct {
	Message string
	Errors  []GraphQLError
	Err     error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("GraphQL error: %s: %v", e.Message, e.Err)
	}
	return "GraphQL error: " + e.Message
}

func (e *DataError) Unwrap() error { return e.Err }

// Kind names the failure class of err for diagnostics
func Kind(err error) string {
	var netErr *NetworkError
	var dataErr *DataError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &dataErr):
		return "data"
	default:
		return "unknown"
	}
}
