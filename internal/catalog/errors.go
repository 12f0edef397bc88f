// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors for the two recoverable failure kinds the catalog
// contract defines, plus rate limiting. Match with errors.Is.
var (
	// ErrAuth indicates a missing, invalid, or rejected credential.
	ErrAuth = errors.New("catalog: authentication failed")

	// ErrNotFound indicates an unknown resource identifier. An empty query
	// result set is not an error and never produces ErrNotFound.
	ErrNotFound = errors.New("catalog: not found")

	// ErrRateLimited indicates the service refused the request with HTTP 429.
	ErrRateLimited = errors.New("catalog: rate limited")
)

// QueryError is a server-side rejection of a query: the service answered
// with a well-formed envelope whose valid_response flag is false.
type QueryError struct {
	Message string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("catalog: query rejected: %s", e.Message)
}
