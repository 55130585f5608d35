package service

import "errors"

// Sentinel errors the HTTP layer maps to status codes. Anything else that
// escapes the service is a storage failure and surfaces as a 500; the service
// never retries.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)
