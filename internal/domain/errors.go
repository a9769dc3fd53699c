package domain

import "errors"

var (
	// ErrConnectivity means the remote could not be reached at all.
	ErrConnectivity = errors.New("connectivity error")
	// ErrInvalidData means the remote answered with an unusable payload:
	// non-200 status, malformed body or empty image bytes.
	ErrInvalidData = errors.New("invalid data")
	// ErrNotFound is a local image cache miss.
	ErrNotFound = errors.New("not found")
	// ErrLoadFailed hides the underlying image store failure from callers.
	ErrLoadFailed = errors.New("load failed")
	// ErrSaveFailed hides the underlying image store failure on writes.
	ErrSaveFailed = errors.New("save failed")
)
