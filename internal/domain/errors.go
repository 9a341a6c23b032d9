package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrZipNotFound signals an unknown postal code.
	ErrZipNotFound = errors.New("zip code not found")
	// ErrInvalidRequest signals a malformed search request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrRegistryUnavailable signals a trials registry failure.
	ErrRegistryUnavailable = errors.New("trials registry unavailable")
	// ErrSearchFailed signals an investigator store failure.
	ErrSearchFailed = errors.New("investigator search failed")
	// ErrStaleSearch signals that a newer search superseded this one.
	ErrStaleSearch = errors.New("search superseded by a newer request")
)

// MetadataFetchError wraps ErrRegistryUnavailable with the upstream HTTP status.
type MetadataFetchError struct {
	StatusCode int
}

func (e *MetadataFetchError) Error() string {
	return fmt.Sprintf("%s: upstream status %d", ErrRegistryUnavailable.Error(), e.StatusCode)
}

func (e *MetadataFetchError) Unwrap() error { return ErrRegistryUnavailable }

// NewMetadataFetchError creates a registry failure error carrying the upstream status.
func NewMetadataFetchError(statusCode int) error {
	return &MetadataFetchError{StatusCode: statusCode}
}
