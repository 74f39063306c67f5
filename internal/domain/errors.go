package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidListing  = errors.New("invalid listing")
	ErrInvalidReview   = errors.New("invalid review")
	ErrInvalidInput    = errors.New("invalid input")
	ErrLoginRequired   = errors.New("login required")
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownVariant  = errors.New("unknown variant")
	// ErrFeedDenied covers upstream 401/403 answers for a listing.
	ErrFeedDenied = errors.New("feed access denied")
)
