package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidThreshold is returned when a similarity threshold is outside [0,1]
	ErrInvalidThreshold = errors.New("threshold must be between 0 and 1")

	// ErrDealNotFound is returned when the deal source has no such deal
	ErrDealNotFound = errors.New("deal not found")

	// ErrDealSourceFailure is returned when a deal source request fails
	ErrDealSourceFailure = errors.New("deal source request failed")

	// ErrDealSourceUnavailable is returned when no deal source is configured
	ErrDealSourceUnavailable = errors.New("deal source not configured")

	// ErrIncompleteSelection is returned when a group has no selected line item
	ErrIncompleteSelection = errors.New("every product group needs a selection")

	// ErrUnknownLineItem is returned when a selection names a product outside its group
	ErrUnknownLineItem = errors.New("selected line item is not in its group")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
