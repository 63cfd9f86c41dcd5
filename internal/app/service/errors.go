package service

import "errors"

var (
	// ErrValidation marks a missing or out-of-range tracking parameter.
	ErrValidation = errors.New("input params invalid and/or unset")
	// ErrIdentityResolution marks a store failure while resolving a visitor.
	ErrIdentityResolution = errors.New("identity resolution failed")
	// ErrScheduling marks a failure to hand work to the task queue.
	ErrScheduling = errors.New("scheduling background work failed")
	// ErrAttributeCountMismatch marks comma-delimited attribute ids and values of unequal length.
	ErrAttributeCountMismatch = errors.New("attribute id and value counts differ")
	// ErrQueueClosed is returned when enqueuing on a stopped queue.
	ErrQueueClosed = errors.New("task queue closed")
	// ErrQueueFull is returned when the local queue buffer is exhausted.
	ErrQueueFull = errors.New("task queue full")
)
