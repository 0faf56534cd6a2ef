package repo

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStaleBalance is returned when the balance snapshot a settlement was
	// classified against no longer matches the stored balance. Another
	// terminal settled for the same client in between; the caller has to
	// refresh and re-classify.
	ErrStaleBalance = errors.New("client balance changed since classification")
	// ErrClientSuspended is returned when a settlement targets a suspended client.
	ErrClientSuspended = errors.New("client account is suspended")
	// ErrInsufficientStock is returned when a line quantity exceeds current stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrReturnExceedsRemaining is returned when a return quantity exceeds
	// what is still returnable against the original transaction.
	ErrReturnExceedsRemaining = errors.New("return quantity exceeds remaining quantity")
)
