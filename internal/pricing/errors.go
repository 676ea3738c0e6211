package pricing

import "errors"

var (
	// ErrInvalidAmount reports a negative quantity, price, percentage or
	// deposit. Inputs are rejected, never clamped to zero.
	ErrInvalidAmount = errors.New("invalid_amount")

	// ErrEmptyDocument reports a document with no qualifying line items at
	// finalize time.
	ErrEmptyDocument = errors.New("empty_document")
)
