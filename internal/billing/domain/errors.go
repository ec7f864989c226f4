package billing

import "errors"

var (
	// ErrUnknownPlay is returned when an invoice line references a play missing from the catalog.
	ErrUnknownPlay = errors.New("billing: unknown play")
	// ErrUnknownGenre is returned when a play type has no pricing rule.
	ErrUnknownGenre = errors.New("billing: unknown genre")
	// ErrInvalidAudience is returned when an audience count is negative or missing.
	ErrInvalidAudience = errors.New("billing: invalid audience")
	// ErrEmptyCustomer is returned when an invoice has no customer name.
	ErrEmptyCustomer = errors.New("billing: empty customer")
	// ErrNilRecord is returned when saving a nil statement record.
	ErrNilRecord = errors.New("billing: nil statement record")
	// ErrStatementNotFound is returned when a statement record is not found.
	ErrStatementNotFound = errors.New("billing: statement not found")
)
