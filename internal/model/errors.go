package model

import "errors"

// Error taxonomy shared by collectors, calculators and the ledger. Callers
// match with errors.Is.
var (
	// ErrFetch marks an external data source that was unreachable, returned a
	// non-200 status or an unparseable body.
	ErrFetch = errors.New("fetch failed")
	// ErrInsufficientHistory marks a price series too short for the GMA window.
	ErrInsufficientHistory = errors.New("insufficient price history")
	// ErrDomain marks invalid date arithmetic or a non-positive denominator.
	ErrDomain = errors.New("domain error")
	// ErrPersistence marks a ledger read or write failure.
	ErrPersistence = errors.New("ledger persistence failed")
)
