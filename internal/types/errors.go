package types

import "errors"

// Error taxonomy shared by every package. Wrap with fmt.Errorf("...: %w", Err...)
// and test with errors.Is.
var (
	// ErrInvalidArgument marks a construction request that can never succeed
	// (fewer than one candidate, empty or duplicate names, corrupt state).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrIllegalState marks a call made at the wrong point of a lifecycle,
	// such as asking for a comparison after sorting completed.
	ErrIllegalState = errors.New("illegal state")

	// ErrIO marks a failure at the file boundary: unreadable candidate lists,
	// unreadable or corrupt saves, unwritable export targets.
	ErrIO = errors.New("io failure")
)
