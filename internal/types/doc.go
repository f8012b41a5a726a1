// Package types provides the value types and error taxonomy shared by the
// sorter, tournament, session and storage packages.
// Types in this package should stay foundational, with no dependencies on the
// rest of ranker.
package types
