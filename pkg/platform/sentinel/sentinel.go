// Package sentinel holds the errors stores return for facts about stored
// rows. Services translate them into domain errors; handlers never see them.
package sentinel

import "errors"

var (
	// ErrNotFound means no row matched.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a uniqueness rule rejected the write, or a
	// compare-and-set update lost to a concurrent writer.
	ErrConflict = errors.New("conflict")
)
