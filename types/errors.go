package types

import "errors"

// Sentinel errors for parameter store failures.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrAmbiguousEmpty indicates an empty collection was offered for
	// classification; the element type cannot be inferred from nothing.
	ErrAmbiguousEmpty = errors.New("empty collection cannot identify a parameter type")

	// ErrUnclassifiable indicates a value outside the fixed scalar
	// vocabulary that is not iterable in a supported way.
	ErrUnclassifiable = errors.New("unclassifiable parameter value")

	// ErrNoParameter indicates a lookup of a key with no entry.
	ErrNoParameter = errors.New("no such parameter")
)
