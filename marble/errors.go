// ABOUTME: Error types for the marble package: the positional SyntaxError and package sentinels.
// ABOUTME: SyntaxError matches ErrSyntax through errors.Is so callers need not type-assert.
package marble

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is matched by every *SyntaxError.
	ErrSyntax = errors.New("marble syntax error")
	// ErrNotSerializable reports events that have no notation equivalent.
	ErrNotSerializable = errors.New("events not serializable as notation")
)

// SyntaxError reports a character outside the marble alphabet.
type SyntaxError struct {
	Char     rune
	Position int // 0-based rune offset in the original notation, whitespace included
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid character %q at position %d", string(e.Char), e.Position)
}

// Is lets errors.Is(err, ErrSyntax) match.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}
