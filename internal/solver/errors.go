package solver

import (
	"errors"
	"fmt"
)

var ErrNoWorkers = errors.New("worker count must be positive")

// CorruptInputError reports leftover bytes that did not form whole records
// once every chunk's fragments were joined in file order. Well-formed input
// never produces it.
type CorruptInputError struct {
	// Offset of the first unparsed byte within the joined fragments.
	Offset    int
	Remainder []byte
}

func (e *CorruptInputError) Error() string {
	const maxShown = 64
	shown := e.Remainder
	if len(shown) > maxShown {
		shown = shown[:maxShown]
	}
	return fmt.Sprintf("corrupt input: %d bytes at fragment offset %d do not form a record: %q",
		len(e.Remainder), e.Offset, shown)
}
