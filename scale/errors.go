package scale

import "errors"

var (
	// ErrOverflow indicates a scaled amount exceeds the uint64 range.
	ErrOverflow = errors.New("scale: scaled amount overflows uint64")
)
