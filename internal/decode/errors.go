package decode

import "errors"

var (
	// ErrEmptyDecodeArrays is returned when the context holds no usable
	// decoding arrays: a zero-width line or a library whose every
	// template is wider than the line.
	ErrEmptyDecodeArrays = errors.New("empty decoding arrays")

	// ErrNoValidPath is returned when the forward pass finishes without
	// any finite score in the terminal window. This only occurs when the
	// line geometry admits no template placement at all.
	ErrNoValidPath = errors.New("no valid path found")
)
