package radial

import "errors"

var (
	// ErrEmptyList is returned when a layout is requested for zero items.
	ErrEmptyList = errors.New("radial: the list of items must have at least one item in it")

	// ErrNotReady is returned by calls that need a completed first layout.
	ErrNotReady = errors.New("radial: items have not been laid out yet")
)
