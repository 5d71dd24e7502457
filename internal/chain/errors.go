package chain

import "errors"

var (
	// ErrUnsupportedChain is returned when no handler serves a chain type or chain id.
	ErrUnsupportedChain = errors.New("unsupported chain")
	// ErrInvalidInput is returned for empty addresses or non-positive chain ids.
	ErrInvalidInput = errors.New("invalid input")
)
