package network

import "errors"

var (
	// ErrInvalidArgument reports a malformed neuron key, a self-loop, or a
	// weight or rate that the model cannot hold.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPreconditionFailed reports a connection between neurons that do not
	// both exist.
	ErrPreconditionFailed = errors.New("precondition failed")
)
