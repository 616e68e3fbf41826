package client

import "github.com/infiotinc/gqltest/client/transport"

// State holds the request options a Client applies on every operation.
//
// State is not synchronized: it belongs to the goroutine driving the test.
// A Set racing with an operation that has not read the options yet may or
// may not be seen by that operation.
type State struct {
	opts transport.Options
}

func NewState(opts transport.Options) *State {
	return &State{opts: opts}
}

func (s *State) Options() transport.Options {
	return s.opts
}

// Set replaces the options wholesale
func (s *State) Set(opts transport.Options) {
	s.opts = opts
}
