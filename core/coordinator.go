package core

import (
	"totemic/core/state"
)

// RequestSequencer is the randomness coordinator used when fulfillments
// arrive from an external service: it allocates persistent request ids and
// leaves the entropy delivery to the configured coordinator, which calls back
// over RPC. The boost engine emits the request event the external service
// picks up.
type RequestSequencer struct {
	st *state.Manager
}

// NewRequestSequencer creates a sequencer over the state manager.
func NewRequestSequencer(st *state.Manager) *RequestSequencer {
	return &RequestSequencer{st: st}
}

// RequestRandomness allocates the next persistent request id.
func (s *RequestSequencer) RequestRandomness() (uint64, error) {
	return s.st.NextRandomRequestID()
}
