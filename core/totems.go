package core

import (
	"errors"

	"totemic/core/state"
)

// ErrNoTokenPairing is returned when a totem has no membership token recorded.
var ErrNoTokenPairing = errors.New("core: totem has no token pairing")

// TotemDirectory resolves the membership token paired with each totem. The
// factory collaborator records pairings at totem creation; the ledger only
// reads them.
type TotemDirectory struct {
	st *state.Manager
}

// NewTotemDirectory creates a directory over the given state manager.
func NewTotemDirectory(st *state.Manager) *TotemDirectory {
	return &TotemDirectory{st: st}
}

// TokenOf returns the membership token paired with the totem.
func (d *TotemDirectory) TokenOf(totem [20]byte) ([20]byte, error) {
	token, err := d.st.TotemToken(totem)
	if err != nil {
		return [20]byte{}, err
	}
	if token == ([20]byte{}) {
		return [20]byte{}, ErrNoTokenPairing
	}
	return token, nil
}

// SetToken records the token pairing for a totem.
func (d *TotemDirectory) SetToken(totem, token [20]byte) error {
	return d.st.SetTotemToken(totem, token)
}
