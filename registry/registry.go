package registry

import (
	"errors"
	"sync"
)

var (
	// ErrEcosystemPaused indicates the global ecosystem kill-switch is set.
	ErrEcosystemPaused = errors.New("registry: ecosystem paused")
	// ErrTotemsPaused indicates the totem subsystem kill-switch is set.
	ErrTotemsPaused = errors.New("registry: totems paused")
)

// Registry resolves the addresses of cooperating components and exposes the
// two global kill-switches. Every state-mutating entry point polls the pause
// flags before doing anything else.
type Registry interface {
	TokenAddress() [20]byte
	TreasuryAddress() [20]byte
	FactoryAddress() [20]byte
	CoordinatorAddress() [20]byte
	EcosystemPaused() bool
	TotemsPaused() bool
}

// Guard returns the pause error matching the first kill-switch that is set.
func Guard(r Registry) error {
	if r == nil {
		return nil
	}
	if r.EcosystemPaused() {
		return ErrEcosystemPaused
	}
	if r.TotemsPaused() {
		return ErrTotemsPaused
	}
	return nil
}

// Static is an immutable registry resolved once from configuration.
type Static struct {
	Token       [20]byte
	Treasury    [20]byte
	Factory     [20]byte
	Coordinator [20]byte
}

func (s Static) TokenAddress() [20]byte       { return s.Token }
func (s Static) TreasuryAddress() [20]byte    { return s.Treasury }
func (s Static) FactoryAddress() [20]byte     { return s.Factory }
func (s Static) CoordinatorAddress() [20]byte { return s.Coordinator }
func (s Static) EcosystemPaused() bool        { return false }
func (s Static) TotemsPaused() bool           { return false }

// Manual is a mutable registry used by tests and by operator tooling that
// needs to flip the pause switches at runtime.
type Manual struct {
	mu          sync.RWMutex
	token       [20]byte
	treasury    [20]byte
	factory     [20]byte
	coordinator [20]byte
	ecoPaused   bool
	totemPaused bool
}

// NewManual constructs a mutable registry seeded from the static addresses.
func NewManual(seed Static) *Manual {
	return &Manual{
		token:       seed.Token,
		treasury:    seed.Treasury,
		factory:     seed.Factory,
		coordinator: seed.Coordinator,
	}
}

func (m *Manual) TokenAddress() [20]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manual) TreasuryAddress() [20]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.treasury
}

func (m *Manual) FactoryAddress() [20]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.factory
}

func (m *Manual) CoordinatorAddress() [20]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.coordinator
}

func (m *Manual) EcosystemPaused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ecoPaused
}

func (m *Manual) TotemsPaused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totemPaused
}

// SetEcosystemPaused flips the global kill-switch.
func (m *Manual) SetEcosystemPaused(paused bool) {
	m.mu.Lock()
	m.ecoPaused = paused
	m.mu.Unlock()
}

// SetTotemsPaused flips the totem subsystem kill-switch.
func (m *Manual) SetTotemsPaused(paused bool) {
	m.mu.Lock()
	m.totemPaused = paused
	m.mu.Unlock()
}

// SetCoordinator replaces the randomness coordinator address.
func (m *Manual) SetCoordinator(addr [20]byte) {
	m.mu.Lock()
	m.coordinator = addr
	m.mu.Unlock()
}

// SetTreasury replaces the treasury address.
func (m *Manual) SetTreasury(addr [20]byte) {
	m.mu.Lock()
	m.treasury = addr
	m.mu.Unlock()
}
