package state

import (
	"encoding/binary"
	"errors"
	"math/big"
	"sync"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"totemic/core/events"
	"totemic/core/types"
	"totemic/storage"
)

// Manager persists the merit and boost ledgers in a key-value database. Keys
// are keccak hashes of prefixed raw keys; values are RLP encoded. The manager
// also collects the events the engines emit during an operation so the node
// can drain and broadcast them.
type Manager struct {
	db storage.Database

	mu      sync.Mutex
	pending []*types.Event
	emitter events.Emitter
}

// NewManager creates a state manager on top of the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db, emitter: events.NoopEmitter{}}
}

// SetEmitter replaces the downstream event emitter.
func (m *Manager) SetEmitter(emitter events.Emitter) {
	m.mu.Lock()
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	m.emitter = emitter
	m.mu.Unlock()
}

// AppendEvent records an engine event and forwards it downstream.
func (m *Manager) AppendEvent(evt *types.Event) {
	if evt == nil {
		return
	}
	m.mu.Lock()
	m.pending = append(m.pending, evt)
	emitter := m.emitter
	m.mu.Unlock()
	emitter.Emit(evt)
}

// DrainEvents returns the buffered events and clears the buffer.
func (m *Manager) DrainEvents() []*types.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.pending
	m.pending = nil
	return out
}

// --- key construction ---

func hashKey(prefix []byte, parts ...[]byte) []byte {
	buf := append([]byte(nil), prefix...)
	for _, part := range parts {
		buf = append(buf, part...)
	}
	return ethcrypto.Keccak256(buf)
}

func uint64Bytes(v uint64) []byte {
	var out [8]byte
	binary.BigEndian.PutUint64(out[:], v)
	return out[:]
}

// --- generic accessors ---

func (m *Manager) getRLP(key []byte, dst interface{}) (bool, error) {
	data, err := m.db.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := rlp.DecodeBytes(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) putRLP(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.db.Put(key, encoded)
}

func (m *Manager) getBig(key []byte) (*big.Int, error) {
	value := new(big.Int)
	ok, err := m.getRLP(key, value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return value, nil
}

func (m *Manager) getUint64(key []byte) (uint64, bool, error) {
	var value uint64
	ok, err := m.getRLP(key, &value)
	return value, ok, err
}

func (m *Manager) hasFlag(key []byte) (bool, error) {
	_, err := m.db.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) setFlag(key []byte) error {
	return m.db.Put(key, []byte{1})
}
