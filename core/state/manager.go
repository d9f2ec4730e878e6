package state

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"openbounty/native/bounty"
	"openbounty/storage"
)

var (
	bountyRecordPrefix = []byte("bounty_")
	bountyCounterKey   = []byte("bounty_count")
	accountPrefix      = []byte("account/")
	escrowVaultSeed    = []byte("module/bounty/escrow-vault")
)

// Manager adapts the raw key/value store to the bounty engine: record keys,
// the bounty counter, the settlement ledger accounts and the escrow vault
// address all live here, so the engine never touches raw keys or byte offsets.
type Manager struct {
	mu sync.Mutex
	db storage.Database
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

// BountyKey derives the record key for an identifier: the fixed namespace
// prefix followed by the big-endian encoding of the ID.
func BountyKey(id uint64) []byte {
	buf := make([]byte, len(bountyRecordPrefix)+8)
	copy(buf, bountyRecordPrefix)
	binary.BigEndian.PutUint64(buf[len(bountyRecordPrefix):], id)
	return buf
}

func accountKey(addr bounty.Address) []byte {
	buf := make([]byte, len(accountPrefix)+len(addr))
	copy(buf, accountPrefix)
	copy(buf[len(accountPrefix):], addr[:])
	return buf
}

// EscrowAddress returns the module-controlled vault account that custodies
// locked bounty funds. It is derived from a fixed seed so every node computes
// the same address without storing it.
func (m *Manager) EscrowAddress() bounty.Address {
	var addr bounty.Address
	copy(addr[:], ethcrypto.Keccak256(escrowVaultSeed))
	return addr
}

// BountyPut validates the record invariants and writes the full encoded record
// under its derived key.
func (m *Manager) BountyPut(id uint64, b *bounty.Bounty) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state: database not configured")
	}
	sanitized, err := bounty.Sanitize(b)
	if err != nil {
		return err
	}
	encoded, err := bounty.Encode(sanitized)
	if err != nil {
		return err
	}
	return m.db.Put(BountyKey(id), encoded)
}

// BountyGet fetches and decodes the record for an identifier. The boolean
// result distinguishes a missing record from a storage failure; a record that
// exists but fails to decode surfaces the codec's ErrMalformedRecord.
func (m *Manager) BountyGet(id uint64) (*bounty.Bounty, bool, error) {
	if m == nil || m.db == nil {
		return nil, false, fmt.Errorf("state: database not configured")
	}
	raw, err := m.db.Get(BountyKey(id))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	b, err := bounty.Decode(raw)
	if err != nil {
		return nil, false, fmt.Errorf("state: bounty %d: %w", id, err)
	}
	return b, true, nil
}

// BountyHas reports record existence without decoding.
func (m *Manager) BountyHas(id uint64) (bool, error) {
	if m == nil || m.db == nil {
		return false, fmt.Errorf("state: database not configured")
	}
	return m.db.Has(BountyKey(id))
}

// BountyCount returns the current allocator value: the number of successful
// creates since genesis.
func (m *Manager) BountyCount() (uint64, error) {
	if m == nil || m.db == nil {
		return 0, fmt.Errorf("state: database not configured")
	}
	raw, err := m.db.Get(bountyCounterKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("state: corrupt bounty counter (%d bytes)", len(raw))
	}
	return binary.BigEndian.Uint64(raw), nil
}

// NextBountyID returns the current counter value as the freshly minted
// identifier and advances the counter. The caller must either persist the
// record for the returned ID or revert the allocation.
func (m *Manager) NextBountyID() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, err := m.BountyCount()
	if err != nil {
		return 0, err
	}
	if err := m.writeCounter(current + 1); err != nil {
		return 0, err
	}
	return current, nil
}

// RevertBountyID rolls the counter back after a create aborted between
// allocation and the record write. Best effort: the counter never runs
// backwards past a persisted record because per-operation execution is
// serialized.
func (m *Manager) RevertBountyID(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.writeCounter(id)
}

func (m *Manager) writeCounter(value uint64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, value)
	return m.db.Put(bountyCounterKey, buf)
}
