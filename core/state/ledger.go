package state

import (
	"errors"
	"fmt"
	"math"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"openbounty/core/types"
	"openbounty/native/bounty"
	"openbounty/storage"
)

var feeCollectorSeed = []byte("module/bounty/fee-collector")

type storedAccount struct {
	Nonce   uint64
	Balance uint64
}

// FeeCollector returns the account that absorbs transfer fees, derived from a
// fixed seed like the escrow vault.
func (m *Manager) FeeCollector() bounty.Address {
	var addr bounty.Address
	copy(addr[:], ethcrypto.Keccak256(feeCollectorSeed))
	return addr
}

// GetAccount loads a ledger account. Unknown addresses resolve to a zero
// account rather than an error.
func (m *Manager) GetAccount(addr bounty.Address) (*types.Account, error) {
	if m == nil || m.db == nil {
		return nil, fmt.Errorf("state: database not configured")
	}
	raw, err := m.db.Get(accountKey(addr))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return &types.Account{}, nil
	}
	if err != nil {
		return nil, err
	}
	var stored storedAccount
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, fmt.Errorf("state: decode account: %w", err)
	}
	return &types.Account{Nonce: stored.Nonce, Balance: stored.Balance}, nil
}

// PutAccount persists a ledger account.
func (m *Manager) PutAccount(addr bounty.Address, acc *types.Account) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state: database not configured")
	}
	if acc == nil {
		acc = &types.Account{}
	}
	encoded, err := rlp.EncodeToBytes(&storedAccount{Nonce: acc.Nonce, Balance: acc.Balance})
	if err != nil {
		return fmt.Errorf("state: encode account: %w", err)
	}
	return m.db.Put(accountKey(addr), encoded)
}

// ApplyDeposit executes the funding payment bundled ahead of a create call:
// it moves the deposit amount from the sender to the deposit's recipient
// (normally the escrow vault). The engine only verifies the deposit; the
// execution substrate applies it through this method as the first half of the
// all-or-nothing group.
func (m *Manager) ApplyDeposit(dep bounty.Deposit) error {
	if dep.Amount == 0 {
		return fmt.Errorf("state: deposit amount must be positive")
	}
	return m.transfer(dep.Sender, dep.Recipient, dep.Amount)
}

// Pay implements the bounty engine's settlement gateway: one atomic payment of
// the escrowed amount from the vault to the recipient. The fee, when present,
// is charged to the caller of the public operation and credited to the fee
// collector. Every balance is checked before any account is written, so a
// shortfall on either leg leaves the ledger untouched.
func (m *Manager) Pay(caller, to bounty.Address, amount, fee uint64) error {
	if amount == 0 {
		return fmt.Errorf("state: payment amount must be positive")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	vault := m.EscrowAddress()
	accounts := map[bounty.Address]*types.Account{}
	load := func(addr bounty.Address) (*types.Account, error) {
		if acc, ok := accounts[addr]; ok {
			return acc, nil
		}
		acc, err := m.GetAccount(addr)
		if err != nil {
			return nil, err
		}
		accounts[addr] = acc
		return acc, nil
	}

	vaultAcc, err := load(vault)
	if err != nil {
		return err
	}
	if vaultAcc.Balance < amount {
		return fmt.Errorf("state: insufficient escrow balance")
	}
	recipientAcc, err := load(to)
	if err != nil {
		return err
	}
	if fee > 0 {
		callerAcc, err := load(caller)
		if err != nil {
			return err
		}
		if callerAcc.Balance < fee {
			return fmt.Errorf("state: caller cannot cover fee")
		}
		collectorAcc, err := load(m.FeeCollector())
		if err != nil {
			return err
		}
		if collectorAcc.Balance > math.MaxUint64-fee {
			return fmt.Errorf("state: balance overflow")
		}
		callerAcc.Balance -= fee
		collectorAcc.Balance += fee
	}
	if recipientAcc.Balance > math.MaxUint64-amount {
		return fmt.Errorf("state: balance overflow")
	}
	vaultAcc.Balance -= amount
	recipientAcc.Balance += amount

	for addr, acc := range accounts {
		if err := m.PutAccount(addr, acc); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) transfer(from, to bounty.Address, amount uint64) error {
	if from == to {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fromAcc, err := m.GetAccount(from)
	if err != nil {
		return err
	}
	if fromAcc.Balance < amount {
		return fmt.Errorf("state: insufficient balance")
	}
	toAcc, err := m.GetAccount(to)
	if err != nil {
		return err
	}
	if toAcc.Balance > math.MaxUint64-amount {
		return fmt.Errorf("state: balance overflow")
	}
	fromAcc.Balance -= amount
	toAcc.Balance += amount
	if err := m.PutAccount(from, fromAcc); err != nil {
		return err
	}
	return m.PutAccount(to, toAcc)
}
