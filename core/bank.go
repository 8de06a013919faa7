package core

import (
	"errors"
	"fmt"
	"math/big"

	"totemic/core/state"
)

// Bank errors.
var (
	ErrInsufficientFunds = errors.New("bank: insufficient funds")
	ErrInvalidAmount     = errors.New("bank: invalid amount")
)

// Bank is the in-process settlement layer behind the engines. It keeps three
// separate books: native balances for fees, emission balances for the vested
// reward token, and per-token membership balances. The merit engine orders
// fee transfers and emission payouts through it; the boost engine orders
// premium payments.
type Bank struct {
	st *state.Manager
}

// NewBank creates a bank over the given state manager.
func NewBank(st *state.Manager) *Bank {
	return &Bank{st: st}
}

// TokenBalance reports the holder's balance of the membership token.
func (b *Bank) TokenBalance(holder, token [20]byte) (*big.Int, error) {
	return b.st.TokenBalance(holder, token)
}

// Transfer moves native currency between accounts.
func (b *Bank) Transfer(from, to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	balance, err := b.st.NativeBalance(from)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	if err := b.st.SetNativeBalance(from, new(big.Int).Sub(balance, amount)); err != nil {
		return err
	}
	dest, err := b.st.NativeBalance(to)
	if err != nil {
		return err
	}
	return b.st.SetNativeBalance(to, new(big.Int).Add(dest, amount))
}

// ReleaseVested pulls emission tokens out of the year's vesting tranche into
// the distribution pool.
func (b *Bank) ReleaseVested(year int, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	tranche, err := b.st.TranchePool(year)
	if err != nil {
		return err
	}
	if tranche.Cmp(amount) < 0 {
		return fmt.Errorf("bank: tranche %d underfunded: %w", year, ErrInsufficientFunds)
	}
	if err := b.st.SetTranchePool(year, new(big.Int).Sub(tranche, amount)); err != nil {
		return err
	}
	pool, err := b.st.EmissionPool()
	if err != nil {
		return err
	}
	return b.st.SetEmissionPool(new(big.Int).Add(pool, amount))
}

// PayEmission sends emission tokens from the distribution pool to a totem.
func (b *Bank) PayEmission(to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	pool, err := b.st.EmissionPool()
	if err != nil {
		return err
	}
	if pool.Cmp(amount) < 0 {
		return fmt.Errorf("bank: emission pool underfunded: %w", ErrInsufficientFunds)
	}
	if err := b.st.SetEmissionPool(new(big.Int).Sub(pool, amount)); err != nil {
		return err
	}
	balance, err := b.st.EmissionBalance(to)
	if err != nil {
		return err
	}
	return b.st.SetEmissionBalance(to, new(big.Int).Add(balance, amount))
}

// MintNative credits native currency to an account. Used by genesis seeding
// and the dev faucet.
func (b *Bank) MintNative(addr [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	balance, err := b.st.NativeBalance(addr)
	if err != nil {
		return err
	}
	return b.st.SetNativeBalance(addr, new(big.Int).Add(balance, amount))
}

// SetTokenBalance overwrites a membership token balance. Used by genesis
// seeding and tests; live token movements happen outside the ledger.
func (b *Bank) SetTokenBalance(holder, token [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return b.st.SetTokenBalance(holder, token, amount)
}

// FundTranche adds emission tokens to a vesting tranche pool.
func (b *Bank) FundTranche(year int, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	pool, err := b.st.TranchePool(year)
	if err != nil {
		return err
	}
	return b.st.SetTranchePool(year, new(big.Int).Add(pool, amount))
}

// NativeBalance reports an account's native balance.
func (b *Bank) NativeBalance(addr [20]byte) (*big.Int, error) {
	return b.st.NativeBalance(addr)
}

// EmissionBalance reports an account's emission token balance.
func (b *Bank) EmissionBalance(addr [20]byte) (*big.Int, error) {
	return b.st.EmissionBalance(addr)
}

// EmissionPool reports the undistributed emission pool.
func (b *Bank) EmissionPool() (*big.Int, error) {
	return b.st.EmissionPool()
}

// TranchePool reports the remaining balance of a vesting tranche.
func (b *Bank) TranchePool(year int) (*big.Int, error) {
	return b.st.TranchePool(year)
}
