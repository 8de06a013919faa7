package state

import "math/big"

// Balance accessors backing the in-process bank. Native balances cover the
// fee currency, emission balances the vested reward token, token balances the
// per-totem membership tokens that gate boosting.

func (m *Manager) NativeBalance(addr [20]byte) (*big.Int, error) {
	return m.getBig(hashKey(nativeBalancePrefix, addr[:]))
}

func (m *Manager) SetNativeBalance(addr [20]byte, amount *big.Int) error {
	return m.putRLP(hashKey(nativeBalancePrefix, addr[:]), amount)
}

func (m *Manager) EmissionBalance(addr [20]byte) (*big.Int, error) {
	return m.getBig(hashKey(emissionBalancePrefix, addr[:]))
}

func (m *Manager) SetEmissionBalance(addr [20]byte, amount *big.Int) error {
	return m.putRLP(hashKey(emissionBalancePrefix, addr[:]), amount)
}

func (m *Manager) TokenBalance(holder, token [20]byte) (*big.Int, error) {
	return m.getBig(hashKey(tokenBalancePrefix, token[:], holder[:]))
}

func (m *Manager) SetTokenBalance(holder, token [20]byte, amount *big.Int) error {
	return m.putRLP(hashKey(tokenBalancePrefix, token[:], holder[:]), amount)
}

func (m *Manager) TranchePool(year int) (*big.Int, error) {
	return m.getBig(hashKey(tranchePoolPrefix, uint64Bytes(uint64(year))))
}

func (m *Manager) SetTranchePool(year int, amount *big.Int) error {
	return m.putRLP(hashKey(tranchePoolPrefix, uint64Bytes(uint64(year))), amount)
}

func (m *Manager) EmissionPool() (*big.Int, error) {
	return m.getBig(hashKey(emissionPoolKey))
}

func (m *Manager) SetEmissionPool(amount *big.Int) error {
	return m.putRLP(hashKey(emissionPoolKey), amount)
}

// TotemToken resolves the membership token paired with a totem. The zero
// address means no pairing is recorded.
func (m *Manager) TotemToken(totem [20]byte) ([20]byte, error) {
	var raw []byte
	var token [20]byte
	if _, err := m.getRLP(hashKey(totemTokenPrefix, totem[:]), &raw); err != nil {
		return token, err
	}
	copy(token[:], raw)
	return token, nil
}

func (m *Manager) SetTotemToken(totem, token [20]byte) error {
	return m.putRLP(hashKey(totemTokenPrefix, totem[:]), token[:])
}
