package state

import (
	"math/big"

	"totemic/native/merit"
)

// storedTotemAccount mirrors merit.TotemAccount with RLP-friendly fields.
type storedTotemAccount struct {
	Registered  bool
	Blacklisted bool
	Karma       uint64
}

// PeriodConfig loads the persisted period clock, or nil when unset.
func (m *Manager) PeriodConfig() (*merit.PeriodConfig, error) {
	cfg := new(merit.PeriodConfig)
	ok, err := m.getRLP(hashKey(periodConfigKey), cfg)
	if err != nil || !ok {
		return nil, err
	}
	return cfg, nil
}

func (m *Manager) SetPeriodConfig(cfg *merit.PeriodConfig) error {
	return m.putRLP(hashKey(periodConfigKey), cfg)
}

// MeritParams loads the persisted engine parameters, or nil when unset.
func (m *Manager) MeritParams() (*merit.Params, error) {
	params := new(merit.Params)
	ok, err := m.getRLP(hashKey(meritParamsKey), params)
	if err != nil || !ok {
		return nil, err
	}
	return params, nil
}

func (m *Manager) SetMeritParams(params merit.Params) error {
	params.Normalize()
	return m.putRLP(hashKey(meritParamsKey), &params)
}

func (m *Manager) TotemAccount(totem [20]byte) (*merit.TotemAccount, error) {
	stored := new(storedTotemAccount)
	ok, err := m.getRLP(hashKey(totemPrefix, totem[:]), stored)
	if err != nil || !ok {
		return nil, err
	}
	return &merit.TotemAccount{
		Registered:  stored.Registered,
		Blacklisted: stored.Blacklisted,
		Karma:       stored.Karma,
	}, nil
}

func (m *Manager) PutTotemAccount(totem [20]byte, acct *merit.TotemAccount) error {
	return m.putRLP(hashKey(totemPrefix, totem[:]), &storedTotemAccount{
		Registered:  acct.Registered,
		Blacklisted: acct.Blacklisted,
		Karma:       acct.Karma,
	})
}

func (m *Manager) TotemList() ([][20]byte, error) {
	var raw [][]byte
	if _, err := m.getRLP(hashKey(totemListKey), &raw); err != nil {
		return nil, err
	}
	out := make([][20]byte, 0, len(raw))
	for _, entry := range raw {
		var addr [20]byte
		copy(addr[:], entry)
		out = append(out, addr)
	}
	return out, nil
}

func (m *Manager) AppendTotem(totem [20]byte) error {
	var raw [][]byte
	if _, err := m.getRLP(hashKey(totemListKey), &raw); err != nil {
		return err
	}
	raw = append(raw, append([]byte(nil), totem[:]...))
	return m.putRLP(hashKey(totemListKey), raw)
}

func (m *Manager) MeritPoints(period uint64, totem [20]byte) (*big.Int, error) {
	return m.getBig(hashKey(pointsPrefix, uint64Bytes(period), totem[:]))
}

func (m *Manager) SetMeritPoints(period uint64, totem [20]byte, amount *big.Int) error {
	return m.putRLP(hashKey(pointsPrefix, uint64Bytes(period), totem[:]), amount)
}

func (m *Manager) PeriodTotal(period uint64) (*big.Int, error) {
	return m.getBig(hashKey(periodTotalPrefix, uint64Bytes(period)))
}

func (m *Manager) SetPeriodTotal(period uint64, amount *big.Int) error {
	return m.putRLP(hashKey(periodTotalPrefix, uint64Bytes(period)), amount)
}

func (m *Manager) Claimed(period uint64, totem [20]byte) (bool, error) {
	return m.hasFlag(hashKey(claimedPrefix, uint64Bytes(period), totem[:]))
}

func (m *Manager) SetClaimed(period uint64, totem [20]byte) error {
	return m.setFlag(hashKey(claimedPrefix, uint64Bytes(period), totem[:]))
}

// ReleasedEmission returns the stamped emission for a period. The second
// return reports whether the period has been closed yet.
func (m *Manager) ReleasedEmission(period uint64) (*big.Int, bool, error) {
	value := new(big.Int)
	ok, err := m.getRLP(hashKey(releasedPrefix, uint64Bytes(period)), value)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return big.NewInt(0), false, nil
	}
	return value, true, nil
}

func (m *Manager) SetReleasedEmission(period uint64, amount *big.Int) error {
	return m.putRLP(hashKey(releasedPrefix, uint64Bytes(period)), amount)
}

func (m *Manager) LastSettledPeriod() (uint64, bool, error) {
	return m.getUint64(hashKey(lastSettledKey))
}

func (m *Manager) SetLastSettledPeriod(period uint64) error {
	return m.putRLP(hashKey(lastSettledKey), period)
}

func (m *Manager) TrancheReleased(year int) (*big.Int, error) {
	return m.getBig(hashKey(tranchePrefix, uint64Bytes(uint64(year))))
}

func (m *Manager) SetTrancheReleased(year int, amount *big.Int) error {
	return m.putRLP(hashKey(tranchePrefix, uint64Bytes(uint64(year))), amount)
}

func (m *Manager) BoostedInPeriod(period uint64, booster, totem [20]byte) (bool, error) {
	return m.hasFlag(hashKey(boostedPrefix, uint64Bytes(period), booster[:], totem[:]))
}

func (m *Manager) SetBoostedInPeriod(period uint64, booster, totem [20]byte) error {
	return m.setFlag(hashKey(boostedPrefix, uint64Bytes(period), booster[:], totem[:]))
}

func (m *Manager) HasRole(role string, addr [20]byte) (bool, error) {
	return m.hasFlag(hashKey(rolePrefix, []byte(role), addr[:]))
}

func (m *Manager) SetRole(role string, addr [20]byte, granted bool) error {
	key := hashKey(rolePrefix, []byte(role), addr[:])
	if granted {
		return m.setFlag(key)
	}
	return m.db.Delete(key)
}
