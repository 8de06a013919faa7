package state

import (
	"totemic/native/boost"
)

// BoostState loads the streak record for a (user, totem) pair, or nil when the
// pair has never boosted.
func (m *Manager) BoostState(user, totem [20]byte) (*boost.BoostState, error) {
	st := new(boost.BoostState)
	ok, err := m.getRLP(hashKey(boostStatePrefix, user[:], totem[:]), st)
	if err != nil || !ok {
		return nil, err
	}
	return st, nil
}

func (m *Manager) PutBoostState(user, totem [20]byte, st *boost.BoostState) error {
	return m.putRLP(hashKey(boostStatePrefix, user[:], totem[:]), st)
}

func (m *Manager) SignatureUsed(hash [32]byte) (bool, error) {
	return m.hasFlag(hashKey(sigUsedPrefix, hash[:]))
}

func (m *Manager) MarkSignatureUsed(hash [32]byte) error {
	return m.setFlag(hashKey(sigUsedPrefix, hash[:]))
}

// storedPendingReward mirrors boost.PendingReward for RLP.
type storedPendingReward struct {
	User  []byte
	Totem []byte
}

func (m *Manager) PendingRandomReward(requestID uint64) (*boost.PendingReward, bool, error) {
	stored := new(storedPendingReward)
	ok, err := m.getRLP(hashKey(pendingPrefix, uint64Bytes(requestID)), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	reward := new(boost.PendingReward)
	copy(reward.User[:], stored.User)
	copy(reward.Totem[:], stored.Totem)
	return reward, true, nil
}

// PutPendingRandomReward stores the record and indexes the request id so
// pending requests stay enumerable.
func (m *Manager) PutPendingRandomReward(requestID uint64, reward *boost.PendingReward) error {
	if err := m.putRLP(hashKey(pendingPrefix, uint64Bytes(requestID)), &storedPendingReward{
		User:  append([]byte(nil), reward.User[:]...),
		Totem: append([]byte(nil), reward.Totem[:]...),
	}); err != nil {
		return err
	}
	ids, err := m.PendingRandomRequestIDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == requestID {
			return nil
		}
	}
	return m.putRLP(hashKey(pendingListKey), append(ids, requestID))
}

// DeletePendingRandomReward removes the record and its index entry.
func (m *Manager) DeletePendingRandomReward(requestID uint64) error {
	if err := m.db.Delete(hashKey(pendingPrefix, uint64Bytes(requestID))); err != nil {
		return err
	}
	ids, err := m.PendingRandomRequestIDs()
	if err != nil {
		return err
	}
	filtered := ids[:0]
	for _, id := range ids {
		if id != requestID {
			filtered = append(filtered, id)
		}
	}
	return m.putRLP(hashKey(pendingListKey), filtered)
}

// NextRandomRequestID increments and returns the persistent randomness
// request sequence. Ids survive restarts so a re-issued id can never collide
// with a pending record left by an earlier run.
func (m *Manager) NextRandomRequestID() (uint64, error) {
	current, _, err := m.getUint64(hashKey(requestSeqKey))
	if err != nil {
		return 0, err
	}
	next := current + 1
	if err := m.putRLP(hashKey(requestSeqKey), next); err != nil {
		return 0, err
	}
	return next, nil
}

func (m *Manager) PendingRandomRequestIDs() ([]uint64, error) {
	var ids []uint64
	if _, err := m.getRLP(hashKey(pendingListKey), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (m *Manager) BadgeCredits(user [20]byte, milestone uint64) (uint64, error) {
	count, _, err := m.getUint64(hashKey(badgeCreditPrefix, user[:], uint64Bytes(milestone)))
	return count, err
}

func (m *Manager) SetBadgeCredits(user [20]byte, milestone uint64, count uint64) error {
	key := hashKey(badgeCreditPrefix, user[:], uint64Bytes(milestone))
	if count == 0 {
		return m.db.Delete(key)
	}
	return m.putRLP(key, count)
}
