package boost

import (
	"encoding/binary"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// FreeBoostVoucher is the canonical payload signed off-platform to authorize
// a free boost. The digest embeds the user, the totem and the issuance
// timestamp, so a consumed hash can never be replayed and needs no expiry
// bookkeeping beyond the validity-window check.
type FreeBoostVoucher struct {
	User      [20]byte
	Totem     [20]byte
	Timestamp int64
}

// Digest computes the keccak256 hash over the packed voucher encoding:
// user || totem || big-endian uint64 timestamp. Front ends must sign exactly
// this hash.
func (v FreeBoostVoucher) Digest() [32]byte {
	buf := make([]byte, 0, 48)
	buf = append(buf, v.User[:]...)
	buf = append(buf, v.Totem[:]...)
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(v.Timestamp))
	buf = append(buf, ts[:]...)
	var out [32]byte
	copy(out[:], ethcrypto.Keccak256(buf))
	return out
}

// VoucherDigest reproduces the exact message hash a front end must sign for
// a free boost.
func VoucherDigest(user, totem [20]byte, timestamp int64) [32]byte {
	return FreeBoostVoucher{User: user, Totem: totem, Timestamp: timestamp}.Digest()
}

// recoverSigner recovers the 20-byte signer address from a voucher digest and
// a 65-byte [R || S || V] signature.
func recoverSigner(digest [32]byte, sig []byte) ([20]byte, error) {
	var out [20]byte
	pub, err := ethcrypto.SigToPub(digest[:], sig)
	if err != nil {
		return out, err
	}
	copy(out[:], ethcrypto.PubkeyToAddress(*pub).Bytes())
	return out, nil
}
