package state

// Raw key prefixes. Every key is keccak-hashed before hitting the database so
// record sizes stay uniform and prefixes cannot collide with payload bytes.
var (
	periodConfigKey   = []byte("merit:period-config")
	meritParamsKey    = []byte("merit:params")
	totemPrefix       = []byte("merit:totem:")
	totemListKey      = []byte("merit:totem-list")
	pointsPrefix      = []byte("merit:points:")
	periodTotalPrefix = []byte("merit:period-total:")
	claimedPrefix     = []byte("merit:claimed:")
	releasedPrefix    = []byte("merit:released:")
	lastSettledKey    = []byte("merit:last-settled")
	tranchePrefix     = []byte("merit:tranche-released:")
	boostedPrefix     = []byte("merit:boosted:")
	rolePrefix        = []byte("merit:role:")

	boostStatePrefix  = []byte("boost:state:")
	sigUsedPrefix     = []byte("boost:sig-used:")
	pendingPrefix     = []byte("boost:pending:")
	pendingListKey    = []byte("boost:pending-list")
	requestSeqKey     = []byte("boost:request-seq")
	badgeCreditPrefix = []byte("boost:badge-credit:")

	nativeBalancePrefix   = []byte("bank:native:")
	emissionBalancePrefix = []byte("bank:emission:")
	tokenBalancePrefix    = []byte("bank:token:")
	tranchePoolPrefix     = []byte("bank:tranche-pool:")
	emissionPoolKey       = []byte("bank:emission-pool")

	totemTokenPrefix = []byte("totems:token:")
)
