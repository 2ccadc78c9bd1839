package ncncore

import (
	"github.com/ethereum/go-ethereum/common"
)

// Entity identities. Every actor addresses a 20-byte account, so every
// actor in the system is a common.Address.
type (
	// NCNID identifies a Node Consensus Network — the root scope for
	// configuration, the vault registry, and every epoch-scoped account.
	NCNID = common.Address

	// OperatorID identifies a participant that casts votes.
	OperatorID = common.Address

	// VaultID identifies a staked-token pool that delegates to operators.
	VaultID = common.Address

	// StMintID identifies a staked-token mint type registered in the
	// vault registry.
	StMintID = common.Address

	// WalletID identifies a reward recipient (protocol fee wallet, NCN
	// fee wallet, operator wallet, vault wallet).
	WalletID = common.Address
)

// AccountKey is a deterministic key addressing an epoch-scoped (or
// NCN-scoped) account. It is never derived from randomness or mutable
// state: it is always a function of (ncn, epoch[, operator]).
type AccountKey = common.Hash

// ZeroAddress is the sentinel "empty" identity, used to mark unused
// slots in fixed-capacity arrays.
var ZeroAddress = common.Address{}

// IsZeroAddress reports whether id is the sentinel empty identity.
func IsZeroAddress(id common.Address) bool {
	return id == ZeroAddress
}
