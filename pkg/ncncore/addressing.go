// addressing.go implements deterministic account-key derivation.
//
// On-chain PDA derivation and rent management are out of scope here;
// what matters is the *shape* of the addressing scheme: every
// epoch-scoped (or NCN-scoped) entity is discovered from
// (ncn, epoch[, operator], tag) with no back-references. DeriveAccountKey
// gives callers a stable, collision-resistant key for that tuple so a
// storage layer can index accounts without inventing its own scheme.
package ncncore

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// Account tags distinguish the entity kind hashed into a key so that,
// e.g., an NCN's vault registry and its epoch 5 weight table never
// collide even if every other component of the tuple matched.
const (
	TagVaultRegistry            = "vault_registry"
	TagFeeConfig                = "fee_config"
	TagWeightTable               = "weight_table"
	TagEpochSnapshot             = "epoch_snapshot"
	TagOperatorSnapshot          = "operator_snapshot"
	TagBallotBox                 = "ballot_box"
	TagEpochState                = "epoch_state"
	TagEpochMarker               = "epoch_marker"
	TagConsensusResult           = "consensus_result"
	TagNCNRewardRouter           = "ncn_reward_router"
	TagOperatorVaultRewardRouter = "operator_vault_reward_router"
)

// DeriveAccountKey computes a deterministic AccountKey for the tuple
// (tag, ncn, epoch, operator). operator may be the zero address for
// NCN-scoped or epoch-scoped (non-operator) entities.
func DeriveAccountKey(tag string, ncn NCNID, epoch uint64, operator OperatorID) AccountKey {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(tag))
	h.Write(ncn.Bytes())

	var epochBuf [8]byte
	binary.BigEndian.PutUint64(epochBuf[:], epoch)
	h.Write(epochBuf[:])

	h.Write(operator.Bytes())

	var key AccountKey
	h.Sum(key[:0])
	return key
}
