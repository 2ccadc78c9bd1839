// snapshot.go implements EpochSnapshot and OperatorSnapshot, the frozen
// total and per-operator stake weights captured at a deterministic
// instant within an epoch.
package ncncore

import (
	"errors"
	"fmt"

	"github.com/ncn-network/ncn-core/pkg/log"
)

var snapshotLog = log.Default().Module("snapshot")

// Snapshot errors.
var (
	ErrWeightTableNotFinalized          = errors.New("snapshot: weight table not finalized")
	ErrOperatorSnapshotFull             = errors.New("snapshot: operator vault list full")
	ErrDuplicateVaultOperatorDelegation = errors.New("snapshot: duplicate vault-operator delegation")
	ErrOperatorSnapshotAlreadyFinal     = errors.New("snapshot: operator snapshot already finalized")
	ErrOperatorSnapshotNotFound         = errors.New("snapshot: operator snapshot not found")
)

// EpochSnapshot is the epoch-scoped aggregate of all operator stake
// weight, populated as each OperatorSnapshot finalizes.
type EpochSnapshot struct {
	NCN   NCNID
	Epoch uint64

	TotalStakeWeight                StakeWeights
	OperatorCount                    uint64
	VaultCount                       uint64
	OperatorsRegistered               uint64
	ValidOperatorVaultDelegations     uint64
	Finalized                        bool
}

// NewEpochSnapshot initializes an EpochSnapshot. wt must already be
// finalized (ErrWeightTableNotFinalized otherwise).
func NewEpochSnapshot(ncn NCNID, epoch uint64, wt *WeightTable, operatorCount uint64) (*EpochSnapshot, error) {
	if !wt.Finalized() {
		return nil, ErrWeightTableNotFinalized
	}
	return &EpochSnapshot{
		NCN:         ncn,
		Epoch:       epoch,
		OperatorCount: operatorCount,
		VaultCount:  wt.VaultCount,
	}, nil
}

// recomputeFinalized updates the Finalized flag: finalized iff
// operators_registered == operator_count.
func (es *EpochSnapshot) recomputeFinalized() {
	es.Finalized = es.OperatorsRegistered == es.OperatorCount
}

// VaultOperatorStakeWeight is one vault's contribution to an operator's
// aggregate stake weight, captured at snapshot time.
type VaultOperatorStakeWeight struct {
	Vault        VaultID
	VaultIndex   uint64
	StakeWeights StakeWeights
}

// OperatorSnapshot is the per-operator, per-epoch frozen stake picture.
type OperatorSnapshot struct {
	Operator          OperatorID
	Epoch             uint64
	NCNOperatorIndex  uint64
	OperatorFeeBps    uint64
	IsActive          bool

	vaultWeights [MaxVaults]VaultOperatorStakeWeight
	vaultCount   int

	VaultOperatorDelegationsRegistered uint64
	VaultOperatorDelegationCount       uint64

	StakeWeights StakeWeights
	Finalized    bool
}

// NewOperatorSnapshot initializes an OperatorSnapshot against parent for
// operator, reading the operator's current active state and, if active,
// the number of (vault, operator) pairs that still need snapshotting
// (delegationCount, already filtered to entries in ToggleActive at the
// snapshot slot). If the operator is not active,
// the snapshot is created inactive, zero-stake, and immediately
// finalized, and parent's OperatorsRegistered is incremented.
func NewOperatorSnapshot(
	parent *EpochSnapshot,
	operator OperatorID,
	ncnOperatorIndex uint64,
	operatorFeeBps uint64,
	isActive bool,
	delegationCount uint64,
) *OperatorSnapshot {
	snap := &OperatorSnapshot{
		Operator:         operator,
		Epoch:            parent.Epoch,
		NCNOperatorIndex: ncnOperatorIndex,
		OperatorFeeBps:   operatorFeeBps,
		IsActive:         isActive,
	}

	if !isActive {
		snap.Finalized = true
		parent.OperatorsRegistered++
		parent.recomputeFinalized()
		snapshotLog.Info("operator snapshot finalized inactive",
			"operator", operator.Hex(), "epoch", parent.Epoch)
		return snap
	}

	snap.VaultOperatorDelegationCount = delegationCount
	if delegationCount == 0 {
		snap.Finalized = true
		parent.OperatorsRegistered++
		parent.recomputeFinalized()
	}
	return snap
}

// SnapshotVaultOperatorDelegation records vault's contribution to snap's
// aggregate stake weight. totalSecurity and mintWeight are the
// delegation's current security and the WeightTable weight for vault's
// mint, already resolved by the caller.
func (snap *OperatorSnapshot) SnapshotVaultOperatorDelegation(
	parent *EpochSnapshot,
	vault VaultID,
	vaultIndex uint64,
	totalSecurity uint64,
	mintWeight StakeWeights,
) error {
	if snap.Finalized {
		return fmt.Errorf("%w: operator %s", ErrOperatorSnapshotAlreadyFinal, snap.Operator.Hex())
	}
	for i := 0; i < snap.vaultCount; i++ {
		if snap.vaultWeights[i].Vault == vault {
			return fmt.Errorf("%w: vault %s operator %s", ErrDuplicateVaultOperatorDelegation, vault.Hex(), snap.Operator.Hex())
		}
	}
	if snap.vaultCount >= MaxVaults {
		return fmt.Errorf("%w: operator %s", ErrOperatorSnapshotFull, snap.Operator.Hex())
	}

	stakeWeight, err := MulStakeWeight(totalSecurity, mintWeight)
	if err != nil {
		return err
	}

	snap.vaultWeights[snap.vaultCount] = VaultOperatorStakeWeight{
		Vault:        vault,
		VaultIndex:   vaultIndex,
		StakeWeights: stakeWeight,
	}
	snap.vaultCount++

	if err := snap.StakeWeights.Increment(stakeWeight); err != nil {
		return err
	}
	snap.VaultOperatorDelegationsRegistered++
	parent.ValidOperatorVaultDelegations++

	if snap.VaultOperatorDelegationsRegistered == snap.VaultOperatorDelegationCount {
		snap.Finalized = true
		parent.OperatorsRegistered++
		if err := parent.TotalStakeWeight.Increment(snap.StakeWeights); err != nil {
			return err
		}
		parent.recomputeFinalized()
		snapshotLog.Info("operator snapshot finalized",
			"operator", snap.Operator.Hex(), "epoch", snap.Epoch,
			"stake_weight", snap.StakeWeights.StakeWeight().String())
	}
	return nil
}

// VaultWeights returns the registered per-vault stake weights in
// registration order.
func (snap *OperatorSnapshot) VaultWeights() []VaultOperatorStakeWeight {
	out := make([]VaultOperatorStakeWeight, snap.vaultCount)
	copy(out, snap.vaultWeights[:snap.vaultCount])
	return out
}
