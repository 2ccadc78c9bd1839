// operatorvaultrewardrouter.go implements OperatorVaultRewardRouter: the
// second-stage reward split (operator fee, then proportional per-vault
// allocation) built on the generic RewardPool primitive.
package ncncore

import (
	"github.com/ncn-network/ncn-core/pkg/log"
)

var operatorVaultRewardRouterLog = log.Default().Module("operator_vault_reward_router")

// OperatorVaultRewardRouter is the epoch-scoped, per-operator reward
// router. Its routes are keyed by vault (one VaultRewardRoute per vault
// delegating to the operator); its residual destination is
// OperatorRewards, distinct from NCNRewardRouter's NCNRewards residual.
type OperatorVaultRewardRouter struct {
	Operator OperatorID
	Epoch    uint64

	RewardPool

	OperatorRewards StakeWeights
}

// NewOperatorVaultRewardRouter constructs an empty
// OperatorVaultRewardRouter for (operator, epoch).
func NewOperatorVaultRewardRouter(operator OperatorID, epoch uint64) *OperatorVaultRewardRouter {
	return &OperatorVaultRewardRouter{Operator: operator, Epoch: epoch, RewardPool: NewRewardPool(MaxVaults)}
}

// RouteOperatorRewards implements route_operator_rewards: moves
// fee_share = floor(reward_pool * operator_fee_bps / 10_000) from the
// pool into operator_rewards.
func (r *OperatorVaultRewardRouter) RouteOperatorRewards(snap *OperatorSnapshot) error {
	feeShare, err := floorMulDiv(r.Pool, NewStakeWeights(snap.OperatorFeeBps), NewStakeWeights(MaxTotalFeeBps))
	if err != nil {
		return err
	}
	if err := r.Pool.Decrement(feeShare); err != nil {
		return err
	}
	if err := r.OperatorRewards.Increment(feeShare); err != nil {
		return err
	}
	if err := r.RewardsProcessed.Increment(feeShare); err != nil {
		return err
	}
	operatorVaultRewardRouterLog.Info("operator fee routed", "operator", r.Operator.Hex(), "epoch", r.Epoch,
		"fee_share", feeShare.StakeWeight().String())
	return nil
}

// RouteRewardPool implements route_reward_pool (operator level): splits
// the remaining pool among the operator snapshot's per-vault stake
// weights, resuming via the embedded cursor if a prior call was
// interrupted by maxIterations. The residual lands in OperatorRewards.
func (r *OperatorVaultRewardRouter) RouteRewardPool(snap *OperatorSnapshot, maxIterations uint64) error {
	vaultWeights := snap.VaultWeights()
	weights := make([]RouteWeight, len(vaultWeights))
	for i, vw := range vaultWeights {
		weights[i] = RouteWeight{Key: vw.Vault, StakeWeight: vw.StakeWeights}
	}

	poolBefore := r.Pool
	if err := r.RouteWeightedShares(weights, snap.StakeWeights, maxIterations, r.Operator); err != nil {
		return err
	}
	// rewards_processed accounts for the whole amount moved out of the
	// pool in this call, whether the call completed or paused (vault
	// shares plus whatever residual landed back in operator_rewards via
	// the policy key).
	routed := poolBefore
	if err := routed.Decrement(r.Pool); err != nil {
		return err
	}
	if err := r.RewardsProcessed.Increment(routed); err != nil {
		return err
	}
	if !r.CursorInProgress() {
		if residual, ok := r.TakeRoute(r.Operator); ok && !residual.IsZero() {
			if err := r.OperatorRewards.Increment(residual); err != nil {
				return err
			}
		}
	}
	return nil
}

// DistributeOperatorRewards implements distribute_operator_rewards.
func (r *OperatorVaultRewardRouter) DistributeOperatorRewards() (StakeWeights, error) {
	return r.DistributeBucket(&r.OperatorRewards)
}

// DistributeVaultRewards implements distribute_vault_rewards(vault).
func (r *OperatorVaultRewardRouter) DistributeVaultRewards(vault VaultID) (StakeWeights, error) {
	return r.DistributeRoute(vault)
}
