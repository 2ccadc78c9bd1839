// ncnrewardrouter.go implements NCNRewardRouter: the first-stage reward
// split (protocol fee, NCN fee, then the operator-vault share) built on
// the generic RewardPool primitive.
package ncncore

import (
	"github.com/ncn-network/ncn-core/pkg/log"
)

var ncnRewardRouterLog = log.Default().Module("ncn_reward_router")

// NCNRewardRouter is the epoch-scoped, NCN-level reward router. Its
// routes are keyed by operator (one OperatorVaultRewardRoute per
// operator that participated in the winning ballot); its residual
// destination is NCNRewards.
type NCNRewardRouter struct {
	NCN   NCNID
	Epoch uint64

	RewardPool

	ProtocolRewards     StakeWeights
	NCNRewards          StakeWeights
	OperatorVaultRewards StakeWeights
}

// NewNCNRewardRouter constructs an empty NCNRewardRouter for (ncn, epoch).
func NewNCNRewardRouter(ncn NCNID, epoch uint64) *NCNRewardRouter {
	return &NCNRewardRouter{NCN: ncn, Epoch: epoch, RewardPool: NewRewardPool(MaxOperators)}
}

// RouteRewardPool implements route_reward_pool: splits the generic pool
// into protocol_rewards, ncn_rewards, and operator_vault_rewards by the
// fees slot's basis points, floor-rounding each share and assigning the
// operator_vault share whatever remains (so floor rounding never loses
// value).
func (r *NCNRewardRouter) RouteRewardPool(fees Fees) error {
	pool := r.Pool
	protocolShare, err := floorMulDiv(pool, NewStakeWeights(fees.ProtocolFeeBps), NewStakeWeights(MaxTotalFeeBps))
	if err != nil {
		return err
	}
	ncnShare, err := floorMulDiv(pool, NewStakeWeights(fees.NcnFeeBps), NewStakeWeights(MaxTotalFeeBps))
	if err != nil {
		return err
	}
	operatorVaultShare := pool
	if err := operatorVaultShare.Decrement(protocolShare); err != nil {
		return err
	}
	if err := operatorVaultShare.Decrement(ncnShare); err != nil {
		return err
	}

	if err := r.ProtocolRewards.Increment(protocolShare); err != nil {
		return err
	}
	if err := r.NCNRewards.Increment(ncnShare); err != nil {
		return err
	}
	if err := r.OperatorVaultRewards.Increment(operatorVaultShare); err != nil {
		return err
	}
	if err := r.RewardsProcessed.Increment(pool); err != nil {
		return err
	}
	r.Pool = StakeWeights{}

	ncnRewardRouterLog.Info("reward pool routed", "ncn", r.NCN.Hex(), "epoch", r.Epoch,
		"protocol_share", protocolShare.StakeWeight().String(),
		"ncn_share", ncnShare.StakeWeight().String(),
		"operator_vault_share", operatorVaultShare.StakeWeight().String())
	return nil
}

// RouteOperatorVaultRewards implements route_operator_vault_rewards:
// splits operator_vault_rewards among the operators that voted for the
// winning ballot, proportional to each operator's stake weight within
// that tally, resuming via the embedded cursor if a prior call was
// interrupted by maxIterations. Fails with ErrConsensusNotReached if bb
// has no winning ballot yet.
func (r *NCNRewardRouter) RouteOperatorVaultRewards(bb *BallotBox, maxIterations uint64) error {
	winningTally, ok := bb.WinningTally()
	if !ok {
		return ErrConsensusNotReached
	}

	if !r.CursorInProgress() {
		// A fresh call (not a resumption) seeds the pool to route from
		// operator_vault_rewards, matching route_operator_vault_rewards'
		// "T = operator_vault_rewards at entry" rule; RouteWeightedShares
		// otherwise always reads from RewardPool.Pool.
		r.Pool = r.OperatorVaultRewards
		r.OperatorVaultRewards = StakeWeights{}
	}

	weights := make([]RouteWeight, 0, len(bb.OperatorVotes()))
	for _, v := range bb.OperatorVotes() {
		if v.BallotIndex != winningTally.Index {
			continue
		}
		weights = append(weights, RouteWeight{Key: v.Operator, StakeWeight: v.StakeWeights})
	}

	if err := r.RouteWeightedShares(weights, winningTally.StakeWeights, maxIterations, r.NCN); err != nil {
		return err
	}
	// Whatever remains in Pool (zero once routing completes, nonzero
	// while paused) moves back to operator_vault_rewards so a reader
	// inspecting the router sees the expected field holding the balance
	// whether routing is mid-flight or finished.
	r.OperatorVaultRewards = r.Pool

	if r.CursorInProgress() {
		return nil
	}

	// RouteWeightedShares' residual policy key is r.NCN; fold that
	// synthetic route straight into NCNRewards (not a real distribution,
	// so RewardsProcessed is untouched), since NCNRewardRouter has no
	// per-NCN route slot distinct from the NCNRewards bucket itself.
	if residual, ok := r.TakeRoute(r.NCN); ok && !residual.IsZero() {
		if err := r.NCNRewards.Increment(residual); err != nil {
			return err
		}
	}
	return nil
}

// DistributeProtocolRewards implements distribute_protocol_rewards.
func (r *NCNRewardRouter) DistributeProtocolRewards() (StakeWeights, error) {
	return r.DistributeBucket(&r.ProtocolRewards)
}

// DistributeNCNRewards implements distribute_ncn_rewards.
func (r *NCNRewardRouter) DistributeNCNRewards() (StakeWeights, error) {
	return r.DistributeBucket(&r.NCNRewards)
}

// DistributeOperatorVaultRewardRoute implements
// distribute_operator_vault_reward_route(operator).
func (r *NCNRewardRouter) DistributeOperatorVaultRewardRoute(operator OperatorID) (StakeWeights, error) {
	return r.DistributeRoute(operator)
}
