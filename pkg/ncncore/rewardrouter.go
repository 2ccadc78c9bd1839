// rewardrouter.go implements a generic, resumable reward-routing
// primitive shared by NCNRewardRouter and OperatorVaultRewardRouter. Both
// routers move a reward pool out to a set of per-route buckets in
// proportion to a stake weight, using a persistent cursor so the work can
// be split across multiple calls bounded by max_iterations, and send
// whatever floor-rounding residual is left to a policy-chosen destination.
package ncncore

import (
	"errors"
	"fmt"

	"github.com/ncn-network/ncn-core/pkg/log"
)

var rewardRouterLog = log.Default().Module("reward_router")

// Reward router errors.
var (
	ErrRewardRouteListFull    = errors.New("reward_router: route list full")
	ErrRewardRouteNotFound    = errors.New("reward_router: route not found")
	ErrRewardArithmeticFloor  = errors.New("reward_router: floor division error")
	ErrRewardBalanceUnderflow = errors.New("reward_router: incoming reward balance underflow")
)

// RewardRoute is one route-key's accumulated, undistributed reward share.
type RewardRoute struct {
	Key     common20
	Rewards StakeWeights
}

func (r RewardRoute) empty() bool { return IsZeroAddress(r.Key) }

// common20 aliases the 20-byte identity type routes are keyed by
// (operator or vault), so the primitive stays identity-type agnostic
// while reusing the same zero-value sentinel every other component uses.
type common20 = WalletID

// RoutingCursor is the persistent resumption state for a bounded
// route_*_rewards call. An empty cursor (LastIndex == sentinel) means no
// routing is in progress.
type RoutingCursor struct {
	LastIndex             uint16
	LastRewardsToProcess  StakeWeights
	inProgress            bool
}

func newRoutingCursor() RoutingCursor {
	return RoutingCursor{LastIndex: sentinelCursorIndex}
}

// InProgress reports whether a prior call was interrupted by
// max_iterations and left work for a resuming call to pick up.
func (c RoutingCursor) InProgress() bool { return c.inProgress }

// RouteWeight is one (route key, stake weight) pair to be routed over —
// an OperatorVote filtered to the winning tally for NCNRewardRouter, or a
// VaultOperatorStakeWeight for OperatorVaultRewardRouter.
type RouteWeight struct {
	Key         common20
	StakeWeight StakeWeights
}

// RewardPool is the generic routing primitive embedded by both routers.
// It owns the pool awaiting distribution, the fixed-capacity route list,
// and the resumable cursor; it has no notion of "protocol" or "ncn"
// share, leaving fee-split semantics to the embedding router. The route
// list's capacity is fixed at construction by each embedding router to
// match its own spec.md data-model array size (NCNRewardRouter's
// operator_vault_reward_routes[256] vs. OperatorVaultRewardRouter's
// vault_reward_routes[64]) rather than sharing one hardcoded size.
type RewardPool struct {
	Pool             StakeWeights
	RewardsProcessed StakeWeights
	TotalRewards     StakeWeights

	routes     []RewardRoute
	routeCount int
	cursor     RoutingCursor
}

// NewRewardPool constructs an empty RewardPool with its cursor cleared
// and its route list fixed at routeCapacity slots.
func NewRewardPool(routeCapacity int) RewardPool {
	return RewardPool{routes: make([]RewardRoute, routeCapacity), cursor: newRoutingCursor()}
}

// RouteIncomingRewards implements route_incoming_rewards: the delta
// between the account's current balance and what the router already
// knows about (pool + already-routed-but-undistributed) is newly
// arrived reward income, net of the rent the account must retain.
func (rp *RewardPool) RouteIncomingRewards(rentCost, accountBalance uint64) error {
	accounted := rp.Pool.StakeWeight().Uint64() + rp.RewardsProcessed.StakeWeight().Uint64()
	if accountBalance < accounted+rentCost {
		return fmt.Errorf("%w: balance %d below accounted %d + rent %d", ErrRewardBalanceUnderflow, accountBalance, accounted, rentCost)
	}
	incoming := accountBalance - accounted - rentCost
	incomingWeight := NewStakeWeights(incoming)
	if err := rp.Pool.Increment(incomingWeight); err != nil {
		return err
	}
	if err := rp.TotalRewards.Increment(incomingWeight); err != nil {
		return err
	}
	return nil
}

// findOrCreateRoute returns the index of the RewardRoute for key,
// creating one in the first empty slot if none exists.
func (rp *RewardPool) findOrCreateRoute(key common20) (int, error) {
	firstEmpty := -1
	for i := 0; i < len(rp.routes); i++ {
		if rp.routes[i].empty() {
			if firstEmpty == -1 {
				firstEmpty = i
			}
			continue
		}
		if rp.routes[i].Key == key {
			return i, nil
		}
	}
	if firstEmpty == -1 {
		return -1, ErrRewardRouteListFull
	}
	rp.routes[firstEmpty] = RewardRoute{Key: key}
	rp.routeCount++
	return firstEmpty, nil
}

// RouteWeightedShares is the shared body of route_operator_vault_rewards
// and route_reward_pool (operator level): it floor-divides T * weight / W
// for each entry in weights (resuming from the cursor if one is
// in-progress), moves each share from the pool into that key's route,
// and routes the residual to residualRoute once exhausted.
//
// total is the denominator (winning tally stake weight, or operator
// snapshot stake weight); weights must be in a stable, deterministic
// order (slot order for votes, registration order for vault weights).
func (rp *RewardPool) RouteWeightedShares(
	weights []RouteWeight,
	total StakeWeights,
	maxIterations uint64,
	residualRoute common20,
) error {
	startIdx := 0
	toProcess := rp.Pool
	if rp.cursor.inProgress {
		startIdx = int(rp.cursor.LastIndex)
		toProcess = rp.cursor.LastRewardsToProcess
	}

	iterations := uint64(0)
	i := startIdx
	for ; i < len(weights); i++ {
		if iterations >= maxIterations {
			rp.cursor = RoutingCursor{LastIndex: uint16(i), LastRewardsToProcess: toProcess, inProgress: true}
			rewardRouterLog.Info("routing paused", "resume_index", i, "iterations", iterations)
			return nil
		}

		w := weights[i]
		share, err := floorMulDiv(toProcess, w.StakeWeight, total)
		if err != nil {
			return err
		}
		if !share.IsZero() {
			routeIdx, err := rp.findOrCreateRoute(w.Key)
			if err != nil {
				return err
			}
			if err := rp.Pool.Decrement(share); err != nil {
				return err
			}
			if err := rp.routes[routeIdx].Rewards.Increment(share); err != nil {
				return err
			}
		}
		iterations++
	}

	rp.cursor = newRoutingCursor()

	if !rp.Pool.IsZero() {
		residualIdx, err := rp.findOrCreateRoute(residualRoute)
		if err != nil {
			return err
		}
		residual := rp.Pool
		if err := rp.routes[residualIdx].Rewards.Increment(residual); err != nil {
			return err
		}
		rp.Pool = StakeWeights{}
		rewardRouterLog.Info("routing residual swept", "residual", residual.StakeWeight().String())
	}
	return nil
}

// floorMulDiv computes floor(total * numeratorWeight / denominator)
// using 256-bit-range checked arithmetic.
func floorMulDiv(total, numeratorWeight, denominator StakeWeights) (StakeWeights, error) {
	if denominator.IsZero() {
		return StakeWeights{}, ErrDenominatorIsZero
	}
	product, overflow := mulStakeWeights(total, numeratorWeight)
	if overflow {
		return StakeWeights{}, ErrArithmeticOverflow
	}
	quotient, ok := product.divFloor(denominator)
	if !ok {
		return StakeWeights{}, ErrRewardArithmeticFloor
	}
	return quotient, nil
}

// TakeRoute zeros and returns the accumulated reward for key without
// touching RewardsProcessed, for callers folding a residual route
// straight into another still-undistributed bucket (e.g. the NCN-level
// router's operator_vault residual landing in ncn_rewards) rather than
// actually distributing it to an external wallet.
func (rp *RewardPool) TakeRoute(key common20) (StakeWeights, bool) {
	for i := 0; i < len(rp.routes); i++ {
		if rp.routes[i].empty() || rp.routes[i].Key != key {
			continue
		}
		amount := rp.routes[i].Rewards
		rp.routes[i].Rewards = StakeWeights{}
		return amount, true
	}
	return StakeWeights{}, false
}

// DistributeRoute returns and zeros the accumulated reward for key,
// decrementing RewardsProcessed by the same amount. ErrRewardRouteNotFound
// if key has never been routed to.
func (rp *RewardPool) DistributeRoute(key common20) (StakeWeights, error) {
	for i := 0; i < len(rp.routes); i++ {
		if rp.routes[i].empty() || rp.routes[i].Key != key {
			continue
		}
		amount := rp.routes[i].Rewards
		rp.routes[i].Rewards = StakeWeights{}
		if err := rp.RewardsProcessed.Decrement(amount); err != nil {
			return StakeWeights{}, err
		}
		return amount, nil
	}
	return StakeWeights{}, fmt.Errorf("%w: %s", ErrRewardRouteNotFound, key.Hex())
}

// DistributeBucket returns and zeros bucket (protocol_rewards,
// ncn_rewards, or operator_rewards in the embedding router), decrementing
// RewardsProcessed by the same amount.
func (rp *RewardPool) DistributeBucket(bucket *StakeWeights) (StakeWeights, error) {
	amount := *bucket
	*bucket = StakeWeights{}
	if err := rp.RewardsProcessed.Decrement(amount); err != nil {
		return StakeWeights{}, err
	}
	return amount, nil
}

// Routes returns the populated routes, in slot order.
func (rp *RewardPool) Routes() []RewardRoute {
	out := make([]RewardRoute, 0, rp.routeCount)
	for _, r := range rp.routes {
		if !r.empty() {
			out = append(out, r)
		}
	}
	return out
}

// CursorInProgress reports whether a routing call was interrupted and
// left work for a resuming call.
func (rp *RewardPool) CursorInProgress() bool { return rp.cursor.InProgress() }
