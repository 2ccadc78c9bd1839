package ncncore

// Capacity constants shared across the ballot box, snapshots, and
// reward routers.
const (
	// MaxOperators is the fixed capacity of operator-indexed arrays
	// (ballot tallies, operator votes, operator-vault reward routes).
	MaxOperators = 256

	// MaxVaults is the fixed capacity of vault-indexed arrays within a
	// single OperatorSnapshot / OperatorVaultRewardRouter.
	MaxVaults = 64

	// ProtocolFeeBps is the protocol fee, in basis points (4%), that
	// NewFeeConfig sets at genesis. FeeConfig.UpdateFeeConfig can stage a
	// different protocol fee through NewProtocolFeeBps.
	ProtocolFeeBps = 400

	// ConsensusThresholdNum and ConsensusThresholdDen express the 2/3
	// supermajority threshold as an exact fraction, compared via
	// cross-multiplication rather than floating point.
	ConsensusThresholdNum = 2
	ConsensusThresholdDen = 3

	// sentinelSlot marks "consensus not yet reached" in
	// BallotBox.SlotConsensusReached.
	sentinelSlot = 0

	// sentinelBallotIndex marks an empty OperatorVote slot.
	sentinelBallotIndex = ^uint16(0)

	// sentinelCursorIndex marks "no in-progress routing" in
	// RoutingCursor.LastIndex. sentinelCursorAmount is not used by
	// RoutingCursor: a cleared cursor's LastRewardsToProcess is zero.
	sentinelCursorIndex  = ^uint16(0)
	sentinelCursorAmount = ^uint64(0)
)
