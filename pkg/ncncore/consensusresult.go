// consensusresult.go implements ConsensusResult, the persistent record
// of an epoch's consensus outcome, kept independent of BallotBox so later
// reward-routing stages need not retain the full vote/tally history.
package ncncore

import "errors"

// ErrConsensusResultNotReady is returned when a BallotBox has neither
// reached organic consensus nor had a tie breaker applied.
var ErrConsensusResultNotReady = errors.New("consensus_result: no winning ballot yet")

// ConsensusResult is the frozen outcome of an epoch's ballot box: the
// winning ballot, the stake weight behind it, the total stake weight it
// was measured against, whether the win came from a tie break, and the
// identity of the caller whose transaction recorded it.
type ConsensusResult struct {
	NCN   NCNID
	Epoch uint64

	WinningBallot   Ballot
	VoteWeight      StakeWeights
	TotalVoteWeight StakeWeights
	TieBreakerSet   bool
	Recorder        WalletID
	SlotRecorded    uint64
}

// NewConsensusResult captures bb's outcome against totalStakeWeight, as
// submitted by recorder (the caller whose tally_votes or
// set_tie_breaker_ballot call caused bb to reach a winning ballot).
// Fails with ErrConsensusResultNotReady if bb has no winning ballot.
func NewConsensusResult(bb *BallotBox, totalStakeWeight StakeWeights, recorder WalletID) (*ConsensusResult, error) {
	if !bb.WinningBallot.IsValid {
		return nil, ErrConsensusResultNotReady
	}
	tally, ok := bb.WinningTally()
	voteWeight := StakeWeights{}
	if ok {
		voteWeight = tally.StakeWeights
	}
	return &ConsensusResult{
		NCN:             bb.NCN,
		Epoch:           bb.Epoch,
		WinningBallot:   bb.WinningBallot,
		VoteWeight:      voteWeight,
		TotalVoteWeight: totalStakeWeight,
		TieBreakerSet:   bb.TieBreakerSet(),
		Recorder:        recorder,
		SlotRecorded:    bb.SlotConsensusReached,
	}, nil
}

// VoteShareMet reports whether VoteWeight reached the supermajority
// threshold against TotalVoteWeight (always true for organic consensus;
// may be false for a tie-broken result, which bypasses the threshold).
func (cr *ConsensusResult) VoteShareMet() bool {
	return meetsSupermajority(cr.VoteWeight, cr.TotalVoteWeight)
}
