// ballot.go implements Ballot, BallotTally, OperatorVote, and BallotBox:
// vote intake, stake-weighted tally, consensus detection, and the
// admin tie-break fallback.
package ncncore

import (
	"errors"
	"fmt"

	"github.com/ncn-network/ncn-core/pkg/log"
)

var ballotLog = log.Default().Module("ballot_box")

// BallotBox errors.
var (
	ErrBadBallot                 = errors.New("ballot_box: bad ballot")
	ErrOperatorAlreadyVoted      = errors.New("ballot_box: operator already voted")
	ErrVotingNotValid            = errors.New("ballot_box: voting window closed")
	ErrVotingNotFinalized        = errors.New("ballot_box: voting not yet finalized")
	ErrConsensusNotReached       = errors.New("ballot_box: consensus not reached")
	ErrConsensusAlreadyReached   = errors.New("ballot_box: consensus already reached")
	ErrBallotTallyFull           = errors.New("ballot_box: ballot tally full")
	ErrBallotTallyNotFound       = errors.New("ballot_box: ballot tally not found")
	ErrOperatorVotesFull         = errors.New("ballot_box: operator votes full")
	ErrTieBreakerNotInPriorVotes = errors.New("ballot_box: tie breaker ballot not among prior votes")
	ErrNoValidBallots            = errors.New("ballot_box: no valid ballots")
	ErrDenominatorIsZero         = errors.New("ballot_box: denominator is zero")
)

// WeatherStatus values. Callers needing a different vote payload need
// only swap ValidWeatherStatus, since ballot logic never inspects the
// value beyond validity.
const (
	WeatherSunny  uint8 = 0
	WeatherCloudy uint8 = 1
	WeatherRainy  uint8 = 2
)

// ValidWeatherStatus reports whether status is one of the three
// recognized outcomes.
func ValidWeatherStatus(status uint8) bool {
	return status == WeatherSunny || status == WeatherCloudy || status == WeatherRainy
}

// Ballot is the payload of a vote.
type Ballot struct {
	WeatherStatus uint8
	IsValid       bool
}

// NewBallot constructs a Ballot, setting IsValid per ValidWeatherStatus.
func NewBallot(status uint8) Ballot {
	return Ballot{WeatherStatus: status, IsValid: ValidWeatherStatus(status)}
}

// Equals reports whether two valid ballots carry the same status. Two
// invalid ballots are never considered equal.
func (b Ballot) Equals(other Ballot) bool {
	return b.IsValid && other.IsValid && b.WeatherStatus == other.WeatherStatus
}

// BallotTally aggregates the vote count and stake weight for one ballot
// within a BallotBox.
type BallotTally struct {
	Index        uint16
	Ballot       Ballot
	StakeWeights StakeWeights
	TallyCount   uint64
}

func (t BallotTally) valid() bool { return t.Ballot.IsValid }

// OperatorVote records a single operator's cast vote.
type OperatorVote struct {
	Operator     OperatorID
	SlotVoted    uint64
	StakeWeights StakeWeights
	BallotIndex  uint16
}

func (v OperatorVote) empty() bool { return v.BallotIndex == sentinelBallotIndex }

// BallotBox is the epoch-scoped vote intake, tally, and consensus
// record.
type BallotBox struct {
	NCN                  NCNID
	Epoch                uint64
	SlotCreated          uint64
	SlotConsensusReached uint64 // sentinelSlot means "not reached"
	OperatorsVoted       uint64
	UniqueBallots        uint64
	WinningBallot        Ballot
	tieBreakerSet        bool

	operatorVotes [MaxOperators]OperatorVote
	ballotTallies [MaxOperators]BallotTally
}

// NewBallotBox constructs an empty BallotBox for (ncn, epoch).
func NewBallotBox(ncn NCNID, epoch uint64, slotCreated uint64) *BallotBox {
	bb := &BallotBox{NCN: ncn, Epoch: epoch, SlotCreated: slotCreated}
	for i := range bb.operatorVotes {
		bb.operatorVotes[i].BallotIndex = sentinelBallotIndex
	}
	return bb
}

// ConsensusReached reports whether a winning ballot was set via
// TallyVotes reaching the supermajority threshold (as opposed to a tie
// breaker).
func (bb *BallotBox) ConsensusReached() bool {
	return bb.SlotConsensusReached != sentinelSlot
}

// TieBreakerSet reports whether the winning ballot was forced by an
// admin tie-break rather than organic consensus.
func (bb *BallotBox) TieBreakerSet() bool {
	return bb.tieBreakerSet && bb.SlotConsensusReached == sentinelSlot && bb.WinningBallot.IsValid
}

// IsVotingValid reports whether a vote cast at currentSlot would be
// accepted: false once a tie breaker has been applied; otherwise true
// until validSlotsAfterConsensus slots after consensus was reached (if
// ever).
func (bb *BallotBox) IsVotingValid(currentSlot uint64, validSlotsAfterConsensus uint64) bool {
	if bb.tieBreakerSet {
		return false
	}
	if !bb.ConsensusReached() {
		return true
	}
	return currentSlot <= bb.SlotConsensusReached+validSlotsAfterConsensus
}

// CastVote records operator's vote for ballot, weighted by stakeWeights.
func (bb *BallotBox) CastVote(
	operator OperatorID,
	ballot Ballot,
	stakeWeights StakeWeights,
	currentSlot uint64,
	validSlotsAfterConsensus uint64,
) error {
	if !bb.IsVotingValid(currentSlot, validSlotsAfterConsensus) {
		return ErrVotingNotValid
	}
	if !ballot.IsValid {
		return fmt.Errorf("%w: status %d", ErrBadBallot, ballot.WeatherStatus)
	}
	for i := 0; i < int(bb.OperatorsVoted); i++ {
		if bb.operatorVotes[i].Operator == operator {
			return fmt.Errorf("%w: %s", ErrOperatorAlreadyVoted, operator.Hex())
		}
	}

	tallyIdx, err := bb.findOrCreateTally(ballot)
	if err != nil {
		return err
	}
	tally := &bb.ballotTallies[tallyIdx]
	tally.TallyCount++
	if err := tally.StakeWeights.Increment(stakeWeights); err != nil {
		return err
	}

	slot, err := bb.firstEmptyVoteSlot()
	if err != nil {
		return err
	}
	bb.operatorVotes[slot] = OperatorVote{
		Operator:     operator,
		SlotVoted:    currentSlot,
		StakeWeights: stakeWeights,
		BallotIndex:  uint16(tallyIdx),
	}
	bb.OperatorsVoted++

	ballotLog.Info("vote cast", "ncn", bb.NCN.Hex(), "epoch", bb.Epoch,
		"operator", operator.Hex(), "weather_status", ballot.WeatherStatus,
		"stake_weight", stakeWeights.StakeWeight().String())
	return nil
}

// findOrCreateTally returns the index of the BallotTally matching
// ballot, creating one in the first empty slot if none exists.
func (bb *BallotBox) findOrCreateTally(ballot Ballot) (int, error) {
	firstEmpty := -1
	for i := range bb.ballotTallies {
		if !bb.ballotTallies[i].valid() {
			if firstEmpty == -1 {
				firstEmpty = i
			}
			continue
		}
		if bb.ballotTallies[i].Ballot.Equals(ballot) {
			return i, nil
		}
	}
	if firstEmpty == -1 {
		return -1, ErrBallotTallyFull
	}
	bb.ballotTallies[firstEmpty] = BallotTally{Index: uint16(firstEmpty), Ballot: ballot}
	bb.UniqueBallots++
	return firstEmpty, nil
}

func (bb *BallotBox) firstEmptyVoteSlot() (int, error) {
	for i := range bb.operatorVotes {
		if bb.operatorVotes[i].empty() {
			return i, nil
		}
	}
	return -1, ErrOperatorVotesFull
}

// TallyVotes checks whether any BallotTally's stake weight has reached
// the 2/3 supermajority of totalStakeWeight, via exact cross-
// multiplication (ballot_weight * 3 >= total_weight * 2) rather than
// floating point. Idempotent once consensus is reached.
func (bb *BallotBox) TallyVotes(totalStakeWeight StakeWeights, currentSlot uint64) error {
	if bb.ConsensusReached() {
		return nil
	}
	if totalStakeWeight.IsZero() {
		return ErrDenominatorIsZero
	}

	bestIdx := -1
	for i := range bb.ballotTallies {
		if !bb.ballotTallies[i].valid() {
			continue
		}
		if bestIdx == -1 || bb.ballotTallies[i].StakeWeights.Cmp(bb.ballotTallies[bestIdx].StakeWeights) > 0 {
			bestIdx = i
		}
	}
	if bestIdx == -1 {
		return ErrNoValidBallots
	}

	best := bb.ballotTallies[bestIdx]
	if best.StakeWeights.IsZero() {
		// Zero-stake votes alone can never reach consensus, regardless
		// of how the cross-multiplication below would evaluate on a
		// degenerate all-zero tally.
		return nil
	}
	if !meetsSupermajority(best.StakeWeights, totalStakeWeight) {
		return nil
	}

	bb.WinningBallot = best.Ballot
	bb.SlotConsensusReached = currentSlot
	ballotLog.Info("consensus reached", "ncn", bb.NCN.Hex(), "epoch", bb.Epoch,
		"weather_status", best.Ballot.WeatherStatus, "slot", currentSlot)
	return nil
}

// meetsSupermajority reports whether weight is at least
// ConsensusThresholdNum/ConsensusThresholdDen of total, using exact
// integer cross-multiplication.
func meetsSupermajority(weight, total StakeWeights) bool {
	lhs, err := MulStakeWeight(ConsensusThresholdDen, weight)
	if err != nil {
		return false
	}
	rhs, err := MulStakeWeight(ConsensusThresholdNum, total)
	if err != nil {
		return false
	}
	return lhs.Cmp(rhs) >= 0
}

// SetTieBreakerBallot forces weatherStatus as the winning ballot after
// epochsBeforeStall epochs have elapsed without organic consensus. The
// ballot must already appear among the cast tallies.
func (bb *BallotBox) SetTieBreakerBallot(weatherStatus uint8, currentEpoch uint64, epochsBeforeStall uint64) error {
	if bb.ConsensusReached() {
		return ErrConsensusAlreadyReached
	}
	if currentEpoch < bb.Epoch+epochsBeforeStall {
		return ErrVotingNotFinalized
	}
	ballot := NewBallot(weatherStatus)
	if !ballot.IsValid {
		return fmt.Errorf("%w: status %d", ErrBadBallot, weatherStatus)
	}

	found := false
	for i := range bb.ballotTallies {
		if bb.ballotTallies[i].valid() && bb.ballotTallies[i].Ballot.Equals(ballot) {
			found = true
			break
		}
	}
	if !found {
		return ErrTieBreakerNotInPriorVotes
	}

	bb.WinningBallot = ballot
	bb.tieBreakerSet = true
	ballotLog.Info("tie breaker set", "ncn", bb.NCN.Hex(), "epoch", bb.Epoch, "weather_status", weatherStatus)
	return nil
}

// WinningTally returns the BallotTally matching the winning ballot, if
// one has been set (by consensus or tie-break).
func (bb *BallotBox) WinningTally() (BallotTally, bool) {
	if !bb.WinningBallot.IsValid {
		return BallotTally{}, false
	}
	for _, t := range bb.ballotTallies {
		if t.valid() && t.Ballot.Equals(bb.WinningBallot) {
			return t, true
		}
	}
	return BallotTally{}, false
}

// OperatorVotes returns the recorded votes in slot order, skipping
// empty slots.
func (bb *BallotBox) OperatorVotes() []OperatorVote {
	out := make([]OperatorVote, 0, bb.OperatorsVoted)
	for _, v := range bb.operatorVotes {
		if !v.empty() {
			out = append(out, v)
		}
	}
	return out
}

// BallotTallies returns the valid tallies in slot order.
func (bb *BallotBox) BallotTallies() []BallotTally {
	out := make([]BallotTally, 0, bb.UniqueBallots)
	for _, t := range bb.ballotTallies {
		if t.valid() {
			out = append(out, t)
		}
	}
	return out
}
