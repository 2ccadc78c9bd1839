// epochstate.go implements EpochState, the per-epoch phase tracker and
// the close-ordering invariants that gate when an epoch's sub-accounts
// (and finally the epoch itself) may be closed. It tracks a status per
// sub-account kind rather than a single opaque flag.
package ncncore

import (
	"errors"
	"fmt"

	"github.com/ncn-network/ncn-core/pkg/log"
)

var epochStateLog = log.Default().Module("epoch_state")

// EpochState errors.
var (
	ErrEpochIsClosingDown              = errors.New("epoch_state: epoch is closing down")
	ErrCannotCloseEpochStateAccount    = errors.New("epoch_state: sub-accounts still open")
	ErrCannotCloseAccountNotEnoughEpochs = errors.New("epoch_state: not enough epochs elapsed to close")
	ErrCannotCloseAccountAlreadyClosed = errors.New("epoch_state: account already closed")
	ErrInvalidAccountStatus            = errors.New("epoch_state: invalid account status for this operation")
	ErrUnknownAccountKind               = errors.New("epoch_state: unknown account kind")
	ErrEpochStateOperatorSlotsFull       = errors.New("epoch_state: operator-scoped account slots full")
)

// AccountKind discriminates the epoch-scoped sub-accounts EpochState
// tracks the lifecycle of.
type AccountKind int

const (
	AccountWeightTable AccountKind = iota
	AccountEpochSnapshot
	AccountOperatorSnapshot
	AccountBallotBox
	AccountNCNRewardRouter
	AccountOperatorVaultRewardRouter
)

func (k AccountKind) String() string {
	switch k {
	case AccountWeightTable:
		return "weight_table"
	case AccountEpochSnapshot:
		return "epoch_snapshot"
	case AccountOperatorSnapshot:
		return "operator_snapshot"
	case AccountBallotBox:
		return "ballot_box"
	case AccountNCNRewardRouter:
		return "ncn_reward_router"
	case AccountOperatorVaultRewardRouter:
		return "operator_vault_reward_router"
	default:
		return "unknown"
	}
}

// operatorScoped reports whether kind is tracked per-operator rather
// than once per epoch.
func (k AccountKind) operatorScoped() bool {
	return k == AccountOperatorSnapshot || k == AccountOperatorVaultRewardRouter
}

// AccountStatus is the lifecycle status of one epoch-scoped sub-account.
type AccountStatus int

const (
	StatusNotInitialized AccountStatus = iota
	StatusInitialized
	StatusClosed
)

func (s AccountStatus) String() string {
	switch s {
	case StatusInitialized:
		return "initialized"
	case StatusClosed:
		return "closed"
	default:
		return "not_initialized"
	}
}

// EpochPhase is one state in the ordered EpochState machine:
// SetWeight -> Snapshot -> Vote -> PostVoteCooldown -> Distribute -> Close.
type EpochPhase int

const (
	PhaseSetWeight EpochPhase = iota
	PhaseSnapshot
	PhaseVote
	PhasePostVoteCooldown
	PhaseDistribute
	PhaseClose
)

func (p EpochPhase) String() string {
	switch p {
	case PhaseSetWeight:
		return "set_weight"
	case PhaseSnapshot:
		return "snapshot"
	case PhaseVote:
		return "vote"
	case PhasePostVoteCooldown:
		return "post_vote_cooldown"
	case PhaseDistribute:
		return "distribute"
	case PhaseClose:
		return "close"
	default:
		return "unknown"
	}
}

type operatorAccountStatus struct {
	Operator OperatorID
	Status   AccountStatus
}

func (s operatorAccountStatus) empty() bool { return IsZeroAddress(s.Operator) }

// EpochState is the per-(ncn, epoch) phase tracker and close-ordering
// gate.
type EpochState struct {
	NCN   NCNID
	Epoch uint64

	EpochsBeforeStall               uint64
	EpochsAfterConsensusBeforeClose uint64
	ValidSlotsAfterConsensus        uint64

	IsClosing bool

	weightTableStatus     AccountStatus
	epochSnapshotStatus   AccountStatus
	ballotBoxStatus       AccountStatus
	ncnRewardRouterStatus AccountStatus

	operatorSnapshotStatuses         [MaxOperators]operatorAccountStatus
	operatorVaultRewardRouterStatuses [MaxOperators]operatorAccountStatus
}

// NewEpochState constructs an EpochState for (ncn, epoch) with the given
// configuration parameters.
func NewEpochState(ncn NCNID, epoch, epochsBeforeStall, epochsAfterConsensusBeforeClose, validSlotsAfterConsensus uint64) *EpochState {
	return &EpochState{
		NCN:                              ncn,
		Epoch:                            epoch,
		EpochsBeforeStall:                epochsBeforeStall,
		EpochsAfterConsensusBeforeClose:  epochsAfterConsensusBeforeClose,
		ValidSlotsAfterConsensus:         validSlotsAfterConsensus,
	}
}

// CurrentState implements current_state: the phase is derived from the
// existence/finalization of each sub-account rather than stored
// directly, so it can never drift from the underlying data. wt, snap,
// and bb may be nil to mean "not yet initialized". epoch_of(slot) maps
// onto bb.Epoch directly, since voting for a given epoch's ballot box
// never spans an epoch boundary in this model.
func (es *EpochState) CurrentState(wt *WeightTable, snap *EpochSnapshot, bb *BallotBox, currentEpoch, currentSlot uint64) EpochPhase {
	if bb != nil && bb.ConsensusReached() {
		if currentEpoch-bb.Epoch >= es.EpochsAfterConsensusBeforeClose {
			return PhaseClose
		}
	}
	if wt == nil || !wt.Finalized() {
		return PhaseSetWeight
	}
	if snap == nil || !snap.Finalized {
		return PhaseSnapshot
	}
	if bb == nil || !bb.ConsensusReached() {
		return PhaseVote
	}
	if currentSlot < bb.SlotConsensusReached+es.ValidSlotsAfterConsensus {
		return PhasePostVoteCooldown
	}
	return PhaseDistribute
}

// requireNotClosing fails with ErrEpochIsClosingDown once is_closing has
// been set, matching the invariant that no epoch-scoped account may be
// initialized for an epoch that is already tearing down.
func (es *EpochState) requireNotClosing() error {
	if es.IsClosing {
		return fmt.Errorf("%w: ncn %s epoch %d", ErrEpochIsClosingDown, es.NCN.Hex(), es.Epoch)
	}
	return nil
}

// InitializeAccount records kind (NCN-scoped) as Initialized. Fails with
// ErrEpochIsClosingDown if the epoch is already closing.
func (es *EpochState) InitializeAccount(kind AccountKind) error {
	if kind.operatorScoped() {
		return fmt.Errorf("%w: %s requires an operator", ErrUnknownAccountKind, kind)
	}
	if err := es.requireNotClosing(); err != nil {
		return err
	}
	es.setStatus(kind, StatusInitialized)
	epochStateLog.Info("sub-account initialized", "ncn", es.NCN.Hex(), "epoch", es.Epoch, "kind", kind.String())
	return nil
}

// InitializeOperatorAccount records kind (operator-scoped) as
// Initialized for operator.
func (es *EpochState) InitializeOperatorAccount(kind AccountKind, operator OperatorID) error {
	if !kind.operatorScoped() {
		return fmt.Errorf("%w: %s is not operator-scoped", ErrUnknownAccountKind, kind)
	}
	if err := es.requireNotClosing(); err != nil {
		return err
	}
	slots := es.operatorSlotsFor(kind)
	idx, err := firstSlotFor(slots, operator)
	if err != nil {
		return err
	}
	slots[idx] = operatorAccountStatus{Operator: operator, Status: StatusInitialized}
	epochStateLog.Info("operator sub-account initialized", "ncn", es.NCN.Hex(), "epoch", es.Epoch,
		"kind", kind.String(), "operator", operator.Hex())
	return nil
}

// CloseAccount marks kind (NCN-scoped) Closed, setting IsClosing along
// the way (the first close call for any sub-account in this epoch
// starts the teardown).
func (es *EpochState) CloseAccount(kind AccountKind) error {
	if kind.operatorScoped() {
		return fmt.Errorf("%w: %s requires an operator", ErrUnknownAccountKind, kind)
	}
	status := es.getStatus(kind)
	if status == StatusClosed {
		return fmt.Errorf("%w: %s", ErrCannotCloseAccountAlreadyClosed, kind)
	}
	es.IsClosing = true
	es.setStatus(kind, StatusClosed)
	epochStateLog.Info("sub-account closed", "ncn", es.NCN.Hex(), "epoch", es.Epoch, "kind", kind.String())
	return nil
}

// CloseOperatorAccount marks kind (operator-scoped) Closed for operator.
func (es *EpochState) CloseOperatorAccount(kind AccountKind, operator OperatorID) error {
	if !kind.operatorScoped() {
		return fmt.Errorf("%w: %s is not operator-scoped", ErrUnknownAccountKind, kind)
	}
	slots := es.operatorSlotsFor(kind)
	for i := range slots {
		if slots[i].Operator == operator {
			if slots[i].Status == StatusClosed {
				return fmt.Errorf("%w: %s %s", ErrCannotCloseAccountAlreadyClosed, kind, operator.Hex())
			}
			es.IsClosing = true
			slots[i].Status = StatusClosed
			epochStateLog.Info("operator sub-account closed", "ncn", es.NCN.Hex(), "epoch", es.Epoch,
				"kind", kind.String(), "operator", operator.Hex())
			return nil
		}
	}
	return fmt.Errorf("%w: %s %s was never initialized", ErrInvalidAccountStatus, kind, operator.Hex())
}

// AccountStatusOf returns the current status of kind (NCN-scoped).
func (es *EpochState) AccountStatusOf(kind AccountKind) AccountStatus {
	return es.getStatus(kind)
}

// OperatorAccountStatusOf returns the current status of kind for
// operator (operator-scoped); StatusNotInitialized if never recorded.
func (es *EpochState) OperatorAccountStatusOf(kind AccountKind, operator OperatorID) AccountStatus {
	for _, s := range es.operatorSlotsFor(kind) {
		if s.Operator == operator {
			return s.Status
		}
	}
	return StatusNotInitialized
}

// AllSubAccountsClosed implements load_to_close's precondition: every
// sub-account that was ever initialized for this epoch must be Closed
// before EpochState itself may close.
func (es *EpochState) AllSubAccountsClosed() bool {
	for _, kind := range []AccountKind{AccountWeightTable, AccountEpochSnapshot, AccountBallotBox, AccountNCNRewardRouter} {
		if es.getStatus(kind) == StatusInitialized {
			return false
		}
	}
	for _, kind := range []AccountKind{AccountOperatorSnapshot, AccountOperatorVaultRewardRouter} {
		for _, s := range es.operatorSlotsFor(kind) {
			if !s.empty() && s.Status == StatusInitialized {
				return false
			}
		}
	}
	return true
}

// Close implements close_epoch_state_account: fails with
// ErrCannotCloseEpochStateAccount unless every sub-account is Closed;
// otherwise records the epoch's marker in markers (ErrMarkerExists if it
// is already there).
func (es *EpochState) Close(markers *EpochMarkerSet) (EpochMarker, error) {
	if !es.AllSubAccountsClosed() {
		return EpochMarker{}, fmt.Errorf("%w: ncn %s epoch %d", ErrCannotCloseEpochStateAccount, es.NCN.Hex(), es.Epoch)
	}
	marker, err := markers.Mark(es.NCN, es.Epoch)
	if err != nil {
		return EpochMarker{}, err
	}
	es.IsClosing = true
	epochStateLog.Info("epoch state closed", "ncn", es.NCN.Hex(), "epoch", es.Epoch)
	return marker, nil
}

func (es *EpochState) setStatus(kind AccountKind, status AccountStatus) {
	switch kind {
	case AccountWeightTable:
		es.weightTableStatus = status
	case AccountEpochSnapshot:
		es.epochSnapshotStatus = status
	case AccountBallotBox:
		es.ballotBoxStatus = status
	case AccountNCNRewardRouter:
		es.ncnRewardRouterStatus = status
	}
}

func (es *EpochState) getStatus(kind AccountKind) AccountStatus {
	switch kind {
	case AccountWeightTable:
		return es.weightTableStatus
	case AccountEpochSnapshot:
		return es.epochSnapshotStatus
	case AccountBallotBox:
		return es.ballotBoxStatus
	case AccountNCNRewardRouter:
		return es.ncnRewardRouterStatus
	default:
		return StatusNotInitialized
	}
}

func (es *EpochState) operatorSlotsFor(kind AccountKind) []operatorAccountStatus {
	switch kind {
	case AccountOperatorSnapshot:
		return es.operatorSnapshotStatuses[:]
	case AccountOperatorVaultRewardRouter:
		return es.operatorVaultRewardRouterStatuses[:]
	default:
		return nil
	}
}

func firstSlotFor(slots []operatorAccountStatus, operator OperatorID) (int, error) {
	firstEmpty := -1
	for i, s := range slots {
		if s.Operator == operator {
			return i, nil
		}
		if s.empty() && firstEmpty == -1 {
			firstEmpty = i
		}
	}
	if firstEmpty == -1 {
		return -1, ErrEpochStateOperatorSlotsFull
	}
	return firstEmpty, nil
}
