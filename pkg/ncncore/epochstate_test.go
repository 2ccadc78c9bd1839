package ncncore

import (
	"errors"
	"testing"
)

func TestCurrentStateProgressesThroughPhases(t *testing.T) {
	es := NewEpochState(addr(1), 0, 3, 2, 10)

	if phase := es.CurrentState(nil, nil, nil, 0, 0); phase != PhaseSetWeight {
		t.Fatalf("expected SetWeight with no weight table, got %s", phase)
	}

	r := NewVaultRegistry(addr(1))
	if err := r.RegisterStMint(addr(2), NewStakeWeights(0)); err != nil {
		t.Fatal(err)
	}
	wt := NewWeightTable(r, 0, 1)
	if phase := es.CurrentState(wt, nil, nil, 0, 0); phase != PhaseSetWeight {
		t.Fatalf("expected SetWeight with an unfinalized weight table, got %s", phase)
	}

	if err := wt.SetWeight(addr(2), NewStakeWeights(2)); err != nil {
		t.Fatal(err)
	}
	if phase := es.CurrentState(wt, nil, nil, 0, 0); phase != PhaseSnapshot {
		t.Fatalf("expected Snapshot once weight table finalized, got %s", phase)
	}

	snap, err := NewEpochSnapshot(addr(1), 0, wt, 1)
	if err != nil {
		t.Fatal(err)
	}
	if phase := es.CurrentState(wt, snap, nil, 0, 0); phase != PhaseSnapshot {
		t.Fatalf("expected Snapshot while unfinalized, got %s", phase)
	}
	NewOperatorSnapshot(snap, addr(10), 0, 0, false, 0)
	if !snap.Finalized {
		t.Fatalf("expected snapshot finalized after its only (inactive) operator finalizes")
	}

	bb := NewBallotBox(addr(1), 0, 0)
	if phase := es.CurrentState(wt, snap, bb, 0, 0); phase != PhaseVote {
		t.Fatalf("expected Vote once snapshot finalized, got %s", phase)
	}

	if err := bb.CastVote(addr(20), NewBallot(WeatherSunny), NewStakeWeights(1000), 1, 10); err != nil {
		t.Fatal(err)
	}
	if err := bb.TallyVotes(NewStakeWeights(1000), 1); err != nil {
		t.Fatal(err)
	}
	if phase := es.CurrentState(wt, snap, bb, 1, 1); phase != PhasePostVoteCooldown {
		t.Fatalf("expected PostVoteCooldown immediately after consensus, got %s", phase)
	}
	if phase := es.CurrentState(wt, snap, bb, 1, 11); phase != PhaseDistribute {
		t.Fatalf("expected Distribute after the grace window, got %s", phase)
	}
	if phase := es.CurrentState(wt, snap, bb, 3, 11); phase != PhaseClose {
		t.Fatalf("expected Close once epochs_after_consensus_before_close has elapsed, got %s", phase)
	}
}

func TestEpochIsClosingDownBlocksInitialization(t *testing.T) {
	es := NewEpochState(addr(1), 0, 3, 2, 10)
	if err := es.InitializeAccount(AccountWeightTable); err != nil {
		t.Fatal(err)
	}
	if err := es.CloseAccount(AccountWeightTable); err != nil {
		t.Fatal(err)
	}
	if !es.IsClosing {
		t.Fatalf("expected IsClosing set after first close call")
	}

	err := es.InitializeAccount(AccountEpochSnapshot)
	if !errors.Is(err, ErrEpochIsClosingDown) {
		t.Fatalf("expected ErrEpochIsClosingDown, got %v", err)
	}
}

func TestCloseAccountAlreadyClosed(t *testing.T) {
	es := NewEpochState(addr(1), 0, 3, 2, 10)
	if err := es.InitializeAccount(AccountWeightTable); err != nil {
		t.Fatal(err)
	}
	if err := es.CloseAccount(AccountWeightTable); err != nil {
		t.Fatal(err)
	}
	err := es.CloseAccount(AccountWeightTable)
	if !errors.Is(err, ErrCannotCloseAccountAlreadyClosed) {
		t.Fatalf("expected ErrCannotCloseAccountAlreadyClosed, got %v", err)
	}
}

func TestOperatorScopedAccountLifecycle(t *testing.T) {
	es := NewEpochState(addr(1), 0, 3, 2, 10)
	op := addr(10)

	if err := es.InitializeOperatorAccount(AccountOperatorSnapshot, op); err != nil {
		t.Fatal(err)
	}
	if status := es.OperatorAccountStatusOf(AccountOperatorSnapshot, op); status != StatusInitialized {
		t.Fatalf("expected Initialized, got %s", status)
	}

	if err := es.CloseOperatorAccount(AccountOperatorSnapshot, op); err != nil {
		t.Fatal(err)
	}
	if status := es.OperatorAccountStatusOf(AccountOperatorSnapshot, op); status != StatusClosed {
		t.Fatalf("expected Closed, got %s", status)
	}
}

func TestCloseOperatorAccountNeverInitialized(t *testing.T) {
	es := NewEpochState(addr(1), 0, 3, 2, 10)
	err := es.CloseOperatorAccount(AccountOperatorSnapshot, addr(99))
	if !errors.Is(err, ErrInvalidAccountStatus) {
		t.Fatalf("expected ErrInvalidAccountStatus, got %v", err)
	}
}

func TestAllSubAccountsClosedAndEpochStateClose(t *testing.T) {
	es := NewEpochState(addr(1), 0, 3, 2, 10)
	markers := NewEpochMarkerSet()

	if err := es.InitializeAccount(AccountWeightTable); err != nil {
		t.Fatal(err)
	}
	if err := es.InitializeOperatorAccount(AccountOperatorSnapshot, addr(10)); err != nil {
		t.Fatal(err)
	}

	if es.AllSubAccountsClosed() {
		t.Fatalf("expected sub-accounts still open")
	}
	_, err := es.Close(markers)
	if !errors.Is(err, ErrCannotCloseEpochStateAccount) {
		t.Fatalf("expected ErrCannotCloseEpochStateAccount, got %v", err)
	}

	if err := es.CloseAccount(AccountWeightTable); err != nil {
		t.Fatal(err)
	}
	if err := es.CloseOperatorAccount(AccountOperatorSnapshot, addr(10)); err != nil {
		t.Fatal(err)
	}

	if !es.AllSubAccountsClosed() {
		t.Fatalf("expected all sub-accounts closed")
	}
	marker, err := es.Close(markers)
	if err != nil {
		t.Fatal(err)
	}
	if marker.NCN != es.NCN || marker.Epoch != es.Epoch {
		t.Fatalf("unexpected marker: %+v", marker)
	}
	if !markers.Exists(es.NCN, es.Epoch) {
		t.Fatalf("expected marker to be recorded")
	}
}

func TestInitializeAccountRejectsOperatorScopedKind(t *testing.T) {
	es := NewEpochState(addr(1), 0, 3, 2, 10)
	err := es.InitializeAccount(AccountOperatorSnapshot)
	if !errors.Is(err, ErrUnknownAccountKind) {
		t.Fatalf("expected ErrUnknownAccountKind, got %v", err)
	}
}

func TestInitializeOperatorAccountSlotsFull(t *testing.T) {
	es := NewEpochState(addr(1), 0, 3, 2, 10)
	for i := 0; i < MaxOperators; i++ {
		// Offset by one so no operator is the zero address, which marks
		// an empty slot.
		op := addr(byte(i%250 + 1))
		op[len(op)-2] = byte(i / 250)
		if err := es.InitializeOperatorAccount(AccountOperatorSnapshot, op); err != nil {
			t.Fatalf("unexpected error at operator %d: %v", i, err)
		}
	}
	overflow := addr(255)
	overflow[len(overflow)-2] = 1
	err := es.InitializeOperatorAccount(AccountOperatorSnapshot, overflow)
	if !errors.Is(err, ErrEpochStateOperatorSlotsFull) {
		t.Fatalf("expected ErrEpochStateOperatorSlotsFull, got %v", err)
	}
}
