package ncncore

import (
	"errors"
	"testing"
)

func defaultParams() NCNConfigParams {
	return NCNConfigParams{
		EpochsBeforeStall:               3,
		EpochsAfterConsensusBeforeClose: 2,
		ValidSlotsAfterConsensus:        10,
		StartingValidEpoch:              0,
	}
}

func TestNewNCNConfigValidatesAdminAndParams(t *testing.T) {
	if _, err := NewNCNConfig(addr(1), ZeroAddress, defaultParams()); !errors.Is(err, ErrInvalidAdmin) {
		t.Fatalf("expected ErrInvalidAdmin, got %v", err)
	}

	bad := defaultParams()
	bad.EpochsBeforeStall = 0
	if _, err := NewNCNConfig(addr(1), addr(2), bad); !errors.Is(err, ErrEpochsBeforeStallZero) {
		t.Fatalf("expected ErrEpochsBeforeStallZero, got %v", err)
	}

	bad = defaultParams()
	bad.EpochsAfterConsensusBeforeClose = 0
	if _, err := NewNCNConfig(addr(1), addr(2), bad); !errors.Is(err, ErrEpochsAfterConsensusZero) {
		t.Fatalf("expected ErrEpochsAfterConsensusZero, got %v", err)
	}

	cfg, err := NewNCNConfig(addr(1), addr(2), defaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Admin != addr(2) {
		t.Fatalf("expected admin to be set")
	}
}

func TestNCNConfigSetNewAdmin(t *testing.T) {
	cfg, err := NewNCNConfig(addr(1), addr(2), defaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetNewAdmin(ZeroAddress); !errors.Is(err, ErrInvalidAdmin) {
		t.Fatalf("expected ErrInvalidAdmin, got %v", err)
	}
	if err := cfg.SetNewAdmin(addr(3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Admin != addr(3) {
		t.Fatalf("expected admin updated to addr(3), got %s", cfg.Admin.Hex())
	}
}

func TestNCNConfigSetParametersPartialUpdate(t *testing.T) {
	cfg, err := NewNCNConfig(addr(1), addr(2), defaultParams())
	if err != nil {
		t.Fatal(err)
	}

	newGrace := uint64(20)
	if err := cfg.SetParameters(SetParametersParams{ValidSlotsAfterConsensus: &newGrace}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := cfg.Snapshot()
	if got.ValidSlotsAfterConsensus != 20 {
		t.Fatalf("expected valid_slots_after_consensus 20, got %d", got.ValidSlotsAfterConsensus)
	}
	if got.EpochsBeforeStall != 3 {
		t.Fatalf("expected epochs_before_stall untouched at 3, got %d", got.EpochsBeforeStall)
	}
}

func TestNCNConfigSetParametersRejectsInvalidResult(t *testing.T) {
	cfg, err := NewNCNConfig(addr(1), addr(2), defaultParams())
	if err != nil {
		t.Fatal(err)
	}
	zero := uint64(0)
	if err := cfg.SetParameters(SetParametersParams{EpochsBeforeStall: &zero}); !errors.Is(err, ErrEpochsBeforeStallZero) {
		t.Fatalf("expected ErrEpochsBeforeStallZero, got %v", err)
	}
	// A rejected update must not partially apply.
	if got := cfg.Snapshot(); got.EpochsBeforeStall != 3 {
		t.Fatalf("expected epochs_before_stall unchanged at 3 after rejected update, got %d", got.EpochsBeforeStall)
	}
}

func TestNCNConfigCheckEpochValid(t *testing.T) {
	params := defaultParams()
	params.StartingValidEpoch = 5
	cfg, err := NewNCNConfig(addr(1), addr(2), params)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.CheckEpochValid(4); !errors.Is(err, ErrEpochBeforeStartingValid) {
		t.Fatalf("expected ErrEpochBeforeStartingValid, got %v", err)
	}
	if err := cfg.CheckEpochValid(5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewEpochStateFromConfig(t *testing.T) {
	params := defaultParams()
	params.StartingValidEpoch = 5
	cfg, err := NewNCNConfig(addr(1), addr(2), params)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewEpochStateFromConfig(cfg, 4); !errors.Is(err, ErrEpochBeforeStartingValid) {
		t.Fatalf("expected ErrEpochBeforeStartingValid, got %v", err)
	}

	es, err := NewEpochStateFromConfig(cfg, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if es.EpochsBeforeStall != 3 || es.EpochsAfterConsensusBeforeClose != 2 || es.ValidSlotsAfterConsensus != 10 {
		t.Fatalf("expected EpochState params copied from NCNConfig, got %+v", es)
	}
	if es.NCN != addr(1) || es.Epoch != 5 {
		t.Fatalf("expected NCN/epoch copied, got ncn=%s epoch=%d", es.NCN.Hex(), es.Epoch)
	}
}
