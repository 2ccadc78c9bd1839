// ncnconfig.go implements NCNConfig, the NCN-scoped admin configuration
// record: the current admin, the starting valid epoch, and the timing
// parameters (epochs_before_stall, epochs_after_consensus_before_close,
// valid_slots_after_consensus) every epoch's EpochState is constructed
// from. It is mutated only through SetNewAdmin/SetParameters and read
// once per epoch when that epoch's accounts are initialized.
package ncncore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ncn-network/ncn-core/pkg/log"
)

var ncnConfigLog = log.Default().Module("ncn_config")

// NCNConfig errors.
var (
	ErrInvalidAdmin              = errors.New("ncn_config: admin is the zero address")
	ErrEpochsBeforeStallZero     = errors.New("ncn_config: epochs_before_stall must be >= 1")
	ErrEpochsAfterConsensusZero  = errors.New("ncn_config: epochs_after_consensus_before_close must be >= 1")
	ErrEpochBeforeStartingValid  = errors.New("ncn_config: epoch precedes starting_valid_epoch")
)

// NCNConfigParams are the mutable timing parameters set_parameters
// governs. EpochsBeforeStall and EpochsAfterConsensusBeforeClose must be
// >= 1; ValidSlotsAfterConsensus may be 0 (no grace window).
type NCNConfigParams struct {
	EpochsBeforeStall               uint64
	EpochsAfterConsensusBeforeClose uint64
	ValidSlotsAfterConsensus        uint64
	StartingValidEpoch              uint64
}

func (p NCNConfigParams) validate() error {
	if p.EpochsBeforeStall == 0 {
		return ErrEpochsBeforeStallZero
	}
	if p.EpochsAfterConsensusBeforeClose == 0 {
		return ErrEpochsAfterConsensusZero
	}
	return nil
}

// NCNConfig is the NCN-scoped admin record this system's lifecycle
// operations are parameterized by. Like VaultRegistry and FeeConfig, it
// is shared read-only by every active epoch and mutated only via its own
// admin operations, never by an epoch-scoped component.
type NCNConfig struct {
	mu sync.RWMutex

	NCN    NCNID
	Admin  WalletID
	Params NCNConfigParams
}

// NewNCNConfig implements initialize_config: constructs an NCNConfig for
// ncn with the given admin and initial parameters.
func NewNCNConfig(ncn NCNID, admin WalletID, params NCNConfigParams) (*NCNConfig, error) {
	if IsZeroAddress(admin) {
		return nil, ErrInvalidAdmin
	}
	if err := params.validate(); err != nil {
		return nil, err
	}
	return &NCNConfig{NCN: ncn, Admin: admin, Params: params}, nil
}

// SetNewAdmin implements set_new_admin.
func (c *NCNConfig) SetNewAdmin(newAdmin WalletID) error {
	if IsZeroAddress(newAdmin) {
		return ErrInvalidAdmin
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.Admin
	c.Admin = newAdmin
	ncnConfigLog.Info("admin changed", "ncn", c.NCN.Hex(), "old_admin", old.Hex(), "new_admin", newAdmin.Hex())
	return nil
}

// SetParametersParams carries the optional fields set_parameters
// accepts; a nil pointer means "leave unchanged".
type SetParametersParams struct {
	EpochsBeforeStall               *uint64
	EpochsAfterConsensusBeforeClose *uint64
	ValidSlotsAfterConsensus        *uint64
	StartingValidEpoch              *uint64
}

// SetParameters implements set_parameters: applies the provided fields
// and validates the resulting parameter set before committing it, so a
// partial update never leaves the config in an invalid state.
func (c *NCNConfig) SetParameters(params SetParametersParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.Params
	if params.EpochsBeforeStall != nil {
		next.EpochsBeforeStall = *params.EpochsBeforeStall
	}
	if params.EpochsAfterConsensusBeforeClose != nil {
		next.EpochsAfterConsensusBeforeClose = *params.EpochsAfterConsensusBeforeClose
	}
	if params.ValidSlotsAfterConsensus != nil {
		next.ValidSlotsAfterConsensus = *params.ValidSlotsAfterConsensus
	}
	if params.StartingValidEpoch != nil {
		next.StartingValidEpoch = *params.StartingValidEpoch
	}
	if err := next.validate(); err != nil {
		return err
	}

	c.Params = next
	ncnConfigLog.Info("parameters updated", "ncn", c.NCN.Hex(),
		"epochs_before_stall", next.EpochsBeforeStall,
		"epochs_after_consensus_before_close", next.EpochsAfterConsensusBeforeClose,
		"valid_slots_after_consensus", next.ValidSlotsAfterConsensus,
		"starting_valid_epoch", next.StartingValidEpoch)
	return nil
}

// Snapshot returns a copy of the current parameters, safe for a caller to
// read concurrently with an admin update.
func (c *NCNConfig) Snapshot() NCNConfigParams {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Params
}

// CheckEpochValid implements the starting_valid_epoch gate: fails with
// ErrEpochBeforeStartingValid if epoch precedes the configured floor,
// which initialize_epoch_state consults before constructing a new
// EpochState.
func (c *NCNConfig) CheckEpochValid(epoch uint64) error {
	params := c.Snapshot()
	if epoch < params.StartingValidEpoch {
		return fmt.Errorf("%w: epoch %d < starting_valid_epoch %d", ErrEpochBeforeStartingValid, epoch, params.StartingValidEpoch)
	}
	return nil
}

// NewEpochStateFromConfig implements initialize_epoch_state(epoch): reads
// c's current timing parameters and constructs the epoch's EpochState
// from them, after checking epoch against starting_valid_epoch.
func NewEpochStateFromConfig(c *NCNConfig, epoch uint64) (*EpochState, error) {
	if err := c.CheckEpochValid(epoch); err != nil {
		return nil, err
	}
	params := c.Snapshot()
	return NewEpochState(c.NCN, epoch, params.EpochsBeforeStall, params.EpochsAfterConsensusBeforeClose, params.ValidSlotsAfterConsensus), nil
}
