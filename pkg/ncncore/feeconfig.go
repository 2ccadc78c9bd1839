// feeconfig.go implements FeeConfig, the dual-slot fee schedule with
// one-epoch-delayed activation for basis-point changes.
package ncncore

import (
	"errors"
	"fmt"

	"github.com/ncn-network/ncn-core/pkg/log"
)

var feeConfigLog = log.Default().Module("fee_config")

// FeeConfig errors.
var (
	ErrFeeCapExceeded       = errors.New("fee_config: total fee bps exceeds cap")
	ErrTotalFeesCannotBeZero = errors.New("fee_config: total fee bps cannot be zero")
	ErrFeeNotActive         = errors.New("fee_config: no fee slot is active for epoch")
	ErrDefaultDaoWallet     = errors.New("fee_config: protocol fee wallet is the zero address")
	ErrDefaultNcnWallet     = errors.New("fee_config: ncn fee wallet is the zero address")
)

// MaxTotalFeeBps is the upper bound (exclusive of overflow, inclusive
// itself) on protocol_fee_bps + ncn_fee_bps.
const MaxTotalFeeBps = 10_000

// Fees is one activation-epoch-gated slot of fee basis points.
type Fees struct {
	ActivationEpoch uint64
	ProtocolFeeBps  uint64
	NcnFeeBps       uint64
}

// totalBps returns the sum of this slot's fee components.
func (f Fees) totalBps() uint64 { return f.ProtocolFeeBps + f.NcnFeeBps }

func (f Fees) validate() error {
	total := f.totalBps()
	if total == 0 {
		return ErrTotalFeesCannotBeZero
	}
	if total > MaxTotalFeeBps {
		return fmt.Errorf("%w: %d bps", ErrFeeCapExceeded, total)
	}
	return nil
}

// FeeConfig is the NCN-scoped, dual-slot fee schedule. fee1/fee2 are kept
// unexported so every read goes through CurrentFees/UpdatableFees, which
// enforce the "pick the slot with the greatest activation_epoch <= E" rule
// exactly rather than letting callers pick a slot directly.
type FeeConfig struct {
	ProtocolFeeWallet WalletID
	NCNFeeWallet      WalletID

	fee1 Fees
	fee2 Fees
}

// NewFeeConfig constructs a FeeConfig active from epoch 0 with the given
// wallets and initial protocol/ncn fee bps. protocol_fee_bps starts at
// ProtocolFeeBps; UpdateFeeConfig can later change it, ncn_fee_bps, and
// the wallets.
func NewFeeConfig(protocolWallet, ncnWallet WalletID, ncnFeeBps uint64) (*FeeConfig, error) {
	if IsZeroAddress(protocolWallet) {
		return nil, ErrDefaultDaoWallet
	}
	if IsZeroAddress(ncnWallet) {
		return nil, ErrDefaultNcnWallet
	}
	initial := Fees{ActivationEpoch: 0, ProtocolFeeBps: ProtocolFeeBps, NcnFeeBps: ncnFeeBps}
	if err := initial.validate(); err != nil {
		return nil, err
	}
	return &FeeConfig{
		ProtocolFeeWallet: protocolWallet,
		NCNFeeWallet:      ncnWallet,
		fee1:              initial,
		fee2:              initial,
	}, nil
}

// CurrentFees returns whichever slot is eligible (activation_epoch <=
// epoch) with the greatest activation_epoch.
func (fc *FeeConfig) CurrentFees(epoch uint64) (Fees, error) {
	f1ok := fc.fee1.ActivationEpoch <= epoch
	f2ok := fc.fee2.ActivationEpoch <= epoch
	switch {
	case f1ok && f2ok:
		if fc.fee1.ActivationEpoch >= fc.fee2.ActivationEpoch {
			return fc.fee1, nil
		}
		return fc.fee2, nil
	case f1ok:
		return fc.fee1, nil
	case f2ok:
		return fc.fee2, nil
	default:
		return Fees{}, ErrFeeNotActive
	}
}

// UpdatableFees returns the slot that CurrentFees did not choose -- the
// one safe to mutate without disturbing the epoch's active schedule.
func (fc *FeeConfig) UpdatableFees(epoch uint64) (*Fees, error) {
	current, err := fc.CurrentFees(epoch)
	if err != nil {
		return nil, err
	}
	if current.ActivationEpoch == fc.fee1.ActivationEpoch && current.ProtocolFeeBps == fc.fee1.ProtocolFeeBps && current.NcnFeeBps == fc.fee1.NcnFeeBps {
		return &fc.fee2, nil
	}
	return &fc.fee1, nil
}

// UpdateFeeConfigParams carries the optional fields update_fee_config
// accepts; a nil pointer means "leave unchanged".
type UpdateFeeConfigParams struct {
	NewProtocolFeeBps    *uint64
	NewProtocolFeeWallet *WalletID
	NewNCNFeeBps         *uint64
	NewNCNFeeWallet      *WalletID
}

// UpdateFeeConfig applies params effective next epoch: wallet changes
// take effect immediately; bps changes are staged into the updatable
// slot and activate at currentEpoch+1. Both the
// newly-staged slot and the still-active current slot are revalidated
// so a change is rejected rather than silently breaking next epoch.
func (fc *FeeConfig) UpdateFeeConfig(params UpdateFeeConfigParams, currentEpoch uint64) error {
	current, err := fc.CurrentFees(currentEpoch)
	if err != nil {
		return err
	}
	updatable, err := fc.UpdatableFees(currentEpoch)
	if err != nil {
		return err
	}

	next := *updatable
	if next.ActivationEpoch <= currentEpoch {
		next = current
	}

	if params.NewProtocolFeeBps != nil {
		next.ProtocolFeeBps = *params.NewProtocolFeeBps
	}
	if params.NewNCNFeeBps != nil {
		next.NcnFeeBps = *params.NewNCNFeeBps
	}

	next.ActivationEpoch = currentEpoch + 1

	if err := current.validate(); err != nil {
		return err
	}
	if err := next.validate(); err != nil {
		return err
	}

	*updatable = next
	if params.NewProtocolFeeWallet != nil {
		fc.ProtocolFeeWallet = *params.NewProtocolFeeWallet
	}
	if params.NewNCNFeeWallet != nil {
		fc.NCNFeeWallet = *params.NewNCNFeeWallet
	}

	feeConfigLog.Info("fee config updated", "current_epoch", currentEpoch,
		"next_activation_epoch", updatable.ActivationEpoch,
		"next_protocol_bps", updatable.ProtocolFeeBps, "next_ncn_bps", updatable.NcnFeeBps)
	return nil
}
