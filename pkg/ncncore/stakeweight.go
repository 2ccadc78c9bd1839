// stakeweight.go implements StakeWeights, the aggregable stake-weight
// value used throughout snapshotting, voting, and reward routing.
package ncncore

import (
	"errors"

	"github.com/holiman/uint256"
)

// StakeWeights errors.
var (
	ErrArithmeticOverflow  = errors.New("stakeweight: arithmetic overflow")
	ErrArithmeticUnderflow = errors.New("stakeweight: arithmetic underflow")
)

// StakeWeights is an additive monoid over a 128-bit-range unsigned
// value, backed by uint256.Int for checked arithmetic. uint256 is a
// superset range that gives us AddOverflow/SubOverflow/MulOverflow
// without hand-rolled overflow detection, and every value here stays
// well inside the 128-bit range in practice (stake * mint weight for
// realistic mint/weight magnitudes).
type StakeWeights struct {
	value uint256.Int
}

// NewStakeWeights constructs a StakeWeights from a plain uint64 stake
// value, covering the common case of values fitting in 64 bits.
func NewStakeWeights(w uint64) StakeWeights {
	var sw StakeWeights
	sw.value.SetUint64(w)
	return sw
}

// NewStakeWeightsFromBig constructs a StakeWeights from an already
// computed uint256.Int, used by the multiplication step in
// snapshot_vault_operator_delegation (total_security * mint weight).
func NewStakeWeightsFromBig(w *uint256.Int) StakeWeights {
	var sw StakeWeights
	sw.value.Set(w)
	return sw
}

// StakeWeight returns the underlying value. The returned pointer is a
// fresh copy; mutating it never affects sw.
func (sw StakeWeights) StakeWeight() *uint256.Int {
	v := sw.value
	return &v
}

// IsZero reports whether the stake weight is zero.
func (sw StakeWeights) IsZero() bool {
	return sw.value.IsZero()
}

// Cmp compares sw to other, returning -1, 0, or 1.
func (sw StakeWeights) Cmp(other StakeWeights) int {
	return sw.value.Cmp(&other.value)
}

// Increment adds other to sw in place, failing with
// ErrArithmeticOverflow on overflow.
func (sw *StakeWeights) Increment(other StakeWeights) error {
	var sum uint256.Int
	_, overflow := sum.AddOverflow(&sw.value, &other.value)
	if overflow {
		return ErrArithmeticOverflow
	}
	sw.value = sum
	return nil
}

// Decrement subtracts other from sw in place, failing with
// ErrArithmeticUnderflow if other exceeds sw.
func (sw *StakeWeights) Decrement(other StakeWeights) error {
	var diff uint256.Int
	_, underflow := diff.SubOverflow(&sw.value, &other.value)
	if underflow {
		return ErrArithmeticUnderflow
	}
	sw.value = diff
	return nil
}

// mulStakeWeights computes a*b as a StakeWeights, reporting overflow
// rather than an error value, for callers (like the reward router) that
// want to fold the check into a larger expression.
func mulStakeWeights(a, b StakeWeights) (StakeWeights, bool) {
	var product uint256.Int
	_, overflow := product.MulOverflow(&a.value, &b.value)
	if overflow {
		return StakeWeights{}, true
	}
	return NewStakeWeightsFromBig(&product), false
}

// divFloor computes floor(sw / denom). Unsigned integer division is
// already floor division; ok is false only if denom is zero.
func (sw StakeWeights) divFloor(denom StakeWeights) (StakeWeights, bool) {
	if denom.IsZero() {
		return StakeWeights{}, false
	}
	var quotient uint256.Int
	quotient.Div(&sw.value, &denom.value)
	return NewStakeWeightsFromBig(&quotient), true
}

// MulStakeWeight computes total * weight as a StakeWeights, checked for
// overflow. This implements step 3 of
// snapshot_vault_operator_delegation: stake_weight = total_security *
// mint_weight.
func MulStakeWeight(total uint64, weight StakeWeights) (StakeWeights, error) {
	var totalW uint256.Int
	totalW.SetUint64(total)

	var product uint256.Int
	_, overflow := product.MulOverflow(&totalW, &weight.value)
	if overflow {
		return StakeWeights{}, ErrArithmeticOverflow
	}
	return NewStakeWeightsFromBig(&product), nil
}
