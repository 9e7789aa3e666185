package distributor

import "github.com/fanoutorg/libfanout-go/scale"

// Engine computes a unit's scaled share of a raw reward amount. The same
// computation backs both settlement and the pending-amount query, so an
// Engine must be pure: no side effects, no state.
type Engine interface {
	// PendingAmount returns the unit's share of rawAmount for the given
	// position under the unit's current multiplier.
	PendingAmount(position, rawAmount, multiplier uint64) (uint64, error)
}

// BasisEngine is the default Engine: basis-point scaling with floor division,
// independent of position.
type BasisEngine struct{}

// Compile-time interface check.
var _ Engine = BasisEngine{}

// PendingAmount returns floor(rawAmount * multiplier / scale.Denominator).
func (BasisEngine) PendingAmount(_, rawAmount, multiplier uint64) (uint64, error) {
	return scale.Apply(rawAmount, multiplier)
}
