package milty

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// ErrInvariantViolation means the engine produced a slice set it must never
// hand out. It signals a bug, not a user error.
var ErrInvariantViolation = errors.New("slice set invariant violated")

// CheckInvariants verifies a finished slice set before it is placed: the
// expected number of slices, five systems per slice, no system used twice,
// stats matching the systems, and every slice and set rule satisfied.
func CheckInvariants(set SliceSet, settings Settings) error {
	if len(set) != settings.SliceCount {
		return fmt.Errorf("%w: %d slices, expected %d", ErrInvariantViolation, len(set), settings.SliceCount)
	}

	seen := mapset.New[string]()
	for n, s := range set {
		if s == nil {
			return fmt.Errorf("%w: slice %d is nil", ErrInvariantViolation, n)
		}
		for i, sys := range s.Systems {
			if sys == nil {
				return fmt.Errorf("%w: slice %d position %d is empty", ErrInvariantViolation, n, i)
			}
			if seen.Has(sys.ID) {
				return fmt.Errorf("%w: system %s used more than once", ErrInvariantViolation, sys.ID)
			}
			seen.Put(sys.ID)
		}

		fresh := ComputeProperties(s.Systems[:])
		if fresh.OptimalTotal() != s.OptimalTotal() || fresh.PlanetSystems != s.PlanetSystems ||
			fresh.TotalResources != s.TotalResources || fresh.TotalInfluence != s.TotalInfluence {
			return fmt.Errorf("%w: slice %d stats are stale", ErrInvariantViolation, n)
		}

		if err := CheckSlice(s, settings); err != nil {
			return fmt.Errorf("%w: slice %d: %w", ErrInvariantViolation, n, err)
		}
	}

	if err := CheckSliceSet(set, settings); err != nil {
		return fmt.Errorf("%w: %w", ErrInvariantViolation, err)
	}
	return nil
}
