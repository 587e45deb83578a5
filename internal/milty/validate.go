package milty

import (
	"errors"
	"fmt"

	"milty-server/internal/tile"
)

// Reasons a slice or slice set is rejected. CheckSlice and CheckSliceSet wrap
// these so callers can log the specific bound that failed.
var (
	ErrPlanetSystemCount  = errors.New("planet system count out of bounds")
	ErrOptimalResources   = errors.New("optimal resources below minimum")
	ErrOptimalInfluence   = errors.New("optimal influence below minimum")
	ErrOptimalTotal       = errors.New("optimal total out of bounds")
	ErrTooManyWormholes   = errors.New("too many wormholes in slice")
	ErrDuplicateWormhole  = errors.New("duplicate wormhole type in slice")
	ErrTooFewLegendaries  = errors.New("too few legendary planets")
	ErrTooManyLegendaries = errors.New("too many legendary planets")
	ErrMissingAlphaBeta   = errors.New("alpha and beta wormholes not distributed")
)

// minWormholesOfType is how many alpha and beta wormholes IncludeAlphaBeta demands
const minWormholesOfType = 2

// CheckSlice returns nil when the slice satisfies every per-slice bound
func CheckSlice(s *Slice, settings Settings) error {
	bounds := settings.PlanetSystems
	if s.PlanetSystems < bounds.Min || s.PlanetSystems > bounds.Max {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrPlanetSystemCount, s.PlanetSystems, bounds.Min, bounds.Max)
	}

	// A slice of only empty and anomaly systems has no economy to bound.
	if s.PlanetSystems > 0 {
		opt := settings.Optimal
		if s.OptimalResources < opt.MinResources {
			return fmt.Errorf("%w: %.1f < %.1f", ErrOptimalResources, s.OptimalResources, opt.MinResources)
		}
		if s.OptimalInfluence < opt.MinInfluence {
			return fmt.Errorf("%w: %.1f < %.1f", ErrOptimalInfluence, s.OptimalInfluence, opt.MinInfluence)
		}
		total := s.OptimalTotal()
		if total < opt.MinTotal || total > opt.MaxTotal {
			return fmt.Errorf("%w: %.1f not in [%.1f, %.1f]", ErrOptimalTotal, total, opt.MinTotal, opt.MaxTotal)
		}
	}

	if settings.Wormholes.MaxPerSlice == 1 && len(s.Wormholes) > 1 {
		return fmt.Errorf("%w: %d", ErrTooManyWormholes, len(s.Wormholes))
	}

	seen := make(map[tile.Wormhole]bool, len(s.Wormholes))
	for _, w := range s.Wormholes {
		if seen[w] {
			return fmt.Errorf("%w: %s", ErrDuplicateWormhole, w)
		}
		seen[w] = true
	}

	return nil
}

func ValidateSlice(s *Slice, settings Settings) bool {
	return CheckSlice(s, settings) == nil
}

// CheckSliceSet applies the set-level rules. Per-slice rules are not re-checked here.
func CheckSliceSet(set SliceSet, settings Settings) error {
	legendaries := set.TotalLegendaries()
	if legendaries < settings.Legendaries.Min {
		return fmt.Errorf("%w: %d < %d", ErrTooFewLegendaries, legendaries, settings.Legendaries.Min)
	}
	if settings.Legendaries.Max > 0 && legendaries > settings.Legendaries.Max {
		return fmt.Errorf("%w: %d > %d", ErrTooManyLegendaries, legendaries, settings.Legendaries.Max)
	}

	if settings.Wormholes.IncludeAlphaBeta {
		alpha := set.WormholeCount(tile.WormholeAlpha)
		beta := set.WormholeCount(tile.WormholeBeta)
		if alpha < minWormholesOfType || beta < minWormholesOfType {
			return fmt.Errorf("%w: alpha=%d beta=%d", ErrMissingAlphaBeta, alpha, beta)
		}
	}

	return nil
}

func ValidateSliceSet(set SliceSet, settings Settings) bool {
	return CheckSliceSet(set, settings) == nil
}
