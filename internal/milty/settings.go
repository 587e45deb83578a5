package milty

import (
	"fmt"
	"slices"

	"milty-server/internal/tile"
)

const (
	MinSliceCount = 3
	MaxSliceCount = 12

	DefaultMaxAttempts          = 1000
	DefaultMaxSliceAttempts     = 100
	DefaultMaxBalancingAttempts = 1000
)

type WormholeRules struct {
	// IncludeAlphaBeta requires at least two alpha and two beta wormholes across the set
	IncludeAlphaBeta bool `json:"include_alpha_beta" yaml:"include_alpha_beta"`
	// MaxPerSlice is 1 or 2. A value of 1 caps each slice at a single wormhole.
	MaxPerSlice int `json:"max_per_slice" yaml:"max_per_slice"`
}

type LegendaryBounds struct {
	Min int `json:"min" yaml:"min"`
	// Max of 0 leaves the set unbounded
	Max int `json:"max" yaml:"max"`
}

type PlanetSystemBounds struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

type OptimalBounds struct {
	MinResources float64 `json:"min_resources" yaml:"min_resources"`
	MinInfluence float64 `json:"min_influence" yaml:"min_influence"`
	MinTotal     float64 `json:"min_total" yaml:"min_total"`
	MaxTotal     float64 `json:"max_total" yaml:"max_total"`
}

type BalanceSettings struct {
	Enabled     bool    `json:"enabled" yaml:"enabled"`
	TargetRatio float64 `json:"target_ratio" yaml:"target_ratio"`
	MaxAttempts int     `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
}

// Settings is the configuration snapshot for a single generation run.
// It is passed by value and never modified once a run starts.
type Settings struct {
	SliceCount    int                `json:"slice_count" yaml:"slice_count"`
	Wormholes     WormholeRules      `json:"wormholes" yaml:"wormholes"`
	Legendaries   LegendaryBounds    `json:"legendaries" yaml:"legendaries"`
	PlanetSystems PlanetSystemBounds `json:"planet_systems" yaml:"planet_systems"`
	Optimal       OptimalBounds      `json:"optimal" yaml:"optimal"`
	Sources       []tile.Source      `json:"sources" yaml:"sources"`
	Balance       BalanceSettings    `json:"balance" yaml:"balance"`

	MaxAttempts      int `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
	MaxSliceAttempts int `json:"max_slice_attempts,omitempty" yaml:"max_slice_attempts,omitempty"`
}

// DefaultSources is the documented fallback applied when a request enables no source set
var DefaultSources = []tile.Source{tile.SourceBase, tile.SourceProphecyOfKings}

func DefaultSettings() Settings {
	return Settings{
		SliceCount: 6,
		Wormholes: WormholeRules{
			IncludeAlphaBeta: false,
			MaxPerSlice:      1,
		},
		Legendaries: LegendaryBounds{Min: 1, Max: 2},
		PlanetSystems: PlanetSystemBounds{
			Min: 3,
			Max: 4,
		},
		Optimal: OptimalBounds{
			MinResources: 2.5,
			MinInfluence: 4,
			MinTotal:     9,
			MaxTotal:     13,
		},
		Sources: slices.Clone(DefaultSources),
		Balance: BalanceSettings{
			Enabled:     true,
			TargetRatio: 0.8,
			MaxAttempts: DefaultMaxBalancingAttempts,
		},
		MaxAttempts:      DefaultMaxAttempts,
		MaxSliceAttempts: DefaultMaxSliceAttempts,
	}
}

// Validate rejects settings that no generation run could honor
func (s Settings) Validate() error {
	if s.SliceCount < MinSliceCount || s.SliceCount > MaxSliceCount {
		return fmt.Errorf("slice count must be between %d and %d, got %d", MinSliceCount, MaxSliceCount, s.SliceCount)
	}
	if s.Wormholes.MaxPerSlice != 1 && s.Wormholes.MaxPerSlice != 2 {
		return fmt.Errorf("wormholes per slice must be 1 or 2, got %d", s.Wormholes.MaxPerSlice)
	}
	if s.Legendaries.Min < 0 {
		return fmt.Errorf("minimum legendaries cannot be negative")
	}
	if s.Legendaries.Max > 0 && s.Legendaries.Max < s.Legendaries.Min {
		return fmt.Errorf("maximum legendaries %d is below minimum %d", s.Legendaries.Max, s.Legendaries.Min)
	}
	if s.PlanetSystems.Min < 0 || s.PlanetSystems.Max > SliceSize {
		return fmt.Errorf("planet systems per slice must be within 0..%d", SliceSize)
	}
	if s.PlanetSystems.Min > s.PlanetSystems.Max {
		return fmt.Errorf("minimum planet systems %d exceeds maximum %d", s.PlanetSystems.Min, s.PlanetSystems.Max)
	}
	if s.Optimal.MinTotal > s.Optimal.MaxTotal {
		return fmt.Errorf("minimum optimal total %.1f exceeds maximum %.1f", s.Optimal.MinTotal, s.Optimal.MaxTotal)
	}
	if s.Balance.TargetRatio < 0 || s.Balance.TargetRatio > 1 {
		return fmt.Errorf("target ratio must be between 0 and 1, got %.2f", s.Balance.TargetRatio)
	}
	if s.MaxAttempts < 0 || s.MaxSliceAttempts < 0 || s.Balance.MaxAttempts < 0 {
		return fmt.Errorf("attempt caps cannot be negative")
	}
	return nil
}

func (s Settings) maxAttempts() int {
	if s.MaxAttempts > 0 {
		return s.MaxAttempts
	}
	return DefaultMaxAttempts
}

func (s Settings) maxSliceAttempts() int {
	if s.MaxSliceAttempts > 0 {
		return s.MaxSliceAttempts
	}
	return DefaultMaxSliceAttempts
}

func (s Settings) maxBalancingAttempts() int {
	if s.Balance.MaxAttempts > 0 {
		return s.Balance.MaxAttempts
	}
	return DefaultMaxBalancingAttempts
}

// SourceEnabled reports whether systems from src may be drafted
func (s Settings) SourceEnabled(src tile.Source) bool {
	return slices.Contains(s.Sources, src)
}
