package milty

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/zyedidia/generic/mapset"

	"milty-server/internal/tile"
)

var (
	// ErrGenerationExhausted is matched by every GenerationFailure
	ErrGenerationExhausted = errors.New("slice generation exhausted its attempts")
	// ErrPoolTooSmall is returned before any attempt when the pool cannot fill the slices
	ErrPoolTooSmall = errors.New("candidate pool too small")
)

// GenerationFailure reports that no valid slice set was found within the attempt budget.
// The caller should ask the user to relax constraints and retry.
type GenerationFailure struct {
	Attempts   int
	SliceCount int
	// LastReason is the rejection seen on the final attempt
	LastReason error
}

func (e *GenerationFailure) Error() string {
	msg := fmt.Sprintf("could not build %d valid slices in %d attempts; relax the constraints and retry",
		e.SliceCount, e.Attempts)
	if e.LastReason != nil {
		msg += fmt.Sprintf(" (last rejection: %v)", e.LastReason)
	}
	return msg
}

func (e *GenerationFailure) Unwrap() error {
	return ErrGenerationExhausted
}

// Generator samples slice sets from a candidate pool
type Generator struct {
	rng    *rand.Rand
	logger *slog.Logger
}

// NewGenerator returns a generator drawing from rng. A nil rng is seeded randomly.
func NewGenerator(rng *rand.Rand, logger *slog.Logger) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		rng:    rng,
		logger: logger.With("component", "milty_generator"),
	}
}

// Generate builds settings.SliceCount valid slices from candidates. Each
// attempt starts from scratch; a failed slice or a failed set-level check
// discards the whole attempt.
func (g *Generator) Generate(ctx context.Context, candidates []*tile.System, settings Settings) (SliceSet, error) {
	logger := g.logger.With("operation", "generate", "slice_count", settings.SliceCount, "candidates", len(candidates))

	if err := checkPoolSize(candidates, settings); err != nil {
		logger.Debug("Candidate pool rejected", "error", err)
		return nil, err
	}

	maxAttempts := settings.maxAttempts()
	var lastReason error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("slice generation cancelled after %d attempts: %w", attempt-1, err)
		}

		set, err := g.attempt(candidates, settings)
		if err != nil {
			lastReason = err
			continue
		}

		logger.Debug("Slice set generated", "attempt", attempt)
		return set, nil
	}

	logger.Info("Slice generation exhausted", "attempts", maxAttempts, "last_reason", lastReason)
	return nil, &GenerationFailure{
		Attempts:   maxAttempts,
		SliceCount: settings.SliceCount,
		LastReason: lastReason,
	}
}

func (g *Generator) attempt(candidates []*tile.System, settings Settings) (SliceSet, error) {
	used := mapset.New[string]()
	set := make(SliceSet, 0, settings.SliceCount)

	for slot := 0; slot < settings.SliceCount; slot++ {
		slice, err := g.generateSingleSlice(available(candidates, used), settings)
		if err != nil {
			return nil, fmt.Errorf("slice %d: %w", slot, err)
		}
		for _, sys := range slice.Systems {
			used.Put(sys.ID)
		}
		set = append(set, slice)
	}

	if err := CheckSliceSet(set, settings); err != nil {
		return nil, err
	}
	return set, nil
}

// generateSingleSlice samples up to MaxSliceAttempts slices from pool and
// returns the first one that passes CheckSlice
func (g *Generator) generateSingleSlice(pool []*tile.System, settings Settings) (*Slice, error) {
	if len(pool) < SliceSize {
		return nil, fmt.Errorf("%w: %d systems left", ErrPoolTooSmall, len(pool))
	}

	planets, empties := splitPool(pool)
	var lastErr error

	for try := 0; try < settings.maxSliceAttempts(); try++ {
		systems := g.sampleSlice(pool, planets, empties, settings.PlanetSystems)
		slice := NewSlice(systems)
		if err := CheckSlice(slice, settings); err != nil {
			lastErr = err
			continue
		}
		return slice, nil
	}

	return nil, lastErr
}

func (g *Generator) sampleSlice(pool, planets, empties []*tile.System, bounds PlanetSystemBounds) [SliceSize]*tile.System {
	target := bounds.Min
	if bounds.Max > bounds.Min {
		target += g.rng.IntN(bounds.Max - bounds.Min + 1)
	}
	target = min(target, len(planets), SliceSize)

	var systems [SliceSize]*tile.System
	chosen := mapset.New[string]()
	n := 0

	for _, sys := range g.pick(planets, target) {
		systems[n] = sys
		chosen.Put(sys.ID)
		n++
	}
	for _, sys := range g.pick(empties, SliceSize-n) {
		systems[n] = sys
		chosen.Put(sys.ID)
		n++
	}

	// Not enough empty systems: top up from whatever is left.
	if n < SliceSize {
		rest := make([]*tile.System, 0, len(pool))
		for _, sys := range pool {
			if !chosen.Has(sys.ID) {
				rest = append(rest, sys)
			}
		}
		for _, sys := range g.pick(rest, SliceSize-n) {
			systems[n] = sys
			n++
		}
	}

	return systems
}

// pick returns k distinct random elements of from without modifying it
func (g *Generator) pick(from []*tile.System, k int) []*tile.System {
	if k <= 0 || len(from) == 0 {
		return nil
	}
	k = min(k, len(from))

	idx := make([]int, len(from))
	for i := range idx {
		idx[i] = i
	}
	out := make([]*tile.System, 0, k)
	for i := 0; i < k; i++ {
		j := i + g.rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out = append(out, from[idx[i]])
	}
	return out
}

func available(candidates []*tile.System, used mapset.Set[string]) []*tile.System {
	out := make([]*tile.System, 0, len(candidates))
	for _, sys := range candidates {
		if !used.Has(sys.ID) {
			out = append(out, sys)
		}
	}
	return out
}

// checkPoolSize fails fast when no attempt could ever fill every slice
func checkPoolSize(candidates []*tile.System, settings Settings) error {
	need := settings.SliceCount * SliceSize
	if len(candidates) < need {
		return fmt.Errorf("%w: %d slices need %d systems, pool has %d",
			ErrPoolTooSmall, settings.SliceCount, need, len(candidates))
	}

	planets, _ := splitPool(candidates)
	needPlanets := settings.SliceCount * settings.PlanetSystems.Min
	if len(planets) < needPlanets {
		return fmt.Errorf("%w: %d slices need at least %d planet systems, pool has %d",
			ErrPoolTooSmall, settings.SliceCount, needPlanets, len(planets))
	}
	return nil
}
