package milty

import (
	"context"
	"errors"
	"testing"

	"milty-server/internal/tile"
)

func TestGenerateStandardBounds(t *testing.T) {
	settings := standardBounds()
	gen := NewGenerator(testRNG(1), nil)

	set, err := gen.Generate(context.Background(), mixedPool(), settings)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	assertValidSet(t, set, settings)
	for n, s := range set {
		if s.PlanetSystems < 3 || s.PlanetSystems > 4 {
			t.Errorf("slice %d has %d planet systems", n, s.PlanetSystems)
		}
	}
}

func TestGenerateIsUniqueAcrossSeeds(t *testing.T) {
	settings := standardBounds()
	for seed := uint64(1); seed <= 20; seed++ {
		set, err := NewGenerator(testRNG(seed), nil).Generate(context.Background(), mixedPool(), settings)
		if err != nil {
			t.Fatalf("seed %d: Generate() error = %v", seed, err)
		}
		assertValidSet(t, set, settings)
	}
}

func TestGenerateMissingWormholesExhausts(t *testing.T) {
	settings := standardBounds()
	settings.Wormholes.IncludeAlphaBeta = true
	settings.MaxAttempts = 25

	set, err := NewGenerator(testRNG(7), nil).Generate(context.Background(), mixedPool(), settings)
	if set != nil {
		t.Fatalf("Generate() returned %d slices, want none", len(set))
	}
	if !errors.Is(err, ErrGenerationExhausted) {
		t.Fatalf("Generate() error = %v, want ErrGenerationExhausted", err)
	}

	var failure *GenerationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("error %T is not a *GenerationFailure", err)
	}
	if failure.Attempts != 25 || failure.SliceCount != 6 {
		t.Errorf("failure = %+v", failure)
	}
	if !errors.Is(failure.LastReason, ErrMissingAlphaBeta) {
		t.Errorf("LastReason = %v, want ErrMissingAlphaBeta", failure.LastReason)
	}
}

func TestGenerateWithWormholes(t *testing.T) {
	pool := mixedPool()
	// Swap four empty systems for wormhole systems so alpha and beta can appear twice.
	pool[18] = withWormholes(emptySystem("a1"), tile.WormholeAlpha)
	pool[19] = withWormholes(emptySystem("a2"), tile.WormholeAlpha)
	pool[20] = withWormholes(emptySystem("b1"), tile.WormholeBeta)
	pool[21] = withWormholes(emptySystem("b2"), tile.WormholeBeta)

	settings := standardBounds()
	settings.Wormholes.IncludeAlphaBeta = true

	set, err := NewGenerator(testRNG(3), nil).Generate(context.Background(), pool, settings)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	assertValidSet(t, set, settings)
	if set.WormholeCount(tile.WormholeAlpha) != 2 || set.WormholeCount(tile.WormholeBeta) != 2 {
		t.Errorf("wormholes alpha=%d beta=%d", set.WormholeCount(tile.WormholeAlpha), set.WormholeCount(tile.WormholeBeta))
	}
}

func TestGeneratePoolTooSmall(t *testing.T) {
	tests := []struct {
		name string
		pool []*tile.System
	}{
		{"too few systems", mixedPool()[:25]},
		{"too few planet systems", append(mixedPool()[2:], emptySystem("x1"), emptySystem("x2"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGenerator(testRNG(1), nil).Generate(context.Background(), tt.pool, standardBounds())
			if !errors.Is(err, ErrPoolTooSmall) {
				t.Fatalf("Generate() error = %v, want ErrPoolTooSmall", err)
			}
			if errors.Is(err, ErrGenerationExhausted) {
				t.Error("a pool size error must not count as exhaustion")
			}
		})
	}
}

func TestGenerateStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGenerator(testRNG(1), nil).Generate(ctx, mixedPool(), standardBounds())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Generate() error = %v, want context.Canceled", err)
	}
}

func TestGenerateIsReproducible(t *testing.T) {
	settings := standardBounds()
	first, err := NewGenerator(testRNG(42), nil).Generate(context.Background(), mixedPool(), settings)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	second, err := NewGenerator(testRNG(42), nil).Generate(context.Background(), mixedPool(), settings)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	a, b := first.SystemIDs(), second.SystemIDs()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different sets: %v vs %v", a, b)
		}
	}
}
