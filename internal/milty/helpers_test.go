package milty

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/zyedidia/generic/mapset"

	"milty-server/internal/tile"
)

func testRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func planet(resources, influence float64) tile.Planet {
	return tile.Planet{Resources: resources, Influence: influence}
}

func planetSystem(id string, planets ...tile.Planet) *tile.System {
	return &tile.System{ID: id, Name: "System " + id, Source: tile.SourceBase, Planets: planets}
}

func emptySystem(id string) *tile.System {
	return &tile.System{ID: id, Name: "Empty " + id, Source: tile.SourceBase}
}

// mixedPool is 18 planet systems with one to three planets and 12 empty or
// anomaly systems. Every planet system is worth exactly 4 optimal, so any
// three of them make a valid slice and any four exceed the optimal maximum.
func mixedPool() []*tile.System {
	var pool []*tile.System
	for i := 0; i < 18; i++ {
		id := fmt.Sprintf("p%02d", i)
		switch i % 3 {
		case 0:
			pool = append(pool, planetSystem(id, planet(4, 4)))
		case 1:
			pool = append(pool, planetSystem(id, planet(2, 1), planet(1, 2)))
		default:
			pool = append(pool, planetSystem(id, planet(1, 0), planet(0, 2), planet(1, 1)))
		}
	}
	for i := 0; i < 12; i++ {
		sys := emptySystem(fmt.Sprintf("e%02d", i))
		switch i % 4 {
		case 1:
			sys.IsNebula = true
		case 2:
			sys.IsAsteroidField = true
		}
		pool = append(pool, sys)
	}
	return pool
}

func standardBounds() Settings {
	s := DefaultSettings()
	s.SliceCount = 6
	s.PlanetSystems = PlanetSystemBounds{Min: 3, Max: 4}
	s.Optimal = OptimalBounds{MinResources: 2.5, MinInfluence: 4, MinTotal: 9, MaxTotal: 13}
	s.Legendaries = LegendaryBounds{Min: 0}
	s.Wormholes = WormholeRules{MaxPerSlice: 1}
	return s
}

// looseSettings accepts any slice of five systems
func looseSettings(sliceCount int) Settings {
	s := DefaultSettings()
	s.SliceCount = sliceCount
	s.PlanetSystems = PlanetSystemBounds{Min: 0, Max: SliceSize}
	s.Optimal = OptimalBounds{MaxTotal: 1000}
	s.Legendaries = LegendaryBounds{}
	s.Wormholes = WormholeRules{MaxPerSlice: 2}
	return s
}

// resourceOnlyWeights scores a slice as its total resources
func resourceOnlyWeights() WeightTable {
	return WeightTable{ResourceValue: 1}
}

// sliceOf builds a slice of five single-planet systems with the given resource values
func sliceOf(prefix string, resources ...float64) *Slice {
	var systems [SliceSize]*tile.System
	for i, r := range resources {
		systems[i] = planetSystem(fmt.Sprintf("%s%d", prefix, i), planet(r, 0))
	}
	return NewSlice(systems)
}

func assertValidSet(t *testing.T, set SliceSet, settings Settings) {
	t.Helper()

	if len(set) != settings.SliceCount {
		t.Fatalf("got %d slices, want %d", len(set), settings.SliceCount)
	}

	seen := mapset.New[string]()
	for n, s := range set {
		for i, sys := range s.Systems {
			if sys == nil {
				t.Fatalf("slice %d position %d is empty", n, i)
			}
			if seen.Has(sys.ID) {
				t.Fatalf("system %s appears twice", sys.ID)
			}
			seen.Put(sys.ID)
		}
		if err := CheckSlice(s, settings); err != nil {
			t.Errorf("slice %d invalid: %v", n, err)
		}
	}
	if seen.Size() != settings.SliceCount*SliceSize {
		t.Errorf("got %d distinct systems, want %d", seen.Size(), settings.SliceCount*SliceSize)
	}
	if err := CheckSliceSet(set, settings); err != nil {
		t.Errorf("slice set invalid: %v", err)
	}
}
