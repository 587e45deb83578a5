// Package milty builds Milty draft slices: it filters the tile catalog into a
// candidate pool, samples constrained slices from it, scores them and swaps
// systems between slices until the weakest and strongest slice are close.
package milty

import (
	"encoding/json"
	"fmt"

	"milty-server/internal/tile"
)

// SliceSize is the number of non-home systems in every slice
const SliceSize = 5

// Stats are the aggregate properties of a slice. They are always derived
// from the slice's systems by ComputeProperties and never patched in place.
type Stats struct {
	TotalResources   float64         `json:"total_resources"`
	TotalInfluence   float64         `json:"total_influence"`
	OptimalResources float64         `json:"optimal_resources"`
	OptimalInfluence float64         `json:"optimal_influence"`
	Wormholes        []tile.Wormhole `json:"wormholes"`
	Legendaries      int             `json:"legendaries"`
	TechSpecialties  []string        `json:"tech_specialties"`
	Anomalies        []tile.Anomaly  `json:"anomalies"`
	Traits           []tile.Trait    `json:"traits"`
	PlanetSystems    int             `json:"planet_systems"`
	PlanetCount      int             `json:"planet_count"`
}

func (s Stats) OptimalTotal() float64 {
	return s.OptimalResources + s.OptimalInfluence
}

// Slice is one draftable group of systems. Home is set only by AttachHome;
// generation and balancing never touch it.
type Slice struct {
	Home    *tile.System
	Systems [SliceSize]*tile.System
	Stats
	Score float64
}

// NewSlice builds a slice and computes its stats
func NewSlice(systems [SliceSize]*tile.System) *Slice {
	s := &Slice{Systems: systems}
	s.recompute()
	return s
}

func (s *Slice) recompute() {
	s.Stats = ComputeProperties(s.Systems[:])
}

// AttachHome sets the slice's home system. It does not change the stats.
func (s *Slice) AttachHome(home *tile.System) error {
	if home == nil || !home.Home {
		return fmt.Errorf("system is not a home system")
	}
	for _, sys := range s.Systems {
		if sys != nil && sys.ID == home.ID {
			return fmt.Errorf("system %s is already in the slice", home.ID)
		}
	}
	s.Home = home
	return nil
}

// withSystem returns a copy of the slice with position i replaced
func (s *Slice) withSystem(i int, sys *tile.System) *Slice {
	systems := s.Systems
	systems[i] = sys
	out := NewSlice(systems)
	out.Home = s.Home
	return out
}

// adopt replaces the slice's systems and derived fields with those of next
func (s *Slice) adopt(next *Slice) {
	s.Systems = next.Systems
	s.Stats = next.Stats
	s.Score = next.Score
}

func (s *Slice) SystemIDs() []string {
	ids := make([]string, 0, SliceSize)
	for _, sys := range s.Systems {
		if sys != nil {
			ids = append(ids, sys.ID)
		}
	}
	return ids
}

type sliceJSON struct {
	HomeID    string         `json:"home_id,omitempty"`
	Home      *tile.System   `json:"home,omitempty"`
	SystemIDs []string       `json:"system_ids"`
	Systems   []*tile.System `json:"systems"`
	Stats
	Score float64 `json:"score"`
}

func (s *Slice) MarshalJSON() ([]byte, error) {
	out := sliceJSON{
		SystemIDs: s.SystemIDs(),
		Systems:   s.Systems[:],
		Stats:     s.Stats,
		Score:     s.Score,
	}
	if s.Home != nil {
		out.HomeID = s.Home.ID
		out.Home = s.Home
	}
	return json.Marshal(out)
}

func (s *Slice) UnmarshalJSON(data []byte) error {
	var in sliceJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	s.Home = in.Home
	s.Systems = [SliceSize]*tile.System{}
	copy(s.Systems[:], in.Systems)
	s.Stats = in.Stats
	s.Score = in.Score
	return nil
}

// SliceSet is the ordered list of slices produced by one generation run
type SliceSet []*Slice

func (set SliceSet) Scores() []float64 {
	scores := make([]float64, len(set))
	for i, s := range set {
		scores[i] = s.Score
	}
	return scores
}

// SystemIDs returns every system id in the set, slice by slice
func (set SliceSet) SystemIDs() []string {
	ids := make([]string, 0, len(set)*SliceSize)
	for _, s := range set {
		ids = append(ids, s.SystemIDs()...)
	}
	return ids
}

func (set SliceSet) TotalLegendaries() int {
	n := 0
	for _, s := range set {
		n += s.Legendaries
	}
	return n
}

func (set SliceSet) WormholeCount(w tile.Wormhole) int {
	n := 0
	for _, s := range set {
		for _, have := range s.Wormholes {
			if have == w {
				n++
			}
		}
	}
	return n
}
