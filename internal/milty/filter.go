package milty

import (
	"github.com/zyedidia/generic/mapset"

	"milty-server/internal/tile"
)

// FilterCandidates returns the systems eligible for slice generation.
// Excluded, in order: disabled source sets, home systems and Mecatol Rex,
// systems already placed on the map, and systems holding a faction planet.
// Empty, anomaly and wormhole-only systems stay in the pool.
// The result is empty when no source set is enabled.
func FilterCandidates(all []*tile.System, settings Settings, alreadyPlaced mapset.Set[string]) []*tile.System {
	if len(settings.Sources) == 0 {
		return nil
	}

	var out []*tile.System
	for _, sys := range all {
		if sys == nil || !settings.SourceEnabled(sys.Source) {
			continue
		}
		if sys.Home || sys.ID == tile.MecatolRexID {
			continue
		}
		if alreadyPlaced.Has(sys.ID) {
			continue
		}
		if sys.IsFactionSystem() {
			continue
		}
		out = append(out, sys)
	}
	return out
}

// splitPool separates planet-bearing systems from empty and anomaly systems
func splitPool(pool []*tile.System) (planets, empties []*tile.System) {
	for _, sys := range pool {
		if sys.HasPlanets() {
			planets = append(planets, sys)
		} else {
			empties = append(empties, sys)
		}
	}
	return planets, empties
}
