package milty

import "milty-server/internal/tile"

// ComputeProperties derives a slice's stats from its systems. Nil entries are skipped.
//
// Optimal values follow the Milty convention: a planet counts toward whichever
// of resources or influence is higher, and a tie splits the value evenly.
func ComputeProperties(systems []*tile.System) Stats {
	var st Stats

	for _, sys := range systems {
		if sys == nil {
			continue
		}

		if sys.HasPlanets() {
			st.PlanetSystems++
		}
		st.Wormholes = append(st.Wormholes, sys.Wormholes...)
		st.Anomalies = append(st.Anomalies, sys.Anomalies()...)

		for _, p := range sys.Planets {
			st.PlanetCount++
			st.TotalResources += p.Resources
			st.TotalInfluence += p.Influence

			r, i := optimalValue(p)
			st.OptimalResources += r
			st.OptimalInfluence += i

			if p.IsLegendary() {
				st.Legendaries++
			}
			if p.TechSpecialty != "" {
				st.TechSpecialties = append(st.TechSpecialties, p.TechSpecialty)
			}
			if p.Trait != "" && p.Trait != tile.TraitFaction {
				st.Traits = append(st.Traits, p.Trait)
			}
		}
	}

	return st
}

func optimalValue(p tile.Planet) (resources, influence float64) {
	switch {
	case p.Resources == p.Influence && p.Resources > 0:
		half := p.Resources / 2
		return half, half
	case p.Resources > p.Influence:
		return p.Resources, 0
	case p.Influence > p.Resources:
		return 0, p.Influence
	default:
		return 0, 0
	}
}
