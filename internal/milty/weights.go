package milty

import "milty-server/internal/tile"

// WeightTable maps slice features to score weights. Negative weights are penalties.
type WeightTable struct {
	ResourceValue              float64 `json:"resourceValue" yaml:"resourceValue"`
	InfluenceValue             float64 `json:"influenceValue" yaml:"influenceValue"`
	LegendaryPlanet            float64 `json:"legendaryPlanet" yaml:"legendaryPlanet"`
	TechSpecialty              float64 `json:"techSpecialty" yaml:"techSpecialty"`
	Wormhole                   float64 `json:"wormhole" yaml:"wormhole"`
	Industrial                 float64 `json:"industrial" yaml:"industrial"`
	Cultural                   float64 `json:"cultural" yaml:"cultural"`
	Hazardous                  float64 `json:"hazardous" yaml:"hazardous"`
	Supernova                  float64 `json:"supernova" yaml:"supernova"`
	AsteroidField              float64 `json:"asteroidField" yaml:"asteroidField"`
	Nebula                     float64 `json:"nebula" yaml:"nebula"`
	GravityRift                float64 `json:"gravityRift" yaml:"gravityRift"`
	ResourceInfluenceImbalance float64 `json:"resourceInfluenceImbalance" yaml:"resourceInfluenceImbalance"`
	LowPlanetCount             float64 `json:"lowPlanetCount" yaml:"lowPlanetCount"`
	HighPlanetCount            float64 `json:"highPlanetCount" yaml:"highPlanetCount"`
}

func DefaultWeights() WeightTable {
	return WeightTable{
		ResourceValue:              1.0,
		InfluenceValue:             0.8,
		LegendaryPlanet:            2.0,
		TechSpecialty:              0.5,
		Wormhole:                   0.75,
		Industrial:                 0.1,
		Cultural:                   0.1,
		Hazardous:                  0.1,
		Supernova:                  -0.5,
		AsteroidField:              -0.25,
		Nebula:                     -0.25,
		GravityRift:                -0.5,
		ResourceInfluenceImbalance: -0.2,
		LowPlanetCount:             -1.0,
		HighPlanetCount:            -0.5,
	}
}

func (w WeightTable) anomaly(a tile.Anomaly) float64 {
	switch a {
	case tile.AnomalySupernova:
		return w.Supernova
	case tile.AnomalyAsteroidField:
		return w.AsteroidField
	case tile.AnomalyNebula:
		return w.Nebula
	case tile.AnomalyGravityRift:
		return w.GravityRift
	default:
		return 0
	}
}

func (w WeightTable) trait(t tile.Trait) float64 {
	switch t {
	case tile.TraitIndustrial:
		return w.Industrial
	case tile.TraitCultural:
		return w.Cultural
	case tile.TraitHazardous:
		return w.Hazardous
	default:
		return 0
	}
}
