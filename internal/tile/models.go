package tile

type Source string

const (
	SourceBase            Source = "base"
	SourceProphecyOfKings Source = "pok"
)

// KnownSources lists every source set the catalog understands, in display order
var KnownSources = []Source{SourceBase, SourceProphecyOfKings}

type Wormhole string

const (
	WormholeAlpha Wormhole = "alpha"
	WormholeBeta  Wormhole = "beta"
	WormholeGamma Wormhole = "gamma"
	WormholeDelta Wormhole = "delta"
)

type Anomaly string

const (
	AnomalySupernova     Anomaly = "supernova"
	AnomalyAsteroidField Anomaly = "asteroid_field"
	AnomalyNebula        Anomaly = "nebula"
	AnomalyGravityRift   Anomaly = "gravity_rift"
)

type Trait string

const (
	TraitIndustrial Trait = "industrial"
	TraitCultural   Trait = "cultural"
	TraitHazardous  Trait = "hazardous"
	TraitFaction    Trait = "faction"
)

// MecatolRexID is the fixed id of the galaxy's center system
const MecatolRexID = "18"

type Planet struct {
	Name             string  `json:"name"`
	Resources        float64 `json:"resources"`
	Influence        float64 `json:"influence"`
	Trait            Trait   `json:"trait,omitempty"`
	TechSpecialty    string  `json:"tech_specialty,omitempty"`
	LegendaryAbility string  `json:"legendary_ability,omitempty"`
	FactionHomeworld bool    `json:"faction_homeworld,omitempty"`
}

func (p Planet) IsLegendary() bool {
	return p.LegendaryAbility != ""
}

// System is a single hex tile. Systems are shared read-only between
// the catalog and every slice that references them.
type System struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Source          Source     `json:"source"`
	Home            bool       `json:"home,omitempty"`
	Planets         []Planet   `json:"planets"`
	Wormholes       []Wormhole `json:"wormholes,omitempty"`
	IsSupernova     bool       `json:"is_supernova,omitempty"`
	IsAsteroidField bool       `json:"is_asteroid_field,omitempty"`
	IsNebula        bool       `json:"is_nebula,omitempty"`
	IsGravityRift   bool       `json:"is_gravity_rift,omitempty"`
}

func (s *System) HasPlanets() bool {
	return len(s.Planets) > 0
}

// Anomalies returns one tag per anomaly flag set on the system
func (s *System) Anomalies() []Anomaly {
	var out []Anomaly
	if s.IsSupernova {
		out = append(out, AnomalySupernova)
	}
	if s.IsAsteroidField {
		out = append(out, AnomalyAsteroidField)
	}
	if s.IsNebula {
		out = append(out, AnomalyNebula)
	}
	if s.IsGravityRift {
		out = append(out, AnomalyGravityRift)
	}
	return out
}

func (s *System) IsAnomaly() bool {
	return s.IsSupernova || s.IsAsteroidField || s.IsNebula || s.IsGravityRift
}

// IsFactionSystem reports whether any planet in the system belongs to a faction
func (s *System) IsFactionSystem() bool {
	for _, p := range s.Planets {
		if p.FactionHomeworld || p.Trait == TraitFaction {
			return true
		}
	}
	return false
}

func (s *System) HasWormhole(w Wormhole) bool {
	for _, have := range s.Wormholes {
		if have == w {
			return true
		}
	}
	return false
}
