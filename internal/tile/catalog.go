package tile

import (
	_ "embed"
	"fmt"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"
)

//go:embed data/tiles.json
var embeddedTiles []byte

// Catalog is the immutable set of systems known to the server
type Catalog struct {
	systems []*System
	byID    map[string]*System
}

// DefaultCatalog parses the tile data compiled into the binary
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(embeddedTiles)
}

// LoadCatalog parses a tile document of the form {"systems": [...]}
func LoadCatalog(data []byte) (*Catalog, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("tile catalog is not valid JSON")
	}

	root := gjson.GetBytes(data, "systems")
	if !root.IsArray() {
		return nil, fmt.Errorf("tile catalog has no systems array")
	}

	c := &Catalog{byID: make(map[string]*System)}
	var parseErr error

	root.ForEach(func(_, v gjson.Result) bool {
		sys, err := parseSystem(v)
		if err != nil {
			parseErr = err
			return false
		}
		if _, dup := c.byID[sys.ID]; dup {
			parseErr = fmt.Errorf("duplicate system id %q", sys.ID)
			return false
		}
		c.byID[sys.ID] = sys
		c.systems = append(c.systems, sys)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	sort.SliceStable(c.systems, func(i, j int) bool {
		return lessID(c.systems[i].ID, c.systems[j].ID)
	})

	return c, nil
}

func parseSystem(v gjson.Result) (*System, error) {
	id := v.Get("id").String()
	if id == "" {
		return nil, fmt.Errorf("system without id: %s", v.Raw)
	}

	sys := &System{
		ID:     id,
		Name:   v.Get("name").String(),
		Source: Source(v.Get("source").String()),
		Home:   v.Get("home").Bool(),
	}
	if sys.Source == "" {
		sys.Source = SourceBase
	}

	var wormholeErr error
	v.Get("wormholes").ForEach(func(_, w gjson.Result) bool {
		switch wh := Wormhole(w.String()); wh {
		case WormholeAlpha, WormholeBeta, WormholeGamma, WormholeDelta:
			sys.Wormholes = append(sys.Wormholes, wh)
		default:
			wormholeErr = fmt.Errorf("system %s: unknown wormhole %q", id, w.String())
			return false
		}
		return true
	})
	if wormholeErr != nil {
		return nil, wormholeErr
	}

	var anomalyErr error
	v.Get("anomalies").ForEach(func(_, a gjson.Result) bool {
		switch Anomaly(a.String()) {
		case AnomalySupernova:
			sys.IsSupernova = true
		case AnomalyAsteroidField:
			sys.IsAsteroidField = true
		case AnomalyNebula:
			sys.IsNebula = true
		case AnomalyGravityRift:
			sys.IsGravityRift = true
		default:
			anomalyErr = fmt.Errorf("system %s: unknown anomaly %q", id, a.String())
			return false
		}
		return true
	})
	if anomalyErr != nil {
		return nil, anomalyErr
	}

	sys.Planets = []Planet{}
	v.Get("planets").ForEach(func(_, p gjson.Result) bool {
		sys.Planets = append(sys.Planets, Planet{
			Name:             p.Get("name").String(),
			Resources:        p.Get("resources").Float(),
			Influence:        p.Get("influence").Float(),
			Trait:            Trait(p.Get("trait").String()),
			TechSpecialty:    p.Get("tech").String(),
			LegendaryAbility: p.Get("legendary").String(),
			FactionHomeworld: p.Get("homeworld").Bool(),
		})
		return true
	})

	return sys, nil
}

// lessID orders numeric ids numerically and everything else lexically after them
func lessID(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// All returns every system in id order. The slice is a copy; the systems are shared.
func (c *Catalog) All() []*System {
	out := make([]*System, len(c.systems))
	copy(out, c.systems)
	return out
}

func (c *Catalog) Get(id string) (*System, bool) {
	s, ok := c.byID[id]
	return s, ok
}

func (c *Catalog) BySource(src Source) []*System {
	var out []*System
	for _, s := range c.systems {
		if s.Source == src {
			out = append(out, s)
		}
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.systems)
}
