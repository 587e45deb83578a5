package milty

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

const (
	PresetStandard    = "standard"
	PresetCompetitive = "competitive"
	PresetCasual      = "casual"
)

// Preset is a named generation configuration. Fields missing from a preset
// file keep their default values.
type Preset struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	Settings    Settings    `json:"settings" yaml:"settings"`
	Weights     WeightTable `json:"weights" yaml:"weights"`
}

func (p *Preset) UnmarshalYAML(node *yaml.Node) error {
	type rawPreset Preset
	raw := rawPreset{
		Settings: DefaultSettings(),
		Weights:  DefaultWeights(),
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*p = Preset(raw)
	return nil
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// Presets holds the built-in presets plus any loaded from a file, in registration order
type Presets struct {
	byName map[string]Preset
	order  []string
}

func NewPresets(extra ...Preset) (*Presets, error) {
	p := &Presets{byName: make(map[string]Preset)}
	for _, preset := range append(builtinPresets(), extra...) {
		if err := p.add(preset); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// LoadPresets parses a YAML preset document
func LoadPresets(data []byte) ([]Preset, error) {
	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}
	return file.Presets, nil
}

func LoadPresetsFile(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets file %s: %w", path, err)
	}
	return LoadPresets(data)
}

// add registers preset, replacing any preset of the same name
func (p *Presets) add(preset Preset) error {
	if preset.Name == "" {
		return fmt.Errorf("preset without a name")
	}
	if err := preset.Settings.Validate(); err != nil {
		return fmt.Errorf("preset %q: %w", preset.Name, err)
	}
	if _, exists := p.byName[preset.Name]; !exists {
		p.order = append(p.order, preset.Name)
	}
	p.byName[preset.Name] = preset
	return nil
}

func (p *Presets) Get(name string) (Preset, bool) {
	preset, ok := p.byName[name]
	if ok {
		preset.Settings.Sources = slices.Clone(preset.Settings.Sources)
	}
	return preset, ok
}

func (p *Presets) List() []Preset {
	out := make([]Preset, 0, len(p.order))
	for _, name := range p.order {
		preset, _ := p.Get(name)
		out = append(out, preset)
	}
	return out
}

func builtinPresets() []Preset {
	standard := DefaultSettings()

	competitive := DefaultSettings()
	competitive.Wormholes.IncludeAlphaBeta = true
	competitive.Optimal.MinResources = 3
	competitive.Optimal.MaxTotal = 12
	competitive.Balance.TargetRatio = 0.9
	competitive.Balance.MaxAttempts = 2000

	casual := DefaultSettings()
	casual.Wormholes.MaxPerSlice = 2
	casual.Legendaries = LegendaryBounds{Min: 0}
	casual.PlanetSystems = PlanetSystemBounds{Min: 2, Max: 4}
	casual.Optimal = OptimalBounds{MinResources: 2, MinInfluence: 3, MinTotal: 8, MaxTotal: 14}
	casual.Balance.TargetRatio = 0.6

	return []Preset{
		{
			Name:        PresetStandard,
			Description: "Six slices with the usual Milty bounds",
			Settings:    standard,
			Weights:     DefaultWeights(),
		},
		{
			Name:        PresetCompetitive,
			Description: "Alpha and beta wormholes guaranteed, tighter economy, strict balancing",
			Settings:    competitive,
			Weights:     DefaultWeights(),
		},
		{
			Name:        PresetCasual,
			Description: "Looser bounds and lighter balancing",
			Settings:    casual,
			Weights:     DefaultWeights(),
		},
	}
}
