package milty

import "time"

// Draft is one persisted generation result
type Draft struct {
	ID        string         `json:"id"`
	Preset    string         `json:"preset,omitempty"`
	Seed      int64          `json:"seed"`
	Settings  Settings       `json:"settings"`
	Weights   WeightTable    `json:"weights"`
	Slices    SliceSet       `json:"slices"`
	Balance   *BalanceReport `json:"balance,omitempty"`
	Board     *DraftBoard    `json:"board"`
	Warnings  []string       `json:"warnings,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Ratio is the final min/max score ratio of the draft's slices
func (d *Draft) Ratio() float64 {
	if d.Balance != nil {
		return d.Balance.Ratio
	}
	return BalanceRatio(d.Slices.Scores())
}

func (d *Draft) Balanced() bool {
	return d.Balance != nil && d.Balance.Reached
}

// DraftSummary is the list view of a draft
type DraftSummary struct {
	ID         string    `json:"id"`
	Preset     string    `json:"preset,omitempty"`
	SliceCount int       `json:"slice_count"`
	Seed       int64     `json:"seed"`
	Ratio      float64   `json:"ratio"`
	Balanced   bool      `json:"balanced"`
	CreatedAt  time.Time `json:"created_at"`
}

// GenerateRequest asks for a new draft. Settings and Weights, when present,
// replace the preset's values wholesale.
type GenerateRequest struct {
	Preset   string          `json:"preset,omitempty"`
	Settings *Settings       `json:"settings,omitempty"`
	Weights  *WeightTable    `json:"weights,omitempty"`
	Options  *BalanceOptions `json:"balance_options,omitempty"`
	// Placed lists system ids already on the map
	Placed []string `json:"placed,omitempty"`
	Seed   *int64   `json:"seed,omitempty"`
}

// Defaults is what a client needs to build its own settings form
type Defaults struct {
	Settings Settings       `json:"settings"`
	Weights  WeightTable    `json:"weights"`
	Options  BalanceOptions `json:"balance_options"`
}
