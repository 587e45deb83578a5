package milty

import (
	"encoding/json"
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"milty-server/internal/tile"
)

// Placer writes a system into a draft slot. slot is the draft position and
// position the non-home index within it.
type Placer interface {
	Place(slot, position int, system *tile.System) error
	PlaceHome(slot int, system *tile.System) error
}

// PlaceSliceSet writes slice j's i-th system into slot j, position i, and
// slice j's home system, if any, into slot j's home position
func PlaceSliceSet(set SliceSet, placer Placer) error {
	for slot, s := range set {
		if s.Home != nil {
			if err := placer.PlaceHome(slot, s.Home); err != nil {
				return fmt.Errorf("failed to place home system in slot %d: %w", slot, err)
			}
		}
		for position, sys := range s.Systems {
			if err := placer.Place(slot, position, sys); err != nil {
				return fmt.Errorf("failed to place system in slot %d position %d: %w", slot, position, err)
			}
		}
	}
	return nil
}

// DraftBoard is an in-memory Placer. It keeps the slot layout and the set
// of system ids that are now in use.
type DraftBoard struct {
	Slots [][SliceSize]string `json:"slots"`
	Homes []string            `json:"homes"`
	used  *mapset.Set[string]
}

func NewDraftBoard(slots int) *DraftBoard {
	return &DraftBoard{
		Slots: make([][SliceSize]string, slots),
		Homes: make([]string, slots),
	}
}

func (b *DraftBoard) Place(slot, position int, system *tile.System) error {
	if slot < 0 || slot >= len(b.Slots) {
		return fmt.Errorf("slot %d out of range", slot)
	}
	if position < 0 || position >= SliceSize {
		return fmt.Errorf("position %d out of range", position)
	}
	if system == nil {
		return fmt.Errorf("no system for slot %d position %d", slot, position)
	}
	return b.mark(&b.Slots[slot][position], system.ID)
}

func (b *DraftBoard) PlaceHome(slot int, system *tile.System) error {
	if slot < 0 || slot >= len(b.Homes) {
		return fmt.Errorf("slot %d out of range", slot)
	}
	if system == nil || !system.Home {
		return fmt.Errorf("slot %d needs a home system", slot)
	}
	return b.mark(&b.Homes[slot], system.ID)
}

// mark writes id into cell and moves the used entry from the previous occupant
func (b *DraftBoard) mark(cell *string, id string) error {
	if b.used == nil {
		b.rebuildUsed()
	}
	if b.used.Has(id) {
		return fmt.Errorf("system %s is already placed", id)
	}

	if *cell != "" {
		b.used.Remove(*cell)
	}
	*cell = id
	b.used.Put(id)
	return nil
}

func (b *DraftBoard) rebuildUsed() {
	used := mapset.New[string]()
	b.used = &used
	for _, slot := range b.Slots {
		for _, id := range slot {
			if id != "" {
				b.used.Put(id)
			}
		}
	}
	for _, id := range b.Homes {
		if id != "" {
			b.used.Put(id)
		}
	}
}

func (b *DraftBoard) UnmarshalJSON(data []byte) error {
	var in struct {
		Slots [][SliceSize]string `json:"slots"`
		Homes []string            `json:"homes"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	b.Slots = in.Slots
	b.Homes = make([]string, len(in.Slots))
	copy(b.Homes, in.Homes)
	b.rebuildUsed()
	return nil
}

// Used returns the ids of every placed system, suitable as alreadyPlaced for FilterCandidates
func (b *DraftBoard) Used() mapset.Set[string] {
	if b.used == nil {
		b.rebuildUsed()
	}
	return *b.used
}

func (b *DraftBoard) IsUsed(id string) bool {
	return b.Used().Has(id)
}
