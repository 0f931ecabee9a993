// Loot table schema and loot generation for the death
// handoff. The engine only generates the roll result; item construction
// belongs to the loot collaborator.
package creature

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/duskmantle/delve/internal/game/dice"
)

// CurrencyDrop defines the range of currency a creature can drop on death.
type CurrencyDrop struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// ItemDrop defines a single item entry in a loot table with a drop chance.
type ItemDrop struct {
	ItemID string  `yaml:"item"`
	Chance float64 `yaml:"chance"`
	MinQty int     `yaml:"min_qty"`
	MaxQty int     `yaml:"max_qty"`
}

// LootTable defines the possible loot drops for a creature template.
type LootTable struct {
	Currency *CurrencyDrop `yaml:"currency"`
	Items    []ItemDrop    `yaml:"items"`
}

// Validate checks that the loot table satisfies its invariants.
//
// Postcondition: Returns nil iff all currency and item constraints hold; an
// empty loot table is valid.
func (lt *LootTable) Validate() error {
	if lt.Currency != nil {
		if lt.Currency.Min < 0 {
			return fmt.Errorf("loot table: currency min must be >= 0, got %d", lt.Currency.Min)
		}
		if lt.Currency.Min > lt.Currency.Max {
			return fmt.Errorf("loot table: currency min (%d) must be <= max (%d)", lt.Currency.Min, lt.Currency.Max)
		}
	}
	for i, item := range lt.Items {
		if item.ItemID == "" {
			return fmt.Errorf("loot table: item[%d] must have a non-empty item id", i)
		}
		if item.Chance <= 0 || item.Chance > 1.0 {
			return fmt.Errorf("loot table: item[%d] chance must be in (0, 1.0], got %f", i, item.Chance)
		}
		if item.MinQty < 1 {
			return fmt.Errorf("loot table: item[%d] min_qty must be >= 1, got %d", i, item.MinQty)
		}
		if item.MinQty > item.MaxQty {
			return fmt.Errorf("loot table: item[%d] min_qty (%d) must be <= max_qty (%d)", i, item.MinQty, item.MaxQty)
		}
	}
	return nil
}

// LootItem represents a single item instance in a loot result.
type LootItem struct {
	ItemDefID  string
	InstanceID string
	Quantity   int
}

// LootResult holds the generated loot from a single creature death.
type LootResult struct {
	Currency int
	Items    []LootItem
}

// GenerateLoot rolls loot from the given LootTable using src, so loot stays
// reproducible under a seeded source.
//
// Precondition: lt must have passed Validate(); src must be non-nil.
// Postcondition: Currency is in [Currency.Min, Currency.Max] if currency is
// set; each passing item's Quantity is in [MinQty, MaxQty].
func GenerateLoot(lt LootTable, src dice.Source) LootResult {
	var result LootResult

	if lt.Currency != nil && lt.Currency.Max > 0 {
		spread := lt.Currency.Max - lt.Currency.Min
		result.Currency = lt.Currency.Min
		if spread > 0 {
			result.Currency += src.Intn(spread + 1)
		}
	}

	for _, item := range lt.Items {
		// Chance at 1/1000 granularity keeps the roll integer-only.
		if src.Intn(1000) >= int(item.Chance*1000) {
			continue
		}
		qty := item.MinQty
		if spread := item.MaxQty - item.MinQty; spread > 0 {
			qty += src.Intn(spread + 1)
		}
		result.Items = append(result.Items, LootItem{
			ItemDefID:  item.ItemID,
			InstanceID: uuid.New().String(),
			Quantity:   qty,
		})
	}

	return result
}
