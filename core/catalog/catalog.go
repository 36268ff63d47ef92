package catalog

import (
	"fmt"
	"sort"

	"github.com/kilianp07/powermix/core/model"
)

// Catalog maps equipment identifiers to their specs. It is immutable after
// New returns and safe for concurrent use.
type Catalog struct {
	specs map[string]model.EquipmentSpec
	ids   []string
}

// New builds a catalog. Duplicate identifiers and malformed specs are rejected.
func New(specs ...model.EquipmentSpec) (*Catalog, error) {
	c := &Catalog{specs: make(map[string]model.EquipmentSpec, len(specs))}
	for _, s := range specs {
		if err := checkSpec(s); err != nil {
			return nil, err
		}
		if _, ok := c.specs[s.ID]; ok {
			return nil, fmt.Errorf("duplicate equipment %q", s.ID)
		}
		c.specs[s.ID] = s
		c.ids = append(c.ids, s.ID)
	}
	sort.Strings(c.ids)
	return c, nil
}

func checkSpec(s model.EquipmentSpec) error {
	if s.ID == "" {
		return fmt.Errorf("equipment id is required")
	}
	if s.Power < 0 || s.Cost < 0 {
		return fmt.Errorf("equipment %q: power and cost must not be negative", s.ID)
	}
	switch s.Category {
	case model.CategoryProducer:
		if s.Kind == model.KindNone {
			return fmt.Errorf("equipment %q: producer needs a kind", s.ID)
		}
		if s.CutIn < 0 || s.CutIn >= 1 {
			return fmt.Errorf("equipment %q: cut-in must be in [0,1)", s.ID)
		}
	case model.CategoryConsumer:
	case model.CategoryBattery:
		if s.BaseCapacity < 0 || s.CapacityPerHeight < 0 || s.CostPerHeight < 0 {
			return fmt.Errorf("equipment %q: battery parameters must not be negative", s.ID)
		}
	default:
		return fmt.Errorf("equipment %q: unknown category %d", s.ID, s.Category)
	}
	return nil
}

// Spec returns the spec of id or a *model.LookupError.
func (c *Catalog) Spec(id string) (model.EquipmentSpec, error) {
	s, ok := c.specs[id]
	if !ok {
		return model.EquipmentSpec{}, &model.LookupError{ID: id}
	}
	return s, nil
}

// IDs returns all identifiers, sorted.
func (c *Catalog) IDs() []string { return append([]string(nil), c.ids...) }

// Specs returns every spec sorted by identifier.
func (c *Catalog) Specs() []model.EquipmentSpec { return c.filter(func(model.EquipmentSpec) bool { return true }) }

// Producers returns producer specs sorted by identifier.
func (c *Catalog) Producers() []model.EquipmentSpec { return c.filter(model.EquipmentSpec.IsProducer) }

// Consumers returns consumer specs sorted by identifier.
func (c *Catalog) Consumers() []model.EquipmentSpec { return c.filter(model.EquipmentSpec.IsConsumer) }

// Batteries returns battery specs sorted by identifier.
func (c *Catalog) Batteries() []model.EquipmentSpec { return c.filter(model.EquipmentSpec.IsBattery) }

func (c *Catalog) filter(keep func(model.EquipmentSpec) bool) []model.EquipmentSpec {
	var out []model.EquipmentSpec
	for _, id := range c.ids {
		if s := c.specs[id]; keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks that every identifier is known, counts are not negative and
// battery heights are positive and consistent with the counts.
func (c *Catalog) Validate(cfg model.Configuration) error {
	for _, id := range cfg.IDs() {
		s, err := c.Spec(id)
		if err != nil {
			return err
		}
		n := cfg.Count(id)
		if n < 0 {
			return &model.ConfigError{ID: id, Field: "count", Value: n, Reason: "must not be negative"}
		}
		hs := cfg.RawHeights(id)
		if !s.IsBattery() {
			if len(hs) > 0 {
				return &model.ConfigError{ID: id, Field: "height", Value: hs, Reason: "only batteries have a height"}
			}
			continue
		}
		if n == 0 {
			continue
		}
		if len(hs) == 0 {
			return &model.ConfigError{ID: id, Field: "height", Value: 0, Reason: "battery height must be positive"}
		}
		if len(hs) != 1 && len(hs) != n {
			return &model.ConfigError{ID: id, Field: "height", Value: hs, Reason: fmt.Sprintf("expected 1 or %d heights", n)}
		}
		for _, h := range hs {
			if !(h > 0) {
				return &model.ConfigError{ID: id, Field: "height", Value: h, Reason: "battery height must be positive"}
			}
		}
	}
	return nil
}

// Cost sums the price of every unit in cfg. Identifiers are visited in sorted
// order so the float sum does not depend on how cfg was assembled.
func (c *Catalog) Cost(cfg model.Configuration) (float64, error) {
	if err := c.Validate(cfg); err != nil {
		return 0, err
	}
	var total float64
	for _, id := range cfg.IDs() {
		s := c.specs[id]
		n := cfg.Count(id)
		if n == 0 {
			continue
		}
		if s.IsBattery() {
			for _, h := range cfg.Heights(id) {
				total += s.UnitCost(h)
			}
			continue
		}
		total += float64(n) * s.Cost
	}
	return total, nil
}

// Capacity is the total battery storage of cfg.
func (c *Catalog) Capacity(cfg model.Configuration) (float64, error) {
	if err := c.Validate(cfg); err != nil {
		return 0, err
	}
	var total float64
	for _, id := range cfg.IDs() {
		s := c.specs[id]
		if !s.IsBattery() || cfg.Count(id) == 0 {
			continue
		}
		for _, h := range cfg.Heights(id) {
			total += s.UnitCapacity(h)
		}
	}
	return total, nil
}

// Demand is the total draw of the consumers in cfg while they work.
func (c *Catalog) Demand(cfg model.Configuration) (float64, error) {
	if err := c.Validate(cfg); err != nil {
		return 0, err
	}
	var total float64
	for _, id := range cfg.IDs() {
		if s := c.specs[id]; s.IsConsumer() {
			total += float64(cfg.Count(id)) * s.Power
		}
	}
	return total, nil
}
