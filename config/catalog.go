package config

import (
	"github.com/kilianp07/powermix/core/catalog"
	"github.com/kilianp07/powermix/core/model"
)

// SpecConfig declares an equipment type in addition to the built-in table.
type SpecConfig struct {
	ID                string  `json:"id"`
	Category          string  `json:"category"`
	Kind              string  `json:"kind"`
	Power             float64 `json:"power"`
	Cost              float64 `json:"cost"`
	CutIn             float64 `json:"cut_in"`
	BaseCapacity      float64 `json:"base_capacity"`
	CapacityPerHeight float64 `json:"capacity_per_height"`
	CostPerHeight     float64 `json:"cost_per_height"`
}

// Spec parses the textual category and kind.
func (s SpecConfig) Spec() (model.EquipmentSpec, error) {
	cat, ok := model.ParseCategory(s.Category)
	if !ok {
		return model.EquipmentSpec{}, &model.ConfigError{ID: s.ID, Field: "category", Value: s.Category, Reason: "must be producer, consumer or battery"}
	}
	kind, ok := model.ParseProducerKind(s.Kind)
	if !ok {
		return model.EquipmentSpec{}, &model.ConfigError{ID: s.ID, Field: "kind", Value: s.Kind, Reason: "must be wind, water or crank"}
	}
	return model.EquipmentSpec{
		ID:                s.ID,
		Category:          cat,
		Kind:              kind,
		Power:             s.Power,
		Cost:              s.Cost,
		CutIn:             s.CutIn,
		BaseCapacity:      s.BaseCapacity,
		CapacityPerHeight: s.CapacityPerHeight,
		CostPerHeight:     s.CostPerHeight,
	}, nil
}

// CatalogConfig extends the default equipment table.
type CatalogConfig struct {
	Extra []SpecConfig `json:"extra"`
}

// Build returns the default catalog plus the extra specs.
func (c CatalogConfig) Build() (*catalog.Catalog, error) {
	specs := catalog.DefaultSpecs()
	for _, sc := range c.Extra {
		s, err := sc.Spec()
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return catalog.New(specs...)
}

func (c CatalogConfig) Validate() error {
	_, err := c.Build()
	return err
}
