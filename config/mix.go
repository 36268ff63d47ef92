package config

import "github.com/kilianp07/powermix/core/model"

// EnergyMixConfig is a hand-picked set of producers and batteries evaluated
// by the run command.
type EnergyMixConfig struct {
	Equipment map[string]int `json:"equipment"`
	// Heights lists battery heights. One value applies to every unit,
	// otherwise one value per unit is expected.
	Heights map[string][]float64 `json:"heights"`
}

// Configuration combines the mix with the required factories.
func (m EnergyMixConfig) Configuration(factories map[string]int) model.Configuration {
	mix := model.NewConfiguration(m.Equipment)
	for id, hs := range m.Heights {
		if len(hs) == 1 {
			mix = mix.WithHeight(id, hs[0])
			continue
		}
		mix = mix.WithHeights(id, hs...)
	}
	return model.NewConfiguration(factories).Merge(mix)
}
