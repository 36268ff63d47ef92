package catalog

import "github.com/kilianp07/powermix/core/model"

// Identifiers of the built-in equipment.
const (
	LumberMill        = "lumber_mill"
	GearWorkshop      = "gear_workshop"
	SteelFactory      = "steel_factory"
	WoodWorkshop      = "wood_workshop"
	PaperMill         = "paper_mill"
	PrintingPress     = "printing_press"
	Observatory       = "observatory"
	BotPartFactory    = "bot_part_factory"
	BotAssembler      = "bot_assembler"
	ExplosivesFactory = "explosives_factory"
	Grillmist         = "grillmist"
	Centrifuge        = "centrifuge"

	WaterWheel    = "water_wheel"
	Windmill      = "windmill"
	LargeWindmill = "large_windmill"
	PowerWheel    = "power_wheel"

	GravityBattery = "battery"
)

func consumer(id string, power float64) model.EquipmentSpec {
	return model.EquipmentSpec{ID: id, Category: model.CategoryConsumer, Power: power}
}

// DefaultSpecs returns the built-in equipment table.
func DefaultSpecs() []model.EquipmentSpec {
	return []model.EquipmentSpec{
		consumer(LumberMill, 50),
		consumer(GearWorkshop, 120),
		consumer(SteelFactory, 200),
		consumer(WoodWorkshop, 250),
		consumer(PaperMill, 80),
		consumer(PrintingPress, 150),
		consumer(Observatory, 200),
		consumer(BotPartFactory, 150),
		consumer(BotAssembler, 250),
		consumer(ExplosivesFactory, 150),
		consumer(Grillmist, 60),
		consumer(Centrifuge, 200),

		{ID: WaterWheel, Category: model.CategoryProducer, Kind: model.KindWater, Power: 150, Cost: 50},
		{ID: Windmill, Category: model.CategoryProducer, Kind: model.KindWind, Power: 150, Cost: 40, CutIn: 0.30},
		{ID: LargeWindmill, Category: model.CategoryProducer, Kind: model.KindWind, Power: 300, Cost: 75, CutIn: 0.20},
		{ID: PowerWheel, Category: model.CategoryProducer, Kind: model.KindCrank, Power: 50, Cost: 50},

		{
			ID:                GravityBattery,
			Category:          model.CategoryBattery,
			Cost:              84,
			BaseCapacity:      4000,
			CapacityPerHeight: 2000,
			CostPerHeight:     6,
		},
	}
}

// Default returns a catalog holding DefaultSpecs.
func Default() *Catalog {
	c, err := New(DefaultSpecs()...)
	if err != nil {
		panic(err)
	}
	return c
}
