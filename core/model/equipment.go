package model

// Category groups equipment by its role on the grid.
type Category int

const (
	CategoryProducer Category = iota
	CategoryConsumer
	CategoryBattery
)

// String returns a human-readable representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryProducer:
		return "producer"
	case CategoryConsumer:
		return "consumer"
	case CategoryBattery:
		return "battery"
	default:
		return "unknown"
	}
}

// ParseCategory converts the textual form used in config files.
func ParseCategory(s string) (Category, bool) {
	switch s {
	case "producer":
		return CategoryProducer, true
	case "consumer":
		return CategoryConsumer, true
	case "battery":
		return CategoryBattery, true
	}
	return 0, false
}

// ProducerKind selects the weather response of a producer.
type ProducerKind int

const (
	// KindNone is used by consumers and batteries.
	KindNone ProducerKind = iota
	// KindWind scales linearly with wind intensity above a cut-in threshold.
	KindWind
	// KindWater runs at rated output scaled by water flow, except in the dry season.
	KindWater
	// KindCrank is operator driven and only produces during working hours.
	KindCrank
)

// String returns a human-readable representation of the producer kind.
func (k ProducerKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindWind:
		return "wind"
	case KindWater:
		return "water"
	case KindCrank:
		return "crank"
	default:
		return "unknown"
	}
}

// ParseProducerKind converts the textual form used in config files.
func ParseProducerKind(s string) (ProducerKind, bool) {
	switch s {
	case "", "none":
		return KindNone, true
	case "wind":
		return KindWind, true
	case "water":
		return KindWater, true
	case "crank":
		return KindCrank, true
	}
	return 0, false
}

// EquipmentSpec describes one type of machine in the catalog.
type EquipmentSpec struct {
	ID       string
	Category Category
	Kind     ProducerKind // producers only
	Power    float64      // rated output for producers, draw for consumers (units/hour)
	Cost     float64      // per unit; batteries use BaseCost semantics
	CutIn    float64      // wind producers: no output at or below this intensity

	// Battery parameters. Capacity and cost grow linearly with height.
	BaseCapacity      float64
	CapacityPerHeight float64
	CostPerHeight     float64
}

// IsProducer reports whether the spec generates power.
func (s EquipmentSpec) IsProducer() bool { return s.Category == CategoryProducer }

// IsConsumer reports whether the spec draws power.
func (s EquipmentSpec) IsConsumer() bool { return s.Category == CategoryConsumer }

// IsBattery reports whether the spec stores energy.
func (s EquipmentSpec) IsBattery() bool { return s.Category == CategoryBattery }

// UnitCapacity returns the storage of one battery of the given height.
func (s EquipmentSpec) UnitCapacity(height float64) float64 {
	if !s.IsBattery() {
		return 0
	}
	return s.BaseCapacity + s.CapacityPerHeight*height
}

// UnitCost returns the price of one unit. Heights only matter for batteries.
func (s EquipmentSpec) UnitCost(height float64) float64 {
	if !s.IsBattery() {
		return s.Cost
	}
	return s.Cost + s.CostPerHeight*height
}
