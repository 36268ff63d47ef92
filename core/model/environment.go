package model

// Season is a phase of the environmental cycle.
type Season int

const (
	SeasonWet Season = iota
	SeasonDry
	SeasonBadtide
)

// String returns a human-readable representation of the season.
func (s Season) String() string {
	switch s {
	case SeasonWet:
		return "wet"
	case SeasonDry:
		return "dry"
	case SeasonBadtide:
		return "badtide"
	default:
		return "unknown"
	}
}

// ParseSeason converts the textual form used in config files.
func ParseSeason(s string) (Season, bool) {
	switch s {
	case "wet":
		return SeasonWet, true
	case "dry":
		return SeasonDry, true
	case "badtide":
		return SeasonBadtide, true
	}
	return 0, false
}

// WaterActive reports whether water-driven producers run in this season.
func (s Season) WaterActive() bool { return s != SeasonDry }

// EnvironmentSample is the weather state for one timestep of one run.
type EnvironmentSample struct {
	Step      int
	Day       int
	Hour      float64 // hour of day at the start of the step, in [0,24)
	Season    Season
	Wind      float64 // intensity in [0,1]
	WaterFlow float64 // fraction of rated flow in [0,1]
}
