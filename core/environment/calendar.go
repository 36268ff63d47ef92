package environment

import (
	"github.com/kilianp07/powermix/core/model"
)

// Phase is one block of the season cycle.
type Phase struct {
	Season model.Season
	Days   int
}

// Calendar is the ordered season cycle. It repeats indefinitely.
type Calendar []Phase

// Boundary marks the first day of a season block.
type Boundary struct {
	Day    int
	Season model.Season
}

// DefaultCalendar is wet, dry, wet, badtide with 3, 30, 3 and 30 days.
func DefaultCalendar() Calendar {
	return StandardCalendar(3, 30, 30)
}

// StandardCalendar builds the wet → dry → wet → badtide cycle.
func StandardCalendar(wetDays, dryDays, badtideDays int) Calendar {
	return Calendar{
		{Season: model.SeasonWet, Days: wetDays},
		{Season: model.SeasonDry, Days: dryDays},
		{Season: model.SeasonWet, Days: wetDays},
		{Season: model.SeasonBadtide, Days: badtideDays},
	}
}

// CycleDays is the length of one full cycle.
func (c Calendar) CycleDays() int {
	total := 0
	for _, p := range c {
		total += p.Days
	}
	return total
}

// Validate rejects negative phases and empty cycles.
func (c Calendar) Validate() error {
	for _, p := range c {
		if p.Days < 0 {
			return &model.ParamError{Name: "calendar." + p.Season.String(), Value: p.Days, Reason: "must not be negative"}
		}
	}
	if c.CycleDays() == 0 {
		return &model.ParamError{Name: "calendar", Value: 0, Reason: "cycle length must be positive"}
	}
	return nil
}

// SeasonOf returns the season of the given elapsed day.
func (c Calendar) SeasonOf(day int) model.Season {
	cycle := c.CycleDays()
	if cycle == 0 {
		return model.SeasonWet
	}
	d := day % cycle
	if d < 0 {
		d += cycle
	}
	for _, p := range c {
		if d < p.Days {
			return p.Season
		}
		d -= p.Days
	}
	return c[len(c)-1].Season
}

// Boundaries lists the season changes within the first days days.
func (c Calendar) Boundaries(days int) []Boundary {
	var out []Boundary
	if c.CycleDays() == 0 {
		return out
	}
	day := 0
	for day < days {
		for _, p := range c {
			if p.Days == 0 {
				continue
			}
			if day >= days {
				break
			}
			out = append(out, Boundary{Day: day, Season: p.Season})
			day += p.Days
		}
	}
	return out
}

// WaterShare is the fraction of the cycle during which water producers run.
func (c Calendar) WaterShare() float64 {
	cycle := c.CycleDays()
	if cycle == 0 {
		return 0
	}
	active := 0
	for _, p := range c {
		if p.Season.WaterActive() {
			active += p.Days
		}
	}
	return float64(active) / float64(cycle)
}
