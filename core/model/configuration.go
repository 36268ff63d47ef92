package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Configuration is one candidate grid design: a count per equipment
// identifier plus battery heights. Values are never modified in place; the
// With* methods return new Configurations.
type Configuration struct {
	counts  map[string]int
	heights map[string][]float64
}

// NewConfiguration copies counts into a new Configuration.
func NewConfiguration(counts map[string]int) Configuration {
	c := Configuration{counts: make(map[string]int, len(counts))}
	for id, n := range counts {
		c.counts[id] = n
	}
	return c
}

func (c Configuration) clone() Configuration {
	out := Configuration{
		counts:  make(map[string]int, len(c.counts)+1),
		heights: make(map[string][]float64, len(c.heights)),
	}
	for id, n := range c.counts {
		out.counts[id] = n
	}
	for id, hs := range c.heights {
		out.heights[id] = append([]float64(nil), hs...)
	}
	return out
}

// With returns a copy with the count of id set to n.
func (c Configuration) With(id string, n int) Configuration {
	out := c.clone()
	out.counts[id] = n
	return out
}

// WithHeight returns a copy where every battery of type id has height h.
func (c Configuration) WithHeight(id string, h float64) Configuration {
	out := c.clone()
	out.heights[id] = []float64{h}
	return out
}

// WithHeights returns a copy with one height per battery unit of type id.
func (c Configuration) WithHeights(id string, hs ...float64) Configuration {
	out := c.clone()
	out.heights[id] = append([]float64(nil), hs...)
	return out
}

// Merge returns a copy with the counts of other added to those of c. Heights
// of other replace those of c.
func (c Configuration) Merge(other Configuration) Configuration {
	out := c.clone()
	for id, n := range other.counts {
		out.counts[id] += n
	}
	for id, hs := range other.heights {
		out.heights[id] = append([]float64(nil), hs...)
	}
	return out
}

// Count returns the number of units of id.
func (c Configuration) Count(id string) int { return c.counts[id] }

// Counts returns a copy of the count table.
func (c Configuration) Counts() map[string]int {
	out := make(map[string]int, len(c.counts))
	for id, n := range c.counts {
		out[id] = n
	}
	return out
}

// RawHeights returns the heights as configured: empty, one uniform value or one
// value per unit.
func (c Configuration) RawHeights(id string) []float64 {
	return append([]float64(nil), c.heights[id]...)
}

// Heights returns one height per unit of id. A single configured height is
// applied to every unit.
func (c Configuration) Heights(id string) []float64 {
	hs := c.heights[id]
	n := c.counts[id]
	if len(hs) == 1 && n > 0 {
		out := make([]float64, n)
		for i := range out {
			out[i] = hs[0]
		}
		return out
	}
	return append([]float64(nil), hs...)
}

// UniformHeight returns the mean configured height of id, or 0 when none is set.
func (c Configuration) UniformHeight(id string) float64 {
	hs := c.heights[id]
	if len(hs) == 0 {
		return 0
	}
	var sum float64
	for _, h := range hs {
		sum += h
	}
	return sum / float64(len(hs))
}

// IDs returns every identifier mentioned by the configuration, sorted.
func (c Configuration) IDs() []string {
	seen := make(map[string]struct{}, len(c.counts)+len(c.heights))
	for id := range c.counts {
		seen[id] = struct{}{}
	}
	for id := range c.heights {
		seen[id] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TotalUnits is the sum of all counts.
func (c Configuration) TotalUnits() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Key is a canonical representation, equal for equal configurations.
// Zero counts without heights are omitted.
func (c Configuration) Key() string {
	var b strings.Builder
	for _, id := range c.IDs() {
		n := c.counts[id]
		hs := c.heights[id]
		if n == 0 && len(hs) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(';')
		}
		b.WriteString(id)
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(n))
		if len(hs) > 0 {
			b.WriteByte('@')
			for i, h := range hs {
				if i > 0 {
					b.WriteByte(',')
				}
				b.WriteString(strconv.FormatFloat(h, 'g', -1, 64))
			}
		}
	}
	return b.String()
}

func (c Configuration) String() string {
	k := c.Key()
	if k == "" {
		return "{}"
	}
	return fmt.Sprintf("{%s}", k)
}
