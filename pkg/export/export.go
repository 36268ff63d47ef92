// Package export writes simulation traces, downtime statistics and optimizer
// rankings as CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/powermix/core/environment"
	"github.com/kilianp07/powermix/core/model"
	"github.com/kilianp07/powermix/core/optimizer"
)

var traceHeader = []string{
	"step", "day", "hour", "season", "working",
	"generation", "consumption", "net", "battery", "deficit", "unmet",
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// WriteTraceCSV writes one row per timestep.
func WriteTraceCSV(w io.Writer, trace model.SimulationTrace) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(traceHeader); err != nil {
		return err
	}
	for _, r := range trace.Records {
		rec := []string{
			strconv.Itoa(r.Step),
			strconv.Itoa(r.Day),
			formatFloat(r.Hour),
			r.Season.String(),
			strconv.FormatBool(r.Working),
			formatFloat(r.Generation),
			formatFloat(r.Consumption),
			formatFloat(r.Net),
			formatFloat(r.Battery),
			strconv.FormatBool(r.Deficit),
			formatFloat(r.Unmet),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// TraceDoc is the JSON form of a trace.
type TraceDoc struct {
	Capacity         float64       `json:"capacity"`
	StepHours        float64       `json:"step_hours"`
	DowntimeFraction float64       `json:"downtime_fraction"`
	UnmetEnergy      float64       `json:"unmet_energy"`
	EnergySurplus    float64       `json:"energy_surplus"`
	Seasons          []SeasonMark  `json:"seasons,omitempty"`
	Records          []TraceRecord `json:"records"`
}

// SeasonMark is the first day of a season block, used to annotate plots.
type SeasonMark struct {
	Day    int    `json:"day"`
	Season string `json:"season"`
}

// TraceRecord is the JSON form of one timestep.
type TraceRecord struct {
	Step        int     `json:"step"`
	Day         int     `json:"day"`
	Hour        float64 `json:"hour"`
	Season      string  `json:"season"`
	Working     bool    `json:"working"`
	Generation  float64 `json:"generation"`
	Consumption float64 `json:"consumption"`
	Net         float64 `json:"net"`
	Battery     float64 `json:"battery"`
	Deficit     bool    `json:"deficit"`
	Unmet       float64 `json:"unmet"`
}

// NewTraceDoc converts a trace for JSON output. seasons are the calendar
// boundaries covered by the trace.
func NewTraceDoc(trace model.SimulationTrace, seasons ...environment.Boundary) TraceDoc {
	doc := TraceDoc{
		Capacity:         trace.Capacity,
		StepHours:        trace.StepHours,
		DowntimeFraction: trace.DowntimeFraction(),
		UnmetEnergy:      trace.UnmetEnergy(),
		EnergySurplus:    trace.EnergySurplus(),
		Records:          make([]TraceRecord, len(trace.Records)),
	}
	for _, b := range seasons {
		doc.Seasons = append(doc.Seasons, SeasonMark{Day: b.Day, Season: b.Season.String()})
	}
	for i, r := range trace.Records {
		doc.Records[i] = TraceRecord{
			Step:        r.Step,
			Day:         r.Day,
			Hour:        r.Hour,
			Season:      r.Season.String(),
			Working:     r.Working,
			Generation:  r.Generation,
			Consumption: r.Consumption,
			Net:         r.Net,
			Battery:     r.Battery,
			Deficit:     r.Deficit,
			Unmet:       r.Unmet,
		}
	}
	return doc
}

// WriteTraceJSON writes the trace with its summary figures and season marks.
func WriteTraceJSON(w io.Writer, trace model.SimulationTrace, seasons ...environment.Boundary) error {
	return writeJSON(w, NewTraceDoc(trace, seasons...))
}

// ConfigDoc is the JSON form of a Configuration.
type ConfigDoc struct {
	Equipment map[string]int       `json:"equipment"`
	Heights   map[string][]float64 `json:"heights,omitempty"`
}

// NewConfigDoc lists the non-zero counts and the battery heights of cfg.
func NewConfigDoc(cfg model.Configuration) ConfigDoc {
	doc := ConfigDoc{Equipment: map[string]int{}}
	for _, id := range cfg.IDs() {
		if n := cfg.Count(id); n > 0 {
			doc.Equipment[id] = n
		}
		if hs := cfg.RawHeights(id); len(hs) > 0 && cfg.Count(id) > 0 {
			if doc.Heights == nil {
				doc.Heights = map[string][]float64{}
			}
			doc.Heights[id] = hs
		}
	}
	return doc
}

// StatsDoc summarizes DowntimeStatistics.
type StatsDoc struct {
	Runs         int     `json:"runs"`
	Mean         float64 `json:"mean"`
	P50          float64 `json:"p50"`
	P95          float64 `json:"p95"`
	Max          float64 `json:"max"`
	WorstRun     int     `json:"worst_run"`
	MeanSurplus  float64 `json:"mean_surplus"`
	Percentile   float64 `json:"percentile,omitempty"`
	AtPercentile float64 `json:"at_percentile,omitempty"`
}

// NewStatsDoc summarizes stats. A percentile in (0,1] other than the fixed
// ones is reported as well.
func NewStatsDoc(stats model.DowntimeStatistics, percentile float64) StatsDoc {
	doc := StatsDoc{
		Runs:        stats.Runs,
		Mean:        stats.Mean,
		P50:         stats.Percentile(0.5),
		P95:         stats.P95(),
		Max:         stats.WorstFraction,
		WorstRun:    stats.WorstRun,
		MeanSurplus: stats.MeanSurplus,
	}
	if percentile > 0 && percentile <= 1 && percentile != 0.5 && percentile != 0.95 {
		doc.Percentile = percentile
		doc.AtPercentile = stats.Percentile(percentile)
	}
	return doc
}

// EvaluationDoc is the JSON report of the run command.
type EvaluationDoc struct {
	Configuration ConfigDoc `json:"configuration"`
	Cost          float64   `json:"cost"`
	Demand        float64   `json:"demand"`
	Capacity      float64   `json:"capacity"`
	Statistics    StatsDoc  `json:"statistics"`
}

// WriteEvaluationJSON writes a single configuration report.
func WriteEvaluationJSON(w io.Writer, doc EvaluationDoc) error { return writeJSON(w, doc) }

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// CandidateDoc is one ranked configuration.
type CandidateDoc struct {
	Rank          int       `json:"rank"`
	Configuration ConfigDoc `json:"configuration"`
	Key           string    `json:"key"`
	Cost          float64   `json:"cost"`
	Downtime      float64   `json:"downtime"`
	Units         int       `json:"units"`
	MeanSurplus   float64   `json:"mean_surplus"`
}

// ResultDoc is the JSON report of an optimization.
type ResultDoc struct {
	RunID       string         `json:"run_id"`
	Feasible    bool           `json:"feasible"`
	Best        CandidateDoc   `json:"best"`
	Statistics  StatsDoc       `json:"statistics"`
	Iterations  int            `json:"iterations"`
	Evaluations int            `json:"evaluations"`
	Ranking     []CandidateDoc `json:"ranking"`
}

func newCandidateDoc(rank int, c optimizer.Candidate) CandidateDoc {
	return CandidateDoc{
		Rank:          rank,
		Configuration: NewConfigDoc(c.Config),
		Key:           c.Config.Key(),
		Cost:          c.Cost,
		Downtime:      c.Downtime,
		Units:         c.Units(),
		MeanSurplus:   c.Stats.MeanSurplus,
	}
}

// NewResultDoc builds the report of res with up to top ranked candidates.
func NewResultDoc(res *optimizer.Result, percentile float64, top int) ResultDoc {
	best := optimizer.Candidate{Config: res.Best, Stats: res.Stats, Cost: res.Cost, Downtime: res.Downtime, Feasible: res.Feasible}
	doc := ResultDoc{
		RunID:       res.RunID,
		Feasible:    res.Feasible,
		Best:        newCandidateDoc(1, best),
		Statistics:  NewStatsDoc(res.Stats, percentile),
		Iterations:  res.Iterations,
		Evaluations: res.Evaluations,
		Ranking:     []CandidateDoc{},
	}
	for i, c := range res.Ranked(top) {
		doc.Ranking = append(doc.Ranking, newCandidateDoc(i+1, c))
	}
	return doc
}

// WriteResultJSON writes the optimization report.
func WriteResultJSON(w io.Writer, res *optimizer.Result, percentile float64, top int) error {
	return writeJSON(w, NewResultDoc(res, percentile, top))
}

// WriteRankingCSV writes up to top ranked candidates, one per row.
func WriteRankingCSV(w io.Writer, res *optimizer.Result, top int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"rank", "configuration", "cost", "downtime", "units", "mean_surplus"}); err != nil {
		return err
	}
	for i, c := range res.Ranked(top) {
		rec := []string{
			strconv.Itoa(i + 1),
			c.Config.Key(),
			formatFloat(c.Cost),
			formatFloat(c.Downtime),
			strconv.Itoa(c.Units()),
			formatFloat(c.Stats.MeanSurplus),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
