package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/powermix/core/model"
)

type specDoc struct {
	ID                string  `json:"id"`
	Category          string  `json:"category"`
	Kind              string  `json:"kind,omitempty"`
	Power             float64 `json:"power,omitempty"`
	Cost              float64 `json:"cost"`
	CutIn             float64 `json:"cut_in,omitempty"`
	BaseCapacity      float64 `json:"base_capacity,omitempty"`
	CapacityPerHeight float64 `json:"capacity_per_height,omitempty"`
	CostPerHeight     float64 `json:"cost_per_height,omitempty"`
}

func newSpecDoc(s model.EquipmentSpec) specDoc {
	doc := specDoc{
		ID:                s.ID,
		Category:          s.Category.String(),
		Power:             s.Power,
		Cost:              s.Cost,
		CutIn:             s.CutIn,
		BaseCapacity:      s.BaseCapacity,
		CapacityPerHeight: s.CapacityPerHeight,
		CostPerHeight:     s.CostPerHeight,
	}
	if s.IsProducer() {
		doc.Kind = s.Kind.String()
	}
	return doc
}

func newCatalogCmd(root *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the available equipment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			cat, err := cfg.Catalog.Build()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch format {
			case "json":
				docs := make([]specDoc, 0, len(cat.Specs()))
				for _, s := range cat.Specs() {
					docs = append(docs, newSpecDoc(s))
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(docs)
			case "text":
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tCATEGORY\tKIND\tPOWER\tCOST\tDETAILS")
				for _, s := range cat.Specs() {
					d := newSpecDoc(s)
					details := ""
					switch {
					case s.IsBattery():
						details = fmt.Sprintf("capacity %g+%g/h, cost +%g/h", s.BaseCapacity, s.CapacityPerHeight, s.CostPerHeight)
					case s.CutIn > 0:
						details = fmt.Sprintf("cut-in %g", s.CutIn)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%g\t%g\t%s\n", d.ID, d.Category, d.Kind, d.Power, d.Cost, details)
				}
				return tw.Flush()
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	return cmd
}
