package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// parseHeights reads id=h or id=h1:h2:... values.
func parseHeights(raw map[string]string) (map[string][]float64, error) {
	out := make(map[string][]float64, len(raw))
	for id, v := range raw {
		parts := strings.Split(v, ":")
		hs := make([]float64, len(parts))
		for i, p := range parts {
			h, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, fmt.Errorf("height of %s: %w", id, err)
			}
			hs[i] = h
		}
		out[id] = hs
	}
	return out, nil
}

// changed reports whether the named flag was given on the command line.
func changed(cmd *cobra.Command, name string) bool { return cmd.Flags().Changed(name) }
