package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/chazu/kerf/pkg/mesh"
	"github.com/chazu/kerf/pkg/stl"
)

// maxFindings caps how many validation findings info prints per kind.
const maxFindings = 10

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <mesh.stl>",
		Short: "Print triangle count, bounds and validation findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := stl.ReadFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "file: %s\n", args[0])
			fmt.Fprintf(out, "triangles: %d\n", m.Len())
			if bb, ok := m.Bounds(); ok {
				fmt.Fprintf(out, "bounds: (%g, %g, %g) - (%g, %g, %g)\n",
					bb.Min.X, bb.Min.Y, bb.Min.Z, bb.Max.X, bb.Max.Y, bb.Max.Z)
			}

			res := mesh.Validate(m)
			fmt.Fprintf(out, "errors: %d\nwarnings: %d\n", len(res.Errors), len(res.Warnings))
			for i, e := range res.Errors {
				if i == maxFindings {
					fmt.Fprintf(out, "  ... %d more\n", len(res.Errors)-i)
					break
				}
				fmt.Fprintf(out, "  %s\n", e)
			}
			for i, w := range res.Warnings {
				if i == maxFindings {
					fmt.Fprintf(out, "  ... %d more\n", len(res.Warnings)-i)
					break
				}
				if w.Triangle < 0 {
					fmt.Fprintf(out, "  [warning] %s\n", w.Message)
				} else {
					fmt.Fprintf(out, "  [warning] triangle %d: %s\n", w.Triangle, w.Message)
				}
			}
			if !res.OK() {
				return errors.Errorf("info: %s has %d invalid triangles", args[0], len(res.Errors))
			}
			return nil
		},
	}
}
