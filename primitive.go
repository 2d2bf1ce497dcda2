package main

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/chazu/kerf/pkg/config"
	"github.com/chazu/kerf/pkg/kernel"
	"github.com/chazu/kerf/pkg/kernel/manifold"
	"github.com/chazu/kerf/pkg/kernel/sdfx"
	"github.com/chazu/kerf/pkg/mesh"
	"github.com/chazu/kerf/pkg/stl"
)

var primitiveShapes = []string{"box", "cylinder", "sphere", "tube"}

func newPrimitiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "primitive <box|cylinder|sphere|tube>",
		Short:     "Write a sample solid as a binary STL",
		ValidArgs: primitiveShapes,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE:      runPrimitive,
	}
	f := cmd.Flags()
	f.String("out", "", "STL output path (default <shape>.stl)")
	f.Float64("size", 10, "overall size of the solid")
	addKernelFlags(f)
	f.Bool("exact", false, "box only: write the 12-triangle box instead of tessellating")
	return cmd
}

func runPrimitive(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	shape := args[0]
	out, _ := f.GetString("out")
	if out == "" {
		out = shape + ".stl"
	}
	size, _ := f.GetFloat64("size")
	exact, _ := f.GetBool("exact")
	if !(size > 0) {
		return errors.Errorf("primitive: size must be positive, got %v", size)
	}

	lvl, _ := f.GetString("log-level")
	if lvl == "" {
		lvl = "info"
	}
	log, err := config.NewLogger(lvl, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	var m *mesh.Mesh
	if exact {
		if shape != "box" {
			return errors.Errorf("primitive: --exact only applies to box, not %s", shape)
		}
		m = mesh.Box(shape, v3.Vec{}, v3.Vec{X: size, Y: size, Z: size})
	} else {
		k, err := kernelFromFlags(f)
		if err != nil {
			return err
		}
		s, err := buildSolid(k, shape, size)
		if err != nil {
			return err
		}
		if m, err = k.ToMesh(s, shape); err != nil {
			return err
		}
	}

	if err := stl.WriteFile(out, m); err != nil {
		return err
	}
	log.WithField("triangles", m.Len()).WithField("path", out).Info("wrote mesh")
	return nil
}

// addKernelFlags registers the solid backend flags shared by primitive and
// build.
func addKernelFlags(f *pflag.FlagSet) {
	f.String("kernel", "sdfx", "solid backend: sdfx or manifold")
	f.Int("cells", sdfx.DefaultCells, "sdfx marching cubes resolution")
	f.Int("segments", manifold.DefaultSegments, "manifold facets around curved surfaces")
}

func kernelFromFlags(f *pflag.FlagSet) (kernel.Kernel, error) {
	name, _ := f.GetString("kernel")
	switch name {
	case "sdfx":
		cells, _ := f.GetInt("cells")
		return sdfx.New(cells), nil
	case "manifold":
		segments, _ := f.GetInt("segments")
		return manifold.New(segments)
	default:
		return nil, errors.Errorf("unknown kernel %q (want sdfx or manifold)", name)
	}
}

// buildSolid returns the named shape sized to fit a size³ cube.
func buildSolid(k kernel.Kernel, shape string, size float64) (kernel.Solid, error) {
	switch shape {
	case "box":
		return k.Box(v3.Vec{X: size, Y: size, Z: size})
	case "cylinder":
		return k.Cylinder(size, size/2)
	case "sphere":
		return k.Sphere(size / 2)
	case "tube":
		box, err := k.Box(v3.Vec{X: size, Y: size, Z: size})
		if err != nil {
			return nil, err
		}
		// The bore is taller than the box so it cuts through both faces.
		hole, err := k.Cylinder(size*1.5, size/4)
		if err != nil {
			return nil, err
		}
		c := size / 2
		return k.Difference(box, k.Translate(hole, v3.Vec{X: c, Y: c, Z: c})), nil
	default:
		return nil, errors.Errorf("primitive: unknown shape %q", shape)
	}
}
