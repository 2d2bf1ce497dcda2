package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/chazu/kerf/pkg/config"
	"github.com/chazu/kerf/pkg/engine"
	"github.com/chazu/kerf/pkg/stl"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <script>",
		Short: "Evaluate a shape script and write the solid as a binary STL",
		Long: `Evaluate a shape script and write the solid as a binary STL.

A script is a Lisp program whose last expression is a solid:

  (difference
    (box 40 40 20)
    (translate (cylinder :height 30 :radius 8) (vec3 20 20 10)))

Builtins: vec3, box, cylinder, sphere, union, difference, translate, rotate.`,
		Args: cobra.ExactArgs(1),
		RunE: runBuild,
	}
	f := cmd.Flags()
	f.String("out", "", "STL output path (default <script>.stl)")
	addKernelFlags(f)
	f.Duration("timeout", engine.EvalTimeout, "script evaluation time limit")
	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	script := args[0]
	out, _ := f.GetString("out")
	if out == "" {
		out = strings.TrimSuffix(script, filepath.Ext(script)) + ".stl"
	}
	timeout, _ := f.GetDuration("timeout")

	lvl, _ := f.GetString("log-level")
	if lvl == "" {
		lvl = "info"
	}
	log, err := config.NewLogger(lvl, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	src, err := os.ReadFile(script)
	if err != nil {
		return errors.Wrap(err, "build")
	}

	k, err := kernelFromFlags(f)
	if err != nil {
		return err
	}
	eng := engine.NewEngine(k)
	eng.SetTimeout(timeout)

	start := time.Now()
	solid, evalErrs, err := eng.Evaluate(string(src))
	if err != nil {
		return errors.Wrapf(err, "build %s", script)
	}
	if len(evalErrs) > 0 {
		msgs := make([]string, len(evalErrs))
		for i, e := range evalErrs {
			msgs[i] = e.Error()
		}
		return errors.Errorf("build %s: %s", script, strings.Join(msgs, "; "))
	}

	m, err := k.ToMesh(solid, strings.TrimSuffix(filepath.Base(script), filepath.Ext(script)))
	if err != nil {
		return err
	}
	if err := stl.WriteFile(out, m); err != nil {
		return err
	}
	log.WithField("triangles", m.Len()).
		WithField("path", out).
		WithField("elapsed", time.Since(start)).
		Info("wrote mesh")
	return nil
}
