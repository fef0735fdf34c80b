package main

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/couchcryptid/flex-control/internal/control"
	"github.com/couchcryptid/flex-control/internal/domain"
	"github.com/couchcryptid/flex-control/internal/extraction"
	"github.com/spf13/cobra"
)

func newAreaCmd(a *app) *cobra.Command {
	var (
		box  string
		grid float64
	)
	cmd := &cobra.Command{
		Use:   "area",
		Short: "Set the retrieval area, optionally snapped outward to a grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			requested, err := domain.ParseBoundingBox(box)
			if err != nil {
				return err
			}
			var resolved domain.BoundingBox
			_, err = a.editControl(func(doc *control.Document) error {
				var err error
				if cmd.Flags().Changed("grid") {
					resolved, err = doc.SetGriddedArea(requested, grid)
				} else {
					resolved, err = doc.SetArea(requested)
				}
				return err
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", resolved)
			return err
		},
	}
	cmd.Flags().StringVar(&box, "box", "", "bounding box as north,west,south,east")
	cmd.Flags().Float64Var(&grid, "grid", 0, "grid spacing in degrees")
	_ = cmd.MarkFlagRequired("box")
	return cmd
}

// Accepted --start/--end layouts.
var dateLayouts = []string{"2006-01-02T15", "2006-01-02", "20060102"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q, want one of %s", s, strings.Join(dateLayouts, ", "))
}

func newStepsCmd(a *app) *cobra.Command {
	var (
		start, end string
		timestep   int
	)
	cmd := &cobra.Command{
		Use:   "steps",
		Short: "Derive TYPE, TIME, STEP and date directives for a date range",
		Long: `Derive the per-step directives for the range [start, end).

Without --start the range is yesterday (UTC). Without --end it spans one
day from --start. The regime follows CLASS and STREAM of the control file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, to := control.DefaultDateRange()
			if start != "" {
				t, err := parseDate(start)
				if err != nil {
					return err
				}
				from, to = t, t.Add(24*time.Hour)
			}
			if end != "" {
				t, err := parseDate(end)
				if err != nil {
					return err
				}
				to = t
			}

			var plan domain.StepPlan
			doc, err := a.editControl(func(doc *control.Document) error {
				var err error
				plan, err = doc.SetSteps(from, to, timestep)
				return err
			})
			if err != nil {
				return err
			}
			a.logger.Debug("steps derived", "regime", doc.Regime(), "steps", plan.Len())
			for _, k := range []string{control.KeyType, control.KeyTime, control.KeyStep} {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", k, doc.Get(k)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "first step, YYYY-MM-DD or YYYY-MM-DDTHH")
	cmd.Flags().StringVar(&end, "end", "", "exclusive end, YYYY-MM-DD or YYYY-MM-DDTHH")
	cmd.Flags().IntVar(&timestep, "timestep", 3, "hours between steps")
	return cmd
}

func newEnsembleCmd(a *app) *cobra.Command {
	var seed uint64
	cmd := &cobra.Command{
		Use:   "ensemble",
		Short: "Draw ensemble members and set the ensemble directives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("seed") {
				seed = rand.Uint64()
			}
			src := control.NewSeededSource(seed)

			var sel domain.EnsembleSelection
			_, err := a.editControl(func(doc *control.Document) error {
				var err error
				sel, err = doc.SetEnsemble(src)
				return err
			})
			if err != nil {
				return err
			}
			a.logger.Info("ensemble members drawn", "seed", seed, "members", sel.String())
			_, err = fmt.Fprintln(cmd.OutOrStdout(), sel.String())
			return err
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (default: random)")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the control file in canonical form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := a.resolveControl()
			if err != nil {
				return err
			}
			doc, err := control.Load(path)
			if err != nil {
				return err
			}
			_, err = doc.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
}

func newParamsCmd(a *app) *cobra.Command {
	var (
		input, output string
		prepare       bool
	)
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Print the arguments for the submit or prepare program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := a.resolveControl()
			if err != nil {
				return err
			}
			p := extraction.NewParams(path, input, output)
			if prepare {
				if p, err = p.ForPrepare(); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(p.Args(), " "))
			return err
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "input directory")
	cmd.Flags().StringVar(&output, "output", "", "output directory")
	cmd.Flags().BoolVar(&prepare, "prepare", false, "add --ppid from the GRIB files in the input directory")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
