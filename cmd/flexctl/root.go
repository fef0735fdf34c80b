package main

import (
	"fmt"
	"log/slog"

	"github.com/couchcryptid/flex-control/internal/config"
	"github.com/couchcryptid/flex-control/internal/control"
	"github.com/couchcryptid/flex-control/internal/observability"
	"github.com/spf13/cobra"
)

// app carries the state shared by all subcommands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	dir         string
	controlPath string

	// newMetrics is swapped in tests, where registering twice would panic.
	newMetrics func() *observability.Metrics
}

func newApp() *app {
	return &app{newMetrics: observability.NewMetrics}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "flexctl",
		Short: "Configure flex_extract control files and dispatch retrievals",
		Long: `flexctl edits the CONTROL file of a flex_extract run directory and
hands the prepared MARS requests to a retrieval backend.

Subcommands that change the control file load it, apply one derivation,
and save it back in place.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg
			a.logger = observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&a.dir, "dir", "d", ".", "run directory holding the CONTROL file")
	root.PersistentFlags().StringVarP(&a.controlPath, "control", "c", "", "control file path (default: first CONTROL* file in --dir)")

	root.AddCommand(
		newAreaCmd(a),
		newStepsCmd(a),
		newEnsembleCmd(a),
		newShowCmd(a),
		newParamsCmd(a),
		newRequestsCmd(a),
		newRetrieveCmd(a),
	)
	return root
}

// resolveControl returns --control, or the control file found in --dir.
func (a *app) resolveControl() (string, error) {
	if a.controlPath != "" {
		return a.controlPath, nil
	}
	return control.FindControlFile(a.dir)
}

// editControl loads the control file, applies edit, and saves the result.
// Nothing is written when edit fails.
func (a *app) editControl(edit func(*control.Document) error) (*control.Document, error) {
	path, err := a.resolveControl()
	if err != nil {
		return nil, err
	}
	doc, err := control.Load(path)
	if err != nil {
		return nil, err
	}
	if err := edit(doc); err != nil {
		return nil, err
	}
	if err := doc.Save(path); err != nil {
		return nil, err
	}
	a.logger.Info("control file updated", "path", path, "directives", doc.Len())
	return doc, nil
}
