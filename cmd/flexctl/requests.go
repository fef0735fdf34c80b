package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/couchcryptid/flex-control/internal/domain"
	"github.com/couchcryptid/flex-control/internal/manifest"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRequestsCmd(_ *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "requests <manifest>",
		Short: "Print the retrieval requests of a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := manifest.Load(args[0])
			if err != nil {
				return err
			}
			return writeRequests(cmd.OutOrStdout(), reqs, format)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "json", "output format: json or yaml")
	return cmd
}

func writeRequests(w io.Writer, reqs []*domain.Request, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reqs)
	case "yaml":
		if len(reqs) == 0 {
			return nil
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		for _, r := range reqs {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
