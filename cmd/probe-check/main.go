// Command probe-check validates probeinterface JSON files, converts them to
// the persisted record form, and prints the namespace schema.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"probecore/docs/schema/probeinterface"
	"probecore/pkg/convert"
	"probecore/pkg/device"
	"probecore/pkg/device/schema"
	"probecore/pkg/probe"
)

var exitFunc = os.Exit

func main() {
	if err := newRootCmd().Execute(); err != nil {
		exitFunc(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "probe-check",
		Short:         "Validate and convert probeinterface probe descriptions",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(newValidateCmd(&verbose))
	root.AddCommand(newConvertCmd(&verbose))
	root.AddCommand(newSchemaCmd())
	return root
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	return cfg.Build()
}

func loadGroup(path string) (*probe.ProbeGroup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return probe.ReadGroup(f)
}

func newValidateCmd(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a probeinterface JSON file against the namespace schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(*verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			group, err := loadGroup(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			records, err := convert.FromProbeGroup(group)
			if err != nil {
				return fmt.Errorf("convert %s: %w", args[0], err)
			}
			for i, rec := range records {
				if err := schema.ValidateRecord(rec); err != nil {
					return fmt.Errorf("probe %d (%s): %w", i, rec.Name, err)
				}
				logger.Debug("probe valid",
					zap.Int("index", i),
					zap.String("name", rec.Name),
					zap.Int("contacts", rec.ContactCount()))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d probe(s) valid\n", args[0], len(records))
			return nil
		},
	}
}

func newConvertCmd(verbose *bool) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a probeinterface JSON file to persisted probe records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(*verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			group, err := loadGroup(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			records, err := convert.FromProbeGroup(group)
			if err != nil {
				return fmt.Errorf("convert %s: %w", args[0], err)
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(struct {
				Namespace string               `json:"namespace"`
				Version   string               `json:"version"`
				Probes    []device.ProbeRecord `json:"probes"`
			}{schema.NamespaceName, schema.NamespaceVersion, records}); err != nil {
				return err
			}
			logger.Info("converted", zap.String("file", args[0]), zap.Int("probes", len(records)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write records to file instead of stdout")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the embedded namespace declaration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(probeinterface.Spec())
			return err
		},
	}
}
