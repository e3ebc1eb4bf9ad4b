package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/csg33k/brq-ebookings/internal/adapters/brq"
	"github.com/csg33k/brq-ebookings/internal/app"
	"github.com/csg33k/brq-ebookings/internal/config"
	"github.com/csg33k/brq-ebookings/internal/domain"
	"github.com/csg33k/brq-ebookings/internal/salesarea"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	configPath string
	mapping    string
	cfg        *config.Config
	log        *slog.Logger
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:          "brq",
		Short:        "Parse, aggregate and report on BRQ booking-request files",
		SilenceUsage: true,
	}
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(o.configPath)
		if err != nil {
			return err
		}
		if o.mapping != "" {
			cfg.SalesAreaPath = o.mapping
		}
		log, err := app.NewLogger(cfg)
		if err != nil {
			return err
		}
		slog.SetDefault(log)
		o.cfg, o.log = cfg, log
		return nil
	}
	root.PersistentFlags().StringVar(&o.configPath, "config", os.Getenv("BRQ_CONFIG"), "path to YAML config file")
	root.PersistentFlags().StringVar(&o.mapping, "mapping", "", "sales area mapping file (.csv or .xlsx)")

	root.AddCommand(
		newParseCmd(o),
		newValidateCmd(o),
		newHeaderCmd(o),
		newSpotsCmd(o),
		newSplitCmd(o),
		newReportCmd(o),
		newServeCmd(o),
	)
	return root
}

// readDocument parses the BRQ file at path, logging suppressed conversions.
func (o *options) readDocument(path string) (*domain.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := brq.Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, f := range doc.Diagnostics {
		o.log.Warn("field conversion suppressed", "line", f.Line, "field", f.Field, "kind", f.Kind, "raw", f.Raw)
	}
	return doc, nil
}

func (o *options) index() (*salesarea.Index, error) {
	if o.cfg.SalesAreaPath == "" {
		return nil, fmt.Errorf("no sales area mapping (use --mapping or SEIL_SALES_AREA_MAPPING_PATH)")
	}
	rows, err := salesarea.LoadFile(o.cfg.SalesAreaPath)
	if err != nil {
		return nil, err
	}
	return salesarea.Build(rows), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
