package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/csg33k/brq-ebookings/internal/adapters/brq"
	"github.com/csg33k/brq-ebookings/internal/adapters/pdf"
	"github.com/csg33k/brq-ebookings/internal/app"
	"github.com/csg33k/brq-ebookings/internal/campaign"
	"github.com/csg33k/brq-ebookings/internal/config"
	"github.com/csg33k/brq-ebookings/internal/domain"
	"github.com/csg33k/brq-ebookings/internal/report"
	"github.com/csg33k/brq-ebookings/internal/spots"
	"github.com/csg33k/brq-ebookings/internal/validation"
)

func newParseCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "Print a BRQ file as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := o.readDocument(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), doc)
		},
	}
}

func newValidateCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Run the data-quality rules against a BRQ file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := o.readDocument(args[0])
			if err != nil {
				return err
			}
			ix, err := o.index()
			if err != nil {
				return err
			}
			rules := validation.Default(ix, validation.Settings{
				AllowedNetworks: o.cfg.AllowedNetworks,
				DemoTolerance:   o.cfg.DemoTolerancePercent,
			})
			res := validation.NewEngine(o.log, rules...).Run(doc)
			if err := printJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if res.Failed() {
				return fmt.Errorf("validation failed")
			}
			return nil
		},
	}
}

func newHeaderCmd(o *options) *cobra.Command {
	var (
		code       string
		approvalID int
		existing   string
		pdfOut     string
	)
	cmd := &cobra.Command{
		Use:   "header <file>",
		Short: "Compute the campaign header payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := o.readDocument(args[0])
			if err != nil {
				return err
			}
			ix, err := o.index()
			if err != nil {
				return err
			}
			h, err := campaign.New(ix, o.cfg.DaypartID, o.log).Aggregate(doc.Details)
			if err != nil {
				return err
			}
			if pdfOut != "" {
				f, err := os.Create(pdfOut)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := pdf.GenerateSummary(f, doc, h, nil); err != nil {
					return err
				}
			}
			if code == "" {
				return printJSON(cmd.OutOrStdout(), h)
			}

			var c domain.Campaign
			if existing != "" {
				raw, err := os.ReadFile(existing)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(raw, &c); err != nil {
					return fmt.Errorf("%s: %w", existing, err)
				}
			}
			return printJSON(cmd.OutOrStdout(), campaign.UpdateRequest(campaign.Merge(c, h, code), approvalID))
		},
	}
	cmd.Flags().StringVar(&code, "campaign", "", "campaign code; wraps the header in an update request")
	cmd.Flags().IntVar(&approvalID, "approval-id", 0, "approval id for the update request")
	cmd.Flags().StringVar(&existing, "existing", "", "JSON file holding the current downstream campaign")
	cmd.Flags().StringVar(&pdfOut, "pdf", "", "also write a summary PDF to this path")
	return cmd
}

func newSpotsCmd(o *options) *cobra.Command {
	var (
		campaignNumber int
		outDir         string
	)
	cmd := &cobra.Command{
		Use:   "spots <file>",
		Short: "Build the spot booking payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := o.readDocument(args[0])
			if err != nil {
				return err
			}
			ix, err := o.index()
			if err != nil {
				return err
			}
			payload, err := spots.NewBuilder(ix, spots.WithLogger(o.log)).Build(doc.Details, campaignNumber)
			if err != nil {
				return err
			}
			if outDir == "" {
				return printJSON(cmd.OutOrStdout(), payload)
			}
			prefix := filepath.Base(args[0])
			for _, p := range spots.Paginate(prefix, payload, o.cfg.SpotChunkLimit) {
				path := filepath.Join(outDir, filepath.FromSlash(p.Key))
				if err := writeJSONFile(path, &p.Payload); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&campaignNumber, "campaign-number", 0, "downstream campaign number")
	cmd.Flags().StringVar(&outDir, "out", "", "write paged payloads under this directory instead of stdout")
	cmd.MarkFlagRequired("campaign-number")
	return cmd
}

func newSplitCmd(o *options) *cobra.Command {
	var threshold string
	cmd := &cobra.Command{
		Use:   "split <file>",
		Short: "Split a BRQ file at the year-end threshold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := o.readDocument(args[0])
			if err != nil {
				return err
			}
			at, err := o.cfg.SplitThreshold()
			if err != nil {
				return err
			}
			if threshold != "" {
				if at, err = time.Parse(config.ThresholdLayout, threshold); err != nil {
					return fmt.Errorf("--threshold: %w", err)
				}
			}
			if at.IsZero() {
				at = brq.LastSaturdayOfYear(time.Now().Year())
			}
			before, after, split, err := brq.SplitAtThreshold(doc, at)
			if err != nil {
				return err
			}
			if !split {
				fmt.Fprintln(cmd.OutOrStdout(), "not split: every detail falls on one side of", at.Format(config.ThresholdLayout))
				return nil
			}
			for i, child := range []*domain.Document{before, after} {
				path := filepath.Join(filepath.Dir(args[0]), brq.SplitFileName(filepath.Base(args[0]), i+1))
				if err := os.WriteFile(path, []byte(brq.Encode(child)), 0o644); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&threshold, "threshold", "", "split date (YYYY-MM-DD); defaults to the last Saturday of this year")
	return cmd
}

func newReportCmd(o *options) *cobra.Command {
	var (
		responsePath   string
		campaignNumber int
		approvalID     int
		requestID      string
		xlsx           bool
	)
	cmd := &cobra.Command{
		Use:   "report <file>",
		Short: "Write the spot failure report for a downstream response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := o.readDocument(args[0])
			if err != nil {
				return err
			}
			ix, err := o.index()
			if err != nil {
				return err
			}
			payload, err := spots.NewBuilder(ix, spots.WithLogger(o.log)).Build(doc.Details, campaignNumber)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(responsePath)
			if err != nil {
				return err
			}
			resp, err := report.ParseResponse(raw)
			if err != nil {
				return err
			}
			pr, err := report.Build(doc, payload, resp)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "overall: %s, failures: %d\n", pr.Overall, len(pr.Rows))
			if len(pr.Rows) == 0 {
				return nil
			}

			if err := os.MkdirAll(o.cfg.ReportDir, 0o755); err != nil {
				return err
			}
			if requestID == "" {
				if fn, err := brq.ResolveFileName(filepath.Base(args[0]), false); err == nil {
					requestID = fn.RequestID
				}
			}
			name := report.FileName(requestID, approvalID, time.Now(), 1)
			path := filepath.Join(o.cfg.ReportDir, name)
			if err := writeReport(path, pr.Rows, report.WriteCSV); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			if xlsx {
				path = path[:len(path)-len(".csv")] + ".xlsx"
				if err := writeReport(path, pr.Rows, report.WriteXLSX); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&responsePath, "response", "", "downstream response JSON")
	cmd.Flags().IntVar(&campaignNumber, "campaign-number", 0, "campaign number the payload was built for")
	cmd.Flags().IntVar(&approvalID, "approval-id", 0, "approval id used in the report name")
	cmd.Flags().StringVar(&requestID, "request-id", "", "BRQ request id; defaults to the one in the file name")
	cmd.Flags().BoolVar(&xlsx, "xlsx", false, "also write an XLSX workbook")
	cmd.MarkFlagRequired("response")
	return cmd
}

func newServeCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app.New(context.Background(), o.cfg, o.log)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.ListenAndServe()
		},
	}
}
