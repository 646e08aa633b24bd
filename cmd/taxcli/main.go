// Command taxcli classifies, extracts and calculates tax documents from
// the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Aashish23092/tax-form-engine/config"
	"github.com/Aashish23092/tax-form-engine/dto"
	"github.com/Aashish23092/tax-form-engine/logger"
	"github.com/Aashish23092/tax-form-engine/service"
)

type app struct {
	logger     *zap.Logger
	taxService *service.TaxService
	loader     *service.DocumentLoader
	password   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "taxcli",
		Short:        "Classify W-2/1099 documents, extract their fields and compute federal tax",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			zl, err := logger.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			svc, loader, err := service.NewFromConfig(cfg, zl)
			if err != nil {
				return err
			}
			a.logger, a.taxService, a.loader = zl, svc, loader
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	config.RegisterFlags(root.PersistentFlags())
	root.PersistentFlags().StringVar(&a.password, "password", "", "Password for encrypted PDFs")

	root.AddCommand(a.classifyCmd(), a.extractCmd(), a.calculateCmd())
	return root
}

func (a *app) load(paths []string) ([]dto.RawDocument, error) {
	docs := make([]dto.RawDocument, 0, len(paths))
	for _, path := range paths {
		doc, err := a.loader.LoadFile(path, a.password)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (a *app) classifyCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "classify <file>...",
		Short: "Show the form type of each document and why",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := a.load(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				results := make(map[string]any, len(docs))
				for _, doc := range docs {
					results[doc.Filename] = a.taxService.Classify(doc)
				}
				return writeJSON(out, results)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FILE\tTYPE\tRULE\tSCORES")
			for _, doc := range docs {
				exp := a.taxService.Classify(doc)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", doc.Filename, exp.DocumentType, exp.Rule, formatScores(exp.Scores))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full explanation as JSON")
	return cmd
}

func (a *app) extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file>...",
		Short: "Print the canonical record of each document as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := a.load(args)
			if err != nil {
				return err
			}
			resp, err := a.taxService.Extract(cmd.Context(), &dto.ExtractionRequest{Documents: docs})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func (a *app) calculateCmd() *cobra.Command {
	var (
		filingStatus string
		dependents   int
		education    string
		eic          string
		other        string
		xlsxPath     string
	)
	cmd := &cobra.Command{
		Use:   "calculate <file>...",
		Short: "Aggregate the documents and compute the federal tax result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := a.load(args)
			if err != nil {
				return err
			}
			req := &dto.CalculationRequest{
				Documents:     docs,
				FilingStatus:  filingStatus,
				NumDependents: dependents,
			}
			for _, c := range []struct {
				raw string
				dst *decimal.Decimal
			}{
				{education, &req.EducationCredits},
				{eic, &req.EarnedIncomeCredit},
				{other, &req.OtherCredits},
			} {
				if c.raw == "" {
					continue
				}
				if *c.dst, err = decimal.NewFromString(c.raw); err != nil {
					return fmt.Errorf("%w: %v", dto.ErrInvalidInput, err)
				}
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			resp, err := a.taxService.Calculate(ctx, req)
			if err != nil {
				return err
			}

			if xlsxPath != "" {
				data, err := service.ExportWorkbook(resp)
				if err != nil {
					return err
				}
				if err := os.WriteFile(xlsxPath, data, 0o644); err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&filingStatus, "filing-status", string(dto.FilingSingle), "single, married_joint, married_separate, head_of_household or qualifying_surviving_spouse")
	cmd.Flags().IntVar(&dependents, "dependents", 0, "Number of qualifying dependents")
	cmd.Flags().StringVar(&education, "education-credits", "", "Education credits amount")
	cmd.Flags().StringVar(&eic, "earned-income-credit", "", "Earned income credit amount")
	cmd.Flags().StringVar(&other, "other-credits", "", "Other credits amount")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write the result as an XLSX workbook to this path")
	return cmd
}

func formatScores(scores map[dto.DocumentType]int) string {
	types := make([]string, 0, len(scores))
	for dt, score := range scores {
		if score > 0 {
			types = append(types, string(dt))
		}
	}
	sort.Strings(types)
	out := ""
	for i, dt := range types {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s=%d", dt, scores[dto.DocumentType(dt)])
	}
	if out == "" {
		return "-"
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
