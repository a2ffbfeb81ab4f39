package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/go-playground/validator/v10"
	"github.com/phuslu/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/api"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/config"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/dashboard"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/datasource"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/report"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/internal/statement"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/pkg/models"
	"github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/pkg/utils"
)

var validate = validator.New()

// addWindowFlags registers the period window and metric flags shared by the
// analysis commands.
func addWindowFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "first quarter of the range, e.g. Dec-15")
	cmd.Flags().String("to", "", "last quarter of the range, e.g. Sep-24")
	cmd.Flags().StringSlice("periods", nil, "explicit quarters, e.g. Mar-16,Mar-17 (excludes --from/--to)")
	cmd.Flags().StringSlice("metrics", nil, "metrics to analyse (default: analysis.metrics)")
	cmd.Flags().String("base-metric", "", "common-size base metric (default: analysis.base_metric)")
	cmd.Flags().Bool("plain", false, "print raw markdown instead of terminal rendering")
	cmd.Flags().Bool("json", false, "print the result as JSON")
	cmd.MarkFlagsMutuallyExclusive("periods", "from")
	cmd.MarkFlagsMutuallyExclusive("periods", "to")
}

// windowRequest builds an analysis request from the window flags. Unlike the
// API, a range bound may be left open; it defaults to the calendar edge.
func windowRequest(cmd *cobra.Command, ticker string) models.AnalyzeRequest {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	periods, _ := cmd.Flags().GetStringSlice("periods")
	metrics, _ := cmd.Flags().GetStringSlice("metrics")
	base, _ := cmd.Flags().GetString("base-metric")
	req := models.AnalyzeRequest{
		Ticker:     utils.NormalizeTicker(ticker),
		From:       from,
		To:         to,
		Periods:    periods,
		Metrics:    metrics,
		BaseMetric: base,
	}
	if cmd.Flags().Lookup("base-period") != nil {
		req.BasePeriod, _ = cmd.Flags().GetString("base-period")
	}
	return req
}

func runAnalysis(cmd *cobra.Command, ticker string) (*dashboard.Result, error) {
	svc, _, err := newService()
	if err != nil {
		return nil, err
	}
	req := windowRequest(cmd, ticker)
	if err := validate.Var(req.Ticker, "required,max=32"); err != nil {
		return nil, fmt.Errorf("ticker: %w", err)
	}
	return svc.Run(cmd.Context(), req)
}

// printMarkdown renders md for the terminal unless --plain is set or
// stdout is not a terminal.
func printMarkdown(cmd *cobra.Command, md string) error {
	plain, _ := cmd.Flags().GetBool("plain")
	if plain || !log.IsTerminal(os.Stdout.Fd()) {
		_, err := fmt.Fprint(cmd.OutOrStdout(), md)
		return err
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(140))
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
}

// emit prints res as JSON or as the given report sections.
func emit(cmd *cobra.Command, res *dashboard.Result, sections ...report.Section) error {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd, res)
	}
	printWarnings(res.Warnings())
	rc := report.DefaultReportConfig()
	rc.Sections = sections
	return printMarkdown(cmd, report.Markdown(res, rc))
}

// --- Tickers Command ---

var tickersCmd = &cobra.Command{
	Use:   "tickers",
	Short: "List tickers with statement documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		src := datasource.NewFileSource(cfg.Data)
		list, err := src.List(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TICKER\tFORMAT\tSIZE\tMODIFIED")
		for _, t := range list {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", t.Ticker, t.Format, t.Size, utils.FormatDateTimeIST(t.Modified))
		}
		return tw.Flush()
	},
}

// --- Calendar Command ---

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Print the master calendar of supported quarters",
	RunE: func(cmd *cobra.Command, args []string) error {
		cal, err := cfg.MasterCalendar()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PERIOD\tFISCAL QUARTER")
		for _, p := range cal.Periods() {
			fmt.Fprintf(tw, "%s\t%s\n", p, utils.FiscalQuarterLabel(p.Month().Calendar(), p.Year()))
		}
		return tw.Flush()
	},
}

// --- Show Command ---

var showCmd = &cobra.Command{
	Use:   "show [ticker]",
	Short: "Show the merged statements of a ticker for a window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := runAnalysis(cmd, args[0])
		if err != nil {
			return err
		}
		rc := report.DefaultReportConfig()
		rc.Sections = []report.Section{report.SectionStatements, report.SectionDiagnostics}
		if t, _ := cmd.Flags().GetString("type"); t != "" {
			typ, err := statement.ParseStatementType(t)
			if err != nil {
				return err
			}
			rc.Statements = []statement.StatementType{typ}
			res.Merged = res.Merged.Only(typ)
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd, res.Merged)
		}
		printWarnings(res.Warnings())
		return printMarkdown(cmd, report.Markdown(res, rc))
	},
}

// --- Trend Command ---

var trendCmd = &cobra.Command{
	Use:   "trend [ticker]",
	Short: "Normalised [0,1] trend of each metric over a window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := runAnalysis(cmd, args[0])
		if err != nil {
			return err
		}
		return emit(cmd, res, report.SectionSummary, report.SectionTrend, report.SectionGrowth)
	},
}

// --- Common Size Command ---

var commonSizeCmd = &cobra.Command{
	Use:     "common-size [ticker]",
	Aliases: []string{"cs"},
	Short:   "Each metric as a percentage of the base metric",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := runAnalysis(cmd, args[0])
		if err != nil {
			return err
		}
		return emit(cmd, res, report.SectionCommonSize, report.SectionRatios)
	},
}

// --- Report Command ---

var reportCmd = &cobra.Command{
	Use:   "report [ticker]",
	Short: "Generate a full report (markdown, HTML or PDF)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, output, err := reportConfig(cmd)
		if err != nil {
			return err
		}
		res, err := runAnalysis(cmd, args[0])
		if err != nil {
			return err
		}
		printWarnings(res.Warnings())

		if rc.Format == report.FormatMarkdown {
			md := report.Markdown(res, rc)
			if output == "" {
				return printMarkdown(cmd, md)
			}
			return writeOutput(cmd, md, output)
		}
		html, err := report.GenerateHTML(res, rc)
		if err != nil {
			return err
		}
		if output == "" {
			_, err := fmt.Fprint(cmd.OutOrStdout(), html)
			return err
		}
		return writeOutput(cmd, html, output)
	},
}

// --- Compare Command ---

var compareCmd = &cobra.Command{
	Use:   "compare [ticker...]",
	Short: "Run the same window over several tickers",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, output, err := reportConfig(cmd)
		if err != nil {
			return err
		}
		svc, _, err := newService()
		if err != nil {
			return err
		}
		base := windowRequest(cmd, "")
		req := models.CompareRequest{
			Tickers:    args,
			From:       base.From,
			To:         base.To,
			Periods:    base.Periods,
			Metrics:    base.Metrics,
			BaseMetric: base.BaseMetric,
		}
		if err := validate.Var(req.Tickers, "required,min=1,dive,required,max=32"); err != nil {
			return fmt.Errorf("tickers: %w", err)
		}
		cmp, err := svc.Compare(cmd.Context(), req)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd, cmp)
		}
		for _, f := range cmp.Failures {
			fmt.Fprintf(os.Stderr, "warning: %s: %s\n", f.Ticker, f.Error)
		}
		if len(cmp.Results) == 0 {
			return errors.New("no ticker could be analysed")
		}

		if rc.Format == report.FormatMarkdown {
			md := report.CompareMarkdown(cmp, rc)
			if output == "" {
				return printMarkdown(cmd, md)
			}
			return writeOutput(cmd, md, output)
		}
		html, err := report.GenerateCompareHTML(cmp, rc)
		if err != nil {
			return err
		}
		if output == "" {
			_, err := fmt.Fprint(cmd.OutOrStdout(), html)
			return err
		}
		return writeOutput(cmd, html, output)
	},
}

// reportConfig reads --format, --sections, --title and --output.
func reportConfig(cmd *cobra.Command) (report.ReportConfig, string, error) {
	rc := report.DefaultReportConfig()
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	rc.Title, _ = cmd.Flags().GetString("title")

	switch report.ReportFormat(strings.ToLower(format)) {
	case report.FormatMarkdown, "md":
		rc.Format = report.FormatMarkdown
	case report.FormatHTML:
		rc.Format = report.FormatHTML
	case report.FormatPDF:
		rc.Format = report.FormatPDF
		if output == "" {
			return rc, "", errors.New("--format pdf needs --output")
		}
	default:
		return rc, "", fmt.Errorf("unsupported format %q (markdown, html, pdf)", format)
	}

	// a .pdf output always goes through HTML
	if strings.EqualFold(filepath.Ext(output), ".pdf") {
		rc.Format = report.FormatPDF
	}

	names, _ := cmd.Flags().GetStringSlice("sections")
	if len(names) > 0 {
		rc.Sections = nil
		for _, n := range names {
			sec, err := report.ParseSection(n)
			if err != nil {
				return rc, "", err
			}
			rc.Sections = append(rc.Sections, sec)
		}
	}
	return rc, output, nil
}

func writeOutput(cmd *cobra.Command, content, output string) error {
	path, err := report.WriteReport(cmd.Context(), content, output, report.DefaultPDFConfig())
	if err != nil {
		return err
	}
	if path != output {
		fmt.Fprintf(os.Stderr, "warning: no PDF engine found, wrote HTML instead\n")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", path)
	return nil
}

// --- Config Command ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or write the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration and secret status as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(cmd, map[string]any{
			"config": cfg,
			"keys":   config.CheckKeys(cfg),
		})
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the effective configuration as YAML (default ./config/config.yaml)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join("config", "config.yaml")
		if len(args) == 1 {
			path = args[0]
		}
		if force, _ := cmd.Flags().GetBool("force"); !force {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s exists (use --force to overwrite)", path)
			}
		}
		if err := cfg.SaveToFile(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "config written to %s\n", path)
		return nil
	},
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		host, _ := cmd.Flags().GetString("host")
		if host == "" {
			host = cfg.API.Host
		}
		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = cfg.API.Port
		}
		noUI, _ := cmd.Flags().GetBool("no-ui")
		watch, _ := cmd.Flags().GetBool("watch")

		svc, src, err := newService()
		if err != nil {
			return err
		}
		srv := api.NewServer(svc, version)
		if noUI {
			srv.SetServeUI(false)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.ListenAndServe(ctx, fmt.Sprintf("%s:%d", host, port))
		})
		if ttl := time.Duration(cfg.Data.CacheTTL) * time.Second; ttl > 0 {
			g.Go(func() error { return src.SweepCache(ctx, max(ttl, time.Minute)) })
		}
		if watch || cfg.Data.Watch {
			w := datasource.NewWatcher(src, srv.NotifyStatementsUpdated)
			g.Go(func() error { return w.Run(ctx) })
		}
		return g.Wait()
	},
}

func init() {
	for _, c := range []*cobra.Command{showCmd, trendCmd, commonSizeCmd, reportCmd, compareCmd} {
		addWindowFlags(c)
	}
	showCmd.Flags().String("type", "", "only one statement: income, balance or cashflow")
	commonSizeCmd.Flags().String("base-period", "", "quarter to break down (default: latest with data)")
	reportCmd.Flags().String("base-period", "", "common-size quarter (default: latest with data)")

	for _, c := range []*cobra.Command{reportCmd, compareCmd} {
		c.Flags().String("format", "markdown", "output format: markdown, html or pdf")
		c.Flags().StringP("output", "o", "", "write to file instead of stdout")
		c.Flags().StringSlice("sections", nil, "report sections (default: all)")
		c.Flags().String("title", "", "report title")
	}

	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
	configCmd.AddCommand(configShowCmd, configInitCmd)

	serveCmd.Flags().String("host", "", "listen host (default: api.host)")
	serveCmd.Flags().Int("port", 0, "listen port (default: api.port)")
	serveCmd.Flags().Bool("no-ui", false, "do not serve the web UI")
	serveCmd.Flags().Bool("watch", false, "watch the data directory and push updates (also data.watch)")
}
