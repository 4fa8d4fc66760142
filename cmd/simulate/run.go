package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"networth-scenario-lab/internal/api"
	"networth-scenario-lab/internal/coach"
	"networth-scenario-lab/internal/config"
	"networth-scenario-lab/internal/domain"
	"networth-scenario-lab/internal/observability"
	"networth-scenario-lab/internal/orchestrator"
	"networth-scenario-lab/internal/reporting"
)

// Output formats
const (
	formatJSON     = "json"
	formatMarkdown = "markdown"
	formatCSV      = "csv"
)

// Scenario flags
var (
	monthlyInvestment float64
	extraLoanPayment  float64
	horizonYears      int
	regime            string
	seed              uint64
	format            string
	outputPath        string
	useCoach          bool
)

func init() {
	flags := rootCmd.Flags()
	flags.Float64Var(&monthlyInvestment, "monthly-investment", domain.DefaultMonthlyInvestment, "Monthly investment contribution")
	flags.Float64Var(&extraLoanPayment, "extra-loan-payment", domain.DefaultExtraLoanPayment, "Extra monthly loan payment")
	flags.IntVar(&horizonYears, "horizon-years", domain.DefaultHorizonYears, "Horizon in years, clamped to [1, 40]")
	flags.StringVar(&regime, "regime", domain.RegimeBalanced, "Market regime: "+strings.Join(domain.Regimes(), ", "))
	flags.Uint64Var(&seed, "seed", 0, "Random seed (random when unset)")
	flags.StringVarP(&format, "format", "f", formatJSON, "Output format: json, markdown, csv")
	flags.StringVarP(&outputPath, "output", "o", "", "Write output to file instead of stdout")
	flags.BoolVar(&useCoach, "coach", false, "Ask the remote narrative coach (COACH_* settings)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.SetupLogger(os.Stderr, cfg.LogLevel, "console")

	format = strings.ToLower(format)
	switch format {
	case formatJSON, formatMarkdown, formatCSV:
	default:
		return fmt.Errorf("unknown format %q (want json, markdown or csv)", format)
	}

	in, err := api.NewScenarioInput(monthlyInvestment, extraLoanPayment, horizonYears, regime, resolveSeed(cmd, seed))
	if err != nil {
		return err
	}

	cfg.Coach.Enabled = useCoach
	// the CLI has no deadline of its own beyond signals
	cfg.RequestBudget = time.Hour

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, cleanup := orchestrator.FromConfig(ctx, cfg, logger)
	defer cleanup()

	start := time.Now()
	resp, err := engine.Run(ctx, in, &coach.Session{ID: "cli"})
	if err != nil {
		return fmt.Errorf("run scenario: %w", err)
	}
	logger.Info().
		Str("regime", resp.Regime).
		Uint64("seed", in.Seed).
		Dur("elapsed", time.Since(start)).
		Msg("scenario complete")

	out, err := render(reporting.NewReport(in, resp, time.Now()))
	if err != nil {
		return err
	}
	return write(out)
}

// resolveSeed returns the --seed value when it was given, else a random seed.
func resolveSeed(cmd *cobra.Command, seed uint64) uint64 {
	if cmd.Flags().Changed("seed") {
		return seed
	}
	return rand.Uint64()
}

func render(r *reporting.Report) ([]byte, error) {
	switch format {
	case formatMarkdown:
		return []byte(reporting.RenderMarkdown(r)), nil
	case formatCSV:
		return []byte(reporting.RenderCSV(r.Response.Distribution)), nil
	default:
		return reporting.RenderJSON(r)
	}
}

func write(out []byte) error {
	if outputPath == "" {
		_, err := os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", outputPath)
	return nil
}
