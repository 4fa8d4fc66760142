package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"networth-scenario-lab/internal/coach"
	"networth-scenario-lab/internal/domain"
	"networth-scenario-lab/internal/simulation"
)

type stubNarrator struct {
	result coach.Result
	calls  int
	last   domain.NarrativeMetrics
}

func (s *stubNarrator) Narrate(_ context.Context, _ *coach.Session, m domain.NarrativeMetrics) coach.Result {
	s.calls++
	s.last = m
	return s.result
}

func newTestOrchestrator(n Narrator, budget time.Duration) *Orchestrator {
	runner := simulation.NewRunner(simulation.RunnerOptions{Workers: 4, Logger: zerolog.Nop()})
	return New(Options{
		Comparator: simulation.NewComparator(simulation.ComparatorOptions{
			Runner:           runner,
			PrimaryTrials:    60,
			ComparisonTrials: 40,
		}),
		Narrator: n,
		Budget:   budget,
		Logger:   zerolog.Nop(),
	})
}

func defaultInput(regime string) domain.SimulationInput {
	return domain.SimulationInput{
		MonthlyInvestment: domain.DefaultMonthlyInvestment,
		ExtraLoanPayment:  domain.DefaultExtraLoanPayment,
		HorizonYears:      domain.DefaultHorizonYears,
		Regime:            regime,
		Seed:              42,
	}
}

func TestOrchestrator_Run_FallbackWithoutNarrator(t *testing.T) {
	orch := newTestOrchestrator(nil, 0)

	resp, err := orch.Run(context.Background(), defaultInput("balanced"), nil)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if resp.Assumptions.Simulations != 60 {
		t.Errorf("expected 60 simulations, got %d", resp.Assumptions.Simulations)
	}
	if resp.Regime != "balanced" {
		t.Errorf("expected regime balanced, got %q", resp.Regime)
	}

	want := coach.Fallback(NarrativeMetrics(defaultInput("balanced"), &resp.AggregateResult))
	if resp.Coach != want {
		t.Errorf("expected fallback narrative %+v, got %+v", want, resp.Coach)
	}
	if resp.Explanation != resp.Coach.Commentary {
		t.Errorf("explanation should equal final commentary")
	}
	if resp.Coach.SavingsRatePct != 31 {
		t.Errorf("expected savings rate 31, got %d", resp.Coach.SavingsRatePct)
	}
}

func TestOrchestrator_Run_UnknownRegimeKeepsNormalizedName(t *testing.T) {
	orch := newTestOrchestrator(nil, 0)

	resp, err := orch.Run(context.Background(), defaultInput("  Mars_Colony "), nil)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if resp.Regime != "mars_colony" {
		t.Errorf("expected regime mars_colony, got %q", resp.Regime)
	}
	if resp.Assumptions.AnnualReturn != 0.07 || resp.Assumptions.AnnualVol != 0.15 {
		t.Errorf("expected balanced preset, got %+v", resp.Assumptions)
	}
}

func TestOrchestrator_Run_MergesCoachReply(t *testing.T) {
	stub := &stubNarrator{result: coach.Result{
		Status: coach.StatusOK,
		Reply:  &coach.Reply{Headline: "Bear cycle, thin cushion.", Tone: "caution"},
	}}
	orch := newTestOrchestrator(stub, 0)

	resp, err := orch.Run(context.Background(), defaultInput("bear_cycle"), &coach.Session{ID: "s1"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if stub.calls != 1 {
		t.Fatalf("expected 1 narrator call, got %d", stub.calls)
	}
	if stub.last.Regime != "bear cycle" {
		t.Errorf("expected regime label 'bear cycle', got %q", stub.last.Regime)
	}
	if stub.last.HorizonYears != 10 || stub.last.MonthlyInvestment != 450 {
		t.Errorf("unexpected metrics: %+v", stub.last)
	}

	if resp.Coach.Headline != "Bear cycle, thin cushion." {
		t.Errorf("expected coach headline, got %q", resp.Coach.Headline)
	}
	if resp.Coach.Tone != domain.ToneCaution {
		t.Errorf("expected caution tone, got %q", resp.Coach.Tone)
	}
	// Missing reply fields keep the fallback.
	fallback := coach.Fallback(stub.last)
	if resp.Coach.Commentary != fallback.Commentary {
		t.Errorf("expected fallback commentary, got %q", resp.Coach.Commentary)
	}
	if resp.Explanation != fallback.Commentary {
		t.Errorf("explanation should equal final commentary")
	}
}

func TestOrchestrator_Run_UnavailableCoachUsesFallback(t *testing.T) {
	stub := &stubNarrator{result: coach.Result{Status: coach.StatusUnavailable, Reason: coach.ReasonTimeout}}
	orch := newTestOrchestrator(stub, 0)

	resp, err := orch.Run(context.Background(), defaultInput("bull"), nil)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if resp.Coach != coach.Fallback(stub.last) {
		t.Errorf("expected fallback narrative, got %+v", resp.Coach)
	}
}

func TestOrchestrator_Run_ComparisonDeltas(t *testing.T) {
	orch := newTestOrchestrator(nil, 0)

	resp, err := orch.Run(context.Background(), defaultInput("crypto_winter"), nil)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if resp.Comparisons.Bull.DeltaNetWorthP50 >= 0 {
		t.Errorf("crypto winter should trail bull at p50, got delta %v", resp.Comparisons.Bull.DeltaNetWorthP50)
	}
	if resp.Comparisons.Baseline.DeltaNetWorthP50 >= 0 {
		t.Errorf("crypto winter should trail balanced at p50, got delta %v", resp.Comparisons.Baseline.DeltaNetWorthP50)
	}
}

func TestOrchestrator_Run_Deterministic(t *testing.T) {
	orch := newTestOrchestrator(nil, 0)

	a, err := orch.Run(context.Background(), defaultInput("high_vol"), nil)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	b, err := orch.Run(context.Background(), defaultInput("high_vol"), nil)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if a.Percentiles != b.Percentiles || a.Comparisons != b.Comparisons || a.Coach != b.Coach {
		t.Errorf("same seed produced different responses")
	}
}

func TestOrchestrator_Run_BudgetExceeded(t *testing.T) {
	stub := &stubNarrator{}
	orch := newTestOrchestrator(stub, time.Nanosecond)

	_, err := orch.Run(context.Background(), defaultInput("balanced"), nil)
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded, got: %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected wrapped deadline error, got: %v", err)
	}
	if stub.calls != 0 {
		t.Errorf("coach must not be called when the runs fail")
	}
}

func TestOrchestrator_Run_Canceled(t *testing.T) {
	orch := newTestOrchestrator(nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := orch.Run(ctx, defaultInput("balanced"), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
	if errors.Is(err, ErrBudgetExceeded) {
		t.Errorf("cancellation is not a budget overrun")
	}
}
