package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"networth-scenario-lab/internal/coach"
	"networth-scenario-lab/internal/config"
)

func TestFromConfig_DisabledCoachUsesFallback(t *testing.T) {
	cfg := &config.Config{
		RequestBudget:    5 * time.Second,
		PrimaryTrials:    40,
		ComparisonTrials: 20,
		SimWorkers:       2,
		Coach:            config.CoachConfig{Enabled: false, APIKey: "ignored", Endpoint: "http://127.0.0.1:1"},
		Redis:            config.RedisConfig{Addr: "127.0.0.1:1"},
	}

	orch, cleanup := FromConfig(context.Background(), cfg, zerolog.Nop())
	defer cleanup()

	resp, err := orch.Run(context.Background(), defaultInput("bull"), nil)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if resp.Assumptions.Simulations != 40 {
		t.Errorf("expected 40 simulations, got %d", resp.Assumptions.Simulations)
	}
	if resp.Coach != coach.Fallback(NarrativeMetrics(defaultInput("bull"), &resp.AggregateResult)) {
		t.Errorf("expected fallback narrative, got %+v", resp.Coach)
	}
}
