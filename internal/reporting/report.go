package reporting

import (
	"encoding/json"
	"fmt"
	"time"

	"networth-scenario-lab/internal/domain"
)

// Report is one rendered scenario run.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Seed        uint64

	// Request, after defaults and clamping
	Input domain.SimulationInput

	// Engine output
	Response *domain.ScenarioResponse
}

// NewReport creates a report for a finished scenario.
func NewReport(in domain.SimulationInput, resp *domain.ScenarioResponse, generatedAt time.Time) *Report {
	return &Report{
		GeneratedAt: generatedAt.UTC(),
		Seed:        in.Seed,
		Input:       in,
		Response:    resp,
	}
}

// RenderJSON renders the scenario response exactly as the HTTP API returns it, indented.
func RenderJSON(r *Report) ([]byte, error) {
	data, err := json.MarshalIndent(r.Response, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	return append(data, '\n'), nil
}
