package api

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"networth-scenario-lab/internal/domain"
)

func TestParseScenarioRequest_Defaults(t *testing.T) {
	for _, body := range []string{"", "   ", "{}", "null", `{"regime": null}`, `{"regime": ""}`} {
		req, err := ParseScenarioRequest([]byte(body))
		require.NoError(t, err, "body %q", body)

		assert.Equal(t, 450.0, req.Input.MonthlyInvestment)
		assert.Equal(t, 200.0, req.Input.ExtraLoanPayment)
		assert.Equal(t, 10, req.Input.HorizonYears)
		assert.Equal(t, "balanced", req.Input.Regime)
		assert.False(t, req.HasSeed)
	}
}

func TestParseScenarioRequest_Values(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		mi      float64
		extra   float64
		horizon int
		regime  string
	}{
		{"numbers", `{"monthlyInvestment": 1200.5, "extraLoanPayment": 0, "horizonYears": 25, "regime": "bear"}`, 1200.5, 0, 25, "bear"},
		{"numeric strings", `{"monthlyInvestment": " 300 ", "extraLoanPayment": "1e2", "horizonYears": "7"}`, 300, 100, 7, "balanced"},
		{"negative money clamps", `{"monthlyInvestment": -50, "extraLoanPayment": "-1"}`, 0, 0, 10, "balanced"},
		{"horizon above range", `{"horizonYears": 999}`, 450, 200, 40, "balanced"},
		{"horizon below range", `{"horizonYears": -3}`, 450, 200, 1, "balanced"},
		{"horizon zero", `{"horizonYears": 0}`, 450, 200, 1, "balanced"},
		{"float horizon truncates", `{"horizonYears": 12.9}`, 450, 200, 12, "balanced"},
		{"huge horizon", `{"horizonYears": 1e300}`, 450, 200, 40, "balanced"},
		{"unknown regime kept", `{"regime": "mars_colony"}`, 450, 200, 10, "mars_colony"},
		{"money at ceiling", `{"monthlyInvestment": 1e9, "extraLoanPayment": "1e9"}`, 1e9, 1e9, 10, "balanced"},
		{"blank regime kept", `{"regime": " "}`, 450, 200, 10, " "},
		{"unknown fields ignored", `{"foo": [1,2], "horizonYears": 5}`, 450, 200, 5, "balanced"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseScenarioRequest([]byte(tt.body))
			require.NoError(t, err)

			assert.Equal(t, tt.mi, req.Input.MonthlyInvestment)
			assert.Equal(t, tt.extra, req.Input.ExtraLoanPayment)
			assert.Equal(t, tt.horizon, req.Input.HorizonYears)
			assert.Equal(t, tt.regime, req.Input.Regime)
		})
	}
}

func TestParseScenarioRequest_Seed(t *testing.T) {
	req, err := ParseScenarioRequest([]byte(`{"seed": 18446744073709551615}`))
	require.NoError(t, err)
	assert.True(t, req.HasSeed)
	assert.Equal(t, uint64(18446744073709551615), req.Input.Seed)

	req, err = ParseScenarioRequest([]byte(`{"seed": "42"}`))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), req.Input.Seed)
}

func TestParseScenarioRequest_Invalid(t *testing.T) {
	bodies := []string{
		`not json`,
		`{"monthlyInvestment": 1`,
		`[1, 2]`,
		`"text"`,
		`{} {}`,
		`{"monthlyInvestment": null}`,
		`{"monthlyInvestment": true}`,
		`{"monthlyInvestment": "abc"}`,
		`{"monthlyInvestment": "NaN"}`,
		`{"extraLoanPayment": "Infinity"}`,
		`{"extraLoanPayment": 1e400}`,
		`{"extraLoanPayment": {}}`,
		`{"monthlyInvestment": 1e306}`,
		`{"extraLoanPayment": "1000000001"}`,
		`{"horizonYears": "10.5"}`,
		`{"horizonYears": "ten"}`,
		`{"horizonYears": null}`,
		`{"horizonYears": false}`,
		`{"regime": 5}`,
		`{"seed": -1}`,
		`{"seed": 1.5}`,
		`{"seed": true}`,
	}

	for _, body := range bodies {
		_, err := ParseScenarioRequest([]byte(body))
		assert.ErrorIs(t, err, ErrInvalidInput, "body %s", body)
	}
}

func TestNewScenarioInput_MoneyCeiling(t *testing.T) {
	_, err := NewScenarioInput(domain.MaxMoney*10, 0, 10, "balanced", 1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewScenarioInput(0, math.Inf(1), 10, "balanced", 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewScenarioInput(t *testing.T) {
	in, err := NewScenarioInput(-10, 75, 50, "bull", 7)
	require.NoError(t, err)
	assert.Equal(t, 0.0, in.MonthlyInvestment)
	assert.Equal(t, 75.0, in.ExtraLoanPayment)
	assert.Equal(t, 40, in.HorizonYears)
	assert.Equal(t, "bull", in.Regime)
	assert.Equal(t, uint64(7), in.Seed)
}
