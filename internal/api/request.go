package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"networth-scenario-lab/internal/domain"
)

// ErrInvalidInput is the single rejection class of scenario requests.
var ErrInvalidInput = errors.New("invalid input")

// Request field names
const (
	fieldMonthlyInvestment = "monthlyInvestment"
	fieldExtraLoanPayment  = "extraLoanPayment"
	fieldHorizonYears      = "horizonYears"
	fieldRegime            = "regime"
	fieldSeed              = "seed"
)

// ScenarioRequest is a parsed scenario request. HasSeed is false when the
// caller left the seed to the server.
type ScenarioRequest struct {
	Input   domain.SimulationInput
	HasSeed bool
}

// ParseScenarioRequest decodes a scenario request body.
// Absent fields take their defaults; an empty or null body is an empty object,
// and a null regime is an absent one. Numbers may be JSON numbers or numeric
// strings. Everything else, including null numbers, booleans, NaN and Inf,
// is ErrInvalidInput.
func ParseScenarioRequest(body []byte) (*ScenarioRequest, error) {
	raw, err := decodeObject(body)
	if err != nil {
		return nil, err
	}

	mi, err := moneyField(raw, fieldMonthlyInvestment, domain.DefaultMonthlyInvestment)
	if err != nil {
		return nil, err
	}
	extra, err := moneyField(raw, fieldExtraLoanPayment, domain.DefaultExtraLoanPayment)
	if err != nil {
		return nil, err
	}
	horizon, err := horizonField(raw)
	if err != nil {
		return nil, err
	}
	regime, err := regimeField(raw)
	if err != nil {
		return nil, err
	}
	seed, hasSeed, err := seedField(raw)
	if err != nil {
		return nil, err
	}

	in, err := NewScenarioInput(mi, extra, horizon, regime, seed)
	if err != nil {
		return nil, err
	}
	return &ScenarioRequest{Input: in, HasSeed: hasSeed}, nil
}

// NewScenarioInput validates and clamps scenario parameters.
// Money must be finite and at most domain.MaxMoney; negatives become 0.
// Horizon is clamped to [1, 40].
func NewScenarioInput(monthlyInvestment, extraLoanPayment float64, horizonYears int, regime string, seed uint64) (domain.SimulationInput, error) {
	if !validMoney(monthlyInvestment) {
		return domain.SimulationInput{}, fmt.Errorf("%w: %s", ErrInvalidInput, fieldMonthlyInvestment)
	}
	if !validMoney(extraLoanPayment) {
		return domain.SimulationInput{}, fmt.Errorf("%w: %s", ErrInvalidInput, fieldExtraLoanPayment)
	}
	return domain.SimulationInput{
		MonthlyInvestment: domain.ClampMoney(monthlyInvestment),
		ExtraLoanPayment:  domain.ClampMoney(extraLoanPayment),
		HorizonYears:      domain.ClampHorizon(horizonYears),
		Regime:            regime,
		Seed:              seed,
	}, nil
}

func validMoney(f float64) bool {
	return finite(f) && f <= domain.MaxMoney
}

// decodeObject decodes the request object. An empty body and a JSON null are
// both the empty object.
func decodeObject(body []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data", ErrInvalidInput)
	}

	if v == nil {
		return map[string]any{}, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: body is not an object", ErrInvalidInput)
	}
	return obj, nil
}

// numberValue accepts a JSON number or a numeric string.
func numberValue(v any) (float64, bool) {
	var s string
	switch x := v.(type) {
	case json.Number:
		s = x.String()
	case string:
		s = strings.TrimSpace(x)
	default:
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(f) {
		return 0, false
	}
	return f, true
}

func moneyField(raw map[string]any, name string, def float64) (float64, error) {
	v, present := raw[name]
	if !present {
		return def, nil
	}
	f, ok := numberValue(v)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrInvalidInput, name)
	}
	return f, nil
}

// horizonField truncates a JSON number toward zero; a string must be an integer.
func horizonField(raw map[string]any) (int, error) {
	v, present := raw[fieldHorizonYears]
	if !present {
		return domain.DefaultHorizonYears, nil
	}

	invalid := fmt.Errorf("%w: %s", ErrInvalidInput, fieldHorizonYears)
	switch x := v.(type) {
	case json.Number:
		f, ok := numberValue(x)
		if !ok {
			return 0, invalid
		}
		// clamp before converting so huge values cannot overflow int
		f = math.Max(math.Min(math.Trunc(f), domain.MaxHorizonYears+1), domain.MinHorizonYears-1)
		return int(f), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, invalid
		}
		return n, nil
	default:
		return 0, invalid
	}
}

func regimeField(raw map[string]any) (string, error) {
	v := raw[fieldRegime]
	if v == nil {
		return domain.RegimeBalanced, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidInput, fieldRegime)
	}
	if s == "" {
		return domain.RegimeBalanced, nil
	}
	return s, nil
}

func seedField(raw map[string]any) (uint64, bool, error) {
	v, present := raw[fieldSeed]
	if !present {
		return 0, false, nil
	}

	var s string
	switch x := v.(type) {
	case json.Number:
		s = x.String()
	case string:
		s = strings.TrimSpace(x)
	default:
		return 0, false, fmt.Errorf("%w: %s", ErrInvalidInput, fieldSeed)
	}
	seed, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s", ErrInvalidInput, fieldSeed)
	}
	return seed, true, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
