package domain

import "strings"

// RegimeParameters holds annualized return/volatility for a market regime.
type RegimeParameters struct {
	AnnualReturn float64
	AnnualVol    float64
}

// Regime key constants
const (
	RegimeBalanced     = "balanced"
	RegimeBull         = "bull"
	RegimeBear         = "bear"
	RegimeHighVol      = "high_vol"
	RegimeCryptoWinter = "crypto_winter"
)

// Predefined regime presets.
var (
	RegimeParamsBalanced     = RegimeParameters{AnnualReturn: 0.07, AnnualVol: 0.15}
	RegimeParamsBull         = RegimeParameters{AnnualReturn: 0.15, AnnualVol: 0.25}
	RegimeParamsBear         = RegimeParameters{AnnualReturn: -0.05, AnnualVol: 0.35}
	RegimeParamsHighVol      = RegimeParameters{AnnualReturn: 0.07, AnnualVol: 0.40}
	RegimeParamsCryptoWinter = RegimeParameters{AnnualReturn: -0.15, AnnualVol: 0.70}
)

// regimeAliases maps every accepted spelling to its canonical key.
var regimeAliases = map[string]string{
	"bull":            RegimeBull,
	"bull_cycle":      RegimeBull,
	"bear":            RegimeBear,
	"bear_cycle":      RegimeBear,
	"high_vol":        RegimeHighVol,
	"high_volatility": RegimeHighVol,
	"crypto_winter":   RegimeCryptoWinter,
	"winter":          RegimeCryptoWinter,
	"balanced":        RegimeBalanced,
}

var regimeLabels = map[string]string{
	RegimeBull:         "bull cycle",
	RegimeBear:         "bear cycle",
	RegimeHighVol:      "high volatility year",
	RegimeCryptoWinter: "crypto winter",
	RegimeBalanced:     "normal market conditions",
}

// NormalizeRegime lower-cases and trims a regime name. Empty input becomes "balanced".
// The result is not resolved against the preset table.
func NormalizeRegime(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return RegimeBalanced
	}
	return key
}

// CanonicalRegime resolves a regime name to its canonical key.
// Unknown names resolve to "balanced".
func CanonicalRegime(name string) string {
	if key, ok := regimeAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return key
	}
	return RegimeBalanced
}

// RegimeParams returns the return/volatility preset for a regime name.
// Never fails: unknown names get the balanced preset.
func RegimeParams(name string) RegimeParameters {
	switch CanonicalRegime(name) {
	case RegimeBull:
		return RegimeParamsBull
	case RegimeBear:
		return RegimeParamsBear
	case RegimeHighVol:
		return RegimeParamsHighVol
	case RegimeCryptoWinter:
		return RegimeParamsCryptoWinter
	default:
		return RegimeParamsBalanced
	}
}

// RegimeLabel returns the narrative label for a regime name.
func RegimeLabel(name string) string {
	return regimeLabels[CanonicalRegime(name)]
}

// Regimes returns the canonical regime keys in display order.
func Regimes() []string {
	return []string{RegimeBalanced, RegimeBull, RegimeBear, RegimeHighVol, RegimeCryptoWinter}
}
