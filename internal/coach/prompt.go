package coach

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"networth-scenario-lab/internal/domain"
)

// ErrMalformedReply is returned when the model output is not a single JSON object.
var ErrMalformedReply = errors.New("malformed coach reply")

const systemPrompt = "You are a live, context-aware financial coach for an interactive scenario dashboard. " +
	"Your tone is calm, cinematic and precise, never cheesy or theatrical. " +
	"Given the user's scenario metrics and market regime, you output short, structured commentary in JSON only. You are:\n" +
	"- Scenario-aware: speak directly to the concrete numbers (percentiles, liquidity months, survival probability, recovery time).\n" +
	"- Regime-aware: explicitly reference the current regime (bull cycle, bear cycle, high volatility year, crypto winter) and how it shapes risk.\n" +
	"- Comparative: contrast this path with a more normal environment (longer drawdowns, faster recoveries, more fragile liquidity).\n" +
	"Do not ask questions or mention being an AI; speak like a seasoned risk manager, in plain professional language."

// buildMessages renders the chat messages for a metrics set.
func buildMessages(m domain.NarrativeMetrics) ([]Message, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal metrics: %w", err)
	}

	user := "Here is the current slider state and Monte Carlo summary as JSON:\n" +
		string(payload) + "\n\n" +
		"Return a single JSON object only, no markdown, with keys:\n" +
		"{\n" +
		"  \"headline\": string,\n" +
		"  \"commentary\": string,\n" +
		"  \"savings_rate_pct\": number,\n" +
		"  \"liquidity_months\": number,\n" +
		"  \"tone\": \"strong\" | \"balanced\" | \"caution\"\n" +
		"}\n" +
		"Keep it concrete and quantitative. Highlight when liquidity falls below ~6 months, how long recovery tends to take in this regime, " +
		"and what that means for the user in plain language. Always ground your lines in the provided numbers and the named regime."

	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: user},
	}, nil
}

// Reply is the model's narrative; zero fields were missing or of the wrong type.
type Reply struct {
	Headline        string  `json:"headline,omitempty"`
	Commentary      string  `json:"commentary,omitempty"`
	SavingsRatePct  float64 `json:"savings_rate_pct,omitempty"`
	LiquidityMonths float64 `json:"liquidity_months,omitempty"`
	Tone            string  `json:"tone,omitempty"`
}

// stripFences removes an optional ``` or ```json fence around the text.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimLeft(text, "`")
	if strings.HasPrefix(strings.ToLower(text), "json") {
		text = text[4:]
	}
	if i := strings.Index(text, "```"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

// parseReply decodes the model output into a Reply.
// Fields of unexpected type are dropped individually; a non-object is malformed.
func parseReply(text string) (*Reply, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(stripFences(text)), &raw); err != nil || raw == nil {
		return nil, ErrMalformedReply
	}

	r := &Reply{}
	r.Headline, _ = raw["headline"].(string)
	r.Commentary, _ = raw["commentary"].(string)
	r.SavingsRatePct, _ = raw["savings_rate_pct"].(float64)
	r.LiquidityMonths, _ = raw["liquidity_months"].(float64)
	r.Tone, _ = raw["tone"].(string)
	return r, nil
}
