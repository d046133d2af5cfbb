package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/acutecare/triage-assistant/internal/observability/metrics"
	"github.com/acutecare/triage-assistant/pkg/logging"
)

const defaultLLMTimeout = 30 * time.Second

const (
	fallbackConfidence = 0.5
	fallbackRiskFactor = "Assessment incomplete"
	fallbackReasoning  = "Unable to complete full assessment; defaulting to urgent care for safety"
)

const classifierSystemPrompt = `You are a medical triage assistant for clinic and ER front-desk staff.
Given patient intake data and the patient's answers to clarifying questions, decide the triage level: emergency, urgent, or routine.
Respond with a single JSON object with exactly these fields:
{"level": "emergency"|"urgent"|"routine", "priority": 1|2|3, "reasoning": string, "recommendations": [string], "specialist": string, "estimatedWaitTime": string, "riskFactors": [string], "confidence": number between 0 and 1}
Provide reasoning in simple terms and suggest a relevant specialist. Do not include any text outside the JSON object.`

// jsonBlockRE locates the embedded structured block in the model's free-text
// reply. Greedy, so it spans from the first opening brace to the last
// closing brace.
var jsonBlockRE = regexp.MustCompile(`(?s)\{.*\}`)

// Classifier composes classification requests, invokes the reasoning engine
// and parses its reply into a TriageResult. All failure paths are absorbed
// into a deterministic, safety-biased fallback: Classify never returns an
// error and always yields an actionable result.
type Classifier struct {
	llm     LLMClient
	timeout time.Duration
	metrics *metrics.TriageMetrics
	logger  *logging.Logger
}

// NewClassifier creates a classifier over the given reasoning-engine client.
// The timeout bounds the engine call; without one a dead provider would hang
// the session forever, so zero and negative values fall back to the default.
func NewClassifier(llm LLMClient, timeout time.Duration, m *metrics.TriageMetrics, logger *logging.Logger) *Classifier {
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Classifier{
		llm:     llm,
		timeout: timeout,
		metrics: m,
		logger:  logger,
	}
}

// Classify produces the triage result for a finalized intake and the ordered
// user-turn texts of the clarifying conversation. The transcript must be
// empty for immediate-access intakes, since no conversation occurred.
func (c *Classifier) Classify(ctx context.Context, intake PatientIntake, userTurns []string) TriageResult {
	prompt, err := composePrompt(intake, userTurns)
	if err != nil {
		// Marshal of a plain struct should never fail; treat it like a
		// service error if it somehow does.
		c.logger.Error("failed to compose classification prompt", "error", err)
		return c.fallback("")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.llm.Complete(ctx, LLMRequest{
		System:      []string{classifierSystemPrompt},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: prompt}},
		Temperature: 0.2,
	})
	c.metrics.ObserveLLMLatency(time.Since(start).Seconds())

	if err != nil {
		c.logger.Warn("reasoning engine call failed, using fallback result", "error", err)
		return c.fallback("")
	}

	if result, ok := parseResult(resp.Text); ok {
		c.metrics.ObserveClassification(result.Level, "model")
		return result
	}

	c.logger.Warn("no well-formed triage block in reasoning engine reply, using fallback result",
		"reply_length", len(resp.Text),
	)
	return c.fallback(resp.Text)
}

// composePrompt builds the single classification request payload. Immediate
// access intakes omit the user-responses section entirely.
func composePrompt(intake PatientIntake, userTurns []string) (string, error) {
	data, err := json.Marshal(intake)
	if err != nil {
		return "", fmt.Errorf("triage: failed to marshal intake: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Patient Data: %s\n", data)
	if !intake.ImmediateAccess {
		fmt.Fprintf(&b, "User Responses: %s\n", strings.Join(userTurns, " | "))
	}
	b.WriteString("Based on this information, provide a triage assessment and recommendations in JSON format.")
	return b.String(), nil
}

// parseResult attempts to locate and decode a single TriageResult-shaped
// block inside the model's reply. It is a total function: any malformation
// reports false rather than an error.
func parseResult(text string) (TriageResult, bool) {
	block := jsonBlockRE.FindString(text)
	if block == "" {
		return TriageResult{}, false
	}

	var result TriageResult
	if err := json.Unmarshal([]byte(block), &result); err != nil {
		return TriageResult{}, false
	}

	if !validLevel(result.Level) {
		return TriageResult{}, false
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		return TriageResult{}, false
	}
	return result, true
}

// fallback synthesizes the deterministic safety result. When the engine
// produced text that just failed to parse, that text is kept as the
// reasoning so staff still see what the model said.
func (c *Classifier) fallback(rawText string) TriageResult {
	reasoning := strings.TrimSpace(rawText)
	if reasoning == "" {
		reasoning = fallbackReasoning
	}
	c.metrics.ObserveClassification(LevelUrgent, "fallback")
	return TriageResult{
		Level:     LevelUrgent,
		Priority:  PriorityUrgent,
		Reasoning: reasoning,
		Recommendations: []string{
			"Seek medical evaluation within 2 hours",
			"Monitor symptoms closely",
		},
		Specialist:        "Internal Medicine Physician",
		EstimatedWaitTime: "1-2 hours",
		RiskFactors:       []string{fallbackRiskFactor},
		Confidence:        fallbackConfidence,
	}
}
