package triage

import "time"

// Triage levels, ordered from most to least acute.
const (
	LevelEmergency = "emergency"
	LevelUrgent    = "urgent"
	LevelRoutine   = "routine"
)

// Priority ranks for each level. Lower is more urgent. Immediate-access
// sessions use PriorityImmediate, which is not comparable to the other three.
const (
	PriorityEmergency = 1
	PriorityUrgent    = 2
	PriorityRoutine   = 3
	PriorityImmediate = 0
)

// Speaker identifies who produced a conversation turn.
const (
	SpeakerUser      = "user"
	SpeakerAssistant = "assistant"
)

// IntakeSubmission is the raw intake form as submitted: numeric fields arrive
// as text and are only converted after validation passes.
type IntakeSubmission struct {
	Age              string `json:"age"`
	Symptoms         string `json:"symptoms"`
	HeartRate        string `json:"heart_rate"`
	SystolicBP       string `json:"systolic_bp"`
	DiastolicBP      string `json:"diastolic_bp"`
	TemperatureF     string `json:"temperature_f"`
	OxygenSaturation string `json:"oxygen_saturation"`
	ImmediateAccess  bool   `json:"immediate_access"`
}

// Vitals holds the five vital sign measurements collected for a full
// assessment. Absent entirely for immediate-access intakes.
type Vitals struct {
	HeartRate        int     `json:"heart_rate"`
	SystolicBP       int     `json:"systolic_bp"`
	DiastolicBP      int     `json:"diastolic_bp"`
	TemperatureF     float64 `json:"temperature_f"`
	OxygenSaturation int     `json:"oxygen_saturation"`
}

// PatientIntake is a finalized intake record. It is written to the session
// store once, after validation, and never mutated; a correction means a new
// session with a new intake.
type PatientIntake struct {
	Age             int       `json:"age"`
	Symptoms        string    `json:"symptoms"`
	ImmediateAccess bool      `json:"immediate_access"`
	Vitals          *Vitals   `json:"vitals,omitempty"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

// Turn is a single entry in the conversation transcript.
type Turn struct {
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the clarifying-conversation state for one session.
// QuestionIndex only ever advances by one per accepted user answer and the
// struct becomes immutable once Complete is true.
type Conversation struct {
	Turns         []Turn `json:"turns"`
	QuestionIndex int    `json:"question_index"`
	Complete      bool   `json:"complete"`
}

// UserTexts returns the user-side transcript in order. This is the exact
// sequence handed to the classifier.
func (c *Conversation) UserTexts() []string {
	if c == nil {
		return nil
	}
	texts := make([]string, 0, len(c.Turns))
	for _, t := range c.Turns {
		if t.Speaker == SpeakerUser {
			texts = append(texts, t.Text)
		}
	}
	return texts
}

// TriageResult is the structured classification for one session. Produced
// exactly once and immutable thereafter.
type TriageResult struct {
	Level             string   `json:"level"`
	Priority          int      `json:"priority"`
	Reasoning         string   `json:"reasoning"`
	Recommendations   []string `json:"recommendations"`
	Specialist        string   `json:"specialist"`
	EstimatedWaitTime string   `json:"estimatedWaitTime"`
	RiskFactors       []string `json:"riskFactors"`
	Confidence        float64  `json:"confidence"`
}

// IsFallback reports whether a result carries the reserved fallback
// signature. The pair (confidence 0.5, risk factors ["Assessment
// incomplete"]) is reserved for degraded assessments and is how callers
// detect that the reasoning engine was unavailable or unusable.
func (r TriageResult) IsFallback() bool {
	return r.Confidence == fallbackConfidence &&
		len(r.RiskFactors) == 1 &&
		r.RiskFactors[0] == fallbackRiskFactor
}

// validLevel reports whether the level is one of the three triage levels.
func validLevel(level string) bool {
	switch level {
	case LevelEmergency, LevelUrgent, LevelRoutine:
		return true
	}
	return false
}
