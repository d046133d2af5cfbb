package triage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/acutecare/triage-assistant/internal/observability/metrics"
	"github.com/acutecare/triage-assistant/pkg/logging"
)

// Session phases reported to callers after intake submission.
const (
	PhaseConversation = "conversation"
	PhaseResult       = "result"
)

var (
	// ErrSessionNotFound means a phase was entered without the required
	// prior-phase data in the session store. The only recovery is starting
	// a new assessment.
	ErrSessionNotFound = errors.New("triage: session data not found")

	// ErrResultNotReady means the result phase was reached before the
	// clarifying conversation completed.
	ErrResultNotReady = errors.New("triage: result not ready")
)

// SessionStore is the transient per-session storage collaborator. All state
// between pipeline phases flows through it; components never hold a
// competing copy.
type SessionStore interface {
	SaveIntake(ctx context.Context, sessionID string, intake PatientIntake) error
	LoadIntake(ctx context.Context, sessionID string) (PatientIntake, error)
	SaveConversation(ctx context.Context, sessionID string, conv *Conversation) error
	LoadConversation(ctx context.Context, sessionID string) (*Conversation, error)
	SaveResult(ctx context.Context, sessionID string, result TriageResult) error
	LoadResult(ctx context.Context, sessionID string) (TriageResult, error)
	Clear(ctx context.Context, sessionID string) error
}

// StartOutcome is what intake submission produces: a new session and the
// phase the caller should move to next.
type StartOutcome struct {
	SessionID string
	Phase     string
	Greeting  string
}

// AnswerOutcome is the visible effect of one accepted (or ignored)
// conversation turn.
type AnswerOutcome struct {
	Reply         string
	QuestionIndex int
	Complete      bool
}

// SessionSnapshot bundles everything the result phase and the exporter need.
type SessionSnapshot struct {
	SessionID string
	Intake    PatientIntake
	Responses []string
	Result    TriageResult
}

// Service drives the triage session pipeline: intake validation, the
// clarifying conversation and classification, with all state threaded
// through the session store.
type Service struct {
	store      SessionStore
	engine     *Engine
	classifier *Classifier
	metrics    *metrics.TriageMetrics
	logger     *logging.Logger
	now        func() time.Time
}

// NewService wires the pipeline together.
func NewService(store SessionStore, engine *Engine, classifier *Classifier, m *metrics.TriageMetrics, logger *logging.Logger) *Service {
	if engine == nil {
		engine = NewEngine(nil)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:      store,
		engine:     engine,
		classifier: classifier,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// StartSession validates a raw intake submission and, when valid, opens a new
// session. Violations come back as a field→message map with nothing stored.
// Immediate-access intakes skip the conversation and are classified right
// away on an empty transcript.
func (s *Service) StartSession(ctx context.Context, sub IntakeSubmission) (StartOutcome, map[string]string, error) {
	if violations := Validate(sub); len(violations) > 0 {
		for field := range violations {
			s.metrics.ObserveValidationFailure(field)
		}
		return StartOutcome{}, violations, nil
	}

	intake := Finalize(sub, s.now())
	sessionID := uuid.NewString()

	if err := s.store.SaveIntake(ctx, sessionID, intake); err != nil {
		return StartOutcome{}, nil, fmt.Errorf("triage: failed to store intake: %w", err)
	}

	if intake.ImmediateAccess {
		s.metrics.ObserveSessionStarted("immediate_access")
		result := s.classifier.Classify(ctx, intake, nil)
		if err := s.store.SaveResult(ctx, sessionID, result); err != nil {
			return StartOutcome{}, nil, fmt.Errorf("triage: failed to store result: %w", err)
		}
		s.logger.Info("immediate access session classified",
			"session_id", sessionID,
			"fallback", result.IsFallback(),
		)
		return StartOutcome{SessionID: sessionID, Phase: PhaseResult}, nil, nil
	}

	s.metrics.ObserveSessionStarted("full_assessment")
	conv := s.engine.Start(s.now())
	if err := s.store.SaveConversation(ctx, sessionID, conv); err != nil {
		return StartOutcome{}, nil, fmt.Errorf("triage: failed to store conversation: %w", err)
	}

	return StartOutcome{
		SessionID: sessionID,
		Phase:     PhaseConversation,
		Greeting:  conv.Turns[0].Text,
	}, nil, nil
}

// SubmitAnswer applies one user answer to the session's conversation. The
// snapshot is persisted before returning so a later phase always observes
// the full transcript. The classification runs exactly once, on the
// transition that completes the conversation; answers arriving after that
// are no-ops.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID, text string) (AnswerOutcome, error) {
	intake, err := s.store.LoadIntake(ctx, sessionID)
	if err != nil {
		return AnswerOutcome{}, err
	}

	conv, err := s.store.LoadConversation(ctx, sessionID)
	if err != nil {
		return AnswerOutcome{}, err
	}

	if conv.Complete {
		return AnswerOutcome{QuestionIndex: conv.QuestionIndex, Complete: true}, nil
	}

	reply, err := s.engine.Advance(conv, text, s.now())
	if err != nil {
		return AnswerOutcome{}, err
	}

	if err := s.store.SaveConversation(ctx, sessionID, conv); err != nil {
		return AnswerOutcome{}, fmt.Errorf("triage: failed to store conversation: %w", err)
	}

	if conv.Complete {
		result := s.classifier.Classify(ctx, intake, conv.UserTexts())
		if err := s.store.SaveResult(ctx, sessionID, result); err != nil {
			return AnswerOutcome{}, fmt.Errorf("triage: failed to store result: %w", err)
		}
		s.logger.Info("session classified",
			"session_id", sessionID,
			"level", result.Level,
			"fallback", result.IsFallback(),
		)
	}

	return AnswerOutcome{
		Reply:         reply.Text,
		QuestionIndex: conv.QuestionIndex,
		Complete:      conv.Complete,
	}, nil
}

// Result returns the finalized session snapshot. ErrSessionNotFound means
// there is no such session (restart at intake); ErrResultNotReady means the
// conversation has not completed yet.
func (s *Service) Result(ctx context.Context, sessionID string) (SessionSnapshot, error) {
	intake, err := s.store.LoadIntake(ctx, sessionID)
	if err != nil {
		return SessionSnapshot{}, err
	}

	result, err := s.store.LoadResult(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return SessionSnapshot{}, ErrResultNotReady
		}
		return SessionSnapshot{}, err
	}

	snapshot := SessionSnapshot{
		SessionID: sessionID,
		Intake:    intake,
		Result:    result,
	}
	if !intake.ImmediateAccess {
		conv, err := s.store.LoadConversation(ctx, sessionID)
		if err != nil && !errors.Is(err, ErrSessionNotFound) {
			return SessionSnapshot{}, err
		}
		snapshot.Responses = conv.UserTexts()
	}
	return snapshot, nil
}

// EndSession discards all session state. In-flight work for the session is
// orphaned; there is no resume.
func (s *Service) EndSession(ctx context.Context, sessionID string) error {
	return s.store.Clear(ctx, sessionID)
}
