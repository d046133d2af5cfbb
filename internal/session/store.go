// Package session implements the transient, session-scoped store that owns
// the current intake, conversation and result for one assessment. It is
// Redis-backed with a TTL: nothing here is durable and a cleared session
// cannot be resumed.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/acutecare/triage-assistant/internal/triage"
)

const defaultTTL = 24 * time.Hour

// ErrNotFound is returned when a session key is absent, either because the
// phase that writes it never ran or because the session expired or was
// cleared. Callers treat it as "restart at intake", never as a transport
// failure.
var ErrNotFound = triage.ErrSessionNotFound

// Store reads and writes per-session triage state. Discipline is "read
// current, write full replacement": no method patches a stored record in
// place.
type Store struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// New creates a session store over the given Redis client.
func New(client *redis.Client, ttl time.Duration) *Store {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("triage.internal.session"),
	}
}

func intakeKey(sessionID string) string {
	return fmt.Sprintf("triage:%s:intake", sessionID)
}

func conversationKey(sessionID string) string {
	return fmt.Sprintf("triage:%s:conversation", sessionID)
}

func resultKey(sessionID string) string {
	return fmt.Sprintf("triage:%s:result", sessionID)
}

// SaveIntake stores the finalized intake record.
func (s *Store) SaveIntake(ctx context.Context, sessionID string, intake triage.PatientIntake) error {
	return s.set(ctx, "session.save_intake", intakeKey(sessionID), intake)
}

// LoadIntake retrieves the intake record, or ErrNotFound.
func (s *Store) LoadIntake(ctx context.Context, sessionID string) (triage.PatientIntake, error) {
	var intake triage.PatientIntake
	err := s.get(ctx, "session.load_intake", intakeKey(sessionID), &intake)
	return intake, err
}

// SaveConversation stores the full conversation snapshot, transcript
// included, replacing any previous snapshot.
func (s *Store) SaveConversation(ctx context.Context, sessionID string, conv *triage.Conversation) error {
	return s.set(ctx, "session.save_conversation", conversationKey(sessionID), conv)
}

// LoadConversation retrieves the conversation snapshot, or ErrNotFound.
func (s *Store) LoadConversation(ctx context.Context, sessionID string) (*triage.Conversation, error) {
	var conv triage.Conversation
	if err := s.get(ctx, "session.load_conversation", conversationKey(sessionID), &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// SaveResult stores the classification result. The service only calls this
// once per session; the result is immutable once written.
func (s *Store) SaveResult(ctx context.Context, sessionID string, result triage.TriageResult) error {
	return s.set(ctx, "session.save_result", resultKey(sessionID), result)
}

// LoadResult retrieves the classification result, or ErrNotFound.
func (s *Store) LoadResult(ctx context.Context, sessionID string) (triage.TriageResult, error) {
	var result triage.TriageResult
	err := s.get(ctx, "session.load_result", resultKey(sessionID), &result)
	return result, err
}

// Clear removes everything stored for a session. There is no way to resume
// afterwards.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "session.clear")
	defer span.End()

	keys := []string{intakeKey(sessionID), conversationKey(sessionID), resultKey(sessionID)}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to clear session: %w", err)
	}
	return nil
}

func (s *Store) set(ctx context.Context, spanName, key string, value any) error {
	ctx, span := s.tracer.Start(ctx, spanName)
	defer span.End()

	data, err := json.Marshal(value)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to marshal %s: %w", key, err)
	}
	if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to persist %s: %w", key, err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, spanName, key string, dest any) error {
	ctx, span := s.tracer.Start(ctx, spanName)
	defer span.End()

	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ErrNotFound
		}
		span.RecordError(err)
		return fmt.Errorf("session: failed to load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to decode %s: %w", key, err)
	}
	return nil
}
