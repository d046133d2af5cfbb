package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/acutecare/triage-assistant/internal/triage"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, time.Hour), mr
}

func TestIntakeRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	intake := triage.PatientIntake{
		Age:      42,
		Symptoms: "headache",
		Vitals: &triage.Vitals{
			HeartRate:        70,
			SystolicBP:       115,
			DiastolicBP:      75,
			TemperatureF:     98.4,
			OxygenSaturation: 99,
		},
		SubmittedAt: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
	}

	if err := store.SaveIntake(ctx, "sess-1", intake); err != nil {
		t.Fatalf("save intake: %v", err)
	}
	got, err := store.LoadIntake(ctx, "sess-1")
	if err != nil {
		t.Fatalf("load intake: %v", err)
	}
	if got.Age != 42 || got.Symptoms != "headache" {
		t.Errorf("unexpected intake %+v", got)
	}
	if got.Vitals == nil || got.Vitals.OxygenSaturation != 99 {
		t.Errorf("unexpected vitals %+v", got.Vitals)
	}
	if !got.SubmittedAt.Equal(intake.SubmittedAt) {
		t.Errorf("expected submitted_at %v, got %v", intake.SubmittedAt, got.SubmittedAt)
	}
}

func TestConversationRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	conv := &triage.Conversation{
		Turns: []triage.Turn{
			{Speaker: triage.SpeakerAssistant, Text: "How long?", Timestamp: time.Now().UTC()},
			{Speaker: triage.SpeakerUser, Text: "two days", Timestamp: time.Now().UTC()},
		},
		QuestionIndex: 1,
	}

	if err := store.SaveConversation(ctx, "sess-1", conv); err != nil {
		t.Fatalf("save conversation: %v", err)
	}
	got, err := store.LoadConversation(ctx, "sess-1")
	if err != nil {
		t.Fatalf("load conversation: %v", err)
	}
	if len(got.Turns) != 2 || got.QuestionIndex != 1 || got.Complete {
		t.Errorf("unexpected conversation %+v", got)
	}
	if texts := got.UserTexts(); len(texts) != 1 || texts[0] != "two days" {
		t.Errorf("unexpected user texts %v", texts)
	}
}

func TestResultRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	result := triage.TriageResult{
		Level:             triage.LevelUrgent,
		Priority:          triage.PriorityUrgent,
		Reasoning:         "elevated heart rate",
		Recommendations:   []string{"see a doctor"},
		Specialist:        "Cardiologist",
		EstimatedWaitTime: "1-2 hours",
		RiskFactors:       []string{"tachycardia"},
		Confidence:        0.8,
	}

	if err := store.SaveResult(ctx, "sess-1", result); err != nil {
		t.Fatalf("save result: %v", err)
	}
	got, err := store.LoadResult(ctx, "sess-1")
	if err != nil {
		t.Fatalf("load result: %v", err)
	}
	if got.Level != triage.LevelUrgent || got.Confidence != 0.8 {
		t.Errorf("unexpected result %+v", got)
	}
}

func TestMissingKeysReturnNotFound(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.LoadIntake(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadIntake: expected ErrNotFound, got %v", err)
	}
	if _, err := store.LoadConversation(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadConversation: expected ErrNotFound, got %v", err)
	}
	if _, err := store.LoadResult(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadResult: expected ErrNotFound, got %v", err)
	}
}

func TestClearRemovesAllKeys(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveIntake(ctx, "sess-1", triage.PatientIntake{Age: 20, Symptoms: "x"}); err != nil {
		t.Fatalf("save intake: %v", err)
	}
	if err := store.SaveConversation(ctx, "sess-1", &triage.Conversation{}); err != nil {
		t.Fatalf("save conversation: %v", err)
	}
	if err := store.SaveResult(ctx, "sess-1", triage.TriageResult{Level: triage.LevelRoutine}); err != nil {
		t.Fatalf("save result: %v", err)
	}

	if err := store.Clear(ctx, "sess-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := store.LoadIntake(ctx, "sess-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected intake cleared, got %v", err)
	}
	if _, err := store.LoadResult(ctx, "sess-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected result cleared, got %v", err)
	}
}

func TestKeysExpireWithTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveIntake(ctx, "sess-1", triage.PatientIntake{Age: 20, Symptoms: "x"}); err != nil {
		t.Fatalf("save intake: %v", err)
	}

	mr.FastForward(2 * time.Hour)

	if _, err := store.LoadIntake(ctx, "sess-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected intake expired, got %v", err)
	}
}
