package triage

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestEngineStartAsksFirstQuestion(t *testing.T) {
	engine := NewEngine(nil)
	conv := engine.Start(time.Now())

	if len(conv.Turns) != 1 {
		t.Fatalf("expected one greeting turn, got %d", len(conv.Turns))
	}
	greeting := conv.Turns[0]
	if greeting.Speaker != SpeakerAssistant {
		t.Errorf("expected assistant greeting, got %q", greeting.Speaker)
	}
	if !strings.HasSuffix(greeting.Text, DefaultQuestions[0]) {
		t.Errorf("expected greeting to end with first question, got %q", greeting.Text)
	}
	if conv.QuestionIndex != 0 || conv.Complete {
		t.Errorf("unexpected initial state: index=%d complete=%v", conv.QuestionIndex, conv.Complete)
	}
}

func TestEngineAdvanceThroughAllQuestions(t *testing.T) {
	engine := NewEngine(nil)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	conv := engine.Start(now)

	for i := 0; i < engine.QuestionCount(); i++ {
		last := i == engine.QuestionCount()-1

		reply, err := engine.Advance(conv, "answer", now)
		if err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
		if conv.QuestionIndex != i+1 {
			t.Errorf("advance %d: expected index %d, got %d", i, i+1, conv.QuestionIndex)
		}
		if last {
			if !conv.Complete {
				t.Error("expected conversation complete after final answer")
			}
			if !strings.Contains(reply.Text, "analyzing") {
				t.Errorf("expected analyzing reply, got %q", reply.Text)
			}
		} else {
			if conv.Complete {
				t.Fatalf("advance %d: conversation complete too early", i)
			}
			if !strings.HasSuffix(reply.Text, DefaultQuestions[i+1]) {
				t.Errorf("advance %d: expected next question, got %q", i, reply.Text)
			}
		}
	}

	// greeting + 5 user/assistant pairs
	if len(conv.Turns) != 1+2*engine.QuestionCount() {
		t.Errorf("expected %d turns, got %d", 1+2*engine.QuestionCount(), len(conv.Turns))
	}
	if got := conv.UserTexts(); len(got) != engine.QuestionCount() {
		t.Errorf("expected %d user texts, got %d", engine.QuestionCount(), len(got))
	}
}

func TestEngineAdvanceBlankAnswerLeavesStateUntouched(t *testing.T) {
	engine := NewEngine(nil)
	conv := engine.Start(time.Now())

	_, err := engine.Advance(conv, "   \t ", time.Now())
	if !errors.Is(err, ErrBlankAnswer) {
		t.Fatalf("expected ErrBlankAnswer, got %v", err)
	}
	if len(conv.Turns) != 1 || conv.QuestionIndex != 0 || conv.Complete {
		t.Errorf("expected state untouched: turns=%d index=%d complete=%v",
			len(conv.Turns), conv.QuestionIndex, conv.Complete)
	}
}

func TestEngineAdvanceAfterComplete(t *testing.T) {
	engine := NewEngine([]string{"only question?"})
	conv := engine.Start(time.Now())

	if _, err := engine.Advance(conv, "yes", time.Now()); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !conv.Complete {
		t.Fatal("expected conversation complete")
	}

	turns := len(conv.Turns)
	_, err := engine.Advance(conv, "more input", time.Now())
	if !errors.Is(err, ErrConversationComplete) {
		t.Fatalf("expected ErrConversationComplete, got %v", err)
	}
	if len(conv.Turns) != turns || conv.QuestionIndex != 1 {
		t.Error("expected no state change after completion")
	}
}

func TestEngineAdvanceTrimsAnswer(t *testing.T) {
	engine := NewEngine(nil)
	conv := engine.Start(time.Now())

	if _, err := engine.Advance(conv, "  two days  ", time.Now()); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if got := conv.UserTexts(); len(got) != 1 || got[0] != "two days" {
		t.Errorf("expected trimmed answer, got %v", got)
	}
}
