package triage

import (
	"errors"
	"strings"
	"time"
)

// DefaultQuestions is the fixed ordered list of clarifying questions asked
// between intake and classification.
var DefaultQuestions = []string{
	"How long have you been experiencing these symptoms?",
	"On a scale of 1-10, how would you rate the pain or discomfort?",
	"Have you experienced these symptoms before?",
	"Are you currently taking any medications?",
	"Do you have any known allergies or medical conditions?",
}

const (
	greetingPrefix = "Hello! I'm your AI Triage Assistant. I've reviewed the patient information you provided. Let me ask a few clarifying questions to provide the most accurate assessment. "
	ackPrefix      = "Thank you for that information. "
	analyzingText  = "Thank you for providing all the necessary information. I'm now analyzing the patient data and your responses to determine the appropriate triage level. This will take just a moment..."
)

var (
	// ErrBlankAnswer is returned when a user turn is empty after trimming.
	// The conversation state is left untouched and the caller re-prompts.
	ErrBlankAnswer = errors.New("triage: blank answer")

	// ErrConversationComplete is returned for input received after the
	// final question was answered. It is a no-op, not a failure.
	ErrConversationComplete = errors.New("triage: conversation already complete")
)

// Engine drives the clarifying conversation through a fixed question list.
// It holds no per-session state; the Conversation it operates on lives in
// the session store between calls.
type Engine struct {
	questions []string
}

// NewEngine creates an engine over the given question list, defaulting to
// DefaultQuestions. The protocol works for any list of at least one question.
func NewEngine(questions []string) *Engine {
	if len(questions) == 0 {
		questions = DefaultQuestions
	}
	return &Engine{questions: questions}
}

// QuestionCount returns the length of the question list.
func (e *Engine) QuestionCount() int {
	return len(e.questions)
}

// Start creates a fresh conversation with the greeting turn asking the first
// question. It must never be called for immediate-access intakes.
func (e *Engine) Start(now time.Time) *Conversation {
	return &Conversation{
		Turns: []Turn{{
			Speaker:   SpeakerAssistant,
			Text:      greetingPrefix + e.questions[0],
			Timestamp: now.UTC(),
		}},
		QuestionIndex: 0,
	}
}

// Advance applies one user answer to the conversation and returns the
// assistant's reply turn. On the final answer the reply is the analyzing
// turn and the conversation is marked complete; the caller is responsible
// for triggering classification exactly once on that transition.
func (e *Engine) Advance(conv *Conversation, answer string, now time.Time) (Turn, error) {
	if conv.Complete {
		return Turn{}, ErrConversationComplete
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return Turn{}, ErrBlankAnswer
	}

	now = now.UTC()
	conv.Turns = append(conv.Turns, Turn{
		Speaker:   SpeakerUser,
		Text:      answer,
		Timestamp: now,
	})

	var reply Turn
	if conv.QuestionIndex < len(e.questions)-1 {
		conv.QuestionIndex++
		reply = Turn{
			Speaker:   SpeakerAssistant,
			Text:      ackPrefix + e.questions[conv.QuestionIndex],
			Timestamp: now,
		}
	} else {
		conv.QuestionIndex++
		conv.Complete = true
		reply = Turn{
			Speaker:   SpeakerAssistant,
			Text:      analyzingText,
			Timestamp: now,
		}
	}

	conv.Turns = append(conv.Turns, reply)
	return reply, nil
}
