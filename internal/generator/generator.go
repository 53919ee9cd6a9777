// Package generator turns topics (optionally grounded on document excerpts)
// into flashcards, multiple-choice evaluations and prerequisite lists via the
// generation API, with every response validated before acceptance.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/avelar/studyflash/internal/errors"
	"github.com/avelar/studyflash/internal/llm"
	"github.com/avelar/studyflash/internal/logger"
)

// Card is one generated flashcard.
type Card struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// MCQ is one generated multiple-choice question.
type MCQ struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// Generator produces learning content through an llm.Provider.
type Generator struct {
	provider llm.Provider
}

// New creates a Generator backed by the given provider.
func New(provider llm.Provider) *Generator {
	return &Generator{provider: provider}
}

// Flashcards generates count flashcards for the topic.
func (g *Generator) Flashcards(ctx context.Context, topic string, count int, excerpts []string) ([]Card, error) {
	log := logger.FromContext(ctx).WithPrefix("generator")
	log.Debug("generating %d flashcards for topic %q (%d excerpts)", count, topic, len(excerpts))

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: flashcardSystemPrompt,
		Prompt: buildFlashcardPrompt(topic, count, excerpts),
		Schema: flashcardSetSchema,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Flashcards []Card `json:"flashcards"`
	}
	if err := json.Unmarshal(resp.Content, &payload); err != nil {
		return nil, errors.NewUpstreamError(fmt.Errorf("decode flashcards: %w", err))
	}

	cards := make([]Card, 0, len(payload.Flashcards))
	for _, c := range payload.Flashcards {
		if strings.TrimSpace(c.Question) == "" || strings.TrimSpace(c.Answer) == "" {
			log.Warn("skipping blank flashcard from model")
			continue
		}
		cards = append(cards, c)
	}
	if len(cards) == 0 {
		return nil, errors.NewUpstreamError(fmt.Errorf("model returned no usable flashcards"))
	}
	if len(cards) > count {
		cards = cards[:count]
	}
	log.Debug("generated %d flashcards", len(cards))
	return cards, nil
}

// Questions generates count multiple-choice questions for the topic. Entries
// that violate the 4-option/answer-in-options contract are dropped.
func (g *Generator) Questions(ctx context.Context, topic string, count int, excerpts []string) ([]MCQ, error) {
	log := logger.FromContext(ctx).WithPrefix("generator")
	log.Debug("generating %d questions for topic %q (%d excerpts)", count, topic, len(excerpts))

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: questionSystemPrompt,
		Prompt: buildQuestionPrompt(topic, count, excerpts),
		Schema: questionSetSchema,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Questions []MCQ `json:"questions"`
	}
	if err := json.Unmarshal(resp.Content, &payload); err != nil {
		return nil, errors.NewUpstreamError(fmt.Errorf("decode questions: %w", err))
	}

	questions := make([]MCQ, 0, len(payload.Questions))
	for _, q := range payload.Questions {
		if !validMCQ(q) {
			log.Warn("dropping malformed question from model: %q", q.Question)
			continue
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, errors.NewUpstreamError(fmt.Errorf("model returned no usable questions"))
	}
	if len(questions) > count {
		questions = questions[:count]
	}
	log.Debug("generated %d questions", len(questions))
	return questions, nil
}

// Prerequisites generates the prerequisite topic list for a depth session.
func (g *Generator) Prerequisites(ctx context.Context, topic string) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("generator")
	log.Debug("generating prerequisites for topic %q", topic)

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: prerequisiteSystemPrompt,
		Prompt: buildPrerequisitePrompt(topic),
		Schema: prerequisiteSchema,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Prerequisites []string `json:"prerequisites"`
	}
	if err := json.Unmarshal(resp.Content, &payload); err != nil {
		return nil, errors.NewUpstreamError(fmt.Errorf("decode prerequisites: %w", err))
	}

	prereqs := make([]string, 0, len(payload.Prerequisites))
	for _, p := range payload.Prerequisites {
		if p = strings.TrimSpace(p); p != "" {
			prereqs = append(prereqs, p)
		}
	}
	if len(prereqs) == 0 {
		return nil, errors.NewUpstreamError(fmt.Errorf("model returned no prerequisites"))
	}
	log.Debug("generated %d prerequisites", len(prereqs))
	return prereqs, nil
}

func validMCQ(q MCQ) bool {
	if strings.TrimSpace(q.Question) == "" || len(q.Options) != 4 {
		return false
	}
	found := false
	for _, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return false
		}
		if opt == q.CorrectAnswer {
			found = true
		}
	}
	return found
}
