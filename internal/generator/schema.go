package generator

import "github.com/avelar/studyflash/internal/llm"

// flashcardSetSchema constrains the flashcard generation response.
var flashcardSetSchema = &llm.Schema{
	Name:        "flashcard-set",
	Description: "A set of question/answer flashcards for one topic",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"flashcards": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The front of the card: a single focused question",
						},
						"answer": map[string]any{
							"type":        "string",
							"description": "The back of the card: a concise factual answer",
						},
					},
					"required":             []any{"question", "answer"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"flashcards"},
		"additionalProperties": false,
	},
}

// questionSetSchema constrains the evaluation generation response.
var questionSetSchema = &llm.Schema{
	Name:        "question-set",
	Description: "A set of multiple-choice evaluation questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type": "string",
						},
						"options": map[string]any{
							"type":     "array",
							"items":    map[string]any{"type": "string"},
							"minItems": 4,
							"maxItems": 4,
						},
						"correct_answer": map[string]any{
							"type":        "string",
							"description": "Must be the exact text of one of the options",
						},
					},
					"required":             []any{"question", "options", "correct_answer"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

// prerequisiteSchema constrains the prerequisite-topic response for depth
// sessions.
var prerequisiteSchema = &llm.Schema{
	Name:        "prerequisite-topics",
	Description: "Prerequisite topics a learner should know before the main topic",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prerequisites": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 1,
				"maxItems": 6,
			},
		},
		"required":             []any{"prerequisites"},
		"additionalProperties": false,
	},
}
