package generator

import (
	"fmt"
	"strings"
)

const flashcardSystemPrompt = `You are a tutor building study flashcards.

Rules:
- Produce exactly the requested number of flashcards for the given topic.
- Each card has one focused question and one concise, factual answer.
- Cards must cover distinct aspects of the topic, ordered from fundamentals to details.
- Use plain text. No markdown, no numbering inside the question or answer.
- When context excerpts are provided, ground every card in them. If the excerpts do not cover something, do not invent it.
- Respond with JSON only, matching the requested shape.`

const questionSystemPrompt = `You are a tutor writing a multiple-choice evaluation.

Rules:
- Produce exactly the requested number of questions for the given topic.
- Each question has exactly 4 options and exactly one correct answer.
- The correct_answer field must repeat the exact text of the correct option.
- Distractors should reflect plausible misunderstandings, not random values.
- When context excerpts are provided, ground every question in them. If you don't know, don't make it up.
- Respond with JSON only, matching the requested shape.`

const prerequisiteSystemPrompt = `You are a tutor planning a learning path.

Rules:
- List the prerequisite topics a learner must already understand before studying the given topic in depth.
- Between 3 and 6 topics, most fundamental first.
- Topic names only, short and specific. No explanations.
- Respond with JSON only, matching the requested shape.`

func buildFlashcardPrompt(topic string, count int, excerpts []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", topic)
	fmt.Fprintf(&b, "Number of flashcards: %d\n", count)
	writeExcerpts(&b, excerpts)
	return b.String()
}

func buildQuestionPrompt(topic string, count int, excerpts []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", topic)
	fmt.Fprintf(&b, "Number of questions: %d\n", count)
	writeExcerpts(&b, excerpts)
	return b.String()
}

func buildPrerequisitePrompt(topic string) string {
	return fmt.Sprintf("Topic: %s\n", topic)
}

func writeExcerpts(b *strings.Builder, excerpts []string) {
	if len(excerpts) == 0 {
		return
	}
	b.WriteString("\nUse the following context. If the context does not answer something, say you don't know rather than inventing content.\n")
	b.WriteString("\nContext:\n")
	for i, e := range excerpts {
		fmt.Fprintf(b, "--- excerpt %d ---\n%s\n", i+1, e)
	}
}
