// Package session holds the resume resolver: the pure derivation that maps a
// persisted session aggregate back to the point in the learning flow where
// the user left off, so the UI can rebuild its state without replaying any
// generation calls.
package session

import (
	"sort"

	"github.com/avelar/studyflash/internal/errors"
	"github.com/avelar/studyflash/internal/models"
)

// Phase is the entry point of the learning flow the UI should render on
// resume.
type Phase string

const (
	PhaseFlashcards    Phase = "flashcards"
	PhaseEvaluation    Phase = "evaluation"
	PhasePrerequisites Phase = "prerequisites"
	PhaseLearning      Phase = "learning"
	PhaseCompleted     Phase = "completed"
)

// AnsweredQuestion is one already-answered evaluation question.
type AnsweredQuestion struct {
	Index      int    `json:"index"`
	UserAnswer string `json:"user_answer"`
	IsCorrect  bool   `json:"is_correct"`
}

// ResumeState is the derived view of where a session stands.
type ResumeState struct {
	Phase Phase `json:"phase"`
	// Cursor is the flashcard index the UI should display next: the smallest
	// unstudied index, or the last index when every card is studied, or 0
	// when there are no cards at all.
	Cursor         int                `json:"cursor"`
	StudiedIndices []int              `json:"studied_indices"`
	Answered       []AnsweredQuestion `json:"answered"`
	// IgnoredAnswers counts answered question rows whose index fell outside
	// [0, total_questions). They violate the storage invariants but must not
	// block resumption; the caller is expected to log when this is non-zero.
	IgnoredAnswers int `json:"-"`
}

// Resolve derives the resume state for a session from its persisted child
// records. It performs no I/O and never mutates its inputs, so it is safe to
// call concurrently. Flashcards and questions are expected ordered by index,
// but malformed child data (duplicates, gaps) is tolerated best-effort so
// that imperfect legacy sessions remain resumable.
//
// The only error is an unknown session type, which indicates corrupt data
// rather than a transient condition.
func Resolve(s models.Session, flashcards []models.SessionFlashcard, questions []models.SessionQuestion) (*ResumeState, error) {
	if !s.Type.Valid() {
		return nil, errors.NewInvalidSessionError(string(s.Type))
	}

	state := &ResumeState{
		StudiedIndices: []int{},
		Answered:       []AnsweredQuestion{},
	}

	studied := make(map[int]struct{})
	seen := make(map[int]struct{})
	indices := make([]int, 0, len(flashcards))
	for _, c := range flashcards {
		if _, dup := seen[c.Index]; !dup {
			seen[c.Index] = struct{}{}
			indices = append(indices, c.Index)
		}
		if c.IsStudied {
			studied[c.Index] = struct{}{}
		}
	}
	sort.Ints(indices)

	for idx := range studied {
		state.StudiedIndices = append(state.StudiedIndices, idx)
	}
	sort.Ints(state.StudiedIndices)

	// Cursor: first index not yet studied; land on the final card when
	// everything is studied so the UI never points past the end.
	if len(indices) > 0 {
		state.Cursor = indices[len(indices)-1]
		for _, idx := range indices {
			if _, ok := studied[idx]; !ok {
				state.Cursor = idx
				break
			}
		}
	}

	for _, q := range questions {
		if q.UserAnswer == nil {
			continue
		}
		if q.Index < 0 || q.Index >= s.TotalQuestions {
			state.IgnoredAnswers++
			continue
		}
		answered := AnsweredQuestion{
			Index:      q.Index,
			UserAnswer: *q.UserAnswer,
		}
		if q.IsCorrect != nil {
			answered.IsCorrect = *q.IsCorrect
		}
		state.Answered = append(state.Answered, answered)
	}

	state.Phase = resolvePhase(s, len(studied))
	return state, nil
}

// resolvePhase applies the phase policy. Checks run from the most advanced
// evidence of progress backward: terminal completion first, then (for depth
// sessions) scored prerequisite results before the mere existence of a
// prerequisite list, so a session that has moved further is never
// misclassified by an earlier, weaker signal.
func resolvePhase(s models.Session, studiedCount int) Phase {
	if s.Status == models.SessionStatusCompleted {
		return PhaseCompleted
	}

	if s.Type == models.SessionTypeFast {
		// total_flashcards = 0 must not count as "all studied".
		if s.TotalFlashcards > 0 && studiedCount == s.TotalFlashcards {
			return PhaseEvaluation
		}
		return PhaseFlashcards
	}

	// Depth session.
	if s.PrerequisiteResults != nil {
		return PhaseLearning
	}
	if s.Prerequisites != nil {
		return PhaseEvaluation
	}
	return PhasePrerequisites
}
