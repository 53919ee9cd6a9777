package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/avelar/studyflash/internal/errors"
	"github.com/avelar/studyflash/internal/models"
	"github.com/avelar/studyflash/internal/session"
)

func card(index int, studied bool) models.SessionFlashcard {
	return models.SessionFlashcard{
		Index:     index,
		Question:  "q",
		Answer:    "a",
		IsStudied: studied,
	}
}

func answered(index int, answer string, correct bool) models.SessionQuestion {
	return models.SessionQuestion{
		Index:      index,
		UserAnswer: &answer,
		IsCorrect:  &correct,
	}
}

func TestResolve_FastPartiallyStudied(t *testing.T) {
	s := models.Session{
		Type:            models.SessionTypeFast,
		Status:          models.SessionStatusInProgress,
		TotalFlashcards: 3,
	}
	cards := []models.SessionFlashcard{
		card(0, true),
		card(1, false),
		card(2, false),
	}

	state, err := session.Resolve(s, cards, nil)

	require.NoError(t, err)
	assert.Equal(t, session.PhaseFlashcards, state.Phase)
	assert.Equal(t, 1, state.Cursor, "cursor should be the smallest unstudied index")
	assert.Equal(t, []int{0}, state.StudiedIndices)
	assert.Empty(t, state.Answered)
}

func TestResolve_FastAllStudied(t *testing.T) {
	s := models.Session{
		Type:            models.SessionTypeFast,
		Status:          models.SessionStatusInProgress,
		TotalFlashcards: 3,
	}
	cards := []models.SessionFlashcard{
		card(0, true),
		card(1, true),
		card(2, true),
	}

	state, err := session.Resolve(s, cards, nil)

	require.NoError(t, err)
	assert.Equal(t, session.PhaseEvaluation, state.Phase, "all cards studied but not completed means evaluation")
	assert.Equal(t, 2, state.Cursor, "cursor should land on the final card, not past the end")
	assert.Equal(t, []int{0, 1, 2}, state.StudiedIndices)
}

func TestResolve_FastSmallestUnstudiedWins(t *testing.T) {
	s := models.Session{
		Type:            models.SessionTypeFast,
		Status:          models.SessionStatusInProgress,
		TotalFlashcards: 4,
	}
	// Studied out of order: 0 and 2 done, 1 and 3 pending.
	cards := []models.SessionFlashcard{
		card(0, true),
		card(1, false),
		card(2, true),
		card(3, false),
	}

	state, err := session.Resolve(s, cards, nil)

	require.NoError(t, err)
	assert.Equal(t, session.PhaseFlashcards, state.Phase)
	assert.Equal(t, 1, state.Cursor)
	assert.Equal(t, []int{0, 2}, state.StudiedIndices)
}

func TestResolve_CompletedWinsOverEverything(t *testing.T) {
	tests := []struct {
		name string
		s    models.Session
	}{
		{
			name: "completed fast session with unstudied cards",
			s: models.Session{
				Type:            models.SessionTypeFast,
				Status:          models.SessionStatusCompleted,
				TotalFlashcards: 3,
			},
		},
		{
			name: "completed depth session with prerequisite results",
			s: models.Session{
				Type:                models.SessionTypeDepth,
				Status:              models.SessionStatusCompleted,
				PrerequisiteResults: map[string]bool{"algebra": true},
			},
		},
		{
			name: "completed depth session with nothing generated",
			s: models.Session{
				Type:   models.SessionTypeDepth,
				Status: models.SessionStatusCompleted,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := session.Resolve(tt.s, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, session.PhaseCompleted, state.Phase)
		})
	}
}

func TestResolve_DepthPhaseLadder(t *testing.T) {
	tests := []struct {
		name     string
		prereqs  []string
		results  map[string]bool
		expected session.Phase
	}{
		{
			name:     "nothing generated yet",
			expected: session.PhasePrerequisites,
		},
		{
			name:     "prerequisites generated, not scored",
			prereqs:  []string{"A", "B"},
			expected: session.PhaseEvaluation,
		},
		{
			name:     "results scored",
			prereqs:  []string{"A", "B"},
			results:  map[string]bool{"A": true, "B": false},
			expected: session.PhaseLearning,
		},
		{
			name: "results present without list still means learning",
			// Should not happen per the write path, but results are the more
			// advanced evidence and must win.
			results:  map[string]bool{"A": true},
			expected: session.PhaseLearning,
		},
		{
			name:     "empty but non-nil prerequisite list counts as generated",
			prereqs:  []string{},
			expected: session.PhaseEvaluation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.Session{
				Type:                models.SessionTypeDepth,
				Status:              models.SessionStatusInProgress,
				Prerequisites:       tt.prereqs,
				PrerequisiteResults: tt.results,
			}

			state, err := session.Resolve(s, nil, nil)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, state.Phase)
		})
	}
}

func TestResolve_EmptyFlashcards(t *testing.T) {
	s := models.Session{
		Type:            models.SessionTypeFast,
		Status:          models.SessionStatusInProgress,
		TotalFlashcards: 0,
	}

	state, err := session.Resolve(s, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, session.PhaseFlashcards, state.Phase, "zero cards must not count as all studied")
	assert.Equal(t, 0, state.Cursor)
	assert.Empty(t, state.StudiedIndices)
}

func TestResolve_AnsweredQuestions(t *testing.T) {
	s := models.Session{
		Type:           models.SessionTypeFast,
		Status:         models.SessionStatusInProgress,
		TotalQuestions: 3,
	}
	questions := []models.SessionQuestion{
		answered(0, "Paris", true),
		{Index: 1, Question: "unanswered"},
		answered(2, "Madrid", false),
	}

	state, err := session.Resolve(s, nil, questions)

	require.NoError(t, err)
	require.Len(t, state.Answered, 2, "answered list length must equal rows with non-null user_answer")
	assert.Equal(t, 0, state.Answered[0].Index)
	assert.Equal(t, "Paris", state.Answered[0].UserAnswer)
	assert.True(t, state.Answered[0].IsCorrect)
	assert.Equal(t, 2, state.Answered[1].Index)
	assert.False(t, state.Answered[1].IsCorrect)
	assert.Zero(t, state.IgnoredAnswers)
}

func TestResolve_OutOfRangeAnswersIgnored(t *testing.T) {
	s := models.Session{
		Type:           models.SessionTypeFast,
		Status:         models.SessionStatusInProgress,
		TotalQuestions: 2,
	}
	questions := []models.SessionQuestion{
		answered(0, "ok", true),
		answered(5, "stray row", false),
		answered(-1, "stray row", false),
	}

	state, err := session.Resolve(s, nil, questions)

	require.NoError(t, err)
	require.Len(t, state.Answered, 1)
	assert.Equal(t, 0, state.Answered[0].Index)
	assert.Equal(t, 2, state.IgnoredAnswers)
}

func TestResolve_DuplicateCardIndicesTolerated(t *testing.T) {
	s := models.Session{
		Type:            models.SessionTypeFast,
		Status:          models.SessionStatusInProgress,
		TotalFlashcards: 2,
	}
	// Legacy data: index 0 appears twice, one row studied.
	cards := []models.SessionFlashcard{
		card(0, false),
		card(0, true),
		card(1, false),
	}

	state, err := session.Resolve(s, cards, nil)

	require.NoError(t, err)
	assert.Equal(t, []int{0}, state.StudiedIndices)
	assert.Equal(t, 1, state.Cursor)
}

func TestResolve_UnknownTypeFails(t *testing.T) {
	s := models.Session{
		Type:   "osmosis",
		Status: models.SessionStatusInProgress,
	}

	state, err := session.Resolve(s, nil, nil)

	require.Error(t, err)
	assert.Nil(t, state)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeInvalidSession, appErr.Code)
}

func TestResolve_AbandonedSessionStillDerivesPhase(t *testing.T) {
	// Abandoned is terminal for writes but only completed maps to the
	// completed phase; an abandoned fast session resumes into flashcards.
	s := models.Session{
		Type:            models.SessionTypeFast,
		Status:          models.SessionStatusAbandoned,
		TotalFlashcards: 2,
	}
	cards := []models.SessionFlashcard{card(0, true), card(1, false)}

	state, err := session.Resolve(s, cards, nil)

	require.NoError(t, err)
	assert.Equal(t, session.PhaseFlashcards, state.Phase)
	assert.Equal(t, 1, state.Cursor)
}
