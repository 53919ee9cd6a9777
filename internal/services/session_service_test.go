package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	apperrors "github.com/avelar/studyflash/internal/errors"
	"github.com/avelar/studyflash/internal/generator"
	"github.com/avelar/studyflash/internal/llm"
	"github.com/avelar/studyflash/internal/models"
	"github.com/avelar/studyflash/internal/repository"
	"github.com/avelar/studyflash/internal/repository/sqlite"
	"github.com/avelar/studyflash/internal/session"
	"github.com/avelar/studyflash/internal/testutil"
	"github.com/avelar/studyflash/internal/testutil/mocks"
)

type SessionServiceSuite struct {
	suite.Suite
	db       *sql.DB
	repo     repository.SessionRepository
	docRepo  repository.DocumentRepository
	provider *llm.MockProvider
	queue    *mocks.MockJobQueue
	svc      SessionService
	ctx      context.Context
}

func (s *SessionServiceSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewSessionRepository(s.db)
	s.docRepo = sqlite.NewDocumentRepository(s.db)
	s.provider = new(llm.MockProvider)
	s.queue = new(mocks.MockJobQueue)
	s.svc = NewSessionService(s.repo, s.docRepo, generator.New(s.provider), s.queue, 2, 2, 10*time.Second)
	s.ctx = context.Background()
}

func (s *SessionServiceSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *SessionServiceSuite) stubGeneration() {
	cards, _ := json.Marshal(map[string]any{
		"flashcards": []map[string]string{
			{"question": "card one", "answer": "answer one"},
			{"question": "card two", "answer": "answer two"},
		},
	})
	questions, _ := json.Marshal(map[string]any{
		"questions": []map[string]any{
			{"question": "pick a", "options": []string{"a", "b", "c", "d"}, "correct_answer": "a"},
			{"question": "pick z", "options": []string{"w", "x", "y", "z"}, "correct_answer": "z"},
		},
	})
	s.provider.On("Generate", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return req.Schema != nil && req.Schema.Name == "flashcard-set"
	})).Return(&llm.Response{Content: cards}, nil)
	s.provider.On("Generate", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return req.Schema != nil && req.Schema.Name == "question-set"
	})).Return(&llm.Response{Content: questions}, nil)
}

func (s *SessionServiceSuite) createSession(typ models.SessionType) *models.SessionDetail {
	s.stubGeneration()
	detail, err := s.svc.Create(s.ctx, CreateSessionInput{Topic: "pointers", Type: typ})
	s.Require().NoError(err)
	return detail
}

func (s *SessionServiceSuite) TestCreateGeneratesContent() {
	detail := s.createSession(models.SessionTypeFast)

	s.Equal(models.SessionStatusInProgress, detail.Status)
	s.Equal(2, detail.TotalFlashcards)
	s.Equal(2, detail.TotalQuestions)
	s.Len(detail.Flashcards, 2)
	s.Len(detail.Questions, 2)
	s.Equal("card one", detail.Flashcards[0].Question)
}

func (s *SessionServiceSuite) TestCreateRejectsBlankTopic() {
	_, err := s.svc.Create(s.ctx, CreateSessionInput{Topic: "", Type: models.SessionTypeFast})
	s.requireAppError(err, apperrors.ErrCodeValidation)
}

func (s *SessionServiceSuite) TestCreateRejectsUnknownDocument() {
	_, err := s.svc.Create(s.ctx, CreateSessionInput{
		Topic: "pointers", Type: models.SessionTypeFast, DocumentIDs: []string{"nope"},
	})
	s.requireAppError(err, apperrors.ErrCodeNotFound)
}

func (s *SessionServiceSuite) TestResumeFreshFastSession() {
	detail := s.createSession(models.SessionTypeFast)

	state, err := s.svc.Resume(s.ctx, detail.ID)
	s.Require().NoError(err)
	s.Equal(session.PhaseFlashcards, state.Phase)
	s.Equal(0, state.Cursor)
	s.Empty(state.StudiedIndices)
}

func (s *SessionServiceSuite) TestStudyThenResumeAdvancesCursor() {
	detail := s.createSession(models.SessionTypeFast)

	_, err := s.svc.StudyFlashcard(s.ctx, detail.ID, 0)
	s.Require().NoError(err)

	state, err := s.svc.Resume(s.ctx, detail.ID)
	s.Require().NoError(err)
	s.Equal(session.PhaseFlashcards, state.Phase)
	s.Equal(1, state.Cursor)
	s.Equal([]int{0}, state.StudiedIndices)
}

func (s *SessionServiceSuite) TestStudyingAllCardsMovesToEvaluation() {
	detail := s.createSession(models.SessionTypeFast)

	for i := 0; i < detail.TotalFlashcards; i++ {
		_, err := s.svc.StudyFlashcard(s.ctx, detail.ID, i)
		s.Require().NoError(err)
	}

	state, err := s.svc.Resume(s.ctx, detail.ID)
	s.Require().NoError(err)
	s.Equal(session.PhaseEvaluation, state.Phase)
}

func (s *SessionServiceSuite) TestStudyFlashcardOutOfRange() {
	detail := s.createSession(models.SessionTypeFast)

	_, err := s.svc.StudyFlashcard(s.ctx, detail.ID, 99)
	s.requireAppError(err, apperrors.ErrCodeValidation)
}

func (s *SessionServiceSuite) TestAnswerQuestionScoresAndRejectsRepeat() {
	detail := s.createSession(models.SessionTypeFast)

	q, err := s.svc.AnswerQuestion(s.ctx, detail.ID, 0, "a")
	s.Require().NoError(err)
	s.Require().NotNil(q.IsCorrect)
	s.True(*q.IsCorrect)

	_, err = s.svc.AnswerQuestion(s.ctx, detail.ID, 0, "b")
	s.requireAppError(err, apperrors.ErrCodeConflict)
}

func (s *SessionServiceSuite) TestAnswerMustBeAnOption() {
	detail := s.createSession(models.SessionTypeFast)

	_, err := s.svc.AnswerQuestion(s.ctx, detail.ID, 0, "not an option")
	s.requireAppError(err, apperrors.ErrCodeValidation)
}

func (s *SessionServiceSuite) TestCompleteComputesScoreAndRefreshesStats() {
	detail := s.createSession(models.SessionTypeFast)
	s.queue.On("EnqueueStatsRefresh", "pointers").Return(nil)

	_, err := s.svc.AnswerQuestion(s.ctx, detail.ID, 0, "a")
	s.Require().NoError(err)
	_, err = s.svc.AnswerQuestion(s.ctx, detail.ID, 1, "w")
	s.Require().NoError(err)

	sess, err := s.svc.Complete(s.ctx, detail.ID)
	s.Require().NoError(err)
	s.Equal(models.SessionStatusCompleted, sess.Status)
	s.Require().NotNil(sess.FinalScore)
	s.InDelta(0.5, *sess.FinalScore, 1e-9)
	s.queue.AssertCalled(s.T(), "EnqueueStatsRefresh", "pointers")
}

func (s *SessionServiceSuite) TestTerminalSessionRejectsMutation() {
	detail := s.createSession(models.SessionTypeFast)
	s.queue.On("EnqueueStatsRefresh", "pointers").Return(nil)

	_, err := s.svc.Complete(s.ctx, detail.ID)
	s.Require().NoError(err)

	_, err = s.svc.StudyFlashcard(s.ctx, detail.ID, 0)
	s.requireAppError(err, apperrors.ErrCodeConflict)
	_, err = s.svc.AnswerQuestion(s.ctx, detail.ID, 0, "a")
	s.requireAppError(err, apperrors.ErrCodeConflict)
	err = s.svc.Abandon(s.ctx, detail.ID)
	s.requireAppError(err, apperrors.ErrCodeConflict)
}

func (s *SessionServiceSuite) TestAbandonedSessionStillResumes() {
	detail := s.createSession(models.SessionTypeFast)
	s.queue.On("EnqueueStatsRefresh", "pointers").Return(nil)

	s.Require().NoError(s.svc.Abandon(s.ctx, detail.ID))

	state, err := s.svc.Resume(s.ctx, detail.ID)
	s.Require().NoError(err)
	s.Equal(session.PhaseFlashcards, state.Phase)
}

func (s *SessionServiceSuite) TestDepthPrerequisiteFlow() {
	detail := s.createSession(models.SessionTypeDepth)

	prereqPayload, _ := json.Marshal(map[string]any{"prerequisites": []string{"memory model", "structs"}})
	s.provider.On("Generate", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return req.Schema != nil && req.Schema.Name == "prerequisite-topics"
	})).Return(&llm.Response{Content: prereqPayload}, nil)

	state, err := s.svc.Resume(s.ctx, detail.ID)
	s.Require().NoError(err)
	s.Equal(session.PhasePrerequisites, state.Phase)

	prereqs, err := s.svc.GeneratePrerequisites(s.ctx, detail.ID)
	s.Require().NoError(err)
	s.Equal([]string{"memory model", "structs"}, prereqs)

	// Second call returns the stored list without another generation.
	again, err := s.svc.GeneratePrerequisites(s.ctx, detail.ID)
	s.Require().NoError(err)
	s.Equal(prereqs, again)
	s.provider.AssertNumberOfCalls(s.T(), "Generate", 3)

	state, err = s.svc.Resume(s.ctx, detail.ID)
	s.Require().NoError(err)
	s.Equal(session.PhaseEvaluation, state.Phase)

	_, err = s.svc.RecordPrerequisiteResults(s.ctx, detail.ID, map[string]bool{"memory model": true, "structs": false})
	s.Require().NoError(err)

	state, err = s.svc.Resume(s.ctx, detail.ID)
	s.Require().NoError(err)
	s.Equal(session.PhaseLearning, state.Phase)
}

func (s *SessionServiceSuite) TestPrerequisitesRejectedForFastSessions() {
	detail := s.createSession(models.SessionTypeFast)

	_, err := s.svc.GeneratePrerequisites(s.ctx, detail.ID)
	s.requireAppError(err, apperrors.ErrCodeBadRequest)
}

func (s *SessionServiceSuite) TestResultsRequireGeneratedPrerequisites() {
	detail := s.createSession(models.SessionTypeDepth)

	_, err := s.svc.RecordPrerequisiteResults(s.ctx, detail.ID, map[string]bool{"anything": true})
	s.requireAppError(err, apperrors.ErrCodeConflict)
}

func (s *SessionServiceSuite) TestResultsRejectUnknownTopics() {
	detail := s.createSession(models.SessionTypeDepth)
	s.Require().NoError(s.repo.SetPrerequisites(s.ctx, detail.ID, []string{"structs"}))

	_, err := s.svc.RecordPrerequisiteResults(s.ctx, detail.ID, map[string]bool{"quantum": true})
	s.requireAppError(err, apperrors.ErrCodeValidation)
}

func (s *SessionServiceSuite) TestListWithFilter() {
	s.createSession(models.SessionTypeFast)
	s.createSession(models.SessionTypeDepth)

	sessions, total, err := s.svc.List(s.ctx, models.SessionFilter{Type: "depth"})
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Require().Len(sessions, 1)
	s.Equal(models.SessionTypeDepth, sessions[0].Type)
}

func (s *SessionServiceSuite) requireAppError(err error, code string) {
	s.Require().Error(err)
	var appErr *apperrors.AppError
	s.Require().ErrorAs(err, &appErr)
	s.Equal(code, appErr.Code)
}

func TestSessionServiceSuite(t *testing.T) {
	suite.Run(t, new(SessionServiceSuite))
}
