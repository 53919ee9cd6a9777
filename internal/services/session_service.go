package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/avelar/studyflash/internal/errors"
	"github.com/avelar/studyflash/internal/generator"
	"github.com/avelar/studyflash/internal/jobs"
	"github.com/avelar/studyflash/internal/logger"
	"github.com/avelar/studyflash/internal/models"
	"github.com/avelar/studyflash/internal/repository"
	"github.com/avelar/studyflash/internal/session"
)

// CreateSessionInput carries the validated parameters for starting a session.
type CreateSessionInput struct {
	Topic       string
	Type        models.SessionType
	DocumentIDs []string
}

// SessionService handles the session learning flow business logic
type SessionService interface {
	Create(ctx context.Context, input CreateSessionInput) (*models.SessionDetail, error)
	Get(ctx context.Context, id int64) (*models.SessionDetail, error)
	List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error)
	Resume(ctx context.Context, id int64) (*session.ResumeState, error)
	StudyFlashcard(ctx context.Context, sessionID int64, index int) (*models.Session, error)
	AnswerQuestion(ctx context.Context, sessionID int64, index int, answer string) (*models.SessionQuestion, error)
	GeneratePrerequisites(ctx context.Context, sessionID int64) ([]string, error)
	RecordPrerequisiteResults(ctx context.Context, sessionID int64, results map[string]bool) (*models.Session, error)
	Complete(ctx context.Context, sessionID int64) (*models.Session, error)
	Abandon(ctx context.Context, sessionID int64) error
}

type sessionService struct {
	sessionRepo  repository.SessionRepository
	documentRepo repository.DocumentRepository
	gen          *generator.Generator
	queue        jobs.Queue

	flashcardCount int
	questionCount  int
	genTimeout     time.Duration
}

// NewSessionService creates a new SessionService
func NewSessionService(
	sessionRepo repository.SessionRepository,
	documentRepo repository.DocumentRepository,
	gen *generator.Generator,
	queue jobs.Queue,
	flashcardCount, questionCount int,
	genTimeout time.Duration,
) SessionService {
	if flashcardCount <= 0 {
		flashcardCount = 10
	}
	if questionCount <= 0 {
		questionCount = 5
	}
	if genTimeout <= 0 {
		genTimeout = 60 * time.Second
	}
	return &sessionService{
		sessionRepo:    sessionRepo,
		documentRepo:   documentRepo,
		gen:            gen,
		queue:          queue,
		flashcardCount: flashcardCount,
		questionCount:  questionCount,
		genTimeout:     genTimeout,
	}
}

func (s *sessionService) Create(ctx context.Context, input CreateSessionInput) (*models.SessionDetail, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating session: topic=%q, type=%s, documents=%d", input.Topic, input.Type, len(input.DocumentIDs))

	if input.Topic == "" {
		return nil, apperrors.NewValidationError("topic", "must not be empty")
	}
	if !input.Type.Valid() {
		return nil, apperrors.NewValidationError("type", "must be fast or depth")
	}

	excerpts, err := s.documentExcerpts(ctx, input.DocumentIDs, input.Topic)
	if err != nil {
		return nil, err
	}

	genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	cards, err := s.gen.Flashcards(genCtx, input.Topic, s.flashcardCount, excerpts)
	if err != nil {
		return nil, err
	}
	mcqs, err := s.gen.Questions(genCtx, input.Topic, s.questionCount, excerpts)
	if err != nil {
		return nil, err
	}

	sess := models.Session{
		Type:            input.Type,
		Status:          models.SessionStatusInProgress,
		Topic:           input.Topic,
		TotalFlashcards: len(cards),
		TotalQuestions:  len(mcqs),
	}
	flashcards := make([]models.SessionFlashcard, len(cards))
	for i, c := range cards {
		flashcards[i] = models.SessionFlashcard{Index: i, Question: c.Question, Answer: c.Answer}
	}
	questions := make([]models.SessionQuestion, len(mcqs))
	for i, q := range mcqs {
		questions[i] = models.SessionQuestion{
			Index:         i,
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		}
	}

	id, err := s.sessionRepo.CreateWithContent(ctx, sess, flashcards, questions, input.DocumentIDs)
	if err != nil {
		log.Error("failed to create session: %v", err)
		return nil, apperrors.NewInternalError(err)
	}

	log.Info("created session %d for topic %q (%d cards, %d questions)", id, input.Topic, len(cards), len(mcqs))
	return s.Get(ctx, id)
}

// documentExcerpts loads the chunks of the referenced documents and picks the
// most topic-relevant ones to ground generation on.
func (s *sessionService) documentExcerpts(ctx context.Context, documentIDs []string, topic string) ([]string, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}

	for _, id := range documentIDs {
		doc, err := s.documentRepo.Get(ctx, id)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		if doc == nil {
			return nil, apperrors.NewNotFoundError("document", id)
		}
	}

	chunks, err := s.documentRepo.ChunksForDocuments(ctx, documentIDs)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return generator.RankChunks(chunks, topic, generator.TopChunks), nil
}

func (s *sessionService) Get(ctx context.Context, id int64) (*models.SessionDetail, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	flashcards, err := s.sessionRepo.Flashcards(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	questions, err := s.sessionRepo.Questions(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	return &models.SessionDetail{
		Session:    *sess,
		Flashcards: flashcards,
		Questions:  questions,
	}, nil
}

func (s *sessionService) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error) {
	log := logger.FromContext(ctx)

	sessions, err := s.sessionRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list sessions: %v", err)
		return nil, 0, apperrors.NewInternalError(err)
	}
	total, err := s.sessionRepo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count sessions: %v", err)
		return nil, 0, apperrors.NewInternalError(err)
	}
	return sessions, total, nil
}

func (s *sessionService) Resume(ctx context.Context, id int64) (*session.ResumeState, error) {
	log := logger.FromContext(ctx)

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	flashcards, err := s.sessionRepo.Flashcards(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	questions, err := s.sessionRepo.Questions(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	state, err := session.Resolve(*sess, flashcards, questions)
	if err != nil {
		return nil, err
	}
	if state.IgnoredAnswers > 0 {
		log.Warn("session %d: ignored %d answered questions with out-of-range indices", id, state.IgnoredAnswers)
	}
	log.Debug("resumed session %d at phase %s (cursor=%d)", id, state.Phase, state.Cursor)
	return state, nil
}

func (s *sessionService) StudyFlashcard(ctx context.Context, sessionID int64, index int) (*models.Session, error) {
	log := logger.FromContext(ctx)

	sess, err := s.loadMutable(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= sess.TotalFlashcards {
		return nil, apperrors.NewValidationError("index", fmt.Sprintf("must be between 0 and %d", sess.TotalFlashcards-1))
	}

	changed, err := s.sessionRepo.MarkFlashcardStudied(ctx, sessionID, index)
	if err != nil {
		log.Error("failed to mark flashcard studied: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	if !changed {
		// Re-studying a card is a no-op, not an error.
		log.Debug("flashcard %d of session %d already studied", index, sessionID)
	}

	return s.load(ctx, sessionID)
}

func (s *sessionService) AnswerQuestion(ctx context.Context, sessionID int64, index int, answer string) (*models.SessionQuestion, error) {
	log := logger.FromContext(ctx)

	sess, err := s.loadMutable(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= sess.TotalQuestions {
		return nil, apperrors.NewValidationError("index", fmt.Sprintf("must be between 0 and %d", sess.TotalQuestions-1))
	}

	questions, err := s.sessionRepo.Questions(ctx, sessionID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	var target *models.SessionQuestion
	for i := range questions {
		if questions[i].Index == index {
			target = &questions[i]
			break
		}
	}
	if target == nil {
		return nil, apperrors.NewNotFoundError("question", index)
	}

	valid := false
	for _, opt := range target.Options {
		if opt == answer {
			valid = true
			break
		}
	}
	if !valid {
		return nil, apperrors.NewValidationError("answer", "must be one of the question options")
	}

	correct := answer == target.CorrectAnswer
	if err := s.sessionRepo.RecordAnswer(ctx, sessionID, index, answer, correct); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewConflictError(fmt.Sprintf("question %d already answered", index))
		}
		log.Error("failed to record answer: %v", err)
		return nil, apperrors.NewInternalError(err)
	}

	updated, err := s.sessionRepo.Questions(ctx, sessionID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	for i := range updated {
		if updated[i].Index == index {
			return &updated[i], nil
		}
	}
	return nil, apperrors.NewNotFoundError("question", index)
}

func (s *sessionService) GeneratePrerequisites(ctx context.Context, sessionID int64) ([]string, error) {
	log := logger.FromContext(ctx)

	sess, err := s.loadMutable(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Type != models.SessionTypeDepth {
		return nil, apperrors.NewBadRequestError("prerequisites only apply to depth sessions")
	}
	if sess.Prerequisites != nil {
		// Already generated, return as stored. Keeps the endpoint idempotent.
		return sess.Prerequisites, nil
	}

	genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	prereqs, err := s.gen.Prerequisites(genCtx, sess.Topic)
	if err != nil {
		return nil, err
	}
	if err := s.sessionRepo.SetPrerequisites(ctx, sessionID, prereqs); err != nil {
		log.Error("failed to store prerequisites: %v", err)
		return nil, apperrors.NewInternalError(err)
	}

	log.Info("generated %d prerequisites for session %d", len(prereqs), sessionID)
	return prereqs, nil
}

func (s *sessionService) RecordPrerequisiteResults(ctx context.Context, sessionID int64, results map[string]bool) (*models.Session, error) {
	log := logger.FromContext(ctx)

	sess, err := s.loadMutable(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Type != models.SessionTypeDepth {
		return nil, apperrors.NewBadRequestError("prerequisites only apply to depth sessions")
	}
	if sess.Prerequisites == nil {
		return nil, apperrors.NewConflictError("prerequisites have not been generated yet")
	}

	known := make(map[string]bool, len(sess.Prerequisites))
	for _, p := range sess.Prerequisites {
		known[p] = true
	}
	for topic := range results {
		if !known[topic] {
			return nil, apperrors.NewValidationError("results", fmt.Sprintf("unknown prerequisite topic: %q", topic))
		}
	}

	if err := s.sessionRepo.SetPrerequisiteResults(ctx, sessionID, results); err != nil {
		log.Error("failed to store prerequisite results: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	return s.load(ctx, sessionID)
}

func (s *sessionService) Complete(ctx context.Context, sessionID int64) (*models.Session, error) {
	log := logger.FromContext(ctx)

	sess, err := s.loadMutable(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var score float64
	if sess.TotalQuestions > 0 {
		score = float64(sess.CorrectAnswers) / float64(sess.TotalQuestions)
	}
	if err := s.sessionRepo.Complete(ctx, sessionID, score); err != nil {
		log.Error("failed to complete session: %v", err)
		return nil, apperrors.NewInternalError(err)
	}

	if err := s.queue.EnqueueStatsRefresh(sess.Topic); err != nil {
		log.Warn("failed to enqueue stats refresh for topic %q: %v", sess.Topic, err)
	}

	log.Info("completed session %d with score %.2f", sessionID, score)
	return s.load(ctx, sessionID)
}

func (s *sessionService) Abandon(ctx context.Context, sessionID int64) error {
	log := logger.FromContext(ctx)

	sess, err := s.loadMutable(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.sessionRepo.UpdateStatus(ctx, sessionID, models.SessionStatusAbandoned); err != nil {
		log.Error("failed to abandon session: %v", err)
		return apperrors.NewInternalError(err)
	}

	if err := s.queue.EnqueueStatsRefresh(sess.Topic); err != nil {
		log.Warn("failed to enqueue stats refresh for topic %q: %v", sess.Topic, err)
	}

	log.Info("abandoned session %d", sessionID)
	return nil
}

// load fetches a session or returns a not-found error.
func (s *sessionService) load(ctx context.Context, id int64) (*models.Session, error) {
	sess, err := s.sessionRepo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if sess == nil {
		return nil, apperrors.NewNotFoundError("session", id)
	}
	return sess, nil
}

// loadMutable additionally rejects sessions in a terminal status.
func (s *sessionService) loadMutable(ctx context.Context, id int64) (*models.Session, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status.Terminal() {
		return nil, apperrors.NewConflictError(fmt.Sprintf("session %d is %s and can no longer change", id, sess.Status))
	}
	return sess, nil
}
