package repository

import (
	"context"

	"github.com/avelar/studyflash/internal/models"
)

// SessionRepository handles session aggregate data access
type SessionRepository interface {
	// CreateWithContent inserts a session together with its flashcards,
	// questions and document links in one transaction, so the aggregate is
	// created atomically.
	CreateWithContent(ctx context.Context, session models.Session, cards []models.SessionFlashcard, questions []models.SessionQuestion, documentIDs []string) (int64, error)
	Get(ctx context.Context, id int64) (*models.Session, error)
	List(ctx context.Context, filter models.SessionFilter) ([]models.Session, error)
	Count(ctx context.Context, filter models.SessionFilter) (int, error)
	Flashcards(ctx context.Context, sessionID int64) ([]models.SessionFlashcard, error)
	Questions(ctx context.Context, sessionID int64) ([]models.SessionQuestion, error)
	DocumentIDs(ctx context.Context, sessionID int64) ([]string, error)
	// MarkFlashcardStudied sets is_studied on one card and bumps the session
	// counter. Returns false when the card was already studied.
	MarkFlashcardStudied(ctx context.Context, sessionID int64, index int) (bool, error)
	// RecordAnswer sets user_answer and is_correct together on one question.
	RecordAnswer(ctx context.Context, sessionID int64, index int, answer string, correct bool) error
	SetPrerequisites(ctx context.Context, sessionID int64, prerequisites []string) error
	SetPrerequisiteResults(ctx context.Context, sessionID int64, results map[string]bool) error
	Complete(ctx context.Context, sessionID int64, finalScore float64) error
	UpdateStatus(ctx context.Context, sessionID int64, status models.SessionStatus) error
}

// DocumentRepository handles uploaded document data access
type DocumentRepository interface {
	Insert(ctx context.Context, doc models.Document) error
	Get(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context) ([]models.Document, error)
	// ReplaceChunks deletes and re-inserts the chunk rows for a document.
	ReplaceChunks(ctx context.Context, documentID string, chunks []string) error
	ChunksForDocuments(ctx context.Context, documentIDs []string) ([]models.DocumentChunk, error)
}

// StatsRepository handles per-topic statistics data access
type StatsRepository interface {
	TopicStats(ctx context.Context, limit, offset int) ([]models.TopicStat, error)
	CountTopics(ctx context.Context) (int, error)
	// RefreshTopic recomputes the aggregate row for one topic from the
	// session tables.
	RefreshTopic(ctx context.Context, topic string) error
}
