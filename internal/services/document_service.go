package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/avelar/studyflash/internal/errors"
	"github.com/avelar/studyflash/internal/jobs"
	"github.com/avelar/studyflash/internal/logger"
	"github.com/avelar/studyflash/internal/models"
	"github.com/avelar/studyflash/internal/repository"
)

// DocumentService handles uploaded study material
type DocumentService interface {
	Add(ctx context.Context, name, content string) (*models.Document, error)
	Get(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context) ([]models.Document, error)
}

type documentService struct {
	documentRepo repository.DocumentRepository
	queue        jobs.Queue
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(documentRepo repository.DocumentRepository, queue jobs.Queue) DocumentService {
	return &documentService{documentRepo: documentRepo, queue: queue}
}

func (s *documentService) Add(ctx context.Context, name, content string) (*models.Document, error) {
	log := logger.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "must not be empty")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewValidationError("content", "must not be empty")
	}

	doc := models.Document{
		ID:      uuid.NewString(),
		Name:    name,
		Content: content,
	}
	if err := s.documentRepo.Insert(ctx, doc); err != nil {
		log.Error("failed to insert document: %v", err)
		return nil, apperrors.NewInternalError(err)
	}

	// Chunking happens in the background; generation falls back to topic-only
	// prompts until the chunks exist.
	if err := s.queue.EnqueueDocumentIngest(doc.ID); err != nil {
		log.Warn("failed to enqueue ingest for document %s: %v", doc.ID, err)
	}

	log.Info("added document %s (%q, %d bytes)", doc.ID, doc.Name, len(content))
	return s.Get(ctx, doc.ID)
}

func (s *documentService) Get(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.documentRepo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if doc == nil {
		return nil, apperrors.NewNotFoundError("document", id)
	}
	return doc, nil
}

func (s *documentService) List(ctx context.Context) ([]models.Document, error) {
	docs, err := s.documentRepo.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return docs, nil
}
