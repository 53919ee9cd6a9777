package worker

import (
	"context"
	"fmt"

	"github.com/avelar/studyflash/internal/generator"
	"github.com/avelar/studyflash/internal/logger"
	"github.com/avelar/studyflash/internal/repository"
)

// IngestDocumentJob splits an uploaded document into overlapping chunks so
// generation can retrieve topic-relevant excerpts from it.
type IngestDocumentJob struct {
	DocumentRepo repository.DocumentRepository
	DocumentID   string
}

func (j *IngestDocumentJob) Name() string { return "ingest_document" }

func (j *IngestDocumentJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("document_id", j.DocumentID)

	doc, err := j.DocumentRepo.Get(ctx, j.DocumentID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("document %s no longer exists", j.DocumentID)
	}

	chunks := generator.SplitText(doc.Content, generator.ChunkSize, generator.ChunkOverlap)
	if err := j.DocumentRepo.ReplaceChunks(ctx, doc.ID, chunks); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}

	log.Info("ingested document %q into %d chunks", doc.Name, len(chunks))
	return nil
}

// RefreshTopicStatsJob recomputes the cached struggle aggregates for a topic
// after a session finishes.
type RefreshTopicStatsJob struct {
	StatsRepo repository.StatsRepository
	Topic     string
}

func (j *RefreshTopicStatsJob) Name() string { return "refresh_topic_stats" }

func (j *RefreshTopicStatsJob) Run(ctx context.Context) error {
	if err := j.StatsRepo.RefreshTopic(ctx, j.Topic); err != nil {
		return fmt.Errorf("refresh stats for topic %q: %w", j.Topic, err)
	}
	return nil
}
