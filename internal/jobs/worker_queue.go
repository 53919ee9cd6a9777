package jobs

import (
	"github.com/avelar/studyflash/internal/repository"
	"github.com/avelar/studyflash/internal/worker"
)

// WorkerQueue implements Queue on top of a worker pool
type WorkerQueue struct {
	pool         *worker.Pool
	documentRepo repository.DocumentRepository
	statsRepo    repository.StatsRepository
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool *worker.Pool, documentRepo repository.DocumentRepository, statsRepo repository.StatsRepository) Queue {
	return &WorkerQueue{
		pool:         pool,
		documentRepo: documentRepo,
		statsRepo:    statsRepo,
	}
}

func (q *WorkerQueue) EnqueueDocumentIngest(documentID string) error {
	return q.pool.Submit(&worker.IngestDocumentJob{
		DocumentRepo: q.documentRepo,
		DocumentID:   documentID,
	})
}

func (q *WorkerQueue) EnqueueStatsRefresh(topic string) error {
	return q.pool.Submit(&worker.RefreshTopicStatsJob{
		StatsRepo: q.statsRepo,
		Topic:     topic,
	})
}
