package jobs

// Queue provides an abstraction for enqueueing background jobs
type Queue interface {
	EnqueueDocumentIngest(documentID string) error
	EnqueueStatsRefresh(topic string) error
}
