package sqlite

import (
	"context"
	"database/sql"

	"github.com/avelar/studyflash/internal/logger"
	"github.com/avelar/studyflash/internal/models"
	"github.com/avelar/studyflash/internal/repository"
)

type statsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new StatsRepository implementation
func NewStatsRepository(db *sql.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) TopicStats(ctx context.Context, limit, offset int) ([]models.TopicStat, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching topic stats: limit=%d, offset=%d", limit, offset)

	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT topic, sessions_started, sessions_completed, cards_studied, questions_answered, questions_correct, last_session_at
FROM topic_stats
ORDER BY questions_answered DESC, topic
LIMIT ? OFFSET ?
`, limit, offset)
	if err != nil {
		log.Error("failed to query topic stats: %v", err)
		return nil, err
	}
	defer rows.Close()

	var stats []models.TopicStat
	for rows.Next() {
		var s models.TopicStat
		var last sql.NullTime
		if err := rows.Scan(&s.Topic, &s.SessionsStarted, &s.SessionsCompleted, &s.CardsStudied,
			&s.QuestionsAnswered, &s.QuestionsCorrect, &last); err != nil {
			log.Error("failed to scan topic stat: %v", err)
			return nil, err
		}
		if last.Valid {
			s.LastSessionAt = &last.Time
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *statsRepository) CountTopics(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM topic_stats`).Scan(&count)
	return count, err
}

func (r *statsRepository) RefreshTopic(ctx context.Context, topic string) error {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("refreshing stats for topic: %s", topic)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO topic_stats (topic, sessions_started, sessions_completed, cards_studied, questions_answered, questions_correct, last_session_at)
SELECT
    s.topic,
    COUNT(*),
    SUM(CASE WHEN s.status = 'completed' THEN 1 ELSE 0 END),
    COALESCE(SUM(s.studied_flashcards), 0),
    COALESCE((SELECT COUNT(*) FROM session_questions q JOIN sessions s2 ON s2.id = q.session_id WHERE s2.topic = s.topic AND q.user_answer IS NOT NULL), 0),
    COALESCE((SELECT COUNT(*) FROM session_questions q JOIN sessions s2 ON s2.id = q.session_id WHERE s2.topic = s.topic AND q.is_correct = 1), 0),
    MAX(s.updated_at)
FROM sessions s
WHERE s.topic = ?
GROUP BY s.topic
ON CONFLICT(topic) DO UPDATE SET
    sessions_started = excluded.sessions_started,
    sessions_completed = excluded.sessions_completed,
    cards_studied = excluded.cards_studied,
    questions_answered = excluded.questions_answered,
    questions_correct = excluded.questions_correct,
    last_session_at = excluded.last_session_at
`, topic)
	if err != nil {
		log.Error("failed to refresh topic stats: %v", err)
	}
	return err
}
