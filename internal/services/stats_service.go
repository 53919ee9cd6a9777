package services

import (
	"context"
	"math"

	apperrors "github.com/avelar/studyflash/internal/errors"
	"github.com/avelar/studyflash/internal/models"
	"github.com/avelar/studyflash/internal/repository"
)

// StatsService exposes per-topic struggle statistics
type StatsService interface {
	TopicStats(ctx context.Context, limit, offset int) ([]models.TopicStat, int, error)
}

type statsService struct {
	statsRepo repository.StatsRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(statsRepo repository.StatsRepository) StatsService {
	return &statsService{statsRepo: statsRepo}
}

func (s *statsService) TopicStats(ctx context.Context, limit, offset int) ([]models.TopicStat, int, error) {
	stats, err := s.statsRepo.TopicStats(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.NewInternalError(err)
	}
	total, err := s.statsRepo.CountTopics(ctx)
	if err != nil {
		return nil, 0, apperrors.NewInternalError(err)
	}

	for i := range stats {
		stats[i].Accuracy, stats[i].StruggleScore = deriveScores(stats[i])
	}
	return stats, total, nil
}

// deriveScores computes accuracy and the struggle score for one topic. The
// struggle score is the error rate dampened by answer volume, so a topic with
// one wrong answer does not outrank a topic failed twenty times.
func deriveScores(t models.TopicStat) (accuracy, struggle float64) {
	if t.QuestionsAnswered == 0 {
		return 0, 0
	}
	accuracy = float64(t.QuestionsCorrect) / float64(t.QuestionsAnswered)

	// Volume weight approaches 1 as answers accumulate; at 10 answers the
	// error rate counts at ~76% strength.
	weight := 1 - math.Exp(-float64(t.QuestionsAnswered)/7)
	struggle = (1 - accuracy) * weight
	return accuracy, struggle
}
