package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelar/studyflash/internal/models"
	"github.com/avelar/studyflash/internal/repository/sqlite"
	"github.com/avelar/studyflash/internal/testutil"
)

func TestDeriveScores(t *testing.T) {
	acc, struggle := deriveScores(models.TopicStat{QuestionsAnswered: 0})
	assert.Zero(t, acc)
	assert.Zero(t, struggle)

	acc, struggle = deriveScores(models.TopicStat{QuestionsAnswered: 10, QuestionsCorrect: 10})
	assert.Equal(t, 1.0, acc)
	assert.Zero(t, struggle)

	// Same error rate, more volume: the struggle score must grow.
	_, few := deriveScores(models.TopicStat{QuestionsAnswered: 2, QuestionsCorrect: 1})
	_, many := deriveScores(models.TopicStat{QuestionsAnswered: 40, QuestionsCorrect: 20})
	assert.Greater(t, many, few)
}

func TestTopicStatsDerivesScores(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	ctx := context.Background()

	sessionRepo := sqlite.NewSessionRepository(db)
	statsRepo := sqlite.NewStatsRepository(db)

	id, err := sessionRepo.CreateWithContent(ctx, models.Session{
		Type: models.SessionTypeFast, Status: models.SessionStatusInProgress,
		Topic: "slices", TotalQuestions: 2,
	}, nil, []models.SessionQuestion{
		{Index: 0, Question: "q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "a"},
		{Index: 1, Question: "q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "b"},
	}, nil)
	require.NoError(t, err)
	require.NoError(t, sessionRepo.RecordAnswer(ctx, id, 0, "a", true))
	require.NoError(t, sessionRepo.RecordAnswer(ctx, id, 1, "d", false))
	require.NoError(t, statsRepo.RefreshTopic(ctx, "slices"))

	svc := NewStatsService(statsRepo)
	stats, total, err := svc.TopicStats(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, stats, 1)
	assert.InDelta(t, 0.5, stats[0].Accuracy, 1e-9)
	assert.Greater(t, stats[0].StruggleScore, 0.0)
	assert.Less(t, stats[0].StruggleScore, 0.5)
}
