package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelar/studyflash/internal/models"
	"github.com/avelar/studyflash/internal/testutil"
)

func TestRefreshTopicAggregatesSessions(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	sessionRepo := NewSessionRepository(db)
	statsRepo := NewStatsRepository(db)
	ctx := context.Background()

	questions := []models.SessionQuestion{
		{Index: 0, Question: "q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "a"},
		{Index: 1, Question: "q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "b"},
	}
	id, err := sessionRepo.CreateWithContent(ctx, models.Session{
		Type: models.SessionTypeFast, Status: models.SessionStatusInProgress,
		Topic: "recursion", TotalQuestions: 2,
	}, nil, questions, nil)
	require.NoError(t, err)

	require.NoError(t, sessionRepo.RecordAnswer(ctx, id, 0, "a", true))
	require.NoError(t, sessionRepo.RecordAnswer(ctx, id, 1, "c", false))
	require.NoError(t, sessionRepo.Complete(ctx, id, 0.5))

	require.NoError(t, statsRepo.RefreshTopic(ctx, "recursion"))

	stats, err := statsRepo.TopicStats(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "recursion", stats[0].Topic)
	assert.Equal(t, 1, stats[0].SessionsStarted)
	assert.Equal(t, 1, stats[0].SessionsCompleted)
	assert.Equal(t, 2, stats[0].QuestionsAnswered)
	assert.Equal(t, 1, stats[0].QuestionsCorrect)
	assert.NotNil(t, stats[0].LastSessionAt)

	count, err := statsRepo.CountTopics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRefreshTopicIsRepeatable(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	sessionRepo := NewSessionRepository(db)
	statsRepo := NewStatsRepository(db)
	ctx := context.Background()

	_, err := sessionRepo.CreateWithContent(ctx, models.Session{
		Type: models.SessionTypeFast, Status: models.SessionStatusInProgress, Topic: "maps",
	}, nil, nil, nil)
	require.NoError(t, err)

	require.NoError(t, statsRepo.RefreshTopic(ctx, "maps"))
	require.NoError(t, statsRepo.RefreshTopic(ctx, "maps"))

	count, err := statsRepo.CountTopics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
