package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelar/studyflash/internal/models"
	"github.com/avelar/studyflash/internal/testutil"
)

func TestDocumentChunkReplacement(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	repo := NewDocumentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, models.Document{ID: "d1", Name: "notes", Content: "full text"}))

	require.NoError(t, repo.ReplaceChunks(ctx, "d1", []string{"first", "second"}))
	require.NoError(t, repo.ReplaceChunks(ctx, "d1", []string{"only"}))

	chunks, err := repo.ChunksForDocuments(ctx, []string{"d1"})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "only", chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Index)
}

func TestChunksForDocumentsSpansMultiple(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	repo := NewDocumentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, models.Document{ID: "d1", Name: "one", Content: "x"}))
	require.NoError(t, repo.Insert(ctx, models.Document{ID: "d2", Name: "two", Content: "y"}))
	require.NoError(t, repo.ReplaceChunks(ctx, "d1", []string{"c1", "c2"}))
	require.NoError(t, repo.ReplaceChunks(ctx, "d2", []string{"c3"}))

	chunks, err := repo.ChunksForDocuments(ctx, []string{"d1", "d2"})
	require.NoError(t, err)
	assert.Len(t, chunks, 3)

	empty, err := repo.ChunksForDocuments(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestDocumentGetMissingReturnsNil(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	repo := NewDocumentRepository(db)

	doc, err := repo.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, doc)
}
