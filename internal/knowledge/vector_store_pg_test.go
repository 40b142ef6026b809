package knowledge

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return gdb, mock
}

func TestPgVectorStoreSearchScopesToUser(t *testing.T) {
	gdb, mock := newMockGorm(t)
	store := NewPgVectorStore(gdb)

	rows := sqlmock.NewRows([]string{"chunk_id", "document_id", "document_name", "content", "distance"}).
		AddRow(11, 3, "notes.txt", "closest chunk", 0.12).
		AddRow(7, 4, "report.pdf", "second chunk", 0.34)

	mock.ExpectQuery(regexp.QuoteMeta("document_chunks.embedding <=> ")).
		WithArgs(sqlmock.AnyArg(), uint(42), 5).
		WillReturnRows(rows)

	results, err := store.Search(context.Background(), VectorSearchRequest{
		UserID:         42,
		QueryEmbedding: []float32{0.1, 0.2, 0.3},
		Limit:          5,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, uint(11), results[0].ChunkID)
	assert.Equal(t, "notes.txt", results[0].DocumentName)
	assert.Equal(t, "closest chunk", results[0].Content)
	assert.InDelta(t, 0.12, results[0].Distance, 1e-9)
	assert.True(t, results[0].Distance <= results[1].Distance)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgVectorStoreSearchQueryShape(t *testing.T) {
	gdb, mock := newMockGorm(t)
	store := NewPgVectorStore(gdb)

	// JOIN到documents并按距离升序限量返回
	mock.ExpectQuery(`JOIN documents ON document_chunks\.document_id = documents\.document_id`).
		WithArgs(sqlmock.AnyArg(), uint(7), 5).
		WillReturnRows(sqlmock.NewRows([]string{"chunk_id", "document_id", "document_name", "content", "distance"}))

	results, err := store.Search(context.Background(), VectorSearchRequest{
		UserID:         7,
		QueryEmbedding: []float32{0.5},
	})
	require.NoError(t, err)
	assert.Empty(t, results)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgVectorStoreSearchEmptyQueryEmbedding(t *testing.T) {
	gdb, _ := newMockGorm(t)
	store := NewPgVectorStore(gdb)

	results, err := store.Search(context.Background(), VectorSearchRequest{UserID: 1})
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestPgVectorStoreInsertChunkRejectsEmptyEmbedding(t *testing.T) {
	gdb, _ := newMockGorm(t)
	store := NewPgVectorStore(gdb)

	_, err := store.InsertChunk(context.Background(), VectorChunk{
		DocumentID: 1,
		Index:      0,
		Text:       "chunk without vector",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding is empty")
}

func TestPgVectorStoreInsertChunk(t *testing.T) {
	gdb, mock := newMockGorm(t)
	store := NewPgVectorStore(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "document_chunks"`).
		WillReturnRows(sqlmock.NewRows([]string{"chunk_id"}).AddRow(99))
	mock.ExpectCommit()

	chunkID, err := store.InsertChunk(context.Background(), VectorChunk{
		DocumentID: 5,
		Index:      2,
		Text:       "some chunk text",
		Embedding:  []float32{0.1, 0.2},
	})
	require.NoError(t, err)
	assert.Equal(t, uint(99), chunkID)

	assert.NoError(t, mock.ExpectationsWereMet())
}
