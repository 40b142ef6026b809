package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat/backend-go/internal/models"
)

func TestDocumentStoreCreateDefaultsToPending(t *testing.T) {
	gdb, mock := newMockGorm(t)
	store := NewDocumentStore(gdb)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "documents"`).
		WillReturnRows(sqlmock.NewRows([]string{"document_id"}).AddRow(10))
	mock.ExpectCommit()

	doc := &models.Document{
		UserID:    1,
		Name:      "notes.txt",
		MediaType: "text/plain",
	}
	err := store.Create(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, uint(10), doc.DocumentID)
	assert.Equal(t, models.DocumentStatusPending, doc.Status)
	assert.False(t, doc.CreateTime.IsZero())
}

func TestDocumentStoreGetScopesToUser(t *testing.T) {
	gdb, mock := newMockGorm(t)
	store := NewDocumentStore(gdb)

	mock.ExpectQuery(`SELECT \* FROM "documents"`).
		WithArgs(uint(5), uint(1), 1).
		WillReturnRows(documentRow(5, models.DocumentStatusSuccess))

	doc, err := store.Get(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, uint(5), doc.DocumentID)

	// 其他用户的文档查不到
	mock.ExpectQuery(`SELECT \* FROM "documents"`).
		WithArgs(uint(5), uint(2), 1).
		WillReturnRows(sqlmock.NewRows([]string{"document_id"}))

	_, err = store.Get(context.Background(), 2, 5)
	assert.Error(t, err)
}

func TestDocumentStoreList(t *testing.T) {
	gdb, mock := newMockGorm(t)
	store := NewDocumentStore(gdb)

	rows := documentRow(2, models.DocumentStatusSuccess)
	mock.ExpectQuery(`SELECT \* FROM "documents"`).
		WithArgs(uint(1)).
		WillReturnRows(rows)

	docs, err := store.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, uint(2), docs[0].DocumentID)
}
