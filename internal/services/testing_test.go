package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/docuchat/backend-go/internal/knowledge"
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

// fakeEmbedder 返回固定向量，可配置第N次调用开始失败
type fakeEmbedder struct {
	mu       sync.Mutex
	calls    int
	failFrom int // 第failFrom次调用返回错误，0表示不失败
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failFrom > 0 && f.calls >= f.failFrom {
		return nil, fmt.Errorf("embedding api unavailable")
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeEmbedder) Dimensions() int { return 3 }
func (f *fakeEmbedder) Ready() bool     { return true }

// fakeVectorStore 内存向量存储，记录写入的分块
type fakeVectorStore struct {
	mu       sync.Mutex
	inserted []knowledge.VectorChunk
	matches  []knowledge.SearchMatch
	nextID   uint
	failFrom int
}

func (f *fakeVectorStore) InsertChunk(ctx context.Context, chunk knowledge.VectorChunk) (uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFrom > 0 && len(f.inserted)+1 >= f.failFrom {
		return 0, fmt.Errorf("insert failed")
	}
	f.inserted = append(f.inserted, chunk)
	f.nextID++
	return f.nextID, nil
}

func (f *fakeVectorStore) DeleteDocument(ctx context.Context, documentID uint) error {
	return nil
}

func (f *fakeVectorStore) Search(ctx context.Context, req knowledge.VectorSearchRequest) ([]knowledge.SearchMatch, error) {
	return f.matches, nil
}

func (f *fakeVectorStore) Ready() bool { return true }
