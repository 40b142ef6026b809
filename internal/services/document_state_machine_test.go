package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat/backend-go/internal/models"
)

func TestCanTransition(t *testing.T) {
	sm := NewDocumentStateMachine(nil)

	assert.True(t, sm.CanTransition(models.DocumentStatusPending, models.DocumentStatusProcessing))
	assert.True(t, sm.CanTransition(models.DocumentStatusProcessing, models.DocumentStatusSuccess))
	assert.True(t, sm.CanTransition(models.DocumentStatusProcessing, models.DocumentStatusFailed))
	assert.True(t, sm.CanTransition(models.DocumentStatusFailed, models.DocumentStatusPending))

	// 终态不再转出
	assert.False(t, sm.CanTransition(models.DocumentStatusSuccess, models.DocumentStatusProcessing))
	assert.False(t, sm.CanTransition(models.DocumentStatusSuccess, models.DocumentStatusFailed))
	assert.False(t, sm.CanTransition(models.DocumentStatusFailed, models.DocumentStatusSuccess))

	// 不能跳过PROCESSING
	assert.False(t, sm.CanTransition(models.DocumentStatusPending, models.DocumentStatusSuccess))
}

func TestTransitionRejectsInvalidMove(t *testing.T) {
	gdb, mock := newMockGorm(t)
	sm := NewDocumentStateMachine(gdb)

	mock.ExpectQuery(`SELECT \* FROM "documents"`).
		WillReturnRows(documentRow(1, models.DocumentStatusSuccess))

	err := sm.Transition(context.Background(), 1, models.DocumentStatusProcessing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid transition")
}

func TestTransitionGuardsAgainstConcurrentUpdate(t *testing.T) {
	gdb, mock := newMockGorm(t)
	sm := NewDocumentStateMachine(gdb)

	mock.ExpectQuery(`SELECT \* FROM "documents"`).
		WillReturnRows(documentRow(1, models.DocumentStatusProcessing))
	mock.ExpectBegin()
	// 状态已被另一个worker改走，WHERE不命中
	mock.ExpectExec(`UPDATE "documents"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := sm.Transition(context.Background(), 1, models.DocumentStatusSuccess)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concurrently")
}
