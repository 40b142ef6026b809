package services

import (
	"context"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat/backend-go/internal/knowledge"
)

func newChatFixture(t *testing.T, matches []knowledge.SearchMatch) *ChatService {
	t.Helper()
	gdb, _ := newMockGorm(t)
	search := NewSearchService(NewDocumentStore(gdb), &fakeEmbedder{}, &fakeVectorStore{matches: matches}, 5)
	return NewChatService("", "gpt-4-turbo", search)
}

func TestPrepareMessagesInjectsContext(t *testing.T) {
	gdb, mock := newMockGorm(t)
	search := NewSearchService(NewDocumentStore(gdb), &fakeEmbedder{}, &fakeVectorStore{
		matches: []knowledge.SearchMatch{
			{ChunkID: 1, Content: "chunk one"},
			{ChunkID: 2, Content: "chunk two"},
		},
	}, 5)
	svc := NewChatService("", "gpt-4-turbo", search)

	expectSearchRecordInsert(mock)

	messages := []ChatMessage{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "user", Content: "what do my notes say?"},
	}
	prepared, kbUsed, err := svc.PrepareMessages(context.Background(), 7, messages)
	require.NoError(t, err)
	assert.True(t, kbUsed)
	require.Len(t, prepared, 4)

	// 上下文作为system消息插在最前面，分块以分隔线拼接
	assert.Equal(t, openai.ChatMessageRoleSystem, prepared[0].Role)
	assert.True(t, strings.HasPrefix(prepared[0].Content,
		"You are a helpful AI assistant. Use the following context from the user's knowledge base"))
	assert.Contains(t, prepared[0].Content, "chunk one\n---\nchunk two")

	// 原始消息顺序不变
	assert.Equal(t, "hi", prepared[1].Content)
	assert.Equal(t, "what do my notes say?", prepared[3].Content)
}

func TestPrepareMessagesNoMatchesLeavesMessagesUnchanged(t *testing.T) {
	// 无命中时不注入上下文，检索记录写失败只告警
	svc := newChatFixture(t, nil)

	messages := []ChatMessage{{Role: "user", Content: "anything"}}
	prepared, kbUsed, err := svc.PrepareMessages(context.Background(), 7, messages)
	require.NoError(t, err)
	assert.False(t, kbUsed)
	require.Len(t, prepared, 1)
	assert.Equal(t, "anything", prepared[0].Content)
	assert.Equal(t, "user", prepared[0].Role)
}

func TestPrepareMessagesRejectsEmpty(t *testing.T) {
	svc := newChatFixture(t, nil)

	_, _, err := svc.PrepareMessages(context.Background(), 7, nil)
	require.Error(t, err)
}

func TestPrepareMessagesSearchFailureIsNonFatal(t *testing.T) {
	gdb, _ := newMockGorm(t)
	// 查询向量化失败，聊天按无上下文继续
	search := NewSearchService(NewDocumentStore(gdb), &fakeEmbedder{failFrom: 1}, &fakeVectorStore{}, 5)
	svc := NewChatService("", "gpt-4-turbo", search)

	messages := []ChatMessage{{Role: "user", Content: "question"}}
	prepared, kbUsed, err := svc.PrepareMessages(context.Background(), 7, messages)
	require.NoError(t, err)
	assert.False(t, kbUsed)
	require.Len(t, prepared, 1)
}

func TestStreamChatWithoutAPIKey(t *testing.T) {
	svc := newChatFixture(t, nil)

	_, _, err := svc.StreamChat(context.Background(), 7, []ChatMessage{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.False(t, svc.Ready())
}
