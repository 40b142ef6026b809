package services

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	apperrors "github.com/docuchat/backend-go/internal/errors"
	"github.com/docuchat/backend-go/internal/logger"
	"github.com/docuchat/backend-go/internal/metrics"
)

// ChatMessage 聊天消息
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatService 基于用户知识库的流式聊天补全
type ChatService struct {
	client *openai.Client
	model  string
	search *SearchService
}

// NewChatService 创建聊天服务
func NewChatService(apiKey, model string, search *SearchService) *ChatService {
	apiKey = strings.TrimSpace(apiKey)
	var client *openai.Client
	if apiKey != "" {
		client = openai.NewClient(apiKey)
	}
	if model == "" {
		model = "gpt-4-turbo"
	}
	return &ChatService{
		client: client,
		model:  model,
		search: search,
	}
}

// Ready 是否配置了上游模型
func (s *ChatService) Ready() bool {
	return s.client != nil
}

// PrepareMessages 用最后一条用户消息检索知识库，有命中时把上下文
// 作为system消息插到最前面。检索失败不阻断聊天，按无上下文继续。
func (s *ChatService) PrepareMessages(ctx context.Context, userID uint, messages []ChatMessage) ([]openai.ChatCompletionMessage, bool, error) {
	if len(messages) == 0 {
		return nil, false, apperrors.NewValidationError(apperrors.ErrCodeValidationFailed, "messages are required")
	}

	kbUsed := false
	lastMessage := messages[len(messages)-1].Content

	if strings.TrimSpace(lastMessage) != "" {
		results, err := s.search.Search(ctx, userID, lastMessage)
		if err != nil {
			logger.Warn("knowledge base lookup failed, continuing without context",
				zap.Uint("userID", userID),
				zap.Error(err))
		} else if len(results) > 0 {
			contents := make([]string, 0, len(results))
			for _, r := range results {
				contents = append(contents, r.Content)
			}
			contextMessage := fmt.Sprintf(
				"You are a helpful AI assistant. Use the following context from the user's knowledge base to answer their question.\nCONTEXT:\n%s",
				strings.Join(contents, "\n---\n"))

			messages = append([]ChatMessage{{Role: openai.ChatMessageRoleSystem, Content: contextMessage}}, messages...)
			kbUsed = true
		}
	}

	converted := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		converted = append(converted, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return converted, kbUsed, nil
}

// StreamChat 发起流式补全，返回的stream由调用方消费并关闭
func (s *ChatService) StreamChat(ctx context.Context, userID uint, messages []ChatMessage) (*openai.ChatCompletionStream, bool, error) {
	if s.client == nil {
		return nil, false, apperrors.NewSystemError(apperrors.ErrCodeExternalService, "chat model not configured")
	}

	prepared, kbUsed, err := s.PrepareMessages(ctx, userID, messages)
	if err != nil {
		return nil, false, err
	}

	stream, err := s.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: prepared,
		Stream:   true,
	})
	if err != nil {
		return nil, kbUsed, apperrors.NewSystemError(apperrors.ErrCodeExternalService, "chat completion failed").WithCause(err)
	}

	metrics.ChatRequests.WithLabelValues(fmt.Sprintf("%t", kbUsed)).Inc()
	return stream, kbUsed, nil
}
