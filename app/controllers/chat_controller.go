package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/docuchat/backend-go/internal/logger"
	"github.com/docuchat/backend-go/internal/services"
)

// ChatController 基于知识库的流式聊天接口
type ChatController struct {
	BaseController
	chatService *services.ChatService
}

// NewChatController 创建聊天控制器
func NewChatController(chatService *services.ChatService) *ChatController {
	return &ChatController{chatService: chatService}
}

type chatRequest struct {
	Messages []services.ChatMessage `json:"messages" validate:"required,min=1"`
}

// Stream 流式聊天补全，SSE输出。
// 首个事件带kb_used标记，之后逐块推送模型增量。
// POST /api/chat
func (c *ChatController) Stream() {
	userID, ok := c.currentUserID()
	if !ok {
		c.JSONError(http.StatusUnauthorized, "unauthorized")
		return
	}

	var req chatRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		c.JSONError(http.StatusBadRequest, "messages are required")
		return
	}

	stream, kbUsed, err := c.chatService.StreamChat(c.Ctx.Request.Context(), userID, req.Messages)
	if err != nil {
		c.JSONAppError(err)
		return
	}
	defer stream.Close()

	w := c.Ctx.ResponseWriter
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if !ok {
		c.JSONError(http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeEvent(w, "meta", map[string]interface{}{"kb_used": kbUsed})
	flusher.Flush()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Warn("chat stream interrupted",
				zap.Uint("userID", userID),
				zap.Error(err))
			writeEvent(w, "error", map[string]interface{}{"error": "stream interrupted"})
			flusher.Flush()
			return
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		writeEvent(w, "message", map[string]interface{}{"content": delta})
		flusher.Flush()
	}

	fmt.Fprint(w, "event: done\ndata: [DONE]\n\n")
	flusher.Flush()
}

func writeEvent(w io.Writer, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
