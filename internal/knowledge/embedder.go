package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// 嵌入模型及其输出维度，必须与document_chunks的vector列宽度一致
const (
	defaultEmbeddingModel = "text-embedding-3-small"
	embeddingDimensions   = 1536
)

// Embedder 定义文本向量化接口
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Ready() bool
}

// NoopEmbedder 未配置API密钥时的占位实现
type NoopEmbedder struct{}

func (n *NoopEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("embedding provider not configured")
}

func (n *NoopEmbedder) Dimensions() int { return 0 }

func (n *NoopEmbedder) Ready() bool { return false }

// OpenAIEmbedder 使用OpenAI Embedding API，一次处理一个分块
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	// 串行化对API的调用，避免并发触发限流
	limiter sync.Mutex
}

// NewOpenAIEmbedder 创建OpenAI嵌入向量生成器，apiKey为空时退化为Noop
func NewOpenAIEmbedder(apiKey, model string) Embedder {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return &NoopEmbedder{}
	}
	if model == "" {
		model = defaultEmbeddingModel
	}

	return &OpenAIEmbedder{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("text is empty")
	}

	e.limiter.Lock()
	defer e.limiter.Unlock()

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("embedding response empty")
	}

	embedding := resp.Data[0].Embedding
	if len(embedding) != embeddingDimensions {
		// 换了模型但没改列宽，尽早失败好过写入时才报错
		return nil, fmt.Errorf("model %s returned %d dimensions, want %d",
			e.model, len(embedding), embeddingDimensions)
	}

	result := make([]float32, len(embedding))
	copy(result, embedding)
	return result, nil
}

func (e *OpenAIEmbedder) Dimensions() int {
	return embeddingDimensions
}

func (e *OpenAIEmbedder) Ready() bool {
	return e.client != nil
}
