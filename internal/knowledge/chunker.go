package knowledge

import "fmt"

// Chunk 表示分块后的文本结构
type Chunk struct {
	Index int
	Text  string
}

// Chunker 滑动窗口文本分块器
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker 创建分块器，overlap必须严格小于chunkSize
func NewChunker(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("overlap must satisfy 0 <= overlap < chunk size, got overlap=%d size=%d",
			overlap, chunkSize)
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: overlap,
	}, nil
}

// Split 将文本按固定窗口切分，相邻chunk之间保留重叠部分。
// 文本原样进入chunk，不做任何空白归一化，保证拼接后能还原原文。
func (c *Chunker) Split(text string) []Chunk {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= c.chunkSize {
		return []Chunk{{Index: 0, Text: text}}
	}

	step := c.chunkSize - c.chunkOverlap

	var chunks []Chunk
	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Text:  string(runes[start:end]),
		})
	}

	return chunks
}

// ChunkSize 返回窗口大小
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Overlap 返回重叠大小
func (c *Chunker) Overlap() int {
	return c.chunkOverlap
}
