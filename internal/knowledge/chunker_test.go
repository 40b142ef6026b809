package knowledge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChunkerRejectsInvalidConfig(t *testing.T) {
	_, err := NewChunker(0, 0)
	assert.Error(t, err)

	_, err = NewChunker(-5, 0)
	assert.Error(t, err)

	_, err = NewChunker(1000, 1000)
	assert.Error(t, err)

	_, err = NewChunker(1000, 1500)
	assert.Error(t, err)

	_, err = NewChunker(1000, -1)
	assert.Error(t, err)

	c, err := NewChunker(1000, 999)
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestSplitEmptyText(t *testing.T) {
	c, err := NewChunker(1000, 200)
	require.NoError(t, err)
	assert.Empty(t, c.Split(""))
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	c, err := NewChunker(1000, 200)
	require.NoError(t, err)

	text := strings.Repeat("a", 1000)
	chunks := c.Split(text)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, text, chunks[0].Text)
}

func TestSplitWindowOffsets(t *testing.T) {
	c, err := NewChunker(1000, 200)
	require.NoError(t, err)

	// 2500字符，步长800：窗口起点 0/800/1600/2400
	runes := make([]rune, 2500)
	for i := range runes {
		runes[i] = rune('一' + i%512)
	}
	text := string(runes)

	chunks := c.Split(text)
	require.Len(t, chunks, 4)

	for i, start := range []int{0, 800, 1600, 2400} {
		end := start + 1000
		if end > len(runes) {
			end = len(runes)
		}
		assert.Equal(t, i, chunks[i].Index)
		assert.Equal(t, string(runes[start:end]), chunks[i].Text)
	}
	assert.Equal(t, 100, len([]rune(chunks[3].Text)))
}

func TestSplitEmitsTailWindow(t *testing.T) {
	c, err := NewChunker(1000, 200)
	require.NoError(t, err)

	// 前一个窗口正好触底时，起点未越界的尾窗口仍要产出
	text := strings.Repeat("y", 1800)
	chunks := c.Split(text)
	require.Len(t, chunks, 3)
	assert.Equal(t, 1000, len([]rune(chunks[0].Text)))
	assert.Equal(t, 1000, len([]rune(chunks[1].Text)))
	assert.Equal(t, 200, len([]rune(chunks[2].Text)))
}

func TestSplitOverlapBetweenNeighbors(t *testing.T) {
	c, err := NewChunker(10, 4)
	require.NoError(t, err)

	text := "abcdefghijklmnopqrstuvwxyz"
	chunks := c.Split(text)
	require.True(t, len(chunks) >= 2)

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		if len(prev) < 10 {
			// 前一块被文本末尾截短时，重叠关系不再按满窗口计算
			break
		}
		curr := []rune(chunks[i].Text)
		// 最后一块可能比overlap还短
		n := min(4, len(curr))
		tail := string(prev[len(prev)-4 : len(prev)-4+n])
		head := string(curr[:n])
		assert.Equal(t, tail, head)
	}
}

func TestSplitCoverageReconstruction(t *testing.T) {
	c, err := NewChunker(50, 10)
	require.NoError(t, err)

	text := "今天天气不错，" + strings.Repeat("这是一段用于验证覆盖性的中文文本。", 20)
	chunks := c.Split(text)
	require.NotEmpty(t, chunks)

	// 去掉每块前overlap个字符后拼接应还原原文
	var rebuilt strings.Builder
	for i, ch := range chunks {
		runes := []rune(ch.Text)
		if i == 0 {
			rebuilt.WriteString(ch.Text)
			continue
		}
		rebuilt.WriteString(string(runes[10:]))
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestSplitDeterministic(t *testing.T) {
	c, err := NewChunker(100, 30)
	require.NoError(t, err)

	text := strings.Repeat("deterministic ", 100)
	first := c.Split(text)
	second := c.Split(text)
	assert.Equal(t, first, second)
}

func TestSplitPreservesWhitespace(t *testing.T) {
	c, err := NewChunker(1000, 200)
	require.NoError(t, err)

	text := "  line one\n\n\tline two  "
	chunks := c.Split(text)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Text)
}
