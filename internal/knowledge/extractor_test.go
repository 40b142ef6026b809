package knowledge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractorManagerDispatch(t *testing.T) {
	m := NewExtractorManager()

	assert.True(t, m.Supports("text/plain"))
	assert.True(t, m.Supports("application/pdf"))
	assert.True(t, m.Supports("image/png"))
	assert.True(t, m.Supports("image/jpeg"))
	assert.False(t, m.Supports("application/msword"))
	assert.False(t, m.Supports("image/gif"))
}

func TestExtractPlainText(t *testing.T) {
	m := NewExtractorManager()

	text, err := m.Extract(strings.NewReader("hello world\nsecond line"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "hello world\nsecond line", text)
}

func TestExtractWhitespaceOnlyFails(t *testing.T) {
	m := NewExtractorManager()

	_, err := m.Extract(strings.NewReader("   \n\t  "), "text/plain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no extractable text")
}

func TestExtractUnsupportedType(t *testing.T) {
	m := NewExtractorManager()

	_, err := m.Extract(strings.NewReader("data"), "application/zip")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported media type")
}

func TestPlainTextExtractorKeepsContentVerbatim(t *testing.T) {
	var p PlainTextExtractor

	in := "  leading spaces\n\n内部  空白\t保留  "
	out, err := p.Extract(strings.NewReader(in), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
