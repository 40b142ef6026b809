package knowledge

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// TextExtractor 按媒体类型提取文件中的纯文本
type TextExtractor interface {
	Extract(reader io.Reader, mediaType string) (string, error)
	Supports(mediaType string) bool
}

// PlainTextExtractor 纯文本提取器
type PlainTextExtractor struct{}

func (p *PlainTextExtractor) Supports(mediaType string) bool {
	return strings.EqualFold(mediaType, "text/plain")
}

func (p *PlainTextExtractor) Extract(reader io.Reader, mediaType string) (string, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("读取文件失败: %w", err)
	}
	return string(content), nil
}

// PDFExtractor PDF文本提取器
type PDFExtractor struct{}

func (p *PDFExtractor) Supports(mediaType string) bool {
	return strings.EqualFold(mediaType, "application/pdf")
}

func (p *PDFExtractor) Extract(reader io.Reader, mediaType string) (string, error) {
	pdfBytes, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("读取PDF文件失败: %w", err)
	}

	pdfReader, err := model.NewPdfReader(bytes.NewReader(pdfBytes))
	if err != nil {
		return "", fmt.Errorf("解析PDF失败: %w", err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("获取PDF页数失败: %w", err)
	}

	// 单页失败不中断，尽量提取剩余页面
	var textBuilder strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			continue
		}

		ex, err := extractor.New(page)
		if err != nil {
			continue
		}

		text, err := ex.ExtractText()
		if err != nil {
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	return textBuilder.String(), nil
}

// ImageExtractor 图片OCR提取器
type ImageExtractor struct{}

func (p *ImageExtractor) Supports(mediaType string) bool {
	return strings.EqualFold(mediaType, "image/png") ||
		strings.EqualFold(mediaType, "image/jpeg")
}

func (p *ImageExtractor) Extract(reader io.Reader, mediaType string) (string, error) {
	imgBytes, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("读取图片文件失败: %w", err)
	}

	// OCR客户端按调用创建并释放，tesseract句柄不跨请求复用
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(imgBytes); err != nil {
		return "", fmt.Errorf("加载图片失败: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR识别失败: %w", err)
	}

	return text, nil
}

// ExtractorManager 文本提取器管理器，按媒体类型分发
type ExtractorManager struct {
	extractors []TextExtractor
}

// NewExtractorManager 创建文本提取器管理器
func NewExtractorManager() *ExtractorManager {
	return &ExtractorManager{
		extractors: []TextExtractor{
			&PDFExtractor{},
			&ImageExtractor{},
			&PlainTextExtractor{},
		},
	}
}

// Extract 提取文本，提取结果为空白时视为失败
func (m *ExtractorManager) Extract(reader io.Reader, mediaType string) (string, error) {
	for _, ex := range m.extractors {
		if !ex.Supports(mediaType) {
			continue
		}
		text, err := ex.Extract(reader, mediaType)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) == "" {
			return "", fmt.Errorf("no extractable text in %s content", mediaType)
		}
		return text, nil
	}
	return "", fmt.Errorf("unsupported media type: %s", mediaType)
}

// Supports 判断媒体类型是否有对应的提取器
func (m *ExtractorManager) Supports(mediaType string) bool {
	for _, ex := range m.extractors {
		if ex.Supports(mediaType) {
			return true
		}
	}
	return false
}

// SupportedTypes 返回支持的媒体类型列表
func (m *ExtractorManager) SupportedTypes() []string {
	return []string{"application/pdf", "text/plain", "image/png", "image/jpeg"}
}
