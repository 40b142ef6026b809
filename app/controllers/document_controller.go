package controllers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/docuchat/backend-go/internal/logger"
	"github.com/docuchat/backend-go/internal/services"
)

// DocumentController 文档上传、列表、状态查询
type DocumentController struct {
	BaseController
	ingestService *services.IngestService
}

// NewDocumentController 创建文档控制器
func NewDocumentController(ingestService *services.IngestService) *DocumentController {
	return &DocumentController{ingestService: ingestService}
}

// Upload 上传文档并触发处理
// POST /api/documents/upload
func (c *DocumentController) Upload() {
	userID, ok := c.currentUserID()
	if !ok {
		c.JSONError(http.StatusUnauthorized, "unauthorized")
		return
	}

	file, header, err := c.GetFile("file")
	if err != nil {
		c.JSONError(http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	mediaType := header.Header.Get("Content-Type")
	doc, err := c.ingestService.IngestUpload(c.Ctx.Request.Context(), &services.UploadRequest{
		UserID:    userID,
		Filename:  header.Filename,
		MediaType: mediaType,
		Size:      header.Size,
		Reader:    file,
	})
	if err != nil {
		logger.Warn("document upload rejected or failed",
			zap.Uint("userID", userID),
			zap.String("filename", header.Filename),
			zap.Error(err))
		// 处理失败的文档也要把文档ID和状态带回去
		if doc != nil {
			c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
				"success":     false,
				"document_id": doc.DocumentID,
				"status":      doc.Status,
				"error":       err.Error(),
			})
			return
		}
		c.JSONAppError(err)
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"document_id": doc.DocumentID,
		"name":        doc.Name,
		"status":      doc.Status,
	})
}

// List 列出当前用户的文档
// GET /api/documents
func (c *DocumentController) List() {
	userID, ok := c.currentUserID()
	if !ok {
		c.JSONError(http.StatusUnauthorized, "unauthorized")
		return
	}

	docs, err := c.ingestService.ListDocuments(c.Ctx.Request.Context(), userID)
	if err != nil {
		c.JSONAppError(err)
		return
	}
	c.JSONSuccess(docs)
}

// Status 查询单个文档的处理状态
// GET /api/documents/:id/status
func (c *DocumentController) Status() {
	userID, ok := c.currentUserID()
	if !ok {
		c.JSONError(http.StatusUnauthorized, "unauthorized")
		return
	}

	documentID, err := strconv.ParseUint(c.Ctx.Input.Param(":id"), 10, 32)
	if err != nil {
		c.JSONError(http.StatusBadRequest, "invalid document id")
		return
	}

	status, err := c.ingestService.GetStatus(c.Ctx.Request.Context(), userID, uint(documentID))
	if err != nil {
		c.JSONAppError(err)
		return
	}
	c.JSONSuccess(map[string]interface{}{
		"document_id": documentID,
		"status":      status,
	})
}
