package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docuchat/backend-go/internal/config"
	apperrors "github.com/docuchat/backend-go/internal/errors"
	"github.com/docuchat/backend-go/internal/kafka"
	"github.com/docuchat/backend-go/internal/knowledge"
	"github.com/docuchat/backend-go/internal/logger"
	"github.com/docuchat/backend-go/internal/metrics"
	"github.com/docuchat/backend-go/internal/models"
	"github.com/docuchat/backend-go/internal/storage"
)

// UploadRequest 文档上传请求
type UploadRequest struct {
	UserID    uint
	Filename  string
	MediaType string
	Size      int64
	Reader    io.Reader
}

// IngestService 文档处理管道：校验、提取、分块、向量化、入库
type IngestService struct {
	cfg          *config.Config
	store        *DocumentStore
	stateMachine *DocumentStateMachine
	extractor    *knowledge.ExtractorManager
	chunker      *knowledge.Chunker
	embedder     knowledge.Embedder
	vectors      knowledge.VectorStore
	statusCache  *StatusCache
	archive      storage.Archive
	producer     *kafka.Producer
}

// NewIngestService 创建文档处理服务，producer为nil时上传后同步处理
func NewIngestService(
	cfg *config.Config,
	store *DocumentStore,
	stateMachine *DocumentStateMachine,
	extractor *knowledge.ExtractorManager,
	chunker *knowledge.Chunker,
	embedder knowledge.Embedder,
	vectors knowledge.VectorStore,
	statusCache *StatusCache,
	archive storage.Archive,
	producer *kafka.Producer,
) *IngestService {
	return &IngestService{
		cfg:          cfg,
		store:        store,
		stateMachine: stateMachine,
		extractor:    extractor,
		chunker:      chunker,
		embedder:     embedder,
		vectors:      vectors,
		statusCache:  statusCache,
		archive:      archive,
		producer:     producer,
	}
}

// IngestUpload 接收上传并处理。所有校验在创建文档记录之前完成，
// 被拒绝的上传不产生任何状态。
func (s *IngestService) IngestUpload(ctx context.Context, req *UploadRequest) (*models.Document, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	tempPath, err := s.saveTempFile(req)
	if err != nil {
		return nil, err
	}

	// 病毒扫描挂载点，开关打开前始终放行
	if s.cfg.Upload.MalwareScanEnabled {
		logger.Warn("malware scan enabled but no scanner wired, skipping")
	}

	archivePath := s.archiveOriginal(ctx, req, tempPath)

	doc := &models.Document{
		UserID:    req.UserID,
		Name:      req.Filename,
		MediaType: req.MediaType,
		FilePath:  archivePath,
	}

	// 异步模式：文档以PENDING落库，处理由队列worker驱动
	if s.producer != nil {
		doc.Status = models.DocumentStatusPending
		if err := s.store.Create(ctx, doc); err != nil {
			os.Remove(tempPath)
			return nil, apperrors.NewPersistenceError("failed to create document").WithCause(err)
		}
		s.statusCache.Set(ctx, doc.UserID, doc.DocumentID, doc.Status)

		// 事件携带本地临时文件路径，消费者必须与上传进程同机运行
		event := &kafka.DocumentProcessEvent{
			DocumentID: doc.DocumentID,
			UserID:     doc.UserID,
			FilePath:   tempPath,
			MediaType:  doc.MediaType,
		}
		if err := s.producer.PublishDocumentProcess(event); err != nil {
			// 排队失败直接判负，临时文件同样清理
			os.Remove(tempPath)
			s.markFailed(ctx, doc)
			return nil, apperrors.NewSystemError(apperrors.ErrCodeExternalService, "failed to enqueue document").WithCause(err)
		}
		return doc, nil
	}

	// 同步模式：直接以PROCESSING落库并就地处理
	doc.Status = models.DocumentStatusProcessing
	if err := s.store.Create(ctx, doc); err != nil {
		os.Remove(tempPath)
		return nil, apperrors.NewPersistenceError("failed to create document").WithCause(err)
	}
	s.statusCache.Set(ctx, doc.UserID, doc.DocumentID, doc.Status)

	if err := s.process(ctx, doc, tempPath); err != nil {
		return doc, err
	}
	return doc, nil
}

// HandleProcessEvent 队列worker入口：PENDING文档转入PROCESSING后执行管道
func (s *IngestService) HandleProcessEvent(ctx context.Context, event *kafka.DocumentProcessEvent) error {
	doc, err := s.store.GetByID(ctx, event.DocumentID)
	if err != nil {
		return fmt.Errorf("document %d not found: %w", event.DocumentID, err)
	}
	if models.IsTerminalStatus(doc.Status) {
		// 重复投递的事件，直接丢弃
		logger.Warn("skipping event for finished document",
			zap.Uint("documentID", doc.DocumentID),
			zap.String("status", doc.Status))
		return nil
	}

	if doc.Status == models.DocumentStatusPending {
		if err := s.stateMachine.Transition(ctx, doc.DocumentID, models.DocumentStatusProcessing); err != nil {
			return err
		}
		doc.Status = models.DocumentStatusProcessing
		s.statusCache.Set(ctx, doc.UserID, doc.DocumentID, doc.Status)
	}

	return s.process(ctx, doc, event.FilePath)
}

// GetStatus 查询文档状态，优先走缓存
func (s *IngestService) GetStatus(ctx context.Context, userID, documentID uint) (string, error) {
	if status, ok := s.statusCache.Get(ctx, userID, documentID); ok {
		return status, nil
	}

	doc, err := s.store.Get(ctx, userID, documentID)
	if err != nil {
		return "", apperrors.NewNotFoundError("document").WithCause(err)
	}
	s.statusCache.Set(ctx, userID, documentID, doc.Status)
	return doc.Status, nil
}

// ListDocuments 列出用户的全部文档
func (s *IngestService) ListDocuments(ctx context.Context, userID uint) ([]models.Document, error) {
	return s.store.List(ctx, userID)
}

// validate 上传前校验，失败的上传不留任何痕迹
func (s *IngestService) validate(req *UploadRequest) error {
	if strings.TrimSpace(req.Filename) == "" {
		return apperrors.NewValidationError(apperrors.ErrCodeValidationFailed, "filename is required")
	}
	if req.Size <= 0 {
		return apperrors.NewValidationError(apperrors.ErrCodeValidationFailed, "file is empty")
	}
	if req.Size > s.cfg.Upload.MaxSize {
		return apperrors.NewValidationError(apperrors.ErrCodeFileTooLarge,
			fmt.Sprintf("file exceeds %d bytes limit", s.cfg.Upload.MaxSize))
	}
	if !s.cfg.Upload.AllowsMediaType(req.MediaType) {
		return apperrors.NewValidationError(apperrors.ErrCodeInvalidFileType,
			fmt.Sprintf("media type %s is not allowed", req.MediaType))
	}
	return nil
}

// saveTempFile 上传内容写入临时文件，实际字节数超限同样拒绝
func (s *IngestService) saveTempFile(req *UploadRequest) (string, error) {
	tempFile, err := os.CreateTemp(s.cfg.Upload.TempDir, "upload-*"+filepath.Ext(req.Filename))
	if err != nil {
		return "", apperrors.NewSystemError(apperrors.ErrCodeInternalServer, "failed to create temp file").WithCause(err)
	}

	written, err := io.Copy(tempFile, io.LimitReader(req.Reader, s.cfg.Upload.MaxSize+1))
	closeErr := tempFile.Close()
	if err != nil || closeErr != nil {
		os.Remove(tempFile.Name())
		if err == nil {
			err = closeErr
		}
		return "", apperrors.NewSystemError(apperrors.ErrCodeInternalServer, "failed to save upload").WithCause(err)
	}
	if written > s.cfg.Upload.MaxSize {
		os.Remove(tempFile.Name())
		return "", apperrors.NewValidationError(apperrors.ErrCodeFileTooLarge,
			fmt.Sprintf("file exceeds %d bytes limit", s.cfg.Upload.MaxSize))
	}

	return tempFile.Name(), nil
}

// archiveOriginal 原件归档是尽力而为的，失败不阻断处理
func (s *IngestService) archiveOriginal(ctx context.Context, req *UploadRequest, tempPath string) string {
	if s.archive == nil || !s.archive.Ready() {
		return ""
	}

	file, err := os.Open(tempPath)
	if err != nil {
		logger.Warn("failed to open temp file for archiving", zap.Error(err))
		return ""
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		logger.Warn("failed to stat temp file for archiving", zap.Error(err))
		return ""
	}

	objectName := fmt.Sprintf("%d/%s%s", req.UserID, uuid.NewString(), filepath.Ext(req.Filename))
	path, err := s.archive.Put(ctx, objectName, file, info.Size(), req.MediaType)
	if err != nil {
		logger.Warn("failed to archive original file",
			zap.String("object", objectName),
			zap.Error(err))
		return ""
	}
	return path
}

// process 执行提取、分块、逐块向量化入库。
// 任何一步失败文档进入FAILED，已入库的分块保留。
// 临时文件无论成败都会删除。
func (s *IngestService) process(ctx context.Context, doc *models.Document, tempPath string) error {
	defer os.Remove(tempPath)
	started := time.Now()

	file, err := os.Open(tempPath)
	if err != nil {
		s.markFailed(ctx, doc)
		return apperrors.NewSystemError(apperrors.ErrCodeInternalServer, "failed to open upload").WithCause(err)
	}

	text, err := s.extractor.Extract(file, doc.MediaType)
	file.Close()
	if err != nil {
		s.markFailed(ctx, doc)
		return apperrors.NewExtractionError("failed to extract text").WithCause(err)
	}

	chunks := s.chunker.Split(text)
	if len(chunks) == 0 {
		s.markFailed(ctx, doc)
		return apperrors.NewExtractionError("no extractable text")
	}

	for _, chunk := range chunks {
		embedding, err := s.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			metrics.EmbeddingErrors.Inc()
			s.markFailed(ctx, doc)
			return apperrors.NewEmbedError(
				fmt.Sprintf("failed to embed chunk %d", chunk.Index)).WithCause(err)
		}

		_, err = s.vectors.InsertChunk(ctx, knowledge.VectorChunk{
			DocumentID: doc.DocumentID,
			UserID:     doc.UserID,
			Index:      chunk.Index,
			Text:       chunk.Text,
			Embedding:  embedding,
		})
		if err != nil {
			s.markFailed(ctx, doc)
			return apperrors.NewPersistenceError(
				fmt.Sprintf("failed to persist chunk %d", chunk.Index)).WithCause(err)
		}
		metrics.ChunksPersisted.Inc()
	}

	if err := s.stateMachine.Transition(ctx, doc.DocumentID, models.DocumentStatusSuccess); err != nil {
		return err
	}
	doc.Status = models.DocumentStatusSuccess
	s.statusCache.Set(ctx, doc.UserID, doc.DocumentID, doc.Status)

	metrics.DocumentsIngested.WithLabelValues(models.DocumentStatusSuccess).Inc()
	metrics.IngestDuration.Observe(time.Since(started).Seconds())

	logger.Info("document processed",
		zap.Uint("documentID", doc.DocumentID),
		zap.Int("chunks", len(chunks)),
		zap.Duration("elapsed", time.Since(started)))

	return nil
}

// markFailed 文档转入FAILED，已写入的分块保持原样
func (s *IngestService) markFailed(ctx context.Context, doc *models.Document) {
	if err := s.stateMachine.Transition(ctx, doc.DocumentID, models.DocumentStatusFailed); err != nil {
		logger.Error("failed to mark document as failed",
			zap.Uint("documentID", doc.DocumentID),
			zap.Error(err))
		return
	}
	doc.Status = models.DocumentStatusFailed
	s.statusCache.Set(ctx, doc.UserID, doc.DocumentID, doc.Status)
	metrics.DocumentsIngested.WithLabelValues(models.DocumentStatusFailed).Inc()
}
