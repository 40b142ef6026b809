package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 文档处理管道指标
var (
	DocumentsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docuchat_documents_ingested_total",
		Help: "Number of documents that finished processing, by final status",
	}, []string{"status"})

	ChunksPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docuchat_chunks_persisted_total",
		Help: "Number of chunks persisted with embeddings",
	})

	IngestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "docuchat_ingest_duration_seconds",
		Help:    "End to end document processing duration",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	SearchRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docuchat_search_requests_total",
		Help: "Number of semantic search requests",
	})

	ChatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docuchat_chat_requests_total",
		Help: "Number of chat completion requests, by knowledge base usage",
	}, []string{"kb_used"})

	EmbeddingErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docuchat_embedding_errors_total",
		Help: "Number of failed embedding API calls",
	})
)
