package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsService 问答管线指标收集器
type MetricsService struct {
	documentsIndexed  *prometheus.CounterVec
	chunksIndexed     prometheus.Counter
	documentsRejected *prometheus.CounterVec
	indexDuration     prometheus.Histogram

	questionsAnswered *prometheus.CounterVec
	emptyRetrievals   prometheus.Counter
	answerDuration    prometheus.Histogram
	cacheHits         prometheus.Counter
}

var globalMetricsService *MetricsService

// NewMetricsService 创建指标服务实例（指标注册到默认Registry，进程内只建一次）
func NewMetricsService() *MetricsService {
	if globalMetricsService != nil {
		return globalMetricsService
	}

	ms := &MetricsService{
		documentsIndexed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rag_documents_indexed_total",
				Help: "Total number of documents processed for indexing",
			},
			[]string{"status"}, // status: success, error
		),
		chunksIndexed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rag_chunks_indexed_total",
				Help: "Total number of chunks written to the vector index",
			},
		),
		documentsRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rag_documents_rejected_total",
				Help: "Total number of documents rejected before indexing",
			},
			[]string{"reason"}, // reason: validation, file_format
		),
		indexDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rag_index_duration_seconds",
				Help:    "Duration of the full document indexing pipeline",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			},
		),
		questionsAnswered: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rag_questions_answered_total",
				Help: "Total number of questions processed",
			},
			[]string{"status"}, // status: success, error
		),
		emptyRetrievals: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rag_empty_retrievals_total",
				Help: "Total number of questions with no matching policy context",
			},
		),
		answerDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rag_answer_duration_seconds",
				Help:    "Duration of the question answering pipeline",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			},
		),
		cacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rag_answer_cache_hits_total",
				Help: "Total number of answers served from cache",
			},
		),
	}

	globalMetricsService = ms
	return ms
}

// RecordIndexing 记录一次文档入库
func (ms *MetricsService) RecordIndexing(chunks int, duration time.Duration, err error) {
	if ms == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	ms.documentsIndexed.WithLabelValues(status).Inc()
	if err == nil {
		ms.chunksIndexed.Add(float64(chunks))
	}
	ms.indexDuration.Observe(duration.Seconds())
}

// RecordRejection 记录一次入库前拒绝
func (ms *MetricsService) RecordRejection(reason string) {
	if ms == nil {
		return
	}
	ms.documentsRejected.WithLabelValues(reason).Inc()
}

// RecordAnswer 记录一次问答
func (ms *MetricsService) RecordAnswer(duration time.Duration, emptyRetrieval bool, err error) {
	if ms == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	ms.questionsAnswered.WithLabelValues(status).Inc()
	if emptyRetrieval {
		ms.emptyRetrievals.Inc()
	}
	ms.answerDuration.Observe(duration.Seconds())
}

// RecordCacheHit 记录一次缓存命中
func (ms *MetricsService) RecordCacheHit() {
	if ms == nil {
		return
	}
	ms.cacheHits.Inc()
}
