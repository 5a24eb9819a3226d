package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector RAG流水线指标收集器
type Collector struct {
	ingestCounter   *prometheus.CounterVec
	ingestDuration  prometheus.Histogram
	queryCounter    *prometheus.CounterVec
	queryDuration   prometheus.Histogram
	chunksIngested  prometheus.Counter
	candidatesGauge prometheus.Histogram
}

// NewCollector 创建指标收集器并注册Prometheus指标
func NewCollector() *Collector {
	return &Collector{
		ingestCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rag_ingest_total",
				Help: "Total number of document ingestions",
			},
			[]string{"status"}, // status: success, <error code>
		),
		ingestDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rag_ingest_duration_seconds",
				Help:    "Duration of document ingestions",
				Buckets: prometheus.DefBuckets,
			},
		),
		queryCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rag_query_total",
				Help: "Total number of RAG queries",
			},
			[]string{"status"},
		),
		queryDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rag_query_duration_seconds",
				Help:    "Duration of RAG queries",
				Buckets: prometheus.DefBuckets,
			},
		),
		chunksIngested: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rag_chunks_ingested_total",
				Help: "Total number of chunks written to the vector index",
			},
		),
		candidatesGauge: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rag_retrieval_candidates",
				Help:    "Number of candidates returned per retrieval",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
	}
}

// ObserveIngest 记录一次摄取操作
func (c *Collector) ObserveIngest(status string, chunks int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.ingestCounter.WithLabelValues(status).Inc()
	c.ingestDuration.Observe(elapsed.Seconds())
	if chunks > 0 {
		c.chunksIngested.Add(float64(chunks))
	}
}

// ObserveQuery 记录一次查询操作
func (c *Collector) ObserveQuery(status string, candidates int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.queryCounter.WithLabelValues(status).Inc()
	c.queryDuration.Observe(elapsed.Seconds())
	c.candidatesGauge.Observe(float64(candidates))
}

// Handler 返回Prometheus指标的HTTP处理器
func Handler() http.Handler {
	return promhttp.Handler()
}
