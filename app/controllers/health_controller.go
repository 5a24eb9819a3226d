package controllers

import (
	"net/http"

	"github.com/docqa/backend-go/internal/di"
	"github.com/docqa/backend-go/internal/metrics"
	"github.com/docqa/backend-go/internal/rag"
)

// RootController 根控制器
type RootController struct {
	BaseController
}

func (c *RootController) Index() {
	c.JSONSuccess(map[string]string{"message": "Document QA Service API"})
}

// HealthController 健康检查控制器
type HealthController struct {
	BaseController
}

// Health 返回服务与核心组件的就绪状态
func (c *HealthController) Health() {
	components := map[string]bool{}
	err := di.Invoke(func(embedder rag.Embedder, store rag.VectorStore) {
		components["embedder"] = embedder.Ready()
		components["vector_store"] = store.Ready()
	})
	if err != nil {
		c.JSONError(http.StatusInternalServerError, "container not initialized")
		return
	}

	status := "healthy"
	for _, ok := range components {
		if !ok {
			status = "degraded"
		}
	}

	c.JSONSuccess(map[string]interface{}{
		"status":     status,
		"components": components,
	})
}

// MetricsController 指标控制器
type MetricsController struct {
	BaseController
	collector *metrics.Collector
}

// Prepare 从DI容器获取指标采集器
func (c *MetricsController) Prepare() {
	_ = di.Invoke(func(collector *metrics.Collector) {
		c.collector = collector
	})
}

// Metrics 返回Prometheus格式的指标
func (c *MetricsController) Metrics() {
	if c.collector == nil {
		c.JSONError(http.StatusNotFound, "metrics disabled")
		return
	}
	c.Ctx.Output.Header("Content-Type", "text/plain; charset=utf-8")
	metrics.Handler().ServeHTTP(c.Ctx.ResponseWriter, c.Ctx.Request)
}
