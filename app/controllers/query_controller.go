package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/docqa/backend-go/internal/di"
	"github.com/docqa/backend-go/internal/rag"
	"github.com/go-playground/validator/v10"
)

// QueryRequest 问答请求
type QueryRequest struct {
	Question   string `json:"question" validate:"required"`
	DocumentID string `json:"document_id" validate:"omitempty,max=64"`
	TopK       int    `json:"top_k" validate:"omitempty,gte=1,lte=50"`
}

var validate = validator.New()

// QueryController 问答控制器
type QueryController struct {
	BaseController
	pipeline *rag.Pipeline
}

// Prepare 从DI容器获取流水线
func (c *QueryController) Prepare() {
	_ = di.Invoke(func(p *rag.Pipeline) {
		c.pipeline = p
	})
}

// Query 对已摄取的文档执行一次问答
func (c *QueryController) Query() {
	if c.pipeline == nil {
		c.JSONError(http.StatusInternalServerError, "service not initialized")
		return
	}

	var req QueryRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		c.JSONError(http.StatusBadRequest, "question is required")
		return
	}

	result, err := c.pipeline.Query(c.Ctx.Request.Context(), req.Question, req.DocumentID, req.TopK)
	if err != nil {
		c.JSONAppError(err)
		return
	}

	c.JSONSuccess(result)
}
