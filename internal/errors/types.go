package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误
	ErrCodeInternalServer ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrCodeBadRequest     ErrorCode = "BAD_REQUEST"
	ErrCodeNotFound       ErrorCode = "NOT_FOUND"

	// 验证错误
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeInvalidFileFormat ErrorCode = "INVALID_FILE_FORMAT"
	ErrCodeFileTooLarge      ErrorCode = "FILE_TOO_LARGE"

	// 检索增强流水线错误
	ErrCodeNoExtractableText  ErrorCode = "NO_EXTRACTABLE_TEXT"
	ErrCodeIndexUnavailable   ErrorCode = "INDEX_UNAVAILABLE"
	ErrCodeSynthesisViolation ErrorCode = "SYNTHESIS_CONTRACT_VIOLATION"

	// 外部服务错误
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeDatabaseError   ErrorCode = "DATABASE_ERROR"
)

// ErrorType 错误类型
type ErrorType int

const (
	ErrorTypeSystem ErrorType = iota
	ErrorTypeBusiness
	ErrorTypeValidation
	ErrorTypeExternal
)

// AppError 应用错误结构体
type AppError struct {
	Code     ErrorCode   `json:"code"`
	Message  string      `json:"message"`
	Type     ErrorType   `json:"type"`
	HTTPCode int         `json:"-"`
	Details  interface{} `json:"details,omitempty"`
	Cause    error       `json:"-"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause 添加错误原因
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails 添加错误详情
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// NewInvalidInputError 创建输入验证错误
func NewInvalidInputError(message string) *AppError {
	return &AppError{
		Code:     ErrCodeInvalidInput,
		Message:  message,
		Type:     ErrorTypeValidation,
		HTTPCode: http.StatusBadRequest,
	}
}

// NewNoExtractableTextError 创建无可提取文本错误
// 通常出现在扫描版/纯图片PDF没有文字层的场景。
func NewNoExtractableTextError(documentID string) *AppError {
	return &AppError{
		Code: ErrCodeNoExtractableText,
		Message: fmt.Sprintf(
			"no text chunks created from document %s; this often happens with scanned/image-only PDFs without a text layer",
			documentID,
		),
		Type:     ErrorTypeBusiness,
		HTTPCode: http.StatusUnprocessableEntity,
	}
}

// NewIndexUnavailableError 创建索引不可用错误
// 覆盖向量存储不可达与嵌入服务不可达两类情况。
func NewIndexUnavailableError(message string) *AppError {
	return &AppError{
		Code:     ErrCodeIndexUnavailable,
		Message:  message,
		Type:     ErrorTypeExternal,
		HTTPCode: http.StatusServiceUnavailable,
	}
}

// NewSynthesisContractError 创建答案合成契约错误
// 表示模型响应未能通过严格JSON契约解析，与正常的"I don't know"区分开。
func NewSynthesisContractError(message string) *AppError {
	return &AppError{
		Code:     ErrCodeSynthesisViolation,
		Message:  message,
		Type:     ErrorTypeExternal,
		HTTPCode: http.StatusBadGateway,
	}
}

// NewSystemError 创建系统错误
func NewSystemError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Type:     ErrorTypeSystem,
		HTTPCode: http.StatusInternalServerError,
	}
}

// NewValidationError 创建验证错误
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:     ErrCodeInvalidInput,
		Message:  message,
		Type:     ErrorTypeValidation,
		HTTPCode: http.StatusBadRequest,
	}
}

// IsCode 判断错误链中是否存在指定错误码
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// AsAppError 从错误链中提取AppError；提取失败时包装为系统错误
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewSystemError(ErrCodeInternalServer, "internal server error").WithCause(err)
}
