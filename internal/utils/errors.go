package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind 业务错误分类，决定HTTP状态码
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUniqueness
	KindConflict
	KindNotFound
	KindAuth
	KindAuthorization
	KindNoOp
	KindTooManyRequests
)

// String 返回错误分类名称
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUniqueness:
		return "uniqueness"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	case KindAuthorization:
		return "authorization"
	case KindNoOp:
		return "no_op"
	case KindTooManyRequests:
		return "too_many_requests"
	default:
		return "internal"
	}
}

// StatusCode 错误分类对应的HTTP状态码
func (k ErrorKind) StatusCode() int {
	switch k {
	case KindValidation, KindUniqueness, KindConflict, KindNoOp:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// AppError 可直接返回给调用方的业务错误
type AppError struct {
	Kind    ErrorKind
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// Is 同类错误视为相等，便于 errors.Is(err, utils.ErrNotFound)
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// 用于 errors.Is 的哨兵值
var (
	ErrValidation    = &AppError{Kind: KindValidation}
	ErrUniqueness    = &AppError{Kind: KindUniqueness}
	ErrConflict      = &AppError{Kind: KindConflict}
	ErrNotFound      = &AppError{Kind: KindNotFound}
	ErrAuth          = &AppError{Kind: KindAuth}
	ErrAuthorization = &AppError{Kind: KindAuthorization}
	ErrNoOp          = &AppError{Kind: KindNoOp}
	ErrTooMany       = &AppError{Kind: KindTooManyRequests}
)

func newAppError(kind ErrorKind, format string, args ...interface{}) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewValidationError 缺少或格式错误的输入
func NewValidationError(format string, args ...interface{}) *AppError {
	return newAppError(KindValidation, format, args...)
}

// NewUniquenessError 名称/用户名/邮箱重复
func NewUniquenessError(format string, args ...interface{}) *AppError {
	return newAppError(KindUniqueness, format, args...)
}

// NewConflictError 因引用关系无法删除
func NewConflictError(format string, args ...interface{}) *AppError {
	return newAppError(KindConflict, format, args...)
}

// NewNotFoundError 标识符无法解析
func NewNotFoundError(format string, args ...interface{}) *AppError {
	return newAppError(KindNotFound, format, args...)
}

// NewAuthError 凭证错误或缺失
func NewAuthError(format string, args ...interface{}) *AppError {
	return newAppError(KindAuth, format, args...)
}

// NewAuthorizationError 已认证但权限不足
func NewAuthorizationError(format string, args ...interface{}) *AppError {
	return newAppError(KindAuthorization, format, args...)
}

// NewNoOpError 更新没有产生任何变化
func NewNoOpError(format string, args ...interface{}) *AppError {
	return newAppError(KindNoOp, format, args...)
}

// NewTooManyRequestsError 触发限流
func NewTooManyRequestsError(format string, args ...interface{}) *AppError {
	return newAppError(KindTooManyRequests, format, args...)
}

// KindOf 返回错误分类，非 AppError 一律视为内部错误
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
