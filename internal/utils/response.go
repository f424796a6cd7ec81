package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorBody 统一错误响应格式
type ErrorBody struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

// SuccessResponse 200 响应，直接返回实体
func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 201 响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent 204 响应
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorBody{
		Code:  code,
		Error: message,
	})
}

// BadRequest 400错误
func BadRequest(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, message)
}

// Unauthorized 401错误
func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, message)
}

// Forbidden 403错误
func Forbidden(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, message)
}

// NotFound 404错误
func NotFound(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, message)
}

// TooManyRequests 429错误
func TooManyRequests(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusTooManyRequests, message)
}

// InternalError 500错误
func InternalError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, message)
}

// HandleError 按错误分类写出响应
// 非业务错误只记录日志，对外返回固定文案
func HandleError(c *gin.Context, err error) {
	kind := KindOf(err)
	if kind == KindInternal {
		_ = c.Error(err)
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("unhandled error")
		InternalError(c, "internal server error")
		return
	}
	ErrorResponse(c, kind.StatusCode(), err.Error())
}
