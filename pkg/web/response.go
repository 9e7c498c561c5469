package web

import (
	"github.com/gin-gonic/gin"
	"github.com/pijn/portmanager/pkg/web/errors"
)

// Response 成功响应
type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ErrorResponse 失败响应
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Success 成功响应
func Success(c *gin.Context, data any) {
	c.JSON(errors.CodeToStatus(errors.CodeOK), Response{
		Success: true,
		Data:    data,
	})
}

// Error 错误响应，HTTP 状态码由业务错误码推导
func Error(c *gin.Context, code int, message string) {
	c.JSON(errors.CodeToStatus(code), ErrorResponse{
		Success: false,
		Error:   message,
	})
}

// AbortWithError 中断后续处理并返回错误
func AbortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(errors.CodeToStatus(code), ErrorResponse{
		Success: false,
		Error:   message,
	})
}
