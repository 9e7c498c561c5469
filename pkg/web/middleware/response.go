package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/pijn/portmanager/pkg/web/errors"
)

// abort 以统一的失败结构中断请求
func abort(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(errors.CodeToStatus(code), gin.H{
		"success": false,
		"error":   message,
	})
}
