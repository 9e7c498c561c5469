package middleware

import (
	"errors"
	"net"
	"net/http/httputil"
	"os"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pijn/portmanager/pkg/logger"
	weberrors "github.com/pijn/portmanager/pkg/web/errors"
)

// Recovery 捕获 panic 并返回 500
func Recovery(l logger.Logger, stack bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			req, _ := httputil.DumpRequest(c.Request, false)
			fields := []interface{}{
				"panic", rec,
				"request", string(req),
			}

			if err, ok := rec.(error); ok && isBrokenPipe(err) {
				l.ErrorContext(c.Request.Context(), "http broken pipe", fields...)
				_ = c.Error(err)
				c.Abort()
				return
			}

			if stack {
				fields = append(fields, "stack", string(debug.Stack()))
			}
			l.ErrorContext(c.Request.Context(), "http recovery from panic", fields...)
			abort(c, weberrors.CodeInternalError, "internal server error")
		}()
		c.Next()
	}
}

// isBrokenPipe 连接已被对端断开
func isBrokenPipe(err error) bool {
	var ne *net.OpError
	if !errors.As(err, &ne) {
		return false
	}
	var se *os.SyscallError
	if !errors.As(ne.Err, &se) {
		return false
	}
	msg := strings.ToLower(se.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
