package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/pijn/portmanager/pkg/logger"
	"github.com/pijn/portmanager/pkg/util/conc"
	"github.com/pijn/portmanager/pkg/web/errors"
)

// Workers 将后续处理链交给固定大小的协程池执行，并等待其完成
// worker 内的 panic 会在请求协程上重新抛出，交由 Recovery 处理
func Workers(pool *conc.Pool[struct{}], l logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, err := pool.Submit(func() (struct{}, error) {
			c.Next()
			return struct{}{}, nil
		}).Await()
		if err == nil {
			return
		}

		if pe, ok := err.(*conc.PanicError); ok {
			panic(pe.Value)
		}

		l.ErrorContext(c.Request.Context(), "worker pool rejected request", "error", err)
		abort(c, errors.CodeUnavailable, "service unavailable")
	}
}
