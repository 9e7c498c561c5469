package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/pijn/portmanager/pkg/logger"
	"github.com/pijn/portmanager/pkg/security"
	"github.com/pijn/portmanager/pkg/web/errors"
)

// OriginOption 来源过滤中间件选项
type OriginOption func(*originOptions)

type originOptions struct {
	onDeny func(c *gin.Context)
}

// WithOnDeny 拒绝请求时的回调（如计数）
func WithOnDeny(fn func(c *gin.Context)) OriginOption {
	return func(o *originOptions) { o.onDeny = fn }
}

// TrustedOrigin 只放行可信来源的请求，其余返回 403
func TrustedOrigin(filter *security.OriginFilter, l logger.Logger, opts ...OriginOption) gin.HandlerFunc {
	o := &originOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return func(c *gin.Context) {
		if err := filter.Check(c.Request.RemoteAddr, c.Request.Header); err != nil {
			l.WarnContext(c.Request.Context(), "access denied",
				"peer", c.Request.RemoteAddr,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
			if o.onDeny != nil {
				o.onDeny(c)
			}
			abort(c, errors.CodeForbidden, "forbidden: untrusted origin")
			return
		}
		c.Next()
	}
}
