package web

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pijn/portmanager/pkg/web/errors"
)

// BindJSON 绑定 JSON 请求体并校验，失败时直接写出 400 响应
func BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var verrs validator.ValidationErrors
		if ok := asValidationErrors(err, &verrs); ok {
			Error(c, errors.CodeInvalidParams, describeValidation(verrs))
			return false
		}
		Error(c, errors.CodeInvalidParams, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

// describeValidation 生成可读的校验错误，如 "service_name is required"
func describeValidation(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "ip|hostname_rfc1123", "ip", "hostname_rfc1123":
			msgs = append(msgs, fe.Field()+" must be an IP address or hostname")
		default:
			msgs = append(msgs, fe.Field()+" failed on "+fe.Tag())
		}
	}
	return "invalid request: " + strings.Join(msgs, "; ")
}
