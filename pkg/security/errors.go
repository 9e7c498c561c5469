package security

import "errors"

// 来源过滤错误
var (
	ErrAccessDenied = errors.New("security: access denied for untrusted origin")
	ErrCIDRInvalid  = errors.New("security: invalid CIDR")
)
