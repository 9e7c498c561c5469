package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var defaultValidator = NewValidator()

// Validate 使用默认验证器校验配置
func Validate(cfg any) error {
	return defaultValidator.Validate(cfg)
}

// Validator 配置验证器
type Validator struct {
	validate *validator.Validate
}

// NewValidator 创建验证器
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate 验证配置结构体
// 支持标准的 validate tag，如：
// - required: 必填字段
// - min=1,max=65535: 数值范围
// - oneof=debug info warn error: 枚举值
// - dive,cidr: 切片元素为 CIDR
func (v *Validator) Validate(cfg any) error {
	if cfg == nil {
		return ErrNilConfig
	}

	if err := v.validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %s", ErrValidationFailed, formatValidationErrors(err))
	}
	return nil
}

// ValidateField 验证单个字段
func (v *Validator) ValidateField(field any, tag string) error {
	if err := v.validate.Var(field, tag); err != nil {
		return fmt.Errorf("%w: %s", ErrValidationFailed, formatValidationErrors(err))
	}
	return nil
}

// formatValidationErrors 格式化验证错误信息
func formatValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	var sb strings.Builder
	for i, fieldErr := range validationErrors {
		if i > 0 {
			sb.WriteString("; ")
		}

		field := fieldErr.Namespace()
		if field == "" {
			field = fieldErr.Field()
		}
		param := fieldErr.Param()

		switch fieldErr.Tag() {
		case "required":
			fmt.Fprintf(&sb, "field '%s' is required", field)
		case "min", "gte":
			fmt.Fprintf(&sb, "field '%s' must be at least %s", field, param)
		case "max", "lte":
			fmt.Fprintf(&sb, "field '%s' must be at most %s", field, param)
		case "oneof":
			fmt.Fprintf(&sb, "field '%s' must be one of [%s]", field, param)
		case "cidr":
			fmt.Fprintf(&sb, "field '%s' must be a valid CIDR", field)
		case "ip":
			fmt.Fprintf(&sb, "field '%s' must be a valid IP address", field)
		default:
			fmt.Fprintf(&sb, "field '%s' failed validation '%s'", field, fieldErr.Tag())
		}
	}
	return sb.String()
}
