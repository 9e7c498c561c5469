package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatedConfig struct {
	Name string `validate:"required"`
	Web  struct {
		Port    int    `validate:"min=1,max=65535"`
		Workers int    `validate:"min=1"`
		Mode    string `validate:"oneof=debug release test"`
	}
	ExtraCIDRs []string `validate:"dive,cidr"`
}

func validConfig() *validatedConfig {
	cfg := &validatedConfig{Name: "port_manager"}
	cfg.Web.Port = 1030
	cfg.Web.Workers = 4
	cfg.Web.Mode = "release"
	return cfg
}

func TestValidator_Validate(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.Validate(validConfig()))

	tests := []struct {
		name    string
		mutate  func(*validatedConfig)
		message string
	}{
		{"missing name", func(c *validatedConfig) { c.Name = "" }, "is required"},
		{"port too large", func(c *validatedConfig) { c.Web.Port = 70000 }, "at most 65535"},
		{"no workers", func(c *validatedConfig) { c.Web.Workers = 0 }, "at least 1"},
		{"bad mode", func(c *validatedConfig) { c.Web.Mode = "prod" }, "one of"},
		{"bad cidr", func(c *validatedConfig) { c.ExtraCIDRs = []string{"10.0.0.0/33"} }, "valid CIDR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := v.Validate(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidationFailed)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestValidator_ValidateNil(t *testing.T) {
	assert.ErrorIs(t, NewValidator().Validate(nil), ErrNilConfig)
}

func TestValidator_ValidateField(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.ValidateField("10.0.0.5", "ip"))
	assert.ErrorIs(t, v.ValidateField("not-an-ip", "ip"), ErrValidationFailed)
}
