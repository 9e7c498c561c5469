package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mergeWebConfig struct {
	Host    string
	Port    int
	Workers int
	Timeout time.Duration
}

type mergeAccessConfig struct {
	TrustProxy   bool
	ProxyHeaders []string
	ExtraCIDRs   []string
}

type mergeTestConfig struct {
	Name   string
	Web    mergeWebConfig
	Access *mergeAccessConfig
	Labels map[string]string
}

// TestMergeConfig_OverridesNonZero 非零值覆盖，零值保留默认
func TestMergeConfig_OverridesNonZero(t *testing.T) {
	dst := &mergeTestConfig{
		Name: "port_manager",
		Web:  mergeWebConfig{Host: "127.0.0.1", Port: 1030, Workers: 4, Timeout: 15 * time.Second},
	}
	src := &mergeTestConfig{
		Web: mergeWebConfig{Port: 2040},
	}

	result, err := MergeConfig(dst, src)
	require.NoError(t, err)
	assert.Equal(t, "port_manager", result.Name)
	assert.Equal(t, "127.0.0.1", result.Web.Host)
	assert.Equal(t, 2040, result.Web.Port)
	assert.Equal(t, 4, result.Web.Workers)
	assert.Equal(t, 15*time.Second, result.Web.Timeout)
}

// TestMergeConfig_PointerAndSlice 指针递归合并，切片整体覆盖
func TestMergeConfig_PointerAndSlice(t *testing.T) {
	dst := &mergeTestConfig{
		Access: &mergeAccessConfig{ProxyHeaders: []string{"X-Forwarded-For", "X-Real-IP"}},
	}
	src := &mergeTestConfig{
		Access: &mergeAccessConfig{TrustProxy: true, ExtraCIDRs: []string{"100.64.0.0/10"}},
	}

	result, err := MergeConfig(dst, src)
	require.NoError(t, err)
	require.NotNil(t, result.Access)
	assert.True(t, result.Access.TrustProxy)
	assert.Equal(t, []string{"X-Forwarded-For", "X-Real-IP"}, result.Access.ProxyHeaders)
	assert.Equal(t, []string{"100.64.0.0/10"}, result.Access.ExtraCIDRs)
}

// TestMergeConfig_Map map 按 key 合并
func TestMergeConfig_Map(t *testing.T) {
	dst := &mergeTestConfig{Labels: map[string]string{"env": "dev", "zone": "a"}}
	src := &mergeTestConfig{Labels: map[string]string{"env": "prod"}}

	result, err := MergeConfig(dst, src)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"env": "prod", "zone": "a"}, result.Labels)
}

func TestMergeConfig_NilArguments(t *testing.T) {
	cfg := &mergeTestConfig{Name: "x"}

	result, err := MergeConfig(cfg, nil)
	require.NoError(t, err)
	assert.Same(t, cfg, result)

	result, err = MergeConfig(nil, cfg)
	require.NoError(t, err)
	assert.Same(t, cfg, result)

	_, err = MergeConfig[mergeTestConfig](nil, nil)
	assert.Error(t, err)
}

type mergeToggleConfig struct {
	Enabled  bool
	Burst    int
	Limit    *int
	Since    time.Time
	Features *mergeAccessConfig
}

// TestMergeConfig_ExplicitFalse 显式 false 关闭默认开启的选项
func TestMergeConfig_ExplicitFalse(t *testing.T) {
	dst := &mergeToggleConfig{Enabled: true, Burst: 200}
	src := &mergeToggleConfig{Enabled: false}

	result, err := MergeConfig(dst, src)
	require.NoError(t, err)
	assert.False(t, result.Enabled)
	assert.Equal(t, 200, result.Burst)
}

// TestMergeConfig_PointerToZero 指向零值的指针同样视为显式设置
func TestMergeConfig_PointerToZero(t *testing.T) {
	limit, zero := 10, 0
	dst := &mergeToggleConfig{Limit: &limit}
	src := &mergeToggleConfig{Limit: &zero}

	result, err := MergeConfig(dst, src)
	require.NoError(t, err)
	require.NotNil(t, result.Limit)
	assert.Equal(t, 0, *result.Limit)
	assert.Equal(t, 10, limit, "override must not alias the default")

	result, err = MergeConfig(&mergeToggleConfig{Limit: &limit}, &mergeToggleConfig{})
	require.NoError(t, err)
	assert.Equal(t, 10, *result.Limit)
}

func TestMergeConfig_OpaqueStruct(t *testing.T) {
	since := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	dst := &mergeToggleConfig{Since: time.Unix(0, 0)}

	result, err := MergeConfig(dst, &mergeToggleConfig{Since: since})
	require.NoError(t, err)
	assert.True(t, since.Equal(result.Since))

	result, err = MergeConfig(&mergeToggleConfig{Since: since}, &mergeToggleConfig{})
	require.NoError(t, err)
	assert.True(t, since.Equal(result.Since))
}

func TestMergeConfig_NilPointerTargetCopied(t *testing.T) {
	src := &mergeToggleConfig{Features: &mergeAccessConfig{TrustProxy: true}}

	result, err := MergeConfig(&mergeToggleConfig{}, src)
	require.NoError(t, err)
	require.NotNil(t, result.Features)
	assert.True(t, result.Features.TrustProxy)
	assert.NotSame(t, src.Features, result.Features)
}
