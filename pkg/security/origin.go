package security

import (
	"fmt"
	"net/http"
	"net/netip"
	"strings"

	"github.com/pijn/portmanager/pkg/config"
)

// Origin 调用方来源分类
type Origin int

const (
	// Untrusted 外部来源，默认值
	Untrusted Origin = iota
	// Trusted 本机回环或私有网段
	Trusted
)

func (o Origin) String() string {
	if o == Trusted {
		return "trusted"
	}
	return "untrusted"
}

// OriginConfig 来源过滤配置
type OriginConfig struct {
	// 是否信任反向代理头，仅当直连对端本身可信时才读取
	TrustProxy bool `mapstructure:"trust_proxy" json:"trust_proxy"`

	// 代理头列表（按优先级顺序尝试）
	ProxyHeaders []string `mapstructure:"proxy_headers" json:"proxy_headers"`

	// 额外可信网段（CIDR），如 IPv6 ULA "fc00::/7"
	ExtraCIDRs []string `mapstructure:"extra_cidrs" json:"extra_cidrs" validate:"dive,cidr"`
}

// DefaultOriginConfig 返回默认配置：不信任代理头
func DefaultOriginConfig() *OriginConfig {
	return &OriginConfig{
		TrustProxy:   false,
		ProxyHeaders: []string{"X-Forwarded-For", "X-Real-IP"},
	}
}

// OriginFilter 按网络来源判定调用方是否可信
//
// 可信：回环地址（127.0.0.0/8, ::1）、IPv4 私有网段（10/8, 172.16/12, 192.168/16）
// 以及配置的额外网段。地址缺失或无法解析一律视为不可信。
type OriginFilter struct {
	config *OriginConfig
	extra  []netip.Prefix
}

// NewOriginFilter 创建来源过滤器
func NewOriginFilter(cfg *OriginConfig) (*OriginFilter, error) {
	newCfg, err := config.MergeConfig(DefaultOriginConfig(), cfg)
	if err != nil {
		return nil, err
	}

	f := &OriginFilter{config: newCfg}
	for _, cidr := range newCfg.ExtraCIDRs {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		prefix, err := netip.ParsePrefix(cidr)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrCIDRInvalid, cidr)
		}
		f.extra = append(f.extra, prefix.Masked())
	}
	return f, nil
}

// Classify 判定来源
// remoteAddr 为传输层对端地址（如 "192.168.1.100:12345"），header 为请求头
func (f *OriginFilter) Classify(remoteAddr string, header http.Header) Origin {
	addr, ok := f.ExtractIP(remoteAddr, header)
	if !ok || !f.IsTrusted(addr) {
		return Untrusted
	}
	return Trusted
}

// Check 能力检查，不可信时返回 ErrAccessDenied
func (f *OriginFilter) Check(remoteAddr string, header http.Header) error {
	if f.Classify(remoteAddr, header) == Trusted {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrAccessDenied, describeAddr(remoteAddr))
}

// ExtractIP 提取调用方地址
// 默认只使用对端地址；开启 TrustProxy 且对端可信时，优先读取代理头
func (f *OriginFilter) ExtractIP(remoteAddr string, header http.Header) (netip.Addr, bool) {
	peer, ok := parseHostAddr(remoteAddr)
	if !ok {
		return netip.Addr{}, false
	}

	if !f.config.TrustProxy || !f.IsTrusted(peer) {
		return peer, true
	}

	for _, name := range f.config.ProxyHeaders {
		val := strings.TrimSpace(header.Get(name))
		if val == "" {
			continue
		}
		// 代理头存在但无法解析时不回退到对端地址
		return parseHostAddr(lastForwarded(val))
	}
	return peer, true
}

// IsTrusted 地址是否属于可信网段
func (f *OriginFilter) IsTrusted(addr netip.Addr) bool {
	if !addr.IsValid() {
		return false
	}
	addr = addr.WithZone("").Unmap()

	if addr.IsLoopback() {
		return true
	}
	if addr.Is4() && addr.IsPrivate() {
		return true
	}
	for _, prefix := range f.extra {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// parseHostAddr 解析 "ip"、"ip:port" 或 "[ipv6]:port"
func parseHostAddr(s string) (netip.Addr, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return netip.Addr{}, false
	}
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr(), true
	}
	if addr, err := netip.ParseAddr(strings.Trim(s, "[]")); err == nil {
		return addr, true
	}
	return netip.Addr{}, false
}

// lastForwarded 取逗号分隔列表中的最后一项（由最近一跳代理追加）
func lastForwarded(list string) string {
	parts := strings.Split(list, ",")
	return strings.TrimSpace(parts[len(parts)-1])
}

func describeAddr(remoteAddr string) string {
	if remoteAddr == "" {
		return "unknown peer"
	}
	return "peer " + remoteAddr
}
