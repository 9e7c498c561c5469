package registry

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/pijn/portmanager/pkg/config"
	"github.com/pijn/portmanager/pkg/logger"
	"github.com/spf13/afero"
)

// 确保 FileStore 实现了 Store 接口
var _ Store = (*FileStore)(nil)

// FileStore 以单个 JSON 文档为后端的注册表
//
// 所有访问由一把进程级读写锁保护：读操作共享，UpdateIP 在整个
// “复制当前文档 -> 修改 -> 序列化 -> 写临时文件 -> 重命名 -> 提交内存”
// 过程中持有写锁。落盘成功之前内存状态不会改变。
type FileStore struct {
	fs     afero.Fs
	cfg    *Config
	logger logger.Logger

	mu      sync.RWMutex
	records map[string]record
	closed  bool
}

// Option FileStore 选项
type Option func(*FileStore)

// WithFs 指定文件系统（测试中使用内存文件系统）
func WithFs(fs afero.Fs) Option {
	return func(s *FileStore) {
		s.fs = fs
	}
}

// WithLogger 设置日志
func WithLogger(l logger.Logger) Option {
	return func(s *FileStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open 加载注册表文档
// 文档不存在、不可读或格式错误都会返回 ErrPersistence，启动阶段应视为致命错误
func Open(cfg *Config, opts ...Option) (*FileStore, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}

	s := &FileStore{
		fs:     afero.NewOsFs(),
		cfg:    newCfg,
		logger: logger.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("registry")

	data, err := afero.ReadFile(s.fs, newCfg.Path)
	if err != nil {
		return nil, persistenceError(err, "read registry %s", newCfg.Path)
	}

	records, err := decodeDocument(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load registry %s", newCfg.Path)
	}
	s.records = records

	s.logger.Info("registry loaded", "path", newCfg.Path, "services", len(records))
	return s, nil
}

// Resolve 查询服务端点
func (s *FileStore) Resolve(ctx context.Context, name string) (Endpoint, error) {
	if err := ctx.Err(); err != nil {
		return Endpoint{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Endpoint{}, ErrClosed
	}
	rec, ok := s.records[name]
	if !ok {
		return Endpoint{}, notFound(name)
	}
	return toEndpoint(name, rec), nil
}

// List 返回所有服务端点
func (s *FileStore) List(ctx context.Context) ([]Endpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	out := make([]Endpoint, 0, len(s.records))
	for name, rec := range s.records {
		out = append(out, toEndpoint(name, rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// UpdateIP 覆盖服务 IP 并同步落盘
// 一旦取得写锁，操作会执行到底；已提交的修改不会因调用方取消而回滚
func (s *FileStore) UpdateIP(ctx context.Context, name, ip string) (Endpoint, error) {
	if err := ctx.Err(); err != nil {
		return Endpoint{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Endpoint{}, ErrClosed
	}
	cur, ok := s.records[name]
	if !ok {
		return Endpoint{}, notFound(name)
	}

	next := make(map[string]record, len(s.records))
	for k, v := range s.records {
		next[k] = v
	}
	newIP := ip
	next[name] = record{IP: &newIP, Port: cur.Port}

	if err := s.persist(next); err != nil {
		s.logger.Error("persist registry failed", "service", name, "path", s.cfg.Path, "error", err)
		return Endpoint{}, err
	}
	s.records = next

	s.logger.Debug("service ip updated", "service", name, "ip", ip)
	return toEndpoint(name, next[name]), nil
}

// Len 已注册服务数量
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close 关闭存储
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// persist 写临时文件、fsync 后重命名覆盖原文档，调用方须持有写锁
func (s *FileStore) persist(records map[string]record) error {
	data, err := encodeDocument(records)
	if err != nil {
		return persistenceError(err, "encode registry")
	}

	dir, base := filepath.Split(s.cfg.Path)
	if dir == "" {
		dir = "."
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+base+".tmp-")
	if err != nil {
		return persistenceError(err, "create temp file in %s", dir)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = s.fs.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return persistenceError(err, "write %s", tmpName)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return persistenceError(err, "sync %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return persistenceError(err, "close %s", tmpName)
	}
	if err := s.fs.Chmod(tmpName, s.fileMode()); err != nil {
		cleanup()
		return persistenceError(err, "chmod %s", tmpName)
	}
	if err := s.fs.Rename(tmpName, s.cfg.Path); err != nil {
		cleanup()
		return persistenceError(err, "replace %s", s.cfg.Path)
	}
	return nil
}

// fileMode 重写文档时使用的权限：显式配置优先，否则沿用当前文件的权限
func (s *FileStore) fileMode() os.FileMode {
	if s.cfg.FileMode != 0 {
		return os.FileMode(s.cfg.FileMode)
	}
	if info, err := s.fs.Stat(s.cfg.Path); err == nil {
		return info.Mode().Perm()
	}
	return defaultFileMode
}

func toEndpoint(name string, rec record) Endpoint {
	ep := Endpoint{Name: name, Port: rec.Port}
	if rec.IP != nil {
		ip := *rec.IP
		ep.IP = &ip
	}
	return ep
}
