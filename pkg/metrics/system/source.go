package system

import (
	"context"
	"errors"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Source 资源数据源
type Source interface {
	// CPUPercent 在 window 时长内测得的全部核心平均使用率
	CPUPercent(ctx context.Context, window time.Duration) (float64, error)
	// MemoryPercent 已用内存占总内存的百分比
	MemoryPercent(ctx context.Context) (float64, error)
	// DiskPercent 各分区已用空间之和占总空间之和的百分比
	DiskPercent(ctx context.Context, paths []string) (float64, error)
}

// HostSource 基于 gopsutil 的本机数据源
type HostSource struct{}

// NewHostSource 创建本机数据源
func NewHostSource() *HostSource {
	return &HostSource{}
}

func (HostSource) CPUPercent(ctx context.Context, window time.Duration) (float64, error) {
	percents, err := cpu.PercentWithContext(ctx, window, false)
	if err != nil {
		return 0, err
	}
	if len(percents) == 0 {
		return 0, nil
	}
	return percents[0], nil
}

func (HostSource) MemoryPercent(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	if vm.Total == 0 {
		return 0, nil
	}
	return float64(vm.Used) / float64(vm.Total) * 100, nil
}

func (HostSource) DiskPercent(ctx context.Context, paths []string) (float64, error) {
	if len(paths) == 0 {
		partitions, err := disk.PartitionsWithContext(ctx, false)
		if err != nil {
			return 0, err
		}
		seen := make(map[string]struct{}, len(partitions))
		for _, p := range partitions {
			if _, ok := seen[p.Device]; ok {
				continue
			}
			seen[p.Device] = struct{}{}
			paths = append(paths, p.Mountpoint)
		}
	}

	var used, total float64
	var errs []error
	for _, path := range paths {
		usage, err := disk.UsageWithContext(ctx, path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		// 与 df 的 Avail 一致：不可用的保留块计为已用
		total += float64(usage.Total)
		used += float64(usage.Total - usage.Free)
	}

	if total == 0 {
		return 0, errors.Join(errs...)
	}
	return used / total * 100, nil
}
