package utils

import (
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemInfo is a snapshot of the host the tracker runs on.
type SystemInfo struct {
	Platform        string
	PlatformVersion string
	KernelVersion   string
	GoVersion       string
	CPUCount        int
	CPUPercent      float64
	MemUsedPercent  float64
	MemUsedMB       uint64
	MemTotalMB      uint64
	DatabaseSizeMB  int64
	Goroutines      int
}

// CollectSystemInfo gathers host metrics. dbPath may be empty (e.g. postgres), in which
// case the database size is left at zero. Host lookups that fail leave their fields empty.
func CollectSystemInfo(dbPath string) SystemInfo {
	info := SystemInfo{
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
	}

	if cpuCount, err := cpu.Counts(true); err == nil {
		info.CPUCount = cpuCount
	}
	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		info.CPUPercent = cpuPercent[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemUsedPercent = vm.UsedPercent
		info.MemUsedMB = vm.Used / 1024 / 1024
		info.MemTotalMB = vm.Total / 1024 / 1024
	}
	if hostInfo, err := host.Info(); err == nil {
		info.Platform = hostInfo.Platform
		info.PlatformVersion = hostInfo.PlatformVersion
		info.KernelVersion = hostInfo.KernelVersion
	}
	if dbPath != "" {
		if stat, err := os.Stat(dbPath); err == nil {
			info.DatabaseSizeMB = stat.Size() / 1024 / 1024
		}
	}
	return info
}

// Lines renders the snapshot as label/value rows for terminal output.
func (s SystemInfo) Lines() [][2]string {
	return [][2]string{
		{"OS", fmt.Sprintf("%s %s", s.Platform, s.PlatformVersion)},
		{"Kernel", s.KernelVersion},
		{"Go", s.GoVersion},
		{"CPUs", fmt.Sprintf("%d", s.CPUCount)},
		{"CPU usage", fmt.Sprintf("%.1f%%", s.CPUPercent)},
		{"Memory", fmt.Sprintf("%.1f%% (%d MB / %d MB)", s.MemUsedPercent, s.MemUsedMB, s.MemTotalMB)},
		{"Database size", fmt.Sprintf("%d MB", s.DatabaseSizeMB)},
		{"Goroutines", fmt.Sprintf("%d", s.Goroutines)},
	}
}
