// Package sysmon samples host CPU and memory load so long scrape runs
// can surface resource pressure alongside progress.
package sysmon

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats is one snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
}

// Sample collects a single snapshot. CPU uses interval=0 (delta since
// the previous call). Returns zero values on error so callers never
// have to special-case an unreadable /proc.
func Sample() Stats {
	var s Stats
	cpuPcts, err := cpu.Percent(0, false)
	if err == nil && len(cpuPcts) > 0 {
		s.CPUPercent = cpuPcts[0]
	}
	vmem, err := mem.VirtualMemory()
	if err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
	}
	return s
}

// Watch samples on a fixed interval and delivers each snapshot to fn
// until ctx is canceled. It blocks; run it in its own goroutine.
func Watch(ctx context.Context, interval time.Duration, fn func(Stats)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(Sample())
		}
	}
}
