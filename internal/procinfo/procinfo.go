// Package procinfo reports live OS statistics for a child process.
package procinfo

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Info is a point-in-time snapshot of a process.
type Info struct {
	Pid        int
	Name       string
	Status     []string
	Running    bool
	RSS        uint64
	NumThreads int32
	CreateTime time.Time
}

// Zombie reports whether the process has exited but not yet been reaped.
func (i *Info) Zombie() bool {
	for _, s := range i.Status {
		if s == process.Zombie {
			return true
		}
	}

	return false
}

// Inspect collects an Info snapshot for pid.
//
// Only failure to find the process is an error. Individual statistics the
// platform cannot report are left at their zero value.
func Inspect(ctx context.Context, pid int) (*Info, error) {
	proc, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return nil, fmt.Errorf("open process %d: %w", pid, err)
	}

	info := &Info{Pid: pid}

	if running, err := proc.IsRunningWithContext(ctx); err == nil {
		info.Running = running
	}

	if name, err := proc.NameWithContext(ctx); err == nil {
		info.Name = name
	}

	if status, err := proc.StatusWithContext(ctx); err == nil {
		info.Status = status
	}

	if mem, err := proc.MemoryInfoWithContext(ctx); err == nil && mem != nil {
		info.RSS = mem.RSS
	}

	if threads, err := proc.NumThreadsWithContext(ctx); err == nil {
		info.NumThreads = threads
	}

	if created, err := proc.CreateTimeWithContext(ctx); err == nil {
		info.CreateTime = time.UnixMilli(created)
	}

	return info, nil
}
