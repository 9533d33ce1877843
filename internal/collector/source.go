/*
 * MIT License
 *
 * Copyright (c) 2026 Nguyen Thanh Phuong
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package collector

import (
	"context"
	"time"

	"github.com/phuonguno98/proclog/pkg/metrics"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/process"
)

// Handle is the per-process view the collector reads from.
// Every method may fail independently.
type Handle interface {
	PID() int32
	Name(ctx context.Context) (string, error)
	Times(ctx context.Context) (metrics.ProcessCPUTimes, error)
	Memory(ctx context.Context) (uint64, error)
	CreateTime(ctx context.Context) (int64, error) // milliseconds since epoch
	CPUAffinity(ctx context.Context) ([]int32, error)
	Status(ctx context.Context) ([]string, error)
	Nice(ctx context.Context) (int32, error)
	IOCounters(ctx context.Context) (*process.IOCountersStat, error)
	NumThreads(ctx context.Context) (int32, error)
	Username(ctx context.Context) (string, error)
}

// Dependency injection points for testing
var (
	listProcesses = listSystemProcesses
	bootTime      = host.BootTimeWithContext
	timeNow       = time.Now
)

func listSystemProcesses(ctx context.Context) ([]Handle, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	handles := make([]Handle, 0, len(procs))
	for _, p := range procs {
		handles = append(handles, psProcess{p: p})
	}
	return handles, nil
}

// psProcess adapts a gopsutil process to Handle.
type psProcess struct {
	p *process.Process
}

func (h psProcess) PID() int32 {
	return h.p.Pid
}

func (h psProcess) Name(ctx context.Context) (string, error) {
	return h.p.NameWithContext(ctx)
}

func (h psProcess) Times(ctx context.Context) (metrics.ProcessCPUTimes, error) {
	t, err := h.p.TimesWithContext(ctx)
	if err != nil {
		return metrics.ProcessCPUTimes{}, err
	}
	if t == nil {
		return metrics.ProcessCPUTimes{}, ErrUnsupported
	}

	return metrics.ProcessCPUTimes{
		User:      t.User,
		System:    t.System,
		Timestamp: timeNow(),
	}, nil
}

// Memory returns the unique set size (private pages) in bytes.
// Where smaps are not implemented it falls back to the resident set size.
func (h psProcess) Memory(ctx context.Context) (uint64, error) {
	maps, err := h.p.MemoryMapsWithContext(ctx, true)
	if err == nil {
		var uss uint64
		if maps != nil {
			for _, m := range *maps {
				uss += m.PrivateClean + m.PrivateDirty
			}
		}
		// smaps values are in kB
		return uss * 1024, nil
	}
	if !isNotImplemented(err) {
		return 0, err
	}

	info, err := h.p.MemoryInfoWithContext(ctx)
	if err != nil {
		return 0, err
	}
	if info == nil {
		return 0, ErrUnsupported
	}
	return info.RSS, nil
}

func (h psProcess) CreateTime(ctx context.Context) (int64, error) {
	return h.p.CreateTimeWithContext(ctx)
}

func (h psProcess) CPUAffinity(ctx context.Context) ([]int32, error) {
	return cpuAffinity(ctx, h.p)
}

func (h psProcess) Status(ctx context.Context) ([]string, error) {
	return h.p.StatusWithContext(ctx)
}

func (h psProcess) Nice(ctx context.Context) (int32, error) {
	return niceValue(ctx, h.p)
}

func (h psProcess) IOCounters(ctx context.Context) (*process.IOCountersStat, error) {
	io, err := h.p.IOCountersWithContext(ctx)
	if err != nil {
		return nil, err
	}
	if io == nil {
		return nil, ErrUnsupported
	}
	return io, nil
}

func (h psProcess) NumThreads(ctx context.Context) (int32, error) {
	return h.p.NumThreadsWithContext(ctx)
}

func (h psProcess) Username(ctx context.Context) (string, error) {
	return h.p.UsernameWithContext(ctx)
}
