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

// Package collector takes a snapshot of every running process.
//
// Each field of a process is read independently. A field that cannot be read
// (permission denied, process exited, not supported on this platform) is
// replaced by its sentinel and noted in ProcessRecord.Degraded; it never drops
// the record or aborts the snapshot. Only a failure to list the process table
// is fatal.
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phuonguno98/proclog/internal/config"
	"github.com/phuonguno98/proclog/pkg/metrics"
	"github.com/shirou/gopsutil/v3/process"
)

// idlePID is the kernel idle/swapper process. It has no per-process accounting.
const idlePID = 0

// Collector enumerates processes and extracts the per-process log fields.
type Collector struct {
	cpuInterval time.Duration
	logger      *slog.Logger
}

// NewCollector creates a new process collector instance.
func NewCollector(cfg *config.Config, logger *slog.Logger) *Collector {
	return &Collector{
		cpuInterval: cfg.CPUInterval,
		logger:      logger,
	}
}

// Collect captures one snapshot of all visible processes.
// It returns an error wrapping ErrEnumerationUnavailable only when the
// process table cannot be listed, or the context error if ctx is cancelled
// during the CPU sampling window.
func (c *Collector) Collect(ctx context.Context) (*metrics.Snapshot, error) {
	snapshot := &metrics.Snapshot{
		ID:        uuid.New(),
		Timestamp: timeNow(),
	}

	procs, err := listProcesses(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnumerationUnavailable, err)
	}

	// Optional CPU sampling window: read times now, compare after the wait
	var baseline map[int32]metrics.ProcessCPUTimes
	if c.cpuInterval > 0 {
		baseline = c.readCPUTimes(ctx, procs)
		select {
		case <-time.After(c.cpuInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	boot := c.bootTime(ctx)

	snapshot.Records = make([]metrics.ProcessRecord, 0, len(procs))
	skipped, degraded := 0, 0
	for _, p := range procs {
		if p.PID() <= idlePID {
			skipped++
			continue
		}

		rec := c.extract(ctx, p, baseline, boot)
		if len(rec.Degraded) > 0 {
			degraded++
		}
		snapshot.Records = append(snapshot.Records, rec)
	}

	c.logger.Debug("Snapshot collected",
		"snapshot_id", snapshot.ID,
		"records", len(snapshot.Records),
		"skipped", skipped,
		"degraded", degraded,
	)

	return snapshot, nil
}

// extract reads every field of one process. It never fails.
func (c *Collector) extract(ctx context.Context, p Handle, baseline map[int32]metrics.ProcessCPUTimes, boot time.Time) metrics.ProcessRecord {
	rec := metrics.ProcessRecord{PID: p.PID()}
	a := &assembler{rec: &rec, logger: c.logger}

	rec.Name = settle(a, metrics.ColName, fetch(p.Name(ctx)), "")

	created := mapField(fetch(p.CreateTime(ctx)), func(ms int64) time.Time {
		return time.UnixMilli(ms)
	})
	rec.CreateTime = settle(a, metrics.ColCreateTime, created, boot)

	// Lifetime percent by default; windowed percent when a baseline exists for this pid
	times := fetch(p.Times(ctx))
	cpu := mapField(times, func(t metrics.ProcessCPUTimes) float64 {
		if prev, ok := baseline[rec.PID]; ok {
			return metrics.CalculateProcessCPUPercent(prev, t)
		}
		return metrics.CalculateLifetimeCPUPercent(t, rec.CreateTime)
	})
	rec.CPUUsage = settle(a, metrics.ColCPUUsage, cpu, 0)

	rec.MemoryUsage = settle(a, metrics.ColMemoryUsage, fetch(p.Memory(ctx)), 0)

	cores := mapField(fetch(p.CPUAffinity(ctx)), func(cpus []int32) int {
		return len(cpus)
	})
	rec.Cores = settle(a, metrics.ColCores, cores, 0)

	status := mapField(fetch(p.Status(ctx)), normalizeStatus)
	rec.Status = settle(a, metrics.ColStatus, status, metrics.StatusUnknown)

	rec.Nice = settle(a, metrics.ColNice, fetch(p.Nice(ctx)), 0)

	// Read and write bytes come from one call; a failure degrades both
	io := fetch(p.IOCounters(ctx))
	rec.ReadBytes = settle(a, metrics.ColReadBytes, mapField(io, func(s *process.IOCountersStat) uint64 {
		return s.ReadBytes
	}), 0)
	rec.WriteBytes = settle(a, metrics.ColWriteBytes, mapField(io, func(s *process.IOCountersStat) uint64 {
		return s.WriteBytes
	}), 0)

	rec.NumThreads = settle(a, metrics.ColNumThreads, fetch(p.NumThreads(ctx)), 0)
	rec.Username = settle(a, metrics.ColUsername, fetch(p.Username(ctx)), metrics.UsernameNA)

	return rec
}

// readCPUTimes takes the first reading of the CPU sampling window.
// Processes whose times cannot be read get no baseline.
func (c *Collector) readCPUTimes(ctx context.Context, procs []Handle) map[int32]metrics.ProcessCPUTimes {
	baseline := make(map[int32]metrics.ProcessCPUTimes, len(procs))
	for _, p := range procs {
		if p.PID() <= idlePID {
			continue
		}
		if t, err := p.Times(ctx); err == nil {
			baseline[p.PID()] = t
		}
	}
	return baseline
}

// bootTime returns the system boot time used as create_time fallback.
func (c *Collector) bootTime(ctx context.Context) time.Time {
	secs, err := bootTime(ctx)
	if err != nil {
		c.logger.Warn("Failed to read boot time, create_time fallback is the epoch", "error", err)
		return time.Unix(0, 0)
	}
	return time.Unix(int64(secs), 0)
}
