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

package metrics

import (
	"time"

	"github.com/google/uuid"
)

// SchemaVersion identifies the column layout below. Bump it when Columns changes.
const SchemaVersion = 1

// Column names of the process log, in their fixed order.
const (
	ColLogYear     = "log_year"
	ColLogMon      = "log_mon"
	ColLogDay      = "log_day"
	ColLogHour     = "log_hour"
	ColLogMin      = "log_min"
	ColLogSec      = "log_sec"
	ColPID         = "pid"
	ColName        = "name"
	ColCPUUsage    = "cpu_usage"
	ColMemoryUsage = "memory_usage"
	ColCreateTime  = "create_time"
	ColCores       = "cores"
	ColStatus      = "status"
	ColNice        = "nice"
	ColReadBytes   = "read_bytes"
	ColWriteBytes  = "write_bytes"
	ColNumThreads  = "n_threads"
	ColUsername    = "username"
)

// Columns is the header of the process log: the six calendar fields of the
// snapshot timestamp, then pid and the eleven per-process metrics.
var Columns = []string{
	ColLogYear, ColLogMon, ColLogDay, ColLogHour, ColLogMin, ColLogSec,
	ColPID, ColName, ColCPUUsage, ColMemoryUsage, ColCreateTime, ColCores,
	ColStatus, ColNice, ColReadBytes, ColWriteBytes, ColNumThreads, ColUsername,
}

// Sentinel values substituted when a field cannot be read.
const (
	UsernameNA    = "N/A"
	StatusUnknown = "unknown"
)

// Snapshot is every process visible at one instant, sharing one timestamp.
type Snapshot struct {
	ID        uuid.UUID
	Timestamp time.Time
	Records   []ProcessRecord
}

// ProcessRecord holds one process's metrics at Snapshot.Timestamp.
// All fields are always set; unavailable values hold their sentinel and the
// column name is listed in Degraded.
type ProcessRecord struct {
	PID         int32
	Name        string
	CPUUsage    float64 // percent
	MemoryUsage uint64  // bytes (USS, RSS where USS is not implemented)
	CreateTime  time.Time
	Cores       int
	Status      string
	Nice        int32
	ReadBytes   uint64
	WriteBytes  uint64
	NumThreads  int32
	Username    string

	Degraded []string
}

// IsDegraded reports whether column fell back to its sentinel.
func (r *ProcessRecord) IsDegraded(column string) bool {
	for _, c := range r.Degraded {
		if c == column {
			return true
		}
	}
	return false
}

// LogTime is a timestamp decomposed into the calendar columns of the log.
type LogTime struct {
	Year, Month, Day     int
	Hour, Minute, Second int
}

// SplitTime decomposes t in its own location.
func SplitTime(t time.Time) LogTime {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return LogTime{
		Year: y, Month: int(mo), Day: d,
		Hour: h, Minute: mi, Second: s,
	}
}

// ProcessCPUTimes is a point-in-time reading of one process's CPU time.
type ProcessCPUTimes struct {
	User      float64 // seconds
	System    float64 // seconds
	Timestamp time.Time
}
