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

// Package report renders a process snapshot for the terminal.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/phuonguno98/proclog/pkg/metrics"
	"gopkg.in/yaml.v3"
)

// Sort keys accepted by SortRecords.
const (
	SortPID    = "pid"
	SortCPU    = "cpu"
	SortMemory = "mem"
)

// SortRecords orders records in place: pid ascending, cpu and mem descending.
func SortRecords(records []metrics.ProcessRecord, key string) error {
	var less func(i, j int) bool
	switch key {
	case SortPID, "":
		less = func(i, j int) bool { return records[i].PID < records[j].PID }
	case SortCPU:
		less = func(i, j int) bool { return records[i].CPUUsage > records[j].CPUUsage }
	case SortMemory:
		less = func(i, j int) bool { return records[i].MemoryUsage > records[j].MemoryUsage }
	default:
		return fmt.Errorf("invalid sort key: %s (must be pid, cpu, or mem)", key)
	}

	sort.SliceStable(records, less)
	return nil
}

// FormatTable formats a snapshot as a table.
func FormatTable(snap *metrics.Snapshot, loc *time.Location) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("\nProcess Snapshot %s at %s (%d processes):\n",
		snap.ID, snap.Timestamp.In(loc).Format("2006-01-02 15:04:05"), len(snap.Records)))
	sb.WriteString(strings.Repeat("=", 100))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%-8s %-20s %-12s %-10s %7s %10s %5s %5s %5s %10s %10s\n",
		"PID", "NAME", "USER", "STATUS", "CPU%", "MEM", "THR", "NICE", "CORES", "READ", "WRITE"))
	sb.WriteString(strings.Repeat("-", 100))
	sb.WriteString("\n")

	for _, r := range snap.Records {
		name := r.Name
		if name == "" {
			name = "N/A"
		}

		sb.WriteString(fmt.Sprintf("%-8d %-20s %-12s %-10s %7.2f %10s %5d %5d %5d %10s %10s\n",
			r.PID,
			truncate(name, 20),
			truncate(r.Username, 12),
			truncate(r.Status, 10),
			r.CPUUsage,
			formatBytes(r.MemoryUsage),
			r.NumThreads,
			r.Nice,
			r.Cores,
			formatBytes(r.ReadBytes),
			formatBytes(r.WriteBytes),
		))
	}

	sb.WriteString(strings.Repeat("=", 100))
	sb.WriteString("\n")

	return sb.String()
}

type yamlRecord struct {
	PID         int32    `yaml:"pid"`
	Name        string   `yaml:"name"`
	CPUUsage    float64  `yaml:"cpu_usage"`
	MemoryUsage uint64   `yaml:"memory_usage"`
	CreateTime  string   `yaml:"create_time"`
	Cores       int      `yaml:"cores"`
	Status      string   `yaml:"status"`
	Nice        int32    `yaml:"nice"`
	ReadBytes   uint64   `yaml:"read_bytes"`
	WriteBytes  uint64   `yaml:"write_bytes"`
	NumThreads  int32    `yaml:"n_threads"`
	Username    string   `yaml:"username"`
	Degraded    []string `yaml:"degraded,omitempty"`
}

type yamlSnapshot struct {
	ID            string       `yaml:"id"`
	Timestamp     string       `yaml:"timestamp"`
	SchemaVersion int          `yaml:"schema_version"`
	Processes     []yamlRecord `yaml:"processes"`
}

// WriteYAML writes a snapshot as a YAML document, including the columns that
// fell back to sentinels for each process.
func WriteYAML(w io.Writer, snap *metrics.Snapshot, loc *time.Location) error {
	doc := yamlSnapshot{
		ID:            snap.ID.String(),
		Timestamp:     snap.Timestamp.In(loc).Format(time.RFC3339),
		SchemaVersion: metrics.SchemaVersion,
		Processes:     make([]yamlRecord, 0, len(snap.Records)),
	}

	for _, r := range snap.Records {
		doc.Processes = append(doc.Processes, yamlRecord{
			PID:         r.PID,
			Name:        r.Name,
			CPUUsage:    r.CPUUsage,
			MemoryUsage: r.MemoryUsage,
			CreateTime:  r.CreateTime.In(loc).Format(time.RFC3339),
			Cores:       r.Cores,
			Status:      r.Status,
			Nice:        r.Nice,
			ReadBytes:   r.ReadBytes,
			WriteBytes:  r.WriteBytes,
			NumThreads:  r.NumThreads,
			Username:    r.Username,
			Degraded:    r.Degraded,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return enc.Close()
}

// formatBytes converts bytes to human-readable format.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// truncate truncates a string to maxLen runes.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
