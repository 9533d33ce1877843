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

package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/phuonguno98/proclog/internal/config"
	"github.com/phuonguno98/proclog/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExporter(t *testing.T, path string) *CSVExporter {
	t.Helper()

	cfg := &config.Config{OutputPath: path, Timezone: "UTC"}
	e, err := NewCSVExporter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return e
}

func testSnapshot(n int, pidBase int32) *metrics.Snapshot {
	snap := &metrics.Snapshot{
		ID:        uuid.New(),
		Timestamp: time.Date(2023, 10, 26, 12, 5, 9, 0, time.UTC),
	}
	for i := 0; i < n; i++ {
		snap.Records = append(snap.Records, metrics.ProcessRecord{
			PID:         pidBase + int32(i),
			Name:        fmt.Sprintf("worker-%d", i),
			CPUUsage:    12.5,
			MemoryUsage: 1048576,
			CreateTime:  time.Date(2023, 10, 26, 11, 0, 0, 120000000, time.UTC),
			Cores:       8,
			Status:      "sleeping",
			Nice:        -5,
			ReadBytes:   100,
			WriteBytes:  200,
			NumThreads:  4,
			Username:    "root",
		})
	}
	return snap
}

func readAll(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() {
		if err := f.Close(); err != nil {
			t.Logf("Failed to close file: %v", err)
		}
	}()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVExporter_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proc_log.log")
	e := newTestExporter(t, path)

	require.NoError(t, e.Append(testSnapshot(3, 100)))

	records := readAll(t, path)
	require.Len(t, records, 4, "1 header + 3 rows")
	assert.Equal(t, metrics.Columns, records[0])

	expectedRow := []string{
		"2023", "10", "26", "12", "5", "9",
		"100", "worker-0", "12.50", "1048576", "2023-10-26 11:00:00.120000",
		"8", "sleeping", "-5", "100", "200", "4", "root",
	}
	assert.Equal(t, expectedRow, records[1])

	for _, row := range records {
		assert.Len(t, row, len(metrics.Columns))
	}
}

func TestCSVExporter_ExistingFileNoDuplicateHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proc_log.log")

	// Pre-existing log: 1 header + 5 rows
	e := newTestExporter(t, path)
	require.NoError(t, e.Append(testSnapshot(5, 1)))
	require.Len(t, readAll(t, path), 6)

	// A fresh exporter has no memory of the previous run
	e2 := newTestExporter(t, path)
	require.NoError(t, e2.Append(testSnapshot(2, 500)))

	records := readAll(t, path)
	require.Len(t, records, 8, "1 header + 7 rows")
	assert.Equal(t, metrics.Columns, records[0])
	for _, row := range records[1:] {
		assert.NotEqual(t, metrics.ColLogYear, row[0], "header repeated")
	}
	assert.Equal(t, "500", records[6][6])
	assert.Equal(t, "501", records[7][6])
}

func TestCSVExporter_HeaderWrittenOnce(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("%d appends", n), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "proc_log.log")
			e := newTestExporter(t, path)

			for i := 0; i < n; i++ {
				require.NoError(t, e.Append(testSnapshot(3, int32(i*10+1))))
			}

			records := readAll(t, path)
			require.Len(t, records, 1+3*n)

			headers := 0
			for _, row := range records {
				if row[0] == metrics.ColLogYear {
					headers++
				}
			}
			assert.Equal(t, 1, headers)
		})
	}
}

func TestCSVExporter_EmptySnapshotOnNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proc_log.log")
	e := newTestExporter(t, path)

	require.NoError(t, e.Append(&metrics.Snapshot{Timestamp: time.Now()}))

	records := readAll(t, path)
	require.Len(t, records, 1)
	assert.Equal(t, metrics.Columns, records[0])
}

func TestCSVExporter_RoundTripEscaping(t *testing.T) {
	names := []string{
		"a,b",
		`quoted "name"`,
		"multi\nline",
		" leading space",
		"kworker/0:1-events",
		"",
	}

	path := filepath.Join(t.TempDir(), "proc_log.log")
	e := newTestExporter(t, path)

	snap := testSnapshot(len(names), 10)
	for i, n := range names {
		snap.Records[i].Name = n
		snap.Records[i].Username = "DOMAIN\\user, " + n
	}
	require.NoError(t, e.Append(snap))

	records := readAll(t, path)
	require.Len(t, records, 1+len(names))
	for i, n := range names {
		assert.Equal(t, n, records[i+1][7])
		assert.Equal(t, "DOMAIN\\user, "+n, records[i+1][17])
	}
}

func TestCSVExporter_Timezone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proc_log.log")
	cfg := &config.Config{OutputPath: path, Timezone: "Asia/Ho_Chi_Minh"}
	e, err := NewCSVExporter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	snap := testSnapshot(1, 1)
	snap.Timestamp = time.Date(2023, 12, 31, 20, 30, 0, 0, time.UTC)
	require.NoError(t, e.Append(snap))

	row := readAll(t, path)[1]
	assert.Equal(t, []string{"2024", "1", "1", "3", "30", "0"}, row[:6])
	assert.Equal(t, "2023-10-26 18:00:00.120000", row[10])
}

func TestCSVExporter_LargeSnapshotChunks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proc_log.log")
	e := newTestExporter(t, path)

	snap := testSnapshot(2000, 1)
	require.NoError(t, e.Append(snap))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Greater(t, len(data), chunkSize)
	assert.Equal(t, 2001, strings.Count(string(data), "\n"))
}

func TestCSVExporter_OpenFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "rotated")
	require.NoError(t, os.Mkdir(dir, 0o755))
	e := newTestExporter(t, filepath.Join(dir, "proc_log.log"))
	require.NoError(t, os.Remove(dir))

	err := e.Append(testSnapshot(1, 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIOFailure)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewCSVExporter_InvalidTimezone(t *testing.T) {
	cfg := &config.Config{OutputPath: "x.log", Timezone: "Invalid/Zone"}
	_, err := NewCSVExporter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestNewCSVExporter_MissingOutputDir(t *testing.T) {
	cfg := &config.Config{OutputPath: filepath.Join(t.TempDir(), "missing", "proc_log.log"), Timezone: "UTC"}
	_, err := NewCSVExporter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIOFailure)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
