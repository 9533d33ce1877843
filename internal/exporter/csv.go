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
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/phuonguno98/proclog/internal/config"
	"github.com/phuonguno98/proclog/pkg/metrics"
)

// ErrIOFailure is returned when the process log cannot be opened or written.
// Rows flushed before the failure stay in the file.
var ErrIOFailure = errors.New("exporter: i/o failure")

const (
	// createTimeLayout renders create_time with microseconds, like Python's datetime.
	createTimeLayout = "2006-01-02 15:04:05.000000"

	// chunkSize is the write threshold; writes always end on a row boundary.
	chunkSize = 8192
)

// CSVExporter appends snapshots to a CSV process log.
// It keeps no state between calls: the header decision is taken from the
// file size each time the file is opened.
type CSVExporter struct {
	path     string
	location *time.Location // Timezone location for timestamps
	logger   *slog.Logger
}

// NewCSVExporter creates a new CSV exporter instance.
func NewCSVExporter(cfg *config.Config, logger *slog.Logger) (*CSVExporter, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w", cfg.Timezone, err)
	}

	// Fail before collecting rather than after the CPU window
	if err := cfg.CheckOutputDir(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	return &CSVExporter{
		path:     cfg.OutputPath,
		location: loc,
		logger:   logger,
	}, nil
}

// Path returns the process log path.
func (e *CSVExporter) Path() string {
	return e.path
}

// Append writes one row per record, preceded by the header when the file is empty.
func (e *CSVExporter) Append(snapshot *metrics.Snapshot) (err error) {
	file, err := os.OpenFile(e.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("%w: failed to open output file: %w", ErrIOFailure, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: failed to close file: %w", ErrIOFailure, cerr)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("%w: failed to stat file: %w", ErrIOFailure, err)
	}

	w := newRowWriter(file)

	if stat.Size() == 0 {
		if err := w.write(metrics.Columns); err != nil {
			return fmt.Errorf("%w: failed to write header: %w", ErrIOFailure, err)
		}
	}

	logTime := metrics.SplitTime(snapshot.Timestamp.In(e.location))
	for i := range snapshot.Records {
		if err := w.write(e.buildRow(logTime, &snapshot.Records[i])); err != nil {
			return fmt.Errorf("%w: failed to write row for pid %d: %w", ErrIOFailure, snapshot.Records[i].PID, err)
		}
	}

	if err := w.flush(); err != nil {
		return fmt.Errorf("%w: failed to flush: %w", ErrIOFailure, err)
	}

	e.logger.Debug("Appended snapshot",
		"snapshot_id", snapshot.ID,
		"rows", len(snapshot.Records),
		"header", stat.Size() == 0,
		"output", e.path,
	)
	return nil
}

// buildRow builds a CSV row in metrics.Columns order.
func (e *CSVExporter) buildRow(lt metrics.LogTime, r *metrics.ProcessRecord) []string {
	return []string{
		strconv.Itoa(lt.Year),
		strconv.Itoa(lt.Month),
		strconv.Itoa(lt.Day),
		strconv.Itoa(lt.Hour),
		strconv.Itoa(lt.Minute),
		strconv.Itoa(lt.Second),
		strconv.FormatInt(int64(r.PID), 10),
		r.Name,
		fmt.Sprintf("%.2f", r.CPUUsage),
		strconv.FormatUint(r.MemoryUsage, 10),
		r.CreateTime.In(e.location).Format(createTimeLayout),
		strconv.Itoa(r.Cores),
		r.Status,
		strconv.FormatInt(int64(r.Nice), 10),
		strconv.FormatUint(r.ReadBytes, 10),
		strconv.FormatUint(r.WriteBytes, 10),
		strconv.FormatInt(int64(r.NumThreads), 10),
		r.Username,
	}
}

// rowWriter encodes rows into memory and hands them to the file in chunks
// that end on a row boundary, so every write call carries whole rows.
type rowWriter struct {
	file *os.File
	buf  bytes.Buffer
	csv  *csv.Writer
}

func newRowWriter(file *os.File) *rowWriter {
	w := &rowWriter{file: file}
	w.csv = csv.NewWriter(&w.buf)
	return w
}

func (w *rowWriter) write(row []string) error {
	if err := w.csv.Write(row); err != nil {
		return err
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return err
	}

	if w.buf.Len() >= chunkSize {
		return w.flush()
	}
	return nil
}

func (w *rowWriter) flush() error {
	if w.buf.Len() == 0 {
		return nil
	}
	_, err := w.file.Write(w.buf.Bytes())
	w.buf.Reset()
	return err
}
