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
	"log/slog"
	"strings"

	"github.com/phuonguno98/proclog/pkg/metrics"
	"github.com/shirou/gopsutil/v3/process"
)

// Field is the outcome of reading one value from the OS.
type Field[T any] struct {
	Value T
	Err   error
}

func fetch[T any](v T, err error) Field[T] {
	if err != nil {
		var zero T
		return Field[T]{Value: zero, Err: classify(err)}
	}
	return Field[T]{Value: v}
}

// mapField converts a successful value; a failed field keeps its error.
// Used to split one batched OS call into several columns.
func mapField[A, B any](f Field[A], fn func(A) B) Field[B] {
	if f.Err != nil {
		return Field[B]{Err: f.Err}
	}
	return Field[B]{Value: fn(f.Value)}
}

// assembler collapses fields into a record, substituting sentinels for failures.
type assembler struct {
	rec    *metrics.ProcessRecord
	logger *slog.Logger
}

func settle[T any](a *assembler, column string, f Field[T], sentinel T) T {
	if f.Err == nil {
		return f.Value
	}

	a.rec.Degraded = append(a.rec.Degraded, column)
	a.logger.Debug("Field unavailable, using sentinel",
		"pid", a.rec.PID,
		"column", column,
		"error", f.Err,
	)
	return sentinel
}

// normalizeStatus maps OS state names to the words used in the log.
func normalizeStatus(states []string) string {
	if len(states) == 0 {
		return metrics.StatusUnknown
	}

	s := strings.ToLower(strings.TrimSpace(states[0]))
	switch s {
	case "":
		return metrics.StatusUnknown
	case process.Running, "r":
		return "running"
	case process.Sleep, "s":
		return "sleeping"
	case process.Blocked, "d", "disk-sleep":
		return "disk-sleep"
	case process.Stop, "t":
		return "stopped"
	case process.Zombie, "z":
		return "zombie"
	case process.Idle, "i":
		return "idle"
	case process.Wait, "w":
		return "waiting"
	case process.Lock, "l":
		return "locked"
	}
	return s
}
