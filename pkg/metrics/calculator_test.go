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
	"math"
	"testing"
	"time"
)

func TestCalculateProcessCPUPercent(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		prev     ProcessCPUTimes
		current  ProcessCPUTimes
		expected float64
	}{
		{
			name:     "Half a core",
			prev:     ProcessCPUTimes{User: 10, System: 5, Timestamp: base},
			current:  ProcessCPUTimes{User: 10.4, System: 5.1, Timestamp: base.Add(1 * time.Second)},
			expected: 50.0,
		},
		{
			name:     "Two busy cores",
			prev:     ProcessCPUTimes{User: 1, Timestamp: base},
			current:  ProcessCPUTimes{User: 5, Timestamp: base.Add(2 * time.Second)},
			expected: 200.0,
		},
		{
			name:     "Zero timestamp (no previous reading)",
			prev:     ProcessCPUTimes{},
			current:  ProcessCPUTimes{User: 3, Timestamp: base},
			expected: 0.0,
		},
		{
			name:     "No elapsed time",
			prev:     ProcessCPUTimes{User: 1, Timestamp: base},
			current:  ProcessCPUTimes{User: 2, Timestamp: base},
			expected: 0.0,
		},
		{
			name:     "Counters went backwards (pid reuse)",
			prev:     ProcessCPUTimes{User: 100, Timestamp: base},
			current:  ProcessCPUTimes{User: 1, Timestamp: base.Add(1 * time.Second)},
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateProcessCPUPercent(tt.prev, tt.current)
			if math.Abs(got-tt.expected) > 0.00001 {
				t.Errorf("CalculateProcessCPUPercent() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCalculateLifetimeCPUPercent(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		times    ProcessCPUTimes
		created  time.Time
		expected float64
	}{
		{
			name:     "Quarter of wall time",
			times:    ProcessCPUTimes{User: 20, System: 5, Timestamp: created.Add(100 * time.Second)},
			created:  created,
			expected: 25.0,
		},
		{
			name:     "Unknown creation time",
			times:    ProcessCPUTimes{User: 20, Timestamp: created},
			created:  time.Time{},
			expected: 0.0,
		},
		{
			name:     "Created in the future (clock skew)",
			times:    ProcessCPUTimes{User: 20, Timestamp: created},
			created:  created.Add(time.Minute),
			expected: 0.0,
		},
		{
			name:     "Idle process",
			times:    ProcessCPUTimes{Timestamp: created.Add(time.Hour)},
			created:  created,
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateLifetimeCPUPercent(tt.times, tt.created)
			if math.Abs(got-tt.expected) > 0.00001 {
				t.Errorf("CalculateLifetimeCPUPercent() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSplitTime(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*60*60)
	ts := time.Date(2023, 10, 26, 23, 59, 58, 999, time.UTC)

	got := SplitTime(ts.In(loc))
	want := LogTime{Year: 2023, Month: 10, Day: 27, Hour: 6, Minute: 59, Second: 58}
	if got != want {
		t.Errorf("SplitTime() = %+v, want %+v", got, want)
	}
}

func TestColumns(t *testing.T) {
	if len(Columns) != 18 {
		t.Fatalf("len(Columns) = %d, want 18", len(Columns))
	}
	if Columns[0] != ColLogYear || Columns[6] != ColPID || Columns[17] != ColUsername {
		t.Errorf("unexpected column order: %v", Columns)
	}

	seen := make(map[string]bool)
	for _, c := range Columns {
		if seen[c] {
			t.Errorf("duplicate column %q", c)
		}
		seen[c] = true
	}
}

func TestProcessRecord_IsDegraded(t *testing.T) {
	r := ProcessRecord{Degraded: []string{ColNice, ColUsername}}
	if !r.IsDegraded(ColNice) {
		t.Error("IsDegraded(nice) = false, want true")
	}
	if r.IsDegraded(ColCores) {
		t.Error("IsDegraded(cores) = true, want false")
	}
}
