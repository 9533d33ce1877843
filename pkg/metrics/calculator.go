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

import "time"

// CalculateProcessCPUPercent calculates the CPU usage of a process between two readings.
// Formula: 100 * Δ(User + System) / Δt
// A process busy on several cores can exceed 100.
func CalculateProcessCPUPercent(prev, current ProcessCPUTimes) float64 {
	if prev.Timestamp.IsZero() {
		return 0.0
	}

	deltaTime := current.Timestamp.Sub(prev.Timestamp).Seconds()
	if deltaTime <= 0 {
		return 0.0
	}

	deltaBusy := (current.User + current.System) - (prev.User + prev.System)
	if deltaBusy < 0 {
		// pid was reused between the two readings
		return 0.0
	}

	return 100.0 * deltaBusy / deltaTime
}

// CalculateLifetimeCPUPercent calculates the average CPU usage of a process since it started.
// Formula: 100 * (User + System) / (now - created)
func CalculateLifetimeCPUPercent(times ProcessCPUTimes, created time.Time) float64 {
	if created.IsZero() || times.Timestamp.IsZero() {
		return 0.0
	}

	elapsed := times.Timestamp.Sub(created).Seconds()
	if elapsed <= 0 {
		return 0.0
	}

	busy := times.User + times.System
	if busy <= 0 {
		return 0.0
	}

	return 100.0 * busy / elapsed
}
