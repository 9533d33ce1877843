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

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"
)

// gopsutil v3 reports CPU affinity as not implemented on Linux and returns the
// raw getpriority(2) value as nice, so both are read from the kernel here.

// priorityBase is the offset of the raw getpriority(2) result: the syscall
// returns 20 - nice to stay positive.
const priorityBase = 20

func cpuAffinity(_ context.Context, p *process.Process) ([]int32, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(int(p.Pid), &set); err != nil {
		return nil, err
	}
	return cpuSetCores(&set), nil
}

// cpuSetCores lists the CPU numbers present in set in ascending order.
func cpuSetCores(set *unix.CPUSet) []int32 {
	n := set.Count()
	cores := make([]int32, 0, n)
	for cpu := 0; len(cores) < n; cpu++ {
		if set.IsSet(cpu) {
			cores = append(cores, int32(cpu))
		}
	}
	return cores
}

func niceValue(_ context.Context, p *process.Process) (int32, error) {
	prio, err := unix.Getpriority(unix.PRIO_PROCESS, int(p.Pid))
	if err != nil {
		return 0, err
	}
	return niceFromPriority(prio), nil
}

func niceFromPriority(prio int) int32 {
	return int32(priorityBase - prio)
}
