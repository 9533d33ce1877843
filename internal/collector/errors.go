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
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/process"
)

var (
	// ErrPermissionDenied means the caller may not read a field of another user's process.
	ErrPermissionDenied = errors.New("collector: permission denied")

	// ErrProcessVanished means the process exited between enumeration and extraction.
	ErrProcessVanished = errors.New("collector: process vanished")

	// ErrUnsupported means the platform does not expose the field.
	ErrUnsupported = errors.New("collector: not supported on this platform")

	// ErrEnumerationUnavailable means the process table itself could not be listed.
	// It is the only error Collect returns.
	ErrEnumerationUnavailable = errors.New("collector: process enumeration unavailable")
)

// classify wraps err with the per-field category it belongs to.
// Errors that fit no category are returned unchanged; they still degrade the field.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrProcessVanished),
		errors.Is(err, ErrUnsupported):
		return err
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	case errors.Is(err, process.ErrorProcessNotRunning),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, syscall.ESRCH):
		return fmt.Errorf("%w: %w", ErrProcessVanished, err)
	case isNotImplemented(err):
		return fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	return err
}

// gopsutil reports missing platform support with an error from an internal package.
func isNotImplemented(err error) bool {
	return strings.Contains(err.Error(), "not implemented")
}
