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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config represents application configuration.
type Config struct {
	OutputPath  string        // Path to the process log
	CPUInterval time.Duration // CPU sampling window (0 = percent since process start)

	// Logging
	LogLevel string // Log level: debug, info, warn, error
	LogFile  string // Log file path (empty = stdout)

	// Timezone
	Timezone string // Timezone location (e.g., "Asia/Ho_Chi_Minh", "Local")
}

// Default configuration values.
const (
	DefaultOutputPath                = "proc_log.log"
	DefaultCPUInterval time.Duration = 0
	DefaultLogLevel                  = "info"
	DefaultTimezone                  = "Local"
	MaxCPUInterval                   = 10 * time.Second
)

// Default returns a configuration with every field at its default.
func Default() *Config {
	return &Config{
		OutputPath:  DefaultOutputPath,
		CPUInterval: DefaultCPUInterval,
		LogLevel:    DefaultLogLevel,
		Timezone:    DefaultTimezone,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.OutputPath == "" {
		return errors.New("output path cannot be empty")
	}

	if c.CPUInterval < 0 {
		return errors.New("cpu interval must not be negative")
	}

	if c.CPUInterval > MaxCPUInterval {
		return fmt.Errorf("cpu interval must not exceed %v", MaxCPUInterval)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	// Validate Timezone
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("invalid timezone: %s (%w)", c.Timezone, err)
		}
	}

	return nil
}

// Location returns the configured timezone, Local when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// CheckOutputDir checks that the parent directory of the output path exists.
// The log file itself is created on first write. It is not part of Validate:
// a missing directory is an I/O failure of the log writer, not bad input.
func (c *Config) CheckOutputDir() error {
	dir := filepath.Dir(c.OutputPath)

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("output directory does not exist: %w", err)
		}
		return err
	}

	if !info.IsDir() {
		return fmt.Errorf("output path parent is not a directory: %s", dir)
	}

	return nil
}

// String returns a human-readable representation of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Output=%s, CPUInterval=%v, Timezone=%s}",
		c.OutputPath, c.CPUInterval, c.Timezone)
}
