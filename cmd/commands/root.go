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

package commands

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/phuonguno98/proclog/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global persistent flags (shared by subcommands)
	outputPath  string
	logLevel    string
	logFile     string
	timezone    string
	cpuInterval time.Duration
)

const (
	osWindows = "windows"
	osLinux   = "linux"
	osDarwin  = "darwin"
)

// rootCmd represents the base command when called without any subcommands.
// Without a subcommand it takes one snapshot and appends it to the process log.
var rootCmd = &cobra.Command{
	Use:   "proclog",
	Short: "ProcLog - Append a snapshot of every running process to a CSV log",
	Long: `ProcLog records CPU, memory, I/O, ownership and scheduling metrics of every
running process as one CSV row per process. Each invocation takes exactly one
snapshot, appends it to the log and exits, so a timer (cron, systemd) builds
the time series.

Fields that cannot be read (permission denied, process exited) are written
as documented sentinels: 0, "N/A", "unknown", or the boot time.

Examples:
  # Append one snapshot to ./proc_log.log
  proclog

  # Custom log location and a 1s CPU sampling window
  proclog --output /var/log/proc_log.log --cpu-interval 1s`,
	Args:          cobra.NoArgs,
	RunE:          runCollect,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel,
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"Log file path (empty = stdout)")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", config.DefaultTimezone,
		"Timezone for timestamps (e.g., 'Asia/Ho_Chi_Minh', 'Local')")
	rootCmd.PersistentFlags().DurationVar(&cpuInterval, "cpu-interval", config.DefaultCPUInterval,
		"CPU sampling window (0 = average since process start, max 10s)")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", config.DefaultOutputPath,
		"Process log path")
}

// buildConfig creates a Config object from parsed flags.
func buildConfig(output string) (*config.Config, error) {
	cfg := &config.Config{
		OutputPath:  output,
		CPUInterval: cpuInterval,
		LogLevel:    logLevel,
		LogFile:     logFile,
		Timezone:    timezone,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// InitLogger initializes and returns a slog.Logger based on the provided settings.
// It is shared by all commands to ensure consistent logging format.
// The returned close function releases the log file, if any, and is never nil.
func InitLogger(levelStr, fileStr string) (*slog.Logger, func() error, error) {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	closeLog := func() error { return nil }

	var handler slog.Handler
	if fileStr != "" {
		f, err := os.OpenFile(fileStr, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		handler = slog.NewJSONHandler(f, opts)
		closeLog = f.Close
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler), closeLog, nil
}
