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
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/phuonguno98/proclog/internal/collector"
	"github.com/phuonguno98/proclog/internal/exporter"
	"github.com/phuonguno98/proclog/pkg/version"
	"github.com/spf13/cobra"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Append one process snapshot to the log (same as running without a subcommand)",
	Long: `Take one snapshot of all running processes and append it to the process log.
The header row is written only when the log is empty or does not exist yet.

Examples:
  # Run from cron every minute
  * * * * * /usr/local/bin/proclog collect -o /var/log/proc_log.log`,
	Args: cobra.NoArgs,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)
}

// runCollect performs one collect-and-append cycle.
func runCollect(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(outputPath)
	if err != nil {
		return err
	}

	logger, closeLog, err := InitLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeLog(); cerr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", cerr)
		}
	}()

	logger.Debug("Starting ProcLog",
		"version", version.Info(),
		"os", runtime.GOOS,
		"arch", runtime.GOARCH,
	)
	logger.Debug("Configuration loaded", "config", cfg.String())

	checkPlatformCapabilities(logger)

	csvExporter, err := exporter.NewCSVExporter(cfg, logger)
	if err != nil {
		return err
	}

	// Signals only matter during the CPU sampling window
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	snapshot, err := collector.NewCollector(cfg, logger).Collect(ctx)
	if err != nil {
		logger.Error("Failed to collect processes", "error", err)
		return fmt.Errorf("collect: %w", err)
	}

	if err := csvExporter.Append(snapshot); err != nil {
		logger.Error("Failed to append snapshot", "error", err, "output", cfg.OutputPath)
		return fmt.Errorf("append: %w", err)
	}

	logger.Info("Snapshot appended",
		"snapshot_id", snapshot.ID,
		"processes", len(snapshot.Records),
		"output", cfg.OutputPath,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	return nil
}

// commandContext returns the command context, falling back to Background.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// checkPlatformCapabilities logs which fields are likely to fall back to sentinels.
func checkPlatformCapabilities(logger *slog.Logger) {
	switch runtime.GOOS {
	case osWindows:
		logger.Debug("Running on Windows: cores and nice may be unavailable, memory_usage is RSS")
	case osDarwin:
		logger.Debug("Running on macOS: memory_usage is RSS, read_bytes/write_bytes are unavailable")
	case osLinux:
		logger.Debug("Running on Linux: cores from sched_getaffinity, nice from getpriority")
		if os.Geteuid() != 0 {
			logger.Debug("Running as non-root: memory_usage and I/O of other users' processes will be 0")
		}
	default:
		logger.Warn("Running on unsupported platform, some fields may always be sentinels", "os", runtime.GOOS)
	}
}
