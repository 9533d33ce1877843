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
	"os"

	"github.com/phuonguno98/proclog/internal/collector"
	"github.com/phuonguno98/proclog/internal/report"
	"github.com/spf13/cobra"
)

var (
	// List command specific flags
	listFormat string
	listSort   string
	listLimit  int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print one process snapshot without writing the log",
	Long: `Take one snapshot of all running processes and print it to stdout.
Useful to check which fields fall back to sentinels for the current user
before scheduling proclog.

Examples:
  # Ten busiest processes
  proclog list --sort cpu --limit 10

  # Full snapshot, including the columns that fell back to sentinels
  proclog list --format yaml`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "Output format (table, yaml)")
	listCmd.Flags().StringVar(&listSort, "sort", report.SortPID, "Sort by pid, cpu, or mem")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Show at most N processes (0 = all)")
}

func runList(cmd *cobra.Command, _ []string) error {
	if listFormat != "table" && listFormat != "yaml" {
		return fmt.Errorf("invalid format: %s (must be table or yaml)", listFormat)
	}
	if listLimit < 0 {
		return fmt.Errorf("limit must not be negative")
	}

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

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	snapshot, err := collector.NewCollector(cfg, logger).Collect(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}

	if err := report.SortRecords(snapshot.Records, listSort); err != nil {
		return err
	}
	if listLimit > 0 && len(snapshot.Records) > listLimit {
		snapshot.Records = snapshot.Records[:listLimit]
	}

	out := cmd.OutOrStdout()
	if listFormat == "yaml" {
		return report.WriteYAML(out, snapshot, loc)
	}

	_, err = fmt.Fprint(out, report.FormatTable(snapshot, loc))
	return err
}
