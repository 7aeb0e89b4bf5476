package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/minghan-wu/litdomain/internal/async"
	"github.com/minghan-wu/litdomain/internal/ingest"
)

var processCmd = &cobra.Command{
	Use:   "process [dir]",
	Short: "Classify every PDF under a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcess,
}

var watchCmd = &cobra.Command{
	Use:   "watch [dir...]",
	Short: "Watch directories and classify PDFs as they appear",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWatch,
}

var flagInitialScan bool

func init() {
	watchCmd.Flags().BoolVar(&flagInitialScan, "initial-scan", true, "classify existing files before watching")
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(watchCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	logger := slog.Default()
	ctx := cmd.Context()

	a, err := newApp(ctx, logger)
	if err != nil {
		return err
	}
	defer a.Close(logger)

	paths, stats, err := ingest.ScanDirectory(args[0], true)
	if err != nil {
		return fmt.Errorf("scan directory: %w", err)
	}
	logger.Info("scan complete", "scanned", stats.Scanned, "matched", stats.Matched)
	if len(paths) == 0 {
		fmt.Println("No PDF files found.")
		return nil
	}

	q := async.NewQueue(a.proc, logger,
		async.WithWorkers(a.cfg.Workers.Workers),
		async.WithQueueSize(a.cfg.Workers.QueueSize),
		async.WithJobTimeout(a.cfg.Workers.JobTimeout),
	)
	for _, p := range paths {
		_ = q.Enqueue(ctx, async.Job{Path: p, SubmittedAt: time.Now()})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	q.Shutdown(shutdownCtx)

	fmt.Printf("Processed %d files.\n", len(paths))
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, logger)
	if err != nil {
		return err
	}
	defer a.Close(logger)

	evCh, errCh, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       args,
		InitialScan: flagInitialScan,
		Debounce:    2 * time.Second,
	}, logger)
	if err != nil {
		return err
	}

	q := async.NewQueue(a.proc, logger,
		async.WithWorkers(a.cfg.Workers.Workers),
		async.WithQueueSize(a.cfg.Workers.QueueSize),
		async.WithJobTimeout(a.cfg.Workers.JobTimeout),
	)

	logger.Info("watching", "roots", args)
	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			q.Shutdown(shutdownCtx)
			return nil
		case p, ok := <-evCh:
			if !ok {
				return nil
			}
			_ = q.Enqueue(ctx, async.Job{Path: p, SubmittedAt: time.Now()})
		case err, ok := <-errCh:
			if ok && err != nil {
				logger.Error("watch error", "error", err)
			}
		}
	}
}
