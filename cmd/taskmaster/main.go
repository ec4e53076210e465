// Command taskmaster is the process supervisor's entry point: it loads one
// or more configuration files, launches every auto_start Program, starts the
// background Monitor, and drops into an interactive command loop reading
// typed commands from stdin until `exit`/EOF or SIGINT.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aihya/taskmaster/internal/configloader"
	"github.com/aihya/taskmaster/internal/control"
	"github.com/aihya/taskmaster/internal/history"
	"github.com/aihya/taskmaster/internal/logger"
	"github.com/aihya/taskmaster/internal/monitor"
	"github.com/aihya/taskmaster/internal/registry"
)

func newDiagLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := logger.NewColorTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

func run(configPaths []string, logFile, historyPath string, debug bool) int {
	diag := newDiagLogger(debug)

	sink, err := logger.NewSink(logFile)
	if err != nil {
		diag.Error("opening log sink", "path", logFile, "err", err)
		return 0
	}
	defer sink.Close()

	var eventLog logger.Logfer = sink
	if historyPath != "" {
		store, err := history.Open(historyPath)
		if err != nil {
			diag.Error("opening history store", "path", historyPath, "err", err)
			return 0
		}
		defer store.Close()
		eventLog = logger.NewTee(sink, store)
	}

	loader := configloader.New(configPaths)
	reg := registry.New(loader, eventLog)

	empty, err := reg.Load()
	if err != nil {
		diag.Error("loading configuration", "err", err)
		return 0
	}
	if empty {
		fmt.Println("usage: taskmaster <config1> [<config2>...]")
		return 0
	}
	reg.Launch()

	var lock sync.Mutex
	mon := monitor.New(&lock, reg, eventLog)
	mon.Start()
	defer mon.Stop()

	surface := control.New(&lock, reg, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGHUP)
	defer signal.Stop(sigCh)
	go watchSignals(ctx, sigCh, surface, diag, cancel)

	runREPL(ctx, os.Stdin, os.Stdout, surface, diag)
	surface.Exit()
	return 0
}

// watchSignals reacts to SIGINT by cancelling ctx, which unblocks runREPL so
// run can fall through its deferred cleanup (sink/history Close, Monitor
// Stop) instead of tearing the process down mid-flight. SIGHUP triggers a
// configuration reload in place.
func watchSignals(ctx context.Context, ch <-chan os.Signal, surface *control.Surface, diag *slog.Logger, cancel context.CancelFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-ch:
			switch sig {
			case syscall.SIGINT:
				diag.Info("stopping taskmaster")
				cancel()
			case syscall.SIGHUP:
				if err := surface.Reload(); err != nil {
					diag.Warn("reload failed", "err", err)
				}
			}
		}
	}
}

func main() {
	var logFile, historyPath string
	var debug bool

	root := &cobra.Command{
		Use:   "taskmaster <config1> [<config2>...]",
		Short: "A process supervisor: launches, monitors, and restarts child programs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			os.Exit(run(args, logFile, historyPath, debug))
			return nil
		},
	}
	root.Flags().StringVar(&logFile, "log-file", "taskmaster.log", "path to the append-only event log")
	root.Flags().StringVar(&historyPath, "history", "", "optional path to a SQLite audit trail (disabled if empty)")
	root.Flags().BoolVar(&debug, "debug", false, "verbose internal diagnostics")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
