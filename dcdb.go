package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmdFlags, err := initCmdFlags(args, os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}

	if err := loadDotEnv(cmdFlags.envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger, err := newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApplication(cfg, logger)

	if cmdFlags.reference {
		data, err := app.fetchReference(ctx)
		if err != nil {
			logger.Error("fetching reference data failed", "error", err)
			return 1
		}
		printReference(os.Stdout, data)
		return 0
	}

	store, summary, err := app.importSnapshot(ctx, cmdFlags.output, cmdFlags.overwrite)
	if err != nil {
		logger.Error("import failed", "path", cmdFlags.output, "error", err)
		return 1
	}
	defer store.Close()
	printSummary(os.Stdout, summary)

	if cmdFlags.mirrorPostgres {
		pg, err := app.connectMirror(ctx)
		if err != nil {
			logger.Error("connecting to postgres failed", "error", err)
			return 1
		}
		defer pg.Close()
		if err := app.mirror(ctx, store, pg); err != nil {
			logger.Error("mirroring snapshot failed", "error", err)
			return 1
		}
		logger.Info("snapshot mirrored to postgres")
	}
	return 0
}
