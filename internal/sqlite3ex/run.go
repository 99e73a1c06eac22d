package sqlite3ex

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nsqlite/sqlite3"
	"github.com/nsqlite/sqlite3/internal/log"
	"github.com/nsqlite/sqlite3/internal/sqlite3ex/config"
	"github.com/nsqlite/sqlite3/internal/version"
)

// Run runs the sqlite3ex CLI.
func Run(ctx context.Context) error {
	conf := config.MustParse(os.Args)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var level slog.Level
	if err := level.UnmarshalText([]byte(conf.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger := log.NewLoggerLevel(os.Stderr, level)

	reg, err := sqlite3.ConfigureLog(logger.Engine)
	if err != nil {
		return fmt.Errorf("failed to install engine log: %w", err)
	}
	defer func() {
		if err := reg.Close(); err != nil {
			logger.Error("error removing engine log:", log.KV{"error": err})
		}
	}()

	conn, err := sqlite3.OpenFile(
		conf.Filename,
		conf.OpenFlags(),
		sqlite3.WithDetailedErrors(conf.Detailed),
		sqlite3.WithBusyTimeout(conf.BusyTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", conf.Filename, err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Error("error closing database:", log.KV{"error": err})
		}
	}()
	logger.Debug("database opened", log.KV{
		"filename": conf.Filename,
		"flags":    conf.OpenFlags().String(),
	})

	if !conf.Shell {
		return Walkthrough(conn, logger, os.Stdout, conf.ReadOnly)
	}

	fmt.Println(version.Banner())

	sh := NewShell(ctx, stop, conn, logger, os.Stdout)
	defer sh.Shutdown()
	go func() {
		if err := sh.Start(conf.Filename); err != nil {
			fmt.Println(err)
			stop()
		}
	}()

	<-ctx.Done()
	fmt.Printf("\nGoodbye!\n\n")
	return nil
}
