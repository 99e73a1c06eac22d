package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/nsqlite/sqlite3/ffi"
	"github.com/nsqlite/sqlite3/internal/version"
)

// Config represents the configuration for sqlite3ex.
type Config struct {
	Filename    string        `arg:"positional,required" help:"Database file to open, use :memory: for a private in-memory database"`
	ReadOnly    bool          `arg:"-r,--read-only,env:SQLITE3EX_READ_ONLY" help:"Open the database in read-only mode" default:"false"`
	Detailed    bool          `arg:"--detailed,env:SQLITE3EX_DETAILED" help:"Include the engine error message in every error" default:"false"`
	BusyTimeout time.Duration `arg:"--busy-timeout,env:SQLITE3EX_BUSY_TIMEOUT" help:"How long to retry when the database is locked. Valid time units are ns, us (or µs), ms, s, m, h" default:"5s"`
	Shell       bool          `arg:"--shell,env:SQLITE3EX_SHELL" help:"Start an interactive SQL shell instead of the people walkthrough" default:"false"`
	LogLevel    string        `arg:"--log-level,env:SQLITE3EX_LOG_LEVEL" help:"Minimum level of the structured log (debug, info, warn, error)" default:"info"`
}

func (Config) Version() string {
	return fmt.Sprintf("%s\n", version.Short())
}

// OpenFlags returns the engine open flags for the configuration.
func (c Config) OpenFlags() ffi.OpenFlags {
	if c.ReadOnly {
		return ffi.SQLITE_OPEN_READONLY
	}
	return ffi.OpenFlagsDefault
}

// MustParse parses and validates the configuration from the command
// line arguments. It returns a Config struct or exits the program
// with an error.
func MustParse(args []string) Config {
	cfg := Config{}

	parser, err := arg.NewParser(
		arg.Config{},
		&cfg,
	)
	if err != nil {
		log.Fatal(err)
	}
	parser.MustParse(args[1:])

	if err := validate(cfg); err != nil {
		parser.Fail(err.Error())
	}

	return cfg
}

func validate(cfg Config) error {
	if err := validateFilename(cfg.Filename, cfg.ReadOnly); err != nil {
		return err
	}
	if err := validateBusyTimeout(cfg.BusyTimeout); err != nil {
		return err
	}
	return validateLogLevel(cfg.LogLevel)
}

// validateFilename rejects names the engine cannot take and read-only
// in-memory databases, which could never hold data.
func validateFilename(filename string, readOnly bool) error {
	if strings.TrimSpace(filename) == "" {
		return errors.New("filename is required")
	}
	if strings.IndexByte(filename, 0) >= 0 {
		return errors.New("filename contains a nul byte")
	}
	if readOnly && filename == ":memory:" {
		return errors.New("an in-memory database cannot be opened read-only")
	}
	return nil
}

// validateBusyTimeout validates that d is not negative.
func validateBusyTimeout(d time.Duration) error {
	if d < 0 {
		return errors.New("invalid busy timeout, it must not be negative")
	}
	return nil
}

// validateLogLevel validates if level is a valid log level.
func validateLogLevel(level string) error {
	valid := []string{"debug", "info", "warn", "error"}

	for _, v := range valid {
		if level == v {
			return nil
		}
	}

	return fmt.Errorf("invalid log level, valid values are %s", strings.Join(valid, ", "))
}
