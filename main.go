package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/parley/internal/commands"
	"github.com/hay-kot/parley/internal/core/config"
	"github.com/hay-kot/parley/internal/core/record"
	"github.com/hay-kot/parley/internal/parley"
	"github.com/hay-kot/parley/internal/printer"
	"github.com/hay-kot/parley/internal/store/jsonfile"
	"github.com/hay-kot/parley/internal/store/sqlite"
	"github.com/hay-kot/parley/pkg/utils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func main() {
	if err := setupLogger("info", "", nil); err != nil {
		panic(err)
	}

	var (
		p     = printer.New(os.Stderr)
		ctx   = printer.NewContext(context.Background(), p)
		flags = &commands.Flags{}
	)

	var (
		deferredLogs *utils.DeferredWriter
		closeStore   func() error
	)

	app := &cli.Command{
		Name:      "parley",
		Usage:     "Chat on message boards from your terminal",
		UsageText: "parley [global options] command [command options]",
		Description: `Parley keeps message boards in a local record store and lets you chat on them.

Messages are sent the moment you press enter and stay cancellable for a short
window afterwards; undo within the window and the message is retracted.

Run 'parley' with no arguments to open the chat screen.
Run 'parley board new' to create a board.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("PARLEY_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (optional)",
				Sources:     cli.EnvVars("PARLEY_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("PARLEY_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("PARLEY_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// No subcommand, or chat, means the chat screen
			args := c.Args().Slice()
			isTUI := len(args) == 0 || args[0] == "chat"

			// In TUI mode, buffer logs to display after exit
			var deferred io.Writer
			if isTUI {
				deferredLogs = &utils.DeferredWriter{}
				deferred = deferredLogs
			}

			if err := setupLogger(flags.LogLevel, flags.LogFile, deferred); err != nil {
				return ctx, err
			}

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			store, closer, err := openStore(cfg)
			if err != nil {
				return ctx, err
			}
			flags.Store = store
			closeStore = closer

			logger := log.With().Str("component", "parley").Logger()
			flags.Service = parley.New(store, cfg.User, logger)
			return ctx, nil
		},
	}

	chatCmd := commands.NewChatCmd(flags)

	app = chatCmd.Register(app)
	app = commands.NewBoardCmd(flags).Register(app)
	app = commands.NewMsgCmd(flags).Register(app)
	app = commands.NewConfigCmd(flags).Register(app)
	app = commands.NewDoctorCmd(flags).Register(app)

	// Register chat flags on root command
	app.Flags = append(app.Flags, chatCmd.Flags()...)

	// Open the chat screen when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'parley --help' for usage", c.Args().First())
		}
		return chatCmd.Run(ctx, c)
	}

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Println()
		printer.Ctx(ctx).FatalError(err)
		exitCode = 1
	}

	if closeStore != nil {
		if err := closeStore(); err != nil {
			log.Error().Err(err).Msg("failed to close store")
		}
	}

	// Flush deferred logs to console after TUI exits
	if deferredLogs != nil {
		if err := deferredLogs.Flush(zerolog.ConsoleWriter{Out: os.Stderr}); err != nil {
			fmt.Fprintf(os.Stderr, "failed to flush logs: %v\n", err)
		}
	}

	os.Exit(exitCode)
}

// openStore opens the record store selected by the config. The returned
// closer releases any handles the store holds.
func openStore(cfg *config.Config) (record.Database, func() error, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.RecordsPath())
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, store.Close, nil
	default:
		return jsonfile.New(cfg.RecordsPath()), func() error { return nil }, nil
	}
}

func setupLogger(level string, logFile string, deferred io.Writer) error {
	parsedLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	var output io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}

	if logFile != "" {
		// Create log directory if it doesn't exist
		logDir := filepath.Dir(logFile)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		// Open log file
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}

		if deferred != nil {
			// TUI mode with explicit log file - write to both file and deferred buffer
			output = io.MultiWriter(file, deferred)
		} else {
			// Write to both console and file
			output = io.MultiWriter(
				zerolog.ConsoleWriter{Out: os.Stderr},
				file,
			)
		}
	} else if deferred != nil {
		// TUI mode without log file - buffer for display after exit
		output = deferred
	}

	log.Logger = log.Output(output).Level(parsedLevel)

	return nil
}
