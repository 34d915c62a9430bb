package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/Assile/FTP-backup/internal/config"
	"github.com/Assile/FTP-backup/internal/downloader"
	"github.com/Assile/FTP-backup/internal/mirror"
	"github.com/Assile/FTP-backup/internal/progress"
	"github.com/Assile/FTP-backup/internal/remote"
	"github.com/Assile/FTP-backup/internal/storage"
	"github.com/Assile/FTP-backup/internal/walker"
)

// runBackup mirrors the configured FTP server into the target named on the
// command line. Progress lines are written to stdout, everything else to
// stderr.
func runBackup(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("ftp-backup", flag.ContinueOnError)
	fs.Usage = printUsage

	var timestamp bool
	fs.BoolVar(&timestamp, "t", false, "Store the files in a timestamped subdirectory")
	fs.BoolVar(&timestamp, "timestamp", false, "Store the files in a timestamped subdirectory")
	configPath := fs.String("config", "", "YAML configuration file")
	envFile := fs.String("env-file", ".env", "File of KEY=VALUE pairs to load")
	listing := fs.String("listing", "", "Directory listing strategy: detailed or paired")
	timeout := fs.Duration("timeout", 0, "Connection timeout")
	verbose := fs.Bool("v", false, "Verbose logging")

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitInvalidArgs
	}
	if len(positional) > 1 {
		fmt.Fprintf(os.Stderr, "Error: expected a single target, got %d arguments\n", len(positional))
		printUsage()
		return ExitInvalidArgs
	}
	var target string
	if len(positional) == 1 {
		target = positional[0]
	}

	envFileSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "env-file" {
			envFileSet = true
		}
	})

	cfg, err := loadConfig(*configPath, *envFile, envFileSet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}
	cfg = cfg.Merge(config.Config{
		Target:    target,
		Timestamp: timestamp,
		Listing:   *listing,
		Timeout:   *timeout,
		Verbose:   *verbose,
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ce *config.ConfigError
		if errors.As(err, &ce) && len(ce.Missing) == 1 && ce.Missing[0] == "target" && len(ce.Invalid) == 0 {
			printUsage()
			return ExitInvalidArgs
		}
		return ExitConfigError
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cfg.Verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\n[ftp-backup] Received interrupt, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	addr := cfg.Addr()
	fmt.Fprintf(os.Stderr, "[ftp-backup] Mirroring %s into %s\n", addr, cfg.Target)

	res, err := mirror.Run(ctx, mirror.Options{
		Target:    cfg.Target,
		Timestamp: cfg.Timestamp,
		Listing:   cfg.Listing,
		Dial: func(ctx context.Context) (remote.Conn, error) {
			return remote.Dial(ctx, addr, cfg.User, cfg.Password, remote.Options{
				Timeout: cfg.Timeout,
				Logger:  logger,
			})
		},
		Reporter: progress.NewReporter(progress.Options{Output: stdout}),
		Logger:   logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		code := exitCode(ctx, err)
		if code == ExitInterrupted {
			fmt.Fprintln(os.Stderr, "[ftp-backup] Backup interrupted, committed files were kept")
		}
		return code
	}

	fmt.Fprintf(os.Stderr, "[ftp-backup] Backup complete: %d files (%s) in %s\n",
		res.Files, formatBytes(res.Bytes), res.Destination)
	return ExitSuccess
}

// parseInterspersed parses args with fs, accepting flags both before and
// after positional arguments ("ftp-backup /backups -t"). Everything after a
// "--" terminator is positional.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		if len(args) > len(rest) && args[len(args)-len(rest)-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// loadConfig applies defaults, the YAML file, the env file and the process
// environment, in that order.
func loadConfig(configPath, envFile string, envFileRequired bool) (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.LoadFromFile(configPath)
		if err != nil {
			return config.Config{}, err
		}
	}

	if envFile != "" {
		if err := config.LoadEnvFile(envFile, envFileRequired); err != nil {
			return config.Config{}, err
		}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// exitCode maps a failed run to the exit code of its cause.
func exitCode(ctx context.Context, err error) int {
	var (
		connErr     *remote.ConnectionError
		listErr     *walker.ListError
		transferErr *downloader.TransferError
	)

	switch {
	case ctx.Err() != nil, errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.As(err, &connErr):
		return ExitConnectionError
	case errors.As(err, &listErr), errors.Is(err, remote.ErrListingMismatch):
		return ExitListingError
	case errors.As(err, &transferErr), errors.Is(err, storage.ErrUnsafeName):
		return ExitTransferError
	case errors.Is(err, remote.ErrUnknownListing):
		return ExitConfigError
	default:
		return ExitGeneralError
	}
}

func formatBytes(b int64) string {
	n, unit, err := progress.Humanize(b)
	if err != nil {
		return fmt.Sprintf("%d B", b)
	}
	return fmt.Sprintf("%d %s", n, unit)
}

