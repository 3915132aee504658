// Command graymix runs a graymix job file: circle-mask photos, render
// synthetic patterns and alpha-blend grayscale images.
//
// Without --config it runs the built-in job set against the files in
// --dir (default: the current directory).
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	"github.com/gogpu/graymix"
	"github.com/gogpu/graymix/internal/job"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		configPath  string
		dir         string
		workers     int
		logLevel    string
		only        []string
		printConfig bool
		sums        bool
	)

	flagSet := pflag.NewFlagSet("graymix", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&configPath, "config", "", "YAML job file (default: built-in jobs)")
	flagSet.StringVar(&dir, "dir", "", "base directory for relative paths (overrides the job file)")
	flagSet.IntVar(&workers, "workers", -1, "concurrent jobs per section, 0 for GOMAXPROCS (overrides the job file)")
	flagSet.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	flagSet.StringSliceVar(&only, "only", nil, "run only these sections: mask, generate, blend")
	flagSet.BoolVar(&printConfig, "print-config", false, "print the effective job file and exit")
	flagSet.BoolVar(&sums, "sums", false, "print the BLAKE3 digest of every written file")
	flagSet.Usage = func() { printHelp(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	level, err := parseLevel(logLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	graymix.SetLogger(logger)
	defer graymix.SetLogger(nil)

	cfg := job.Default()
	if configPath != "" {
		if cfg, err = job.Load(configPath); err != nil {
			return err
		}
	}
	if dir != "" {
		cfg.Dir = dir
	}
	if flagSet.Changed("workers") {
		cfg.Workers = workers
	}
	if err := cfg.Select(only...); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if printConfig {
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = stdout.Write(data)
		return err
	}

	report, err := job.Run(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("done", "written", len(report.Written), "skipped", len(report.Skipped))

	if sums {
		paths := slices.Sorted(maps.Keys(report.Digests))
		for _, p := range paths {
			if _, err := fmt.Fprintf(stdout, "%s  %s\n", report.Digests[p], p); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid --log-level %q: %w", s, err)
	}
	return level, nil
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `graymix: grayscale PNG masking and alpha blending.

Runs the jobs of a YAML job file in three sections, in order: mask,
generate and blend. Without --config the built-in jobs run against
image1..3.png and image1..3_for_blending.png in --dir.

Usage:
  graymix [flags]

Flags:
%s`, strings.TrimRight(flagSet.FlagUsages(), "\n")+"\n")
}
