// Command id3depad shrinks the ID3v2 tags of the given files in place.
//
// Usage:
//
//	id3depad [flags] <file>... [-s]
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog"

	"github.com/simonhull/id3depad"
	"github.com/simonhull/id3depad/internal/config"
	"github.com/simonhull/id3depad/internal/logging"
	"github.com/simonhull/id3depad/internal/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type cliFlags struct {
	silent          bool
	configPath      string
	backupSuffix    string
	preserveModTime bool
	validate        bool
	dryRun          bool
	concurrency     int
	metricsTextfile string
	logLevel        string
	version         bool
}

func newFlagSet(stderr io.Writer, f *cliFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("id3depad", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.BoolVar(&f.silent, "s", false, "silent: no advisories or prompts, discard frames without asking")
	fs.StringVar(&f.configPath, "config", "", "path to a TOML config file")
	fs.StringVar(&f.backupSuffix, "backup", "", "keep the original file under `suffix`, e.g. .bak")
	fs.BoolVar(&f.preserveModTime, "preserve-mtime", false, "keep the original modification time")
	fs.BoolVar(&f.validate, "validate", false, "re-read every written file to verify the tag")
	fs.BoolVar(&f.dryRun, "dry-run", false, "print the planned edits without writing")
	fs.IntVar(&f.concurrency, "j", 0, "files processed at once (0 = number of CPUs)")
	fs.StringVar(&f.metricsTextfile, "metrics.textfile", "", "write Prometheus metrics to `path` when done")
	fs.StringVar(&f.logLevel, "log.level", "", "log level: trace, debug, info, warn, error, off")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: id3depad [flags] <file>... [-s]")
		fs.PrintDefaults()
	}
	return fs
}

// parseArgs accepts flags before, between and after the file paths.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var paths []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return paths, nil
		}
		// "--" ends flag parsing for good.
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(paths, rest...), nil
		}
		paths = append(paths, rest[0])
		args = rest[1:]
	}
}

// loadConfig reads the config file, if any, and lets flags that were set
// explicitly win over it.
func loadConfig(fs *flag.FlagSet, f *cliFlags) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return config.Config{}, err
		}
	}

	var err error
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "s":
			cfg.Silent = f.silent
		case "backup":
			cfg.BackupSuffix = f.backupSuffix
		case "preserve-mtime":
			cfg.PreserveModTime = f.preserveModTime
		case "validate":
			cfg.Validate = f.validate
		case "j":
			if f.concurrency < 0 {
				err = fmt.Errorf("-j must not be negative, got %d", f.concurrency)
			}
			cfg.Concurrency = f.concurrency
		case "metrics.textfile":
			cfg.MetricsTextfile = f.metricsTextfile
		case "log.level":
			if _, ok := logging.ParseLevel(f.logLevel); !ok {
				err = fmt.Errorf("unknown log level %q", f.logLevel)
			}
			cfg.LogLevel = f.logLevel
		}
	})
	return cfg, err
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var f cliFlags
	fs := newFlagSet(stderr, &f)

	paths, err := parseArgs(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return id3depad.ExitCodeFailure
	}
	if f.version {
		info := id3depad.GetVersionInfo()
		fmt.Fprintf(stdout, "id3depad %s (commit %s, built %s, %s)\n", info.Version, info.GitCommit, info.BuildTime, info.GoVersion)
		return 0
	}
	if len(paths) == 0 {
		fs.Usage()
		return id3depad.ExitCodeFailure
	}

	cfg, err := loadConfig(fs, &f)
	if err != nil {
		fmt.Fprintf(stderr, "id3depad: %v\n", err)
		return id3depad.ExitCodeFailure
	}

	logger := zerolog.Nop()
	if !cfg.Silent {
		level, _ := logging.ParseLevel(cfg.LogLevel)
		logger = logging.New(stderr, "id3depad", logging.Config{
			Level:   level,
			NoColor: cfg.LogNoColor,
		})
	}

	opts := []id3depad.Option{
		id3depad.WithConcurrency(cfg.Concurrency),
	}
	if cfg.Silent {
		opts = append(opts, id3depad.WithSilent())
	} else {
		opts = append(opts,
			id3depad.WithLogger(logger),
			id3depad.WithConfirmer(newPrompt(stdin, stdout)),
		)
	}
	if cfg.BackupSuffix != "" {
		opts = append(opts, id3depad.WithBackup(cfg.BackupSuffix))
	}
	if cfg.PreserveModTime {
		opts = append(opts, id3depad.WithPreserveModTime())
	}
	if cfg.Validate {
		opts = append(opts, id3depad.WithValidation())
	}
	if f.dryRun {
		opts = append(opts, id3depad.WithDryRun())
	}

	var m *metrics.Metrics
	if cfg.MetricsTextfile != "" {
		m = metrics.New()
		opts = append(opts, id3depad.WithRecorder(m))
	}

	results, err := id3depad.DepadMany(ctx, paths, opts...)

	for i, res := range results {
		if res == nil {
			continue
		}
		switch {
		case f.dryRun:
			printPlan(stdout, paths[i], res)
		case !cfg.Silent && res.Changed():
			fmt.Fprintf(stdout, "%s: %s, %d -> %d bytes\n", paths[i], res.Header, res.OldSize, res.NewSize)
		}
	}

	if m != nil {
		if werr := m.WriteTextfile(cfg.MetricsTextfile); werr != nil {
			logger.Error().Err(werr).Str("path", cfg.MetricsTextfile).Msg("failed to write metrics")
			if err == nil {
				err = werr
			}
		}
	}

	if err != nil {
		fmt.Fprintf(stderr, "id3depad: %v\n", err)
		return id3depad.ExitCode(err)
	}
	return 0
}

// printPlan lists the edits a dry run would apply.
func printPlan(w io.Writer, path string, res *id3depad.Result) {
	if !res.Changed() {
		fmt.Fprintf(w, "%s: %s, already minimal\n", path, res.Header)
		return
	}
	fmt.Fprintf(w, "%s: %s, %d -> %d bytes\n", path, res.Header, res.OldSize, res.NewSize)
	for _, e := range res.Edits {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

// prompt asks on the terminal before a frame is discarded.
// Anything but "y" keeps the frame.
type prompt struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompt(in io.Reader, out io.Writer) *prompt {
	return &prompt{in: bufio.NewReader(in), out: out}
}

func (p *prompt) ConfirmDiscard(frameID string) bool {
	fmt.Fprintf(p.out, "Frame %s asks to be discarded, [y/n]? ", frameID)
	line, _ := p.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
