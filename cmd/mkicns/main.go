package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/Mavwarf/mkicns/internal/bridge"
	"github.com/Mavwarf/mkicns/internal/config"
	"github.com/Mavwarf/mkicns/internal/host"
	"github.com/Mavwarf/mkicns/internal/iconset"
	"github.com/Mavwarf/mkicns/internal/pipeline"
	"github.com/Mavwarf/mkicns/internal/prompt"
	"github.com/Mavwarf/mkicns/internal/watch"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// options holds the command-line overrides. Zero values mean "use config".
type options struct {
	configPath string
	assume     string // "", "yes", "no"
	dialog     bool
	threshold  int
	filter     string
	encoder    string
	cleanup    string
	timeout    int // -1 = config
	log        bool
	chime      bool
	dryRun     bool
}

func main() {
	opts, rest, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cmd := ""
	if len(rest) > 0 {
		cmd = rest[0]
	}
	switch cmd {
	case "help", "-h", "--help":
		printUsage()
	case "version", "-V", "--version":
		printVersion()
	case "init":
		initCmd(rest[1:], opts.configPath)
	case "history":
		historyCmd(rest[1:])
	case "watch":
		watchCmd(rest[1:], opts)
	default:
		os.Exit(convertCmd(rest, opts))
	}
}

// parseArgs splits flags from positional arguments. Flags may appear
// anywhere on the line.
func parseArgs(args []string) (options, []string, error) {
	opts := options{timeout: -1}
	var rest []string

	value := func(i int, flag, what string) (string, error) {
		if i+1 >= len(args) {
			return "", fmt.Errorf("%s requires %s", flag, what)
		}
		return args[i+1], nil
	}

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch a {
		case "--config", "-c":
			v, err := value(i, a, "a file path")
			if err != nil {
				return opts, nil, err
			}
			opts.configPath = v
			i++
		case "--yes", "-y":
			opts.assume = "yes"
		case "--no":
			opts.assume = "no"
		case "--dialog":
			opts.dialog = true
		case "--threshold", "-t":
			v, err := value(i, a, "a pixel size")
			if err != nil {
				return opts, nil, err
			}
			n, err := strconv.Atoi(v)
			if err != nil || n < config.MinThreshold {
				return opts, nil, fmt.Errorf("threshold must be a number >= %d", config.MinThreshold)
			}
			opts.threshold = n
			i++
		case "--filter":
			v, err := value(i, a, "a filter name")
			if err != nil {
				return opts, nil, err
			}
			opts.filter = v
			i++
		case "--encoder":
			v, err := value(i, a, "iconutil, builtin or auto")
			if err != nil {
				return opts, nil, err
			}
			opts.encoder = v
			i++
		case "--cleanup":
			v, err := value(i, a, "always, on-success or never")
			if err != nil {
				return opts, nil, err
			}
			opts.cleanup = v
			i++
		case "--timeout":
			v, err := value(i, a, "a number of seconds")
			if err != nil {
				return opts, nil, err
			}
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return opts, nil, fmt.Errorf("timeout must be a non-negative number of seconds")
			}
			opts.timeout = n
			i++
		case "--log":
			opts.log = true
		case "--chime":
			opts.chime = true
		case "--dry-run":
			opts.dryRun = true
		default:
			rest = append(rest, a)
		}
	}
	return opts, rest, nil
}

// applyOptions layers CLI overrides on top of cfg and re-validates.
func applyOptions(cfg config.Config, o options) (config.Config, error) {
	if o.threshold > 0 {
		cfg.Threshold = o.threshold
	}
	if o.filter != "" {
		cfg.Filter = o.filter
	}
	if o.encoder != "" {
		cfg.Encoder = o.encoder
	}
	if o.cleanup != "" {
		cfg.Cleanup = o.cleanup
	}
	if o.assume != "" {
		cfg.Assume = o.assume
	}
	if o.timeout >= 0 {
		cfg.TimeoutSeconds = o.timeout
	}
	cfg.Log = cfg.Log || o.log
	cfg.Chime = cfg.Chime || o.chime
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// confirmer picks how yes/no questions are answered.
func confirmer(cfg config.Config, dialog bool) prompt.Confirmer {
	switch {
	case dialog:
		return prompt.Dialog{}
	case cfg.Assume == "yes":
		return prompt.Always(true)
	case cfg.Assume == "no":
		return prompt.Always(false)
	}
	return prompt.NewTerminal()
}

// newBridge builds the conversion bridge from validated config.
func newBridge(cfg config.Config) bridge.Bridge {
	enc, _ := bridge.ParseEncoder(cfg.Encoder)
	cl, _ := bridge.ParseCleanup(cfg.Cleanup)
	return bridge.Bridge{
		Runner: bridge.System{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
			Stdout:  os.Stdout,
		},
		Encoder: enc,
		Cleanup: cl,
	}
}

func loadConfig(o options) config.Config {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg, err = applyOptions(cfg, o)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// convertCmd runs the pipeline once and returns the process exit code.
func convertCmd(images []string, o options) int {
	cfg := loadConfig(o)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := convert(ctx, cfg, images, confirmer(cfg, o.dialog), o.dryRun)
	report(cfg, res, err, o.dryRun)
	if err != nil {
		fmt.Fprintln(os.Stderr, pipeline.Message(err))
		return 1
	}
	printResult(res)
	return 0
}

// convert opens images into a fresh session and runs the pipeline on the
// last one. No images means no open document.
func convert(ctx context.Context, cfg config.Config, images []string, c prompt.Confirmer, dryRun bool) (pipeline.Result, error) {
	sess := host.NewSession(cfg.Filter)
	for _, p := range images {
		if _, err := sess.Open(p); err != nil {
			return pipeline.Result{}, err
		}
	}
	return pipeline.Run(ctx, pipeline.Options{
		Host:      sess,
		Confirm:   c,
		Bridge:    newBridge(cfg),
		Threshold: cfg.Threshold,
		DryRun:    dryRun,
		Progress:  printProgress,
	})
}

func printProgress(s iconset.Spec, path string) {
	fmt.Printf("wrote %s (%dpx)\n", s.Name, s.Size)
}

// printResult prints the tail of a successful run to stdout.
func printResult(res pipeline.Result) {
	for _, step := range res.Planned {
		fmt.Println(step)
	}
	if res.Planned == nil && res.Outcome.IcnsPath != "" {
		fmt.Printf("created %s\n", res.Outcome.IcnsPath)
	}
}

func watchCmd(args []string, o options) {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Error: watch expects exactly one image\n")
		os.Exit(1)
	}
	cfg := loadConfig(o)
	// Nobody is around to answer prompts on a rebuild.
	if cfg.Assume == "" && !o.dialog {
		cfg.Assume = "yes"
	}
	image := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	build := func() {
		res, err := convert(ctx, cfg, []string{image}, confirmer(cfg, o.dialog), o.dryRun)
		report(cfg, res, err, o.dryRun)
		if err != nil {
			fmt.Fprintln(os.Stderr, pipeline.Message(err))
			return
		}
		printResult(res)
	}

	build()
	fmt.Printf("Watching %s (Ctrl-C to stop)\n", image)
	if err := watch.Watch(ctx, image, watch.DefaultDelay, build); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("mkicns %s (%s) %s/%s\n", version, buildDate, runtime.GOOS, runtime.GOARCH)
}

func printUsage() {
	fmt.Printf("mkicns %s - Build a macOS .icns icon from an image\n", version)
	fmt.Println(`
Usage:
  mkicns [options] <image>
  mkicns watch [options] <image>
  mkicns history [N | clear | clean <days>]
  mkicns init [--defaults]

Options:
  --config, -c <path>      Path to mkicns-config.json (or .yaml)
  --yes, -y                Answer yes to every size warning
  --no                     Answer no to every size warning
  --dialog                 Ask with a macOS dialog instead of the terminal
  --threshold, -t <px>     Warn below this size (default: 1024)
  --filter <name>          Resampling filter (default: lanczos)
  --encoder <name>         iconutil, builtin or auto (default: iconutil)
  --cleanup <policy>       always, on-success or never (default: always)
  --timeout <seconds>      Kill iconutil/rm after this long (default: none)
  --log                    Record the run in the history database
  --chime                  Play a tone when the run ends
  --dry-run                Print what would happen without writing anything

Commands:
  watch                    Rebuild whenever the image changes
  history                  Show recent runs
  init                     Write a config file
  version, -V              Show version and build date
  help, -h, --help         Show this help message

Config resolution:
  1. --config <path>                     (explicit)
  2. mkicns-config.json next to binary   (portable)
  3. ~/.config/mkicns/mkicns-config.json (user default)
  MKICNS_* environment variables override the file.

Examples:
  mkicns logo.png                  Build logo.icns next to logo.png
  mkicns -y --encoder auto art.svg Build without prompts, iconutil if present
  mkicns watch logo.png            Rebuild on every save`)
}
