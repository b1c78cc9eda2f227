package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NodePath81/httpbench/internal/config"
	"github.com/NodePath81/httpbench/internal/probe"
	"github.com/NodePath81/httpbench/internal/util"
	"github.com/NodePath81/httpbench/internal/version"
	"github.com/google/uuid"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "run":
			os.Exit(run(os.Args[2:], os.Stdout, os.Stderr))
		case "check":
			os.Exit(check(os.Args[2:], os.Stdout, os.Stderr))
		case "help", "-h", "--help":
			printHelp(os.Stdout)
			return
		case "version", "-v", "--version":
			fmt.Println(version.Version)
			return
		}
	}
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type cliFlags struct {
	configPath  string
	envFile     string
	hosts       string
	file        string
	count       int
	output      string
	timeout     time.Duration
	rate        float64
	metricsAddr string
	logLevel    string
}

func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *cliFlags) {
	f := &cliFlags{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configPath, "config", "", "Path to YAML config file")
	fs.StringVar(&f.envFile, "env-file", "", "Path to a dotenv file with HTTPBENCH_* variables")
	fs.StringVar(&f.hosts, "H", "", "Comma separated hosts, e.g. https://example.com,https://example.org")
	fs.StringVar(&f.hosts, "hosts", "", "Same as -H")
	fs.StringVar(&f.file, "F", "", "File with one host per line")
	fs.StringVar(&f.file, "file", "", "Same as -F")
	fs.IntVar(&f.count, "C", 1, "Requests per host")
	fs.IntVar(&f.count, "count", 1, "Same as -C")
	fs.StringVar(&f.output, "O", "", "Write results to this file instead of the screen")
	fs.StringVar(&f.output, "output", "", "Same as -O")
	fs.DurationVar(&f.timeout, "timeout", probe.DefaultTimeout, "Per-request timeout")
	fs.Float64Var(&f.rate, "rate", 0, "Max requests per second (0 = no pacing)")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address during the run")
	fs.StringVar(&f.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	return fs, f
}

// sources keeps only the flags given explicitly so that lower config
// layers are not clobbered by flag defaults.
func (f *cliFlags) sources(fs *flag.FlagSet) config.Sources {
	src := config.Sources{ConfigPath: f.configPath, EnvFile: f.envFile}
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "H", "hosts":
			src.Flags.Hosts = &f.hosts
		case "F", "file":
			src.Flags.File = &f.file
		case "C", "count":
			src.Flags.Count = &f.count
		case "O", "output":
			src.Flags.Output = &f.output
		case "timeout":
			src.Flags.Timeout = &f.timeout
		case "rate":
			src.Flags.Rate = &f.rate
		case "metrics-addr":
			src.Flags.MetricsAddr = &f.metricsAddr
		case "log-level":
			src.Flags.LogLevel = &f.logLevel
		}
	})
	return src
}

func loadConfig(name string, args []string, stderr io.Writer) (config.Config, error) {
	fs, f := newFlagSet(name, stderr)
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}
	if fs.NArg() > 0 {
		return config.Config{}, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	return config.Load(f.sources(fs))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := loadConfig("run", args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	level, err := util.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	logger := util.NewLogger(stderr, level).With("run_id", uuid.NewString())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	requester := probe.NewHTTPRequester(cfg.Timeout.Duration())
	return execute(ctx, cfg, requester, stdout, logger)
}

func check(args []string, stdout, stderr io.Writer) int {
	cfg, err := loadConfig("check", args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "config invalid: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "config valid: %d %s, count %d\n", len(cfg.Hosts), util.Plural(len(cfg.Hosts), "host", "hosts"), cfg.Count)
	return 0
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `httpbench - HTTP reachability and latency prober

Usage:
  httpbench run -H <hosts> [-C count] [-O file]   Probe hosts
  httpbench run -F <file> [-C count] [-O file]    Probe hosts listed in a file
  httpbench check [flags]                         Validate configuration
  httpbench help                                  Show this help
  httpbench version                               Print version

Flags:
  -H, -hosts         comma separated hosts (http:// or https://)
  -F, -file          file with one host per line
  -C, -count         requests per host (default 1)
  -O, -output        write results to a file
  -config            YAML config file
  -env-file          dotenv file with HTTPBENCH_* variables
  -timeout           per-request timeout (default 10s)
  -rate              max requests per second (default unlimited)
  -metrics-addr      serve Prometheus metrics during the run
  -log-level         debug, info, warn or error

Legacy:
  httpbench -H <hosts> ...
`)
}
