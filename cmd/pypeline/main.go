// Command pypeline runs a pipeline of shell commands described on the
// command line:
//
//	pypeline -i access.log.gz -o top.txt "cut -d' ' -f1" "sort" "uniq -c" "sort -rn" "head"
//
// Each argument is one stage. Input and output default to the standard
// streams; paths ending in .gz or .zst are (de)compressed on the fly.
// Configuration is read from config.yml and the environment as described in
// package config; flags take precedence.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/kbukum/pypeline/config"
	"github.com/kbukum/pypeline/endpoint"
	"github.com/kbukum/pypeline/errors"
	"github.com/kbukum/pypeline/logger"
	"github.com/kbukum/pypeline/observability"
	"github.com/kbukum/pypeline/pipeline"
	"github.com/kbukum/pypeline/version"
)

const serviceName = "pypeline"

// Exit codes besides the ones propagated from failed stages.
const (
	exitOK        = 0
	exitFailure   = 1
	exitUsage     = 2
	exitResolving = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	configFile string
	envFile    string
	in         string
	out        string
	stderr     string
	dir        string
	appendOut  bool
	showVer    bool
}

func parseFlags(args []string, errOut io.Writer) (*options, []string, error) {
	var o options
	fs := pflag.NewFlagSet(serviceName, pflag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&o.configFile, "config", "", "configuration file")
	fs.StringVar(&o.envFile, "env-file", "", "dotenv file")
	fs.StringVarP(&o.in, "in", "i", "-", "input path, - for standard input")
	fs.StringVarP(&o.out, "out", "o", "-", "output path, - for standard output")
	fs.StringVar(&o.stderr, "stderr", "", "error stream: stderr, stdout, discard or a path")
	fs.StringVarP(&o.dir, "dir", "C", "", "working directory of the commands")
	fs.BoolVarP(&o.appendOut, "append", "a", false, "append to the output path instead of truncating it")
	fs.BoolVar(&o.showVer, "version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(errOut, "usage: %s [flags] command [command...]\n", serviceName)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return &o, fs.Args(), nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, stages, err := parseFlags(args, stderr)
	if err != nil {
		if err == pflag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}
	if opts.showVer {
		fmt.Fprintln(stdout, version.Get())
		return exitOK
	}
	if len(stages) == 0 {
		fmt.Fprintln(stderr, "pypeline: no commands given")
		return exitUsage
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintln(stderr, "pypeline:", err)
		return exitUsage
	}

	shellOpts := []pipeline.Option{}
	if cfg.Engine.Stderr == config.StderrInherit {
		shellOpts = append(shellOpts, pipeline.WithStderr(stderr))
	}
	if cfg.Telemetry.Enabled() {
		shutdown, topts, err := initTelemetry(ctx, cfg)
		if err != nil {
			fmt.Fprintln(stderr, "pypeline:", err)
			return exitUsage
		}
		defer shutdown()
		shellOpts = append(shellOpts, topts...)
	}

	sh, err := pipeline.NewShellFromConfig(ctx, cfg, shellOpts...)
	if err != nil {
		fmt.Fprintln(stderr, "pypeline:", err)
		return exitUsage
	}
	logger.Init(&cfg.Logging)
	logger.Register(logger.ComponentPipeline, sh.Logger())
	defer logger.Register(logger.ComponentPipeline, nil)

	return exitCode(execute(sh, stages, inputFor(opts.in, stdin), outputFor(opts.out, stdout)), stderr)
}

func loadConfig(opts *options) (*config.Config, error) {
	var loaderOpts []config.LoaderOption
	if opts.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(opts.configFile))
	}
	if opts.envFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(opts.envFile))
	}

	var cfg config.Config
	if err := config.LoadConfig(serviceName, &cfg, loaderOpts...); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "warn"
	}
	if cfg.Version == "" {
		cfg.Version = version.Get().Short()
	}
	if opts.stderr != "" {
		cfg.Engine.Stderr = opts.stderr
	}
	if opts.dir != "" {
		cfg.Engine.Dir = opts.dir
	}
	if opts.appendOut {
		cfg.Engine.OutputMode = config.OutputAppend
	}
	return &cfg, nil
}

func initTelemetry(ctx context.Context, cfg *config.Config) (func(), []pipeline.Option, error) {
	tel, err := observability.Start(ctx, observability.Settings{
		Service:     cfg.Name,
		Version:     cfg.Version,
		Environment: cfg.Environment,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		SampleRate:  cfg.Telemetry.SampleRate,
		Interval:    cfg.Telemetry.Interval,
	})
	if err != nil {
		return nil, nil, err
	}
	shutdown := func() {
		if err := tel.Shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown failed", logger.ErrorFields("shutdown", err))
		}
	}
	return shutdown, []pipeline.Option{
		pipeline.WithTracer(tel.Tracer()),
		pipeline.WithMetrics(tel.Metrics()),
	}, nil
}

// inputFor and outputFor map "-" to a standard stream, which is never closed.
func inputFor(arg string, std io.Reader) endpoint.Endpoint {
	if arg == "-" {
		return endpoint.FromReader(std).Borrowed()
	}
	return endpoint.FromPath(arg)
}

func outputFor(arg string, std io.Writer) endpoint.Endpoint {
	if arg == "-" {
		return endpoint.FromWriter(std).Borrowed()
	}
	return endpoint.FromPath(arg)
}

func execute(sh *pipeline.Shell, lines []string, in, out endpoint.Endpoint) error {
	fragments := make([]*pipeline.Fragment, len(lines))
	for i, line := range lines {
		fragments[i] = sh.Command(line)
	}
	f, err := pipeline.Pipe(fragments...)
	if err != nil {
		return err
	}
	if f, err = f.From(in); err != nil {
		return err
	}
	_, err = f.To(out)
	return err
}

// exitCode reports err and picks the exit status: the code of the last
// failed stage, like a shell with pipefail set.
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return exitOK
	}
	fmt.Fprintln(stderr, "pypeline:", err)
	if failures := errors.FailuresOf(err); len(failures) > 0 {
		if code := failures[len(failures)-1].Code; code > 0 && code < 256 {
			return code
		}
		return exitFailure
	}
	if appErr, ok := errors.AsAppError(err); ok && appErr.Category() == errors.CategoryResolution {
		return exitResolving
	}
	return exitFailure
}
