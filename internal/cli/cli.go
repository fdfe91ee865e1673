// Package cli wires the command line to the dispatcher.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"webhookutil/internal/config"
	"webhookutil/internal/coordinator"
	"webhookutil/internal/core"
	httpsender "webhookutil/internal/http"
	"webhookutil/internal/logger"
	"webhookutil/internal/payload"
	"webhookutil/internal/progress"
	"webhookutil/internal/resolve"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// usageError is a command line mistake; it is reported together with the usage text.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

var errMissingURL = &usageError{err: errors.New("URL is required")}

// App holds the process-level dependencies of one invocation.
type App struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Resolver *resolve.Resolver
	Clock    core.Clock
}

// NewApp returns an App bound to the process streams and the system resolver.
func NewApp() *App {
	return &App{
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Resolver: resolve.New(),
		Clock:    core.RealClock{},
	}
}

type flags struct {
	configPath string
	latency    int
	times      int
	threads    int
	quiet      bool
	profileURL string
	name       string
	message    string
	pin        bool
	ip         string
	rawPayload bool
	transport  string
	timeout    time.Duration
	verbose    bool
}

// Run parses args, performs the run and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if args == nil {
		args = []string{} // cobra falls back to os.Args on nil
	}
	cmd := a.command()
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	var usageErr *usageError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &usageErr):
		fmt.Fprintf(a.Stderr, "error: %v\n\n", err)
		fmt.Fprint(a.Stderr, cmd.UsageString())
		return ExitError
	default:
		fmt.Fprintf(a.Stderr, "error: %v\n", err)
		return ExitError
	}
}

func (a *App) command() *cobra.Command {
	var f flags
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "webhookutil <URL>",
		Short: "Send JSON webhook messages, repeatedly and concurrently",
		Long: `webhookutil POSTs a JSON message to a webhook URL.

Each worker sends the message --times times, pausing --latency seconds
between attempts. With --pin the host is resolved once and every
connection goes to that address.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return &usageError{err: fmt.Errorf("expected a single URL, got %d arguments", len(args))}
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.buildConfig(cmd, &f, args)
			if err != nil {
				return err
			}
			return a.dispatch(cmd.Context(), cfg)
		},
	}
	cmd.SetOut(a.Stdout)
	cmd.SetErr(a.Stderr)
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", "", "path to YAML config file")
	fs.IntVarP(&f.latency, "latency", "l", int(defaults.Latency/time.Second), "seconds to wait between attempts")
	fs.IntVarP(&f.times, "times", "t", defaults.Times, "attempts per worker")
	fs.IntVarP(&f.threads, "threads", "T", defaults.Threads, "number of concurrent workers")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "suppress success messages")
	fs.StringVarP(&f.profileURL, "profile-url", "P", defaults.Message.AvatarURL, "avatar URL to send")
	fs.StringVarP(&f.name, "name", "N", defaults.Message.Username, "username to send")
	fs.StringVarP(&f.message, "message", "M", defaults.Message.Content, "message content to send")
	fs.BoolVarP(&f.pin, "pin", "R", false, "resolve the host once and pin every connection to it")
	fs.StringVar(&f.ip, "ip", "", "pin connections to this IP instead of resolving (implies --pin)")
	fs.BoolVar(&f.rawPayload, "raw-payload", false, "interpolate values into the JSON without escaping")
	fs.StringVar(&f.transport, "transport", defaults.Transport.Engine, "HTTP engine: http or fasthttp")
	fs.DurationVar(&f.timeout, "timeout", defaults.Transport.Timeout, "per-request timeout")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug output (request/response logging)")

	return cmd
}

// buildConfig layers defaults, the config file, explicitly set flags and the positional URL.
func (a *App) buildConfig(cmd *cobra.Command, f *flags, args []string) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("latency") {
		cfg.Latency = time.Duration(f.latency) * time.Second
	}
	if changed("times") {
		cfg.Times = f.times
	}
	if changed("threads") {
		cfg.Threads = f.threads
	}
	if changed("quiet") {
		cfg.Quiet = f.quiet
	}
	if changed("profile-url") {
		cfg.Message.AvatarURL = f.profileURL
	}
	if changed("name") {
		cfg.Message.Username = f.name
	}
	if changed("message") {
		cfg.Message.Content = f.message
	}
	if changed("pin") {
		cfg.Pin.Enabled = f.pin
	}
	if changed("ip") {
		cfg.Pin.IP = f.ip
	}
	if changed("raw-payload") {
		cfg.RawPayload = f.rawPayload
	}
	if changed("transport") {
		cfg.Transport.Engine = f.transport
	}
	if changed("timeout") {
		cfg.Transport.Timeout = f.timeout
	}
	if changed("verbose") {
		cfg.Verbose = f.verbose
	}
	if len(args) == 1 {
		cfg.URL = args[0]
	}

	if cfg.URL == "" {
		return nil, errMissingURL
	}
	cfg.URL = resolve.NormalizeURL(cfg.URL)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// dispatch runs the startup sequence and the workers. Anything that fails
// here fails before a single request is sent.
func (a *App) dispatch(ctx context.Context, cfg *config.Config) error {
	log := logger.New(a.Stderr, cfg.Verbose)

	body, err := payload.NewBuilder(cfg.RawPayload).Render(cfg.Message.Content, cfg.Message.Username, cfg.Message.AvatarURL)
	if err != nil {
		return err
	}
	if cfg.RawPayload && !payload.Valid(body) {
		log.Warn().Str("payload", string(body)).Msg("raw payload is not valid JSON")
	}

	var pin *core.PinnedResolution
	if cfg.Pin.Active() {
		pin, err = a.resolver().Pin(ctx, cfg.URL, cfg.Pin.IP)
		if err != nil {
			return err
		}
		log.Info().Str("host", pin.Hostname).Str("ip", pin.IP).Int("port", pin.Port).Msg("pinned host")
	}

	var debug *httpsender.DebugLogger
	if cfg.Verbose {
		debug = httpsender.NewDebugLogger(log)
	}

	session, err := httpsender.Open(httpsender.Options{
		Engine:  cfg.Transport.Engine,
		Timeout: cfg.Transport.Timeout,
		Workers: cfg.Threads,
		Pin:     pin,
		Debug:   debug,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	run := &core.RunConfig{
		URL:     cfg.URL,
		Payload: body,
		Times:   cfg.Times,
		Latency: cfg.Latency,
		Quiet:   cfg.Quiet,
		Workers: cfg.Threads,
		Pin:     pin,
	}

	prog := progress.NewProgress(log, run)
	prog.SetOutput(a.Stdout)

	coord := coordinator.NewCoordinator(session.Sender(), prog).WithClock(a.clock())
	logStart(log, run, session.Engine())

	if err := coord.Dispatch(ctx, run); err != nil {
		return err
	}
	if ctx.Err() != nil && !run.Quiet {
		log.Warn().Msg("interrupted, stopped before all attempts were sent")
	}
	return nil
}

func (a *App) resolver() *resolve.Resolver {
	if a.Resolver == nil {
		return resolve.New()
	}
	return a.Resolver
}

func (a *App) clock() core.Clock {
	if a.Clock == nil {
		return core.RealClock{}
	}
	return a.Clock
}

func logStart(log zerolog.Logger, run *core.RunConfig, engine string) {
	log.Debug().
		Str("url", run.URL).
		Int("workers", run.Workers).
		Int("times", run.Times).
		Dur("latency", run.Latency).
		Str("engine", engine).
		Int("total", run.TotalAttempts()).
		Msg("starting dispatch")
}
