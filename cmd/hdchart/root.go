// ./cmd/hdchart/root.go

/*
This program is free software; you can redistribute it and/or
modify it under the terms of the GNU General Public License
as published by the Free Software Foundation; either version 2
of the License, or (at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program; if not, write to the Free Software
Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston, MA
02110-1301, USA.
*/
package main

import (
	"context"
	"fmt"
	"io"

	"github.com/mshafiee/humandesign"
	"github.com/mshafiee/humandesign/ephemeris"
	"github.com/mshafiee/humandesign/internal/config"
	"github.com/mshafiee/humandesign/internal/logging"
	"github.com/mshafiee/humandesign/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once the root has set it up.
type app struct {
	// flags
	configPath string
	ephePath   string
	logLevel   string
	logFormat  string
	tracing    bool

	cfg      *config.Config
	log      zerolog.Logger
	engine   ephemeris.Engine
	closer   io.Closer
	provider *ephemeris.Provider
	calc     *humandesign.Calculator
	registry *prometheus.Registry
	metrics  *observability.Metrics
	shutdown observability.ShutdownFunc
}

// run executes the command line in args and releases the engine and the
// tracer whether or not the command succeeded.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	defer a.teardown(context.WithoutCancel(ctx))

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "hdchart",
		Short: "Human Design and Vedic chart calculator",
		Long: `hdchart computes Human Design charts (Personality and Design gates, with the
Design instant found 88 degrees of solar arc before birth) and Vedic charts
(Lahiri sidereal positions and the Moon's nakshatra).

Positions come from a built-in analytic theory or, when configured, from a
JPL DE binary ephemeris file.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file")
	pf.StringVar(&a.ephePath, "ephe", "", "JPL DE file (overrides config and HDCHART_EPHE_PATH)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	pf.StringVar(&a.logFormat, "log-format", "", "log format: console or json")
	pf.BoolVar(&a.tracing, "trace", false, "export spans to stderr")

	root.AddCommand(
		newChartCmd(a),
		newVedicCmd(a),
		newBatchCmd(a),
		newEphemCmd(a),
	)
	return root
}

// setup loads the configuration, then builds the logger, tracing, metrics,
// engine and calculator in that order.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("ephe") {
		cfg.Ephemeris.Path = a.ephePath
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = a.logFormat
	}
	if flags.Changed("trace") {
		cfg.Tracing.Enabled = a.tracing
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.log = logging.New(logging.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Component: "hdchart",
		Writer:    cmd.ErrOrStderr(),
	})

	a.shutdown, err = observability.InitTracing(cmd.Context(), cfg.Tracing, cmd.ErrOrStderr(), a.log)
	if err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	a.metrics, err = observability.NewMetrics(a.registry)
	if err != nil {
		return err
	}

	a.engine, a.closer, err = openEngine(cfg.Ephemeris)
	if err != nil {
		return err
	}
	a.provider = ephemeris.NewProvider(a.engine,
		ephemeris.WithLogger(a.log),
		ephemeris.WithObserver(a.metrics),
	)
	a.calc = humandesign.New(a.provider,
		humandesign.WithLogger(a.log),
		humandesign.WithMetrics(a.metrics),
		humandesign.WithTracer(observability.Tracer()),
	)

	a.log.Debug().
		Str("engine", a.engine.Name()).
		Str("config", a.configPath).
		Msg("ready")
	return nil
}

func (a *app) teardown(ctx context.Context) {
	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			a.log.Warn().Err(err).Msg("closing ephemeris file failed")
		}
		a.closer = nil
	}
	observability.ShutdownWithTimeout(ctx, a.shutdown, a.log)
	a.shutdown = nil
}

// openEngine picks the DE reader when a path is configured and the analytic
// engine otherwise.
func openEngine(cfg config.EphemerisConfig) (ephemeris.Engine, io.Closer, error) {
	if cfg.Path == "" {
		return ephemeris.NewAnalytic(), nil, nil
	}
	de, err := ephemeris.OpenDE(cfg.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("ephemeris %s: %w", cfg.Path, err)
	}
	return de, de, nil
}
