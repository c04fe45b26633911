// ./cmd/hdchart/batch.go

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
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/mshafiee/humandesign"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// birthRow is one input line of a batch file.
type birthRow struct {
	ID       string `csv:"id"`
	Date     string `csv:"date"`
	Time     string `csv:"time"`
	Timezone string `csv:"timezone"`
	humandesign.Location
}

// chartRow is one output line. Rows that fail carry only the id and error.
type chartRow struct {
	ID               string `csv:"id"`
	BirthUTC         string `csv:"birth_utc"`
	DesignUTC        string `csv:"design_utc"`
	DesignMethod     string `csv:"design_method"`
	PersonalitySun   int    `csv:"personality_sun"`
	PersonalityEarth int    `csv:"personality_earth"`
	DesignSun        int    `csv:"design_sun"`
	DesignEarth      int    `csv:"design_earth"`
	PersonalityGates string `csv:"personality_gates"`
	DesignGates      string `csv:"design_gates"`
	SolarArc         string `csv:"solar_arc"`
	Engine           string `csv:"engine"`
	Error            string `csv:"error"`
}

type batchOptions struct {
	in, out     string
	workers     int
	failFast    bool
	metricsPath string
}

func newBatchCmd(a *app) *cobra.Command {
	var opt batchOptions
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Compute Human Design charts for every row of a CSV file",
		Long: `batch reads a CSV file with the columns id, date, time, timezone, latitude
and longitude, computes a chart per row on a bounded pool of workers and
writes one CSV row per input row, in input order. Rows that fail validation
are reported in the error column unless --fail-fast is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("workers") {
				opt.workers = a.cfg.Batch.Workers
			}
			return a.runBatch(cmd.Context(), opt, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringVar(&opt.in, "in", "-", "input CSV file, - for stdin")
	f.StringVar(&opt.out, "out", "-", "output CSV file, - for stdout")
	f.IntVar(&opt.workers, "workers", 0, "concurrent calculations (default from config)")
	f.BoolVar(&opt.failFast, "fail-fast", false, "stop at the first row that fails")
	f.StringVar(&opt.metricsPath, "metrics", "", "write Prometheus metrics to this file when done")
	return cmd
}

func (a *app) runBatch(ctx context.Context, opt batchOptions, stdin io.Reader, stdout io.Writer) error {
	if opt.workers < 1 {
		return fmt.Errorf("--workers must be at least 1, got %d", opt.workers)
	}

	in, closeIn, err := openInput(opt.in, stdin)
	if err != nil {
		return err
	}
	var births []*birthRow
	err = gocsv.Unmarshal(in, &births)
	closeIn()
	if err != nil {
		return fmt.Errorf("read %s: %w", opt.in, err)
	}

	started := time.Now()
	rows, err := a.computeRows(ctx, births, opt.workers, opt.failFast)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(opt.out, stdout)
	if err != nil {
		return err
	}
	if err := gocsv.Marshal(rows, out); err != nil {
		closeOut()
		return fmt.Errorf("write %s: %w", opt.out, err)
	}
	if err := closeOut(); err != nil {
		return err
	}

	failed := 0
	for _, r := range rows {
		if r.Error != "" {
			failed++
		}
	}
	a.log.Info().
		Int("rows", len(rows)).
		Int("failed", failed).
		Int("workers", opt.workers).
		Dur("elapsed", time.Since(started)).
		Msg("batch done")

	if opt.metricsPath != "" {
		return a.writeMetrics(opt.metricsPath)
	}
	return nil
}

// computeRows fans the births out over at most workers goroutines. Results
// keep input order.
func (a *app) computeRows(ctx context.Context, births []*birthRow, workers int, failFast bool) ([]*chartRow, error) {
	rows := make([]*chartRow, len(births))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, b := range births {
		if gctx.Err() != nil {
			break
		}
		i, b := i, b
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			chart, err := a.calc.HumanDesign(gctx, humandesign.BirthData{
				Date:     b.Date,
				Time:     b.Time,
				Timezone: b.Timezone,
				Location: b.Location,
			})
			if err != nil {
				if failFast {
					return fmt.Errorf("row %d (id %q): %w", i+1, b.ID, err)
				}
				a.log.Debug().Str("id", b.ID).Err(err).Msg("row failed")
				rows[i] = &chartRow{ID: b.ID, Error: err.Error()}
				return nil
			}
			rows[i] = toChartRow(b.ID, chart)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func toChartRow(id string, c *humandesign.HumanDesignChart) *chartRow {
	return &chartRow{
		ID:               id,
		BirthUTC:         c.BirthTime.UTC().Format(time.RFC3339),
		DesignUTC:        c.DesignTime.UTC().Format(time.RFC3339),
		DesignMethod:     string(c.DesignMethod),
		PersonalitySun:   c.PersonalityGates["sun"],
		PersonalityEarth: c.PersonalityGates[humandesign.Earth],
		DesignSun:        c.DesignGates["sun"],
		DesignEarth:      c.DesignGates[humandesign.Earth],
		PersonalityGates: joinGates(c.PersonalityGates),
		DesignGates:      joinGates(c.DesignGates),
		SolarArc:         c.SolarArc.SolarArcDifference,
		Engine:           c.Engine,
	}
}

// joinGates renders a gate map as "sun:4 earth:49 ..." in chart order.
func joinGates(m map[string]int) string {
	parts := make([]string, 0, len(gateRows))
	for _, name := range gateRows {
		if g, ok := m[name]; ok {
			parts = append(parts, fmt.Sprintf("%s:%d", name, g))
		}
	}
	return strings.Join(parts, " ")
}

func (a *app) writeMetrics(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	if err := a.metrics.WriteText(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}
