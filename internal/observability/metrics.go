// ./internal/observability/metrics.go

/*
Package observability owns the Prometheus collectors and the OpenTelemetry
tracer provider used by hdchart.

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
package observability

import (
	"fmt"
	"io"
	"time"

	"github.com/mshafiee/humandesign/ephemeris"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics bundles the chart collectors. It satisfies ephemeris.Observer and
// the calculator's metrics recorder. A nil *Metrics records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	Calculations      *prometheus.CounterVec
	SolarArcFallbacks prometheus.Counter
	EphemerisQueries  *prometheus.HistogramVec
	OmittedBodies     *prometheus.CounterVec
}

// NewMetrics registers the collectors against reg, defaulting to the global
// registry when nil. Registering twice hands back the existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	calculations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hdchart_calculations_total",
		Help: "Chart calculations, labeled by kind (human_design, vedic) and outcome (ok, invalid, error).",
	}, []string{"kind", "outcome"}), "hdchart_calculations_total")
	if err != nil {
		return nil, err
	}

	fallbacks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hdchart_solar_arc_fallbacks_total",
		Help: "Design instants that fell back to the fixed 88-day offset.",
	}), "hdchart_solar_arc_fallbacks_total")
	if err != nil {
		return nil, err
	}

	queries, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hdchart_ephemeris_query_seconds",
		Help:    "Latency of single-body ephemeris queries in seconds.",
		Buckets: []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3, 0.01, 0.05},
	}, []string{"engine"}), "hdchart_ephemeris_query_seconds")
	if err != nil {
		return nil, err
	}

	omitted, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hdchart_optional_bodies_omitted_total",
		Help: "Optional bodies left out of a result because the engine could not serve them.",
	}, []string{"body"}), "hdchart_optional_bodies_omitted_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gatherer:          gatherer,
		Calculations:      calculations,
		SolarArcFallbacks: fallbacks,
		EphemerisQueries:  queries,
		OmittedBodies:     omitted,
	}, nil
}

// ObserveQuery records the latency of one engine call.
func (m *Metrics) ObserveQuery(engine string, d time.Duration) {
	if m == nil || m.EphemerisQueries == nil {
		return
	}
	m.EphemerisQueries.WithLabelValues(engine).Observe(d.Seconds())
}

// OptionalOmitted counts a dropped optional body.
func (m *Metrics) OptionalOmitted(b ephemeris.Body) {
	if m == nil || m.OmittedBodies == nil {
		return
	}
	m.OmittedBodies.WithLabelValues(b.String()).Inc()
}

// CalculationDone counts a finished calculation.
func (m *Metrics) CalculationDone(kind, outcome string) {
	if m == nil || m.Calculations == nil {
		return
	}
	m.Calculations.WithLabelValues(kind, outcome).Inc()
}

// SolarArcFallback counts a design instant taken from the fixed offset.
func (m *Metrics) SolarArcFallback() {
	if m == nil || m.SolarArcFallbacks == nil {
		return
	}
	m.SolarArcFallbacks.Inc()
}

// WriteText dumps the gathered families in the Prometheus text format.
func (m *Metrics) WriteText(w io.Writer) error {
	gatherer := prometheus.DefaultGatherer
	if m != nil && m.gatherer != nil {
		gatherer = m.gatherer
	}
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
