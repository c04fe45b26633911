// ./calculator.go

/*
Package humandesign computes Human Design and Vedic charts from birth data.

A Human Design chart maps planetary longitudes to the 64 gates twice: at the
birth instant (Personality) and at the instant the Sun stood 88 degrees of
arc earlier (Design). The Vedic chart gives Lahiri sidereal positions and
the Moon's nakshatra.

Usage:

	calc := humandesign.New(ephemeris.NewProvider(ephemeris.NewAnalytic()))
	chart, err := calc.HumanDesign(ctx, humandesign.BirthData{
	    Date:     "1991-08-13",
	    Time:     "13:31",
	    Timezone: "Asia/Kolkata",
	    Location: humandesign.Location{Latitude: 12.9716, Longitude: 77.5946},
	})

License:
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
package humandesign

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mshafiee/humandesign/ephemeris"
	"github.com/mshafiee/humandesign/gates"
	"github.com/mshafiee/humandesign/internal/logging"
	"github.com/mshafiee/humandesign/timeconv"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Calculation kinds and outcomes reported to a Recorder.
const (
	KindHumanDesign = "human_design"
	KindVedic       = "vedic"

	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

const tracerName = "github.com/mshafiee/humandesign"

// PositionSource is what a Calculator needs from an ephemeris.
// *ephemeris.Provider implements it.
type PositionSource interface {
	Positions(jd timeconv.JulianDay, frame ephemeris.Frame) (ephemeris.Positions, error)
	SunLongitude(jd timeconv.JulianDay) (float64, error)
	EngineName() string
}

// Recorder receives calculation counters.
type Recorder interface {
	CalculationDone(kind, outcome string)
	SolarArcFallback()
}

type nopRecorder struct{}

func (nopRecorder) CalculationDone(string, string) {}
func (nopRecorder) SolarArcFallback()              {}

// Calculator computes charts. It is safe for concurrent use.
type Calculator struct {
	src     PositionSource
	log     zerolog.Logger
	metrics Recorder
	tracer  trace.Tracer
	newID   func() string
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Calculator) { c.log = l }
}

// WithMetrics sets the counter sink.
func WithMetrics(r Recorder) Option {
	return func(c *Calculator) {
		if r != nil {
			c.metrics = r
		}
	}
}

// WithTracer sets the tracer; the default comes from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *Calculator) {
		if t != nil {
			c.tracer = t
		}
	}
}

// New returns a Calculator.
//
// Parameters:
//   - src: Where positions come from, usually an *ephemeris.Provider.
//   - opts: WithLogger, WithMetrics, WithTracer.
//
// Returns:
//   - *Calculator: Safe for concurrent use.
func New(src PositionSource, opts ...Option) *Calculator {
	c := &Calculator{
		src:     src,
		log:     logging.Nop(),
		metrics: nopRecorder{},
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	return c
}

// Engine returns the name of the ephemeris engine in use.
func (c *Calculator) Engine() string {
	return c.src.EngineName()
}

// HumanDesign computes the Personality and Design gates.
//
// Parameters:
//   - ctx: Carries the parent trace span.
//   - b: Birth data. It is validated before any ephemeris query.
//
// Returns:
//   - *HumanDesignChart: Gates and positions at birth and at the design
//     instant, with the solar arc details.
//   - error: A *ValidationError for bad input (matches ErrValidation and,
//     for timestamps, the timeconv sentinels). Ephemeris failures are
//     returned unmodified.
func (c *Calculator) HumanDesign(ctx context.Context, b BirthData) (chart *HumanDesignChart, err error) {
	id := c.newID()
	log := logging.WithCalculation(c.log, id)
	ctx, span := c.tracer.Start(ctx, "humandesign.HumanDesign", trace.WithAttributes(
		attribute.String("calc.id", id),
		attribute.String("ephemeris.engine", c.src.EngineName()),
	))
	started := time.Now()
	defer func() { c.finish(span, log, KindHumanDesign, started, err) }()

	civil, birthJD, birth, err := c.resolve(b)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("birth", civil.String()).Float64("jd", float64(birthJD)).Msg("calculation started")

	personality, err := c.positions(ctx, "personality", birthJD, ephemeris.Tropical)
	if err != nil {
		return nil, err
	}

	design, err := c.designInstant(ctx, log, birthJD, birth)
	if err != nil {
		return nil, err
	}

	designPositions, err := c.positions(ctx, "design", design.JD, ephemeris.Tropical)
	if err != nil {
		return nil, err
	}

	chart = &HumanDesignChart{
		ID:                   id,
		PersonalityGates:     gateMap(personality),
		DesignGates:          gateMap(designPositions),
		PersonalityPositions: personality,
		DesignPositions:      designPositions,
		BirthTime:            birth.UTC(),
		DesignTime:           design.Time,
		DesignMethod:         design.Method,
		SolarArc:             solarArcDetails(personality, designPositions, design),
		Location:             b.Location,
		Engine:               c.src.EngineName(),
	}
	span.SetAttributes(
		attribute.String("design.method", string(design.Method)),
		attribute.Int("personality.sun_gate", chart.PersonalityGates[ephemeris.Sun.String()]),
		attribute.Int("design.sun_gate", chart.DesignGates[ephemeris.Sun.String()]),
	)
	return chart, nil
}

// Vedic computes Lahiri sidereal positions and the Moon's nakshatra.
//
// Parameters:
//   - ctx: Carries the parent trace span.
//   - b: Birth data, validated as in HumanDesign.
//
// Returns:
//   - *VedicChart: Sidereal positions, the Moon's nakshatra and pada, and
//     the ayanamsa used.
//   - error: As for HumanDesign.
func (c *Calculator) Vedic(ctx context.Context, b BirthData) (chart *VedicChart, err error) {
	id := c.newID()
	log := logging.WithCalculation(c.log, id)
	ctx, span := c.tracer.Start(ctx, "humandesign.Vedic", trace.WithAttributes(
		attribute.String("calc.id", id),
		attribute.String("ephemeris.engine", c.src.EngineName()),
	))
	started := time.Now()
	defer func() { c.finish(span, log, KindVedic, started, err) }()

	_, jd, birth, err := c.resolve(b)
	if err != nil {
		return nil, err
	}

	pos, err := c.positions(ctx, "sidereal", jd, ephemeris.Sidereal)
	if err != nil {
		return nil, err
	}

	moon := pos[ephemeris.Moon].Longitude
	chart = &VedicChart{
		ID:        id,
		Positions: pos,
		MoonNakshatra: MoonNakshatra{
			Nakshatra: gates.LongitudeToNakshatra(moon),
			Longitude: moon,
		},
		Ayanamsa:  ephemeris.Ayanamsa(jd.TT()),
		BirthTime: birth.UTC(),
		Location:  b.Location,
		Engine:    c.src.EngineName(),
	}
	span.SetAttributes(attribute.String("moon.nakshatra", chart.MoonNakshatra.Name))
	return chart, nil
}

// resolve validates b and returns its civil form, Julian Day and instant.
func (c *Calculator) resolve(b BirthData) (timeconv.Civil, timeconv.JulianDay, time.Time, error) {
	civil, err := b.Validate()
	if err != nil {
		return timeconv.Civil{}, 0, time.Time{}, err
	}
	birth, err := civil.In(b.Timezone)
	if err != nil {
		return timeconv.Civil{}, 0, time.Time{}, invalid("timezone", b.Timezone, err)
	}
	return civil, timeconv.TimeToJulianDay(birth), birth, nil
}

func (c *Calculator) positions(ctx context.Context, name string, jd timeconv.JulianDay, frame ephemeris.Frame) (ephemeris.Positions, error) {
	_, span := c.tracer.Start(ctx, "ephemeris.positions", trace.WithAttributes(
		attribute.String("instant", name),
		attribute.String("frame", frame.String()),
		attribute.Float64("jd", float64(jd)),
	))
	defer span.End()

	pos, err := c.src.Positions(jd, frame)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("bodies", len(pos)))
	return pos, nil
}

func (c *Calculator) designInstant(ctx context.Context, log zerolog.Logger, birthJD timeconv.JulianDay, birth time.Time) (DesignInstant, error) {
	_, span := c.tracer.Start(ctx, "solararc.find")
	defer span.End()

	d, err := findDesignInstant(c.src, birthJD, birth)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return DesignInstant{}, err
	}
	span.SetAttributes(
		attribute.String("method", string(d.Method)),
		attribute.Int("iterations", d.Iterations),
	)

	if d.Method == MethodFixedOffset {
		c.metrics.SolarArcFallback()
		log.Warn().
			Float64("birth_sun", d.BirthSun).
			Float64("target", d.Target).
			Int("iterations", d.Iterations).
			Msg("solar arc search did not converge; design instant is birth minus 88 days")
	} else {
		log.Debug().
			Float64("target", d.Target).
			Int("iterations", d.Iterations).
			Time("design", d.Time).
			Msg("design instant found")
	}
	return d, nil
}

func (c *Calculator) finish(span trace.Span, log zerolog.Logger, kind string, started time.Time, err error) {
	defer span.End()

	outcome := OutcomeOK
	switch {
	case err == nil:
		log.Debug().Str("kind", kind).Dur("elapsed", time.Since(started)).Msg("calculation done")
	case errors.Is(err, ErrValidation):
		outcome = OutcomeInvalid
		log.Debug().Str("kind", kind).Err(err).Msg("calculation rejected")
	default:
		outcome = OutcomeError
		log.Error().Str("kind", kind).Err(err).Msg("calculation failed")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	c.metrics.CalculationDone(kind, outcome)
}
