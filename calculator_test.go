// ./calculator_test.go
package humandesign

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

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mshafiee/humandesign/ephemeris"
	"github.com/mshafiee/humandesign/gates"
	"github.com/mshafiee/humandesign/internal/observability"
	"github.com/mshafiee/humandesign/timeconv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var bangalore = BirthData{
	Date:     "1991-08-13",
	Time:     "13:31",
	Timezone: "Asia/Kolkata",
	Location: Location{Latitude: 12.9716, Longitude: 77.5946},
}

// noChiron behaves like the analytic engine without asteroid data.
type noChiron struct{ *ephemeris.Analytic }

func (e noChiron) Geocentric(jde float64, b ephemeris.Body) (ephemeris.Position, error) {
	if b == ephemeris.Chiron {
		return ephemeris.Position{}, errors.New("seas_18.se1 not found")
	}
	return e.Analytic.Geocentric(jde, b)
}

// fakeSource serves a scripted Sun and counts every query.
type fakeSource struct {
	sun     func(jd timeconv.JulianDay) float64
	posErr  error
	queries atomic.Int64
}

func (f *fakeSource) EngineName() string { return "fake" }

func (f *fakeSource) SunLongitude(jd timeconv.JulianDay) (float64, error) {
	f.queries.Add(1)
	return f.sun(jd), nil
}

func (f *fakeSource) Positions(jd timeconv.JulianDay, _ ephemeris.Frame) (ephemeris.Positions, error) {
	f.queries.Add(1)
	if f.posErr != nil {
		return nil, f.posErr
	}
	pos := ephemeris.Positions{}
	for i, b := range ephemeris.Mandatory {
		pos[b] = ephemeris.Position{Longitude: normalize(f.sun(jd) + float64(i)*30), Distance: 1}
	}
	pos[ephemeris.SouthNode] = ephemeris.Position{Longitude: normalize(pos[ephemeris.NorthNode].Longitude + 180)}
	return pos, nil
}

type countingRecorder struct {
	mu        sync.Mutex
	done      map[string]int
	fallbacks int
}

func (r *countingRecorder) CalculationDone(kind, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == nil {
		r.done = map[string]int{}
	}
	r.done[kind+"/"+outcome]++
}

func (r *countingRecorder) SolarArcFallback() {
	r.mu.Lock()
	r.fallbacks++
	r.mu.Unlock()
}

func analyticCalculator(opts ...Option) *Calculator {
	return New(ephemeris.NewProvider(ephemeris.NewAnalytic()), opts...)
}

func TestHumanDesignEndToEnd(t *testing.T) {
	chart, err := analyticCalculator().HumanDesign(context.Background(), bangalore)
	require.NoError(t, err)

	assert.Len(t, chart.PersonalityGates, 11)
	assert.Len(t, chart.DesignGates, 11)
	for _, gm := range []map[string]int{chart.PersonalityGates, chart.DesignGates} {
		for _, b := range ephemeris.Core {
			g, ok := gm[b.String()]
			require.True(t, ok, "%s missing", b)
			assert.GreaterOrEqual(t, g, 1)
			assert.LessOrEqual(t, g, 64)
		}
		assert.Contains(t, gm, Earth)
	}

	// Gates follow the positions they were derived from.
	for _, b := range ephemeris.Core {
		assert.Equal(t, gates.LongitudeToGate(chart.PersonalityPositions[b].Longitude), chart.PersonalityGates[b.String()], "%s", b)
		assert.Equal(t, gates.LongitudeToGate(chart.DesignPositions[b].Longitude), chart.DesignGates[b.String()], "%s", b)
	}
	pSun := chart.PersonalityPositions[ephemeris.Sun].Longitude
	dSun := chart.DesignPositions[ephemeris.Sun].Longitude
	assert.Equal(t, gates.LongitudeToGate(math.Mod(pSun+180, 360)), chart.PersonalityGates[Earth])
	assert.Equal(t, gates.LongitudeToGate(math.Mod(dSun+180, 360)), chart.DesignGates[Earth])

	// Birth is 08:01 UTC.
	assert.Equal(t, time.Date(1991, 8, 13, 8, 1, 0, 0, time.UTC), chart.BirthTime)
	assert.Equal(t, "Asia/Kolkata", chart.DesignTime.Location().String())
	assert.Equal(t, MethodSolarArc, chart.DesignMethod)
	assert.False(t, chart.IsFallback())
	days := chart.BirthTime.Sub(chart.DesignTime).Hours() / 24
	assert.True(t, days > 86 && days < 93, "design %.2f days before birth", days)

	assert.Less(t, math.Abs(arcDiff(pSun-DesignArc, dSun)), 0.01)
	assert.Equal(t, "88.0°", chart.SolarArc.SolarArcDifference)
	assert.Regexp(t, `^\d+\.\d{3}°$`, chart.SolarArc.PersonalitySunLongitude)
	assert.Regexp(t, `^1991-0[45]-\d\d \d\d:\d\d UTC$`, chart.SolarArc.DesignDate)
	assert.Equal(t, chart.DesignTime.UTC().Format("2006-01-02 15:04")+" UTC", chart.SolarArc.DesignDate)

	south := chart.PersonalityPositions[ephemeris.SouthNode].Longitude
	north := chart.PersonalityPositions[ephemeris.NorthNode].Longitude
	assert.Equal(t, math.Mod(north+180, 360), south)

	assert.Equal(t, "analytic", chart.Engine)
	assert.Equal(t, bangalore.Location, chart.Location)
	assert.NotEmpty(t, chart.ID)
}

func TestHumanDesignIsDeterministic(t *testing.T) {
	calc := analyticCalculator()
	a, err := calc.HumanDesign(context.Background(), bangalore)
	require.NoError(t, err)
	b, err := calc.HumanDesign(context.Background(), bangalore)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.PersonalityPositions, b.PersonalityPositions)
	assert.Equal(t, a.DesignPositions, b.DesignPositions)
	assert.Equal(t, a.DesignGates, b.DesignGates)
	assert.Equal(t, a.SolarArc, b.SolarArc)
	assert.True(t, a.DesignTime.Equal(b.DesignTime))

	// Maps are not shared between results.
	a.PersonalityGates[Earth] = 0
	assert.NotEqual(t, 0, b.PersonalityGates[Earth])
}

func TestHumanDesignWithoutChiron(t *testing.T) {
	calc := New(ephemeris.NewProvider(noChiron{ephemeris.NewAnalytic()}))
	chart, err := calc.HumanDesign(context.Background(), bangalore)
	require.NoError(t, err)

	_, ok := chart.PersonalityPositions.Get(ephemeris.Chiron)
	assert.False(t, ok)
	_, ok = chart.DesignPositions.Get(ephemeris.Chiron)
	assert.False(t, ok)
	assert.Len(t, chart.PersonalityGates, 11)

	raw, err := json.Marshal(chart)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "chiron")
}

func TestHumanDesignWithChiron(t *testing.T) {
	chart, err := analyticCalculator().HumanDesign(context.Background(), bangalore)
	require.NoError(t, err)
	_, ok := chart.PersonalityPositions.Get(ephemeris.Chiron)
	assert.True(t, ok)
	_, ok = chart.PersonalityGates["chiron"]
	assert.False(t, ok, "chiron carries no gate")
}

func TestHumanDesignRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(b *BirthData)
		field string
		msg   string
		cause error
	}{
		{"latitude", func(b *BirthData) { b.Latitude = 95 }, "latitude", "Latitude 95 must be between -90 and 90", nil},
		{"longitude", func(b *BirthData) { b.Longitude = -180.5 }, "longitude", "Longitude -180.5 must be between -180 and 180", nil},
		{"missing date", func(b *BirthData) { b.Date = "" }, "date", "", nil},
		{"impossible date", func(b *BirthData) { b.Date = "2023-02-30" }, "date", "", timeconv.ErrInvalidDate},
		{"bad clock", func(b *BirthData) { b.Time = "25:61" }, "time", "", timeconv.ErrInvalidClock},
		{"unknown zone", func(b *BirthData) { b.Timezone = "Mars/Olympus_Mons" }, "timezone", "", timeconv.ErrUnknownZone},
		{"date spelled timezone", func(b *BirthData) { b.Date = "timezone" }, "date", "", timeconv.ErrInvalidDate},
		{"year after range", func(b *BirthData) { b.Date = "17001-01-01" }, "date", "", ErrOutOfRange},
		{"year before range", func(b *BirthData) { b.Date = "-13001-06-01" }, "date", "", ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{sun: func(timeconv.JulianDay) float64 { return 0 }}
			rec := &countingRecorder{}
			calc := New(src, WithMetrics(rec))

			b := bangalore
			tt.edit(&b)
			chart, err := calc.HumanDesign(context.Background(), b)
			require.Error(t, err)
			assert.Nil(t, chart)
			assert.ErrorIs(t, err, ErrValidation)
			assert.True(t, IsValidation(err))

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			if tt.msg != "" {
				assert.EqualError(t, err, tt.msg)
			}
			if tt.cause != nil {
				assert.ErrorIs(t, err, tt.cause)
			}

			assert.Zero(t, src.queries.Load(), "no ephemeris query before validation")
			assert.Equal(t, 1, rec.done["human_design/invalid"])
		})
	}
}

func TestHumanDesignAcceptsSignedYears(t *testing.T) {
	// A uniform Sun keeps the solar arc search inside its window at any epoch.
	src := &fakeSource{sun: func(jd timeconv.JulianDay) float64 {
		return normalize(280 + float64(jd-timeconv.J2000)*360/365.2422)
	}}
	b := bangalore
	b.Date = "-0500-03-21"
	b.Timezone = ""

	chart, err := New(src).HumanDesign(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, -500, chart.BirthTime.Year())
	assert.Equal(t, MethodSolarArc, chart.DesignMethod)
	days := chart.BirthTime.Sub(chart.DesignTime).Hours() / 24
	assert.InDelta(t, 88*365.2422/360, days, 0.01)
}

func TestHumanDesignFallback(t *testing.T) {
	var logs bytes.Buffer
	rec := &countingRecorder{}
	src := &fakeSource{sun: func(timeconv.JulianDay) float64 { return 123.4 }}
	calc := New(src,
		WithMetrics(rec),
		WithLogger(zerolog.New(&logs).Level(zerolog.WarnLevel)),
	)

	chart, err := calc.HumanDesign(context.Background(), bangalore)
	require.NoError(t, err)

	assert.Equal(t, MethodFixedOffset, chart.DesignMethod)
	assert.True(t, chart.IsFallback())
	assert.Equal(t, MethodFixedOffset, chart.SolarArc.Method)
	loc, _ := time.LoadLocation("Asia/Kolkata")
	want := time.Date(1991, 5, 17, 13, 31, 0, 0, loc)
	assert.True(t, want.Equal(chart.DesignTime), "design time %s", chart.DesignTime)
	assert.Equal(t, "1991-05-17 13:31", chart.DesignTime.Format("2006-01-02 15:04"))
	assert.Equal(t, "0.0°", chart.SolarArc.SolarArcDifference)

	assert.Equal(t, 1, rec.fallbacks)
	assert.Equal(t, 1, rec.done["human_design/ok"])
	assert.Contains(t, logs.String(), "solar arc search did not converge")
	assert.Contains(t, logs.String(), `"calc_id":"`+chart.ID+`"`)
}

func TestHumanDesignPropagatesEphemerisErrors(t *testing.T) {
	cause := &ValidationError{Field: "body", Value: "mars", Msg: "Failed to calculate mars position: boom"}
	rec := &countingRecorder{}
	src := &fakeSource{sun: func(timeconv.JulianDay) float64 { return 0 }, posErr: cause}

	_, err := New(src, WithMetrics(rec)).HumanDesign(context.Background(), bangalore)
	assert.Same(t, cause, err)

	plain := errors.New("disk gone")
	src.posErr = plain
	_, err = New(src, WithMetrics(rec)).HumanDesign(context.Background(), bangalore)
	assert.Same(t, plain, err)
	assert.Equal(t, 1, rec.done["human_design/error"])
}

func TestHumanDesignPrometheus(t *testing.T) {
	m, err := observability.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	p := ephemeris.NewProvider(noChiron{ephemeris.NewAnalytic()}, ephemeris.WithObserver(m))
	calc := New(p, WithMetrics(m))

	_, err = calc.HumanDesign(context.Background(), bangalore)
	require.NoError(t, err)
	bad := bangalore
	bad.Latitude = -91
	_, err = calc.HumanDesign(context.Background(), bad)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues(KindHumanDesign, OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues(KindHumanDesign, OutcomeInvalid)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SolarArcFallbacks))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OmittedBodies.WithLabelValues("chiron")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.EphemerisQueries))
}

func TestHumanDesignSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	calc := analyticCalculator(WithTracer(tp.Tracer("test")))
	chart, err := calc.HumanDesign(context.Background(), bangalore)
	require.NoError(t, err)

	names := map[string]int{}
	var root sdktrace.ReadOnlySpan
	for _, s := range sr.Ended() {
		names[s.Name()]++
		if s.Name() == "humandesign.HumanDesign" {
			root = s
		}
	}
	assert.Equal(t, map[string]int{
		"humandesign.HumanDesign": 1,
		"ephemeris.positions":     2,
		"solararc.find":           1,
	}, names)
	require.NotNil(t, root)

	attrs := map[string]string{}
	for _, kv := range root.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, chart.ID, attrs["calc.id"])
	assert.Equal(t, "analytic", attrs["ephemeris.engine"])
	assert.Equal(t, "solar_arc", attrs["design.method"])

	for _, s := range sr.Ended() {
		if s.Name() != "humandesign.HumanDesign" {
			assert.Equal(t, root.SpanContext().SpanID(), s.Parent().SpanID(), s.Name())
		}
	}
}

func TestVedic(t *testing.T) {
	chart, err := analyticCalculator().Vedic(context.Background(), bangalore)
	require.NoError(t, err)

	moon, ok := chart.Positions.Get(ephemeris.Moon)
	require.True(t, ok)
	assert.Equal(t, gates.LongitudeToNakshatra(moon.Longitude), chart.MoonNakshatra.Nakshatra)
	assert.Equal(t, moon.Longitude, chart.MoonNakshatra.Longitude)
	assert.Contains(t, gates.Nakshatras, chart.MoonNakshatra.Name)
	assert.InDelta(t, 23.73, chart.Ayanamsa, 0.02)

	tropical, err := analyticCalculator().HumanDesign(context.Background(), bangalore)
	require.NoError(t, err)
	trop := tropical.PersonalityPositions[ephemeris.Sun].Longitude
	sid := chart.Positions[ephemeris.Sun].Longitude
	assert.InDelta(t, chart.Ayanamsa, normalize(trop-sid), 1e-6)
}

func TestVedicRejectsBadInput(t *testing.T) {
	src := &fakeSource{sun: func(timeconv.JulianDay) float64 { return 0 }}
	b := bangalore
	b.Latitude = 95
	_, err := New(src).Vedic(context.Background(), b)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, src.queries.Load())
}

func TestChartJSON(t *testing.T) {
	chart, err := analyticCalculator().HumanDesign(context.Background(), bangalore)
	require.NoError(t, err)

	raw, err := json.Marshal(chart)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, key := range []string{
		"personality_gates", "design_gates", "personality_positions", "design_positions",
		"birth_datetime", "design_datetime", "design_method", "solar_arc_details", "engine",
	} {
		assert.Contains(t, doc, key)
	}

	var positions map[string]ephemeris.Position
	require.NoError(t, json.Unmarshal(doc["personality_positions"], &positions))
	assert.Contains(t, positions, "sun")
	assert.Contains(t, positions, "south_node")

	var details map[string]any
	require.NoError(t, json.Unmarshal(doc["solar_arc_details"], &details))
	assert.Equal(t, "solar_arc", details["method"])
	assert.Equal(t, "88.0°", details["solar_arc_difference"])
}

func TestCalculatorConcurrentUse(t *testing.T) {
	calc := analyticCalculator()
	want, err := calc.HumanDesign(context.Background(), bangalore)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := calc.HumanDesign(context.Background(), bangalore)
			if assert.NoError(t, err) {
				assert.Equal(t, want.PersonalityGates, got.PersonalityGates)
				assert.Equal(t, want.DesignGates, got.DesignGates)
			}
		}()
	}
	wg.Wait()
}

func TestBirthDataFromTime(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	b := BirthDataFromTime(time.Date(1970, 1, 2, 3, 4, 5, 0, loc), 52.52, 13.405)
	assert.Equal(t, BirthData{
		Date:     "1970-01-02",
		Time:     "03:04:05",
		Timezone: "Europe/Berlin",
		Location: Location{Latitude: 52.52, Longitude: 13.405},
	}, b)

	fixed := time.Date(1970, 1, 2, 3, 4, 5, 0, time.FixedZone("XYZ", 3600))
	b = BirthDataFromTime(fixed, 0, 0)
	assert.Equal(t, "02:04:05", b.Time)
	assert.Empty(t, b.Timezone)

	_, err = b.Validate()
	assert.NoError(t, err)
}
