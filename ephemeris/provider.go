// ./ephemeris/provider.go
package ephemeris

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
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/mshafiee/humandesign/timeconv"
	"github.com/rs/zerolog"
)

// Observer receives per-query timings and optional-body omissions.
type Observer interface {
	ObserveQuery(engine string, d time.Duration)
	OptionalOmitted(body Body)
}

type nopObserver struct{}

func (nopObserver) ObserveQuery(string, time.Duration) {}
func (nopObserver) OptionalOmitted(Body)               {}

// Provider turns an Engine into full position sets for one instant. The
// reference frame is chosen per call, so a Provider may be shared between
// tropical and sidereal callers.
type Provider struct {
	engine    Engine
	serialize bool
	mu        sync.Mutex
	log       zerolog.Logger
	obs       Observer
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger used for omitted optional bodies.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Provider) { p.log = l }
}

// WithObserver sets the metrics sink.
func WithObserver(o Observer) Option {
	return func(p *Provider) {
		if o != nil {
			p.obs = o
		}
	}
}

// NewProvider wraps an engine.
//
// Parameters:
//   - engine: Analytic, DE or any other Engine. Engines that do not report
//     themselves safe for concurrent use are called under a mutex.
//   - opts: WithLogger, WithObserver.
//
// Returns:
//   - *Provider: Ready for concurrent use.
func NewProvider(engine Engine, opts ...Option) *Provider {
	p := &Provider{
		engine:    engine,
		serialize: true,
		log:       zerolog.Nop(),
		obs:       nopObserver{},
	}
	if r, ok := engine.(concurrencyReporter); ok {
		p.serialize = !r.ConcurrentSafe()
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Engine returns the wrapped engine.
func (p *Provider) Engine() Engine { return p.engine }

// EngineName returns the wrapped engine's name.
func (p *Provider) EngineName() string { return p.engine.Name() }

// Positions queries every body at one instant.
//
// Parameters:
//   - jd: Julian Day on the UT scale. ΔT is applied before the engine query.
//   - frame: Tropical or Sidereal (Lahiri).
//
// Returns:
//   - Positions: Every mandatory body, the South Node derived from the North
//     Node, and the optional bodies that succeeded.
//   - error: A *ValidationError naming the first mandatory body that failed.
//     It matches ErrValidation and the engine's own error.
func (p *Provider) Positions(jd timeconv.JulianDay, frame Frame) (Positions, error) {
	jde := jd.TT()
	out := make(Positions, len(Mandatory)+len(Optional)+1)

	for _, b := range Mandatory {
		pos, err := p.query(jde, b)
		if err != nil {
			return nil, bodyError(b, err)
		}
		out[b] = inFrame(jde, pos, frame)
	}

	south := out[NorthNode]
	south.Longitude = normalizeDegrees(south.Longitude + 180)
	out[SouthNode] = south

	for _, b := range Optional {
		pos, err := p.query(jde, b)
		if err != nil {
			p.log.Debug().Err(err).Str("body", b.String()).Str("engine", p.engine.Name()).Msg("optional body omitted")
			p.obs.OptionalOmitted(b)
			continue
		}
		out[b] = inFrame(jde, pos, frame)
	}
	return out, nil
}

// SunLongitude returns the tropical apparent longitude of the Sun.
//
// Parameters:
//   - jd: Julian Day on the UT scale.
//
// Returns:
//   - float64: Longitude in degrees, in [0, 360).
//   - error: A *ValidationError for the Sun when the engine fails.
func (p *Provider) SunLongitude(jd timeconv.JulianDay) (float64, error) {
	pos, err := p.query(jd.TT(), Sun)
	if err != nil {
		return 0, bodyError(Sun, err)
	}
	return pos.Longitude, nil
}

func (p *Provider) query(jde float64, b Body) (Position, error) {
	if p.serialize {
		p.mu.Lock()
		defer p.mu.Unlock()
	}
	start := time.Now()
	pos, err := p.engine.Geocentric(jde, b)
	p.obs.ObserveQuery(p.engine.Name(), time.Since(start))
	if err == nil && (math.IsNaN(pos.Longitude) || math.IsInf(pos.Longitude, 0)) {
		return Position{}, fmt.Errorf("%w at JDE %.6f", ErrNonFinite, jde)
	}
	return pos, err
}

func inFrame(jde float64, pos Position, frame Frame) Position {
	if frame == Sidereal {
		return toSidereal(jde, pos)
	}
	return pos
}

func bodyError(b Body, err error) error {
	return &ValidationError{
		Field: "body",
		Value: b.String(),
		Msg:   fmt.Sprintf("Failed to calculate %s position: %v", b, err),
		Err:   err,
	}
}
