// Package sight models a navigator's attempt to take a celestial sight:
// cloud cover may hide the sky, the Sun is preferred while up, and during
// nautical twilight a random star is tried instead.
package sight

import (
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/ls4096/sailnavsim-core/internal/env"
	"github.com/ls4096/sailnavsim-core/pkg/geo"
)

// Sun altitude bands, in degrees.
const (
	altTooDark   = -12.0 // horizon invisible below this
	altTooBright = -6.0  // stars invisible above this
)

const starAttemptsMax = 20

// Sight is one successful celestial observation.
type Sight struct {
	Obj int
	Az  float64
	Alt float64
}

// Shooter attempts sights against a celestial ephemeris. The RNG is owned
// by the simulation goroutine and is not safe for concurrent use.
type Shooter struct {
	cel env.Celestial
	rng *rand.Rand
	log zerolog.Logger
}

// NewShooter returns a Shooter drawing randomness from rng.
func NewShooter(cel env.Celestial, rng *rand.Rand, log zerolog.Logger) *Shooter {
	return &Shooter{cel: cel, rng: rng, log: log}
}

// Shoot attempts a sight at the given time and position. Cloud cover is a
// percentage; pressure and temperature feed the refraction model. The
// second return is false when no sight was possible.
func (s *Shooter) Shoot(t time.Time, pos geo.Pos, cloudPercent int, pressure, temp float64) (Sight, bool) {
	if s.obscuredByCloud(cloudPercent) {
		return Sight{}, false
	}

	sun, err := s.cel.ObjectHorizontal(env.ObjSun, t, pos, pressure, temp)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to compute Sun coordinates")
		return Sight{}, false
	}

	switch {
	case sun.Alt > 0.0:
		// Sun is up, so shoot the Sun.
		return Sight{Obj: env.ObjSun, Az: sun.Az, Alt: sun.Alt}, true

	case sun.Alt < altTooDark:
		// Too dark to see the horizon.
		return Sight{}, false

	case sun.Alt > altTooBright:
		// Sun is down but it's still too bright for stars.
		return Sight{}, false
	}

	// Nautical twilight: shoot a randomly chosen star above the horizon.
	for attempts := 0; attempts < starAttemptsMax; attempts++ {
		star := s.rng.Intn(env.ObjPolaris) + 1

		hc, err := s.cel.ObjectHorizontal(star, t, pos, pressure, temp)
		if err != nil {
			s.log.Error().Err(err).Int("obj", star).Msg("Failed to compute star coordinates")
			return Sight{}, false
		}

		if hc.Alt < 0.0 {
			continue
		}

		return Sight{Obj: star, Az: hc.Az, Alt: hc.Alt}, true
	}

	return Sight{}, false
}

// ApplyWaveEffect perturbs a sight taken from a deck working in a seaway.
// The azimuth and altitude share one random draw scaled differently;
// altitude reflecting past the zenith folds back, and a sight pushed
// below the horizon is lost.
func (s *Shooter) ApplyWaveEffect(sg Sight, waveHeight, resistance float64) (Sight, bool) {
	u1 := s.rng.Float64()*2.0 - 1.0
	u2 := s.rng.Float64()*2.0 - 1.0
	f := u1 * u2 * waveHeight / resistance

	sg.Az = geo.Wrap360(sg.Az + 100.0*f)
	sg.Alt += 1.666667 * f

	if sg.Alt > 90.0 {
		sg.Alt = 180.0 - sg.Alt
	}
	if sg.Alt < 0.0 {
		return Sight{}, false
	}

	return sg, true
}

func (s *Shooter) obscuredByCloud(cloudPercent int) bool {
	adjusted := int(math.Sqrt(float64(cloudPercent * 100)))
	return s.rng.Intn(100)+1 <= adjusted
}
