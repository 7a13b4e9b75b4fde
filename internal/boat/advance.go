package boat

import (
	"math"
	"math/rand"
	"time"

	"github.com/ls4096/sailnavsim-core/internal/env"
	"github.com/ls4096/sailnavsim-core/pkg/geo"
)

const (
	// Vessels this close to a pole are stopped before anything strange
	// can happen to the geometry.
	forbiddenLat = 0.0001

	// Base distance ahead of a landed boat probed for water, in metres;
	// the 10 m probe steps run one step past it, to 110 m.
	moveToWaterDistance = 100.0

	// Fixed speed while crawling off land toward water.
	launchSpeed = 0.5

	knotsPerMPerS = 1.943844

	basicDamageIncThresh = 45.0 / knotsPerMPerS
	damageDecThresh      = 25.0 / knotsPerMPerS

	// 0.25% (of the gap to max damage) per hour per knot squared above
	// threshold, and 0.25% repaired per hour per knot below threshold.
	damageTakeFactor   = 0.25 * knotsPerMPerS * knotsPerMPerS / 3600.0
	damageRepairFactor = 0.25 * knotsPerMPerS / 3600.0

	launchCountMax = 10
)

// Physics advances vessels one second at a time against an environment.
// It is owned by the simulation goroutine; the RNG is not safe for
// concurrent use.
type Physics struct {
	env    Environment
	solver AdvancedSolver
	rng    *rand.Rand
}

// NewPhysics returns a Physics bound to the given environment, advanced
// hull solver and process RNG.
func NewPhysics(e Environment, solver AdvancedSolver, rng *rand.Rand) *Physics {
	return &Physics{env: e, solver: solver, rng: rng}
}

// Advance moves the vessel through one second of simulated time. The time
// argument feeds magnetic declination lookups only.
func (p *Physics) Advance(b *Vessel, now time.Time) {
	if b.Stop {
		// Stopped, so nowhere to go; possibly fix some damage.
		if b.Damage > 0.0 {
			wx := p.env.WeatherAt(b.Pos, true)
			p.updateDamage(b, geo.Vec{Angle: wx.Wind.Angle, Mag: wx.WindGust}, false)
		}
		return
	}

	if b.Pos.Lat >= 90.0-forbiddenLat || b.Pos.Lat <= -90.0+forbiddenLat {
		// Very close to one of the poles, so stop in order to prevent
		// weird things from happening.
		stopVessel(b)
		return
	}

	if b.MovingToSea {
		if p.env.IsWater(b.Pos) {
			// We're on water, so proceed normally.
			b.MovingToSea = false

			if b.SetImmediateDesiredCourse {
				// Probably the first time the boat is being started,
				// so take up the desired course immediately.
				b.V.Angle = b.DesiredCourseTrue(p.env, now)
				b.SetImmediateDesiredCourse = false
			}
		} else {
			// Not on water, so check that there is water ahead of us.
			if p.IsHeadingTowardWater(b, now) {
				b.V.Angle = b.DesiredCourseTrue(p.env, now)
				b.V.Mag = launchSpeed
				b.LeewaySpeed = 0.0

				b.Pos = b.Pos.Advance(b.V)
			} else {
				stopVessel(b)
			}

			return
		}
	}

	wx := p.env.WeatherAt(b.Pos, true)
	od, odValid := p.env.OceanAt(b.Pos)
	wd, wdValid := p.env.WaveAt(b.Pos)

	gust := geo.Vec{Angle: wx.Wind.Angle, Mag: wx.WindGust}
	if odValid {
		// Wind over moving water: what the boat feels is wind plus
		// current.
		wx.Wind = geo.Add(wx.Wind, od.Current)
		gust = geo.Add(gust, od.Current)
	}

	safCommon := oceanIceFactor(odValid, od) * p.waveFactor(b, wdValid, wd)

	if !IsAdvancedType(b.Type) && b.SailsDown {
		// Sails down, so the boat drifts downwind at 1/10 of wind speed.
		b.V.Angle = geo.Wrap360(wx.Wind.Angle + 180.0)

		// With sails down no additional damage is taken, but repair
		// still happens.
		p.updateDamage(b, gust, false)

		// NOTE: While sails are down, the damage speed adjustment
		// factor intentionally does not apply.
		b.V.Mag = wx.Wind.Mag * 0.1 * safCommon
	} else {
		takeDamage := true
		if IsAdvancedType(b.Type) {
			takeDamage = b.SailArea > 0.0
		}

		p.updateDamage(b, gust, takeDamage)
		p.updateCourse(b, now)
		p.updateVelocity(b, wx, safCommon)
	}

	// Assemble the over-ground vector: water velocity, damped current
	// while freshly launched, and any leeway abeam of the heading.
	ground := b.V
	if odValid {
		cur := od.Current
		cur.Mag *= float64(launchCountMax-b.StartingFromLandCount) / float64(launchCountMax)
		ground = geo.Add(ground, cur)
	}
	if b.LeewaySpeed != 0.0 {
		lee := geo.Vec{Angle: geo.Wrap360(b.V.Angle + 90.0), Mag: b.LeewaySpeed}
		ground = geo.Add(ground, lee)
	}
	ground = ground.Normalize()
	b.VGround = ground

	if b.StartingFromLandCount > 0 {
		b.StartingFromLandCount--
	}

	b.Pos = b.Pos.Advance(ground)
	b.DistanceTravelled += math.Abs(ground.Mag)

	// Check if we're still in water.
	if !p.env.IsWater(b.Pos) {
		stopVessel(b)
		b.StartingFromLandCount = launchCountMax
	}
}

// IsHeadingTowardWater samples 10 m steps along the desired true course
// and reports whether any sample within the probe distance lands on water.
func (p *Physics) IsHeadingTowardWater(b *Vessel, now time.Time) bool {
	pos := b.Pos
	v := geo.Vec{Angle: b.DesiredCourseTrue(p.env, now), Mag: 10.0}

	for d := 0.0; d <= moveToWaterDistance+10.0; d += 10.0 {
		if p.env.IsWater(pos) {
			return true
		}
		pos = pos.Advance(v)
	}

	return false
}

func (p *Physics) updateCourse(b *Vessel, now time.Time) {
	desired := b.DesiredCourseTrue(p.env, now)

	courseDiff := geo.CompassDiff(b.V.Angle, desired)
	rate := CourseChangeRate(b.Type, p.solver)

	switch {
	case math.Abs(courseDiff) <= rate:
		// Desired course is close enough to current course.
		b.V.Angle = desired
		return

	case courseDiff < 0.0 && courseDiff >= -179.0:
		// Turn left.
		b.V.Angle -= rate

	case courseDiff > 0.0 && courseDiff <= 179.0:
		// Turn right.
		b.V.Angle += rate

	default:
		// Within a degree of being opposite where we want to go,
		// so choose a direction at random.
		if p.rng.Intn(2) == 0 {
			b.V.Angle -= rate
		} else {
			b.V.Angle += rate
		}
	}

	b.V.Angle = geo.Wrap360(b.V.Angle)
}

func (p *Physics) updateVelocity(b *Vessel, wx env.WeatherData, safCommon float64) {
	angleFromWind := geo.CompassDiff(wx.Wind.Angle, b.V.Angle)

	if !IsAdvancedType(b.Type) {
		spd := WindResponseSpeed(wx.Wind.Mag, angleFromWind, b.Type) *
			safCommon *
			damageSpeedFactor(b)

		inertia := SpeedChangeResponse(b.Type)
		b.V.Mag = (inertia*b.V.Mag + spd) / (inertia + 1.0)
		return
	}

	saf := safCommon
	if b.SailArea > 0.0 && saf < 0.01 {
		saf = 0.01
	}

	out, err := p.solver.Update(b.Type-AdvancedTypeOffset, AdvancedInput{
		WindAngle:      -angleFromWind,
		WindSpeed:      wx.Wind.Mag,
		BoatSpeedAhead: b.V.Mag / saf,
		BoatSpeedAbeam: b.LeewaySpeed / saf,
		SailArea:       b.SailArea,
	})
	if err != nil {
		b.V.Mag = 0.0
		b.LeewaySpeed = 0.0
		b.HeelingAngle = 0.0
		return
	}

	b.V.Mag = out.BoatSpeedAhead * saf
	b.LeewaySpeed = out.BoatSpeedAbeam * saf
	b.HeelingAngle = out.HeelingAngle
}

func (p *Physics) updateDamage(b *Vessel, gust geo.Vec, takeDamage bool) {
	if b.Flags&FlagTakesDamage == 0 {
		return
	}

	if b.Flags&FlagDamageApparentWind != 0 {
		// Damage responds to the wind as felt on deck.
		gust = geo.Add(gust, b.V)
		if b.LeewaySpeed != 0.0 {
			gust = geo.Add(gust, geo.Vec{Angle: geo.Wrap360(b.V.Angle + 90.0), Mag: b.LeewaySpeed})
		}
	}

	windGust := gust.Mag
	incThresh := p.damageIncThresh(b.Type)

	if windGust < damageDecThresh {
		if b.Damage > 0.0 {
			// Repair damage.
			b.Damage -= (damageDecThresh - windGust) * damageRepairFactor
			if b.Damage < 0.0 {
				b.Damage = 0.0
			}
		}
	} else if windGust > incThresh && takeDamage && b.Damage < 100.0 {
		// Take damage.
		threshDiff := windGust - incThresh

		b.Damage += (100.0 - b.Damage) * (threshDiff * threshDiff * damageTakeFactor * 0.01)
		if b.Damage > 100.0 {
			b.Damage = 100.0
		}
	}
}

func (p *Physics) damageIncThresh(boatType int) float64 {
	if IsAdvancedType(boatType) && p.solver != nil {
		return p.solver.DamageWindGustThreshold(boatType - AdvancedTypeOffset)
	}
	return basicDamageIncThresh
}

func (p *Physics) waveFactor(b *Vessel, valid bool, wd env.WaveData) float64 {
	if b.Flags&FlagWaveSpeedEffect == 0 || !valid {
		return 1.0
	}
	r := WaveEffectResistance(b.Type, p.solver)
	return math.Exp(-wd.Height * wd.Height / r)
}

func stopVessel(b *Vessel) {
	b.Stop = true
	b.V.Mag = 0.0
	b.VGround.Mag = 0.0
	b.LeewaySpeed = 0.0
	b.HeelingAngle = 0.0
}

func oceanIceFactor(valid bool, od env.OceanData) float64 {
	if !valid {
		return 1.0
	}
	return 1.0 - od.Ice/100.0
}

func damageSpeedFactor(b *Vessel) float64 {
	if b.Flags&FlagTakesDamage == 0 {
		return 1.0
	}
	return 1.0 - b.Damage*0.01
}
