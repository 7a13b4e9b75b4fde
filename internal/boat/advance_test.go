package boat

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ls4096/sailnavsim-core/internal/env"
	"github.com/ls4096/sailnavsim-core/pkg/geo"
)

// fakeEnv is a minimal controllable environment for physics tests.
type fakeEnv struct {
	wind   geo.Vec
	gust   float64
	ocean  *env.OceanData
	wave   *env.WaveData
	water  func(geo.Pos) bool
	magdec float64
}

func (f *fakeEnv) WeatherAt(p geo.Pos, windOnly bool) env.WeatherData {
	return env.WeatherData{Wind: f.wind, WindGust: f.gust}
}

func (f *fakeEnv) OceanAt(p geo.Pos) (env.OceanData, bool) {
	if f.ocean == nil {
		return env.OceanData{}, false
	}
	return *f.ocean, true
}

func (f *fakeEnv) WaveAt(p geo.Pos) (env.WaveData, bool) {
	if f.wave == nil {
		return env.WaveData{}, false
	}
	return *f.wave, true
}

func (f *fakeEnv) IsWater(p geo.Pos) bool {
	if f.water == nil {
		return true
	}
	return f.water(p)
}

func (f *fakeEnv) MagDec(p geo.Pos, t time.Time) float64 {
	return f.magdec
}

func newTestPhysics(e *fakeEnv) *Physics {
	return NewPhysics(e, NewDefaultAdvancedSolver(), rand.New(rand.NewSource(1)))
}

var testTime = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func startedVessel(lat, lon float64, boatType int, flags Flags) *Vessel {
	b := New(lat, lon, boatType, flags)
	b.Stop = false
	b.SetImmediateDesiredCourse = false
	return b
}

func TestCourseSlew(t *testing.T) {
	// Type 0 turns at 3 deg/s: from 0 toward 90 takes exactly 30 ticks.
	e := &fakeEnv{}
	p := newTestPhysics(e)

	b := startedVessel(0, 0, TypeSailNavSimClassic, 0)
	b.DesiredCourse = 90.0

	for i := 0; i < 29; i++ {
		p.Advance(b, testTime)
	}
	assert.InDelta(t, 87.0, b.V.Angle, 1e-9)

	p.Advance(b, testTime)
	assert.Equal(t, 90.0, b.V.Angle)

	p.Advance(b, testTime)
	assert.Equal(t, 90.0, b.V.Angle, "heading must hold once reached")
}

func TestCourseSlewWrapsLeft(t *testing.T) {
	e := &fakeEnv{}
	p := newTestPhysics(e)

	b := startedVessel(0, 0, TypeSailNavSimClassic, 0)
	b.V.Angle = 10.0
	b.DesiredCourse = 350.0

	p.Advance(b, testTime)
	assert.InDelta(t, 7.0, b.V.Angle, 1e-9)
}

func TestCourseMagnetic(t *testing.T) {
	e := &fakeEnv{magdec: -10.0}
	p := newTestPhysics(e)

	b := startedVessel(0, 0, TypeSailNavSimClassic, 0)
	b.V.Angle = 80.0
	b.DesiredCourse = 90.0
	b.CourseMagnetic = true

	// Desired true course is 80; already there.
	p.Advance(b, testTime)
	assert.Equal(t, 80.0, b.V.Angle)
}

func TestPoleGuard(t *testing.T) {
	e := &fakeEnv{}
	p := newTestPhysics(e)

	b := startedVessel(89.9999, 0, TypeSailNavSimClassic, 0)
	b.V.Mag = 2.0
	pos := b.Pos

	p.Advance(b, testTime)

	assert.True(t, b.Stop)
	assert.Equal(t, 0.0, b.V.Mag)
	assert.Equal(t, pos, b.Pos, "pole guard must not move the vessel")
}

func TestStoppedVesselOnlyRepairs(t *testing.T) {
	e := &fakeEnv{gust: 40.0} // way above the take threshold
	p := newTestPhysics(e)

	b := New(0, 0, TypeSailNavSimClassic, FlagTakesDamage)
	b.Damage = 50.0
	pos := b.Pos

	p.Advance(b, testTime)

	assert.Equal(t, pos, b.Pos)
	assert.Equal(t, 50.0, b.Damage, "stopped vessels never take damage")

	e.gust = 1.0
	p.Advance(b, testTime)
	assert.Less(t, b.Damage, 50.0, "calm gust repairs damage while stopped")
}

func TestSailsDownDrift(t *testing.T) {
	e := &fakeEnv{wind: geo.Vec{Angle: 0.0, Mag: 10.0}, gust: 40.0}
	p := newTestPhysics(e)

	b := startedVessel(0, 0, TypeSailNavSimClassic, FlagTakesDamage)
	b.SailsDown = true

	p.Advance(b, testTime)

	assert.Equal(t, 180.0, b.V.Angle)
	assert.InDelta(t, 1.0, b.V.Mag, 1e-9)
	assert.Equal(t, 0.0, b.Damage, "sails down never takes damage")
	assert.Greater(t, b.DistanceTravelled, 0.0)
}

func TestSailsDownIgnoresDamageSpeedFactor(t *testing.T) {
	e := &fakeEnv{wind: geo.Vec{Angle: 0.0, Mag: 10.0}, gust: 20.0}
	p := newTestPhysics(e)

	b := startedVessel(0, 0, TypeSailNavSimClassic, FlagTakesDamage)
	b.SailsDown = true
	b.Damage = 90.0

	p.Advance(b, testTime)
	assert.InDelta(t, 1.0, b.V.Mag, 1e-9, "damage must not slow a drifting hull")
}

func TestDamageAccumulationOverAnHour(t *testing.T) {
	gust := basicDamageIncThresh + 10.0/knotsPerMPerS
	e := &fakeEnv{gust: gust}
	p := newTestPhysics(e)

	b := startedVessel(0, 0, TypeSailNavSimClassic, FlagTakesDamage)

	prev := 0.0
	for i := 0; i < 3600; i++ {
		p.Advance(b, testTime)
		require.GreaterOrEqual(t, b.Damage, prev, "damage must be non-decreasing under steady gust")
		require.LessOrEqual(t, b.Damage, 100.0)
		prev = b.Damage
	}

	// Closed form: d_{t+1} = d_t + (100-d_t)*delta.
	delta := (10.0 / knotsPerMPerS) * (10.0 / knotsPerMPerS) * damageTakeFactor * 0.01
	want := 100.0 * (1.0 - math.Pow(1.0-delta, 3600))
	assert.InDelta(t, want, b.Damage, 0.5)
	assert.Greater(t, b.Damage, 0.0)
}

func TestDamageRepairBelowThreshold(t *testing.T) {
	e := &fakeEnv{gust: 5.0}
	p := newTestPhysics(e)

	b := startedVessel(0, 0, TypeSailNavSimClassic, FlagTakesDamage)
	b.Damage = 1.0

	for i := 0; i < 3600; i++ {
		p.Advance(b, testTime)
	}

	// 25 kt threshold, gust ~9.7 kt, so ~15.3 kt short: roughly 3.8%/h repaired.
	assert.Equal(t, 0.0, b.Damage)
}

func TestNoDamageWithoutFlag(t *testing.T) {
	e := &fakeEnv{gust: 50.0}
	p := newTestPhysics(e)

	b := startedVessel(0, 0, TypeSailNavSimClassic, 0)
	for i := 0; i < 100; i++ {
		p.Advance(b, testTime)
	}
	assert.Equal(t, 0.0, b.Damage)
}

func TestGroundingStopsAndArmsLaunchCounter(t *testing.T) {
	// Water only west of lon 0.001: the boat sails east onto land.
	e := &fakeEnv{
		wind:  geo.Vec{Angle: 270.0, Mag: 10.0},
		water: func(p geo.Pos) bool { return p.Lon < 0.001 },
	}
	p := newTestPhysics(e)

	b := startedVessel(0, 0, TypeSailNavSimClassic, 0)
	b.V.Angle = 90.0
	b.DesiredCourse = 90.0

	for i := 0; i < 120 && !b.Stop; i++ {
		p.Advance(b, testTime)
	}

	require.True(t, b.Stop, "boat should run aground")
	assert.Equal(t, launchCountMax, b.StartingFromLandCount)
	assert.Equal(t, 0.0, b.V.Mag)
}

func TestMovingToSeaCrawl(t *testing.T) {
	// Land below lat 0.0005, water above.
	e := &fakeEnv{water: func(p geo.Pos) bool { return p.Lat > 0.0005 }}
	p := newTestPhysics(e)

	b := startedVessel(0, 0, TypeSailNavSimClassic, 0)
	b.MovingToSea = true
	b.DesiredCourse = 0.0

	p.Advance(b, testTime)

	assert.InDelta(t, launchSpeed, b.V.Mag, 1e-9)
	assert.Greater(t, b.Pos.Lat, 0.0)
	assert.True(t, b.MovingToSea, "still on land")
}

func TestMovingToSeaNoWaterAheadStops(t *testing.T) {
	e := &fakeEnv{water: func(p geo.Pos) bool { return false }}
	p := newTestPhysics(e)

	b := startedVessel(0, 0, TypeSailNavSimClassic, 0)
	b.MovingToSea = true

	p.Advance(b, testTime)
	assert.True(t, b.Stop)
}

func TestIsHeadingTowardWater(t *testing.T) {
	// Water starts 50 m north of the equator.
	e := &fakeEnv{water: func(p geo.Pos) bool { return p.Lat > 0.00045 }}
	p := newTestPhysics(e)

	b := New(0, 0, TypeSailNavSimClassic, 0)
	b.DesiredCourse = 0.0
	assert.True(t, p.IsHeadingTowardWater(b, testTime))

	b.DesiredCourse = 180.0
	assert.False(t, p.IsHeadingTowardWater(b, testTime))
}

func TestOceanCurrentCarriesBoat(t *testing.T) {
	e := &fakeEnv{
		ocean: &env.OceanData{Current: geo.Vec{Angle: 90.0, Mag: 1.0}},
	}
	p := newTestPhysics(e)

	b := startedVessel(0, 0, TypeSailNavSimClassic, 0)

	p.Advance(b, testTime)

	// The current is also added to the calm wind, which gives a 1 m/s
	// beam breeze that moves the boat slightly north in the first tick,
	// so the ground track sits a little left of due east.
	assert.InDelta(t, 88.36, b.VGround.Angle, 1.0)
	assert.InDelta(t, 1.0, b.VGround.Mag, 0.05)
	assert.Greater(t, b.Pos.Lon, 0.0)
}

func TestLaunchDampingScalesCurrent(t *testing.T) {
	e := &fakeEnv{
		ocean: &env.OceanData{Current: geo.Vec{Angle: 90.0, Mag: 1.0}},
	}
	p := newTestPhysics(e)

	b := startedVessel(0, 0, TypeSailNavSimClassic, 0)
	b.StartingFromLandCount = 5

	p.Advance(b, testTime)

	assert.InDelta(t, 0.5, b.VGround.Mag, 0.05, "current damped to (10-5)/10")
	assert.Equal(t, 4, b.StartingFromLandCount)
}

func TestIceSlowsBoat(t *testing.T) {
	e := &fakeEnv{
		wind:  geo.Vec{Angle: 0.0, Mag: 10.0},
		ocean: &env.OceanData{Ice: 50.0},
	}
	p := newTestPhysics(e)

	clear := startedVessel(0, 0, TypeSailNavSimClassic, 0)
	clear.V.Angle, clear.DesiredCourse = 90.0, 90.0
	iced := startedVessel(0, 0, TypeSailNavSimClassic, 0)
	iced.V.Angle, iced.DesiredCourse = 90.0, 90.0

	pClear := newTestPhysics(&fakeEnv{wind: e.wind})
	pClear.Advance(clear, testTime)
	p.Advance(iced, testTime)

	assert.InDelta(t, clear.V.Mag*0.5, iced.V.Mag, 1e-9)
}

func TestWaveEffectRequiresFlag(t *testing.T) {
	wave := &env.WaveData{Height: 5.0}
	wind := geo.Vec{Angle: 0.0, Mag: 10.0}

	plain := startedVessel(0, 0, TypeSailNavSimClassic, 0)
	plain.V.Angle, plain.DesiredCourse = 90.0, 90.0
	flagged := startedVessel(0, 0, TypeSailNavSimClassic, FlagWaveSpeedEffect)
	flagged.V.Angle, flagged.DesiredCourse = 90.0, 90.0

	newTestPhysics(&fakeEnv{wind: wind, wave: wave}).Advance(plain, testTime)
	newTestPhysics(&fakeEnv{wind: wind, wave: wave}).Advance(flagged, testTime)

	assert.Greater(t, plain.V.Mag, flagged.V.Mag)

	want := math.Exp(-25.0 / waveEffectResistances[TypeSailNavSimClassic])
	assert.InDelta(t, plain.V.Mag*want, flagged.V.Mag, 1e-9)
}

func TestAdvancedHullSails(t *testing.T) {
	e := &fakeEnv{wind: geo.Vec{Angle: 270.0, Mag: 10.0}}
	p := newTestPhysics(e)

	b := startedVessel(0, 0, AdvancedTypeOffset, 0)
	b.V.Angle, b.DesiredCourse = 0.0, 0.0
	b.SailArea = 1.0

	for i := 0; i < 60; i++ {
		p.Advance(b, testTime)
	}

	assert.Greater(t, b.V.Mag, 0.5)
	assert.Greater(t, b.HeelingAngle, 0.0)
	assert.NotEqual(t, 0.0, b.LeewaySpeed)
}

func TestAdvancedHullNoSail(t *testing.T) {
	e := &fakeEnv{wind: geo.Vec{Angle: 270.0, Mag: 10.0}}
	p := newTestPhysics(e)

	b := startedVessel(0, 0, AdvancedTypeOffset, 0)
	b.SailArea = 0.0

	for i := 0; i < 10; i++ {
		p.Advance(b, testTime)
	}

	assert.InDelta(t, 0.0, b.V.Mag, 0.01)
}

func TestDistanceTravelledMonotone(t *testing.T) {
	e := &fakeEnv{wind: geo.Vec{Angle: 0.0, Mag: 8.0}}
	p := newTestPhysics(e)

	b := startedVessel(10, 10, TypeVolvo70, 0)
	b.V.Angle, b.DesiredCourse = 90.0, 90.0

	prev := 0.0
	for i := 0; i < 600; i++ {
		p.Advance(b, testTime)
		require.GreaterOrEqual(t, b.DistanceTravelled, prev)
		prev = b.DistanceTravelled
	}
	assert.Greater(t, prev, 0.0)
}

func TestWindResponseInterpolation(t *testing.T) {
	// At 90 deg off the wind in 4 m/s, the classic hull factor is 0.71.
	spd := WindResponseSpeed(4.0, 90.0, TypeSailNavSimClassic)
	assert.InDelta(t, 4.0*0.71, spd, 1e-9)

	// Head to wind the factor is negative: the hull gets pushed backwards.
	spd = WindResponseSpeed(4.0, 0.0, TypeSailNavSimClassic)
	assert.InDelta(t, 4.0*-0.10, spd, 1e-9)

	// Unmodeled types get zero.
	assert.Equal(t, 0.0, WindResponseSpeed(10.0, 90.0, 99))
}

func TestValidType(t *testing.T) {
	solver := NewDefaultAdvancedSolver()
	assert.True(t, ValidType(0, solver))
	assert.True(t, ValidType(7, solver))
	assert.True(t, ValidType(AdvancedTypeOffset, solver))
	assert.True(t, ValidType(AdvancedTypeOffset+solver.TypeCount()-1, solver))
	assert.False(t, ValidType(AdvancedTypeOffset+solver.TypeCount(), solver))
	assert.False(t, ValidType(-1, solver))
}
