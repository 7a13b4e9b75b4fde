package boat

import (
	"fmt"
	"math"
)

// AdvancedInput feeds one solver step. Angles are relative to the boat
// heading in degrees; speeds are m/s; SailArea is the hoisted fraction.
type AdvancedInput struct {
	WindAngle float64
	WindSpeed float64

	BoatSpeedAhead float64
	BoatSpeedAbeam float64

	SailArea float64
}

// AdvancedOutput is one solver step's result.
type AdvancedOutput struct {
	BoatSpeedAhead float64
	BoatSpeedAbeam float64
	HeelingAngle   float64
}

// AdvancedSolver models the advanced hull types: a per-type hydrodynamic
// step plus the per-type constants the engine needs. Implementations are
// plug-replaceable; the shipped one is a simple force-balance model.
type AdvancedSolver interface {
	TypeCount() int
	Update(advType int, in AdvancedInput) (AdvancedOutput, error)
	CourseChangeRate(advType int) float64
	WaveEffectResistance(advType int) float64
	DamageWindGustThreshold(advType int) float64
}

// advancedParams is one advanced hull's tuning set.
type advancedParams struct {
	name string

	driveFactor  float64 // converts wind drive to target speed
	hullMax      float64 // displacement-limited hull speed, m/s
	inertia      float64 // ticks of speed smoothing
	heelFactor   float64 // heel per unit heeling force
	leewayFactor float64 // abeam slip per degree of heel, m/s

	courseRate float64 // deg/s
	waveRes    float64 // m^2
	gustThresh float64 // m/s
}

var defaultAdvancedParams = []advancedParams{
	{
		name:         "Cruiser 36",
		driveFactor:  0.065,
		hullMax:      4.2,
		inertia:      18.0,
		heelFactor:   0.055,
		leewayFactor: 0.012,
		courseRate:   3.0,
		waveRes:      550.0,
		gustThresh:   45.0 / knotsPerMPerS,
	},
	{
		name:         "Racer 60",
		driveFactor:  0.110,
		hullMax:      10.5,
		inertia:      26.0,
		heelFactor:   0.045,
		leewayFactor: 0.009,
		courseRate:   2.5,
		waveRes:      850.0,
		gustThresh:   50.0 / knotsPerMPerS,
	},
}

// defaultSolver is the shipped force-balance advanced hull model.
type defaultSolver struct {
	params []advancedParams
}

// NewDefaultAdvancedSolver returns the built-in advanced hull solver.
func NewDefaultAdvancedSolver() AdvancedSolver {
	return &defaultSolver{params: defaultAdvancedParams}
}

func (s *defaultSolver) TypeCount() int {
	return len(s.params)
}

func (s *defaultSolver) Update(advType int, in AdvancedInput) (AdvancedOutput, error) {
	if advType < 0 || advType >= len(s.params) {
		return AdvancedOutput{}, fmt.Errorf("advanced boat type %d out of range", advType)
	}
	p := s.params[advType]

	twa := in.WindAngle
	for twa > 180.0 {
		twa -= 360.0
	}
	for twa <= -180.0 {
		twa += 360.0
	}
	twaAbs := math.Abs(twa)

	// Driving force falls off close-hauled and dead downwind.
	shape := math.Sin(twaAbs * math.Pi / 180.0)
	if twaAbs < 30.0 {
		shape *= twaAbs / 30.0
	}

	drive := p.driveFactor * in.WindSpeed * in.WindSpeed * in.SailArea * shape
	target := p.hullMax * drive / (drive + 1.0)

	ahead := (p.inertia*in.BoatSpeedAhead + target) / (p.inertia + 1.0)

	heelForce := in.WindSpeed * in.WindSpeed * in.SailArea * math.Abs(math.Sin(twaAbs*math.Pi/180.0))
	heel := p.heelFactor * heelForce
	if heel > 45.0 {
		heel = 45.0
	}

	abeam := p.leewayFactor * heel
	if twa > 0.0 {
		abeam = -abeam
	}

	return AdvancedOutput{
		BoatSpeedAhead: ahead,
		BoatSpeedAbeam: abeam,
		HeelingAngle:   heel,
	}, nil
}

func (s *defaultSolver) CourseChangeRate(advType int) float64 {
	if advType < 0 || advType >= len(s.params) {
		return 0.0
	}
	return s.params[advType].courseRate
}

func (s *defaultSolver) WaveEffectResistance(advType int) float64 {
	if advType < 0 || advType >= len(s.params) {
		return 1.0
	}
	return s.params[advType].waveRes
}

func (s *defaultSolver) DamageWindGustThreshold(advType int) float64 {
	if advType < 0 || advType >= len(s.params) {
		return basicDamageIncThresh
	}
	return s.params[advType].gustThresh
}
