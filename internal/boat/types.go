// Package boat holds the vessel state and the per-tick physics that
// advance it: course slewing, wind response, damage, leeway and the
// land/launch transitions.
package boat

import (
	"time"

	"github.com/ls4096/sailnavsim-core/internal/env"
	"github.com/ls4096/sailnavsim-core/pkg/geo"
)

// Flags is the per-vessel behavior bitfield.
type Flags int

const (
	FlagTakesDamage Flags = 1 << iota
	FlagWaveSpeedEffect
	FlagCelestialNav
	FlagCelestialWaveEffect
	FlagDamageApparentWind
	FlagHiddenInGroup

	FlagsMax = Flags(1<<6) - 1
)

// Basic boat types, modeled by wind-response polar tables.
const (
	TypeSailNavSimClassic  = 0
	TypeSeascape18         = 1
	TypeContessa25         = 2
	TypeHanse385           = 3
	TypeVolvo70            = 4
	TypeSuperMaxiScallywag = 5
	TypeBrigantine140      = 6
	TypeMaxiTrimaran       = 7

	basicTypeCount = 8

	// AdvancedTypeOffset is the first boat type handled by the
	// advanced-hull solver rather than the polar tables.
	AdvancedTypeOffset = basicTypeCount
)

// IsAdvancedType reports whether the boat type is handled by the
// advanced-hull solver.
func IsAdvancedType(boatType int) bool {
	return boatType >= AdvancedTypeOffset
}

// ValidType reports whether the boat type is modeled at all.
func ValidType(boatType int, solver AdvancedSolver) bool {
	if boatType < 0 {
		return false
	}
	if boatType < basicTypeCount {
		return true
	}
	return solver != nil && boatType < AdvancedTypeOffset+solver.TypeCount()
}

// Environment is the slice of env.Provider the physics consume.
type Environment interface {
	env.Weather
	env.Ocean
	env.Wave
	env.GeoInfo
	env.Compass
}

// Vessel is the full mutable state of one simulated boat. All fields are
// owned by the simulation goroutine; concurrent readers go through the
// registry lock.
type Vessel struct {
	Pos     geo.Pos
	V       geo.Vec // velocity through water; true compass bearing
	VGround geo.Vec // velocity over ground; true compass bearing

	DesiredCourse     float64
	CourseMagnetic    bool
	DistanceTravelled float64
	Damage            float64

	LeewaySpeed  float64 // m/s, abeam of heading; advanced hulls only
	HeelingAngle float64 // degrees; advanced hulls only
	SailArea     float64 // fraction of full sail in [0, 1]; advanced hulls only

	Type  int
	Flags Flags

	StartingFromLandCount int

	Stop        bool
	SailsDown   bool
	MovingToSea bool

	SetImmediateDesiredCourse bool
}

// New returns a stopped vessel at the given position. The latitude is
// clamped and the longitude wrapped into canonical range.
func New(lat, lon float64, boatType int, flags Flags) *Vessel {
	return &Vessel{
		Pos:      geo.NewPos(lat, lon),
		Type:     boatType,
		Flags:    flags,
		SailArea: 1.0,
		Stop:     true,

		SetImmediateDesiredCourse: true,
	}
}

// DesiredCourseTrue resolves the commanded course to a true bearing,
// applying magnetic declination when the course was given as magnetic.
func (b *Vessel) DesiredCourseTrue(e env.Compass, now time.Time) float64 {
	if !b.CourseMagnetic {
		return b.DesiredCourse
	}
	return geo.Wrap360(b.DesiredCourse + e.MagDec(b.Pos, now))
}
