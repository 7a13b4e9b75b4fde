package logger

import (
	"time"

	"github.com/ls4096/sailnavsim-core/internal/boat"
	"github.com/ls4096/sailnavsim-core/internal/env"
	"github.com/ls4096/sailnavsim-core/internal/sight"
	"github.com/ls4096/sailnavsim-core/pkg/geo"
)

// Boat state values recorded in logs.
const (
	StateStopped   = 0
	StateSailing   = 1
	StateSailsDown = 2
)

// Location state values recorded in logs.
const (
	LocWater  = 0
	LocLanded = 1
)

// Entry is one boat's full telemetry snapshot for one logged tick.
type Entry struct {
	Time     int64
	BoatName string

	Pos     geo.Pos
	VWater  geo.Vec
	VGround geo.Vec

	Wx         env.WeatherData
	Ocean      env.OceanData
	OceanValid bool
	Wave       env.WaveData
	WaveValid  bool

	MagDec            float64
	DistanceTravelled float64
	Damage            float64

	BoatState int
	LocState  int
	Invisible bool
}

// SightEntry is one boat's celestial sight for one logged tick.
type SightEntry struct {
	Time     int64
	BoatName string
	Sight    sight.Sight
}

// Batch is the unit handed from the simulation loop to the logger: all
// entries of one logged tick, in registry order, plus any sights.
type Batch struct {
	Entries []Entry
	Sights  []SightEntry
}

// Environment is the slice of env.Provider needed to fill log entries.
type Environment interface {
	env.Weather
	env.Ocean
	env.Wave
	env.GeoInfo
	env.Compass
}

// Fill captures one boat's log entry. It runs on the simulation goroutine
// under the registry lock, so it reads vessel state directly.
func Fill(e Environment, b *boat.Vessel, name string, now time.Time) Entry {
	wx := e.WeatherAt(b.Pos, false)
	od, odValid := e.OceanAt(b.Pos)
	wd, wdValid := e.WaveAt(b.Pos)
	isWater := e.IsWater(b.Pos)

	state := StateSailing
	if b.Stop {
		state = StateStopped
	} else if b.SailsDown {
		state = StateSailsDown
	}

	loc := LocWater
	if !isWater {
		loc = LocLanded
	}

	return Entry{
		Time:     now.Unix(),
		BoatName: name,

		Pos:     b.Pos,
		VWater:  b.V,
		VGround: b.VGround,

		Wx:         wx,
		Ocean:      od,
		OceanValid: odValid,
		Wave:       wd,
		WaveValid:  wdValid,

		MagDec:            e.MagDec(b.Pos, now),
		DistanceTravelled: b.DistanceTravelled,
		Damage:            b.Damage,

		BoatState: state,
		LocState:  loc,
		Invisible: b.Flags&boat.FlagHiddenInGroup != 0,
	}
}
