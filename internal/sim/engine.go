// Package sim drives the fixed-rate simulation: advancing every vessel
// each tick, handing telemetry to the logger on minute boundaries, and
// applying queued commands between ticks.
package sim

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/ls4096/sailnavsim-core/internal/boat"
	"github.com/ls4096/sailnavsim-core/internal/command"
	"github.com/ls4096/sailnavsim-core/internal/env"
	"github.com/ls4096/sailnavsim-core/internal/logger"
	"github.com/ls4096/sailnavsim-core/internal/registry"
	"github.com/ls4096/sailnavsim-core/internal/sight"
)

const iterationsPerLog = 60

// Engine owns every mutable piece of the simulation: the registry, the
// physics, the command queue, the logger hand-off and the process RNG.
type Engine struct {
	reg     *registry.Registry
	env     env.Provider
	cmds    *command.Queue
	logr    *logger.Logger // nil disables logging
	physics *boat.Physics
	solver  boat.AdvancedSolver
	shooter *sight.Shooter

	mon Monitor
	log zerolog.Logger

	lastIter int64
}

// Monitor receives per-tick statistics; nil disables reporting.
type Monitor interface {
	RecordTick(boatCount, cmdCount, logQueueLen int, tickDuration time.Duration)
}

// SetMonitor attaches a statistics sink to the loop.
func (e *Engine) SetMonitor(m Monitor) {
	e.mon = m
}

// New assembles an engine. The RNG seed comes from the wall clock at
// bootstrap; tests pass a fixed seed.
func New(
	reg *registry.Registry,
	e env.Provider,
	cmds *command.Queue,
	logr *logger.Logger,
	solver boat.AdvancedSolver,
	seed int64,
	log zerolog.Logger,
) *Engine {
	rng := rand.New(rand.NewSource(seed))

	return &Engine{
		reg:     reg,
		env:     e,
		cmds:    cmds,
		logr:    logr,
		physics: boat.NewPhysics(e, solver, rng),
		solver:  solver,
		shooter: sight.NewShooter(e, rng, log),
		log:     log,

		// The first tick always logs, so a restarted process resumes
		// its logs without waiting out the minute.
		lastIter: iterationsPerLog,
	}
}

// Tick runs one full simulation iteration at the given wall-clock time:
// advance phase under the write lock, log hand-off with the lock
// released, then the command drain under the write lock again. It
// returns the number of boats advanced and commands applied.
func (e *Engine) Tick(now time.Time) (boatCount, cmdCount int) {
	iter := now.Unix() % iterationsPerLog
	doLog := iter < e.lastIter
	e.lastIter = iter

	var entries []logger.Entry
	var sights []logger.SightEntry

	e.reg.Lock()

	first, count := e.reg.All()
	if doLog && count > 0 {
		entries = make([]logger.Entry, 0, count)
	}

	for en := first; en != nil; en = en.Next() {
		e.physics.Advance(en.Boat, now)

		if doLog && count > 0 {
			le := logger.Fill(e.env, en.Boat, en.Name, now)
			entries = append(entries, le)

			if sg, ok := e.attemptSight(en.Boat, &le, now); ok {
				sights = append(sights, logger.SightEntry{
					Time:     le.Time,
					BoatName: en.Name,
					Sight:    sg,
				})
			}
		}
	}

	e.reg.Unlock()

	if doLog && e.logr != nil && len(entries) > 0 {
		e.logr.Enqueue(logger.Batch{Entries: entries, Sights: sights})
	}

	cmds := e.cmds.Drain()

	e.reg.Lock()
	for _, cmd := range cmds {
		e.handleCommand(cmd, now)
	}
	e.reg.Unlock()

	return count, len(cmds)
}

// attemptSight tries a celestial sight for a flagged vessel, applying the
// wave perturbation where configured.
func (e *Engine) attemptSight(b *boat.Vessel, le *logger.Entry, now time.Time) (sight.Sight, bool) {
	if b.Flags&boat.FlagCelestialNav == 0 {
		return sight.Sight{}, false
	}

	sg, ok := e.shooter.Shoot(now, b.Pos, int(le.Wx.Cloud), le.Wx.Pressure, le.Wx.Temp)
	if !ok {
		return sight.Sight{}, false
	}

	if b.Flags&boat.FlagCelestialWaveEffect != 0 && le.WaveValid {
		return e.shooter.ApplyWaveEffect(sg, le.Wave.Height, boat.WaveEffectResistance(b.Type, e.solver))
	}

	return sg, true
}

// handleCommand applies one queued command under the registry write lock.
// Commands addressed to unknown boats are silently dropped.
func (e *Engine) handleCommand(cmd *command.Command, now time.Time) {
	switch cmd.Action {
	case command.ActionAddBoat, command.ActionAddBoatWithGroup:
		v := boat.New(cmd.Doubles[0], cmd.Doubles[1], cmd.Ints[0], boat.Flags(cmd.Ints[1]))
		if err := e.reg.Add(v, cmd.Name, cmd.Group, cmd.AltName); err != nil {
			e.log.Debug().Err(err).Str("boat", cmd.Name).Msg("Failed to add boat to registry")
		}
		return

	case command.ActionRemoveBoat:
		e.reg.Remove(cmd.Name)
		return
	}

	b := e.reg.Get(cmd.Name)
	if b == nil {
		return
	}

	switch cmd.Action {
	case command.ActionStop:
		b.SailsDown = true

	case command.ActionStart:
		if e.physics.IsHeadingTowardWater(b, now) {
			b.Stop = false
			b.SailsDown = false
			b.MovingToSea = true
		}

	case command.ActionCourseTrue:
		b.DesiredCourse = float64(cmd.Ints[0])
		b.CourseMagnetic = false

	case command.ActionCourseMag:
		b.DesiredCourse = float64(cmd.Ints[0])
		b.CourseMagnetic = true

	case command.ActionSailArea:
		b.SailArea = float64(cmd.Ints[0]) / 100.0
	}
}
