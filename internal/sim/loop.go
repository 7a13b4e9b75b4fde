package sim

import "time"

// Run paces the engine at one tick per second forever. Target wakeup
// times advance by exactly one second per iteration on the monotonic
// clock; when an iteration overruns, the next starts immediately and a
// diagnostic is emitted. The wall clock read at the top of each
// iteration is the simulation time fed to the environment.
func (e *Engine) Run() {
	nextWake := time.Now()

	for {
		now := time.Now()

		boats, cmds := e.Tick(now)

		if e.mon != nil {
			queueLen := 0
			if e.logr != nil {
				queueLen = e.logr.QueueLen()
			}
			e.mon.RecordTick(boats, cmds, queueLen, time.Since(now))
		}

		nextWake = nextWake.Add(time.Second)

		sleep := time.Until(nextWake)
		if sleep <= 0 {
			e.log.Warn().
				Int("boats", boats).
				Int("cmds", cmds).
				Msg("Iteration took longer than 1 second. Starting next right away!")
			continue
		}

		e.log.Debug().
			Int("boats", boats).
			Int("cmds", cmds).
			Dur("sleep", sleep).
			Msg("Iteration complete")

		time.Sleep(sleep)
	}
}
