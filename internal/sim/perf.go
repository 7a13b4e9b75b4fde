package sim

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/ls4096/sailnavsim-core/internal/boat"
	"github.com/ls4096/sailnavsim-core/internal/geoutil"
	"github.com/ls4096/sailnavsim-core/pkg/geo"
)

// Performance mode: a deterministic scripted workload replacing the live
// command and logging paths, reporting elapsed time per section.

const (
	perfBoatNameLen   = 32
	perfAltNameLen    = 15
	perfGroupNameLen  = 3
	perfAdvanceBoats  = 10000
	perfAdvanceTicks  = 60
	perfLandChecks    = 100000
	perfSightAttempts = 1000000
	perfPositionCount = 4096
)

var perfRegistrySizes = []int{10000, 20000, 50000, 100000, 200000}

const perfNameChars = "0123456789abcdef"

// perfRand is the trio of independent PRNGs the workload generator draws
// from, seeded deterministically so runs are comparable.
type perfRand struct {
	names  *rand.Rand
	coords *rand.Rand
	misc   *rand.Rand
}

func newPerfRand() *perfRand {
	return &perfRand{
		names:  rand.New(rand.NewSource(314159265)),
		coords: rand.New(rand.NewSource(271828182)),
		misc:   rand.New(rand.NewSource(141421356)),
	}
}

func (p *perfRand) name(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = perfNameChars[p.names.Intn(len(perfNameChars))]
	}
	return string(b)
}

func (p *perfRand) lat() float64 {
	return float64(p.coords.Intn(159001))/1000.0 - 79.0
}

func (p *perfRand) lon() float64 {
	return float64(p.coords.Intn(360001))/1000.0 - 180.0
}

func (p *perfRand) boatType() int {
	return p.misc.Intn(boat.AdvancedTypeOffset)
}

func (p *perfRand) boatFlags() boat.Flags {
	return boat.Flags(p.misc.Intn(int(boat.FlagsMax) + 1))
}

// RunPerf executes the scripted performance workload and prints the
// throughput of each section.
func (e *Engine) RunPerf() error {
	pr := newPerfRand()

	if err := e.perfRegistry(pr); err != nil {
		return err
	}
	e.perfAdvance(pr)
	e.perfLandVisibility(pr)
	e.perfSights(pr)

	return nil
}

// perfRegistry times bulk adds and removes at several fleet sizes.
func (e *Engine) perfRegistry(pr *perfRand) error {
	for _, count := range perfRegistrySizes {
		names := make([]string, count)
		for i := range names {
			names[i] = pr.name(perfBoatNameLen)
		}

		e.reg.Lock()

		start := time.Now()
		for i, name := range names {
			v := boat.New(pr.lat(), pr.lon(), pr.boatType(), 0)
			if err := e.reg.Add(v, name, pr.name(perfGroupNameLen), pr.name(perfAltNameLen)); err != nil {
				e.reg.Unlock()
				return fmt.Errorf("perf registry add failed at %d/%d: %w", i, count, err)
			}
		}
		addTaken := time.Since(start)

		start = time.Now()
		for _, name := range names {
			e.reg.Remove(name)
		}
		removeTaken := time.Since(start)

		e.reg.Unlock()

		fmt.Printf("BoatRegistry boats added (count=%d): %.3fs\n", count, addTaken.Seconds())
		fmt.Printf("BoatRegistry boats removed (count=%d): %.3fs\n", count, removeTaken.Seconds())
	}

	return nil
}

// perfAdvance times full advance ticks over a generated fleet.
func (e *Engine) perfAdvance(pr *perfRand) {
	e.reg.Lock()

	vessels := make([]*boat.Vessel, perfAdvanceBoats)
	for i := range vessels {
		v := boat.New(pr.lat(), pr.lon(), pr.boatType(), pr.boatFlags())
		v.Stop = false
		v.SetImmediateDesiredCourse = false
		v.DesiredCourse = float64(pr.misc.Intn(361))
		vessels[i] = v

		e.reg.Add(v, pr.name(perfBoatNameLen), "", "")
	}

	now := time.Now()

	start := time.Now()
	for tick := 0; tick < perfAdvanceTicks; tick++ {
		first, _ := e.reg.All()
		for en := first; en != nil; en = en.Next() {
			e.physics.Advance(en.Boat, now)
		}
	}
	taken := time.Since(start)

	first, _ := e.reg.All()
	for en := first; en != nil; {
		next := en.Next()
		e.reg.Remove(en.Name)
		en = next
	}

	e.reg.Unlock()

	advances := perfAdvanceBoats * perfAdvanceTicks
	fmt.Printf("Boat advances per second (count=%d): %.1fk\n",
		advances, kips(advances, taken))
}

// perfLandVisibility times near-land checks over random ocean positions.
func (e *Engine) perfLandVisibility(pr *perfRand) {
	positions := perfPositions(pr)

	landCount := 0
	start := time.Now()
	for i := 0; i < perfLandChecks; i++ {
		if geoutil.IsApproximatelyNearVisibleLand(e.env, positions[i%len(positions)], 24000.0) {
			landCount++
		}
	}
	taken := time.Since(start)

	fmt.Printf("Land visibility checks per second (total visible: %d/%d): %.1fk\n",
		landCount, perfLandChecks, kips(perfLandChecks, taken))
}

// perfSights times celestial sight attempts.
func (e *Engine) perfSights(pr *perfRand) {
	positions := perfPositions(pr)
	shotTime := time.Now()

	var azs, alts float64
	sightCount := 0

	start := time.Now()
	for i := 0; i < perfSightAttempts; i++ {
		if sg, ok := e.shooter.Shoot(shotTime, positions[i%len(positions)], 0, 1013.25, 15.0); ok {
			sightCount++
			azs += sg.Az
			alts += sg.Alt
		}
	}
	taken := time.Since(start)

	azAvg, altAvg := 0.0, 0.0
	if sightCount > 0 {
		azAvg = azs / float64(sightCount)
		altAvg = alts / float64(sightCount)
	}

	fmt.Printf("Celestial sight attempts per second (total shot: %d/%d, az_avg: %.3f, alt_avg: %.3f): %.1fk\n",
		sightCount, perfSightAttempts, azAvg, altAvg, kips(perfSightAttempts, taken))
}

func perfPositions(pr *perfRand) []geo.Pos {
	positions := make([]geo.Pos, perfPositionCount)
	for i := range positions {
		positions[i] = geo.Pos{Lat: pr.lat(), Lon: pr.lon()}
	}
	return positions
}

// kips converts a count over a duration into thousands per second.
func kips(count int, taken time.Duration) float64 {
	if taken <= 0 {
		return 0.0
	}
	return float64(count) / (taken.Seconds() * 1000.0)
}
