// Package command parses the newline-delimited boat command stream (from
// the input FIFO and the net server) into typed commands and queues them
// for consumption between simulation ticks.
package command

import (
	"fmt"
	"strings"

	"github.com/ls4096/sailnavsim-core/internal/queue"
)

// Action selects what a command does to its target boat.
type Action int

const (
	ActionStop Action = iota
	ActionStart
	ActionCourseTrue
	ActionCourseMag
	ActionSailArea
	ActionAddBoat
	ActionAddBoatWithGroup
	ActionRemoveBoat
)

// Keywords on the wire, in command-line order.
const (
	kwStop     = "stop"
	kwStart    = "start"
	kwCourse   = "course"
	kwCourseM  = "course_m"
	kwSailArea = "sail_area"
	kwAdd      = "add"
	kwAddG     = "add_g"
	kwRemove   = "remove"
)

// Command is one parsed boat command. The value slots used depend on the
// action: courses and sail area land in Ints[0]; add variants use
// Doubles[0]/Doubles[1] for latitude/longitude and Ints[0]/Ints[1] for
// boat type and flags, with Group and AltName filled by add_g.
type Command struct {
	Name   string
	Action Action

	Ints    [2]int
	Doubles [2]float64
	Group   string
	AltName string
}

// Queue is the FIFO commands travel through between producers (FIFO
// reader, net server) and the simulation loop.
type Queue = queue.Queue[*Command]

// NewQueue returns an empty command queue.
func NewQueue() *Queue {
	return queue.New[*Command]()
}

// String renders the command back into its canonical wire form.
func (c *Command) String() string {
	var sb strings.Builder
	sb.WriteString(c.Name)
	sb.WriteByte(',')

	switch c.Action {
	case ActionStop:
		sb.WriteString(kwStop)
	case ActionStart:
		sb.WriteString(kwStart)
	case ActionCourseTrue:
		fmt.Fprintf(&sb, "%s,%d", kwCourse, c.Ints[0])
	case ActionCourseMag:
		fmt.Fprintf(&sb, "%s,%d", kwCourseM, c.Ints[0])
	case ActionSailArea:
		fmt.Fprintf(&sb, "%s,%d", kwSailArea, c.Ints[0])
	case ActionAddBoat:
		fmt.Fprintf(&sb, "%s,%g,%g,%d,%d", kwAdd, c.Doubles[0], c.Doubles[1], c.Ints[0], c.Ints[1])
	case ActionAddBoatWithGroup:
		fmt.Fprintf(&sb, "%s,%g,%g,%d,%d,%s,%s", kwAddG, c.Doubles[0], c.Doubles[1], c.Ints[0], c.Ints[1], c.Group, c.AltName)
	case ActionRemoveBoat:
		sb.WriteString(kwRemove)
	}

	return sb.String()
}
