package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ls4096/sailnavsim-core/internal/boat"
)

// ErrParse covers any malformed or out-of-range command line.
var ErrParse = errors.New("bad command")

// Parser turns command lines into Commands. It needs the advanced hull
// solver only to know how many boat types exist.
type Parser struct {
	solver boat.AdvancedSolver
}

// NewParser returns a command parser validating boat types against the
// given solver.
func NewParser(solver boat.AdvancedSolver) *Parser {
	return &Parser{solver: solver}
}

// Parse converts one command line (without trailing newline) into a
// Command. The line is split on commas: target boat name, action keyword,
// then the action's fixed value signature.
func (p *Parser) Parse(line string) (*Command, error) {
	tok := strings.Split(strings.TrimRight(line, "\r\n"), ",")
	if len(tok) < 2 || tok[0] == "" {
		return nil, fmt.Errorf("%w: %q", ErrParse, line)
	}

	cmd := &Command{Name: tok[0]}
	args := tok[2:]

	switch tok[1] {
	case kwStop:
		cmd.Action = ActionStop

	case kwStart:
		cmd.Action = ActionStart

	case kwCourse, kwCourseM:
		cmd.Action = ActionCourseTrue
		if tok[1] == kwCourseM {
			cmd.Action = ActionCourseMag
		}
		if err := parseInts(args, cmd.Ints[:1]); err != nil {
			return nil, err
		}
		if cmd.Ints[0] < 0 || cmd.Ints[0] > 360 {
			return nil, fmt.Errorf("%w: course %d out of range", ErrParse, cmd.Ints[0])
		}

	case kwSailArea:
		cmd.Action = ActionSailArea
		if err := parseInts(args, cmd.Ints[:1]); err != nil {
			return nil, err
		}
		if cmd.Ints[0] < 0 || cmd.Ints[0] > 100 {
			return nil, fmt.Errorf("%w: sail area %d out of range", ErrParse, cmd.Ints[0])
		}

	case kwAdd, kwAddG:
		cmd.Action = ActionAddBoat
		want := 4
		if tok[1] == kwAddG {
			cmd.Action = ActionAddBoatWithGroup
			want = 6
		}
		if len(args) != want {
			return nil, fmt.Errorf("%w: %s needs %d values", ErrParse, tok[1], want)
		}

		var err error
		if cmd.Doubles[0], err = strconv.ParseFloat(args[0], 64); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		if cmd.Doubles[1], err = strconv.ParseFloat(args[1], 64); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		if err = parseInts(args[2:4], cmd.Ints[:2]); err != nil {
			return nil, err
		}

		if err = p.validateAdd(cmd); err != nil {
			return nil, err
		}

		if cmd.Action == ActionAddBoatWithGroup {
			cmd.Group = args[4]
			cmd.AltName = args[5]
			if cmd.Group == "" {
				return nil, fmt.Errorf("%w: empty group", ErrParse)
			}
		}

	case kwRemove:
		cmd.Action = ActionRemoveBoat

	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrParse, tok[1])
	}

	return cmd, nil
}

func (p *Parser) validateAdd(cmd *Command) error {
	lat, lon := cmd.Doubles[0], cmd.Doubles[1]
	boatType, flags := cmd.Ints[0], cmd.Ints[1]

	if lat <= -90.0 || lat >= 90.0 {
		return fmt.Errorf("%w: latitude %g out of range", ErrParse, lat)
	}
	if lon < -180.0 || lon > 180.0 {
		return fmt.Errorf("%w: longitude %g out of range", ErrParse, lon)
	}
	if !boat.ValidType(boatType, p.solver) {
		return fmt.Errorf("%w: bad boat type %d", ErrParse, boatType)
	}
	if flags < 0 || boat.Flags(flags) > boat.FlagsMax {
		return fmt.Errorf("%w: bad boat flags %#x", ErrParse, flags)
	}
	return nil
}

func parseInts(args []string, dst []int) error {
	if len(args) < len(dst) {
		return fmt.Errorf("%w: missing values", ErrParse)
	}
	for i := range dst {
		v, err := strconv.Atoi(args[i])
		if err != nil {
			return fmt.Errorf("%w: %v", ErrParse, err)
		}
		dst[i] = v
	}
	return nil
}
