package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ls4096/sailnavsim-core/internal/boat"
)

func newTestParser() *Parser {
	return NewParser(boat.NewDefaultAdvancedSolver())
}

func TestParseValidCommands(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		line string
		want Command
	}{
		{"Vega,stop", Command{Name: "Vega", Action: ActionStop}},
		{"Vega,start", Command{Name: "Vega", Action: ActionStart}},
		{"Vega,course,270", Command{Name: "Vega", Action: ActionCourseTrue, Ints: [2]int{270, 0}}},
		{"Vega,course_m,0", Command{Name: "Vega", Action: ActionCourseMag}},
		{"Vega,sail_area,75", Command{Name: "Vega", Action: ActionSailArea, Ints: [2]int{75, 0}}},
		{"Vega,remove", Command{Name: "Vega", Action: ActionRemoveBoat}},
		{
			"Vega,add,43.5,-8.25,4,3",
			Command{Name: "Vega", Action: ActionAddBoat, Doubles: [2]float64{43.5, -8.25}, Ints: [2]int{4, 3}},
		},
		{
			"Vega,add_g,10,20,0,0,fleet,Display Name",
			Command{
				Name: "Vega", Action: ActionAddBoatWithGroup,
				Doubles: [2]float64{10, 20}, Group: "fleet", AltName: "Display Name",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := p.Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	p := newTestParser()

	lines := []string{
		"Vega,stop",
		"Vega,start",
		"Vega,course,89",
		"Vega,course_m,360",
		"Vega,sail_area,0",
		"Vega,add,43.5,-8.25,4,3",
		"Vega,add_g,10,20,0,0,fleet,Alt",
		"Vega,remove",
	}

	for _, line := range lines {
		cmd, err := p.Parse(line)
		require.NoError(t, err, line)

		again, err := p.Parse(cmd.String())
		require.NoError(t, err, cmd.String())
		assert.Equal(t, cmd, again, "canonical form must re-parse identically")
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	p := newTestParser()

	lines := []string{
		"",                               // empty
		"Vega",                           // no action
		",stop",                          // empty name
		"Vega,warp",                      // unknown action
		"Vega,course",                    // missing value
		"Vega,course,361",                // out of range
		"Vega,course,-1",                 // out of range
		"Vega,course,abc",                // not an int
		"Vega,sail_area,101",             // out of range
		"Vega,add,90,0,0,0",              // latitude on the pole
		"Vega,add,0,181,0,0",             // longitude out of range
		"Vega,add,0,0,99,0",              // unmodeled boat type
		"Vega,add,0,0,0,64",              // flags out of range
		"Vega,add,0,0,0",                 // too few values
		"Vega,add_g,0,0,0,0,,alt",        // empty group
		"Vega,add_g,0,0,0,0,fleet",       // missing alt name
	}

	for _, line := range lines {
		_, err := p.Parse(line)
		assert.ErrorIs(t, err, ErrParse, "line %q", line)
	}
}

func TestParseAcceptsAdvancedTypes(t *testing.T) {
	p := newTestParser()

	cmd, err := p.Parse("Vega,add,0,0,8,0")
	require.NoError(t, err)
	assert.Equal(t, 8, cmd.Ints[0])
}

func TestQueueDeliveryOrder(t *testing.T) {
	p := newTestParser()
	q := NewQueue()

	for _, line := range []string{"a,stop", "b,start", "c,course,10"} {
		cmd, err := p.Parse(line)
		require.NoError(t, err)
		q.Push(cmd)
	}

	cmds := q.Drain()
	require.Len(t, cmds, 3)
	assert.Equal(t, "a", cmds[0].Name)
	assert.Equal(t, "b", cmds[1].Name)
	assert.Equal(t, "c", cmds[2].Name)
}
