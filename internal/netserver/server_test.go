package netserver

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ls4096/sailnavsim-core/internal/boat"
	"github.com/ls4096/sailnavsim-core/internal/env"
	"github.com/ls4096/sailnavsim-core/internal/registry"
	"github.com/ls4096/sailnavsim-core/pkg/geo"
)

type fakeNetEnv struct {
	oceanValid bool
	waveValid  bool
}

func (f *fakeNetEnv) WeatherAt(p geo.Pos, windOnly bool) env.WeatherData {
	return env.WeatherData{Wind: geo.Vec{Angle: 90.0, Mag: 10.0}, WindGust: 14.0}
}

func (f *fakeNetEnv) OceanAt(p geo.Pos) (env.OceanData, bool) {
	if !f.oceanValid {
		return env.OceanData{}, false
	}
	return env.OceanData{Current: geo.Vec{Angle: 90.0, Mag: 1.0}, Ice: 25.0}, true
}

func (f *fakeNetEnv) WaveAt(p geo.Pos) (env.WaveData, bool) {
	if !f.waveValid {
		return env.WaveData{}, false
	}
	return env.WaveData{Height: 3.5}, true
}

type fakeSink struct {
	lines []string
	fail  bool
}

func (f *fakeSink) Submit(line string) error {
	if f.fail {
		return assert.AnError
	}
	f.lines = append(f.lines, line)
	return nil
}

func newTestServer(t *testing.T, e *fakeNetEnv, sink CommandSink) (*Server, *registry.Registry) {
	t.Helper()

	reg := registry.New()
	s, err := New(reg, e, sink, 2, zerolog.Nop())
	require.NoError(t, err)
	return s, reg
}

func TestWindResponse(t *testing.T) {
	s, _ := newTestServer(t, &fakeNetEnv{}, nil)

	resp := s.windResponse("wind", "10.0,-20.0", false, false)
	assert.Equal(t, "wind,10.000000,-20.000000,90.000000,10.000000\n", resp)

	resp = s.windResponse("wind_gust", "10.0,-20.0", true, false)
	assert.Equal(t, "wind_gust,10.000000,-20.000000,90.000000,14.000000\n", resp)
}

func TestWindCurrentAdjusted(t *testing.T) {
	s, _ := newTestServer(t, &fakeNetEnv{oceanValid: true}, nil)

	// Wind 10 m/s from 90 plus a 1 m/s current toward 90.
	resp := s.windResponse("wind_c", "0,0", false, true)
	assert.Equal(t, "wind_c,0.000000,0.000000,90.000000,11.000000\n", resp)

	resp = s.windResponse("wind_gust_c", "0,0", true, true)
	assert.Equal(t, "wind_gust_c,0.000000,0.000000,90.000000,15.000000\n", resp)
}

func TestWindRejectsBadArgs(t *testing.T) {
	s, _ := newTestServer(t, &fakeNetEnv{}, nil)

	assert.Equal(t, "", s.windResponse("wind", "91.0,0", false, false))
	assert.Equal(t, "", s.windResponse("wind", "0,181", false, false))
	assert.Equal(t, "", s.windResponse("wind", "0", false, false))
	assert.Equal(t, "", s.windResponse("wind", "a,b", false, false))
}

func TestOceanAndWaveInvalidSentinel(t *testing.T) {
	s, _ := newTestServer(t, &fakeNetEnv{}, nil)

	assert.Equal(t, "ocean_current,0.000000,0.000000,-999.000000,-999.000000\n",
		s.oceanResponse("ocean_current", "0,0", false))
	assert.Equal(t, "sea_ice,0.000000,0.000000,-999.000000\n",
		s.oceanResponse("sea_ice", "0,0", true))
	assert.Equal(t, "wave_height,0.000000,0.000000,-999.000000\n",
		s.waveResponse("wave_height", "0,0"))
}

func TestOceanAndWaveValid(t *testing.T) {
	s, _ := newTestServer(t, &fakeNetEnv{oceanValid: true, waveValid: true}, nil)

	assert.Equal(t, "sea_ice,0.000000,0.000000,25.000000\n",
		s.oceanResponse("sea_ice", "0,0", true))
	assert.Equal(t, "wave_height,0.000000,0.000000,3.500000\n",
		s.waveResponse("wave_height", "0,0"))
}

func TestBoatDataResponses(t *testing.T) {
	s, reg := newTestServer(t, &fakeNetEnv{}, nil)

	b := boat.New(43.5, -8.25, 0, 0)
	b.V = geo.Vec{Angle: 270.0, Mag: 2.5}
	b.VGround = geo.Vec{Angle: 265.0, Mag: 2.75}
	require.NoError(t, reg.Add(b, "Vega", "", ""))

	resp := s.boatDataResponse("bd", "Vega", false)
	assert.Equal(t, "bd,Vega,ok,43.500000,-8.250000,270.0,2.50,265.0,2.75,0.00,0.0\n", resp)

	assert.Equal(t, "bd,Nope,noboat\n", s.boatDataResponse("bd", "Nope", false))
}

func TestBoatDataMasksCelestialBoats(t *testing.T) {
	s, reg := newTestServer(t, &fakeNetEnv{}, nil)

	require.NoError(t, reg.Add(boat.New(0, 0, 0, boat.FlagCelestialNav), "Sextant", "", ""))

	resp := s.boatDataResponse("bd_nc", "Sextant", true)
	assert.Equal(t, "bd_nc,Sextant,noboat\n", resp)

	resp = s.boatDataResponse("bd", "Sextant", false)
	assert.True(t, strings.HasPrefix(resp, "bd,Sextant,ok,"))
}

func TestBoatCmdRelaysToSink(t *testing.T) {
	sink := &fakeSink{}
	s, _ := newTestServer(t, &fakeNetEnv{}, sink)

	assert.Equal(t, "boatcmd,ok\n", s.boatCmdResponse("Vega,course,180"))
	require.Len(t, sink.lines, 1)
	assert.Equal(t, "Vega,course,180", sink.lines[0])

	sink.fail = true
	assert.Equal(t, "boatcmd,fail\n", s.boatCmdResponse("Vega,course,999"))

	assert.Equal(t, "boatcmd,fail\n", s.boatCmdResponse(""))
}

func TestGroupMembersResponses(t *testing.T) {
	s, reg := newTestServer(t, &fakeNetEnv{}, nil)

	require.NoError(t, reg.Add(boat.New(0, 0, 0, 0), "solo", "", ""))
	require.NoError(t, reg.Add(boat.New(0, 0, 0, 0), "one", "fleet", "Alpha"))
	require.NoError(t, reg.Add(boat.New(0, 0, 0, 0), "two", "fleet", ""))
	require.NoError(t, reg.Add(boat.New(0, 0, 0, boat.FlagHiddenInGroup), "ghost", "fleet", "Boo"))

	assert.Equal(t, "boatgroupmembers,absent,noboat\n", s.groupMembersResponse("boatgroupmembers", "absent"))
	assert.Equal(t, "boatgroupmembers,solo,nogroup\n", s.groupMembersResponse("boatgroupmembers", "solo"))

	want := "boatgroupmembers,one,ok\none,Alpha\ntwo,!\nghost,Boo\n\n"
	assert.Equal(t, want, s.groupMembersResponse("boatgroupmembers", "one"))

	assert.Equal(t, "boatgroupmembers,ghost,ok\nghost,?\n\n", s.groupMembersResponse("boatgroupmembers", "ghost"))
}

func TestSysReqCountsDump(t *testing.T) {
	s, _ := newTestServer(t, &fakeNetEnv{}, nil)

	s.ctrs.inc(counterAccept)
	s.ctrs.inc(counterReqWind)

	line := s.ctrs.dump()
	assert.True(t, strings.HasPrefix(line, "sys_req_counts,1,0,"))
	assert.Equal(t, countersCount, strings.Count(line, ","))
}

func TestServerEndToEnd(t *testing.T) {
	s, reg := newTestServer(t, &fakeNetEnv{}, &fakeSink{})
	require.NoError(t, reg.Add(boat.New(1, 2, 0, 0), "Vega", "", ""))

	require.NoError(t, s.Start(0))
	defer s.Close()

	conn, err := net.DialTimeout("tcp", s.Addr().String(), time.Second)
	require.NoError(t, err)
	defer conn.Close()

	r := bufio.NewReader(conn)

	_, err = conn.Write([]byte("wind,10,-20\n"))
	require.NoError(t, err)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "wind,10.000000,-20.000000,90.000000,10.000000\n", line)

	_, err = conn.Write([]byte("bd,Vega\n"))
	require.NoError(t, err)
	line, err = r.ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "bd,Vega,ok,"))

	// Two pipelined requests come back in order.
	_, err = conn.Write([]byte("bd,Nope\nsys_req_counts\n"))
	require.NoError(t, err)
	line, err = r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "bd,Nope,noboat\n", line)
	line, err = r.ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "sys_req_counts,"))
}

func TestServerClosesOnInvalidRequest(t *testing.T) {
	s, _ := newTestServer(t, &fakeNetEnv{}, nil)
	require.NoError(t, s.Start(0))
	defer s.Close()

	conn, err := net.DialTimeout("tcp", s.Addr().String(), time.Second)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("bogus,1,2\n"))
	require.NoError(t, err)

	r := bufio.NewReader(conn)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "error\n", line)

	// Connection is closed after the error response.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = r.ReadString('\n')
	assert.Error(t, err)
}
