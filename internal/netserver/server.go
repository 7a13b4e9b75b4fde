// Package netserver serves the line-delimited TCP request protocol: point
// queries into the environmental data, boat state reads, and a relay into
// the command ingress.
package netserver

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ls4096/sailnavsim-core/internal/boat"
	"github.com/ls4096/sailnavsim-core/internal/env"
	"github.com/ls4096/sailnavsim-core/internal/registry"
	"github.com/ls4096/sailnavsim-core/pkg/geo"
)

const (
	// DefaultWorkers is the worker pool size unless configured otherwise.
	DefaultWorkers = 5

	acceptQueueSize = 256
	msgBufSize      = 1024

	invalidValue = -999.0
)

// Request keywords, matched in this order (hot path first).
const (
	reqBoatDataNC       = "bd_nc"
	reqWind             = "wind"
	reqWindC            = "wind_c"
	reqWindGust         = "wind_gust"
	reqWindGustC        = "wind_gust_c"
	reqOceanCurrent     = "ocean_current"
	reqSeaIce           = "sea_ice"
	reqWaveHeight       = "wave_height"
	reqBoatData         = "bd"
	reqBoatCmd          = "boatcmd"
	reqBoatGroupMembers = "boatgroupmembers"
	reqSysReqCounts     = "sys_req_counts"
)

// CommandSink accepts raw command lines relayed through boatcmd requests.
type CommandSink interface {
	Submit(line string) error
}

// Environment is the slice of env.Provider the server queries.
type Environment interface {
	env.Weather
	env.Ocean
	env.Wave
}

// Server is the TCP request server: one accept goroutine feeding a
// bounded queue of connections drained by a fixed worker pool.
type Server struct {
	reg  *registry.Registry
	env  Environment
	cmds CommandSink

	workers int
	ctrs    *counters
	log     zerolog.Logger

	listener net.Listener
	accepted chan net.Conn
}

// New creates a server. Workers of zero or less selects DefaultWorkers.
func New(reg *registry.Registry, e Environment, cmds CommandSink, workers int, log zerolog.Logger) (*Server, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	ctrs, err := newCounters()
	if err != nil {
		return nil, err
	}

	return &Server{
		reg:      reg,
		env:      e,
		cmds:     cmds,
		workers:  workers,
		ctrs:     ctrs,
		log:      log,
		accepted: make(chan net.Conn, acceptQueueSize),
	}, nil
}

// Start binds the loopback listener on the given port and launches the
// accept goroutine and worker pool.
func (s *Server) Start(port uint16) error {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", port, err)
	}
	s.listener = ln

	s.log.Info().Uint16("port", port).Msg("Listening")

	s.log.Info().Int("workers", s.workers).Msg("Starting up worker threads...")
	for i := 0; i < s.workers; i++ {
		go s.workerLoop(i)
	}

	go s.acceptLoop()
	return nil
}

// Close shuts the listener; in-flight connections finish on their own.
func (s *Server) Close() error {
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		s.ctrs.inc(counterAccept)

		if err != nil {
			s.log.Error().Err(err).Msg("Failed accept")
			s.ctrs.inc(counterAcceptFail)

			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return
		}

		select {
		case s.accepted <- conn:
		default:
			// No more room for accepted connections.
			s.log.Error().Msg("Accepted connection queue is full!")
			conn.Close()
		}
	}
}

func (s *Server) workerLoop(id int) {
	for conn := range s.accepted {
		s.processConnection(id, conn)
		conn.Close()
	}
}

func (s *Server) processConnection(workerID int, conn net.Conn) {
	r := bufio.NewReaderSize(conn, msgBufSize)

	for {
		line, err := r.ReadSlice('\n')
		if err == bufio.ErrBufferFull {
			// A request message that doesn't fit inside the buffer.
			s.log.Error().Int("worker", workerID).Msg("Excessive message length!")
			s.ctrs.inc(counterDataTooLong)
			return
		}

		s.ctrs.inc(counterRead)

		if len(line) > 0 && line[len(line)-1] == '\n' {
			s.ctrs.inc(counterMessage)
			if !s.handleMessage(conn, strings.TrimRight(string(line), "\r\n")) {
				s.ctrs.inc(counterMessageFail)
				return
			}
		}

		if err != nil {
			// End of stream or read failure.
			if !errors.Is(err, io.EOF) {
				s.ctrs.inc(counterReadFail)
			}
			return
		}
	}
}

// handleMessage dispatches one request line and writes the response.
// Returning false closes the connection.
func (s *Server) handleMessage(conn net.Conn, req string) bool {
	keyword, rest, _ := strings.Cut(req, ",")

	var resp string
	switch keyword {
	case reqBoatDataNC:
		s.ctrs.inc(counterReqBoatDataNC)
		resp = s.boatDataResponse(keyword, rest, true)

	case reqWind:
		s.ctrs.inc(counterReqWind)
		resp = s.windResponse(keyword, rest, false, false)

	case reqWindC:
		s.ctrs.inc(counterReqWindC)
		resp = s.windResponse(keyword, rest, false, true)

	case reqWindGust:
		s.ctrs.inc(counterReqWindGust)
		resp = s.windResponse(keyword, rest, true, false)

	case reqWindGustC:
		s.ctrs.inc(counterReqWindGustC)
		resp = s.windResponse(keyword, rest, true, true)

	case reqOceanCurrent:
		s.ctrs.inc(counterReqOceanCurrent)
		resp = s.oceanResponse(keyword, rest, false)

	case reqSeaIce:
		s.ctrs.inc(counterReqSeaIce)
		resp = s.oceanResponse(keyword, rest, true)

	case reqWaveHeight:
		s.ctrs.inc(counterReqWaveHeight)
		resp = s.waveResponse(keyword, rest)

	case reqBoatData:
		s.ctrs.inc(counterReqBoatData)
		resp = s.boatDataResponse(keyword, rest, false)

	case reqBoatCmd:
		s.ctrs.inc(counterReqBoatCmd)
		resp = s.boatCmdResponse(rest)

	case reqBoatGroupMembers:
		s.ctrs.inc(counterReqBoatGroupMembers)
		resp = s.groupMembersResponse(keyword, rest)

	case reqSysReqCounts:
		s.ctrs.inc(counterReqSysReqCounts)
		resp = s.ctrs.dump()

	default:
		s.ctrs.inc(counterInvalid)
		resp = ""
	}

	if resp == "" {
		conn.Write([]byte("error\n"))
		return false
	}

	_, err := conn.Write([]byte(resp))
	return err == nil
}

// Addr returns the bound listener address, for tests binding port 0.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// parseLatLon validates a "lat,lon" argument pair.
func parseLatLon(rest string) (geo.Pos, bool) {
	latStr, lonStr, ok := strings.Cut(rest, ",")
	if !ok {
		return geo.Pos{}, false
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return geo.Pos{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return geo.Pos{}, false
	}

	if lat < -90.0 || lat > 90.0 || lon < -180.0 || lon > 180.0 {
		return geo.Pos{}, false
	}

	return geo.Pos{Lat: lat, Lon: lon}, true
}

func (s *Server) windResponse(keyword, rest string, gust, withCurrent bool) string {
	pos, ok := parseLatLon(rest)
	if !ok {
		return ""
	}

	wx := s.env.WeatherAt(pos, true)
	gustVec := geo.Vec{Angle: wx.Wind.Angle, Mag: wx.WindGust}

	if withCurrent {
		if od, valid := s.env.OceanAt(pos); valid {
			wx.Wind = geo.Add(wx.Wind, od.Current)
			gustVec = geo.Add(gustVec, od.Current)
		}
	}

	angle, mag := wx.Wind.Angle, wx.Wind.Mag
	if gust {
		angle, mag = gustVec.Angle, gustVec.Mag
	}

	return fmt.Sprintf("%s,%f,%f,%f,%f\n", keyword, pos.Lat, pos.Lon, angle, mag)
}

func (s *Server) oceanResponse(keyword, rest string, seaIce bool) string {
	pos, ok := parseLatLon(rest)
	if !ok {
		return ""
	}

	od, valid := s.env.OceanAt(pos)

	if seaIce {
		ice := invalidValue
		if valid {
			ice = od.Ice
		}
		return fmt.Sprintf("%s,%f,%f,%f\n", keyword, pos.Lat, pos.Lon, ice)
	}

	dir, mag := invalidValue, invalidValue
	if valid {
		dir, mag = od.Current.Angle, od.Current.Mag
	}
	return fmt.Sprintf("%s,%f,%f,%f,%f\n", keyword, pos.Lat, pos.Lon, dir, mag)
}

func (s *Server) waveResponse(keyword, rest string) string {
	pos, ok := parseLatLon(rest)
	if !ok {
		return ""
	}

	height := invalidValue
	if wd, valid := s.env.WaveAt(pos); valid {
		height = wd.Height
	}

	return fmt.Sprintf("%s,%f,%f,%f\n", keyword, pos.Lat, pos.Lon, height)
}

func (s *Server) boatDataResponse(keyword, name string, noCelestial bool) string {
	if name == "" {
		return ""
	}

	s.reg.RLock()

	var (
		found   bool
		pos     geo.Pos
		v       geo.Vec
		vGround geo.Vec
		leeway  float64
		heel    float64
	)

	if b := s.reg.Get(name); b != nil {
		if !(noCelestial && b.Flags&boat.FlagCelestialNav != 0) {
			found = true
			pos = b.Pos
			v = b.V
			vGround = b.VGround
			leeway = b.LeewaySpeed
			heel = b.HeelingAngle
		}
	}

	s.reg.RUnlock()

	if !found {
		return fmt.Sprintf("%s,%s,noboat\n", keyword, name)
	}

	return fmt.Sprintf("%s,%s,ok,%.6f,%.6f,%.1f,%.2f,%.1f,%.2f,%.2f,%.1f\n",
		keyword, name,
		pos.Lat, pos.Lon,
		v.Angle, v.Mag,
		vGround.Angle, vGround.Mag,
		leeway, heel)
}

func (s *Server) boatCmdResponse(rest string) string {
	if rest == "" || s.cmds == nil {
		return "boatcmd,fail\n"
	}

	if err := s.cmds.Submit(rest); err != nil {
		return "boatcmd,fail\n"
	}
	return "boatcmd,ok\n"
}

func (s *Server) groupMembersResponse(keyword, name string) string {
	if name == "" {
		return ""
	}

	s.reg.RLock()
	defer s.reg.RUnlock()

	e := s.reg.GetEntry(name)
	if e == nil {
		return fmt.Sprintf("%s,%s,noboat\n", keyword, name)
	}
	if e.Group == "" {
		return fmt.Sprintf("%s,%s,nogroup\n", keyword, name)
	}
	if e.Boat.Flags&boat.FlagHiddenInGroup != 0 {
		return fmt.Sprintf("%s,%s,ok\n%s,?\n\n", keyword, name, name)
	}

	return fmt.Sprintf("%s,%s,ok\n%s\n", keyword, name, s.reg.GroupMembershipResponse(e.Group))
}
