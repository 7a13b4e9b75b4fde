// Command sailnavsim runs the sailing navigation simulator: a 1 Hz
// simulation loop advancing every registered boat across real geography
// under real weather, with a command ingress, a TCP query server and
// persistent per-boat logs.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/ls4096/sailnavsim-core/internal/boat"
	"github.com/ls4096/sailnavsim-core/internal/boatinit"
	"github.com/ls4096/sailnavsim-core/internal/command"
	"github.com/ls4096/sailnavsim-core/internal/config"
	"github.com/ls4096/sailnavsim-core/internal/database"
	"github.com/ls4096/sailnavsim-core/internal/env"
	"github.com/ls4096/sailnavsim-core/internal/logger"
	"github.com/ls4096/sailnavsim-core/internal/logging"
	"github.com/ls4096/sailnavsim-core/internal/monitor"
	"github.com/ls4096/sailnavsim-core/internal/netserver"
	"github.com/ls4096/sailnavsim-core/internal/registry"
	"github.com/ls4096/sailnavsim-core/internal/sim"
)

var versionString = "SailNavSim version 2.0.0-dev"

type options struct {
	perf    bool
	netPort uint16
	hasPort bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, rc, done := parseArgs(os.Args[1:])
	if done {
		return rc
	}

	if err := config.Load("."); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	log := logging.Setup(viper.GetString("logLevel"))
	log.Info().Msg(versionString)

	e, err := env.Open(env.Config{
		WeatherDirF1: viper.GetString("data.weatherDirF1"),
		WeatherDirF2: viper.GetString("data.weatherDirF2"),
		OceanPathT1:  viper.GetString("data.oceanPathT1"),
		OceanPathT2:  viper.GetString("data.oceanPathT2"),
		WavePath:     viper.GetString("data.wavePath"),
		GeoInfoDir:   viper.GetString("data.geoInfoDir"),
		CompassPath:  viper.GetString("data.compassPath"),
	}, log.With().Str("component", "env").Logger())
	if err != nil {
		log.Error().Err(err).Msg("Failed to init environmental data")
		return 1
	}

	reg := registry.New()
	cmds := command.NewQueue()
	solver := boat.NewDefaultAdvancedSolver()

	if opts.perf {
		engine := sim.New(reg, e, cmds, nil, solver, time.Now().Unix(),
			log.With().Str("component", "sim").Logger())
		if err := engine.RunPerf(); err != nil {
			log.Error().Err(err).Msg("Performance run failed")
			return 1
		}
		return 0
	}

	parser := command.NewParser(solver)
	reader := command.NewReader(viper.GetString("commands.fifoPath"), parser, cmds,
		log.With().Str("component", "command").Logger())
	go reader.Run()

	db := database.NewManager(log.With().Str("component", "database").Logger())
	if err := db.Connect(); err != nil {
		log.Error().Err(err).Msg("Failed to connect to database; not logging rows")
		db = nil
	}

	lg := logger.New(viper.GetString("logger.csvDir"), db,
		log.With().Str("component", "logger").Logger())
	go lg.Run()

	engine := sim.New(reg, e, cmds, lg, solver, time.Now().Unix(),
		log.With().Str("component", "sim").Logger())

	mon := monitor.NewManager(log.With().Str("component", "monitor").Logger())
	if err := mon.Connect(); err != nil {
		log.Warn().Err(err).Msg("Failed to connect to InfluxDB")
	} else if viper.GetBool("influx.enabled") {
		engine.SetMonitor(mon)
		defer mon.Close()
	}

	if opts.hasPort {
		srv, err := netserver.New(reg, e, reader, viper.GetInt("net.workers"),
			log.With().Str("component", "netserver").Logger())
		if err != nil {
			log.Error().Err(err).Msg("Failed to create net server")
			return 1
		}
		if err := srv.Start(opts.netPort); err != nil {
			log.Error().Err(err).Msg("Failed to start net server")
			return 1
		}
		defer srv.Close()
	}

	reg.Lock()
	err = boatinit.Load(reg, db, viper.GetString("boatInit.path"),
		log.With().Str("component", "boatinit").Logger())
	reg.Unlock()
	if err != nil {
		log.Error().Err(err).Msg("Failed to read boats for init")
		return 1
	}

	engine.Run()
	return 0
}

// parseArgs handles the fixed CLI surface: -v|--version prints and exits
// zero, --perf selects performance mode, --netport enables the TCP
// server. Anything else prints usage and exits non-zero.
func parseArgs(args []string) (options, int, bool) {
	var opts options

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-v", "--version":
			fmt.Println(versionString)
			return opts, 0, true

		case "--perf":
			opts.perf = true

		case "--netport":
			if i+1 >= len(args) {
				fmt.Println("Invalid args.")
				fmt.Println("Usage: sailnavsim [--netport <port>] [--perf] [-v|--version]")
				return opts, 1, true
			}
			i++
			port, err := strconv.ParseUint(args[i], 10, 16)
			if err != nil {
				fmt.Println("Invalid args.")
				fmt.Println("Usage: sailnavsim [--netport <port>] [--perf] [-v|--version]")
				return opts, 1, true
			}
			opts.netPort = uint16(port)
			opts.hasPort = true

		default:
			fmt.Println("Invalid args.")
			fmt.Println("Usage: sailnavsim [--netport <port>] [--perf] [-v|--version]")
			return opts, 1, true
		}
	}

	return opts, 0, false
}
