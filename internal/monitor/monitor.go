// Package monitor ships simulation statistics to InfluxDB: tick
// durations, fleet size and queue depths. It is optional and disabled by
// default.
package monitor

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Manager handles the InfluxDB connection and writes.
type Manager struct {
	client  influxdb2.Client
	writer  influxdb2_api.WriteAPI
	isValid bool
	log     zerolog.Logger
}

// NewManager creates an InfluxDB manager; call Connect before use.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{log: log}
}

// Connect establishes the InfluxDB connection if influx.enabled is set.
// A failed ping leaves the manager disabled rather than failing startup.
func (m *Manager) Connect() error {
	if !viper.GetBool("influx.enabled") {
		return nil
	}

	m.client = influxdb2.NewClientWithOptions(
		fmt.Sprintf(
			"%s://%s:%s",
			viper.GetString("influx.protocol"),
			viper.GetString("influx.host"),
			viper.GetString("influx.port"),
		),
		viper.GetString("influx.token"),
		influxdb2.DefaultOptions().
			SetBatchSize(100).
			SetFlushInterval(10000),
	)

	running, err := m.client.Ping(context.Background())
	if err != nil || !running {
		m.log.Warn().Err(err).Msg("InfluxDB client failed to initialize; statistics disabled")
		return nil
	}

	m.writer = m.client.WriteAPI(viper.GetString("influx.org"), viper.GetString("influx.bucket"))
	m.isValid = true
	m.log.Info().Msg("InfluxDB client initialized")
	return nil
}

// RecordTick queues one tick's statistics for asynchronous write.
func (m *Manager) RecordTick(boatCount, cmdCount, logQueueLen int, tickDuration time.Duration) {
	if !m.isValid {
		return
	}

	p := influxdb2.NewPointWithMeasurement("sim_tick").
		AddField("boats", boatCount).
		AddField("commands", cmdCount).
		AddField("log_queue", logQueueLen).
		AddField("duration_ns", tickDuration.Nanoseconds()).
		SetTime(time.Now())

	m.writer.WritePoint(p)
}

// Close flushes pending writes and shuts the client down.
func (m *Manager) Close() {
	if m.client != nil {
		if m.writer != nil {
			m.writer.Flush()
		}
		m.client.Close()
	}
}
