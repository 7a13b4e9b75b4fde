package netserver

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Statistics counter indices. Transport counters first, then one counter
// per request type (including invalid requests).
const (
	counterAccept = iota
	counterAcceptFail
	counterRead
	counterReadFail
	counterDataTooLong
	counterMessage
	counterMessageFail
	counterInvalid

	counterReqBoatDataNC
	counterReqWind
	counterReqWindC
	counterReqWindGust
	counterReqWindGustC
	counterReqOceanCurrent
	counterReqSeaIce
	counterReqWaveHeight
	counterReqBoatData
	counterReqBoatCmd
	counterReqBoatGroupMembers
	counterReqSysReqCounts

	countersCount
)

var counterNames = [countersCount]string{
	"accept",
	"accept_fail",
	"read",
	"read_fail",
	"data_too_long",
	"message",
	"message_fail",
	"invalid",
	"bd_nc",
	"wind",
	"wind_c",
	"wind_gust",
	"wind_gust_c",
	"ocean_current",
	"sea_ice",
	"wave_height",
	"bd",
	"boatcmd",
	"boatgroupmembers",
	"sys_req_counts",
}

// counters is the server's statistics block: plain atomics on the hot
// path, mirrored as an OTel observable gauge for anyone with a meter
// provider installed.
type counters struct {
	vals [countersCount]atomic.Uint64
}

func newCounters() (*counters, error) {
	c := &counters{}

	m := otel.GetMeterProvider().Meter("sailnavsim/netserver")

	gauge, err := m.Int64ObservableGauge(
		"netserver.requests",
		metric.WithDescription("Net server request and transport counters"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			for i := 0; i < countersCount; i++ {
				o.ObserveInt64(gauge, int64(c.vals[i].Load()),
					metric.WithAttributes(attribute.String("counter", counterNames[i])))
			}
			return nil
		},
		gauge,
	)
	if err != nil {
		return nil, fmt.Errorf("registering counter callback: %w", err)
	}

	return c, nil
}

func (c *counters) inc(i int) {
	c.vals[i].Add(1)
}

// dump renders all counters as one CSV line for the sys_req_counts
// request.
func (c *counters) dump() string {
	var sb strings.Builder
	sb.WriteString("sys_req_counts")
	for i := 0; i < countersCount; i++ {
		fmt.Fprintf(&sb, ",%d", c.vals[i].Load())
	}
	sb.WriteByte('\n')
	return sb.String()
}
