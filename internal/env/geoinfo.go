package env

import (
	"math"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/ls4096/sailnavsim-core/pkg/geo"
)

// bitmapGeoInfo answers land/water queries from a packed global bitmask at
// 30 arc-second resolution. One bit per cell, rows from south to north,
// cells from west to east; a set bit means water.
type bitmapGeoInfo struct {
	lat0, lon0 float64
	step       float64
	nLon       int
	nLat       int
	data       []byte
	log        zerolog.Logger
}

const geoWaterFilename = "water.bin"

func openBitmapGeoInfo(dir string, log zerolog.Logger) (*bitmapGeoInfo, error) {
	b, err := os.ReadFile(filepath.Join(dir, geoWaterFilename))
	if err != nil {
		return nil, err
	}

	const cells = 43200
	g := &bitmapGeoInfo{
		lat0: -90.0,
		lon0: -180.0,
		step: 360.0 / float64(cells),
		nLon: cells,
		nLat: cells / 2,
		data: b,
		log:  log,
	}

	log.Info().Int("bytes", len(b)).Msg("Geographic water data loaded")
	return g, nil
}

func (g *bitmapGeoInfo) IsWater(p geo.Pos) bool {
	i := int(math.Round((p.Lat - g.lat0) / g.step))
	j := int(math.Round((geo.WrapLon(p.Lon) - g.lon0) / g.step))

	if i < 0 {
		i = 0
	} else if i >= g.nLat {
		i = g.nLat - 1
	}
	if j < 0 {
		j = 0
	} else if j >= g.nLon {
		j = g.nLon - 1
	}

	bit := i*g.nLon + j
	byteIdx := bit / 8
	if byteIdx >= len(g.data) {
		return false
	}

	return (g.data[byteIdx]>>(7-uint(bit%8)))&0x01 == 0x01
}
