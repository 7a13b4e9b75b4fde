package env

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/ls4096/sailnavsim-core/pkg/geo"
)

// Magnetic declination grid CSV layout, one row per grid node on a regular
// 5-degree grid:
//
//	lat,lon,declination,annualChange
//
// The declination column is degrees east of true north at the epoch; the
// annualChange column is degrees per year of secular variation.
type gridCompass struct {
	res   float64
	epoch time.Time
	dec   map[int64]float64
	chg   map[int64]float64
	log   zerolog.Logger
}

func openGridCompass(path string, log zerolog.Logger) (*gridCompass, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c := &gridCompass{
		res:   5.0,
		epoch: time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		dec:   make(map[int64]float64),
		chg:   make(map[int64]float64),
		log:   log,
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = 4
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		vals := make([]float64, 4)
		for i, s := range rec {
			if vals[i], err = strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("bad compass record %v: %w", rec, err)
			}
		}

		k := c.key(vals[0], vals[1])
		c.dec[k] = vals[2]
		c.chg[k] = vals[3]
	}

	log.Info().Int("nodes", len(c.dec)).Msg("Compass data loaded")
	return c, nil
}

func (c *gridCompass) key(lat, lon float64) int64 {
	i := int64(math.Round((lat + 90.0) / c.res))
	j := int64(math.Round((geo.WrapLon(lon) + 180.0) / c.res))
	return i<<32 | (j & 0xffffffff)
}

// MagDec bilinearly interpolates declination between the four surrounding
// grid nodes and advances it by the secular change to the query time.
func (c *gridCompass) MagDec(p geo.Pos, t time.Time) float64 {
	fi := (p.Lat + 90.0) / c.res
	fj := (geo.WrapLon(p.Lon) + 180.0) / c.res

	lat0 := math.Floor(fi)*c.res - 90.0
	lon0 := math.Floor(fj)*c.res - 180.0

	y := (p.Lat - lat0) / c.res
	x := (geo.WrapLon(p.Lon) - lon0) / c.res

	years := t.Sub(c.epoch).Hours() / (24.0 * 365.25)

	node := func(lat, lon float64) float64 {
		k := c.key(lat, lon)
		return c.dec[k] + c.chg[k]*years
	}

	d00 := node(lat0, lon0)
	d10 := node(lat0, lon0+c.res)
	d01 := node(lat0+c.res, lon0)
	d11 := node(lat0+c.res, lon0+c.res)

	return d00*(1-x)*(1-y) + d10*x*(1-y) + d01*(1-x)*y + d11*x*y
}
