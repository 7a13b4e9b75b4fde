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

// Ocean forecast CSV row layout:
//
//	lat,lon,currentU,currentV,surfaceTemp,salinity,ice
//
// Rows cover ocean cells only; positions mapping to an absent cell have no
// valid ocean data. Cells sit on a regular grid with a fixed 0.25-degree
// resolution.
type oceanCell struct {
	u, v        float64
	surfaceTemp float64
	salinity    float64
	ice         float64
}

type oceanGrid struct {
	res   float64
	cells map[int64]oceanCell
}

type csvOcean struct {
	t1, t2     *oceanGrid
	validT1    time.Time
	validT2    time.Time
	log        zerolog.Logger
}

func openCSVOcean(pathT1, pathT2 string, log zerolog.Logger) (*csvOcean, error) {
	t1, err := loadOceanCSV(pathT1)
	if err != nil {
		return nil, err
	}

	t2, err := loadOceanCSV(pathT2)
	if err != nil {
		return nil, err
	}

	// The two files are successive forecast steps twelve hours apart;
	// blending anchors at load time.
	now := time.Now()
	oc := &csvOcean{
		t1:      t1,
		t2:      t2,
		validT1: now,
		validT2: now.Add(12 * time.Hour),
		log:     log,
	}

	log.Info().Int("cellsT1", len(t1.cells)).Int("cellsT2", len(t2.cells)).Msg("Ocean data loaded")
	return oc, nil
}

func loadOceanCSV(path string) (*oceanGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g := &oceanGrid{res: 0.25, cells: make(map[int64]oceanCell)}

	r := csv.NewReader(f)
	r.FieldsPerRecord = 7
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		vals := make([]float64, 7)
		for i, s := range rec {
			if vals[i], err = strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("bad ocean record %v: %w", rec, err)
			}
		}

		g.cells[g.key(vals[0], vals[1])] = oceanCell{
			u:           vals[2],
			v:           vals[3],
			surfaceTemp: vals[4],
			salinity:    vals[5],
			ice:         vals[6],
		}
	}

	return g, nil
}

func (g *oceanGrid) key(lat, lon float64) int64 {
	i := int64(math.Round((lat + 90.0) / g.res))
	j := int64(math.Round((lon + 180.0) / g.res))
	return i<<32 | (j & 0xffffffff)
}

func (g *oceanGrid) at(p geo.Pos) (oceanCell, bool) {
	c, ok := g.cells[g.key(p.Lat, p.Lon)]
	return c, ok
}

// OceanAt reports ocean conditions at the position, blending the two
// forecast steps. The position is covered only if both steps carry a cell
// for it.
func (o *csvOcean) OceanAt(p geo.Pos) (OceanData, bool) {
	c1, ok1 := o.t1.at(p)
	c2, ok2 := o.t2.at(p)
	if !ok1 || !ok2 {
		return OceanData{}, false
	}

	span := o.validT2.Sub(o.validT1)
	frac := 0.0
	if span > 0 {
		frac = float64(time.Now().Sub(o.validT1)) / float64(span)
		if frac < 0.0 {
			frac = 0.0
		} else if frac > 1.0 {
			frac = 1.0
		}
	}

	u := blend(c1.u, c2.u, frac)
	v := blend(c1.v, c2.v, frac)

	od := OceanData{
		Current:     currentVector(u, v),
		SurfaceTemp: blend(c1.surfaceTemp, c2.surfaceTemp, frac),
		Salinity:    blend(c1.salinity, c2.salinity, frac),
		Ice:         blend(c1.ice, c2.ice, frac),
	}
	return od, true
}

// currentVector converts U/V components into an oceanographic current
// vector bearing the direction the water flows toward.
func currentVector(u, v float64) geo.Vec {
	mag := math.Hypot(u, v)
	if mag == 0.0 {
		return geo.Vec{}
	}
	return geo.Vec{Angle: geo.Wrap360(math.Atan2(u, v) * 180.0 / math.Pi), Mag: mag}
}
