package env

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/nilsmagnus/grib/griblib"
	"github.com/rs/zerolog"

	"github.com/ls4096/sailnavsim-core/pkg/geo"
)

// GRIB2 product identifiers for the fields we consume (GFS conventions).
const (
	gribDisciplineMeteo = 0

	gribCatMoisture    = 1
	gribCatMomentum    = 2
	gribCatTemperature = 0
	gribCatMass        = 3
	gribCatCloud       = 6
	gribCatPhysical    = 19

	gribParamTemp       = 0
	gribParamDewpoint   = 6
	gribParamPrate      = 7
	gribParamUWind      = 2
	gribParamVWind      = 3
	gribParamGust       = 22
	gribParamPrmsl      = 1
	gribParamTotalCloud = 1
	gribParamVisibility = 0

	gribSurfaceGround       = 1
	gribSurfaceMeanSeaLevel = 101
	gribSurfaceHeightAbove  = 103
)

// wxGrid is one regular lat/lon field decoded from a GRIB message. Rows run
// from lat0 toward latStep (negative for the usual north-to-south scan).
type wxGrid struct {
	lat0, lon0       float64
	latStep, lonStep float64
	nLat, nLon       int
	data             []float64
}

// sample bilinearly interpolates the grid at the given position, treating
// the longitude axis as periodic.
func (g *wxGrid) sample(p geo.Pos) float64 {
	fj := (p.Lat - g.lat0) / g.latStep
	if fj < 0 {
		fj = 0
	} else if fj > float64(g.nLat-1) {
		fj = float64(g.nLat - 1)
	}

	lon := p.Lon - g.lon0
	for lon < 0 {
		lon += 360.0
	}
	fi := math.Mod(lon/g.lonStep, float64(g.nLon))

	j0 := int(fj)
	i0 := int(fi)
	j1 := j0 + 1
	if j1 > g.nLat-1 {
		j1 = g.nLat - 1
	}
	i1 := (i0 + 1) % g.nLon

	y := fj - float64(j0)
	x := fi - float64(i0)

	v00 := g.data[j0*g.nLon+i0]
	v10 := g.data[j0*g.nLon+i1]
	v01 := g.data[j1*g.nLon+i0]
	v11 := g.data[j1*g.nLon+i1]

	return v00*(1-x)*(1-y) + v10*x*(1-y) + v01*(1-x)*y + v11*x*y
}

// wxForecast is the full decoded field set of one forecast time.
type wxForecast struct {
	uWind      *wxGrid
	vWind      *wxGrid
	gust       *wxGrid
	temp       *wxGrid
	dewpoint   *wxGrid
	pressure   *wxGrid
	cloud      *wxGrid
	visibility *wxGrid
	prate      *wxGrid
}

type gribWeather struct {
	f1, f2  *wxForecast
	validF1 time.Time
	validF2 time.Time
	log     zerolog.Logger
}

// The two forecast directories are successive three-hour steps; blending
// anchors at load time.
const forecastStep = 3 * time.Hour

func openGribWeather(dirF1, dirF2 string, log zerolog.Logger) (*gribWeather, error) {
	f1, err := loadForecastDir(dirF1)
	if err != nil {
		return nil, err
	}

	f2, err := loadForecastDir(dirF2)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	log.Info().Str("f1", dirF1).Str("f2", dirF2).Msg("Weather forecasts loaded")

	return &gribWeather{
		f1:      f1,
		f2:      f2,
		validF1: now,
		validF2: now.Add(forecastStep),
		log:     log,
	}, nil
}

func loadForecastDir(dir string) (*wxForecast, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no GRIB files in %s", dir)
	}

	fc := &wxForecast{}
	for _, path := range paths {
		if err := fc.loadFile(path); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if fc.uWind == nil || fc.vWind == nil || fc.gust == nil {
		return nil, fmt.Errorf("wind fields missing from %s", dir)
	}

	return fc, nil
}

func (fc *wxForecast) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	messages, err := griblib.ReadMessages(f)
	if err != nil {
		return err
	}

	for _, m := range messages {
		if m.Section0.Discipline != gribDisciplineMeteo {
			continue
		}

		pdt := m.Section4.ProductDefinitionTemplate

		grid0, ok := m.Section3.Definition.(*griblib.Grid0)
		if !ok {
			continue
		}

		g := &wxGrid{
			lat0:    float64(grid0.La1) / 1e6,
			lon0:    float64(grid0.Lo1) / 1e6,
			latStep: -float64(grid0.Dj) / 1e6, // GFS grids scan north to south
			lonStep: float64(grid0.Di) / 1e6,
			nLat:    int(grid0.Nj),
			nLon:    int(grid0.Ni),
			data:    m.Section7.Data,
		}
		if len(g.data) < g.nLat*g.nLon {
			continue
		}

		cat := pdt.ParameterCategory
		num := pdt.ParameterNumber
		sfc := pdt.FirstSurface

		switch {
		case cat == gribCatMomentum && num == gribParamUWind && sfc.Type == gribSurfaceHeightAbove && sfc.Value == 10:
			fc.uWind = g
		case cat == gribCatMomentum && num == gribParamVWind && sfc.Type == gribSurfaceHeightAbove && sfc.Value == 10:
			fc.vWind = g
		case cat == gribCatMomentum && num == gribParamGust:
			fc.gust = g
		case cat == gribCatTemperature && num == gribParamTemp && sfc.Type == gribSurfaceHeightAbove && sfc.Value == 2:
			fc.temp = g
		case cat == gribCatTemperature && num == gribParamDewpoint && sfc.Type == gribSurfaceHeightAbove && sfc.Value == 2:
			fc.dewpoint = g
		case cat == gribCatMass && num == gribParamPrmsl && sfc.Type == gribSurfaceMeanSeaLevel:
			fc.pressure = g
		case cat == gribCatCloud && num == gribParamTotalCloud:
			fc.cloud = g
		case cat == gribCatPhysical && num == gribParamVisibility:
			fc.visibility = g
		case cat == gribCatMoisture && num == gribParamPrate && sfc.Type == gribSurfaceGround:
			fc.prate = g
		}
	}

	return nil
}

const kelvinZero = 273.15

// WeatherAt blends the two loaded forecasts linearly in time at the query
// position. With windOnly set, only the wind and gust fields are filled.
func (w *gribWeather) WeatherAt(p geo.Pos, windOnly bool) WeatherData {
	frac := w.blendFraction(time.Now())

	u := blend(w.f1.uWind.sample(p), w.f2.uWind.sample(p), frac)
	v := blend(w.f1.vWind.sample(p), w.f2.vWind.sample(p), frac)

	var wx WeatherData
	wx.Wind = windVector(u, v)
	wx.WindGust = blend(w.f1.gust.sample(p), w.f2.gust.sample(p), frac)
	if wx.WindGust < wx.Wind.Mag {
		wx.WindGust = wx.Wind.Mag
	}

	if windOnly {
		return wx
	}

	wx.Temp = blendGrids(w.f1.temp, w.f2.temp, p, frac) - kelvinZero
	wx.Dewpoint = blendGrids(w.f1.dewpoint, w.f2.dewpoint, p, frac) - kelvinZero
	wx.Pressure = blendGrids(w.f1.pressure, w.f2.pressure, p, frac) / 100.0
	wx.Cloud = blendGrids(w.f1.cloud, w.f2.cloud, p, frac)
	wx.Visibility = blendGrids(w.f1.visibility, w.f2.visibility, p, frac)
	wx.PrecipRate = blendGrids(w.f1.prate, w.f2.prate, p, frac) * 3600.0 // kg/m2/s -> mm/h

	if wx.PrecipRate > 0.01 {
		if wx.Temp <= 0.0 {
			wx.Cond = PrecipSnow
		} else {
			wx.Cond = PrecipRain
		}
	}

	return wx
}

func (w *gribWeather) blendFraction(now time.Time) float64 {
	span := w.validF2.Sub(w.validF1)
	if span <= 0 {
		return 0.0
	}
	frac := float64(now.Sub(w.validF1)) / float64(span)
	if frac < 0.0 {
		frac = 0.0
	} else if frac > 1.0 {
		frac = 1.0
	}
	return frac
}

func blend(a, b, frac float64) float64 {
	return a*(1.0-frac) + b*frac
}

func blendGrids(g1, g2 *wxGrid, p geo.Pos, frac float64) float64 {
	if g1 == nil || g2 == nil {
		return 0.0
	}
	return blend(g1.sample(p), g2.sample(p), frac)
}

// windVector converts U/V components (m/s, east/north positive) into a
// meteorological wind vector bearing the direction the wind blows from.
func windVector(u, v float64) geo.Vec {
	mag := math.Hypot(u, v)
	if mag == 0.0 {
		return geo.Vec{}
	}
	dir := math.Atan2(u, v)*180.0/math.Pi + 180.0
	return geo.Vec{Angle: geo.Wrap360(dir), Mag: mag}
}
