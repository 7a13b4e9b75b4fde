// Package env supplies the geophysical data the simulation consumes:
// weather, ocean, waves, land/water coverage, magnetic declination and
// celestial ephemerides. All providers answer read-only point queries and
// are safe for concurrent use.
package env

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ls4096/sailnavsim-core/pkg/geo"
)

// Precipitation condition values recorded in boat logs.
const (
	PrecipNone = 0
	PrecipRain = 1
	PrecipSnow = 2
)

// WeatherData is a point-in-time weather snapshot.
type WeatherData struct {
	Wind     geo.Vec // direction the wind blows from, m/s
	WindGust float64 // m/s

	Temp       float64 // deg C
	Dewpoint   float64 // deg C
	Pressure   float64 // hPa
	Cloud      float64 // percent
	Visibility float64 // m
	PrecipRate float64 // mm/h
	Cond       int
}

// OceanData is a point-in-time ocean snapshot.
type OceanData struct {
	Current     geo.Vec // direction the current flows toward, m/s
	SurfaceTemp float64 // deg C
	Salinity    float64 // g/kg
	Ice         float64 // percent concentration
}

// WaveData is a point-in-time sea-state snapshot.
type WaveData struct {
	Height float64 // significant wave height, m
}

// Horizontal is a topocentric celestial coordinate.
type Horizontal struct {
	Az  float64 // degrees, [0, 360)
	Alt float64 // degrees above horizon
}

// Weather answers point queries for atmospheric conditions. With windOnly
// set, implementations may skip the non-wind fields.
type Weather interface {
	WeatherAt(p geo.Pos, windOnly bool) WeatherData
}

// Ocean answers point queries for ocean surface conditions. The bool is
// false where no data covers the position.
type Ocean interface {
	OceanAt(p geo.Pos) (OceanData, bool)
}

// Wave answers point queries for sea state. The bool is false where no
// data covers the position.
type Wave interface {
	WaveAt(p geo.Pos) (WaveData, bool)
}

// GeoInfo answers whether a position is on navigable water.
type GeoInfo interface {
	IsWater(p geo.Pos) bool
}

// Compass answers point queries for magnetic declination, in degrees east
// of true north, at the given time.
type Compass interface {
	MagDec(p geo.Pos, t time.Time) float64
}

// Celestial object identifiers. Stars are numbered 1 through ObjPolaris in
// the navigational star catalog; the Sun is object 0.
const (
	ObjSun     = 0
	ObjPolaris = 57
)

// Celestial computes apparent topocentric coordinates of the Sun and the
// navigational stars, with atmospheric refraction applied from the given
// pressure (hPa) and temperature (deg C).
type Celestial interface {
	ObjectHorizontal(obj int, t time.Time, p geo.Pos, pressure, temp float64) (Horizontal, error)
}

// Provider aggregates all environmental data sources.
type Provider interface {
	Weather
	Ocean
	Wave
	GeoInfo
	Compass
	Celestial
}

// Config names the data files backing the default provider.
type Config struct {
	WeatherDirF1 string // earlier forecast GRIB directory
	WeatherDirF2 string // later forecast GRIB directory
	OceanPathT1  string // earlier ocean forecast CSV
	OceanPathT2  string // later ocean forecast CSV
	WavePath     string // wave height CSV
	GeoInfoDir   string // land/water bitmap directory
	CompassPath  string // magnetic declination grid CSV
}

type provider struct {
	*gribWeather
	*csvOcean
	*csvWave
	*bitmapGeoInfo
	*gridCompass
	*ephemerisCelestial
}

// Open loads every data source named by cfg. The sub-modules initialize in
// a fixed order: weather, ocean, wave, geo, compass, celestial.
func Open(cfg Config, log zerolog.Logger) (Provider, error) {
	wx, err := openGribWeather(cfg.WeatherDirF1, cfg.WeatherDirF2, log)
	if err != nil {
		return nil, fmt.Errorf("weather: %w", err)
	}

	oc, err := openCSVOcean(cfg.OceanPathT1, cfg.OceanPathT2, log)
	if err != nil {
		return nil, fmt.Errorf("ocean: %w", err)
	}

	wv, err := openCSVWave(cfg.WavePath, log)
	if err != nil {
		return nil, fmt.Errorf("wave: %w", err)
	}

	gi, err := openBitmapGeoInfo(cfg.GeoInfoDir, log)
	if err != nil {
		return nil, fmt.Errorf("geo info: %w", err)
	}

	cp, err := openGridCompass(cfg.CompassPath, log)
	if err != nil {
		return nil, fmt.Errorf("compass: %w", err)
	}

	return &provider{
		gribWeather:        wx,
		csvOcean:           oc,
		csvWave:            wv,
		bitmapGeoInfo:      gi,
		gridCompass:        cp,
		ephemerisCelestial: newEphemerisCelestial(),
	}, nil
}
