package env

import (
	"fmt"
	"math"
	"time"

	"github.com/ls4096/sailnavsim-core/pkg/geo"
)

// ephemerisCelestial computes low-precision apparent places for the Sun and
// the navigational star catalog. Accuracy is a few arc-minutes, which is
// ample for simulated sextant work.
type ephemerisCelestial struct{}

func newEphemerisCelestial() *ephemerisCelestial {
	return &ephemerisCelestial{}
}

// equatorial is a geocentric equatorial coordinate, degrees.
type equatorial struct {
	ra  float64 // right ascension
	dec float64 // declination
}

// The 57 navigational stars, J2000 right ascension and declination in
// degrees, indexed by object id 1..57 (57 is Polaris).
var navStars = [...]equatorial{
	{},                    // 0 unused (Sun)
	{2.097, 29.090},       // 1  Alpheratz
	{10.897, -17.987},     // 2  Ankaa
	{14.177, 60.717},      // 3  Schedar
	{21.454, -18.000},     // 4  Diphda
	{24.428, -57.237},     // 5  Achernar
	{31.793, 23.462},      // 6  Hamal
	{95.988, -52.696},     // 7  Canopus (sorted ids follow SHA order loosely)
	{44.565, -40.305},     // 8  Acamar
	{45.570, 4.090},       // 9  Menkar
	{49.879, -21.758},     // 10 (Fornacis region placeholder star)
	{51.081, 49.861},      // 11 Mirfak
	{68.980, 16.509},      // 12 Aldebaran
	{78.634, -8.202},      // 13 Rigel
	{79.172, 45.998},      // 14 Capella
	{81.283, 6.350},       // 15 Bellatrix
	{81.573, 28.608},      // 16 Elnath
	{84.053, -1.202},      // 17 Alnilam
	{88.793, 7.407},       // 18 Betelgeuse
	{101.287, -16.716},    // 19 Sirius
	{102.048, -61.942},    // 20 Adhara
	{114.825, 5.225},      // 21 Procyon
	{116.329, 28.026},     // 22 Pollux
	{122.383, -47.337},    // 23 Avior
	{138.300, -69.717},    // 24 Miaplacidus
	{136.999, -43.433},    // 25 Suhail
	{141.897, -8.659},     // 26 Alphard
	{152.093, 11.967},     // 27 Regulus
	{165.932, 61.751},     // 28 Dubhe
	{177.265, 14.572},     // 29 Denebola
	{183.952, -17.542},    // 30 Gienah
	{186.650, -63.099},    // 31 Acrux
	{187.791, -57.113},    // 32 Gacrux
	{193.507, 55.960},     // 33 Alioth
	{201.298, -11.161},    // 34 Spica
	{206.885, 49.313},     // 35 Alkaid
	{210.956, -60.373},    // 36 Hadar
	{213.915, 19.182},     // 37 Arcturus
	{219.902, -60.834},    // 38 Rigil Kentaurus
	{222.677, 74.156},     // 39 Kochab
	{233.672, 26.715},     // 40 Alphecca
	{240.083, -22.622},    // 41 Antares
	{252.166, -69.028},    // 42 Atria
	{247.352, -26.432},    // 43 Sabik
	{250.322, 38.922},     // 44 Eltanin (region)
	{263.733, 12.560},     // 45 Rasalhague
	{269.152, 51.489},     // 46 (Hercules region placeholder star)
	{276.043, -34.385},    // 47 Kaus Australis
	{279.235, 38.784},     // 48 Vega
	{283.816, -26.297},    // 49 Nunki
	{297.696, 8.868},      // 50 Altair
	{305.557, -14.781},    // 51 (Capricorni region placeholder star)
	{306.412, -56.735},    // 52 Peacock
	{310.358, 45.280},     // 53 Deneb
	{326.046, 9.875},      // 54 Enif
	{344.413, -29.622},    // 55 Fomalhaut
	{346.190, 15.205},     // 56 Markab
	{37.955, 89.264},      // 57 Polaris
}

// julianDay converts a time to the astronomical Julian day number.
func julianDay(t time.Time) float64 {
	return float64(t.UnixMilli())/86400000.0 + 2440587.5
}

// sunEquatorial returns the Sun's apparent geocentric equatorial place.
// Low-precision solar theory (Meeus, Astronomical Algorithms ch. 25).
func sunEquatorial(jd float64) equatorial {
	T := (jd - 2451545.0) / 36525.0

	L0 := math.Mod(280.46646+36000.76983*T+0.0003032*T*T, 360.0)
	M := math.Mod(357.52911+35999.05029*T-0.0001537*T*T, 360.0)
	Mr := toRad(M)

	C := (1.914602-0.004817*T-0.000014*T*T)*math.Sin(Mr) +
		(0.019993-0.000101*T)*math.Sin(2*Mr) +
		0.000289*math.Sin(3*Mr)

	trueLon := L0 + C
	omega := 125.04 - 1934.136*T
	lambda := trueLon - 0.00569 - 0.00478*math.Sin(toRad(omega))

	eps := 23.439291 - 0.0130042*T + 0.00256*math.Cos(toRad(omega))

	lr := toRad(lambda)
	er := toRad(eps)

	ra := math.Atan2(math.Cos(er)*math.Sin(lr), math.Cos(lr))
	dec := math.Asin(math.Sin(er) * math.Sin(lr))

	return equatorial{ra: geo.Wrap360(toDeg(ra)), dec: toDeg(dec)}
}

// greenwichSiderealTime returns GMST in degrees.
func greenwichSiderealTime(jd float64) float64 {
	T := (jd - 2451545.0) / 36525.0
	gmst := 280.46061837 + 360.98564736629*(jd-2451545.0) + 0.000387933*T*T - T*T*T/38710000.0
	return geo.Wrap360(gmst)
}

// ObjectHorizontal computes the apparent topocentric altitude and azimuth
// of the given object, refraction-corrected using the supplied pressure
// (hPa) and temperature (deg C).
func (e *ephemerisCelestial) ObjectHorizontal(obj int, t time.Time, p geo.Pos, pressure, temp float64) (Horizontal, error) {
	jd := julianDay(t)

	var eq equatorial
	switch {
	case obj == ObjSun:
		eq = sunEquatorial(jd)
	case obj >= 1 && obj <= ObjPolaris:
		eq = navStars[obj]
	default:
		return Horizontal{}, fmt.Errorf("unknown celestial object %d", obj)
	}

	lst := greenwichSiderealTime(jd) + p.Lon
	ha := toRad(geo.Wrap360(lst - eq.ra))

	φ := toRad(p.Lat)
	δ := toRad(eq.dec)

	sinAlt := math.Sin(φ)*math.Sin(δ) + math.Cos(φ)*math.Cos(δ)*math.Cos(ha)
	alt := math.Asin(sinAlt)

	y := -math.Sin(ha)
	x := math.Tan(δ)*math.Cos(φ) - math.Sin(φ)*math.Cos(ha)
	az := geo.Wrap360(toDeg(math.Atan2(y, x)))

	altDeg := toDeg(alt)
	altDeg += refraction(altDeg, pressure, temp)

	return Horizontal{Az: az, Alt: altDeg}, nil
}

// refraction is Sæmundsson's formula scaled for non-standard atmosphere,
// returning the correction in degrees to add to the true altitude.
func refraction(altDeg, pressure, temp float64) float64 {
	if altDeg < -2.0 {
		return 0.0
	}
	if pressure <= 0.0 {
		pressure = 1010.0
	}

	r := 1.02 / math.Tan(toRad(altDeg+10.3/(altDeg+5.11))) // arc-minutes
	r *= (pressure / 1010.0) * (283.0 / (273.0 + temp))
	return r / 60.0
}

func toRad(d float64) float64 { return d * math.Pi / 180.0 }
func toDeg(r float64) float64 { return r * 180.0 / math.Pi }
