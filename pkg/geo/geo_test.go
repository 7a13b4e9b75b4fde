package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapLon(t *testing.T) {
	assert.Equal(t, 0.0, WrapLon(0.0))
	assert.Equal(t, -180.0, WrapLon(180.0))
	assert.Equal(t, 179.5, WrapLon(-180.5))
	assert.Equal(t, -170.0, WrapLon(190.0))
	assert.Equal(t, 10.0, WrapLon(370.0))
}

func TestWrap360(t *testing.T) {
	assert.Equal(t, 0.0, Wrap360(360.0))
	assert.Equal(t, 359.0, Wrap360(-1.0))
	assert.Equal(t, 90.0, Wrap360(450.0))
}

func TestCompassDiff(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{0, 90, 90},
		{90, 0, -90},
		{350, 10, 20},
		{10, 350, -20},
		{0, 180, 180},
		{180, 0, 180}, // exact opposite maps to +180
		{45, 45, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, CompassDiff(tt.a, tt.b), 1e-9, "diff(%v,%v)", tt.a, tt.b)
	}
}

func TestVecAdd(t *testing.T) {
	// Opposite equal vectors cancel.
	sum := Add(Vec{Angle: 0, Mag: 2}, Vec{Angle: 180, Mag: 2})
	assert.InDelta(t, 0.0, sum.Mag, 1e-9)

	// Perpendicular unit vectors.
	sum = Add(Vec{Angle: 0, Mag: 1}, Vec{Angle: 90, Mag: 1})
	assert.InDelta(t, 45.0, sum.Angle, 1e-9)
	assert.InDelta(t, math.Sqrt2, sum.Mag, 1e-9)

	// Negative magnitude behaves as the reverse bearing.
	sum = Add(Vec{Angle: 0, Mag: -1}, Vec{Angle: 0, Mag: 0})
	assert.InDelta(t, 180.0, sum.Angle, 1e-9)
	assert.InDelta(t, 1.0, sum.Mag, 1e-9)
}

func TestVecNormalize(t *testing.T) {
	v := Vec{Angle: 10, Mag: -3}.Normalize()
	assert.InDelta(t, 190.0, v.Angle, 1e-9)
	assert.InDelta(t, 3.0, v.Mag, 1e-9)

	v = Vec{Angle: 370, Mag: 2}.Normalize()
	assert.InDelta(t, 10.0, v.Angle, 1e-9)
	assert.InDelta(t, 2.0, v.Mag, 1e-9)
}

func TestPosAdvance(t *testing.T) {
	// One nautical mile due north from the equator is one arc-minute.
	p := Pos{Lat: 0, Lon: 0}.Advance(Vec{Angle: 0, Mag: 1852})
	assert.InDelta(t, 1.0/60.0, p.Lat, 1e-4)
	assert.InDelta(t, 0.0, p.Lon, 1e-9)

	// Due east along the equator.
	p = Pos{Lat: 0, Lon: 0}.Advance(Vec{Angle: 90, Mag: 1852})
	assert.InDelta(t, 0.0, p.Lat, 1e-6)
	assert.InDelta(t, 1.0/60.0, p.Lon, 1e-4)

	// Negative magnitude reverses direction.
	p = Pos{Lat: 0, Lon: 0}.Advance(Vec{Angle: 0, Mag: -1852})
	assert.InDelta(t, -1.0/60.0, p.Lat, 1e-4)

	// Longitude wraps across the antimeridian.
	p = Pos{Lat: 0, Lon: 179.99}.Advance(Vec{Angle: 90, Mag: 5000})
	assert.Less(t, p.Lon, -179.9)
}

func TestPosDistanceAndBearing(t *testing.T) {
	a := Pos{Lat: 0, Lon: 0}
	b := Pos{Lat: 0, Lon: 1}

	d := a.DistanceTo(b)
	assert.InDelta(t, 111194.9, d, 50.0)

	assert.InDelta(t, 90.0, a.BearingTo(b), 1e-6)
	assert.InDelta(t, 270.0, b.BearingTo(a), 1e-6)
}
