package dipole

import (
	"fmt"
	"math"
)

// Model is a tilted magnetic dipole centred on a spherical body.
// Positions are polar (r, theta) with theta measured from the reference
// direction; r uses the same length unit as the body radius.
type Model struct {
	b0         float64
	bodyRadius float64
	tilt       float64
}

func New(b0, bodyRadius, tiltDegrees float64) (*Model, error) {
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"B0", b0},
		{"bodyRadius", bodyRadius},
		{"tiltDegrees", tiltDegrees},
	} {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) {
			return nil, &InvalidParameterError{Name: p.name, Value: p.value}
		}
	}
	if bodyRadius <= 0 {
		return nil, &InvalidParameterError{Name: "bodyRadius", Value: bodyRadius}
	}
	return &Model{
		b0:         b0,
		bodyRadius: bodyRadius,
		tilt:       tiltDegrees * math.Pi / 180,
	}, nil
}

func (m *Model) B0() float64 {
	return m.b0
}

func (m *Model) BodyRadius() float64 {
	return m.bodyRadius
}

// Tilt returns the axis tilt in radians.
func (m *Model) Tilt() float64 {
	return m.tilt
}

// FieldAt returns the radial and tangential field components at (r, theta).
// r == 0 is singular and yields non-finite components.
func (m *Model) FieldAt(r, theta float64) (br, btheta float64) {
	fac := m.b0 * math.Pow(m.bodyRadius/r, 3)
	sin, cos := math.Sincos(theta + m.tilt)
	return -2 * fac * cos, -fac * sin
}

// FieldAtBatch evaluates FieldAt elementwise. r and theta must have the same length.
func (m *Model) FieldAtBatch(r, theta []float64) (br, btheta []float64, err error) {
	if len(r) != len(theta) {
		return nil, nil, fmt.Errorf("%w: %d != %d", ErrShapeMismatch, len(r), len(theta))
	}
	br = make([]float64, len(r))
	btheta = make([]float64, len(r))
	for i := range r {
		br[i], btheta[i] = m.FieldAt(r[i], theta[i])
	}
	return br, btheta, nil
}
