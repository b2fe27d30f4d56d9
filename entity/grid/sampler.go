package grid

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"gonum.org/v1/gonum/floats"
)

// NorthUpOffset rotates the local polar basis so that the model's reference
// direction is drawn along +y instead of +x.
const NorthUpOffset = math.Pi / 2

const (
	DefaultResolution = 64
	DefaultExtent     = 40.0
)

var ErrInvalidGrid = errors.New("invalid grid")

// FieldModel evaluates a field in polar form over a batch of points.
type FieldModel interface {
	FieldAtBatch(r, theta []float64) (br, btheta []float64, err error)
}

type Sampler struct {
	model      FieldModel
	nx, ny     int
	xmax, ymax float64
}

type Option func(*Sampler)

func WithResolution(nx, ny int) Option {
	return func(s *Sampler) {
		s.nx, s.ny = nx, ny
	}
}

// WithExtent sets the half-width and half-height of the sampled region.
func WithExtent(xmax, ymax float64) Option {
	return func(s *Sampler) {
		s.xmax, s.ymax = xmax, ymax
	}
}

func New(model FieldModel, options ...Option) (*Sampler, error) {
	if isNil(model) {
		return nil, fmt.Errorf("%w: model is nil", ErrInvalidGrid)
	}
	s := &Sampler{
		model: model,
		nx:    DefaultResolution,
		ny:    DefaultResolution,
		xmax:  DefaultExtent,
		ymax:  DefaultExtent,
	}
	for _, o := range options {
		o(s)
	}
	if s.nx < 2 || s.ny < 2 {
		return nil, fmt.Errorf("%w: resolution %dx%d, need at least 2x2", ErrInvalidGrid, s.nx, s.ny)
	}
	for _, e := range []float64{s.xmax, s.ymax} {
		if !(e > 0) || math.IsInf(e, 0) {
			return nil, fmt.Errorf("%w: extent %v", ErrInvalidGrid, e)
		}
	}
	return s, nil
}

func (s *Sampler) Resolution() (nx, ny int) {
	return s.nx, s.ny
}

func (s *Sampler) Extent() (xmax, ymax float64) {
	return s.xmax, s.ymax
}

// SampleGrid returns the evenly spaced axis coordinates, endpoints included.
func (s *Sampler) SampleGrid() (xs, ys []float64) {
	return linspace(-s.xmax, s.xmax, s.nx), linspace(-s.ymax, s.ymax, s.ny)
}

// ComputeComponents returns the Cartesian field components on the grid.
// Both matrices are ny rows by nx columns; row j holds ys[j].
func (s *Sampler) ComputeComponents() (bx, by [][]float64, err error) {
	xs, ys := s.SampleGrid()

	n := s.nx * s.ny
	r := make([]float64, n)
	theta := make([]float64, n)
	for j, y := range ys {
		for i, x := range xs {
			k := j*s.nx + i
			r[k], theta[k] = math.Hypot(x, y), math.Atan2(y, x)
		}
	}

	br, bt, err := s.model.FieldAtBatch(r, theta)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to evaluate field: %w", err)
	}
	if len(br) != n || len(bt) != n {
		return nil, nil, fmt.Errorf("failed to evaluate field: got %d/%d values for %d points", len(br), len(bt), n)
	}

	bx = matrix(s.ny, s.nx)
	by = matrix(s.ny, s.nx)
	for j := range ys {
		for i := range xs {
			k := j*s.nx + i
			bx[j][i], by[j][i] = toCartesian(br[k], bt[k], theta[k])
		}
	}
	return bx, by, nil
}

// ComponentsAt evaluates the Cartesian components at a single point.
func (s *Sampler) ComponentsAt(x, y float64) (bx, by float64, err error) {
	theta := math.Atan2(y, x)
	br, bt, err := s.model.FieldAtBatch([]float64{math.Hypot(x, y)}, []float64{theta})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to evaluate field: %w", err)
	}
	bx, by = toCartesian(br[0], bt[0], theta)
	return bx, by, nil
}

func toCartesian(br, btheta, theta float64) (bx, by float64) {
	s, c := math.Sincos(NorthUpOffset + theta)
	return -btheta*s + br*c, btheta*c + br*s
}

// linspace mirrors numpy.linspace: the last point is exactly stop.
func linspace(start, stop float64, n int) []float64 {
	out := floats.Span(make([]float64, n), start, stop)
	out[n-1] = stop
	return out
}

// isNil also catches a nil pointer stored in the interface.
func isNil(model FieldModel) bool {
	if model == nil {
		return true
	}
	v := reflect.ValueOf(model)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func matrix(rows, cols int) [][]float64 {
	backing := make([]float64, rows*cols)
	m := make([][]float64, rows)
	for i := range m {
		m[i] = backing[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return m
}
