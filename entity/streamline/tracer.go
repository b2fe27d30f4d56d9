package streamline

import (
	"errors"
	"fmt"
	"math"
)

const (
	defaultMaxSteps = 2000
	// MaxDensity bounds the occupancy mask at 300x300 cells.
	MaxDensity = 10.0
	// cells per axis of the occupancy mask at density 1
	maskCellsPerDensity = 30
)

var ErrShape = errors.New("field shape does not match axes")

type Point struct {
	X, Y float64
}

type Line []Point

// Tracer integrates streamlines through a field sampled on a uniform grid.
type Tracer struct {
	xs, ys    []float64
	bx, by    [][]float64
	dx, dy    float64
	step      float64
	maxSteps  int
	exclusion float64
}

type Option func(*Tracer)

// WithStep sets the integration step length in axis units.
func WithStep(h float64) Option {
	return func(t *Tracer) {
		t.step = h
	}
}

func WithMaxSteps(n int) Option {
	return func(t *Tracer) {
		t.maxSteps = n
	}
}

// WithExclusionRadius stops lines that come closer than r to the origin.
func WithExclusionRadius(r float64) Option {
	return func(t *Tracer) {
		t.exclusion = r
	}
}

func NewTracer(xs, ys []float64, bx, by [][]float64, options ...Option) (*Tracer, error) {
	if len(xs) < 2 || len(ys) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points per axis, got %dx%d", ErrShape, len(xs), len(ys))
	}
	if len(bx) != len(ys) || len(by) != len(ys) {
		return nil, fmt.Errorf("%w: %d/%d rows for %d y values", ErrShape, len(bx), len(by), len(ys))
	}
	for j := range ys {
		if len(bx[j]) != len(xs) || len(by[j]) != len(xs) {
			return nil, fmt.Errorf("%w: row %d has %d/%d columns for %d x values", ErrShape, j, len(bx[j]), len(by[j]), len(xs))
		}
	}
	t := &Tracer{
		xs:       xs,
		ys:       ys,
		bx:       bx,
		by:       by,
		dx:       (xs[len(xs)-1] - xs[0]) / float64(len(xs)-1),
		dy:       (ys[len(ys)-1] - ys[0]) / float64(len(ys)-1),
		maxSteps: defaultMaxSteps,
	}
	t.step = 0.5 * math.Min(t.dx, t.dy)
	for _, o := range options {
		o(t)
	}
	if !(t.step > 0) || !(t.dx > 0) || !(t.dy > 0) {
		return nil, fmt.Errorf("%w: axes must be increasing and step positive", ErrShape)
	}
	return t, nil
}

// Trace follows the field through seed in both directions. The result runs
// against the field up to the seed and then along it. A seed outside the
// grid or inside the exclusion radius gives an empty line.
func (t *Tracer) Trace(seed Point) Line {
	return t.trace(seed, func(_, _ Point) bool { return true })
}

func (t *Tracer) trace(seed Point, visit func(from, to Point) bool) Line {
	if !t.usable(seed) {
		return nil
	}
	backward := t.integrate(seed, -1, visit)
	forward := t.integrate(seed, 1, visit)

	line := make(Line, 0, len(backward)+len(forward)+1)
	for i := len(backward) - 1; i >= 0; i-- {
		line = append(line, backward[i])
	}
	line = append(line, seed)
	return append(line, forward...)
}

// integrate takes midpoint steps along the unit direction field, excluding the start point.
func (t *Tracer) integrate(p Point, sign float64, visit func(from, to Point) bool) []Point {
	var out []Point
	h := sign * t.step
	for range t.maxSteps {
		ux, uy, ok := t.direction(p)
		if !ok {
			break
		}
		mid := Point{p.X + 0.5*h*ux, p.Y + 0.5*h*uy}
		ux, uy, ok = t.direction(mid)
		if !ok {
			break
		}
		next := Point{p.X + h*ux, p.Y + h*uy}
		if !t.usable(next) || !visit(p, next) {
			break
		}
		out = append(out, next)
		p = next
	}
	return out
}

func (t *Tracer) usable(p Point) bool {
	if math.Hypot(p.X, p.Y) < t.exclusion {
		return false
	}
	_, _, ok := t.interpolate(p)
	return ok
}

func (t *Tracer) direction(p Point) (ux, uy float64, ok bool) {
	vx, vy, ok := t.interpolate(p)
	if !ok {
		return 0, 0, false
	}
	n := math.Hypot(vx, vy)
	if n == 0 || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, 0, false
	}
	return vx / n, vy / n, true
}

// interpolate evaluates the field at p bilinearly.
func (t *Tracer) interpolate(p Point) (vx, vy float64, ok bool) {
	fx := (p.X - t.xs[0]) / t.dx
	fy := (p.Y - t.ys[0]) / t.dy
	if !(fx >= 0 && fy >= 0 && fx <= float64(len(t.xs)-1) && fy <= float64(len(t.ys)-1)) {
		return 0, 0, false
	}
	i := min(int(fx), len(t.xs)-2)
	j := min(int(fy), len(t.ys)-2)
	ax, ay := fx-float64(i), fy-float64(j)

	bilinear := func(m [][]float64) float64 {
		return (1-ay)*((1-ax)*m[j][i]+ax*m[j][i+1]) + ay*((1-ax)*m[j+1][i]+ax*m[j+1][i+1])
	}
	vx, vy = bilinear(t.bx), bilinear(t.by)
	if math.IsNaN(vx) || math.IsNaN(vy) || math.IsInf(vx, 0) || math.IsInf(vy, 0) {
		return 0, 0, false
	}
	return vx, vy, true
}

// TraceAll seeds lines across the grid and keeps them apart with an
// occupancy mask of 30*density cells per axis. Higher density gives more,
// closer lines; density above MaxDensity is clamped.
func (t *Tracer) TraceAll(density float64) []Line {
	if !(density > 0) || math.IsInf(density, 0) {
		return nil
	}
	density = min(density, MaxDensity)
	n := max(1, int(maskCellsPerDensity*density))
	m := newMask(n, t.xs[0], t.ys[0], t.xs[len(t.xs)-1], t.ys[len(t.ys)-1])

	var lines []Line
	for cj := range n {
		for ci := range n {
			if m.occupied[cj][ci] {
				continue
			}
			seed := m.center(ci, cj)
			if !t.usable(seed) {
				continue
			}
			m.begin(seed)
			line := t.trace(seed, m.enter)
			if len(line) < 2 {
				m.undo()
				continue
			}
			lines = append(lines, line)
		}
	}
	return lines
}
