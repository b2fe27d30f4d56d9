package streamline

type cell struct {
	i, j int
}

type mask struct {
	n          int
	x0, y0     float64
	cw, ch     float64
	occupied   [][]bool
	trajectory []cell
}

func newMask(n int, x0, y0, x1, y1 float64) *mask {
	occupied := make([][]bool, n)
	for j := range occupied {
		occupied[j] = make([]bool, n)
	}
	return &mask{
		n:        n,
		x0:       x0,
		y0:       y0,
		cw:       (x1 - x0) / float64(n),
		ch:       (y1 - y0) / float64(n),
		occupied: occupied,
	}
}

func (m *mask) cellOf(p Point) cell {
	return cell{
		i: min(max(int((p.X-m.x0)/m.cw), 0), m.n-1),
		j: min(max(int((p.Y-m.y0)/m.ch), 0), m.n-1),
	}
}

func (m *mask) center(i, j int) Point {
	return Point{m.x0 + (float64(i)+0.5)*m.cw, m.y0 + (float64(j)+0.5)*m.ch}
}

// begin starts a trajectory at p and claims its cell.
func (m *mask) begin(p Point) {
	m.trajectory = m.trajectory[:0]
	m.claim(m.cellOf(p))
}

// enter reports whether the step from one point to the next may be added to
// the current trajectory. Moving into a cell that is already claimed ends it.
func (m *mask) enter(from, to Point) bool {
	c := m.cellOf(to)
	if c == m.cellOf(from) {
		return true
	}
	if m.occupied[c.j][c.i] {
		return false
	}
	m.claim(c)
	return true
}

func (m *mask) claim(c cell) {
	m.occupied[c.j][c.i] = true
	m.trajectory = append(m.trajectory, c)
}

// undo releases every cell claimed by the current trajectory.
func (m *mask) undo() {
	for _, c := range m.trajectory {
		m.occupied[c.j][c.i] = false
	}
	m.trajectory = m.trajectory[:0]
}
