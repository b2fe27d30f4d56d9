package parameters

import (
	"github.com/AnkushinDaniil/bfield/entity/format"
	"github.com/AnkushinDaniil/bfield/entity/mode"
)

// Parameters holds everything needed to sample and render one field.
// Lengths share one unit (Mm for Earth).
type Parameters struct {
	Mode        mode.Mode
	Format      format.Format
	B0          float64 // T, at the equator on the surface
	BodyRadius  float64
	TiltDegrees float64
	ResolutionX int
	ResolutionY int
	ExtentX     float64
	ExtentY     float64
	Density     float64 // streamline density, 1 = 30x30 occupancy cells
}
