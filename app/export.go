package app

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

var csvHeader = []string{"x", "y", "bx", "by", "log_magnitude"}

// writeCSV emits one row per grid point, y-major like the component matrices.
func writeCSV(w io.Writer, f *field) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for j, y := range f.ys {
		for i, x := range f.xs {
			bx, by := f.bx[j][i], f.by[j][i]
			err := cw.Write([]string{
				formatFloat(x),
				formatFloat(y),
				formatFloat(bx),
				formatFloat(by),
				formatFloat(2 * math.Log(math.Hypot(bx, by))),
			})
			if err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

type fieldDocument struct {
	B0          float64   `yaml:"b0"`
	BodyRadius  float64   `yaml:"body_radius"`
	TiltDegrees float64   `yaml:"tilt_degrees"`
	X           flowRow   `yaml:"x"`
	Y           flowRow   `yaml:"y"`
	Bx          []flowRow `yaml:"bx"`
	By          []flowRow `yaml:"by"`
}

// flowRow keeps each matrix row on one line.
type flowRow []float64

func (r flowRow) MarshalYAML() (interface{}, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range r {
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: yamlFloat(v)})
	}
	return n, nil
}

func writeYAML(w io.Writer, f *field) error {
	doc := fieldDocument{
		B0:          f.model.B0(),
		BodyRadius:  f.model.BodyRadius(),
		TiltDegrees: f.model.Tilt() * 180 / math.Pi,
		X:           f.xs,
		Y:           f.ys,
		Bx:          rows(f.bx),
		By:          rows(f.by),
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func rows(m [][]float64) []flowRow {
	out := make([]flowRow, len(m))
	for i := range m {
		out[i] = m[i]
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func yamlFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ".nan"
	case math.IsInf(v, 1):
		return ".inf"
	case math.IsInf(v, -1):
		return "-.inf"
	default:
		return formatFloat(v)
	}
}
