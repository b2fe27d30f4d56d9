package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/AnkushinDaniil/bfield/entity/dipole"
	"github.com/AnkushinDaniil/bfield/entity/format"
	"github.com/AnkushinDaniil/bfield/entity/mode"
	"github.com/AnkushinDaniil/bfield/entity/parameters"
)

func earth(f format.Format, m mode.Mode) *parameters.Parameters {
	return &parameters.Parameters{
		Mode:        m,
		Format:      f,
		B0:          3.12e-5,
		BodyRadius:  6.370,
		TiltDegrees: 9.6,
		ResolutionX: 64,
		ResolutionY: 64,
		ExtentX:     40,
		ExtentY:     40,
		Density:     1,
	}
}

func TestRunHTML(t *testing.T) {
	tests := []struct {
		name     string
		mode     mode.Mode
		contains []string
		missing  []string
	}{
		{"all", mode.All, []string{"Field lines", `"type":"heatmap"`, `"name":"body"`}, nil},
		{"streamlines", mode.Streamlines, []string{"Field lines", `"name":"body"`}, []string{`"type":"heatmap"`}},
		{"magnitude", mode.Magnitude, []string{`"type":"heatmap"`}, []string{"Field lines"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "bfield.html")
			require.NoError(t, New(out, earth(format.HTML, tt.mode)).Run(context.Background()))

			data, err := os.ReadFile(out)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, string(data), s)
			}
			for _, s := range tt.missing {
				assert.NotContains(t, string(data), s)
			}
		})
	}
}

func TestRunCSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "bfield.csv")
	params := earth(format.Csv, mode.All)
	params.ResolutionX, params.ResolutionY = 8, 4
	require.NoError(t, New(out, params).Run(context.Background()))

	file, err := os.Open(out)
	require.NoError(t, err)
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 1+8*4)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{"-40", "-40"}, records[1][:2])
	assert.Equal(t, []string{"40", "40"}, records[len(records)-1][:2])

	bx, err := strconv.ParseFloat(records[1][2], 64)
	require.NoError(t, err)
	by, err := strconv.ParseFloat(records[1][3], 64)
	require.NoError(t, err)
	logMag, err := strconv.ParseFloat(records[1][4], 64)
	require.NoError(t, err)
	assert.InDelta(t, 2*math.Log(math.Hypot(bx, by)), logMag, 1e-9)
}

func TestRunYAML(t *testing.T) {
	out := filepath.Join(t.TempDir(), "bfield.yaml")
	params := earth(format.Yaml, mode.All)
	params.ResolutionX, params.ResolutionY = 6, 4
	require.NoError(t, New(out, params).Run(context.Background()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var doc struct {
		B0          float64     `yaml:"b0"`
		BodyRadius  float64     `yaml:"body_radius"`
		TiltDegrees float64     `yaml:"tilt_degrees"`
		X           []float64   `yaml:"x"`
		Y           []float64   `yaml:"y"`
		Bx          [][]float64 `yaml:"bx"`
		By          [][]float64 `yaml:"by"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, 3.12e-5, doc.B0)
	assert.Equal(t, 6.370, doc.BodyRadius)
	assert.InDelta(t, 9.6, doc.TiltDegrees, 1e-12)
	assert.Len(t, doc.X, 6)
	assert.Len(t, doc.Y, 4)
	require.Len(t, doc.Bx, 4)
	require.Len(t, doc.By, 4)
	assert.Len(t, doc.Bx[0], 6)
	assert.Len(t, doc.By[3], 6)
}

func TestYAMLNonFinite(t *testing.T) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	require.NoError(t, enc.Encode(flowRow{1, math.NaN(), math.Inf(1), math.Inf(-1)}))
	require.NoError(t, enc.Close())
	assert.Equal(t, "[1, .nan, .inf, -.inf]\n", buf.String())
}

func TestRunInvalidParameters(t *testing.T) {
	params := earth(format.HTML, mode.All)
	params.BodyRadius = 0
	out := filepath.Join(t.TempDir(), "bfield.html")

	err := New(out, params).Run(context.Background())
	assert.ErrorIs(t, err, dipole.ErrInvalidParameter)
	assert.NoFileExists(t, out)

	params = earth(format.HTML, mode.All)
	params.ResolutionX = 1
	assert.Error(t, New(out, params).Run(context.Background()))
}

func TestRunFailedWriteLeavesNoFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "bfield.out")
	params := earth(format.Format(9), mode.All)

	err := New(out, params).Run(context.Background())
	assert.ErrorContains(t, err, "unsupported format")
	assert.NoFileExists(t, out)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(filepath.Join(t.TempDir(), "bfield.html"), earth(format.HTML, mode.All)).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestColorAt(t *testing.T) {
	for _, v := range []float64{0, 0.37, 0.5, 0.99, 1} {
		assert.Regexp(t, `^#[0-9a-f]{6}$`, colorAt(v))
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, 0.5, normalize(5, 0, 10))
	assert.Equal(t, 0.0, normalize(-1, 0, 10))
	assert.Equal(t, 1.0, normalize(11, 0, 10))
	assert.Equal(t, 0.0, normalize(math.NaN(), 0, 10))
	assert.Equal(t, 0.0, normalize(3, 2, 2))
}

func TestCircle(t *testing.T) {
	c := circle(6.370)
	require.Len(t, c, bodySegment+1)
	for _, p := range c {
		assert.InDelta(t, 6.370, math.Hypot(p.X, p.Y), 1e-12)
	}
	assert.InDelta(t, c[0].X, c[len(c)-1].X, 1e-12)
	assert.InDelta(t, c[0].Y, c[len(c)-1].Y, 1e-12)
}
