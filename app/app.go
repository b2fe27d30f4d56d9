package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/AnkushinDaniil/bfield/entity/dipole"
	"github.com/AnkushinDaniil/bfield/entity/format"
	"github.com/AnkushinDaniil/bfield/entity/grid"
	"github.com/AnkushinDaniil/bfield/entity/parameters"
)

type App struct {
	Output string
	Params *parameters.Parameters
}

func New(output string, params *parameters.Parameters) *App {
	return &App{
		Output: output,
		Params: params,
	}
}

// field is one sampled dipole field ready for rendering.
type field struct {
	model  *dipole.Model
	xs, ys []float64
	bx, by [][]float64
}

func (a *App) Run(ctx context.Context) error {
	appTime := time.Now()
	defer func() {
		log.WithField("time", time.Since(appTime)).Debug("App finished")
	}()
	log.WithFields(log.Fields{
		"output":  a.Output,
		"format":  a.Params.Format,
		"b0":      a.Params.B0,
		"radius":  a.Params.BodyRadius,
		"tilt":    a.Params.TiltDegrees,
		"nx":      a.Params.ResolutionX,
		"ny":      a.Params.ResolutionY,
		"xmax":    a.Params.ExtentX,
		"ymax":    a.Params.ExtentY,
		"density": a.Params.Density,
	}).Debug("App started")

	f, err := a.sample()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	renderTime := time.Now()
	var buf bytes.Buffer
	if err := a.write(ctx, &buf, f); err != nil {
		return err
	}
	if err := os.WriteFile(a.Output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	log.WithFields(log.Fields{
		"time":   time.Since(renderTime),
		"format": a.Params.Format,
		"path":   a.Output,
	}).Info("Field rendered and saved")

	return nil
}

func (a *App) sample() (*field, error) {
	startTime := time.Now()
	model, err := dipole.New(a.Params.B0, a.Params.BodyRadius, a.Params.TiltDegrees)
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}
	sampler, err := grid.New(model,
		grid.WithResolution(a.Params.ResolutionX, a.Params.ResolutionY),
		grid.WithExtent(a.Params.ExtentX, a.Params.ExtentY),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sampler: %w", err)
	}

	xs, ys := sampler.SampleGrid()
	bx, by, err := sampler.ComputeComponents()
	if err != nil {
		return nil, fmt.Errorf("failed to compute components: %w", err)
	}
	log.WithFields(log.Fields{
		"time":   time.Since(startTime),
		"points": len(xs) * len(ys),
	}).Debug("Field sampled")

	return &field{model: model, xs: xs, ys: ys, bx: bx, by: by}, nil
}

func (a *App) write(ctx context.Context, w io.Writer, f *field) error {
	switch a.Params.Format {
	case format.HTML:
		page, err := a.createPage(ctx, f)
		if err != nil {
			return err
		}
		if err := page.Render(w); err != nil {
			return fmt.Errorf("failed to render chart: %w", err)
		}
	case format.Csv:
		if err := writeCSV(w, f); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
	case format.Yaml:
		if err := writeYAML(w, f); err != nil {
			return fmt.Errorf("failed to write yaml: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format: %v", a.Params.Format)
	}
	return nil
}
