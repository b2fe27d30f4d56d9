package config

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/AnkushinDaniil/bfield/entity/format"
	"github.com/AnkushinDaniil/bfield/entity/mode"
	"github.com/AnkushinDaniil/bfield/entity/parameters"
	"github.com/AnkushinDaniil/bfield/entity/streamline"
)

const envPrefix = "BFIELD"

// Earth, lengths in Mm.
const (
	DefaultB0          = 3.12e-5
	DefaultBodyRadius  = 6.370
	DefaultTiltDegrees = 9.6
)

type Config struct {
	Output   string
	LogLevel log.Level
	Params   *parameters.Parameters
}

// Load resolves configuration from flags, BFIELD_* environment variables,
// an optional YAML file given by --config, and built-in defaults, in that order.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("bfield", pflag.ContinueOnError)
	fs.String("config", "", "path to a YAML config file")
	fs.Float64("b0", DefaultB0, "field magnitude at the equator on the surface, T")
	fs.Float64("radius", DefaultBodyRadius, "body radius")
	fs.Float64("tilt", DefaultTiltDegrees, "magnetic axis tilt, degrees")
	fs.Int("nx", 64, "samples along x")
	fs.Int("ny", 64, "samples along y")
	fs.Float64("xmax", 40, "half-width of the sampled region")
	fs.Float64("ymax", 40, "half-height of the sampled region")
	fs.Float64("density", 2, "streamline density")
	fs.StringP("format", "f", "html", "output format: html, csv, yaml")
	fs.StringP("mode", "m", "a", "charts: a (all), s (streamlines), m (magnitude)")
	fs.StringP("output", "o", "bfield.html", "output file")
	fs.String("log-level", "info", "log level")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	fs.VisitAll(func(f *pflag.Flag) {
		v.SetDefault(f.Name, f.DefValue)
	})
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.WithField("path", v.ConfigFileUsed()).Debug("Config file loaded")
	}

	f, err := format.UnmarshalText(v.GetString("format"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse format: %w", err)
	}
	m, err := mode.UnmarshalText(v.GetString("mode"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse mode: %w", err)
	}
	level, err := log.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}
	density := v.GetFloat64("density")
	if !(density > 0 && density <= streamline.MaxDensity) {
		return nil, fmt.Errorf("invalid density %v: must be in (0, %v]", density, streamline.MaxDensity)
	}

	return &Config{
		Output:   v.GetString("output"),
		LogLevel: level,
		Params: &parameters.Parameters{
			Mode:        m,
			Format:      f,
			B0:          v.GetFloat64("b0"),
			BodyRadius:  v.GetFloat64("radius"),
			TiltDegrees: v.GetFloat64("tilt"),
			ResolutionX: v.GetInt("nx"),
			ResolutionY: v.GetInt("ny"),
			ExtentX:     v.GetFloat64("xmax"),
			ExtentY:     v.GetFloat64("ymax"),
			Density:     density,
		},
	}, nil
}
