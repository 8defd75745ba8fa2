// Package config loads viewer settings from TOML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/scene"
)

var ErrInvalid = errors.New("invalid config")

// Config holds every viewer setting. Colors are RGB triples in [0, 1];
// angles are in degrees.
type Config struct {
	FPS        int          `toml:"fps"`
	Background [3]float64   `toml:"background"`
	Highlight  [3]float64   `toml:"highlight"`
	Pulse      bool         `toml:"pulse"` // animate the highlight color
	Palette    [][3]float64 `toml:"palette"`
	PanStep    float64      `toml:"pan_step"`
	RotateStep float64      `toml:"rotate_step"`
	RotateAxis [3]float64   `toml:"rotate_axis"`
	Lights     [][3]float64 `toml:"lights"` // point lights in world space
	Ambient    float64      `toml:"ambient"`

	Ground     Ground     `toml:"ground"`
	Camera     Camera     `toml:"camera"`
	Screenshot Screenshot `toml:"screenshot"`
}

type Ground struct {
	Color     [3]float64 `toml:"color"`
	HalfSize  float64    `toml:"half_size"`
	Height    float64    `toml:"height"`
	Divisions int        `toml:"divisions"`
}

type Camera struct {
	Position [3]float64 `toml:"position"`
	MinFOV   float64    `toml:"min_fov"`
	Near     float64    `toml:"near"`
	Far      float64    `toml:"far"`
}

type Screenshot struct {
	Dir   string `toml:"dir"`
	Scale int    `toml:"scale"`
}

// Default returns the built-in settings.
func Default() Config {
	opts := scene.DefaultOptions()
	palette := make([][3]float64, len(opts.Palette))
	for i, c := range opts.Palette {
		palette[i] = c.Array()
	}
	return Config{
		FPS:        30,
		Background: [3]float64{128.0 / 255, 200.0 / 255, 1},
		Highlight:  opts.Highlight.Array(),
		Pulse:      true,
		Palette:    palette,
		PanStep:    opts.PanStep,
		RotateStep: opts.RotateStep,
		RotateAxis: opts.RotateAxis.Array(),
		Lights:     [][3]float64{{2, 3, 14}, {-2, -3, -5}},
		Ambient:    0.15,
		Ground: Ground{
			Color:     opts.GroundColor.Array(),
			HalfSize:  10,
			Height:    -2,
			Divisions: 8,
		},
		Camera: Camera{
			Position: opts.Eye.Translation().Array(),
			MinFOV:   60,
			Near:     0.1,
			Far:      50,
		},
		Screenshot: Screenshot{
			Dir:   ".",
			Scale: 4,
		},
	}
}

// Load reads path on top of the defaults. Keys missing from the file keep
// their default values; unknown keys are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	def := Default()
	cfg := def
	cfg.Palette, cfg.Lights = nil, nil
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if cfg.Palette == nil {
		cfg.Palette = def.Palette
	}
	if cfg.Lights == nil {
		cfg.Lights = def.Lights
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "diorama", "config.toml"), nil
}

// LoadDefault reads the per-user config file, falling back to Default when
// it does not exist.
func LoadDefault() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Validate checks ranges.
func (c Config) Validate() error {
	switch {
	case c.FPS < 1 || c.FPS > 240:
		return fmt.Errorf("%w: fps %d not in [1, 240]", ErrInvalid, c.FPS)
	case math3d.FromArray(c.RotateAxis).Len() < 1e-9:
		return fmt.Errorf("%w: rotate_axis %v has no direction", ErrInvalid, c.RotateAxis)
	case c.RotateStep == 0:
		return fmt.Errorf("%w: rotate_step is zero", ErrInvalid)
	case len(c.Palette) == 0:
		return fmt.Errorf("%w: empty palette", ErrInvalid)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: clip planes %v..%v", ErrInvalid, c.Camera.Near, c.Camera.Far)
	case c.Camera.MinFOV <= 0 || c.Camera.MinFOV >= 180:
		return fmt.Errorf("%w: min_fov %v not in (0, 180)", ErrInvalid, c.Camera.MinFOV)
	case c.Ground.HalfSize <= 0:
		return fmt.Errorf("%w: ground half_size %v", ErrInvalid, c.Ground.HalfSize)
	case c.Ground.Divisions < 1:
		return fmt.Errorf("%w: ground divisions %d", ErrInvalid, c.Ground.Divisions)
	case c.Screenshot.Scale < 1:
		return fmt.Errorf("%w: screenshot scale %d", ErrInvalid, c.Screenshot.Scale)
	case c.Ambient < 0 || c.Ambient > 1:
		return fmt.Errorf("%w: ambient %v not in [0, 1]", ErrInvalid, c.Ambient)
	}
	return nil
}

// Options converts the settings into scene driver options.
func (c Config) Options() scene.Options {
	opts := scene.DefaultOptions()
	opts.PanStep = c.PanStep
	opts.RotateStep = c.RotateStep
	opts.RotateAxis = math3d.FromArray(c.RotateAxis)
	opts.Highlight = scene.ColorFromArray(c.Highlight)
	opts.Palette = make([]scene.Color, len(c.Palette))
	for i, p := range c.Palette {
		opts.Palette[i] = scene.ColorFromArray(p)
	}
	opts.Eye = math3d.Translate(math3d.FromArray(c.Camera.Position))
	opts.GroundColor = scene.ColorFromArray(c.Ground.Color)
	opts.GroundTransform = math3d.Identity()
	return opts
}

// LightPositions returns the lights as vectors.
func (c Config) LightPositions() []math3d.Vec3 {
	out := make([]math3d.Vec3, len(c.Lights))
	for i, l := range c.Lights {
		out[i] = math3d.FromArray(l)
	}
	return out
}

// Save writes c to path as TOML.
func (c Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}
