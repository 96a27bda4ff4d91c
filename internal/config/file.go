package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// EnvConfig names the environment variable consulted when no path is given.
const EnvConfig = "VOXMESH_CONFIG"

// ErrUnsupportedFormat is returned for config files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// MesherFile is the [mesher] section. Zero values keep the current settings.
type MesherFile struct {
	Strategy    string `yaml:"strategy" toml:"strategy"`
	Workers     int    `yaml:"workers" toml:"workers"`
	QueueSize   int    `yaml:"queue_size" toml:"queue_size"`
	UVMode      string `yaml:"uv_mode" toml:"uv_mode"`
	MaxVertices int    `yaml:"max_vertices" toml:"max_vertices"`
	SlowTick    string `yaml:"slow_tick" toml:"slow_tick"`
}

// WorldFile is the [world] section of the demo CLI.
type WorldFile struct {
	Seed     int64 `yaml:"seed" toml:"seed"`
	Radius   int   `yaml:"radius" toml:"radius"`
	MinY     int   `yaml:"min_y" toml:"min_y"`
	MaxY     int   `yaml:"max_y" toml:"max_y"`
	SeaLevel int   `yaml:"sea_level" toml:"sea_level"`
}

// LogFile is the [log] section.
type LogFile struct {
	Level string `yaml:"level" toml:"level"`
}

// MetricsFile is the [metrics] section.
type MetricsFile struct {
	Addr string `yaml:"addr" toml:"addr"`
}

// File is the on-disk configuration.
type File struct {
	Mesher    MesherFile  `yaml:"mesher" toml:"mesher"`
	World     WorldFile   `yaml:"world" toml:"world"`
	Log       LogFile     `yaml:"log" toml:"log"`
	Metrics   MetricsFile `yaml:"metrics" toml:"metrics"`
	Materials string      `yaml:"materials" toml:"materials"`

	dir string
}

// Load reads a YAML or TOML config. An empty path falls back to $VOXMESH_CONFIG;
// when that is unset too Load returns nil and no error.
func Load(path string) (*File, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	f, err := Parse(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.dir = filepath.Dir(path)
	return f, nil
}

// Parse decodes config data in the format named by ext (".yaml", ".yml" or ".toml").
func Parse(ext string, data []byte) (*File, error) {
	var f File
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("decode yaml config: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("decode toml config: %w", err)
		}
	default:
		return nil, fmt.Errorf("%q: %w", ext, ErrUnsupportedFormat)
	}
	if _, err := f.slowTick(); err != nil {
		return nil, err
	}
	if _, err := f.SlogLevel(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) slowTick() (time.Duration, error) {
	if f.Mesher.SlowTick == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(f.Mesher.SlowTick)
	if err != nil {
		return 0, fmt.Errorf("mesher.slow_tick: %w", err)
	}
	return d, nil
}

// MaterialsPath returns the material table path resolved against the
// config file's directory.
func (f *File) MaterialsPath() string {
	if f == nil || f.Materials == "" {
		return ""
	}
	if filepath.IsAbs(f.Materials) || f.dir == "" {
		return f.Materials
	}
	return filepath.Join(f.dir, f.Materials)
}

// SlogLevel parses log.level, defaulting to info.
func (f *File) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if f == nil || f.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(f.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// Apply copies every non-zero setting into the global settings.
func (f *File) Apply() {
	if f == nil {
		return
	}
	m := f.Mesher
	SetStrategy(m.Strategy)
	SetUVMode(m.UVMode)
	if m.Workers != 0 {
		SetWorkers(m.Workers)
	}
	if m.QueueSize != 0 {
		SetQueueSize(m.QueueSize)
	}
	if m.MaxVertices != 0 {
		SetMaxVertices(m.MaxVertices)
	}
	if d, err := f.slowTick(); err == nil && m.SlowTick != "" {
		SetSlowTick(d)
	}

	w := f.World
	if w.Seed != 0 {
		SetSeed(w.Seed)
	}
	if w.Radius != 0 {
		SetRadius(w.Radius)
	}
	if w.MinY != 0 || w.MaxY != 0 {
		SetVerticalRange(w.MinY, w.MaxY)
	}
	if w.SeaLevel != 0 {
		SetSeaLevel(w.SeaLevel)
	}
}
