package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"voxmesh/internal/world"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

var (
	// ErrDuplicateID is returned when a material id is registered twice.
	ErrDuplicateID = errors.New("material id already registered")
	// ErrDuplicateName is returned when a material name is registered twice.
	ErrDuplicateName = errors.New("material name already registered")
	// ErrReservedID is returned when something other than air claims id 0.
	ErrReservedID = errors.New("material id 0 is reserved for air")
	// ErrUnsupportedFormat is returned for material tables that are neither YAML nor TOML.
	ErrUnsupportedFormat = errors.New("unsupported material table format")
)

// Registry maps material ids to their definitions. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	byID    map[world.MaterialID]world.Material
	byName  map[string]world.MaterialID
	unknown map[world.MaterialID]struct{}
	log     *slog.Logger
}

var _ world.OcclusionLookup = (*Registry)(nil)

// New creates a registry holding only air.
func New() *Registry {
	r := &Registry{
		byID:    make(map[world.MaterialID]world.Material),
		byName:  make(map[string]world.MaterialID),
		unknown: make(map[world.MaterialID]struct{}),
		log:     slog.Default(),
	}
	r.byID[world.AirID] = world.Air
	r.byName[world.Air.Name] = world.AirID
	return r
}

// SetLogger replaces the logger used to report unknown materials.
func (r *Registry) SetLogger(log *slog.Logger) {
	r.mu.Lock()
	r.log = log
	r.mu.Unlock()
}

// Register adds a material. Ids and names must be unique and id 0 stays air.
func (r *Registry) Register(m world.Material) error {
	if m.ID == world.AirID {
		return fmt.Errorf("register %q: %w", m.Name, ErrReservedID)
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("register material %d: name must not be empty", m.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byID[m.ID]; ok {
		return fmt.Errorf("register %q as %d (held by %q): %w", m.Name, m.ID, existing.Name, ErrDuplicateID)
	}
	if _, ok := r.byName[m.Name]; ok {
		return fmt.Errorf("register %q: %w", m.Name, ErrDuplicateName)
	}
	r.byID[m.ID] = m
	r.byName[m.Name] = m.ID
	delete(r.unknown, m.ID)
	return nil
}

// Material implements world.MaterialLookup.
func (r *Registry) Material(id world.MaterialID) (world.Material, bool) {
	r.mu.RLock()
	m, ok := r.byID[id]
	r.mu.RUnlock()
	return m, ok
}

// ByName looks a material up by its name.
func (r *Registry) ByName(name string) (world.Material, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	if !ok {
		return world.Material{}, false
	}
	return r.byID[id], true
}

// Occludes reports whether a voxel of this material hides the face of its
// neighbour. Unknown ids do not occlude and are logged once.
func (r *Registry) Occludes(id world.MaterialID) bool {
	m, ok := r.Material(id)
	if !ok {
		r.noteUnknown(id)
		return false
	}
	return m.Occludes()
}

func (r *Registry) noteUnknown(id world.MaterialID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, seen := r.unknown[id]; seen {
		return
	}
	r.unknown[id] = struct{}{}
	r.log.Warn("unknown material referenced", "id", id)
}

// Materials returns every registered material ordered by id.
func (r *Registry) Materials() []world.Material {
	r.mu.RLock()
	out := make([]world.Material, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, m)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b world.Material) int { return int(a.ID) - int(b.ID) })
	return out
}

// Len returns the number of registered materials, air included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Default material ids registered by Defaults.
const (
	Stone world.MaterialID = iota + 1
	Dirt
	Grass
	Glass
	Water
	Torch
)

// Defaults returns a registry with a small built-in material set.
func Defaults() *Registry {
	r := New()
	for _, m := range []world.Material{
		{ID: Stone, Name: "stone"},
		{ID: Dirt, Name: "dirt"},
		{ID: Grass, Name: "grass"},
		{ID: Glass, Name: "glass", Transparent: true},
		{ID: Water, Name: "water", Transparent: true},
		{ID: Torch, Name: "torch", Transparent: true, CustomModel: true},
	} {
		if err := r.Register(m); err != nil {
			panic(err)
		}
	}
	return r
}

// DefaultPalette maps the built-in materials onto the demo generator palette.
func DefaultPalette() world.Palette {
	return world.Palette{Stone: Stone, Dirt: Dirt, Grass: Grass, Water: Water}
}

type materialEntry struct {
	ID           uint16  `yaml:"id" toml:"id"`
	Name         string  `yaml:"name" toml:"name"`
	Transparent  bool    `yaml:"transparent" toml:"transparent"`
	CustomModel  bool    `yaml:"custom_model" toml:"custom_model"`
	TextureScale float32 `yaml:"texture_scale" toml:"texture_scale"`
}

type materialTable struct {
	Materials []materialEntry `yaml:"materials" toml:"materials"`
}

// LoadFile registers every material in a YAML (.yaml, .yml) or TOML (.toml) table.
// It returns the number of materials registered.
func (r *Registry) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read material table: %w", err)
	}
	return r.Load(filepath.Ext(path), data)
}

// Load parses a material table in the format named by ext and registers it.
func (r *Registry) Load(ext string, data []byte) (int, error) {
	var table materialTable
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &table); err != nil {
			return 0, fmt.Errorf("decode yaml material table: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &table); err != nil {
			return 0, fmt.Errorf("decode toml material table: %w", err)
		}
	default:
		return 0, fmt.Errorf("%q: %w", ext, ErrUnsupportedFormat)
	}

	for i, e := range table.Materials {
		m := world.Material{
			ID:           world.MaterialID(e.ID),
			Name:         e.Name,
			Transparent:  e.Transparent,
			CustomModel:  e.CustomModel,
			TextureScale: e.TextureScale,
		}
		if err := r.Register(m); err != nil {
			return i, err
		}
	}
	return len(table.Materials), nil
}
