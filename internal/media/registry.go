package media

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Unknown is the value every descriptor field takes when a media id is not registered.
const Unknown = "unknown"

var (
	// ErrEmptyRegistry is returned when the registry file declares no media.
	ErrEmptyRegistry = errors.New("registry declares no media")

	// ErrUnsupportedFormat is returned for registry files whose extension is not
	// .json, .yaml, .yml or .toml.
	ErrUnsupportedFormat = errors.New("unsupported registry format")
)

// Media describes a single media source and its optional video feed.
type Media struct {
	ID                string `json:"id"`
	FeedURL           string `json:"flux,omitempty"`
	Orientation       string `json:"orientation"`
	Leader            string `json:"pdg"`
	Description       string `json:"description"`
	EconomicInterests string `json:"interets_economiques"`
}

// HasFeed reports whether the media declares a feed URL.
func (m Media) HasFeed() bool {
	return strings.TrimSpace(m.FeedURL) != ""
}

// entry is the on-disk shape of one registry value.
type entry struct {
	Flux                string `json:"flux" yaml:"flux" toml:"flux"`
	Orientation         string `json:"orientation" yaml:"orientation" toml:"orientation"`
	PDG                 string `json:"pdg" yaml:"pdg" toml:"pdg"`
	Description         string `json:"description" yaml:"description" toml:"description"`
	InteretsEconomiques string `json:"interets_economiques" yaml:"interets_economiques" toml:"interets_economiques"`
}

// Registry maps media ids to their descriptors. It is built once and never
// mutated afterwards, so it is safe for concurrent readers.
type Registry struct {
	media map[string]Media
	ids   []string
}

// New builds a registry from descriptors. The descriptor ID is the key; later
// duplicates replace earlier ones.
func New(list ...Media) *Registry {
	m := make(map[string]Media, len(list))
	for _, md := range list {
		m[md.ID] = md
	}
	return newRegistry(m)
}

func newRegistry(m map[string]Media) *Registry {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return &Registry{media: m, ids: ids}
}

// Load reads the registry file at path. The format is chosen by extension.
func Load(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("registry path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	reg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return reg, nil
}

// Parse decodes registry data in the format named by ext (".json", ".yaml",
// ".yml" or ".toml").
func Parse(data []byte, ext string) (*Registry, error) {
	raw := make(map[string]entry)

	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if len(raw) == 0 {
		return nil, ErrEmptyRegistry
	}

	m := make(map[string]Media, len(raw))
	for id, e := range raw {
		if strings.TrimSpace(id) == "" {
			return nil, errors.New("media id must not be empty")
		}
		m[id] = Media{
			ID:                id,
			FeedURL:           strings.TrimSpace(e.Flux),
			Orientation:       strings.TrimSpace(e.Orientation),
			Leader:            e.PDG,
			Description:       e.Description,
			EconomicInterests: e.InteretsEconomiques,
		}
	}
	return newRegistry(m), nil
}

// IDs returns the registered media ids sorted lexicographically ascending.
// The returned slice is a copy.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// Len returns the number of registered media.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.ids)
}

// Get returns the descriptor for id and whether it is registered.
func (r *Registry) Get(id string) (Media, bool) {
	if r == nil {
		return Media{}, false
	}
	m, ok := r.media[id]
	return m, ok
}

// Lookup returns the descriptor for id, or a descriptor whose fields are all
// Unknown when id is not registered.
func (r *Registry) Lookup(id string) Media {
	if m, ok := r.Get(id); ok {
		return m
	}
	return Media{
		ID:                id,
		Orientation:       Unknown,
		Leader:            Unknown,
		Description:       Unknown,
		EconomicInterests: Unknown,
	}
}

// Orientation returns the orientation of a registered media, or "" otherwise.
func (r *Registry) Orientation(id string) string {
	m, _ := r.Get(id)
	return m.Orientation
}

// All returns every descriptor in IDs order.
func (r *Registry) All() []Media {
	if r == nil {
		return nil
	}
	out := make([]Media, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.media[id])
	}
	return out
}
