package schema

import (
	"bytes"
	"embed"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

//go:embed configs/*.yaml
var builtinFS embed.FS

// Registry resolves country codes to schemas. Explicit registrations take
// precedence over the built-in configurations shipped with the package.
// Built-ins are loaded lazily on first lookup; after that the registry is
// effectively read-only and safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	explicit map[string]*CountrySchema

	builtinOnce sync.Once
	builtin     map[string]*CountrySchema
}

// NewRegistry returns an empty registry backed by the built-in configs.
func NewRegistry() *Registry {
	return &Registry{explicit: make(map[string]*CountrySchema)}
}

// Register validates and adds a schema. A schema id can only be loaded once;
// re-registering an id is an error rather than a silent overwrite.
func (r *Registry) Register(s *CountrySchema) error {
	if err := s.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.explicit[s.ID]; exists {
		return eris.Errorf("schema: country %q already registered", s.ID)
	}
	r.explicit[s.ID] = s
	return nil
}

// RegisterFile loads a schema from a YAML file and registers it.
func (r *Registry) RegisterFile(path string) error {
	s, err := LoadFile(path)
	if err != nil {
		return err
	}
	return r.Register(s)
}

// Get returns the schema for a country code, preferring explicit
// registrations over built-ins.
func (r *Registry) Get(code string) (*CountrySchema, error) {
	r.mu.RLock()
	s, ok := r.explicit[code]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}
	if s, ok := r.builtins()[code]; ok {
		return s, nil
	}
	return nil, &UnknownCountryError{Code: code}
}

// Codes returns every resolvable country code, sorted.
func (r *Registry) Codes() []string {
	seen := make(map[string]bool)
	r.mu.RLock()
	for code := range r.explicit {
		seen[code] = true
	}
	r.mu.RUnlock()
	for code := range r.builtins() {
		seen[code] = true
	}
	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// builtins loads the embedded configurations exactly once. The embedded
// files ship with the package, so a parse failure is a programming error and
// only logged, never surfaced per lookup.
func (r *Registry) builtins() map[string]*CountrySchema {
	r.builtinOnce.Do(func() {
		r.builtin = make(map[string]*CountrySchema)
		entries, err := builtinFS.ReadDir("configs")
		if err != nil {
			zap.L().Error("schema: read embedded configs", zap.Error(err))
			return
		}
		for _, entry := range entries {
			data, err := builtinFS.ReadFile("configs/" + entry.Name())
			if err != nil {
				zap.L().Error("schema: read embedded config", zap.String("file", entry.Name()), zap.Error(err))
				continue
			}
			s, err := Load(bytes.NewReader(data))
			if err != nil {
				zap.L().Error("schema: parse embedded config", zap.String("file", entry.Name()), zap.Error(err))
				continue
			}
			r.builtin[s.ID] = s
		}
	})
	return r.builtin
}

// defaultRegistry backs the package-level lookup helpers.
var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Get resolves a country code against the process-wide registry.
func Get(code string) (*CountrySchema, error) {
	return defaultRegistry.Get(code)
}

// Register adds a schema to the process-wide registry.
func Register(s *CountrySchema) error {
	return defaultRegistry.Register(s)
}

// Codes lists the country codes resolvable through the process-wide registry.
func Codes() []string {
	return defaultRegistry.Codes()
}
