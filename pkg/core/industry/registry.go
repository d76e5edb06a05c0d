package industry

import (
	"strings"
	"sync"

	"github.com/earningscope/engine/pkg/core/ferr"
)

// Registry holds every loaded industry profile, keyed by code, with a
// secondary display-name index. Populated by LoadFromFile and
// LoadOverride; reads need no lock beyond the RWMutex guarding the maps
// themselves.
type Registry struct {
	mu       sync.RWMutex
	byCode   map[string]Profile
	byName   map[string]string // display name -> code
}

var (
	globalRegistry *Registry
	once           sync.Once
)

// Get returns the global registry singleton, empty until LoadFromFile populates it.
func Get() *Registry {
	once.Do(func() {
		globalRegistry = &Registry{
			byCode: make(map[string]Profile),
			byName: make(map[string]string),
		}
	})
	return globalRegistry
}

// Register adds or replaces one profile.
func (r *Registry) Register(p Profile) error {
	if p.Code == "" {
		return ferr.New(ferr.InvalidInput, "industry.Register", nil)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byCode[normalizeCode(p.Code)] = p
	if p.Name != "" {
		r.byName[p.Name] = p.Code
	}
	return nil
}

// GetByCode retrieves a profile by its industry code (case-insensitive).
func (r *Registry) GetByCode(code string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.byCode[normalizeCode(code)]; ok {
		return p, nil
	}
	return Profile{}, ferr.New(ferr.NotFound, "industry.GetByCode", nil)
}

// GetByName retrieves a profile by its display name (case-sensitive,
// exact match against the name used at registration time).
func (r *Registry) GetByName(name string) (Profile, error) {
	r.mu.RLock()
	code, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return Profile{}, ferr.New(ferr.NotFound, "industry.GetByName", nil)
	}
	return r.GetByCode(code)
}

// Get retrieves a profile by code or display name, trying code first.
func (r *Registry) Get(codeOrName string) (Profile, error) {
	if p, err := r.GetByCode(codeOrName); err == nil {
		return p, nil
	}
	return r.GetByName(codeOrName)
}

// ListCodes returns every registered industry code.
func (r *Registry) ListCodes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.byCode))
	for code := range r.byCode {
		codes = append(codes, code)
	}
	return codes
}

// Count returns the number of registered profiles.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byCode)
}

// Clear removes all profiles. Exposed for test isolation.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byCode = make(map[string]Profile)
	r.byName = make(map[string]string)
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
