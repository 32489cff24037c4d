package auth

import (
	"fmt"
	"net/http"
	"sync"

	"foundry_cli/pkg/config"
)

// Credential injects authentication onto outgoing service requests.
type Credential interface {
	// Name identifies the credential kind for logs and error messages.
	Name() string
	// Apply sets the credential's auth header on req.
	Apply(req *http.Request) error
}

// Kind identifies a supported credential mechanism.
type Kind string

const (
	KindAPIKey        Kind = config.CredentialAPIKey
	KindAzureIdentity Kind = config.CredentialAzureIdentity
	KindStaticToken   Kind = config.CredentialStaticToken
)

// Options holds the material a credential factory may need.
type Options struct {
	APIKey      string
	StaticToken string
	Scopes      []string
}

// Factory is a function that creates a Credential from options.
type Factory func(opts Options) (Credential, error)

// Info describes a registered credential kind.
type Info struct {
	Kind           Kind
	Name           string
	Description    string
	RequiresSecret bool
}

// Registry manages credential factories and instantiation.
type Registry struct {
	mu        sync.RWMutex
	factories map[Kind]Factory
	info      map[Kind]Info
}

// NewRegistry creates a new credential registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[Kind]Factory),
		info:      make(map[Kind]Info),
	}
}

// Register adds a credential factory to the registry.
func (r *Registry) Register(info Info, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[info.Kind] = factory
	r.info[info.Kind] = info
}

// Resolve creates a credential instance by kind.
func (r *Registry) Resolve(kind Kind, opts Options) (Credential, error) {
	r.mu.RLock()
	factory, ok := r.factories[kind]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown credential kind: %s", kind)
	}

	return factory(opts)
}

// GetInfo returns information about a specific credential kind.
func (r *Registry) GetInfo(kind Kind) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.info[kind]
	return info, ok
}

// IsRegistered checks if a credential kind is registered.
func (r *Registry) IsRegistered(kind Kind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[kind]
	return ok
}

// DefaultRegistry is the global credential registry.
var DefaultRegistry = NewRegistry()

// Register registers a credential factory with the default registry.
func Register(info Info, factory Factory) {
	DefaultRegistry.Register(info, factory)
}

// Resolve creates a credential from the default registry.
func Resolve(kind Kind, opts Options) (Credential, error) {
	return DefaultRegistry.Resolve(kind, opts)
}

// SupportedKinds returns all supported credential kinds.
func SupportedKinds() []Kind {
	return []Kind{KindAPIKey, KindAzureIdentity, KindStaticToken}
}

// ValidateKind checks if a credential kind string is valid.
func ValidateKind(s string) (Kind, bool) {
	kind := Kind(s)
	for _, supported := range SupportedKinds() {
		if kind == supported {
			return kind, true
		}
	}
	return "", false
}

// FromConfig creates a credential based on the config's credential setting.
func FromConfig(cfg config.Config) (Credential, error) {
	kind, ok := ValidateKind(cfg.Credential)
	if !ok {
		return nil, fmt.Errorf("unknown credential kind: %s", cfg.Credential)
	}

	return Resolve(kind, Options{StaticToken: cfg.StaticToken})
}
