package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/adiwidya/voxgate/server/domain/repositories"
)

// Role identifies a pipeline stage served by interchangeable providers.
type Role string

const (
	RoleStt Role = "stt"
	RoleAi  Role = "ai"
	RoleTts Role = "tts"
)

// ErrUnknownProvider is returned when resolution names a provider that was
// never registered for the role.
var ErrUnknownProvider = errors.New("unknown provider")

// Registry maps each role to its named providers and a configured default.
// All providers of a role share one call signature, so the orchestrator
// stays provider-agnostic; identity is only reported back for transparency.
type Registry struct {
	logger *zap.Logger

	mu       sync.RWMutex
	stt      map[string]repositories.SpeechToText
	ai       map[string]repositories.LanguageModel
	tts      map[string]repositories.TextToSpeech
	defaults map[Role]string
}

// New creates an empty registry.
func New(logger *zap.Logger) *Registry {
	return &Registry{
		logger:   logger,
		stt:      make(map[string]repositories.SpeechToText),
		ai:       make(map[string]repositories.LanguageModel),
		tts:      make(map[string]repositories.TextToSpeech),
		defaults: make(map[Role]string),
	}
}

// RegisterStt adds an STT provider. The first provider registered for a
// role becomes its default until SetDefault overrides it.
func (r *Registry) RegisterStt(p repositories.SpeechToText) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stt[p.Name()] = p
	if _, ok := r.defaults[RoleStt]; !ok {
		r.defaults[RoleStt] = p.Name()
	}
	r.logger.Info("Provider registered",
		zap.String("role", string(RoleStt)), zap.String("name", p.Name()))
}

// RegisterAi adds a language-model provider.
func (r *Registry) RegisterAi(p repositories.LanguageModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ai[p.Name()] = p
	if _, ok := r.defaults[RoleAi]; !ok {
		r.defaults[RoleAi] = p.Name()
	}
	r.logger.Info("Provider registered",
		zap.String("role", string(RoleAi)), zap.String("name", p.Name()))
}

// RegisterTts adds a TTS provider.
func (r *Registry) RegisterTts(p repositories.TextToSpeech) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tts[p.Name()] = p
	if _, ok := r.defaults[RoleTts]; !ok {
		r.defaults[RoleTts] = p.Name()
	}
	r.logger.Info("Provider registered",
		zap.String("role", string(RoleTts)), zap.String("name", p.Name()))
}

// SetDefault overrides the default provider for a role. The provider must
// already be registered.
func (r *Registry) SetDefault(role Role, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.has(role, name) {
		return fmt.Errorf("%w: %s/%s", ErrUnknownProvider, role, name)
	}
	r.defaults[role] = name
	return nil
}

// ResolveStt returns the named STT provider, or the role default when name
// is empty.
func (r *Registry) ResolveStt(name string) (repositories.SpeechToText, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		name = r.defaults[RoleStt]
	}
	p, ok := r.stt[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownProvider, RoleStt, name)
	}
	return p, nil
}

// ResolveAi returns the named language-model provider, or the role default.
func (r *Registry) ResolveAi(name string) (repositories.LanguageModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		name = r.defaults[RoleAi]
	}
	p, ok := r.ai[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownProvider, RoleAi, name)
	}
	return p, nil
}

// ResolveTts returns the named TTS provider, or the role default.
func (r *Registry) ResolveTts(name string) (repositories.TextToSpeech, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		name = r.defaults[RoleTts]
	}
	p, ok := r.tts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownProvider, RoleTts, name)
	}
	return p, nil
}

// Available returns the role → provider-names table, sorted for stable
// output.
func (r *Registry) Available() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	table := map[string][]string{
		string(RoleStt): keysOfStt(r.stt),
		string(RoleAi):  keysOfAi(r.ai),
		string(RoleTts): keysOfTts(r.tts),
	}
	return table
}

// Defaults returns the configured default provider per role.
func (r *Registry) Defaults() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defaults := make(map[string]string, len(r.defaults))
	for role, name := range r.defaults {
		defaults[string(role)] = name
	}
	return defaults
}

func (r *Registry) has(role Role, name string) bool {
	switch role {
	case RoleStt:
		_, ok := r.stt[name]
		return ok
	case RoleAi:
		_, ok := r.ai[name]
		return ok
	case RoleTts:
		_, ok := r.tts[name]
		return ok
	}
	return false
}

func keysOfStt(m map[string]repositories.SpeechToText) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func keysOfAi(m map[string]repositories.LanguageModel) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func keysOfTts(m map[string]repositories.TextToSpeech) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
