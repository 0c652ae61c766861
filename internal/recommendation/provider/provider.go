// Package provider holds the external text generators used by the
// recommendation pipeline and the registry that picks one per request.
package provider

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sort"

	"automation-advisor/internal/common/config"
	apperrors "automation-advisor/internal/common/errors"
	"automation-advisor/internal/common/logger"
	"automation-advisor/internal/models"
	"automation-advisor/internal/recommendation/prompt"
)

// Generator turns a rendered prompt into raw model output. Implementations
// never retry; failures come back as provider invocation errors.
type Generator interface {
	Name() string
	Generate(ctx context.Context, p prompt.Prompt) (string, error)
}

// Options are the sampling settings shared by every generator.
type Options struct {
	MaxTokens   int
	Temperature float64
}

func optionsFrom(cfg config.GenerationConfig) Options {
	return Options{MaxTokens: cfg.MaxTokens, Temperature: cfg.Temperature}
}

// Registry maps provider names to configured generators.
type Registry struct {
	generators  map[string]Generator
	defaultName string
}

// NewRegistry builds a registry from ready generators. defaultName is used
// when the caller has no preference and may be empty.
func NewRegistry(defaultName string, generators ...Generator) *Registry {
	r := &Registry{generators: make(map[string]Generator), defaultName: defaultName}
	for _, g := range generators {
		r.generators[g.Name()] = g
	}
	return r
}

// FromConfig creates a generator for every provider with credentials.
// Providers without credentials are skipped, so the registry may be empty.
func FromConfig(ctx context.Context, cfg *config.Config, log logger.Logger) (*Registry, error) {
	opts := optionsFrom(cfg.Generation)
	var generators []Generator

	if p := cfg.Providers.OpenAI; p.Configured() {
		generators = append(generators, NewOpenAI(p, opts))
	}
	if p := cfg.Providers.Anthropic; p.Configured() {
		generators = append(generators, NewAnthropic(p, opts))
	}
	if p := cfg.Providers.Gemini; p.Configured() {
		g, err := NewGemini(ctx, p, opts)
		if err != nil {
			return nil, err
		}
		generators = append(generators, g)
	}
	if p := cfg.Providers.Gateway; p.Configured() && p.BaseURL != "" {
		generators = append(generators, NewGateway(p, opts, 0))
	}

	r := NewRegistry(cfg.Generation.DefaultProvider, generators...)
	log.Info("Generation providers configured", map[string]interface{}{
		"providers":       r.Names(),
		"defaultProvider": cfg.Generation.DefaultProvider,
	})
	return r, nil
}

// Names lists configured providers in preference order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool { return rank(names[i]) < rank(names[j]) })
	return names
}

// Configured reports whether any generator is available.
func (r *Registry) Configured() bool {
	return len(r.generators) > 0
}

// Resolve picks the generator for a request: the preferred one when given,
// else the default, else the first configured in preference order.
func (r *Registry) Resolve(preferred string) (Generator, error) {
	if preferred != "" {
		if g, ok := r.generators[preferred]; ok {
			return g, nil
		}
		return nil, apperrors.NewProviderNotConfiguredError(preferred)
	}
	if g, ok := r.generators[r.defaultName]; ok {
		return g, nil
	}
	names := r.Names()
	if len(names) == 0 {
		return nil, apperrors.NewProviderNotConfiguredError("")
	}
	return r.generators[names[0]], nil
}

func rank(name string) int {
	for i, p := range models.Providers {
		if p == name {
			return i
		}
	}
	return len(models.Providers)
}

// CategoryForStatus maps an HTTP status from a generator to a category.
func CategoryForStatus(status int) apperrors.InvocationCategory {
	switch {
	case status == http.StatusTooManyRequests:
		return apperrors.CategoryRateLimited
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return apperrors.CategoryUnauthenticated
	default:
		return apperrors.CategoryUnavailable
	}
}

// invocationError wraps a transport or API failure. Deadline and network
// errors are unavailable; status-carrying errors use CategoryForStatus.
func invocationError(provider string, status int, err error) error {
	category := apperrors.CategoryUnavailable
	if status > 0 {
		category = CategoryForStatus(status)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		category = apperrors.CategoryUnavailable
	}
	return apperrors.NewProviderInvocationError(provider, category, err)
}
