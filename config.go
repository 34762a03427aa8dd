package cmisql

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/nlstn/go-cmisql/internal/dictionary"
	"github.com/nlstn/go-cmisql/internal/evaluation"
	"github.com/nlstn/go-cmisql/internal/observability"
)

// Config controls how a Compiler parses and resolves queries.
// The zero value is usable: strict mode, an empty dictionary and no
// default namespace.
type Config struct {
	// Mode selects the accepted dialect. Defaults to ModeStrict.
	Mode Mode

	// DefaultNamespace is the namespace URI used for unqualified property
	// names. Empty disables unqualified dictionary lookups.
	DefaultNamespace string

	// Dictionary holds property and data type definitions.
	// Defaults to Registry, or an empty registry when both are nil.
	Dictionary Dictionary

	// Namespaces maps prefixes to namespace URIs.
	// Defaults to Registry, or the registry backing Dictionary.
	Namespaces NamespaceResolver

	// Registry is a convenience for the common case where one in-memory
	// registry serves as both Dictionary and Namespaces.
	Registry *Registry

	// ExposedFields replaces the built-in exposed system fields when non-nil.
	ExposedFields *FieldSet

	// OrderablePolicy and QueryablePolicy decide IsOrderable and IsQueryable.
	// Nil allows every field.
	OrderablePolicy Policy
	QueryablePolicy Policy

	// ObjectIDFields names the resolved fields holding object ids.
	ObjectIDFields []string

	// DisableFTSParsing leaves Contains.Expression nil.
	DisableFTSParsing bool

	// Observability configures tracing, metrics and phase timings.
	// Nil disables all three.
	Observability *observability.Config

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// validate fills defaults in a copy of cfg and checks it.
func (cfg *Config) validate() (*Config, error) {
	out := Config{}
	if cfg != nil {
		out = *cfg
	}

	switch out.Mode {
	case ModeStrict, ModeAlfresco:
	default:
		return nil, fmt.Errorf("%w: unknown mode %d", ErrInvalidConfig, out.Mode)
	}

	out.DefaultNamespace = strings.TrimSpace(out.DefaultNamespace)
	if strings.ContainsAny(out.DefaultNamespace, "{}") {
		return nil, fmt.Errorf("%w: default namespace %q must be a bare URI", ErrInvalidConfig, out.DefaultNamespace)
	}

	if out.Dictionary == nil {
		if out.Registry == nil {
			out.Registry = dictionary.NewRegistry()
		}
		out.Dictionary = out.Registry
	}
	if out.Namespaces == nil {
		switch {
		case out.Registry != nil:
			out.Namespaces = out.Registry
		default:
			ns, ok := out.Dictionary.(NamespaceResolver)
			if !ok {
				return nil, fmt.Errorf("%w: a namespace resolver is required", ErrInvalidConfig)
			}
			out.Namespaces = ns
		}
	}

	if out.Observability == nil {
		out.Observability = observability.NewConfig()
	}
	if err := out.Observability.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out, nil
}

func (cfg *Config) evaluationOptions() []evaluation.Option {
	opts := []evaluation.Option{
		evaluation.WithOrderablePolicy(cfg.OrderablePolicy),
		evaluation.WithQueryablePolicy(cfg.QueryablePolicy),
		evaluation.WithObjectIDFields(cfg.ObjectIDFields...),
		evaluation.WithLogger(cfg.Logger),
	}
	if cfg.ExposedFields != nil {
		opts = append(opts, evaluation.WithExposedFields(*cfg.ExposedFields))
	}
	return opts
}
