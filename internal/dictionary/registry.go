package dictionary

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownPrefix is returned when a namespace prefix has no mapping.
var ErrUnknownPrefix = errors.New("cmisql: unknown namespace prefix")

// Registry is an in-memory dictionary and namespace resolver. It is safe for
// concurrent use.
type Registry struct {
	mu         sync.RWMutex
	namespaces map[string]string
	prefixes   map[string][]string
	properties map[QName]*PropertyDefinition
	dataTypes  map[QName]*DataTypeDefinition
}

// NewRegistry returns a registry holding the built-in data types and the
// "d" prefix for the dictionary namespace.
func NewRegistry() *Registry {
	r := &Registry{
		namespaces: make(map[string]string),
		prefixes:   make(map[string][]string),
		properties: make(map[QName]*PropertyDefinition),
		dataTypes:  make(map[QName]*DataTypeDefinition),
	}
	r.registerNamespace("d", DictionaryNamespace)
	for _, dt := range BuiltinDataTypes {
		r.dataTypes[dt] = &DataTypeDefinition{Name: dt}
	}
	return r
}

// RegisterNamespace maps prefix to uri. A prefix may be remapped only to the
// same uri.
func (r *Registry) RegisterNamespace(prefix, uri string) error {
	if prefix == "" || strings.ContainsAny(prefix, ":{}") {
		return fmt.Errorf("invalid namespace prefix %q", prefix)
	}
	if uri == "" {
		return fmt.Errorf("namespace prefix %s has an empty uri", prefix)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.namespaces[prefix]; ok {
		if existing != uri {
			return fmt.Errorf("namespace prefix %s is already mapped to %s", prefix, existing)
		}
		return nil
	}
	r.registerNamespace(prefix, uri)
	return nil
}

func (r *Registry) registerNamespace(prefix, uri string) {
	r.namespaces[prefix] = uri
	r.prefixes[uri] = append(r.prefixes[uri], prefix)
	sort.Strings(r.prefixes[uri])
}

// RegisterProperty adds or replaces a property definition.
func (r *Registry) RegisterProperty(def PropertyDefinition) error {
	if def.Name.URI == "" || def.Name.Local == "" {
		return fmt.Errorf("property name %s must be fully qualified", def.Name)
	}
	if def.DataType.IsZero() {
		return fmt.Errorf("property %s has no data type", def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.dataTypes[def.DataType]; !ok {
		return fmt.Errorf("property %s has unknown data type %s", def.Name, def.DataType)
	}
	copied := def
	r.properties[def.Name] = &copied
	return nil
}

// RegisterDataType adds a data type definition.
func (r *Registry) RegisterDataType(def DataTypeDefinition) error {
	if def.Name.URI == "" || def.Name.Local == "" {
		return fmt.Errorf("data type name %s must be fully qualified", def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	copied := def
	r.dataTypes[def.Name] = &copied
	return nil
}

// clone returns a deep copy of r.
func (r *Registry) clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := &Registry{
		namespaces: make(map[string]string, len(r.namespaces)),
		prefixes:   make(map[string][]string, len(r.prefixes)),
		properties: make(map[QName]*PropertyDefinition, len(r.properties)),
		dataTypes:  make(map[QName]*DataTypeDefinition, len(r.dataTypes)),
	}
	for prefix, uri := range r.namespaces {
		c.namespaces[prefix] = uri
	}
	for uri, prefixes := range r.prefixes {
		c.prefixes[uri] = append([]string(nil), prefixes...)
	}
	for name, def := range r.properties {
		copied := *def
		c.properties[name] = &copied
	}
	for name, def := range r.dataTypes {
		copied := *def
		c.dataTypes[name] = &copied
	}
	return c
}

// adopt replaces the contents of r with those of staged. staged must not be
// used afterwards.
func (r *Registry) adopt(staged *Registry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.namespaces = staged.namespaces
	r.prefixes = staged.prefixes
	r.properties = staged.properties
	r.dataTypes = staged.dataTypes
}

// Property implements Service.
func (r *Registry) Property(name QName) (*PropertyDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.properties[name]
	if !ok {
		return nil, false
	}
	copied := *def
	return &copied, true
}

// DataType implements Service.
func (r *Registry) DataType(name QName) (*DataTypeDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.dataTypes[name]
	if !ok {
		return nil, false
	}
	copied := *def
	return &copied, true
}

// NamespaceURI implements NamespaceResolver.
func (r *Registry) NamespaceURI(prefix string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	uri, ok := r.namespaces[prefix]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownPrefix, prefix)
	}
	return uri, nil
}

// Prefixes implements NamespaceResolver. The result is sorted.
func (r *Registry) Prefixes(uri string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prefixes := r.prefixes[uri]
	copied := make([]string, len(prefixes))
	copy(copied, prefixes)
	return copied
}

// Namespaces returns a copy of the prefix to uri mapping.
func (r *Registry) Namespaces() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	copied := make(map[string]string, len(r.namespaces))
	for prefix, uri := range r.namespaces {
		copied[prefix] = uri
	}
	return copied
}

// Properties returns every property definition ordered by name.
func (r *Registry) Properties() []PropertyDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]PropertyDefinition, 0, len(r.properties))
	for _, def := range r.properties {
		defs = append(defs, *def)
	}
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].Name.String() < defs[j].Name.String()
	})
	return defs
}

// DataTypes returns every data type definition ordered by name.
func (r *Registry) DataTypes() []DataTypeDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]DataTypeDefinition, 0, len(r.dataTypes))
	for _, def := range r.dataTypes {
		defs = append(defs, *def)
	}
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].Name.String() < defs[j].Name.String()
	})
	return defs
}
