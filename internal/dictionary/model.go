package dictionary

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Model is the file form of a dictionary model.
//
//	namespaces:
//	  - prefix: cm
//	    uri: http://www.alfresco.org/model/content/1.0
//	dataTypes:
//	  - name: cm:custom
//	properties:
//	  - name: cm:name
//	    type: d:text
//	    tokenised: both
//	    multiValued: false
//
// Names may use the prefix:local or {uri}local form. Prefixes must be
// declared in the same model or already known to the target registry.
type Model struct {
	Namespaces []NamespaceModel `yaml:"namespaces"`
	DataTypes  []DataTypeModel  `yaml:"dataTypes"`
	Properties []PropertyModel  `yaml:"properties"`
}

// NamespaceModel maps a prefix to a namespace uri.
type NamespaceModel struct {
	Prefix string `yaml:"prefix"`
	URI    string `yaml:"uri"`
}

// DataTypeModel declares a data type.
type DataTypeModel struct {
	Name string `yaml:"name"`
}

// PropertyModel declares a property.
type PropertyModel struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Tokenised   string `yaml:"tokenised"`
	MultiValued bool   `yaml:"multiValued"`
}

// LoadModel decodes a YAML model. Unknown fields are rejected.
func LoadModel(r io.Reader) (*Model, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var m Model
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return &m, nil
		}
		return nil, fmt.Errorf("decode dictionary model: %w", err)
	}
	return &m, nil
}

// LoadModelFile decodes the YAML model at path.
func LoadModelFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadModel(f)
}

// Apply registers the model's namespaces, data types and properties, in that
// order. It stops at the first invalid entry.
func (m *Model) Apply(reg *Registry) error {
	for _, ns := range m.Namespaces {
		if err := reg.RegisterNamespace(ns.Prefix, ns.URI); err != nil {
			return err
		}
	}
	for _, dt := range m.DataTypes {
		name, err := ResolveQName(dt.Name, reg)
		if err != nil {
			return fmt.Errorf("data type %s: %w", dt.Name, err)
		}
		if err := reg.RegisterDataType(DataTypeDefinition{Name: name}); err != nil {
			return err
		}
	}
	for _, p := range m.Properties {
		def, err := p.definition(reg)
		if err != nil {
			return fmt.Errorf("property %s: %w", p.Name, err)
		}
		if err := reg.RegisterProperty(def); err != nil {
			return err
		}
	}
	return nil
}

func (p PropertyModel) definition(ns NamespaceResolver) (PropertyDefinition, error) {
	name, err := ResolveQName(p.Name, ns)
	if err != nil {
		return PropertyDefinition{}, err
	}
	dataType, err := ResolveQName(p.Type, ns)
	if err != nil {
		return PropertyDefinition{}, err
	}
	tokenised, err := ParseTokenisation(p.Tokenised)
	if err != nil {
		return PropertyDefinition{}, err
	}
	return PropertyDefinition{
		Name:        name,
		DataType:    dataType,
		Tokenised:   tokenised,
		MultiValued: p.MultiValued,
	}, nil
}

// ModelFromRegistry exports every namespace, non built-in data type and
// property using prefixed names where a prefix is known.
func ModelFromRegistry(reg *Registry) *Model {
	m := &Model{}
	namespaces := reg.Namespaces()
	prefixes := make([]string, 0, len(namespaces))
	for prefix := range namespaces {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)
	for _, prefix := range prefixes {
		m.Namespaces = append(m.Namespaces, NamespaceModel{Prefix: prefix, URI: namespaces[prefix]})
	}

	builtin := make(map[QName]bool, len(BuiltinDataTypes))
	for _, dt := range BuiltinDataTypes {
		builtin[dt] = true
	}
	for _, dt := range reg.DataTypes() {
		if !builtin[dt.Name] {
			m.DataTypes = append(m.DataTypes, DataTypeModel{Name: dt.Name.PrefixString(reg)})
		}
	}
	for _, p := range reg.Properties() {
		m.Properties = append(m.Properties, PropertyModel{
			Name:        p.Name.PrefixString(reg),
			Type:        p.DataType.PrefixString(reg),
			Tokenised:   p.Tokenised.String(),
			MultiValued: p.MultiValued,
		})
	}
	return m
}

// WriteModel encodes m as YAML.
func WriteModel(w io.Writer, m *Model) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return err
	}
	return enc.Close()
}
