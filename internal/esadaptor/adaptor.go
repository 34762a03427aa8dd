// Package esadaptor maps resolved CMIS field names onto an Elasticsearch
// index layout and translates FTS trees into Elasticsearch queries.
package esadaptor

import (
	"errors"
	"log/slog"
	"strings"

	elastic "github.com/olivere/elastic/v7"

	"github.com/nlstn/go-cmisql/internal/dictionary"
	"github.com/nlstn/go-cmisql/internal/evaluation"
)

// ErrNotSortable is returned when a field has no sortable variant in the index.
var ErrNotSortable = errors.New("cmisql: field is not sortable in the index")

const (
	defaultTextField       = evaluation.FieldText
	defaultKeywordSubfield = ".keyword"
)

// Adaptor implements evaluation.SortAdaptor for an index whose property
// fields are named "prefix%3Alocal".
type Adaptor struct {
	ns       dictionary.NamespaceResolver
	sortable map[string]struct{}
	text     string
	keyword  string
	logger   *slog.Logger
}

// Option configures an Adaptor.
type Option func(*Adaptor)

// WithSortableFields declares the index fields that carry doc values. Names
// may be given in resolved "@{uri}local" form or as index field names.
func WithSortableFields(fields ...string) Option {
	return func(a *Adaptor) {
		for _, f := range fields {
			a.sortable[f] = struct{}{}
		}
	}
}

// WithTextField sets the field FTS queries run against when none is given.
func WithTextField(field string) Option {
	return func(a *Adaptor) {
		if field != "" {
			a.text = field
		}
	}
}

// WithKeywordSubfield sets the subfield appended by GetSortField.
func WithKeywordSubfield(subfield string) Option {
	return func(a *Adaptor) {
		a.keyword = subfield
	}
}

// WithLogger sets the logger. Nil selects slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adaptor) {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
	}
}

// New returns an adaptor that uses ns to turn namespace URIs into prefixes.
func New(ns dictionary.NamespaceResolver, opts ...Option) *Adaptor {
	a := &Adaptor{
		ns:       ns,
		sortable: make(map[string]struct{}),
		text:     defaultTextField,
		keyword:  defaultKeywordSubfield,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// TextField returns the default FTS field.
func (a *Adaptor) TextField() string {
	return a.text
}

// IndexField maps a resolved field name to its index field name. Property
// fields "@{uri}local[.suffix]" become "prefix%3Alocal[.suffix]"; anything
// else is returned unchanged.
func (a *Adaptor) IndexField(field string) string {
	if !strings.HasPrefix(field, "@{") {
		return field
	}
	base, suffix := splitSuffix(field[1:])
	qn, err := dictionary.ParseQName(base)
	if err != nil {
		return field
	}
	name := qn.PrefixString(a.ns)
	if strings.HasPrefix(name, "{") {
		a.logger.Debug("no prefix registered for namespace", "uri", qn.URI)
		return name + suffix
	}
	return strings.Replace(name, ":", "%3A", 1) + suffix
}

func splitSuffix(name string) (string, string) {
	end := strings.LastIndexByte(name, '}')
	if end < 0 {
		return name, ""
	}
	local := name[end+1:]
	for _, suffix := range append([]string{evaluation.NoLocaleSuffix}, evaluation.ContentSuffixes...) {
		if len(local) > len(suffix) && strings.HasSuffix(local, suffix) {
			return name[:len(name)-len(suffix)], suffix
		}
	}
	return name, ""
}

func (a *Adaptor) isSortable(field string) bool {
	if _, ok := a.sortable[field]; ok {
		return true
	}
	_, ok := a.sortable[a.IndexField(field)]
	return ok
}

// SortFieldExists reports whether field was declared sortable.
func (a *Adaptor) SortFieldExists(field string) bool {
	return a.isSortable(field)
}

// GetSortField returns the keyword subfield of a text field.
func (a *Adaptor) GetSortField(field string) (string, error) {
	return a.IndexField(field) + a.keyword, nil
}

// GetDatetimeSortField returns the index field of a datetime property.
// Datetimes are stored with doc values, so no subfield is needed.
func (a *Adaptor) GetDatetimeSortField(field string, prop *dictionary.PropertyDefinition) (string, error) {
	if prop != nil && prop.MultiValued {
		return "", ErrNotSortable
	}
	return a.IndexField(field), nil
}

// Sorter builds the sort clause for a resolved sort field.
func (a *Adaptor) Sorter(field string, ascending bool) elastic.Sorter {
	if field == evaluation.FieldScore {
		return elastic.NewScoreSort().Order(ascending)
	}
	name := field
	if strings.HasPrefix(field, "@") {
		name = a.IndexField(field)
	}
	return elastic.NewFieldSort(name).Order(ascending)
}
