package evaluation

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/nlstn/go-cmisql/internal/dictionary"
)

// Policy decides a capability for a resolved field name.
type Policy func(ec *Context, field string) bool

// Permissive allows every field.
func Permissive(*Context, string) bool { return true }

// TokenisedOrderablePolicy rejects ordering on text and mltext properties
// indexed as analysed tokens only. Any other field is orderable.
func TokenisedOrderablePolicy(ec *Context, field string) bool {
	prop, ok := ec.PropertyDefinition(field)
	if !ok {
		return true
	}
	if prop.DataType != dictionary.DataTypeText && prop.DataType != dictionary.DataTypeMLText {
		return true
	}
	return prop.Tokenised != dictionary.TokeniseTrue
}

// Context resolves logical property names against a dictionary. It holds
// no mutable state and is safe for concurrent use when its dictionary and
// namespace resolver are.
type Context struct {
	dict             dictionary.Service
	ns               dictionary.NamespaceResolver
	defaultNamespace string
	exposed          FieldSet
	orderable        Policy
	queryable        Policy
	objectIDs        FieldSet
	sessionID        string
	logger           *slog.Logger
	exec             ExecutionContext
}

// Option configures a Context.
type Option func(*Context)

// WithExposedFields replaces the exposed system field set.
func WithExposedFields(fields FieldSet) Option {
	return func(c *Context) {
		c.exposed = fields
	}
}

// WithOrderablePolicy sets the policy behind IsOrderable. Nil restores the
// permissive default.
func WithOrderablePolicy(p Policy) Option {
	return func(c *Context) {
		if p == nil {
			p = Permissive
		}
		c.orderable = p
	}
}

// WithQueryablePolicy sets the policy behind IsQueryable. Nil restores the
// permissive default.
func WithQueryablePolicy(p Policy) Option {
	return func(c *Context) {
		if p == nil {
			p = Permissive
		}
		c.queryable = p
	}
}

// WithObjectIDFields names the resolved fields that hold object ids.
func WithObjectIDFields(fields ...string) Option {
	return func(c *Context) {
		c.objectIDs = NewFieldSet(fields...)
	}
}

// WithLogger sets the logger. Nil selects slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Context) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// WithSessionID replaces the generated session id.
func WithSessionID(id string) Option {
	return func(c *Context) {
		c.sessionID = id
	}
}

// WithExecutionContext binds the runtime that serves execution-time data.
func WithExecutionContext(exec ExecutionContext) Option {
	return func(c *Context) {
		c.exec = exec
	}
}

// New creates an evaluation context. An empty defaultNamespace disables
// unqualified dictionary lookups.
func New(dict dictionary.Service, ns dictionary.NamespaceResolver, defaultNamespace string, opts ...Option) *Context {
	c := &Context{
		dict:             dict,
		ns:               ns,
		defaultNamespace: defaultNamespace,
		exposed:          DefaultExposedFields,
		orderable:        Permissive,
		queryable:        Permissive,
		objectIDs:        NewFieldSet(),
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sessionID == "" {
		c.sessionID = uuid.NewString()
	}
	c.logger = c.logger.With("session_id", c.sessionID)
	return c
}

// SessionID identifies this context in logs.
func (c *Context) SessionID() string {
	return c.sessionID
}

// DefaultNamespace returns the namespace used for unqualified names.
func (c *Context) DefaultNamespace() string {
	return c.defaultNamespace
}

// ExposedFields returns the exposed system field set.
func (c *Context) ExposedFields() FieldSet {
	return c.exposed
}

// Dictionary returns the dictionary service.
func (c *Context) Dictionary() dictionary.Service {
	return c.dict
}

// NamespaceResolver returns the namespace resolver.
func (c *Context) NamespaceResolver() dictionary.NamespaceResolver {
	return c.ns
}

// ResolveFieldName maps a property reference to its index field name.
//
// Names starting with @ are returned unchanged. Otherwise the forms
// {uri}local, prefix:local, prefix_local (unless the name is an exposed
// field), an exposed field, local in the default namespace and finally
// "score" in any case are tried in that order. Dictionary properties
// resolve to @{uri}local and data types to {uri}local. A recognised
// content suffix is resolved on its base and appended again; the base
// must then be a content property.
func (c *Context) ResolveFieldName(name string) (string, error) {
	if strings.HasPrefix(name, "@") {
		return name, nil
	}

	if suffix, ok := contentSuffix(name); ok {
		base := strings.TrimSuffix(name, suffix)
		field, err := c.resolveBase(base)
		if err != nil {
			return "", err
		}
		if prop, ok := c.PropertyDefinition(field); !ok || !prop.IsContent() {
			return "", suffixMismatch(name, suffix)
		}
		c.logger.Debug("resolved suffixed property", "property", name, "field", field+suffix)
		return field + suffix, nil
	}

	field, err := c.resolveBase(name)
	if err != nil {
		return "", err
	}
	c.logger.Debug("resolved property", "property", name, "field", field)
	return field, nil
}

func (c *Context) resolveBase(name string) (string, error) {
	if strings.HasPrefix(name, "{") {
		qname, err := dictionary.ParseQName(name)
		if err != nil {
			return "", unknownProperty(name)
		}
		return c.lookup(name, qname)
	}

	if prefix, local, ok := strings.Cut(name, ":"); ok {
		return c.lookupPrefixed(name, prefix, local)
	}

	if prefix, local, ok := strings.Cut(name, "_"); ok && prefix != "" && !c.exposed.Contains(name) {
		return c.lookupPrefixed(name, prefix, local)
	}

	if c.exposed.Contains(name) {
		return name, nil
	}

	if c.defaultNamespace != "" && c.dict != nil {
		qname := dictionary.NewQName(c.defaultNamespace, name)
		if _, ok := c.dict.Property(qname); ok {
			return "@" + qname.String(), nil
		}
		if _, ok := c.dict.DataType(qname); ok {
			return qname.String(), nil
		}
	}

	if strings.EqualFold(name, FieldScore) {
		return FieldScore, nil
	}
	return "", unknownProperty(name)
}

func (c *Context) lookupPrefixed(name, prefix, local string) (string, error) {
	if c.ns == nil || local == "" {
		return "", unknownProperty(name)
	}
	uri, err := c.ns.NamespaceURI(prefix)
	if err != nil {
		return "", unknownProperty(name)
	}
	return c.lookup(name, dictionary.NewQName(uri, local))
}

func (c *Context) lookup(name string, qname dictionary.QName) (string, error) {
	if c.dict == nil {
		return "", unknownProperty(name)
	}
	if _, ok := c.dict.Property(qname); ok {
		return "@" + qname.String(), nil
	}
	if _, ok := c.dict.DataType(qname); ok {
		return qname.String(), nil
	}
	return "", unknownProperty(name)
}

// StripSuffixes removes one recognised content suffix from name. The base
// must be a content property; names without a suffix are returned
// unchanged.
func (c *Context) StripSuffixes(name string) (string, error) {
	suffix, ok := contentSuffix(name)
	if !ok {
		return name, nil
	}
	base := strings.TrimSuffix(name, suffix)
	field := base
	if !strings.HasPrefix(base, "@") {
		resolved, err := c.resolveBase(base)
		if err != nil {
			return "", err
		}
		field = resolved
	}
	if prop, ok := c.PropertyDefinition(field); !ok || !prop.IsContent() {
		return "", suffixMismatch(name, suffix)
	}
	return base, nil
}

// PropertyDefinition returns the dictionary property a resolved field name
// refers to. Suffixes are ignored.
func (c *Context) PropertyDefinition(field string) (*dictionary.PropertyDefinition, bool) {
	if c.dict == nil || !strings.HasPrefix(field, "@") {
		return nil, false
	}
	field = field[1:]
	if suffix, ok := contentSuffix(field); ok {
		field = strings.TrimSuffix(field, suffix)
	}
	qname, err := dictionary.ParseQName(field)
	if err != nil {
		return nil, false
	}
	return c.dict.Property(qname)
}

// IsOrderable reports whether a resolved field may appear in ORDER BY.
func (c *Context) IsOrderable(field string) bool {
	return c.orderable(c, field)
}

// IsQueryable reports whether a resolved field may appear in a predicate.
func (c *Context) IsQueryable(field string) bool {
	return c.queryable(c, field)
}

// IsObjectID reports whether a resolved field holds object ids.
func (c *Context) IsObjectID(field string) bool {
	return c.objectIDs.Contains(field)
}

// IsMultiValued reports whether a resolved field is a multi-valued
// dictionary property.
func (c *Context) IsMultiValued(field string) bool {
	prop, ok := c.PropertyDefinition(field)
	return ok && prop.MultiValued
}

func suffixMismatch(name, suffix string) *QueryError {
	return &QueryError{
		Property: name,
		Msg:      suffix + " only supported on content properties: " + name,
		Err:      ErrSuffixTypeMismatch,
	}
}
