package dictionary

import (
	"errors"
	"fmt"
	"strings"
)

// Well-known namespaces.
const (
	DictionaryNamespace = "http://www.alfresco.org/model/dictionary/1.0"
	ContentNamespace    = "http://www.alfresco.org/model/content/1.0"
	SystemNamespace     = "http://www.alfresco.org/model/system/1.0"
)

// ErrInvalidQName is returned for names that are neither {uri}local nor
// prefix:local.
var ErrInvalidQName = errors.New("cmisql: invalid qualified name")

// QName is a namespace-qualified name.
type QName struct {
	URI   string
	Local string
}

// NewQName builds a QName.
func NewQName(uri, local string) QName {
	return QName{URI: uri, Local: local}
}

// String renders the {uri}local form.
func (q QName) String() string {
	return "{" + q.URI + "}" + q.Local
}

// IsZero reports whether q is the zero QName.
func (q QName) IsZero() bool {
	return q.URI == "" && q.Local == ""
}

// PrefixString renders prefix:local using the first prefix registered for
// the namespace, or the {uri}local form when none is.
func (q QName) PrefixString(ns NamespaceResolver) string {
	if ns != nil {
		if prefixes := ns.Prefixes(q.URI); len(prefixes) > 0 {
			return prefixes[0] + ":" + q.Local
		}
	}
	return q.String()
}

// ParseQName parses {uri}local.
func ParseQName(s string) (QName, error) {
	if !strings.HasPrefix(s, "{") {
		return QName{}, fmt.Errorf("%w: %q", ErrInvalidQName, s)
	}
	end := strings.IndexByte(s, '}')
	if end < 0 || end == len(s)-1 {
		return QName{}, fmt.Errorf("%w: %q", ErrInvalidQName, s)
	}
	return QName{URI: s[1:end], Local: s[end+1:]}, nil
}

// ResolveQName parses {uri}local or prefix:local, looking prefixes up in ns.
func ResolveQName(s string, ns NamespaceResolver) (QName, error) {
	if strings.HasPrefix(s, "{") {
		return ParseQName(s)
	}
	prefix, local, ok := strings.Cut(s, ":")
	if !ok || local == "" {
		return QName{}, fmt.Errorf("%w: %q", ErrInvalidQName, s)
	}
	uri, err := ns.NamespaceURI(prefix)
	if err != nil {
		return QName{}, err
	}
	return QName{URI: uri, Local: local}, nil
}
