package evaluation

import (
	"sort"
	"strings"
)

// Exposed system fields addressable without a dictionary lookup.
const (
	FieldID                    = "ID"
	FieldPath                  = "PATH"
	FieldText                  = "TEXT"
	FieldAll                   = "ALL"
	FieldType                  = "TYPE"
	FieldExactType             = "EXACTTYPE"
	FieldAspect                = "ASPECT"
	FieldExactAspect           = "EXACTASPECT"
	FieldClass                 = "CLASS"
	FieldParent                = "PARENT"
	FieldPrimaryParent         = "PRIMARYPARENT"
	FieldQName                 = "QNAME"
	FieldPrimaryAssocQName     = "PRIMARYASSOCQNAME"
	FieldPrimaryAssocTypeQName = "PRIMARYASSOCTYPEQNAME"
	FieldIsRoot                = "ISROOT"
	FieldIsContainer           = "ISCONTAINER"
	FieldIsNode                = "ISNODE"
	FieldIsUnset               = "ISUNSET"
	FieldIsNull                = "ISNULL"
	FieldIsNotNull             = "ISNOTNULL"
	FieldExists                = "EXISTS"
	FieldDBID                  = "DBID"
	FieldTx                    = "TX"
	FieldTxID                  = "TXID"
	FieldInTxID                = "INTXID"
	FieldACLID                 = "ACLID"
	FieldFTSStatus             = "FTSSTATUS"
	FieldTag                   = "TAG"
	FieldTenant                = "TENANT"
	FieldSite                  = "SITE"
	FieldAncestor              = "ANCESTOR"
	FieldOwner                 = "OWNER"
	FieldOwnerSet              = "OWNERSET"
	FieldReader                = "READER"
	FieldReaderSet             = "READERSET"
	FieldAuthority             = "AUTHORITY"
	FieldAuthoritySet          = "AUTHORITYSET"
	FieldDenied                = "DENIED"
	FieldDenySet               = "DENYSET"
	FieldPName                 = "PNAME"
	FieldNPath                 = "NPATH"
	FieldProperties            = "PROPERTIES"
	FieldCascadeTx             = "CASCADETX"

	// FieldScore is the relevance score field.
	FieldScore = "score"
)

// Content-only property suffixes, in the order they are tried.
const (
	SuffixSize                    = ".size"
	SuffixLocale                  = ".locale"
	SuffixMimetype                = ".mimetype"
	SuffixEncoding                = ".encoding"
	SuffixTransformationStatus    = ".tr_status"
	SuffixTransformationException = ".tr_ex"
	SuffixTransformationTime      = ".tr_time"
)

// ContentSuffixes lists the recognised suffixes.
var ContentSuffixes = []string{
	SuffixSize,
	SuffixLocale,
	SuffixMimetype,
	SuffixEncoding,
	SuffixTransformationStatus,
	SuffixTransformationException,
	SuffixTransformationTime,
}

// NoLocaleSuffix marks the locale-invariant sort variant of a text field.
const NoLocaleSuffix = ".no_locale"

// FieldSet is an immutable set of field names.
type FieldSet struct {
	names map[string]struct{}
}

// NewFieldSet builds a set from names.
func NewFieldSet(names ...string) FieldSet {
	set := FieldSet{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		set.names[n] = struct{}{}
	}
	return set
}

// Contains reports whether name is in the set.
func (s FieldSet) Contains(name string) bool {
	_, ok := s.names[name]
	return ok
}

// With returns a new set holding s and names.
func (s FieldSet) With(names ...string) FieldSet {
	merged := make([]string, 0, len(s.names)+len(names))
	for n := range s.names {
		merged = append(merged, n)
	}
	return NewFieldSet(append(merged, names...)...)
}

// Names returns the members in sorted order.
func (s FieldSet) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of members.
func (s FieldSet) Len() int {
	return len(s.names)
}

// DefaultExposedFields is the system field set used unless WithExposedFields
// replaces it.
var DefaultExposedFields = NewFieldSet(
	FieldID, FieldPath, FieldText, FieldAll, FieldType, FieldExactType,
	FieldAspect, FieldExactAspect, FieldClass, FieldParent, FieldPrimaryParent,
	FieldQName, FieldPrimaryAssocQName, FieldPrimaryAssocTypeQName,
	FieldIsRoot, FieldIsContainer, FieldIsNode, FieldIsUnset, FieldIsNull,
	FieldIsNotNull, FieldExists, FieldDBID, FieldTx, FieldTxID, FieldInTxID,
	FieldACLID, FieldFTSStatus, FieldTag, FieldTenant, FieldSite, FieldAncestor,
	FieldOwner, FieldOwnerSet, FieldReader, FieldReaderSet, FieldAuthority,
	FieldAuthoritySet, FieldDenied, FieldDenySet, FieldPName, FieldNPath,
	FieldProperties, FieldCascadeTx,
)

// contentSuffix returns the recognised suffix name ends with, if any.
func contentSuffix(name string) (string, bool) {
	for _, suffix := range ContentSuffixes {
		if len(name) > len(suffix) && strings.HasSuffix(name, suffix) {
			return suffix, true
		}
	}
	return "", false
}
