package dictionary

import (
	"fmt"
	"strings"
)

// Built-in data types.
var (
	DataTypeAny      = NewQName(DictionaryNamespace, "any")
	DataTypeText     = NewQName(DictionaryNamespace, "text")
	DataTypeMLText   = NewQName(DictionaryNamespace, "mltext")
	DataTypeContent  = NewQName(DictionaryNamespace, "content")
	DataTypeInt      = NewQName(DictionaryNamespace, "int")
	DataTypeLong     = NewQName(DictionaryNamespace, "long")
	DataTypeFloat    = NewQName(DictionaryNamespace, "float")
	DataTypeDouble   = NewQName(DictionaryNamespace, "double")
	DataTypeDate     = NewQName(DictionaryNamespace, "date")
	DataTypeDatetime = NewQName(DictionaryNamespace, "datetime")
	DataTypeBoolean  = NewQName(DictionaryNamespace, "boolean")
	DataTypeQName    = NewQName(DictionaryNamespace, "qname")
	DataTypeNodeRef  = NewQName(DictionaryNamespace, "noderef")
	DataTypeCategory = NewQName(DictionaryNamespace, "category")
	DataTypeLocale   = NewQName(DictionaryNamespace, "locale")
)

// BuiltinDataTypes lists the data types every Registry starts with.
var BuiltinDataTypes = []QName{
	DataTypeAny, DataTypeText, DataTypeMLText, DataTypeContent,
	DataTypeInt, DataTypeLong, DataTypeFloat, DataTypeDouble,
	DataTypeDate, DataTypeDatetime, DataTypeBoolean, DataTypeQName,
	DataTypeNodeRef, DataTypeCategory, DataTypeLocale,
}

// Tokenisation controls how a property is indexed.
type Tokenisation int

const (
	// TokeniseTrue indexes the analysed tokens only.
	TokeniseTrue Tokenisation = iota
	// TokeniseFalse indexes the whole value as a single term.
	TokeniseFalse
	// TokeniseBoth indexes both forms.
	TokeniseBoth
)

func (t Tokenisation) String() string {
	switch t {
	case TokeniseFalse:
		return "FALSE"
	case TokeniseBoth:
		return "BOTH"
	default:
		return "TRUE"
	}
}

// ParseTokenisation parses TRUE, FALSE or BOTH in any case. The empty string
// is TRUE.
func ParseTokenisation(s string) (Tokenisation, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "TRUE":
		return TokeniseTrue, nil
	case "FALSE":
		return TokeniseFalse, nil
	case "BOTH":
		return TokeniseBoth, nil
	}
	return TokeniseTrue, fmt.Errorf("invalid tokenisation mode %q", s)
}

// PropertyDefinition describes a dictionary property.
type PropertyDefinition struct {
	Name        QName
	DataType    QName
	Tokenised   Tokenisation
	MultiValued bool
}

// IsContent reports whether the property holds content.
func (p *PropertyDefinition) IsContent() bool {
	return p.DataType == DataTypeContent
}

// DataTypeDefinition describes a dictionary data type.
type DataTypeDefinition struct {
	Name QName
}

// Service looks up dictionary definitions. Implementations must be safe for
// concurrent reads.
type Service interface {
	Property(name QName) (*PropertyDefinition, bool)
	DataType(name QName) (*DataTypeDefinition, bool)
}

// NamespaceResolver maps prefixes to namespace URIs and back.
type NamespaceResolver interface {
	NamespaceURI(prefix string) (string, error)
	Prefixes(uri string) []string
}
