package evaluation

import (
	"strings"

	"github.com/nlstn/go-cmisql/internal/dictionary"
)

// SortAdaptor is implemented by index adaptors that know which sort fields
// the index holds.
type SortAdaptor interface {
	// SortFieldExists reports whether the index has a sortable field.
	SortFieldExists(field string) bool
	// GetSortField returns the sortable variant of field.
	GetSortField(field string) (string, error)
	// GetDatetimeSortField returns the sortable variant of a datetime field.
	GetDatetimeSortField(field string, prop *dictionary.PropertyDefinition) (string, error)
}

// passthroughSortAdaptor sorts on resolved fields as they are.
type passthroughSortAdaptor struct{}

func (passthroughSortAdaptor) SortFieldExists(string) bool { return false }

func (passthroughSortAdaptor) GetSortField(field string) (string, error) { return field, nil }

func (passthroughSortAdaptor) GetDatetimeSortField(field string, _ *dictionary.PropertyDefinition) (string, error) {
	return field, nil
}

// ResolveSortField maps a property reference to the index field to sort on.
// A nil adaptor sorts on the resolved field unchanged.
func (c *Context) ResolveSortField(name string, adaptor SortAdaptor) (string, error) {
	if adaptor == nil {
		adaptor = passthroughSortAdaptor{}
	}
	if strings.EqualFold(name, FieldScore) {
		return FieldScore, nil
	}

	field, err := c.ResolveFieldName(name)
	if err != nil {
		return "", err
	}

	if suffix, ok := contentSuffix(field); ok {
		if suffix != SuffixSize && suffix != SuffixMimetype {
			return "", &QueryError{
				Property: name,
				Msg:      "Order on " + suffix + " is not supported: " + name,
				Err:      ErrUnsupportedOrdering,
			}
		}
		if prop, ok := c.PropertyDefinition(field); !ok || !prop.IsContent() {
			return "", &QueryError{
				Property: name,
				Msg:      "Order for " + suffix + " only supported on content properties: " + name,
				Err:      ErrUnsupportedOrdering,
			}
		}
		return field, nil
	}

	prop, ok := c.PropertyDefinition(field)
	if !ok {
		return field, nil
	}

	switch prop.DataType {
	case dictionary.DataTypeContent:
		return "", &QueryError{
			Property: name,
			Msg:      "Order on content properties is not currently supported: " + name,
			Err:      ErrUnsupportedOrdering,
		}
	case dictionary.DataTypeText:
		if noLocale := field + NoLocaleSuffix; adaptor.SortFieldExists(noLocale) {
			c.logger.Debug("using locale-invariant sort field", "property", name, "field", noLocale)
			return noLocale, nil
		}
		return adaptor.GetSortField(field)
	case dictionary.DataTypeMLText:
		return adaptor.GetSortField(field)
	case dictionary.DataTypeDatetime:
		return adaptor.GetDatetimeSortField(field, prop)
	default:
		return field, nil
	}
}
