package evaluation

import "errors"

// Resolution errors. Every *QueryError also matches ErrFTSQuery.
var (
	ErrFTSQuery            = errors.New("cmisql: fts query error")
	ErrUnknownProperty     = errors.New("cmisql: unknown property")
	ErrSuffixTypeMismatch  = errors.New("cmisql: suffix requires a content property")
	ErrUnsupportedOrdering = errors.New("cmisql: unsupported ordering")
	ErrNoExecutionContext  = errors.New("cmisql: no execution context bound")
)

// QueryError reports a property reference that cannot be resolved or used.
type QueryError struct {
	// Property is the name as written in the query.
	Property string
	Msg      string
	Err      error
}

func (e *QueryError) Error() string {
	return e.Msg
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrFTSQuery.
func (e *QueryError) Is(target error) bool {
	return target == ErrFTSQuery
}

func unknownProperty(name string) *QueryError {
	return &QueryError{Property: name, Msg: "Unknown property: " + name, Err: ErrUnknownProperty}
}
