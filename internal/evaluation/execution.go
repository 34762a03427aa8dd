package evaluation

import (
	"context"

	"github.com/nlstn/go-cmisql/internal/dictionary"
)

// NodeRef identifies a repository node.
type NodeRef string

// NodeService reads node properties at execution time.
type NodeService interface {
	Property(ctx context.Context, ref NodeRef, name dictionary.QName) (any, error)
}

// ExecutionContext supplies the execution-time data a resolved query needs:
// relevance scores, the nodes of the current row and their properties.
// Resolution never uses it; the runtime that executes queries provides it.
type ExecutionContext interface {
	Score() float32
	Scores() map[string]float32
	NodeRefs() map[string]NodeRef
	Property(ctx context.Context, ref NodeRef, name dictionary.QName) (any, error)
	NodeService() NodeService
}

// Execution returns the bound execution context or ErrNoExecutionContext.
func (c *Context) Execution() (ExecutionContext, error) {
	if c.exec == nil {
		return nil, ErrNoExecutionContext
	}
	return c.exec, nil
}
