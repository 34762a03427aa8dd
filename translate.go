package cmisql

import (
	"context"
	"errors"
	"fmt"

	elastic "github.com/olivere/elastic/v7"

	"github.com/nlstn/go-cmisql/internal/esadaptor"
	"github.com/nlstn/go-cmisql/internal/fts"
	"github.com/nlstn/go-cmisql/internal/observability"
)

// SearchSource turns a plan's CONTAINS predicates and sort fields into an
// Elasticsearch search body. Several predicates are combined with AND.
// Other WHERE predicates are not translated.
func (c *Compiler) SearchSource(ctx context.Context, plan *Plan, adaptor *IndexAdaptor) (*elastic.SearchSource, error) {
	if plan == nil {
		return nil, errors.New("cmisql: nil plan")
	}
	if adaptor == nil {
		adaptor = c.NewIndexAdaptor()
	}

	tracer := c.obs.Tracer()
	ctx, span := tracer.StartTranslate(ctx, adaptor.TextField())
	defer span.End()
	defer observability.StartPhase(ctx, observability.PhaseTranslate).Stop()

	queries := make([]elastic.Query, 0, len(plan.Contains))
	for _, ct := range plan.Contains {
		expr := ct.Expression
		if expr == nil {
			parsed, err := fts.Parse(ct.Text)
			if err != nil {
				tracer.RecordError(span, err)
				c.fail(ctx, observability.OpTranslate, err)
				return nil, fmt.Errorf("translate contains at line %s: %w", ct.Position, err)
			}
			expr = parsed
		}
		q, err := adaptor.TranslateFTS(expr, "")
		if err != nil {
			tracer.RecordError(span, err)
			c.fail(ctx, observability.OpTranslate, err)
			return nil, err
		}
		queries = append(queries, q)
	}

	var query elastic.Query
	switch len(queries) {
	case 0:
	case 1:
		query = queries[0]
	default:
		query = elastic.NewBoolQuery().Must(queries...)
	}

	sorters := make([]elastic.Sorter, 0, len(plan.Sorts))
	for _, s := range plan.Sorts {
		sorters = append(sorters, adaptor.Sorter(s.Field, !s.Descending))
	}
	return esadaptor.BuildSearchSource(query, sorters...), nil
}

// SearchSourceJSON renders a search body as JSON.
func SearchSourceJSON(src *elastic.SearchSource) ([]byte, error) {
	return esadaptor.SourceJSON(src)
}
