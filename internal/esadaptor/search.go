package esadaptor

import (
	"encoding/json"

	elastic "github.com/olivere/elastic/v7"
)

// BuildSearchSource assembles a search body from a query and sort clauses.
func BuildSearchSource(q elastic.Query, sorters ...elastic.Sorter) *elastic.SearchSource {
	src := elastic.NewSearchSource()
	if q != nil {
		src = src.Query(q)
	}
	if len(sorters) > 0 {
		src = src.SortBy(sorters...)
	}
	return src
}

// SourceJSON renders anything with a Source method as JSON.
func SourceJSON(s interface{ Source() (interface{}, error) }) ([]byte, error) {
	body, err := s.Source()
	if err != nil {
		return nil, err
	}
	return json.Marshal(body)
}
