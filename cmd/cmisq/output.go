package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	cmisql "github.com/nlstn/go-cmisql"
)

type tokenRow struct {
	Pos  cmisql.Pos
	Type string
	Text string
}

type resolvedRow struct {
	Property string
	Field    string
}

func printTokens(w io.Writer, rows []tokenRow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Pos, r.Type, r.Text)
	}
	return tw.Flush()
}

func printResolved(w io.Writer, rows []resolvedRow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r.Property, r.Field)
	}
	return tw.Flush()
}

type fieldSummary struct {
	Clause    string `json:"clause"`
	Qualifier string `json:"qualifier,omitempty"`
	Property  string `json:"property"`
	Field     string `json:"field"`
}

type sortSummary struct {
	Property   string `json:"property"`
	Field      string `json:"field"`
	Descending bool   `json:"descending,omitempty"`
}

type planSummary struct {
	Fingerprint string         `json:"fingerprint"`
	Mode        string         `json:"mode"`
	Query       string         `json:"query"`
	Fields      []fieldSummary `json:"fields"`
	Sorts       []sortSummary  `json:"sorts,omitempty"`
	Contains    []string       `json:"contains,omitempty"`
}

func newPlanSummary(plan *cmisql.Plan) planSummary {
	s := planSummary{
		Fingerprint: plan.FingerprintHex(),
		Mode:        plan.Mode.String(),
		Query:       plan.Query.String(),
		Fields:      make([]fieldSummary, 0, len(plan.Fields)),
	}
	for _, f := range plan.Fields {
		s.Fields = append(s.Fields, fieldSummary{
			Clause:    string(f.Clause),
			Qualifier: f.Ref.Qualifier,
			Property:  f.Ref.Name,
			Field:     f.Field,
		})
	}
	for _, st := range plan.Sorts {
		s.Sorts = append(s.Sorts, sortSummary{Property: st.Property, Field: st.Field, Descending: st.Descending})
	}
	for _, ct := range plan.Contains {
		s.Contains = append(s.Contains, ct.Text)
	}
	return s
}
