// Package query builds the JSON-encoded filter predicates the document store
// accepts: equality, inequality, logical and/or, and full-text search.
package query

import "encoding/json"

type node struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

// Equal matches documents whose attribute equals value.
func Equal(attribute string, value any) string {
	return encode(node{Method: "equal", Attribute: attribute, Values: []any{value}})
}

// NotEqual matches documents whose attribute differs from value.
func NotEqual(attribute string, value any) string {
	return encode(node{Method: "notEqual", Attribute: attribute, Values: []any{value}})
}

// Search matches documents whose attribute full-text-matches text.
func Search(attribute, text string) string {
	return encode(node{Method: "search", Attribute: attribute, Values: []any{text}})
}

// And matches documents satisfying every nested query.
func And(queries ...string) string {
	return encode(node{Method: "and", Values: nest(queries)})
}

// Or matches documents satisfying at least one nested query.
func Or(queries ...string) string {
	return encode(node{Method: "or", Values: nest(queries)})
}

// nest re-parses encoded child queries so they embed as objects, matching
// the service's wire encoding for compound predicates.
func nest(queries []string) []any {
	children := make([]any, 0, len(queries))
	for _, q := range queries {
		var child any
		if err := json.Unmarshal([]byte(q), &child); err != nil {
			continue
		}
		children = append(children, child)
	}
	return children
}

func encode(n node) string {
	encoded, _ := json.Marshal(n)
	return string(encoded)
}
