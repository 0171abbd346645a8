package liststore

import (
	"fmt"
	"net/url"
	"strings"
)

// Query carries the OData-style modifiers for an item read.
type Query struct {
	Filter   string
	OrderBy  string
	Select   []string
	Expand   []string
	Top      int
	// SkipToken is the opaque continuation returned on the previous page,
	// passed back verbatim.
	SkipToken string
	// Count requests a server-side total row count alongside the page.
	Count bool
	// AllowUnindexed asks the server to attempt filter/orderby clauses over
	// columns it has no index for. Such queries may still be rejected.
	AllowUnindexed bool
}

func (q Query) encode() url.Values {
	v := url.Values{}
	if q.Filter != "" {
		v.Set("$filter", q.Filter)
	}
	if q.OrderBy != "" {
		v.Set("$orderby", q.OrderBy)
	}
	if len(q.Select) > 0 {
		v.Set("$select", strings.Join(q.Select, ","))
	}
	if len(q.Expand) > 0 {
		v.Set("$expand", strings.Join(q.Expand, ","))
	}
	if q.Top > 0 {
		v.Set("$top", fmt.Sprintf("%d", q.Top))
	}
	if q.SkipToken != "" {
		v.Set("$skiptoken", q.SkipToken)
	}
	if q.Count {
		v.Set("$count", "true")
	}
	return v
}

// FieldEq builds an equality clause over a typed column.
func FieldEq(column string, value any) string {
	switch val := value.(type) {
	case string:
		return fmt.Sprintf("fields/%s eq '%s'", column, escapeLiteral(val))
	case bool:
		return fmt.Sprintf("fields/%s eq %t", column, val)
	default:
		return fmt.Sprintf("fields/%s eq %v", column, val)
	}
}

// FieldContains builds a substring clause. Not every deployment supports
// the contains function; callers must be prepared for an unsupported-query
// rejection.
func FieldContains(column, needle string) string {
	return fmt.Sprintf("contains(fields/%s,'%s')", column, escapeLiteral(needle))
}

// DisplayNameEq builds an equality clause over a list's display name.
func DisplayNameEq(name string) string {
	return fmt.Sprintf("displayName eq '%s'", escapeLiteral(name))
}

// AnyEq ORs an equality clause over each of the given values.
func AnyEq(column string, values []string) string {
	clauses := make([]string, 0, len(values))
	for _, v := range values {
		clauses = append(clauses, FieldEq(column, v))
	}
	return Or(clauses...)
}

// And joins non-empty clauses with "and".
func And(clauses ...string) string {
	return join(" and ", clauses)
}

// Or joins non-empty clauses with "or", parenthesized when compound.
func Or(clauses ...string) string {
	joined := join(" or ", clauses)
	if strings.Contains(joined, " or ") {
		return "(" + joined + ")"
	}
	return joined
}

func join(sep string, clauses []string) string {
	kept := clauses[:0:0]
	for _, c := range clauses {
		if c != "" {
			kept = append(kept, c)
		}
	}
	return strings.Join(kept, sep)
}

// escapeLiteral doubles single quotes per the remote filter grammar.
func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
