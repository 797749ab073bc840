package filter

import (
	"strings"

	"github.com/samber/lo"
)

// Operator is the comparison a field term applies.
type Operator int

const (
	OpEq Operator = iota + 1
	OpLt
	OpLe
	OpGt
	OpGe
	OpIn // membership in a number collection
)

func (op Operator) String() string {
	switch op {
	case OpEq:
		return "="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpIn:
		return ":"
	default:
		return "?"
	}
}

// Term is one conjunct of a query. Field is empty for free-text terms.
type Term struct {
	Field string
	Op    Operator
	Kind  Kind

	// Raw is the value as written, unquoted.
	Raw string
	// Number holds the converted value of number and number collection terms.
	Number float64
	// Text holds the string or enum symbol of a field term, or the lowercased
	// literal of a free-text term.
	Text string
}

// IsText reports whether the term is a free-text term.
func (t Term) IsText() bool {
	return t.Field == ""
}

func (t Term) String() string {
	if t.IsText() {
		return quoteIfNeeded(t.Raw)
	}
	return t.Field + t.Op.String() + quoteIfNeeded(t.Raw)
}

// Query is the parsed form of a query string: all terms must match.
type Query struct {
	Terms []Term
}

// IsEmpty reports whether the query has no terms and therefore matches everything.
func (q *Query) IsEmpty() bool {
	return q == nil || len(q.Terms) == 0
}

// IncludesTextSearch reports whether at least one free-text term is present.
func (q *Query) IncludesTextSearch() bool {
	if q == nil {
		return false
	}
	return lo.ContainsBy(q.Terms, func(t Term) bool {
		return t.IsText()
	})
}

// IsQueryField reports whether the query has a term on the given field.
func (q *Query) IsQueryField(field string) bool {
	if q == nil {
		return false
	}
	return lo.ContainsBy(q.Terms, func(t Term) bool {
		return t.Field == field
	})
}

// FieldTerms returns the field terms in query order.
func (q *Query) FieldTerms() []Term {
	if q == nil {
		return nil
	}
	return lo.Filter(q.Terms, func(t Term, _ int) bool {
		return !t.IsText()
	})
}

// TextTerms returns the free-text terms in query order.
func (q *Query) TextTerms() []Term {
	if q == nil {
		return nil
	}
	return lo.Filter(q.Terms, func(t Term, _ int) bool {
		return t.IsText()
	})
}

// String renders the query back into the query language.
func (q *Query) String() string {
	if q == nil {
		return ""
	}
	return strings.Join(lo.Map(q.Terms, func(t Term, _ int) string {
		return t.String()
	}), " ")
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\r\n\"\\:<>=") {
		return `"` + quoteReplacer.Replace(s) + `"`
	}
	return s
}

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
