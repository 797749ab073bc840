package filter

import (
	"github.com/samber/lo"
)

// Matcher decides free-text matches for items of type T.
//
// Prepare projects an item into the lowercased text its literals are matched
// against. It is called at most once per evaluated item, and only when the
// query contains free-text terms.
type Matcher[T, P any] interface {
	Prepare(item T) P
	MatchesLiteral(prepared P, lowercaseLiteral string) bool
}

type SchemaOptions struct {
	Limits *Limits
}

type SchemaOption func(*SchemaOptions)

// WithLimits rejects queries exceeding limits at parse time.
func WithLimits(limits *Limits) SchemaOption {
	return func(opts *SchemaOptions) {
		opts.Limits = limits
	}
}

// Schema binds the queryable fields of T to its free-text matcher.
// It is the factory of filters: parse a query once, then evaluate the
// returned filter against many items.
type Schema[T, P any] struct {
	registry *Registry[T]
	matcher  Matcher[T, P]
	opts     SchemaOptions
}

// NewSchema creates a schema. matcher may be nil if T has no free-text
// attributes, in which case queries with text terms fail to parse.
func NewSchema[T, P any](registry *Registry[T], matcher Matcher[T, P], opts ...SchemaOption) *Schema[T, P] {
	if registry == nil {
		panic("registry must be set")
	}
	s := &Schema[T, P]{registry: registry, matcher: matcher}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

func (s *Schema[T, P]) Registry() *Registry[T] {
	return s.registry
}

// Parse parses query into an immutable filter.
func (s *Schema[T, P]) Parse(query string) (*Filter[T, P], error) {
	if err := checkQueryLength(query, s.opts.Limits); err != nil {
		return nil, err
	}
	q, err := ParseQuery(s.registry, query)
	if err != nil {
		return nil, err
	}
	if err := CheckComplexity(q, s.opts.Limits); err != nil {
		return nil, err
	}
	if s.matcher == nil && q.IncludesTextSearch() {
		return nil, &ParseError{Reason: "free-text search is not supported", Position: -1}
	}

	terms := make([]boundTerm[T], len(q.Terms))
	for i, term := range q.Terms {
		terms[i] = boundTerm[T]{Term: term}
		if !term.IsText() {
			terms[i].field, _ = s.registry.Lookup(term.Field)
		}
	}
	return &Filter[T, P]{
		matcher:    s.matcher,
		query:      q,
		terms:      terms,
		textSearch: q.IncludesTextSearch(),
	}, nil
}

type boundTerm[T any] struct {
	Term
	field *Field[T]
}

// Filter is a parsed query bound to a schema. It holds no per-item state and
// is safe for concurrent use.
type Filter[T, P any] struct {
	matcher    Matcher[T, P]
	query      *Query
	terms      []boundTerm[T]
	textSearch bool
}

func (f *Filter[T, P]) Query() *Query {
	return f.query
}

// IncludesTextSearch reports whether the query has free-text terms.
func (f *Filter[T, P]) IncludesTextSearch() bool {
	return f.textSearch
}

// IsQueryField reports whether the query has a term on field.
func (f *Filter[T, P]) IsQueryField(field string) bool {
	return f.query.IsQueryField(field)
}

// Matches reports whether item satisfies every term of the query.
func (f *Filter[T, P]) Matches(item T) bool {
	if len(f.terms) == 0 {
		return true
	}
	var prepared P
	if f.textSearch {
		prepared = f.matcher.Prepare(item)
	}
	return f.MatchesPrepared(item, prepared)
}

// MatchesPrepared is Matches with a caller-supplied prepared projection.
// prepared is ignored when the query has no free-text terms.
func (f *Filter[T, P]) MatchesPrepared(item T, prepared P) bool {
	for i := range f.terms {
		term := &f.terms[i]
		if term.IsText() {
			if !f.matcher.MatchesLiteral(prepared, term.Text) {
				return false
			}
			continue
		}
		if !matchField(term.field, &term.Term, item) {
			return false
		}
	}
	return true
}

// Func returns Matches as a plain predicate.
func (f *Filter[T, P]) Func() func(item T) bool {
	return f.Matches
}

func matchField[T any](field *Field[T], term *Term, item T) bool {
	switch field.Kind {
	case KindNumber:
		v, ok := field.number(item)
		if !ok {
			return false
		}
		return compareNumber(v, term.Op, term.Number)
	case KindString, KindEnum:
		v, ok := field.text(item)
		if !ok {
			return false
		}
		return v == term.Text
	case KindNumberCollection:
		return lo.Contains(field.collection(item), term.Number)
	default:
		return false
	}
}

func compareNumber(v float64, op Operator, operand float64) bool {
	switch op {
	case OpEq:
		return v == operand
	case OpLt:
		return v < operand
	case OpLe:
		return v <= operand
	case OpGt:
		return v > operand
	case OpGe:
		return v >= operand
	default:
		return false
	}
}
