package filter

import (
	"math"
	"strconv"
	"strings"
)

// ParseQuery parses query against the fields of registry.
//
// Terms are separated by whitespace. A term of the form name<op>value, with op
// one of : = < <= > >=, compares a registered field; any other term is a
// free-text literal. Double quotes embed whitespace and operators in values
// and literals, with \" and \\ as the only escapes.
func ParseQuery[T any](registry *Registry[T], query string) (*Query, error) {
	raws, err := lex(query)
	if err != nil {
		return nil, err
	}
	q := &Query{Terms: make([]Term, 0, len(raws))}
	for _, raw := range raws {
		if raw.field == "" {
			q.Terms = append(q.Terms, Term{
				Raw:  raw.value,
				Text: strings.ToLower(raw.value),
			})
			continue
		}
		term, err := fieldTerm(registry, raw)
		if err != nil {
			return nil, err
		}
		q.Terms = append(q.Terms, term)
	}
	return q, nil
}

func fieldTerm[T any](registry *Registry[T], raw rawTerm) (Term, error) {
	field, ok := registry.Lookup(raw.field)
	if !ok {
		return Term{}, &UnknownFieldError{Field: raw.field}
	}

	op := parseOperator(raw.op)
	term := Term{Field: field.Name, Kind: field.Kind, Raw: raw.value}

	switch field.Kind {
	case KindNumber:
		term.Op = op
		n, err := parseNumber(raw.value)
		if err != nil {
			return Term{}, &MalformedValueError{Field: field.Name, Value: raw.value, Kind: field.Kind}
		}
		term.Number = n
	case KindNumberCollection:
		if op != OpEq {
			return Term{}, operatorError(raw, field.Kind)
		}
		term.Op = OpIn
		n, err := parseNumber(raw.value)
		if err != nil {
			return Term{}, &MalformedValueError{Field: field.Name, Value: raw.value, Kind: field.Kind}
		}
		term.Number = n
	case KindEnum:
		if op != OpEq {
			return Term{}, operatorError(raw, field.Kind)
		}
		if !field.Enum.Has(raw.value) {
			return Term{}, &MalformedValueError{Field: field.Name, Value: raw.value, Kind: field.Kind}
		}
		term.Op = OpEq
		term.Text = raw.value
	case KindString:
		if op != OpEq {
			return Term{}, operatorError(raw, field.Kind)
		}
		term.Op = OpEq
		term.Text = raw.value
	}
	return term, nil
}

// ":" and "=" both mean equality until the field kind says otherwise.
func parseOperator(op string) Operator {
	switch op {
	case "<":
		return OpLt
	case "<=":
		return OpLe
	case ">":
		return OpGt
	case ">=":
		return OpGe
	default:
		return OpEq
	}
}

func operatorError(raw rawTerm, kind Kind) error {
	return &ParseError{
		Reason:   "operator " + raw.op + " is not supported by " + kind.String() + " field " + raw.field,
		Position: raw.pos,
	}
}

func parseNumber(s string) (float64, error) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}
