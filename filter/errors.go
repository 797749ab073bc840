package filter

import "fmt"

// UnknownFieldError is returned when a query references a field that is not
// registered in the schema.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Field)
}

// MalformedValueError is returned when a literal cannot be converted to the
// kind of the field it is compared with.
type MalformedValueError struct {
	Field string
	Value string
	Kind  Kind
}

func (e *MalformedValueError) Error() string {
	return fmt.Sprintf("invalid %s value %q for field %q", e.Kind, e.Value, e.Field)
}

// ParseError reports a structurally invalid query.
// Position is a byte offset into the query, or -1 when unknown.
type ParseError struct {
	Reason   string
	Position int
}

func (e *ParseError) Error() string {
	if e.Position < 0 {
		return "parse query: " + e.Reason
	}
	return fmt.Sprintf("parse query at position %d: %s", e.Position, e.Reason)
}

// DuplicateFieldError is returned when a field name is registered twice.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("field %q already registered", e.Field)
}
