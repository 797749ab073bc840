package filter

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Kind is the type tag of a field.
type Kind int

const (
	KindNumber Kind = iota + 1
	KindString
	KindEnum
	KindNumberCollection
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindEnum:
		return "enum"
	case KindNumberCollection:
		return "number collection"
	default:
		return "unknown"
	}
}

// Numeric is a type constraint for the numeric types an entity may expose.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Field describes one queryable attribute of T.
// Exactly one accessor is set, the one matching Kind.
type Field[T any] struct {
	Name string
	Kind Kind
	Enum *EnumType

	number     func(T) (float64, bool)
	text       func(T) (string, bool)
	collection func(T) []float64
}

// Number declares a numeric field. The accessor reports false when the
// attribute is not populated on the item.
// Values are compared as float64, so integers beyond 2^53 lose precision.
func Number[T any, N Numeric](name string, get func(T) (N, bool)) Field[T] {
	return Field[T]{
		Name: name,
		Kind: KindNumber,
		number: func(item T) (float64, bool) {
			v, ok := get(item)
			return float64(v), ok
		},
	}
}

// String declares a string field compared for exact equality.
func String[T any](name string, get func(T) (string, bool)) Field[T] {
	return Field[T]{
		Name: name,
		Kind: KindString,
		text: get,
	}
}

// Enum declares an enum field. The accessor returns the symbolic name of the
// item's value, which is compared with the queried symbol.
func Enum[T any](name string, enum *EnumType, get func(T) (string, bool)) Field[T] {
	return Field[T]{
		Name: name,
		Kind: KindEnum,
		Enum: enum,
		text: get,
	}
}

// NumberCollection declares a field holding several numbers. A term on it
// matches when the queried number is one of them. Values are compared as float64
// like Number fields.
func NumberCollection[T any, N Numeric](name string, get func(T) []N) Field[T] {
	return Field[T]{
		Name: name,
		Kind: KindNumberCollection,
		collection: func(item T) []float64 {
			return lo.Map(get(item), func(v N, _ int) float64 {
				return float64(v)
			})
		},
	}
}

func (f *Field[T]) validate() error {
	if f.Name == "" {
		return errors.New("field name is empty")
	}
	var ok bool
	switch f.Kind {
	case KindNumber:
		ok = f.number != nil
	case KindString:
		ok = f.text != nil
	case KindEnum:
		ok = f.text != nil && f.Enum != nil
	case KindNumberCollection:
		ok = f.collection != nil
	default:
		return errors.Errorf("field %q has unknown kind %d", f.Name, f.Kind)
	}
	if !ok {
		return errors.Errorf("field %q is missing its %s accessor", f.Name, f.Kind)
	}
	return nil
}

// Registry is an ordered set of fields keyed by case-sensitive name.
type Registry[T any] struct {
	fields []*Field[T]
	index  map[string]*Field[T]
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{index: map[string]*Field[T]{}}
}

// Register adds a field. It fails with *DuplicateFieldError if the name is taken.
func (r *Registry[T]) Register(field Field[T]) error {
	if err := field.validate(); err != nil {
		return err
	}
	if _, ok := r.index[field.Name]; ok {
		return &DuplicateFieldError{Field: field.Name}
	}
	f := &field
	r.fields = append(r.fields, f)
	r.index[f.Name] = f
	return nil
}

// Lookup returns the field registered under name.
func (r *Registry[T]) Lookup(name string) (*Field[T], bool) {
	f, ok := r.index[name]
	return f, ok
}

// Names returns the field names in registration order.
func (r *Registry[T]) Names() []string {
	return lo.Map(r.fields, func(f *Field[T], _ int) string {
		return f.Name
	})
}

func (r *Registry[T]) Len() int {
	return len(r.fields)
}
