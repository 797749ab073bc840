package filter

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// EnumType is the set of symbols an enum field accepts.
type EnumType struct {
	Name    string
	symbols []string
	set     map[string]struct{}
}

func NewEnumType(name string, symbols ...string) *EnumType {
	symbols = lo.Uniq(symbols)
	return &EnumType{
		Name:    name,
		symbols: symbols,
		set: lo.SliceToMap(symbols, func(s string) (string, struct{}) {
			return s, struct{}{}
		}),
	}
}

// Symbols returns the declared symbols in declaration order.
func (e *EnumType) Symbols() []string {
	return append([]string(nil), e.symbols...)
}

// Has reports whether symbol is declared. Matching is case-sensitive.
func (e *EnumType) Has(symbol string) bool {
	_, ok := e.set[symbol]
	return ok
}

const unspecifiedEnumValue = "UNSPECIFIED"

// ProtoEnum builds an EnumType from a proto enum descriptor.
// Symbols lose their type prefix and the UNSPECIFIED value is skipped,
// e.g. enum EventSeverity { EVENT_SEVERITY_INFO = 1; } gives "INFO".
// Values without the prefix are kept verbatim.
func ProtoEnum(desc protoreflect.EnumDescriptor) *EnumType {
	prefix := enumPrefix(desc)
	values := desc.Values()
	symbols := make([]string, 0, values.Len())
	for i := 0; i < values.Len(); i++ {
		name := strings.TrimPrefix(string(values.Get(i).Name()), prefix)
		if name == unspecifiedEnumValue {
			continue
		}
		symbols = append(symbols, name)
	}
	return NewEnumType(string(desc.Name()), symbols...)
}

// ProtoEnumSymbol returns the symbol of v as ProtoEnum declares it.
// Use it in enum field accessors over proto messages.
func ProtoEnumSymbol(v protoreflect.Enum) (string, error) {
	desc := v.Descriptor()
	value := desc.Values().ByNumber(v.Number())
	if value == nil {
		// Unknown numbers have no name
		return "", errors.Errorf("invalid enum value %d for %s", v.Number(), desc.FullName())
	}
	name := strings.TrimPrefix(string(value.Name()), enumPrefix(desc))
	if name == unspecifiedEnumValue {
		return "", errors.New("unspecified enum value")
	}
	return name, nil
}

// e.g. "EventSeverity" -> "EVENT_SEVERITY_"
func enumPrefix(desc protoreflect.EnumDescriptor) string {
	return toScreamingSnakeCase(string(desc.Name())) + "_"
}

var fixDigitalRegex = regexp.MustCompile(`_(\d+)`)

func toScreamingSnakeCase(s string) string {
	s = fixDigitalRegex.ReplaceAllString(lo.SnakeCase(s), "${1}")
	return strings.ToUpper(s)
}
