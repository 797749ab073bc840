package filter

import (
	"strings"

	"github.com/samber/lo"
)

// TextMatcher is a Matcher that searches literals as substrings of a fixed
// list of text attributes. Each attribute may yield several values.
type TextMatcher[T any] struct {
	attributes []func(T) []string
}

var _ Matcher[struct{}, []string] = (*TextMatcher[struct{}])(nil)

// NewTextMatcher builds a TextMatcher over the given attributes.
func NewTextMatcher[T any](attributes ...func(T) []string) *TextMatcher[T] {
	return &TextMatcher[T]{attributes: attributes}
}

// Attr adapts a single-valued attribute for NewTextMatcher.
// Empty values are skipped.
func Attr[T any](get func(T) string) func(T) []string {
	return func(item T) []string {
		if v := get(item); v != "" {
			return []string{v}
		}
		return nil
	}
}

func (m *TextMatcher[T]) Prepare(item T) []string {
	var prepared []string
	for _, attr := range m.attributes {
		prepared = append(prepared, lo.Map(attr(item), func(v string, _ int) string {
			return strings.ToLower(v)
		})...)
	}
	return prepared
}

func (m *TextMatcher[T]) MatchesLiteral(prepared []string, lowercaseLiteral string) bool {
	return lo.ContainsBy(prepared, func(v string) bool {
		return strings.Contains(v, lowercaseLiteral)
	})
}
