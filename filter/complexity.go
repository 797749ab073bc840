package filter

import (
	"github.com/pkg/errors"
)

// Limits defines limits for query complexity.
// A value of 0 means no limit for that metric.
type Limits struct {
	MaxQueryLength int // Maximum query length in bytes
	MaxTerms       int // Maximum number of terms, field and text together
	MaxTextTerms   int // Maximum number of free-text terms
	MaxFieldTerms  int // Maximum number of field terms
}

// Complexity contains the calculated complexity metrics of a query.
type Complexity struct {
	Terms      int
	TextTerms  int
	FieldTerms int
}

// Predefined complexity limits
var (
	// DefaultLimits provides reasonable defaults for user-facing listings.
	DefaultLimits = &Limits{
		MaxQueryLength: 1024,
		MaxTerms:       16,
		MaxTextTerms:   8,
		MaxFieldTerms:  12,
	}

	// StrictLimits provides tighter limits for public endpoints.
	StrictLimits = &Limits{
		MaxQueryLength: 256,
		MaxTerms:       6,
		MaxTextTerms:   3,
		MaxFieldTerms:  5,
	}

	// RelaxedLimits provides looser limits for trusted/internal use.
	RelaxedLimits = &Limits{
		MaxQueryLength: 8192,
		MaxTerms:       64,
		MaxTextTerms:   32,
		MaxFieldTerms:  48,
	}
)

// CheckComplexity validates that a query doesn't exceed the specified limits.
// Returns an error describing which limit was exceeded, or nil if within limits.
// If limits is nil, no validation is performed.
func CheckComplexity(q *Query, limits *Limits) error {
	if limits == nil {
		return nil
	}

	result := CalculateComplexity(q)

	if limits.MaxTerms > 0 && result.Terms > limits.MaxTerms {
		return errors.Errorf("query term count %d exceeds limit %d", result.Terms, limits.MaxTerms)
	}
	if limits.MaxTextTerms > 0 && result.TextTerms > limits.MaxTextTerms {
		return errors.Errorf("query text term count %d exceeds limit %d", result.TextTerms, limits.MaxTextTerms)
	}
	if limits.MaxFieldTerms > 0 && result.FieldTerms > limits.MaxFieldTerms {
		return errors.Errorf("query field term count %d exceeds limit %d", result.FieldTerms, limits.MaxFieldTerms)
	}

	return nil
}

// CalculateComplexity returns the complexity metrics of q.
func CalculateComplexity(q *Query) *Complexity {
	if q == nil {
		return &Complexity{}
	}
	text := len(q.TextTerms())
	return &Complexity{
		Terms:      len(q.Terms),
		TextTerms:  text,
		FieldTerms: len(q.Terms) - text,
	}
}

func checkQueryLength(query string, limits *Limits) error {
	if limits == nil || limits.MaxQueryLength <= 0 {
		return nil
	}
	if len(query) > limits.MaxQueryLength {
		return errors.Errorf("query length %d exceeds limit %d", len(query), limits.MaxQueryLength)
	}
	return nil
}
