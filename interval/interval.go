// Package interval builds time intervals with optional, independently
// inclusive bounds and renders them as conditions for the storage layer.
package interval

import (
	"fmt"
	"math"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Unset marks a bound that is not set. It is not a valid instant.
const Unset int64 = math.MinInt64

// Interval is a time range over int64 instants. The zero value is not
// usable, create one with New.
//
// Bounds are not checked against each other, start > stop gives an empty
// but legal interval.
type Interval struct {
	start, stop                   int64
	startInclusive, stopInclusive bool
}

// New returns an interval with no bounds. Once set, start is inclusive and
// stop exclusive unless stated otherwise.
func New() Interval {
	return Interval{start: Unset, stop: Unset, startInclusive: true}
}

// Between returns the half-open interval [start, stop).
func Between(start, stop int64) Interval {
	return New().SetStart(start, true).SetStop(stop, false)
}

func (i Interval) SetStart(v int64, inclusive bool) Interval {
	i.start = v
	i.startInclusive = inclusive
	return i
}

func (i Interval) SetStop(v int64, inclusive bool) Interval {
	i.stop = v
	i.stopInclusive = inclusive
	return i
}

func (i Interval) Start() (int64, bool) { return i.start, i.start != Unset }
func (i Interval) Stop() (int64, bool)  { return i.stop, i.stop != Unset }

func (i Interval) StartInclusive() bool { return i.startInclusive }
func (i Interval) StopInclusive() bool  { return i.stopInclusive }

func (i Interval) HasStart() bool { return i.start != Unset }
func (i Interval) HasStop() bool  { return i.stop != Unset }

// HasInterval reports whether at least one bound is set.
func (i Interval) HasInterval() bool {
	return i.HasStart() || i.HasStop()
}

// Contains reports whether instant t lies within the interval.
// An interval without bounds contains everything.
func (i Interval) Contains(t int64) bool {
	if i.HasStart() {
		if i.startInclusive && t < i.start || !i.startInclusive && t <= i.start {
			return false
		}
	}
	if i.HasStop() {
		if i.stopInclusive && t > i.stop || !i.stopInclusive && t >= i.stop {
			return false
		}
	}
	return true
}

// InvalidIntervalError is returned when a condition is requested from an
// interval without bounds.
type InvalidIntervalError struct{}

func (e *InvalidIntervalError) Error() string {
	return "interval has neither start nor stop"
}

// AsCondition renders the interval as a condition on column, e.g.
// "gentime >= 100 and gentime < 200".
func (i Interval) AsCondition(column string) (string, error) {
	if !i.HasInterval() {
		return "", &InvalidIntervalError{}
	}
	var start, stop string
	if i.HasStart() {
		start = fmt.Sprintf("%s %s %s", column, i.startOp(), strconv.FormatInt(i.start, 10))
	}
	if i.HasStop() {
		stop = fmt.Sprintf("%s %s %s", column, i.stopOp(), strconv.FormatInt(i.stop, 10))
	}
	switch {
	case start != "" && stop != "":
		return start + " and " + stop, nil
	case start != "":
		return start, nil
	default:
		return stop, nil
	}
}

func (i Interval) String() string {
	if !i.HasInterval() {
		return "(-inf, +inf)"
	}
	left, right := "(", ")"
	lower, upper := "-inf", "+inf"
	if i.HasStart() {
		lower = strconv.FormatInt(i.start, 10)
		if i.startInclusive {
			left = "["
		}
	}
	if i.HasStop() {
		upper = strconv.FormatInt(i.stop, 10)
		if i.stopInclusive {
			right = "]"
		}
	}
	return left + lower + ", " + upper + right
}

func (i Interval) startOp() string {
	if i.startInclusive {
		return ">="
	}
	return ">"
}

func (i Interval) stopOp() string {
	if i.stopInclusive {
		return "<="
	}
	return "<"
}

// Expressions renders the bounds as clause expressions on a column of the
// current table. It returns nil for an interval without bounds.
func (i Interval) Expressions(column string) []clause.Expression {
	col := clause.Column{Table: clause.CurrentTable, Name: column}
	var exprs []clause.Expression
	if i.HasStart() {
		if i.startInclusive {
			exprs = append(exprs, clause.Gte{Column: col, Value: i.start})
		} else {
			exprs = append(exprs, clause.Gt{Column: col, Value: i.start})
		}
	}
	if i.HasStop() {
		if i.stopInclusive {
			exprs = append(exprs, clause.Lte{Column: col, Value: i.stop})
		} else {
			exprs = append(exprs, clause.Lt{Column: col, Value: i.stop})
		}
	}
	return exprs
}

// Scope restricts a query to rows whose column lies within the interval.
// An interval without bounds leaves the query unchanged.
func (i Interval) Scope(column string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		exprs := i.Expressions(column)
		if len(exprs) == 0 {
			return db
		}
		return db.Clauses(clause.Where{Exprs: exprs})
	}
}
