package gormlisting

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/theplant/listing"
	"github.com/theplant/listing/cursor"
	"github.com/theplant/listing/interval"
)

type Option[T any] func(*Options[T])

type Options[T any] struct {
	// SeqField breaks ties between rows sharing an instant.
	SeqField string
	// Interval restricts the rows to a time range.
	Interval *interval.Interval
	// Adapter is handed to cursor.NewTimeAdapter by NewTimeAdapter.
	Adapter []cursor.TimeAdapterOption[T]
}

func WithSeqField[T any](field string) Option[T] {
	return func(opts *Options[T]) {
		opts.SeqField = field
	}
}

func WithInterval[T any](iv interval.Interval) Option[T] {
	return func(opts *Options[T]) {
		opts.Interval = &iv
	}
}

func WithAdapterOptions[T any](adapterOpts ...cursor.TimeAdapterOption[T]) Option[T] {
	return func(opts *Options[T]) {
		opts.Adapter = append(opts.Adapter, adapterOpts...)
	}
}

func createAfterExpr(timeColumn, seqColumn string, after cursor.TimeCursor, descending bool) clause.Expression {
	cmp := func(column clause.Column, v any) clause.Expression {
		if descending {
			return clause.Lt{Column: column, Value: v}
		}
		return clause.Gt{Column: column, Value: v}
	}

	timeCol := clause.Column{Table: clause.CurrentTable, Name: timeColumn}
	ors := []clause.Expression{clause.And(cmp(timeCol, after.Time))}
	if seqColumn != "" && after.Seq != nil {
		seqCol := clause.Column{Table: clause.CurrentTable, Name: seqColumn}
		ors = append(ors, clause.And(
			clause.Eq{Column: timeCol, Value: after.Time},
			cmp(seqCol, *after.Seq),
		))
	}
	return clause.And(clause.Or(ors...))
}

// ScopeTime orders rows by timeField (then seqField, when set) in the given
// direction and keeps those strictly after the cursor.
//
// Example, ascending with a sequence tie-break:
//
//	WHERE "events"."gentime" >= 100 AND "events"."gentime" < 200
//	  AND ("events"."gentime" > 150 OR ("events"."gentime" = 150 AND "events"."seq_num" > 7))
//	ORDER BY "events"."gentime","events"."seq_num" LIMIT 10
func ScopeTime(timeField, seqField string, iv *interval.Interval, after *cursor.TimeCursor, descending bool, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if db.Statement.Model == nil {
			db.AddError(errors.New("model is nil"))
			return db
		}
		if limit <= 0 {
			db.AddError(errors.New("limit must be greater than 0"))
			return db
		}

		s, err := parseSchema(db, db.Statement.Model)
		if err != nil {
			db.AddError(err)
			return db
		}
		timeColumn, err := columnName(s, timeField)
		if err != nil {
			db.AddError(err)
			return db
		}
		var seqColumn string
		if seqField != "" {
			if seqColumn, err = columnName(s, seqField); err != nil {
				db.AddError(err)
				return db
			}
		}

		var exprs []clause.Expression
		if iv != nil {
			exprs = append(exprs, iv.Expressions(timeColumn)...)
		}
		if after != nil {
			exprs = append(exprs, createAfterExpr(timeColumn, seqColumn, *after, descending))
		}

		orderByColumns := []clause.OrderByColumn{{
			Column: clause.Column{Table: clause.CurrentTable, Name: timeColumn},
			Desc:   descending,
		}}
		if seqColumn != "" {
			orderByColumns = append(orderByColumns, clause.OrderByColumn{
				Column: clause.Column{Table: clause.CurrentTable, Name: seqColumn},
				Desc:   descending,
			})
		}
		exprs = append(exprs, clause.OrderBy{Columns: orderByColumns}, clause.Limit{Limit: &limit})

		return db.Clauses(exprs...)
	}
}

// NewTimeFinder finds rows of db in time order. db may carry further
// conditions, e.g. a severity threshold.
func NewTimeFinder[T any](db *gorm.DB, timeField string, opts ...Option[T]) cursor.TimeFinder[T] {
	options := &Options[T]{}
	for _, opt := range opts {
		opt(options)
	}

	return cursor.TimeFinderFunc[T](func(ctx context.Context, after *cursor.TimeCursor, descending bool, limit int) ([]T, error) {
		if limit <= 0 {
			return []T{}, nil
		}

		// Each query gets its own statement, db is shared by every batch
		db := db.WithContext(ctx)

		basedOnModel, err := shouldBasedOnModel[T](db)
		if err != nil {
			return nil, err
		}
		if !basedOnModel && db.Statement.Model == nil {
			db = applyModel[T](db)
		}

		return find[T](db.Scopes(ScopeTime(timeField, options.SeqField, options.Interval, after, descending, limit)))
	})
}

// NewTimeAdapter lists the rows of db in time order, keyed by key.
func NewTimeAdapter[T any](db *gorm.DB, timeField string, key func(T) cursor.TimeCursor, opts ...Option[T]) listing.ApplyCursorsFunc[T] {
	options := &Options[T]{}
	for _, opt := range opts {
		opt(options)
	}
	return cursor.NewTimeAdapter(NewTimeFinder(db, timeField, opts...), key, options.Adapter...)
}
