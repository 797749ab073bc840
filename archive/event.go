package archive

import (
	"slices"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/theplant/listing/cursor"
	"github.com/theplant/listing/filter"
	"github.com/theplant/listing/gormlisting"
	"github.com/theplant/listing/interval"
)

// Event is an archived event. Gentime is the generation time in
// milliseconds.
type Event struct {
	Gentime   int64  `gorm:"column:gentime;not null;index" json:"gentime"`
	SeqNumber int64  `gorm:"column:seq_num;not null" json:"seqNumber"`
	Source    string `gorm:"column:source;not null" json:"source"`
	Type      string `gorm:"column:type" json:"type,omitempty"`
	Message   string `gorm:"column:message" json:"message"`
	Severity  string `gorm:"column:severity;not null" json:"severity"`
}

func (Event) TableName() string { return "events" }

// EventKey positions an event in time order, ties broken by sequence number.
func EventKey(e Event) cursor.TimeCursor {
	return cursor.TimeCursor{Time: e.Gentime, Seq: lo.ToPtr(e.SeqNumber)}
}

type EventSchemaOptions struct {
	// LegacyTypeSearch keeps the event type out of free-text search, as
	// older archive servers did.
	LegacyTypeSearch bool
	Limits           *filter.Limits
}

// EventSchema exposes severity, message, source, type and seqNumber.
// Free text searches message, source and type.
func EventSchema(opts EventSchemaOptions) *filter.Schema[Event, []string] {
	registry := filter.NewRegistry[Event]()
	lo.Must0(registry.Register(filter.Enum("severity", EventSeverities, func(e Event) (string, bool) {
		return e.Severity, e.Severity != ""
	})))
	lo.Must0(registry.Register(filter.String("message", func(e Event) (string, bool) {
		return e.Message, true
	})))
	lo.Must0(registry.Register(filter.String("source", func(e Event) (string, bool) {
		return e.Source, true
	})))
	lo.Must0(registry.Register(filter.String("type", func(e Event) (string, bool) {
		return e.Type, e.Type != ""
	})))
	lo.Must0(registry.Register(filter.Number("seqNumber", func(e Event) (int64, bool) {
		return e.SeqNumber, true
	})))

	attributes := []func(Event) []string{
		filter.Attr(func(e Event) string { return e.Message }),
		filter.Attr(func(e Event) string { return e.Source }),
	}
	if !opts.LegacyTypeSearch {
		attributes = append(attributes, filter.Attr(func(e Event) string { return e.Type }))
	}

	var schemaOpts []filter.SchemaOption
	if opts.Limits != nil {
		schemaOpts = append(schemaOpts, filter.WithLimits(opts.Limits))
	}
	return filter.NewSchema[Event, []string](registry, filter.NewTextMatcher(attributes...), schemaOpts...)
}

// EventConditions restrict the events a store serves before any query
// filtering. Empty lists do not restrict.
type EventConditions struct {
	Interval   *interval.Interval
	Severities []string
	Sources    []string
}

func (c *EventConditions) accepts(e Event) bool {
	if c.Interval != nil && c.Interval.HasInterval() && !c.Interval.Contains(e.Gentime) {
		return false
	}
	if len(c.Severities) > 0 && !slices.Contains(c.Severities, e.Severity) {
		return false
	}
	if len(c.Sources) > 0 && !slices.Contains(c.Sources, e.Source) {
		return false
	}
	return true
}

// EventStore serves archived events in time order.
type EventStore interface {
	Finder(conds EventConditions) cursor.TimeFinder[Event]
}

// MemoryEventStore holds events in memory, e.g. those loaded from a dump.
type MemoryEventStore struct {
	events []Event
}

func NewMemoryEventStore(events []Event) *MemoryEventStore {
	return &MemoryEventStore{events: slices.Clone(events)}
}

func (s *MemoryEventStore) Finder(conds EventConditions) cursor.TimeFinder[Event] {
	return cursor.NewSliceTimeFinder(lo.Filter(s.events, func(e Event, _ int) bool {
		return conds.accepts(e)
	}), EventKey)
}

// GormEventStore reads events from the events table.
type GormEventStore struct {
	db *gorm.DB
}

func NewGormEventStore(db *gorm.DB) *GormEventStore {
	return &GormEventStore{db: db}
}

func (s *GormEventStore) Finder(conds EventConditions) cursor.TimeFinder[Event] {
	db := s.db.Model(&Event{})
	if len(conds.Severities) > 0 {
		db = db.Where(clause.IN{
			Column: clause.Column{Table: clause.CurrentTable, Name: "severity"},
			Values: lo.ToAnySlice(conds.Severities),
		})
	}
	if len(conds.Sources) > 0 {
		db = db.Where(clause.IN{
			Column: clause.Column{Table: clause.CurrentTable, Name: "source"},
			Values: lo.ToAnySlice(conds.Sources),
		})
	}

	db = db.Session(&gorm.Session{})

	opts := []gormlisting.Option[Event]{gormlisting.WithSeqField[Event]("SeqNumber")}
	if conds.Interval != nil && conds.Interval.HasInterval() {
		opts = append(opts, gormlisting.WithInterval[Event](*conds.Interval))
	}
	return gormlisting.NewTimeFinder(db, "Gentime", opts...)
}
