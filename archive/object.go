package archive

import (
	"github.com/samber/lo"

	"github.com/theplant/listing/cursor"
	"github.com/theplant/listing/filter"
)

// NamedObject is a named item of the mission database. Containers are
// listed before other objects.
type NamedObject struct {
	QualifiedName    string   `json:"qualifiedName"`
	System           string   `json:"system,omitempty"`
	Container        bool     `json:"container,omitempty"`
	Aliases          []string `json:"aliases,omitempty"`
	ShortDescription string   `json:"shortDescription,omitempty"`
}

func NamedObjectKey(o NamedObject) cursor.NameCursor {
	return cursor.NameCursor{Name: o.QualifiedName, Container: o.Container}
}

// NamedObjectSchema exposes name and system, the qualified name of the
// parent. Free text searches the qualified name, aliases and short
// description.
func NamedObjectSchema(limits *filter.Limits) *filter.Schema[NamedObject, []string] {
	registry := filter.NewRegistry[NamedObject]()
	lo.Must0(registry.Register(filter.String("name", func(o NamedObject) (string, bool) {
		return o.QualifiedName, true
	})))
	lo.Must0(registry.Register(filter.String("system", func(o NamedObject) (string, bool) {
		return o.System, o.System != ""
	})))

	matcher := filter.NewTextMatcher(
		filter.Attr(func(o NamedObject) string { return o.QualifiedName }),
		func(o NamedObject) []string { return o.Aliases },
		filter.Attr(func(o NamedObject) string { return o.ShortDescription }),
	)
	var opts []filter.SchemaOption
	if limits != nil {
		opts = append(opts, filter.WithLimits(limits))
	}
	return filter.NewSchema[NamedObject, []string](registry, matcher, opts...)
}
