package archive

import (
	"github.com/samber/lo"

	"github.com/theplant/listing/cursor"
	"github.com/theplant/listing/filter"
)

// ParameterInfo describes a parameter recorded in the archive.
// RawType and EngType are empty when the type is not known.
type ParameterInfo struct {
	Pid       int64   `json:"pid"`
	Parameter string  `json:"parameter"`
	RawType   string  `json:"rawType,omitempty"`
	EngType   string  `json:"engType,omitempty"`
	Gids      []int32 `json:"gids,omitempty"`
}

func ParameterKey(p ParameterInfo) cursor.NameCursor {
	return cursor.NameCursor{Name: p.Parameter}
}

// ParameterSchema exposes pid, parameter, rawType, engType and gid.
// Free text searches the parameter name.
func ParameterSchema(limits *filter.Limits) *filter.Schema[ParameterInfo, []string] {
	registry := filter.NewRegistry[ParameterInfo]()
	lo.Must0(registry.Register(filter.Number("pid", func(p ParameterInfo) (int64, bool) {
		return p.Pid, true
	})))
	lo.Must0(registry.Register(filter.String("parameter", func(p ParameterInfo) (string, bool) {
		return p.Parameter, true
	})))
	lo.Must0(registry.Register(filter.Enum("rawType", ValueTypes, func(p ParameterInfo) (string, bool) {
		return p.RawType, p.RawType != ""
	})))
	lo.Must0(registry.Register(filter.Enum("engType", ValueTypes, func(p ParameterInfo) (string, bool) {
		return p.EngType, p.EngType != ""
	})))
	lo.Must0(registry.Register(filter.NumberCollection("gid", func(p ParameterInfo) []int32 {
		return p.Gids
	})))

	matcher := filter.NewTextMatcher(filter.Attr(func(p ParameterInfo) string { return p.Parameter }))
	var opts []filter.SchemaOption
	if limits != nil {
		opts = append(opts, filter.WithLimits(limits))
	}
	return filter.NewSchema[ParameterInfo, []string](registry, matcher, opts...)
}
