package archive

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/theplant/listing/filter"
)

// EventSeverities are the severities an event may carry. ERROR is kept for
// events recorded before the finer-grained levels existed.
var EventSeverities = filter.NewEnumType("EventSeverity",
	"INFO", "WARNING", "ERROR", "WATCH", "DISTRESS", "CRITICAL", "SEVERE",
)

// valueTypeFile declares the parameter value types as the archive's protobuf
// API numbers them.
var valueTypeFile = &descriptorpb.FileDescriptorProto{
	Name:    proto.String("listing/archive/value_type.proto"),
	Package: proto.String("yamcs.protobuf"),
	Syntax:  proto.String("proto2"),
	EnumType: []*descriptorpb.EnumDescriptorProto{{
		Name: proto.String("ValueType"),
		Value: lo.Map([]string{
			"FLOAT", "DOUBLE", "UINT32", "SINT32", "BINARY", "STRING", "TIMESTAMP",
			"UINT64", "SINT64", "BOOLEAN", "AGGREGATE", "ARRAY", "ENUMERATED", "NONE",
		}, func(name string, i int) *descriptorpb.EnumValueDescriptorProto {
			return &descriptorpb.EnumValueDescriptorProto{
				Name:   proto.String(name),
				Number: proto.Int32(int32(i)),
			}
		}),
	}},
}

func valueTypeDescriptor() protoreflect.EnumDescriptor {
	file := lo.Must(protodesc.NewFile(valueTypeFile, new(protoregistry.Files)))
	return file.Enums().ByName("ValueType")
}

// ValueTypes are the types a parameter value may have.
var ValueTypes = filter.ProtoEnum(valueTypeDescriptor())

// severityLevels lists the severities from least to most severe.
var severityLevels = []string{"INFO", "WATCH", "WARNING", "DISTRESS", "CRITICAL", "SEVERE"}

// SeveritiesAtLeast returns the severities an event needs to reach
// threshold. A nil result means no restriction. ERROR reaches every
// threshold but is only required by itself. threshold is case-insensitive.
func SeveritiesAtLeast(threshold string) ([]string, error) {
	threshold = strings.ToUpper(threshold)
	switch threshold {
	case "", "INFO":
		return nil, nil
	case "ERROR":
		return []string{"ERROR"}, nil
	}
	for i, level := range severityLevels {
		if level == threshold {
			return append(append([]string(nil), severityLevels[i:]...), "ERROR"), nil
		}
	}
	return nil, errors.Errorf("unsupported severity %q", threshold)
}
