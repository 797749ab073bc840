package gormlisting

import (
	"reflect"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

func parseSchema(db *gorm.DB, model any) (*schema.Schema, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, errors.Wrap(err, "failed to parse schema for model")
	}
	return stmt.Schema, nil
}

func columnName(s *schema.Schema, fieldName string) (string, error) {
	field := s.LookUpField(fieldName)
	if field == nil || field.DBName == "" {
		return "", errors.Errorf("missing field %q in schema", fieldName)
	}
	return field.DBName, nil
}

// If T is not a struct or struct pointer, db.Statement.Model decides what to find.
func shouldBasedOnModel[T any](db *gorm.DB) (bool, error) {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	if rt.Kind() == reflect.Struct || (rt.Kind() == reflect.Ptr && rt.Elem().Kind() == reflect.Struct) {
		return false, nil
	}
	if db.Statement.Model == nil {
		return false, errors.New("invalid model type: db.Statement.Model is nil and T is not a struct or struct pointer")
	}
	return true, nil
}

func applyModel[T any](db *gorm.DB) *gorm.DB {
	var t T
	modelType := reflect.TypeOf(t)
	if modelType.Kind() == reflect.Ptr && reflect.ValueOf(t).IsNil() {
		t = reflect.New(modelType.Elem()).Interface().(T)
	}
	return db.Model(t)
}

func find[T any](db *gorm.DB) ([]T, error) {
	basedOnModel, err := shouldBasedOnModel[T](db)
	if err != nil {
		return nil, err
	}
	if !basedOnModel {
		var nodes []T
		if err := db.Find(&nodes).Error; err != nil {
			return nil, errors.Wrap(err, "find")
		}
		return nodes, nil
	}

	modelType := reflect.TypeOf(db.Statement.Model)
	nodesVal := reflect.New(reflect.SliceOf(modelType)).Elem()
	if err := db.Find(nodesVal.Addr().Interface()).Error; err != nil {
		return nil, errors.Wrap(err, "find")
	}
	nodes := make([]T, nodesVal.Len())
	for i := range nodes {
		node, ok := nodesVal.Index(i).Interface().(T)
		if !ok {
			return nil, errors.Errorf("model %s does not convert to the node type", modelType)
		}
		nodes[i] = node
	}
	return nodes, nil
}
