package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// InsertModel builds an INSERT from a struct's db tags, in field order.
// Fields without a db tag, or tagged "-", are skipped.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	columns, values, err := modelColumns(model)
	if err != nil {
		return "", nil, err
	}
	return InsertInto(table).
		Columns(columns...).
		Values(values...).
		Suffix(suffix).
		ToSQL()
}

func modelColumns(model any) ([]string, []any, error) {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct")
	}

	t := v.Type()
	columns := make([]string, 0, t.NumField())
	values := make([]any, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}
		column, _, _ := strings.Cut(strings.TrimSpace(field.Tag.Get("db")), ",")
		column = strings.TrimSpace(column)
		if column == "" || column == "-" {
			continue
		}
		columns = append(columns, column)
		values = append(values, v.Field(i).Interface())
	}

	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("model has no db columns")
	}
	return columns, values, nil
}
