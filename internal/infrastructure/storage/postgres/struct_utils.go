package postgres

import (
	"reflect"
	"sync"
)

// column is one db-tagged field, located by its index path through embedded structs.
type column struct {
	name  string
	index []int
}

var layouts sync.Map // reflect.Type -> []column

// layoutOf flattens the db tags of t in declaration order. Embedded structs
// (submission.Base, entity.BaseEntity) contribute their columns in place.
func layoutOf(t reflect.Type) []column {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := layouts.Load(t); ok {
		return cached.([]column)
	}
	var cols []column
	if t.Kind() == reflect.Struct {
		cols = collect(t, nil)
	}
	layouts.Store(t, cols)
	return cols
}

func collect(t reflect.Type, prefix []int) []column {
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		path := append(append([]int(nil), prefix...), i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			cols = append(cols, collect(f.Type, path)...)
			continue
		}
		tag := f.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, column{name: tag, index: path})
	}
	return cols
}

// ExtractDBColumns lists the db columns of T, e.g. for registration.Registration:
// id, created_at, updated_at, reference, status, full_name, ...
func ExtractDBColumns[T any]() []string {
	layout := layoutOf(reflect.TypeOf((*T)(nil)).Elem())
	names := make([]string, len(layout))
	for i, c := range layout {
		names[i] = c.name
	}
	return names
}

// StructToMap returns column -> value for v, a struct or pointer to one.
// A nil pointer or a non-struct yields nil.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	layout := layoutOf(rv.Type())
	out := make(map[string]any, len(layout))
	for _, c := range layout {
		out[c.name] = rv.FieldByIndex(c.index).Interface()
	}
	return out
}

// Pick keeps only the listed columns of data.
func Pick(data map[string]any, columns []string) map[string]any {
	out := make(map[string]any, len(columns))
	for _, col := range columns {
		if v, ok := data[col]; ok {
			out[col] = v
		}
	}
	return out
}
