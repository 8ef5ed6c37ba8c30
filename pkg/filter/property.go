// Package filter resolves named properties on arbitrary items and filters or sorts lists by them.
package filter

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Fielder lets an item expose its properties without reflection.
type Fielder interface {
	Field(name string) (any, bool)
}

// Property returns the value of the named property on item. Structs are matched by json tag
// first and then by field name, both case-insensitively; maps by key.
func Property(item any, name string) (any, bool) {
	if item == nil || name == "" {
		return nil, false
	}

	if f, ok := item.(Fielder); ok {
		return f.Field(name)
	}

	v := reflect.ValueOf(item)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}

		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		return mapProperty(v, name)
	case reflect.Struct:
		return structProperty(v, name)
	default:
		return nil, false
	}
}

func mapProperty(v reflect.Value, name string) (any, bool) {
	if v.Type().Key().Kind() != reflect.String {
		return nil, false
	}

	value := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
	if !value.IsValid() {
		return nil, false
	}

	return present(value)
}

func structProperty(v reflect.Value, name string) (any, bool) {
	t := v.Type()
	byName := -1

	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		if tag, _, _ := strings.Cut(field.Tag.Get("json"), ","); tag != "" && tag != "-" {
			if strings.EqualFold(tag, name) {
				return present(v.Field(i))
			}
		}

		if byName < 0 && strings.EqualFold(field.Name, name) {
			byName = i
		}
	}

	if byName < 0 {
		return nil, false
	}

	return present(v.Field(byName))
}

// present unwraps v, treating nil pointers, interfaces, maps and slices as absent.
func present(v reflect.Value) (any, bool) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}

		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map, reflect.Slice:
		if v.IsNil() {
			return nil, false
		}
	}

	return v.Interface(), true
}

// text renders a scalar the way a user would type it in a filter box.
func text(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case time.Time:
		return typed.Format(time.RFC3339)
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprint(typed)
	}
}
