package filter

import (
	"reflect"
	"strings"
)

// PropertyFilterConfig selects the property to test and the text to look for.
type PropertyFilterConfig struct {
	Filter       string
	PropertyName string
	// Exact requires equality instead of substring containment for string values.
	Exact bool
}

// ByProperty returns the items whose property matches config. An empty filter keeps every item;
// items without the property never match a non-empty filter.
func ByProperty[T any](items []T, config PropertyFilterConfig) []T {
	result := make([]T, 0, len(items))

	needle := strings.ToLower(strings.TrimSpace(config.Filter))
	if needle == "" {
		return append(result, items...)
	}

	for _, item := range items {
		value, ok := Property(item, config.PropertyName)
		if ok && matches(value, needle, config.Exact) {
			result = append(result, item)
		}
	}

	return result
}

func matches(value any, needle string, exact bool) bool {
	switch typed := value.(type) {
	case string:
		return matchString(typed, needle, exact)
	case []string:
		for _, element := range typed {
			if matchString(element, needle, exact) {
				return true
			}
		}

		return false
	}

	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		for i := range v.Len() {
			if element, ok := present(v.Index(i)); ok && matches(element, needle, exact) {
				return true
			}
		}

		return false
	}

	return strings.ToLower(text(value)) == needle
}

func matchString(value, needle string, exact bool) bool {
	value = strings.ToLower(value)
	if exact {
		return value == needle
	}

	return strings.Contains(value, needle)
}
