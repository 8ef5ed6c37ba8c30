package filter

import (
	"cmp"
	"reflect"
	"slices"
	"strings"
	"time"
)

// PropertySortConfig names the property to order by and the direction.
type PropertySortConfig struct {
	SortField  string
	Descending bool
}

// SortByProperty sorts items in place, keeping the relative order of equal items. Items without
// the property are placed last regardless of direction.
func SortByProperty[T any](items []T, config PropertySortConfig) []T {
	if config.SortField == "" {
		return items
	}

	slices.SortStableFunc(items, func(a, b T) int {
		av, aok := Property(a, config.SortField)
		bv, bok := Property(b, config.SortField)

		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		}

		result := compare(av, bv)
		if config.Descending {
			return -result
		}

		return result
	})

	return items
}

func compare(a, b any) int {
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}

	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)

	if af, ok := number(av); ok {
		if bf, ok := number(bv); ok {
			return cmp.Compare(af, bf)
		}
	}

	if av.Kind() == reflect.Bool && bv.Kind() == reflect.Bool {
		return compareBool(av.Bool(), bv.Bool())
	}

	return strings.Compare(strings.ToLower(text(a)), strings.ToLower(text(b)))
}

func number(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	default:
		return 0, false
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
