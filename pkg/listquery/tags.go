package listquery

import (
	"github.com/dukex/operion-connections/pkg/filter"
)

const tagsProperty = "tags"

func tagsOf(item any) ([]string, bool) {
	value, ok := filter.Property(item, tagsProperty)
	if !ok {
		return nil, false
	}

	switch tags := value.(type) {
	case []string:
		return tags, true
	case []any:
		result := make([]string, 0, len(tags))
		for _, tag := range tags {
			if s, ok := tag.(string); ok {
				result = append(result, s)
			}
		}

		return result, true
	default:
		return nil, false
	}
}

// tagged items report their tag collection without reflection.
type tagged interface {
	HasTags() bool
}

// hasTags reports whether item carries a tag collection, empty or not; a nil collection is absent.
func hasTags[T any](item T) bool {
	if t, ok := any(item).(tagged); ok {
		return t.HasTags()
	}

	_, ok := tagsOf(item)

	return ok
}

// withTag keeps the items whose tags contain tag exactly.
func withTag[T any](items []T, tag string) []T {
	result := make([]T, 0, len(items))

	for _, item := range items {
		tags, ok := tagsOf(item)
		if !ok {
			continue
		}

		for _, candidate := range tags {
			if candidate == tag {
				result = append(result, item)

				break
			}
		}
	}

	return result
}

// tagQueries lists the distinct tags of items in first-seen order.
func tagQueries[T any](items []T) []FilterQuery {
	seen := make(map[string]struct{})
	queries := make([]FilterQuery, 0)

	for _, item := range items {
		tags, _ := tagsOf(item)
		for _, tag := range tags {
			if _, ok := seen[tag]; ok {
				continue
			}

			seen[tag] = struct{}{}
			queries = append(queries, FilterQuery{ID: tag, Value: tag})
		}
	}

	return queries
}
