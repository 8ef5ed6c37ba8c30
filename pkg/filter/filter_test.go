package filter

import (
	"testing"
	"time"

	"github.com/dukex/operion-connections/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fielded map[string]any

func (f fielded) Field(name string) (any, bool) {
	v, ok := f["x_"+name]

	return v, ok
}

func TestProperty(t *testing.T) {
	conn := &models.Connection{ID: "c1", Name: "Mentions", ConnectorID: "twitter", Tags: []string{"a"}}

	tests := []struct {
		name     string
		item     any
		property string
		expected any
		found    bool
	}{
		{name: "json tag", item: conn, property: "connector_id", expected: "twitter", found: true},
		{name: "field name", item: conn, property: "ConnectorID", expected: "twitter", found: true},
		{name: "case insensitive", item: conn, property: "NAME", expected: "Mentions", found: true},
		{name: "slice", item: conn, property: "tags", expected: []string{"a"}, found: true},
		{name: "nil slice is absent", item: &models.Connection{}, property: "tags", found: false},
		{name: "nil pointer is absent", item: conn, property: "connector", found: false},
		{name: "missing", item: conn, property: "unknown", found: false},
		{name: "struct value", item: *conn, property: "id", expected: "c1", found: true},
		{name: "map", item: map[string]any{"name": "x"}, property: "name", expected: "x", found: true},
		{name: "map missing", item: map[string]any{"name": "x"}, property: "id", found: false},
		{name: "map nil value", item: map[string]any{"name": nil}, property: "name", found: false},
		{name: "fielder", item: fielded{"x_name": "y"}, property: "name", expected: "y", found: true},
		{name: "nil", item: nil, property: "name", found: false},
		{name: "scalar", item: 42, property: "name", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, found := Property(tt.item, tt.property)
			assert.Equal(t, tt.found, found)

			if tt.found {
				assert.Equal(t, tt.expected, value)
			}
		})
	}
}

func TestByProperty(t *testing.T) {
	items := []map[string]any{
		{"name": "Twitter Mentions", "tags": []string{"social"}, "port": 80},
		{"name": "Salesforce", "tags": []string{"crm", "Sales"}, "port": 443},
		{"name": "twitter dms"},
		{"id": "no-name"},
	}

	names := func(list []map[string]any) []any {
		result := make([]any, 0, len(list))
		for _, item := range list {
			result = append(result, item["name"])
		}

		return result
	}

	t.Run("substring case insensitive", func(t *testing.T) {
		result := ByProperty(items, PropertyFilterConfig{Filter: "TWITTER", PropertyName: "name"})
		assert.Equal(t, []any{"Twitter Mentions", "twitter dms"}, names(result))
	})

	t.Run("exact", func(t *testing.T) {
		result := ByProperty(items, PropertyFilterConfig{Filter: "twitter", PropertyName: "name", Exact: true})
		assert.Empty(t, result)

		result = ByProperty(items, PropertyFilterConfig{Filter: "salesforce", PropertyName: "name", Exact: true})
		assert.Equal(t, []any{"Salesforce"}, names(result))
	})

	t.Run("any element of slice", func(t *testing.T) {
		result := ByProperty(items, PropertyFilterConfig{Filter: "sales", PropertyName: "tags"})
		assert.Equal(t, []any{"Salesforce"}, names(result))
	})

	t.Run("scalar equality", func(t *testing.T) {
		result := ByProperty(items, PropertyFilterConfig{Filter: "443", PropertyName: "port"})
		assert.Equal(t, []any{"Salesforce"}, names(result))

		result = ByProperty(items, PropertyFilterConfig{Filter: "4", PropertyName: "port"})
		assert.Empty(t, result)
	})

	t.Run("empty filter keeps everything", func(t *testing.T) {
		result := ByProperty(items, PropertyFilterConfig{Filter: "  ", PropertyName: "name"})
		assert.Len(t, result, len(items))
	})

	t.Run("absent never matches", func(t *testing.T) {
		result := ByProperty(items, PropertyFilterConfig{Filter: "x", PropertyName: "missing"})
		assert.Empty(t, result)
	})

	t.Run("does not modify input", func(t *testing.T) {
		_ = ByProperty(items, PropertyFilterConfig{Filter: "twitter", PropertyName: "name"})
		assert.Len(t, items, 4)
		assert.Equal(t, "Twitter Mentions", items[0]["name"])
	})
}

func TestSortByProperty(t *testing.T) {
	now := time.Now()

	items := []*models.Connection{
		{ID: "1", Name: "beta", CreatedAt: now.Add(2 * time.Hour)},
		{ID: "2", Name: "Alpha", CreatedAt: now},
		{ID: "3", Name: "", CreatedAt: now.Add(time.Hour)},
		{ID: "4", Name: "alpha", CreatedAt: now.Add(3 * time.Hour)},
	}

	ids := func(list []*models.Connection) []string {
		result := make([]string, 0, len(list))
		for _, item := range list {
			result = append(result, item.ID)
		}

		return result
	}

	t.Run("strings ascending stable", func(t *testing.T) {
		result := SortByProperty(append([]*models.Connection(nil), items...), PropertySortConfig{SortField: "name"})
		assert.Equal(t, []string{"3", "2", "4", "1"}, ids(result))
	})

	t.Run("strings descending", func(t *testing.T) {
		result := SortByProperty(append([]*models.Connection(nil), items...), PropertySortConfig{SortField: "name", Descending: true})
		assert.Equal(t, []string{"1", "2", "4", "3"}, ids(result))
	})

	t.Run("times chronological", func(t *testing.T) {
		result := SortByProperty(append([]*models.Connection(nil), items...), PropertySortConfig{SortField: "created_at"})
		assert.Equal(t, []string{"2", "3", "1", "4"}, ids(result))
	})

	t.Run("empty field keeps order", func(t *testing.T) {
		result := SortByProperty(append([]*models.Connection(nil), items...), PropertySortConfig{})
		assert.Equal(t, []string{"1", "2", "3", "4"}, ids(result))
	})
}

func TestSortByProperty_MixedValues(t *testing.T) {
	items := []map[string]any{
		{"id": "a", "n": 10, "ok": true},
		{"id": "b"},
		{"id": "c", "n": 9.5, "ok": false},
		{"id": "d", "n": 2},
	}

	ids := func(list []map[string]any) []any {
		result := make([]any, 0, len(list))
		for _, item := range list {
			result = append(result, item["id"])
		}

		return result
	}

	ascending := SortByProperty(append([]map[string]any(nil), items...), PropertySortConfig{SortField: "n"})
	assert.Equal(t, []any{"d", "c", "a", "b"}, ids(ascending))

	descending := SortByProperty(append([]map[string]any(nil), items...), PropertySortConfig{SortField: "n", Descending: true})
	assert.Equal(t, []any{"a", "c", "d", "b"}, ids(descending))

	bools := SortByProperty(append([]map[string]any(nil), items...), PropertySortConfig{SortField: "ok"})
	require.Len(t, bools, 4)
	assert.Equal(t, []any{"c", "a", "b", "d"}, ids(bools))
}
