package listquery

import "slices"

const (
	// TagFieldID identifies the filter field derived from item tags.
	TagFieldID = "tag"

	defaultFieldID = "name"
)

// FilterField describes one field a list can be filtered by.
type FilterField struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Placeholder string        `json:"placeholder,omitempty"`
	Type        string        `json:"type"`
	Queries     []FilterQuery `json:"queries,omitempty"`
}

// FilterQuery is a typeahead suggestion for a field.
type FilterQuery struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// AppliedFilter narrows a list by one field. Tag filters match on Query.Value when a query is set.
type AppliedFilter struct {
	Field FilterField  `json:"field"`
	Value string       `json:"value"`
	Query *FilterQuery `json:"query,omitempty"`
}

type FilterConfig struct {
	Fields         []FilterField   `json:"fields"`
	AppliedFilters []AppliedFilter `json:"applied_filters"`
	ResultsCount   int             `json:"results_count"`
}

type SortField struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	SortType string `json:"sort_type"`
}

type SortConfig struct {
	Fields      []SortField `json:"fields"`
	IsAscending bool        `json:"is_ascending"`
}

// SortEvent changes the sort field and direction.
type SortEvent struct {
	Field       SortField `json:"field"`
	IsAscending bool      `json:"is_ascending"`
}

// ToolbarConfig is the filter and sort surface a list exposes to its UI.
type ToolbarConfig struct {
	FilterConfig FilterConfig `json:"filter_config"`
	SortConfig   SortConfig   `json:"sort_config"`
}

// DefaultToolbarConfig filters and sorts by name, ascending.
func DefaultToolbarConfig() ToolbarConfig {
	return ToolbarConfig{
		FilterConfig: FilterConfig{
			Fields: []FilterField{{
				ID:          defaultFieldID,
				Title:       "Name",
				Placeholder: "Filter by Name...",
				Type:        "text",
			}},
			AppliedFilters: []AppliedFilter{},
		},
		SortConfig: SortConfig{
			Fields: []SortField{{
				ID:       defaultFieldID,
				Title:    "Name",
				SortType: "alpha",
			}},
			IsAscending: true,
		},
	}
}

func tagField() FilterField {
	return FilterField{
		ID:          TagFieldID,
		Title:       "Tag",
		Placeholder: "Filter by tag...",
		Type:        "typeahead",
	}
}

func (c ToolbarConfig) clone() ToolbarConfig {
	clone := c
	clone.FilterConfig.Fields = make([]FilterField, len(c.FilterConfig.Fields))

	for i, field := range c.FilterConfig.Fields {
		field.Queries = slices.Clone(field.Queries)
		clone.FilterConfig.Fields[i] = field
	}

	clone.FilterConfig.AppliedFilters = make([]AppliedFilter, len(c.FilterConfig.AppliedFilters))

	for i, applied := range c.FilterConfig.AppliedFilters {
		applied.Field.Queries = slices.Clone(applied.Field.Queries)
		if applied.Query != nil {
			query := *applied.Query
			applied.Query = &query
		}

		clone.FilterConfig.AppliedFilters[i] = applied
	}

	clone.SortConfig.Fields = slices.Clone(c.SortConfig.Fields)

	return clone
}
