package web

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dukex/operion-connections/pkg/listquery"
	"github.com/dukex/operion-connections/pkg/metrics"
	"github.com/dukex/operion-connections/pkg/services"
	"github.com/gofiber/fiber/v3"
)

// listQuery is the filter and sort selection read from the query string.
type listQuery struct {
	filters []listquery.AppliedFilter
	sort    *listquery.SortEvent
}

var (
	connectionFilterFields = []listquery.FilterField{
		{ID: "description", Title: "Description", Placeholder: "Filter by Description...", Type: "text"},
		{ID: "connector_id", Title: "Connector", Placeholder: "Filter by Connector...", Type: "text"},
	}
	connectionSortFields = []listquery.SortField{
		{ID: "created_at", Title: "Created", SortType: "numeric"},
		{ID: "updated_at", Title: "Updated", SortType: "numeric"},
	}
	connectorFilterFields = []listquery.FilterField{
		{ID: "description", Title: "Description", Placeholder: "Filter by Description...", Type: "text"},
	}
)

// parseListQuery reads repeated filter=<field>:<value> and tag=<value> parameters plus
// sort_by and sort_order.
func parseListQuery(c fiber.Ctx, sortFields []listquery.SortField) (*listQuery, error) {
	query := &listQuery{}
	args := c.Request().URI().QueryArgs()

	for _, raw := range args.PeekMulti("filter") {
		field, value, ok := strings.Cut(string(raw), ":")
		if !ok || field == "" {
			return nil, fmt.Errorf("%w: %q must be <field>:<value>", services.ErrInvalidFilter, string(raw))
		}

		query.filters = append(query.filters, listquery.AppliedFilter{
			Field: listquery.FilterField{ID: field},
			Value: value,
		})
	}

	for _, raw := range args.PeekMulti("tag") {
		tag := string(raw)
		query.filters = append(query.filters, listquery.AppliedFilter{
			Field: listquery.FilterField{ID: listquery.TagFieldID},
			Query: &listquery.FilterQuery{ID: tag, Value: tag},
		})
	}

	sortBy := c.Query("sort_by")
	sortOrder := c.Query("sort_order")

	if sortBy == "" && sortOrder == "" {
		return query, nil
	}

	if sortBy == "" {
		sortBy = "name"
	}

	index := slices.IndexFunc(sortFields, func(field listquery.SortField) bool { return field.ID == sortBy })
	if index < 0 {
		return nil, fmt.Errorf("%w: %s", services.ErrInvalidSortField, sortBy)
	}

	ascending := true

	switch sortOrder {
	case "", "asc":
	case "desc":
		ascending = false
	default:
		return nil, fmt.Errorf("%w: %s", services.ErrInvalidSortOrder, sortOrder)
	}

	query.sort = &listquery.SortEvent{Field: sortFields[index], IsAscending: ascending}

	return query, nil
}

// runListQuery pushes items through a pipeline configured by opts and query.
func runListQuery[T any](resource string, items []T, query *listQuery, opts ...listquery.Option) ListResponse[T] {
	var result []T

	pipeline := listquery.New(func(out []T) { result = out }, opts...)
	pipeline.Update(items)

	for _, applied := range query.filters {
		pipeline.ApplyFilter(applied)
	}

	if query.sort != nil {
		pipeline.Sort(query.sort)
	}

	if result == nil {
		result = []T{}
	}

	metrics.ListQueryResults.WithLabelValues(resource).Observe(float64(len(result)))

	return ListResponse[T]{
		Items:        result,
		ResultsCount: pipeline.ResultsCount(),
		Toolbar:      pipeline.Config(),
	}
}

func sortFieldsWith(extra []listquery.SortField) []listquery.SortField {
	return append(slices.Clone(listquery.DefaultToolbarConfig().SortConfig.Fields), extra...)
}
