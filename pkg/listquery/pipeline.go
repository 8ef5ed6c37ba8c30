// Package listquery keeps a filtered and sorted projection of a list of items.
package listquery

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/dukex/operion-connections/pkg/filter"
)

// Sink receives every recomputed projection. It is called with the pipeline locked and must not
// call back into the pipeline.
type Sink[T any] func(items []T)

type Option func(*options)

type options struct {
	logger       *slog.Logger
	filterFields []FilterField
	sortFields   []SortField
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithFilterFields adds filter fields after the default name field.
func WithFilterFields(fields ...FilterField) Option {
	return func(o *options) {
		o.filterFields = append(o.filterFields, fields...)
	}
}

// WithSortFields adds sort fields after the default name field.
func WithSortFields(fields ...SortField) Option {
	return func(o *options) {
		o.sortFields = append(o.sortFields, fields...)
	}
}

// Pipeline filters and sorts the latest source emission and pushes the result to its sink.
type Pipeline[T any] struct {
	mu     sync.Mutex
	sink   Sink[T]
	logger *slog.Logger

	config    ToolbarConfig
	all       []T
	filtered  []T
	sortField string
	ascending bool
}

func New[T any](sink Sink[T], opts ...Option) *Pipeline[T] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	config := DefaultToolbarConfig()
	config.FilterConfig.Fields = append(config.FilterConfig.Fields, o.filterFields...)
	config.SortConfig.Fields = append(config.SortConfig.Fields, o.sortFields...)

	return &Pipeline[T]{
		sink:      sink,
		logger:    o.logger.With("module", "ListToolbar"),
		config:    config,
		sortField: defaultFieldID,
		ascending: true,
	}
}

// Update replaces the source items, re-derives the tag field and filters again.
func (p *Pipeline[T]) Update(items []T) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.all = slices.Clone(items)
	p.deriveTagField()
	p.filter()
}

// Run feeds every emission of source into the pipeline until source is closed or ctx is done.
func (p *Pipeline[T]) Run(ctx context.Context, source <-chan []T) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case items, ok := <-source:
			if !ok {
				return nil
			}

			p.Update(items)
		}
	}
}

// Filter applies every applied filter in order and then sorts.
func (p *Pipeline[T]) Filter() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.filter()
}

// Sort re-sorts the filtered items, switching field and direction first when event is set.
func (p *Pipeline[T]) Sort(event *SortEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sort(event)
}

func (p *Pipeline[T]) ApplyFilter(applied AppliedFilter) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.config.FilterConfig.AppliedFilters = append(p.config.FilterConfig.AppliedFilters, applied)
	p.filter()
}

// RemoveFilter drops the first applied filter on the same field with the same value.
func (p *Pipeline[T]) RemoveFilter(applied AppliedFilter) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	index := slices.IndexFunc(p.config.FilterConfig.AppliedFilters, func(candidate AppliedFilter) bool {
		return candidate.Field.ID == applied.Field.ID && filterValue(candidate) == filterValue(applied)
	})
	if index < 0 {
		return false
	}

	p.config.FilterConfig.AppliedFilters = slices.Delete(p.config.FilterConfig.AppliedFilters, index, index+1)
	p.filter()

	return true
}

func (p *Pipeline[T]) ClearFilters() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.config.FilterConfig.AppliedFilters = []AppliedFilter{}
	p.filter()
}

// FilterFieldSelected returns field with its typeahead queries filled in from the current items.
func (p *Pipeline[T]) FilterFieldSelected(field FilterField) FilterField {
	p.mu.Lock()
	defer p.mu.Unlock()

	if field.ID == TagFieldID {
		field.Queries = tagQueries(p.all)
	}

	return field
}

// Config returns a copy of the current toolbar configuration.
func (p *Pipeline[T]) Config() ToolbarConfig {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.config.clone()
}

func (p *Pipeline[T]) ResultsCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.config.FilterConfig.ResultsCount
}

func (p *Pipeline[T]) filter() {
	result := p.all
	for _, applied := range p.config.FilterConfig.AppliedFilters {
		if applied.Field.ID == TagFieldID {
			result = withTag(result, filterValue(applied))

			continue
		}

		result = filter.ByProperty(result, filter.PropertyFilterConfig{
			Filter:       applied.Value,
			PropertyName: applied.Field.ID,
		})
	}

	p.config.FilterConfig.ResultsCount = len(result)
	p.filtered = result

	p.logger.Debug("filtered items", "total", len(p.all), "results", len(result))

	p.sort(nil)
}

func (p *Pipeline[T]) sort(event *SortEvent) {
	if event != nil {
		p.sortField = event.Field.ID
		p.ascending = event.IsAscending
		p.config.SortConfig.IsAscending = event.IsAscending
	}

	sortField := p.sortField
	if sortField == "" {
		sortField = defaultFieldID
	}

	result := filter.SortByProperty(slices.Clone(p.filtered), filter.PropertySortConfig{
		SortField:  sortField,
		Descending: !p.ascending,
	})

	if p.sink != nil {
		p.sink(result)
	}
}

// deriveTagField adds the tag field when any item carries tags and removes it otherwise.
func (p *Pipeline[T]) deriveTagField() {
	fields := p.config.FilterConfig.Fields
	index := slices.IndexFunc(fields, func(field FilterField) bool { return field.ID == TagFieldID })

	if !slices.ContainsFunc(p.all, hasTags[T]) {
		if index >= 0 {
			p.config.FilterConfig.Fields = slices.Delete(fields, index, index+1)
		}

		return
	}

	if index < 0 {
		p.config.FilterConfig.Fields = append(fields, tagField())
		index = len(p.config.FilterConfig.Fields) - 1
	}

	p.config.FilterConfig.Fields[index].Queries = tagQueries(p.all)
}

func filterValue(applied AppliedFilter) string {
	if applied.Field.ID == TagFieldID && applied.Query != nil {
		return applied.Query.Value
	}

	return applied.Value
}
