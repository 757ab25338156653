package changefeed

import (
	"fmt"
	"strings"

	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/pkg/errorx"
)

type filter struct {
	column string
	value  string
}

// parseFilter accepts column=eq.value and column=value. An empty string is
// a filter matching every row.
func parseFilter(s string) (*filter, error) {
	if s == "" {
		return nil, nil
	}

	column, value, ok := strings.Cut(s, "=")
	if !ok || column == "" {
		return nil, errorx.New(errorx.BadRequest, "Invalid filter %s", s)
	}

	value = strings.TrimPrefix(value, "eq.")
	return &filter{column: column, value: value}, nil
}

func (f *filter) match(row map[string]any) bool {
	if f == nil {
		return true
	}

	v, ok := row[f.column]
	if !ok {
		return false
	}

	if v == nil {
		return f.value == "null"
	}

	return fmt.Sprint(v) == f.value
}

type subscription struct {
	id     string
	table  string
	event  string
	filter *filter
}

func newSubscription(s model.Subscription) (*subscription, error) {
	if s.ID == "" {
		return nil, errorx.New(errorx.BadRequest, "Subscription id is required")
	}

	if s.Table == "" {
		return nil, errorx.New(errorx.BadRequest, "Subscription table is required")
	}

	event := strings.ToUpper(s.Event)
	switch event {
	case "", "*":
		event = "*"
	case string(model.ChangeInsert), string(model.ChangeUpdate), string(model.ChangeDelete):
	default:
		return nil, errorx.New(errorx.BadRequest, "Invalid event %s", s.Event)
	}

	f, err := parseFilter(s.Filter)
	if err != nil {
		return nil, err
	}

	return &subscription{id: s.ID, table: s.Table, event: event, filter: f}, nil
}

// match checks the new row, and the old row for deletes.
func (s *subscription) match(event *model.ChangeEvent) bool {
	if s.table != event.Table {
		return false
	}

	if s.event != "*" && s.event != string(event.Type) {
		return false
	}

	if s.filter == nil {
		return true
	}

	if event.Type == model.ChangeDelete {
		return s.filter.match(event.Old)
	}

	if s.filter.match(event.New) {
		return true
	}

	// An update moving a row out of the filter still concerns the
	// subscriber, it has to drop the row.
	return event.Type == model.ChangeUpdate && s.filter.match(event.Old)
}
