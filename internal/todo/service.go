// ABOUTME: Item service enforcing ownership, body validation and pagination
// ABOUTME: Both the web UI and the API call through here and never touch items directly

package todo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/2389/todoism/internal/metrics"
	"github.com/2389/todoism/internal/store"
)

// DefaultPerPage is used when List is called with a non-positive page size.
const DefaultPerPage = 20

// Filter selects which items a listing returns.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter converts a path or query value into a Filter.
func ParseFilter(s string) (Filter, bool) {
	switch Filter(s) {
	case FilterAll, FilterActive, FilterCompleted:
		return Filter(s), true
	case "":
		return FilterAll, true
	}
	return "", false
}

func (f Filter) done() *bool {
	switch f {
	case FilterActive:
		return store.BoolPtr(false)
	case FilterCompleted:
		return store.BoolPtr(true)
	}
	return nil
}

// Page is one page of an owner's items plus the numbers needed to build
// navigation links.
type Page struct {
	Items   []*store.Item
	Total   int
	Page    int
	PerPage int
	Pages   int
	HasPrev bool
	HasNext bool
}

// Counts holds an owner's item totals by state.
type Counts struct {
	All       int
	Active    int
	Completed int
}

// Service implements every item operation on behalf of an explicit owner.
type Service struct {
	store  store.ItemStore
	logger *slog.Logger
}

// New creates an item service backed by items.
func New(items store.ItemStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  items,
		logger: logger.With("component", "todo"),
	}
}

// Create stores a new active item for owner.
func (s *Service) Create(ctx context.Context, owner, rawBody string) (item *store.Item, err error) {
	defer func() { s.record("create", err) }()

	body, err := cleanBody(rawBody)
	if err != nil {
		return nil, err
	}

	item = &store.Item{Body: body, AuthorID: owner}
	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}
	s.logger.Debug("item created", "owner", owner, "item_id", item.ID)
	return item, nil
}

// Get returns the item when owner owns it.
// A missing item is reported before an ownership mismatch.
func (s *Service) Get(ctx context.Context, owner string, id int64) (item *store.Item, err error) {
	defer func() { s.record("get", err) }()
	return s.owned(ctx, owner, id)
}

// Edit replaces the body of an owned item. The done flag is left alone.
func (s *Service) Edit(ctx context.Context, owner string, id int64, rawBody string) (item *store.Item, err error) {
	defer func() { s.record("edit", err) }()

	if _, err := s.owned(ctx, owner, id); err != nil {
		return nil, err
	}
	body, err := cleanBody(rawBody)
	if err != nil {
		return nil, err
	}

	item, err = s.store.UpdateItemBody(ctx, id, body)
	if err != nil {
		return nil, mapStoreErr("updating item", err)
	}
	s.logger.Debug("item edited", "owner", owner, "item_id", id)
	return item, nil
}

// Toggle flips the done flag of an owned item.
func (s *Service) Toggle(ctx context.Context, owner string, id int64) (item *store.Item, err error) {
	defer func() { s.record("toggle", err) }()

	if _, err := s.owned(ctx, owner, id); err != nil {
		return nil, err
	}
	item, err = s.store.ToggleItem(ctx, id)
	if err != nil {
		return nil, mapStoreErr("toggling item", err)
	}
	s.logger.Debug("item toggled", "owner", owner, "item_id", id, "done", item.Done)
	return item, nil
}

// Delete removes an owned item.
func (s *Service) Delete(ctx context.Context, owner string, id int64) (err error) {
	defer func() { s.record("delete", err) }()

	if _, err := s.owned(ctx, owner, id); err != nil {
		return err
	}
	if err := s.store.DeleteItem(ctx, id); err != nil {
		return mapStoreErr("deleting item", err)
	}
	s.logger.Debug("item deleted", "owner", owner, "item_id", id)
	return nil
}

// ClearCompleted removes every done item of owner and returns how many went.
func (s *Service) ClearCompleted(ctx context.Context, owner string) (n int64, err error) {
	defer func() { s.record("clear", err) }()

	n, err = s.store.DeleteCompletedItems(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("clearing completed items: %w", err)
	}
	s.logger.Debug("completed items cleared", "owner", owner, "count", n)
	return n, nil
}

// List returns one page of owner's items matching filter, oldest first.
// Pages are 1-indexed; page < 1 is treated as 1 and a page past the end is empty.
func (s *Service) List(ctx context.Context, owner string, filter Filter, page, perPage int) (p *Page, err error) {
	defer func() { s.record("list", err) }()

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	base := store.ItemFilter{AuthorID: owner, Done: filter.done()}
	total, err := s.store.CountItems(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("counting items: %w", err)
	}

	pages := (total + perPage - 1) / perPage
	p = &Page{
		Items:   []*store.Item{},
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   pages,
		HasPrev: page > 1,
		HasNext: page < pages,
	}
	if page > pages {
		return p, nil
	}

	paged := base
	paged.Limit = perPage
	paged.Offset = (page - 1) * perPage
	items, err := s.store.ListItems(ctx, paged)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	p.Items = items
	return p, nil
}

// All returns every item of owner, oldest first.
func (s *Service) All(ctx context.Context, owner string) (items []*store.Item, err error) {
	defer func() { s.record("list", err) }()

	items, err = s.store.ListItems(ctx, store.ItemFilter{AuthorID: owner})
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// Counts returns owner's totals for all, active and completed items.
func (s *Service) Counts(ctx context.Context, owner string) (Counts, error) {
	all, err := s.store.CountItems(ctx, store.ItemFilter{AuthorID: owner})
	if err != nil {
		return Counts{}, fmt.Errorf("counting items: %w", err)
	}
	completed, err := s.store.CountItems(ctx, store.ItemFilter{AuthorID: owner, Done: store.BoolPtr(true)})
	if err != nil {
		return Counts{}, fmt.Errorf("counting completed items: %w", err)
	}
	return Counts{All: all, Active: all - completed, Completed: completed}, nil
}

// owned loads an item and checks that owner may act on it.
func (s *Service) owned(ctx context.Context, owner string, id int64) (*store.Item, error) {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, mapStoreErr("loading item", err)
	}
	if item.AuthorID != owner {
		s.logger.Debug("item access denied", "owner", owner, "item_id", id)
		return nil, ErrForbidden
	}
	return item, nil
}

func (s *Service) record(op string, err error) {
	metrics.RecordItemOperation(op, resultLabel(err))
}

func cleanBody(raw string) (string, error) {
	body := strings.TrimSpace(raw)
	if body == "" {
		return "", &ValidationError{Reason: "empty body"}
	}
	return body, nil
}

func mapStoreErr(action string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", action, err)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}
