package usecase

import (
	"slices"
	"strings"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"golang.org/x/text/cases"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Searchable interface {
	entity.Tenanted
	SearchFields() (name, phone, email string)
	FilterKeys() (status, typ string)
}

type Query struct {
	Text     string
	Filters  []string
	Page     int
	PageSize int
}

type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Filter applies tenant scope, free-text search and filter tokens.
// Name and email are matched case-insensitively, phone as a raw substring.
// Filter tokens match status or type; no tokens means no restriction.
func Filter[T Searchable](s entity.Session, items []T, text string, filters []string) []T {
	scoped := Scope(s, items)

	m := newTextMatcher(text)
	tokens := make(map[string]struct{}, len(filters))
	for _, f := range filters {
		tokens[f] = struct{}{}
	}

	out := make([]T, 0, len(scoped))
	for _, it := range scoped {
		if !m.match(it.SearchFields()) {
			continue
		}
		if len(tokens) > 0 {
			status, typ := it.FilterKeys()
			_, okStatus := tokens[status]
			_, okType := tokens[typ]
			if !okStatus && !okType {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

// Paginate slices a 1-based page. A page past the end yields no items.
func Paginate[T any](items []T, page, size int) Page[T] {
	size = normalizePageSize(size)
	if page < 1 {
		page = 1
	}

	total := len(items)
	p := Page[T]{
		Items:      []T{},
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: (total + size - 1) / size,
	}

	start := (page - 1) * size
	if start >= total {
		return p
	}
	end := min(start+size, total)
	p.Items = append(p.Items, items[start:end]...)
	return p
}

func Search[T Searchable](s entity.Session, items []T, q Query) Page[T] {
	return Paginate(Filter(s, items, q.Text, q.Filters), q.Page, q.PageSize)
}

func normalizePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	return min(size, MaxPageSize)
}

type textMatcher struct {
	raw    string
	folded string
	caser  cases.Caser
}

func newTextMatcher(text string) *textMatcher {
	raw := strings.TrimSpace(text)
	caser := cases.Fold()
	return &textMatcher{raw: raw, folded: caser.String(raw), caser: caser}
}

func (m *textMatcher) match(name, phone, email string) bool {
	if m.raw == "" {
		return true
	}
	return strings.Contains(m.caser.String(name), m.folded) ||
		strings.Contains(phone, m.raw) ||
		strings.Contains(m.caser.String(email), m.folded)
}

// ListView is the browsing state of a list screen: search text, active
// filter tokens and current page. Every transition returns a new value.
type ListView struct {
	Text     string   `json:"q"`
	Filters  []string `json:"filters"`
	Page     int      `json:"page"`
	PageSize int      `json:"pageSize"`
}

func NewListView() ListView {
	return ListView{Filters: []string{}, Page: 1, PageSize: DefaultPageSize}
}

func (v ListView) Query() Query {
	return Query{Text: v.Text, Filters: slices.Clone(v.Filters), Page: v.Page, PageSize: v.PageSize}
}

// WithText changes the search text and returns to the first page.
func (v ListView) WithText(text string) ListView {
	v.Filters = slices.Clone(v.Filters)
	v.Text = text
	v.Page = 1
	return v
}

// ToggleFilter adds or removes a token and returns to the first page.
func (v ListView) ToggleFilter(token string) ListView {
	if i := slices.Index(v.Filters, token); i >= 0 {
		v.Filters = slices.Delete(slices.Clone(v.Filters), i, i+1)
	} else {
		v.Filters = append(slices.Clone(v.Filters), token)
	}
	v.Page = 1
	return v
}

func (v ListView) ClearFilters() ListView {
	v.Filters = []string{}
	v.Page = 1
	return v
}

func (v ListView) GoTo(page int) ListView {
	v.Filters = slices.Clone(v.Filters)
	if page < 1 {
		page = 1
	}
	v.Page = page
	return v
}

func Browse[T Searchable](s entity.Session, items []T, v ListView) Page[T] {
	return Search(s, items, v.Query())
}

// The combined transitions below return the new view together with the page
// it shows, so a caller cannot change the query and forget the page reset.

func SetQuery[T Searchable](s entity.Session, items []T, v ListView, text string) (ListView, Page[T]) {
	next := v.WithText(text)
	return next, Browse(s, items, next)
}

func ToggleFilter[T Searchable](s entity.Session, items []T, v ListView, token string) (ListView, Page[T]) {
	next := v.ToggleFilter(token)
	return next, Browse(s, items, next)
}

func ClearFilters[T Searchable](s entity.Session, items []T, v ListView) (ListView, Page[T]) {
	next := v.ClearFilters()
	return next, Browse(s, items, next)
}

func GoToPage[T Searchable](s entity.Session, items []T, v ListView, page int) (ListView, Page[T]) {
	next := v.GoTo(page)
	return next, Browse(s, items, next)
}
