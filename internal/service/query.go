package service

import (
	"sort"
	"strings"

	"github.com/celerix-dev/celerix-build/pkg/schema"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page selects a window of a list result. Page numbers start at 1.
type Page struct {
	Page  int
	Limit int
}

// Normalize fills defaults and rejects out-of-range values.
func (p Page) Normalize() (Page, error) {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = DefaultPageSize
	}
	if p.Page < 1 {
		return p, invalid("page", "page must be at least 1")
	}
	if p.Limit < 1 || p.Limit > MaxPageSize {
		return p, invalid("limit", "limit must be between 1 and %d", MaxPageSize)
	}
	return p, nil
}

// paginate returns the requested window and the total count.
func paginate[T any](items []T, p Page) ([]T, int, error) {
	p, err := p.Normalize()
	if err != nil {
		return nil, 0, err
	}
	total := len(items)
	start := (p.Page - 1) * p.Limit
	if start >= total {
		return []T{}, total, nil
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	return items[start:end], total, nil
}

// sortNewest orders documents by creation time, newest first.
func sortNewest[T any, PT document[T]](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := PT(&items[i]).GetMeta(), PT(&items[j]).GetMeta()
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID > b.ID
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

// matches reports whether any field contains the search term, ignoring case.
func matches(search string, fields ...string) bool {
	search = strings.TrimSpace(strings.ToLower(search))
	if search == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func filter[T any](items []T, keep func(*T) bool) []T {
	out := make([]T, 0, len(items))
	for i := range items {
		if keep(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

// appendApproval records an approval-chain entry.
func appendApproval(chain []schema.ApprovalEntry, action schema.ApprovalAction, actor schema.Actor, b base, comment string) []schema.ApprovalEntry {
	return append(chain, schema.ApprovalEntry{
		Action:  action,
		By:      actor.ID,
		ByName:  actor.Name,
		Role:    actor.Role,
		At:      b.timestamp(),
		Comment: strings.TrimSpace(comment),
	})
}

// oneOf reports whether s is one of allowed.
func oneOf[S comparable](s S, allowed ...S) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}

// text trims an optional string input.
func text(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
