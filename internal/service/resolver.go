package service

import (
	"context"

	"github.com/celerix-dev/celerix-build/pkg/schema"
)

// resolver looks up display names of referenced documents, loading each
// collection at most once per request. A collection that cannot be loaded is
// logged and resolves to empty names.
type resolver struct {
	ctx      context.Context
	b        base
	projects map[string]string
	phases   map[string]string
	supplier map[string]string
	services map[string]string
}

func newResolver(ctx context.Context, b base) *resolver {
	return &resolver{ctx: ctx, b: b}
}

// names indexes a collection by id, or warns and returns an empty index.
func names[T any, PT document[T]](r *resolver, c collection[T, PT], name func(*T) string) map[string]string {
	out := map[string]string{}
	items, err := c.list(r.ctx)
	if err != nil {
		r.b.logger.WarnContext(r.ctx, "resolving display names", "collection", c.name, "error", err)
		return out
	}
	for i := range items {
		out[PT(&items[i]).GetMeta().ID] = name(&items[i])
	}
	return out
}

func (r *resolver) project(id string) string {
	if id == "" {
		return ""
	}
	if r.projects == nil {
		r.projects = names(r, projectsOf(r.b.store), func(p *schema.Project) string { return p.Name })
	}
	return r.projects[id]
}

func (r *resolver) phase(id string) string {
	if id == "" {
		return ""
	}
	if r.phases == nil {
		r.phases = names(r, phasesOf(r.b.store), func(p *schema.Phase) string { return p.Name })
	}
	return r.phases[id]
}

func (r *resolver) supplierName(id string) string {
	if id == "" {
		return ""
	}
	if r.supplier == nil {
		r.supplier = names(r, suppliersOf(r.b.store), func(s *schema.Supplier) string { return s.Name })
	}
	return r.supplier[id]
}

func (r *resolver) professional(id string) string {
	if id == "" {
		return ""
	}
	if r.services == nil {
		r.services = names(r, servicesOf(r.b.store), func(s *schema.ProfessionalService) string { return s.ProfessionalName })
	}
	return r.services[id]
}
