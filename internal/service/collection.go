package service

import (
	"context"
	"errors"

	"github.com/celerix-dev/celerix-build/pkg/docstore"
	"github.com/celerix-dev/celerix-build/pkg/schema"
)

// document is satisfied by a pointer to any schema type embedding schema.Meta.
type document[T any] interface {
	*T
	GetMeta() *schema.Meta
}

// collection is a typed view of one store collection that hides
// soft-deleted documents.
type collection[T any, PT document[T]] struct {
	store  docstore.Store
	name   string
	entity string
}

func newCollection[T any, PT document[T]](store docstore.Store, name, entity string) collection[T, PT] {
	return collection[T, PT]{store: store, name: name, entity: entity}
}

func (c collection[T, PT]) get(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, notFound(c.entity, id)
	}
	v, err := docstore.Get[T](ctx, c.store, c.name, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, notFound(c.entity, id)
	}
	if err != nil {
		return nil, err
	}
	if PT(&v).GetMeta().Deleted() {
		return nil, notFound(c.entity, id)
	}
	return &v, nil
}

// exists reports whether a live document with id exists.
func (c collection[T, PT]) exists(ctx context.Context, id string) (bool, error) {
	_, err := c.get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// list returns every live document.
func (c collection[T, PT]) list(ctx context.Context) ([]T, error) {
	all, err := docstore.List[T](ctx, c.store, c.name)
	if err != nil {
		return nil, err
	}
	live := all[:0]
	for i := range all {
		if !PT(&all[i]).GetMeta().Deleted() {
			live = append(live, all[i])
		}
	}
	return live, nil
}

func (c collection[T, PT]) insert(ctx context.Context, v *T) error {
	return docstore.Insert(ctx, c.store, c.name, PT(v).GetMeta().ID, v)
}

// mutate atomically applies fn to a live document.
func (c collection[T, PT]) mutate(ctx context.Context, id string, fn func(*T) error) (*T, error) {
	if id == "" {
		return nil, notFound(c.entity, id)
	}
	v, err := docstore.Mutate(ctx, c.store, c.name, id, func(doc *T) error {
		if PT(doc).GetMeta().Deleted() {
			return notFound(c.entity, id)
		}
		return fn(doc)
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, notFound(c.entity, id)
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// softDelete stamps deletedAt after check approves the document.
func (c collection[T, PT]) softDelete(ctx context.Context, id string, b base, check func(*T) error) error {
	_, err := c.mutate(ctx, id, func(doc *T) error {
		if check != nil {
			if err := check(doc); err != nil {
				return err
			}
		}
		now := b.timestamp()
		meta := PT(doc).GetMeta()
		meta.DeletedAt = &now
		meta.UpdatedAt = now
		return nil
	})
	return err
}

func newMeta(b base, actor schema.Actor) schema.Meta {
	now := b.timestamp()
	return schema.Meta{
		ID:        b.newID(),
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: actor.ID,
	}
}

func touch(meta *schema.Meta, b base) {
	meta.UpdatedAt = b.timestamp()
}

// Typed collections used across services.

func projectsOf(s docstore.Store) collection[schema.Project, *schema.Project] {
	return newCollection[schema.Project](s, schema.CollectionProjects, "project")
}

func phasesOf(s docstore.Store) collection[schema.Phase, *schema.Phase] {
	return newCollection[schema.Phase](s, schema.CollectionPhases, "phase")
}

func templatesOf(s docstore.Store) collection[schema.PhaseTemplate, *schema.PhaseTemplate] {
	return newCollection[schema.PhaseTemplate](s, schema.CollectionPhaseTemplates, "phase template")
}

func materialsOf(s docstore.Store) collection[schema.Material, *schema.Material] {
	return newCollection[schema.Material](s, schema.CollectionMaterials, "material")
}

func servicesOf(s docstore.Store) collection[schema.ProfessionalService, *schema.ProfessionalService] {
	return newCollection[schema.ProfessionalService](s, schema.CollectionServices, "professional service")
}

func activitiesOf(s docstore.Store) collection[schema.ProfessionalActivity, *schema.ProfessionalActivity] {
	return newCollection[schema.ProfessionalActivity](s, schema.CollectionActivities, "professional activity")
}

func suppliersOf(s docstore.Store) collection[schema.Supplier, *schema.Supplier] {
	return newCollection[schema.Supplier](s, schema.CollectionSuppliers, "supplier")
}

func ordersOf(s docstore.Store) collection[schema.PurchaseOrder, *schema.PurchaseOrder] {
	return newCollection[schema.PurchaseOrder](s, schema.CollectionOrders, "purchase order")
}

func financesOf(s docstore.Store) collection[schema.ProjectFinance, *schema.ProjectFinance] {
	return newCollection[schema.ProjectFinance](s, schema.CollectionFinances, "project finance")
}
