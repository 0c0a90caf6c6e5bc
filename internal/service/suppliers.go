package service

import (
	"context"

	"github.com/celerix-dev/celerix-build/pkg/schema"
)

type SupplierInput struct {
	Name        *string `json:"name"`
	ContactName *string `json:"contactName"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	Notes       *string `json:"notes"`
}

type SupplierService struct {
	base
}

func (s *SupplierService) Create(ctx context.Context, actor schema.Actor, in SupplierInput) (*schema.Supplier, error) {
	sup := &schema.Supplier{Meta: newMeta(s.base, actor)}
	if err := applySupplierInput(sup, in); err != nil {
		return nil, err
	}
	if err := suppliersOf(s.store).insert(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

func (s *SupplierService) Get(ctx context.Context, id string) (*schema.Supplier, error) {
	return suppliersOf(s.store).get(ctx, id)
}

func (s *SupplierService) List(ctx context.Context, search string, page Page) ([]schema.Supplier, int, error) {
	all, err := suppliersOf(s.store).list(ctx)
	if err != nil {
		return nil, 0, err
	}
	items := filter(all, func(sup *schema.Supplier) bool {
		return matches(search, sup.Name, sup.ContactName, sup.Email, sup.Notes)
	})
	sortNewest(items)
	return paginate(items, page)
}

func (s *SupplierService) Update(ctx context.Context, actor schema.Actor, id string, in SupplierInput) (*schema.Supplier, error) {
	return suppliersOf(s.store).mutate(ctx, id, func(sup *schema.Supplier) error {
		if err := applySupplierInput(sup, in); err != nil {
			return err
		}
		touch(&sup.Meta, s.base)
		return nil
	})
}

// Delete refuses suppliers that still have open purchase orders.
func (s *SupplierService) Delete(ctx context.Context, actor schema.Actor, id string) error {
	orders, err := ordersOf(s.store).list(ctx)
	if err != nil {
		return err
	}
	open := filter(orders, func(o *schema.PurchaseOrder) bool {
		return o.SupplierID == id && o.Status.Open()
	})
	if len(open) > 0 {
		return invalid("id", "supplier has %d open purchase orders and cannot be deleted", len(open))
	}
	return suppliersOf(s.store).softDelete(ctx, id, s.base, nil)
}

func applySupplierInput(sup *schema.Supplier, in SupplierInput) error {
	if in.Name != nil {
		sup.Name = text(in.Name)
	}
	if sup.Name == "" {
		return invalid("name", "name is required")
	}
	if in.ContactName != nil {
		sup.ContactName = text(in.ContactName)
	}
	if in.Email != nil {
		sup.Email = text(in.Email)
	}
	if in.Phone != nil {
		sup.Phone = text(in.Phone)
	}
	if in.Address != nil {
		sup.Address = text(in.Address)
	}
	if in.Notes != nil {
		sup.Notes = text(in.Notes)
	}
	return nil
}
