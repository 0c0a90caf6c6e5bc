package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/celerix-dev/celerix-build/internal/engine"
	"github.com/celerix-dev/celerix-build/internal/vault"
	"github.com/celerix-dev/celerix-build/pkg/schema"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	owner      = schema.Actor{ID: "u-owner", Name: "Olivia Owner", Role: schema.RoleOwner}
	manager    = schema.Actor{ID: "u-pm", Name: "Pat Manager", Role: schema.RoleProjectManager}
	engineer   = schema.Actor{ID: "u-se", Name: "Sam Engineer", Role: schema.RoleSiteEngineer}
	accountant = schema.Actor{ID: "u-acc", Name: "Alex Accountant", Role: schema.RoleAccountant}
	architect  = schema.Actor{ID: "u-pro", Name: "Robin Architect", Role: schema.RoleProfessional}
)

// testClock is a manually advanced clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Each reading moves a second forward so creation order is observable.
	c.now = c.now.Add(time.Second)
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	ctx   context.Context
	svc   *Services
	store *engine.MemStore
	clock *testClock
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := engine.NewMemStore(nil, nil)
	sealer, err := vault.NewSealer([]byte("thisis32byteslongsecretkey123456"))
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
	var seq int
	var mu sync.Mutex
	svc := New(store, Options{
		Now: clock.Now,
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			seq++
			return fmt.Sprintf("id-%03d", seq)
		},
		Sealer:        sealer,
		PublicBaseURL: "https://build.example.com/api/",
	})
	require.NoError(t, svc.Init(context.Background(), false))
	return &fixture{ctx: context.Background(), svc: svc, store: store, clock: clock}
}

func str(s string) *string { return &s }

func num(f float64) *float64 { return &f }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func day(s string) *schema.Date {
	d, err := schema.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func (f *fixture) project(t *testing.T, name, budget string) *schema.Project {
	t.Helper()
	p, err := f.svc.Projects.Create(f.ctx, manager, ProjectInput{Name: str(name), Budget: decp(budget)})
	require.NoError(t, err)
	return p
}

func (f *fixture) supplier(t *testing.T, name string) *schema.Supplier {
	t.Helper()
	s, err := f.svc.Suppliers.Create(f.ctx, accountant, SupplierInput{Name: str(name)})
	require.NoError(t, err)
	return s
}

// approvedMaterial creates a material and walks it through approval.
func (f *fixture) approvedMaterial(t *testing.T, projectID, name string, needed float64, unitCost string) *schema.MaterialView {
	t.Helper()
	m, err := f.svc.Materials.Create(f.ctx, engineer, MaterialInput{
		ProjectID:      str(projectID),
		Name:           str(name),
		Unit:           str("pcs"),
		UnitCost:       decp(unitCost),
		QuantityNeeded: num(needed),
	})
	require.NoError(t, err)
	_, err = f.svc.Materials.Submit(f.ctx, engineer, m.ID, "")
	require.NoError(t, err)
	m, err = f.svc.Materials.Approve(f.ctx, manager, m.ID, "")
	require.NoError(t, err)
	return m
}

// sentOrder creates an order for items and moves it to sent.
func (f *fixture) sentOrder(t *testing.T, projectID, supplierID string, items []schema.OrderItem) *SendResult {
	t.Helper()
	o, err := f.svc.Orders.Create(f.ctx, accountant, OrderInput{
		ProjectID:  str(projectID),
		SupplierID: str(supplierID),
		Items:      &items,
	})
	require.NoError(t, err)
	_, err = f.svc.Orders.Submit(f.ctx, accountant, o.ID, "")
	require.NoError(t, err)
	_, err = f.svc.Orders.Approve(f.ctx, manager, o.ID, "")
	require.NoError(t, err)
	res, err := f.svc.Orders.Send(f.ctx, accountant, o.ID)
	require.NoError(t, err)
	return res
}
