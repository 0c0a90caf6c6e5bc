// Package service implements the construction-management use cases over a
// document store: validation, status workflows, quantity tracking and
// finance aggregation.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/celerix-dev/celerix-build/pkg/docstore"
	"github.com/google/uuid"
)

// TokenSealer seals and opens the payload of supplier response links.
type TokenSealer interface {
	Seal(payload any) (string, error)
	Open(token string, payload any) error
}

// Options configures the services. Zero values get sensible defaults.
type Options struct {
	Now              func() time.Time
	NewID            func() string
	Sealer           TokenSealer
	PublicBaseURL    string
	SupplierTokenTTL time.Duration
	Logger           *slog.Logger
}

// base carries what every service needs.
type base struct {
	store  docstore.Store
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

func (b base) timestamp() time.Time {
	return b.now().UTC()
}

// Services groups every use case exposed by the API.
type Services struct {
	Projects       *ProjectService
	Phases         *PhaseService
	PhaseTemplates *PhaseTemplateService
	Materials      *MaterialService
	Professionals  *ProfessionalServiceService
	Activities     *ActivityService
	Suppliers      *SupplierService
	Orders         *PurchaseOrderService
	Finances       *FinanceService
	Dashboard      *DashboardService
}

// New wires every service over the given store.
func New(store docstore.Store, opts Options) *Services {
	b := base{store: store, now: opts.Now, newID: opts.NewID, logger: opts.Logger}
	if b.now == nil {
		b.now = time.Now
	}
	if b.newID == nil {
		b.newID = func() string { return uuid.New().String() }
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	ttl := opts.SupplierTokenTTL
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}

	return &Services{
		Projects:       &ProjectService{base: b},
		Phases:         &PhaseService{base: b},
		PhaseTemplates: &PhaseTemplateService{base: b},
		Materials:      &MaterialService{base: b},
		Professionals:  &ProfessionalServiceService{base: b},
		Activities:     &ActivityService{base: b},
		Suppliers:      &SupplierService{base: b},
		Orders: &PurchaseOrderService{
			base:    b,
			sealer:  opts.Sealer,
			baseURL: opts.PublicBaseURL,
			ttl:     ttl,
		},
		Finances:  &FinanceService{base: b},
		Dashboard: &DashboardService{base: b},
	}
}

// Init prepares the store: counters used for order numbers and, when
// seedTemplates is set, the default phase templates.
func (s *Services) Init(ctx context.Context, seedTemplates bool) error {
	if err := s.Orders.ensureCounter(ctx); err != nil {
		return fmt.Errorf("preparing order counter: %w", err)
	}
	if !seedTemplates {
		return nil
	}
	n, err := s.PhaseTemplates.SeedDefaults(ctx)
	if err != nil {
		return fmt.Errorf("seeding phase templates: %w", err)
	}
	if n > 0 {
		s.Projects.logger.Info("seeded phase templates", "count", n)
	}
	return nil
}
