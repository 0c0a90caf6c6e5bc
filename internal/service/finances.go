package service

import (
	"context"
	"errors"

	"github.com/celerix-dev/celerix-build/pkg/docstore"
	"github.com/celerix-dev/celerix-build/pkg/schema"
	"github.com/shopspring/decimal"
)

// FinanceInput updates the financial settings of a project. ClearBudget
// drops a budget override so the project budget applies again.
type FinanceInput struct {
	Budget      *decimal.Decimal `json:"budget"`
	ClearBudget bool             `json:"clearBudget"`
	Contingency *decimal.Decimal `json:"contingency"`
	Notes       *string          `json:"notes"`
}

type ExpenseInput struct {
	Description string          `json:"description" binding:"required"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Date        *schema.Date    `json:"date"`
}

// Health thresholds on the percentage of available funds spent or committed.
var (
	atRiskAbove     = decimal.NewFromInt(90)
	overBudgetAbove = decimal.NewFromInt(100)
)

type FinanceService struct {
	base
}

// Summary recomputes the finances of a project from its documents.
func (s *FinanceService) Summary(ctx context.Context, projectID string) (*schema.FinanceSummary, error) {
	p, err := projectsOf(s.store).get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	l, err := loadLedger(ctx, s.base)
	if err != nil {
		return nil, err
	}
	return l.summarize(*p), nil
}

func (s *FinanceService) Update(ctx context.Context, actor schema.Actor, projectID string, in FinanceInput) (*schema.FinanceSummary, error) {
	if in.Budget != nil && in.Budget.IsNegative() {
		return nil, invalid("budget", "budget cannot be negative")
	}
	if in.Contingency != nil && in.Contingency.IsNegative() {
		return nil, invalid("contingency", "contingency cannot be negative")
	}
	err := s.mutate(ctx, actor, projectID, func(f *schema.ProjectFinance) error {
		switch {
		case in.ClearBudget:
			f.Budget = nil
		case in.Budget != nil:
			budget := *in.Budget
			f.Budget = &budget
		}
		if in.Contingency != nil {
			f.Contingency = *in.Contingency
		}
		if in.Notes != nil {
			f.Notes = text(in.Notes)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Summary(ctx, projectID)
}

// AddExpense records a project cost that is neither a purchase order nor a
// professional fee.
func (s *FinanceService) AddExpense(ctx context.Context, actor schema.Actor, projectID string, in ExpenseInput) (*schema.FinanceSummary, error) {
	e := schema.Expense{
		ID:          s.newID(),
		Description: text(&in.Description),
		Category:    text(&in.Category),
		Amount:      in.Amount.Round(2),
		Date:        schema.NewDate(s.timestamp()),
		RecordedBy:  actor.ID,
		RecordedAt:  s.timestamp(),
	}
	if e.Description == "" {
		return nil, invalid("description", "description is required")
	}
	if !e.Amount.IsPositive() {
		return nil, invalid("amount", "amount must be greater than zero")
	}
	if in.Date != nil && !in.Date.IsZero() {
		e.Date = *in.Date
	}
	err := s.mutate(ctx, actor, projectID, func(f *schema.ProjectFinance) error {
		f.Expenses = append(f.Expenses, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Summary(ctx, projectID)
}

// mutate applies fn to the finance document of a project, creating it on first use.
func (s *FinanceService) mutate(ctx context.Context, actor schema.Actor, projectID string, fn func(*schema.ProjectFinance) error) error {
	if err := requireProject(ctx, s.base, projectID); err != nil {
		return err
	}
	meta := newMeta(s.base, actor)
	meta.ID = projectID
	fresh := schema.ProjectFinance{Meta: meta, ProjectID: projectID, Expenses: []schema.Expense{}}
	err := docstore.Insert(ctx, s.store, schema.CollectionFinances, projectID, fresh)
	if err != nil && !errors.Is(err, docstore.ErrExists) {
		return err
	}
	_, err = docstore.Mutate(ctx, s.store, schema.CollectionFinances, projectID, func(f *schema.ProjectFinance) error {
		if err := fn(f); err != nil {
			return err
		}
		touch(&f.Meta, s.base)
		return nil
	})
	return err
}

func requireProject(ctx context.Context, b base, projectID string) error {
	_, err := projectsOf(b.store).get(ctx, projectID)
	return err
}

// ledger holds every live document the finance figures are derived from.
type ledger struct {
	finances   map[string]schema.ProjectFinance
	materials  []schema.Material
	orders     []schema.PurchaseOrder
	services   []schema.ProfessionalService
	activities []schema.ProfessionalActivity
	phases     []schema.Phase
}

func loadLedger(ctx context.Context, b base) (*ledger, error) {
	l := &ledger{finances: map[string]schema.ProjectFinance{}}
	finances, err := financesOf(b.store).list(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range finances {
		l.finances[f.ProjectID] = f
	}
	if l.materials, err = materialsOf(b.store).list(ctx); err != nil {
		return nil, err
	}
	if l.orders, err = ordersOf(b.store).list(ctx); err != nil {
		return nil, err
	}
	if l.services, err = servicesOf(b.store).list(ctx); err != nil {
		return nil, err
	}
	if l.activities, err = activitiesOf(b.store).list(ctx); err != nil {
		return nil, err
	}
	if l.phases, err = phasesOf(b.store).list(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *ledger) summarize(p schema.Project) *schema.FinanceSummary {
	sum := &schema.FinanceSummary{
		ProjectID:   p.ID,
		ProjectName: p.Name,
		Budget:      p.Budget,
		Expenses:    []schema.Expense{},
	}
	if f, ok := l.finances[p.ID]; ok {
		if f.Budget != nil {
			sum.Budget = *f.Budget
		}
		sum.Contingency = f.Contingency
		sum.Notes = f.Notes
		if f.Expenses != nil {
			sum.Expenses = f.Expenses
		}
	}

	for _, m := range l.materials {
		if m.ProjectID != p.ID || m.Status == schema.MaterialRejected {
			continue
		}
		sum.Materials.Estimated = sum.Materials.Estimated.Add(m.UnitCost.Mul(decimal.NewFromFloat(m.QuantityNeeded)))
		sum.Materials.Purchased = sum.Materials.Purchased.Add(m.UnitCost.Mul(decimal.NewFromFloat(m.QuantityPurchased)))
	}
	for _, o := range l.orders {
		if o.ProjectID != p.ID {
			continue
		}
		committed, received := orderCosts(o)
		sum.PurchaseOrders.Committed = sum.PurchaseOrders.Committed.Add(committed)
		sum.PurchaseOrders.Received = sum.PurchaseOrders.Received.Add(received)
	}
	for _, ps := range l.services {
		if ps.ProjectID == p.ID && oneOf(ps.Status, schema.ServiceActive, schema.ServiceCompleted) {
			sum.Professional.ContractValue = sum.Professional.ContractValue.Add(ps.ContractValue)
		}
	}
	for _, a := range l.activities {
		if a.ProjectID != p.ID {
			continue
		}
		switch a.Status {
		case schema.ActivityApproved:
			sum.Professional.FeesApproved = sum.Professional.FeesApproved.Add(a.Fee)
		case schema.ActivityPendingApproval:
			sum.Professional.FeesPending = sum.Professional.FeesPending.Add(a.Fee)
		}
	}
	for _, e := range sum.Expenses {
		sum.OtherExpenses = sum.OtherExpenses.Add(e.Amount)
	}
	for _, ph := range l.phases {
		if ph.ProjectID == p.ID {
			sum.AllocatedToPhases = sum.AllocatedToPhases.Add(ph.Budget)
		}
	}

	sum.Materials.Estimated = sum.Materials.Estimated.Round(2)
	sum.Materials.Purchased = sum.Materials.Purchased.Round(2)
	sum.PurchaseOrders.Committed = sum.PurchaseOrders.Committed.Round(2)
	sum.PurchaseOrders.Received = sum.PurchaseOrders.Received.Round(2)

	sum.Spent = sum.PurchaseOrders.Received.Add(sum.Professional.FeesApproved).Add(sum.OtherExpenses)
	sum.Committed = sum.PurchaseOrders.Committed.Add(sum.Professional.FeesPending)
	sum.Available = sum.Budget.Add(sum.Contingency)
	sum.Remaining = sum.Available.Sub(sum.Spent).Sub(sum.Committed)
	sum.PercentUsed, sum.Health = health(sum.Spent.Add(sum.Committed), sum.Available)
	return sum
}

// orderCosts splits an order into the value still committed to the supplier
// and the value already delivered.
func orderCosts(o schema.PurchaseOrder) (committed, received decimal.Decimal) {
	for _, item := range o.Items {
		received = received.Add(item.UnitPrice.Mul(decimal.NewFromFloat(item.QuantityReceived)))
	}
	switch o.Status {
	case schema.OrderApproved, schema.OrderSent:
		committed = o.Total
	case schema.OrderAccepted, schema.OrderPartiallyAccepted, schema.OrderPartiallyReceived:
		for _, item := range o.Items {
			outstanding := item.QuantityAccepted - item.QuantityReceived
			if outstanding > 0 {
				committed = committed.Add(item.UnitPrice.Mul(decimal.NewFromFloat(outstanding)))
			}
		}
	}
	return committed, received
}

// health rates usage against available funds. Usage without any available
// funds is over budget.
func health(used, available decimal.Decimal) (decimal.Decimal, schema.FinanceHealth) {
	if !available.IsPositive() {
		if used.IsPositive() {
			return decimal.Zero, schema.HealthOverBudget
		}
		return decimal.Zero, schema.HealthOnTrack
	}
	pct := used.Div(available).Mul(hundred).Round(2)
	switch {
	case pct.GreaterThan(overBudgetAbove):
		return pct, schema.HealthOverBudget
	case pct.GreaterThan(atRiskAbove):
		return pct, schema.HealthAtRisk
	}
	return pct, schema.HealthOnTrack
}
