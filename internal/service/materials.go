package service

import (
	"context"
	"math"

	"github.com/celerix-dev/celerix-build/pkg/schema"
	"github.com/shopspring/decimal"
)

// MaterialInput carries create and update fields; nil fields are left unchanged.
type MaterialInput struct {
	ProjectID         *string          `json:"projectId"`
	PhaseID           *string          `json:"phaseId"`
	SupplierID        *string          `json:"supplierId"`
	Name              *string          `json:"name"`
	Category          *string          `json:"category"`
	Unit              *string          `json:"unit"`
	LibraryRef        *string          `json:"libraryRef"`
	UnitCost          *decimal.Decimal `json:"unitCost"`
	QuantityNeeded    *float64         `json:"quantityNeeded"`
	QuantityPurchased *float64         `json:"quantityPurchased"`
	QuantityDelivered *float64         `json:"quantityDelivered"`
	QuantityUsed      *float64         `json:"quantityUsed"`
	Notes             *string          `json:"notes"`
}

// QuantityInput updates the tracked quantities of a material.
type QuantityInput struct {
	Purchased *float64 `json:"quantityPurchased"`
	Delivered *float64 `json:"quantityDelivered"`
	Used      *float64 `json:"quantityUsed"`
}

type MaterialFilter struct {
	ProjectID string
	PhaseID   string
	Status    schema.MaterialStatus
	Category  string
	Search    string
}

type MaterialService struct {
	base
}

func (s *MaterialService) Create(ctx context.Context, actor schema.Actor, in MaterialInput) (*schema.MaterialView, error) {
	projectID := text(in.ProjectID)
	if projectID == "" {
		return nil, invalid("projectId", "projectId is required")
	}
	if err := requireLive(ctx, projectsOf(s.store), "projectId", projectID); err != nil {
		return nil, err
	}
	m := &schema.Material{
		Meta:          newMeta(s.base, actor),
		ProjectID:     projectID,
		Status:        schema.MaterialDraft,
		ApprovalChain: []schema.ApprovalEntry{},
	}
	if err := s.checkRefs(ctx, projectID, in); err != nil {
		return nil, err
	}
	if err := applyMaterialInput(m, in); err != nil {
		return nil, err
	}
	if err := materialsOf(s.store).insert(ctx, m); err != nil {
		return nil, err
	}
	return materialView(newResolver(ctx, s.base), *m), nil
}

func (s *MaterialService) Get(ctx context.Context, id string) (*schema.MaterialView, error) {
	m, err := materialsOf(s.store).get(ctx, id)
	if err != nil {
		return nil, err
	}
	return materialView(newResolver(ctx, s.base), *m), nil
}

func (s *MaterialService) List(ctx context.Context, f MaterialFilter, page Page) ([]schema.MaterialView, int, error) {
	items, err := s.filtered(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	items, total, err := paginate(items, page)
	if err != nil {
		return nil, 0, err
	}
	return materialViews(newResolver(ctx, s.base), items), total, nil
}

// Discrepancies lists the materials carrying at least one discrepancy flag.
func (s *MaterialService) Discrepancies(ctx context.Context, projectID string) ([]schema.MaterialView, error) {
	items, err := s.filtered(ctx, MaterialFilter{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	flagged := filter(items, func(m *schema.Material) bool {
		return m.Status != schema.MaterialRejected && len(Discrepancy(*m).Flags) > 0
	})
	return materialViews(newResolver(ctx, s.base), flagged), nil
}

func (s *MaterialService) filtered(ctx context.Context, f MaterialFilter) ([]schema.Material, error) {
	all, err := materialsOf(s.store).list(ctx)
	if err != nil {
		return nil, err
	}
	items := filter(all, func(m *schema.Material) bool {
		switch {
		case f.ProjectID != "" && m.ProjectID != f.ProjectID:
			return false
		case f.PhaseID != "" && m.PhaseID != f.PhaseID:
			return false
		case f.Status != "" && m.Status != f.Status:
			return false
		case f.Category != "" && m.Category != f.Category:
			return false
		}
		return matches(f.Search, m.Name, m.Category, m.Notes)
	})
	sortNewest(items)
	return items, nil
}

// Update edits a draft or rejected material. Owners may also edit materials
// further along the workflow until they are received.
func (s *MaterialService) Update(ctx context.Context, actor schema.Actor, id string, in MaterialInput) (*schema.MaterialView, error) {
	current, err := materialsOf(s.store).get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.ProjectID != nil && text(in.ProjectID) != current.ProjectID {
		return nil, invalid("projectId", "a material cannot be moved to another project")
	}
	if err := s.checkRefs(ctx, current.ProjectID, in); err != nil {
		return nil, err
	}
	m, err := materialsOf(s.store).mutate(ctx, id, func(m *schema.Material) error {
		editable := oneOf(m.Status, schema.MaterialDraft, schema.MaterialRejected)
		if actor.Role == schema.RoleOwner {
			editable = m.Status != schema.MaterialReceived
		}
		if !editable {
			return transition("material", "update", m.Status)
		}
		if err := applyMaterialInput(m, in); err != nil {
			return err
		}
		touch(&m.Meta, s.base)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return materialView(newResolver(ctx, s.base), *m), nil
}

func (s *MaterialService) Delete(ctx context.Context, actor schema.Actor, id string) error {
	return materialsOf(s.store).softDelete(ctx, id, s.base, func(m *schema.Material) error {
		if oneOf(m.Status, schema.MaterialOrdered, schema.MaterialReceived) && actor.Role != schema.RoleOwner {
			return transition("material", "delete", m.Status)
		}
		return nil
	})
}

func (s *MaterialService) Submit(ctx context.Context, actor schema.Actor, id, comment string) (*schema.MaterialView, error) {
	return s.move(ctx, id, func(m *schema.Material) error {
		if !oneOf(m.Status, schema.MaterialDraft, schema.MaterialRejected) {
			return transition("material", "submit", m.Status)
		}
		if m.QuantityNeeded <= 0 {
			return invalid("quantityNeeded", "quantity needed must be set before submitting")
		}
		m.Status = schema.MaterialPendingApproval
		m.RejectionReason = ""
		m.ApprovalChain = appendApproval(m.ApprovalChain, schema.ActionSubmitted, actor, s.base, comment)
		return nil
	})
}

func (s *MaterialService) Approve(ctx context.Context, actor schema.Actor, id, comment string) (*schema.MaterialView, error) {
	return s.move(ctx, id, func(m *schema.Material) error {
		if m.Status != schema.MaterialPendingApproval {
			return transition("material", "approve", m.Status)
		}
		m.Status = schema.MaterialApproved
		m.ApprovalChain = appendApproval(m.ApprovalChain, schema.ActionApproved, actor, s.base, comment)
		return nil
	})
}

func (s *MaterialService) Reject(ctx context.Context, actor schema.Actor, id, reason string) (*schema.MaterialView, error) {
	reason = text(&reason)
	if reason == "" {
		return nil, invalid("reason", "a rejection reason is required")
	}
	return s.move(ctx, id, func(m *schema.Material) error {
		if !oneOf(m.Status, schema.MaterialDraft, schema.MaterialPendingApproval) {
			return transition("material", "reject", m.Status)
		}
		m.Status = schema.MaterialRejected
		m.RejectionReason = reason
		m.ApprovalChain = appendApproval(m.ApprovalChain, schema.ActionRejected, actor, s.base, reason)
		return nil
	})
}

// UpdateQuantities records purchases, deliveries and usage of an approved material.
func (s *MaterialService) UpdateQuantities(ctx context.Context, actor schema.Actor, id string, in QuantityInput) (*schema.MaterialView, error) {
	if in.Purchased == nil && in.Delivered == nil && in.Used == nil {
		return nil, invalid("quantities", "no quantity to update")
	}
	return s.move(ctx, id, func(m *schema.Material) error {
		if !trackable(m.Status) {
			return transition("material", "track quantities of", m.Status)
		}
		if in.Purchased != nil {
			m.QuantityPurchased = *in.Purchased
		}
		if in.Delivered != nil {
			m.QuantityDelivered = *in.Delivered
		}
		if in.Used != nil {
			m.QuantityUsed = *in.Used
		}
		if err := checkQuantities(m); err != nil {
			return err
		}
		settleDelivery(m)
		return nil
	})
}

func (s *MaterialService) move(ctx context.Context, id string, fn func(*schema.Material) error) (*schema.MaterialView, error) {
	m, err := materialsOf(s.store).mutate(ctx, id, func(m *schema.Material) error {
		if err := fn(m); err != nil {
			return err
		}
		touch(&m.Meta, s.base)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return materialView(newResolver(ctx, s.base), *m), nil
}

// checkRefs verifies that the phase and supplier referenced by in are live
// and that the phase belongs to projectID.
func (s *MaterialService) checkRefs(ctx context.Context, projectID string, in MaterialInput) error {
	if phaseID := text(in.PhaseID); phaseID != "" {
		if err := requirePhaseOf(ctx, s.base, projectID, phaseID); err != nil {
			return err
		}
	}
	if supplierID := text(in.SupplierID); supplierID != "" {
		return requireLive(ctx, suppliersOf(s.store), "supplierId", supplierID)
	}
	return nil
}

// applyMaterialInput merges in into m and validates the quantities.
func applyMaterialInput(m *schema.Material, in MaterialInput) error {
	if in.Name != nil {
		m.Name = text(in.Name)
	}
	if m.Name == "" {
		return invalid("name", "name is required")
	}
	if in.PhaseID != nil {
		m.PhaseID = text(in.PhaseID)
	}
	if in.SupplierID != nil {
		m.SupplierID = text(in.SupplierID)
	}
	if in.Category != nil {
		m.Category = text(in.Category)
	}
	if in.Unit != nil {
		m.Unit = text(in.Unit)
	}
	if in.LibraryRef != nil {
		m.LibraryRef = text(in.LibraryRef)
	}
	if in.Notes != nil {
		m.Notes = text(in.Notes)
	}
	if in.UnitCost != nil {
		if in.UnitCost.IsNegative() {
			return invalid("unitCost", "unit cost cannot be negative")
		}
		m.UnitCost = *in.UnitCost
	}
	if in.QuantityNeeded != nil {
		m.QuantityNeeded = *in.QuantityNeeded
	}
	if in.QuantityPurchased != nil {
		m.QuantityPurchased = *in.QuantityPurchased
	}
	if in.QuantityDelivered != nil {
		m.QuantityDelivered = *in.QuantityDelivered
	}
	if in.QuantityUsed != nil {
		m.QuantityUsed = *in.QuantityUsed
	}
	return checkQuantities(m)
}

func trackable(status schema.MaterialStatus) bool {
	return oneOf(status, schema.MaterialApproved, schema.MaterialOrdered, schema.MaterialReceived)
}

// checkQuantities enforces 0 <= used <= delivered <= purchased.
func checkQuantities(m *schema.Material) error {
	switch {
	case m.QuantityNeeded < 0:
		return invalid("quantityNeeded", "quantity needed cannot be negative")
	case m.QuantityPurchased < 0:
		return invalid("quantityPurchased", "purchased quantity cannot be negative")
	case m.QuantityDelivered < 0:
		return invalid("quantityDelivered", "delivered quantity cannot be negative")
	case m.QuantityUsed < 0:
		return invalid("quantityUsed", "used quantity cannot be negative")
	case m.QuantityDelivered > m.QuantityPurchased:
		return invalid("quantityDelivered", "delivered quantity cannot exceed purchased quantity")
	case m.QuantityUsed > m.QuantityDelivered:
		return invalid("quantityUsed", "used quantity cannot exceed delivered quantity")
	}
	return nil
}

// settleDelivery marks a tracked material received once the needed quantity
// is on site, and steps it back when deliveries are corrected downwards.
func settleDelivery(m *schema.Material) {
	if !trackable(m.Status) {
		return
	}
	delivered := m.QuantityNeeded > 0 && m.QuantityDelivered >= m.QuantityNeeded
	switch {
	case delivered:
		m.Status = schema.MaterialReceived
	case m.Status == schema.MaterialReceived && m.QuantityPurchased > 0:
		m.Status = schema.MaterialOrdered
	case m.Status == schema.MaterialReceived:
		m.Status = schema.MaterialApproved
	}
}

// Discrepancy compares the planned, purchased, delivered and used quantities of m.
func Discrepancy(m schema.Material) schema.MaterialDiscrepancy {
	d := schema.MaterialDiscrepancy{
		ToPurchase:       math.Max(m.QuantityNeeded-m.QuantityPurchased, 0),
		OverPurchased:    math.Max(m.QuantityPurchased-m.QuantityNeeded, 0),
		AwaitingDelivery: math.Max(m.QuantityPurchased-m.QuantityDelivered, 0),
		OnSite:           math.Max(m.QuantityDelivered-m.QuantityUsed, 0),
		EstimatedCost:    m.UnitCost.Mul(decimal.NewFromFloat(m.QuantityNeeded)).Round(2),
		PurchasedCost:    m.UnitCost.Mul(decimal.NewFromFloat(m.QuantityPurchased)).Round(2),
		Flags:            []string{},
	}
	if m.QuantityNeeded > 0 {
		d.UsagePercent = math.Round(m.QuantityUsed/m.QuantityNeeded*10000) / 100
	}
	if d.ToPurchase > 0 && m.QuantityNeeded > 0 {
		d.Flags = append(d.Flags, schema.FlagUnderPurchased)
	}
	if d.OverPurchased > 0 {
		d.Flags = append(d.Flags, schema.FlagOverPurchased)
	}
	if d.AwaitingDelivery > 0 {
		d.Flags = append(d.Flags, schema.FlagAwaitingDelivery)
	}
	return d
}

func materialView(r *resolver, m schema.Material) *schema.MaterialView {
	return &schema.MaterialView{
		Material:     m,
		ProjectName:  r.project(m.ProjectID),
		PhaseName:    r.phase(m.PhaseID),
		SupplierName: r.supplierName(m.SupplierID),
		Discrepancy:  Discrepancy(m),
	}
}

func materialViews(r *resolver, items []schema.Material) []schema.MaterialView {
	views := make([]schema.MaterialView, 0, len(items))
	for _, m := range items {
		views = append(views, *materialView(r, m))
	}
	return views
}

// adjustMaterial applies purchase or delivery deltas coming from purchase orders.
func adjustMaterial(ctx context.Context, b base, id string, purchased, delivered float64) error {
	_, err := materialsOf(b.store).mutate(ctx, id, func(m *schema.Material) error {
		m.QuantityPurchased += purchased
		m.QuantityDelivered += delivered
		if err := checkQuantities(m); err != nil {
			return err
		}
		settleDelivery(m)
		touch(&m.Meta, b)
		return nil
	})
	return err
}

// markOrdered moves approved materials to ordered once an order for them is sent.
func markOrdered(ctx context.Context, b base, id string) error {
	_, err := materialsOf(b.store).mutate(ctx, id, func(m *schema.Material) error {
		if m.Status == schema.MaterialApproved {
			m.Status = schema.MaterialOrdered
			touch(&m.Meta, b)
		}
		return nil
	})
	return err
}
