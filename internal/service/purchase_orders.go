package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/celerix-dev/celerix-build/pkg/docstore"
	"github.com/celerix-dev/celerix-build/pkg/schema"
	"github.com/shopspring/decimal"
)

// OrderInput carries create and update fields; nil fields are left unchanged.
type OrderInput struct {
	ProjectID        *string             `json:"projectId"`
	SupplierID       *string             `json:"supplierId"`
	Items            *[]schema.OrderItem `json:"items"`
	ExpectedDelivery *schema.Date        `json:"expectedDelivery"`
	Notes            *string             `json:"notes"`
}

type OrderFilter struct {
	ProjectID  string
	SupplierID string
	Status     schema.OrderStatus
	Search     string
}

// ResponseInput is a supplier's decision on a sent order. For partial
// decisions QuantitiesAccepted holds one entry per order item.
type ResponseInput struct {
	Decision           schema.SupplierDecision `json:"decision" binding:"required"`
	Note               string                  `json:"note"`
	DeliveryDate       *schema.Date            `json:"deliveryDate"`
	QuantitiesAccepted []float64               `json:"quantitiesAccepted"`
}

// ReceiveInput records a delivery against an order. QuantitiesReceived holds
// the quantity delivered now per order item; when empty every outstanding
// accepted quantity is received.
type ReceiveInput struct {
	QuantitiesReceived []float64 `json:"quantitiesReceived"`
	Note               string    `json:"note"`
}

// SendResult carries the supplier response link created by Send.
type SendResult struct {
	Order       *schema.OrderView `json:"order"`
	Token       string            `json:"token"`
	ResponseURL string            `json:"responseUrl"`
}

// supplierToken is sealed into supplier response links.
type supplierToken struct {
	OrderID    string    `json:"o"`
	SupplierID string    `json:"s"`
	IssuedAt   time.Time `json:"t"`
}

const orderCounterID = "purchase_orders"

// orderCounter holds the last order sequence allocated per year.
type orderCounter struct {
	ID    string         `json:"id"`
	Years map[string]int `json:"years"`
}

type PurchaseOrderService struct {
	base
	sealer  TokenSealer
	baseURL string
	ttl     time.Duration
}

func (s *PurchaseOrderService) ensureCounter(ctx context.Context) error {
	err := docstore.Insert(ctx, s.store, schema.CollectionCounters, orderCounterID,
		orderCounter{ID: orderCounterID, Years: map[string]int{}})
	if errors.Is(err, docstore.ErrExists) {
		return nil
	}
	return err
}

// nextNumber allocates the next order number of the current year.
func (s *PurchaseOrderService) nextNumber(ctx context.Context) (string, error) {
	if err := s.ensureCounter(ctx); err != nil {
		return "", err
	}
	year := s.timestamp().Year()
	key := strconv.Itoa(year)
	c, err := docstore.Mutate(ctx, s.store, schema.CollectionCounters, orderCounterID, func(c *orderCounter) error {
		if c.Years == nil {
			c.Years = map[string]int{}
		}
		c.Years[key]++
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("allocating order number: %w", err)
	}
	return fmt.Sprintf("PO-%d-%04d", year, c.Years[key]), nil
}

func (s *PurchaseOrderService) Create(ctx context.Context, actor schema.Actor, in OrderInput) (*schema.OrderView, error) {
	projectID, supplierID := text(in.ProjectID), text(in.SupplierID)
	if projectID == "" {
		return nil, invalid("projectId", "projectId is required")
	}
	if supplierID == "" {
		return nil, invalid("supplierId", "supplierId is required")
	}
	if err := requireLive(ctx, projectsOf(s.store), "projectId", projectID); err != nil {
		return nil, err
	}
	if err := requireLive(ctx, suppliersOf(s.store), "supplierId", supplierID); err != nil {
		return nil, err
	}
	if in.Items == nil {
		return nil, invalid("items", "an order needs at least one item")
	}
	items, err := s.prepareItems(ctx, projectID, *in.Items)
	if err != nil {
		return nil, err
	}

	number, err := s.nextNumber(ctx)
	if err != nil {
		return nil, err
	}
	o := &schema.PurchaseOrder{
		Meta:          newMeta(s.base, actor),
		Number:        number,
		ProjectID:     projectID,
		SupplierID:    supplierID,
		Items:         items,
		Total:         orderTotal(items),
		Status:        schema.OrderDraft,
		ApprovalChain: []schema.ApprovalEntry{},
		History:       []schema.OrderEvent{},
	}
	applyOrderInput(o, in)
	s.record(o, "created", actor.ID, "")
	if err := ordersOf(s.store).insert(ctx, o); err != nil {
		return nil, err
	}
	return orderView(newResolver(ctx, s.base), *o), nil
}

func (s *PurchaseOrderService) Get(ctx context.Context, id string) (*schema.OrderView, error) {
	o, err := ordersOf(s.store).get(ctx, id)
	if err != nil {
		return nil, err
	}
	return orderView(newResolver(ctx, s.base), *o), nil
}

func (s *PurchaseOrderService) List(ctx context.Context, f OrderFilter, page Page) ([]schema.OrderView, int, error) {
	all, err := ordersOf(s.store).list(ctx)
	if err != nil {
		return nil, 0, err
	}
	items := filter(all, func(o *schema.PurchaseOrder) bool {
		switch {
		case f.ProjectID != "" && o.ProjectID != f.ProjectID:
			return false
		case f.SupplierID != "" && o.SupplierID != f.SupplierID:
			return false
		case f.Status != "" && o.Status != f.Status:
			return false
		}
		return matches(f.Search, o.Number, o.Notes)
	})
	sortNewest(items)
	items, total, err := paginate(items, page)
	if err != nil {
		return nil, 0, err
	}
	r := newResolver(ctx, s.base)
	views := make([]schema.OrderView, 0, len(items))
	for _, o := range items {
		views = append(views, *orderView(r, o))
	}
	return views, total, nil
}

// Update edits a draft or rejected order and recalculates its total.
func (s *PurchaseOrderService) Update(ctx context.Context, actor schema.Actor, id string, in OrderInput) (*schema.OrderView, error) {
	current, err := ordersOf(s.store).get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.ProjectID != nil && text(in.ProjectID) != current.ProjectID {
		return nil, invalid("projectId", "an order cannot be moved to another project")
	}
	if supplierID := text(in.SupplierID); in.SupplierID != nil {
		if supplierID == "" {
			return nil, invalid("supplierId", "supplierId is required")
		}
		if err := requireLive(ctx, suppliersOf(s.store), "supplierId", supplierID); err != nil {
			return nil, err
		}
	}
	var items []schema.OrderItem
	if in.Items != nil {
		if items, err = s.prepareItems(ctx, current.ProjectID, *in.Items); err != nil {
			return nil, err
		}
	}

	return s.move(ctx, id, func(o *schema.PurchaseOrder) error {
		if !oneOf(o.Status, schema.OrderDraft, schema.OrderRejected) {
			return transition("purchase order", "update", o.Status)
		}
		if in.SupplierID != nil {
			o.SupplierID = text(in.SupplierID)
		}
		if items != nil {
			o.Items = items
			o.Total = orderTotal(items)
		}
		applyOrderInput(o, in)
		s.record(o, "updated", actor.ID, "")
		return nil
	})
}

func (s *PurchaseOrderService) Delete(ctx context.Context, actor schema.Actor, id string) error {
	return ordersOf(s.store).softDelete(ctx, id, s.base, func(o *schema.PurchaseOrder) error {
		if !oneOf(o.Status, schema.OrderDraft, schema.OrderRejected) {
			return transition("purchase order", "delete", o.Status)
		}
		return nil
	})
}

func (s *PurchaseOrderService) Submit(ctx context.Context, actor schema.Actor, id, comment string) (*schema.OrderView, error) {
	return s.move(ctx, id, func(o *schema.PurchaseOrder) error {
		if !oneOf(o.Status, schema.OrderDraft, schema.OrderRejected) {
			return transition("purchase order", "submit", o.Status)
		}
		o.Status = schema.OrderPendingApproval
		o.RejectionReason = ""
		o.ApprovalChain = appendApproval(o.ApprovalChain, schema.ActionSubmitted, actor, s.base, comment)
		s.record(o, "submitted for approval", actor.ID, comment)
		return nil
	})
}

func (s *PurchaseOrderService) Approve(ctx context.Context, actor schema.Actor, id, comment string) (*schema.OrderView, error) {
	return s.move(ctx, id, func(o *schema.PurchaseOrder) error {
		if o.Status != schema.OrderPendingApproval {
			return transition("purchase order", "approve", o.Status)
		}
		o.Status = schema.OrderApproved
		o.ApprovalChain = appendApproval(o.ApprovalChain, schema.ActionApproved, actor, s.base, comment)
		s.record(o, "approved", actor.ID, comment)
		return nil
	})
}

func (s *PurchaseOrderService) Reject(ctx context.Context, actor schema.Actor, id, reason string) (*schema.OrderView, error) {
	reason = text(&reason)
	if reason == "" {
		return nil, invalid("reason", "a rejection reason is required")
	}
	return s.move(ctx, id, func(o *schema.PurchaseOrder) error {
		if o.Status != schema.OrderPendingApproval {
			return transition("purchase order", "reject", o.Status)
		}
		o.Status = schema.OrderRejected
		o.RejectionReason = reason
		o.ApprovalChain = appendApproval(o.ApprovalChain, schema.ActionRejected, actor, s.base, reason)
		s.record(o, "rejected", actor.ID, reason)
		return nil
	})
}

// Send issues the supplier response link of an approved order. Sending an
// order that is already awaiting its supplier reissues the link and
// invalidates the previous one.
func (s *PurchaseOrderService) Send(ctx context.Context, actor schema.Actor, id string) (*SendResult, error) {
	if s.sealer == nil {
		return nil, errors.New("supplier links are not configured")
	}
	var token string
	view, err := s.move(ctx, id, func(o *schema.PurchaseOrder) error {
		if !oneOf(o.Status, schema.OrderApproved, schema.OrderSent) {
			return transition("purchase order", "send", o.Status)
		}
		now := s.timestamp()
		sealed, err := s.sealer.Seal(supplierToken{OrderID: o.ID, SupplierID: o.SupplierID, IssuedAt: now})
		if err != nil {
			return fmt.Errorf("sealing supplier link: %w", err)
		}
		token = sealed
		event := "sent to supplier"
		if o.Status == schema.OrderSent {
			event = "supplier link reissued"
		}
		o.Status = schema.OrderSent
		o.SentAt = &now
		s.record(o, event, actor.ID, "")
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, item := range view.Items {
		if item.MaterialID == "" {
			continue
		}
		if err := markOrdered(ctx, s.base, item.MaterialID); err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return &SendResult{Order: view, Token: token, ResponseURL: s.responseURL(token)}, nil
}

func (s *PurchaseOrderService) responseURL(token string) string {
	return strings.TrimRight(s.baseURL, "/") + "/supplier/orders/" + token
}

// ViewByToken returns the order behind a supplier response link.
func (s *PurchaseOrderService) ViewByToken(ctx context.Context, token string) (*schema.SupplierOrderView, error) {
	o, err := s.openToken(ctx, token)
	if err != nil {
		return nil, err
	}
	r := newResolver(ctx, s.base)
	return &schema.SupplierOrderView{
		Number:           o.Number,
		ProjectName:      r.project(o.ProjectID),
		SupplierName:     r.supplierName(o.SupplierID),
		Items:            o.Items,
		Total:            o.Total,
		ExpectedDelivery: o.ExpectedDelivery,
		Notes:            o.Notes,
		Status:           o.Status,
		Label:            schema.OrderStatusLabels[o.Status],
		CanRespond:       o.Status == schema.OrderSent,
	}, nil
}

// RespondByToken records the supplier's decision through their response link.
func (s *PurchaseOrderService) RespondByToken(ctx context.Context, token string, in ResponseInput) (*schema.SupplierOrderView, error) {
	o, err := s.openToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if _, err := s.respond(ctx, o.ID, in, "portal"); err != nil {
		return nil, err
	}
	return s.ViewByToken(ctx, token)
}

// RecordResponse records a supplier decision received by staff through
// another channel.
func (s *PurchaseOrderService) RecordResponse(ctx context.Context, actor schema.Actor, id string, in ResponseInput) (*schema.OrderView, error) {
	return s.respond(ctx, id, in, actor.ID)
}

func (s *PurchaseOrderService) respond(ctx context.Context, id string, in ResponseInput, via string) (*schema.OrderView, error) {
	if !oneOf(in.Decision, schema.DecisionAccept, schema.DecisionDecline, schema.DecisionPartial) {
		return nil, invalid("decision", "decision must be accept, decline or partial")
	}
	view, err := s.move(ctx, id, func(o *schema.PurchaseOrder) error {
		if o.Status != schema.OrderSent {
			return transition("purchase order", "record a supplier response for", o.Status)
		}
		accepted, err := acceptedQuantities(o.Items, in)
		if err != nil {
			return err
		}
		for i := range o.Items {
			o.Items[i].QuantityAccepted = accepted[i]
		}
		switch in.Decision {
		case schema.DecisionAccept:
			o.Status = schema.OrderAccepted
		case schema.DecisionPartial:
			o.Status = schema.OrderPartiallyAccepted
		default:
			o.Status = schema.OrderDeclined
		}
		if in.DeliveryDate != nil && !in.DeliveryDate.IsZero() {
			o.ExpectedDelivery = in.DeliveryDate
		}
		o.SupplierResponse = &schema.SupplierResponse{
			Decision:     in.Decision,
			Note:         strings.TrimSpace(in.Note),
			DeliveryDate: optionalDate(in.DeliveryDate),
			RespondedAt:  s.timestamp(),
			Via:          via,
		}
		s.record(o, "supplier responded: "+string(in.Decision), via, in.Note)
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, item := range view.Items {
		if item.MaterialID == "" || item.QuantityAccepted == 0 {
			continue
		}
		if err := adjustMaterial(ctx, s.base, item.MaterialID, item.QuantityAccepted, 0); err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return view, nil
}

func acceptedQuantities(items []schema.OrderItem, in ResponseInput) ([]float64, error) {
	accepted := make([]float64, len(items))
	switch in.Decision {
	case schema.DecisionAccept:
		for i, item := range items {
			accepted[i] = item.Quantity
		}
	case schema.DecisionPartial:
		if len(in.QuantitiesAccepted) != len(items) {
			return nil, invalid("quantitiesAccepted", "expected %d accepted quantities, got %d", len(items), len(in.QuantitiesAccepted))
		}
		some, all := false, true
		for i, q := range in.QuantitiesAccepted {
			if q < 0 || q > items[i].Quantity {
				return nil, invalid("quantitiesAccepted", "accepted quantity of item %d must be between 0 and %g", i+1, items[i].Quantity)
			}
			accepted[i] = q
			some = some || q > 0
			all = all && q == items[i].Quantity
		}
		if !some {
			return nil, invalid("quantitiesAccepted", "a partial acceptance needs at least one accepted quantity; decline the order instead")
		}
		if all {
			return nil, invalid("quantitiesAccepted", "every quantity is accepted in full; accept the order instead")
		}
	}
	return accepted, nil
}

// Receive records delivered quantities and updates the linked materials.
//
// Material limits are checked up front, then the order is written, then each
// material is adjusted on its own. A material that fails to update does not
// roll the order back. Each failure is logged and the returned error names the
// order along with every material left behind.
func (s *PurchaseOrderService) Receive(ctx context.Context, actor schema.Actor, id string, in ReceiveInput) (*schema.OrderView, error) {
	current, err := ordersOf(s.store).get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !receivable(current.Status) {
		return nil, transition("purchase order", "receive", current.Status)
	}
	deltas, err := receivedQuantities(current.Items, in)
	if err != nil {
		return nil, err
	}
	// Deliveries may not push a material past its purchased quantity.
	perMaterial := map[string]float64{}
	for i, item := range current.Items {
		if item.MaterialID != "" {
			perMaterial[item.MaterialID] += deltas[i]
		}
	}
	for materialID, delta := range perMaterial {
		m, err := materialsOf(s.store).get(ctx, materialID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if m.QuantityDelivered+delta > m.QuantityPurchased {
			return nil, invalid("quantitiesReceived", "delivered quantity of %q cannot exceed purchased quantity", m.Name)
		}
	}

	view, err := s.move(ctx, id, func(o *schema.PurchaseOrder) error {
		if !receivable(o.Status) {
			return transition("purchase order", "receive", o.Status)
		}
		complete := true
		for i := range o.Items {
			item := &o.Items[i]
			if item.QuantityReceived+deltas[i] > item.QuantityAccepted {
				return invalid("quantitiesReceived", "received quantity of item %d cannot exceed accepted quantity", i+1)
			}
			item.QuantityReceived += deltas[i]
			complete = complete && item.QuantityReceived >= item.QuantityAccepted
		}
		if complete {
			now := s.timestamp()
			o.Status = schema.OrderReceived
			o.ReceivedAt = &now
			s.record(o, "delivery received in full", actor.ID, in.Note)
		} else {
			o.Status = schema.OrderPartiallyReceived
			s.record(o, "partial delivery received", actor.ID, in.Note)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	var failed []error
	for _, materialID := range slices.Sorted(maps.Keys(perMaterial)) {
		delta := perMaterial[materialID]
		if delta == 0 {
			continue
		}
		if err := adjustMaterial(ctx, s.base, materialID, 0, delta); err != nil && !errors.Is(err, ErrNotFound) {
			s.logger.ErrorContext(ctx, "delivery recorded without material update",
				"order", id, "material", materialID, "delivered", delta, "error", err)
			failed = append(failed, fmt.Errorf("material %s: %w", materialID, err))
		}
	}
	if len(failed) > 0 {
		return nil, fmt.Errorf("order %s received but materials not updated: %w", id, errors.Join(failed...))
	}
	return view, nil
}

func receivable(status schema.OrderStatus) bool {
	return oneOf(status, schema.OrderAccepted, schema.OrderPartiallyAccepted, schema.OrderPartiallyReceived)
}

func receivedQuantities(items []schema.OrderItem, in ReceiveInput) ([]float64, error) {
	deltas := make([]float64, len(items))
	if len(in.QuantitiesReceived) == 0 {
		for i, item := range items {
			deltas[i] = item.QuantityAccepted - item.QuantityReceived
		}
		return deltas, nil
	}
	if len(in.QuantitiesReceived) != len(items) {
		return nil, invalid("quantitiesReceived", "expected %d received quantities, got %d", len(items), len(in.QuantitiesReceived))
	}
	some := false
	for i, q := range in.QuantitiesReceived {
		if q < 0 {
			return nil, invalid("quantitiesReceived", "received quantity of item %d cannot be negative", i+1)
		}
		if items[i].QuantityReceived+q > items[i].QuantityAccepted {
			return nil, invalid("quantitiesReceived", "received quantity of item %d cannot exceed accepted quantity", i+1)
		}
		deltas[i] = q
		some = some || q > 0
	}
	if !some {
		return nil, invalid("quantitiesReceived", "nothing to receive")
	}
	return deltas, nil
}

func (s *PurchaseOrderService) Cancel(ctx context.Context, actor schema.Actor, id, reason string) (*schema.OrderView, error) {
	return s.move(ctx, id, func(o *schema.PurchaseOrder) error {
		if !oneOf(o.Status, schema.OrderDraft, schema.OrderPendingApproval, schema.OrderApproved, schema.OrderSent, schema.OrderDeclined) {
			return transition("purchase order", "cancel", o.Status)
		}
		o.Status = schema.OrderCancelled
		s.record(o, "cancelled", actor.ID, reason)
		return nil
	})
}

// Track summarises where an order stands with its supplier.
func (s *PurchaseOrderService) Track(ctx context.Context, id string) (*schema.OrderTracking, error) {
	o, err := ordersOf(s.store).get(ctx, id)
	if err != nil {
		return nil, err
	}
	t := &schema.OrderTracking{
		OrderID:          o.ID,
		Number:           o.Number,
		Status:           o.Status,
		Label:            schema.OrderStatusLabels[o.Status],
		AwaitingResponse: o.Status == schema.OrderSent,
		SupplierResponse: o.SupplierResponse,
		History:          o.History,
	}
	if o.SentAt != nil {
		days := int(s.timestamp().Sub(*o.SentAt) / (24 * time.Hour))
		t.DaysSinceSent = &days
	}
	return t, nil
}

// openToken resolves a supplier link to its order.
func (s *PurchaseOrderService) openToken(ctx context.Context, token string) (*schema.PurchaseOrder, error) {
	if s.sealer == nil || token == "" {
		return nil, notFound("supplier link", "")
	}
	var payload supplierToken
	if err := s.sealer.Open(token, &payload); err != nil {
		return nil, notFound("supplier link", "")
	}
	o, err := ordersOf(s.store).get(ctx, payload.OrderID)
	if err != nil {
		return nil, notFound("supplier link", "")
	}
	// Links are bound to the supplier and the latest send of the order.
	if o.SupplierID != payload.SupplierID || o.SentAt == nil || payload.IssuedAt.Before(*o.SentAt) {
		return nil, notFound("supplier link", "")
	}
	if s.timestamp().After(payload.IssuedAt.Add(s.ttl)) {
		return nil, invalid("token", "supplier link has expired")
	}
	return o, nil
}

func (s *PurchaseOrderService) move(ctx context.Context, id string, fn func(*schema.PurchaseOrder) error) (*schema.OrderView, error) {
	o, err := ordersOf(s.store).mutate(ctx, id, func(o *schema.PurchaseOrder) error {
		if err := fn(o); err != nil {
			return err
		}
		touch(&o.Meta, s.base)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orderView(newResolver(ctx, s.base), *o), nil
}

// record appends to the order history.
func (s *PurchaseOrderService) record(o *schema.PurchaseOrder, event, by, note string) {
	o.History = append(o.History, schema.OrderEvent{
		At:     s.timestamp(),
		Status: o.Status,
		Event:  event,
		By:     by,
		Note:   strings.TrimSpace(note),
	})
}

// prepareItems validates order lines and fills descriptions and units from
// linked materials.
func (s *PurchaseOrderService) prepareItems(ctx context.Context, projectID string, in []schema.OrderItem) ([]schema.OrderItem, error) {
	if len(in) == 0 {
		return nil, invalid("items", "an order needs at least one item")
	}
	items := make([]schema.OrderItem, 0, len(in))
	for i, item := range in {
		item.MaterialID = strings.TrimSpace(item.MaterialID)
		item.Description = strings.TrimSpace(item.Description)
		item.Unit = strings.TrimSpace(item.Unit)
		item.QuantityAccepted, item.QuantityReceived = 0, 0
		if item.MaterialID != "" {
			m, err := materialsOf(s.store).get(ctx, item.MaterialID)
			if errors.Is(err, ErrNotFound) {
				return nil, invalid("items", "material %q of item %d does not exist", item.MaterialID, i+1)
			}
			if err != nil {
				return nil, err
			}
			if m.ProjectID != projectID {
				return nil, invalid("items", "material of item %d belongs to another project", i+1)
			}
			if item.Description == "" {
				item.Description = m.Name
			}
			if item.Unit == "" {
				item.Unit = m.Unit
			}
		}
		if item.Description == "" {
			return nil, invalid("items", "item %d needs a description", i+1)
		}
		if item.Quantity <= 0 {
			return nil, invalid("items", "quantity of item %d must be greater than zero", i+1)
		}
		if item.UnitPrice.IsNegative() {
			return nil, invalid("items", "unit price of item %d cannot be negative", i+1)
		}
		items = append(items, item)
	}
	return items, nil
}

func applyOrderInput(o *schema.PurchaseOrder, in OrderInput) {
	if in.ExpectedDelivery != nil {
		o.ExpectedDelivery = in.ExpectedDelivery
		if in.ExpectedDelivery.IsZero() {
			o.ExpectedDelivery = nil
		}
	}
	if in.Notes != nil {
		o.Notes = text(in.Notes)
	}
}

func orderTotal(items []schema.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total.Round(2)
}

func orderView(r *resolver, o schema.PurchaseOrder) *schema.OrderView {
	return &schema.OrderView{
		PurchaseOrder: o,
		ProjectName:   r.project(o.ProjectID),
		SupplierName:  r.supplierName(o.SupplierID),
	}
}
