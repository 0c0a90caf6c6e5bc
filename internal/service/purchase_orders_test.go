package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/celerix-dev/celerix-build/pkg/docstore"
	"github.com/celerix-dev/celerix-build/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderCreate(t *testing.T) {
	f := setup(t)
	p := f.project(t, "Site", "10000")
	sup := f.supplier(t, "BuildMart")
	m := f.approvedMaterial(t, p.ID, "Cement", 40, "7.25")

	items := []schema.OrderItem{
		{MaterialID: m.ID, Quantity: 40, UnitPrice: dec("7.10"), QuantityAccepted: 99},
		{Description: "Delivery", Quantity: 1, UnitPrice: dec("35")},
	}
	o, err := f.svc.Orders.Create(f.ctx, accountant, OrderInput{
		ProjectID: str(p.ID), SupplierID: str(sup.ID), Items: &items,
	})
	require.NoError(t, err)

	assert.Equal(t, "PO-2026-0001", o.Number)
	assert.Equal(t, schema.OrderDraft, o.Status)
	assert.True(t, o.Total.Equal(dec("319")), "got %s", o.Total)
	assert.Equal(t, "Cement", o.Items[0].Description, "description comes from the material")
	assert.Equal(t, "pcs", o.Items[0].Unit)
	assert.Zero(t, o.Items[0].QuantityAccepted, "supplier quantities cannot be set by the buyer")
	assert.Equal(t, "BuildMart", o.SupplierName)
	require.Len(t, o.History, 1)
	assert.Equal(t, "created", o.History[0].Event)

	second, err := f.svc.Orders.Create(f.ctx, accountant, OrderInput{
		ProjectID: str(p.ID), SupplierID: str(sup.ID), Items: &items,
	})
	require.NoError(t, err)
	assert.Equal(t, "PO-2026-0002", second.Number)
}

func TestOrderNumbersRestartEachYear(t *testing.T) {
	f := setup(t)
	p := f.project(t, "Site", "10000")
	sup := f.supplier(t, "BuildMart")
	items := []schema.OrderItem{{Description: "Nails", Quantity: 1, UnitPrice: dec("3")}}
	in := OrderInput{ProjectID: str(p.ID), SupplierID: str(sup.ID), Items: &items}

	_, err := f.svc.Orders.Create(f.ctx, accountant, in)
	require.NoError(t, err)
	f.clock.Advance(365 * 24 * time.Hour)
	o, err := f.svc.Orders.Create(f.ctx, accountant, in)
	require.NoError(t, err)
	assert.Equal(t, "PO-2027-0001", o.Number)
}

func TestOrderCreateValidation(t *testing.T) {
	f := setup(t)
	p := f.project(t, "Site", "10000")
	other := f.project(t, "Other", "10000")
	sup := f.supplier(t, "BuildMart")
	foreign := f.approvedMaterial(t, other.ID, "Foreign", 1, "1")

	cases := map[string]struct {
		in    OrderInput
		field string
	}{
		"missing supplier": {OrderInput{ProjectID: str(p.ID), Items: &[]schema.OrderItem{{Description: "A", Quantity: 1}}}, "supplierId"},
		"unknown supplier": {OrderInput{ProjectID: str(p.ID), SupplierID: str("nope"), Items: &[]schema.OrderItem{{Description: "A", Quantity: 1}}}, "supplierId"},
		"no items":         {OrderInput{ProjectID: str(p.ID), SupplierID: str(sup.ID), Items: &[]schema.OrderItem{}}, "items"},
		"zero quantity":    {OrderInput{ProjectID: str(p.ID), SupplierID: str(sup.ID), Items: &[]schema.OrderItem{{Description: "A"}}}, "items"},
		"negative price":   {OrderInput{ProjectID: str(p.ID), SupplierID: str(sup.ID), Items: &[]schema.OrderItem{{Description: "A", Quantity: 1, UnitPrice: dec("-1")}}}, "items"},
		"no description":   {OrderInput{ProjectID: str(p.ID), SupplierID: str(sup.ID), Items: &[]schema.OrderItem{{Quantity: 1}}}, "items"},
		"foreign material": {OrderInput{ProjectID: str(p.ID), SupplierID: str(sup.ID), Items: &[]schema.OrderItem{{MaterialID: foreign.ID, Quantity: 1}}}, "items"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Orders.Create(f.ctx, accountant, tc.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestOrderApprovalAndEditing(t *testing.T) {
	f := setup(t)
	p := f.project(t, "Site", "10000")
	sup := f.supplier(t, "BuildMart")
	items := []schema.OrderItem{{Description: "Sand", Quantity: 2, UnitPrice: dec("40")}}
	o, err := f.svc.Orders.Create(f.ctx, accountant, OrderInput{ProjectID: str(p.ID), SupplierID: str(sup.ID), Items: &items})
	require.NoError(t, err)

	more := []schema.OrderItem{{Description: "Sand", Quantity: 3, UnitPrice: dec("40")}}
	o, err = f.svc.Orders.Update(f.ctx, accountant, o.ID, OrderInput{Items: &more, Notes: str("rush")})
	require.NoError(t, err)
	assert.True(t, o.Total.Equal(dec("120")))
	assert.Equal(t, "rush", o.Notes)

	_, err = f.svc.Orders.Reject(f.ctx, manager, o.ID, "no")
	var terr *TransitionError
	require.ErrorAs(t, err, &terr, "only pending orders can be rejected")

	_, err = f.svc.Orders.Submit(f.ctx, accountant, o.ID, "")
	require.NoError(t, err)
	_, err = f.svc.Orders.Update(f.ctx, accountant, o.ID, OrderInput{Notes: str("late edit")})
	require.ErrorAs(t, err, &terr, "pending orders are locked")
	require.ErrorAs(t, f.svc.Orders.Delete(f.ctx, accountant, o.ID), &terr)

	o, err = f.svc.Orders.Reject(f.ctx, manager, o.ID, "too expensive")
	require.NoError(t, err)
	assert.Equal(t, schema.OrderRejected, o.Status)

	o, err = f.svc.Orders.Update(f.ctx, accountant, o.ID, OrderInput{Notes: str("cheaper")})
	require.NoError(t, err)
	_, err = f.svc.Orders.Submit(f.ctx, accountant, o.ID, "")
	require.NoError(t, err)
	o, err = f.svc.Orders.Approve(f.ctx, manager, o.ID, "")
	require.NoError(t, err)
	assert.Equal(t, schema.OrderApproved, o.Status)
	assert.Len(t, o.ApprovalChain, 4)

	_, err = f.svc.Orders.Send(f.ctx, accountant, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderSendAndSupplierAccepts(t *testing.T) {
	f := setup(t)
	p := f.project(t, "Site", "10000")
	sup := f.supplier(t, "BuildMart")
	m := f.approvedMaterial(t, p.ID, "Cement", 40, "7")

	res := f.sentOrder(t, p.ID, sup.ID, []schema.OrderItem{{MaterialID: m.ID, Quantity: 40, UnitPrice: dec("7")}})
	assert.Equal(t, schema.OrderSent, res.Order.Status)
	assert.NotNil(t, res.Order.SentAt)
	assert.NotEmpty(t, res.Token)
	assert.True(t, strings.HasPrefix(res.ResponseURL, "https://build.example.com/api/supplier/orders/"), res.ResponseURL)
	assert.True(t, strings.HasSuffix(res.ResponseURL, res.Token))

	mat, err := f.svc.Materials.Get(f.ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, schema.MaterialOrdered, mat.Status)

	view, err := f.svc.Orders.ViewByToken(f.ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Order.Number, view.Number)
	assert.Equal(t, "Site", view.ProjectName)
	assert.True(t, view.CanRespond)
	assert.Equal(t, "Awaiting supplier response", view.Label)

	view, err = f.svc.Orders.RespondByToken(f.ctx, res.Token, ResponseInput{
		Decision: schema.DecisionAccept, Note: "dispatching friday", DeliveryDate: day("2026-03-20"),
	})
	require.NoError(t, err)
	assert.Equal(t, schema.OrderAccepted, view.Status)
	assert.False(t, view.CanRespond)
	assert.Equal(t, "2026-03-20", view.ExpectedDelivery.String())

	mat, err = f.svc.Materials.Get(f.ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 40.0, mat.QuantityPurchased, "accepted quantities count as purchased")

	_, err = f.svc.Orders.RespondByToken(f.ctx, res.Token, ResponseInput{Decision: schema.DecisionDecline})
	var terr *TransitionError
	require.ErrorAs(t, err, &terr, "suppliers answer once")

	tr, err := f.svc.Orders.Track(f.ctx, res.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Accepted by supplier", tr.Label)
	assert.False(t, tr.AwaitingResponse)
	require.NotNil(t, tr.SupplierResponse)
	assert.Equal(t, "portal", tr.SupplierResponse.Via)
	require.NotNil(t, tr.DaysSinceSent)
	assert.Zero(t, *tr.DaysSinceSent)
	events := make([]string, 0, len(tr.History))
	for _, e := range tr.History {
		events = append(events, e.Event)
	}
	assert.Equal(t, []string{
		"created", "submitted for approval", "approved", "sent to supplier", "supplier responded: accept",
	}, events)
}

func TestOrderPartialAcceptanceAndReceiving(t *testing.T) {
	f := setup(t)
	p := f.project(t, "Site", "10000")
	sup := f.supplier(t, "BuildMart")
	bricks := f.approvedMaterial(t, p.ID, "Bricks", 1000, "0.4")
	mortar := f.approvedMaterial(t, p.ID, "Mortar", 20, "9")

	res := f.sentOrder(t, p.ID, sup.ID, []schema.OrderItem{
		{MaterialID: bricks.ID, Quantity: 1000, UnitPrice: dec("0.4")},
		{MaterialID: mortar.ID, Quantity: 20, UnitPrice: dec("9")},
	})

	var verr *ValidationError
	_, err := f.svc.Orders.RecordResponse(f.ctx, accountant, res.Order.ID, ResponseInput{
		Decision: schema.DecisionPartial, QuantitiesAccepted: []float64{1000, 20},
	})
	require.ErrorAs(t, err, &verr, "a full acceptance is not partial")
	_, err = f.svc.Orders.RecordResponse(f.ctx, accountant, res.Order.ID, ResponseInput{
		Decision: schema.DecisionPartial, QuantitiesAccepted: []float64{0, 0},
	})
	require.ErrorAs(t, err, &verr)
	_, err = f.svc.Orders.RecordResponse(f.ctx, accountant, res.Order.ID, ResponseInput{
		Decision: schema.DecisionPartial, QuantitiesAccepted: []float64{1200, 0},
	})
	require.ErrorAs(t, err, &verr)
	_, err = f.svc.Orders.RecordResponse(f.ctx, accountant, res.Order.ID, ResponseInput{Decision: "maybe"})
	require.ErrorAs(t, err, &verr)

	o, err := f.svc.Orders.RecordResponse(f.ctx, accountant, res.Order.ID, ResponseInput{
		Decision: schema.DecisionPartial, QuantitiesAccepted: []float64{600, 20},
	})
	require.NoError(t, err)
	assert.Equal(t, schema.OrderPartiallyAccepted, o.Status)
	assert.Equal(t, accountant.ID, o.SupplierResponse.Via)

	// Receive part of the bricks.
	o, err = f.svc.Orders.Receive(f.ctx, engineer, o.ID, ReceiveInput{QuantitiesReceived: []float64{400, 0}})
	require.NoError(t, err)
	assert.Equal(t, schema.OrderPartiallyReceived, o.Status)
	assert.Equal(t, 400.0, o.Items[0].QuantityReceived)

	b, err := f.svc.Materials.Get(f.ctx, bricks.ID)
	require.NoError(t, err)
	assert.Equal(t, 600.0, b.QuantityPurchased)
	assert.Equal(t, 400.0, b.QuantityDelivered)

	_, err = f.svc.Orders.Receive(f.ctx, engineer, o.ID, ReceiveInput{QuantitiesReceived: []float64{300, 0}})
	require.ErrorAs(t, err, &verr, "cannot receive more than accepted")

	// Receive the rest.
	o, err = f.svc.Orders.Receive(f.ctx, engineer, o.ID, ReceiveInput{Note: "all in"})
	require.NoError(t, err)
	assert.Equal(t, schema.OrderReceived, o.Status)
	assert.NotNil(t, o.ReceivedAt)

	mo, err := f.svc.Materials.Get(f.ctx, mortar.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, mo.QuantityDelivered)
	assert.Equal(t, schema.MaterialReceived, mo.Status)

	_, err = f.svc.Orders.Receive(f.ctx, engineer, o.ID, ReceiveInput{})
	var terr *TransitionError
	require.ErrorAs(t, err, &terr)
}

func TestOrderDeclineAndCancel(t *testing.T) {
	f := setup(t)
	p := f.project(t, "Site", "10000")
	sup := f.supplier(t, "BuildMart")
	res := f.sentOrder(t, p.ID, sup.ID, []schema.OrderItem{{Description: "Crane hire", Quantity: 1, UnitPrice: dec("900")}})

	o, err := f.svc.Orders.RecordResponse(f.ctx, accountant, res.Order.ID, ResponseInput{Decision: schema.DecisionDecline, Note: "fully booked"})
	require.NoError(t, err)
	assert.Equal(t, schema.OrderDeclined, o.Status)

	_, err = f.svc.Orders.Receive(f.ctx, engineer, o.ID, ReceiveInput{})
	var terr *TransitionError
	require.ErrorAs(t, err, &terr)

	o, err = f.svc.Orders.Cancel(f.ctx, accountant, o.ID, "found another crane")
	require.NoError(t, err)
	assert.Equal(t, schema.OrderCancelled, o.Status)
	assert.Equal(t, "found another crane", o.History[len(o.History)-1].Note)

	_, err = f.svc.Orders.Cancel(f.ctx, accountant, o.ID, "")
	require.ErrorAs(t, err, &terr)
}

func TestSupplierLinks(t *testing.T) {
	f := setup(t)
	p := f.project(t, "Site", "10000")
	sup := f.supplier(t, "BuildMart")
	res := f.sentOrder(t, p.ID, sup.ID, []schema.OrderItem{{Description: "Scaffold", Quantity: 1, UnitPrice: dec("500")}})

	_, err := f.svc.Orders.ViewByToken(f.ctx, "garbage")
	assert.ErrorIs(t, err, ErrNotFound)

	// Resending reissues the link and retires the old one.
	resent, err := f.svc.Orders.Send(f.ctx, accountant, res.Order.ID)
	require.NoError(t, err)
	assert.NotEqual(t, res.Token, resent.Token)
	_, err = f.svc.Orders.ViewByToken(f.ctx, res.Token)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Orders.ViewByToken(f.ctx, resent.Token)
	require.NoError(t, err)

	f.clock.Advance(15 * 24 * time.Hour)
	_, err = f.svc.Orders.ViewByToken(f.ctx, resent.Token)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "token", verr.Field)

	tr, err := f.svc.Orders.Track(f.ctx, res.Order.ID)
	require.NoError(t, err)
	assert.True(t, tr.AwaitingResponse)
	assert.Equal(t, 15, *tr.DaysSinceSent)
}

func TestOrderListFilters(t *testing.T) {
	f := setup(t)
	p := f.project(t, "Site", "10000")
	a := f.supplier(t, "A")
	b := f.supplier(t, "B")
	items := []schema.OrderItem{{Description: "Thing", Quantity: 1, UnitPrice: dec("1")}}
	_, err := f.svc.Orders.Create(f.ctx, accountant, OrderInput{ProjectID: str(p.ID), SupplierID: str(a.ID), Items: &items})
	require.NoError(t, err)
	f.sentOrder(t, p.ID, b.ID, items)

	list, total, err := f.svc.Orders.List(f.ctx, OrderFilter{SupplierID: b.ID}, Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "B", list[0].SupplierName)

	list, _, err = f.svc.Orders.List(f.ctx, OrderFilter{Status: schema.OrderDraft}, Page{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, _, err = f.svc.Orders.List(f.ctx, OrderFilter{Search: "po-2026-0002"}, Page{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

// updateFailingStore fails every Update on one collection.
type updateFailingStore struct {
	docstore.Store
	collection string
}

func (s updateFailingStore) Update(ctx context.Context, collection, id string, fn docstore.UpdateFunc) error {
	if collection == s.collection {
		return errors.New("write refused")
	}
	return s.Store.Update(ctx, collection, id, fn)
}

func TestOrderReceiveReportsMaterialsLeftBehind(t *testing.T) {
	f := setup(t)
	p := f.project(t, "Site", "10000")
	sup := f.supplier(t, "BuildMart")
	bricks := f.approvedMaterial(t, p.ID, "Bricks", 100, "0.4")
	mortar := f.approvedMaterial(t, p.ID, "Mortar", 10, "9")
	res := f.sentOrder(t, p.ID, sup.ID, []schema.OrderItem{
		{MaterialID: bricks.ID, Quantity: 100, UnitPrice: dec("0.4")},
		{MaterialID: mortar.ID, Quantity: 10, UnitPrice: dec("9")},
	})
	o, err := f.svc.Orders.RecordResponse(f.ctx, accountant, res.Order.ID, ResponseInput{Decision: schema.DecisionAccept})
	require.NoError(t, err)

	var logs bytes.Buffer
	svc := New(updateFailingStore{Store: f.store, collection: schema.CollectionMaterials}, Options{
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
	})
	_, err = svc.Orders.Receive(f.ctx, engineer, o.ID, ReceiveInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), o.ID)
	assert.Contains(t, err.Error(), bricks.ID)
	assert.Contains(t, err.Error(), mortar.ID)
	assert.Equal(t, 2, strings.Count(logs.String(), "level=ERROR"))

	// The order keeps the delivery; the materials do not.
	got, err := f.svc.Orders.Get(f.ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, schema.OrderReceived, got.Status)
	b, err := f.svc.Materials.Get(f.ctx, bricks.ID)
	require.NoError(t, err)
	assert.Zero(t, b.QuantityDelivered)
}
