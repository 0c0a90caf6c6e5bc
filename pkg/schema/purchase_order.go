package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

type Supplier struct {
	Meta
	Name        string `json:"name"`
	ContactName string `json:"contactName,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type OrderStatus string

const (
	OrderDraft             OrderStatus = "draft"
	OrderPendingApproval   OrderStatus = "pending_approval"
	OrderApproved          OrderStatus = "approved"
	OrderRejected          OrderStatus = "rejected"
	OrderSent              OrderStatus = "sent"
	OrderAccepted          OrderStatus = "accepted"
	OrderPartiallyAccepted OrderStatus = "partially_accepted"
	OrderDeclined          OrderStatus = "declined"
	OrderPartiallyReceived OrderStatus = "partially_received"
	OrderReceived          OrderStatus = "received"
	OrderCancelled         OrderStatus = "cancelled"
)

var ValidOrderStatuses = map[OrderStatus]bool{
	OrderDraft: true, OrderPendingApproval: true, OrderApproved: true,
	OrderRejected: true, OrderSent: true, OrderAccepted: true,
	OrderPartiallyAccepted: true, OrderDeclined: true,
	OrderPartiallyReceived: true, OrderReceived: true, OrderCancelled: true,
}

// OrderStatusLabels are the human-readable tracking labels per status.
var OrderStatusLabels = map[OrderStatus]string{
	OrderDraft:             "Draft",
	OrderPendingApproval:   "Awaiting approval",
	OrderApproved:          "Approved - not sent",
	OrderRejected:          "Rejected",
	OrderSent:              "Awaiting supplier response",
	OrderAccepted:          "Accepted by supplier",
	OrderPartiallyAccepted: "Partially accepted by supplier",
	OrderDeclined:          "Declined by supplier",
	OrderPartiallyReceived: "Partially received",
	OrderReceived:          "Received",
	OrderCancelled:         "Cancelled",
}

// Open reports whether the order still commits supplier capacity or money.
func (s OrderStatus) Open() bool {
	switch s {
	case OrderApproved, OrderSent, OrderAccepted, OrderPartiallyAccepted, OrderPartiallyReceived:
		return true
	}
	return false
}

type OrderItem struct {
	MaterialID       string          `json:"materialId,omitempty"`
	Description      string          `json:"description"`
	Unit             string          `json:"unit,omitempty"`
	Quantity         float64         `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	QuantityAccepted float64         `json:"quantityAccepted"`
	QuantityReceived float64         `json:"quantityReceived"`
}

// LineTotal is quantity times unit price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromFloat(i.Quantity))
}

type SupplierDecision string

const (
	DecisionAccept  SupplierDecision = "accept"
	DecisionDecline SupplierDecision = "decline"
	DecisionPartial SupplierDecision = "partial"
)

// SupplierResponse is the supplier's answer to a sent order.
type SupplierResponse struct {
	Decision     SupplierDecision `json:"decision"`
	Note         string           `json:"note,omitempty"`
	DeliveryDate *Date            `json:"deliveryDate,omitempty"`
	RespondedAt  time.Time        `json:"respondedAt"`
	Via          string           `json:"via"` // "portal" or the staff user id
}

// OrderEvent is an entry in an order's append-only history.
type OrderEvent struct {
	At     time.Time   `json:"at"`
	Status OrderStatus `json:"status"`
	Event  string      `json:"event"`
	By     string      `json:"by,omitempty"`
	Note   string      `json:"note,omitempty"`
}

type PurchaseOrder struct {
	Meta
	Number           string            `json:"number"`
	ProjectID        string            `json:"projectId"`
	SupplierID       string            `json:"supplierId"`
	Items            []OrderItem       `json:"items"`
	Total            decimal.Decimal   `json:"total"`
	ExpectedDelivery *Date             `json:"expectedDelivery,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	Status           OrderStatus       `json:"status"`
	ApprovalChain    []ApprovalEntry   `json:"approvalChain"`
	RejectionReason  string            `json:"rejectionReason,omitempty"`
	SupplierResponse *SupplierResponse `json:"supplierResponse,omitempty"`
	History          []OrderEvent      `json:"history"`
	SentAt           *time.Time        `json:"sentAt,omitempty"`
	ReceivedAt       *time.Time        `json:"receivedAt,omitempty"`
}

// OrderView is an order with its references resolved for display.
type OrderView struct {
	PurchaseOrder
	ProjectName  string `json:"projectName,omitempty"`
	SupplierName string `json:"supplierName,omitempty"`
}

// OrderTracking summarises where an order stands with its supplier.
type OrderTracking struct {
	OrderID          string            `json:"orderId"`
	Number           string            `json:"number"`
	Status           OrderStatus       `json:"status"`
	Label            string            `json:"label"`
	AwaitingResponse bool              `json:"awaitingResponse"`
	DaysSinceSent    *int              `json:"daysSinceSent,omitempty"`
	SupplierResponse *SupplierResponse `json:"supplierResponse,omitempty"`
	History          []OrderEvent      `json:"history"`
}

// SupplierOrderView is what a supplier sees through the response link.
type SupplierOrderView struct {
	Number           string          `json:"number"`
	ProjectName      string          `json:"projectName"`
	SupplierName     string          `json:"supplierName"`
	Items            []OrderItem     `json:"items"`
	Total            decimal.Decimal `json:"total"`
	ExpectedDelivery *Date           `json:"expectedDelivery,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	Status           OrderStatus     `json:"status"`
	Label            string          `json:"label"`
	CanRespond       bool            `json:"canRespond"`
}
