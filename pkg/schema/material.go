package schema

import "github.com/shopspring/decimal"

type MaterialStatus string

const (
	MaterialDraft           MaterialStatus = "draft"
	MaterialPendingApproval MaterialStatus = "pending_approval"
	MaterialApproved        MaterialStatus = "approved"
	MaterialRejected        MaterialStatus = "rejected"
	MaterialOrdered         MaterialStatus = "ordered"
	MaterialReceived        MaterialStatus = "received"
)

// ValidMaterialStatuses is the canonical set of accepted material statuses.
var ValidMaterialStatuses = map[MaterialStatus]bool{
	MaterialDraft: true, MaterialPendingApproval: true, MaterialApproved: true,
	MaterialRejected: true, MaterialOrdered: true, MaterialReceived: true,
}

// Material is a line of material or equipment required by a project.
type Material struct {
	Meta
	ProjectID         string          `json:"projectId"`
	PhaseID           string          `json:"phaseId,omitempty"`
	SupplierID        string          `json:"supplierId,omitempty"`
	Name              string          `json:"name"`
	Category          string          `json:"category,omitempty"`
	Unit              string          `json:"unit,omitempty"`
	LibraryRef        string          `json:"libraryRef,omitempty"`
	UnitCost          decimal.Decimal `json:"unitCost"`
	QuantityNeeded    float64         `json:"quantityNeeded"`
	QuantityPurchased float64         `json:"quantityPurchased"`
	QuantityDelivered float64         `json:"quantityDelivered"`
	QuantityUsed      float64         `json:"quantityUsed"`
	Notes             string          `json:"notes,omitempty"`
	Status            MaterialStatus  `json:"status"`
	ApprovalChain     []ApprovalEntry `json:"approvalChain"`
	RejectionReason   string          `json:"rejectionReason,omitempty"`
}

// Discrepancy flags.
const (
	FlagUnderPurchased   = "under_purchased"
	FlagOverPurchased    = "over_purchased"
	FlagAwaitingDelivery = "awaiting_delivery"
)

// MaterialDiscrepancy compares planned, purchased, delivered and used quantities.
type MaterialDiscrepancy struct {
	ToPurchase       float64         `json:"toPurchase"`
	OverPurchased    float64         `json:"overPurchased"`
	AwaitingDelivery float64         `json:"awaitingDelivery"`
	OnSite           float64         `json:"onSite"`
	UsagePercent     float64         `json:"usagePercent"`
	EstimatedCost    decimal.Decimal `json:"estimatedCost"`
	PurchasedCost    decimal.Decimal `json:"purchasedCost"`
	Flags            []string        `json:"flags"`
}

// MaterialView is a material with its references resolved for display.
type MaterialView struct {
	Material
	ProjectName  string              `json:"projectName,omitempty"`
	PhaseName    string              `json:"phaseName,omitempty"`
	SupplierName string              `json:"supplierName,omitempty"`
	Discrepancy  MaterialDiscrepancy `json:"discrepancy"`
}
