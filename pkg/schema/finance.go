package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Date        Date            `json:"date"`
	RecordedBy  string          `json:"recordedBy"`
	RecordedAt  time.Time       `json:"recordedAt"`
}

// ProjectFinance holds the financial settings of a project; its id is the project id.
type ProjectFinance struct {
	Meta
	ProjectID   string           `json:"projectId"`
	Budget      *decimal.Decimal `json:"budget,omitempty"`
	Contingency decimal.Decimal  `json:"contingency"`
	Notes       string           `json:"notes,omitempty"`
	Expenses    []Expense        `json:"expenses"`
}

type FinanceHealth string

const (
	HealthOnTrack    FinanceHealth = "on_track"
	HealthAtRisk     FinanceHealth = "at_risk"
	HealthOverBudget FinanceHealth = "over_budget"
)

type MaterialCosts struct {
	Estimated decimal.Decimal `json:"estimated"`
	Purchased decimal.Decimal `json:"purchased"`
}

type OrderCosts struct {
	Committed decimal.Decimal `json:"committed"`
	Received  decimal.Decimal `json:"received"`
}

type ProfessionalCosts struct {
	ContractValue decimal.Decimal `json:"contractValue"`
	FeesApproved  decimal.Decimal `json:"feesApproved"`
	FeesPending   decimal.Decimal `json:"feesPending"`
}

// FinanceSummary is recomputed from the underlying documents on every read.
type FinanceSummary struct {
	ProjectID         string            `json:"projectId"`
	ProjectName       string            `json:"projectName"`
	Budget            decimal.Decimal   `json:"budget"`
	Contingency       decimal.Decimal   `json:"contingency"`
	Available         decimal.Decimal   `json:"available"`
	Materials         MaterialCosts     `json:"materials"`
	PurchaseOrders    OrderCosts        `json:"purchaseOrders"`
	Professional      ProfessionalCosts `json:"professional"`
	OtherExpenses     decimal.Decimal   `json:"otherExpenses"`
	Spent             decimal.Decimal   `json:"spent"`
	Committed         decimal.Decimal   `json:"committed"`
	Remaining         decimal.Decimal   `json:"remaining"`
	PercentUsed       decimal.Decimal   `json:"percentUsed"`
	Health            FinanceHealth     `json:"health"`
	AllocatedToPhases decimal.Decimal   `json:"allocatedToPhases"`
	Expenses          []Expense         `json:"expenses"`
	Notes             string            `json:"notes,omitempty"`
}

type PortfolioProject struct {
	ProjectID   string          `json:"projectId"`
	Name        string          `json:"name"`
	Status      ProjectStatus   `json:"status"`
	Budget      decimal.Decimal `json:"budget"`
	Spent       decimal.Decimal `json:"spent"`
	Committed   decimal.Decimal `json:"committed"`
	Remaining   decimal.Decimal `json:"remaining"`
	PercentUsed decimal.Decimal `json:"percentUsed"`
	Health      FinanceHealth   `json:"health"`
}

type PortfolioTotals struct {
	Budget    decimal.Decimal `json:"budget"`
	Spent     decimal.Decimal `json:"spent"`
	Committed decimal.Decimal `json:"committed"`
	Remaining decimal.Decimal `json:"remaining"`
}

type PendingApprovals struct {
	Materials      int `json:"materials"`
	Activities     int `json:"activities"`
	PurchaseOrders int `json:"purchaseOrders"`
}

type Portfolio struct {
	Projects         []PortfolioProject    `json:"projects"`
	Totals           PortfolioTotals       `json:"totals"`
	ByStatus         map[ProjectStatus]int `json:"byStatus"`
	PendingApprovals PendingApprovals      `json:"pendingApprovals"`
	GeneratedAt      time.Time             `json:"generatedAt"`
}
