package schema

import "github.com/shopspring/decimal"

// Collection names.
const (
	CollectionProjects       = "projects"
	CollectionPhases         = "phases"
	CollectionPhaseTemplates = "phase_templates"
	CollectionMaterials      = "materials"
	CollectionServices       = "professional_services"
	CollectionActivities     = "professional_activities"
	CollectionSuppliers      = "suppliers"
	CollectionOrders         = "purchase_orders"
	CollectionFinances       = "project_finances"
	CollectionCounters       = "counters"
)

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

// ValidProjectStatuses is the canonical set of accepted project statuses.
var ValidProjectStatuses = map[ProjectStatus]bool{
	ProjectPlanning: true, ProjectActive: true, ProjectOnHold: true,
	ProjectCompleted: true, ProjectCancelled: true,
}

type Project struct {
	Meta
	Name        string          `json:"name"`
	Code        string          `json:"code,omitempty"`
	Client      string          `json:"client,omitempty"`
	Location    string          `json:"location,omitempty"`
	Description string          `json:"description,omitempty"`
	Status      ProjectStatus   `json:"status"`
	Budget      decimal.Decimal `json:"budget"`
	StartDate   *Date           `json:"startDate,omitempty"`
	EndDate     *Date           `json:"endDate,omitempty"`
}

// ProjectView is a project with its live phases.
type ProjectView struct {
	Project
	Phases []Phase `json:"phases"`
}

type PhaseStatus string

const (
	PhaseNotStarted PhaseStatus = "not_started"
	PhaseInProgress PhaseStatus = "in_progress"
	PhaseCompleted  PhaseStatus = "completed"
)

// ValidPhaseStatuses is the canonical set of accepted phase statuses.
var ValidPhaseStatuses = map[PhaseStatus]bool{
	PhaseNotStarted: true, PhaseInProgress: true, PhaseCompleted: true,
}

type Phase struct {
	Meta
	ProjectID   string          `json:"projectId"`
	Name        string          `json:"name"`
	Order       int             `json:"order"`
	Description string          `json:"description,omitempty"`
	Status      PhaseStatus     `json:"status"`
	Budget      decimal.Decimal `json:"budget"`
	StartDate   *Date           `json:"startDate,omitempty"`
	EndDate     *Date           `json:"endDate,omitempty"`
	TemplateID  string          `json:"templateId,omitempty"`
}

// PhaseTemplateEntry is one phase laid out by a template.
type PhaseTemplateEntry struct {
	Name         string          `json:"name"`
	Order        int             `json:"order"`
	Description  string          `json:"description,omitempty"`
	BudgetShare  decimal.Decimal `json:"budgetShare"` // percent of project budget
	DurationDays int             `json:"durationDays"`
}

type PhaseTemplate struct {
	Meta
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Phases      []PhaseTemplateEntry `json:"phases"`
}
