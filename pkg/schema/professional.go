package schema

import "github.com/shopspring/decimal"

type Discipline string

const (
	DisciplineArchitect          Discipline = "architect"
	DisciplineStructuralEngineer Discipline = "structural_engineer"
	DisciplineQuantitySurveyor   Discipline = "quantity_surveyor"
	DisciplineMEPEngineer        Discipline = "mep_engineer"
	DisciplineSurveyor           Discipline = "surveyor"
	DisciplineOther              Discipline = "other"
)

var ValidDisciplines = map[Discipline]bool{
	DisciplineArchitect: true, DisciplineStructuralEngineer: true,
	DisciplineQuantitySurveyor: true, DisciplineMEPEngineer: true,
	DisciplineSurveyor: true, DisciplineOther: true,
}

type FeeType string

const (
	FeeFixed      FeeType = "fixed"
	FeeHourly     FeeType = "hourly"
	FeePercentage FeeType = "percentage"
)

var ValidFeeTypes = map[FeeType]bool{
	FeeFixed: true, FeeHourly: true, FeePercentage: true,
}

type ServiceStatus string

const (
	ServiceActive     ServiceStatus = "active"
	ServiceCompleted  ServiceStatus = "completed"
	ServiceTerminated ServiceStatus = "terminated"
)

var ValidServiceStatuses = map[ServiceStatus]bool{
	ServiceActive: true, ServiceCompleted: true, ServiceTerminated: true,
}

// ProfessionalService assigns an external professional to a project.
type ProfessionalService struct {
	Meta
	ProjectID        string          `json:"projectId"`
	ProfessionalName string          `json:"professionalName"`
	Discipline       Discipline      `json:"discipline"`
	Company          string          `json:"company,omitempty"`
	Email            string          `json:"email,omitempty"`
	Phone            string          `json:"phone,omitempty"`
	FeeType          FeeType         `json:"feeType"`
	ContractValue    decimal.Decimal `json:"contractValue"`
	HourlyRate       decimal.Decimal `json:"hourlyRate"`
	Status           ServiceStatus   `json:"status"`
	StartDate        *Date           `json:"startDate,omitempty"`
	EndDate          *Date           `json:"endDate,omitempty"`
}

type ActivityType string

const (
	ActivitySiteVisit    ActivityType = "site_visit"
	ActivityInspection   ActivityType = "inspection"
	ActivityDesignReview ActivityType = "design_review"
	ActivityReport       ActivityType = "report"
	ActivityMeeting      ActivityType = "meeting"
	ActivityOther        ActivityType = "other"
)

var ValidActivityTypes = map[ActivityType]bool{
	ActivitySiteVisit: true, ActivityInspection: true, ActivityDesignReview: true,
	ActivityReport: true, ActivityMeeting: true, ActivityOther: true,
}

type ActivityStatus string

const (
	ActivityDraft           ActivityStatus = "draft"
	ActivityPendingApproval ActivityStatus = "pending_approval"
	ActivityApproved        ActivityStatus = "approved"
	ActivityRejected        ActivityStatus = "rejected"
)

var ValidActivityStatuses = map[ActivityStatus]bool{
	ActivityDraft: true, ActivityPendingApproval: true,
	ActivityApproved: true, ActivityRejected: true,
}

// ProfessionalActivity is a billable piece of work logged against a service.
type ProfessionalActivity struct {
	Meta
	ServiceID       string          `json:"serviceId"`
	ProjectID       string          `json:"projectId"`
	PhaseID         string          `json:"phaseId,omitempty"`
	ActivityType    ActivityType    `json:"activityType"`
	Title           string          `json:"title"`
	Date            Date            `json:"date"`
	Hours           float64         `json:"hours"`
	Fee             decimal.Decimal `json:"fee"`
	Description     string          `json:"description,omitempty"`
	Findings        string          `json:"findings,omitempty"`
	Status          ActivityStatus  `json:"status"`
	ApprovalChain   []ApprovalEntry `json:"approvalChain"`
	RejectionReason string          `json:"rejectionReason,omitempty"`
}

// ActivityView is an activity with its references resolved for display.
type ActivityView struct {
	ProfessionalActivity
	ProjectName      string `json:"projectName,omitempty"`
	PhaseName        string `json:"phaseName,omitempty"`
	ProfessionalName string `json:"professionalName,omitempty"`
}
