package service

import (
	"context"

	"github.com/celerix-dev/celerix-build/pkg/schema"
	"github.com/shopspring/decimal"
)

// ProfessionalServiceInput carries create and update fields; nil fields are left unchanged.
type ProfessionalServiceInput struct {
	ProjectID        *string               `json:"projectId"`
	ProfessionalName *string               `json:"professionalName"`
	Discipline       *schema.Discipline    `json:"discipline"`
	Company          *string               `json:"company"`
	Email            *string               `json:"email"`
	Phone            *string               `json:"phone"`
	FeeType          *schema.FeeType       `json:"feeType"`
	ContractValue    *decimal.Decimal      `json:"contractValue"`
	HourlyRate       *decimal.Decimal      `json:"hourlyRate"`
	Status           *schema.ServiceStatus `json:"status"`
	StartDate        *schema.Date          `json:"startDate"`
	EndDate          *schema.Date          `json:"endDate"`
}

type ProfessionalServiceFilter struct {
	ProjectID  string
	Status     schema.ServiceStatus
	Discipline schema.Discipline
	Search     string
}

// ProfessionalServiceService manages the assignment of external
// professionals to projects.
type ProfessionalServiceService struct {
	base
}

func (s *ProfessionalServiceService) Create(ctx context.Context, actor schema.Actor, in ProfessionalServiceInput) (*schema.ProfessionalService, error) {
	projectID := text(in.ProjectID)
	if projectID == "" {
		return nil, invalid("projectId", "projectId is required")
	}
	if err := requireLive(ctx, projectsOf(s.store), "projectId", projectID); err != nil {
		return nil, err
	}
	ps := &schema.ProfessionalService{
		Meta:       newMeta(s.base, actor),
		ProjectID:  projectID,
		Discipline: schema.DisciplineOther,
		FeeType:    schema.FeeFixed,
		Status:     schema.ServiceActive,
	}
	if err := applyServiceInput(ps, in); err != nil {
		return nil, err
	}
	if err := servicesOf(s.store).insert(ctx, ps); err != nil {
		return nil, err
	}
	return ps, nil
}

func (s *ProfessionalServiceService) Get(ctx context.Context, id string) (*schema.ProfessionalService, error) {
	return servicesOf(s.store).get(ctx, id)
}

func (s *ProfessionalServiceService) List(ctx context.Context, f ProfessionalServiceFilter, page Page) ([]schema.ProfessionalService, int, error) {
	all, err := servicesOf(s.store).list(ctx)
	if err != nil {
		return nil, 0, err
	}
	items := filter(all, func(ps *schema.ProfessionalService) bool {
		switch {
		case f.ProjectID != "" && ps.ProjectID != f.ProjectID:
			return false
		case f.Status != "" && ps.Status != f.Status:
			return false
		case f.Discipline != "" && ps.Discipline != f.Discipline:
			return false
		}
		return matches(f.Search, ps.ProfessionalName, ps.Company, ps.Email)
	})
	sortNewest(items)
	return paginate(items, page)
}

func (s *ProfessionalServiceService) Update(ctx context.Context, actor schema.Actor, id string, in ProfessionalServiceInput) (*schema.ProfessionalService, error) {
	return servicesOf(s.store).mutate(ctx, id, func(ps *schema.ProfessionalService) error {
		if in.ProjectID != nil && text(in.ProjectID) != ps.ProjectID {
			return invalid("projectId", "a professional service cannot be moved to another project")
		}
		if err := applyServiceInput(ps, in); err != nil {
			return err
		}
		touch(&ps.Meta, s.base)
		return nil
	})
}

// Delete refuses services that already have approved activities.
func (s *ProfessionalServiceService) Delete(ctx context.Context, actor schema.Actor, id string) error {
	activities, err := activitiesOf(s.store).list(ctx)
	if err != nil {
		return err
	}
	approved := filter(activities, func(a *schema.ProfessionalActivity) bool {
		return a.ServiceID == id && a.Status == schema.ActivityApproved
	})
	if len(approved) > 0 {
		return invalid("id", "professional service has %d approved activities and cannot be deleted", len(approved))
	}
	return servicesOf(s.store).softDelete(ctx, id, s.base, nil)
}

func applyServiceInput(ps *schema.ProfessionalService, in ProfessionalServiceInput) error {
	if in.ProfessionalName != nil {
		ps.ProfessionalName = text(in.ProfessionalName)
	}
	if ps.ProfessionalName == "" {
		return invalid("professionalName", "professionalName is required")
	}
	if in.Discipline != nil {
		if !schema.ValidDisciplines[*in.Discipline] {
			return invalid("discipline", "invalid discipline %q", *in.Discipline)
		}
		ps.Discipline = *in.Discipline
	}
	if in.Company != nil {
		ps.Company = text(in.Company)
	}
	if in.Email != nil {
		ps.Email = text(in.Email)
	}
	if in.Phone != nil {
		ps.Phone = text(in.Phone)
	}
	if in.FeeType != nil {
		if !schema.ValidFeeTypes[*in.FeeType] {
			return invalid("feeType", "invalid fee type %q", *in.FeeType)
		}
		ps.FeeType = *in.FeeType
	}
	if in.ContractValue != nil {
		if in.ContractValue.IsNegative() {
			return invalid("contractValue", "contract value cannot be negative")
		}
		ps.ContractValue = *in.ContractValue
	}
	if in.HourlyRate != nil {
		if in.HourlyRate.IsNegative() {
			return invalid("hourlyRate", "hourly rate cannot be negative")
		}
		ps.HourlyRate = *in.HourlyRate
	}
	if in.Status != nil {
		if !schema.ValidServiceStatuses[*in.Status] {
			return invalid("status", "invalid service status %q", *in.Status)
		}
		ps.Status = *in.Status
	}
	if in.StartDate != nil {
		ps.StartDate = optionalDate(in.StartDate)
	}
	if in.EndDate != nil {
		ps.EndDate = optionalDate(in.EndDate)
	}
	return checkDates(ps.StartDate, ps.EndDate)
}
