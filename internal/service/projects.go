package service

import (
	"context"
	"sort"

	"github.com/celerix-dev/celerix-build/pkg/schema"
	"github.com/shopspring/decimal"
)

// ProjectInput carries create and update fields; nil fields are left unchanged.
type ProjectInput struct {
	Name        *string               `json:"name"`
	Code        *string               `json:"code"`
	Client      *string               `json:"client"`
	Location    *string               `json:"location"`
	Description *string               `json:"description"`
	Status      *schema.ProjectStatus `json:"status"`
	Budget      *decimal.Decimal      `json:"budget"`
	StartDate   *schema.Date          `json:"startDate"`
	EndDate     *schema.Date          `json:"endDate"`
}

type ProjectFilter struct {
	Status schema.ProjectStatus
	Search string
}

type ProjectService struct {
	base
}

func (s *ProjectService) Create(ctx context.Context, actor schema.Actor, in ProjectInput) (*schema.Project, error) {
	p := &schema.Project{
		Meta:   newMeta(s.base, actor),
		Status: schema.ProjectPlanning,
	}
	if err := applyProjectInput(p, in); err != nil {
		return nil, err
	}
	if err := projectsOf(s.store).insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns the project with its live phases in order.
func (s *ProjectService) Get(ctx context.Context, id string) (*schema.ProjectView, error) {
	p, err := projectsOf(s.store).get(ctx, id)
	if err != nil {
		return nil, err
	}
	phases, err := projectPhases(ctx, s.base, id)
	if err != nil {
		return nil, err
	}
	return &schema.ProjectView{Project: *p, Phases: phases}, nil
}

func (s *ProjectService) List(ctx context.Context, f ProjectFilter, page Page) ([]schema.Project, int, error) {
	all, err := projectsOf(s.store).list(ctx)
	if err != nil {
		return nil, 0, err
	}
	items := filter(all, func(p *schema.Project) bool {
		if f.Status != "" && p.Status != f.Status {
			return false
		}
		return matches(f.Search, p.Name, p.Code, p.Client, p.Location, p.Description)
	})
	sortNewest(items)
	return paginate(items, page)
}

func (s *ProjectService) Update(ctx context.Context, actor schema.Actor, id string, in ProjectInput) (*schema.Project, error) {
	return projectsOf(s.store).mutate(ctx, id, func(p *schema.Project) error {
		if err := applyProjectInput(p, in); err != nil {
			return err
		}
		touch(&p.Meta, s.base)
		return nil
	})
}

// Delete soft-deletes the project together with its phases.
func (s *ProjectService) Delete(ctx context.Context, actor schema.Actor, id string) error {
	if err := projectsOf(s.store).softDelete(ctx, id, s.base, nil); err != nil {
		return err
	}
	phases, err := projectPhases(ctx, s.base, id)
	if err != nil {
		return err
	}
	for _, ph := range phases {
		if err := phasesOf(s.store).softDelete(ctx, ph.ID, s.base, nil); err != nil {
			return err
		}
	}
	return nil
}

func applyProjectInput(p *schema.Project, in ProjectInput) error {
	if in.Name != nil {
		p.Name = text(in.Name)
	}
	if p.Name == "" {
		return invalid("name", "name is required")
	}
	if in.Code != nil {
		p.Code = text(in.Code)
	}
	if in.Client != nil {
		p.Client = text(in.Client)
	}
	if in.Location != nil {
		p.Location = text(in.Location)
	}
	if in.Description != nil {
		p.Description = text(in.Description)
	}
	if in.Status != nil {
		if !schema.ValidProjectStatuses[*in.Status] {
			return invalid("status", "invalid project status %q", *in.Status)
		}
		p.Status = *in.Status
	}
	if in.Budget != nil {
		if in.Budget.IsNegative() {
			return invalid("budget", "budget cannot be negative")
		}
		p.Budget = *in.Budget
	}
	if in.StartDate != nil {
		p.StartDate = optionalDate(in.StartDate)
	}
	if in.EndDate != nil {
		p.EndDate = optionalDate(in.EndDate)
	}
	return checkDates(p.StartDate, p.EndDate)
}

// optionalDate treats an empty date as unset.
func optionalDate(d *schema.Date) *schema.Date {
	if d == nil || d.IsZero() {
		return nil
	}
	return d
}

func checkDates(start, end *schema.Date) error {
	if start != nil && end != nil && end.Before(start.Time) {
		return invalid("endDate", "end date cannot be before start date")
	}
	return nil
}

// projectPhases returns the live phases of a project ordered by their order field.
func projectPhases(ctx context.Context, b base, projectID string) ([]schema.Phase, error) {
	all, err := phasesOf(b.store).list(ctx)
	if err != nil {
		return nil, err
	}
	phases := filter(all, func(p *schema.Phase) bool { return p.ProjectID == projectID })
	sortByOrder(phases)
	return phases, nil
}

func sortByOrder(phases []schema.Phase) {
	sort.SliceStable(phases, func(i, j int) bool {
		if phases[i].Order == phases[j].Order {
			return phases[i].CreatedAt.Before(phases[j].CreatedAt)
		}
		return phases[i].Order < phases[j].Order
	})
}
