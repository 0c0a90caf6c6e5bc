package service

import (
	"context"
	"errors"

	"github.com/celerix-dev/celerix-build/pkg/schema"
	"github.com/shopspring/decimal"
)

type PhaseInput struct {
	ProjectID   *string             `json:"projectId"`
	Name        *string             `json:"name"`
	Order       *int                `json:"order"`
	Description *string             `json:"description"`
	Status      *schema.PhaseStatus `json:"status"`
	Budget      *decimal.Decimal    `json:"budget"`
	StartDate   *schema.Date        `json:"startDate"`
	EndDate     *schema.Date        `json:"endDate"`
}

type PhaseFilter struct {
	ProjectID string
	Status    schema.PhaseStatus
	Search    string
}

type PhaseService struct {
	base
}

// phaseMoves lists the forward-only status moves of a phase.
var phaseMoves = map[schema.PhaseStatus][]schema.PhaseStatus{
	schema.PhaseNotStarted: {schema.PhaseInProgress, schema.PhaseCompleted},
	schema.PhaseInProgress: {schema.PhaseCompleted},
}

func (s *PhaseService) Create(ctx context.Context, actor schema.Actor, in PhaseInput) (*schema.Phase, error) {
	projectID := text(in.ProjectID)
	if projectID == "" {
		return nil, invalid("projectId", "projectId is required")
	}
	if err := requireLive(ctx, projectsOf(s.store), "projectId", projectID); err != nil {
		return nil, err
	}

	p := &schema.Phase{
		Meta:      newMeta(s.base, actor),
		ProjectID: projectID,
		Status:    schema.PhaseNotStarted,
	}
	if in.Status != nil && *in.Status != schema.PhaseNotStarted {
		if !schema.ValidPhaseStatuses[*in.Status] {
			return nil, invalid("status", "invalid phase status %q", *in.Status)
		}
	}
	if err := applyPhaseInput(p, in); err != nil {
		return nil, err
	}
	if err := phasesOf(s.store).insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PhaseService) Get(ctx context.Context, id string) (*schema.Phase, error) {
	return phasesOf(s.store).get(ctx, id)
}

func (s *PhaseService) List(ctx context.Context, f PhaseFilter, page Page) ([]schema.Phase, int, error) {
	all, err := phasesOf(s.store).list(ctx)
	if err != nil {
		return nil, 0, err
	}
	items := filter(all, func(p *schema.Phase) bool {
		if f.ProjectID != "" && p.ProjectID != f.ProjectID {
			return false
		}
		if f.Status != "" && p.Status != f.Status {
			return false
		}
		return matches(f.Search, p.Name, p.Description)
	})
	if f.ProjectID != "" {
		sortByOrder(items)
	} else {
		sortNewest(items)
	}
	return paginate(items, page)
}

func (s *PhaseService) Update(ctx context.Context, actor schema.Actor, id string, in PhaseInput) (*schema.Phase, error) {
	return phasesOf(s.store).mutate(ctx, id, func(p *schema.Phase) error {
		if in.ProjectID != nil && text(in.ProjectID) != p.ProjectID {
			return invalid("projectId", "a phase cannot be moved to another project")
		}
		if in.Status != nil && *in.Status != p.Status {
			if !schema.ValidPhaseStatuses[*in.Status] {
				return invalid("status", "invalid phase status %q", *in.Status)
			}
			if !oneOf(*in.Status, phaseMoves[p.Status]...) {
				return transition("phase", "set status "+string(*in.Status)+" on", p.Status)
			}
		}
		if err := applyPhaseInput(p, in); err != nil {
			return err
		}
		touch(&p.Meta, s.base)
		return nil
	})
}

func (s *PhaseService) Delete(ctx context.Context, actor schema.Actor, id string) error {
	return phasesOf(s.store).softDelete(ctx, id, s.base, nil)
}

func applyPhaseInput(p *schema.Phase, in PhaseInput) error {
	if in.Name != nil {
		p.Name = text(in.Name)
	}
	if p.Name == "" {
		return invalid("name", "name is required")
	}
	if in.Order != nil {
		if *in.Order < 0 {
			return invalid("order", "order cannot be negative")
		}
		p.Order = *in.Order
	}
	if in.Description != nil {
		p.Description = text(in.Description)
	}
	if in.Status != nil {
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

// requireLive turns a missing reference into a validation error on field.
func requireLive[T any, PT document[T]](ctx context.Context, c collection[T, PT], field, id string) error {
	ok, err := c.exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return invalid(field, "%s %q does not exist", c.entity, id)
	}
	return nil
}

// requirePhaseOf checks that phaseID is a live phase of projectID.
func requirePhaseOf(ctx context.Context, b base, projectID, phaseID string) error {
	ph, err := phasesOf(b.store).get(ctx, phaseID)
	if errors.Is(err, ErrNotFound) {
		return invalid("phaseId", "phase %q does not exist", phaseID)
	}
	if err != nil {
		return err
	}
	if ph.ProjectID != projectID {
		return invalid("phaseId", "phase %q belongs to another project", phaseID)
	}
	return nil
}
