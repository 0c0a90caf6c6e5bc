package service

import (
	"context"
	"errors"

	"github.com/celerix-dev/celerix-build/pkg/schema"
	"github.com/shopspring/decimal"
)

// ActivityInput carries create and update fields; nil fields are left unchanged.
type ActivityInput struct {
	ServiceID    *string              `json:"serviceId"`
	PhaseID      *string              `json:"phaseId"`
	ActivityType *schema.ActivityType `json:"activityType"`
	Title        *string              `json:"title"`
	Date         *schema.Date         `json:"date"`
	Hours        *float64             `json:"hours"`
	Fee          *decimal.Decimal     `json:"fee"`
	Description  *string              `json:"description"`
	Findings     *string              `json:"findings"`
}

type ActivityFilter struct {
	ProjectID string
	ServiceID string
	Status    schema.ActivityStatus
	Type      schema.ActivityType
	Search    string
}

type ActivityService struct {
	base
}

func (s *ActivityService) Create(ctx context.Context, actor schema.Actor, in ActivityInput) (*schema.ActivityView, error) {
	serviceID := text(in.ServiceID)
	if serviceID == "" {
		return nil, invalid("serviceId", "serviceId is required")
	}
	svc, err := servicesOf(s.store).get(ctx, serviceID)
	if errors.Is(err, ErrNotFound) {
		return nil, invalid("serviceId", "professional service %q does not exist", serviceID)
	}
	if err != nil {
		return nil, err
	}
	if in.Date == nil || in.Date.IsZero() {
		return nil, invalid("date", "date is required")
	}
	if phaseID := text(in.PhaseID); phaseID != "" {
		if err := requirePhaseOf(ctx, s.base, svc.ProjectID, phaseID); err != nil {
			return nil, err
		}
	}

	a := &schema.ProfessionalActivity{
		Meta:          newMeta(s.base, actor),
		ServiceID:     svc.ID,
		ProjectID:     svc.ProjectID,
		ActivityType:  schema.ActivityOther,
		Status:        schema.ActivityDraft,
		ApprovalChain: []schema.ApprovalEntry{},
	}
	if err := applyActivityInput(a, in); err != nil {
		return nil, err
	}
	if in.Fee == nil && svc.FeeType == schema.FeeHourly {
		a.Fee = hourlyFee(a.Hours, svc.HourlyRate)
	}
	if err := activitiesOf(s.store).insert(ctx, a); err != nil {
		return nil, err
	}
	return activityView(newResolver(ctx, s.base), *a), nil
}

func (s *ActivityService) Get(ctx context.Context, id string) (*schema.ActivityView, error) {
	a, err := activitiesOf(s.store).get(ctx, id)
	if err != nil {
		return nil, err
	}
	return activityView(newResolver(ctx, s.base), *a), nil
}

func (s *ActivityService) List(ctx context.Context, f ActivityFilter, page Page) ([]schema.ActivityView, int, error) {
	all, err := activitiesOf(s.store).list(ctx)
	if err != nil {
		return nil, 0, err
	}
	items := filter(all, func(a *schema.ProfessionalActivity) bool {
		switch {
		case f.ProjectID != "" && a.ProjectID != f.ProjectID:
			return false
		case f.ServiceID != "" && a.ServiceID != f.ServiceID:
			return false
		case f.Status != "" && a.Status != f.Status:
			return false
		case f.Type != "" && a.ActivityType != f.Type:
			return false
		}
		return matches(f.Search, a.Title, a.Description, a.Findings)
	})
	sortNewest(items)
	items, total, err := paginate(items, page)
	if err != nil {
		return nil, 0, err
	}
	r := newResolver(ctx, s.base)
	views := make([]schema.ActivityView, 0, len(items))
	for _, a := range items {
		views = append(views, *activityView(r, a))
	}
	return views, total, nil
}

// Update edits an activity. Approved activities may only be edited by an owner.
func (s *ActivityService) Update(ctx context.Context, actor schema.Actor, id string, in ActivityInput) (*schema.ActivityView, error) {
	current, err := activitiesOf(s.store).get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.ServiceID != nil && text(in.ServiceID) != current.ServiceID {
		return nil, invalid("serviceId", "an activity cannot be moved to another service")
	}
	if phaseID := text(in.PhaseID); phaseID != "" {
		if err := requirePhaseOf(ctx, s.base, current.ProjectID, phaseID); err != nil {
			return nil, err
		}
	}
	svc, err := servicesOf(s.store).get(ctx, current.ServiceID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	a, err := activitiesOf(s.store).mutate(ctx, id, func(a *schema.ProfessionalActivity) error {
		if err := editableActivity(a, actor, "edit"); err != nil {
			return err
		}
		if err := applyActivityInput(a, in); err != nil {
			return err
		}
		if in.Fee == nil && in.Hours != nil && svc != nil && svc.FeeType == schema.FeeHourly {
			a.Fee = hourlyFee(a.Hours, svc.HourlyRate)
		}
		touch(&a.Meta, s.base)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return activityView(newResolver(ctx, s.base), *a), nil
}

func (s *ActivityService) Delete(ctx context.Context, actor schema.Actor, id string) error {
	return activitiesOf(s.store).softDelete(ctx, id, s.base, func(a *schema.ProfessionalActivity) error {
		return editableActivity(a, actor, "delete")
	})
}

func (s *ActivityService) Submit(ctx context.Context, actor schema.Actor, id, comment string) (*schema.ActivityView, error) {
	return s.move(ctx, id, func(a *schema.ProfessionalActivity) error {
		if !oneOf(a.Status, schema.ActivityDraft, schema.ActivityRejected) {
			return transition("professional activity", "submit", a.Status)
		}
		a.Status = schema.ActivityPendingApproval
		a.RejectionReason = ""
		a.ApprovalChain = appendApproval(a.ApprovalChain, schema.ActionSubmitted, actor, s.base, comment)
		return nil
	})
}

func (s *ActivityService) Approve(ctx context.Context, actor schema.Actor, id, comment string) (*schema.ActivityView, error) {
	return s.move(ctx, id, func(a *schema.ProfessionalActivity) error {
		if a.Status != schema.ActivityPendingApproval {
			return transition("professional activity", "approve", a.Status)
		}
		a.Status = schema.ActivityApproved
		a.ApprovalChain = appendApproval(a.ApprovalChain, schema.ActionApproved, actor, s.base, comment)
		return nil
	})
}

func (s *ActivityService) Reject(ctx context.Context, actor schema.Actor, id, reason string) (*schema.ActivityView, error) {
	reason = text(&reason)
	if reason == "" {
		return nil, invalid("reason", "a rejection reason is required")
	}
	return s.move(ctx, id, func(a *schema.ProfessionalActivity) error {
		if !oneOf(a.Status, schema.ActivityDraft, schema.ActivityPendingApproval) {
			return transition("professional activity", "reject", a.Status)
		}
		a.Status = schema.ActivityRejected
		a.RejectionReason = reason
		a.ApprovalChain = appendApproval(a.ApprovalChain, schema.ActionRejected, actor, s.base, reason)
		return nil
	})
}

func (s *ActivityService) move(ctx context.Context, id string, fn func(*schema.ProfessionalActivity) error) (*schema.ActivityView, error) {
	a, err := activitiesOf(s.store).mutate(ctx, id, func(a *schema.ProfessionalActivity) error {
		if err := fn(a); err != nil {
			return err
		}
		touch(&a.Meta, s.base)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return activityView(newResolver(ctx, s.base), *a), nil
}

func editableActivity(a *schema.ProfessionalActivity, actor schema.Actor, action string) error {
	if a.Status == schema.ActivityApproved && actor.Role != schema.RoleOwner {
		return forbidden("only an owner can " + action + " an approved activity")
	}
	return nil
}

func applyActivityInput(a *schema.ProfessionalActivity, in ActivityInput) error {
	if in.Title != nil {
		a.Title = text(in.Title)
	}
	if a.Title == "" {
		return invalid("title", "title is required")
	}
	if in.PhaseID != nil {
		a.PhaseID = text(in.PhaseID)
	}
	if in.ActivityType != nil {
		if !schema.ValidActivityTypes[*in.ActivityType] {
			return invalid("activityType", "invalid activity type %q", *in.ActivityType)
		}
		a.ActivityType = *in.ActivityType
	}
	if in.Date != nil {
		if in.Date.IsZero() {
			return invalid("date", "date is required")
		}
		a.Date = *in.Date
	}
	if in.Hours != nil {
		if *in.Hours < 0 {
			return invalid("hours", "hours cannot be negative")
		}
		a.Hours = *in.Hours
	}
	if in.Fee != nil {
		if in.Fee.IsNegative() {
			return invalid("fee", "fee cannot be negative")
		}
		a.Fee = *in.Fee
	}
	if in.Description != nil {
		a.Description = text(in.Description)
	}
	if in.Findings != nil {
		a.Findings = text(in.Findings)
	}
	return nil
}

func hourlyFee(hours float64, rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(decimal.NewFromFloat(hours)).Round(2)
}

func activityView(r *resolver, a schema.ProfessionalActivity) *schema.ActivityView {
	return &schema.ActivityView{
		ProfessionalActivity: a,
		ProjectName:          r.project(a.ProjectID),
		PhaseName:            r.phase(a.PhaseID),
		ProfessionalName:     r.professional(a.ServiceID),
	}
}
