package service

import (
	"context"
	"sort"
	"strings"

	"github.com/celerix-dev/celerix-build/pkg/schema"
	"github.com/shopspring/decimal"
)

type PhaseTemplateInput struct {
	Name        *string                      `json:"name"`
	Description *string                      `json:"description"`
	Phases      *[]schema.PhaseTemplateEntry `json:"phases"`
}

// ApplyInput lays a template out on a project.
type ApplyInput struct {
	ProjectID string       `json:"projectId" binding:"required"`
	StartDate *schema.Date `json:"startDate"`
	Replace   bool         `json:"replace"`
}

type PhaseTemplateService struct {
	base
}

var hundred = decimal.NewFromInt(100)

func (s *PhaseTemplateService) Create(ctx context.Context, actor schema.Actor, in PhaseTemplateInput) (*schema.PhaseTemplate, error) {
	t := &schema.PhaseTemplate{Meta: newMeta(s.base, actor)}
	if err := applyTemplateInput(t, in); err != nil {
		return nil, err
	}
	if err := templatesOf(s.store).insert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *PhaseTemplateService) Get(ctx context.Context, id string) (*schema.PhaseTemplate, error) {
	return templatesOf(s.store).get(ctx, id)
}

func (s *PhaseTemplateService) List(ctx context.Context, search string, page Page) ([]schema.PhaseTemplate, int, error) {
	all, err := templatesOf(s.store).list(ctx)
	if err != nil {
		return nil, 0, err
	}
	items := filter(all, func(t *schema.PhaseTemplate) bool {
		return matches(search, t.Name, t.Description)
	})
	sortNewest(items)
	return paginate(items, page)
}

func (s *PhaseTemplateService) Update(ctx context.Context, actor schema.Actor, id string, in PhaseTemplateInput) (*schema.PhaseTemplate, error) {
	return templatesOf(s.store).mutate(ctx, id, func(t *schema.PhaseTemplate) error {
		if err := applyTemplateInput(t, in); err != nil {
			return err
		}
		touch(&t.Meta, s.base)
		return nil
	})
}

func (s *PhaseTemplateService) Delete(ctx context.Context, actor schema.Actor, id string) error {
	return templatesOf(s.store).softDelete(ctx, id, s.base, nil)
}

// Apply creates the template's phases on a project. Phase budgets are the
// template share of the project budget and phases are scheduled back to back.
func (s *PhaseTemplateService) Apply(ctx context.Context, actor schema.Actor, id string, in ApplyInput) ([]schema.Phase, error) {
	t, err := templatesOf(s.store).get(ctx, id)
	if err != nil {
		return nil, err
	}
	projectID := strings.TrimSpace(in.ProjectID)
	if projectID == "" {
		return nil, invalid("projectId", "projectId is required")
	}
	project, err := projectsOf(s.store).get(ctx, projectID)
	if err != nil {
		return nil, invalid("projectId", "project %q does not exist", projectID)
	}

	existing, err := projectPhases(ctx, s.base, projectID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 && !in.Replace {
		return nil, invalid("projectId", "project already has %d phases; set replace to overwrite them", len(existing))
	}
	for _, ph := range existing {
		if err := phasesOf(s.store).softDelete(ctx, ph.ID, s.base, nil); err != nil {
			return nil, err
		}
	}

	start := schema.NewDate(s.timestamp())
	if d := optionalDate(in.StartDate); d != nil {
		start = *d
	} else if d := optionalDate(project.StartDate); d != nil {
		start = *d
	}

	entries := append([]schema.PhaseTemplateEntry(nil), t.Phases...)
	sortEntries(entries)

	created := make([]schema.Phase, 0, len(entries))
	cursor := start
	for _, e := range entries {
		ph := schema.Phase{
			Meta:        newMeta(s.base, actor),
			ProjectID:   projectID,
			Name:        e.Name,
			Order:       e.Order,
			Description: e.Description,
			Status:      schema.PhaseNotStarted,
			Budget:      project.Budget.Mul(e.BudgetShare).Div(hundred).Round(2),
			TemplateID:  t.ID,
		}
		if e.DurationDays > 0 {
			from, to := cursor, cursor.AddDays(e.DurationDays-1)
			ph.StartDate, ph.EndDate = &from, &to
			cursor = cursor.AddDays(e.DurationDays)
		}
		if err := phasesOf(s.store).insert(ctx, &ph); err != nil {
			return nil, err
		}
		created = append(created, ph)
	}
	return created, nil
}

// SeedDefaults stores the built-in templates when no template exists yet.
func (s *PhaseTemplateService) SeedDefaults(ctx context.Context) (int, error) {
	existing, err := templatesOf(s.store).list(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	system := schema.Actor{ID: "system", Role: schema.RoleOwner}
	for _, d := range defaultTemplates() {
		if _, err := s.Create(ctx, system, d); err != nil {
			return 0, err
		}
	}
	return len(defaultTemplates()), nil
}

func applyTemplateInput(t *schema.PhaseTemplate, in PhaseTemplateInput) error {
	if in.Name != nil {
		t.Name = text(in.Name)
	}
	if t.Name == "" {
		return invalid("name", "name is required")
	}
	if in.Description != nil {
		t.Description = text(in.Description)
	}
	if in.Phases != nil {
		t.Phases = *in.Phases
	}
	return validateEntries(t.Phases)
}

func validateEntries(entries []schema.PhaseTemplateEntry) error {
	if len(entries) == 0 {
		return invalid("phases", "a template needs at least one phase")
	}
	seen := make(map[string]bool, len(entries))
	total := decimal.Zero
	for i := range entries {
		e := &entries[i]
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			return invalid("phases", "phase %d has no name", i+1)
		}
		key := strings.ToLower(e.Name)
		if seen[key] {
			return invalid("phases", "phase name %q is used twice", e.Name)
		}
		seen[key] = true
		if e.BudgetShare.IsNegative() || e.BudgetShare.GreaterThan(hundred) {
			return invalid("phases", "budget share of %q must be between 0 and 100", e.Name)
		}
		if e.DurationDays < 0 {
			return invalid("phases", "duration of %q cannot be negative", e.Name)
		}
		if e.Order < 0 {
			return invalid("phases", "order of %q cannot be negative", e.Name)
		}
		total = total.Add(e.BudgetShare)
	}
	if total.GreaterThan(hundred) {
		return invalid("phases", "budget shares add up to %s%%, more than 100%%", total.String())
	}
	return nil
}

func sortEntries(entries []schema.PhaseTemplateEntry) {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Order < entries[j].Order })
}

func defaultTemplates() []PhaseTemplateInput {
	entry := func(order int, name string, share int64, days int) schema.PhaseTemplateEntry {
		return schema.PhaseTemplateEntry{
			Name:         name,
			Order:        order,
			BudgetShare:  decimal.NewFromInt(share),
			DurationDays: days,
		}
	}
	str := func(s string) *string { return &s }

	residential := []schema.PhaseTemplateEntry{
		entry(1, "Site preparation", 5, 14),
		entry(2, "Foundation", 15, 21),
		entry(3, "Structure and framing", 25, 45),
		entry(4, "Roofing", 10, 14),
		entry(5, "MEP rough-in", 15, 30),
		entry(6, "Finishes", 25, 45),
		entry(7, "Handover", 5, 7),
	}
	renovation := []schema.PhaseTemplateEntry{
		entry(1, "Survey and design", 10, 21),
		entry(2, "Strip-out", 10, 10),
		entry(3, "Structural works", 25, 28),
		entry(4, "Services upgrade", 25, 21),
		entry(5, "Fit-out", 25, 30),
		entry(6, "Snagging and handover", 5, 7),
	}
	return []PhaseTemplateInput{
		{Name: str("Residential new build"), Description: str("Detached or semi-detached house from bare site to handover"), Phases: &residential},
		{Name: str("Renovation"), Description: str("Refurbishment of an existing building"), Phases: &renovation},
	}
}
