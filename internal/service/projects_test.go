package service

import (
	"errors"
	"testing"

	"github.com/celerix-dev/celerix-build/pkg/schema"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectCreateDefaults(t *testing.T) {
	f := setup(t)
	p := f.project(t, "  Harbour View  ", "250000")

	assert.Equal(t, "Harbour View", p.Name)
	assert.Equal(t, schema.ProjectPlanning, p.Status)
	assert.Equal(t, manager.ID, p.CreatedBy)
	assert.NotEmpty(t, p.ID)
	assert.Nil(t, p.DeletedAt)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
}

func TestProjectValidation(t *testing.T) {
	f := setup(t)
	var verr *ValidationError

	_, err := f.svc.Projects.Create(f.ctx, manager, ProjectInput{Name: str(" ")})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	_, err = f.svc.Projects.Create(f.ctx, manager, ProjectInput{Name: str("X"), Budget: decp("-1")})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "budget", verr.Field)

	_, err = f.svc.Projects.Create(f.ctx, manager, ProjectInput{
		Name: str("X"), StartDate: day("2026-05-01"), EndDate: day("2026-04-01"),
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "endDate", verr.Field)

	bad := schema.ProjectStatus("paused")
	_, err = f.svc.Projects.Create(f.ctx, manager, ProjectInput{Name: str("X"), Status: &bad})
	require.ErrorAs(t, err, &verr)
}

func TestProjectListFiltersAndPaginates(t *testing.T) {
	f := setup(t)
	for _, name := range []string{"Alpha House", "Beta Tower", "Gamma House"} {
		f.project(t, name, "1000")
	}
	active := schema.ProjectActive
	_, err := f.svc.Projects.Update(f.ctx, manager, mustList(t, f, "Beta")[0].ID, ProjectInput{Status: &active})
	require.NoError(t, err)

	all, total, err := f.svc.Projects.List(f.ctx, ProjectFilter{}, Page{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, "Gamma House", all[0].Name, "newest first")

	houses, total, err := f.svc.Projects.List(f.ctx, ProjectFilter{Search: "house"}, Page{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, houses, 2)

	byStatus, _, err := f.svc.Projects.List(f.ctx, ProjectFilter{Status: schema.ProjectActive}, Page{})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "Beta Tower", byStatus[0].Name)

	page2, total, err := f.svc.Projects.List(f.ctx, ProjectFilter{}, Page{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page2, 1)
	assert.Equal(t, "Alpha House", page2[0].Name)

	empty, _, err := f.svc.Projects.List(f.ctx, ProjectFilter{}, Page{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, empty)

	var verr *ValidationError
	_, _, err = f.svc.Projects.List(f.ctx, ProjectFilter{}, Page{Limit: 101})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "limit", verr.Field)
	_, _, err = f.svc.Projects.List(f.ctx, ProjectFilter{}, Page{Page: -1})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "page", verr.Field)
}

func mustList(t *testing.T, f *fixture, search string) []schema.Project {
	t.Helper()
	items, _, err := f.svc.Projects.List(f.ctx, ProjectFilter{Search: search}, Page{})
	require.NoError(t, err)
	return items
}

func TestProjectSoftDeleteHidesProjectAndPhases(t *testing.T) {
	f := setup(t)
	p := f.project(t, "Doomed", "1000")
	ph, err := f.svc.Phases.Create(f.ctx, manager, PhaseInput{ProjectID: str(p.ID), Name: str("Foundation")})
	require.NoError(t, err)

	require.NoError(t, f.svc.Projects.Delete(f.ctx, manager, p.ID))

	_, err = f.svc.Projects.Get(f.ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Phases.Get(f.ctx, ph.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Projects.Update(f.ctx, manager, p.ID, ProjectInput{Name: str("Back")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.svc.Projects.Delete(f.ctx, manager, p.ID), ErrNotFound)

	items, total, err := f.svc.Projects.List(f.ctx, ProjectFilter{}, Page{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)

	// The document is kept with its deletion timestamp.
	raw, err := f.store.Get(f.ctx, schema.CollectionProjects, p.ID)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"deletedAt"`)
}

func TestProjectGetIncludesOrderedPhases(t *testing.T) {
	f := setup(t)
	p := f.project(t, "Ordered", "1000")
	for _, in := range []struct {
		name  string
		order int
	}{{"Roof", 3}, {"Walls", 2}, {"Ground", 1}} {
		order := in.order
		_, err := f.svc.Phases.Create(f.ctx, manager, PhaseInput{ProjectID: str(p.ID), Name: str(in.name), Order: &order})
		require.NoError(t, err)
	}

	view, err := f.svc.Projects.Get(f.ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, view.Phases, 3)
	assert.Equal(t, []string{"Ground", "Walls", "Roof"}, []string{view.Phases[0].Name, view.Phases[1].Name, view.Phases[2].Name})
}

func TestPhaseRequiresLiveProject(t *testing.T) {
	f := setup(t)
	var verr *ValidationError

	_, err := f.svc.Phases.Create(f.ctx, manager, PhaseInput{Name: str("Orphan")})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "projectId", verr.Field)

	_, err = f.svc.Phases.Create(f.ctx, manager, PhaseInput{ProjectID: str("missing"), Name: str("Orphan")})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "projectId", verr.Field)
}

func TestPhaseStatusMovesForwardOnly(t *testing.T) {
	f := setup(t)
	p := f.project(t, "Phased", "1000")
	ph, err := f.svc.Phases.Create(f.ctx, manager, PhaseInput{ProjectID: str(p.ID), Name: str("Framing")})
	require.NoError(t, err)
	assert.Equal(t, schema.PhaseNotStarted, ph.Status)

	inProgress, completed, notStarted := schema.PhaseInProgress, schema.PhaseCompleted, schema.PhaseNotStarted
	ph, err = f.svc.Phases.Update(f.ctx, manager, ph.ID, PhaseInput{Status: &inProgress})
	require.NoError(t, err)
	assert.Equal(t, schema.PhaseInProgress, ph.Status)

	_, err = f.svc.Phases.Update(f.ctx, manager, ph.ID, PhaseInput{Status: &notStarted})
	var terr *TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "in_progress", terr.From)

	ph, err = f.svc.Phases.Update(f.ctx, manager, ph.ID, PhaseInput{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, schema.PhaseCompleted, ph.Status)

	_, err = f.svc.Phases.Update(f.ctx, manager, ph.ID, PhaseInput{ProjectID: str("elsewhere")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestPhaseListByProjectUsesOrder(t *testing.T) {
	f := setup(t)
	p := f.project(t, "A", "1000")
	other := f.project(t, "B", "1000")
	two, one := 2, 1
	_, err := f.svc.Phases.Create(f.ctx, manager, PhaseInput{ProjectID: str(p.ID), Name: str("Second"), Order: &two})
	require.NoError(t, err)
	_, err = f.svc.Phases.Create(f.ctx, manager, PhaseInput{ProjectID: str(p.ID), Name: str("First"), Order: &one})
	require.NoError(t, err)
	_, err = f.svc.Phases.Create(f.ctx, manager, PhaseInput{ProjectID: str(other.ID), Name: str("Elsewhere")})
	require.NoError(t, err)

	items, total, err := f.svc.Phases.List(f.ctx, PhaseFilter{ProjectID: p.ID}, Page{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "First", items[0].Name)
	assert.Equal(t, "Second", items[1].Name)
}

func templateInput(name string, entries ...schema.PhaseTemplateEntry) PhaseTemplateInput {
	return PhaseTemplateInput{Name: str(name), Phases: &entries}
}

func entry(order int, name, share string, days int) schema.PhaseTemplateEntry {
	return schema.PhaseTemplateEntry{Name: name, Order: order, BudgetShare: dec(share), DurationDays: days}
}

func TestPhaseTemplateValidation(t *testing.T) {
	f := setup(t)
	cases := map[string]PhaseTemplateInput{
		"no phases":       templateInput("Empty"),
		"duplicate names": templateInput("Dup", entry(1, "Slab", "10", 1), entry(2, "slab", "10", 1)),
		"share over 100":  templateInput("Big", entry(1, "A", "101", 1)),
		"negative share":  templateInput("Neg", entry(1, "A", "-1", 1)),
		"sum over 100":    templateInput("Sum", entry(1, "A", "60", 1), entry(2, "B", "50", 1)),
		"negative days":   templateInput("Days", entry(1, "A", "10", -1)),
		"unnamed phase":   templateInput("Blank", entry(1, " ", "10", 1)),
		"missing name":    {Phases: &[]schema.PhaseTemplateEntry{entry(1, "A", "10", 1)}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.PhaseTemplates.Create(f.ctx, manager, in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestPhaseTemplateApply(t *testing.T) {
	f := setup(t)
	p, err := f.svc.Projects.Create(f.ctx, manager, ProjectInput{
		Name: str("Apply"), Budget: decp("100000"), StartDate: day("2026-04-01"),
	})
	require.NoError(t, err)
	tpl, err := f.svc.PhaseTemplates.Create(f.ctx, manager, templateInput("Small build",
		entry(2, "Build", "62.5", 10),
		entry(1, "Prepare", "33.333", 5),
		entry(3, "Inspect", "0", 0),
	))
	require.NoError(t, err)

	phases, err := f.svc.PhaseTemplates.Apply(f.ctx, manager, tpl.ID, ApplyInput{ProjectID: p.ID})
	require.NoError(t, err)
	require.Len(t, phases, 3)

	prep, build, inspect := phases[0], phases[1], phases[2]
	assert.Equal(t, "Prepare", prep.Name)
	assert.True(t, prep.Budget.Equal(dec("33333")), "got %s", prep.Budget)
	assert.Equal(t, "2026-04-01", prep.StartDate.String())
	assert.Equal(t, "2026-04-05", prep.EndDate.String())

	assert.Equal(t, "Build", build.Name)
	assert.True(t, build.Budget.Equal(dec("62500")))
	assert.Equal(t, "2026-04-06", build.StartDate.String())
	assert.Equal(t, "2026-04-15", build.EndDate.String())
	assert.Equal(t, tpl.ID, build.TemplateID)
	assert.Equal(t, schema.PhaseNotStarted, build.Status)

	assert.Nil(t, inspect.StartDate, "zero-length phases are left unscheduled")

	// A second apply needs replace.
	_, err = f.svc.PhaseTemplates.Apply(f.ctx, manager, tpl.ID, ApplyInput{ProjectID: p.ID})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	replaced, err := f.svc.PhaseTemplates.Apply(f.ctx, manager, tpl.ID, ApplyInput{
		ProjectID: p.ID, StartDate: day("2026-06-01"), Replace: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-06-01", replaced[0].StartDate.String())

	view, err := f.svc.Projects.Get(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, view.Phases, 3, "replaced phases are soft-deleted")
	_, err = f.svc.Phases.Get(f.ctx, prep.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPhaseTemplateApplyErrors(t *testing.T) {
	f := setup(t)
	tpl, err := f.svc.PhaseTemplates.Create(f.ctx, manager, templateInput("T", entry(1, "Only", "100", 3)))
	require.NoError(t, err)

	_, err = f.svc.PhaseTemplates.Apply(f.ctx, manager, "missing", ApplyInput{ProjectID: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.PhaseTemplates.Apply(f.ctx, manager, tpl.ID, ApplyInput{ProjectID: "missing"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "projectId", verr.Field)
}

func TestPhaseTemplateApplyDefaultsToToday(t *testing.T) {
	f := setup(t)
	p := f.project(t, "Undated", "900")
	tpl, err := f.svc.PhaseTemplates.Create(f.ctx, manager, templateInput("T", entry(1, "Only", "100", 3)))
	require.NoError(t, err)

	phases, err := f.svc.PhaseTemplates.Apply(f.ctx, manager, tpl.ID, ApplyInput{ProjectID: p.ID})
	require.NoError(t, err)
	require.Len(t, phases, 1)
	assert.Equal(t, "2026-03-02", phases[0].StartDate.String())
	assert.True(t, phases[0].Budget.Equal(decimal.NewFromInt(900)))
}

func TestPhaseTemplateSeedDefaults(t *testing.T) {
	f := setup(t)
	n, err := f.svc.PhaseTemplates.SeedDefaults(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = f.svc.PhaseTemplates.SeedDefaults(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "seeding is skipped once templates exist")

	items, total, err := f.svc.PhaseTemplates.List(f.ctx, "renovation", Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Renovation", items[0].Name)
}

func TestPhaseTemplateUpdateAndDelete(t *testing.T) {
	f := setup(t)
	tpl, err := f.svc.PhaseTemplates.Create(f.ctx, manager, templateInput("T", entry(1, "Only", "100", 3)))
	require.NoError(t, err)

	updated, err := f.svc.PhaseTemplates.Update(f.ctx, manager, tpl.ID, PhaseTemplateInput{Description: str("Quick job")})
	require.NoError(t, err)
	assert.Equal(t, "Quick job", updated.Description)
	assert.Len(t, updated.Phases, 1)

	require.NoError(t, f.svc.PhaseTemplates.Delete(f.ctx, manager, tpl.ID))
	_, err = f.svc.PhaseTemplates.Get(f.ctx, tpl.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEmptyDatesAreUnset(t *testing.T) {
	f := setup(t)
	p, err := f.svc.Projects.Create(f.ctx, manager, ProjectInput{
		Name:      str("Library"),
		StartDate: &schema.Date{},
		EndDate:   day("2026-12-31"),
	})
	require.NoError(t, err)
	assert.Nil(t, p.StartDate)

	p, err = f.svc.Projects.Update(f.ctx, manager, p.ID, ProjectInput{EndDate: &schema.Date{}})
	require.NoError(t, err)
	assert.Nil(t, p.EndDate)

	ph, err := f.svc.Phases.Create(f.ctx, manager, PhaseInput{
		ProjectID: str(p.ID),
		Name:      str("Groundworks"),
		StartDate: day("2026-04-01"),
	})
	require.NoError(t, err)
	ph, err = f.svc.Phases.Update(f.ctx, manager, ph.ID, PhaseInput{StartDate: &schema.Date{}})
	require.NoError(t, err)
	assert.Nil(t, ph.StartDate)

	ps, err := f.svc.Professionals.Create(f.ctx, manager, ProfessionalServiceInput{
		ProjectID:        str(p.ID),
		ProfessionalName: str("Dana Surveyor"),
		StartDate:        &schema.Date{},
	})
	require.NoError(t, err)
	assert.Nil(t, ps.StartDate)
}

func TestPhaseTemplateApplyIgnoresEmptyStartDate(t *testing.T) {
	f := setup(t)
	p, err := f.svc.Projects.Create(f.ctx, manager, ProjectInput{Name: str("Dated"), StartDate: day("2026-05-04")})
	require.NoError(t, err)
	tpl, err := f.svc.PhaseTemplates.Create(f.ctx, manager, templateInput("T", entry(1, "Only", "0", 3)))
	require.NoError(t, err)

	phases, err := f.svc.PhaseTemplates.Apply(f.ctx, manager, tpl.ID, ApplyInput{ProjectID: p.ID, StartDate: &schema.Date{}})
	require.NoError(t, err)
	require.Len(t, phases, 1)
	assert.Equal(t, "2026-05-04", phases[0].StartDate.String())
	assert.Equal(t, "2026-05-06", phases[0].EndDate.String())
}
