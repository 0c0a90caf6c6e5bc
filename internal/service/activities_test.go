package service

import (
	"testing"

	"github.com/celerix-dev/celerix-build/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) hourlyService(t *testing.T, projectID string) *schema.ProfessionalService {
	t.Helper()
	hourly, arch := schema.FeeHourly, schema.DisciplineArchitect
	ps, err := f.svc.Professionals.Create(f.ctx, manager, ProfessionalServiceInput{
		ProjectID:        str(projectID),
		ProfessionalName: str("Robin Architect"),
		Discipline:       &arch,
		FeeType:          &hourly,
		HourlyRate:       decp("85"),
		ContractValue:    decp("12000"),
	})
	require.NoError(t, err)
	return ps
}

func TestProfessionalServiceCreate(t *testing.T) {
	f := setup(t)
	p := f.project(t, "Site", "1000")
	ps := f.hourlyService(t, p.ID)
	assert.Equal(t, schema.ServiceActive, ps.Status)
	assert.Equal(t, schema.DisciplineArchitect, ps.Discipline)

	bad := schema.Discipline("plumber")
	_, err := f.svc.Professionals.Create(f.ctx, manager, ProfessionalServiceInput{
		ProjectID: str(p.ID), ProfessionalName: str("X"), Discipline: &bad,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "discipline", verr.Field)

	_, err = f.svc.Professionals.Create(f.ctx, manager, ProfessionalServiceInput{ProjectID: str(p.ID)})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "professionalName", verr.Field)

	items, total, err := f.svc.Professionals.List(f.ctx, ProfessionalServiceFilter{Discipline: schema.DisciplineArchitect}, Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, ps.ID, items[0].ID)
}

func TestActivityFeeDefaultsToHourlyRate(t *testing.T) {
	f := setup(t)
	p := f.project(t, "Site", "1000")
	ps := f.hourlyService(t, p.ID)

	a, err := f.svc.Activities.Create(f.ctx, architect, ActivityInput{
		ServiceID: str(ps.ID), Title: str("Site visit"), Date: day("2026-03-10"), Hours: num(2.5),
	})
	require.NoError(t, err)
	assert.Equal(t, p.ID, a.ProjectID, "project comes from the service")
	assert.True(t, a.Fee.Equal(dec("212.5")), "got %s", a.Fee)
	assert.Equal(t, schema.ActivityDraft, a.Status)
	assert.Equal(t, "Robin Architect", a.ProfessionalName)
	assert.Equal(t, "Site", a.ProjectName)

	explicit, err := f.svc.Activities.Create(f.ctx, architect, ActivityInput{
		ServiceID: str(ps.ID), Title: str("Report"), Date: day("2026-03-11"), Hours: num(2), Fee: decp("50"),
	})
	require.NoError(t, err)
	assert.True(t, explicit.Fee.Equal(dec("50")))

	updated, err := f.svc.Activities.Update(f.ctx, architect, a.ID, ActivityInput{Hours: num(4)})
	require.NoError(t, err)
	assert.True(t, updated.Fee.Equal(dec("340")))
}

func TestActivityCreateValidation(t *testing.T) {
	f := setup(t)
	p := f.project(t, "Site", "1000")
	ps := f.hourlyService(t, p.ID)
	var verr *ValidationError

	_, err := f.svc.Activities.Create(f.ctx, architect, ActivityInput{Title: str("X"), Date: day("2026-03-10")})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "serviceId", verr.Field)

	_, err = f.svc.Activities.Create(f.ctx, architect, ActivityInput{ServiceID: str("nope"), Title: str("X"), Date: day("2026-03-10")})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "serviceId", verr.Field)

	_, err = f.svc.Activities.Create(f.ctx, architect, ActivityInput{ServiceID: str(ps.ID), Title: str("X")})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "date", verr.Field)

	_, err = f.svc.Activities.Create(f.ctx, architect, ActivityInput{ServiceID: str(ps.ID), Date: day("2026-03-10")})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	kind := schema.ActivityType("lunch")
	_, err = f.svc.Activities.Create(f.ctx, architect, ActivityInput{ServiceID: str(ps.ID), Title: str("X"), Date: day("2026-03-10"), ActivityType: &kind})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "activityType", verr.Field)
}

func TestApprovedActivityIsOwnerOnly(t *testing.T) {
	f := setup(t)
	p := f.project(t, "Site", "1000")
	ps := f.hourlyService(t, p.ID)
	a, err := f.svc.Activities.Create(f.ctx, architect, ActivityInput{
		ServiceID: str(ps.ID), Title: str("Inspection"), Date: day("2026-03-10"), Hours: num(1),
	})
	require.NoError(t, err)
	_, err = f.svc.Activities.Submit(f.ctx, architect, a.ID, "")
	require.NoError(t, err)
	a, err = f.svc.Activities.Approve(f.ctx, manager, a.ID, "fine")
	require.NoError(t, err)
	assert.Equal(t, schema.ActivityApproved, a.Status)

	_, err = f.svc.Activities.Update(f.ctx, manager, a.ID, ActivityInput{Findings: str("edited")})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.svc.Activities.Delete(f.ctx, architect, a.ID), ErrForbidden)

	edited, err := f.svc.Activities.Update(f.ctx, owner, a.ID, ActivityInput{Findings: str("owner edit")})
	require.NoError(t, err)
	assert.Equal(t, "owner edit", edited.Findings)

	_, err = f.svc.Activities.Reject(f.ctx, manager, a.ID, "too late")
	var terr *TransitionError
	require.ErrorAs(t, err, &terr)

	require.NoError(t, f.svc.Activities.Delete(f.ctx, owner, a.ID))
}

func TestActivityWorkflow(t *testing.T) {
	f := setup(t)
	p := f.project(t, "Site", "1000")
	ps := f.hourlyService(t, p.ID)
	a, err := f.svc.Activities.Create(f.ctx, architect, ActivityInput{
		ServiceID: str(ps.ID), Title: str("Design review"), Date: day("2026-03-10"),
	})
	require.NoError(t, err)

	_, err = f.svc.Activities.Approve(f.ctx, manager, a.ID, "")
	var terr *TransitionError
	require.ErrorAs(t, err, &terr)

	a, err = f.svc.Activities.Reject(f.ctx, manager, a.ID, "missing drawings")
	require.NoError(t, err)
	assert.Equal(t, schema.ActivityRejected, a.Status)

	a, err = f.svc.Activities.Submit(f.ctx, architect, a.ID, "drawings attached")
	require.NoError(t, err)
	assert.Equal(t, schema.ActivityPendingApproval, a.Status)
	assert.Len(t, a.ApprovalChain, 2)

	items, total, err := f.svc.Activities.List(f.ctx, ActivityFilter{Status: schema.ActivityPendingApproval}, Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, a.ID, items[0].ID)
}

func TestProfessionalServiceDeleteGuard(t *testing.T) {
	f := setup(t)
	p := f.project(t, "Site", "1000")
	ps := f.hourlyService(t, p.ID)
	a, err := f.svc.Activities.Create(f.ctx, architect, ActivityInput{
		ServiceID: str(ps.ID), Title: str("Visit"), Date: day("2026-03-10"),
	})
	require.NoError(t, err)
	_, err = f.svc.Activities.Submit(f.ctx, architect, a.ID, "")
	require.NoError(t, err)
	_, err = f.svc.Activities.Approve(f.ctx, manager, a.ID, "")
	require.NoError(t, err)

	err = f.svc.Professionals.Delete(f.ctx, manager, ps.ID)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	require.NoError(t, f.svc.Activities.Delete(f.ctx, owner, a.ID))
	require.NoError(t, f.svc.Professionals.Delete(f.ctx, manager, ps.ID))
	_, err = f.svc.Professionals.Get(f.ctx, ps.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSupplierDeleteGuard(t *testing.T) {
	f := setup(t)
	p := f.project(t, "Site", "1000")
	sup := f.supplier(t, "TimberCo")
	res := f.sentOrder(t, p.ID, sup.ID, []schema.OrderItem{{Description: "Beams", Quantity: 4, UnitPrice: dec("100")}})

	err := f.svc.Suppliers.Delete(f.ctx, accountant, sup.ID)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr, "open orders block deletion")

	_, err = f.svc.Orders.Cancel(f.ctx, accountant, res.Order.ID, "")
	require.NoError(t, err)
	require.NoError(t, f.svc.Suppliers.Delete(f.ctx, accountant, sup.ID))

	items, total, err := f.svc.Suppliers.List(f.ctx, "", Page{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestSupplierUpdate(t *testing.T) {
	f := setup(t)
	sup := f.supplier(t, "TimberCo")

	updated, err := f.svc.Suppliers.Update(f.ctx, accountant, sup.ID, SupplierInput{Email: str(" sales@timber.example ")})
	require.NoError(t, err)
	assert.Equal(t, "sales@timber.example", updated.Email)
	assert.Equal(t, "TimberCo", updated.Name)

	_, err = f.svc.Suppliers.Update(f.ctx, accountant, sup.ID, SupplierInput{Name: str("")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}
