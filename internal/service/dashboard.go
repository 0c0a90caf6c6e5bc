package service

import (
	"context"

	"github.com/celerix-dev/celerix-build/pkg/schema"
)

type DashboardService struct {
	base
}

// Portfolio summarises the finances and pending approvals of every live project.
func (s *DashboardService) Portfolio(ctx context.Context) (*schema.Portfolio, error) {
	projects, err := projectsOf(s.store).list(ctx)
	if err != nil {
		return nil, err
	}
	sortNewest(projects)
	l, err := loadLedger(ctx, s.base)
	if err != nil {
		return nil, err
	}

	out := &schema.Portfolio{
		Projects:    make([]schema.PortfolioProject, 0, len(projects)),
		ByStatus:    map[schema.ProjectStatus]int{},
		GeneratedAt: s.timestamp(),
	}
	for _, p := range projects {
		sum := l.summarize(p)
		out.Projects = append(out.Projects, schema.PortfolioProject{
			ProjectID:   p.ID,
			Name:        p.Name,
			Status:      p.Status,
			Budget:      sum.Budget,
			Spent:       sum.Spent,
			Committed:   sum.Committed,
			Remaining:   sum.Remaining,
			PercentUsed: sum.PercentUsed,
			Health:      sum.Health,
		})
		out.Totals.Budget = out.Totals.Budget.Add(sum.Budget)
		out.Totals.Spent = out.Totals.Spent.Add(sum.Spent)
		out.Totals.Committed = out.Totals.Committed.Add(sum.Committed)
		out.Totals.Remaining = out.Totals.Remaining.Add(sum.Remaining)
		out.ByStatus[p.Status]++
	}

	live := make(map[string]bool, len(projects))
	for _, p := range projects {
		live[p.ID] = true
	}
	for _, m := range l.materials {
		if live[m.ProjectID] && m.Status == schema.MaterialPendingApproval {
			out.PendingApprovals.Materials++
		}
	}
	for _, a := range l.activities {
		if live[a.ProjectID] && a.Status == schema.ActivityPendingApproval {
			out.PendingApprovals.Activities++
		}
	}
	for _, o := range l.orders {
		if live[o.ProjectID] && o.Status == schema.OrderPendingApproval {
			out.PendingApprovals.PurchaseOrders++
		}
	}
	return out, nil
}
