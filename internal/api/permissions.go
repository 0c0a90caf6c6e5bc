package api

import "github.com/celerix-dev/celerix-build/pkg/schema"

// Action names a permission checked before a handler runs.
type Action string

const (
	ActRead              Action = "read"
	ActProjectsWrite     Action = "projects:write"
	ActPhasesWrite       Action = "phases:write"
	ActTemplatesWrite    Action = "templates:write"
	ActTemplatesApply    Action = "templates:apply"
	ActServicesWrite     Action = "services:write"
	ActMaterialsWrite    Action = "materials:write"
	ActMaterialsApprove  Action = "materials:approve"
	ActActivitiesWrite   Action = "activities:write"
	ActActivitiesApprove Action = "activities:approve"
	ActSuppliersWrite    Action = "suppliers:write"
	ActOrdersWrite       Action = "orders:write"
	ActOrdersApprove     Action = "orders:approve"
	ActOrdersReceive     Action = "orders:receive"
	ActFinancesRead      Action = "finances:read"
	ActFinancesWrite     Action = "finances:write"
	ActDashboardRead     Action = "dashboard:read"
)

var (
	managers = []schema.Role{schema.RoleOwner, schema.RoleProjectManager}
	finance  = []schema.Role{schema.RoleOwner, schema.RoleProjectManager, schema.RoleAccountant}
	site     = []schema.Role{schema.RoleOwner, schema.RoleProjectManager, schema.RoleSiteEngineer}
)

var permissions = map[Action][]schema.Role{
	ActRead:              schema.Roles,
	ActProjectsWrite:     managers,
	ActPhasesWrite:       managers,
	ActTemplatesWrite:    managers,
	ActTemplatesApply:    managers,
	ActServicesWrite:     managers,
	ActMaterialsWrite:    site,
	ActMaterialsApprove:  managers,
	ActActivitiesWrite:   {schema.RoleOwner, schema.RoleProjectManager, schema.RoleSiteEngineer, schema.RoleProfessional},
	ActActivitiesApprove: managers,
	ActSuppliersWrite:    finance,
	ActOrdersWrite:       finance,
	ActOrdersApprove:     managers,
	ActOrdersReceive:     site,
	ActFinancesRead:      finance,
	ActFinancesWrite:     {schema.RoleOwner, schema.RoleAccountant},
	ActDashboardRead:     finance,
}

// Allowed reports whether role may perform action. Unknown actions are denied.
func Allowed(role schema.Role, action Action) bool {
	for _, r := range permissions[action] {
		if r == role {
			return true
		}
	}
	return false
}
