package authorize

import (
	"context"
	"log/slog"
)

// DefaultPolicies is the baseline permission set. Business roles apply in
// every biz: domain through the wildcard domain.
func DefaultPolicies() []PermissionPolicy {
	return []PermissionPolicy{
		// Platform superadmin
		{RolePlatformSuperAdmin, DomainSys, WildcardResource, WildcardAction, EffectAllow},

		// Owner: everything in the business, including role grants
		{RoleBusinessOwner, WildcardDomain, WildcardResource, WildcardAction, EffectAllow},

		// Manager: day-to-day operations without RBAC
		{RoleBusinessManager, WildcardDomain, ResourceJob, ActionManage, EffectAllow},
		{RoleBusinessManager, WildcardDomain, ResourceJob, ActionGenerate, EffectAllow},
		{RoleBusinessManager, WildcardDomain, ResourceSchedule, ActionRead, EffectAllow},
		{RoleBusinessManager, WildcardDomain, ResourceInvoice, ActionSend, EffectAllow},
		{RoleBusinessManager, WildcardDomain, ResourceClient, ActionManage, EffectAllow},
		{RoleBusinessManager, WildcardDomain, ResourceEmployee, ActionManage, EffectAllow},
		{RoleBusinessManager, WildcardDomain, ResourceExpense, ActionManage, EffectAllow},
		{RoleBusinessManager, WildcardDomain, ResourceReport, ActionRead, EffectAllow},
		{RoleBusinessManager, WildcardDomain, ResourceRBAC, ActionGrant, EffectDeny},

		// Staff: see the schedule and update their jobs
		{RoleBusinessStaff, WildcardDomain, ResourceSchedule, ActionRead, EffectAllow},
		{RoleBusinessStaff, WildcardDomain, ResourceJob, ActionRead, EffectAllow},
		{RoleBusinessStaff, WildcardDomain, ResourceJob, ActionList, EffectAllow},
		{RoleBusinessStaff, WildcardDomain, ResourceJob, ActionUpdate, EffectAllow},
		{RoleBusinessStaff, WildcardDomain, ResourceClient, ActionRead, EffectAllow},
		{RoleBusinessStaff, WildcardDomain, ResourceClient, ActionList, EffectAllow},

		// Automation: batch generation only
		{RoleAutomation, WildcardDomain, ResourceJob, ActionGenerate, EffectAllow},
	}
}

// SeedDefaultPolicies sets up the baseline RBAC policies for the system.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization) error {
	logger := slog.Default()

	policies := DefaultPolicies()
	for _, p := range policies {
		added, err := auth.AddPermission(ctx, p.Subject, p.Domain, p.Object, p.Action, p.Effect)
		if err != nil {
			logger.Error("failed to add policy", "policy", p, "error", err)
			return err
		}
		if added {
			logger.Debug("added policy", "role", p.Subject, "domain", p.Domain, "resource", p.Object, "action", p.Action)
		}
	}

	logger.Info("seeded default RBAC policies", "count", len(policies))
	return nil
}

// AssignBusinessOwnerRole makes userID the owner of businessID.
// Call this when a business account is created.
func AssignBusinessOwnerRole(ctx context.Context, auth IAuthorization, userID, businessID string) error {
	_, err := auth.AddRoleForUserInDomain(ctx, GroupSubject(userID), RoleBusinessOwner, BusinessDomain(businessID))
	return err
}

// AssignBusinessRole grants a business role to a user inside one business.
func AssignBusinessRole(ctx context.Context, auth IAuthorization, userID, businessID string, role Role) error {
	switch role {
	case RoleBusinessOwner, RoleBusinessManager, RoleBusinessStaff, RoleAutomation:
	default:
		return ErrInvalidArgs
	}

	_, err := auth.AddRoleForUserInDomain(ctx, GroupSubject(userID), role, BusinessDomain(businessID))
	return err
}

// RemoveBusinessRole removes a business role from a user.
func RemoveBusinessRole(ctx context.Context, auth IAuthorization, userID, businessID string, role Role) error {
	_, err := auth.RemoveRoleForUserInDomain(ctx, GroupSubject(userID), role, BusinessDomain(businessID))
	return err
}

// GetBusinessRoles returns all roles a user has in a business.
func GetBusinessRoles(ctx context.Context, auth IAuthorization, userID, businessID string) ([]Role, error) {
	return auth.GetRolesForUserInDomain(ctx, GroupSubject(userID), BusinessDomain(businessID))
}

// AssignSuperAdmin grants the platform superadmin role. Only the CLI calls this.
func AssignSuperAdmin(ctx context.Context, auth IAuthorization, userID string) error {
	_, err := auth.AddRoleForUserInDomain(ctx, GroupSubject(userID), RolePlatformSuperAdmin, DomainSys)
	return err
}
