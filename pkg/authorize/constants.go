package authorize

import (
	"fmt"
	"regexp"
	"strings"
)

type Action string
type Resource string
type Role string
type Domain string

// ----------------------------
// Actions
// ----------------------------

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"

	// ActionManage implies create, read, update, delete and list.
	ActionManage Action = "manage"

	// ActionGenerate materializes recurring job instances.
	ActionGenerate Action = "generate"
	// ActionSend dispatches an outbound message such as an invoice.
	ActionSend Action = "send"

	ActionGrant  Action = "grant"
	ActionRevoke Action = "revoke"
)

const (
	WildcardAction Action = "*"
)

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdate: {}, ActionDelete: {}, ActionList: {},
	ActionManage: {}, ActionGenerate: {}, ActionSend: {},
	ActionGrant: {}, ActionRevoke: {},
}

// ----------------------------
// Resources
// ----------------------------

const (
	WildcardResource Resource = "*"

	ResourceJob      Resource = "job"
	ResourceSchedule Resource = "schedule"
	ResourceInvoice  Resource = "invoice"
	ResourceClient   Resource = "client"
	ResourceEmployee Resource = "employee"
	ResourceExpense  Resource = "expense"
	ResourceReport   Resource = "report"

	ResourceSystem Resource = "system"
	ResourceAudit  Resource = "audit"
	ResourceRBAC   Resource = "rbac"
)

var KnownResources = map[Resource]struct{}{
	ResourceJob: {}, ResourceSchedule: {}, ResourceInvoice: {},
	ResourceClient: {}, ResourceEmployee: {}, ResourceExpense: {}, ResourceReport: {},
	ResourceSystem: {}, ResourceAudit: {}, ResourceRBAC: {},
}

// ----------------------------
// Roles
// ----------------------------
//
// These are the "policy subjects" we assign to users via grouping policies.

const (
	WildcardRole Role = "*"

	// Platform role (domain = sys)
	RolePlatformSuperAdmin Role = "role:platform:superadmin"

	// Business roles (domain = biz:<uuid>)
	RoleBusinessOwner   Role = "role:business:owner"
	RoleBusinessManager Role = "role:business:manager"
	RoleBusinessStaff   Role = "role:business:staff"

	// RoleAutomation is held by cron and service callers that only trigger
	// batch generation.
	RoleAutomation Role = "role:business:automation"
)

var KnownRoles = map[Role]struct{}{
	RolePlatformSuperAdmin: {},
	RoleBusinessOwner:      {},
	RoleBusinessManager:    {},
	RoleBusinessStaff:      {},
	RoleAutomation:         {},
}

// ----------------------------
// Domains
// ----------------------------

const (
	DomainSys Domain = "sys"
)

const (
	DomainPrefixBusiness Domain = "biz:"
)

const (
	WildcardDomain Domain = "*"
)

var (
	reUUID = regexp.MustCompile(`^[0-9a-fA-F-]{36}$`)
)

func BusinessDomain(businessID string) Domain {
	return Domain(fmt.Sprintf("%s%s", DomainPrefixBusiness, businessID))
}

// IsValidDomain checks whether d is a recognised domain string.
func IsValidDomain(d Domain) bool {
	if d == DomainSys || d == WildcardDomain {
		return true
	}
	id, ok := strings.CutPrefix(string(d), string(DomainPrefixBusiness))
	return ok && reUUID.MatchString(id)
}

// ----------------------------
// Casbin tuple helpers
// ----------------------------

type PolicyEffect string

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// GroupSubject is the g.sub in Casbin: a concrete principal id (user_id or service_id).
type GroupSubject string

// Grouping rows: g, user_id, role, domain
type GroupingPolicy struct {
	Subject GroupSubject
	Role    Role
	Domain  Domain
}

// Permission rows: p, role, domain, resource, action, eft
type PermissionPolicy struct {
	Subject Role
	Domain  Domain
	Object  Resource
	Action  Action
	Effect  PolicyEffect
}
