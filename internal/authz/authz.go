// Package authz holds the static role/resource/action permission matrix.
//
// The matrix is plain data compiled into the binary: permission changes ship
// as a reviewed code change, never as stored configuration. Absence of a
// role, resource or action always means denial.
package authz

import "strings"

// Role is one of the seven closed platform roles.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleInsurerAdmin Role = "INSURER_ADMIN"
	RoleInsurerAgent Role = "INSURER_AGENT"
	RolePharmacist   Role = "PHARMACIST"
	RoleDoctor       Role = "DOCTOR"
	RoleLabManager   Role = "LAB_MANAGER"
	RoleClinicAdmin  Role = "CLINIC_ADMIN"
)

// Roles lists every defined role.
var Roles = []Role{
	RoleAdmin,
	RoleInsurerAdmin,
	RoleInsurerAgent,
	RolePharmacist,
	RoleDoctor,
	RoleLabManager,
	RoleClinicAdmin,
}

// Known reports whether r is a defined role.
func (r Role) Known() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Resource is one of the nine domain nouns permissions are granted on.
type Resource string

const (
	ResourceUsers           Resource = "users"
	ResourceProviders       Resource = "providers"
	ResourceAdherents       Resource = "adherents"
	ResourceInsurers        Resource = "insurers"
	ResourceContracts       Resource = "contracts"
	ResourceClaims          Resource = "claims"
	ResourceReconciliations Resource = "reconciliations"
	ResourceConventions     Resource = "conventions"
	ResourceAuditLogs       Resource = "audit_logs"
)

// Resources lists every defined resource.
var Resources = []Resource{
	ResourceUsers,
	ResourceProviders,
	ResourceAdherents,
	ResourceInsurers,
	ResourceContracts,
	ResourceClaims,
	ResourceReconciliations,
	ResourceConventions,
	ResourceAuditLogs,
}

// Action is a capability on a resource.
type Action string

const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionList    Action = "list"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// Actions lists every defined action.
var Actions = []Action{
	ActionCreate,
	ActionRead,
	ActionUpdate,
	ActionDelete,
	ActionList,
	ActionApprove,
	ActionReject,
}

const crudl = "create,read,update,delete,list"

// matrix is the role -> resource -> actions grant table. A resource missing
// under a role grants nothing on that resource.
var matrix = map[Role]map[Resource]string{
	RoleAdmin: {
		ResourceUsers:           crudl,
		ResourceProviders:       crudl,
		ResourceAdherents:       crudl,
		ResourceInsurers:        crudl,
		ResourceContracts:       crudl,
		ResourceClaims:          crudl + ",approve,reject",
		ResourceReconciliations: crudl,
		ResourceConventions:     crudl,
		ResourceAuditLogs:       "read,list",
	},
	RoleInsurerAdmin: {
		ResourceUsers:           "create,read,update,list",
		ResourceProviders:       "read,list",
		ResourceAdherents:       "create,read,update,list",
		ResourceInsurers:        "read,update",
		ResourceContracts:       "create,read,update,list",
		ResourceClaims:          "read,update,list,approve,reject",
		ResourceReconciliations: "create,read,list",
		ResourceConventions:     "create,read,update,list",
		ResourceAuditLogs:       "read,list",
	},
	RoleInsurerAgent: {
		ResourceProviders:       "read,list",
		ResourceAdherents:       "create,read,update,list",
		ResourceContracts:       "create,read,update,list",
		ResourceClaims:          "read,list,approve,reject",
		ResourceReconciliations: "read,list",
		ResourceConventions:     "read,list",
	},
	RolePharmacist: {
		ResourceAdherents: "read",
		ResourceContracts: "read",
		ResourceClaims:    "create,read,list",
	},
	RoleDoctor: {
		ResourceAdherents: "read",
		ResourceContracts: "read",
		ResourceClaims:    "create,read,list",
	},
	RoleLabManager: {
		ResourceAdherents: "read",
		ResourceContracts: "read",
		ResourceClaims:    "create,read,list",
	},
	RoleClinicAdmin: {
		ResourceAdherents: "read",
		ResourceContracts: "read",
		ResourceClaims:    "create,read,list",
	},
}

// permissions is the expanded lookup form of matrix, built once at init.
var permissions = func() map[Role]map[Resource]map[Action]struct{} {
	out := make(map[Role]map[Resource]map[Action]struct{}, len(matrix))
	for role, grants := range matrix {
		byResource := make(map[Resource]map[Action]struct{}, len(grants))
		for resource, actions := range grants {
			set := make(map[Action]struct{})
			for _, a := range strings.Split(actions, ",") {
				set[Action(a)] = struct{}{}
			}
			byResource[resource] = set
		}
		out[role] = byResource
	}
	return out
}()

// HasPermission reports whether role may perform action on resource.
// Any unknown role, resource or action denies.
func HasPermission(role Role, resource Resource, action Action) bool {
	grants, ok := permissions[role]
	if !ok {
		return false
	}
	set, ok := grants[resource]
	if !ok {
		return false
	}
	_, ok = set[action]
	return ok
}

// PermissionsFor returns a copy of every grant held by role.
func PermissionsFor(role Role) map[Resource][]Action {
	grants, ok := permissions[role]
	if !ok {
		return map[Resource][]Action{}
	}
	out := make(map[Resource][]Action, len(grants))
	for resource, set := range grants {
		actions := make([]Action, 0, len(set))
		for _, a := range Actions {
			if _, ok := set[a]; ok {
				actions = append(actions, a)
			}
		}
		out[resource] = actions
	}
	return out
}

// CanAccessRoute maps an HTTP method onto the matrix. GET is satisfied by
// either read or list; unrecognized methods always deny.
func CanAccessRoute(role Role, resource Resource, method string) bool {
	switch strings.ToUpper(method) {
	case "GET":
		return HasPermission(role, resource, ActionRead) || HasPermission(role, resource, ActionList)
	case "POST":
		return HasPermission(role, resource, ActionCreate)
	case "PUT", "PATCH":
		return HasPermission(role, resource, ActionUpdate)
	case "DELETE":
		return HasPermission(role, resource, ActionDelete)
	default:
		return false
	}
}

// CanManageClaims reports whether role may approve or reject claims.
func CanManageClaims(role Role) bool {
	return HasPermission(role, ResourceClaims, ActionApprove) ||
		HasPermission(role, ResourceClaims, ActionReject)
}

// CanManageReconciliations reports whether role may originate reconciliations.
func CanManageReconciliations(role Role) bool {
	return HasPermission(role, ResourceReconciliations, ActionCreate)
}
