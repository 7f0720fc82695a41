// Package policy is the access policy engine: a pure function from
// (actor, operation, target) to an allow/deny decision. It holds no state
// and must be re-evaluated on every call with a freshly resolved actor,
// because roles and active flags can change between requests.
package policy

import (
	"github.com/KhaledAOsman/empower-task/domain/profile"
)

// Operation names an action an actor can attempt.
type Operation string

const (
	OpCreateProfile    Operation = "create_profile"
	OpUpdateProfile    Operation = "update_profile"
	OpReadProfile      Operation = "read_profile"
	OpListEmployees    Operation = "list_employees"
	OpCreateTask       Operation = "create_task"
	OpReadTask         Operation = "read_task"
	OpUpdateTask       Operation = "update_task"
	OpUpdateTaskStatus Operation = "update_task_status"
	OpListTasks        Operation = "list_tasks"
	OpReadHistory      Operation = "read_history"
	OpReadMetrics      Operation = "read_metrics"
)

// Reason explains a denial.
type Reason string

const (
	// ReasonInactiveActor denies every operation from a deactivated profile.
	ReasonInactiveActor Reason = "inactive actor"
	// ReasonRoleForbidden denies operations the actor's role never permits.
	ReasonRoleForbidden Reason = "role not permitted"
	// ReasonNotOwner denies access to another employee's resources.
	ReasonNotOwner Reason = "not the owner"
)

// Actor is an immutable snapshot of a resolved profile. Callers build it
// from a profile loaded in the current request, never from cached state.
// It is small enough to travel inside service requests between modules.
type Actor struct {
	ID     string       `json:"id"`
	Role   profile.Role `json:"role"`
	Active bool         `json:"active"`
}

// Target identifies the resource an operation acts on. OwnerID is the
// assignee for tasks and history, the profile itself for profile and
// metrics reads. Collection-scoped operations leave it empty.
type Target struct {
	OwnerID string
}

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Allow returns a permitting decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a rejecting decision with the given reason.
func Deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// ActorOf builds an actor snapshot from a profile.
func ActorOf(p *profile.Profile) Actor {
	return Actor{ID: p.ID, Role: p.Role, Active: p.Active}
}

// Authorize decides whether actor may perform op on target.
// Precedence: inactive actors are denied everything; managers are allowed
// everything; employees are allowed their own resources only, and may mutate
// nothing but the status of their own tasks.
func Authorize(actor Actor, op Operation, target Target) Decision {
	if !actor.Active {
		return Deny(ReasonInactiveActor)
	}

	switch actor.Role {
	case profile.RoleManager:
		return Allow()

	case profile.RoleEmployee:
		switch op {
		case OpReadProfile, OpReadMetrics, OpReadTask, OpReadHistory, OpUpdateTaskStatus:
			if target.OwnerID == actor.ID {
				return Allow()
			}
			return Deny(ReasonNotOwner)
		case OpListTasks:
			// Allowed, but the query surface scopes results to own tasks.
			return Allow()
		default:
			return Deny(ReasonRoleForbidden)
		}
	}

	return Deny(ReasonRoleForbidden)
}
