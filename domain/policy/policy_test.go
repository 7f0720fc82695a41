package policy

import (
	"testing"

	"github.com/KhaledAOsman/empower-task/domain/profile"
)

func TestAuthorize(t *testing.T) {
	manager := Actor{ID: "mgr-1", Role: profile.RoleManager, Active: true}
	employee := Actor{ID: "emp-1", Role: profile.RoleEmployee, Active: true}

	tests := []struct {
		name       string
		actor      Actor
		op         Operation
		target     Target
		wantAllow  bool
		wantReason Reason
	}{
		{
			name:      "manager creates profile",
			actor:     manager,
			op:        OpCreateProfile,
			wantAllow: true,
		},
		{
			name:      "manager creates task",
			actor:     manager,
			op:        OpCreateTask,
			wantAllow: true,
		},
		{
			name:      "manager updates status on anyone's task",
			actor:     manager,
			op:        OpUpdateTaskStatus,
			target:    Target{OwnerID: "emp-2"},
			wantAllow: true,
		},
		{
			name:      "manager reads anyone's history",
			actor:     manager,
			op:        OpReadHistory,
			target:    Target{OwnerID: "emp-2"},
			wantAllow: true,
		},
		{
			name:      "manager reads anyone's metrics",
			actor:     manager,
			op:        OpReadMetrics,
			target:    Target{OwnerID: "emp-2"},
			wantAllow: true,
		},
		{
			name:      "employee reads own profile",
			actor:     employee,
			op:        OpReadProfile,
			target:    Target{OwnerID: "emp-1"},
			wantAllow: true,
		},
		{
			name:       "employee reads another profile",
			actor:      employee,
			op:         OpReadProfile,
			target:     Target{OwnerID: "emp-2"},
			wantAllow:  false,
			wantReason: ReasonNotOwner,
		},
		{
			name:      "employee reads own task",
			actor:     employee,
			op:        OpReadTask,
			target:    Target{OwnerID: "emp-1"},
			wantAllow: true,
		},
		{
			name:       "employee reads another's task",
			actor:      employee,
			op:         OpReadTask,
			target:     Target{OwnerID: "emp-2"},
			wantAllow:  false,
			wantReason: ReasonNotOwner,
		},
		{
			name:      "employee updates status on own task",
			actor:     employee,
			op:        OpUpdateTaskStatus,
			target:    Target{OwnerID: "emp-1"},
			wantAllow: true,
		},
		{
			name:       "employee updates status on another's task",
			actor:      employee,
			op:         OpUpdateTaskStatus,
			target:     Target{OwnerID: "emp-2"},
			wantAllow:  false,
			wantReason: ReasonNotOwner,
		},
		{
			name:       "employee edits task fields",
			actor:      employee,
			op:         OpUpdateTask,
			target:     Target{OwnerID: "emp-1"},
			wantAllow:  false,
			wantReason: ReasonRoleForbidden,
		},
		{
			name:       "employee creates task",
			actor:      employee,
			op:         OpCreateTask,
			wantAllow:  false,
			wantReason: ReasonRoleForbidden,
		},
		{
			name:       "employee creates profile",
			actor:      employee,
			op:         OpCreateProfile,
			wantAllow:  false,
			wantReason: ReasonRoleForbidden,
		},
		{
			name:       "employee lists employees",
			actor:      employee,
			op:         OpListEmployees,
			wantAllow:  false,
			wantReason: ReasonRoleForbidden,
		},
		{
			name:      "employee lists tasks (scoped by query surface)",
			actor:     employee,
			op:        OpListTasks,
			wantAllow: true,
		},
		{
			name:      "employee reads own history",
			actor:     employee,
			op:        OpReadHistory,
			target:    Target{OwnerID: "emp-1"},
			wantAllow: true,
		},
		{
			name:       "employee reads another's history",
			actor:      employee,
			op:         OpReadHistory,
			target:     Target{OwnerID: "emp-2"},
			wantAllow:  false,
			wantReason: ReasonNotOwner,
		},
		{
			name:       "inactive manager denied everything",
			actor:      Actor{ID: "mgr-2", Role: profile.RoleManager, Active: false},
			op:         OpCreateTask,
			wantAllow:  false,
			wantReason: ReasonInactiveActor,
		},
		{
			name:       "inactive employee denied own reads",
			actor:      Actor{ID: "emp-3", Role: profile.RoleEmployee, Active: false},
			op:         OpReadProfile,
			target:     Target{OwnerID: "emp-3"},
			wantAllow:  false,
			wantReason: ReasonInactiveActor,
		},
		{
			name:       "unknown role denied",
			actor:      Actor{ID: "x-1", Role: "contractor", Active: true},
			op:         OpReadTask,
			target:     Target{OwnerID: "x-1"},
			wantAllow:  false,
			wantReason: ReasonRoleForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Authorize(tt.actor, tt.op, tt.target)
			if got.Allowed != tt.wantAllow {
				t.Errorf("Authorize() allowed = %v, want %v", got.Allowed, tt.wantAllow)
			}
			if !tt.wantAllow && got.Reason != tt.wantReason {
				t.Errorf("Authorize() reason = %q, want %q", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestAuthorizeIsStateless(t *testing.T) {
	// Same inputs must yield the same decision every time.
	actor := Actor{ID: "emp-1", Role: profile.RoleEmployee, Active: true}
	target := Target{OwnerID: "emp-2"}

	first := Authorize(actor, OpReadTask, target)
	for i := 0; i < 10; i++ {
		if got := Authorize(actor, OpReadTask, target); got != first {
			t.Fatalf("decision changed between calls: %+v vs %+v", got, first)
		}
	}
}

func TestActorOf(t *testing.T) {
	p := &profile.Profile{ID: "p-1", Role: profile.RoleManager, Active: true, Username: "boss"}
	actor := ActorOf(p)

	if actor.ID != "p-1" || actor.Role != profile.RoleManager || !actor.Active {
		t.Errorf("ActorOf() = %+v, want snapshot of profile fields", actor)
	}
}
