package scope

// Role identifies a dashboard persona.
type Role string

const (
	RoleExecutive        Role = "executive"
	RoleProjectExecutive Role = "project-executive"
	RoleProjectManager   Role = "project-manager"
	RoleLimited          Role = "limited"
)

// Kind is the breadth of project visibility granted by a role.
type Kind string

const (
	KindEnterprise Kind = "enterprise"
	KindPortfolio  Kind = "portfolio"
	KindSingle     Kind = "single"
)

// Action names a capability checked against the policy.
type Action string

const (
	ActionCreate  Action = "create"
	ActionEdit    Action = "edit"
	ActionApprove Action = "approve"
	ActionSync    Action = "sync"
	ActionExport  Action = "export"
)

// Actions lists every capability in display order.
var Actions = []Action{ActionCreate, ActionEdit, ActionApprove, ActionSync, ActionExport}

// Capabilities is the set of write/export operations a scope may perform.
type Capabilities struct {
	Create  bool `json:"create"`
	Edit    bool `json:"edit"`
	Approve bool `json:"approve"`
	Sync    bool `json:"sync"`
	Export  bool `json:"export"`
}

// Scope is the resolved visibility and capability set for a role.
type Scope struct {
	Role         Role         `json:"role"`
	Kind         Kind         `json:"kind"`
	ProjectIDs   []string     `json:"project_ids,omitempty"`
	ProjectCount int          `json:"project_count"`
	Capabilities Capabilities `json:"capabilities"`
}

// Allows reports whether records of projectID are visible in the scope.
func (s Scope) Allows(projectID string) bool {
	if s.Kind == KindEnterprise {
		return true
	}
	for _, id := range s.ProjectIDs {
		if id == projectID {
			return true
		}
	}
	return false
}

// Can reports whether the scope grants action.
func (s Scope) Can(action Action) bool {
	switch action {
	case ActionCreate:
		return s.Capabilities.Create
	case ActionEdit:
		return s.Capabilities.Edit
	case ActionApprove:
		return s.Capabilities.Approve
	case ActionSync:
		return s.Capabilities.Sync
	case ActionExport:
		return s.Capabilities.Export
	default:
		return false
	}
}
