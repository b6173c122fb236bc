package scope

import (
	"fmt"
	"log/slog"
	"strings"
)

// Assignments fixes which projects each scope kind can see.
type Assignments struct {
	// AllProjects is every known project; only its size is used for enterprise scopes.
	AllProjects []string
	// Portfolio is the project-executive's project set.
	Portfolio []string
	// Single is the project-manager's assigned project.
	Single string
}

// Resolver maps role strings to scopes. It is safe for concurrent use once built.
type Resolver struct {
	policy      *Policy
	assignments Assignments
	logger      *slog.Logger
}

// NewResolver creates a resolver over a capability policy and project assignments.
func NewResolver(policy *Policy, assignments Assignments, logger *slog.Logger) *Resolver {
	return &Resolver{policy: policy, assignments: assignments, logger: logger}
}

// ParseRole normalises a role string. Unknown values return RoleLimited and false.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleExecutive:
		return RoleExecutive, true
	case RoleProjectExecutive:
		return RoleProjectExecutive, true
	case RoleProjectManager:
		return RoleProjectManager, true
	default:
		return RoleLimited, false
	}
}

// Resolve returns the scope for role. Unrecognised roles get the limited scope.
func (r *Resolver) Resolve(raw string) Scope {
	role, known := ParseRole(raw)
	if !known && r.logger != nil {
		r.logger.Warn("unknown role, using limited scope", "role", raw)
	}
	return r.scopeFor(role)
}

// ResolveStrict is Resolve that rejects unrecognised roles.
func (r *Resolver) ResolveStrict(raw string) (Scope, error) {
	role, known := ParseRole(raw)
	if !known {
		return Scope{}, fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
	return r.scopeFor(role), nil
}

func (r *Resolver) scopeFor(role Role) Scope {
	switch role {
	case RoleExecutive:
		return Scope{
			Role:         role,
			Kind:         KindEnterprise,
			ProjectCount: len(r.assignments.AllProjects),
			Capabilities: r.policy.Capabilities(role),
		}
	case RoleProjectExecutive:
		ids := append([]string(nil), r.assignments.Portfolio...)
		return Scope{
			Role:         role,
			Kind:         KindPortfolio,
			ProjectIDs:   ids,
			ProjectCount: len(ids),
			Capabilities: r.policy.Capabilities(role),
		}
	case RoleProjectManager:
		sc := Scope{
			Role:         role,
			Kind:         KindSingle,
			Capabilities: r.policy.Capabilities(role),
		}
		if r.assignments.Single != "" {
			sc.ProjectIDs = []string{r.assignments.Single}
			sc.ProjectCount = 1
		}
		return sc
	default:
		return Scope{Role: RoleLimited, Kind: KindSingle}
	}
}
