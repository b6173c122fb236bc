package scope

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

const policyObject = "records"

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// DefaultPolicy is the built-in role → capability table.
var DefaultPolicy = map[Role][]Action{
	RoleExecutive:        {ActionCreate, ActionEdit, ActionApprove, ActionSync, ActionExport},
	RoleProjectExecutive: {ActionCreate, ActionEdit, ActionApprove, ActionExport},
	RoleProjectManager:   {ActionCreate, ActionEdit, ActionSync, ActionExport},
}

// Policy answers capability questions for a role.
type Policy struct {
	enforcer *casbin.Enforcer
}

// NewPolicy builds a policy from the built-in table.
func NewPolicy() (*Policy, error) {
	return NewPolicyFromTable(DefaultPolicy)
}

// NewPolicyFromTable builds a policy from an explicit role → actions table.
func NewPolicyFromTable(table map[Role][]Action) (*Policy, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	enf, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}

	rules := make([][]string, 0)
	for role, actions := range table {
		for _, action := range actions {
			rules = append(rules, []string{string(role), policyObject, string(action)})
		}
	}
	if len(rules) > 0 {
		if _, err := enf.AddPolicies(rules); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
		}
	}
	return &Policy{enforcer: enf}, nil
}

// NewPolicyFromFile loads `p, role, records, action` lines from a casbin CSV file.
func NewPolicyFromFile(path string) (*Policy, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	enf, err := casbin.NewEnforcer(m, fileadapter.NewAdapter(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	return &Policy{enforcer: enf}, nil
}

// Allowed reports whether role may perform action. Enforcer errors deny.
func (p *Policy) Allowed(role Role, action Action) bool {
	if p == nil || p.enforcer == nil {
		return false
	}
	ok, err := p.enforcer.Enforce(string(role), policyObject, string(action))
	return err == nil && ok
}

// Capabilities evaluates every action for role.
func (p *Policy) Capabilities(role Role) Capabilities {
	return Capabilities{
		Create:  p.Allowed(role, ActionCreate),
		Edit:    p.Allowed(role, ActionEdit),
		Approve: p.Allowed(role, ActionApprove),
		Sync:    p.Allowed(role, ActionSync),
		Export:  p.Allowed(role, ActionExport),
	}
}
