package scope_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rpggio/jobsite/internal/scope"
	"github.com/stretchr/testify/require"
)

func newResolver(t *testing.T) *scope.Resolver {
	t.Helper()
	policy, err := scope.NewPolicy()
	require.NoError(t, err)
	return scope.NewResolver(policy, scope.Assignments{
		AllProjects: []string{"p1", "p2", "p3", "p4"},
		Portfolio:   []string{"p1", "p2"},
		Single:      "p3",
	}, nil)
}

func TestResolve_KnownRoles(t *testing.T) {
	r := newResolver(t)

	exec := r.Resolve("executive")
	require.Equal(t, scope.KindEnterprise, exec.Kind)
	require.Equal(t, 4, exec.ProjectCount)
	require.True(t, exec.Allows("anything"))
	require.Equal(t, scope.Capabilities{Create: true, Edit: true, Approve: true, Sync: true, Export: true}, exec.Capabilities)

	pe := r.Resolve("project-executive")
	require.Equal(t, scope.KindPortfolio, pe.Kind)
	require.Equal(t, 2, pe.ProjectCount)
	require.True(t, pe.Allows("p2"))
	require.False(t, pe.Allows("p3"))
	require.True(t, pe.Capabilities.Approve)
	require.False(t, pe.Capabilities.Sync)

	pm := r.Resolve("Project-Manager ")
	require.Equal(t, scope.KindSingle, pm.Kind)
	require.Equal(t, []string{"p3"}, pm.ProjectIDs)
	require.Equal(t, 1, pm.ProjectCount)
	require.False(t, pm.Can(scope.ActionApprove))
	require.True(t, pm.Can(scope.ActionSync))
}

func TestResolve_UnknownRoleIsLimited(t *testing.T) {
	r := newResolver(t)

	sc := r.Resolve("superintendent")
	require.Equal(t, scope.RoleLimited, sc.Role)
	require.Equal(t, scope.KindSingle, sc.Kind)
	require.Zero(t, sc.ProjectCount)
	require.False(t, sc.Allows("p1"))
	for _, action := range scope.Actions {
		require.False(t, sc.Can(action), action)
	}
}

func TestResolveStrict(t *testing.T) {
	r := newResolver(t)

	_, err := r.ResolveStrict("exec")
	require.ErrorIs(t, err, scope.ErrUnknownRole)

	sc, err := r.ResolveStrict("executive")
	require.NoError(t, err)
	require.Equal(t, scope.KindEnterprise, sc.Kind)
}

func TestResolve_IsDeterministic(t *testing.T) {
	r := newResolver(t)
	require.Equal(t, r.Resolve("project-executive"), r.Resolve("project-executive"))
}

func TestNewPolicyFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.csv")
	require.NoError(t, os.WriteFile(path, []byte("p, project-manager, records, export\n"), 0o644))

	policy, err := scope.NewPolicyFromFile(path)
	require.NoError(t, err)
	require.True(t, policy.Allowed(scope.RoleProjectManager, scope.ActionExport))
	require.False(t, policy.Allowed(scope.RoleProjectManager, scope.ActionCreate))
	require.False(t, policy.Allowed(scope.RoleExecutive, scope.ActionExport))
}
