package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/jobsite/internal/auth"
	"github.com/rpggio/jobsite/internal/domain/activity"
	"github.com/rpggio/jobsite/internal/domain/constraint"
	"github.com/rpggio/jobsite/internal/domain/permit"
	"github.com/rpggio/jobsite/internal/domain/record"
	"github.com/rpggio/jobsite/internal/pipeline"
	"github.com/rpggio/jobsite/internal/testserver"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, opts ...testserver.Option) (*Handler, string) {
	t.Helper()
	a, cfg := testserver.NewApp(t, opts...)
	return NewHandler(a.Modules, a.Scopes, a.Activity, cfg.Export.Dir), cfg.Export.Dir
}

func asRole(role string) context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{UserID: role + "-user", Role: role})
}

func call(t *testing.T, h *Handler, ctx context.Context, method string, params any) (any, error) {
	t.Helper()
	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		require.NoError(t, err)
		raw = data
	}
	return h.Handle(ctx, method, raw)
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok, "expected APIError, got %T: %v", err, err)
	require.Equal(t, code, apiErr.Code)
}

func TestHandler_GetScope(t *testing.T) {
	h, _ := newTestHandler(t)

	res, err := call(t, h, asRole("project-manager"), "get_scope", nil)
	require.NoError(t, err)
	out := res.(ScopeResponse)
	require.Equal(t, "project-manager-user", out.Principal.UserID)
	require.Equal(t, []string{"harbor-tower"}, out.Scope.ProjectIDs)
	require.False(t, out.Scope.Capabilities.Approve)
}

func TestHandler_NoPrincipal(t *testing.T) {
	h, _ := newTestHandler(t)

	_, err := h.Handle(context.Background(), "get_scope", nil)
	requireCode(t, err, "UNAUTHORIZED")
}

func TestHandler_ListModules(t *testing.T) {
	h, _ := newTestHandler(t)

	res, err := call(t, h, asRole("executive"), "list_modules", nil)
	require.NoError(t, err)
	mods := res.(ListModulesResponse).Modules
	require.Len(t, mods, 3)
	require.Equal(t, []string{"procurement", "permit", "constraint"}, []string{mods[0].Name, mods[1].Name, mods[2].Name})
}

func TestHandler_QueryRecords(t *testing.T) {
	h, _ := newTestHandler(t)

	res, err := call(t, h, asRole("project-executive"), "query_records", QueryRecordsParams{
		Module: permit.Module,
		Filters: FilterParams{
			Equals: map[string]string{"category": "structural"},
		},
	})
	require.NoError(t, err)
	out := res.(*record.QueryResult)
	require.Equal(t, 2, out.Count)
	perms := out.Records.([]permit.Permit)
	require.Equal(t, "pm-001", perms[0].ID)
	require.Equal(t, "pm-004", perms[1].ID)
	require.Equal(t, 2, out.Stats.ByStatus["approved"])
}

func TestHandler_QueryRecords_UnknownModule(t *testing.T) {
	h, _ := newTestHandler(t)

	_, err := call(t, h, asRole("executive"), "query_records", QueryRecordsParams{Module: "rfi"})
	requireCode(t, err, "UNKNOWN_MODULE")
}

func TestHandler_QueryRecords_BadParams(t *testing.T) {
	h, _ := newTestHandler(t)

	_, err := h.Handle(asRole("executive"), "query_records", json.RawMessage(`{"module": 7}`))
	requireCode(t, err, "INVALID_INPUT")
}

func TestHandler_RecordStats(t *testing.T) {
	h, _ := newTestHandler(t)

	res, err := call(t, h, asRole("executive"), "record_stats", QueryRecordsParams{Module: constraint.Module})
	require.NoError(t, err)
	stats := res.(pipeline.Stats)
	require.Equal(t, 5, stats.Total)
	require.Equal(t, 40.0, stats.Rates[constraint.RateCompletion])
	require.Equal(t, 2, stats.CategoryCounts()["design"])
}

func TestHandler_ApproveRecord(t *testing.T) {
	h, _ := newTestHandler(t)

	_, err := call(t, h, asRole("project-manager"), "approve_record", ApproveRecordParams{Module: constraint.Module, ID: "cn-002"})
	requireCode(t, err, "FORBIDDEN")

	res, err := call(t, h, asRole("executive"), "approve_record", ApproveRecordParams{Module: constraint.Module, ID: "cn-002"})
	require.NoError(t, err)
	require.Equal(t, constraint.StatusResolved, res.(constraint.Constraint).Status)

	_, err = call(t, h, asRole("executive"), "approve_record", ApproveRecordParams{Module: constraint.Module, ID: "cn-001"})
	requireCode(t, err, "INVALID_TRANSITION")

	_, err = call(t, h, asRole("project-executive"), "approve_record", ApproveRecordParams{Module: constraint.Module, ID: "cn-005"})
	requireCode(t, err, "OUT_OF_SCOPE")
}

func TestHandler_CreateAndUpdateRecord(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := asRole("project-manager")

	res, err := call(t, h, ctx, "create_record", CreateRecordParams{
		Module: constraint.Module,
		Record: map[string]any{
			"project_id": "harbor-tower",
			"title":      "Tower crane base not poured",
			"category":   "logistics",
			"assignee":   "J. Ruiz",
		},
	})
	require.NoError(t, err)
	created := res.(constraint.Constraint)
	require.NotEmpty(t, created.ID)
	require.Equal(t, constraint.StatusOpen, created.Status)

	res, err = call(t, h, ctx, "update_record", UpdateRecordParams{
		Module: constraint.Module,
		ID:     created.ID,
		Record: map[string]any{
			"project_id": "harbor-tower",
			"title":      "Tower crane base not poured",
			"category":   "logistics",
			"assignee":   "J. Ruiz",
			"status":     "in_progress",
		},
	})
	require.NoError(t, err)
	require.Equal(t, constraint.StatusInProgress, res.(constraint.Constraint).Status)

	_, err = call(t, h, ctx, "update_record", UpdateRecordParams{
		Module: constraint.Module,
		ID:     "missing",
		Record: map[string]any{"project_id": "harbor-tower"},
	})
	requireCode(t, err, "RECORD_NOT_FOUND")
}

func TestHandler_SyncModule(t *testing.T) {
	h, _ := newTestHandler(t)

	res, err := call(t, h, asRole("executive"), "sync_module", ModuleParams{Module: permit.Module})
	require.NoError(t, err)
	synced := res.(record.SyncResult)
	require.Equal(t, 6, synced.Records)

	_, err = call(t, h, asRole("project-executive"), "sync_module", ModuleParams{Module: permit.Module})
	requireCode(t, err, "FORBIDDEN")
}

func TestHandler_ExportRecords(t *testing.T) {
	h, dir := newTestHandler(t)

	res, err := call(t, h, asRole("project-manager"), "export_records", ExportRecordsParams{
		Module:   permit.Module,
		Format:   "csv",
		FileName: "../harbor permits",
	})
	require.NoError(t, err)
	out := res.(ExportRecordsResponse)
	require.Equal(t, "harbor permits.csv", out.FileName)
	require.Equal(t, 3, out.Rows)
	require.Equal(t, filepath.Join(dir, "harbor permits.csv"), out.Path)

	data, err := os.ReadFile(out.Path)
	require.NoError(t, err)
	require.Contains(t, string(data), "BP-2024-1187")

	_, err = call(t, h, asRole("executive"), "export_records", ExportRecordsParams{Module: permit.Module, Format: "docx"})
	requireCode(t, err, "UNSUPPORTED_FORMAT")
}

func TestHandler_GetRecentActivity(t *testing.T) {
	h, _ := newTestHandler(t)

	_, err := call(t, h, asRole("executive"), "approve_record", ApproveRecordParams{Module: permit.Module, ID: "pm-002"})
	require.NoError(t, err)

	res, err := call(t, h, asRole("project-manager"), "get_recent_activity", GetRecentActivityParams{Module: permit.Module})
	require.NoError(t, err)
	entries := res.(GetRecentActivityResponse).Activity
	require.Len(t, entries, 1)
	require.Equal(t, "executive-user", entries[0].Actor)

	_, err = call(t, h, asRole("project-manager"), "get_recent_activity", GetRecentActivityParams{ProjectID: "north-depot"})
	requireCode(t, err, "OUT_OF_SCOPE")
}

func TestHandler_UnknownMethod(t *testing.T) {
	h, _ := newTestHandler(t)

	_, err := call(t, h, asRole("executive"), "delete_everything", nil)
	require.ErrorContains(t, err, "unknown method")
}

func TestToolAttrs(t *testing.T) {
	attrs := toolAttrs(&sdkmcp.CallToolParamsRaw{Name: "query_records", Arguments: json.RawMessage(`{"module":"permit"}`)})
	require.Equal(t, []any{"tool", "query_records", "module", "permit"}, attrs)

	attrs = toolAttrs(&sdkmcp.CallToolParamsRaw{Name: "get_scope"})
	require.Equal(t, []any{"tool", "get_scope"}, attrs)

	require.Nil(t, toolAttrs(nil))
}

func TestHandler_ProjectlessActivityStaysWithActor(t *testing.T) {
	h, _ := newTestHandler(t)

	_, err := call(t, h, asRole("executive"), "export_records", ExportRecordsParams{Module: permit.Module, Format: "docx", FileName: "q1"})
	requireCode(t, err, "UNSUPPORTED_FORMAT")

	res, err := call(t, h, asRole("executive"), "get_recent_activity", GetRecentActivityParams{Module: permit.Module})
	require.NoError(t, err)
	entries := res.(GetRecentActivityResponse).Activity
	require.Len(t, entries, 1)
	require.Equal(t, activity.TypeExportFailed, entries[0].ActivityType)
	require.Contains(t, entries[0].Details, "docx")

	res, err = call(t, h, asRole("project-manager"), "get_recent_activity", GetRecentActivityParams{Module: permit.Module})
	require.NoError(t, err)
	require.Empty(t, res.(GetRecentActivityResponse).Activity)

	_, err = call(t, h, asRole("project-manager"), "export_records", ExportRecordsParams{Module: permit.Module, Format: "csv"})
	require.NoError(t, err)
	res, err = call(t, h, asRole("project-manager"), "get_recent_activity", GetRecentActivityParams{Module: permit.Module})
	require.NoError(t, err)
	entries = res.(GetRecentActivityResponse).Activity
	require.Len(t, entries, 1)
	require.Equal(t, activity.TypeExportCompleted, entries[0].ActivityType)
	require.Equal(t, "project-manager-user", entries[0].Actor)
}
