package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rpggio/jobsite/internal/auth"
	"github.com/rpggio/jobsite/internal/domain/activity"
	"github.com/rpggio/jobsite/internal/domain/record"
	"github.com/rpggio/jobsite/internal/export"
)

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Handler dispatches tool calls to the record modules.
type Handler struct {
	modules   *record.Registry
	scopes    *auth.Scopes
	activity  ActivityService
	exportDir string
}

// NewHandler creates a handler. Exports are written below exportDir.
func NewHandler(modules *record.Registry, scopes *auth.Scopes, activitySvc ActivityService, exportDir string) *Handler {
	return &Handler{
		modules:   modules,
		scopes:    scopes,
		activity:  activitySvc,
		exportDir: exportDir,
	}
}

// Handle runs method with params as the principal stored in ctx.
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	sc, err := h.scopes.FromContext(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	switch method {
	case "get_scope":
		principal, _ := auth.FromContext(ctx)
		return ScopeResponse{Principal: principal, Scope: sc}, nil
	case "list_modules":
		return ListModulesResponse{Modules: h.modules.Describe()}, nil
	case "query_records":
		var req QueryRecordsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		mod, err := h.module(req.Module)
		if err != nil {
			return nil, err
		}
		res, err := mod.Query(ctx, sc, req.Filters.State())
		if err != nil {
			return nil, mapError(err)
		}
		return res, nil
	case "record_stats":
		var req QueryRecordsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		mod, err := h.module(req.Module)
		if err != nil {
			return nil, err
		}
		stats, err := mod.Stats(ctx, sc, req.Filters.State())
		if err != nil {
			return nil, mapError(err)
		}
		return stats, nil
	case "create_record":
		var req CreateRecordParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		mod, err := h.module(req.Module)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(req.Record)
		if err != nil {
			return nil, mapError(fmt.Errorf("%w: %v", record.ErrInvalidInput, err))
		}
		rec, err := mod.Create(ctx, sc, payload)
		if err != nil {
			return nil, mapError(err)
		}
		return rec, nil
	case "update_record":
		var req UpdateRecordParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		mod, err := h.module(req.Module)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(req.Record)
		if err != nil {
			return nil, mapError(fmt.Errorf("%w: %v", record.ErrInvalidInput, err))
		}
		rec, err := mod.Update(ctx, sc, req.ID, payload)
		if err != nil {
			return nil, mapError(err)
		}
		return rec, nil
	case "approve_record":
		var req ApproveRecordParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		mod, err := h.module(req.Module)
		if err != nil {
			return nil, err
		}
		rec, err := mod.Approve(ctx, sc, req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return rec, nil
	case "sync_module":
		var req ModuleParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		mod, err := h.module(req.Module)
		if err != nil {
			return nil, err
		}
		res, err := mod.Sync(ctx, sc)
		if err != nil {
			return nil, mapError(err)
		}
		return res, nil
	case "export_records":
		var req ExportRecordsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		mod, err := h.module(req.Module)
		if err != nil {
			return nil, err
		}
		sink := export.DirSink{Dir: h.exportDir}
		opts := export.Options{Format: export.LookupFormat(req.Format), FileName: req.FileName}
		res, err := mod.Export(ctx, sc, req.Filters.State(), opts, sink)
		if err != nil {
			return nil, mapError(err)
		}
		return ExportRecordsResponse{Result: res, Path: sink.Path(res.FileName)}, nil
	case "get_recent_activity":
		var req GetRecentActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.ProjectID != "" && !sc.Allows(req.ProjectID) {
			return nil, mapError(record.ErrOutOfScope)
		}
		entries, err := h.activity.GetRecentActivity(ctx, activity.ListActivityOptions{
			ProjectID: req.ProjectID,
			Module:    req.Module,
			RecordID:  req.RecordID,
			Limit:     req.Limit,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return GetRecentActivityResponse{Activity: activity.Visible(entries, sc, activity.ActorFromContext(ctx))}, nil
	default:
		return nil, fmt.Errorf("unknown method: %s", method)
	}
}

func (h *Handler) module(name string) (record.Module, error) {
	mod, err := h.modules.Get(name)
	if err != nil {
		return nil, mapError(err)
	}
	return mod, nil
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return mapError(fmt.Errorf("%w: %v", record.ErrInvalidInput, err))
	}
	return nil
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
