package mcp

import (
	"context"
	"encoding/json"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolDefinition describes a callable tool.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

var moduleProperty = map[string]any{
	"type":        "string",
	"description": "Module name: procurement, permit or constraint (see list_modules)",
}

func filterProperty() map[string]any {
	return map[string]any{
		"type":        "object",
		"description": "Narrowing criteria; omitted fields do not filter",
		"properties": map[string]any{
			"search": map[string]any{
				"type":        "string",
				"description": "Case-insensitive substring over the module's searchable fields",
			},
			"equals": map[string]any{
				"type":                 "object",
				"description":          "Equality filters keyed by field (status, type, category, assignee, ...); \"all\" disables a key",
				"additionalProperties": map[string]any{"type": "string"},
			},
			"from": map[string]any{
				"type":        "string",
				"description": "Inclusive lower bound on the module's date field (YYYY-MM-DD or RFC 3339)",
			},
			"to": map[string]any{
				"type":        "string",
				"description": "Inclusive upper bound on the module's date field",
			},
			"amounts": map[string]any{
				"type":        "object",
				"description": "Numeric bounds keyed by amount field, e.g. {\"fee\": {\"min\": \"1000\"}}",
				"additionalProperties": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"min": map[string]any{"type": []string{"string", "number"}},
						"max": map[string]any{"type": []string{"string", "number"}},
					},
				},
			},
			"flags": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Derived flags that must all hold, e.g. expiring, overdue",
			},
			"within_days": map[string]any{
				"type":        "integer",
				"description": "Look-ahead window for date flags (default 30)",
			},
		},
	}
}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Orientation
		{
			Name:        "get_scope",
			Description: "Show the caller's role, visible projects and capabilities",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "list_modules",
			Description: "List the record modules with their statuses, filter fields, flags and rates",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},

		// Reading
		{
			Name:        "query_records",
			Description: "List a module's records visible to the caller, filtered, with KPI stats for the result",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"module":  moduleProperty,
					"filters": filterProperty(),
				},
				"required": []string{"module"},
			},
		},
		{
			Name:        "record_stats",
			Description: "Summarise a module's filtered records: totals, status and category counts, rates, amount sums",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"module":  moduleProperty,
					"filters": filterProperty(),
				},
				"required": []string{"module"},
			},
		},
		{
			Name:        "get_recent_activity",
			Description: "List recent audit entries, newest first",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"project_id": map[string]any{"type": "string"},
					"module":     map[string]any{"type": "string"},
					"record_id":  map[string]any{"type": "string"},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum entries (default 50)",
					},
				},
			},
		},

		// Writing
		{
			Name:        "create_record",
			Description: "Create a record in a project visible to the caller (requires create)",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"module": moduleProperty,
					"record": map[string]any{
						"type":        "object",
						"description": "Record fields as returned by query_records; id and timestamps are assigned",
					},
				},
				"required": []string{"module", "record"},
			},
		},
		{
			Name:        "update_record",
			Description: "Replace a record's fields (requires edit)",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"module": moduleProperty,
					"id":     map[string]any{"type": "string"},
					"record": map[string]any{"type": "object"},
				},
				"required": []string{"module", "id", "record"},
			},
		},
		{
			Name:        "approve_record",
			Description: "Apply the module's approval transition to a record (requires approve)",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"module": moduleProperty,
					"id":     map[string]any{"type": "string"},
				},
				"required": []string{"module", "id"},
			},
		},
		{
			Name:        "sync_module",
			Description: "Refresh a module from its upstream system (requires sync)",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"module": moduleProperty,
				},
				"required": []string{"module"},
			},
		},
		{
			Name:        "export_records",
			Description: "Export a module's filtered records to the server's export directory (requires export)",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"module": moduleProperty,
					"format": map[string]any{
						"type": "string",
						"enum": []string{"pdf", "excel", "csv"},
					},
					"file_name": map[string]any{
						"type":        "string",
						"description": "File name; the format's extension is appended when missing",
					},
					"filters": filterProperty(),
				},
				"required": []string{"module", "format"},
			},
		},
	}
}

func registerTools(server *sdkmcp.Server, handler *Handler) {
	for _, def := range buildToolCatalog() {
		name := def.Name
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}
			result, err := handler.Handle(ctx, name, args)
			if err != nil {
				return toolError(err), nil
			}
			return toolResult(result)
		})
	}
}

func toolResult(result any) (*sdkmcp.CallToolResult, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil
}

func toolError(err error) *sdkmcp.CallToolResult {
	payload := MapError(err)
	if payload == nil {
		if apiErr, ok := err.(*APIError); ok {
			payload = apiErr
		} else {
			payload = &APIError{Code: "INTERNAL", Message: err.Error()}
		}
	}
	data, _ := json.Marshal(payload)
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}
