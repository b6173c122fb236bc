package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `jobsite serves construction-management record logs scoped by role.

Core concepts:
- Module: a record log. procurement (buyouts and deliveries), permit (permits and expirations), constraint (issues blocking work).
- Scope: what your role sees and may do. executive sees every project; project-executive a portfolio; project-manager one project. Unknown roles see nothing.
- Filters: search, equality (status/type/category/assignee), date range, amount bounds and derived flags. They only ever narrow a list.
- Stats: totals, status and category counts, rates (percent of the filtered list) and amount sums, always computed on the filtered list.

Default workflow:
1) Orient: call get_scope, then list_modules.
2) Read: query_records or record_stats with filters.
3) Act: approve_record, create_record, update_record, sync_module. Each needs the matching capability.
4) Share: export_records writes pdf, excel or csv files of the filtered list.

Docs:
- jobsite://docs/index
- jobsite://docs/roles
- jobsite://docs/filters
- jobsite://docs/modules
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "jobsite://docs/index",
		Name:        "docs_index",
		Title:       "jobsite docs index",
		Description: "Entry point for agent-facing docs.",
		Content: `# jobsite: Agent Docs Index

Read only what the task needs.

- jobsite://docs/roles: what each role sees and may do.
- jobsite://docs/filters: the filter stages and their edge cases.
- jobsite://docs/modules: per-module fields, flags, rates and approval rules.

## Quick start

1. get_scope to learn your visible projects and capabilities.
2. query_records with {"module": "permit", "filters": {"flags": ["expiring"]}}.
3. export_records with the same filters to hand the list to someone else.
`,
	},
	{
		URI:         "jobsite://docs/roles",
		Name:        "docs_roles",
		Title:       "Roles and scopes",
		Description: "Role to scope mapping and default capabilities.",
		Content: `# Roles and scopes

| Role | Scope | create | edit | approve | sync | export |
|---|---|---|---|---|---|---|
| executive | every project | yes | yes | yes | yes | yes |
| project-executive | portfolio projects | yes | yes | yes | no | yes |
| project-manager | one project | yes | yes | no | yes | yes |
| anything else | no projects | no | no | no | no | no |

Capabilities come from the server's policy and may differ; get_scope is authoritative.

Records of projects outside your scope are never listed. Addressing one by id returns OUT_OF_SCOPE.
`,
	},
	{
		URI:         "jobsite://docs/filters",
		Name:        "docs_filters",
		Title:       "Filters",
		Description: "Filter stages, order and edge cases.",
		Content: `# Filters

Stages run in this order and each one narrows the previous result:

1. Scope: only projects your role can see.
2. search: case-insensitive substring over the module's text fields. Blank means no filter.
3. equals: exact match per field. The value "all" (any case) or an empty value means no filter. Unknown keys are ignored.
4. from / to: inclusive range on the module's date field. A bare date as "to" covers the whole day. If from is after to the range is ignored.
   amounts: {"<field>": {"min": ..., "max": ...}} bounds, inclusive.
5. flags: derived conditions evaluated now, all must hold. within_days sets the look-ahead (default 30). Unknown flags are ignored.

Filters never fail: malformed values are dropped.
`,
	},
	{
		URI:         "jobsite://docs/modules",
		Name:        "docs_modules",
		Title:       "Modules",
		Description: "Fields, flags, rates and approval for each module.",
		Content: `# Modules

## procurement
- Date field: required_on_site. Amount: contract_value. Extra equality key: vendor.
- Flags: overdue (required on site in the past, not delivered or cancelled).
- Rates: award_rate (awarded, ordered or delivered), completion_rate (delivered).
- Approve: draft or bidding becomes awarded.

## permit
- Date field: expires_at. Amount: fee.
- Flags: expiring (approved or renewed, expires within the window), expired_active (past expiration but still approved or renewed).
- Rates: approval_rate (approved or renewed), compliance_rate (not expired or rejected).
- Approve: pending becomes approved.

## constraint
- Date field: due_at.
- Flags: overdue (past due and not resolved or closed), due_soon (due within the window).
- Rates: completion_rate (resolved or closed).
- Approve: in_progress becomes resolved.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
