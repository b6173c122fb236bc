package activity

import "github.com/rpggio/jobsite/internal/scope"

// Visible filters entries down to what sc may see. Project-bound entries
// follow the scope's project set. Entries without a project are visible to
// enterprise scopes and to the actor who produced them.
func Visible(entries []ActivityEntry, sc scope.Scope, actor string) []ActivityEntry {
	out := make([]ActivityEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.ProjectID != "" {
			if sc.Allows(entry.ProjectID) {
				out = append(out, entry)
			}
			continue
		}
		if sc.Kind == scope.KindEnterprise || (actor != "" && entry.Actor == actor) {
			out = append(out, entry)
		}
	}
	return out
}
