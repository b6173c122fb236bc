// Package fixtures embeds the sample projects and module records used to seed
// a fresh database and to drive tests.
package fixtures

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/rpggio/jobsite/internal/domain/constraint"
	"github.com/rpggio/jobsite/internal/domain/permit"
	"github.com/rpggio/jobsite/internal/domain/procurement"
	"github.com/rpggio/jobsite/internal/domain/project"
)

//go:embed data/*.json
var data embed.FS

// Projects returns the sample projects.
func Projects() ([]project.Project, error) {
	return load[project.Project]("projects.json")
}

// Procurement returns the sample procurement log.
func Procurement() ([]procurement.Entry, error) {
	return load[procurement.Entry]("procurement.json")
}

// Permits returns the sample permit log.
func Permits() ([]permit.Permit, error) {
	return load[permit.Permit]("permits.json")
}

// Constraints returns the sample constraints log.
func Constraints() ([]constraint.Constraint, error) {
	return load[constraint.Constraint]("constraints.json")
}

func load[T any](name string) ([]T, error) {
	raw, err := data.ReadFile("data/" + name)
	if err != nil {
		return nil, fmt.Errorf("reading fixture %s: %w", name, err)
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding fixture %s: %w", name, err)
	}
	return out, nil
}
