// Package directory is the employee record store, backed by Neo4j
// (:Employee) nodes. The chat pipeline never writes here: the indexer reads
// records for embedding and cmd/seed populates them.
package directory

import (
	"context"
	"fmt"

	"github.com/StaffPilotAI/staffpilot/engine/domain"
	"github.com/StaffPilotAI/staffpilot/pkg/repo"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const pageSize = 100

// Store provides access to employee records.
type Store struct {
	repo repo.Repository[domain.Employee, string]
}

// New creates a Store over the given Neo4j driver.
func New(driver neo4j.DriverWithContext) *Store {
	return &Store{
		repo: repo.NewNeo4jRepo[domain.Employee, string](
			driver, "Employee", "id", employeeToMap, employeeFromRecord,
		),
	}
}

// NewWithRepo creates a Store over a pre-built repository. Used in tests.
func NewWithRepo(r repo.Repository[domain.Employee, string]) *Store {
	return &Store{repo: r}
}

// List returns all employee records, paging through the store.
func (s *Store) List(ctx context.Context) ([]domain.Employee, error) {
	var all []domain.Employee
	for offset := 0; ; offset += pageSize {
		page, err := s.repo.List(ctx, repo.ListOpts{Offset: offset, Limit: pageSize})
		if err != nil {
			return nil, fmt.Errorf("directory: list employees: %w", err)
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}

// Get fetches one employee by id.
func (s *Store) Get(ctx context.Context, id string) (domain.Employee, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Employee{}, fmt.Errorf("directory: get employee %s: %w", id, err)
	}
	return e, nil
}

// Upsert creates or replaces an employee record.
func (s *Store) Upsert(ctx context.Context, e domain.Employee) (domain.Employee, error) {
	if err := domain.ValidateEmployee(e); err != nil {
		return domain.Employee{}, err
	}
	stored, err := s.repo.Upsert(ctx, e)
	if err != nil {
		return domain.Employee{}, fmt.Errorf("directory: upsert employee %s: %w", e.ID, err)
	}
	return stored, nil
}

func employeeToMap(e domain.Employee) map[string]any {
	return map[string]any{
		"id":         e.ID,
		"name":       e.Name,
		"email":      e.Email,
		"position":   e.Position,
		"department": e.Department,
		"skills":     e.Skills,
		"bio":        e.Bio,
		"experience": e.Experience,
	}
}

func employeeFromRecord(rec *neo4j.Record) (domain.Employee, error) {
	if len(rec.Values) == 0 {
		return domain.Employee{}, fmt.Errorf("directory: empty record")
	}
	node, ok := rec.Values[0].(neo4j.Node)
	if !ok {
		return domain.Employee{}, fmt.Errorf("directory: unexpected record value %T", rec.Values[0])
	}
	props := node.Props

	e := domain.Employee{
		ID:         stringProp(props, "id"),
		Name:       stringProp(props, "name"),
		Email:      stringProp(props, "email"),
		Position:   stringProp(props, "position"),
		Department: stringProp(props, "department"),
		Bio:        stringProp(props, "bio"),
	}
	if v, ok := props["experience"].(int64); ok {
		e.Experience = int(v)
	}
	if raw, ok := props["skills"].([]any); ok {
		skills := make([]string, 0, len(raw))
		for _, s := range raw {
			if str, ok := s.(string); ok {
				skills = append(skills, str)
			}
		}
		if len(skills) > 0 {
			e.Skills = skills
		}
	}
	return e, nil
}

func stringProp(props map[string]any, key string) string {
	v, _ := props[key].(string)
	return v
}
