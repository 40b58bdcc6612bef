package workflow

import (
	"context"

	"taskflow/internal/domain"
	"taskflow/internal/model"

	"github.com/google/uuid"
)

// validateDependencies checks a proposed dependency set for the task and
// returns the resolved dependency tasks. Rules, in order:
//
//  1. every id must resolve to a task inside projectID (atomic reject),
//  2. the task may not depend on itself,
//  3. if the update is completing the task, every dependency must already
//     be completed.
//
// Only direct self-reference is prevented; multi-hop cycles are not
// detected.
func (s *Service) validateDependencies(ctx context.Context, depIDs []uuid.UUID, projectID, taskID uuid.UUID, completing bool) ([]model.Task, error) {
	unique := make([]uuid.UUID, 0, len(depIDs))
	seen := make(map[uuid.UUID]bool, len(depIDs))
	for _, id := range depIDs {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	if len(unique) == 0 {
		return nil, nil
	}

	deps, err := s.tasks.FindByIDsInProject(ctx, unique, projectID)
	if err != nil {
		return nil, err
	}
	if len(deps) != len(unique) {
		return nil, domain.Errorf(domain.ErrInvalidDependencySet,
			"one or more specified dependencies are invalid or not part of this project")
	}

	if taskID != uuid.Nil && seen[taskID] {
		return nil, domain.Errorf(domain.ErrSelfDependency, "a task cannot depend on itself")
	}

	if completing {
		for _, dep := range deps {
			if dep.Status != model.StatusCompleted {
				return nil, domain.Errorf(domain.ErrDependencyNotSatisfied,
					"cannot complete task: dependent tasks are not yet completed")
			}
		}
	}

	return deps, nil
}
