package workflow

import (
	"context"
	"fmt"
	"time"

	"taskflow/internal/authz"
	"taskflow/internal/broadcast"
	"taskflow/internal/domain"
	"taskflow/internal/model"
	"taskflow/internal/repository"

	"github.com/google/uuid"
)

type CreateTaskInput struct {
	Title        string
	Description  string
	Status       string
	Priority     string
	DueDate      *time.Time
	AssigneeID   *uuid.UUID
	Dependencies []uuid.UUID
}

// UpdateTaskInput carries a partial task update; nil pointers leave the
// field unchanged. Unassign clears the assignee explicitly.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	DueDate      *time.Time
	AssigneeID   *uuid.UUID
	Unassign     bool
	Dependencies *[]uuid.UUID
}

func (s *Service) CreateTask(ctx context.Context, principal domain.Principal, projectID uuid.UUID, input CreateTaskInput) (*model.Task, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.NotFoundf("project not found with id %s", projectID)
	}

	if !authz.CanAccess(principal, authz.TaskCreate, authz.Resource{Project: projectRef(project)}) {
		return nil, domain.Forbiddenf("not authorized to create tasks for this project")
	}

	if input.Title == "" {
		return nil, domain.InvalidInputf("please add a title for the task")
	}

	status := input.Status
	if status == "" {
		status = model.StatusOpen
	}
	if !model.ValidStatus(status) {
		return nil, domain.InvalidInputf("invalid status %q", status)
	}

	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !model.ValidPriority(priority) {
		return nil, domain.InvalidInputf("invalid priority %q", priority)
	}

	if input.AssigneeID != nil {
		assignee, err := s.users.GetByID(ctx, *input.AssigneeID)
		if err != nil {
			return nil, err
		}
		if assignee == nil {
			return nil, domain.InvalidInputf("specified assignee does not exist")
		}
	}

	deps, err := s.validateDependencies(ctx, input.Dependencies, projectID, uuid.Nil, status == model.StatusCompleted)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		Title:        input.Title,
		Description:  input.Description,
		Status:       status,
		Priority:     priority,
		DueDate:      input.DueDate,
		ProjectID:    projectID,
		CreatedByID:  principal.ID,
		AssigneeID:   input.AssigneeID,
		Dependencies: deps,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	created, err := s.tasks.GetByID(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	s.broadcaster.Publish(broadcast.ProjectScope(projectID), broadcast.EventNewTask, created)

	if created.AssigneeID != nil && *created.AssigneeID != principal.ID {
		s.notifier.Notify(ctx, *created.AssigneeID,
			fmt.Sprintf("You have been assigned to the task: %q in project %q", created.Title, project.Name),
			"/tasks/"+created.ID.String())
	}

	return created, nil
}

func (s *Service) GetTask(ctx context.Context, principal domain.Principal, id uuid.UUID) (*model.Task, error) {
	task, project, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if !authz.CanAccess(principal, authz.TaskRead, authz.Resource{Project: projectRef(project)}) {
		return nil, domain.Forbiddenf("not authorized to access this task")
	}

	return task, nil
}

func (s *Service) ListProjectTasks(ctx context.Context, principal domain.Principal, projectID uuid.UUID, filter repository.TaskFilter) ([]model.Task, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.NotFoundf("project not found with id %s", projectID)
	}

	if !authz.CanAccess(principal, authz.TaskRead, authz.Resource{Project: projectRef(project)}) {
		return nil, domain.Forbiddenf("not authorized to access this project")
	}

	return s.tasks.ListByProject(ctx, projectID, filter)
}

func (s *Service) UpdateTask(ctx context.Context, principal domain.Principal, id uuid.UUID, input UpdateTaskInput) (*model.Task, error) {
	task, project, err := s.loadTask(ctx, id)
	if err != nil {
		return nil, err
	}

	resource := authz.Resource{Project: projectRef(project), TaskAssigneeID: task.AssigneeID}
	if !authz.CanAccess(principal, authz.TaskUpdate, resource) {
		return nil, domain.Forbiddenf("not authorized to update this task")
	}

	oldStatus := task.Status
	oldAssigneeID := task.AssigneeID

	if input.Title != nil {
		if *input.Title == "" {
			return nil, domain.InvalidInputf("task title cannot be empty")
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !model.ValidStatus(*input.Status) {
			return nil, domain.InvalidInputf("invalid status %q", *input.Status)
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !model.ValidPriority(*input.Priority) {
			return nil, domain.InvalidInputf("invalid priority %q", *input.Priority)
		}
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	switch {
	case input.Unassign:
		task.AssigneeID = nil
	case input.AssigneeID != nil:
		assignee, err := s.users.GetByID(ctx, *input.AssigneeID)
		if err != nil {
			return nil, err
		}
		if assignee == nil {
			return nil, domain.InvalidInputf("specified assignee does not exist")
		}
		task.AssigneeID = input.AssigneeID
	}

	// The completion gate fires only when this update moves the task into
	// completed; it applies to the effective dependency set, whether or not
	// the update replaces it. A dependency reopened later never blocks
	// unrelated edits of an already-completed task.
	depIDs := task.DependencyIDs()
	if input.Dependencies != nil {
		depIDs = *input.Dependencies
	}
	completing := input.Status != nil && *input.Status == model.StatusCompleted
	deps, err := s.validateDependencies(ctx, depIDs, task.ProjectID, task.ID, completing)
	if err != nil {
		return nil, err
	}

	if input.Dependencies != nil {
		if err := s.tasks.UpdateWithDependencies(ctx, task, deps); err != nil {
			return nil, err
		}
	} else if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	updated, err := s.tasks.GetByID(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	s.broadcaster.Publish(broadcast.ProjectScope(updated.ProjectID), broadcast.EventTaskUpdated, updated)
	s.broadcaster.Publish(broadcast.TaskScope(updated.ID), broadcast.EventTaskUpdated, updated)

	assigneeChanged := updated.AssigneeID != nil &&
		(oldAssigneeID == nil || *oldAssigneeID != *updated.AssigneeID)
	if assigneeChanged && *updated.AssigneeID != principal.ID {
		s.notifier.Notify(ctx, *updated.AssigneeID,
			fmt.Sprintf("You have been assigned to the task: %q in project %q", updated.Title, project.Name),
			"/tasks/"+updated.ID.String())
	}

	if updated.Status != oldStatus {
		recipients := map[uuid.UUID]bool{
			updated.CreatedByID:   true,
			project.LeadManagerID: true,
		}
		if updated.AssigneeID != nil {
			recipients[*updated.AssigneeID] = true
		}
		delete(recipients, principal.ID)

		message := fmt.Sprintf("Task %q status changed to %q in project %q",
			updated.Title, updated.Status, project.Name)
		for recipientID := range recipients {
			s.notifier.Notify(ctx, recipientID, message, "/tasks/"+updated.ID.String())
		}
	}

	return updated, nil
}

func (s *Service) DeleteTask(ctx context.Context, principal domain.Principal, id uuid.UUID) error {
	task, project, err := s.loadTask(ctx, id)
	if err != nil {
		return err
	}

	if !authz.CanAccess(principal, authz.TaskDelete, authz.Resource{Project: projectRef(project)}) {
		return domain.Forbiddenf("not authorized to delete this task")
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}

	s.broadcaster.Publish(broadcast.ProjectScope(task.ProjectID), broadcast.EventTaskDeleted, id.String())
	return nil
}

// loadTask fetches a task and its owning project, translating misses into
// NotFound.
func (s *Service) loadTask(ctx context.Context, id uuid.UUID) (*model.Task, *model.Project, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if task == nil {
		return nil, nil, domain.NotFoundf("task not found with id %s", id)
	}

	project, err := s.projects.GetByID(ctx, task.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if project == nil {
		return nil, nil, domain.NotFoundf("associated project not found")
	}

	return task, project, nil
}
