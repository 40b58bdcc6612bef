package workflow

import (
	"context"
	"fmt"
	"math"

	"taskflow/internal/authz"
	"taskflow/internal/broadcast"
	"taskflow/internal/domain"
	"taskflow/internal/model"

	"github.com/google/uuid"
)

type CreateProjectInput struct {
	Name          string
	Description   string
	LeadManagerID *uuid.UUID
	TeamMemberIDs []uuid.UUID
}

type UpdateProjectInput struct {
	Name          *string
	Description   *string
	LeadManagerID *uuid.UUID
	TeamMemberIDs *[]uuid.UUID
}

// ProjectWithProgress is a project plus its task completion counters.
type ProjectWithProgress struct {
	model.Project
	TotalTasks     int64   `json:"total_tasks"`
	CompletedTasks int64   `json:"completed_tasks"`
	Progress       float64 `json:"progress"`
}

func (s *Service) CreateProject(ctx context.Context, principal domain.Principal, input CreateProjectInput) (*ProjectWithProgress, error) {
	if !authz.CanAccess(principal, authz.ProjectCreate, authz.Resource{}) {
		return nil, domain.Forbiddenf("not authorized to create projects")
	}

	if input.Name == "" {
		return nil, domain.InvalidInputf("please add a project name")
	}

	leadID := principal.ID
	if input.LeadManagerID != nil && *input.LeadManagerID != principal.ID {
		if !principal.IsAdmin() {
			return nil, domain.Forbiddenf("only administrators can set a different project lead manager")
		}
		if err := s.checkLeadCandidate(ctx, *input.LeadManagerID); err != nil {
			return nil, err
		}
		leadID = *input.LeadManagerID
	}

	existing, err := s.projects.FindByName(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Conflictf("a project named %q already exists", input.Name)
	}

	members, err := s.resolveMembers(ctx, input.TeamMemberIDs, leadID)
	if err != nil {
		return nil, err
	}

	project := &model.Project{
		Name:          input.Name,
		Description:   input.Description,
		LeadManagerID: leadID,
		CreatedByID:   principal.ID,
		TeamMembers:   members,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	created, err := s.projects.GetByID(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	for _, member := range members {
		if member.ID != principal.ID {
			s.notifier.Notify(ctx, member.ID,
				fmt.Sprintf("You have been added to the project: %q", created.Name),
				"/projects/"+created.ID.String())
		}
	}

	return s.withProgress(ctx, created)
}

func (s *Service) GetProject(ctx context.Context, principal domain.Principal, id uuid.UUID) (*ProjectWithProgress, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.NotFoundf("project not found with id %s", id)
	}

	if !authz.CanAccess(principal, authz.ProjectRead, authz.Resource{Project: projectRef(project)}) {
		return nil, domain.Forbiddenf("not authorized to access this project")
	}

	return s.withProgress(ctx, project)
}

// ListProjects returns the projects visible to the principal: everything for
// admins, led-or-member projects for managers, member projects for users.
func (s *Service) ListProjects(ctx context.Context, principal domain.Principal) ([]ProjectWithProgress, error) {
	var (
		projects []model.Project
		err      error
	)
	switch {
	case principal.IsAdmin():
		projects, err = s.projects.ListAll(ctx)
	case principal.IsManager():
		projects, err = s.projects.ListLedOrMember(ctx, principal.ID)
	default:
		projects, err = s.projects.ListMember(ctx, principal.ID)
	}
	if err != nil {
		return nil, err
	}

	result := make([]ProjectWithProgress, 0, len(projects))
	for i := range projects {
		withProgress, err := s.withProgress(ctx, &projects[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *withProgress)
	}
	return result, nil
}

func (s *Service) UpdateProject(ctx context.Context, principal domain.Principal, id uuid.UUID, input UpdateProjectInput) (*ProjectWithProgress, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.NotFoundf("project not found with id %s", id)
	}

	if !authz.CanAccess(principal, authz.ProjectUpdate, authz.Resource{Project: projectRef(project)}) {
		return nil, domain.Forbiddenf("not authorized to update this project")
	}

	leadID := project.LeadManagerID
	if input.LeadManagerID != nil && *input.LeadManagerID != project.LeadManagerID {
		if !authz.CanAccess(principal, authz.ProjectReassignLead, authz.Resource{Project: projectRef(project)}) {
			return nil, domain.Forbiddenf("only administrators can change the project lead manager")
		}
		if err := s.checkLeadCandidate(ctx, *input.LeadManagerID); err != nil {
			return nil, err
		}
		leadID = *input.LeadManagerID
	}

	if input.Name != nil && *input.Name != project.Name {
		if *input.Name == "" {
			return nil, domain.InvalidInputf("project name cannot be empty")
		}
		existing, err := s.projects.FindByName(ctx, *input.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domain.Conflictf("a project named %q already exists", *input.Name)
		}
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}

	oldMemberIDs := project.MemberIDs()
	proposed := oldMemberIDs
	if input.TeamMemberIDs != nil {
		proposed = *input.TeamMemberIDs
	}
	members, err := s.resolveMembers(ctx, proposed, leadID)
	if err != nil {
		return nil, err
	}
	diff := diffMembers(oldMemberIDs, memberIDsOf(members))

	project.LeadManagerID = leadID
	if err := s.projects.UpdateWithMembers(ctx, project, members); err != nil {
		return nil, err
	}

	updated, err := s.projects.GetByID(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	for _, memberID := range diff.Added {
		if memberID != principal.ID {
			s.notifier.Notify(ctx, memberID,
				fmt.Sprintf("You have been added to the project: %q", updated.Name),
				"/projects/"+updated.ID.String())
		}
	}
	for _, memberID := range diff.Removed {
		if memberID != principal.ID {
			s.notifier.Notify(ctx, memberID,
				fmt.Sprintf("You have been removed from the project: %q", updated.Name),
				"/projects")
		}
	}

	s.broadcaster.Publish(broadcast.ProjectScope(updated.ID), broadcast.EventProjectUpdated, updated)

	return s.withProgress(ctx, updated)
}

func (s *Service) DeleteProject(ctx context.Context, principal domain.Principal, id uuid.UUID) error {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if project == nil {
		return domain.NotFoundf("project not found with id %s", id)
	}

	if !authz.CanAccess(principal, authz.ProjectDelete, authz.Resource{Project: projectRef(project)}) {
		return domain.Forbiddenf("not authorized to delete this project")
	}

	if err := s.projects.DeleteWithTasks(ctx, id); err != nil {
		return err
	}

	s.broadcaster.Publish(broadcast.ProjectScope(id), broadcast.EventProjectDeleted, id.String())
	return nil
}

// checkLeadCandidate verifies that a user may hold the lead manager role.
func (s *Service) checkLeadCandidate(ctx context.Context, id uuid.UUID) error {
	candidate, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if candidate == nil || (candidate.Role != domain.RoleManager && candidate.Role != domain.RoleAdmin) {
		return domain.InvalidInputf("specified lead manager is not a valid manager or admin user")
	}
	return nil
}

func (s *Service) withProgress(ctx context.Context, project *model.Project) (*ProjectWithProgress, error) {
	total, err := s.tasks.CountByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	completed, err := s.tasks.CountCompletedByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	progress := 0.0
	if total > 0 {
		progress = math.Round(float64(completed)/float64(total)*10000) / 100
	}

	return &ProjectWithProgress{
		Project:        *project,
		TotalTasks:     total,
		CompletedTasks: completed,
		Progress:       progress,
	}, nil
}

func projectRef(project *model.Project) *authz.ProjectRef {
	return &authz.ProjectRef{
		LeadManagerID: project.LeadManagerID,
		MemberIDs:     project.MemberIDs(),
	}
}
