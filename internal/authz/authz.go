// Package authz centralizes every access decision the workflow engine makes.
// CanAccess is a pure function: it never touches storage and never suspends,
// so each policy rule is testable in isolation.
package authz

import (
	"taskflow/internal/domain"

	"github.com/google/uuid"
)

type Action string

const (
	ProjectRead         Action = "project:read"
	ProjectCreate       Action = "project:create"
	ProjectUpdate       Action = "project:update"
	ProjectDelete       Action = "project:delete"
	ProjectReassignLead Action = "project:reassign_lead"
	TaskRead            Action = "task:read"
	TaskCreate          Action = "task:create"
	TaskUpdate          Action = "task:update"
	TaskDelete          Action = "task:delete"
	TaskComment         Action = "task:comment"
	CommentDelete       Action = "comment:delete"
)

// ProjectRef carries the project facts the policy needs.
type ProjectRef struct {
	LeadManagerID uuid.UUID
	MemberIDs     []uuid.UUID
}

func (p *ProjectRef) isLead(id uuid.UUID) bool {
	return p != nil && p.LeadManagerID == id
}

func (p *ProjectRef) isMember(id uuid.UUID) bool {
	if p == nil {
		return false
	}
	if p.LeadManagerID == id {
		return true
	}
	for _, m := range p.MemberIDs {
		if m == id {
			return true
		}
	}
	return false
}

// Resource bundles the facts about the thing being acted on. Fields not
// relevant to the action may be left zero.
type Resource struct {
	Project         *ProjectRef
	TaskAssigneeID  *uuid.UUID
	CommentAuthorID *uuid.UUID
}

// CanAccess evaluates the decision table. Rules are checked in precedence
// order; no matching allow rule means deny.
func CanAccess(principal domain.Principal, action Action, res Resource) bool {
	if principal.IsAdmin() {
		return true
	}

	switch action {
	case ProjectCreate:
		return principal.Role == domain.RoleManager

	case ProjectRead, TaskRead, TaskComment:
		return res.Project.isMember(principal.ID)

	case ProjectUpdate, ProjectDelete, TaskCreate, TaskDelete:
		return res.Project.isLead(principal.ID)

	case ProjectReassignLead:
		// Admin-only; already handled above.
		return false

	case TaskUpdate:
		if res.Project.isLead(principal.ID) {
			return true
		}
		return res.TaskAssigneeID != nil && *res.TaskAssigneeID == principal.ID

	case CommentDelete:
		if res.Project.isLead(principal.ID) {
			return true
		}
		return res.CommentAuthorID != nil && *res.CommentAuthorID == principal.ID
	}

	return false
}
