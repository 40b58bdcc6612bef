package workflow

import (
	"context"
	"fmt"

	"taskflow/internal/authz"
	"taskflow/internal/broadcast"
	"taskflow/internal/domain"
	"taskflow/internal/model"

	"github.com/google/uuid"
)

// commentsPayload is the project-scope broadcast sent whenever a task's
// comment list changes.
type commentsPayload struct {
	TaskID   uuid.UUID       `json:"task_id"`
	Comments []model.Comment `json:"comments"`
}

func (s *Service) AddComment(ctx context.Context, principal domain.Principal, taskID uuid.UUID, text string) (*model.Comment, error) {
	if text == "" {
		return nil, domain.InvalidInputf("comment text is required")
	}

	task, project, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !authz.CanAccess(principal, authz.TaskComment, authz.Resource{Project: projectRef(project)}) {
		return nil, domain.Forbiddenf("not authorized to comment on this task")
	}

	comment := &model.Comment{
		TaskID:   taskID,
		AuthorID: principal.ID,
		Text:     text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	created, err := s.comments.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	s.broadcaster.Publish(broadcast.TaskScope(taskID), broadcast.EventNewComment, created)
	s.broadcaster.Publish(broadcast.ProjectScope(task.ProjectID), broadcast.EventTaskUpdatedComments,
		commentsPayload{TaskID: taskID, Comments: comments})

	recipients := map[uuid.UUID]bool{task.CreatedByID: true}
	if task.AssigneeID != nil {
		recipients[*task.AssigneeID] = true
	}
	delete(recipients, principal.ID)

	message := fmt.Sprintf("New comment on task %q in project %q", task.Title, project.Name)
	for recipientID := range recipients {
		s.notifier.Notify(ctx, recipientID, message, "/tasks/"+taskID.String())
	}

	return created, nil
}

func (s *Service) DeleteComment(ctx context.Context, principal domain.Principal, taskID, commentID uuid.UUID) error {
	task, project, err := s.loadTask(ctx, taskID)
	if err != nil {
		return err
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil || comment.TaskID != taskID {
		return domain.NotFoundf("comment not found with id %s", commentID)
	}

	resource := authz.Resource{Project: projectRef(project), CommentAuthorID: &comment.AuthorID}
	if !authz.CanAccess(principal, authz.CommentDelete, resource) {
		return domain.Forbiddenf("not authorized to delete this comment")
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return err
	}

	comments, err := s.comments.ListByTask(ctx, taskID)
	if err != nil {
		return err
	}

	s.broadcaster.Publish(broadcast.TaskScope(taskID), broadcast.EventCommentDeleted, commentID.String())
	s.broadcaster.Publish(broadcast.ProjectScope(task.ProjectID), broadcast.EventTaskUpdatedComments,
		commentsPayload{TaskID: taskID, Comments: comments})

	return nil
}
