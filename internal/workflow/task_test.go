package workflow_test

import (
	"context"
	"testing"

	"taskflow/internal/domain"
	"taskflow/internal/model"
	"taskflow/internal/workflow"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func teamProject(leadID uuid.UUID, memberIDs ...uuid.UUID) *model.Project {
	members := []model.User{{ID: leadID, Role: domain.RoleManager}}
	for _, id := range memberIDs {
		members = append(members, model.User{ID: id, Role: domain.RoleUser})
	}
	return &model.Project{
		ID:            uuid.New(),
		Name:          "Launch",
		LeadManagerID: leadID,
		TeamMembers:   members,
	}
}

func TestCreateTask_OutsiderForbidden(t *testing.T) {
	f := newFixture()

	project := teamProject(uuid.New())
	f.projects.On("GetByID", mock.Anything, project.ID).Return(project, nil)

	_, err := f.service.CreateTask(context.Background(), plainUser(uuid.New()), project.ID, workflow.CreateTaskInput{
		Title: "Write docs",
	})

	assert.ErrorIs(t, err, domain.ErrForbidden)
	f.tasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateTask_LeadSucceedsWithDefaults(t *testing.T) {
	f := newFixture()

	leadID := uuid.New()
	project := teamProject(leadID)
	taskID := uuid.New()

	f.projects.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.tasks.On("Create", mock.Anything, mock.AnythingOfType("*model.Task")).
		Run(func(args mock.Arguments) {
			created := args.Get(1).(*model.Task)
			assert.Equal(t, model.StatusOpen, created.Status)
			assert.Equal(t, model.PriorityMedium, created.Priority)
			created.ID = taskID
		}).
		Return(nil)
	f.tasks.On("GetByID", mock.Anything, taskID).Return(&model.Task{
		ID:          taskID,
		Title:       "Write docs",
		Status:      model.StatusOpen,
		Priority:    model.PriorityMedium,
		ProjectID:   project.ID,
		CreatedByID: leadID,
	}, nil)

	task, err := f.service.CreateTask(context.Background(), manager(leadID), project.ID, workflow.CreateTaskInput{
		Title: "Write docs",
	})

	assert.NoError(t, err)
	assert.Equal(t, taskID, task.ID)
	assert.Contains(t, f.broadcaster.names(), "new_task")
	assert.Empty(t, f.notifier.recipients(), "unassigned task notifies nobody")
}

func TestCreateTask_AssigneeNotified(t *testing.T) {
	f := newFixture()

	creatorID := uuid.New()
	assigneeID := uuid.New()
	project := teamProject(creatorID, assigneeID)
	taskID := uuid.New()

	f.projects.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.users.On("GetByID", mock.Anything, assigneeID).
		Return(&model.User{ID: assigneeID, Role: domain.RoleUser}, nil)
	f.tasks.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { args.Get(1).(*model.Task).ID = taskID }).
		Return(nil)
	f.tasks.On("GetByID", mock.Anything, taskID).Return(&model.Task{
		ID:          taskID,
		Title:       "Write docs",
		Status:      model.StatusOpen,
		Priority:    model.PriorityMedium,
		ProjectID:   project.ID,
		CreatedByID: creatorID,
		AssigneeID:  &assigneeID,
	}, nil)

	_, err := f.service.CreateTask(context.Background(), manager(creatorID), project.ID, workflow.CreateTaskInput{
		Title:      "Write docs",
		AssigneeID: &assigneeID,
	})

	assert.NoError(t, err)
	assert.Equal(t, []uuid.UUID{assigneeID}, f.notifier.recipients())
}

func TestCreateTask_ForeignDependencyRejected(t *testing.T) {
	f := newFixture()

	leadID := uuid.New()
	project := teamProject(leadID)
	foreignTaskID := uuid.New()

	f.projects.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	// The foreign task does not resolve inside this project.
	f.tasks.On("FindByIDsInProject", mock.Anything, []uuid.UUID{foreignTaskID}, project.ID).
		Return([]model.Task{}, nil)

	_, err := f.service.CreateTask(context.Background(), manager(leadID), project.ID, workflow.CreateTaskInput{
		Title:        "Write docs",
		Dependencies: []uuid.UUID{foreignTaskID},
	})

	assert.ErrorIs(t, err, domain.ErrInvalidDependencySet)
	f.tasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateTask_SelfDependencyRejected(t *testing.T) {
	f := newFixture()

	leadID := uuid.New()
	project := teamProject(leadID)
	task := &model.Task{
		ID:        uuid.New(),
		Title:     "Write docs",
		Status:    model.StatusOpen,
		Priority:  model.PriorityMedium,
		ProjectID: project.ID,
	}

	f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
	f.projects.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.tasks.On("FindByIDsInProject", mock.Anything, []uuid.UUID{task.ID}, project.ID).
		Return([]model.Task{*task}, nil)

	deps := []uuid.UUID{task.ID}
	_, err := f.service.UpdateTask(context.Background(), manager(leadID), task.ID, workflow.UpdateTaskInput{
		Dependencies: &deps,
	})

	assert.ErrorIs(t, err, domain.ErrSelfDependency)
	f.tasks.AssertNotCalled(t, "UpdateWithDependencies", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateTask_ReplacesDependencies(t *testing.T) {
	f := newFixture()

	leadID := uuid.New()
	project := teamProject(leadID)

	dep := model.Task{
		ID:        uuid.New(),
		Title:     "Design schema",
		Status:    model.StatusOpen,
		Priority:  model.PriorityMedium,
		ProjectID: project.ID,
	}
	task := &model.Task{
		ID:          uuid.New(),
		Title:       "Run migration",
		Status:      model.StatusOpen,
		Priority:    model.PriorityMedium,
		ProjectID:   project.ID,
		CreatedByID: leadID,
	}

	f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
	f.projects.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.tasks.On("FindByIDsInProject", mock.Anything, []uuid.UUID{dep.ID}, project.ID).
		Return([]model.Task{dep}, nil)
	f.tasks.On("UpdateWithDependencies", mock.Anything, mock.Anything, []model.Task{dep}).Return(nil)

	deps := []uuid.UUID{dep.ID}
	_, err := f.service.UpdateTask(context.Background(), manager(leadID), task.ID, workflow.UpdateTaskInput{
		Dependencies: &deps,
	})

	assert.NoError(t, err)
	f.tasks.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// Editing a completed task must stay possible even when one of its
// dependencies has since been reopened; the open dependency only blocks
// updates that move the task into completed.
func TestUpdateTask_EditCompletedTaskWithReopenedDependency(t *testing.T) {
	f := newFixture()

	leadID := uuid.New()
	project := teamProject(leadID)

	reopened := model.Task{
		ID:        uuid.New(),
		Title:     "Design schema",
		Status:    model.StatusOpen,
		Priority:  model.PriorityMedium,
		ProjectID: project.ID,
	}
	task := &model.Task{
		ID:           uuid.New(),
		Title:        "Run migration",
		Status:       model.StatusCompleted,
		Priority:     model.PriorityMedium,
		ProjectID:    project.ID,
		CreatedByID:  leadID,
		Dependencies: []model.Task{reopened},
	}

	f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
	f.projects.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.tasks.On("FindByIDsInProject", mock.Anything, []uuid.UUID{reopened.ID}, project.ID).
		Return([]model.Task{reopened}, nil)
	f.tasks.On("Update", mock.Anything, mock.Anything).Return(nil)

	title := "Run migration against staging"
	updated, err := f.service.UpdateTask(context.Background(), manager(leadID), task.ID, workflow.UpdateTaskInput{
		Title: &title,
	})

	assert.NoError(t, err)
	assert.Equal(t, title, updated.Title)
}

// A task cannot be completed while a dependency is still open; completing
// the dependency first unblocks it.
func TestUpdateTask_CompletionGate(t *testing.T) {
	f := newFixture()

	leadID := uuid.New()
	project := teamProject(leadID)

	dep := model.Task{
		ID:        uuid.New(),
		Title:     "Design schema",
		Status:    model.StatusOpen,
		Priority:  model.PriorityMedium,
		ProjectID: project.ID,
	}
	blocked := &model.Task{
		ID:           uuid.New(),
		Title:        "Run migration",
		Status:       model.StatusOpen,
		Priority:     model.PriorityMedium,
		ProjectID:    project.ID,
		CreatedByID:  leadID,
		Dependencies: []model.Task{dep},
	}

	f.tasks.On("GetByID", mock.Anything, blocked.ID).Return(blocked, nil)
	f.projects.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.tasks.On("FindByIDsInProject", mock.Anything, []uuid.UUID{dep.ID}, project.ID).
		Return([]model.Task{dep}, nil).Once()

	completed := model.StatusCompleted
	_, err := f.service.UpdateTask(context.Background(), manager(leadID), blocked.ID, workflow.UpdateTaskInput{
		Status: &completed,
	})

	assert.ErrorIs(t, err, domain.ErrDependencyNotSatisfied)
	f.tasks.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)

	// Once the dependency is completed the same update goes through.
	dep.Status = model.StatusCompleted
	blocked.Status = model.StatusOpen
	blocked.Dependencies = []model.Task{dep}
	f.tasks.On("FindByIDsInProject", mock.Anything, []uuid.UUID{dep.ID}, project.ID).
		Return([]model.Task{dep}, nil).Once()
	f.tasks.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.tasks.On("GetByID", mock.Anything, blocked.ID).Return(blocked, nil)

	_, err = f.service.UpdateTask(context.Background(), manager(leadID), blocked.ID, workflow.UpdateTaskInput{
		Status: &completed,
	})

	assert.NoError(t, err)
	assert.Contains(t, f.broadcaster.names(), "task_updated")
}

func TestUpdateTask_AssigneeMayUpdateOwnTask(t *testing.T) {
	f := newFixture()

	leadID := uuid.New()
	assigneeID := uuid.New()
	project := teamProject(leadID, assigneeID)
	task := &model.Task{
		ID:          uuid.New(),
		Title:       "Write docs",
		Status:      model.StatusOpen,
		Priority:    model.PriorityMedium,
		ProjectID:   project.ID,
		CreatedByID: leadID,
		AssigneeID:  &assigneeID,
	}

	f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
	f.projects.On("GetByID", mock.Anything, project.ID).Return(project, nil)
	f.tasks.On("Update", mock.Anything, mock.Anything).Return(nil)

	inProgress := model.StatusInProgress
	_, err := f.service.UpdateTask(context.Background(), plainUser(assigneeID), task.ID, workflow.UpdateTaskInput{
		Status: &inProgress,
	})

	assert.NoError(t, err)
	// Status change notifies creator and lead (here the same person), never
	// the acting assignee.
	assert.Equal(t, []uuid.UUID{leadID}, f.notifier.recipients())
}

func TestUpdateTask_NonAssigneeMemberForbidden(t *testing.T) {
	f := newFixture()

	leadID := uuid.New()
	assigneeID := uuid.New()
	bystanderID := uuid.New()
	project := teamProject(leadID, assigneeID, bystanderID)
	task := &model.Task{
		ID:         uuid.New(),
		Title:      "Write docs",
		Status:     model.StatusOpen,
		ProjectID:  project.ID,
		AssigneeID: &assigneeID,
	}

	f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
	f.projects.On("GetByID", mock.Anything, project.ID).Return(project, nil)

	inProgress := model.StatusInProgress
	_, err := f.service.UpdateTask(context.Background(), plainUser(bystanderID), task.ID, workflow.UpdateTaskInput{
		Status: &inProgress,
	})

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDeleteTask_LeadOnly(t *testing.T) {
	f := newFixture()

	leadID := uuid.New()
	memberID := uuid.New()
	project := teamProject(leadID, memberID)
	task := &model.Task{ID: uuid.New(), Title: "Write docs", ProjectID: project.ID}

	f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
	f.projects.On("GetByID", mock.Anything, project.ID).Return(project, nil)

	err := f.service.DeleteTask(context.Background(), plainUser(memberID), task.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	f.tasks.On("Delete", mock.Anything, task.ID).Return(nil)
	err = f.service.DeleteTask(context.Background(), manager(leadID), task.ID)
	assert.NoError(t, err)
	assert.Contains(t, f.broadcaster.names(), "task_deleted")
}

func TestGetTask_NotFound(t *testing.T) {
	f := newFixture()

	taskID := uuid.New()
	f.tasks.On("GetByID", mock.Anything, taskID).Return(nil, nil)

	_, err := f.service.GetTask(context.Background(), admin(uuid.New()), taskID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
