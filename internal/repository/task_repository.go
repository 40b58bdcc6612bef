package repository

import (
	"context"
	"errors"
	"time"

	"taskflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

// TaskFilter narrows and orders project task listings.
type TaskFilter struct {
	Status     string
	Priority   string
	AssigneeID *uuid.UUID
	DueOn      *time.Time
	SortBy     string
	SortDesc   bool
}

// CompletedCount is one row of the completed-tasks-per-project report.
type CompletedCount struct {
	ProjectID      uuid.UUID `json:"project_id"`
	ProjectName    string    `json:"project_name"`
	CompletedTasks int64     `json:"completed_tasks"`
}

type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, filter TaskFilter) ([]model.Task, error)
	FindByIDsInProject(ctx context.Context, ids []uuid.UUID, projectID uuid.UUID) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	UpdateWithDependencies(ctx context.Context, task *model.Task, deps []model.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
	CountCompletedByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
	CompletedPerProject(ctx context.Context, start, end *time.Time) ([]CompletedCount, error)
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Preload("Dependencies").
		Preload("Assignee").
		Preload("CreatedBy").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at")
		}).
		Preload("Comments.Author").
		Where("id = ?", id).
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// sortColumns whitelists caller-supplied sort keys.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"dueDate":   "due_date",
	"priority":  "priority",
	"status":    "status",
	"title":     "title",
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID uuid.UUID, filter TaskFilter) ([]model.Task, error) {
	query := r.db.WithContext(ctx).
		Preload("Dependencies").
		Preload("Assignee").
		Preload("CreatedBy").
		Where("project_id = ?", projectID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}
	if filter.DueOn != nil {
		start := filter.DueOn.UTC().Truncate(24 * time.Hour)
		end := start.Add(24*time.Hour - time.Nanosecond)
		query = query.Where("due_date BETWEEN ? AND ?", start, end)
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
		filter.SortDesc = true
	}
	order := column
	if filter.SortDesc {
		order += " DESC"
	}

	var tasks []model.Task
	err := query.Order(order).Find(&tasks).Error
	return tasks, err
}

// FindByIDsInProject resolves task ids restricted to one project. Ids that
// do not resolve inside the project are absent from the result.
func (r *TaskRepository) FindByIDsInProject(ctx context.Context, ids []uuid.UUID, projectID uuid.UUID) ([]model.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("id IN ? AND project_id = ?", ids, projectID).
		Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	result := r.db.WithContext(ctx).Omit("Dependencies", "Comments").Save(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateWithDependencies saves the task's scalar fields and swaps its
// dependency set in one transaction, so a failed swap never leaves a
// half-applied update behind.
func (r *TaskRepository) UpdateWithDependencies(ctx context.Context, task *model.Task, deps []model.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Omit("Dependencies", "Comments").Save(task)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(task).Association("Dependencies").Replace(deps)
	})
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM task_dependencies WHERE task_id = ? OR depends_on_id = ?",
			id, id,
		).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&model.Task{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *TaskRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("project_id = ?", projectID).
		Count(&count).Error
	return count, err
}

func (r *TaskRepository) CountCompletedByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("project_id = ? AND status = ?", projectID, model.StatusCompleted).
		Count(&count).Error
	return count, err
}

// CompletedPerProject aggregates completed task counts per project,
// optionally restricted to tasks created in [start, end].
func (r *TaskRepository) CompletedPerProject(ctx context.Context, start, end *time.Time) ([]CompletedCount, error) {
	query := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("tasks.project_id AS project_id, projects.name AS project_name, COUNT(tasks.id) AS completed_tasks").
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("tasks.status = ?", model.StatusCompleted).
		Group("tasks.project_id, projects.name")

	if start != nil {
		query = query.Where("tasks.created_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("tasks.created_at <= ?", *end)
	}

	var rows []CompletedCount
	err := query.Scan(&rows).Error
	return rows, err
}
