package repository

import (
	"context"
	"errors"

	"taskflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

type ProjectRepositoryInterface interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	FindByName(ctx context.Context, name string) (*model.Project, error)
	ListAll(ctx context.Context) ([]model.Project, error)
	ListLedOrMember(ctx context.Context, userID uuid.UUID) ([]model.Project, error)
	ListMember(ctx context.Context, userID uuid.UUID) ([]model.Project, error)
	UpdateWithMembers(ctx context.Context, project *model.Project, members []model.User) error
	DeleteWithTasks(ctx context.Context, id uuid.UUID) error
	CountLedBy(ctx context.Context, userID uuid.UUID) (int64, error)
}

var _ ProjectRepositoryInterface = (*ProjectRepository)(nil)

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).
		Preload("TeamMembers").
		Preload("LeadManager").
		Where("id = ?", id).
		First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) FindByName(ctx context.Context, name string) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &project, err
}

func (r *ProjectRepository) ListAll(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Preload("TeamMembers").
		Preload("LeadManager").
		Find(&projects).Error
	return projects, err
}

// ListLedOrMember returns projects the user leads or belongs to.
func (r *ProjectRepository) ListLedOrMember(ctx context.Context, userID uuid.UUID) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Preload("TeamMembers").
		Preload("LeadManager").
		Where("lead_manager_id = ? OR id IN (?)",
			userID,
			r.db.Table("project_members").Select("project_id").Where("user_id = ?", userID),
		).
		Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) ListMember(ctx context.Context, userID uuid.UUID) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Preload("TeamMembers").
		Preload("LeadManager").
		Where("id IN (?)",
			r.db.Table("project_members").Select("project_id").Where("user_id = ?", userID),
		).
		Find(&projects).Error
	return projects, err
}

// UpdateWithMembers saves the project's scalar fields and swaps its member
// set in one transaction, so a failed swap never leaves a half-applied
// update behind.
func (r *ProjectRepository) UpdateWithMembers(ctx context.Context, project *model.Project, members []model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("TeamMembers").Save(project).Error; err != nil {
			return err
		}
		return tx.Model(project).Association("TeamMembers").Replace(members)
	})
}

// DeleteWithTasks removes a project and everything it owns in one
// transaction: task dependency links, comments, tasks, membership rows, and
// the project itself.
func (r *ProjectRepository) DeleteWithTasks(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&model.Task{}).Select("id").Where("project_id = ?", id)

		if err := tx.Exec(
			"DELETE FROM task_dependencies WHERE task_id IN (?) OR depends_on_id IN (?)",
			taskIDs, taskIDs,
		).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM project_members WHERE project_id = ?", id).Error; err != nil {
			return err
		}

		result := tx.Delete(&model.Project{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *ProjectRepository) CountLedBy(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("lead_manager_id = ?", userID).
		Count(&count).Error
	return count, err
}
