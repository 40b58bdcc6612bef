package model

import (
	"time"

	"github.com/google/uuid"
)

// Task statuses. The workflow allows movement in any direction; only the
// transition into StatusCompleted is gated on dependency completion.
const (
	StatusOpen       = "open"
	StatusInProgress = "inProgress"
	StatusCompleted  = "completed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

func ValidStatus(s string) bool {
	return s == StatusOpen || s == StatusInProgress || s == StatusCompleted
}

func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title       string    `gorm:"not null"`
	Description string
	Status      string `gorm:"not null;default:'open';check:status IN ('open', 'inProgress', 'completed')"`
	Priority    string `gorm:"not null;default:'medium';check:priority IN ('low', 'medium', 'high')"`
	DueDate     *time.Time
	ProjectID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedByID uuid.UUID  `gorm:"type:uuid;not null"`
	AssigneeID  *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Project      Project   `gorm:"foreignKey:ProjectID"`
	CreatedBy    User      `gorm:"foreignKey:CreatedByID"`
	Assignee     *User     `gorm:"foreignKey:AssigneeID"`
	Dependencies []Task    `gorm:"many2many:task_dependencies;joinForeignKey:TaskID;joinReferences:DependsOnID"`
	Comments     []Comment `gorm:"foreignKey:TaskID"`
}

// DependencyIDs returns the ids of the loaded dependency tasks.
func (t *Task) DependencyIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(t.Dependencies))
	for _, d := range t.Dependencies {
		ids = append(ids, d.ID)
	}
	return ids
}
