package model

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name          string    `gorm:"uniqueIndex;not null"`
	Description   string
	LeadManagerID uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedByID   uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	LeadManager User   `gorm:"foreignKey:LeadManagerID"`
	CreatedBy   User   `gorm:"foreignKey:CreatedByID"`
	TeamMembers []User `gorm:"many2many:project_members"`
}

// MemberIDs returns the ids of the loaded team members.
func (p *Project) MemberIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.TeamMembers))
	for _, m := range p.TeamMembers {
		ids = append(ids, m.ID)
	}
	return ids
}

// HasMember reports whether userID is in the loaded team member set.
func (p *Project) HasMember(userID uuid.UUID) bool {
	for _, m := range p.TeamMembers {
		if m.ID == userID {
			return true
		}
	}
	return false
}
