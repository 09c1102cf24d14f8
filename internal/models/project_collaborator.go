package models

import "gorm.io/gorm"

// ProjectCollaborator links a user to a project they were invited to.
// The project creator is never stored here.
type ProjectCollaborator struct {
	gorm.Model

	ProjectID uint `gorm:"not null;uniqueIndex:idx_project_collaborator"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_project_collaborator"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
