package models

import "gorm.io/gorm"

type User struct {
	gorm.Model

	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`

	// Single-use token shared by the account-confirmation and
	// password-reset flows. Empty once consumed.
	Token     string `gorm:"index"`
	Confirmed bool   `gorm:"not null;default:false"`

	// Relationships
	CreatedProjects []Project             `gorm:"foreignKey:CreatorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Collaborations  []ProjectCollaborator `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
