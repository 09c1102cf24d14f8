package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Task struct {
	gorm.Model

	Name        string `gorm:"not null"`
	Description string
	Priority    string `gorm:"not null;default:medium"`
	Deadline    *time.Time
	ProjectID   uint `gorm:"not null;index"`
	State       bool `gorm:"not null;default:false"`

	// Last user who toggled the completion state, in either direction.
	CompletedByID *uint

	// Relationships
	Project     Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	CompletedBy *User   `gorm:"foreignKey:CompletedByID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
