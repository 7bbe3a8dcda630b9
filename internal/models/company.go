package models

import "time"

type Company struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:150;not null"`
	Description string `gorm:"type:text"`
	Website     string `gorm:"size:255"`
	Address     string `gorm:"size:255"`
	OwnerID     uint   `gorm:"not null;index"`
	Owner       *User  `gorm:"constraint:OnDelete:RESTRICT;"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
