package models

import "time"

type EmploymentType string

const (
	EmploymentFullTime  EmploymentType = "FULL_TIME"
	EmploymentPartTime  EmploymentType = "PART_TIME"
	EmploymentContract  EmploymentType = "CONTRACT"
	EmploymentTemporary EmploymentType = "TEMPORARY"
	EmploymentIntern    EmploymentType = "INTERN"
)

var AllEmploymentTypes = []EmploymentType{
	EmploymentFullTime,
	EmploymentPartTime,
	EmploymentContract,
	EmploymentTemporary,
	EmploymentIntern,
}

type JobStatus string

const (
	JobStatusDraft  JobStatus = "DRAFT"
	JobStatusOpen   JobStatus = "OPEN"
	JobStatusClosed JobStatus = "CLOSED"
)

const JobTitleMaxLen = 150

type Job struct {
	ID             uint           `gorm:"primaryKey"`
	Title          string         `gorm:"size:150;not null"`
	Description    string         `gorm:"type:text"`
	Location       string         `gorm:"size:150"`
	EmploymentType EmploymentType `gorm:"size:20;not null"`
	SalaryMin      *int
	SalaryMax      *int
	Status         JobStatus `gorm:"size:20;not null;index"`
	CompanyID      uint      `gorm:"not null;index"`
	Company        *Company
	PostedByID     uint  `gorm:"not null;index"`
	PostedBy       *User `gorm:"foreignKey:PostedByID"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
