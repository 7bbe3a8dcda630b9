package models

import "time"

type ApplicationStatus string

const (
	ApplicationSubmitted   ApplicationStatus = "SUBMITTED"
	ApplicationUnderReview ApplicationStatus = "UNDER_REVIEW"
	ApplicationShortlisted ApplicationStatus = "SHORTLISTED"
	ApplicationRejected    ApplicationStatus = "REJECTED"
	ApplicationHired       ApplicationStatus = "HIRED"
)

var AllApplicationStatuses = []ApplicationStatus{
	ApplicationSubmitted,
	ApplicationUnderReview,
	ApplicationShortlisted,
	ApplicationRejected,
	ApplicationHired,
}

type JobApplication struct {
	ID          uint              `gorm:"primaryKey"`
	JobID       uint              `gorm:"not null;index"`
	Job         *Job              `gorm:"constraint:OnDelete:CASCADE;"`
	CandidateID uint              `gorm:"not null;index"`
	Candidate   *User             `gorm:"foreignKey:CandidateID"`
	CoverLetter string            `gorm:"type:text;not null"`
	ResumeURL   string            `gorm:"size:500"`
	Status      ApplicationStatus `gorm:"size:20;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
