// Package applications handles candidate applications to jobs and the status
// changes made by whoever manages the parent job.
package applications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobboard-backend/internal/apperr"
	"jobboard-backend/internal/audit"
	"jobboard-backend/internal/jobs"
	"jobboard-backend/internal/metrics"
	"jobboard-backend/internal/models"
	"jobboard-backend/internal/policy"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const resumeURLMaxLen = 500

type ApplicationResponse struct {
	ID             uint      `json:"id"`
	JobID          uint      `json:"job_id"`
	JobTitle       string    `json:"job_title"`
	CandidateID    uint      `json:"candidate_id"`
	CandidateName  string    `json:"candidate_name"`
	CandidateEmail string    `json:"candidate_email"`
	CoverLetter    string    `json:"cover_letter"`
	ResumeURL      string    `json:"resume_url"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Service struct {
	db      *gorm.DB
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewService(db *gorm.DB, m *metrics.Metrics, log zerolog.Logger) *Service {
	return &Service{db: db, metrics: m, log: log}
}

// ParseStatus resolves a status name, case-insensitively. An empty name
// means SUBMITTED.
func ParseStatus(s string) (models.ApplicationStatus, error) {
	n := strings.ToUpper(strings.TrimSpace(s))
	if n == "" {
		return models.ApplicationSubmitted, nil
	}
	for _, st := range models.AllApplicationStatuses {
		if string(st) == n {
			return st, nil
		}
	}
	return "", apperr.InvalidArgument("unknown application status %q", s)
}

// Submit records a new SUBMITTED application from candidate to the job.
// Jobs in any status accept applications and a candidate may apply to the
// same job more than once.
func (s *Service) Submit(ctx context.Context, jobID uint, candidate *models.User, coverLetter, resumeURL string) (*ApplicationResponse, error) {
	if candidate == nil || candidate.ID == 0 {
		return nil, apperr.InvalidArgument("candidate is required")
	}
	coverLetter = strings.TrimSpace(coverLetter)
	resumeURL = strings.TrimSpace(resumeURL)
	if coverLetter == "" {
		return nil, apperr.InvalidArgument("cover letter is required")
	}
	if len(resumeURL) > resumeURLMaxLen {
		return nil, apperr.InvalidArgument("resume url must be at most %d characters", resumeURLMaxLen)
	}

	var app models.JobApplication
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, err := jobs.Find(tx, jobID)
		if err != nil {
			return err
		}

		app = models.JobApplication{
			JobID:       job.ID,
			CandidateID: candidate.ID,
			CoverLetter: coverLetter,
			ResumeURL:   resumeURL,
			Status:      models.ApplicationSubmitted,
		}
		if err := tx.Create(&app).Error; err != nil {
			return fmt.Errorf("create application: %w", err)
		}
		app.Job = job
		app.Candidate = candidate

		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       candidate,
			EntityType:  audit.EntityApplication,
			EntityID:    app.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("application submitted to job %d", job.ID),
			After:       snapshot(&app),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ApplicationEvent("submit")
	s.log.Info().Uint("application_id", app.ID).Uint("job_id", app.JobID).Uint("candidate_id", candidate.ID).Msg("application submitted")

	resp := ToResponse(&app)
	return &resp, nil
}

// ListForCandidate returns every application the user submitted.
func (s *Service) ListForCandidate(ctx context.Context, user *models.User) ([]ApplicationResponse, error) {
	if user == nil {
		return nil, apperr.InvalidArgument("user is required")
	}
	return s.list(ctx, "candidate_id = ?", user.ID)
}

// ListForJob returns every application to the job. Callers must check
// manage rights on the job first.
func (s *Service) ListForJob(ctx context.Context, jobID uint) ([]ApplicationResponse, error) {
	if _, err := jobs.Find(s.db.WithContext(ctx), jobID); err != nil {
		return nil, err
	}
	return s.list(ctx, "job_id = ?", jobID)
}

func (s *Service) list(ctx context.Context, query string, args ...any) ([]ApplicationResponse, error) {
	var apps []models.JobApplication
	err := s.db.WithContext(ctx).
		Preload("Job").
		Preload("Candidate").
		Where(query, args...).
		Order("created_at DESC, id DESC").
		Find(&apps).Error
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	out := make([]ApplicationResponse, 0, len(apps))
	for i := range apps {
		out = append(out, ToResponse(&apps[i]))
	}
	return out, nil
}

// Transition sets the application status. Any status may follow any other;
// the actor must be able to manage the parent job.
func (s *Service) Transition(ctx context.Context, applicationID uint, status string, actor *models.User) (*ApplicationResponse, error) {
	newStatus, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}

	var app models.JobApplication
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Job").Preload("Candidate").First(&app, applicationID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("application %d not found", applicationID)
		}
		if err != nil {
			return fmt.Errorf("load application: %w", err)
		}
		if app.Job == nil {
			return apperr.NotFound("job %d not found", app.JobID)
		}
		if !policy.CanManage(actor, app.Job) {
			s.metrics.Denied("application.transition")
			return apperr.Forbidden("you cannot update application %d", applicationID)
		}

		before := snapshot(&app)
		if err := tx.Model(&models.JobApplication{ID: app.ID}).Update("status", newStatus).Error; err != nil {
			return fmt.Errorf("update application status: %w", err)
		}
		if err := tx.Preload("Job").Preload("Candidate").First(&app, app.ID).Error; err != nil {
			return fmt.Errorf("reload application: %w", err)
		}

		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  audit.EntityApplication,
			EntityID:    app.ID,
			Action:      models.AuditActionTransition,
			Description: fmt.Sprintf("application status %s -> %s", before["status"], newStatus),
			Before:      before,
			After:       snapshot(&app),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Transition(string(newStatus))
	s.log.Info().Uint("application_id", app.ID).Uint("job_id", app.JobID).Str("status", string(newStatus)).Uint("actor_id", actor.ID).Msg("application status changed")

	resp := ToResponse(&app)
	return &resp, nil
}

func ToResponse(app *models.JobApplication) ApplicationResponse {
	resp := ApplicationResponse{
		ID:          app.ID,
		JobID:       app.JobID,
		CandidateID: app.CandidateID,
		CoverLetter: app.CoverLetter,
		ResumeURL:   app.ResumeURL,
		Status:      string(app.Status),
		CreatedAt:   app.CreatedAt,
		UpdatedAt:   app.UpdatedAt,
	}
	if app.Job != nil {
		resp.JobTitle = app.Job.Title
	}
	if app.Candidate != nil {
		resp.CandidateName = app.Candidate.FullName
		resp.CandidateEmail = app.Candidate.Email
	}
	return resp
}

func snapshot(app *models.JobApplication) map[string]any {
	return map[string]any{
		"id":           app.ID,
		"job_id":       app.JobID,
		"candidate_id": app.CandidateID,
		"resume_url":   app.ResumeURL,
		"status":       app.Status,
	}
}
