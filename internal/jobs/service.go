// Package jobs manages job postings: creation, listing, update and deletion,
// with every mutation gated by the management policy.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"jobboard-backend/internal/apperr"
	"jobboard-backend/internal/audit"
	"jobboard-backend/internal/company"
	"jobboard-backend/internal/metrics"
	"jobboard-backend/internal/models"
	"jobboard-backend/internal/policy"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// JobRequest is the writable part of a job. Status is accepted so clients
// can send it, but the service never applies it.
type JobRequest struct {
	Title          string
	Description    string
	Location       string
	EmploymentType string
	SalaryMin      *int
	SalaryMax      *int
	CompanyID      *uint
	Status         string
}

type JobResponse struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	EmploymentType string    `json:"employment_type"`
	SalaryMin      *int      `json:"salary_min"`
	SalaryMax      *int      `json:"salary_max"`
	Status         string    `json:"status"`
	CompanyID      uint      `json:"company_id"`
	CompanyName    string    `json:"company_name"`
	PostedByID     uint      `json:"posted_by_id"`
	PostedBy       string    `json:"posted_by"`
	PostedByEmail  string    `json:"posted_by_email"`
	CreatedAt      time.Time `json:"created_at"`
}

// Cache stores the public open-jobs listing. A nil Cache disables caching.
type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

const openJobsCacheKey = "jobs:open:v1"

type Service struct {
	db       *gorm.DB
	cache    Cache
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

func NewService(db *gorm.DB, cache Cache, cacheTTL time.Duration, m *metrics.Metrics, log zerolog.Logger) *Service {
	return &Service{db: db, cache: cache, cacheTTL: cacheTTL, metrics: m, log: log}
}

// ParseEmploymentType resolves an employment type name, case-insensitively.
func ParseEmploymentType(s string) (models.EmploymentType, error) {
	n := strings.ToUpper(strings.TrimSpace(s))
	for _, t := range models.AllEmploymentTypes {
		if string(t) == n {
			return t, nil
		}
	}
	return "", apperr.InvalidArgument("unknown employment type %q", s)
}

type validJob struct {
	title          string
	description    string
	location       string
	employmentType models.EmploymentType
}

func validate(req JobRequest, requireCompany bool) (validJob, error) {
	v := validJob{
		title:       strings.TrimSpace(req.Title),
		description: strings.TrimSpace(req.Description),
		location:    strings.TrimSpace(req.Location),
	}
	switch {
	case v.title == "":
		return v, apperr.InvalidArgument("title is required")
	case utf8.RuneCountInString(v.title) > models.JobTitleMaxLen:
		return v, apperr.InvalidArgument("title must be at most %d characters", models.JobTitleMaxLen)
	case v.description == "":
		return v, apperr.InvalidArgument("description is required")
	case v.location == "":
		return v, apperr.InvalidArgument("location is required")
	case requireCompany && (req.CompanyID == nil || *req.CompanyID == 0):
		return v, apperr.InvalidArgument("company id is required")
	case req.SalaryMin != nil && *req.SalaryMin < 0, req.SalaryMax != nil && *req.SalaryMax < 0:
		return v, apperr.InvalidArgument("salary cannot be negative")
	case req.SalaryMin != nil && req.SalaryMax != nil && *req.SalaryMin > *req.SalaryMax:
		return v, apperr.InvalidArgument("salary min %d is greater than max %d", *req.SalaryMin, *req.SalaryMax)
	}

	et, err := ParseEmploymentType(req.EmploymentType)
	if err != nil {
		return v, err
	}
	v.employmentType = et
	return v, nil
}

// Create posts a new job for the company in the request. The job is always
// created OPEN whatever status the request carries.
func (s *Service) Create(ctx context.Context, req JobRequest, poster *models.User) (*JobResponse, error) {
	if poster == nil || poster.ID == 0 {
		return nil, apperr.InvalidArgument("poster is required")
	}
	v, err := validate(req, true)
	if err != nil {
		return nil, err
	}

	var job models.Job
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		co, err := company.Find(tx, *req.CompanyID)
		if err != nil {
			return err
		}

		job = models.Job{
			Title:          v.title,
			Description:    v.description,
			Location:       v.location,
			EmploymentType: v.employmentType,
			SalaryMin:      req.SalaryMin,
			SalaryMax:      req.SalaryMax,
			Status:         models.JobStatusOpen,
			CompanyID:      co.ID,
			PostedByID:     poster.ID,
		}
		if err := tx.Create(&job).Error; err != nil {
			return fmt.Errorf("create job: %w", err)
		}
		job.Company = co
		job.PostedBy = poster

		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       poster,
			EntityType:  audit.EntityJob,
			EntityID:    job.ID,
			Action:      models.AuditActionCreate,
			Description: "job created: " + job.Title,
			After:       snapshot(&job),
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidateOpenJobs(ctx)
	s.metrics.JobEvent("create")
	s.log.Info().Uint("job_id", job.ID).Uint("poster_id", poster.ID).Uint("company_id", job.CompanyID).Msg("job created")

	resp := ToResponse(&job)
	return &resp, nil
}

// ListOpen returns every OPEN job, newest first.
func (s *Service) ListOpen(ctx context.Context) ([]JobResponse, error) {
	if s.cache != nil {
		var cached []JobResponse
		if hit, err := s.cache.GetJSON(ctx, openJobsCacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	out, err := s.list(ctx, "status = ?", models.JobStatusOpen)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, openJobsCacheKey, out, s.cacheTTL); err != nil {
			s.log.Debug().Err(err).Msg("open jobs cache write failed")
		}
	}
	return out, nil
}

// ListForUser returns the jobs the user posted, in any status.
func (s *Service) ListForUser(ctx context.Context, user *models.User) ([]JobResponse, error) {
	if user == nil {
		return nil, apperr.InvalidArgument("user is required")
	}
	return s.list(ctx, "posted_by_id = ?", user.ID)
}

func (s *Service) list(ctx context.Context, query string, args ...any) ([]JobResponse, error) {
	var jobs []models.Job
	err := s.db.WithContext(ctx).
		Preload("Company").
		Preload("PostedBy").
		Where(query, args...).
		Order("created_at DESC, id DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	out := make([]JobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, ToResponse(&jobs[i]))
	}
	return out, nil
}

// Get returns one job projection.
func (s *Service) Get(ctx context.Context, id uint) (*JobResponse, error) {
	job, err := s.load(s.db.WithContext(ctx), id, true)
	if err != nil {
		return nil, err
	}
	resp := ToResponse(job)
	return &resp, nil
}

// Update overwrites every editable field of the job. The company is only
// reassigned when the request names one. Status, poster and id never change.
func (s *Service) Update(ctx context.Context, id uint, req JobRequest, requester *models.User) (*JobResponse, error) {
	var job *models.Job
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.load(tx, id, false)
		if err != nil {
			return err
		}
		if !policy.CanManage(requester, current) {
			s.metrics.Denied("job.update")
			return apperr.Forbidden("you cannot modify job %d", id)
		}

		v, err := validate(req, false)
		if err != nil {
			return err
		}

		companyID := current.CompanyID
		if req.CompanyID != nil && *req.CompanyID != 0 {
			co, err := company.Find(tx, *req.CompanyID)
			if err != nil {
				return err
			}
			companyID = co.ID
		}

		before := snapshot(current)
		if err := tx.Model(&models.Job{ID: current.ID}).Updates(map[string]any{
			"title":           v.title,
			"description":     v.description,
			"location":        v.location,
			"employment_type": v.employmentType,
			"salary_min":      req.SalaryMin,
			"salary_max":      req.SalaryMax,
			"company_id":      companyID,
		}).Error; err != nil {
			return fmt.Errorf("update job: %w", err)
		}

		job, err = s.load(tx, id, true)
		if err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       requester,
			EntityType:  audit.EntityJob,
			EntityID:    job.ID,
			Action:      models.AuditActionUpdate,
			Description: "job updated: " + job.Title,
			Before:      before,
			After:       snapshot(job),
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidateOpenJobs(ctx)
	s.metrics.JobEvent("update")
	s.log.Info().Uint("job_id", id).Uint("actor_id", requester.ID).Msg("job updated")

	resp := ToResponse(job)
	return &resp, nil
}

// Delete removes the job and its applications.
func (s *Service) Delete(ctx context.Context, id uint, requester *models.User) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, err := s.load(tx, id, false)
		if err != nil {
			return err
		}
		if !policy.CanManage(requester, job) {
			s.metrics.Denied("job.delete")
			return apperr.Forbidden("you cannot delete job %d", id)
		}

		res := tx.Where("job_id = ?", job.ID).Delete(&models.JobApplication{})
		if res.Error != nil {
			return fmt.Errorf("delete job applications: %w", res.Error)
		}
		if err := tx.Delete(&models.Job{}, job.ID).Error; err != nil {
			return fmt.Errorf("delete job: %w", err)
		}

		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       requester,
			EntityType:  audit.EntityJob,
			EntityID:    job.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("job deleted: %s (%d applications removed)", job.Title, res.RowsAffected),
			Before:      snapshot(job),
		})
	})
	if err != nil {
		return err
	}

	s.invalidateOpenJobs(ctx)
	s.metrics.JobEvent("delete")
	s.log.Info().Uint("job_id", id).Uint("actor_id", requester.ID).Msg("job deleted")
	return nil
}

// CanManage reports whether requester may modify the job and review its applications.
func (s *Service) CanManage(ctx context.Context, requester *models.User, jobID uint) (bool, error) {
	job, err := s.load(s.db.WithContext(ctx), jobID, false)
	if err != nil {
		return false, err
	}
	return policy.CanManage(requester, job), nil
}

// Find loads a job entity on db, which may be a transaction.
func Find(db *gorm.DB, id uint) (*models.Job, error) {
	var job models.Job
	err := db.First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("job %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *Service) load(db *gorm.DB, id uint, withRefs bool) (*models.Job, error) {
	if withRefs {
		db = db.Preload("Company").Preload("PostedBy")
	}
	return Find(db, id)
}

func (s *Service) invalidateOpenJobs(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, openJobsCacheKey); err != nil {
		s.log.Warn().Err(err).Msg("open jobs cache invalidation failed")
	}
}

func ToResponse(job *models.Job) JobResponse {
	resp := JobResponse{
		ID:             job.ID,
		Title:          job.Title,
		Description:    job.Description,
		Location:       job.Location,
		EmploymentType: string(job.EmploymentType),
		SalaryMin:      job.SalaryMin,
		SalaryMax:      job.SalaryMax,
		Status:         string(job.Status),
		CompanyID:      job.CompanyID,
		PostedByID:     job.PostedByID,
		CreatedAt:      job.CreatedAt,
	}
	if job.Company != nil {
		resp.CompanyName = job.Company.Name
	}
	if job.PostedBy != nil {
		resp.PostedBy = job.PostedBy.FullName
		resp.PostedByEmail = job.PostedBy.Email
	}
	return resp
}

// snapshot is the audit view of a job without loaded associations.
func snapshot(job *models.Job) map[string]any {
	return map[string]any{
		"id":              job.ID,
		"title":           job.Title,
		"description":     job.Description,
		"location":        job.Location,
		"employment_type": job.EmploymentType,
		"salary_min":      job.SalaryMin,
		"salary_max":      job.SalaryMax,
		"status":          job.Status,
		"company_id":      job.CompanyID,
		"posted_by_id":    job.PostedByID,
	}
}
