// Package admin serves the super admin dashboard and account moderation.
package admin

import (
	"context"
	"errors"
	"fmt"

	"jobboard-backend/internal/apperr"
	"jobboard-backend/internal/audit"
	"jobboard-backend/internal/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const recentUsersLimit = 5

type UserSummary struct {
	ID        uint              `json:"id"`
	FullName  string            `json:"full_name"`
	Email     string            `json:"email"`
	Enabled   bool              `json:"enabled"`
	Roles     []models.RoleName `json:"roles"`
	CreatedAt string            `json:"created_at"`
}

type Dashboard struct {
	RoleCounts   map[models.RoleName]int64 `json:"role_counts"`
	OpenJobs     int64                     `json:"open_jobs"`
	Companies    int64                     `json:"companies"`
	Applications int64                     `json:"applications"`
	RecentUsers  []UserSummary             `json:"recent_users"`
}

type Service struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewService(db *gorm.DB, log zerolog.Logger) *Service {
	return &Service{db: db, log: log}
}

// Dashboard gathers the headline counts and the most recent sign-ups.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	db := s.db.WithContext(ctx)
	d := &Dashboard{RoleCounts: make(map[models.RoleName]int64, len(models.AllRoleNames))}

	type roleCount struct {
		Name  models.RoleName
		Count int64
	}
	var counts []roleCount
	err := db.Table("user_roles").
		Select("roles.name AS name, COUNT(user_roles.user_id) AS count").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Group("roles.name").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("count users per role: %w", err)
	}
	for _, name := range models.AllRoleNames {
		d.RoleCounts[name] = 0
	}
	for _, rc := range counts {
		d.RoleCounts[rc.Name] = rc.Count
	}

	if err := db.Model(&models.Job{}).Where("status = ?", models.JobStatusOpen).Count(&d.OpenJobs).Error; err != nil {
		return nil, fmt.Errorf("count open jobs: %w", err)
	}
	if err := db.Model(&models.Company{}).Count(&d.Companies).Error; err != nil {
		return nil, fmt.Errorf("count companies: %w", err)
	}
	if err := db.Model(&models.JobApplication{}).Count(&d.Applications).Error; err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}

	var recent []models.User
	if err := db.Preload("Roles").Order("created_at DESC, id DESC").Limit(recentUsersLimit).Find(&recent).Error; err != nil {
		return nil, fmt.Errorf("recent users: %w", err)
	}
	d.RecentUsers = make([]UserSummary, 0, len(recent))
	for i := range recent {
		d.RecentUsers = append(d.RecentUsers, summarize(&recent[i]))
	}
	return d, nil
}

// ToggleUserEnabled flips the enabled flag of the user. Admins cannot lock
// themselves out.
func (s *Service) ToggleUserEnabled(ctx context.Context, userID uint, actor *models.User) (*UserSummary, error) {
	if actor != nil && actor.ID == userID {
		return nil, apperr.Forbidden("you cannot disable your own account")
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Roles").First(&user, userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("user %d not found", userID)
		}
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}

		before := map[string]any{"id": user.ID, "enabled": user.Enabled}
		user.Enabled = !user.Enabled
		if err := tx.Model(&models.User{ID: user.ID}).Update("enabled", user.Enabled).Error; err != nil {
			return fmt.Errorf("toggle user: %w", err)
		}

		state := "disabled"
		if user.Enabled {
			state = "enabled"
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  audit.EntityUser,
			EntityID:    user.ID,
			Action:      models.AuditActionToggle,
			Description: fmt.Sprintf("user %s %s", user.Email, state),
			Before:      before,
			After:       map[string]any{"id": user.ID, "enabled": user.Enabled},
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("user_id", user.ID).Bool("enabled", user.Enabled).Msg("user toggled")
	out := summarize(&user)
	return &out, nil
}

func summarize(u *models.User) UserSummary {
	return UserSummary{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Enabled:   u.Enabled,
		Roles:     u.RoleNames(),
		CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
