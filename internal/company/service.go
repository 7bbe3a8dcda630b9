// Package company keeps the ownership ledger between users and the companies they administer.
package company

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jobboard-backend/internal/apperr"
	"jobboard-backend/internal/audit"
	"jobboard-backend/internal/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type CreateInput struct {
	Name        string
	Description string
	Website     string
	Address     string
}

type Service struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewService(db *gorm.DB, log zerolog.Logger) *Service {
	return &Service{db: db, log: log}
}

// CanOwnCompany reports whether the user's roles allow administering a company.
func CanOwnCompany(u *models.User) bool {
	return u.HasRole(models.RoleCompany) || u.HasRole(models.RoleHiringManager)
}

// CreateForOwner inserts a company owned by owner using tx. It is the single
// place a company gets its owner, and is meant to run inside the caller's
// transaction (registration creates the user and the company together).
func CreateForOwner(tx *gorm.DB, owner *models.User, in CreateInput) (*models.Company, error) {
	if owner == nil || owner.ID == 0 {
		return nil, apperr.InvalidArgument("company owner is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.InvalidArgument("company name is required")
	}

	c := models.Company{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Website:     strings.TrimSpace(in.Website),
		Address:     strings.TrimSpace(in.Address),
		OwnerID:     owner.ID,
	}
	if err := tx.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}

	if err := audit.WriteLog(tx, audit.LogOptions{
		Actor:       owner,
		EntityType:  audit.EntityCompany,
		EntityID:    c.ID,
		Action:      models.AuditActionCreate,
		Description: "company created: " + c.Name,
		After:       c,
	}); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create adds another company for an existing company or hiring manager user.
func (s *Service) Create(ctx context.Context, actor *models.User, in CreateInput) (*models.Company, error) {
	if !CanOwnCompany(actor) {
		return nil, apperr.Forbidden("only company or hiring manager users can own companies")
	}

	var created *models.Company
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := CreateForOwner(tx, actor, in)
		if err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("company_id", created.ID).Uint("owner_id", actor.ID).Msg("company created")
	return created, nil
}

// Get resolves a company by id.
func (s *Service) Get(ctx context.Context, id uint) (*models.Company, error) {
	return Find(s.db.WithContext(ctx), id)
}

// Find resolves a company by id on the given handle, which may be a transaction.
func Find(db *gorm.DB, id uint) (*models.Company, error) {
	var c models.Company
	err := db.First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("company %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) List(ctx context.Context) ([]models.Company, error) {
	var out []models.Company
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return out, nil
}

func (s *Service) ListOwnedBy(ctx context.Context, ownerID uint) ([]models.Company, error) {
	var out []models.Company
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list owned companies: %w", err)
	}
	return out, nil
}
