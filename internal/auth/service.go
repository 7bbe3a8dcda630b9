package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"jobboard-backend/internal/apperr"
	"jobboard-backend/internal/audit"
	"jobboard-backend/internal/company"
	"jobboard-backend/internal/metrics"
	"jobboard-backend/internal/models"
	"jobboard-backend/internal/roles"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

const minPasswordLen = 8

// PasswordHasher is the one-way credential transform.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

type RegisterInput struct {
	FullName string
	Email    string
	Phone    string
	Password string
	Role     string

	CompanyName        string
	CompanyWebsite     string
	CompanyDescription string
}

type Service struct {
	db      *gorm.DB
	hasher  PasswordHasher
	metrics *metrics.Metrics
	log     zerolog.Logger

	// Compared against on unknown emails so login time does not reveal
	// which addresses are registered.
	dummyOnce sync.Once
	dummyHash string
}

func NewService(db *gorm.DB, hasher PasswordHasher, m *metrics.Metrics, log zerolog.Logger) *Service {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	return &Service{db: db, hasher: hasher, metrics: m, log: log}
}

// Register creates the user and, for company and hiring manager roles, the
// company they own. Both rows are written in one transaction; if either
// fails nothing is persisted.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, *models.Company, error) {
	email := normalizeEmail(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	switch {
	case fullName == "":
		return nil, nil, apperr.InvalidArgument("full name is required")
	case email == "" || !strings.Contains(email, "@"):
		return nil, nil, apperr.InvalidArgument("a valid email is required")
	case len(strings.TrimSpace(in.Password)) < minPasswordLen:
		return nil, nil, apperr.InvalidArgument("password must be at least %d characters", minPasswordLen)
	}

	roleName, err := roles.ParseName(in.Role)
	if err != nil {
		return nil, nil, err
	}
	if roleName == models.RoleSuperAdmin {
		return nil, nil, apperr.InvalidArgument("role %s cannot be chosen at registration", roleName)
	}
	ownsCompany := roleName == models.RoleCompany || roleName == models.RoleHiringManager
	if ownsCompany && strings.TrimSpace(in.CompanyName) == "" {
		return nil, nil, apperr.InvalidArgument("company name is required for role %s", roleName)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	var (
		user    *models.User
		created *models.Company
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("email %s is already registered", email)
		}

		role, err := roles.Find(ctx, tx, roleName)
		if err != nil {
			return err
		}

		user = &models.User{
			FullName:     fullName,
			Email:        email,
			Phone:        strings.TrimSpace(in.Phone),
			PasswordHash: hash,
			Enabled:      true,
			Roles:        []models.Role{*role},
		}
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("email %s is already registered", email)
			}
			return fmt.Errorf("create user: %w", err)
		}

		if err := audit.WriteLog(tx, audit.LogOptions{
			Actor:       user,
			EntityType:  audit.EntityUser,
			EntityID:    user.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("registered as %s", roleName),
			After:       userSnapshot(user),
		}); err != nil {
			return err
		}

		if ownsCompany {
			created, err = company.CreateForOwner(tx, user, company.CreateInput{
				Name:        in.CompanyName,
				Website:     in.CompanyWebsite,
				Description: in.CompanyDescription,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.metrics.Registered(string(roleName))
	ev := s.log.Info().Uint("user_id", user.ID).Str("role", string(roleName))
	if created != nil {
		ev = ev.Uint("company_id", created.ID)
	}
	ev.Msg("user registered")

	return user, created, nil
}

// Login checks credentials. Disabled accounts are rejected even with the right password.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var u models.User
	err := s.db.WithContext(ctx).Preload("Roles").Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = s.hasher.Compare(s.dummy(), password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.Enabled {
		return nil, apperr.Forbidden("account is disabled")
	}
	return &u, nil
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("jobboard-unknown-account")
		if err != nil {
			s.log.Warn().Err(err).Msg("dummy password hash failed")
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

// LoadActor loads a user with its role set, as needed by the management policy.
func (s *Service) LoadActor(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Preload("Roles").First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail loads a user with its role set by normalized email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)
	var u models.User
	err := s.db.WithContext(ctx).Preload("Roles").Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user %s not found", email)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SeedSuperAdmin creates the bootstrap administrator unless a user with that
// email already exists. Roles must already be seeded.
func (s *Service) SeedSuperAdmin(ctx context.Context, email, password, fullName string) error {
	email = normalizeEmail(email)
	if email == "" {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		role, err := roles.Find(ctx, tx, models.RoleSuperAdmin)
		if err != nil {
			return apperr.Fatal("cannot seed admin: %v", err)
		}
		hash, err := s.hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		if strings.TrimSpace(fullName) == "" {
			fullName = "Administrator"
		}

		admin := &models.User{
			FullName:     fullName,
			Email:        email,
			PasswordHash: hash,
			Enabled:      true,
			Roles:        []models.Role{*role},
		}
		if err := tx.Create(admin).Error; err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		s.log.Info().Uint("user_id", admin.ID).Msg("super admin seeded")

		return audit.WriteLog(tx, audit.LogOptions{
			EntityType:  audit.EntityUser,
			EntityID:    admin.ID,
			Action:      models.AuditActionCreate,
			Description: "super admin seeded",
			After:       userSnapshot(admin),
		})
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// userSnapshot is the audit view of a user; it never includes the password hash.
func userSnapshot(u *models.User) map[string]any {
	return map[string]any{
		"id":        u.ID,
		"email":     u.Email,
		"full_name": u.FullName,
		"enabled":   u.Enabled,
		"roles":     u.RoleNames(),
	}
}
