// Package roles holds the fixed role set and its storage bootstrap.
package roles

import (
	"context"
	"errors"
	"strings"

	"jobboard-backend/internal/apperr"
	"jobboard-backend/internal/models"

	"gorm.io/gorm"
)

// HasRole reports whether user holds the named role.
func HasRole(user *models.User, name models.RoleName) bool {
	return user.HasRole(name)
}

// ParseName resolves a role name, case-insensitively and with or without a "ROLE_" prefix.
func ParseName(s string) (models.RoleName, error) {
	n := strings.ToUpper(strings.TrimSpace(s))
	n = strings.TrimPrefix(n, "ROLE_")
	for _, r := range models.AllRoleNames {
		if string(r) == n {
			return r, nil
		}
	}
	return "", apperr.InvalidArgument("unknown role %q", s)
}

// EnsureSeeded inserts every role that is missing. Existing rows are never
// touched, so running it any number of times leaves one row per role.
// It fails with apperr.ErrFatal when the super admin role cannot be found afterwards.
func EnsureSeeded(ctx context.Context, db *gorm.DB) error {
	for _, name := range models.AllRoleNames {
		role := models.Role{Name: name}
		if err := db.WithContext(ctx).
			Where(models.Role{Name: name}).
			FirstOrCreate(&role).Error; err != nil {
			return apperr.Fatal("seed role %s: %v", name, err)
		}
	}

	if _, err := Find(ctx, db, models.RoleSuperAdmin); err != nil {
		return apperr.Fatal("role %s missing after seeding: %v", models.RoleSuperAdmin, err)
	}
	return nil
}

// Find loads a role row by name.
func Find(ctx context.Context, db *gorm.DB, name models.RoleName) (*models.Role, error) {
	var role models.Role
	err := db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("role %s not found", name)
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}
