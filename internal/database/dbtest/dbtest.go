// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"testing"

	"jobboard-backend/internal/database"
	"jobboard-backend/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns an isolated in-memory SQLite database with the full schema.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// Each connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts an enabled user holding the given roles, creating role rows as needed.
func CreateUser(t testing.TB, db *gorm.DB, email string, roleNames ...models.RoleName) *models.User {
	t.Helper()

	u := &models.User{FullName: email, Email: email, PasswordHash: "not-a-hash", Enabled: true}
	for _, name := range roleNames {
		r := models.Role{Name: name}
		if err := db.Where(models.Role{Name: name}).FirstOrCreate(&r).Error; err != nil {
			t.Fatalf("role %s: %v", name, err)
		}
		u.Roles = append(u.Roles, r)
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

// CreateCompany inserts a company owned by owner.
func CreateCompany(t testing.TB, db *gorm.DB, owner *models.User, name string) *models.Company {
	t.Helper()
	c := &models.Company{Name: name, OwnerID: owner.ID}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("create company %s: %v", name, err)
	}
	return c
}
