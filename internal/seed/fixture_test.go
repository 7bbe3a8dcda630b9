package seed

import (
	"context"
	"errors"
	"strings"
	"testing"

	"jobboard-backend/internal/apperr"
	"jobboard-backend/internal/applications"
	"jobboard-backend/internal/auth"
	"jobboard-backend/internal/company"
	"jobboard-backend/internal/database/dbtest"
	"jobboard-backend/internal/jobs"
	"jobboard-backend/internal/models"
	"jobboard-backend/internal/roles"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newSeeder(t *testing.T) (*Seeder, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t)
	if err := roles.EnsureSeeded(context.Background(), db); err != nil {
		t.Fatalf("EnsureSeeded() error = %v", err)
	}
	log := zerolog.Nop()
	return &Seeder{
		Users:        auth.NewService(db, auth.BcryptHasher{Cost: bcrypt.MinCost}, nil, log),
		Companies:    company.NewService(db, log),
		Jobs:         jobs.NewService(db, nil, 0, nil, log),
		Applications: applications.NewService(db, nil, log),
		Log:          log,
	}, db
}

func TestApplyDemoFixture(t *testing.T) {
	s, db := newSeeder(t)
	fx, err := ParseFile("testdata/demo.yaml")
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	sum, err := s.Apply(context.Background(), fx)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if sum.UsersCreated != 4 || sum.JobsCreated != 2 || sum.ApplicationsCreated != 3 {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	var companies int64
	db.Model(&models.Company{}).Count(&companies)
	if companies != 2 {
		t.Fatalf("expected 2 companies, got %d", companies)
	}

	var reviewed models.JobApplication
	if err := db.Where("status = ?", models.ApplicationUnderReview).First(&reviewed).Error; err != nil {
		t.Fatalf("expected an UNDER_REVIEW application: %v", err)
	}

	var open int64
	db.Model(&models.Job{}).Where("status = ?", models.JobStatusOpen).Count(&open)
	if open != 2 {
		t.Fatalf("seeded jobs must be OPEN, got %d", open)
	}
}

func TestApplyIsRepeatableForUsersAndJobs(t *testing.T) {
	s, db := newSeeder(t)
	fx, err := ParseFile("testdata/demo.yaml")
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	ctx := context.Background()
	if _, err := s.Apply(ctx, fx); err != nil {
		t.Fatalf("first Apply() error = %v", err)
	}

	sum, err := s.Apply(ctx, fx)
	if err != nil {
		t.Fatalf("second Apply() error = %v", err)
	}
	if sum.UsersCreated != 0 || sum.UsersSkipped != 4 || sum.JobsCreated != 0 || sum.JobsSkipped != 2 {
		t.Fatalf("unexpected second summary: %+v", sum)
	}

	var users, jobCount int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Job{}).Count(&jobCount)
	if users != 4 || jobCount != 2 {
		t.Fatalf("expected no duplicates, got users=%d jobs=%d", users, jobCount)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(strings.NewReader("users:\n  - email: a@b.test\n    nickname: ace\n"))
	if !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	fx, err := Parse(strings.NewReader(""))
	if err != nil || len(fx.Users) != 0 {
		t.Fatalf("empty fixture: %+v, %v", fx, err)
	}
}

func TestApplyUnknownReferences(t *testing.T) {
	s, _ := newSeeder(t)
	ctx := context.Background()

	fx, _ := Parse(strings.NewReader(`
users:
  - full_name: Alice
    email: alice@acme.test
    password: alicepass123
    role: HIRING_MANAGER
    company: {name: Acme}
jobs:
  - title: Welder
    employment_type: CONTRACT
    posted_by: alice@acme.test
    company: Initech
`))
	if _, err := s.Apply(ctx, fx); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a company the poster does not own, got %v", err)
	}

	fx, _ = Parse(strings.NewReader(`
applications:
  - job: Ghost
    candidate: nobody@example.test
    cover_letter: Hi
`))
	if _, err := s.Apply(ctx, fx); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for an unknown job, got %v", err)
	}
}

const sharedTitleFixture = `
users:
  - full_name: Alice
    email: alice@acme.test
    password: alicepass123
    role: HIRING_MANAGER
    company: {name: Acme}
  - full_name: Greta
    email: greta@globex.test
    password: gretapass123
    role: COMPANY
    company: {name: Globex}
  - full_name: Bob
    email: bob@example.test
    password: bobpass1234
    role: CANDIDATE
jobs:
  - title: Backend Engineer
    description: Acme payments.
    location: Remote
    employment_type: FULL_TIME
    posted_by: alice@acme.test
  - title: Backend Engineer
    description: Globex logistics.
    location: Lyon
    employment_type: FULL_TIME
    posted_by: greta@globex.test
`

func TestApplySharedTitleUsesPoster(t *testing.T) {
	s, db := newSeeder(t)
	fx, err := Parse(strings.NewReader(sharedTitleFixture + `
applications:
  - job: Backend Engineer
    posted_by: Greta@Globex.test
    candidate: bob@example.test
    cover_letter: Logistics is my thing.
    status: UNDER_REVIEW
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	sum, err := s.Apply(context.Background(), fx)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if sum.JobsCreated != 2 || sum.ApplicationsCreated != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	var app models.JobApplication
	if err := db.Preload("Job").First(&app).Error; err != nil {
		t.Fatalf("load application: %v", err)
	}
	if app.Job.Location != "Lyon" {
		t.Fatalf("application attached to the wrong job: %+v", app.Job)
	}
	if app.Status != models.ApplicationUnderReview {
		t.Fatalf("expected the Globex poster to move it to UNDER_REVIEW, got %s", app.Status)
	}
}

func TestApplyAmbiguousTitleNeedsPoster(t *testing.T) {
	s, db := newSeeder(t)
	fx, err := Parse(strings.NewReader(sharedTitleFixture + `
applications:
  - job: Backend Engineer
    candidate: bob@example.test
    cover_letter: Either will do.
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if _, err := s.Apply(context.Background(), fx); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for an ambiguous title, got %v", err)
	}
	var apps int64
	db.Model(&models.JobApplication{}).Count(&apps)
	if apps != 0 {
		t.Fatalf("ambiguous application must not be created, got %d", apps)
	}

	fx, _ = Parse(strings.NewReader(sharedTitleFixture + `
applications:
  - job: Backend Engineer
    posted_by: bob@example.test
    candidate: bob@example.test
    cover_letter: Hi
`))
	if _, err := s.Apply(context.Background(), fx); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a poster without that title, got %v", err)
	}
}
