// Package seed loads a YAML demo fixture through the regular services, so
// seeded data passes the same validation and authorization as live traffic.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"jobboard-backend/internal/apperr"
	"jobboard-backend/internal/applications"
	"jobboard-backend/internal/auth"
	"jobboard-backend/internal/company"
	"jobboard-backend/internal/jobs"
	"jobboard-backend/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Fixture struct {
	Users        []UserFixture        `yaml:"users"`
	Jobs         []JobFixture         `yaml:"jobs"`
	Applications []ApplicationFixture `yaml:"applications"`
}

type UserFixture struct {
	FullName string          `yaml:"full_name"`
	Email    string          `yaml:"email"`
	Phone    string          `yaml:"phone"`
	Password string          `yaml:"password"`
	Role     string          `yaml:"role"`
	Company  *CompanyFixture `yaml:"company"`
}

type CompanyFixture struct {
	Name        string `yaml:"name"`
	Website     string `yaml:"website"`
	Description string `yaml:"description"`
}

type JobFixture struct {
	Title          string `yaml:"title"`
	Description    string `yaml:"description"`
	Location       string `yaml:"location"`
	EmploymentType string `yaml:"employment_type"`
	SalaryMin      *int   `yaml:"salary_min"`
	SalaryMax      *int   `yaml:"salary_max"`
	PostedBy       string `yaml:"posted_by"`
	Company        string `yaml:"company"`
}

// ApplicationFixture names its job by title. PostedBy is needed only when
// more than one poster in the fixture uses that title.
type ApplicationFixture struct {
	Job         string `yaml:"job"`
	PostedBy    string `yaml:"posted_by"`
	Candidate   string `yaml:"candidate"`
	CoverLetter string `yaml:"cover_letter"`
	ResumeURL   string `yaml:"resume_url"`
	Status      string `yaml:"status"`
}

// Summary counts what Apply created; existing users and jobs are skipped.
type Summary struct {
	UsersCreated        int
	UsersSkipped        int
	JobsCreated         int
	JobsSkipped         int
	ApplicationsCreated int
}

// Parse decodes a fixture, rejecting unknown keys.
func Parse(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixture
	if err := dec.Decode(&fx); err != nil {
		if errors.Is(err, io.EOF) {
			return &fx, nil
		}
		return nil, apperr.InvalidArgument("parse fixture: %v", err)
	}
	return &fx, nil
}

// ParseFile reads and decodes the fixture at path.
func ParseFile(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

type Seeder struct {
	Users        *auth.Service
	Companies    *company.Service
	Jobs         *jobs.Service
	Applications *applications.Service
	Log          zerolog.Logger
}

// Apply creates users, then jobs, then applications. Users whose email is
// taken and jobs the poster already has under the same title are reused.
// Applications are always added.
func (s *Seeder) Apply(ctx context.Context, fx *Fixture) (*Summary, error) {
	sum := &Summary{}
	users := make(map[string]*models.User, len(fx.Users))

	for i, uf := range fx.Users {
		in := auth.RegisterInput{
			FullName: uf.FullName,
			Email:    uf.Email,
			Phone:    uf.Phone,
			Password: uf.Password,
			Role:     uf.Role,
		}
		if uf.Company != nil {
			in.CompanyName = uf.Company.Name
			in.CompanyWebsite = uf.Company.Website
			in.CompanyDescription = uf.Company.Description
		}

		u, _, err := s.Users.Register(ctx, in)
		switch {
		case errors.Is(err, apperr.ErrConflict):
			if u, err = s.Users.FindByEmail(ctx, uf.Email); err != nil {
				return sum, fmt.Errorf("users[%d]: %w", i, err)
			}
			sum.UsersSkipped++
		case err != nil:
			return sum, fmt.Errorf("users[%d] %s: %w", i, uf.Email, err)
		default:
			sum.UsersCreated++
		}
		users[u.Email] = u
	}

	lookup := func(email string) (*models.User, error) {
		key := strings.ToLower(strings.TrimSpace(email))
		if u, ok := users[key]; ok {
			return u, nil
		}
		u, err := s.Users.FindByEmail(ctx, key)
		if err != nil {
			return nil, err
		}
		users[key] = u
		return u, nil
	}

	seeded := make(map[string][]seededJob, len(fx.Jobs))
	for i, jf := range fx.Jobs {
		poster, err := lookup(jf.PostedBy)
		if err != nil {
			return sum, fmt.Errorf("jobs[%d] posted_by: %w", i, err)
		}
		companyID, err := s.ownedCompanyID(ctx, poster, jf.Company)
		if err != nil {
			return sum, fmt.Errorf("jobs[%d]: %w", i, err)
		}

		existing, err := s.Jobs.ListForUser(ctx, poster)
		if err != nil {
			return sum, err
		}
		title := strings.TrimSpace(jf.Title)
		var jobID uint
		for _, j := range existing {
			if j.Title == title && j.CompanyID == companyID {
				jobID = j.ID
				break
			}
		}

		if jobID != 0 {
			sum.JobsSkipped++
		} else {
			created, err := s.Jobs.Create(ctx, jobs.JobRequest{
				Title:          jf.Title,
				Description:    jf.Description,
				Location:       jf.Location,
				EmploymentType: jf.EmploymentType,
				SalaryMin:      jf.SalaryMin,
				SalaryMax:      jf.SalaryMax,
				CompanyID:      &companyID,
			}, poster)
			if err != nil {
				return sum, fmt.Errorf("jobs[%d] %q: %w", i, jf.Title, err)
			}
			jobID = created.ID
			sum.JobsCreated++
		}
		seeded[title] = append(seeded[title], seededJob{id: jobID, poster: poster})
	}

	for i, af := range fx.Applications {
		job, err := resolveJob(seeded, af)
		if err != nil {
			return sum, fmt.Errorf("applications[%d]: %w", i, err)
		}
		candidate, err := lookup(af.Candidate)
		if err != nil {
			return sum, fmt.Errorf("applications[%d] candidate: %w", i, err)
		}

		app, err := s.Applications.Submit(ctx, job.id, candidate, af.CoverLetter, af.ResumeURL)
		if err != nil {
			return sum, fmt.Errorf("applications[%d]: %w", i, err)
		}
		if af.Status != "" {
			if _, err := s.Applications.Transition(ctx, app.ID, af.Status, job.poster); err != nil {
				return sum, fmt.Errorf("applications[%d] status: %w", i, err)
			}
		}
		sum.ApplicationsCreated++
	}

	s.Log.Info().
		Int("users_created", sum.UsersCreated).
		Int("users_skipped", sum.UsersSkipped).
		Int("jobs_created", sum.JobsCreated).
		Int("jobs_skipped", sum.JobsSkipped).
		Int("applications_created", sum.ApplicationsCreated).
		Msg("fixture applied")
	return sum, nil
}

type seededJob struct {
	id     uint
	poster *models.User
}

// resolveJob picks the fixture job an application refers to. Titles are only
// unique per poster, so a title shared by several jobs needs posted_by.
func resolveJob(seeded map[string][]seededJob, af ApplicationFixture) (seededJob, error) {
	title := strings.TrimSpace(af.Job)
	email := strings.ToLower(strings.TrimSpace(af.PostedBy))

	var matches []seededJob
	for _, j := range seeded[title] {
		if email != "" && j.poster.Email != email {
			continue
		}
		if !slices.ContainsFunc(matches, func(m seededJob) bool { return m.id == j.id }) {
			matches = append(matches, j)
		}
	}

	switch {
	case len(matches) == 0 && email != "":
		return seededJob{}, apperr.NotFound("job %q posted by %s is not in the fixture", af.Job, af.PostedBy)
	case len(matches) == 0:
		return seededJob{}, apperr.NotFound("job %q is not in the fixture", af.Job)
	case len(matches) > 1 && email != "":
		return seededJob{}, apperr.InvalidArgument("%s posts more than one job titled %q", af.PostedBy, af.Job)
	case len(matches) > 1:
		return seededJob{}, apperr.InvalidArgument("job %q is posted more than once; set posted_by", af.Job)
	}
	return matches[0], nil
}

// ownedCompanyID resolves a company name among the poster's companies. An
// empty name picks the poster's only company.
func (s *Seeder) ownedCompanyID(ctx context.Context, poster *models.User, name string) (uint, error) {
	owned, err := s.Companies.ListOwnedBy(ctx, poster.ID)
	if err != nil {
		return 0, err
	}
	name = strings.TrimSpace(name)
	if name == "" && len(owned) == 1 {
		return owned[0].ID, nil
	}
	for _, c := range owned {
		if strings.EqualFold(c.Name, name) {
			return c.ID, nil
		}
	}
	return 0, apperr.NotFound("%s owns no company named %q", poster.Email, name)
}
