// Package seed loads cohorts, accounts and profiles from a YAML fixture file.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	academymodel "showcase-platform/internal/academy/domain/model"
	academyusecase "showcase-platform/internal/academy/usecase"
	authmodel "showcase-platform/internal/auth/domain/model"
	authusecase "showcase-platform/internal/auth/usecase"
	"showcase-platform/internal/security"
	"showcase-platform/internal/shared/logger"

	"gopkg.in/yaml.v3"
)

// File is the YAML layout of a seed file.
type File struct {
	Users   []UserYAML   `yaml:"users"`
	Cohorts []CohortYAML `yaml:"cohorts"`
}

// UserYAML is one account. Students with a cohort key get a student profile,
// instructors get an instructor profile.
type UserYAML struct {
	Email       string   `yaml:"email"`
	Username    string   `yaml:"username,omitempty"`
	Password    string   `yaml:"password"`
	FirstName   string   `yaml:"first_name"`
	LastName    string   `yaml:"last_name"`
	Roles       []string `yaml:"roles,omitempty"`
	Cohort      string   `yaml:"cohort,omitempty"`
	Title       string   `yaml:"title,omitempty"`
	Specialties []string `yaml:"specialties,omitempty"`
}

// CohortYAML is one cohort. Instructors are listed by email.
type CohortYAML struct {
	Key         string     `yaml:"key"`
	Name        string     `yaml:"name"`
	StartDate   time.Time  `yaml:"start_date"`
	EndDate     *time.Time `yaml:"end_date,omitempty"`
	Program     string     `yaml:"program,omitempty"`
	Description string     `yaml:"description,omitempty"`
	Status      string     `yaml:"status,omitempty"`
	Instructors []string   `yaml:"instructors,omitempty"`
}

// Result counts what a run created.
type Result struct {
	Users              int
	SkippedUsers       int
	Cohorts            int
	StudentProfiles    int
	InstructorProfiles int
}

// UserProvisioner creates accounts.
type UserProvisioner interface {
	CreateUser(ctx context.Context, req authusecase.ProvisionRequest) (*authmodel.User, error)
}

// CohortCreator creates cohorts.
type CohortCreator interface {
	Create(ctx context.Context, actor security.Subject, req academyusecase.CohortRequest) (*academymodel.Cohort, error)
}

// ProfileCreator creates student and instructor profiles.
type ProfileCreator interface {
	CreateStudentProfile(ctx context.Context, actor security.Subject, req academyusecase.StudentProfileRequest) (*academymodel.StudentProfile, error)
	CreateInstructorProfile(ctx context.Context, actor security.Subject, req academyusecase.InstructorProfileRequest) (*academymodel.InstructorProfile, error)
}

// Seeder applies seed files. Accounts whose email already exists are skipped along
// with their profiles.
type Seeder struct {
	users    UserProvisioner
	cohorts  CohortCreator
	profiles ProfileCreator
	log      logger.Logger
}

var operator = security.Subject{ID: "system", Role: authmodel.RoleAdmin}

func NewSeeder(users UserProvisioner, cohorts CohortCreator, profiles ProfileCreator, log logger.Logger) *Seeder {
	if log == nil {
		log = logger.NewNop()
	}
	return &Seeder{users: users, cohorts: cohorts, profiles: profiles, log: log.WithComponent("seed")}
}

// Parse decodes a seed file and checks cross references.
func Parse(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}

	keys := make(map[string]bool, len(f.Cohorts))
	for i, c := range f.Cohorts {
		if c.Key == "" {
			return nil, fmt.Errorf("cohort %d: key is required", i)
		}
		if keys[c.Key] {
			return nil, fmt.Errorf("cohort %d: duplicate key %q", i, c.Key)
		}
		keys[c.Key] = true
	}
	for i, u := range f.Users {
		if u.Email == "" {
			return nil, fmt.Errorf("user %d: email is required", i)
		}
		if u.Cohort != "" && !keys[u.Cohort] {
			return nil, fmt.Errorf("user %s: unknown cohort %q", u.Email, u.Cohort)
		}
	}
	return &f, nil
}

// ParseFile opens and parses path.
func ParseFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Parse(fh)
}

// Apply creates users and instructor profiles first, then cohorts so instructor
// assignments reach the profiles, then student profiles.
func (s *Seeder) Apply(ctx context.Context, f *File) (*Result, error) {
	res := &Result{}
	created := make(map[string]*authmodel.User, len(f.Users))

	for _, u := range f.Users {
		roles, err := parseRoles(u.Roles)
		if err != nil {
			return res, fmt.Errorf("user %s: %w", u.Email, err)
		}
		user, err := s.users.CreateUser(ctx, authusecase.ProvisionRequest{
			Email:     u.Email,
			Username:  u.Username,
			Password:  u.Password,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Roles:     roles,
		})
		if errors.Is(err, authusecase.ErrEmailTaken) {
			s.log.Infof("user %s already exists, skipped", u.Email)
			res.SkippedUsers++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("user %s: %w", u.Email, err)
		}
		created[strings.ToLower(strings.TrimSpace(u.Email))] = user
		res.Users++

		if authmodel.HighestRole(user.Roles) == authmodel.RoleInstructor {
			if _, err := s.profiles.CreateInstructorProfile(ctx, operator, academyusecase.InstructorProfileRequest{
				UserID:      user.ID,
				FirstName:   u.FirstName,
				LastName:    u.LastName,
				Title:       u.Title,
				Specialties: u.Specialties,
			}); err != nil {
				return res, fmt.Errorf("instructor profile %s: %w", u.Email, err)
			}
			res.InstructorProfiles++
		}
	}

	cohortIDs := make(map[string]string, len(f.Cohorts))
	for _, c := range f.Cohorts {
		var instructors []string
		for _, email := range c.Instructors {
			if u, ok := created[strings.ToLower(strings.TrimSpace(email))]; ok {
				instructors = append(instructors, u.ID)
			} else {
				s.log.Warnf("cohort %s: instructor %s was not created in this run", c.Key, email)
			}
		}
		cohort, err := s.cohorts.Create(ctx, operator, academyusecase.CohortRequest{
			Name:        c.Name,
			StartDate:   c.StartDate,
			EndDate:     c.EndDate,
			Program:     c.Program,
			Description: c.Description,
			Status:      academymodel.CohortStatus(c.Status),
			Instructors: instructors,
		})
		if err != nil {
			return res, fmt.Errorf("cohort %s: %w", c.Key, err)
		}
		cohortIDs[c.Key] = cohort.ID
		res.Cohorts++
	}

	for _, u := range f.Users {
		user, ok := created[strings.ToLower(strings.TrimSpace(u.Email))]
		if !ok || u.Cohort == "" || authmodel.HighestRole(user.Roles) != authmodel.RoleStudent {
			continue
		}
		if _, err := s.profiles.CreateStudentProfile(ctx, operator, academyusecase.StudentProfileRequest{
			UserID:    user.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Title:     u.Title,
			CohortID:  cohortIDs[u.Cohort],
		}); err != nil {
			return res, fmt.Errorf("student profile %s: %w", u.Email, err)
		}
		res.StudentProfiles++
	}
	return res, nil
}

func parseRoles(in []string) ([]authmodel.Role, error) {
	roles := make([]authmodel.Role, 0, len(in))
	for _, s := range in {
		r, ok := authmodel.ParseRole(s)
		if !ok {
			return nil, fmt.Errorf("%w: %s", authusecase.ErrInvalidRole, s)
		}
		roles = append(roles, r)
	}
	return roles, nil
}
