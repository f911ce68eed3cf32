// Package seed loads catalog, user and plan fixtures from YAML so a fresh
// database can be exercised end to end.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"fitness/internal/db"
	"fitness/internal/models"
)

type Fixtures struct {
	Exercises []models.Exercise `yaml:"exercises"`
	Users     []UserFixture     `yaml:"users"`
	Plans     []PlanFixture     `yaml:"plans"`
}

type UserFixture struct {
	Email     string `yaml:"email"`
	Name      string `yaml:"name"`
	FirstName string `yaml:"firstName"`
	LastName  string `yaml:"lastName"`
	Role      int    `yaml:"role"`
	Verified  bool   `yaml:"verified"`
}

// PlanFixture assigns a plan to the user registered under UserEmail.
type PlanFixture struct {
	UserEmail string       `yaml:"user"`
	StartDate *time.Time   `yaml:"startDate"`
	EndDate   *time.Time   `yaml:"endDate"`
	Weeks     models.Weeks `yaml:"weeks"`
}

type Summary struct {
	Exercises    int
	UsersCreated int
	UsersSkipped int
	Plans        int
}

func Load(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixtures: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("validating fixtures: %w", err)
	}
	return &f, nil
}

func (f *Fixtures) validate() error {
	for i, e := range f.Exercises {
		if !db.IsValidID(e.ID) {
			return fmt.Errorf("exercises[%d]: id %q is not a 24 character hex id", i, e.ID)
		}
		if strings.TrimSpace(e.Title) == "" {
			return fmt.Errorf("exercises[%d]: title is required", i)
		}
	}
	for i, u := range f.Users {
		if strings.TrimSpace(u.Email) == "" {
			return fmt.Errorf("users[%d]: email is required", i)
		}
	}
	for i, p := range f.Plans {
		if strings.TrimSpace(p.UserEmail) == "" {
			return fmt.Errorf("plans[%d]: user is required", i)
		}
		if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
			return fmt.Errorf("plans[%d]: endDate is before startDate", i)
		}
	}
	return nil
}

// Apply writes f to the database. Exercises are upserted, existing users are
// left untouched and plans are always inserted.
func Apply(ctx context.Context, q *db.Queries, f *Fixtures) (Summary, error) {
	var summary Summary

	for i := range f.Exercises {
		if err := q.Exercises.Upsert(ctx, &f.Exercises[i]); err != nil {
			return summary, err
		}
		summary.Exercises++
	}

	for _, u := range f.Users {
		user := &models.User{
			Email:           strings.ToLower(strings.TrimSpace(u.Email)),
			Name:            u.Name,
			FirstName:       u.FirstName,
			LastName:        u.LastName,
			Role:            u.Role,
			IsEmailVerified: u.Verified,
		}
		if err := q.Users.Create(ctx, user); err != nil {
			if errors.Is(err, db.ErrDuplicate) {
				summary.UsersSkipped++
				continue
			}
			return summary, err
		}
		summary.UsersCreated++
	}

	for i, p := range f.Plans {
		user, err := q.Users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(p.UserEmail)))
		if err != nil {
			return summary, fmt.Errorf("plans[%d]: user %q: %w", i, p.UserEmail, err)
		}
		plan := &models.MonthlyPlan{
			UserID:    user.ID,
			StartDate: p.StartDate,
			EndDate:   p.EndDate,
			Weeks:     p.Weeks,
		}
		if err := q.Plans.Create(ctx, plan); err != nil {
			return summary, fmt.Errorf("plans[%d]: %w", i, err)
		}
		summary.Plans++
	}

	return summary, nil
}
