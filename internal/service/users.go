package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"fitness/internal/db"
	"fitness/internal/models"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

type UserService struct {
	users     UserStore
	plans     *PlanService
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

func NewUserService(users UserStore, plans *PlanService) *UserService {
	return &UserService{
		users:     users,
		plans:     plans,
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

// Profile is a user together with the plan active for them today. Plan is
// nil when no plan is active.
type Profile struct {
	User *models.User
	Plan *models.MonthlyPlan
}

// GetProfile loads a user for the admin console and records the view.
func (s *UserService) GetProfile(ctx context.Context, id string) (*Profile, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	plan, err := s.plans.ActivePlan(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.users.MarkViewed(ctx, user.ID, s.now().UTC()); err != nil {
		slog.Warn("failed to record profile view", "user_id", user.ID, "error", err)
	}
	return &Profile{User: user, Plan: plan}, nil
}

type ListUsersInput struct {
	Search  string
	Page    int
	PerPage int
	SortBy  string
}

// ListUsers returns one page of users. No total count is computed.
func (s *UserService) ListUsers(ctx context.Context, in ListUsersInput) ([]*models.User, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	perPage := in.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	users, err := s.users.Search(ctx, models.UserSearch{
		Text:    strings.TrimSpace(in.Search),
		Page:    page,
		PerPage: perPage,
		Sort:    models.SortFor(in.SortBy),
	})
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

type UpdateProfileInput struct {
	Detail      *models.Detail
	DeviceToken string
}

// UpdateProfile replaces the profile detail when one is given and registers
// the device token when one is given. A nil Detail leaves the stored one
// untouched.
func (s *UserService) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (*models.User, error) {
	if !db.IsValidID(id) {
		return nil, newError(ErrNotFound, "User not found")
	}

	var detail *models.Detail
	if in.Detail != nil {
		sanitized := *in.Detail
		sanitized.Location = s.sanitize(sanitized.Location)
		sanitized.Goal = s.sanitize(sanitized.Goal)
		sanitized.AvatarURL = s.sanitize(sanitized.AvatarURL)
		detail = &sanitized
	}

	if err := s.users.UpdateProfile(ctx, id, detail, strings.TrimSpace(in.DeviceToken)); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, newError(ErrNotFound, "User not found")
		}
		return nil, err
	}
	return s.findUser(ctx, id)
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if !db.IsValidID(id) {
		return newError(ErrNotFound, "User not found")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return newError(ErrNotFound, "User not found")
		}
		return err
	}
	return nil
}

func (s *UserService) findUser(ctx context.Context, id string) (*models.User, error) {
	if !db.IsValidID(id) {
		return nil, newError(ErrNotFound, "User not found")
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, newError(ErrNotFound, "User not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) sanitize(v string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(v))
}
