package service

import (
	"context"
	"time"

	"fitness/internal/email"
	"fitness/internal/models"
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByVerificationToken(ctx context.Context, token string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	RoleByEmail(ctx context.Context, email string) (int, error)
	SetVerificationToken(ctx context.Context, id, token string, expiresAt time.Time) error
	MarkEmailVerified(ctx context.Context, id string) error
	UpdateProfile(ctx context.Context, id string, detail *models.Detail, deviceToken string) error
	MarkViewed(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, s models.UserSearch) ([]*models.User, error)
	AppendWorkout(ctx context.Context, userID string, entry *models.WorkoutEntry) error
	AppendDay(ctx context.Context, userID string, entry *models.DayEntry) error
}

type ExerciseStore interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Exercise, error)
}

type PlanStore interface {
	FindActive(ctx context.Context, userID string, at time.Time) (*models.MonthlyPlan, error)
}

type Mailer interface {
	Send(ctx context.Context, msg email.Message) error
}

// IdentityProvider owns credentials. This service never stores passwords.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, email, password string) (string, error)
	SendPasswordReset(ctx context.Context, email string) error
}
