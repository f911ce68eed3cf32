package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fitness/internal/models"
)

type PlanRepository struct {
	db *DB
}

func NewPlanRepository(db *DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) Create(ctx context.Context, p *models.MonthlyPlan) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO monthly_plans (id, user_id, start_date, end_date, weeks, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, utcPtr(p.StartDate), utcPtr(p.EndDate), p.Weeks, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyError(err) {
			return ErrNotFound
		}
		if IsUniqueConstraintError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("creating monthly plan: %w", err)
	}
	return nil
}

// FindActive returns the user's plan whose validity window contains at.
// When several windows overlap the most recently created plan wins.
func (r *PlanRepository) FindActive(ctx context.Context, userID string, at time.Time) (*models.MonthlyPlan, error) {
	at = at.UTC()

	var plan models.MonthlyPlan
	err := r.db.GetContext(ctx, &plan,
		`SELECT id, user_id, start_date, end_date, weeks, created_at, updated_at
		   FROM monthly_plans
		  WHERE user_id = ?
		    AND (start_date IS NULL OR start_date <= ?)
		    AND (end_date IS NULL OR end_date >= ?)
		  ORDER BY created_at DESC
		  LIMIT 1`,
		userID, at, at,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying monthly plan: %w", err)
	}
	return &plan, nil
}

func utcPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
