package db

import (
	"context"
	"fmt"
	"time"

	"fitness/internal/models"
)

type ExerciseRepository struct {
	db *DB
}

func NewExerciseRepository(db *DB) *ExerciseRepository {
	return &ExerciseRepository{db: db}
}

// Upsert inserts e or renames the existing entry with the same id.
func (r *ExerciseRepository) Upsert(ctx context.Context, e *models.Exercise) error {
	if e.ID == "" {
		e.ID = NewID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO exercises (id, title, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title`,
		e.ID, e.Title, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting exercise: %w", err)
	}
	return nil
}

// FindByIDs returns the catalog entries among ids in one query. Unknown ids
// are skipped.
func (r *ExerciseRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Exercise, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var exercises []models.Exercise
	err := r.db.selectIn(ctx, &exercises,
		`SELECT id, title, created_at FROM exercises WHERE id IN (?)`, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	return exercises, nil
}
