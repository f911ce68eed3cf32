package service

import (
	"context"
	"errors"

	"fitness/internal/db"
	"fitness/internal/models"
)

type PlanService struct {
	plans     PlanStore
	exercises ExerciseStore
	clock     Clock
}

func NewPlanService(plans PlanStore, exercises ExerciseStore, clock Clock) *PlanService {
	return &PlanService{plans: plans, exercises: exercises, clock: clock}
}

// ActivePlan returns the user's plan for the current reference date with
// exercise titles attached. It returns nil, nil when no plan is active.
func (s *PlanService) ActivePlan(ctx context.Context, userID string) (*models.MonthlyPlan, error) {
	plan, err := s.plans.FindActive(ctx, userID, s.clock.Now())
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	ids := plan.ExerciseIDs()
	var catalog []models.Exercise
	if len(ids) > 0 {
		catalog, err = s.exercises.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
	}
	return EnrichPlan(plan, catalog), nil
}

// EnrichPlan returns a copy of plan whose exercises carry their catalog
// titles. References missing from catalog get an empty name.
func EnrichPlan(plan *models.MonthlyPlan, catalog []models.Exercise) *models.MonthlyPlan {
	if plan == nil {
		return nil
	}
	titles := make(map[string]string, len(catalog))
	for _, e := range catalog {
		titles[e.ID] = e.Title
	}

	out := *plan
	out.Weeks = make(models.Weeks, len(plan.Weeks))
	for i, week := range plan.Weeks {
		days := make([]models.Day, len(week.Days))
		for j, day := range week.Days {
			exercises := make([]models.PlanExercise, len(day.Exercises))
			for k, exercise := range day.Exercises {
				exercise.Name = titles[exercise.ExerciseID]
				exercises[k] = exercise
			}
			day.Exercises = exercises
			days[j] = day
		}
		week.Days = days
		out.Weeks[i] = week
	}
	return &out
}
