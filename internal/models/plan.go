package models

import (
	"database/sql/driver"
	"time"
)

// MonthlyPlan is the workout plan assigned to a user for a validity window.
// A nil StartDate or EndDate leaves that side of the window open.
type MonthlyPlan struct {
	ID        string     `json:"_id" db:"id"`
	UserID    string     `json:"userId" db:"user_id"`
	StartDate *time.Time `json:"startDate" db:"start_date"`
	EndDate   *time.Time `json:"endDate" db:"end_date"`
	Weeks     Weeks      `json:"weeks" db:"weeks"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// ActiveAt reports whether t falls inside the plan's validity window,
// bounds included.
func (p *MonthlyPlan) ActiveAt(t time.Time) bool {
	if p.StartDate != nil && t.Before(*p.StartDate) {
		return false
	}
	if p.EndDate != nil && t.After(*p.EndDate) {
		return false
	}
	return true
}

// ExerciseIDs returns every distinct exercise reference in plan order.
// Entries without a reference are skipped.
func (p *MonthlyPlan) ExerciseIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, week := range p.Weeks {
		for _, day := range week.Days {
			for _, exercise := range day.Exercises {
				if exercise.ExerciseID == "" {
					continue
				}
				if _, ok := seen[exercise.ExerciseID]; ok {
					continue
				}
				seen[exercise.ExerciseID] = struct{}{}
				ids = append(ids, exercise.ExerciseID)
			}
		}
	}
	return ids
}

type Week struct {
	Name string `json:"name,omitempty" yaml:"name"`
	Days []Day  `json:"days" yaml:"days"`
}

type Day struct {
	ID        string         `json:"_id,omitempty" yaml:"id"`
	Name      string         `json:"name,omitempty" yaml:"name"`
	Exercises []PlanExercise `json:"exercises" yaml:"exercises"`
}

// PlanExercise references a catalog exercise. Name is filled at read time
// and never persisted.
type PlanExercise struct {
	ExerciseID string `json:"exerciseId" yaml:"exerciseId"`
	Name       string `json:"name" yaml:"-"`
	Sets       int    `json:"sets,omitempty" yaml:"sets"`
	Reps       string `json:"reps,omitempty" yaml:"reps"`
	Rest       int    `json:"rest,omitempty" yaml:"rest"`
	Note       string `json:"note,omitempty" yaml:"note"`
}

type Weeks []Week

func (w Weeks) Value() (driver.Value, error) {
	if w == nil {
		return "[]", nil
	}
	stripped := make([]Week, len(w))
	for i, week := range w {
		stripped[i] = Week{Name: week.Name, Days: make([]Day, len(week.Days))}
		for j, day := range week.Days {
			exercises := make([]PlanExercise, len(day.Exercises))
			for k, exercise := range day.Exercises {
				exercise.Name = ""
				exercises[k] = exercise
			}
			stripped[i].Days[j] = Day{ID: day.ID, Name: day.Name, Exercises: exercises}
		}
	}
	return documentValue(stripped)
}

func (w *Weeks) Scan(src any) error {
	return scanDocument(src, (*[]Week)(w))
}
