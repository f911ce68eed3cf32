package models

import (
	"database/sql/driver"
	"time"
)

// DayKey identifies a single planned day. At most one DayEntry exists per
// key and user.
type DayKey struct {
	MonthIndex int
	WeekIndex  int
	DayIndex   int
	DaySplit   int
}

type DayEntry struct {
	ID         int64     `json:"_id" db:"id"`
	MonthIndex int       `json:"monthIndex" db:"month_index"`
	WeekIndex  int       `json:"weekIndex" db:"week_index"`
	DayIndex   int       `json:"dayIndex" db:"day_index"`
	DaySplit   int       `json:"daySplit" db:"day_split"`
	State      string    `json:"state" db:"state"`
	Streak     int       `json:"streak" db:"streak"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

func (e DayEntry) Key() DayKey {
	return DayKey{
		MonthIndex: e.MonthIndex,
		WeekIndex:  e.WeekIndex,
		DayIndex:   e.DayIndex,
		DaySplit:   e.DaySplit,
	}
}

// WorkoutEntry is one element of a user's workout log. Exercise completions
// fill ExerciseID and the set/rep fields; legacy day blocks fill Day,
// DaySplit, DayIndex and Exercises.
type WorkoutEntry struct {
	ID         int64          `json:"_id" db:"id"`
	MonthIndex *int           `json:"monthIndex,omitempty" db:"month_index"`
	WeekIndex  *int           `json:"weekIndex,omitempty" db:"week_index"`
	DayID      *string        `json:"dayId,omitempty" db:"day_id"`
	DayIndex   *int           `json:"dayIndex,omitempty" db:"day_index"`
	DaySplit   *int           `json:"daySplit,omitempty" db:"day_split"`
	Day        *string        `json:"day,omitempty" db:"day"`
	ExerciseID *string        `json:"exerciseId,omitempty" db:"exercise_id"`
	Sets       *int           `json:"sets,omitempty" db:"sets"`
	Reps       *int           `json:"reps,omitempty" db:"reps"`
	Weight     *float64       `json:"weight,omitempty" db:"weight"`
	Rest       *int           `json:"rest,omitempty" db:"rest"`
	Exercises  BlockExercises `json:"exercises,omitempty" db:"exercises"`
	CreatedAt  time.Time      `json:"createdAt" db:"created_at"`
}

type BlockExercise struct {
	Index      int         `json:"index"`
	ExerciseID string      `json:"exerciseId"`
	Status     string      `json:"status"`
	Sets       []SetRecord `json:"sets"`
}

type SetRecord struct {
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
	Rest   int     `json:"rest"`
}

// BlockExercises is stored as a JSON document; an empty list is stored as NULL.
type BlockExercises []BlockExercise

func (b BlockExercises) Value() (driver.Value, error) {
	if len(b) == 0 {
		return nil, nil
	}
	return documentValue([]BlockExercise(b))
}

func (b *BlockExercises) Scan(src any) error {
	return scanDocument(src, (*[]BlockExercise)(b))
}
