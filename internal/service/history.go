package service

import (
	"context"
	"errors"
	"strings"

	"fitness/internal/db"
	"fitness/internal/models"
)

type HistoryService struct {
	users UserStore
}

func NewHistoryService(users UserStore) *HistoryService {
	return &HistoryService{users: users}
}

type DayDoneInput struct {
	MonthIndex int
	WeekIndex  int
	DayIndex   int
	DaySplit   int
	State      string
	Streak     int
}

// DayDone records a completed day for principal. At most one entry exists
// per day key; the storage layer enforces it for concurrent submissions.
func (s *HistoryService) DayDone(ctx context.Context, principal *models.User, in DayDoneInput) (*models.DayEntry, error) {
	if principal == nil {
		return nil, newError(ErrUnauthenticated, "User not authenticated")
	}

	entry := &models.DayEntry{
		MonthIndex: in.MonthIndex,
		WeekIndex:  in.WeekIndex,
		DayIndex:   in.DayIndex,
		DaySplit:   in.DaySplit,
		State:      strings.TrimSpace(in.State),
		Streak:     in.Streak,
	}
	if principal.HasDay(entry.Key()) {
		return nil, newError(ErrDuplicateEntry, "Entry already exists")
	}

	if err := s.users.AppendDay(ctx, principal.ID, entry); err != nil {
		switch {
		case errors.Is(err, db.ErrDuplicate):
			return nil, wrapError(ErrDuplicateEntry, "Entry already exists", err)
		case errors.Is(err, db.ErrNotFound):
			return nil, wrapError(ErrUnauthenticated, "User not authenticated", err)
		}
		return nil, err
	}
	principal.DayHistory = append(principal.DayHistory, *entry)
	return entry, nil
}

type ExerciseDoneInput struct {
	MonthIndex int
	WeekIndex  int
	DayID      string
	ExerciseID string
	Sets       int
	Reps       int
	Weight     float64
	Rest       int
}

// ExerciseDone appends an exercise completion to principal's workout log.
// Repeated completions are all kept.
func (s *HistoryService) ExerciseDone(ctx context.Context, principal *models.User, in ExerciseDoneInput) (*models.WorkoutEntry, error) {
	if principal == nil {
		return nil, newError(ErrUnauthenticated, "User not authenticated")
	}
	if !db.IsValidID(in.DayID) {
		return nil, newError(ErrValidation, "dayId must be a valid identifier")
	}
	if !db.IsValidID(in.ExerciseID) {
		return nil, newError(ErrValidation, "exerciseId must be a valid identifier")
	}

	entry := &models.WorkoutEntry{
		MonthIndex: &in.MonthIndex,
		WeekIndex:  &in.WeekIndex,
		DayID:      &in.DayID,
		ExerciseID: &in.ExerciseID,
		Sets:       &in.Sets,
		Reps:       &in.Reps,
		Weight:     &in.Weight,
		Rest:       &in.Rest,
	}
	if err := s.users.AppendWorkout(ctx, principal.ID, entry); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, wrapError(ErrUnauthenticated, "User not authenticated", err)
		}
		return nil, err
	}
	principal.WorkoutsHistory = append(principal.WorkoutsHistory, *entry)
	return entry, nil
}

type WorkoutBlockInput struct {
	UserID     string
	MonthIndex int
	WeekIndex  int
	DayIndex   int
	DaySplit   int
	Day        string
	Exercises  []models.BlockExercise
}

// AppendWorkoutBlock stores a whole day of exercise results for the user
// named in the input. The caller is not authenticated.
func (s *HistoryService) AppendWorkoutBlock(ctx context.Context, in WorkoutBlockInput) (*models.WorkoutEntry, error) {
	if !db.IsValidID(in.UserID) {
		return nil, newError(ErrValidation, "userId must be a valid identifier")
	}

	entry := &models.WorkoutEntry{
		MonthIndex: &in.MonthIndex,
		WeekIndex:  &in.WeekIndex,
		DayIndex:   &in.DayIndex,
		DaySplit:   &in.DaySplit,
		Day:        &in.Day,
		Exercises:  models.BlockExercises(in.Exercises),
	}
	if err := s.users.AppendWorkout(ctx, in.UserID, entry); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, newError(ErrNotFound, "User not found")
		}
		return nil, err
	}
	return entry, nil
}
