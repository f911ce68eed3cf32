package api

import (
	"net/http"

	"fitness/internal/models"
	"fitness/internal/service"
)

type HistoryHandler struct {
	history *service.HistoryService
}

func NewHistoryHandler(history *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

type dayDoneRequest struct {
	MonthIndex *flexInt `json:"monthIndex" validate:"required"`
	WeekIndex  *flexInt `json:"weekIndex" validate:"required"`
	DayIndex   *flexInt `json:"dayIndex" validate:"required"`
	DaySplit   *flexInt `json:"daySplit" validate:"required"`
	State      string   `json:"state" validate:"max=64"`
	Streak     *flexInt `json:"streak"`
}

// POST /day_done
func (h *HistoryHandler) DayDone(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFrom(r)
	if principal == nil {
		unauthorized(w, "User not authenticated")
		return
	}

	var req dayDoneRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	_, err := h.history.DayDone(r.Context(), principal, service.DayDoneInput{
		MonthIndex: req.MonthIndex.value(),
		WeekIndex:  req.WeekIndex.value(),
		DayIndex:   req.DayIndex.value(),
		DaySplit:   req.DaySplit.value(),
		State:      req.State,
		Streak:     req.Streak.value(),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Result: true})
}

type exerciseDoneRequest struct {
	MonthIndex *flexInt   `json:"monthIndex" validate:"required"`
	WeekIndex  *flexInt   `json:"weekIndex" validate:"required"`
	DayID      string     `json:"dayId" validate:"required"`
	ExerciseID string     `json:"exerciseId" validate:"required"`
	Sets       *flexInt   `json:"sets"`
	Reps       *flexInt   `json:"reps"`
	Weight     *flexFloat `json:"weight"`
	Rest       *flexInt   `json:"rest"`
}

// POST /exercise_done
func (h *HistoryHandler) ExerciseDone(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFrom(r)
	if principal == nil {
		unauthorized(w, "User not authenticated")
		return
	}

	var req exerciseDoneRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	_, err := h.history.ExerciseDone(r.Context(), principal, service.ExerciseDoneInput{
		MonthIndex: req.MonthIndex.value(),
		WeekIndex:  req.WeekIndex.value(),
		DayID:      req.DayID,
		ExerciseID: req.ExerciseID,
		Sets:       req.Sets.value(),
		Reps:       req.Reps.value(),
		Weight:     req.Weight.value(),
		Rest:       req.Rest.value(),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Result: true})
}

type setRecordRequest struct {
	Reps   *flexInt   `json:"reps"`
	Weight *flexFloat `json:"weight"`
	Rest   *flexInt   `json:"rest"`
}

type blockExerciseRequest struct {
	Index      *flexInt           `json:"index"`
	ExerciseID string             `json:"exerciseId"`
	Status     string             `json:"status"`
	Sets       []setRecordRequest `json:"sets" validate:"dive"`
}

type workoutBlockRequest struct {
	UserID     string                 `json:"userId" validate:"required"`
	MonthIndex *flexInt               `json:"monthIndex"`
	WeekIndex  *flexInt               `json:"weekIndex"`
	DayIndex   *flexInt               `json:"dayIndex"`
	DaySplit   *flexInt               `json:"daySplit"`
	Day        string                 `json:"day"`
	Exercises  []blockExerciseRequest `json:"exercises" validate:"dive"`
}

// POST /workouts_history
func (h *HistoryHandler) AppendWorkoutBlock(w http.ResponseWriter, r *http.Request) {
	var req workoutBlockRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	exercises := make([]models.BlockExercise, 0, len(req.Exercises))
	for _, e := range req.Exercises {
		sets := make([]models.SetRecord, 0, len(e.Sets))
		for _, s := range e.Sets {
			sets = append(sets, models.SetRecord{
				Reps:   s.Reps.value(),
				Weight: s.Weight.value(),
				Rest:   s.Rest.value(),
			})
		}
		exercises = append(exercises, models.BlockExercise{
			Index:      e.Index.value(),
			ExerciseID: e.ExerciseID,
			Status:     e.Status,
			Sets:       sets,
		})
	}

	_, err := h.history.AppendWorkoutBlock(r.Context(), service.WorkoutBlockInput{
		UserID:     req.UserID,
		MonthIndex: req.MonthIndex.value(),
		WeekIndex:  req.WeekIndex.value(),
		DayIndex:   req.DayIndex.value(),
		DaySplit:   req.DaySplit.value(),
		Day:        req.Day,
		Exercises:  exercises,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Result: true})
}
