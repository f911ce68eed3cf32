package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"fitness/internal/models"
	"fitness/internal/service"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// profileResponse is the admin view of a user. Workout holds the enriched
// active plan or false.
type profileResponse struct {
	ID              string                `json:"_id"`
	Email           string                `json:"email"`
	UID             *int64                `json:"uid"`
	Role            int                   `json:"role"`
	Name            string                `json:"name"`
	FirstName       string                `json:"firstName"`
	LastName        string                `json:"lastName"`
	Experience      string                `json:"experience"`
	Level           int                   `json:"level"`
	Note            string                `json:"note"`
	Detail          models.Detail         `json:"detail"`
	Favorites       []string              `json:"favorites"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
	WorkoutsHistory []models.WorkoutEntry `json:"workoutsHistory"`
	DayHistory      []models.DayEntry     `json:"dayHistory"`
	Workout         any                   `json:"workout"`
}

func newProfileResponse(p *service.Profile) profileResponse {
	u := p.User
	var workout any = false
	if p.Plan != nil {
		workout = p.Plan
	}
	return profileResponse{
		ID:              u.ID,
		Email:           u.Email,
		UID:             u.UID,
		Role:            u.Role,
		Name:            u.Name,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Experience:      u.Experience,
		Level:           u.Level,
		Note:            u.Note,
		Detail:          u.Detail,
		Favorites:       u.Favorites,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
		WorkoutsHistory: u.WorkoutsHistory,
		DayHistory:      u.DayHistory,
		Workout:         workout,
	}
}

// GET /admin/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	profile, err := h.users.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileResponse(profile))
}

type listUsersResponse struct {
	Users []*models.User `json:"users"`
}

// GET /admin?search=&page=&perPage=&sortBy=
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := optionalInt(query.Get("page"))
	if err != nil {
		badRequest(w, "page must be a number")
		return
	}
	perPage, err := optionalInt(query.Get("perPage"))
	if err != nil {
		badRequest(w, "perPage must be a number")
		return
	}

	users, err := h.users.ListUsers(r.Context(), service.ListUsersInput{
		Search:  query.Get("search"),
		Page:    page,
		PerPage: perPage,
		SortBy:  query.Get("sortBy"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listUsersResponse{Users: users})
}

type updateUserRequest struct {
	Detail      *models.Detail `json:"detail"`
	DeviceToken string         `json:"deviceToken" validate:"max=512"`
}

type updateUserResponse struct {
	Result *models.User `json:"result"`
}

// PUT /admin/{id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	h.updateUser(w, r)
}

// UpdateUserUnauthenticated serves PUT /{id}. It performs the same update as
// UpdateUser without any credential or ownership check.
func (h *UserHandler) UpdateUserUnauthenticated(w http.ResponseWriter, r *http.Request) {
	slog.Warn("unauthenticated profile update",
		"user_id", chi.URLParam(r, "id"),
		"request_id", requestIDFrom(r),
	)
	h.updateUser(w, r)
}

func (h *UserHandler) updateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), chi.URLParam(r, "id"), service.UpdateProfileInput{
		Detail:      req.Detail,
		DeviceToken: req.DeviceToken,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updateUserResponse{Result: user})
}

// DELETE /admin/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Result: true})
}

// GET /get_user
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := PrincipalFrom(r)
	if user == nil {
		unauthorized(w, "User not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func optionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
