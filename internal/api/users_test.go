package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"fitness/internal/db"
	"fitness/internal/models"
)

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)
	user := srv.createUser(t, &models.User{Email: "owner@example.com"})

	tests := []struct {
		method string
		target string
		token  string
	}{
		{method: http.MethodGet, target: "/get_user"},
		{method: http.MethodGet, target: "/admin"},
		{method: http.MethodGet, target: "/admin/" + user.ID},
		{method: http.MethodDelete, target: "/admin/" + user.ID},
		{method: http.MethodPost, target: "/day_done"},
		{method: http.MethodGet, target: "/get_user", token: "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rr, body := srv.do(t, tt.method, tt.target, "", tt.token)
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
			}
			if body["code"] != ErrCodeUnauthorized {
				t.Fatalf("code = %v, want %q", body["code"], ErrCodeUnauthorized)
			}
		})
	}
}

func TestTokenForDeletedUserIsRejected(t *testing.T) {
	srv := newTestServer(t)
	user := srv.createUser(t, &models.User{Email: "gone@example.com"})
	token := srv.tokenFor(t, user)

	if err := srv.queries.Users.Delete(context.Background(), user.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	rr, _ := srv.do(t, http.MethodGet, "/get_user", "", token)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestGetMe(t *testing.T) {
	srv := newTestServer(t)
	user := srv.createUser(t, &models.User{Email: "me@example.com", Name: "Me"})

	rr, body := srv.do(t, http.MethodGet, "/get_user", "", srv.tokenFor(t, user))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body=%q", rr.Code, http.StatusOK, rr.Body.String())
	}
	if body["_id"] != user.ID {
		t.Fatalf("_id = %v, want %q", body["_id"], user.ID)
	}
	if _, leaked := body["emailVerificationToken"]; leaked {
		t.Fatal("verification token must not be serialized")
	}
	if history, ok := body["dayHistory"].([]any); !ok || len(history) != 0 {
		t.Fatalf("dayHistory = %v, want []", body["dayHistory"])
	}
}

func TestGetUserProfile(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.createUser(t, &models.User{Email: "admin@example.com", Role: 1})
	member := srv.createUser(t, &models.User{Email: "member@example.com", FirstName: "Mia"})
	token := srv.tokenFor(t, admin)

	rr, body := srv.do(t, http.MethodGet, "/admin/"+member.ID, "", token)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body=%q", rr.Code, http.StatusOK, rr.Body.String())
	}
	if body["workout"] != false {
		t.Fatalf("workout = %v, want false", body["workout"])
	}
	if body["firstName"] != "Mia" {
		t.Fatalf("firstName = %v, want %q", body["firstName"], "Mia")
	}

	ctx := context.Background()
	bench := &models.Exercise{Title: "Bench press"}
	if err := srv.queries.Exercises.Upsert(ctx, bench); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := srv.queries.Plans.Create(ctx, &models.MonthlyPlan{
		UserID: member.ID,
		Weeks: models.Weeks{{Days: []models.Day{{Exercises: []models.PlanExercise{
			{ExerciseID: bench.ID},
			{ExerciseID: db.NewID()},
		}}}}},
	}); err != nil {
		t.Fatalf("Plans.Create() error = %v", err)
	}

	_, body = srv.do(t, http.MethodGet, "/admin/"+member.ID, "", token)
	workout, ok := body["workout"].(map[string]any)
	if !ok {
		t.Fatalf("workout = %v, want object", body["workout"])
	}
	exercises := workout["weeks"].([]any)[0].(map[string]any)["days"].([]any)[0].(map[string]any)["exercises"].([]any)
	if got := exercises[0].(map[string]any)["name"]; got != "Bench press" {
		t.Fatalf("exercises[0].name = %v, want %q", got, "Bench press")
	}
	if got := exercises[1].(map[string]any)["name"]; got != "" {
		t.Fatalf("exercises[1].name = %v, want empty", got)
	}

	rr, body = srv.do(t, http.MethodGet, "/admin/"+db.NewID(), "", token)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing user status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestListUsers(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.createUser(t, &models.User{Email: "admin@example.com", Name: "zz admin", Role: 1})
	for i := 0; i < 4; i++ {
		srv.createUser(t, &models.User{Email: fmt.Sprintf("u%d@example.com", i), Name: fmt.Sprintf("user %d", i)})
	}
	token := srv.tokenFor(t, admin)

	tests := []struct {
		name   string
		query  string
		status int
		want   []string
	}{
		{name: "page two", query: "?page=2&perPage=2", status: http.StatusOK, want: []string{"user 2", "user 3"}},
		{name: "descending", query: "?sortBy=NameZtoA&perPage=2", status: http.StatusOK, want: []string{"zz admin", "user 3"}},
		{name: "search", query: "?search=U1%40", status: http.StatusOK, want: []string{"user 1"}},
		{name: "bad page", query: "?page=two", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, body := srv.do(t, http.MethodGet, "/admin"+tt.query, "", token)
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d, body=%q", rr.Code, tt.status, rr.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}
			users := body["users"].([]any)
			if len(users) != len(tt.want) {
				t.Fatalf("got %d users, want %d", len(users), len(tt.want))
			}
			for i, want := range tt.want {
				if got := users[i].(map[string]any)["name"]; got != want {
					t.Fatalf("users[%d].name = %v, want %q", i, got, want)
				}
			}
		})
	}
}

func TestUpdateAndDeleteUser(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.createUser(t, &models.User{Email: "admin@example.com", Role: 1})
	member := srv.createUser(t, &models.User{Email: "member@example.com"})
	token := srv.tokenFor(t, admin)

	rr, body := srv.do(t, http.MethodPut, "/admin/"+member.ID,
		`{"detail":{"weight":80,"mygoal":"<i>run</i> a marathon"},"deviceToken":"tok-1"}`, token)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body=%q", rr.Code, http.StatusOK, rr.Body.String())
	}
	result := body["result"].(map[string]any)
	detail := result["detail"].(map[string]any)
	if detail["mygoal"] != "run a marathon" {
		t.Fatalf("mygoal = %v, want %q", detail["mygoal"], "run a marathon")
	}
	if tokens := result["deviceTokens"].([]any); len(tokens) != 1 || tokens[0] != "tok-1" {
		t.Fatalf("deviceTokens = %v, want [tok-1]", tokens)
	}

	rr, _ = srv.do(t, http.MethodPut, "/"+member.ID, `{"detail":{"location":"Bergen"}}`, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("unauthenticated update status = %d, want %d", rr.Code, http.StatusOK)
	}
	stored, err := srv.queries.Users.FindByID(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if stored.Detail.Location != "Bergen" {
		t.Fatalf("location = %q, want %q", stored.Detail.Location, "Bergen")
	}

	rr, body = srv.do(t, http.MethodDelete, "/admin/"+member.ID, "", token)
	if rr.Code != http.StatusOK || body["result"] != true {
		t.Fatalf("delete: status = %d, body=%q", rr.Code, rr.Body.String())
	}

	rr, _ = srv.do(t, http.MethodDelete, "/admin/"+member.ID, "", token)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestUpdateUserWithOnlyDeviceToken(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.createUser(t, &models.User{Email: "admin@example.com", Role: 1})
	weight := 70.0
	member := srv.createUser(t, &models.User{
		Email:  "member@example.com",
		Detail: models.Detail{Location: "Oslo", Weight: &weight},
	})

	rr, body := srv.do(t, http.MethodPut, "/admin/"+member.ID, `{"deviceToken":"tok"}`, srv.tokenFor(t, admin))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body=%q", rr.Code, http.StatusOK, rr.Body.String())
	}

	result := body["result"].(map[string]any)
	detail := result["detail"].(map[string]any)
	if detail["location"] != "Oslo" {
		t.Fatalf("location = %v, want %q", detail["location"], "Oslo")
	}
	if detail["weight"] != 70.0 {
		t.Fatalf("weight = %v, want %v", detail["weight"], 70.0)
	}
	if tokens := result["deviceTokens"].([]any); len(tokens) != 1 || tokens[0] != "tok" {
		t.Fatalf("deviceTokens = %v, want [tok]", tokens)
	}
}
