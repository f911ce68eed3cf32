package db

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitness/internal/models"
)

func intPtr(v int) *int { return &v }

func TestUserCreateAndFind(t *testing.T) {
	ctx := context.Background()
	users := openTestDB(t).Queries().Users

	weight := 64.0
	uid := int64(42)
	u := &models.User{
		UID:       &uid,
		Email:     "kim@example.com",
		Name:      "Kim",
		Detail:    models.Detail{Weight: &weight, Goal: "mobility"},
		Favorites: []string{"ex-1", "ex-2", "ex-1"},
	}
	require.NoError(t, users.Create(ctx, u))
	assert.True(t, IsValidID(u.ID))

	got, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "kim@example.com", got.Email)
	require.NotNil(t, got.UID)
	assert.Equal(t, int64(42), *got.UID)
	assert.Equal(t, "mobility", got.Detail.Goal)
	assert.Equal(t, []string{"ex-1", "ex-2"}, got.Favorites)
	assert.NotNil(t, got.DeviceTokens)
	assert.NotNil(t, got.DayHistory)

	err = users.Create(ctx, &models.User{Email: "kim@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = users.FindByID(ctx, NewID())
	assert.ErrorIs(t, err, ErrNotFound)

	exists, err := users.EmailExists(ctx, "kim@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestVerificationTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	users := openTestDB(t).Queries().Users

	u := &models.User{Email: "lee@example.com"}
	require.NoError(t, users.Create(ctx, u))

	expiry := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, users.SetVerificationToken(ctx, u.ID, "tok", expiry))

	got, err := users.FindByVerificationToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	require.NotNil(t, got.EmailVerificationTokenExpiry)
	assert.True(t, expiry.Equal(*got.EmailVerificationTokenExpiry))

	require.NoError(t, users.MarkEmailVerified(ctx, u.ID))
	_, err = users.FindByVerificationToken(ctx, "tok")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err = users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsEmailVerified)
	assert.Nil(t, got.EmailVerificationToken)
}

func TestPurgeVerificationTokens(t *testing.T) {
	ctx := context.Background()
	users := openTestDB(t).Queries().Users

	stale := &models.User{Email: "stale@example.com"}
	fresh := &models.User{Email: "fresh@example.com"}
	require.NoError(t, users.Create(ctx, stale))
	require.NoError(t, users.Create(ctx, fresh))
	now := time.Now().UTC()
	require.NoError(t, users.SetVerificationToken(ctx, stale.ID, "stale", now.Add(-10*24*time.Hour)))
	require.NoError(t, users.SetVerificationToken(ctx, fresh.ID, "fresh", now.Add(-time.Hour)))

	purged, err := users.PurgeVerificationTokens(ctx, now.Add(-DefaultTokenRetention))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = users.FindByVerificationToken(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = users.FindByVerificationToken(ctx, "fresh")
	assert.NoError(t, err)
}

func TestAppendDayEnforcesUniqueKey(t *testing.T) {
	ctx := context.Background()
	users := openTestDB(t).Queries().Users

	u := &models.User{Email: "max@example.com"}
	require.NoError(t, users.Create(ctx, u))

	entry := &models.DayEntry{MonthIndex: 1, WeekIndex: 2, DayIndex: 3, DaySplit: 0, State: "done"}
	require.NoError(t, users.AppendDay(ctx, u.ID, entry))
	assert.NotZero(t, entry.ID)

	dup := &models.DayEntry{MonthIndex: 1, WeekIndex: 2, DayIndex: 3, DaySplit: 0}
	assert.ErrorIs(t, users.AppendDay(ctx, u.ID, dup), ErrDuplicate)

	other := &models.DayEntry{MonthIndex: 1, WeekIndex: 2, DayIndex: 3, DaySplit: 1}
	require.NoError(t, users.AppendDay(ctx, u.ID, other))

	assert.ErrorIs(t, users.AppendDay(ctx, NewID(), &models.DayEntry{}), ErrNotFound)

	got, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got.DayHistory, 2)
	assert.True(t, got.HasDay(models.DayKey{MonthIndex: 1, WeekIndex: 2, DayIndex: 3, DaySplit: 1}))
}

func TestAppendWorkoutKeepsOrder(t *testing.T) {
	ctx := context.Background()
	users := openTestDB(t).Queries().Users

	u := &models.User{Email: "noa@example.com"}
	require.NoError(t, users.Create(ctx, u))

	for i := 1; i <= 3; i++ {
		require.NoError(t, users.AppendWorkout(ctx, u.ID, &models.WorkoutEntry{Sets: intPtr(i)}))
	}
	assert.ErrorIs(t, users.AppendWorkout(ctx, NewID(), &models.WorkoutEntry{}), ErrNotFound)

	got, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got.WorkoutsHistory, 3)
	for i, entry := range got.WorkoutsHistory {
		assert.Equal(t, i+1, *entry.Sets)
		assert.Nil(t, entry.Exercises)
	}
}

func TestDeleteCascadesCollections(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	users := database.Queries().Users

	u := &models.User{Email: "ola@example.com"}
	require.NoError(t, users.Create(ctx, u))
	require.NoError(t, users.UpdateProfile(ctx, u.ID, &models.Detail{}, "device"))
	require.NoError(t, users.AppendDay(ctx, u.ID, &models.DayEntry{}))

	require.NoError(t, users.Delete(ctx, u.ID))
	assert.ErrorIs(t, users.Delete(ctx, u.ID), ErrNotFound)

	var remaining int
	require.NoError(t, database.Get(&remaining, `SELECT
		(SELECT COUNT(*) FROM user_device_tokens) + (SELECT COUNT(*) FROM day_history)`))
	assert.Zero(t, remaining)
}

func TestSearchEscapesLikeWildcards(t *testing.T) {
	ctx := context.Background()
	users := openTestDB(t).Queries().Users

	require.NoError(t, users.Create(ctx, &models.User{Email: "a@example.com", Name: "100% effort"}))
	require.NoError(t, users.Create(ctx, &models.User{Email: "b@example.com", Name: "1000 effort"}))

	got, err := users.Search(ctx, models.UserSearch{Text: "100%", Sort: models.DefaultSort})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "100% effort", got[0].Name)
}

func TestSearchFoldsUnicodeCase(t *testing.T) {
	ctx := context.Background()
	users := openTestDB(t).Queries().Users

	require.NoError(t, users.Create(ctx, &models.User{Email: "zoe@example.com", Name: "Zoë Ångström"}))
	require.NoError(t, users.Create(ctx, &models.User{Email: "zoa@example.com", Name: "Zoa Angstrom"}))

	for _, text := range []string{"zoë", "ZOË", "ångström", "ÅNGSTRÖM"} {
		got, err := users.Search(ctx, models.UserSearch{Text: text, Sort: models.DefaultSort})
		require.NoError(t, err)
		require.Len(t, got, 1, text)
		assert.Equal(t, "Zoë Ångström", got[0].Name)
	}
}

func TestSearchBuildsPagedQuery(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	repo := NewUserRepository(&DB{sqlx.NewDb(mockDB, "sqlite3")})

	pattern := "%ann\\_%"
	fragments := []string{
		"SELECT id, uid, email",
		"FROM users WHERE (casefold(email) LIKE ? ESCAPE '\\' OR casefold(first_name) LIKE ? ESCAPE '\\'",
		"OR casefold(last_name) LIKE ? ESCAPE '\\' OR casefold(name) LIKE ? ESCAPE '\\')",
		"ORDER BY last_viewed_at DESC, id ASC LIMIT 5 OFFSET 5",
	}
	quoted := make([]string, len(fragments))
	for i, f := range fragments {
		quoted[i] = regexp.QuoteMeta(f)
	}

	mock.ExpectQuery(strings.Join(quoted, ".*")).
		WithArgs(pattern, pattern, pattern, pattern).
		WillReturnRows(sqlmock.NewRows(userColumns))

	got, err := repo.Search(context.Background(), models.UserSearch{
		Text:    " Ann_ ",
		Page:    2,
		PerPage: 5,
		Sort:    models.SortFor("LastViewed"),
	})
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchWithoutTextHasNoFilter(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	repo := NewUserRepository(&DB{sqlx.NewDb(mockDB, "sqlite3")})

	mock.ExpectQuery(`^SELECT .* FROM users ORDER BY name ASC, id ASC LIMIT 10 OFFSET 0$`).
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err = repo.Search(context.Background(), models.UserSearch{Page: 1, PerPage: 10, Sort: models.SortFor("bogus")})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
