package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"fitness/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate entry")
)

var userColumns = []string{
	"id", "uid", "email", "name", "first_name", "last_name", "role", "detail",
	"experience", "level", "note", "popularity", "last_viewed_at", "is_email_verified",
	"email_verification_token", "email_verification_token_expiry", "created_at", "updated_at",
}

var selectUser = "SELECT " + strings.Join(userColumns, ", ") + " FROM users"

// sortColumns maps the logical sort fields of models.SortOrder to columns.
var sortColumns = map[string]string{
	"popularity": "popularity",
	"name":       "name",
	"createdAt":  "created_at",
	"lastview":   "last_viewed_at",
}

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts u. A missing ID is generated and zero timestamps are set to now.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting user insert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx,
		`INSERT INTO users (`+strings.Join(userColumns, ", ")+`)
		 VALUES (:`+strings.Join(userColumns, ", :")+`)`,
		u,
	)
	if err != nil {
		if IsUniqueConstraintError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("creating user: %w", err)
	}

	for _, exerciseID := range u.Favorites {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO user_favorites (user_id, exercise_id, created_at) VALUES (?, ?, ?)`,
			u.ID, exerciseID, now,
		); err != nil {
			return fmt.Errorf("adding favorite: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing user insert: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, selectUser+` WHERE id = ?`, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, selectUser+` WHERE email = ?`, email)
}

func (r *UserRepository) FindByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	return r.findOne(ctx, selectUser+` WHERE email_verification_token = ?`, token)
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE email = ?`, email); err != nil {
		return false, fmt.Errorf("checking email: %w", err)
	}
	return count > 0, nil
}

// RoleByEmail loads only the role of the account registered under email.
func (r *UserRepository) RoleByEmail(ctx context.Context, email string) (int, error) {
	var role int
	err := r.db.GetContext(ctx, &role, `SELECT role FROM users WHERE email = ?`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("querying role: %w", err)
	}
	return role, nil
}

func (r *UserRepository) SetVerificationToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET email_verification_token = ?, email_verification_token_expiry = ?, updated_at = ? WHERE id = ?`,
		token, expiresAt.UTC(), time.Now().UTC(), id,
	)
	if err != nil {
		if IsUniqueConstraintError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("setting verification token: %w", err)
	}
	return checkRowsAffected(result)
}

// MarkEmailVerified flips the verified flag and clears the token pair.
func (r *UserRepository) MarkEmailVerified(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users
		    SET is_email_verified = 1,
		        email_verification_token = NULL,
		        email_verification_token_expiry = NULL,
		        updated_at = ?
		  WHERE id = ?`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("marking email verified: %w", err)
	}
	return checkRowsAffected(result)
}

// UpdateProfile replaces the profile detail when detail is not nil and, when
// deviceToken is not empty, adds it to the user's device tokens.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, detail *models.Detail, deviceToken string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting profile update: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var result sql.Result
	if detail != nil {
		result, err = tx.ExecContext(ctx, `UPDATE users SET detail = ?, updated_at = ? WHERE id = ?`, *detail, now, id)
	} else {
		result, err = tx.ExecContext(ctx, `UPDATE users SET updated_at = ? WHERE id = ?`, now, id)
	}
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	if err := checkRowsAffected(result); err != nil {
		return err
	}

	if deviceToken != "" {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO user_device_tokens (user_id, token, created_at) VALUES (?, ?, ?)`,
			id, deviceToken, now,
		); err != nil {
			return fmt.Errorf("adding device token: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing profile update: %w", err)
	}
	return nil
}

func (r *UserRepository) MarkViewed(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET last_viewed_at = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("marking user viewed: %w", err)
	}
	return checkRowsAffected(result)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return checkRowsAffected(result)
}

// Search returns one page of users matching s.Text against email and name
// fields, ordered by s.Sort. No total count is computed.
func (r *UserRepository) Search(ctx context.Context, s models.UserSearch) ([]*models.User, error) {
	query := sq.Select(userColumns...).From("users")

	if text := strings.TrimSpace(s.Text); text != "" {
		pattern := containsPattern(text)
		query = query.Where(sq.Or{
			sq.Expr(`casefold(email) LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`casefold(first_name) LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`casefold(last_name) LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`casefold(name) LIKE ? ESCAPE '\'`, pattern),
		})
	}

	column, ok := sortColumns[s.Sort.Field]
	if !ok {
		column = sortColumns[models.DefaultSort.Field]
	}
	direction := "ASC"
	if s.Sort.Descending {
		direction = "DESC"
	}
	query = query.OrderBy(column+" "+direction, "id ASC")

	if s.PerPage > 0 {
		query = query.Limit(uint64(s.PerPage)).Offset(uint64(s.Offset()))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building user search: %w", err)
	}

	var users []*models.User
	if err := r.db.SelectContext(ctx, &users, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}

	if err := r.loadCollections(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

// AppendWorkout adds entry to the end of the user's workout log.
func (r *UserRepository) AppendWorkout(ctx context.Context, userID string, entry *models.WorkoutEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO workout_history
		    (user_id, month_index, week_index, day_id, day_index, day_split, day,
		     exercise_id, sets, reps, weight, rest, exercises, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, entry.MonthIndex, entry.WeekIndex, entry.DayID, entry.DayIndex, entry.DaySplit, entry.Day,
		entry.ExerciseID, entry.Sets, entry.Reps, entry.Weight, entry.Rest, entry.Exercises, entry.CreatedAt,
	)
	if err != nil {
		if IsForeignKeyError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("appending workout history: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

// AppendDay adds entry to the user's day log. A second entry with the same
// day key fails with ErrDuplicate.
func (r *UserRepository) AppendDay(ctx context.Context, userID string, entry *models.DayEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO day_history
		    (user_id, month_index, week_index, day_index, day_split, state, streak, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, entry.MonthIndex, entry.WeekIndex, entry.DayIndex, entry.DaySplit,
		entry.State, entry.Streak, entry.CreatedAt,
	)
	if err != nil {
		if IsUniqueConstraintError(err) {
			return ErrDuplicate
		}
		if IsForeignKeyError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("appending day history: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

// PurgeVerificationTokens clears pending verification tokens that expired
// before cutoff.
func (r *UserRepository) PurgeVerificationTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users
		    SET email_verification_token = NULL, email_verification_token_expiry = NULL
		  WHERE is_email_verified = 0
		    AND email_verification_token_expiry IS NOT NULL
		    AND email_verification_token_expiry < ?`,
		cutoff.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("purging verification tokens: %w", err)
	}
	return result.RowsAffected()
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	if err := r.loadCollections(ctx, []*models.User{&u}); err != nil {
		return nil, err
	}
	return &u, nil
}

// loadCollections fills favorites, device tokens and both history logs for
// users with one query per collection.
func (r *UserRepository) loadCollections(ctx context.Context, users []*models.User) error {
	if len(users) == 0 {
		return nil
	}

	byID := make(map[string]*models.User, len(users))
	ids := make([]string, 0, len(users))
	for _, u := range users {
		byID[u.ID] = u
		ids = append(ids, u.ID)
	}

	var favorites []struct {
		UserID     string `db:"user_id"`
		ExerciseID string `db:"exercise_id"`
	}
	if err := r.db.selectIn(ctx, &favorites,
		`SELECT user_id, exercise_id FROM user_favorites WHERE user_id IN (?) ORDER BY created_at, exercise_id`, ids,
	); err != nil {
		return fmt.Errorf("loading favorites: %w", err)
	}
	for _, f := range favorites {
		byID[f.UserID].Favorites = append(byID[f.UserID].Favorites, f.ExerciseID)
	}

	var tokens []struct {
		UserID string `db:"user_id"`
		Token  string `db:"token"`
	}
	if err := r.db.selectIn(ctx, &tokens,
		`SELECT user_id, token FROM user_device_tokens WHERE user_id IN (?) ORDER BY created_at, token`, ids,
	); err != nil {
		return fmt.Errorf("loading device tokens: %w", err)
	}
	for _, t := range tokens {
		byID[t.UserID].DeviceTokens = append(byID[t.UserID].DeviceTokens, t.Token)
	}

	var workouts []struct {
		UserID string `db:"user_id"`
		models.WorkoutEntry
	}
	if err := r.db.selectIn(ctx, &workouts,
		`SELECT user_id, id, month_index, week_index, day_id, day_index, day_split, day,
		        exercise_id, sets, reps, weight, rest, exercises, created_at
		   FROM workout_history WHERE user_id IN (?) ORDER BY id`, ids,
	); err != nil {
		return fmt.Errorf("loading workout history: %w", err)
	}
	for _, w := range workouts {
		byID[w.UserID].WorkoutsHistory = append(byID[w.UserID].WorkoutsHistory, w.WorkoutEntry)
	}

	var days []struct {
		UserID string `db:"user_id"`
		models.DayEntry
	}
	if err := r.db.selectIn(ctx, &days,
		`SELECT user_id, id, month_index, week_index, day_index, day_split, state, streak, created_at
		   FROM day_history WHERE user_id IN (?) ORDER BY id`, ids,
	); err != nil {
		return fmt.Errorf("loading day history: %w", err)
	}
	for _, d := range days {
		byID[d.UserID].DayHistory = append(byID[d.UserID].DayHistory, d.DayEntry)
	}

	for _, u := range users {
		u.EnsureCollections()
	}
	return nil
}

