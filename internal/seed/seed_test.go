package seed

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitness/internal/db"
)

const fixturesYAML = `
exercises:
  - id: 65f1a0000000000000000001
    title: Back squat
  - id: 65f1a0000000000000000002
    title: Deadlift
users:
  - email: Coach@Example.com
    name: Coach
    role: 1
    verified: true
plans:
  - user: coach@example.com
    startDate: 2026-03-01T00:00:00Z
    endDate: 2026-03-31T00:00:00Z
    weeks:
      - days:
          - name: Lower
            exercises:
              - exerciseId: 65f1a0000000000000000001
                sets: 5
                reps: "5"
              - exerciseId: 65f1a0000000000000000002
                sets: 1
                reps: "5"
`

func TestApply(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	q := database.Queries()

	fixtures, err := Parse([]byte(fixturesYAML))
	require.NoError(t, err)

	summary, err := Apply(ctx, q, fixtures)
	require.NoError(t, err)
	assert.Equal(t, Summary{Exercises: 2, UsersCreated: 1, Plans: 1}, summary)

	coach, err := q.Users.FindByEmail(ctx, "coach@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, coach.Role)
	assert.True(t, coach.IsEmailVerified)

	plan, err := q.Plans.FindActive(ctx, coach.ID, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []string{"65f1a0000000000000000001", "65f1a0000000000000000002"}, plan.ExerciseIDs())

	again, err := Parse([]byte(fixturesYAML))
	require.NoError(t, err)
	summary, err = Apply(ctx, q, again)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.UsersSkipped)
	assert.Equal(t, 0, summary.UsersCreated)
}

func TestParseRejectsInvalidFixtures(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "bad exercise id", yaml: "exercises:\n  - id: squat\n    title: Squat\n"},
		{name: "missing title", yaml: "exercises:\n  - id: 65f1a0000000000000000001\n"},
		{name: "missing user email", yaml: "users:\n  - name: Nobody\n"},
		{name: "plan without user", yaml: "plans:\n  - weeks: []\n"},
		{
			name: "inverted window",
			yaml: "plans:\n  - user: a@example.com\n    startDate: 2026-03-31T00:00:00Z\n    endDate: 2026-03-01T00:00:00Z\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
		})
	}
}
