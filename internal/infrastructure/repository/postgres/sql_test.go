package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyPQErrors(t *testing.T) {
	unique := &pq.Error{Code: "23505"}
	fk := &pq.Error{Code: "23503"}
	badUUID := &pq.Error{Code: "22P02"}

	assert.True(t, isUniqueViolation(unique))
	assert.True(t, isUniqueViolation(errors.Join(errors.New("insert club"), unique)))
	assert.False(t, isUniqueViolation(fk))
	assert.True(t, isForeignKeyViolation(fk))
	assert.True(t, isNotFound(sql.ErrNoRows))
	assert.True(t, isNotFound(badUUID))
	assert.False(t, isNotFound(fakeErr("pq: relation clubs does not exist")))
}

func TestOptionalString(t *testing.T) {
	assert.Nil(t, optionalString("   "))
	got := optionalString(" red ")
	require.NotNil(t, got)
	assert.Equal(t, "red", *got)
}

// execRecorder stubs the statements issued around an insert-or-get.
type execRecorder struct {
	sqlx.ExtContext
	statements []string
}

func (e *execRecorder) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	e.statements = append(e.statements, query)
	return nil, nil
}

func (e *execRecorder) GetContext(context.Context, any, string, ...any) error    { return nil }
func (e *execRecorder) SelectContext(context.Context, any, string, ...any) error { return nil }

func TestInsertOrGet(t *testing.T) {
	ctx := context.Background()

	t.Run("existing row skips insert", func(t *testing.T) {
		db := &execRecorder{}
		got, created, err := insertOrGet(ctx, db, true,
			func(context.Context) (string, bool, error) { return "stored", true, nil },
			func(context.Context) (string, error) { t.Fatal("insert must not run"); return "", nil },
			nil,
		)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "stored", got)
		assert.Empty(t, db.statements)
	})

	t.Run("miss inserts under savepoint", func(t *testing.T) {
		db := &execRecorder{}
		got, created, err := insertOrGet(ctx, db, true,
			func(context.Context) (string, bool, error) { return "", false, nil },
			func(context.Context) (string, error) { return "new", nil },
			nil,
		)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "new", got)
		assert.Equal(t, []string{"SAVEPOINT insert_or_get", "RELEASE SAVEPOINT insert_or_get"}, db.statements)
	})

	t.Run("unique violation rolls back and re-reads", func(t *testing.T) {
		db := &execRecorder{}
		lookups := 0
		conflicts := 0
		got, created, err := insertOrGet(ctx, db, true,
			func(context.Context) (string, bool, error) {
				lookups++
				return "winner", lookups > 1, nil
			},
			func(context.Context) (string, error) { return "", &pq.Error{Code: "23505"} },
			func() { conflicts++ },
		)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "winner", got)
		assert.Equal(t, 1, conflicts)
		assert.Equal(t, []string{"SAVEPOINT insert_or_get", "ROLLBACK TO SAVEPOINT insert_or_get"}, db.statements)
	})

	t.Run("outside a transaction no savepoint is used", func(t *testing.T) {
		db := &execRecorder{}
		lookups := 0
		_, created, err := insertOrGet(ctx, db, false,
			func(context.Context) (string, bool, error) {
				lookups++
				return "winner", lookups > 1, nil
			},
			func(context.Context) (string, error) { return "", &pq.Error{Code: "23505"} },
			nil,
		)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Empty(t, db.statements)
	})

	t.Run("other insert errors surface", func(t *testing.T) {
		db := &execRecorder{}
		_, _, err := insertOrGet(ctx, db, true,
			func(context.Context) (string, bool, error) { return "", false, nil },
			func(context.Context) (string, error) { return "", fakeErr("connection reset") },
			nil,
		)
		require.EqualError(t, err, "connection reset")
	})
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }
