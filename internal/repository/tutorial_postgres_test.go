package repository

import (
	"context"
	"os"
	"testing"

	"github.com/deppfellow/tutorial-service/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDatabaseURLEnv points the Postgres adapter tests at a scratch database.
// The tests are skipped when it is unset.
const testDatabaseURLEnv = "TUTORIAL_TEST_DATABASE_URL"

const createTutorialsTableSQL = `
	CREATE TABLE IF NOT EXISTS tutorials (
		id          BIGSERIAL PRIMARY KEY,
		title       VARCHAR(255) NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		published   BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

func newPostgresRepo(t *testing.T) *PostgresTutorialRepository {
	t.Helper()

	url := os.Getenv(testDatabaseURLEnv)
	if url == "" {
		t.Skipf("%s not set", testDatabaseURLEnv)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, createTutorialsTableSQL)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `DELETE FROM tutorials`)
	require.NoError(t, err)

	return NewPostgresTutorialRepository(pool)
}

func TestPostgresRepository_Lifecycle(t *testing.T) {
	repo := newPostgresRepo(t)
	ctx := context.Background()

	first, err := repo.Save(ctx, model.NewTutorial("Spring Boot", "rest", false))
	require.NoError(t, err)
	second, err := repo.Save(ctx, model.NewTutorial("100% Go", "", true))
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	first.Overwrite("Spring Boot 3", "rest api", true)
	updated, err := repo.Save(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first.ID, updated.ID)
	assert.Equal(t, "Spring Boot 3", updated.Title)

	byTitle, err := repo.FindByTitleContaining(ctx, "BOOT")
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, first.ID, byTitle[0].ID)

	literal, err := repo.FindByTitleContaining(ctx, "%")
	require.NoError(t, err)
	require.Len(t, literal, 1)
	assert.Equal(t, second.ID, literal[0].ID)

	published, err := repo.FindByPublished(ctx, true)
	require.NoError(t, err)
	assert.Len(t, published, 2)

	require.NoError(t, repo.DeleteByID(ctx, first.ID))
	require.NoError(t, repo.DeleteByID(ctx, first.ID))

	_, err = repo.FindByID(ctx, first.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = repo.Save(ctx, first)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, repo.DeleteAll(ctx))
	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	third, err := repo.Save(ctx, model.NewTutorial("after wipe", "", false))
	require.NoError(t, err)
	assert.Greater(t, third.ID, second.ID)
}
