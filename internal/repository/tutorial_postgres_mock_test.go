package repository

import (
	"context"
	"testing"

	"github.com/deppfellow/tutorial-service/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tutorialColumnNames = []string{"id", "title", "description", "published"}

func newMockedPostgresRepo(t *testing.T) (*PostgresTutorialRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})

	return NewPostgresTutorialRepository(mock), mock
}

func TestPostgresRepository_SaveInsertsAndReturnsRow(t *testing.T) {
	repo, mock := newMockedPostgresRepo(t)

	mock.ExpectQuery(insertTutorialSQL).
		WithArgs("Spring Boot", "rest", true).
		WillReturnRows(pgxmock.NewRows(tutorialColumnNames).AddRow(int64(7), "Spring Boot", "rest", true))

	input := model.NewTutorial("Spring Boot", "rest", true)
	saved, err := repo.Save(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, &model.Tutorial{ID: 7, Title: "Spring Boot", Description: "rest", Published: true}, saved)
	assert.Zero(t, input.ID)
}

func TestPostgresRepository_SaveUpdatesExisting(t *testing.T) {
	repo, mock := newMockedPostgresRepo(t)

	mock.ExpectQuery(updateTutorialSQL).
		WithArgs(int64(3), "new", "desc", false).
		WillReturnRows(pgxmock.NewRows(tutorialColumnNames).AddRow(int64(3), "new", "desc", false))

	saved, err := repo.Save(context.Background(), &model.Tutorial{ID: 3, Title: "new", Description: "desc"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), saved.ID)
	assert.Equal(t, "new", saved.Title)
}

func TestPostgresRepository_UpdateUnknownIsNotFound(t *testing.T) {
	repo, mock := newMockedPostgresRepo(t)

	mock.ExpectQuery(updateTutorialSQL).
		WithArgs(int64(404), "x", "", false).
		WillReturnRows(pgxmock.NewRows(tutorialColumnNames))

	_, err := repo.Save(context.Background(), &model.Tutorial{ID: 404, Title: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPostgresRepository_FindByID(t *testing.T) {
	repo, mock := newMockedPostgresRepo(t)
	ctx := context.Background()

	mock.ExpectQuery(selectTutorialByIDSQL).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(tutorialColumnNames).AddRow(int64(1), "Go", "intro", false))
	mock.ExpectQuery(selectTutorialByIDSQL).
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows(tutorialColumnNames))

	found, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Go", found.Title)

	_, err = repo.FindByID(ctx, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPostgresRepository_EmptyListsAreNotNil(t *testing.T) {
	repo, mock := newMockedPostgresRepo(t)
	ctx := context.Background()

	mock.ExpectQuery(selectAllTutorialsSQL).
		WillReturnRows(pgxmock.NewRows(tutorialColumnNames))
	mock.ExpectQuery(selectTutorialsByPublishedSQL).
		WithArgs(true).
		WillReturnRows(pgxmock.NewRows(tutorialColumnNames))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	published, err := repo.FindByPublished(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []model.Tutorial{}, published)
}

func TestPostgresRepository_FindByTitleContaining(t *testing.T) {
	repo, mock := newMockedPostgresRepo(t)

	mock.ExpectQuery(selectTutorialsByTitleSQL).
		WithArgs("100%").
		WillReturnRows(pgxmock.NewRows(tutorialColumnNames).
			AddRow(int64(2), "100% Go", "", true).
			AddRow(int64(5), "Not 100% Rust", "", false))

	found, err := repo.FindByTitleContaining(context.Background(), "100%")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, int64(2), found[0].ID)
	assert.Equal(t, int64(5), found[1].ID)
}

func TestPostgresRepository_Deletes(t *testing.T) {
	repo, mock := newMockedPostgresRepo(t)
	ctx := context.Background()

	mock.ExpectExec(deleteTutorialByIDSQL).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(deleteAllTutorialsSQL).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	require.NoError(t, repo.DeleteByID(ctx, 9))
	require.NoError(t, repo.DeleteAll(ctx))
}

func TestPostgresRepository_StoreFailureIsWrapped(t *testing.T) {
	repo, mock := newMockedPostgresRepo(t)
	ctx := context.Background()

	pgErr := &pgconn.PgError{Code: "57P01"}
	mock.ExpectQuery(selectAllTutorialsSQL).WillReturnError(pgErr)
	mock.ExpectExec(deleteAllTutorialsSQL).WillReturnError(pgErr)

	_, err := repo.FindAll(ctx)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "listing tutorials")

	var got *pgconn.PgError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, "57P01", got.Code)

	err = repo.DeleteAll(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deleting all tutorials")
}
