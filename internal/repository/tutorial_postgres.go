package repository

import (
	"context"

	"github.com/deppfellow/tutorial-service/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

// Querier is the subset of *pgxpool.Pool the Postgres adapter needs.
// A pgx.Tx satisfies it as well.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const tutorialColumns = `id, title, description, published`

const (
	insertTutorialSQL = `
		INSERT INTO tutorials (title, description, published)
		VALUES ($1, $2, $3)
		RETURNING ` + tutorialColumns

	updateTutorialSQL = `
		UPDATE tutorials
		SET title = $2, description = $3, published = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + tutorialColumns

	selectAllTutorialsSQL = `
		SELECT ` + tutorialColumns + `
		FROM tutorials
		ORDER BY id`

	selectTutorialByIDSQL = `
		SELECT ` + tutorialColumns + `
		FROM tutorials
		WHERE id = $1`

	// strpos avoids LIKE, so '%' and '_' in the filter match literally.
	selectTutorialsByTitleSQL = `
		SELECT ` + tutorialColumns + `
		FROM tutorials
		WHERE strpos(lower(title), lower($1)) > 0
		ORDER BY id`

	selectTutorialsByPublishedSQL = `
		SELECT ` + tutorialColumns + `
		FROM tutorials
		WHERE published = $1
		ORDER BY id`

	deleteTutorialByIDSQL = `DELETE FROM tutorials WHERE id = $1`

	// Plain DELETE keeps the id sequence, so deleted ids are never reissued.
	deleteAllTutorialsSQL = `DELETE FROM tutorials`
)

// PostgresTutorialRepository stores tutorials in the "tutorials" table.
type PostgresTutorialRepository struct {
	db Querier
}

// NewPostgresTutorialRepository returns a repository backed by db.
func NewPostgresTutorialRepository(db Querier) *PostgresTutorialRepository {
	return &PostgresTutorialRepository{db: db}
}

func (r *PostgresTutorialRepository) Save(ctx context.Context, t *model.Tutorial) (*model.Tutorial, error) {
	if t.IsNew() {
		saved, err := r.queryOne(ctx, insertTutorialSQL, t.Title, t.Description, t.Published)
		if err != nil {
			return nil, errors.Wrap(err, "inserting tutorial")
		}
		return saved, nil
	}

	saved, err := r.queryOne(ctx, updateTutorialSQL, t.ID, t.Title, t.Description, t.Published)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "updating tutorial %d", t.ID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "updating tutorial %d", t.ID)
	}
	return saved, nil
}

func (r *PostgresTutorialRepository) FindAll(ctx context.Context) ([]model.Tutorial, error) {
	tutorials, err := r.queryMany(ctx, selectAllTutorialsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "listing tutorials")
	}
	return tutorials, nil
}

func (r *PostgresTutorialRepository) FindByID(ctx context.Context, id int64) (*model.Tutorial, error) {
	tutorial, err := r.queryOne(ctx, selectTutorialByIDSQL, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "tutorial %d", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "finding tutorial %d", id)
	}
	return tutorial, nil
}

func (r *PostgresTutorialRepository) FindByTitleContaining(ctx context.Context, title string) ([]model.Tutorial, error) {
	tutorials, err := r.queryMany(ctx, selectTutorialsByTitleSQL, title)
	if err != nil {
		return nil, errors.Wrapf(err, "searching tutorials by title %q", title)
	}
	return tutorials, nil
}

func (r *PostgresTutorialRepository) FindByPublished(ctx context.Context, published bool) ([]model.Tutorial, error) {
	tutorials, err := r.queryMany(ctx, selectTutorialsByPublishedSQL, published)
	if err != nil {
		return nil, errors.Wrapf(err, "listing tutorials with published=%t", published)
	}
	return tutorials, nil
}

func (r *PostgresTutorialRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, deleteTutorialByIDSQL, id); err != nil {
		return errors.Wrapf(err, "deleting tutorial %d", id)
	}
	return nil
}

func (r *PostgresTutorialRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, deleteAllTutorialsSQL); err != nil {
		return errors.Wrap(err, "deleting all tutorials")
	}
	return nil
}

func (r *PostgresTutorialRepository) queryOne(ctx context.Context, sql string, args ...any) (*model.Tutorial, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	tutorial, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Tutorial])
	if err != nil {
		return nil, err
	}
	return &tutorial, nil
}

func (r *PostgresTutorialRepository) queryMany(ctx context.Context, sql string, args ...any) ([]model.Tutorial, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	tutorials, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Tutorial])
	if err != nil {
		return nil, err
	}
	if tutorials == nil {
		tutorials = []model.Tutorial{}
	}
	return tutorials, nil
}
