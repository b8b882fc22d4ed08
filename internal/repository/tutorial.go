package repository

import (
	"context"

	"github.com/deppfellow/tutorial-service/internal/model"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when no tutorial matches the requested id.
var ErrNotFound = errors.New("tutorial not found")

// TutorialRepository is the data access contract for tutorials.
//
// Listing methods return tutorials ordered by id and never return a nil slice.
// Title matching is case-insensitive substring containment in every adapter.
type TutorialRepository interface {
	// Save inserts t when it has no id yet, otherwise overwrites the stored
	// record with the same id. It returns the persisted tutorial.
	Save(ctx context.Context, t *model.Tutorial) (*model.Tutorial, error)
	FindAll(ctx context.Context) ([]model.Tutorial, error)
	// FindByID returns ErrNotFound when the id is unknown.
	FindByID(ctx context.Context, id int64) (*model.Tutorial, error)
	FindByTitleContaining(ctx context.Context, title string) ([]model.Tutorial, error)
	FindByPublished(ctx context.Context, published bool) ([]model.Tutorial, error)
	// DeleteByID succeeds when the id is unknown.
	DeleteByID(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}
