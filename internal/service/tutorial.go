package service

import (
	"context"

	"github.com/deppfellow/tutorial-service/internal/middleware"
	"github.com/deppfellow/tutorial-service/internal/model"
	"github.com/deppfellow/tutorial-service/internal/repository"
	"github.com/deppfellow/tutorial-service/internal/server"
	"github.com/pkg/errors"
)

// TutorialService implements the tutorial use cases on top of a
// TutorialRepository. Errors from the repository are returned wrapped;
// repository.ErrNotFound stays detectable with errors.Is.
type TutorialService struct {
	server *server.Server
	repo   repository.TutorialRepository
}

func NewTutorialService(s *server.Server, repo repository.TutorialRepository) *TutorialService {
	return &TutorialService{
		server: s,
		repo:   repo,
	}
}

// Create stores a new tutorial and returns it with its assigned id.
func (s *TutorialService) Create(ctx context.Context, title, description string, published bool) (*model.Tutorial, error) {
	tutorial, err := s.repo.Save(ctx, model.NewTutorial(title, description, published))
	if err != nil {
		return nil, errors.Wrap(err, "create tutorial")
	}

	middleware.LoggerFromContext(ctx).Info().Int64("tutorial_id", tutorial.ID).Msg("tutorial created")
	return tutorial, nil
}

// List returns every tutorial, or only those whose title contains title
// when it is non-empty.
func (s *TutorialService) List(ctx context.Context, title string) ([]model.Tutorial, error) {
	var (
		tutorials []model.Tutorial
		err       error
	)

	if title == "" {
		tutorials, err = s.repo.FindAll(ctx)
	} else {
		tutorials, err = s.repo.FindByTitleContaining(ctx, title)
	}
	if err != nil {
		return nil, errors.Wrap(err, "list tutorials")
	}
	return tutorials, nil
}

func (s *TutorialService) Get(ctx context.Context, id int64) (*model.Tutorial, error) {
	tutorial, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get tutorial %d", id)
	}
	return tutorial, nil
}

// Update overwrites title, description and published of an existing
// tutorial. The id never changes.
func (s *TutorialService) Update(ctx context.Context, id int64, title, description string, published bool) (*model.Tutorial, error) {
	tutorial, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "update tutorial %d", id)
	}

	tutorial.Overwrite(title, description, published)

	saved, err := s.repo.Save(ctx, tutorial)
	if err != nil {
		return nil, errors.Wrapf(err, "update tutorial %d", id)
	}

	middleware.LoggerFromContext(ctx).Info().Int64("tutorial_id", id).Msg("tutorial updated")
	return saved, nil
}

// Delete removes a tutorial. Unknown ids are not an error.
func (s *TutorialService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return errors.Wrapf(err, "delete tutorial %d", id)
	}

	middleware.LoggerFromContext(ctx).Info().Int64("tutorial_id", id).Msg("tutorial deleted")
	return nil
}

func (s *TutorialService) DeleteAll(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return errors.Wrap(err, "delete all tutorials")
	}

	middleware.LoggerFromContext(ctx).Info().Msg("all tutorials deleted")
	return nil
}

func (s *TutorialService) ListPublished(ctx context.Context) ([]model.Tutorial, error) {
	tutorials, err := s.repo.FindByPublished(ctx, true)
	if err != nil {
		return nil, errors.Wrap(err, "list published tutorials")
	}
	return tutorials, nil
}
