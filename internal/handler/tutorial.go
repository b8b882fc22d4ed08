package handler

import (
	"github.com/deppfellow/tutorial-service/internal/errs"
	"github.com/deppfellow/tutorial-service/internal/model"
	"github.com/deppfellow/tutorial-service/internal/repository"
	"github.com/deppfellow/tutorial-service/internal/server"
	"github.com/deppfellow/tutorial-service/internal/service"
	"github.com/deppfellow/tutorial-service/internal/sqlerr"
	"github.com/deppfellow/tutorial-service/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type CreateTutorialRequest struct {
	Title       string `json:"title" validate:"max=255"`
	Description string `json:"description"`
	Published   bool   `json:"published"`
}

func (r *CreateTutorialRequest) Validate() error {
	return validation.Struct(r)
}

func (r *CreateTutorialRequest) RequiresBody() bool {
	return true
}

// ListTutorialsRequest filters by title substring when Title is set.
type ListTutorialsRequest struct {
	Title string `query:"title"`
}

func (r *ListTutorialsRequest) Validate() error {
	return nil
}

// TutorialIDRequest binds the path id. Ids no tutorial can have are
// answered like any unknown id.
type TutorialIDRequest struct {
	ID int64 `param:"id"`
}

func (r *TutorialIDRequest) Validate() error {
	return nil
}

// UpdateTutorialRequest takes the id from the path only; an "id" in the
// body is ignored.
type UpdateTutorialRequest struct {
	ID          int64  `param:"id" json:"-"`
	Title       string `json:"title" validate:"max=255"`
	Description string `json:"description"`
	Published   bool   `json:"published"`
}

func (r *UpdateTutorialRequest) Validate() error {
	return validation.Struct(r)
}

func (r *UpdateTutorialRequest) RequiresBody() bool {
	return true
}

type EmptyRequest struct{}

func (r *EmptyRequest) Validate() error {
	return nil
}

// TutorialHandler serves /api/tutorials.
type TutorialHandler struct {
	Handler
	tutorials *service.TutorialService
}

func NewTutorialHandler(s *server.Server, tutorials *service.TutorialService) *TutorialHandler {
	return &TutorialHandler{
		Handler:   NewHandler(s),
		tutorials: tutorials,
	}
}

func (h *TutorialHandler) CreateTutorial(c echo.Context, req *CreateTutorialRequest) (*model.Tutorial, error) {
	tutorial, err := h.tutorials.Create(c.Request().Context(), req.Title, req.Description, req.Published)
	if err != nil {
		return nil, h.failure(err)
	}
	return tutorial, nil
}

func (h *TutorialHandler) ListTutorials(c echo.Context, req *ListTutorialsRequest) ([]model.Tutorial, error) {
	tutorials, err := h.tutorials.List(c.Request().Context(), req.Title)
	if err != nil {
		return nil, h.failure(err)
	}
	return tutorials, nil
}

func (h *TutorialHandler) GetTutorial(c echo.Context, req *TutorialIDRequest) (*model.Tutorial, error) {
	tutorial, err := h.tutorials.Get(c.Request().Context(), req.ID)
	if err != nil {
		return nil, h.failure(err)
	}
	return tutorial, nil
}

func (h *TutorialHandler) UpdateTutorial(c echo.Context, req *UpdateTutorialRequest) (*model.Tutorial, error) {
	tutorial, err := h.tutorials.Update(c.Request().Context(), req.ID, req.Title, req.Description, req.Published)
	if err != nil {
		return nil, h.failure(err)
	}
	return tutorial, nil
}

func (h *TutorialHandler) DeleteTutorial(c echo.Context, req *TutorialIDRequest) error {
	if err := h.tutorials.Delete(c.Request().Context(), req.ID); err != nil {
		return h.failure(err)
	}
	return nil
}

func (h *TutorialHandler) DeleteAllTutorials(c echo.Context, req *EmptyRequest) error {
	if err := h.tutorials.DeleteAll(c.Request().Context()); err != nil {
		return h.failure(err)
	}
	return nil
}

func (h *TutorialHandler) ListPublishedTutorials(c echo.Context, req *EmptyRequest) ([]model.Tutorial, error) {
	tutorials, err := h.tutorials.ListPublished(c.Request().Context())
	if err != nil {
		return nil, h.failure(err)
	}
	return tutorials, nil
}

// failure maps a service error onto the response contract: 404 with no body
// for unknown ids, 400 for constraint violations the store reports, and 500
// with no body for everything else. The global error handler logs the cause.
func (h *TutorialHandler) failure(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errs.NewNotFound(err)
	}

	if sqlerr.IsClientError(err) {
		return sqlerr.HandleError(err)
	}

	return errs.NewInternal(err)
}
