package router

import (
	"net/http"

	"github.com/deppfellow/tutorial-service/internal/handler"
	"github.com/deppfellow/tutorial-service/internal/middleware"
	"github.com/labstack/echo/v4"
)

// registerTutorialRoutes mounts /tutorials under api. Every route requires
// the clientMessageId header.
func registerTutorialRoutes(api *echo.Group, h *handler.Handlers) {
	t := h.Tutorial
	tutorials := api.Group("/tutorials", middleware.RequireTraceHeaders())

	tutorials.POST("", handler.Handle(t.Handler, t.CreateTutorial, http.StatusCreated, &handler.CreateTutorialRequest{}))
	tutorials.GET("", handler.HandleList(t.Handler, t.ListTutorials, http.StatusOK, &handler.ListTutorialsRequest{}))
	tutorials.DELETE("", handler.HandleNoContent(t.Handler, t.DeleteAllTutorials, http.StatusNoContent, &handler.EmptyRequest{}))

	// Static segment, registered ahead of the :id routes for readability;
	// Echo prefers static matches regardless of order.
	tutorials.GET("/published", handler.HandleList(t.Handler, t.ListPublishedTutorials, http.StatusOK, &handler.EmptyRequest{}))

	tutorials.GET("/:id", handler.Handle(t.Handler, t.GetTutorial, http.StatusOK, &handler.TutorialIDRequest{}))
	tutorials.PUT("/:id", handler.Handle(t.Handler, t.UpdateTutorial, http.StatusOK, &handler.UpdateTutorialRequest{}))
	tutorials.DELETE("/:id", handler.HandleNoContent(t.Handler, t.DeleteTutorial, http.StatusNoContent, &handler.TutorialIDRequest{}))
}
