package handler

import (
	"github.com/deppfellow/tutorial-service/internal/server"
	"github.com/deppfellow/tutorial-service/internal/service"
)

// Handlers groups every HTTP handler so the router receives one value.
type Handlers struct {
	Health   *HealthHandler
	OpenAPI  *OpenAPIHandler
	Tutorial *TutorialHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(s),
		OpenAPI:  NewOpenAPIHandler(s),
		Tutorial: NewTutorialHandler(s, services.Tutorials),
	}
}
