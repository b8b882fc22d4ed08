package service

import (
	"github.com/deppfellow/tutorial-service/internal/repository"
	"github.com/deppfellow/tutorial-service/internal/server"
)

// Services groups every business service so the handler layer receives a
// single dependency.
type Services struct {
	Tutorials *TutorialService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Tutorials: NewTutorialService(s, repos.Tutorials),
	}, nil
}
