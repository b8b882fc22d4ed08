package repository

import (
	"github.com/deppfellow/tutorial-service/internal/server"
	"github.com/pkg/errors"
)

// Repositories is the container for every repository instance, built once
// at startup and handed to the service layer.
type Repositories struct {
	Tutorials TutorialRepository
}

// NewRepositories builds the repositories for the store driver selected in
// the server config. It fails when the driver's connection is missing.
func NewRepositories(s *server.Server) (*Repositories, error) {
	switch {
	case s.Config.UsesPostgres():
		if s.DB == nil {
			return nil, errors.New("postgres store selected but no database pool is configured")
		}
		return &Repositories{
			Tutorials: NewPostgresTutorialRepository(s.DB.Pool),
		}, nil

	case s.Config.UsesRedis():
		if s.Redis == nil {
			return nil, errors.New("redis store selected but no redis client is configured")
		}
		return &Repositories{
			Tutorials: NewRedisTutorialRepository(s.Redis),
		}, nil

	default:
		return nil, errors.Errorf("unsupported store driver %q", s.Config.Store.Driver)
	}
}
