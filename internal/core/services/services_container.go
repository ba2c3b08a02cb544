package services

import (
	portsrepo "github.com/dablu-app/dablu_backend/internal/core/ports/repositories"
	portssvc "github.com/dablu-app/dablu_backend/internal/core/ports/services"
	"github.com/dablu-app/dablu_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.User = NewUserService(repos.UserRepo)
	container.Room = NewRoomService(repos.RoomRepo, repos.UserRepo)
	container.Settlement = NewSettlementService(repos.RoomRepo, repos.UserRepo, cfg.RecentSettlementWindow)

	container.Token = NewTokenService(cfg)
	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)

	return container
}
