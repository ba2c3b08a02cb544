package pgsql

import (
	portsrepo "github.com/dablu-app/dablu_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	roomRepo := newPgxRoomRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)

	return portsrepo.RepositoryProvider{
		RoomRepo: roomRepo,
		UserRepo: userRepo,
	}
}
