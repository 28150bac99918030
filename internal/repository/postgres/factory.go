package postgres

import (
	repo "github.com/baharkarakas/rentacar-backend/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositories(pool *pgxpool.Pool) repo.Repositories {
	return repo.Repositories{
		Users:     &usersRepo{pool},
		Listings:  &listingsRepo{pool},
		Bookings:  &bookingsRepo{pool},
		AuditLogs: &auditLogsRepo{pool},
	}
}
