package service

import (
	"context"

	"nft_gifts_webapp/internal/domain"
	"nft_gifts_webapp/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// AdminService provides the read-only admin views: the user list and the
// platform aggregates.
type AdminService struct {
	db    *pgxpool.Pool
	users *repository.UserRepository
}

func NewAdminService(db *pgxpool.Pool) *AdminService {
	return &AdminService{
		db:    db,
		users: repository.NewUserRepository(db),
	}
}

// Stats represents platform aggregates.
type Stats struct {
	TotalUsers    int64            `json:"total_users"`
	TotalDeals    int64            `json:"total_deals"`
	DealsByStatus map[string]int64 `json:"deals_by_status"`
	TotalStars    int64            `json:"total_stars"`
	TotalRub      float64          `json:"total_rub"`
}

// ListUsers returns every user, newest first.
func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.ListAll(ctx)
}

// GetStats aggregates user and deal counters across the whole store.
func (s *AdminService) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{DealsByStatus: make(map[string]int64)}

	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&stats.TotalUsers); err != nil {
		return nil, err
	}
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM deals`).Scan(&stats.TotalDeals); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `SELECT status, COUNT(*) FROM deals GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.DealsByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.db.QueryRow(ctx, `SELECT COALESCE(SUM(balance_stars), 0) FROM users`).Scan(&stats.TotalStars); err != nil {
		return nil, err
	}

	var rubRaw string
	if err := s.db.QueryRow(ctx, `SELECT COALESCE(SUM(balance_rub), 0)::text FROM users`).Scan(&rubRaw); err != nil {
		return nil, err
	}
	rub, err := decimal.NewFromString(rubRaw)
	if err != nil {
		return nil, err
	}
	stats.TotalRub = rub.InexactFloat64()

	return stats, nil
}
