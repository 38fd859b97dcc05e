package repository

import (
	"context"
	"errors"

	"nft_gifts_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, telegram_id, COALESCE(username, ''), COALESCE(first_name, ''),
	balance_stars, balance_rub::text, successful_deals, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u      domain.User
		rubRaw string
	)
	if err := row.Scan(
		&u.ID,
		&u.TelegramID,
		&u.Username,
		&u.FirstName,
		&u.BalanceStars,
		&rubRaw,
		&u.SuccessfulDeals,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}

	rub, err := decimal.NewFromString(rubRaw)
	if err != nil {
		return nil, err
	}
	u.BalanceRub = rub

	return &u, nil
}

// GetByTelegramID returns the user row or (nil, nil) when it does not exist.
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID string) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE telegram_id = $1`,
		telegramID,
	)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// EnsureWithTx inserts the user row if missing and leaves an existing row
// untouched (the profile and admin balance paths).
func (r *UserRepository) EnsureWithTx(ctx context.Context, tx pgx.Tx, telegramID string) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO users (telegram_id) VALUES ($1)
		 ON CONFLICT (telegram_id) DO NOTHING`,
		telegramID,
	)
	return err
}

// Ensure is EnsureWithTx outside of a transaction.
func (r *UserRepository) Ensure(ctx context.Context, telegramID string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (telegram_id) VALUES ($1)
		 ON CONFLICT (telegram_id) DO NOTHING`,
		telegramID,
	)
	return err
}

// UpsertProfileWithTx inserts the user row or overwrites username and
// first_name on an existing one (the deal creation path).
func (r *UserRepository) UpsertProfileWithTx(ctx context.Context, tx pgx.Tx, telegramID, username, firstName string) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO users (telegram_id, username, first_name)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (telegram_id) DO UPDATE
		 SET username = EXCLUDED.username,
		     first_name = EXCLUDED.first_name`,
		telegramID, username, firstName,
	)
	return err
}

// AddStarsWithTx adds delta (may be negative) to the stars balance.
func (r *UserRepository) AddStarsWithTx(ctx context.Context, tx pgx.Tx, telegramID string, delta int64) (int64, error) {
	var newBalance int64
	err := tx.QueryRow(ctx,
		`UPDATE users SET balance_stars = balance_stars + $1
		 WHERE telegram_id = $2
		 RETURNING balance_stars`,
		delta, telegramID,
	).Scan(&newBalance)
	return newBalance, err
}

// AddRubWithTx adds delta to the fiat balance.
func (r *UserRepository) AddRubWithTx(ctx context.Context, tx pgx.Tx, telegramID string, delta decimal.Decimal) (decimal.Decimal, error) {
	var raw string
	err := tx.QueryRow(ctx,
		`UPDATE users SET balance_rub = balance_rub + $1::numeric
		 WHERE telegram_id = $2
		 RETURNING balance_rub::text`,
		delta.String(), telegramID,
	).Scan(&raw)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(raw)
}

// SetDealsCountWithTx overwrites the successful deals counter.
func (r *UserRepository) SetDealsCountWithTx(ctx context.Context, tx pgx.Tx, telegramID string, count int64) error {
	_, err := tx.Exec(ctx,
		`UPDATE users SET successful_deals = $1 WHERE telegram_id = $2`,
		count, telegramID,
	)
	return err
}

// ResetAccount zeroes both balances and the deals counter.
func (r *UserRepository) ResetAccount(ctx context.Context, telegramID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users
		 SET balance_stars = 0, balance_rub = 0, successful_deals = 0
		 WHERE telegram_id = $1`,
		telegramID,
	)
	return err
}

// ListAll returns every user, newest first.
func (r *UserRepository) ListAll(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}
