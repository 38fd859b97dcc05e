package service

import (
	"context"

	"nft_gifts_webapp/internal/domain"
	"nft_gifts_webapp/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// AccountService owns user rows: lazy creation, balance and counter
// mutations. Multi-statement operations run in one transaction so a
// failed write never leaves a half-applied account.
type AccountService struct {
	db    *pgxpool.Pool
	users *repository.UserRepository
}

func NewAccountService(db *pgxpool.Pool) *AccountService {
	return &AccountService{
		db:    db,
		users: repository.NewUserRepository(db),
	}
}

// Profile creates the user row if missing (leaving an existing one
// untouched) and returns it.
func (s *AccountService) Profile(ctx context.Context, telegramID string) (*domain.User, error) {
	if telegramID == "" {
		return nil, ErrMissingTelegramID
	}

	if err := s.users.Ensure(ctx, telegramID); err != nil {
		return nil, err
	}

	user, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// AddBalance additively credits the given currency. Star amounts must
// be whole numbers, rub amounts keep their fraction.
func (s *AccountService) AddBalance(ctx context.Context, telegramID string, amount decimal.Decimal, currency string) error {
	if telegramID == "" {
		return ErrMissingTelegramID
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !domain.ValidCurrency(currency) {
		return ErrInvalidCurrency
	}
	// stars are indivisible: a fractional credit would silently truncate
	if currency == domain.CurrencyStars && !amount.IsInteger() {
		return ErrFractionalStars
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.users.EnsureWithTx(ctx, tx, telegramID); err != nil {
		return err
	}

	switch currency {
	case domain.CurrencyStars:
		_, err = s.users.AddStarsWithTx(ctx, tx, telegramID, amount.IntPart())
	case domain.CurrencyRub:
		_, err = s.users.AddRubWithTx(ctx, tx, telegramID, amount)
	}
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// SetDealsCount overwrites the successful deals counter.
func (s *AccountService) SetDealsCount(ctx context.Context, telegramID string, count int64) error {
	if telegramID == "" {
		return ErrMissingTelegramID
	}
	if count < 0 {
		return ErrInvalidCount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.users.EnsureWithTx(ctx, tx, telegramID); err != nil {
		return err
	}
	if err := s.users.SetDealsCountWithTx(ctx, tx, telegramID, count); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Reset zeroes both balances and the deals counter. A missing user row is
// a no-op, matching the admin panel's expectations.
func (s *AccountService) Reset(ctx context.Context, telegramID string) error {
	if telegramID == "" {
		return ErrMissingTelegramID
	}
	return s.users.ResetAccount(ctx, telegramID)
}
