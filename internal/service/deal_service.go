package service

import (
	"context"
	"errors"
	"strings"

	"nft_gifts_webapp/internal/domain"
	"nft_gifts_webapp/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingTelegramID = errors.New("telegram id is required")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrFractionalStars   = errors.New("stars amount must be a whole number")
	ErrInvalidCurrency   = errors.New("unknown currency")
	ErrInvalidCount      = errors.New("deals count must not be negative")
	ErrDealNotFound      = errors.New("deal not found")
	ErrUserNotFound      = errors.New("user not found")
)

// dealIDAttempts bounds the retry loop on short-id collisions.
const dealIDAttempts = 5

// DealService owns deal creation and lookup.
type DealService struct {
	db      *pgxpool.Pool
	users   *repository.UserRepository
	deals   *repository.DealRepository
	listCap int
}

func NewDealService(db *pgxpool.Pool) *DealService {
	return &DealService{
		db:      db,
		users:   repository.NewUserRepository(db),
		deals:   repository.NewDealRepository(db),
		listCap: 50,
	}
}

// CreateDealInput carries the seller identity and item fields of a new deal.
type CreateDealInput struct {
	SellerID    string
	Username    string
	FirstName   string
	NftLink     string
	NftUsername string
	Amount      decimal.Decimal
	Currency    string
	Description string
}

// NewDealID returns an 8-character uppercase token taken from the leading
// hex of a random v4 UUID.
func NewDealID() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// Create upserts the seller's profile (overwriting username/first_name)
// and inserts the deal in one transaction. On an id collision the whole
// transaction is retried with a fresh token.
func (s *DealService) Create(ctx context.Context, in CreateDealInput) (*domain.Deal, error) {
	if in.SellerID == "" {
		return nil, ErrMissingTelegramID
	}
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	for attempt := 0; attempt < dealIDAttempts; attempt++ {
		deal := &domain.Deal{
			ID:          NewDealID(),
			SellerID:    in.SellerID,
			NftLink:     in.NftLink,
			NftUsername: in.NftUsername,
			Amount:      in.Amount,
			Currency:    in.Currency,
			Description: in.Description,
		}

		err := s.createOnce(ctx, in, deal)
		if errors.Is(err, repository.ErrDealIDTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return deal, nil
	}

	return nil, repository.ErrDealIDTaken
}

func (s *DealService) createOnce(ctx context.Context, in CreateDealInput, deal *domain.Deal) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.users.UpsertProfileWithTx(ctx, tx, in.SellerID, in.Username, in.FirstName); err != nil {
		return err
	}
	if err := s.deals.CreateWithTx(ctx, tx, deal); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Get looks up a deal by its shareable id.
func (s *DealService) Get(ctx context.Context, id string) (*domain.Deal, error) {
	deal, err := s.deals.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, ErrDealNotFound
	}
	return deal, nil
}

// ListFor returns the user's deals in both roles, each capped at the 50
// most recent.
func (s *DealService) ListFor(ctx context.Context, telegramID string) (seller, buyer []*domain.Deal, err error) {
	if telegramID == "" {
		return nil, nil, ErrMissingTelegramID
	}

	seller, err = s.deals.ListBySeller(ctx, telegramID, s.listCap)
	if err != nil {
		return nil, nil, err
	}

	buyer, err = s.deals.ListByBuyer(ctx, telegramID, s.listCap)
	if err != nil {
		return nil, nil, err
	}

	return seller, buyer, nil
}
