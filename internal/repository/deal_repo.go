package repository

import (
	"context"
	"errors"

	"nft_gifts_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrDealIDTaken reports a primary key collision on insert so the caller
// can regenerate the short id and retry.
var ErrDealIDTaken = errors.New("deal id already taken")

const pgUniqueViolation = "23505"

type DealRepository struct {
	db *pgxpool.Pool
}

func NewDealRepository(db *pgxpool.Pool) *DealRepository {
	return &DealRepository{db: db}
}

const dealColumns = `id, COALESCE(seller_id, ''), COALESCE(buyer_id, ''),
	COALESCE(nft_link, ''), COALESCE(nft_username, ''), amount::text,
	COALESCE(currency, ''), status, created_at, paid_at, completed_at,
	COALESCE(description, '')`

func scanDeal(row pgx.Row) (*domain.Deal, error) {
	var (
		d         domain.Deal
		amountRaw string
	)
	if err := row.Scan(
		&d.ID,
		&d.SellerID,
		&d.BuyerID,
		&d.NftLink,
		&d.NftUsername,
		&amountRaw,
		&d.Currency,
		&d.Status,
		&d.CreatedAt,
		&d.PaidAt,
		&d.CompletedAt,
		&d.Description,
	); err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(amountRaw)
	if err != nil {
		return nil, err
	}
	d.Amount = amount

	return &d, nil
}

// CreateWithTx inserts the deal row with status pending. A duplicate id
// surfaces as ErrDealIDTaken.
func (r *DealRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, d *domain.Deal) error {
	err := tx.QueryRow(ctx,
		`INSERT INTO deals (id, seller_id, nft_link, nft_username, amount, currency, description)
		 VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)
		 RETURNING status, created_at`,
		d.ID, d.SellerID, d.NftLink, d.NftUsername, d.Amount.String(), d.Currency, d.Description,
	).Scan(&d.Status, &d.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDealIDTaken
		}
		return err
	}
	return nil
}

// Get returns the deal or (nil, nil) when the id is unknown.
func (r *DealRepository) Get(ctx context.Context, id string) (*domain.Deal, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+dealColumns+` FROM deals WHERE id = $1`,
		id,
	)

	d, err := scanDeal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

// ListBySeller returns the user's most recent deals as seller, capped at limit.
func (r *DealRepository) ListBySeller(ctx context.Context, telegramID string, limit int) ([]*domain.Deal, error) {
	return r.list(ctx, `seller_id`, telegramID, limit)
}

// ListByBuyer returns the user's most recent deals as buyer, capped at limit.
func (r *DealRepository) ListByBuyer(ctx context.Context, telegramID string, limit int) ([]*domain.Deal, error) {
	return r.list(ctx, `buyer_id`, telegramID, limit)
}

func (r *DealRepository) list(ctx context.Context, column, telegramID string, limit int) ([]*domain.Deal, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+dealColumns+` FROM deals
		 WHERE `+column+` = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		telegramID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}
