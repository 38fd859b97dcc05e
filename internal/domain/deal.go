package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deal is a seller-initiated trade intent for an NFT gift. The id is a
// short shareable token, not a database sequence.
type Deal struct {
	ID          string          `db:"id" json:"id"`
	SellerID    string          `db:"seller_id" json:"seller_id"`
	BuyerID     string          `db:"buyer_id" json:"buyer_id,omitempty"`
	NftLink     string          `db:"nft_link" json:"nft_link"`
	NftUsername string          `db:"nft_username" json:"nft_username"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Currency    string          `db:"currency" json:"currency"`
	Status      DealStatus      `db:"status" json:"status"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	PaidAt      *time.Time      `db:"paid_at" json:"paid_at,omitempty"`
	CompletedAt *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
	Description string          `db:"description" json:"description"`
}

// DealStatus mirrors the schema's timestamp columns. Only pending is
// written today; buyer claim and payment progression are not wired up.
type DealStatus string

const (
	DealStatusPending   DealStatus = "pending"
	DealStatusPaid      DealStatus = "paid"
	DealStatusCompleted DealStatus = "completed"
	DealStatusCancelled DealStatus = "cancelled"
)
