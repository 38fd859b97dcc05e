package main

import (
	"context"
	"log"
	"os"

	"nft_gifts_webapp/internal/db"
	"nft_gifts_webapp/internal/service"

	"github.com/shopspring/decimal"
)

// Seeds a demo seller with one pending deal. Expects DATABASE_URL.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	ctx := context.Background()

	accounts := service.NewAccountService(pool)
	deals := service.NewDealService(pool)

	user, err := accounts.Profile(ctx, "1234567890")
	if err != nil {
		log.Fatalf("ensure user failed: %v", err)
	}
	log.Printf("user ready telegram_id=%s stars=%d\n", user.TelegramID, user.BalanceStars)

	deal, err := deals.Create(ctx, service.CreateDealInput{
		SellerID:    user.TelegramID,
		Username:    "testseller",
		FirstName:   "Tester",
		NftLink:     "https://t.me/nft/DeskCalendar-12345",
		NftUsername: "Desk Calendar",
		Amount:      decimal.NewFromInt(500),
		Currency:    "stars",
		Description: "seeded demo deal",
	})
	if err != nil {
		log.Fatalf("create deal failed: %v", err)
	}

	log.Printf("deal created id=%s status=%s\n", deal.ID, deal.Status)
}
