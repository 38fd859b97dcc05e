package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID              int64           `db:"id"`
	TelegramID      string          `db:"telegram_id" json:"telegram_id"`
	Username        string          `db:"username" json:"username"`
	FirstName       string          `db:"first_name" json:"first_name"`
	BalanceStars    int64           `db:"balance_stars" json:"balance_stars"`
	BalanceRub      decimal.Decimal `db:"balance_rub" json:"balance_rub"`
	SuccessfulDeals int64           `db:"successful_deals" json:"successful_deals"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// Currency tags accepted by balance operations.
const (
	CurrencyStars = "stars"
	CurrencyRub   = "rub"
)

func ValidCurrency(c string) bool {
	return c == CurrencyStars || c == CurrencyRub
}

// TelegramID accepts both JSON numbers and strings: the WebApp sends the
// raw numeric Telegram id while the admin panel posts form text.
type TelegramID string

func (t *TelegramID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*t = TelegramID(strings.TrimSpace(str))
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*t = TelegramID(num.String())
	return nil
}

func (t TelegramID) String() string { return string(t) }
