package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nft_gifts_webapp/internal/config"
	apihttp "nft_gifts_webapp/internal/http"
	"nft_gifts_webapp/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The suite runs only against a real database: set DATABASE_URL to enable it.
func setup(t *testing.T) (*pgxpool.Pool, *http.Client, string) {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	applyMigrations(t, db)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	apihttp.RegisterRoutes(r, db, &config.Config{
		BaseURL:       "https://gifts.example.test",
		WebDir:        filepath.Join("..", "..", "web"),
		Version:       "test",
		APIRateLimit:  10000,
		APIRateWindow: 60,
	})

	srv := newServer(t, r)
	return db, srv.Client(), srv.URL
}

func newServer(t *testing.T, h http.Handler) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func applyMigrations(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "..", "internal", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
}

func freshTgID() string {
	return "it-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

func postJSON(t *testing.T, client *http.Client, url, body string) map[string]any {
	t.Helper()
	res, err := client.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer res.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func getJSON(t *testing.T, client *http.Client, url string) (int, map[string]any) {
	t.Helper()
	res, err := client.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer res.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return res.StatusCode, out
}

func TestAPI_CreateAndViewDeal(t *testing.T) {
	_, client, base := setup(t)
	seller := freshTgID()

	resp := postJSON(t, client, base+"/api/create_deal", fmt.Sprintf(
		`{"telegram_user":{"id":%q,"username":"seller","first_name":"S"},
		  "nft_link":"https://t.me/nft/DeskCalendar-1","nft_username":"Desk Calendar",
		  "amount":150.5,"currency":"stars","description":"quick sale"}`, seller))

	if resp["success"] != true {
		t.Fatalf("create failed: %v", resp)
	}

	dealID, _ := resp["deal_id"].(string)
	if len(dealID) != 8 || dealID != strings.ToUpper(dealID) {
		t.Fatalf("expected 8-char uppercase id, got %q", dealID)
	}
	if url, _ := resp["deal_url"].(string); url != "https://gifts.example.test/deal/"+dealID {
		t.Fatalf("unexpected deal_url %q", url)
	}

	code, view := getJSON(t, client, base+"/api/deal/"+dealID)
	if code != http.StatusOK || view["success"] != true {
		t.Fatalf("view failed: %d %v", code, view)
	}

	deal := view["deal"].(map[string]any)
	if deal["seller_id"] != seller {
		t.Fatalf("seller mismatch: %v", deal["seller_id"])
	}
	if deal["amount"].(float64) != 150.5 {
		t.Fatalf("amount mismatch: %v", deal["amount"])
	}
	if deal["currency"] != "stars" || deal["status"] != "pending" {
		t.Fatalf("unexpected deal fields: %v", deal)
	}
}

func TestAPI_UnknownDealHasNoSideEffect(t *testing.T) {
	db, client, base := setup(t)

	var before int64
	if err := db.QueryRow(context.Background(), `SELECT COUNT(*) FROM deals`).Scan(&before); err != nil {
		t.Fatalf("count deals: %v", err)
	}

	code, resp := getJSON(t, client, base+"/api/deal/ZZZZZZ99")
	if code != http.StatusNotFound || resp["success"] != false {
		t.Fatalf("expected 404 success:false, got %d %v", code, resp)
	}

	var after int64
	if err := db.QueryRow(context.Background(), `SELECT COUNT(*) FROM deals`).Scan(&after); err != nil {
		t.Fatalf("count deals: %v", err)
	}
	if before != after {
		t.Fatalf("deal count changed: %d -> %d", before, after)
	}
}

func TestAPI_MyDealsEmptyForStranger(t *testing.T) {
	_, client, base := setup(t)

	code, resp := getJSON(t, client, base+"/api/my_deals?user_id="+freshTgID())
	if code != http.StatusOK || resp["success"] != true {
		t.Fatalf("expected success, got %d %v", code, resp)
	}

	seller := resp["seller_deals"].([]any)
	buyer := resp["buyer_deals"].([]any)
	if len(seller) != 0 || len(buyer) != 0 {
		t.Fatalf("expected two empty lists, got %d/%d", len(seller), len(buyer))
	}
}

func TestAPI_AddBalanceIsAdditive(t *testing.T) {
	_, client, base := setup(t)
	tgID := freshTgID()

	body := fmt.Sprintf(`{"telegram_id":%q,"amount":100,"currency":"stars"}`, tgID)
	for i := 0; i < 2; i++ {
		if resp := postJSON(t, client, base+"/api/admin/add_balance", body); resp["success"] != true {
			t.Fatalf("add_balance failed: %v", resp)
		}
	}

	_, profile := getJSON(t, client, base+"/api/user_profile?user_id="+tgID)
	user := profile["user"].(map[string]any)
	if user["balance_stars"].(float64) != 200 {
		t.Fatalf("expected 200 stars, got %v", user["balance_stars"])
	}
}

func TestAPI_RubBalanceKeepsFraction(t *testing.T) {
	_, client, base := setup(t)
	tgID := freshTgID()

	body := fmt.Sprintf(`{"telegram_id":%q,"amount":99.75,"currency":"rub"}`, tgID)
	if resp := postJSON(t, client, base+"/api/admin/add_balance", body); resp["success"] != true {
		t.Fatalf("add_balance failed: %v", resp)
	}

	_, profile := getJSON(t, client, base+"/api/user_profile?user_id="+tgID)
	user := profile["user"].(map[string]any)
	if user["balance_rub"].(float64) != 99.75 {
		t.Fatalf("expected 99.75 rub, got %v", user["balance_rub"])
	}
}

func TestAPI_UpdateDealsIsAbsolute(t *testing.T) {
	_, client, base := setup(t)
	tgID := freshTgID()

	for _, count := range []int{5, 2} {
		body := fmt.Sprintf(`{"telegram_id":%q,"deals_count":%d}`, tgID, count)
		if resp := postJSON(t, client, base+"/api/admin/update_deals", body); resp["success"] != true {
			t.Fatalf("update_deals failed: %v", resp)
		}
	}

	_, profile := getJSON(t, client, base+"/api/user_profile?user_id="+tgID)
	user := profile["user"].(map[string]any)
	if user["successful_deals"].(float64) != 2 {
		t.Fatalf("expected latest value 2, got %v", user["successful_deals"])
	}
}

func TestAPI_ResetBalanceZeroesEverything(t *testing.T) {
	_, client, base := setup(t)
	tgID := freshTgID()

	postJSON(t, client, base+"/api/admin/add_balance", fmt.Sprintf(`{"telegram_id":%q,"amount":500,"currency":"stars"}`, tgID))
	postJSON(t, client, base+"/api/admin/add_balance", fmt.Sprintf(`{"telegram_id":%q,"amount":12.5,"currency":"rub"}`, tgID))
	postJSON(t, client, base+"/api/admin/update_deals", fmt.Sprintf(`{"telegram_id":%q,"deals_count":7}`, tgID))

	if resp := postJSON(t, client, base+"/api/admin/reset_balance", fmt.Sprintf(`{"telegram_id":%q}`, tgID)); resp["success"] != true {
		t.Fatalf("reset failed: %v", resp)
	}

	_, profile := getJSON(t, client, base+"/api/user_profile?user_id="+tgID)
	user := profile["user"].(map[string]any)
	if user["balance_stars"].(float64) != 0 || user["balance_rub"].(float64) != 0 || user["successful_deals"].(float64) != 0 {
		t.Fatalf("expected zeroed account, got %v", user)
	}
}

func TestAPI_RejectedAddBalanceCreatesNoRow(t *testing.T) {
	db, client, base := setup(t)
	tgID := freshTgID()

	resp := postJSON(t, client, base+"/api/admin/add_balance",
		fmt.Sprintf(`{"telegram_id":%q,"amount":0,"currency":"stars"}`, tgID))
	if resp["success"] != false {
		t.Fatalf("expected rejection, got %v", resp)
	}

	users := repository.NewUserRepository(db)
	u, err := users.GetByTelegramID(context.Background(), tgID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if u != nil {
		t.Fatalf("expected no user row, got %+v", u)
	}
}

func TestAPI_StatsAggregates(t *testing.T) {
	_, client, base := setup(t)
	seller := freshTgID()

	postJSON(t, client, base+"/api/create_deal", fmt.Sprintf(
		`{"telegram_user":{"id":%q},"nft_link":"x","nft_username":"y","amount":10,"currency":"stars"}`, seller))

	code, resp := getJSON(t, client, base+"/api/admin/stats")
	if code != http.StatusOK || resp["success"] != true {
		t.Fatalf("stats failed: %d %v", code, resp)
	}

	stats := resp["stats"].(map[string]any)
	if stats["total_users"].(float64) < 1 || stats["total_deals"].(float64) < 1 {
		t.Fatalf("expected non-zero totals: %v", stats)
	}
	byStatus := stats["deals_by_status"].(map[string]any)
	if byStatus["pending"].(float64) < 1 {
		t.Fatalf("expected pending deals in %v", byStatus)
	}
}

func TestRepo_UpsertPolicies(t *testing.T) {
	db, _, _ := setup(t)
	tgID := freshTgID()
	ctx := context.Background()

	users := repository.NewUserRepository(db)

	// replace policy overwrites profile fields on every deal creation
	tx, err := db.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := users.UpsertProfileWithTx(ctx, tx, tgID, "old_name", "Old"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := users.UpsertProfileWithTx(ctx, tx, tgID, "new_name", "New"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	u, err := users.GetByTelegramID(ctx, tgID)
	if err != nil || u == nil {
		t.Fatalf("lookup: %v %v", u, err)
	}
	if u.Username != "new_name" || u.FirstName != "New" {
		t.Fatalf("replace policy not applied: %+v", u)
	}

	// ignore policy leaves the existing row untouched
	if err := users.Ensure(ctx, tgID); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	u, err = users.GetByTelegramID(ctx, tgID)
	if err != nil || u == nil {
		t.Fatalf("lookup: %v %v", u, err)
	}
	if u.Username != "new_name" {
		t.Fatalf("ignore policy overwrote profile: %+v", u)
	}
}
