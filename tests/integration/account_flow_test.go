package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestAccountFlow_BalanceFollowsLedger(t *testing.T) {
	app := setupApp(t)

	// Account opens with R$500, explained by an initial-balance entry
	accountID := app.createAccount(t, "Checking", 50000)

	rec := app.request("GET", fmt.Sprintf("/api/v1/accounts/%s/transactions", accountID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if total := parseJSON(t, rec)["total_items"].(float64); total != 1 {
		t.Fatalf("expected 1 seed transaction, got %.0f", total)
	}

	now := time.Now().UTC().Format(time.RFC3339)

	// Income of R$100
	rec = app.request("POST", "/api/v1/transactions",
		fmt.Sprintf(`{"account_id":%q,"type":"income","amount":10000,"description":"Salary","date":%q}`, accountID, now))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Expense of R$30
	rec = app.request("POST", "/api/v1/transactions",
		fmt.Sprintf(`{"account_id":%q,"type":"expense","amount":3000,"description":"Lunch","date":%q}`, accountID, now))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	expenseID := parseJSON(t, rec)["transaction"].(map[string]interface{})["id"].(string)

	if balance := app.accountBalance(t, accountID); balance != 57000 {
		t.Errorf("expected balance 57000, got %d", balance)
	}

	// Deleting the expense restores its amount
	rec = app.request("DELETE", "/api/v1/transactions/"+expenseID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if balance := app.accountBalance(t, accountID); balance != 60000 {
		t.Errorf("expected balance 60000 after delete, got %d", balance)
	}
}

func TestAccountFlow_ScopeFilter(t *testing.T) {
	app := setupApp(t)

	app.createAccount(t, "Personal Checking", 0)

	rec := app.request("POST", "/api/v1/accounts", `{"name":"Company","scope":"business"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/accounts?scope=business", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if total := result["total_items"].(float64); total != 1 {
		t.Fatalf("expected 1 business account, got %.0f", total)
	}
	account := result["data"].([]interface{})[0].(map[string]interface{})
	if account["name"].(string) != "Company" {
		t.Errorf("expected business account, got %s", account["name"].(string))
	}

	rec = app.request("GET", "/api/v1/accounts?scope=corporate", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown scope, got %d", rec.Code)
	}
}
