package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestGoalFlow_ExpenseCapProgress(t *testing.T) {
	app := setupApp(t)

	accountID := app.createAccount(t, "Checking", 100000)

	// Expense category and a R$500 cap for the current month
	rec := app.request("POST", "/api/v1/categories", `{"name":"Dining","type":"expense"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating category, got %d: %s", rec.Code, rec.Body.String())
	}
	categoryID := parseJSON(t, rec)["category"].(map[string]interface{})["id"].(string)

	now := time.Now().UTC()
	start := now.AddDate(0, 0, -10).Format("2006-01-02")
	end := now.AddDate(0, 0, 10).Format("2006-01-02")
	rec = app.request("POST", "/api/v1/goals",
		fmt.Sprintf(`{"name":"Dining cap","type":"expense","category_id":%q,"amount_limit":50000,"start_date":%q,"end_date":%q}`,
			categoryID, start, end))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating goal, got %d: %s", rec.Code, rec.Body.String())
	}

	// Spend R$200 in the category, R$100 outside it
	rec = app.request("POST", "/api/v1/transactions",
		fmt.Sprintf(`{"account_id":%q,"category_id":%q,"type":"expense","amount":20000,"date":%q}`,
			accountID, categoryID, now.Format(time.RFC3339)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("POST", "/api/v1/transactions",
		fmt.Sprintf(`{"account_id":%q,"type":"expense","amount":10000,"date":%q}`,
			accountID, now.Format(time.RFC3339)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Progress counts only the category's spending
	rec = app.request("GET", "/api/v1/goals/progress", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	progress := parseJSON(t, rec)["progress"].([]interface{})
	if len(progress) != 1 {
		t.Fatalf("expected 1 goal, got %d", len(progress))
	}
	entry := progress[0].(map[string]interface{})
	if entry["current"].(float64) != 20000 {
		t.Errorf("expected current 20000, got %.0f", entry["current"].(float64))
	}
	if entry["percentage"].(float64) != 40 {
		t.Errorf("expected 40%%, got %.2f", entry["percentage"].(float64))
	}
	if entry["status"].(string) != "active" {
		t.Errorf("expected active goal, got %s", entry["status"].(string))
	}

	// Blow past the cap: the goal fails even though the period is still open
	rec = app.request("POST", "/api/v1/transactions",
		fmt.Sprintf(`{"account_id":%q,"category_id":%q,"type":"expense","amount":40000,"date":%q}`,
			accountID, categoryID, now.Format(time.RFC3339)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/goals/progress", "")
	entry = parseJSON(t, rec)["progress"].([]interface{})[0].(map[string]interface{})
	if entry["status"].(string) != "failed" {
		t.Errorf("expected failed goal after exceeding cap, got %s", entry["status"].(string))
	}
}

func TestGoalFlow_IncomeTargetCompletes(t *testing.T) {
	app := setupApp(t)

	accountID := app.createAccount(t, "Checking", 0)

	now := time.Now().UTC()
	start := now.AddDate(0, 0, -10).Format("2006-01-02")
	end := now.AddDate(0, 1, 0).Format("2006-01-02")
	rec := app.request("POST", "/api/v1/goals",
		fmt.Sprintf(`{"name":"Side income","type":"income","amount_limit":100000,"start_date":%q,"end_date":%q}`, start, end))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating goal, got %d: %s", rec.Code, rec.Body.String())
	}
	goalID := parseJSON(t, rec)["goal"].(map[string]interface{})["id"].(string)

	rec = app.request("POST", "/api/v1/transactions",
		fmt.Sprintf(`{"account_id":%q,"type":"income","amount":100000,"date":%q}`,
			accountID, now.Format(time.RFC3339)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Target reached before the end date: completed
	rec = app.request("GET", "/api/v1/goals/"+goalID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	goal := parseJSON(t, rec)["goal"].(map[string]interface{})
	if goal["status"].(string) != "completed" {
		t.Errorf("expected completed goal, got %s", goal["status"].(string))
	}
}
