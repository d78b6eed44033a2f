//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestMenu_List(t *testing.T) {
	resp := doGetWithAuth(t, "/api/menu", testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	menu := decodeJSON[menuResponse](t, resp)
	if len(menu.Data) != 5 {
		t.Fatalf("expected 5 menu items, got %d", len(menu.Data))
	}

	byID := make(map[string]menuItemResponse, len(menu.Data))
	for _, item := range menu.Data {
		byID[item.ID] = item
	}

	kabsa, ok := byID["chicken-kabsa"]
	if !ok {
		t.Fatal("chicken-kabsa not in menu")
	}
	if kabsa.Name != "Chicken Kabsa" {
		t.Errorf("name: got %q", kabsa.Name)
	}
	if !amountEqual(kabsa.BasePrice, "32.00") {
		t.Errorf("basePrice: got %q, want 32.00", kabsa.BasePrice)
	}
	if kabsa.TaxCategory != "Standard Tax" {
		t.Errorf("taxCategory: got %q", kabsa.TaxCategory)
	}
	if !kabsa.TrackStock {
		t.Error("chicken-kabsa should track stock")
	}

	water, ok := byID["mineral-water"]
	if !ok {
		t.Fatal("mineral-water not in menu")
	}
	if water.TaxCategory != "Reduced Tax" {
		t.Errorf("taxCategory: got %q", water.TaxCategory)
	}
}

func TestMenu_AuthRequired(t *testing.T) {
	resp := doGet(t, "/api/menu")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without API key, got %d", resp.StatusCode)
	}
}

func TestMenu_WrongKey(t *testing.T) {
	resp := doGetWithAuth(t, "/api/menu", "not-the-real-key")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong API key, got %d", resp.StatusCode)
	}
}
