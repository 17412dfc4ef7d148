//go:build integration

package integration

import (
	"net/http"
	"slices"
	"testing"
)

type periodResponse struct {
	Name   string             `json:"name"`
	Prices map[string]float64 `json:"prices"`
}

func TestGetCoupon(t *testing.T) {
	resp := doGet(t, "/api/coupons/B5-MAX10")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	c := decodeJSON[couponResponse](t, resp)
	if c.Code != "B5-MAX10" || c.Scope != "product" || c.Product != "BANANA" {
		t.Errorf("unexpected coupon: %+v", c)
	}
	if c.Rate != 0.05 || c.Cap == nil || *c.Cap != 0.1 {
		t.Errorf("unexpected rate/cap: %v/%v", c.Rate, c.Cap)
	}
}

func TestGetCoupon_Exclusive(t *testing.T) {
	resp := doGet(t, "/api/coupons/X10")
	defer resp.Body.Close()

	c := decodeJSON[couponResponse](t, resp)
	if !c.Exclusive || c.Scope != "global" || c.Cap != nil {
		t.Errorf("unexpected coupon: %+v", c)
	}
}

func TestGetCoupon_NotFound(t *testing.T) {
	resp := doGet(t, "/api/coupons/Z99")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGetPeriod(t *testing.T) {
	resp := doGet(t, "/api/periods/Normal")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeJSON[periodResponse](t, resp)
	if body.Name != "Normal" || body.Prices["APPLE"] != 500 || body.Prices["BANANA"] != 450 {
		t.Errorf("unexpected period: %+v", body)
	}
}

func TestGetPeriod_NotFound(t *testing.T) {
	resp := doGet(t, "/api/periods/Holiday")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestListPeriods(t *testing.T) {
	resp := doGet(t, "/api/periods")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeJSON[struct {
		Periods []string `json:"periods"`
	}](t, resp)
	if !slices.Contains(body.Periods, "Normal") {
		t.Errorf("expected Normal in %v", body.Periods)
	}
}
