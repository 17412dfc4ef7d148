// Package handler exposes the pricing engine over HTTP.
package handler

import (
	"context"
	"net/http"

	"github.com/xenking/kart-pricing/internal/domain/coupon"
	"github.com/xenking/kart-pricing/internal/domain/period"
	"github.com/xenking/kart-pricing/internal/domain/quote"
)

// DefaultPeriod is used when a price request names no period.
const DefaultPeriod = "Normal"

// maxBodyBytes bounds the size of request bodies.
const maxBodyBytes = 1 << 20

// Quoter prices and records carts.
type Quoter interface {
	Quote(ctx context.Context, req quote.Request) (*quote.Result, error)
}

// PeriodStore looks up periods by name and lists the stored names.
type PeriodStore interface {
	period.Repository
	List(ctx context.Context) ([]string, error)
}

// Handler serves the pricing API.
type Handler struct {
	quotes  Quoter
	periods PeriodStore
	catalog *coupon.Catalog
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(quotes Quoter, periods PeriodStore, catalog *coupon.Catalog) *Handler {
	return &Handler{
		quotes:  quotes,
		periods: periods,
		catalog: catalog,
	}
}

// Register mounts the API routes on mux. Every route is wrapped by protect,
// usually the API key middleware.
func (h *Handler) Register(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("POST /api/price", protect(http.HandlerFunc(h.Price)))
	mux.Handle("GET /api/periods", protect(http.HandlerFunc(h.ListPeriods)))
	mux.Handle("GET /api/periods/{name}", protect(http.HandlerFunc(h.GetPeriod)))
	mux.Handle("GET /api/coupons/{code}", protect(http.HandlerFunc(h.GetCoupon)))
}
