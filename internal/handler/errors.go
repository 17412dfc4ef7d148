package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/kart-pricing/internal/domain/cart"
	"github.com/xenking/kart-pricing/internal/domain/coupon"
	"github.com/xenking/kart-pricing/internal/domain/period"
	"github.com/xenking/kart-pricing/internal/domain/product"
	"github.com/xenking/kart-pricing/internal/domain/quote"
	"github.com/xenking/kart-pricing/pkg/httpmiddleware"
)

// badRequestError marks a body that could not be decoded.
type badRequestError struct{ err error }

func (e *badRequestError) Error() string { return "invalid request body: " + e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }

// notFoundError marks a lookup miss reported as 404.
type notFoundError struct{ err error }

func (e *notFoundError) Error() string { return e.err.Error() }
func (e *notFoundError) Unwrap() error { return e.err }

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	var (
		badReq   *badRequestError
		notFound *notFoundError
		quantity *cart.InvalidQuantityError
		unknown  *coupon.UnknownCouponError
		unpriced *period.UnpricedProductError
	)
	switch {
	case errors.As(err, &badReq), errors.Is(err, quote.ErrEmptyItems):
		return http.StatusBadRequest
	case errors.As(err, &notFound), errors.Is(err, period.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &quantity),
		errors.As(err, &unknown),
		errors.As(err, &unpriced),
		errors.Is(err, product.ErrUnknownProduct):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes the error body. Internal errors are logged and their
// details are not exposed.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	code := statusOf(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		zctx.From(ctx).Error("Request failed", zap.Error(err))
		msg = "internal error"
	}
	httpmiddleware.WriteError(w, code, msg)
}

func writeJSON(w http.ResponseWriter, code int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

// encodeDecimal writes d as a JSON number without going through float64.
func encodeDecimal(e *jx.Encoder, d decimal.Decimal) {
	e.RawStr(d.String())
}

func encodeStrings(e *jx.Encoder, s []string) {
	e.ArrStart()
	for _, v := range s {
		e.Str(v)
	}
	e.ArrEnd()
}
