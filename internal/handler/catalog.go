package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/kart-pricing/internal/domain/coupon"
	"github.com/xenking/kart-pricing/internal/domain/period"
	"github.com/xenking/kart-pricing/internal/domain/product"
)

// ListPeriods handles GET /api/periods.
func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	names, err := h.periods.List(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	e.Obj(func(e *jx.Encoder) {
		e.Field("periods", func(e *jx.Encoder) { encodeStrings(e, names) })
	})
	writeJSON(w, http.StatusOK, e.Bytes())
}

// GetPeriod handles GET /api/periods/{name}.
func (h *Handler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	p, err := h.periods.Get(r.Context(), r.PathValue("name"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encodePeriod(e, p)
	writeJSON(w, http.StatusOK, e.Bytes())
}

// GetCoupon handles GET /api/coupons/{code}.
func (h *Handler) GetCoupon(w http.ResponseWriter, r *http.Request) {
	d, err := h.catalog.Describe(r.PathValue("code"))
	if err != nil {
		writeError(r.Context(), w, &notFoundError{err: err})
		return
	}

	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encodeDescriptor(e, d)
	writeJSON(w, http.StatusOK, e.Bytes())
}

func encodePeriod(e *jx.Encoder, p *period.Period) {
	e.ObjStart()
	e.FieldStart("name")
	e.Str(p.Name())
	e.FieldStart("prices")
	e.ObjStart()
	for _, prod := range product.All() {
		if price, ok := p.UnitPrice(prod); ok {
			e.FieldStart(string(prod))
			encodeDecimal(e, price)
		}
	}
	e.ObjEnd()
	e.FieldStart("tiers")
	e.ArrStart()
	for _, prod := range product.All() {
		for _, t := range p.Tiers(prod) {
			e.ObjStart()
			e.FieldStart("product")
			e.Str(string(prod))
			e.FieldStart("threshold")
			encodeDecimal(e, t.Threshold)
			e.FieldStart("rate")
			encodeDecimal(e, t.Rate)
			e.ObjEnd()
		}
	}
	e.ArrEnd()
	e.ObjEnd()
}

func encodeDescriptor(e *jx.Encoder, d coupon.Descriptor) {
	e.ObjStart()
	e.FieldStart("code")
	e.Str(d.Code)
	e.FieldStart("scope")
	e.Str(string(d.Scope))
	if d.Scope == coupon.ScopeProduct {
		e.FieldStart("product")
		e.Str(string(d.Product))
	}
	e.FieldStart("rate")
	encodeDecimal(e, d.Rate)
	if d.Capped() {
		e.FieldStart("cap")
		encodeDecimal(e, d.Cap.Decimal)
	}
	e.FieldStart("exclusive")
	e.Bool(d.Exclusive)
	e.FieldStart("description")
	e.Str(d.Description)
	e.ObjEnd()
}
