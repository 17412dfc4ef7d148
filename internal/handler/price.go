package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/cart"
	"github.com/xenking/kart-pricing/internal/domain/product"
	"github.com/xenking/kart-pricing/internal/domain/quote"
)

// Price handles POST /api/price.
func (h *Handler) Price(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(r.Context(), w, &badRequestError{err: err})
		return
	}

	req, err := decodePriceRequest(body)
	if err != nil {
		// An unknown product is well-formed input the catalog cannot price.
		if !errors.Is(err, product.ErrUnknownProduct) {
			err = &badRequestError{err: err}
		}
		writeError(r.Context(), w, err)
		return
	}
	if req.Period == "" {
		req.Period = DefaultPeriod
	}

	result, err := h.quotes.Quote(r.Context(), req)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encodeQuote(e, result)
	writeJSON(w, http.StatusOK, e.Bytes())
}

// decodePriceRequest reads
//
//	{"period":"Normal","items":[{"product":"APPLE","quantity":2}],"coupons":["X5"]}
//
// Quantities may be JSON numbers or decimal strings. Product names are
// case-insensitive.
func decodePriceRequest(data []byte) (quote.Request, error) {
	var req quote.Request
	if len(data) == 0 {
		return req, errors.New("empty body")
	}

	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "period":
			s, err := d.Str()
			req.Period = s
			return errors.Wrap(err, "period")
		case "items":
			return errors.Wrap(decodeNullableArr(d, func(d *jx.Decoder) error {
				it, err := decodeItem(d)
				if err != nil {
					return err
				}
				req.Items = append(req.Items, it)
				return nil
			}), "items")
		case "coupons":
			return errors.Wrap(decodeNullableArr(d, func(d *jx.Decoder) error {
				code, err := d.Str()
				if err != nil {
					return err
				}
				req.Coupons = append(req.Coupons, code)
				return nil
			}), "coupons")
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return quote.Request{}, err
	}
	return req, nil
}

func decodeItem(d *jx.Decoder) (cart.Item, error) {
	var it cart.Item
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "product":
			s, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "product")
			}
			it.Product, err = product.Parse(s)
			return err
		case "quantity":
			q, err := decodeDecimal(d)
			it.Quantity = q
			return errors.Wrap(err, "quantity")
		default:
			return d.Skip()
		}
	})
	return it, err
}

func decodeNullableArr(d *jx.Decoder, f func(d *jx.Decoder) error) error {
	if d.Next() == jx.Null {
		return d.Null()
	}
	return d.Arr(f)
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	var raw string
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Decimal{}, err
		}
		raw = n.String()
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Decimal{}, err
		}
		raw = s
	default:
		return decimal.Decimal{}, errors.Errorf("expected number, got %s", d.Next())
	}
	return decimal.NewFromString(raw)
}

func encodeQuote(e *jx.Encoder, res *quote.Result) {
	q := res.Quote
	e.ObjStart()
	e.FieldStart("id")
	e.Str(q.ID)
	e.FieldStart("period")
	e.Str(q.Period)
	e.FieldStart("amount")
	encodeDecimal(e, q.Amount)
	e.FieldStart("unusedCoupons")
	encodeStrings(e, q.UnusedCoupons)
	e.FieldStart("lines")
	e.ArrStart()
	for _, l := range res.Lines {
		e.ObjStart()
		e.FieldStart("product")
		e.Str(string(l.Product))
		e.FieldStart("base")
		encodeDecimal(e, l.Base)
		e.FieldStart("rate")
		encodeDecimal(e, l.Rate)
		e.FieldStart("amount")
		encodeDecimal(e, l.Amount)
		e.FieldStart("coupons")
		e.ArrStart()
		for _, c := range l.Contributions {
			e.Str(c.Code)
		}
		e.ArrEnd()
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("createdAt")
	e.Str(q.CreatedAt.Format(time.RFC3339))
	e.ObjEnd()
}
