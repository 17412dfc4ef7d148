// Package quote prices carts for a named period and records the result.
package quote

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/kart-pricing/internal/domain/cart"
	"github.com/xenking/kart-pricing/internal/domain/coupon"
	"github.com/xenking/kart-pricing/internal/domain/period"
	"github.com/xenking/kart-pricing/internal/domain/pricing"
)

const instrumentationName = "github.com/xenking/kart-pricing/internal/domain/quote"

// ErrEmptyItems is returned when a request carries no cart lines.
var ErrEmptyItems = errors.New("items required")

// Request holds the input for pricing a cart.
type Request struct {
	Period  string
	Items   []cart.Item
	Coupons []string
}

// Result holds the persisted quote and the per-product breakdown.
type Result struct {
	Quote *Quote
	Lines []coupon.LineResult
}

// Option configures a Service.
type Option func(*Service)

// WithTracerProvider sets the provider used for quote spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) { s.tracer = tp.Tracer(instrumentationName) }
}

// WithMeterProvider sets the provider used for quote counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Service) { s.meter = mp.Meter(instrumentationName) }
}

// Service encapsulates the quoting flow.
type Service struct {
	periods period.Repository
	pricer  *pricing.Service
	quotes  Repository

	tracer trace.Tracer
	meter  metric.Meter
	quoted metric.Int64Counter
	unused metric.Int64Counter
	now    func() time.Time
}

// NewService creates a quote Service with the required domain dependencies.
func NewService(
	periods period.Repository,
	pricer *pricing.Service,
	quotes Repository,
	opts ...Option,
) (*Service, error) {
	s := &Service{
		periods: periods,
		pricer:  pricer,
		quotes:  quotes,
		tracer:  tracenoop.NewTracerProvider().Tracer(instrumentationName),
		meter:   metricnoop.NewMeterProvider().Meter(instrumentationName),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}

	var err error
	if s.quoted, err = s.meter.Int64Counter("pricing.quotes",
		metric.WithDescription("Number of priced carts"),
	); err != nil {
		return nil, errors.Wrap(err, "create quotes counter")
	}
	if s.unused, err = s.meter.Int64Counter("pricing.coupons.unused",
		metric.WithDescription("Number of submitted coupons returned unused"),
	); err != nil {
		return nil, errors.Wrap(err, "create unused coupons counter")
	}
	return s, nil
}

// Quote validates the cart, prices it under the requested period, persists
// the quote and returns it.
func (s *Service) Quote(ctx context.Context, req Request) (_ *Result, rerr error) {
	ctx, span := s.tracer.Start(ctx, "quote.Quote",
		trace.WithAttributes(
			attribute.String("period", req.Period),
			attribute.Int("coupons", len(req.Coupons)),
		),
	)
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	c, err := cart.New(req.Items...)
	if err != nil {
		return nil, err
	}

	p, err := s.periods.Get(ctx, req.Period)
	if err != nil {
		return nil, fmt.Errorf("get period: %w", err)
	}

	info, err := s.pricer.GetCartPrice(c, p, req.Coupons)
	if err != nil {
		return nil, fmt.Errorf("price cart: %w", err)
	}

	q := &Quote{
		ID:            uuid.New().String(),
		Period:        p.Name(),
		Items:         c.Items(),
		Coupons:       req.Coupons,
		Amount:        info.Amount,
		UnusedCoupons: info.UnusedCoupons,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.quotes.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create quote: %w", err)
	}

	periodAttr := metric.WithAttributes(attribute.String("period", q.Period))
	s.quoted.Add(ctx, 1, periodAttr)
	s.unused.Add(ctx, int64(len(q.UnusedCoupons)), periodAttr)
	span.SetAttributes(attribute.String("quote.id", q.ID))

	zctx.From(ctx).Debug("Cart quoted",
		zap.String("quote_id", q.ID),
		zap.String("period", q.Period),
		zap.Stringer("amount", q.Amount),
		zap.Strings("unused_coupons", q.UnusedCoupons),
	)

	return &Result{Quote: q, Lines: info.Resolution.Lines}, nil
}
