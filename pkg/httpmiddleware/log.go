package httpmiddleware

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InjectLogger puts lg into the request context for zctx.From.
func InjectLogger(lg *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := zctx.Base(r.Context(), lg)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LogRequests logs one line per request. The request logger carries the
// request id and route so handlers logging through zctx inherit them.
func LogRequests(find RouteFinder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			fields := []zap.Field{
				zap.String("http.method", r.Method),
				zap.String("http.route", find(r)),
			}
			if id := RequestIDFromContext(ctx); id != "" {
				fields = append(fields, zap.String("request_id", id))
			}
			lg := zctx.From(ctx).With(fields...)
			ctx = zctx.Base(ctx, lg)

			m := httpsnoop.CaptureMetrics(next, w, r.WithContext(ctx))

			level := zapcore.DebugLevel
			switch {
			case m.Code >= http.StatusInternalServerError:
				level = zapcore.ErrorLevel
			case m.Code >= http.StatusBadRequest:
				level = zapcore.WarnLevel
			}
			lg.Check(level, "Request").Write(
				zap.Int("http.status_code", m.Code),
				zap.Duration("duration", m.Duration),
				zap.Int64("http.response_size", m.Written),
			)
		})
	}
}
