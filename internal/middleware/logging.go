package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"

	"github.com/ddublado/slush-bill-splitter/internal/metrics"
	"github.com/ddublado/slush-bill-splitter/internal/models"
)

// LoggingInterceptor returns a Connect interceptor that logs every split RPC.
// Successful calls are logged with code "ok" and the outcome of the split;
// input errors are warnings carrying the Connect code.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure
			requestID := GetRequestID(ctx)

			resp, err := next(ctx, req)

			duration := time.Since(start).Milliseconds()
			if err == nil {
				slog.Info("RPC ok",
					"procedure", procedure,
					"code", "ok",
					"outcome", rpcOutcome(resp),
					"request_id", requestID,
					"duration_ms", duration,
				)
				return resp, nil
			}

			code := connect.CodeOf(err)
			level := slog.LevelWarn
			if code != connect.CodeInvalidArgument {
				level = slog.LevelError
			}
			slog.Log(ctx, level, "RPC error",
				"procedure", procedure,
				"code", code.String(),
				"outcome", metrics.OutcomeRejected,
				"error", err,
				"request_id", requestID,
				"duration_ms", duration,
			)
			return resp, err
		}
	}
}

// rpcOutcome names the result carried by a successful split response.
func rpcOutcome(resp connect.AnyResponse) string {
	if resp == nil {
		return ""
	}
	switch msg := resp.Any().(type) {
	case *models.SplitResult:
		if msg.Success {
			return metrics.OutcomeBalanced
		}
		return metrics.OutcomeImbalanced
	case *models.EvenSplitResponse:
		return metrics.OutcomeOK
	default:
		return ""
	}
}

// Logging logs all incoming requests.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := GetRequestID(r.Context())

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
			"request_id", requestID,
		)

		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)

		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(r.Context(), level, "Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"request_id", requestID,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
