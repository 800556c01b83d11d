package service

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/ddublado/slush-bill-splitter/internal/metrics"
	"github.com/ddublado/slush-bill-splitter/internal/middleware"
)

// NewHandler wires the REST routes, the Connect service, health and metrics
// into one handler wrapped with request ID, logging, CORS and metrics
// middleware.
func NewHandler(svc *SplitService, rec *metrics.Recorder, corsOrigin string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/validate-split", svc.HandleValidateSplit)
	mux.HandleFunc("POST /api/even-split", svc.HandleEvenSplit)
	mux.HandleFunc("GET /healthz", svc.HandleHealth)
	mux.Handle("GET /metrics", rec.Handler())

	for path, h := range connectHandlers(svc,
		connect.WithInterceptors(middleware.LoggingInterceptor()),
		connect.WithReadMaxBytes(int(svc.maxBodyBytes)),
	) {
		mux.Handle(path, h)
	}

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Logging,
		middleware.CORS(corsOrigin),
		middleware.Metrics(rec),
	)
}
