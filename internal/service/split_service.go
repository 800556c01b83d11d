package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/ddublado/slush-bill-splitter/internal/calculator"
	"github.com/ddublado/slush-bill-splitter/internal/metrics"
	"github.com/ddublado/slush-bill-splitter/internal/middleware"
	"github.com/ddublado/slush-bill-splitter/internal/models"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes = 1 << 20

// SplitService validates and allocates bill splits for the REST and Connect
// surfaces. It holds no per-request state.
type SplitService struct {
	metrics      *metrics.Recorder
	policy       calculator.Policy
	maxBodyBytes int64
}

// Option configures a SplitService.
type Option func(*SplitService)

// WithPolicy sets the remainder policy used when a request does not name one.
func WithPolicy(p calculator.Policy) Option {
	return func(s *SplitService) { s.policy = p }
}

// WithMaxBodyBytes caps the size of REST request bodies and Connect messages.
func WithMaxBodyBytes(n int64) Option {
	return func(s *SplitService) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// NewSplitService creates a SplitService reporting to rec.
func NewSplitService(rec *metrics.Recorder, opts ...Option) *SplitService {
	s := &SplitService{
		metrics:      rec,
		policy:       calculator.DefaultPolicy,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// validate runs the validator and records the outcome.
func (s *SplitService) validate(ctx context.Context, req models.SplitRequest) (models.SplitResult, error) {
	requestID := middleware.GetRequestID(ctx)
	slog.Debug("Validating split",
		"total", req.Total.String(),
		"participants", len(req.Splits),
		"request_id", requestID,
	)

	result, err := calculator.Validate(req)
	if err != nil {
		s.metrics.Validation(metrics.OutcomeRejected)
		slog.Warn("ValidateSplit rejected", "error", err, "request_id", requestID)
		return models.SplitResult{}, err
	}

	if result.Success {
		s.metrics.Validation(metrics.OutcomeBalanced)
	} else {
		s.metrics.Validation(metrics.OutcomeImbalanced)
	}
	slog.Info("Split validated",
		"success", result.Success,
		"difference", result.Difference.String(),
		"request_id", requestID,
	)
	return result, nil
}

// evenSplit runs the allocator and records the outcome.
func (s *SplitService) evenSplit(ctx context.Context, req models.EvenSplitRequest) (models.EvenSplitResponse, error) {
	requestID := middleware.GetRequestID(ctx)

	policy := s.policy
	if req.Policy != "" {
		p, err := calculator.ParsePolicy(req.Policy)
		if err != nil {
			s.metrics.EvenSplit(metrics.OutcomeRejected)
			slog.Warn("EvenSplit rejected", "error", err, "request_id", requestID)
			return models.EvenSplitResponse{}, err
		}
		policy = p
	}

	amounts, err := calculator.EvenSplitWithPolicy(req.Total, req.Slots(), policy)
	if err != nil {
		s.metrics.EvenSplit(metrics.OutcomeRejected)
		slog.Warn("EvenSplit rejected", "error", err, "request_id", requestID)
		return models.EvenSplitResponse{}, err
	}

	resp := models.EvenSplitResponse{Success: true, Amounts: amounts}
	if len(req.Participants) > 0 {
		resp.Shares = make([]models.Share, len(amounts))
		for i, a := range amounts {
			resp.Shares[i] = models.Share{Name: req.Participants[i], Amount: a}
		}
	}

	s.metrics.EvenSplit(metrics.OutcomeOK)
	slog.Info("Even split computed",
		"total", req.Total.String(),
		"slots", len(amounts),
		"policy", policy,
		"request_id", requestID,
	)
	return resp, nil
}

// ValidateSplit handles the Connect ValidateSplit procedure. An imbalance is
// a normal response; only input errors become Connect errors.
func (s *SplitService) ValidateSplit(ctx context.Context, req *connect.Request[models.SplitRequest]) (*connect.Response[models.SplitResult], error) {
	result, err := s.validate(ctx, *req.Msg)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&result), nil
}

// EvenSplit handles the Connect EvenSplit procedure.
func (s *SplitService) EvenSplit(ctx context.Context, req *connect.Request[models.EvenSplitRequest]) (*connect.Response[models.EvenSplitResponse], error) {
	resp, err := s.evenSplit(ctx, *req.Msg)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&resp), nil
}

// HandleValidateSplit serves POST /api/validate-split.
func (s *SplitService) HandleValidateSplit(w http.ResponseWriter, r *http.Request) {
	var req models.SplitRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.metrics.Validation(metrics.OutcomeRejected)
		slog.Warn("ValidateSplit rejected", "error", err, "request_id", middleware.GetRequestID(r.Context()))
		writeError(w, err)
		return
	}

	result, err := s.validate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleEvenSplit serves POST /api/even-split.
func (s *SplitService) HandleEvenSplit(w http.ResponseWriter, r *http.Request) {
	var req models.EvenSplitRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.metrics.EvenSplit(metrics.OutcomeRejected)
		slog.Warn("EvenSplit rejected", "error", err, "request_id", middleware.GetRequestID(r.Context()))
		writeError(w, err)
		return
	}

	resp, err := s.evenSplit(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleHealth serves GET /healthz.
func (s *SplitService) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody reads at most maxBodyBytes and decodes them into v. Every
// failure, including an oversized or syntactically invalid body, is reported
// as malformed input.
func (s *SplitService) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", models.ErrMalformedInput, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		if models.IsInputError(err) {
			return err
		}
		return fmt.Errorf("%w: %v", models.ErrMalformedInput, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

// writeError maps input errors to 400 and everything else to 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if !models.IsInputError(err) {
		status = http.StatusInternalServerError
		slog.Error("Request failed", "error", err)
	}
	writeJSON(w, status, models.ErrorResponse{
		Success: false,
		Message: models.PublicMessage(err),
	})
}

// connectError maps input errors to CodeInvalidArgument.
func connectError(err error) error {
	if models.IsInputError(err) {
		return connect.NewError(connect.CodeInvalidArgument, errors.New(models.PublicMessage(err)))
	}
	return connect.NewError(connect.CodeInternal, err)
}
