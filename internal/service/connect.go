package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/ddublado/slush-bill-splitter/internal/models"
)

// SplitServiceName is the fully-qualified name of the Connect service.
const SplitServiceName = "slush.v1.SplitService"

// Connect procedure paths.
const (
	ValidateSplitProcedure = "/" + SplitServiceName + "/ValidateSplit"
	EvenSplitProcedure     = "/" + SplitServiceName + "/EvenSplit"
)

// JSONCodec carries plain Go structs over Connect using encoding/json, so the
// models package defines the wire format for both the REST and RPC surfaces.
type JSONCodec struct{}

// Name implements connect.Codec. Registering under "json" replaces Connect's
// protojson codec for application/json requests.
func (JSONCodec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (JSONCodec) Marshal(msg any) ([]byte, error) { return json.Marshal(msg) }

// Unmarshal implements connect.Codec.
func (JSONCodec) Unmarshal(data []byte, msg any) error { return json.Unmarshal(data, msg) }

var _ connect.Codec = JSONCodec{}

// SplitServiceClient calls the Connect SplitService.
type SplitServiceClient struct {
	validateSplit *connect.Client[models.SplitRequest, models.SplitResult]
	evenSplit     *connect.Client[models.EvenSplitRequest, models.EvenSplitResponse]
}

// NewSplitServiceClient constructs a client for the SplitService at baseURL.
func NewSplitServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SplitServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return &SplitServiceClient{
		validateSplit: connect.NewClient[models.SplitRequest, models.SplitResult](
			httpClient, baseURL+ValidateSplitProcedure, opts...,
		),
		evenSplit: connect.NewClient[models.EvenSplitRequest, models.EvenSplitResponse](
			httpClient, baseURL+EvenSplitProcedure, opts...,
		),
	}
}

// ValidateSplit calls slush.v1.SplitService.ValidateSplit.
func (c *SplitServiceClient) ValidateSplit(ctx context.Context, req *connect.Request[models.SplitRequest]) (*connect.Response[models.SplitResult], error) {
	return c.validateSplit.CallUnary(ctx, req)
}

// EvenSplit calls slush.v1.SplitService.EvenSplit.
func (c *SplitServiceClient) EvenSplit(ctx context.Context, req *connect.Request[models.EvenSplitRequest]) (*connect.Response[models.EvenSplitResponse], error) {
	return c.evenSplit.CallUnary(ctx, req)
}

// connectHandlers returns the Connect handlers for svc keyed by path.
func connectHandlers(svc *SplitService, opts ...connect.HandlerOption) map[string]http.Handler {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)
	return map[string]http.Handler{
		ValidateSplitProcedure: connect.NewUnaryHandler(ValidateSplitProcedure, svc.ValidateSplit, opts...),
		EvenSplitProcedure:     connect.NewUnaryHandler(EvenSplitProcedure, svc.EvenSplit, opts...),
	}
}
