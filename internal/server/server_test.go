package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/freightrate/internal/config"
	contractdomain "github.com/smallbiznis/freightrate/internal/contract/domain"
	contractmock "github.com/smallbiznis/freightrate/internal/contract/domain/mock"
	"github.com/smallbiznis/freightrate/internal/observability"
	"github.com/smallbiznis/freightrate/internal/quotedoc"
	ratequotedomain "github.com/smallbiznis/freightrate/internal/ratequote/domain"
	ratequotemock "github.com/smallbiznis/freightrate/internal/ratequote/domain/mock"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	ratingmock "github.com/smallbiznis/freightrate/internal/rating/domain/mock"
	"github.com/smallbiznis/freightrate/pkg/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const validQuoteBody = `{
	"mode": "ltl",
	"customer_id": "ACME",
	"origin": {"country": "US", "postal_code": "94105"},
	"destination": {"country": "US", "postal_code": "10001"},
	"ship_date": "2024-06-01",
	"lines": [{"weight": 1000, "pieces": 2, "freight_class": "55"}],
	"accessorial_codes": ["LIFTGATE"],
	"request_id": "5D1D8A4E-8C0E-4C3A-9F59-5A3C2D9B8E71"
}`

type testServer struct {
	srv       *Server
	rating    *ratingmock.MockService
	quotes    *ratequotemock.MockService
	contracts *contractmock.MockService
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)

	ts := testServer{
		rating:    ratingmock.NewMockService(ctrl),
		quotes:    ratequotemock.NewMockService(ctrl),
		contracts: contractmock.NewMockService(ctrl),
	}
	apiMetrics := telemetry.NewMetrics(prometheus.NewRegistry())
	ts.srv = NewServer(ServerParams{
		Gin:         NewEngine(observability.Config{}, apiMetrics),
		Cfg:         config.Config{},
		Log:         zap.NewNop(),
		RatingSvc:   ts.rating,
		QuoteSvc:    ts.quotes,
		ContractSvc: ts.contracts,
		Docs:        quotedoc.New(),
		APIMetrics:  apiMetrics,
	})
	return ts
}

func (ts testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.srv.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Error
}

func sampleResponse() ratingdomain.Response {
	return ratingdomain.Response{
		QuoteID: "5d1d8a4e8c0e4c3a9f595a3c2d9b8e71",
		Total:   decimal.NewFromInt(100),
		Charges: []ratingdomain.ChargeLine{
			{Code: ratingdomain.CodeLinehaul, Description: "LTL Linehaul", Amount: decimal.NewFromInt(100)},
		},
		Warnings: []string{},
	}
}

func TestQuoteMapsRequest(t *testing.T) {
	ts := newTestServer(t)
	ts.rating.EXPECT().Quote(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req ratingdomain.Request) (ratingdomain.Response, error) {
			assert.Equal(t, ratingdomain.ModeLTL, req.Mode)
			assert.Equal(t, "ACME", req.CustomerID)
			assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), req.ShipDate)
			assert.Equal(t, "94105", req.Origin.PostalCode)
			require.Len(t, req.Lines, 1)
			assert.True(t, req.Lines[0].Weight.Equal(decimal.NewFromInt(1000)))
			assert.Equal(t, "55", req.Lines[0].FreightClass)
			assert.Equal(t, []string{"LIFTGATE"}, req.AccessorialCodes)
			return sampleResponse(), nil
		})

	rec := ts.do(http.MethodPost, "/api/rating/quote", validQuoteBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "5d1d8a4e8c0e4c3a9f595a3c2d9b8e71", body["quote_id"])
	assert.Equal(t, "100", body["total"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestQuoteValidation(t *testing.T) {
	ts := newTestServer(t)

	body := `{
		"mode": "LTL",
		"origin": {"country": "US"},
		"destination": {"country": "US"},
		"ship_date": "06/01/2024",
		"request_id": "not-a-guid",
		"lines": [{"weight": 0, "pieces": 1, "length_in": 10}]
	}`
	rec := ts.do(http.MethodPost, "/api/rating/quote", body)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	payload := decodeError(t, rec)
	assert.Equal(t, "validation_error", payload.Type)
	fields := map[string]string{}
	for _, e := range payload.Errors {
		fields[e.Field] = e.Code
	}
	assert.Equal(t, map[string]string{
		"ship_date":              "datetime",
		"request_id":             "uuid",
		"lines[0].weight":        "gt",
		"lines[0].dimensions":    "all_or_none",
		"lines[0].freight_class": "required_for_ltl",
	}, fields)
}

func TestQuoteRejectsUnknownModeAndEmptyLines(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/rating/quote", `{"mode":"AIR","origin":{"country":"US"},"destination":{"country":"US"},"ship_date":"2024-06-01","lines":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	fields := map[string]string{}
	for _, e := range decodeError(t, rec).Errors {
		fields[e.Field] = e.Code
	}
	assert.Equal(t, "oneof", fields["mode"])
	assert.Equal(t, "min", fields["lines"])
}

func TestQuoteMalformedJSON(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/rating/quote", `{"mode":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "invalid_request", payload.Errors[0].Code)
}

func TestQuoteLaneRejected(t *testing.T) {
	ts := newTestServer(t)
	ts.rating.EXPECT().Quote(gomock.Any(), gomock.Any()).Return(ratingdomain.Response{}, ratingdomain.ErrLaneNotEligible)

	rec := ts.do(http.MethodPost, "/api/rating/quote", validQuoteBody)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "lane_not_eligible", decodeError(t, rec).Type)
}

func TestCommit(t *testing.T) {
	ts := newTestServer(t)
	stored := ratequotedomain.CommitResponse{
		RateQuoteID:       11,
		RateQuoteResultID: 12,
		RequestID:         "5d1d8a4e-8c0e-4c3a-9f59-5a3c2d9b8e71",
		Mode:              "LTL",
		Quote:             sampleResponse(),
	}
	first := ts.quotes.EXPECT().Commit(gomock.Any(), gomock.Any()).Return(stored, nil)
	replayed := stored
	replayed.Replayed = true
	ts.quotes.EXPECT().Commit(gomock.Any(), gomock.Any()).Return(replayed, nil).After(first)

	rec := ts.do(http.MethodPost, "/api/rating/commit", validQuoteBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, rec.Header().Get("Idempotent-Replayed"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "11", body["rate_quote_id"])
	assert.Equal(t, "12", body["rate_quote_result_id"])

	rec = ts.do(http.MethodPost, "/api/rating/commit", validQuoteBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("Idempotent-Replayed"))
}

func TestCommitErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"unresolved contract", ratequotedomain.ErrContractNotResolved, http.StatusUnprocessableEntity, "contract_not_resolved"},
		{"inconsistent state", ratequotedomain.ErrInconsistentState, http.StatusConflict, "inconsistent_state"},
		{"store failure", assert.AnError, http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.quotes.EXPECT().Commit(gomock.Any(), gomock.Any()).Return(ratequotedomain.CommitResponse{}, tc.err)

			rec := ts.do(http.MethodPost, "/api/rating/commit", validQuoteBody)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.kind, decodeError(t, rec).Type)
		})
	}
}

func TestGetQuote(t *testing.T) {
	ts := newTestServer(t)
	id := "5d1d8a4e-8c0e-4c3a-9f59-5a3c2d9b8e71"
	ts.quotes.EXPECT().Get(gomock.Any(), id).Return(ratequotedomain.CommitResponse{RequestID: id, Mode: "LTL", Quote: sampleResponse()}, nil)
	ts.quotes.EXPECT().Get(gomock.Any(), "missing").Return(ratequotedomain.CommitResponse{}, ratequotedomain.ErrInvalidRequestID)

	rec := ts.do(http.MethodGet, "/api/rating/quotes/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/api/rating/quotes/missing", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "request_id", payload.Errors[0].Field)
}

func TestGetQuoteNotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.quotes.EXPECT().Get(gomock.Any(), gomock.Any()).Return(ratequotedomain.CommitResponse{}, ratequotedomain.ErrQuoteNotFound)

	rec := ts.do(http.MethodGet, "/api/rating/quotes/5d1d8a4e-8c0e-4c3a-9f59-5a3c2d9b8e71", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetQuotePDF(t *testing.T) {
	ts := newTestServer(t)
	id := "5d1d8a4e-8c0e-4c3a-9f59-5a3c2d9b8e71"
	ts.quotes.EXPECT().Get(gomock.Any(), id).Return(ratequotedomain.CommitResponse{
		RequestID:    id,
		Mode:         "LTL",
		CurrencyCode: "USD",
		Quote:        sampleResponse(),
	}, nil)

	rec := ts.do(http.MethodGet, "/api/rating/quotes/"+id+"/pdf", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestPublishContractVersion(t *testing.T) {
	ts := newTestServer(t)
	ts.contracts.EXPECT().Publish(gomock.Any(), contractdomain.PublishRequest{VersionID: "123", UserID: "ops", Note: "q3"}).
		Return(&contractdomain.ContractVersion{Status: contractdomain.StatusPublished}, nil)
	ts.contracts.EXPECT().Publish(gomock.Any(), contractdomain.PublishRequest{VersionID: "456"}).
		Return(nil, contractdomain.ErrVersionNotFound)
	ts.contracts.EXPECT().Publish(gomock.Any(), contractdomain.PublishRequest{VersionID: "abc"}).
		Return(nil, contractdomain.ErrInvalidVersionID)

	rec := ts.do(http.MethodPost, "/api/contracts/versions/123/publish?userId=ops&note=q3", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(http.MethodPost, "/api/contracts/versions/456/publish", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodPost, "/api/contracts/versions/abc/publish", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "version_id", decodeError(t, rec).Errors[0].Field)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Type)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
