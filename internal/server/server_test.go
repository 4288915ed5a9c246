package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/mortgage-calculator/internal/rates"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/iwvelando/mortgage-calculator/pkg/testutil"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
	"go.uber.org/zap"
)

type stubRates struct {
	data rates.RateData
}

func (s stubRates) FetchCurrentRate(context.Context) rates.RateData {
	return s.data
}

type panickingRates struct{}

func (panickingRates) FetchCurrentRate(context.Context) rates.RateData {
	panic("rate source exploded")
}

func newTestHandler(source RateSource) http.Handler {
	return NewHandler(zap.NewNop(), source, nil, constants.DefaultMaxBodySizeBytes, "1.2.3")
}

func postMortgage(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/mortgage", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestHandleMortgageSuccess(t *testing.T) {
	handler := newTestHandler(nil)

	rr := postMortgage(t, handler, `{"price":300000,"deposit":60000,"term":30,"interest":3.5}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON content type, got %q", ct)
	}

	var resp mortgage.FullResults
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Capital != 240000 {
		t.Errorf("capital = %v, expected 240000", resp.Capital)
	}
	if resp.MonthlyPayment < 1077.70 || resp.MonthlyPayment > 1077.72 {
		t.Errorf("monthlyPayment = %v, expected about 1077.71", resp.MonthlyPayment)
	}
	if len(resp.YearlyBreakdown) != 31 {
		t.Fatalf("expected 31 breakdown entries, got %d", len(resp.YearlyBreakdown))
	}
	if resp.YearlyBreakdown[0].RemainingDebt != 240000 {
		t.Errorf("year 0 debt = %v, expected 240000", resp.YearlyBreakdown[0].RemainingDebt)
	}
	if resp.YearlyBreakdown[1].RemainingDebt != 235394.09 {
		t.Errorf("year 1 debt = %v, expected 235394.09", resp.YearlyBreakdown[1].RemainingDebt)
	}
}

func TestHandleMortgageMissingDepositDefaultsToZero(t *testing.T) {
	rr := postMortgage(t, newTestHandler(nil), `{"price":240000,"term":30,"interest":3.5}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp mortgage.FullResults
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Capital != 240000 {
		t.Errorf("capital = %v, expected 240000", resp.Capital)
	}
}

func TestHandleMortgageValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected map[string]string
	}{
		{
			name: "all fields invalid",
			body: `{"price":-1,"deposit":-5,"term":50,"interest":120}`,
			expected: map[string]string{
				validation.FieldPrice:        validation.MsgPriceNotPositive,
				validation.FieldDeposit:      validation.MsgDepositNegative,
				validation.FieldInterestRate: validation.MsgInterestOutOfRange,
				validation.FieldTermYears:    validation.MsgTermOutOfRange,
			},
		},
		{
			name: "deposit equals price",
			body: `{"price":200000,"deposit":200000,"term":25,"interest":4}`,
			expected: map[string]string{
				validation.FieldDeposit: validation.MsgDepositTooLarge,
			},
		},
		{
			name: "fractional term",
			body: `{"price":200000,"deposit":10000,"term":25.5,"interest":4}`,
			expected: map[string]string{
				validation.FieldTermYears: validation.MsgTermNotWhole,
			},
		},
		{
			name: "huge whole term",
			body: `{"price":200000,"deposit":10000,"term":1e12,"interest":4}`,
			expected: map[string]string{
				validation.FieldTermYears: validation.MsgTermOutOfRange,
			},
		},
		{
			name: "missing price and interest",
			body: `{"deposit":0,"term":25}`,
			expected: map[string]string{
				validation.FieldPrice:        validation.MsgPriceNotPositive,
				validation.FieldDeposit:      validation.MsgDepositTooLarge,
				validation.FieldInterestRate: validation.MsgInterestOutOfRange,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postMortgage(t, newTestHandler(nil), tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
			}

			var resp validationErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Error != "Validation failed" {
				t.Errorf("error = %q, expected %q", resp.Error, "Validation failed")
			}
			if len(resp.ValidationErrors) != len(tt.expected) {
				t.Fatalf("expected %d validation errors, got %v", len(tt.expected), resp.ValidationErrors)
			}
			for field, msg := range tt.expected {
				if resp.ValidationErrors[field] != msg {
					t.Errorf("%s: got %q, expected %q", field, resp.ValidationErrors[field], msg)
				}
			}
		})
	}
}

func TestHandleMortgageInvalidBody(t *testing.T) {
	rr := postMortgage(t, newTestHandler(nil), `{"price":"lots"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Invalid request body") {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}

func TestHandleMortgageBodyTooLarge(t *testing.T) {
	handler := NewHandler(zap.NewNop(), nil, nil, 16, "")

	rr := postMortgage(t, handler, `{"price":300000,"deposit":60000,"term":30,"interest":3.5}`)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleMortgageMethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/mortgage", nil)
	rr := httptest.NewRecorder()

	newTestHandler(nil).ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}

func TestHandleRate(t *testing.T) {
	source := stubRates{data: rates.RateData{Date: "2025-01-30T00:00:00.000Z", Rate: 4.5}}
	req := httptest.NewRequest(http.MethodGet, "/api/rate", nil)
	rr := httptest.NewRecorder()

	newTestHandler(source).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp rates.RateData
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp != source.data {
		t.Fatalf("got %+v, expected %+v", resp, source.data)
	}
}

func TestHandleRateFromFeedFallback(t *testing.T) {
	service := rates.NewService(zap.NewNop(), rates.Config{
		Endpoint: testutil.ClosedURL(t),
		Timeout:  time.Second,
	}, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/rate", nil)
	rr := httptest.NewRecorder()

	newTestHandler(service).ServeHTTP(rr, req)

	var resp rates.RateData
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Rate != constants.FallbackInterestRate {
		t.Fatalf("rate = %v, expected fallback %v", resp.Rate, constants.FallbackInterestRate)
	}
}

func TestHandleVersion(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()

	newTestHandler(nil).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["version"] != "1.2.3" {
		t.Fatalf("version = %q, expected 1.2.3", resp["version"])
	}
}

func TestIndexShowsCurrentRate(t *testing.T) {
	source := stubRates{data: rates.RateData{Date: "2025-01-30T00:00:00.000Z", Rate: 4.5}}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	newTestHandler(source).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `name="interest" type="number" step="any" min="0" max="100" value="4.5"`) {
		t.Fatalf("expected interest field prefilled with 4.5, got %s", body)
	}
	if !strings.Contains(body, "4.50%") {
		t.Fatalf("expected formatted rate in page")
	}
}

func TestIndexUnknownPath(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rr := httptest.NewRecorder()

	newTestHandler(nil).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestFormSubmitRendersResults(t *testing.T) {
	form := url.Values{
		"price":    {"300000"},
		"deposit":  {"60000"},
		"term":     {"30"},
		"interest": {"3.5"},
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()

	newTestHandler(nil).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"£1,077.71", "£387,974.61", "£240,000.00", "£1,516.96"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s in rendered page", want)
		}
	}
}

func TestFormSubmitRendersErrors(t *testing.T) {
	form := url.Values{
		"price":    {"abc"},
		"deposit":  {"0"},
		"term":     {"25"},
		"interest": {"4"},
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()

	newTestHandler(nil).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), validation.MsgPriceNotPositive) {
		t.Fatalf("expected price error in page")
	}
	if strings.Contains(rr.Body.String(), "Yearly breakdown") {
		t.Fatalf("did not expect results for invalid form")
	}
}

func TestPanicReturnsInternalServerError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/rate", nil)
	rr := httptest.NewRecorder()

	newTestHandler(panickingRates{}).ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "exploded") {
		t.Fatalf("panic detail leaked to client: %s", rr.Body.String())
	}
}

func TestRequestIDHeader(t *testing.T) {
	handler := newTestHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	generated := rr.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(generated); err != nil {
		t.Fatalf("expected generated request ID, got %q", generated)
	}

	incoming := uuid.NewString()
	req = httptest.NewRequest(http.MethodGet, "/api/version", nil)
	req.Header.Set(RequestIDHeader, incoming)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get(RequestIDHeader); got != incoming {
		t.Fatalf("expected request ID %q to be reused, got %q", incoming, got)
	}
}

func TestRateLimitRejectsExcessRequests(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	t.Cleanup(limiter.Stop)
	handler := NewHandler(zap.NewNop(), nil, limiter, 0, "")

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rr := postMortgage(t, handler, `{"price":300000,"deposit":60000,"term":30,"interest":3.5}`)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("expected first two requests to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected third request to be limited, got %d", codes[2])
	}
}

func TestStaticAssetsServed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/static/styles.css", nil)
	rr := httptest.NewRecorder()

	newTestHandler(nil).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	data, err := io.ReadAll(rr.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if !strings.Contains(string(data), ".container") {
		t.Fatalf("unexpected stylesheet contents")
	}
}
